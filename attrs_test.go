package sftp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Scenario 1: decode a regular file, mode 0644.
func TestAttributesDecodeRegularFile(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x81, 0xa4}
	a, rest, err := decodeFileAttributes(raw)
	require.NoError(t, err)
	require.Empty(t, rest)

	require.True(t, a.IsRegularFile())
	require.True(t, a.OwnerCanRead())
	require.True(t, a.OwnerCanWrite())
	require.False(t, a.OwnerCanExecute())
	require.True(t, a.GroupCanRead())
	require.True(t, a.OthersCanRead())
	require.EqualValues(t, -1, a.Size())
	require.EqualValues(t, -1, a.UID())
	require.EqualValues(t, -1, a.GID())

	s := a.String()
	require.True(t, len(s) >= 10 && s[:10] == "-rw-r--r--")
	require.NotEqual(t, byte(' '), s[len(s)-1])

	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, a.Encode())
}

// Scenario 2: mutate the decoded attributes, then encode.
func TestAttributesMutateAndEncode(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x81, 0xa4}
	a, _, err := decodeFileAttributes(raw)
	require.NoError(t, err)

	a.SetIsSetUID(true)
	a.SetOwnerCanExecute(true)
	a.SetSize(123)
	a.SetOwner(99, 66)

	access := time.Date(2025, 8, 10, 17, 51, 37, 0, time.UTC)
	local := time.FixedZone("", 3*60*60)
	modify := time.Date(2016, 12, 2, 13, 18, 20, 0, local)
	a.SetTimes(access, modify)

	require.Equal(t, time.Date(2016, 12, 2, 10, 18, 20, 0, time.UTC), a.ModTimeUTC())

	want := []byte{0x00, 0x00, 0x00, 0x0F}
	want = appendU64(want, 123)
	want = appendU32(want, 99)
	want = appendU32(want, 66)
	want = appendU32(want, 0x000089E4)
	want = appendU32(want, 1754848297)
	want = appendU32(want, 1480673900)

	require.Equal(t, want, a.Encode())
}

// Scenario 3: set_permissions rejects anything with an octal digit > 7
// or that needs a fifth digit.
func TestSetPermissionsRejectsOutOfRange(t *testing.T) {
	for _, bad := range []int{8888, 10000, 8000, 80, 8, 1797} {
		a := NewFileAttributes()
		err := a.SetPermissions(bad)
		require.Error(t, err, "mode %d should be rejected", bad)
		_, ok := err.(*ArgumentError)
		require.True(t, ok)
	}
	a := NewFileAttributes()
	require.Error(t, a.SetPermissions(-1))
}

func TestSetPermissionsWritesLow12BitsOnly(t *testing.T) {
	a := NewFileAttributes()
	a.SetMode(0x8000) // regular-file type nibble, no permission bits
	require.NoError(t, a.SetPermissions(755))
	require.EqualValues(t, 0x81ED, a.Mode())
	require.True(t, a.IsRegularFile())
}

func TestFileTypePredicatesAreMutuallyExclusive(t *testing.T) {
	types := []uint32{typeSocket, typeSymlink, typeRegular, typeBlock, typeDir, typeChar, typeFifo}
	for _, ty := range types {
		a := NewFileAttributes()
		a.SetMode(ty << 12)
		count := 0
		for _, pred := range []bool{
			a.IsSocket(), a.IsSymlink(), a.IsRegularFile(), a.IsBlockDevice(),
			a.IsDirectory(), a.IsCharDevice(), a.IsFifo(),
		} {
			if pred {
				count++
			}
		}
		require.Equal(t, 1, count)
	}
}

// setuid (and setgid/sticky) must only overlay the exec position when
// the special bit is actually set, not whenever the exec bit is set.
func TestStringOverlaysSpecialBitsIndependentlyOfExec(t *testing.T) {
	a := NewFileAttributes()
	a.SetMode(typeRegular << 12)
	require.NoError(t, a.SetPermissions(644))
	require.Equal(t, "-rw-r--r--", a.String())

	a.SetIsSetUID(true)
	require.Equal(t, "-rwSr--r--", a.String())

	a.SetOwnerCanExecute(true)
	require.Equal(t, "-rwsr--r--", a.String())

	a.SetIsSetUID(false)
	require.Equal(t, "-rwxr--r--", a.String())
}

// SetOwner(-1, -1) must be a no-op, same as SetSize with a negative
// value: it must not dirty the UIDGID group or appear in Encode().
func TestSetOwnerBothNegativeIsNoOp(t *testing.T) {
	a := NewFileAttributes()
	a.SetOwner(-1, -1)
	require.EqualValues(t, -1, a.UID())
	require.EqualValues(t, -1, a.GID())
	require.Equal(t, []byte{0, 0, 0, 0}, a.Encode())

	a.SetOwner(99, -1)
	require.EqualValues(t, 99, a.UID())
	require.EqualValues(t, -1, a.GID())
	require.NotEqual(t, []byte{0, 0, 0, 0}, a.Encode())
}

func TestUnmutatedAttributesRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x81, 0xa4}
	a, _, err := decodeFileAttributes(raw)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, a.Encode())
}
