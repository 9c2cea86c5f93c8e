package sftp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStatVFSAndDerivedHelpers(t *testing.T) {
	var raw []byte
	fields := []uint64{
		4096,        // BlockSize
		4096,        // FragmentSize
		1000,        // Blocks
		400,         // BlocksFree
		350,         // BlocksAvailable
		5000,        // Files
		2000,        // FilesFree
		1800,        // FilesAvailable
		0xABCDEF,    // FilesystemID
		statvfsFlagReadonly, // Flags
		255,         // MaxNameLength
	}
	for _, f := range fields {
		raw = appendU64(raw, f)
	}

	s, err := decodeStatVFS(raw)
	require.NoError(t, err)

	require.EqualValues(t, 4096*1000, s.TotalSpace())
	require.EqualValues(t, 4096*350, s.FreeSpace())
	require.True(t, s.Readonly())
	require.True(t, s.SupportsSetUID())
}

func TestDecodeStatVFSShortPacket(t *testing.T) {
	_, err := decodeStatVFS([]byte{0, 0, 0, 1})
	require.Error(t, err)
}

func TestStatVFSFlagCombinations(t *testing.T) {
	s := &StatVFS{Flags: statvfsFlagReadonly | statvfsFlagNoSetUID}
	require.True(t, s.Readonly())
	require.False(t, s.SupportsSetUID())

	s2 := &StatVFS{}
	require.False(t, s2.Readonly())
	require.True(t, s2.SupportsSetUID())
}

func TestPosixRenamePayloadShape(t *testing.T) {
	b := posixRenamePayload("/a", "/b")
	oldPath, rest, err := takeStr(b)
	require.NoError(t, err)
	require.Equal(t, "/a", oldPath)
	newPath, rest, err := takeStr(rest)
	require.NoError(t, err)
	require.Equal(t, "/b", newPath)
	require.Empty(t, rest)
}

func TestStatvfsPayloadShape(t *testing.T) {
	b := statvfsPayload("/mnt")
	path, rest, err := takeStr(b)
	require.NoError(t, err)
	require.Equal(t, "/mnt", path)
	require.Empty(t, rest)
}

func TestFstatvfsPayloadShape(t *testing.T) {
	b := fstatvfsPayload("handle-1")
	handle, rest, err := takeStr(b)
	require.NoError(t, err)
	require.Equal(t, "handle-1", handle)
	require.Empty(t, rest)
}

func TestHardlinkPayloadShape(t *testing.T) {
	b := hardlinkPayload("/old", "/new")
	oldPath, rest, err := takeStr(b)
	require.NoError(t, err)
	require.Equal(t, "/old", oldPath)
	newPath, rest, err := takeStr(rest)
	require.NoError(t, err)
	require.Equal(t, "/new", newPath)
	require.Empty(t, rest)
}
