package sftp

import (
	"fmt"
	"strings"
	"time"
)

// SFTP v3 ATTRS flag bits (draft-ietf-secsh-filexfer-02 section 5).
const (
	attrFlagSize        = uint32(0x00000001)
	attrFlagUIDGID      = uint32(0x00000002)
	attrFlagPermissions = uint32(0x00000004)
	attrFlagAcModTime   = uint32(0x00000008)
	attrFlagExtended    = uint32(0x80000000)
)

// POSIX file-type nibble values, occupying bits 12-15 of the permissions
// word.
const (
	typeSocket  = 0xC
	typeSymlink = 0xA
	typeRegular = 0x8
	typeBlock   = 0x6
	typeDir     = 0x4
	typeChar    = 0x2
	typeFifo    = 0x1
)

// Extension is a single SFTP ATTRS extended (name, data) pair.
type Extension struct {
	Name string
	Data string
}

// epochSentinel is the "not present" value for AcTime/ModTime: the Unix
// epoch itself.
var epochSentinel = time.Unix(0, 0).UTC()

// FileAttributes is the Go-idiomatic, mutable representation of an SFTP
// ATTRS blob. It tracks which attribute groups have changed since it was
// decoded (or since construction, for a freshly built value), so Encode
// only emits what actually changed.
type FileAttributes struct {
	size       int64 // -1 == not present
	uid, gid   int32 // -1 == not present
	perms      uint32
	acTime     time.Time
	modTime    time.Time
	extensions []Extension

	dirty uint32 // bitmask of attrFlag* groups changed since decode/construction
}

// NewFileAttributes returns an empty attribute set with every field at
// its "not present" sentinel, suitable for building up a SETSTAT request
// from scratch.
func NewFileAttributes() *FileAttributes {
	return &FileAttributes{
		size:    -1,
		uid:     -1,
		gid:     -1,
		acTime:  epochSentinel,
		modTime: epochSentinel,
	}
}

// Size returns the file size, or -1 if not present.
func (a *FileAttributes) Size() int64 { return a.size }

// SetSize sets the file size. Setting a negative size is treated as "no
// change" and is a no-op.
func (a *FileAttributes) SetSize(v int64) {
	if v < 0 {
		return
	}
	a.size = v
	a.dirty |= attrFlagSize
}

// UID returns the owning user id, or -1 if not present.
func (a *FileAttributes) UID() int32 { return a.uid }

// GID returns the owning group id, or -1 if not present.
func (a *FileAttributes) GID() int32 { return a.gid }

// SetOwner sets both uid and gid; SFTP v3 only ever carries them
// together. Negative values are treated as "no change" for that field,
// same as SetSize. Calling SetOwner(-1, -1) is a no-op.
func (a *FileAttributes) SetOwner(uid, gid int32) {
	if uid < 0 && gid < 0 {
		return
	}
	if uid >= 0 {
		a.uid = uid
	}
	if gid >= 0 {
		a.gid = gid
	}
	a.dirty |= attrFlagUIDGID
}

// AcTimeUTC returns the last-access time in UTC.
func (a *FileAttributes) AcTimeUTC() time.Time { return a.acTime }

// ModTimeUTC returns the last-write time in UTC.
func (a *FileAttributes) ModTimeUTC() time.Time { return a.modTime }

// SetTimes sets both the last-access and last-write time. Times are
// converted to UTC and truncated to second resolution, matching the wire
// format (seconds since the Unix epoch).
func (a *FileAttributes) SetTimes(accessed, modified time.Time) {
	a.acTime = accessed.UTC().Truncate(time.Second)
	a.modTime = modified.UTC().Truncate(time.Second)
	a.dirty |= attrFlagAcModTime
}

// Mode returns the raw 32-bit POSIX mode word, including the file-type
// nibble in bits 12-15.
func (a *FileAttributes) Mode() uint32 { return a.perms }

// SetMode replaces the entire mode word, including the type nibble. Most
// callers building a SETSTAT request want SetPermissions instead, which
// only touches the low 12 permission bits.
func (a *FileAttributes) SetMode(mode uint32) {
	a.perms = mode
	a.dirty |= attrFlagPermissions
}

// SetPermissions sets the low 12 permission bits (special/owner/group/
// other) from a "short" holding up to four octal digits, e.g. 0755 or
// 4755, leaving the file-type nibble untouched. It returns an
// ArgumentError if any digit exceeds 7 or the value needs a fifth digit.
func (a *FileAttributes) SetPermissions(mode int) error {
	if mode < 0 {
		return argErr("mode", "must not be negative")
	}
	rem := mode
	special := rem / 1000
	rem %= 1000
	owner := rem / 100
	rem %= 100
	group := rem / 10
	other := rem % 10
	for _, digit := range []int{special, owner, group, other} {
		if digit < 0 || digit > 7 {
			return argErr("mode", fmt.Sprintf("octal digit %d out of range 0-7", digit))
		}
	}
	low12 := uint32(special)<<9 | uint32(owner)<<6 | uint32(group)<<3 | uint32(other)
	a.perms = (a.perms &^ 0xFFF) | low12
	a.dirty |= attrFlagPermissions
	return nil
}

func (a *FileAttributes) typeNibble() uint32 { return (a.perms >> 12) & 0xF }

// IsSocket, IsSymlink, IsRegularFile, IsBlockDevice, IsDirectory,
// IsCharDevice and IsFifo are mutually exclusive and derived solely from
// the mode word's type nibble.
func (a *FileAttributes) IsSocket() bool      { return a.typeNibble() == typeSocket }
func (a *FileAttributes) IsSymlink() bool     { return a.typeNibble() == typeSymlink }
func (a *FileAttributes) IsRegularFile() bool { return a.typeNibble() == typeRegular }
func (a *FileAttributes) IsBlockDevice() bool { return a.typeNibble() == typeBlock }
func (a *FileAttributes) IsDirectory() bool   { return a.typeNibble() == typeDir }
func (a *FileAttributes) IsCharDevice() bool  { return a.typeNibble() == typeChar }
func (a *FileAttributes) IsFifo() bool        { return a.typeNibble() == typeFifo }

const (
	permOwnerR  = 0o400
	permOwnerW  = 0o200
	permOwnerX  = 0o100
	permGroupR  = 0o040
	permGroupW  = 0o020
	permGroupX  = 0o010
	permOtherR  = 0o004
	permOtherW  = 0o002
	permOtherX  = 0o001
	permSetUID  = 0o4000
	permSetGID  = 0o2000
	permSticky  = 0o1000
)

func (a *FileAttributes) OwnerCanRead() bool    { return a.perms&permOwnerR != 0 }
func (a *FileAttributes) OwnerCanWrite() bool   { return a.perms&permOwnerW != 0 }
func (a *FileAttributes) OwnerCanExecute() bool { return a.perms&permOwnerX != 0 }
func (a *FileAttributes) GroupCanRead() bool    { return a.perms&permGroupR != 0 }
func (a *FileAttributes) GroupCanWrite() bool   { return a.perms&permGroupW != 0 }
func (a *FileAttributes) GroupCanExecute() bool { return a.perms&permGroupX != 0 }
func (a *FileAttributes) OthersCanRead() bool   { return a.perms&permOtherR != 0 }
func (a *FileAttributes) OthersCanWrite() bool  { return a.perms&permOtherW != 0 }
func (a *FileAttributes) OthersCanExecute() bool {
	return a.perms&permOtherX != 0
}
func (a *FileAttributes) IsSetUID() bool { return a.perms&permSetUID != 0 }
func (a *FileAttributes) IsSetGID() bool { return a.perms&permSetGID != 0 }
func (a *FileAttributes) IsSticky() bool { return a.perms&permSticky != 0 }

func (a *FileAttributes) setPermBit(bit uint32, v bool) {
	if v {
		a.perms |= bit
	} else {
		a.perms &^= bit
	}
	a.dirty |= attrFlagPermissions
}

func (a *FileAttributes) SetOwnerCanExecute(v bool) { a.setPermBit(permOwnerX, v) }
func (a *FileAttributes) SetIsSetUID(v bool)        { a.setPermBit(permSetUID, v) }
func (a *FileAttributes) SetIsSetGID(v bool)        { a.setPermBit(permSetGID, v) }
func (a *FileAttributes) SetIsSticky(v bool)        { a.setPermBit(permSticky, v) }

// Extensions returns the decoded extended (name, data) pairs, in the
// order the server sent them.
func (a *FileAttributes) Extensions() []Extension {
	out := make([]Extension, len(a.extensions))
	copy(out, a.extensions)
	return out
}

// SetExtension appends or replaces an extended attribute, preserving
// insertion order for new keys.
func (a *FileAttributes) SetExtension(name, data string) {
	for i := range a.extensions {
		if a.extensions[i].Name == name {
			a.extensions[i].Data = data
			a.dirty |= attrFlagExtended
			return
		}
	}
	a.extensions = append(a.extensions, Extension{Name: name, Data: data})
	a.dirty |= attrFlagExtended
}

func (a *FileAttributes) encodedSize() int {
	n := 4
	if a.dirty&attrFlagSize != 0 {
		n += 8
	}
	if a.dirty&attrFlagUIDGID != 0 {
		n += 8
	}
	if a.dirty&attrFlagPermissions != 0 {
		n += 4
	}
	if a.dirty&attrFlagAcModTime != 0 {
		n += 8
	}
	if a.dirty&attrFlagExtended != 0 {
		n += 4
		for _, ext := range a.extensions {
			n += 4 + len(ext.Name) + 4 + len(ext.Data)
		}
	}
	return n
}

// Encode marshals only the attribute groups that changed since decode
// (or construction). An attributes value that has never been mutated
// encodes to a bare zero flag word.
func (a *FileAttributes) Encode() []byte {
	b := make([]byte, 0, a.encodedSize())
	b = appendU32(b, a.dirty)
	if a.dirty&attrFlagSize != 0 {
		b = appendU64(b, uint64(a.size))
	}
	if a.dirty&attrFlagUIDGID != 0 {
		b = appendU32(b, uint32(a.uid))
		b = appendU32(b, uint32(a.gid))
	}
	if a.dirty&attrFlagPermissions != 0 {
		b = appendU32(b, a.perms)
	}
	if a.dirty&attrFlagAcModTime != 0 {
		b = appendU32(b, uint32(a.acTime.Unix()))
		b = appendU32(b, uint32(a.modTime.Unix()))
	}
	if a.dirty&attrFlagExtended != 0 {
		b = appendU32(b, uint32(len(a.extensions)))
		for _, ext := range a.extensions {
			b = appendStr(b, ext.Name)
			b = appendStr(b, ext.Data)
		}
	}
	return b
}

// decodeFileAttributes parses an ATTRS blob, returning the decoded value
// and the remainder of b. The result's dirty mask is always zero: decode
// establishes the baseline, it does not mark anything changed.
func decodeFileAttributes(b []byte) (*FileAttributes, []byte, error) {
	a := NewFileAttributes()
	flags, b, err := takeU32(b)
	if err != nil {
		return nil, nil, err
	}
	if flags&attrFlagSize != 0 {
		var sz uint64
		if sz, b, err = takeU64(b); err != nil {
			return nil, nil, err
		}
		a.size = int64(sz)
	}
	if flags&attrFlagUIDGID != 0 {
		var uid, gid uint32
		if uid, b, err = takeU32(b); err != nil {
			return nil, nil, err
		}
		if gid, b, err = takeU32(b); err != nil {
			return nil, nil, err
		}
		a.uid, a.gid = int32(uid), int32(gid)
	}
	if flags&attrFlagPermissions != 0 {
		if a.perms, b, err = takeU32(b); err != nil {
			return nil, nil, err
		}
	}
	if flags&attrFlagAcModTime != 0 {
		var at, mt uint32
		if at, b, err = takeU32(b); err != nil {
			return nil, nil, err
		}
		if mt, b, err = takeU32(b); err != nil {
			return nil, nil, err
		}
		a.acTime = time.Unix(int64(at), 0).UTC()
		a.modTime = time.Unix(int64(mt), 0).UTC()
	}
	if flags&attrFlagExtended != 0 {
		var count uint32
		if count, b, err = takeU32(b); err != nil {
			return nil, nil, err
		}
		a.extensions = make([]Extension, count)
		for i := uint32(0); i < count; i++ {
			if a.extensions[i].Name, b, err = takeStr(b); err != nil {
				return nil, nil, err
			}
			if a.extensions[i].Data, b, err = takeStr(b); err != nil {
				return nil, nil, err
			}
		}
	}
	return a, b, nil
}

func (a *FileAttributes) typeChar() byte {
	switch a.typeNibble() {
	case typeDir:
		return 'd'
	case typeSymlink:
		return 'l'
	case typeSocket:
		return 's'
	case typeFifo:
		return 'p'
	case typeBlock:
		return 'b'
	case typeChar:
		return 'c'
	default:
		// No recognized type nibble: render as a regular file, the
		// default entry kind, rather than an unreadable placeholder.
		return '-'
	}
}

// triad renders one owner/group/other rwx triple. special is whether the
// corresponding setuid/setgid/sticky bit is set; it overlays the exec
// position with lowercase (exec and special both set) or uppercase
// (special set, exec not set) instead of the plain x/-.
func triad(r, w, x, special bool, overlayChar byte) string {
	rc, wc, xc := byte('-'), byte('-'), byte('-')
	if r {
		rc = 'r'
	}
	if w {
		wc = 'w'
	}
	switch {
	case x && special:
		xc = overlayChar
	case special:
		xc = overlayChar - ('a' - 'A') // uppercase variant
	case x:
		xc = 'x'
	}
	return string([]byte{rc, wc, xc})
}

// String renders the attributes in `ls -l` style: type char, three rwx
// triads (with setuid/setgid/sticky overlays), and optional Size/
// LastWriteTime suffixes.
func (a *FileAttributes) String() string {
	var sb strings.Builder
	sb.WriteByte(a.typeChar())
	sb.WriteString(triad(a.OwnerCanRead(), a.OwnerCanWrite(), a.OwnerCanExecute(), a.IsSetUID(), 's'))
	sb.WriteString(triad(a.GroupCanRead(), a.GroupCanWrite(), a.GroupCanExecute(), a.IsSetGID(), 's'))
	sb.WriteString(triad(a.OthersCanRead(), a.OthersCanWrite(), a.OthersCanExecute(), a.IsSticky(), 't'))

	s := sb.String()
	if a.size != -1 {
		s += fmt.Sprintf(" Size: %d", a.size)
	}
	if a.modTime != epochSentinel {
		s += " LastWriteTime: " + a.modTime.Format(time.RFC3339)
	}
	return strings.TrimRight(s, " ")
}
