package sftp

// StatVFS is the decoded reply to the statvfs@openssh.com and
// fstatvfs@openssh.com extensions.
type StatVFS struct {
	BlockSize       uint64
	FragmentSize    uint64
	Blocks          uint64
	BlocksFree      uint64
	BlocksAvailable uint64
	Files           uint64
	FilesFree       uint64
	FilesAvailable  uint64
	FilesystemID    uint64
	Flags           uint64
	MaxNameLength   uint64
}

const (
	statvfsFlagReadonly  = 0x1
	statvfsFlagNoSetUID  = 0x2
)

// TotalSpace returns the filesystem's total capacity in bytes.
func (s *StatVFS) TotalSpace() uint64 { return s.FragmentSize * s.Blocks }

// FreeSpace returns the space available to an unprivileged user, in bytes.
func (s *StatVFS) FreeSpace() uint64 { return s.FragmentSize * s.BlocksAvailable }

// Readonly reports whether the filesystem is mounted read-only.
func (s *StatVFS) Readonly() bool { return s.Flags&statvfsFlagReadonly != 0 }

// SupportsSetUID reports whether setuid/setgid semantics are honored.
func (s *StatVFS) SupportsSetUID() bool { return s.Flags&statvfsFlagNoSetUID == 0 }

func decodeStatVFS(b []byte) (*StatVFS, error) {
	var s StatVFS
	fields := []*uint64{
		&s.BlockSize, &s.FragmentSize, &s.Blocks, &s.BlocksFree, &s.BlocksAvailable,
		&s.Files, &s.FilesFree, &s.FilesAvailable, &s.FilesystemID, &s.Flags, &s.MaxNameLength,
	}
	var err error
	for _, f := range fields {
		if *f, b, err = takeU64(b); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// posixRenamePayload builds the posix-rename@openssh.com extended-request
// payload: oldpath, newpath.
func posixRenamePayload(oldPath, newPath string) []byte {
	b := appendStr(nil, oldPath)
	return appendStr(b, newPath)
}

// statvfsPayload builds the statvfs@openssh.com extended-request payload:
// a single path string.
func statvfsPayload(path string) []byte {
	return appendStr(nil, path)
}

// fstatvfsPayload builds the fstatvfs@openssh.com extended-request
// payload: a single open handle.
func fstatvfsPayload(handle string) []byte {
	return appendStr(nil, handle)
}

// hardlinkPayload builds the hardlink@openssh.com extended-request
// payload: oldpath, newpath (the new hard link path).
func hardlinkPayload(oldPath, newPath string) []byte {
	b := appendStr(nil, oldPath)
	return appendStr(b, newPath)
}
