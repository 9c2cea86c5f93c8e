package sftp

// OpenMode selects the file-creation semantics of Open, scoped to what
// SFTP OPEN can express.
type OpenMode int

const (
	ModeOpen OpenMode = iota + 1
	ModeOpenOrCreate
	ModeCreate
	ModeCreateNew
	ModeTruncate
	ModeAppend
)

// OpenAccess selects the read/write access mask of Open.
type OpenAccess int

const (
	AccessRead OpenAccess = 1 << iota
	AccessWrite
)

const (
	AccessReadWrite = AccessRead | AccessWrite
)

// OpenOptions configures FileStream.Open. BufferSize is the write-buffer
// ring capacity (and the read-ahead reader's chunk size ceiling). Zero
// selects the 32 KiB default; Open rejects a negative value with an
// ArgumentError.
type OpenOptions struct {
	Mode       OpenMode
	Access     OpenAccess
	BufferSize int

	// MaxConcurrentReads bounds the pipelined reader's request window.
	// Defaults to 4 if unset.
	MaxConcurrentReads int
}

const defaultBufferSize = 32 * 1024
const defaultMaxConcurrentReads = 4

func (o OpenOptions) normalized() OpenOptions {
	if o.BufferSize <= 0 {
		o.BufferSize = defaultBufferSize
	}
	if o.MaxConcurrentReads <= 0 {
		o.MaxConcurrentReads = defaultMaxConcurrentReads
	}
	return o
}

// toOpenFlags maps (Mode, Access) to SFTP OPEN pflags, validating the
// combination first.
func (o OpenOptions) toOpenFlags() (uint32, error) {
	if o.Access == 0 {
		return 0, argErr("access", "must not be zero")
	}
	switch o.Mode {
	case ModeOpen, ModeOpenOrCreate, ModeCreate, ModeCreateNew, ModeTruncate, ModeAppend:
	default:
		return 0, argErr("mode", "unrecognized open mode")
	}
	if o.Mode == ModeAppend && o.Access != AccessWrite {
		return 0, argErr("access", "Append mode requires write-only access")
	}
	switch o.Mode {
	case ModeCreate, ModeCreateNew, ModeTruncate, ModeAppend:
		if o.Access == AccessRead {
			return 0, argErr("access", "read-only access is incompatible with a create-flavored mode")
		}
	}

	var flags uint32
	switch o.Access {
	case AccessRead:
		flags |= uint32(pflagRead)
	case AccessWrite:
		flags |= uint32(pflagWrite)
	case AccessReadWrite:
		flags |= uint32(pflagRead) | uint32(pflagWrite)
	}

	switch o.Mode {
	case ModeAppend:
		flags |= uint32(pflagAppend) | uint32(pflagCreate)
	case ModeCreate:
		flags |= uint32(pflagCreate) | uint32(pflagTruncate)
	case ModeCreateNew:
		flags |= uint32(pflagCreate) | uint32(pflagExclusive)
	case ModeOpenOrCreate:
		flags |= uint32(pflagCreate)
	case ModeTruncate:
		flags |= uint32(pflagTruncate)
	}
	return flags, nil
}
