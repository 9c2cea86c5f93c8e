package sftp

import "context"

// SeekWhence selects the origin Seek computes the new position from.
type SeekWhence int

const (
	SeekBegin SeekWhence = iota
	SeekCurrent
	SeekEnd
)

// FileStream is a seekable, buffered byte stream over a remote SFTP
// handle. It is not safe for concurrent use by multiple goroutines
// against the same stream.
type FileStream struct {
	session *Session
	handle  string
	path    string
	opts    OpenOptions

	position  int64
	seekable  bool
	knownSize int64 // -1 if unknown

	writeBuf []byte

	readBuf      []byte
	readBufStart int64
	reader       *Reader

	disposed bool
}

// Open opens path on session according to opts, deciding seekability
// from the post-OPEN FSTAT.
func Open(ctx context.Context, session *Session, path string, opts OpenOptions) (*FileStream, error) {
	if path == "" {
		return nil, argErr("path", "must not be empty")
	}
	if opts.BufferSize < 0 {
		return nil, argErr("bufferSize", "must not be negative")
	}
	opts = opts.normalized()
	pflags, err := opts.toOpenFlags()
	if err != nil {
		return nil, err
	}

	handle, err := session.Open(ctx, path, pflags, nil)
	if err != nil {
		return nil, err
	}

	fs := &FileStream{
		session:   session,
		handle:    handle,
		path:      path,
		opts:      opts,
		knownSize: -1,
	}

	attrs, ferr := session.Fstat(ctx, handle)
	if ferr == nil && attrs.Size() >= 0 {
		fs.seekable = true
		fs.knownSize = attrs.Size()
		if opts.Mode == ModeAppend {
			fs.position = attrs.Size()
		}
		if opts.Access&AccessRead != 0 {
			fs.reader = fs.newReader(fs.position, true)
		}
	}
	return fs, nil
}

func (fs *FileStream) Position() int64 { return fs.position }

// Length returns the size observed at open time (or by the most recent
// SetLength or SeekEnd), or an Unsupported error if the stream isn't
// seekable.
func (fs *FileStream) Length() (int64, error) {
	if !fs.seekable {
		return 0, &UnsupportedError{Msg: "length is not supported on a non-seekable stream"}
	}
	return fs.knownSize, nil
}

func (fs *FileStream) newReader(offset int64, wholeFile bool) *Reader {
	chunkSize := fs.session.calculateOptimalReadLength(fs.opts.BufferSize)
	var knownSize *int64
	if fs.seekable {
		size := fs.knownSize
		knownSize = &size
	}
	policy := seedOpportunistic
	if wholeFile && knownSize != nil {
		policy = seedWholeFile
	}
	return newReader(fs.session, fs.handle, uint64(offset), chunkSize, fs.opts.MaxConcurrentReads, knownSize, policy)
}

// Read fills buf with up to len(buf) bytes, returning 0 at end of file.
func (fs *FileStream) Read(ctx context.Context, buf []byte) (int, error) {
	if fs.disposed {
		return 0, &DisposedError{What: "file stream"}
	}
	if fs.opts.Access&AccessRead == 0 {
		return 0, &UnsupportedError{Msg: "read on a write-only stream"}
	}

	if len(fs.readBuf) == 0 {
		if err := fs.Flush(ctx); err != nil {
			return 0, err
		}
		if fs.reader == nil {
			fs.reader = fs.newReader(fs.position, false)
		}
		chunk, err := fs.reader.ReadNext(ctx)
		if err != nil {
			return 0, err
		}
		if len(chunk) == 0 {
			fs.reader = nil
			return 0, nil
		}
		fs.readBuf = chunk
		fs.readBufStart = fs.position
	}

	n := copy(buf, fs.readBuf)
	fs.readBuf = fs.readBuf[n:]
	fs.position += int64(n)
	fs.readBufStart = fs.position
	return n, nil
}

// Write appends data to the write buffer, flushing whenever it fills.
// Position advances optimistically, before the flush round-trips.
func (fs *FileStream) Write(ctx context.Context, data []byte) (int, error) {
	if fs.disposed {
		return 0, &DisposedError{What: "file stream"}
	}
	if fs.opts.Access&AccessWrite == 0 {
		return 0, &UnsupportedError{Msg: "write on a read-only stream"}
	}

	fs.readBuf = nil
	fs.reader = nil

	written := 0
	for len(data) > 0 {
		room := fs.opts.BufferSize - len(fs.writeBuf)
		n := room
		if n > len(data) {
			n = len(data)
		}
		fs.writeBuf = append(fs.writeBuf, data[:n]...)
		data = data[n:]
		written += n
		fs.position += int64(n)
		if len(fs.writeBuf) == fs.opts.BufferSize {
			if err := fs.Flush(ctx); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush issues a WRITE for any buffered bytes at their true server
// offset.
func (fs *FileStream) Flush(ctx context.Context) error {
	if len(fs.writeBuf) == 0 {
		return nil
	}
	bufLen := int64(len(fs.writeBuf))
	serverOffset := fs.position - bufLen
	if serverOffset < 0 {
		return &ArgumentError{Param: "position", Msg: "write buffer length exceeds current position"}
	}
	if err := fs.session.Write(ctx, fs.handle, uint64(serverOffset), fs.writeBuf); err != nil {
		return err
	}
	fs.writeBuf = fs.writeBuf[:0]
	return nil
}

// Seek flushes, computes the new position, and slides (rather than
// discards) the read buffer when the new position still falls inside it.
func (fs *FileStream) Seek(ctx context.Context, offset int64, whence SeekWhence) (int64, error) {
	if fs.disposed {
		return 0, &DisposedError{What: "file stream"}
	}
	if !fs.seekable {
		return 0, &UnsupportedError{Msg: "seek is not supported on a non-seekable stream"}
	}
	if err := fs.Flush(ctx); err != nil {
		return 0, err
	}

	var newPos int64
	switch whence {
	case SeekBegin:
		newPos = offset
	case SeekCurrent:
		newPos = fs.position + offset
	case SeekEnd:
		attrs, err := fs.session.Fstat(ctx, fs.handle)
		if err != nil {
			return 0, err
		}
		if attrs.Size() < 0 {
			return 0, &UnsupportedError{Msg: "server did not report a size for SeekEnd"}
		}
		fs.knownSize = attrs.Size()
		newPos = attrs.Size() + offset
	}
	if newPos < 0 {
		return 0, &ArgumentError{Param: "offset", Msg: "before beginning of stream"}
	}

	bufEnd := fs.readBufStart + int64(len(fs.readBuf))
	if len(fs.readBuf) > 0 && newPos >= fs.readBufStart && newPos <= bufEnd {
		fs.readBuf = fs.readBuf[newPos-fs.readBufStart:]
		fs.readBufStart = newPos
	} else {
		fs.readBuf = nil
		fs.reader = nil
	}

	fs.position = newPos
	return newPos, nil
}

// SetLength truncates or extends the remote file via FSETSTAT.
func (fs *FileStream) SetLength(ctx context.Context, length uint64) error {
	if fs.disposed {
		return &DisposedError{What: "file stream"}
	}
	if !fs.seekable || fs.opts.Access&AccessWrite == 0 {
		return &UnsupportedError{Msg: "set_length requires a seekable, writable stream"}
	}
	if err := fs.Flush(ctx); err != nil {
		return err
	}
	fs.readBuf = nil
	fs.reader = nil

	attrs, err := fs.session.Fstat(ctx, fs.handle)
	if err != nil {
		return err
	}
	attrs.SetSize(int64(length))
	if err := fs.session.Fsetstat(ctx, fs.handle, attrs); err != nil {
		return err
	}
	fs.knownSize = int64(length)
	if fs.position > int64(length) {
		fs.position = int64(length)
	}
	return nil
}

// Dispose flushes (best-effort) and closes the remote handle. Double
// dispose is a no-op, and every exit path still issues exactly one CLOSE.
func (fs *FileStream) Dispose(ctx context.Context) error {
	if fs.disposed {
		return nil
	}
	fs.disposed = true

	if !fs.session.isClosed() {
		_ = fs.Flush(ctx)
	}
	if fs.reader != nil {
		fs.reader.Dispose()
		fs.reader = nil
	}
	return fs.session.CloseHandle(ctx, fs.handle)
}
