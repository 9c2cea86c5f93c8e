package sftp

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithLogger overrides the *logrus.Entry a Session logs through. The
// default is logrus.StandardLogger() tagged with a "component" field.
func WithLogger(log *logrus.Entry) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithOperationTimeout sets the default timeout applied to every
// round-tripping operation's blocking form. Zero means no timeout.
func WithOperationTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.opTimeout = d }
}

// Future is a single-completion sink for one in-flight request. The
// session always completes a request via callback internally; Future is
// the thin futures-based wrapper built on top of that.
type Future struct {
	done chan struct{}
	pkt  wirePacket
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func (f *Future) complete(pkt wirePacket, err error) {
	f.pkt, f.err = pkt, err
	close(f.done)
}

// Wait blocks until the response arrives, ctx is cancelled, or (if ctx
// carries a deadline) the deadline elapses. Cancellation does not
// withdraw the underlying request: the pending-table entry stays live
// and the eventual late response is dispatched and discarded.
func (f *Future) Wait(ctx context.Context) (wirePacket, error) {
	select {
	case <-f.done:
		return f.pkt, f.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Op: "sftp request", Cause: ctx.Err()}
		}
		return nil, &CancelledError{Op: "sftp request", Cause: ctx.Err()}
	}
}

// Session is the full-duplex SFTP request/response multiplexer. It owns
// the transport, the reassembly buffer, the pending-request table, and
// the negotiated protocol state.
type Session struct {
	transport Transport
	log       *logrus.Entry
	opTimeout time.Duration

	idCounter uint64
	pending   *pendingTable

	sendMu sync.Mutex // serializes writes to transport, invariant (b)

	recvBuf []byte // reassembly buffer, touched only by the ingress callback

	mu         sync.RWMutex
	version    uint32
	extensions map[string]string
	cwd        string
	closed     bool

	handshakeMu sync.Mutex
	handshake   *Future
}

// NewSession wraps transport without opening it; Connect performs the
// handshake.
func NewSession(transport Transport, opts ...SessionOption) *Session {
	s := &Session{
		transport: transport,
		log:       logrus.NewEntry(logrus.StandardLogger()).WithField("component", "sftp.Session"),
		pending:   newPendingTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	transport.OnChannelData(s.onChannelData)
	transport.OnClosed(func(err error) {
		s.fail(&ConnectionClosedError{Reason: errString(err), Cause: err})
	})
	return s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Connect performs the version handshake and resolves the initial
// working directory.
func (s *Session) Connect(ctx context.Context) error {
	s.handshakeMu.Lock()
	f := newFuture()
	s.handshake = f
	s.handshakeMu.Unlock()

	if err := s.send(&initPkt{Version: ProtocolVersion}); err != nil {
		return wrapf(err, "sftp: sending INIT")
	}

	pkt, err := f.Wait(ctx)
	if err != nil {
		return err
	}
	v, ok := pkt.(*versionPkt)
	if !ok {
		return &ProtocolError{Msg: "expected VERSION in response to INIT"}
	}
	if v.Version > 3 {
		return &ProtocolError{Msg: "server negotiated unsupported version"}
	}

	s.mu.Lock()
	s.version = v.Version
	s.extensions = v.Extensions
	s.mu.Unlock()

	cwd, err := s.Realpath(ctx, ".")
	if err != nil {
		return wrapf(err, "sftp: resolving initial working directory")
	}
	s.mu.Lock()
	s.cwd = cwd
	s.mu.Unlock()
	return nil
}

func (s *Session) nextRequestID() uint32 {
	return uint32(atomic.AddUint64(&s.idCounter, 1))
}

func (s *Session) send(pkt wirePacket) error {
	b, err := pkt.MarshalBinary()
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.transport.SendBytes(b)
}

// issue assigns a request id, registers the response callback, and sends
// the packet built by buildPkt. It returns a Future the caller waits on
// either directly (futures form) or via a blocking wrapper.
func (s *Session) issue(buildPkt func(id uint32) wirePacket) *Future {
	f := newFuture()
	id := s.nextRequestID()
	pkt := buildPkt(id)

	if err := s.pending.insert(id, f.complete); err != nil {
		f.complete(nil, err)
		return f
	}
	s.log.WithField("request_id", id).Debug("issuing request")
	if err := s.send(pkt); err != nil {
		// Undo the insert; the request never reached the wire so no
		// response will ever arrive for it.
		s.pending.complete(id)
		f.complete(nil, wrapf(err, "sftp: sending request"))
	}
	return f
}

// waitWithTimeout applies the session's default operation timeout (if
// configured) around ctx before delegating to f.Wait.
func (s *Session) waitWithTimeout(ctx context.Context, f *Future) (wirePacket, error) {
	if s.opTimeout <= 0 {
		return f.Wait(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return f.Wait(ctx)
}

// onChannelData is the transport's single ingress callback. It implements
// a fast path that decodes directly off the inbound slice when no partial
// frame is pending, and a slow path that appends to a persistent
// reassembly buffer and drains complete frames off it.
func (s *Session) onChannelData(data []byte) {
	if len(s.recvBuf) == 0 {
		cur := data
		for {
			if len(cur) < 4 {
				s.recvBuf = append(s.recvBuf[:0], cur...)
				return
			}
			l := be32(cur)
			if uint64(len(cur)) < 4+uint64(l) {
				s.recvBuf = append(s.recvBuf[:0], cur...)
				return
			}
			frame := cur[4 : 4+l]
			cur = cur[4+l:]
			s.dispatch(frame)
		}
	}

	s.recvBuf = append(s.recvBuf, data...)
	for {
		if len(s.recvBuf) < 4 {
			return
		}
		l := be32(s.recvBuf)
		if uint64(len(s.recvBuf)) < 4+uint64(l) {
			return
		}
		frame := append([]byte(nil), s.recvBuf[4:4+l]...)
		s.recvBuf = s.recvBuf[4+l:]
		s.dispatch(frame)
	}
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// dispatch decodes one complete frame (type byte + payload, no length
// prefix) and routes it to the waiting callback.
func (s *Session) dispatch(frame []byte) {
	if len(frame) < 1 {
		s.fail(&ProtocolError{Msg: "empty frame"})
		return
	}
	msgType, body := frame[0], frame[1:]

	if msgType == fxpVersion {
		var v versionPkt
		if err := v.UnmarshalBinary(body); err != nil {
			s.fail(&ProtocolError{Msg: "malformed VERSION: " + err.Error(), Cause: err})
			return
		}
		s.handshakeMu.Lock()
		f := s.handshake
		s.handshakeMu.Unlock()
		if f != nil {
			f.complete(&v, nil)
		}
		return
	}

	pkt, err := decodeResponse(msgType, body)
	if err != nil {
		s.fail(&ProtocolError{Msg: "malformed response: " + err.Error(), Cause: err})
		return
	}
	id := pkt.id()
	onDone := s.pending.complete(id)
	if onDone == nil {
		s.log.WithFields(logrus.Fields{"request_id": id, "packet_type": fxp(msgType).String()}).
			Warn("response with no matching pending request")
		s.fail(&ProtocolError{Msg: "invalid response: no pending request for this id"})
		return
	}
	s.log.WithField("request_id", id).Debug("dispatching response")
	onDone(pkt, nil)
}

// fail marks the session closed, fails every pending request, and closes
// the transport. Safe to call more than once.
func (s *Session) fail(err error) {
	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if alreadyClosed {
		return
	}
	s.log.WithError(err).Error("session failed")

	s.handshakeMu.Lock()
	if s.handshake != nil {
		select {
		case <-s.handshake.done:
		default:
			s.handshake.complete(nil, err)
		}
	}
	s.handshakeMu.Unlock()

	for _, cb := range s.pending.teardown() {
		cb(nil, err)
	}
	_ = s.transport.Close()
}

// Close disposes the session: closes the transport and fails any
// outstanding requests with a connection-closed error.
func (s *Session) Close() error {
	s.fail(&ConnectionClosedError{Reason: "session disposed"})
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) hasExtension(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.extensions[name]
	return ok
}

// WorkingDirectory returns the session's current working directory, as
// resolved at Connect time (or the most recent ChangeDirectory).
func (s *Session) WorkingDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cwd
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// CanonicalPath resolves p against the session's working directory using
// REALPATH. If the server rejects the full path with a status error, it
// falls back to resolving the parent directory and reattaching the last
// path component, so a not-yet-existing leaf name still canonicalizes.
func (s *Session) CanonicalPath(ctx context.Context, p string) (string, error) {
	full := p
	if !strings.HasPrefix(p, "/") {
		full = joinPath(s.WorkingDirectory(), p)
	}

	resolved, err := s.Realpath(ctx, full)
	if err == nil {
		return resolved, nil
	}
	if !isServerStatusError(err) {
		return "", err
	}

	if strings.HasSuffix(full, "/.") || strings.HasSuffix(full, "/..") || full == "/" || !strings.Contains(full, "/") {
		return full, nil
	}

	idx := strings.LastIndex(full, "/")
	parent, last := full[:idx], full[idx+1:]
	if parent == "" {
		parent = "/"
	}
	resolvedParent, err := s.Realpath(ctx, parent)
	if err != nil {
		return full, nil
	}
	return joinPath(resolvedParent, last), nil
}

func isServerStatusError(err error) bool {
	switch err.(type) {
	case *PathNotFoundError, *PermissionDeniedError, *StatusError:
		return true
	default:
		return false
	}
}

// ChangeDirectory resolves path via CanonicalPath and sets it as the
// session's working directory.
func (s *Session) ChangeDirectory(ctx context.Context, path string) (string, error) {
	resolved, err := s.CanonicalPath(ctx, path)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.cwd = resolved
	s.mu.Unlock()
	return resolved, nil
}

// calculateOptimalReadLength bounds a caller's desired READ length so one
// response fits in one SSH channel-data message.
func (s *Session) calculateOptimalReadLength(bufferSize int) int {
	max := int(s.transport.LocalPacketSize())
	if bufferSize < max {
		max = bufferSize
	}
	n := max - 13
	if n < 1 {
		n = 1
	}
	return n
}

// calculateOptimalWriteLength mirrors calculateOptimalReadLength for
// WRITE, accounting for the handle length in the packet overhead.
func (s *Session) calculateOptimalWriteLength(bufferSize int, handle string) int {
	max := int(s.transport.RemotePacketSize())
	if bufferSize < max {
		max = bufferSize
	}
	n := max - (25 + len(handle))
	if n < 1 {
		n = 1
	}
	return n
}

// ---- typed operations: async (futures) forms ------------------------

func (s *Session) OpenAsync(path string, pflags uint32, attrs *FileAttributes) *Future {
	if attrs == nil {
		attrs = NewFileAttributes()
	}
	return s.issue(func(id uint32) wirePacket { return &openPkt{ID: id, Path: path, Pflags: pflags, Attrs: attrs} })
}

func (s *Session) CloseHandleAsync(handle string) *Future {
	return s.issue(func(id uint32) wirePacket { return &closePkt{ID: id, Handle: handle} })
}

func (s *Session) ReadAsync(handle string, offset uint64, length uint32) *Future {
	return s.issue(func(id uint32) wirePacket { return &readPkt{ID: id, Handle: handle, Offset: offset, Len: length} })
}

func (s *Session) WriteAsync(handle string, offset uint64, data []byte) *Future {
	return s.issue(func(id uint32) wirePacket { return &writePkt{ID: id, Handle: handle, Offset: offset, Data: data} })
}

func (s *Session) LstatAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newLstatPkt(id, path) })
}

func (s *Session) FstatAsync(handle string) *Future {
	return s.issue(func(id uint32) wirePacket { return newFstatPkt(id, handle) })
}

func (s *Session) StatAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newStatPkt(id, path) })
}

func (s *Session) SetstatAsync(path string, attrs *FileAttributes) *Future {
	return s.issue(func(id uint32) wirePacket { return newSetstatPkt(id, path, attrs) })
}

func (s *Session) FsetstatAsync(handle string, attrs *FileAttributes) *Future {
	return s.issue(func(id uint32) wirePacket { return &fsetstatPkt{ID: id, Handle: handle, Attrs: attrs} })
}

func (s *Session) OpendirAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newOpendirPkt(id, path) })
}

func (s *Session) ReaddirAsync(handle string) *Future {
	return s.issue(func(id uint32) wirePacket { return newReaddirPkt(id, handle) })
}

func (s *Session) RemoveAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newRemovePkt(id, path) })
}

func (s *Session) MkdirAsync(path string, attrs *FileAttributes) *Future {
	if attrs == nil {
		attrs = NewFileAttributes()
	}
	return s.issue(func(id uint32) wirePacket { return newMkdirPkt(id, path, attrs) })
}

func (s *Session) RmdirAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newRmdirPkt(id, path) })
}

func (s *Session) RealpathAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newRealpathPkt(id, path) })
}

func (s *Session) RenameAsync(oldPath, newPath string) *Future {
	return s.issue(func(id uint32) wirePacket { return &renamePkt{ID: id, OldPath: oldPath, NewPath: newPath} })
}

func (s *Session) ReadlinkAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket { return newReadlinkPkt(id, path) })
}

func (s *Session) SymlinkAsync(linkPath, targetPath string) *Future {
	return s.issue(func(id uint32) wirePacket {
		return &symlinkPkt{ID: id, ExistingPath: targetPath, LinkPath: linkPath}
	})
}

func (s *Session) PosixRenameAsync(oldPath, newPath string) *Future {
	return s.issue(func(id uint32) wirePacket {
		return &extendedPkt{ID: id, ExtendedRequest: "posix-rename@openssh.com", Payload: posixRenamePayload(oldPath, newPath)}
	})
}

func (s *Session) StatvfsAsync(path string) *Future {
	return s.issue(func(id uint32) wirePacket {
		return &extendedPkt{ID: id, ExtendedRequest: "statvfs@openssh.com", Payload: statvfsPayload(path)}
	})
}

func (s *Session) FstatvfsAsync(handle string) *Future {
	return s.issue(func(id uint32) wirePacket {
		return &extendedPkt{ID: id, ExtendedRequest: "fstatvfs@openssh.com", Payload: fstatvfsPayload(handle)}
	})
}

func (s *Session) HardlinkAsync(oldPath, newPath string) *Future {
	return s.issue(func(id uint32) wirePacket {
		return &extendedPkt{ID: id, ExtendedRequest: "hardlink@openssh.com", Payload: hardlinkPayload(oldPath, newPath)}
	})
}

// ---- typed operations: blocking forms --------------------------------

func (s *Session) Open(ctx context.Context, path string, pflags uint32, attrs *FileAttributes) (string, error) {
	pkt, err := s.waitWithTimeout(ctx, s.OpenAsync(path, pflags, attrs))
	if err != nil {
		return "", err
	}
	return responseToHandle(pkt, path)
}

func (s *Session) CloseHandle(ctx context.Context, handle string) error {
	pkt, err := s.waitWithTimeout(ctx, s.CloseHandleAsync(handle))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, "")
}

// Read returns (data, nil) on success, including an empty slice on EOF.
// EOF is not an error condition here.
func (s *Session) Read(ctx context.Context, handle string, offset uint64, length uint32) ([]byte, error) {
	pkt, err := s.waitWithTimeout(ctx, s.ReadAsync(handle, offset, length))
	return decodeReadResponse(pkt, err)
}

// decodeReadResponse converts a raw READ response (or the error from
// waiting on it) into the (data, err) shape shared by Session.Read and
// the pipelined reader.
func decodeReadResponse(pkt wirePacket, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	switch p := pkt.(type) {
	case *dataPkt:
		return p.Data, nil
	case *statusPkt:
		if p.Code == fxEOF {
			return nil, nil
		}
		return nil, errFromStatus(p.Code, p.Msg, "")
	default:
		return nil, &ProtocolError{Msg: "unexpected response to READ"}
	}
}

func (s *Session) Write(ctx context.Context, handle string, offset uint64, data []byte) error {
	pkt, err := s.waitWithTimeout(ctx, s.WriteAsync(handle, offset, data))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, "")
}

func (s *Session) Lstat(ctx context.Context, path string) (*FileAttributes, error) {
	pkt, err := s.waitWithTimeout(ctx, s.LstatAsync(path))
	if err != nil {
		return nil, err
	}
	return responseToAttrs(pkt, path)
}

func (s *Session) Fstat(ctx context.Context, handle string) (*FileAttributes, error) {
	pkt, err := s.waitWithTimeout(ctx, s.FstatAsync(handle))
	if err != nil {
		return nil, err
	}
	return responseToAttrs(pkt, "")
}

func (s *Session) Stat(ctx context.Context, path string) (*FileAttributes, error) {
	pkt, err := s.waitWithTimeout(ctx, s.StatAsync(path))
	if err != nil {
		return nil, err
	}
	return responseToAttrs(pkt, path)
}

func (s *Session) Setstat(ctx context.Context, path string, attrs *FileAttributes) error {
	pkt, err := s.waitWithTimeout(ctx, s.SetstatAsync(path, attrs))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, path)
}

func (s *Session) Fsetstat(ctx context.Context, handle string, attrs *FileAttributes) error {
	pkt, err := s.waitWithTimeout(ctx, s.FsetstatAsync(handle, attrs))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, "")
}

func (s *Session) Opendir(ctx context.Context, path string) (string, error) {
	pkt, err := s.waitWithTimeout(ctx, s.OpendirAsync(path))
	if err != nil {
		return "", err
	}
	return responseToHandle(pkt, path)
}

// Readdir returns io.EOF once the directory is exhausted, matching Go's
// iteration idiom for a status EOF that ends iteration normally rather
// than signaling failure.
func (s *Session) Readdir(ctx context.Context, handle string) ([]NameEntry, error) {
	pkt, err := s.waitWithTimeout(ctx, s.ReaddirAsync(handle))
	if err != nil {
		return nil, err
	}
	switch p := pkt.(type) {
	case *namePkt:
		return p.Entries, nil
	case *statusPkt:
		if p.Code == fxEOF {
			return nil, io.EOF
		}
		return nil, errFromStatus(p.Code, p.Msg, "")
	default:
		return nil, &ProtocolError{Msg: "unexpected response to READDIR"}
	}
}

func (s *Session) Remove(ctx context.Context, path string) error {
	pkt, err := s.waitWithTimeout(ctx, s.RemoveAsync(path))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, path)
}

func (s *Session) Mkdir(ctx context.Context, path string, attrs *FileAttributes) error {
	pkt, err := s.waitWithTimeout(ctx, s.MkdirAsync(path, attrs))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, path)
}

func (s *Session) Rmdir(ctx context.Context, path string) error {
	pkt, err := s.waitWithTimeout(ctx, s.RmdirAsync(path))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, path)
}

func (s *Session) Realpath(ctx context.Context, path string) (string, error) {
	pkt, err := s.waitWithTimeout(ctx, s.RealpathAsync(path))
	if err != nil {
		return "", err
	}
	return responseToPath(pkt, path)
}

func (s *Session) Rename(ctx context.Context, oldPath, newPath string) error {
	pkt, err := s.waitWithTimeout(ctx, s.RenameAsync(oldPath, newPath))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, oldPath)
}

func (s *Session) Readlink(ctx context.Context, path string) (string, error) {
	pkt, err := s.waitWithTimeout(ctx, s.ReadlinkAsync(path))
	if err != nil {
		return "", err
	}
	return responseToPath(pkt, path)
}

func (s *Session) Symlink(ctx context.Context, linkPath, targetPath string) error {
	pkt, err := s.waitWithTimeout(ctx, s.SymlinkAsync(linkPath, targetPath))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, linkPath)
}

func (s *Session) PosixRename(ctx context.Context, oldPath, newPath string) error {
	if !s.hasExtension("posix-rename@openssh.com") {
		return &UnsupportedError{Msg: "posix-rename@openssh.com not advertised by server"}
	}
	pkt, err := s.waitWithTimeout(ctx, s.PosixRenameAsync(oldPath, newPath))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, oldPath)
}

func (s *Session) Hardlink(ctx context.Context, oldPath, newPath string) error {
	if !s.hasExtension("hardlink@openssh.com") {
		return &UnsupportedError{Msg: "hardlink@openssh.com not advertised by server"}
	}
	pkt, err := s.waitWithTimeout(ctx, s.HardlinkAsync(oldPath, newPath))
	if err != nil {
		return err
	}
	return responseToStatus(pkt, oldPath)
}

func (s *Session) Statvfs(ctx context.Context, path string) (*StatVFS, error) {
	if !s.hasExtension("statvfs@openssh.com") {
		return nil, &UnsupportedError{Msg: "statvfs@openssh.com not advertised by server"}
	}
	pkt, err := s.waitWithTimeout(ctx, s.StatvfsAsync(path))
	if err != nil {
		return nil, err
	}
	return responseToStatVFS(pkt, path)
}

func (s *Session) Fstatvfs(ctx context.Context, handle string) (*StatVFS, error) {
	if !s.hasExtension("fstatvfs@openssh.com") {
		return nil, &UnsupportedError{Msg: "fstatvfs@openssh.com not advertised by server"}
	}
	pkt, err := s.waitWithTimeout(ctx, s.FstatvfsAsync(handle))
	if err != nil {
		return nil, err
	}
	return responseToStatVFS(pkt, handle)
}

// ---- response decoding helpers ---------------------------------------

func responseToHandle(pkt wirePacket, path string) (string, error) {
	switch p := pkt.(type) {
	case *handlePkt:
		return p.Handle, nil
	case *statusPkt:
		return "", errFromStatus(p.Code, p.Msg, path)
	default:
		return "", &ProtocolError{Msg: "unexpected response, wanted HANDLE"}
	}
}

func responseToStatus(pkt wirePacket, path string) error {
	p, ok := pkt.(*statusPkt)
	if !ok {
		return &ProtocolError{Msg: "unexpected response, wanted STATUS"}
	}
	return errFromStatus(p.Code, p.Msg, path)
}

func responseToAttrs(pkt wirePacket, path string) (*FileAttributes, error) {
	switch p := pkt.(type) {
	case *attrsPkt:
		return p.Attrs, nil
	case *statusPkt:
		return nil, errFromStatus(p.Code, p.Msg, path)
	default:
		return nil, &ProtocolError{Msg: "unexpected response, wanted ATTRS"}
	}
}

func responseToPath(pkt wirePacket, path string) (string, error) {
	switch p := pkt.(type) {
	case *namePkt:
		if len(p.Entries) == 0 {
			return "", &ProtocolError{Msg: "NAME response with no entries"}
		}
		return p.Entries[0].Filename, nil
	case *statusPkt:
		return "", errFromStatus(p.Code, p.Msg, path)
	default:
		return "", &ProtocolError{Msg: "unexpected response, wanted NAME"}
	}
}

func responseToStatVFS(pkt wirePacket, path string) (*StatVFS, error) {
	switch p := pkt.(type) {
	case *extendedReplyPkt:
		return decodeStatVFS(p.Payload)
	case *statusPkt:
		return nil, errFromStatus(p.Code, p.Msg, path)
	default:
		return nil, &ProtocolError{Msg: "unexpected response, wanted EXTENDED_REPLY"}
	}
}
