package sftp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Server statuses, invalid arguments, disposal, session
// teardown, timeouts and cancellation are reported as one of these, so
// callers can errors.As against the concrete type they care about. A
// failure of the transport's send path is returned wrapped via
// github.com/pkg/errors, and a malformed statvfs reply returns the
// decoder's error as is.

// ArgumentError is raised synchronously, before any network I/O, when a
// caller supplies an invalid argument (bad path, bad mode, negative
// buffer size).
type ArgumentError struct {
	Param string
	Msg   string
	Cause error
}

func (e *ArgumentError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("sftp: invalid argument %q", e.Param)
	}
	return fmt.Sprintf("sftp: invalid argument %q: %s", e.Param, e.Msg)
}

func (e *ArgumentError) Unwrap() error { return e.Cause }

func argErr(param, msg string) error { return &ArgumentError{Param: param, Msg: msg} }

// DisposedError is returned by any operation invoked after the owning
// object (Session, FileStream, Reader) has been disposed.
type DisposedError struct {
	What  string
	Cause error
}

func (e *DisposedError) Error() string { return fmt.Sprintf("sftp: %s has been disposed", e.What) }

func (e *DisposedError) Unwrap() error { return e.Cause }

// ConnectionClosedError means there is no underlying session, or the
// session has terminated. Cause is the transport-level error that
// triggered teardown, if any (nil for a caller-initiated close).
type ConnectionClosedError struct {
	Reason string
	Cause  error
}

func (e *ConnectionClosedError) Error() string {
	if e.Reason == "" {
		return "sftp: connection closed"
	}
	return fmt.Sprintf("sftp: connection closed: %s", e.Reason)
}

func (e *ConnectionClosedError) Unwrap() error { return e.Cause }

// PathNotFoundError wraps SSH_FX_NO_SUCH_FILE with the offending path.
type PathNotFoundError struct {
	Path  string
	Msg   string
	Cause error
}

func (e *PathNotFoundError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = defaultStatusMessage(fxNoSuchFile)
	}
	if len(msg) == 0 || msg[len(msg)-1] != '.' {
		msg += "."
	}
	return fmt.Sprintf("sftp: %s Path: '%s'.", msg, e.Path)
}

func (e *PathNotFoundError) Unwrap() error { return e.Cause }

// PermissionDeniedError wraps SSH_FX_PERMISSION_DENIED.
type PermissionDeniedError struct {
	Msg   string
	Cause error
}

func (e *PermissionDeniedError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("sftp: %s", defaultStatusMessage(fxPermissionDenied))
	}
	return fmt.Sprintf("sftp: %s", e.Msg)
}

func (e *PermissionDeniedError) Unwrap() error { return e.Cause }

// StatusError is returned for any SSH_FXP_STATUS response whose code is
// not OK, NO_SUCH_FILE or PERMISSION_DENIED (the last two get the more
// specific types above). READ and READDIR treat EOF as end of data before
// it gets here; any other operation answered with EOF gets a StatusError.
// It carries the raw status code and server message.
type StatusError struct {
	Code  uint32
	Msg   string
	Cause error
}

func (e *StatusError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = defaultStatusMessage(e.Code)
	}
	return fmt.Sprintf("sftp: %s (%s)", msg, fx(e.Code))
}

func (e *StatusError) Unwrap() error { return e.Cause }

// ProtocolError marks a framing violation, an unknown message type, or a
// response whose id has no matching pending request. A ProtocolError
// always ends the Session that produced it. Cause is the underlying
// decode error for a malformed frame, where one exists.
type ProtocolError struct {
	Msg   string
	Cause error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("sftp: protocol error: %s", e.Msg) }

func (e *ProtocolError) Unwrap() error { return e.Cause }

// TimeoutError is raised by a waiter when its operation's configured
// timeout elapses before a response arrives. The underlying request
// remains registered; its eventual response is simply dropped. Cause is
// the context error (context.DeadlineExceeded) that triggered it.
type TimeoutError struct {
	Op    string
	Cause error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("sftp: %s timed out", e.Op) }

func (e *TimeoutError) Unwrap() error { return e.Cause }

// CancelledError is raised when the caller's own cancellation signal
// fires while awaiting a response. Cause is the context error
// (context.Canceled) that triggered it.
type CancelledError struct {
	Op    string
	Cause error
}

func (e *CancelledError) Error() string { return fmt.Sprintf("sftp: %s was cancelled", e.Op) }

func (e *CancelledError) Unwrap() error { return e.Cause }

// UnsupportedError marks an operation that requires an extension the
// server did not advertise, a higher protocol version than was
// negotiated, or a capability the current object does not have (e.g.
// seeking a non-seekable stream).
type UnsupportedError struct {
	Msg   string
	Cause error
}

func (e *UnsupportedError) Error() string { return fmt.Sprintf("sftp: unsupported: %s", e.Msg) }

func (e *UnsupportedError) Unwrap() error { return e.Cause }

// errFromStatus maps a decoded SSH_FXP_STATUS response to the error
// taxonomy above. path is the client's originally-requested path, used
// to enrich PathNotFoundError; it may be empty.
func errFromStatus(code uint32, msg, path string) error {
	switch code {
	case fxOK:
		return nil
	case fxPermissionDenied:
		return &PermissionDeniedError{Msg: msg}
	case fxNoSuchFile:
		return &PathNotFoundError{Path: path, Msg: msg}
	default:
		return &StatusError{Code: code, Msg: msg}
	}
}

// unexpectedPacketErr is returned internally when a response's wire type
// doesn't match what the issuing request expected.
type unexpectedPacketErr struct{ want, got uint8 }

func (u *unexpectedPacketErr) Error() string {
	return fmt.Sprintf("sftp: unexpected packet: want %v, got %v", fxp(u.want), fxp(u.got))
}

func wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
