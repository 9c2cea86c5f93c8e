// Package sftp implements the client-facing core of the SSH File Transfer
// Protocol, version 3, as described in
// https://tools.ietf.org/html/draft-ietf-secsh-filexfer-02, plus the
// OpenSSH extensions posix-rename@openssh.com, statvfs@openssh.com,
// fstatvfs@openssh.com and hardlink@openssh.com.
//
// It does not speak SSH itself. A Session is handed a Transport — an
// already-open SSH channel, or anything that looks like one — and takes
// care of framing, request/response correlation, version negotiation and
// path canonicalization on top of it. FileStream and the pipelined reader
// layer buffered, seekable, read-ahead I/O on top of a Session's single-
// request primitives.
package sftp

// ProtocolVersion is the highest SFTP version this package speaks.
const ProtocolVersion = 3

// Message numbers, as assigned by draft-ietf-secsh-filexfer-02 section 3.
const (
	fxpInit          = 1
	fxpVersion       = 2
	fxpOpen          = 3
	fxpClose         = 4
	fxpRead          = 5
	fxpWrite         = 6
	fxpLstat         = 7
	fxpFstat         = 8
	fxpSetstat       = 9
	fxpFsetstat      = 10
	fxpOpendir       = 11
	fxpReaddir       = 12
	fxpRemove        = 13
	fxpMkdir         = 14
	fxpRmdir         = 15
	fxpRealpath      = 16
	fxpStat          = 17
	fxpRename        = 18
	fxpReadlink      = 19
	fxpSymlink       = 20
	fxpStatus        = 101
	fxpHandle        = 102
	fxpData          = 103
	fxpName          = 104
	fxpAttrs         = 105
	fxpExtended      = 200
	fxpExtendedReply = 201
)

// fxp is an SFTP message type, used only for logging/error messages.
type fxp uint8

func (f fxp) String() string {
	switch f {
	case fxpInit:
		return "SSH_FXP_INIT"
	case fxpVersion:
		return "SSH_FXP_VERSION"
	case fxpOpen:
		return "SSH_FXP_OPEN"
	case fxpClose:
		return "SSH_FXP_CLOSE"
	case fxpRead:
		return "SSH_FXP_READ"
	case fxpWrite:
		return "SSH_FXP_WRITE"
	case fxpLstat:
		return "SSH_FXP_LSTAT"
	case fxpFstat:
		return "SSH_FXP_FSTAT"
	case fxpSetstat:
		return "SSH_FXP_SETSTAT"
	case fxpFsetstat:
		return "SSH_FXP_FSETSTAT"
	case fxpOpendir:
		return "SSH_FXP_OPENDIR"
	case fxpReaddir:
		return "SSH_FXP_READDIR"
	case fxpRemove:
		return "SSH_FXP_REMOVE"
	case fxpMkdir:
		return "SSH_FXP_MKDIR"
	case fxpRmdir:
		return "SSH_FXP_RMDIR"
	case fxpRealpath:
		return "SSH_FXP_REALPATH"
	case fxpStat:
		return "SSH_FXP_STAT"
	case fxpRename:
		return "SSH_FXP_RENAME"
	case fxpReadlink:
		return "SSH_FXP_READLINK"
	case fxpSymlink:
		return "SSH_FXP_SYMLINK"
	case fxpStatus:
		return "SSH_FXP_STATUS"
	case fxpHandle:
		return "SSH_FXP_HANDLE"
	case fxpData:
		return "SSH_FXP_DATA"
	case fxpName:
		return "SSH_FXP_NAME"
	case fxpAttrs:
		return "SSH_FXP_ATTRS"
	case fxpExtended:
		return "SSH_FXP_EXTENDED"
	case fxpExtendedReply:
		return "SSH_FXP_EXTENDED_REPLY"
	default:
		return "SSH_FXP_UNKNOWN"
	}
}

// Status codes, as carried by SSH_FXP_STATUS responses.
const (
	fxOK               = 0
	fxEOF              = 1
	fxNoSuchFile       = 2
	fxPermissionDenied = 3
	fxFailure          = 4
	fxBadMessage       = 5
	fxNoConnection     = 6
	fxConnectionLost   = 7
	fxOpUnsupported    = 8
)

type fx uint32

func (f fx) String() string {
	switch f {
	case fxOK:
		return "SSH_FX_OK"
	case fxEOF:
		return "SSH_FX_EOF"
	case fxNoSuchFile:
		return "SSH_FX_NO_SUCH_FILE"
	case fxPermissionDenied:
		return "SSH_FX_PERMISSION_DENIED"
	case fxFailure:
		return "SSH_FX_FAILURE"
	case fxBadMessage:
		return "SSH_FX_BAD_MESSAGE"
	case fxNoConnection:
		return "SSH_FX_NO_CONNECTION"
	case fxConnectionLost:
		return "SSH_FX_CONNECTION_LOST"
	case fxOpUnsupported:
		return "SSH_FX_OP_UNSUPPORTED"
	default:
		return "SSH_FX_UNKNOWN"
	}
}

// defaultStatusMessage gives a human-readable sentence for the well-known
// status codes; anything else stringifies the code itself.
func defaultStatusMessage(code uint32) string {
	switch code {
	case fxOK:
		return "no error"
	case fxNoSuchFile:
		return "no such file or directory"
	case fxPermissionDenied:
		return "permission denied"
	case fxFailure:
		return "an SFTP failure occurred"
	case fxBadMessage:
		return "a badly formatted packet or protocol incompatibility occurred"
	case fxOpUnsupported:
		return "operation unsupported"
	default:
		return fx(code).String()
	}
}

// pflag holds the bit flags carried on an SSH_FXP_OPEN request
// (draft-ietf-secsh-filexfer-02 section 6.3).
type pflag uint32

const (
	pflagRead = pflag(1 << iota)
	pflagWrite
	pflagAppend
	pflagCreate
	pflagTruncate
	pflagExclusive
)
