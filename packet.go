package sftp

import (
	"encoding"
	"encoding/binary"

	"github.com/pkg/errors"
)

var errShortPacket = errors.New("sftp: packet too short")

// allocPkt allocates a buffer holding the 4-byte length prefix and the
// packet type byte, sized so the caller can append dataLen more bytes
// without reallocating.
func allocPkt(pktType byte, dataLen int) []byte {
	b := make([]byte, 0, 5+dataLen)
	b = appendU32(b, uint32(dataLen+1))
	return append(b, pktType)
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendU64(b []byte, v uint64) []byte {
	return appendU32(appendU32(b, uint32(v>>32)), uint32(v))
}

func appendStr(b []byte, v string) []byte {
	return append(appendU32(b, uint32(len(v))), v...)
}

func takeU32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, errShortPacket
	}
	return binary.BigEndian.Uint32(b), b[4:], nil
}

func takeU64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, errShortPacket
	}
	return binary.BigEndian.Uint64(b), b[8:], nil
}

func takeStr(b []byte) (string, []byte, error) {
	n, b, err := takeU32(b)
	if err != nil {
		return "", nil, err
	}
	if uint64(n) > uint64(len(b)) {
		return "", nil, errShortPacket
	}
	return string(b[:n]), b[n:], nil
}

// marshalIDString and unmarshalIDString cover the common shape of a
// uint32 request id followed by a single string (CLOSE, LSTAT, FSTAT,
// STAT, RMDIR, READLINK, REALPATH, OPENDIR, READDIR, REMOVE, HANDLE).
func marshalIDString(pktType byte, id uint32, s string) []byte {
	b := allocPkt(pktType, 4+4+len(s))
	b = appendU32(b, id)
	return appendStr(b, s)
}

func unmarshalIDString(b []byte) (id uint32, s string, err error) {
	if id, b, err = takeU32(b); err != nil {
		return
	}
	s, _, err = takeStr(b)
	return
}

// wirePacket is the interface every packet type the session sends or
// receives implements. id() is 0 for INIT/VERSION, which carry a
// version number instead of a request id.
type wirePacket interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	id() uint32
}
