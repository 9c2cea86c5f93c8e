package sftp

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// Transport is the minimal collaborator interface a Session needs from
// whatever already-open SSH channel carries the SFTP subsystem. The
// session never assumes anything about the transport beyond reliable,
// ordered, framed byte delivery inside one channel.
type Transport interface {
	// SendBytes writes a fully-framed SFTP packet to the channel. The
	// session never issues two concurrent calls that must interleave.
	SendBytes(b []byte) error

	// OnChannelData registers the callback invoked with every inbound
	// byte blob. It is called at most once; the session calls it during
	// construction.
	OnChannelData(fn func([]byte))

	// OnClosed registers the callback invoked once the transport closes,
	// for whatever reason (peer hangup, local Close, underlying error).
	OnClosed(fn func(error))

	LocalPacketSize() uint32
	RemotePacketSize() uint32
	IsOpen() bool
	Close() error
}

// SSHChannelTransport adapts an already-open golang.org/x/crypto/ssh.Channel
// (running the "sftp" subsystem) to Transport. This is the one place in
// the package that imports anything SSH-specific; the rest of the
// package only ever sees the Transport interface.
type SSHChannelTransport struct {
	ch ssh.Channel

	mu                sync.Mutex
	localPacketSize   uint32
	remotePacketSize  uint32
	open              bool
	onData            func([]byte)
	onClosed          func(error)
}

// NewSSHChannelTransport wraps ch, starting a background goroutine that
// pumps ch.Read into the registered OnChannelData callback until ch
// closes or read fails. packetSize is the value both LocalPacketSize and
// RemotePacketSize report.
func NewSSHChannelTransport(ch ssh.Channel, packetSize uint32) *SSHChannelTransport {
	t := &SSHChannelTransport{
		ch:               ch,
		localPacketSize:  packetSize,
		remotePacketSize: packetSize,
		open:             true,
	}
	go t.pump()
	return t
}

func (t *SSHChannelTransport) pump() {
	buf := make([]byte, 32*1024)
	for {
		n, err := t.ch.Read(buf)
		if n > 0 {
			t.mu.Lock()
			onData := t.onData
			t.mu.Unlock()
			if onData != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onData(chunk)
			}
		}
		if err != nil {
			t.mu.Lock()
			t.open = false
			onClosed := t.onClosed
			t.mu.Unlock()
			if onClosed != nil {
				if err == io.EOF {
					err = nil
				}
				onClosed(err)
			}
			return
		}
	}
}

func (t *SSHChannelTransport) SendBytes(b []byte) error {
	t.mu.Lock()
	open := t.open
	t.mu.Unlock()
	if !open {
		return &ConnectionClosedError{}
	}
	_, err := t.ch.Write(b)
	return errors.Wrap(err, "sftp: channel write failed")
}

func (t *SSHChannelTransport) OnChannelData(fn func([]byte)) {
	t.mu.Lock()
	t.onData = fn
	t.mu.Unlock()
}

func (t *SSHChannelTransport) OnClosed(fn func(error)) {
	t.mu.Lock()
	t.onClosed = fn
	t.mu.Unlock()
}

func (t *SSHChannelTransport) LocalPacketSize() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localPacketSize
}

func (t *SSHChannelTransport) RemotePacketSize() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remotePacketSize
}

func (t *SSHChannelTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *SSHChannelTransport) Close() error {
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
	return errors.Wrap(t.ch.Close(), "sftp: channel close failed")
}
