package sftp

import "sync"

// faketransport is an in-memory Transport test double, letting the
// multiplexer, file stream and reader be exercised without a real SSH
// channel or server.
type faketransport struct {
	mu       sync.Mutex
	open     bool
	onData   func([]byte)
	onClosed func(error)
	sentRaw  [][]byte
	sent     chan []byte

	localSize, remoteSize uint32
}

func newFakeTransport() *faketransport {
	return &faketransport{
		open:       true,
		sent:       make(chan []byte, 64),
		localSize:  32768,
		remoteSize: 32768,
	}
}

func (t *faketransport) SendBytes(b []byte) error {
	cp := append([]byte(nil), b...)
	t.mu.Lock()
	t.sentRaw = append(t.sentRaw, cp)
	t.mu.Unlock()
	t.sent <- cp
	return nil
}

func (t *faketransport) OnChannelData(fn func([]byte)) {
	t.mu.Lock()
	t.onData = fn
	t.mu.Unlock()
}

func (t *faketransport) OnClosed(fn func(error)) {
	t.mu.Lock()
	t.onClosed = fn
	t.mu.Unlock()
}

func (t *faketransport) LocalPacketSize() uint32 { return t.localSize }
func (t *faketransport) RemotePacketSize() uint32 { return t.remoteSize }

func (t *faketransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *faketransport) Close() error {
	t.mu.Lock()
	wasOpen := t.open
	t.open = false
	onClosed := t.onClosed
	t.mu.Unlock()
	if wasOpen && onClosed != nil {
		onClosed(nil)
	}
	return nil
}

// deliver simulates an inbound channel-data event carrying b (typically
// the MarshalBinary output of a response packet).
func (t *faketransport) deliver(b []byte) {
	t.mu.Lock()
	onData := t.onData
	t.mu.Unlock()
	if onData != nil {
		onData(b)
	}
}

// deliverSplit feeds b to the session in two pieces, to exercise the
// slow-path reassembly buffer.
func (t *faketransport) deliverSplit(b []byte, at int) {
	t.mu.Lock()
	onData := t.onData
	t.mu.Unlock()
	if onData == nil {
		return
	}
	onData(b[:at])
	onData(b[at:])
}
