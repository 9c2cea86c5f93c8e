package sftp

import "sync"

// pendingRequest is one in-flight request's completion state. onDone is
// invoked exactly once, outside any lock, with either a decoded response
// packet or an error.
type pendingRequest struct {
	id     uint32
	onDone func(wirePacket, error)
}

// pendingTable is the session's mutex-guarded map from request id to its
// pending callback. Insertion, lookup and removal all happen under the
// same lock; callbacks always run outside it.
type pendingTable struct {
	mu      sync.Mutex
	entries map[uint32]*pendingRequest
	closed  bool
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uint32]*pendingRequest)}
}

// insert registers a new pending request. It fails if the table has
// already been torn down (the session is closed).
func (t *pendingTable) insert(id uint32, onDone func(wirePacket, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return &ConnectionClosedError{}
	}
	t.entries[id] = &pendingRequest{id: id, onDone: onDone}
	return nil
}

// complete looks up and removes the entry for id, then returns its
// callback for the caller to invoke outside the lock. A missing id
// returns nil; the caller treats that as a protocol violation.
func (t *pendingTable) complete(id uint32) func(wirePacket, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[id]
	if !ok {
		return nil
	}
	delete(t.entries, id)
	return p.onDone
}

// teardown marks the table closed and returns every still-pending
// callback, for the caller to invoke outside the lock with a
// connection-closed error. Safe to call more than once; subsequent calls
// return no callbacks.
func (t *pendingTable) teardown() []func(wirePacket, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	out := make([]func(wirePacket, error), 0, len(t.entries))
	for _, p := range t.entries {
		out = append(out, p.onDone)
	}
	t.entries = make(map[uint32]*pendingRequest)
	return out
}
