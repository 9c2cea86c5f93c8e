package sftp

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// seedPolicy selects how a freshly constructed Reader's pending-request
// window starts out.
type seedPolicy int

const (
	seedOpportunistic seedPolicy = iota
	seedWholeFile
)

type inflightRead struct {
	offset uint64
	count  uint32
	future *Future
}

// Reader is the bounded, growing pipeline of in-flight READ requests. It
// converts a sequential byte consumer into a pipelined requester that
// keeps up to currentCap READ calls in flight, so round-trip latency
// hides behind bandwidth.
type Reader struct {
	session *Session
	handle  string

	chunkSize  int
	maxPending int
	currentCap int

	currentOffset   uint64
	readAheadOffset uint64

	inflight map[uint64]*inflightRead

	knownSize *int64

	latchedErr error
	disposed   bool

	cancel context.CancelFunc
	ctx    context.Context
}

func newReader(session *Session, handle string, startOffset uint64, chunkSize, maxPending int, knownSize *int64, policy seedPolicy) *Reader {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reader{
		session:         session,
		handle:          handle,
		chunkSize:       chunkSize,
		maxPending:      maxPending,
		currentOffset:   startOffset,
		readAheadOffset: startOffset,
		inflight:        make(map[uint64]*inflightRead),
		knownSize:       knownSize,
		ctx:             ctx,
		cancel:          cancel,
	}
	r.currentCap = 1
	if policy == seedWholeFile && knownSize != nil {
		remaining := *knownSize - int64(startOffset)
		if remaining < 0 {
			remaining = 0
		}
		cap64 := 2 + ceilDiv(remaining, int64(chunkSize))
		if cap64 > int64(maxPending) {
			cap64 = int64(maxPending)
		}
		if cap64 < 1 {
			cap64 = 1
		}
		r.currentCap = int(cap64)
	}
	return r
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func (r *Reader) issue(offset uint64, count int) {
	f := r.session.ReadAsync(r.handle, offset, uint32(count))
	r.inflight[offset] = &inflightRead{offset: offset, count: uint32(count), future: f}
}

func (r *Reader) fillToCapacity() {
	for len(r.inflight) < r.currentCap {
		r.issue(r.readAheadOffset, r.chunkSize)
		r.readAheadOffset += uint64(r.chunkSize)
	}
}

// ReadNext returns the next chunk of pipelined bytes, or an empty slice
// at EOF. Once EOF (or an error other than the caller's own
// cancellation) has been observed, every subsequent call returns the
// same outcome without issuing new requests. A cancellation of ctx is
// returned without being latched, so a later call proceeds normally.
func (r *Reader) ReadNext(ctx context.Context) ([]byte, error) {
	if r.latchedErr != nil {
		return nil, r.latchedErr
	}
	if r.currentCap == 0 {
		return nil, nil
	}

	r.fillToCapacity()

	head, ok := r.inflight[r.currentOffset]
	if !ok {
		err := &ProtocolError{Msg: "pipelined reader lost track of its head request"}
		r.latch(err)
		return nil, err
	}

	data, err := r.awaitAndDecode(ctx, head)
	if err != nil {
		if isCallerCancellation(ctx, err) {
			return nil, err
		}
		r.latch(err)
		return nil, err
	}
	delete(r.inflight, r.currentOffset)

	if len(data) == 0 {
		r.currentCap = 0
		return nil, nil
	}

	if uint32(len(data)) < head.count {
		return r.handleShortRead(ctx, data, head), nil
	}

	r.currentOffset += uint64(len(data))
	r.growWindow()
	return data, nil
}

// handleShortRead handles a READ response with fewer bytes than
// requested: fill the gap with a targeted request (or, if we've reached
// the known end of file and the next chunk is already in flight and
// empty, short-circuit straight to EOF without an extra round trip).
func (r *Reader) handleShortRead(ctx context.Context, data []byte, head *inflightRead) []byte {
	r.currentOffset += uint64(len(data))

	if r.knownSize != nil && uint64(*r.knownSize) == r.currentOffset {
		if next, ok := r.inflight[r.currentOffset]; ok {
			nextData, err := r.awaitAndDecode(ctx, next)
			if err == nil && len(nextData) == 0 {
				delete(r.inflight, r.currentOffset)
				r.currentCap = 0
				return data
			}
		}
	}

	missing := int(head.count) - len(data)
	r.issue(r.currentOffset, missing)

	if uint32(len(data)) < uint32(r.chunkSize) {
		newChunk := len(data)
		if newChunk < 512 {
			newChunk = 512
		}
		r.chunkSize = newChunk
	}

	r.growWindow()
	return data
}

// growWindow widens the pending-request window by one after each
// non-empty read (full or short), but collapses it back to 1 once
// read-ahead has run more than one chunk past the known end of file.
func (r *Reader) growWindow() {
	if r.currentCap <= 0 {
		return
	}
	if r.knownSize != nil && r.readAheadOffset > uint64(*r.knownSize)+uint64(r.chunkSize) {
		r.currentCap = 1
		return
	}
	if r.currentCap < r.maxPending {
		r.currentCap++
	}
}

func (r *Reader) awaitAndDecode(ctx context.Context, req *inflightRead) ([]byte, error) {
	merged, cancel := mergeContexts(ctx, r.ctx)
	defer cancel()
	pkt, err := req.future.Wait(merged)
	return decodeReadResponse(pkt, err)
}

func (r *Reader) latch(err error) {
	if r.latchedErr == nil {
		r.latchedErr = err
	}
	r.currentCap = 0
}

func isCallerCancellation(ctx context.Context, err error) bool {
	_, ok := err.(*CancelledError)
	return ok && ctx.Err() != nil
}

// Dispose cancels the reader's own context (aborting any in-progress
// await) and drains every outstanding request concurrently via
// golang.org/x/sync/errgroup, observing (and discarding) their errors so
// none leak as unhandled.
func (r *Reader) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	if r.latchedErr == nil {
		r.latchedErr = &DisposedError{What: "reader"}
	}
	r.currentCap = 0
	r.cancel()

	var g errgroup.Group
	for _, req := range r.inflight {
		req := req
		g.Go(func() error {
			_, _ = req.future.Wait(context.Background())
			return nil
		})
	}
	_ = g.Wait()
	r.inflight = make(map[uint64]*inflightRead)
}

// mergeContexts returns a context done when either a or b is done, and a
// cancel func the caller must invoke once done waiting on it to release
// the background goroutine.
func mergeContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	go func() {
		select {
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
