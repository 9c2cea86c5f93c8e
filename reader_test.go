package sftp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type readResult struct {
	data []byte
	err  error
}

func popReadRequest(t *testing.T, ft *faketransport) *readPkt {
	t.Helper()
	raw := <-ft.sent
	require.Equal(t, byte(fxpRead), raw[4])
	p := &readPkt{}
	require.NoError(t, p.UnmarshalBinary(raw[5:]))
	return p
}

func respondRead(t *testing.T, ft *faketransport, req *readPkt, data []byte) {
	t.Helper()
	ft.deliver(mustMarshal(t, &dataPkt{ID: req.ID, Data: data}))
}

// Scenario 4: chunk size 4096, max_pending 4, unknown size; the third
// READ comes back short (3072 bytes).
func TestPipelinedShortReadRecovery(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(ft)
	r := newReader(s, "h", 0, 4096, 4, nil, seedOpportunistic)
	ctx := context.Background()

	call := func() <-chan readResult {
		ch := make(chan readResult, 1)
		go func() {
			d, e := r.ReadNext(ctx)
			ch <- readResult{d, e}
		}()
		return ch
	}

	ch1 := call()
	req1 := popReadRequest(t, ft)
	require.EqualValues(t, 0, req1.Offset)
	require.EqualValues(t, 4096, req1.Len)
	respondRead(t, ft, req1, make([]byte, 4096))
	out1 := <-ch1
	require.NoError(t, out1.err)
	require.Len(t, out1.data, 4096)
	require.Equal(t, 2, r.currentCap)

	ch2 := call()
	req2 := popReadRequest(t, ft)
	require.EqualValues(t, 4096, req2.Offset)
	req3 := popReadRequest(t, ft)
	require.EqualValues(t, 8192, req3.Offset)
	respondRead(t, ft, req2, make([]byte, 4096))
	out2 := <-ch2
	require.NoError(t, out2.err)
	require.Equal(t, 3, r.currentCap)

	ch3 := call()
	req4 := popReadRequest(t, ft)
	require.EqualValues(t, 12288, req4.Offset)
	req5 := popReadRequest(t, ft)
	require.EqualValues(t, 16384, req5.Offset)
	respondRead(t, ft, req3, make([]byte, 3072))
	out3 := <-ch3
	require.NoError(t, out3.err)
	require.Len(t, out3.data, 3072)

	gapReq := popReadRequest(t, ft)
	require.EqualValues(t, 11264, gapReq.Offset)
	require.EqualValues(t, 1024, gapReq.Len)

	require.Equal(t, 3072, r.chunkSize)
	require.Equal(t, 4, r.currentCap)
	require.LessOrEqual(t, len(r.inflight), r.currentCap)
}

func TestReaderLatchesEOF(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(ft)
	r := newReader(s, "h", 0, 4096, 4, nil, seedOpportunistic)
	ctx := context.Background()

	ch := make(chan readResult, 1)
	go func() {
		d, e := r.ReadNext(ctx)
		ch <- readResult{d, e}
	}()
	req := popReadRequest(t, ft)
	respondRead(t, ft, req, nil)
	out := <-ch
	require.NoError(t, out.err)
	require.Empty(t, out.data)
	require.Equal(t, 0, r.currentCap)

	before := len(ft.sentRaw)
	data, err := r.ReadNext(ctx)
	require.NoError(t, err)
	require.Empty(t, data)
	require.Equal(t, before, len(ft.sentRaw))
}

func TestWholeFileSeedPolicy(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(ft)
	size := int64(5000)
	r := newReader(s, "h", 0, 4096, 4, &size, seedWholeFile)
	// ceil(5000/4096) = 2, +2 = 4, clamped to max_pending 4.
	require.Equal(t, 4, r.currentCap)
}
