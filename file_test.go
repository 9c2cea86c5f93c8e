package sftp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToOpenFlagsRejectsZeroAccess(t *testing.T) {
	_, err := OpenOptions{Mode: ModeOpen}.toOpenFlags()
	require.Error(t, err)
	_, ok := err.(*ArgumentError)
	require.True(t, ok)
}

func TestToOpenFlagsRejectsAppendWithReadAccess(t *testing.T) {
	_, err := OpenOptions{Mode: ModeAppend, Access: AccessReadWrite}.toOpenFlags()
	require.Error(t, err)
	_, ok := err.(*ArgumentError)
	require.True(t, ok)
}

func TestToOpenFlagsRejectsReadAccessWithCreateMode(t *testing.T) {
	for _, mode := range []OpenMode{ModeCreate, ModeCreateNew, ModeTruncate} {
		_, err := OpenOptions{Mode: mode, Access: AccessRead}.toOpenFlags()
		require.Error(t, err, "mode %v should reject read-only access", mode)
		_, ok := err.(*ArgumentError)
		require.True(t, ok)
	}
}

func TestToOpenFlagsMapsReadWrite(t *testing.T) {
	flags, err := OpenOptions{Mode: ModeOpen, Access: AccessReadWrite}.toOpenFlags()
	require.NoError(t, err)
	require.NotZero(t, flags&uint32(pflagRead))
	require.NotZero(t, flags&uint32(pflagWrite))
}

func openStreamForTest(t *testing.T, ft *faketransport, s *Session, access OpenAccess, size int64) *FileStream {
	t.Helper()
	resultCh := make(chan struct {
		fs  *FileStream
		err error
	}, 1)
	go func() {
		fs, err := Open(context.Background(), s, "/f", OpenOptions{Mode: ModeOpen, Access: access})
		resultCh <- struct {
			fs  *FileStream
			err error
		}{fs, err}
	}()

	openRaw := <-ft.sent
	require.Equal(t, byte(fxpOpen), openRaw[4])
	oid := be32(openRaw[5:9])
	ft.deliver(mustMarshal(t, &handlePkt{ID: oid, Handle: "h"}))

	fstatRaw := <-ft.sent
	require.Equal(t, byte(fxpFstat), fstatRaw[4])
	fid := be32(fstatRaw[5:9])
	attrs := NewFileAttributes()
	attrs.SetSize(size)
	ft.deliver(mustMarshal(t, &attrsPkt{ID: fid, Attrs: attrs}))

	res := <-resultCh
	require.NoError(t, res.err)
	return res.fs
}

func TestSeekSlidesCachedReadBuffer(t *testing.T) {
	s, ft := connectSession(t)
	fs := openStreamForTest(t, ft, s, AccessRead, 1000)

	fs.position = 100
	fs.readBuf = make([]byte, 256)
	fs.readBufStart = 100

	newPos, err := fs.Seek(context.Background(), 50, SeekCurrent)
	require.NoError(t, err)
	require.EqualValues(t, 150, newPos)
	require.Len(t, fs.readBuf, 206)
	require.EqualValues(t, 150, fs.readBufStart)

	_, err = fs.Seek(context.Background(), -1, SeekBegin)
	require.Error(t, err)
	_, ok := err.(*ArgumentError)
	require.True(t, ok)

	newPos, err = fs.Seek(context.Background(), 1000, SeekBegin)
	require.NoError(t, err)
	require.EqualValues(t, 1000, newPos)
	require.Empty(t, fs.readBuf)
	require.Nil(t, fs.reader)
}

func TestReadOnWriteOnlyStreamIsUnsupported(t *testing.T) {
	s, ft := connectSession(t)
	fs := openStreamForTest(t, ft, s, AccessWrite, 0)
	_, err := fs.Read(context.Background(), make([]byte, 4))
	require.Error(t, err)
	_, ok := err.(*UnsupportedError)
	require.True(t, ok)
}

func TestWriteOnReadOnlyStreamIsUnsupported(t *testing.T) {
	s, ft := connectSession(t)
	fs := openStreamForTest(t, ft, s, AccessRead, 0)
	_, err := fs.Write(context.Background(), []byte("x"))
	require.Error(t, err)
	_, ok := err.(*UnsupportedError)
	require.True(t, ok)
}

func TestSetLengthRequiresWritableSeekableStream(t *testing.T) {
	s, ft := connectSession(t)
	fs := openStreamForTest(t, ft, s, AccessRead, 0)
	err := fs.SetLength(context.Background(), 10)
	require.Error(t, err)
	_, ok := err.(*UnsupportedError)
	require.True(t, ok)
}

func TestFlushEmptiesWriteBuffer(t *testing.T) {
	s, ft := connectSession(t)
	fs := openStreamForTest(t, ft, s, AccessWrite, 0)

	fs.writeBuf = append(fs.writeBuf, []byte("hello")...)
	fs.position = 5

	errCh := make(chan error, 1)
	go func() { errCh <- fs.Flush(context.Background()) }()

	writeRaw := <-ft.sent
	require.Equal(t, byte(fxpWrite), writeRaw[4])
	wid := be32(writeRaw[5:9])
	ft.deliver(mustMarshal(t, &statusPkt{ID: wid, Code: fxOK}))

	require.NoError(t, <-errCh)
	require.Empty(t, fs.writeBuf)
}

func TestDisposeTwiceIssuesExactlyOneClose(t *testing.T) {
	s, ft := connectSession(t)
	fs := openStreamForTest(t, ft, s, AccessRead, 0)

	errCh := make(chan error, 1)
	go func() { errCh <- fs.Dispose(context.Background()) }()

	closeRaw := <-ft.sent
	require.Equal(t, byte(fxpClose), closeRaw[4])
	cid := be32(closeRaw[5:9])
	ft.deliver(mustMarshal(t, &statusPkt{ID: cid, Code: fxOK}))
	require.NoError(t, <-errCh)

	before := len(ft.sentRaw)
	require.NoError(t, fs.Dispose(context.Background()))
	require.Equal(t, before, len(ft.sentRaw))
}
