package sftp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenPacketRoundTrip(t *testing.T) {
	attrs := NewFileAttributes()
	attrs.SetSize(42)
	want := &openPkt{ID: 7, Path: "/tmp/x", Pflags: uint32(pflagRead) | uint32(pflagCreate), Attrs: attrs}
	raw, err := want.MarshalBinary()
	require.NoError(t, err)

	got := &openPkt{}
	require.NoError(t, got.UnmarshalBinary(raw[5:]))
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Path, got.Path)
	require.Equal(t, want.Pflags, got.Pflags)
	require.EqualValues(t, 42, got.Attrs.Size())
}

func TestReadWritePacketRoundTrip(t *testing.T) {
	w := &writePkt{ID: 3, Handle: "h", Offset: 1024, Data: []byte("hello")}
	raw, err := w.MarshalBinary()
	require.NoError(t, err)
	got := &writePkt{}
	require.NoError(t, got.UnmarshalBinary(raw[5:]))
	require.Equal(t, w.Handle, got.Handle)
	require.Equal(t, w.Offset, got.Offset)
	require.Equal(t, w.Data, got.Data)
}

func TestNamePacketRoundTrip(t *testing.T) {
	want := &namePkt{ID: 9, Entries: []NameEntry{
		{Filename: "a.txt", Longname: "-rw-r--r-- a.txt", Attrs: NewFileAttributes()},
		{Filename: "b.txt", Longname: "-rw-r--r-- b.txt", Attrs: NewFileAttributes()},
	}}
	raw, err := want.MarshalBinary()
	require.NoError(t, err)
	got := &namePkt{}
	require.NoError(t, got.UnmarshalBinary(raw[5:]))
	require.Len(t, got.Entries, 2)
	require.Equal(t, "a.txt", got.Entries[0].Filename)
	require.Equal(t, "b.txt", got.Entries[1].Filename)
}

func TestStatusPacketRoundTrip(t *testing.T) {
	want := &statusPkt{ID: 5, Code: fxNoSuchFile, Msg: "nope", LangTag: "en"}
	raw, err := want.MarshalBinary()
	require.NoError(t, err)
	got := &statusPkt{}
	require.NoError(t, got.UnmarshalBinary(raw[5:]))
	require.Equal(t, want.Code, got.Code)
	require.Equal(t, want.Msg, got.Msg)
}

func TestDecodeResponseDispatchesByType(t *testing.T) {
	h := &handlePkt{ID: 1, Handle: "abc"}
	raw, err := h.MarshalBinary()
	require.NoError(t, err)

	pkt, err := decodeResponse(raw[4], raw[5:])
	require.NoError(t, err)
	got, ok := pkt.(*handlePkt)
	require.True(t, ok)
	require.Equal(t, "abc", got.Handle)
}

func TestDecodeResponseUnknownTypeIsProtocolError(t *testing.T) {
	_, err := decodeResponse(0xEE, []byte{0, 0, 0, 1})
	require.Error(t, err)
	_, ok := err.(*ProtocolError)
	require.True(t, ok)
}

func TestShortPacketErrors(t *testing.T) {
	_, _, err := takeU32([]byte{0, 1})
	require.ErrorIs(t, err, errShortPacket)

	_, _, err = takeStr([]byte{0, 0, 0, 5, 'h', 'i'})
	require.ErrorIs(t, err, errShortPacket)
}
