package sftp

import (
	"context"
	"io"
	"strings"
)

// DirIterator lists a remote directory's entries, opening a handle with
// OPENDIR and draining it with repeated READDIR calls. The handle is
// closed on every exit path, including error and cancellation.
type DirIterator struct {
	session *Session
	handle  string
	base    string

	buf    []NameEntry
	idx    int
	atEOF  bool
	closed bool
}

// OpenDir opens path for listing.
func OpenDir(ctx context.Context, session *Session, path string) (*DirIterator, error) {
	handle, err := session.Opendir(ctx, path)
	if err != nil {
		return nil, err
	}
	return &DirIterator{session: session, handle: handle, base: path}, nil
}

func (d *DirIterator) fullPath(name string) string {
	if strings.HasSuffix(d.base, "/") {
		return d.base + name
	}
	return d.base + "/" + name
}

// Next returns the next entry, with Filename rewritten to the full path
// (base + '/' + short name unless base already ends in '/'). It returns
// io.EOF once the listing is exhausted.
func (d *DirIterator) Next(ctx context.Context) (*NameEntry, error) {
	for {
		if d.idx < len(d.buf) {
			e := d.buf[d.idx]
			d.idx++
			e.Filename = d.fullPath(e.Filename)
			return &e, nil
		}
		if d.atEOF {
			return nil, io.EOF
		}

		entries, err := d.session.Readdir(ctx, d.handle)
		if err == io.EOF {
			d.atEOF = true
			_ = d.Close(ctx)
			continue
		}
		if err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		d.buf, d.idx = entries, 0
	}
}

// Close releases the directory handle. Idempotent.
func (d *DirIterator) Close(ctx context.Context) error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.session.CloseHandle(ctx, d.handle)
}
