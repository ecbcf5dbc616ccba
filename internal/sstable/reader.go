package sstable

import (
	"bytes"

	"golang.org/x/exp/mmap"

	"talus/internal/record"
	"talus/pkg/kverrors"
)

// Reader serves point lookups and ordered iteration against one immutable
// segment file. It memory-maps the file's full extent on open; the mapping
// is safe for concurrent readers as long as the file is never rewritten.
type Reader struct {
	path string
	ra   *mmap.ReaderAt
	data []byte
}

// Open memory-maps path read-only.
func Open(path string) (*Reader, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, kverrors.New(kverrors.ErrorCodeIO, "sstable.Open", err).WithPath(path)
	}

	n := ra.Len()
	buf := make([]byte, n)
	if n > 0 {
		if _, err := ra.ReadAt(buf, 0); err != nil {
			ra.Close()
			return nil, kverrors.New(kverrors.ErrorCodeIO, "sstable.Open", err).WithPath(path)
		}
	}

	return &Reader{path: path, ra: ra, data: buf}, nil
}

// Close unmaps the file and releases its handle.
func (r *Reader) Close() error {
	if err := r.ra.Close(); err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "sstable.Close", err).WithPath(r.path)
	}
	return nil
}

// Path returns the segment's on-disk path.
func (r *Reader) Path() string {
	return r.path
}

// Search scans the segment from offset 0, decoding frames in order. It
// returns on the first key match, or as soon as the current key is
// strictly greater than key (segments are sorted, so key cannot appear
// later).
func (r *Reader) Search(key []byte) ([]byte, bool, error) {
	off := 0
	for off < len(r.data) {
		pair, n, err := record.Decode(r.data[off:])
		if err != nil {
			return nil, false, kverrors.New(kverrors.ErrorCodeCorrupt, "sstable.Search", err).WithPath(r.path)
		}
		switch cmp := bytes.Compare(pair.Key, key); {
		case cmp == 0:
			return pair.Value, true, nil
		case cmp > 0:
			return nil, false, nil
		}
		off += n
	}
	return nil, false, nil
}

// All returns an iterator over every record in the segment, in stored
// order, for use by the compactor.
func (r *Reader) All() record.Iterator {
	return &cursor{data: r.data, path: r.path}
}

type cursor struct {
	data []byte
	off  int
	path string
}

func (c *cursor) Next() (record.Pair, bool, error) {
	if c.off >= len(c.data) {
		return record.Pair{}, false, nil
	}
	pair, n, err := record.Decode(c.data[c.off:])
	if err != nil {
		return record.Pair{}, false, kverrors.New(kverrors.ErrorCodeCorrupt, "sstable.cursor.Next", err).WithPath(c.path)
	}
	c.off += n
	return pair, true, nil
}
