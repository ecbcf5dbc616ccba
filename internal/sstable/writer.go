// Package sstable implements the immutable on-disk segment format: a
// writer that serializes a sorted key stream, and a memory-mapped reader
// that serves point lookups and ordered iteration against it.
package sstable

import (
	"bufio"
	"os"

	"talus/internal/record"
	"talus/pkg/kverrors"
)

// Write consumes a finite, already-sorted, deduplicated stream of pairs and
// writes them to path using the record codec, in stream order, with no
// header, footer, or padding. On any failure the partially written file is
// removed.
func Write(path string, src record.Iterator) (err error) {
	f, openErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if openErr != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "sstable.Write", openErr).WithPath(path)
	}

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	for {
		pair, ok, nerr := src.Next()
		if nerr != nil {
			return kverrors.New(kverrors.ErrorCodeCorrupt, "sstable.Write", nerr).WithPath(path)
		}
		if !ok {
			break
		}
		if _, werr := w.Write(record.Encode(pair.Key, pair.Value)); werr != nil {
			return kverrors.New(kverrors.ErrorCodeIO, "sstable.Write", werr).WithPath(path)
		}
	}

	if ferr := w.Flush(); ferr != nil {
		err = kverrors.New(kverrors.ErrorCodeIO, "sstable.Write", ferr).WithPath(path)
		return err
	}
	if serr := f.Sync(); serr != nil {
		err = kverrors.New(kverrors.ErrorCodeIO, "sstable.Write", serr).WithPath(path)
		return err
	}
	if cerr := f.Close(); cerr != nil {
		err = kverrors.New(kverrors.ErrorCodeIO, "sstable.Write", cerr).WithPath(path)
		return err
	}
	return nil
}
