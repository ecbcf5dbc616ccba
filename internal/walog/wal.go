// Package walog implements the append-only write-ahead log that makes each
// put crash-durable before the engine acknowledges it.
package walog

import (
	"bufio"
	"os"

	"talus/internal/record"
	"talus/pkg/kverrors"
)

// WAL is the engine's single-writer append log. It owns one open file
// handle at a time; Roll closes, truncates, and reopens it.
type WAL struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// Open creates path if absent and positions the file for appending.
func Open(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, kverrors.New(kverrors.ErrorCodeIO, "walog.Open", err).WithPath(path)
	}
	return &WAL{path: path, file: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one encoded record to the log. When durable is true, the
// record is forced to stable storage (buffered flush, then fsync) before
// Append returns.
func (w *WAL) Append(key, value []byte, durable bool) error {
	buf := record.Encode(key, value)
	if _, err := w.w.Write(buf); err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "walog.Append", err).WithPath(w.path)
	}
	if durable {
		if err := w.w.Flush(); err != nil {
			return kverrors.New(kverrors.ErrorCodeIO, "walog.Append", err).WithPath(w.path)
		}
		if err := w.file.Sync(); err != nil {
			return kverrors.New(kverrors.ErrorCodeIO, "walog.Append", err).WithPath(w.path)
		}
	}
	return nil
}

// Roll truncates the log to empty and reopens it for appending. Called
// immediately after a successful flush moves the memtable's contents into a
// segment.
func (w *WAL) Roll() error {
	if err := w.w.Flush(); err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "walog.Roll", err).WithPath(w.path)
	}
	if err := w.file.Close(); err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "walog.Roll", err).WithPath(w.path)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "walog.Roll", err).WithPath(w.path)
	}
	w.file = f
	w.w = bufio.NewWriter(f)
	return nil
}

// Close releases the file handle. It does not force a disk sync of any
// buffered-but-unflushed bytes; callers that need that guarantee should not
// rely on Close for it.
func (w *WAL) Close() error {
	if err := w.w.Flush(); err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "walog.Close", err).WithPath(w.path)
	}
	if err := w.file.Close(); err != nil {
		return kverrors.New(kverrors.ErrorCodeIO, "walog.Close", err).WithPath(w.path)
	}
	return nil
}

// Path returns the log's on-disk path, for tests that need to inspect the
// file's raw bytes.
func (w *WAL) Path() string {
	return w.path
}
