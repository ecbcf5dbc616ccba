// Package talus implements an embedded, single-node, ordered key-value
// storage engine structured as a log-structured merge tree: writes land in
// an in-memory skip list and a write-ahead log, and are periodically
// flushed to immutable on-disk segments that are later compacted.
package talus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"talus/internal/memtable"
	"talus/internal/sstable"
	"talus/internal/walog"
	"talus/pkg/kverrors"
	"talus/pkg/options"
)

const walFileName = "recovery.wal"

// Engine is the coordinator that owns the memtable, the WAL, and the
// ordered registry of segment readers. It routes Put and Get, triggers a
// flush when the memtable threshold is reached, and manages lifecycle.
//
// Engine is single-threaded cooperative: Put, Get, Flush, and Close are not
// safe for concurrent invocation on the same instance. External
// synchronization is required if an Engine is shared across goroutines.
type Engine struct {
	opts options.Options
	log  *zap.SugaredLogger

	mem *memtable.Memtable
	wal *walog.WAL
	// segments is the registry of open segment readers, oldest first. A
	// segment's index is its age rank; reads consult it newest-first.
	segments []*sstable.Reader

	idNode *snowflake.Node
	closed bool
}

// Open ensures dir exists, constructs an empty memtable, opens (or
// creates) the WAL file for appending, discovers and registers any
// pre-existing segments in the directory in creation order, and returns a
// ready Engine.
func Open(dir string, memtableThreshold int, opts ...options.Option) (*Engine, error) {
	if dir == "" {
		return nil, kverrors.New(kverrors.ErrorCodeInvalidArgument, "talus.Open", errors.New("empty directory path"))
	}
	if memtableThreshold <= 0 {
		return nil, kverrors.New(kverrors.ErrorCodeInvalidArgument, "talus.Open", errors.New("memtable_threshold must be positive"))
	}

	all := append([]options.Option{
		options.WithDefaults(),
		options.WithDirPath(dir),
		options.WithMemtableThreshold(memtableThreshold),
	}, opts...)
	cfg := options.New(all...)

	if err := os.MkdirAll(cfg.DirPath, 0755); err != nil {
		return nil, kverrors.New(kverrors.ErrorCodeIO, "talus.Open", err).WithPath(cfg.DirPath)
	}

	sugar := cfg.Logger
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}

	idNode, err := snowflake.NewNode(0)
	if err != nil {
		sugar.Sync()
		return nil, kverrors.New(kverrors.ErrorCodeIO, "talus.Open", err)
	}

	w, err := walog.Open(filepath.Join(cfg.DirPath, walFileName))
	if err != nil {
		sugar.Sync()
		return nil, err
	}

	segments, err := discoverSegments(cfg.DirPath)
	if err != nil {
		w.Close()
		sugar.Sync()
		return nil, err
	}

	e := &Engine{
		opts:     cfg,
		log:      sugar,
		mem:      memtable.New(cfg.P, cfg.MaxLevel),
		wal:      w,
		segments: segments,
		idNode:   idNode,
	}
	e.log.Infow("engine opened", "dir", cfg.DirPath, "segments", len(segments), "threshold", cfg.MemtableThreshold)
	return e, nil
}

// discoverSegments opens a reader for every *.sst file in dir, in
// lexicographic (and therefore creation) order, oldest first.
func discoverSegments(dir string) ([]*sstable.Reader, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.sst"))
	if err != nil {
		return nil, kverrors.New(kverrors.ErrorCodeIO, "talus.discoverSegments", err).WithPath(dir)
	}
	sort.Strings(matches)

	readers := make([]*sstable.Reader, 0, len(matches))
	for _, path := range matches {
		r, err := sstable.Open(path)
		if err != nil {
			for _, opened := range readers {
				opened.Close()
			}
			return nil, err
		}
		readers = append(readers, r)
	}
	return readers, nil
}

// Put appends the record to the WAL with durable writes per the engine's
// configuration, inserts it into the memtable, and triggers a flush if the
// memtable's entry count has reached the configured threshold. A WAL
// append failure leaves the memtable untouched.
func (e *Engine) Put(key, value []byte) error {
	if e.closed {
		return kverrors.ErrClosed
	}

	if err := e.wal.Append(key, value, e.opts.DurableWrites); err != nil {
		return err
	}
	e.mem.Insert(key, value)

	if e.mem.Len() >= e.opts.MemtableThreshold {
		return e.Flush()
	}
	return nil
}

// Get looks up key in the memtable first; on a miss it scans the segment
// registry newest-first, returning the first hit. It returns
// kverrors.ErrNotFound only once every segment has been exhausted.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed {
		return nil, kverrors.ErrClosed
	}

	if v, ok := e.mem.Search(key); ok {
		return v, nil
	}

	for i := len(e.segments) - 1; i >= 0; i-- {
		v, ok, err := e.segments[i].Search(key)
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
	}
	return nil, kverrors.ErrNotFound
}

// Flush is a no-op if the memtable is empty. Otherwise it writes the
// memtable's ordered contents to a new segment file, opens a reader on it
// and appends that reader to the registry, replaces the memtable with a
// fresh empty one, and rolls the WAL.
func (e *Engine) Flush() error {
	if e.closed {
		return kverrors.ErrClosed
	}
	if e.mem.Len() == 0 {
		return nil
	}

	name := fmt.Sprintf("%020d.sst", e.idNode.Generate().Int64())
	path := filepath.Join(e.opts.DirPath, name)
	records := e.mem.Len()
	e.log.Infow("flush starting", "segment", path, "records", records)

	if err := sstable.Write(path, e.mem.All()); err != nil {
		return err
	}

	reader, err := sstable.Open(path)
	if err != nil {
		// The segment is on disk but unreadable: per spec this is fatal,
		// the flushed data would otherwise be invisible.
		return err
	}

	if err := e.wal.Roll(); err != nil {
		reader.Close()
		return err
	}

	e.segments = append(e.segments, reader)
	e.mem = memtable.New(e.opts.P, e.opts.MaxLevel)
	e.log.Infow("flush complete", "segment", path, "records", records)
	return nil
}

// Close closes the WAL handle and every segment reader. It does not flush
// the memtable; any data held only there is not recoverable through this
// Engine (the spec does not implement WAL replay on open).
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if err := e.wal.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, r := range e.segments {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.log.Infow("engine closed", "dir", e.opts.DirPath, "segments", len(e.segments))
	e.log.Sync()

	if len(errs) > 0 {
		return kverrors.New(kverrors.ErrorCodeIO, "talus.Close", errors.Join(errs...))
	}
	return nil
}
