// Package memtable owns the in-memory skip list that absorbs writes between
// flushes, tracking a live entry count so the engine can cheaply decide when
// a flush is due (spec §4.2 notes an O(1) counter as the natural improvement
// over counting via iteration).
package memtable

import (
	"talus/internal/record"
	"talus/internal/skiplist"
)

// Memtable is a sorted, mutable key/value map. It is frozen by discarding it
// in favor of a new, empty one — there is no in-place "freeze" operation.
type Memtable struct {
	skl   *skiplist.Skiplist
	count int
	bytes int
}

// New constructs an empty memtable backed by a skip list configured with the
// given promotion probability and max level.
func New(p float64, maxLevel int) *Memtable {
	return &Memtable{skl: skiplist.New(p, maxLevel)}
}

// Insert inserts key/value, or overwrites the value in place if key already
// exists.
func (m *Memtable) Insert(key, value []byte) {
	if old, existed := m.skl.Search(key); existed {
		m.bytes += len(value) - len(old)
	} else {
		m.count++
		m.bytes += len(key) + len(value)
	}
	m.skl.Insert(key, value)
}

// Search returns the value stored for key, or ok=false if key is absent.
func (m *Memtable) Search(key []byte) ([]byte, bool) {
	return m.skl.Search(key)
}

// Len returns the number of distinct keys currently held.
func (m *Memtable) Len() int {
	return m.count
}

// Bytes returns the approximate number of key+value bytes held, for
// observability only — it is not used to decide when to flush.
func (m *Memtable) Bytes() int {
	return m.bytes
}

// All returns an iterator over every key/value pair in strictly ascending
// key order, used by flush to stream the memtable into a new segment.
func (m *Memtable) All() record.Iterator {
	return m.skl.All()
}
