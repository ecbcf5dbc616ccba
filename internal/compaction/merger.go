// Package compaction merges several segments, ordered oldest to newest,
// into a single replacement segment that keeps only the newest value per
// key.
package compaction

import (
	"bytes"
	"container/heap"

	"talus/internal/record"
	"talus/internal/sstable"
	"talus/pkg/kverrors"
)

// Merge opens a reader for each input (oldest first), k-way merges them by
// key with ties broken toward the newest input, and writes the result to
// outputPath via the segment writer. Inputs are never deleted; the caller
// swaps the output into its registry and unlinks the inputs once no reader
// references them.
func Merge(inputs []string, outputPath string) (err error) {
	readers := make([]*sstable.Reader, 0, len(inputs))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	for _, path := range inputs {
		r, oerr := sstable.Open(path)
		if oerr != nil {
			return oerr
		}
		readers = append(readers, r)
	}

	it, err := newMergeIterator(readers)
	if err != nil {
		return err
	}

	if werr := sstable.Write(outputPath, it); werr != nil {
		return werr
	}
	return nil
}

// heapItem is one input's current head record, tagged with the input's
// rank (its position in the oldest-to-newest input list).
type heapItem struct {
	pair record.Pair
	rank int
	src  record.Iterator
}

// mergeHeap orders by (key asc, rank asc), so that for equal keys the
// newest-rank item is popped last — exactly the order the caller wants
// to see in order to keep the last-seen value on a duplicate key.
type mergeHeap []*heapItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if c := bytes.Compare(h[i].pair.Key, h[j].pair.Key); c != 0 {
		return c < 0
	}
	return h[i].rank < h[j].rank
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)        { *h = append(*h, x.(*heapItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeIterator is a record.Iterator over the deduplicated, newest-wins
// k-way merge of its input readers' ordered streams.
type mergeIterator struct {
	h *mergeHeap
}

func newMergeIterator(readers []*sstable.Reader) (*mergeIterator, error) {
	h := &mergeHeap{}
	heap.Init(h)
	for rank, r := range readers {
		if err := pushNext(h, r.All(), rank); err != nil {
			return nil, err
		}
	}
	return &mergeIterator{h: h}, nil
}

func pushNext(h *mergeHeap, src record.Iterator, rank int) error {
	pair, ok, err := src.Next()
	if err != nil {
		return kverrors.New(kverrors.ErrorCodeCorrupt, "compaction.Merge", err)
	}
	if !ok {
		return nil
	}
	heap.Push(h, &heapItem{pair: pair, rank: rank, src: src})
	return nil
}

// Next returns the next unique key in ascending order with its newest
// value, collapsing any duplicate keys across inputs by keeping the
// highest-rank (newest) one seen.
func (m *mergeIterator) Next() (record.Pair, bool, error) {
	if m.h.Len() == 0 {
		return record.Pair{}, false, nil
	}

	top := heap.Pop(m.h).(*heapItem)
	key := top.pair.Key
	value := top.pair.Value

	if err := pushNext(m.h, top.src, top.rank); err != nil {
		return record.Pair{}, false, err
	}

	for m.h.Len() > 0 && bytes.Equal((*m.h)[0].pair.Key, key) {
		next := heap.Pop(m.h).(*heapItem)
		value = next.pair.Value
		if err := pushNext(m.h, next.src, next.rank); err != nil {
			return record.Pair{}, false, err
		}
	}

	return record.Pair{Key: key, Value: value}, true, nil
}
