package compaction

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"talus/internal/record"
	"talus/internal/sstable"
)

type sliceIterator struct {
	pairs []record.Pair
	i     int
}

func (s *sliceIterator) Next() (record.Pair, bool, error) {
	if s.i >= len(s.pairs) {
		return record.Pair{}, false, nil
	}
	p := s.pairs[s.i]
	s.i++
	return p, true, nil
}

func writeSegment(t *testing.T, dir, name string, pairs []record.Pair) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, sstable.Write(path, &sliceIterator{pairs: pairs}))
	return path
}

func TestMergeUnionsDisjointKeys(t *testing.T) {
	dir := t.TempDir()
	a := writeSegment(t, dir, "a.sst", []record.Pair{
		{Key: []byte("alice"), Value: []byte("a")},
	})
	b := writeSegment(t, dir, "b.sst", []record.Pair{
		{Key: []byte("bob"), Value: []byte("b")},
	})

	out := filepath.Join(dir, "merged.sst")
	require.NoError(t, Merge([]string{a, b}, out))

	r, err := sstable.Open(out)
	require.NoError(t, err)
	defer r.Close()

	v, ok, err := r.Search([]byte("alice"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", string(v))

	v, ok, err = r.Search([]byte("bob"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", string(v))
}

func TestMergeNewestWins(t *testing.T) {
	dir := t.TempDir()
	older := writeSegment(t, dir, "older.sst", []record.Pair{
		{Key: []byte("user:1"), Value: []byte("Alice")},
		{Key: []byte("user:2"), Value: []byte("Bob")},
	})
	newer := writeSegment(t, dir, "newer.sst", []record.Pair{
		{Key: []byte("user:1"), Value: []byte("Alice_Updated")},
		{Key: []byte("user:3"), Value: []byte("Charlie")},
	})

	out := filepath.Join(dir, "merged.sst")
	require.NoError(t, Merge([]string{older, newer}, out))

	r, err := sstable.Open(out)
	require.NoError(t, err)
	defer r.Close()

	cases := map[string]string{
		"user:1": "Alice_Updated",
		"user:2": "Bob",
		"user:3": "Charlie",
	}
	for k, want := range cases {
		v, ok, err := r.Search([]byte(k))
		require.NoError(t, err)
		require.True(t, ok, "key %q", k)
		require.Equal(t, want, string(v))
	}

	var keys []string
	it := r.All()
	for {
		p, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, string(p.Key))
	}
	require.Equal(t, []string{"user:1", "user:2", "user:3"}, keys)
}

func TestMergeDoesNotDeleteInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeSegment(t, dir, "a.sst", []record.Pair{{Key: []byte("k"), Value: []byte("v")}})

	out := filepath.Join(dir, "merged.sst")
	require.NoError(t, Merge([]string{a}, out))

	_, err := sstable.Open(a)
	require.NoError(t, err)
}
