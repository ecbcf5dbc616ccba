package skiplist

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndSearch(t *testing.T) {
	s := New(DefaultP, DefaultMaxLevel)

	_, ok := s.Search([]byte("missing"))
	assert.False(t, ok)

	s.Insert([]byte("k"), []byte("a"))
	v, ok := s.Search([]byte("k"))
	require.True(t, ok)
	assert.Equal(t, "a", string(v))

	// Overwrite.
	s.Insert([]byte("k"), []byte("b"))
	v, ok = s.Search([]byte("k"))
	require.True(t, ok)
	assert.Equal(t, "b", string(v))
}

func TestOrderedIteration(t *testing.T) {
	s := New(DefaultP, DefaultMaxLevel)
	s.Insert([]byte("charlie"), []byte("c"))
	s.Insert([]byte("alice"), []byte("a"))
	s.Insert([]byte("bob"), []byte("b"))

	var keys []string
	it := s.All()
	for {
		p, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, string(p.Key))
	}

	assert.Equal(t, []string{"alice", "bob", "charlie"}, keys)
}

func TestIterationVisitsEachKeyOnce(t *testing.T) {
	s := New(DefaultP, DefaultMaxLevel)
	input := map[string]string{}
	for i := 0; i < 500; i++ {
		k := fmt.Sprintf("key-%04d", rand.Intn(200))
		v := fmt.Sprintf("value-%d", i)
		input[k] = v
		s.Insert([]byte(k), []byte(v))
	}

	var keys []string
	seen := map[string]bool{}
	it := s.All()
	for {
		p, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		key := string(p.Key)
		require.False(t, seen[key], "key %q visited twice", key)
		seen[key] = true
		keys = append(keys, key)

		expected, exists := input[key]
		require.True(t, exists)
		assert.Equal(t, expected, string(p.Value))
	}

	assert.True(t, sort.StringsAreSorted(keys))
	assert.Len(t, keys, len(input))
}

func TestDefaultsAppliedForInvalidParams(t *testing.T) {
	s := New(0, 0)
	assert.Equal(t, DefaultP, s.p)
	assert.Equal(t, DefaultMaxLevel, s.maxLevel)
}
