package treeset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
	"github.com/Sumatoshi-tech/ordmap/pkg/treeset"
)

// Test constants.
const (
	testElem1 = 1
	testElem3 = 3
	testElem7 = 7
	testElem9 = 9
)

func TestEmptySet(t *testing.T) {
	t.Parallel()

	set := treeset.NewOrdered[int]()

	assert.True(t, set.IsEmpty())
	assert.Equal(t, 0, set.Size())
	assert.Empty(t, set.Values())

	_, ok := set.Min()
	assert.False(t, ok)

	_, ok = set.Max()
	assert.False(t, ok)

	require.NoError(t, set.Verify())
}

func TestAddRemoveContains(t *testing.T) {
	t.Parallel()

	set := treeset.NewOrdered[int]()

	for _, elem := range []int{testElem7, testElem1, testElem9, testElem3} {
		added, err := set.Add(elem)
		require.NoError(t, err)
		assert.True(t, added)
	}

	added, err := set.Add(testElem7)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, 4, set.Size())
	assert.Equal(t, []int{1, 3, 7, 9}, set.Values())
	assert.True(t, set.Contains(testElem3))
	assert.False(t, set.Contains(4))

	removed, err := set.Remove(testElem3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = set.Remove(testElem3)
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []int{1, 7, 9}, set.Values())
	require.NoError(t, set.Verify())

	minElem, ok := set.Min()
	require.True(t, ok)
	assert.Equal(t, testElem1, minElem)

	maxElem, ok := set.Max()
	require.True(t, ok)
	assert.Equal(t, testElem9, maxElem)

	set.Clear()
	assert.True(t, set.IsEmpty())
}

func TestCustomOrder(t *testing.T) {
	t.Parallel()

	set := treeset.New(rbtree.WithComparator[string, struct{}](func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}))

	for _, word := range []string{"banana", "Apple", "cherry", "APPLE"} {
		_, err := set.Add(word)
		require.NoError(t, err)
	}

	// The second spelling of apple replaced the first.
	assert.Equal(t, []string{"APPLE", "banana", "cherry"}, set.Values())
}

func TestSetTraversalStops(t *testing.T) {
	t.Parallel()

	set := treeset.NewOrdered[int]()
	for elem := range 50 {
		_, err := set.Add(elem)
		require.NoError(t, err)
	}

	var seen []int

	set.Traversal(func(elem int) bool {
		seen = append(seen, elem)

		return len(seen) == 2
	})

	assert.Equal(t, []int{0, 1}, seen)

	var iterated []int

	for elem := range set.All() {
		if elem == 3 {
			break
		}

		iterated = append(iterated, elem)
	}

	assert.Equal(t, []int{0, 1, 2}, iterated)
	assert.NotPanics(t, func() { set.Traversal(nil) })
}

func TestSetErrors(t *testing.T) {
	t.Parallel()

	set := treeset.New[*int]()

	_, err := set.Add(nil)
	require.ErrorIs(t, err, rbtree.ErrInvalidKey)

	_, err = set.Remove(nil)
	require.ErrorIs(t, err, rbtree.ErrInvalidKey)
	assert.False(t, set.Contains(nil))

	type pair struct{ a, b int }

	pairs := treeset.New[pair]()

	_, err = pairs.Add(pair{1, 2})
	require.NoError(t, err)

	_, err = pairs.Add(pair{2, 1})
	require.ErrorIs(t, err, rbtree.ErrIncomparableKey)
}

func TestSetStats(t *testing.T) {
	t.Parallel()

	set := treeset.NewOrdered[int]()
	for elem := range 10 {
		_, err := set.Add(elem)
		require.NoError(t, err)
	}

	stats := set.Stats()
	assert.Equal(t, int64(10), stats.Inserts)
	assert.Equal(t, 10, stats.Size)
}
