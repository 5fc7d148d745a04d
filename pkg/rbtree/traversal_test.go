package rbtree //nolint:testpackage // tests exercise the unexported pre/post-order walks.

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(walk func(Visitor[int, string]), limit int) []int {
	var keys []int

	walk(func(key int, _ string) bool {
		keys = append(keys, key)

		return len(keys) == limit
	})

	return keys
}

func TestTraversalInOrder(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	assert.Equal(t, []int{5, 10, 15, 20, 25, 30}, collect(tree.Traversal, -1))
}

func TestTraversalStopsAfterTwo(t *testing.T) {
	t.Parallel()

	for _, size := range []int{2, 3, 10, 1000} {
		tree := testNewIntMap()
		for key := range size {
			mustPut(t, tree, key, "")
		}

		assert.Equal(t, []int{0, 1}, collect(tree.Traversal, 2), "size %d", size)
	}
}

// A stop raised in the left subtree must suppress the parent and the right
// subtree.
func TestTraversalStopDeepLeft(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	assert.Equal(t, []int{5}, collect(tree.Traversal, 1))
	assert.Equal(t, []int{20}, collect(tree.preOrder, 1))
	assert.Equal(t, []int{5}, collect(tree.postOrder, 1))
}

func TestPreAndPostOrder(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	assert.Equal(t, []int{20, 10, 5, 15, 30, 25}, collect(tree.preOrder, -1))
	assert.Equal(t, []int{5, 15, 10, 25, 30, 20}, collect(tree.postOrder, -1))
	assert.Equal(t, []int{20, 10, 5}, collect(tree.preOrder, 3))
	assert.Equal(t, []int{5, 15, 10, 25}, collect(tree.postOrder, 4))
}

func TestTraversalNilVisitor(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	assert.NotPanics(t, func() {
		tree.Traversal(nil)
		tree.preOrder(nil)
		tree.postOrder(nil)
	})
}

func TestAll(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	var keys []int

	for key, value := range tree.All() {
		require.NotEmpty(t, value)

		keys = append(keys, key)
		if key == testKey15 {
			break
		}
	}

	assert.Equal(t, []int{5, 10, 15}, keys)
}

func TestFindGE(t *testing.T) {
	t.Parallel()

	tree := testNewIntMap()
	mustPut(t, tree, testKey10, "")

	iter, err := tree.FindGE(testKey10)
	require.NoError(t, err)
	assert.Equal(t, testKey10, iter.Key())

	iter, err = tree.FindGE(11)
	require.NoError(t, err)
	testAssert(t, iter.Limit(), "FindGE 11")

	iter, err = tree.FindGE(9)
	require.NoError(t, err)
	assert.Equal(t, testKey10, iter.Key())
}

func TestFindLE(t *testing.T) {
	t.Parallel()

	tree := testNewIntMap()
	mustPut(t, tree, testKey10, "")

	iter, err := tree.FindLE(testKey10)
	require.NoError(t, err)
	assert.Equal(t, testKey10, iter.Key())

	iter, err = tree.FindLE(11)
	require.NoError(t, err)
	assert.Equal(t, testKey10, iter.Key())

	iter, err = tree.FindLE(9)
	require.NoError(t, err)
	testAssert(t, iter.NegativeLimit(), "FindLE 9")
}

func TestFindInvalidKey(t *testing.T) {
	t.Parallel()

	tree := New[float64, int]()

	iter, err := tree.FindGE(math.NaN())
	require.ErrorIs(t, err, ErrInvalidKey)
	testAssert(t, iter.Limit(), "limit")

	iter, err = tree.FindLE(math.NaN())
	require.ErrorIs(t, err, ErrInvalidKey)
	testAssert(t, iter.NegativeLimit(), "neglimit")
}

func TestIteratorWalk(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	var forward []int
	for iter := tree.Min(); !iter.Limit(); iter = iter.Next() {
		forward = append(forward, iter.Key())
	}

	var backward []int
	for iter := tree.Max(); !iter.NegativeLimit(); iter = iter.Prev() {
		backward = append(backward, iter.Key())
	}

	assert.Equal(t, []int{5, 10, 15, 20, 25, 30}, forward)
	assert.Equal(t, []int{30, 25, 20, 15, 10, 5}, backward)

	assert.True(t, tree.NegativeLimit().Next().Equal(tree.Min()))
	assert.True(t, tree.Limit().Prev().Equal(tree.Max()))
	assert.Equal(t, "v"+"xxxxx", tree.Min().Value())
	assert.False(t, tree.Limit().Valid())
	assert.Panics(t, func() { tree.Limit().Next() })
	assert.Panics(t, func() { tree.NegativeLimit().Key() })
}

func TestIteratorInvalidatedByRemove(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	predecessor, err := tree.FindGE(testKey15)
	require.NoError(t, err)
	removed, err := tree.FindGE(testKey20)
	require.NoError(t, err)
	require.Equal(t, testKey15, predecessor.Key())

	// 20 has two children, so its node takes over 15's entry and 15's slot is freed.
	_, found, err := tree.Remove(testKey20)
	require.NoError(t, err)
	require.True(t, found)

	for _, stale := range []Iterator[int, string]{predecessor, removed} {
		assert.False(t, stale.Valid())
		assert.Panics(t, func() { stale.Key() })
		assert.Panics(t, func() { stale.Value() })
		assert.Panics(t, func() { stale.Next() })
		assert.Panics(t, func() { stale.Prev() })
	}

	// The freed slot is reused, and the old iterator must not read the new entry.
	mustPut(t, tree, 99, "new")
	assert.False(t, predecessor.Valid())
	assert.Panics(t, func() { predecessor.Value() })

	fresh, err := tree.FindGE(testKey15)
	require.NoError(t, err)
	assert.Equal(t, testKey15, fresh.Key())
	assert.Equal(t, testKey25, fresh.Next().Key())
}

func TestIteratorSurvivesPut(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)

	iter, err := tree.FindGE(testKey15)
	require.NoError(t, err)

	mustPut(t, tree, 17, "new")
	mustPut(t, tree, testKey15, "replaced")

	require.True(t, iter.Valid())
	assert.Equal(t, "replaced", iter.Value())
	assert.Equal(t, 17, iter.Next().Key())
}

func TestIteratorInvalidatedByClear(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)
	iter := tree.Min()

	tree.Clear()

	assert.False(t, iter.Valid())
	assert.Panics(t, func() { iter.Key() })
	assert.True(t, tree.Min().Limit())
}

func TestCursor(t *testing.T) {
	t.Parallel()

	tree := testBuildScenario(t)
	root := tree.Root()

	require.True(t, root.Valid())
	assert.Equal(t, testKey20, root.Key())
	assert.False(t, root.Parent().Valid())
	assert.Equal(t, testKey10, root.Left().Key())
	assert.Equal(t, testKey30, root.Right().Key())
	assert.Equal(t, testKey20, root.Left().Parent().Key())
	assert.True(t, root.Right().Left().Red())
	assert.False(t, root.Right().Right().Valid())
	assert.False(t, root.Right().Right().Red())
	assert.False(t, root.Right().Right().Left().Valid())
}
