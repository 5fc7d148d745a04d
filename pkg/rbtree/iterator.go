package rbtree

// Iterator allows scanning tree elements in sort order.
//
// Puts keep iterators valid. Removing any key, or clearing the tree,
// invalidates every outstanding iterator of that tree: a two-child removal
// moves the predecessor's entry into the removed node and frees the
// predecessor's slot. Valid reports false for an invalidated iterator, and
// Key, Value, Next and Prev panic on it.
type Iterator[K, V any] struct {
	tree  *Tree[K, V]
	node  uint32
	epoch uint64
}

func (tree *Tree[K, V]) iteratorAt(nodeIdx uint32) Iterator[K, V] {
	return Iterator[K, V]{tree: tree, node: nodeIdx, epoch: tree.epoch}
}

// Min creates an iterator that points to the minimum item in the tree.
// If the tree is empty, returns Limit().
func (tree *Tree[K, V]) Min() Iterator[K, V] {
	return tree.iteratorAt(leftmost(tree.root, tree.storage()))
}

// Max creates an iterator that points at the maximum item in the tree.
//
// If the tree is empty, returns NegativeLimit().
func (tree *Tree[K, V]) Max() Iterator[K, V] {
	if tree.root == nilNode {
		return tree.iteratorAt(negativeLimitNode)
	}

	return tree.iteratorAt(rightmost(tree.root, tree.storage()))
}

// Limit creates an iterator that points beyond the maximum item in the tree.
func (tree *Tree[K, V]) Limit() Iterator[K, V] {
	return tree.iteratorAt(nilNode)
}

// NegativeLimit creates an iterator that points before the minimum item in the tree.
func (tree *Tree[K, V]) NegativeLimit() Iterator[K, V] {
	return tree.iteratorAt(negativeLimitNode)
}

// FindGE finds the smallest element N such that N >= key, and returns the
// iterator pointing to the element. If no such element is found,
// returns tree.Limit().
func (tree *Tree[K, V]) FindGE(key K) (Iterator[K, V], error) {
	nodeIdx, _, err := tree.findGE(key)
	if err != nil {
		return tree.Limit(), err
	}

	return tree.iteratorAt(nodeIdx), nil
}

// FindLE finds the largest element N such that N <= key, and returns the
// iterator pointing to the element. If no such element is found,
// returns tree.NegativeLimit().
func (tree *Tree[K, V]) FindLE(key K) (Iterator[K, V], error) {
	nodeIdx, exact, err := tree.findGE(key)
	if err != nil {
		return tree.NegativeLimit(), err
	}

	if exact {
		return tree.iteratorAt(nodeIdx), nil
	}

	// The element at nodeIdx is larger than key, so the one before it is the
	// largest element smaller than key.
	if nodeIdx != nilNode {
		return tree.iteratorAt(doPrev(nodeIdx, tree.storage())), nil
	}

	return tree.Max(), nil
}

// Equal checks for the underlying nodes equality.
func (iter Iterator[K, V]) Equal(other Iterator[K, V]) bool {
	return iter.node == other.node
}

// Limit checks if the iterator points beyond the max element in the tree.
func (iter Iterator[K, V]) Limit() bool {
	return iter.node == nilNode
}

// NegativeLimit checks if the iterator points before the minimum element in the tree.
func (iter Iterator[K, V]) NegativeLimit() bool {
	return iter.node == negativeLimitNode
}

// Valid reports whether the iterator points at an element and no key has
// been removed since it was created.
func (iter Iterator[K, V]) Valid() bool {
	return !iter.Limit() && !iter.NegativeLimit() && iter.epoch == iter.tree.epoch
}

// Key returns the current key.
//
// REQUIRES: iter.Valid().
func (iter Iterator[K, V]) Key() K {
	return iter.element().key
}

// Value returns the current value.
//
// REQUIRES: iter.Valid().
func (iter Iterator[K, V]) Value() V {
	return iter.element().value
}

func (iter Iterator[K, V]) element() *node[K, V] {
	doAssert(iter.Valid())

	nd := &iter.tree.storage()[iter.node]
	doAssert(nd.live)

	return nd
}

// Next creates a new iterator that points to the successor of the current element.
//
// REQUIRES: !iter.Limit().
func (iter Iterator[K, V]) Next() Iterator[K, V] {
	doAssert(!iter.Limit())

	if iter.NegativeLimit() {
		return iter.tree.Min()
	}

	iter.element()

	return iter.tree.iteratorAt(doNext(iter.node, iter.tree.storage()))
}

// Prev creates a new iterator that points to the predecessor of the current
// node.
//
// REQUIRES: !iter.NegativeLimit().
func (iter Iterator[K, V]) Prev() Iterator[K, V] {
	doAssert(!iter.NegativeLimit())

	if !iter.Limit() {
		iter.element()

		return iter.tree.iteratorAt(doPrev(iter.node, iter.tree.storage()))
	}

	return iter.tree.Max()
}

// findGE finds the smallest node that is not less than key. exact reports
// whether its key equals key. Returns nilNode if every key is smaller.
func (tree *Tree[K, V]) findGE(key K) (uint32, bool, error) { //nolint:revive // intentional private/public pair
	if err := tree.checkKey(key); err != nil {
		return nilNode, false, err
	}

	alloc := tree.storage()
	nodeIdx := tree.root
	candidate := nilNode

	for nodeIdx != nilNode {
		comp, err := tree.compare(key, alloc[nodeIdx].key)
		if err != nil {
			return nilNode, false, err
		}

		switch {
		case comp == 0:
			return nodeIdx, true, nil
		case comp < 0:
			candidate = nodeIdx
			nodeIdx = alloc[nodeIdx].left
		default:
			nodeIdx = alloc[nodeIdx].right
		}
	}

	return candidate, false, nil
}
