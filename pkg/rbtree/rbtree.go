// Package rbtree implements an ordered map on top of a red-black tree whose
// nodes live in an index arena.
package rbtree

import (
	"cmp"
	"reflect"
)

// Tree is a red-black ordered map from K to V.
//
// Nodes are addressed by uint32 indices into an Allocator; index 0 is the
// reserved nil slot. A Tree is not safe for concurrent use.
type Tree[K, V any] struct {
	// Nodes allocator.
	allocator *Allocator[K, V]

	compare  compareFunc[K]
	validate func(K) error
	equal    func(a, b V) bool

	// natural is set when no comparator was supplied.
	natural bool

	// Root of the tree.
	root uint32

	// Number of nodes under root, including the root.
	count int

	// epoch advances on every removal and invalidates outstanding iterators.
	epoch uint64

	stats Stats
}

// Option configures a Tree.
type Option[K, V any] func(*Tree[K, V])

// WithComparator orders keys with comparator instead of their natural order.
// A nil comparator keeps the natural order.
func WithComparator[K, V any](comparator Comparator[K]) Option[K, V] {
	return func(tree *Tree[K, V]) {
		if comparator != nil {
			tree.compare = fromComparator(comparator)
			tree.natural = false
		}
	}
}

// WithKeyValidator installs an extra key check run before every Get, Put and
// Remove. A non-nil error is reported wrapped in ErrInvalidKey.
func WithKeyValidator[K, V any](validate func(K) error) Option[K, V] {
	return func(tree *Tree[K, V]) {
		tree.validate = validate
	}
}

// WithValueEqual sets the equality used by ContainsValue.
func WithValueEqual[K, V any](equal func(a, b V) bool) Option[K, V] {
	return func(tree *Tree[K, V]) {
		if equal != nil {
			tree.equal = equal
		}
	}
}

// WithAllocator makes the tree take its nodes from a shared allocator.
func WithAllocator[K, V any](allocator *Allocator[K, V]) Option[K, V] {
	return func(tree *Tree[K, V]) {
		if allocator != nil {
			tree.allocator = allocator
		}
	}
}

// New creates an empty tree. Without WithComparator, keys are ordered by
// Comparable or by the natural order of their integer, float or string kind.
func New[K, V any](opts ...Option[K, V]) *Tree[K, V] {
	tree := &Tree[K, V]{
		compare: naturalCompare[K],
		natural: true,
		equal:   func(a, b V) bool { return reflect.DeepEqual(a, b) },
		root:    nilNode,
	}

	for _, opt := range opts {
		opt(tree)
	}

	if tree.allocator == nil {
		tree.allocator = NewAllocator[K, V]()
	}

	return tree
}

// NewOrdered creates an empty tree for keys with a built-in order.
func NewOrdered[K cmp.Ordered, V any](opts ...Option[K, V]) *Tree[K, V] {
	return New(append([]Option[K, V]{WithComparator[K, V](cmp.Compare[K])}, opts...)...)
}

func (tree *Tree[K, V]) storage() []node[K, V] {
	return tree.allocator.storage
}

// Allocator returns the bound nodes allocator.
func (tree *Tree[K, V]) Allocator() *Allocator[K, V] {
	return tree.allocator
}

// Size returns the number of entries in the tree.
func (tree *Tree[K, V]) Size() int {
	return tree.count
}

// IsEmpty reports whether the tree holds no entries.
func (tree *Tree[K, V]) IsEmpty() bool {
	return tree.count == 0
}

// Clear removes all the nodes from the tree. Nodes of other trees sharing the
// allocator are left alone.
func (tree *Tree[K, V]) Clear() {
	nodes := make([]uint32, 0, tree.count)

	for iter := tree.Min(); !iter.Limit(); iter = iter.Next() {
		nodes = append(nodes, iter.node)
	}

	for _, nd := range nodes {
		tree.allocator.free(nd)
	}

	tree.root = nilNode
	tree.count = 0
	tree.epoch++
}

// Get returns the value stored under key.
func (tree *Tree[K, V]) Get(key K) (V, bool, error) {
	var zero V

	nodeIdx, err := tree.find(key)
	if err != nil || nodeIdx == nilNode {
		return zero, false, err
	}

	return tree.storage()[nodeIdx].value, true, nil
}

// ContainsKey reports whether key is present. Invalid and incomparable keys
// read as absent.
func (tree *Tree[K, V]) ContainsKey(key K) bool {
	nodeIdx, err := tree.find(key)

	return err == nil && nodeIdx != nilNode
}

// ContainsValue reports whether any entry holds value. The scan is
// breadth-first and visits every node in the worst case.
func (tree *Tree[K, V]) ContainsValue(value V) bool {
	if tree.root == nilNode {
		return false
	}

	alloc := tree.storage()
	queue := []uint32{tree.root}

	for len(queue) > 0 {
		nodeIdx := queue[0]
		queue = queue[1:]

		if tree.equal(value, alloc[nodeIdx].value) {
			return true
		}

		if left := alloc[nodeIdx].left; left != nilNode {
			queue = append(queue, left)
		}

		if right := alloc[nodeIdx].right; right != nilNode {
			queue = append(queue, right)
		}
	}

	return false
}

// Put associates value with key. If the key was present, both the stored key
// and value are replaced in place and the previous value is returned with
// true.
func (tree *Tree[K, V]) Put(key K, value V) (V, bool, error) {
	var zero V

	if err := tree.checkKey(key); err != nil {
		return zero, false, err
	}

	if tree.root == nilNode {
		tree.root = tree.attach(key, value, nilNode)
		tree.count++
		tree.stats.Inserts++
		tree.afterPut(tree.root)

		return zero, false, nil
	}

	parent := nilNode
	comp := 0

	for cursor := tree.root; cursor != nilNode; {
		parent = cursor
		current := &tree.storage()[cursor]

		var err error

		comp, err = tree.compare(key, current.key)
		if err != nil {
			return zero, false, err
		}

		switch {
		case comp == 0:
			old := current.value
			current.key = key
			current.value = value
			tree.stats.Overwrites++

			return old, true, nil
		case comp < 0:
			cursor = current.left
		default:
			cursor = current.right
		}
	}

	nodeIdx := tree.attach(key, value, parent)
	alloc := tree.storage()

	if comp < 0 {
		alloc[parent].left = nodeIdx
	} else {
		alloc[parent].right = nodeIdx
	}

	tree.count++
	tree.stats.Inserts++
	tree.afterPut(nodeIdx)

	return zero, false, nil
}

// Remove deletes key and returns the value it held. Removing an absent key
// leaves the tree untouched.
func (tree *Tree[K, V]) Remove(key K) (V, bool, error) {
	var zero V

	nodeIdx, err := tree.find(key)
	if err != nil || nodeIdx == nilNode {
		return zero, false, err
	}

	old := tree.storage()[nodeIdx].value
	tree.removeNode(nodeIdx)

	return old, true, nil
}

// Keys returns the keys in ascending order.
func (tree *Tree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.count)

	tree.Traversal(func(key K, _ V) bool {
		keys = append(keys, key)

		return false
	})

	return keys
}

// Private methods.

func (tree *Tree[K, V]) find(key K) (uint32, error) {
	if err := tree.checkKey(key); err != nil {
		return nilNode, err
	}

	alloc := tree.storage()
	nodeIdx := tree.root

	for nodeIdx != nilNode {
		comp, err := tree.compare(key, alloc[nodeIdx].key)
		if err != nil {
			return nilNode, err
		}

		switch {
		case comp == 0:
			return nodeIdx, nil
		case comp < 0:
			nodeIdx = alloc[nodeIdx].left
		default:
			nodeIdx = alloc[nodeIdx].right
		}
	}

	return nilNode, nil
}

// attach allocates a red node hanging from parent. The caller links it into
// the parent's child slot.
func (tree *Tree[K, V]) attach(key K, value V, parent uint32) uint32 {
	nodeIdx := tree.allocator.malloc()
	nd := &tree.storage()[nodeIdx]
	nd.key = key
	nd.value = value
	nd.parent = parent
	nd.color = red

	return nodeIdx
}

// removeNode unlinks nodeIdx, substituting its in-order predecessor when it
// has two children, and frees the physically removed slot.
func (tree *Tree[K, V]) removeNode(nodeIdx uint32) {
	alloc := tree.storage()

	if alloc[nodeIdx].left != nilNode && alloc[nodeIdx].right != nilNode {
		pred := maxPredecessor(nodeIdx, alloc)
		alloc[nodeIdx].key = alloc[pred].key
		alloc[nodeIdx].value = alloc[pred].value
		nodeIdx = pred
	}

	replace := alloc[nodeIdx].left
	if replace == nilNode {
		replace = alloc[nodeIdx].right
	}

	switch {
	case replace != nilNode:
		tree.replaceNode(nodeIdx, replace)
		tree.afterRemove(replace, isLeftChild(replace, alloc))
	case alloc[nodeIdx].parent == nilNode:
		tree.root = nilNode
	default:
		// The detached leaf keeps its parent index so the fix-up can walk up
		// from where it used to hang.
		wasLeft := isLeftChild(nodeIdx, alloc)
		setChild(alloc[nodeIdx].parent, wasLeft, nilNode, alloc)
		tree.afterRemove(nodeIdx, wasLeft)
	}

	tree.allocator.free(nodeIdx)
	tree.count--
	tree.epoch++
	tree.stats.Removes++
}

func (tree *Tree[K, V]) replaceNode(oldn, newn uint32) {
	alloc := tree.storage()

	if alloc[oldn].parent == nilNode {
		tree.root = newn
	} else {
		setChild(alloc[oldn].parent, isLeftChild(oldn, alloc), newn, alloc)
	}

	if newn != nilNode {
		alloc[newn].parent = alloc[oldn].parent
	}
}
