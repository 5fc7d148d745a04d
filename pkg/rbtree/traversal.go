package rbtree

import (
	"iter"
)

// Visitor receives entries during a traversal. Returning true stops the walk;
// no further entry is visited afterwards. A visitor must not modify the tree.
type Visitor[K, V any] func(key K, value V) (stop bool)

// walker carries the stop flag shared by one traversal.
type walker[K, V any] struct {
	alloc []node[K, V]
	visit Visitor[K, V]
	stop  bool
}

// Traversal visits the entries in ascending key order until visit asks to
// stop. A nil visitor is a no-op.
func (tree *Tree[K, V]) Traversal(visit Visitor[K, V]) {
	if visit == nil {
		return
	}

	w := &walker[K, V]{alloc: tree.storage(), visit: visit}
	w.inOrder(tree.root)
}

// All returns an iterator over the entries in ascending key order.
func (tree *Tree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		tree.Traversal(func(key K, value V) bool {
			return !yield(key, value)
		})
	}
}

func (tree *Tree[K, V]) preOrder(visit Visitor[K, V]) {
	if visit == nil {
		return
	}

	w := &walker[K, V]{alloc: tree.storage(), visit: visit}
	w.preOrder(tree.root)
}

func (tree *Tree[K, V]) postOrder(visit Visitor[K, V]) {
	if visit == nil {
		return
	}

	w := &walker[K, V]{alloc: tree.storage(), visit: visit}
	w.postOrder(tree.root)
}

func (w *walker[K, V]) self(nodeIdx uint32) {
	if w.stop {
		return
	}

	w.stop = w.visit(w.alloc[nodeIdx].key, w.alloc[nodeIdx].value)
}

func (w *walker[K, V]) inOrder(nodeIdx uint32) {
	if nodeIdx == nilNode || w.stop {
		return
	}

	w.inOrder(w.alloc[nodeIdx].left)
	w.self(nodeIdx)
	w.inOrder(w.alloc[nodeIdx].right)
}

func (w *walker[K, V]) preOrder(nodeIdx uint32) {
	if nodeIdx == nilNode || w.stop {
		return
	}

	w.self(nodeIdx)
	w.preOrder(w.alloc[nodeIdx].left)
	w.preOrder(w.alloc[nodeIdx].right)
}

func (w *walker[K, V]) postOrder(nodeIdx uint32) {
	if nodeIdx == nilNode || w.stop {
		return
	}

	w.postOrder(w.alloc[nodeIdx].left)
	w.postOrder(w.alloc[nodeIdx].right)
	w.self(nodeIdx)
}
