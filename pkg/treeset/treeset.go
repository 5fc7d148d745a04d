// Package treeset provides an ordered set backed by the rbtree engine.
package treeset

import (
	"cmp"
	"iter"

	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

// Set is an ordered set of E. Elements are the keys of an rbtree.Tree with
// empty values, so ordering, validation and error rules are the tree's.
type Set[E any] struct {
	tree *rbtree.Tree[E, struct{}]
}

// New creates an empty set. Options are the tree options, e.g.
// rbtree.WithComparator.
func New[E any](opts ...rbtree.Option[E, struct{}]) *Set[E] {
	return &Set[E]{tree: rbtree.New(opts...)}
}

// NewOrdered creates an empty set for elements with a built-in order.
func NewOrdered[E cmp.Ordered](opts ...rbtree.Option[E, struct{}]) *Set[E] {
	return &Set[E]{tree: rbtree.NewOrdered(opts...)}
}

// Add inserts element and reports whether it was not present before. Adding
// an equal element replaces the stored one.
func (set *Set[E]) Add(element E) (bool, error) {
	_, replaced, err := set.tree.Put(element, struct{}{})
	if err != nil {
		return false, err
	}

	return !replaced, nil
}

// Remove deletes element and reports whether it was present.
func (set *Set[E]) Remove(element E) (bool, error) {
	_, found, err := set.tree.Remove(element)

	return found, err
}

// Contains reports whether element is in the set.
func (set *Set[E]) Contains(element E) bool {
	return set.tree.ContainsKey(element)
}

// Size returns the number of elements.
func (set *Set[E]) Size() int {
	return set.tree.Size()
}

// IsEmpty reports whether the set has no elements.
func (set *Set[E]) IsEmpty() bool {
	return set.tree.IsEmpty()
}

// Clear removes every element.
func (set *Set[E]) Clear() {
	set.tree.Clear()
}

// Traversal visits elements in ascending order until visit returns true.
func (set *Set[E]) Traversal(visit func(element E) (stop bool)) {
	if visit == nil {
		return
	}

	set.tree.Traversal(func(element E, _ struct{}) bool {
		return visit(element)
	})
}

// All returns an iterator over the elements in ascending order.
func (set *Set[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		for element := range set.tree.All() {
			if !yield(element) {
				return
			}
		}
	}
}

// Values returns the elements in ascending order.
func (set *Set[E]) Values() []E {
	return set.tree.Keys()
}

// Min returns the smallest element.
func (set *Set[E]) Min() (E, bool) {
	return key(set.tree.Min())
}

// Max returns the largest element.
func (set *Set[E]) Max() (E, bool) {
	return key(set.tree.Max())
}

// Verify checks the backing tree invariants.
func (set *Set[E]) Verify() error {
	return set.tree.Verify()
}

// Stats returns the backing tree counters.
func (set *Set[E]) Stats() rbtree.Stats {
	return set.tree.Stats()
}

func key[E any](position rbtree.Iterator[E, struct{}]) (E, bool) {
	if !position.Valid() {
		var zero E

		return zero, false
	}

	return position.Key(), true
}
