package rbtree

import (
	"fmt"
)

// Cursor is a read-only view of one node, used to inspect the tree shape.
type Cursor[K, V any] struct {
	tree *Tree[K, V]
	node uint32
}

// Root returns a cursor on the root node. It is not Valid for an empty tree.
func (tree *Tree[K, V]) Root() Cursor[K, V] {
	return Cursor[K, V]{tree, tree.root}
}

// Valid reports whether the cursor points at a node.
func (cursor Cursor[K, V]) Valid() bool {
	return cursor.node != nilNode
}

// Key returns the node's key.
func (cursor Cursor[K, V]) Key() K {
	return cursor.tree.storage()[cursor.node].key
}

// Value returns the node's value.
func (cursor Cursor[K, V]) Value() V {
	return cursor.tree.storage()[cursor.node].value
}

// Red reports the node colour. Absent nodes are black.
func (cursor Cursor[K, V]) Red() bool {
	return getColor(cursor.node, cursor.tree.storage()) == red
}

// Left moves to the left child.
func (cursor Cursor[K, V]) Left() Cursor[K, V] {
	if !cursor.Valid() {
		return cursor
	}

	return Cursor[K, V]{cursor.tree, cursor.tree.storage()[cursor.node].left}
}

// Right moves to the right child.
func (cursor Cursor[K, V]) Right() Cursor[K, V] {
	if !cursor.Valid() {
		return cursor
	}

	return Cursor[K, V]{cursor.tree, cursor.tree.storage()[cursor.node].right}
}

// Parent moves to the parent.
func (cursor Cursor[K, V]) Parent() Cursor[K, V] {
	if !cursor.Valid() {
		return cursor
	}

	return Cursor[K, V]{cursor.tree, cursor.tree.storage()[cursor.node].parent}
}

// BlackHeight returns the number of black nodes on any path from the root
// down to an absent leaf, the root itself excluded. It is meaningful only when
// Verify reports no error.
func (tree *Tree[K, V]) BlackHeight() int {
	alloc := tree.storage()
	height := 0

	if tree.root == nilNode {
		return 0
	}

	for nodeIdx := alloc[tree.root].left; nodeIdx != nilNode; nodeIdx = alloc[nodeIdx].left {
		if alloc[nodeIdx].color == black {
			height++
		}
	}

	return height
}

// Verify checks the search order, the colouring rules, the parent links and
// the entry count. It returns the first violation found wrapped in
// ErrInvariant.
func (tree *Tree[K, V]) Verify() error {
	alloc := tree.storage()

	if tree.root == nilNode {
		if tree.count != 0 {
			return fmt.Errorf("%w: empty tree reports %d entries", ErrInvariant, tree.count)
		}

		return nil
	}

	if alloc[tree.root].parent != nilNode {
		return fmt.Errorf("%w: root #%d has parent #%d", ErrInvariant, tree.root, alloc[tree.root].parent)
	}

	if alloc[tree.root].color != black {
		return fmt.Errorf("%w: root #%d is red", ErrInvariant, tree.root)
	}

	count := 0

	if _, err := tree.checkSubtree(tree.root, &count); err != nil {
		return err
	}

	if count != tree.count {
		return fmt.Errorf("%w: counted %d nodes, size is %d", ErrInvariant, count, tree.count)
	}

	return tree.checkOrder()
}

// checkSubtree returns the black height of nodeIdx including itself.
func (tree *Tree[K, V]) checkSubtree(nodeIdx uint32, count *int) (int, error) {
	if nodeIdx == nilNode {
		return 0, nil
	}

	alloc := tree.storage()
	*count++

	if *count > tree.count {
		return 0, fmt.Errorf("%w: more than %d reachable nodes", ErrInvariant, tree.count)
	}

	for _, child := range [2]uint32{alloc[nodeIdx].left, alloc[nodeIdx].right} {
		if child == nilNode {
			continue
		}

		if alloc[child].parent != nodeIdx {
			return 0, fmt.Errorf("%w: node #%d points to parent #%d instead of #%d",
				ErrInvariant, child, alloc[child].parent, nodeIdx)
		}

		if alloc[nodeIdx].color == red && alloc[child].color == red {
			return 0, fmt.Errorf("%w: red node #%d has red child #%d", ErrInvariant, nodeIdx, child)
		}
	}

	leftHeight, err := tree.checkSubtree(alloc[nodeIdx].left, count)
	if err != nil {
		return 0, err
	}

	rightHeight, err := tree.checkSubtree(alloc[nodeIdx].right, count)
	if err != nil {
		return 0, err
	}

	if leftHeight != rightHeight {
		return 0, fmt.Errorf("%w: node #%d has black heights %d and %d",
			ErrInvariant, nodeIdx, leftHeight, rightHeight)
	}

	if alloc[nodeIdx].color == black {
		leftHeight++
	}

	return leftHeight, nil
}

func (tree *Tree[K, V]) checkOrder() error {
	prev := tree.Min()
	if prev.Limit() {
		return nil
	}

	for iter := prev.Next(); !iter.Limit(); prev, iter = iter, iter.Next() {
		comp, err := tree.compare(prev.Key(), iter.Key())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvariant, err)
		}

		if comp >= 0 {
			return fmt.Errorf("%w: key %v is not below key %v", ErrInvariant, prev.Key(), iter.Key())
		}
	}

	return nil
}
