package rbtree

// Internal node attribute accessors.
func getColor[K, V any](nodeIdx uint32, allocator []node[K, V]) bool {
	if nodeIdx == nilNode {
		return black
	}

	return allocator[nodeIdx].color
}

func isLeftChild[K, V any](nodeIdx uint32, allocator []node[K, V]) bool {
	return nodeIdx == allocator[allocator[nodeIdx].parent].left
}

func isRightChild[K, V any](nodeIdx uint32, allocator []node[K, V]) bool {
	return nodeIdx == allocator[allocator[nodeIdx].parent].right
}

// childOf returns the left or right child of nodeIdx.
func childOf[K, V any](nodeIdx uint32, left bool, allocator []node[K, V]) uint32 {
	if left {
		return allocator[nodeIdx].left
	}

	return allocator[nodeIdx].right
}

func setChild[K, V any](nodeIdx uint32, left bool, child uint32, allocator []node[K, V]) {
	doAssert(nodeIdx != nilNode)

	if left {
		allocator[nodeIdx].left = child
	} else {
		allocator[nodeIdx].right = child
	}
}

// Return the minimum node that's larger than N. Return nil if no such
// node is found.
func doNext[K, V any](nodeIdx uint32, allocator []node[K, V]) uint32 {
	if allocator[nodeIdx].right != nilNode {
		return minSuccessor(nodeIdx, allocator)
	}

	for nodeIdx != nilNode {
		parentIdx := allocator[nodeIdx].parent
		if parentIdx == nilNode {
			return nilNode
		}

		if isLeftChild(nodeIdx, allocator) {
			return parentIdx
		}

		nodeIdx = parentIdx
	}

	return nilNode
}

// Return the maximum node that's smaller than N. Return negativeLimitNode
// if no such node is found.
func doPrev[K, V any](nodeIdx uint32, allocator []node[K, V]) uint32 {
	if allocator[nodeIdx].left != nilNode {
		return maxPredecessor(nodeIdx, allocator)
	}

	for nodeIdx != nilNode {
		parentIdx := allocator[nodeIdx].parent
		if parentIdx == nilNode {
			break
		}

		if isRightChild(nodeIdx, allocator) {
			return parentIdx
		}

		nodeIdx = parentIdx
	}

	return negativeLimitNode
}

// Return the predecessor of "n".
func maxPredecessor[K, V any](nodeIdx uint32, allocator []node[K, V]) uint32 {
	doAssert(allocator[nodeIdx].left != nilNode)

	return rightmost(allocator[nodeIdx].left, allocator)
}

// Return the successor of "n".
func minSuccessor[K, V any](nodeIdx uint32, allocator []node[K, V]) uint32 {
	doAssert(allocator[nodeIdx].right != nilNode)

	return leftmost(allocator[nodeIdx].right, allocator)
}

func leftmost[K, V any](cursor uint32, allocator []node[K, V]) uint32 {
	if cursor == nilNode {
		return nilNode
	}

	for allocator[cursor].left != nilNode {
		cursor = allocator[cursor].left
	}

	return cursor
}

func rightmost[K, V any](cursor uint32, allocator []node[K, V]) uint32 {
	if cursor == nilNode {
		return nilNode
	}

	for allocator[cursor].right != nilNode {
		cursor = allocator[cursor].right
	}

	return cursor
}

// afterPut restores the red-black properties after nodeIdx was attached as a
// red node.
func (tree *Tree[K, V]) afterPut(nodeIdx uint32) {
	tree.stats.InsertFixups++

	alloc := tree.storage()
	parent := alloc[nodeIdx].parent

	if parent == nilNode {
		alloc[nodeIdx].color = black

		return
	}

	if alloc[parent].color == black {
		return
	}

	// A red parent is never the root.
	grand := alloc[parent].parent
	doAssert(grand != nilNode)

	parentIsLeft := isLeftChild(parent, alloc)
	uncle := childOf(grand, !parentIsLeft, alloc)

	if getColor(uncle, alloc) == red {
		alloc[parent].color = black
		alloc[uncle].color = black
		alloc[grand].color = red
		tree.stats.Recolorings++

		tree.afterPut(grand)

		return
	}

	if isLeftChild(nodeIdx, alloc) == parentIsLeft {
		// LL or RR.
		alloc[parent].color = black
	} else {
		// LR or RL: lift the node above its parent first.
		tree.rotateDirection(parent, parentIsLeft)
		alloc[nodeIdx].color = black
	}

	alloc[grand].color = red
	tree.rotateDirection(grand, !parentIsLeft)
}

// afterRemove restores the red-black properties after a black node was taken
// out of the side wasLeft of its parent. nodeIdx is either the child spliced
// into the removed position or the removed leaf itself, which still remembers
// its parent.
func (tree *Tree[K, V]) afterRemove(nodeIdx uint32, wasLeft bool) {
	tree.stats.RemoveFixups++

	alloc := tree.storage()

	if alloc[nodeIdx].color == red {
		alloc[nodeIdx].color = black

		return
	}

	parent := alloc[nodeIdx].parent
	if parent == nilNode {
		return
	}

	sibling := childOf(parent, !wasLeft, alloc)

	if getColor(sibling, alloc) == red {
		alloc[sibling].color = black
		alloc[parent].color = red
		tree.rotateDirection(parent, wasLeft)
		sibling = childOf(parent, !wasLeft, alloc)
	}

	// The removed black node leaves a black sibling behind it.
	doAssert(sibling != nilNode)

	if getColor(alloc[sibling].left, alloc) == black && getColor(alloc[sibling].right, alloc) == black {
		parentWasBlack := alloc[parent].color == black
		alloc[sibling].color = red
		alloc[parent].color = black
		tree.stats.Recolorings++

		if parentWasBlack {
			tree.afterRemove(parent, isLeftChild(parent, alloc))
		}

		return
	}

	if getColor(childOf(sibling, !wasLeft, alloc), alloc) == black {
		// Only the near child is red: turn it into the far one.
		tree.rotateDirection(sibling, !wasLeft)
		sibling = childOf(parent, !wasLeft, alloc)
	}

	alloc[sibling].color = alloc[parent].color
	alloc[childOf(sibling, !wasLeft, alloc)].color = black
	alloc[parent].color = black
	tree.rotateDirection(parent, wasLeft)
}

// rotateDirection performs a tree rotation in the specified direction.
// IsLeft=true performs left rotation, isLeft=false performs right rotation.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
//nolint:dupword // ASCII art diagrams contain intentional repeated letters.
func (tree *Tree[K, V]) rotateDirection(pivot uint32, isLeft bool) {
	alloc := tree.storage()
	tree.stats.Rotations++

	// The child opposite to the rotation direction moves up.
	child := childOf(pivot, !isLeft, alloc)
	doAssert(child != nilNode)

	innerSubtree := childOf(child, isLeft, alloc)
	setChild(pivot, !isLeft, innerSubtree, alloc)

	if innerSubtree != nilNode {
		alloc[innerSubtree].parent = pivot
	}

	// Update parent links.
	alloc[child].parent = alloc[pivot].parent

	if alloc[pivot].parent == nilNode {
		tree.root = child
	} else {
		setChild(alloc[pivot].parent, isLeftChild(pivot, alloc), child, alloc)
	}

	// Complete the rotation.
	setChild(child, isLeft, pivot, alloc)
	alloc[pivot].parent = child
}
