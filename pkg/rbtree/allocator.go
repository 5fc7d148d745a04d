package rbtree

import (
	"math"
)

const (
	red   = false
	black = true

	// nilNode is the reserved slot that stands for an absent child or parent.
	nilNode uint32 = 0

	// negativeLimitNode is the position before the minimum element.
	negativeLimitNode = math.MaxUint32

	// maxSlots bounds the arena so that no live index collides with negativeLimitNode.
	maxSlots = math.MaxUint32 - 1
)

type node[K, V any] struct {
	key                 K
	value               V
	parent, left, right uint32
	color               bool // Black or red.
	live                bool
}

// Allocator is the allocator for nodes in a Tree.
//
// Slot 0 is reserved: it is always black and never handed out, so a zero index
// reads as "no node". Freed slots are reused in LIFO order. An Allocator may be
// shared by several trees with the same key and value types; it is not safe for
// concurrent use.
type Allocator[K, V any] struct {
	storage []node[K, V]
	gaps    []uint32
}

// NewAllocator creates a new allocator for Tree's nodes.
func NewAllocator[K, V any]() *Allocator[K, V] {
	return &Allocator[K, V]{
		storage: []node[K, V]{},
		gaps:    []uint32{},
	}
}

// Size returns the number of slots ever allocated, including the reserved slot.
func (allocator *Allocator[K, V]) Size() int {
	return len(allocator.storage)
}

// Used returns the number of live nodes held by the allocator.
func (allocator *Allocator[K, V]) Used() int {
	if len(allocator.storage) == 0 {
		return 0
	}

	return len(allocator.storage) - len(allocator.gaps) - 1
}

func (allocator *Allocator[K, V]) malloc() uint32 {
	if gapsLen := len(allocator.gaps); gapsLen > 0 {
		nodeIdx := allocator.gaps[gapsLen-1]
		allocator.gaps = allocator.gaps[:gapsLen-1]
		allocator.storage[nodeIdx].live = true

		return nodeIdx
	}

	nodeLen := len(allocator.storage)
	if nodeLen == 0 {
		// Zero is reserved.
		allocator.storage = append(allocator.storage, node[K, V]{color: black})
		nodeLen = 1
	}

	if uint64(nodeLen) >= maxSlots {
		panic("the size of my RBTree allocator has reached the maximum value for uint32, sorry")
	}

	allocator.storage = append(allocator.storage, node[K, V]{live: true})

	return uint32(nodeLen) //nolint:gosec // bounded by maxSlots above.
}

func (allocator *Allocator[K, V]) free(nodeIdx uint32) {
	if nodeIdx == nilNode {
		panic("node #0 is special and cannot be deallocated")
	}

	doAssert(int(nodeIdx) < len(allocator.storage))
	doAssert(allocator.storage[nodeIdx].live)

	// Drop references held by the key and value.
	allocator.storage[nodeIdx] = node[K, V]{}
	allocator.gaps = append(allocator.gaps, nodeIdx)
}

func doAssert(condition bool) {
	if !condition {
		panic("rbtree internal assertion failed")
	}
}
