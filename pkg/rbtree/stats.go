package rbtree

// Stats holds structural counters of a Tree.
type Stats struct {
	Inserts      int64
	Overwrites   int64
	Removes      int64
	Rotations    int64
	Recolorings  int64
	InsertFixups int64
	RemoveFixups int64
	Size         int
	Slots        int
}

// Stats returns a snapshot of the tree's counters.
func (tree *Tree[K, V]) Stats() Stats {
	stats := tree.stats
	stats.Size = tree.count
	stats.Slots = tree.allocator.Size()

	return stats
}

// ResetStats zeroes the operation counters.
func (tree *Tree[K, V]) ResetStats() {
	tree.stats = Stats{}
}
