package generate

import "iter"

// leafIter walks a partition tree with an explicit pending stack, so memory
// use is bounded by tree depth.
//
// Visiting a node stages it as the current node and pushes its left then
// right child. Next yields the current node and stages the top of the stack,
// so a node comes first, then its right subtree, then its left subtree.
// Every node is yielded exactly once.
type leafIter struct {
	current *bspLeaf
	pending []*bspLeaf
}

func newLeafIter(root *bspLeaf) *leafIter {
	it := &leafIter{}
	if root != nil {
		it.stage(root)
	}
	return it
}

func (it *leafIter) stage(n *bspLeaf) {
	if n.left != nil {
		it.pending = append(it.pending, n.left)
	}
	if n.right != nil {
		it.pending = append(it.pending, n.right)
	}
	it.current = n
}

// Next returns the next node, or false once the tree is exhausted.
func (it *leafIter) Next() (*bspLeaf, bool) {
	n := it.current
	if n == nil {
		return nil, false
	}
	it.current = nil
	if last := len(it.pending) - 1; last >= 0 {
		next := it.pending[last]
		it.pending = it.pending[:last]
		it.stage(next)
	}
	return n, true
}

// all adapts the iterator for range loops.
func (l *bspLeaf) all() iter.Seq[*bspLeaf] {
	return func(yield func(*bspLeaf) bool) {
		it := newLeafIter(l)
		for n, ok := it.Next(); ok; n, ok = it.Next() {
			if !yield(n) {
				return
			}
		}
	}
}
