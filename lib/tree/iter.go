// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package tree

import "github.com/masc-ucsc/hhds/lib/hhdsprim"

// SiblingOrder returns a lazy, restartable sequence of successive
// GetSiblingNext calls from start until the invalid position.
func (t *Tree[T]) SiblingOrder(start hhdsprim.TreePos) func(yield func(hhdsprim.TreePos) bool) {
	return func(yield func(hhdsprim.TreePos) bool) {
		for pos := start; !pos.IsInvalid(); pos = t.GetSiblingNext(pos) {
			if !yield(pos) {
				return
			}
		}
	}
}

// PreOrder visits subtree in pre-order: current node, then its
// children left to right, recursively.
func (t *Tree[T]) PreOrder(subtree hhdsprim.TreePos) func(yield func(hhdsprim.TreePos) bool) {
	return func(yield func(hhdsprim.TreePos) bool) {
		if subtree.IsInvalid() {
			return
		}
		pos := subtree
		for {
			if !yield(pos) {
				return
			}
			if first := t.GetFirstChild(pos); !first.IsInvalid() {
				pos = first
				continue
			}
			// ascend to the nearest ancestor with a next sibling
			for {
				if pos == subtree {
					return
				}
				if next := t.GetSiblingNext(pos); !next.IsInvalid() {
					pos = next
					break
				}
				pos = t.GetParent(pos)
				if pos.IsInvalid() {
					return
				}
				if pos == subtree {
					return
				}
			}
		}
	}
}

// PostOrder visits subtree in post-order: children left to right, then
// the current node.
func (t *Tree[T]) PostOrder(subtree hhdsprim.TreePos) func(yield func(hhdsprim.TreePos) bool) {
	return func(yield func(hhdsprim.TreePos) bool) {
		if subtree.IsInvalid() {
			return
		}
		pos := t.leftmostLeaf(subtree)
		for {
			if !yield(pos) {
				return
			}
			if pos == subtree {
				return
			}
			if next := t.GetSiblingNext(pos); !next.IsInvalid() {
				pos = t.leftmostLeaf(next)
				continue
			}
			pos = t.GetParent(pos)
			if pos.IsInvalid() {
				return
			}
		}
	}
}

func (t *Tree[T]) leftmostLeaf(pos hhdsprim.TreePos) hhdsprim.TreePos {
	for {
		first := t.GetFirstChild(pos)
		if first.IsInvalid() {
			return pos
		}
		pos = first
	}
}
