// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package forest

import (
	"github.com/masc-ucsc/hhds/lib/containers"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// PreOrder walks the subtree rooted at (ref, pos) in pre-order. When
// followSubtrees is true, at every visited position it asks
// instanceOf for a subtree reference and, if there is one, descends
// into that tree's root and continues the pre-order walk there before
// resuming the current position's remaining siblings. A visited set
// tracks every callee ref entered this way and refuses to enter one a
// second time, so a cycle of mutual subtree references terminates
// after each ref has been expanded exactly once (spec.md §9's
// cyclic-reference note).
func (f *Forest[T]) PreOrder(ref hhdsprim.ContainerRef, pos hhdsprim.TreePos, followSubtrees bool, instanceOf func(T) (hhdsprim.ContainerRef, bool)) func(yield func(hhdsprim.ContainerRef, hhdsprim.TreePos) bool) {
	return func(yield func(hhdsprim.ContainerRef, hhdsprim.TreePos) bool) {
		visited := make(containers.Set[hhdsprim.ContainerRef])
		// walkFrom walks ref's tree starting at start; walkRoot (used for
		// every subtree descent) always enters at the callee's root.
		var walkFrom func(ref hhdsprim.ContainerRef, start hhdsprim.TreePos) bool
		walkRoot := func(ref hhdsprim.ContainerRef) bool {
			tr, alive := f.GetTree(ref)
			if !alive {
				return true
			}
			return walkFrom(ref, tr.Root())
		}
		walkFrom = func(ref hhdsprim.ContainerRef, start hhdsprim.TreePos) bool {
			tr, alive := f.GetTree(ref)
			if !alive {
				return true
			}
			cont := true
			tr.PreOrder(start)(func(p hhdsprim.TreePos) bool {
				if !yield(ref, p) {
					cont = false
					return false
				}
				if followSubtrees {
					if sub, has := instanceOf(tr.Data(p)); has && !visited.Has(sub) {
						visited.Insert(sub)
						if !walkRoot(sub) {
							cont = false
							return false
						}
					}
				}
				return true
			})
			return cont
		}
		walkFrom(ref, pos)
	}
}
