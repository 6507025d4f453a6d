// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package forest

import (
	"context"

	"github.com/datawire/dlib/dlog"

	"github.com/masc-ucsc/hhds/lib/containers"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/tree"
)

// CallerEntry names one place a container is instanced: the caller
// container and the position inside it holding the reference.
type CallerEntry struct {
	Caller hhdsprim.ContainerRef
	Pos    hhdsprim.TreePos
}

func refKey(ref hhdsprim.ContainerRef) containers.NativeOrdered[int64] {
	return containers.NativeOrdered[int64]{Val: int64(ref)}
}

// Forest owns a registry of Tree[T] instances, each addressable by a
// positive ContainerRef, plus the caller index used by get_callers
// (spec.md §4.3).
type Forest[T any] struct {
	trees   *registry[*tree.Tree[T]]
	callers containers.SortedMap[containers.NativeOrdered[int64], []CallerEntry]
}

// New returns an empty tree forest.
func New[T any]() *Forest[T] {
	return &Forest[T]{trees: newRegistry[*tree.Tree[T]]()}
}

// CreateTree allocates a fresh, empty tree and registers it, returning
// its (positive) ContainerRef with an initial refcount of zero -- it is
// not yet referenced by anything, and so is immediately deletable via
// DeleteTree until some subtree ref is added to it.
func (f *Forest[T]) CreateTree(ctx context.Context) hhdsprim.ContainerRef {
	id := f.trees.create(tree.New[T]())
	ref := hhdsprim.ContainerRef(id)
	dlog.Tracef(ctx, "forest: create_tree -> %v", ref)
	return ref
}

// GetTree returns the live tree behind ref and true, or (nil, false) if
// ref is not a valid tree reference or has been tombstoned.
func (f *Forest[T]) GetTree(ref hhdsprim.ContainerRef) (*tree.Tree[T], bool) {
	if !ref.IsTree() {
		return nil, false
	}
	return f.trees.get(int(ref))
}

// IsAlive reports whether ref still refers to a live (non-tombstoned)
// tree.
func (f *Forest[T]) IsAlive(ref hhdsprim.ContainerRef) bool {
	return ref.IsTree() && f.trees.valid(int(ref))
}

// RefCount reports callee's current refcount.
func (f *Forest[T]) RefCount(callee hhdsprim.ContainerRef) int {
	return f.trees.refcount(int(callee))
}

// AddSubtreeRef records that position callerPos of tree caller
// instances tree callee, bumping callee's refcount and indexing the
// reference so GetCallers(callee) can find it.
func (f *Forest[T]) AddSubtreeRef(ctx context.Context, caller hhdsprim.ContainerRef, callerPos hhdsprim.TreePos, callee hhdsprim.ContainerRef) {
	f.trees.addRef(int(callee))
	key := refKey(callee)
	entries, _ := f.callers.Load(key)
	entries = append(entries, CallerEntry{Caller: caller, Pos: callerPos})
	f.callers.Store(key, entries)
	dlog.Tracef(ctx, "forest: add_subtree_ref(%v@%v -> %v)", caller, callerPos, callee)
}

// DeleteSubtreeRef removes the (caller, callerPos) -> callee reference
// and drops callee's refcount by one. It does not itself delete callee
// even if the refcount reaches zero -- the container is only freed by
// an explicit, successful DeleteTree.
func (f *Forest[T]) DeleteSubtreeRef(ctx context.Context, caller hhdsprim.ContainerRef, callerPos hhdsprim.TreePos, callee hhdsprim.ContainerRef) {
	key := refKey(callee)
	entries, _ := f.callers.Load(key)
	for i, e := range entries {
		if e.Caller == caller && e.Pos == callerPos {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		f.callers.Delete(key)
	} else {
		f.callers.Store(key, entries)
	}
	f.trees.decRef(int(callee))
	dlog.Tracef(ctx, "forest: delete_subtree_ref(%v@%v -> %v)", caller, callerPos, callee)
}

// DeleteTree tombstones ref and frees its tree, but only if ref's
// refcount is currently zero (no subtree reference anywhere still
// points at it). Reports whether it did so; a false return leaves ref
// untouched.
func (f *Forest[T]) DeleteTree(ctx context.Context, ref hhdsprim.ContainerRef) bool {
	ok := f.trees.delete(int(ref))
	dlog.Tracef(ctx, "forest: delete_tree(%v) -> %v", ref, ok)
	return ok
}

// GetCallers returns every (caller, position) pair currently instancing
// callee.
func (f *Forest[T]) GetCallers(callee hhdsprim.ContainerRef) []CallerEntry {
	entries, _ := f.callers.Load(refKey(callee))
	return entries
}
