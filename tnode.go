// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package hhds

import (
	"context"

	"github.com/masc-ucsc/hhds/lib/forest"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/tree"
)

// TnodeClass is a handle to one position in one tree of a Library,
// wrapping the (ContainerRef, TreePos) pair so callers never need to
// hold a raw hhdsprim.TreePos themselves.
type TnodeClass[T any] struct {
	f   *forest.Forest[T]
	ref hhdsprim.ContainerRef
	pos hhdsprim.TreePos
}

// CreateTree allocates a fresh tree in l and returns a handle to its
// (not-yet-created) root; call Root.AddRoot to seed it.
func (l *Library[T]) CreateTree(ctx context.Context) Root[T] {
	ref := l.Trees.CreateTree(ctx)
	return Root[T]{f: l.Trees, ref: ref}
}

// Root names a freshly created, still-empty tree.
type Root[T any] struct {
	f   *forest.Forest[T]
	ref hhdsprim.ContainerRef
}

// Ref exposes the tree's container reference, for instancing it
// elsewhere via NodeClass.SetInstance.
func (r Root[T]) Ref() hhdsprim.ContainerRef { return r.ref }

// AddRoot seeds the tree with its root data and returns a handle to it.
func (r Root[T]) AddRoot(ctx context.Context, data T) TnodeClass[T] {
	tr, ok := r.f.GetTree(r.ref)
	hhdsprim.Assert(ok, "tnode: add_root on a ref %v that isn't alive", r.ref)
	pos := tr.AddRoot(ctx, data)
	return TnodeClass[T]{f: r.f, ref: r.ref, pos: pos}
}

// tr resolves n's underlying tree, asserting it is still alive -- a
// stale TnodeClass outliving its tree's DeleteTree is a precondition
// violation, not a recoverable error.
func (n TnodeClass[T]) tr() *tree.Tree[T] {
	tr, ok := n.f.GetTree(n.ref)
	hhdsprim.Assert(ok, "tnode: %v is not alive", n.ref)
	return tr
}

// IsInvalid reports whether n is the zero/absent position handle.
func (n TnodeClass[T]) IsInvalid() bool { return n.f == nil || n.pos.IsInvalid() }

// Ref exposes the container reference n lives in.
func (n TnodeClass[T]) Ref() hhdsprim.ContainerRef { return n.ref }

// Data returns the payload stored at n.
func (n TnodeClass[T]) Data() T { return n.tr().Data(n.pos) }

// AddChild appends data as a new last child of n.
func (n TnodeClass[T]) AddChild(ctx context.Context, data T) TnodeClass[T] {
	pos := n.tr().AddChild(ctx, n.pos, data)
	return TnodeClass[T]{f: n.f, ref: n.ref, pos: pos}
}

// InsertNextSibling inserts data as n's new next sibling.
func (n TnodeClass[T]) InsertNextSibling(ctx context.Context, data T) TnodeClass[T] {
	pos := n.tr().InsertNextSibling(ctx, n.pos, data)
	return TnodeClass[T]{f: n.f, ref: n.ref, pos: pos}
}

// FirstChild returns n's first child, or an invalid handle if n is a
// leaf.
func (n TnodeClass[T]) FirstChild() TnodeClass[T] {
	return TnodeClass[T]{f: n.f, ref: n.ref, pos: n.tr().GetFirstChild(n.pos)}
}

// NextSibling returns n's next sibling, or an invalid handle if n is
// the last child.
func (n TnodeClass[T]) NextSibling() TnodeClass[T] {
	return TnodeClass[T]{f: n.f, ref: n.ref, pos: n.tr().GetSiblingNext(n.pos)}
}

// Parent returns n's parent, or an invalid handle if n is the root.
func (n TnodeClass[T]) Parent() TnodeClass[T] {
	return TnodeClass[T]{f: n.f, ref: n.ref, pos: n.tr().GetParent(n.pos)}
}

// IsLeaf reports whether n has no children.
func (n TnodeClass[T]) IsLeaf() bool { return n.tr().IsLeaf(n.pos) }

// DeleteSubtree removes n and everything beneath it.
func (n TnodeClass[T]) DeleteSubtree(ctx context.Context) {
	n.tr().DeleteSubtree(ctx, n.pos)
}

// PreOrder iterates the subtree rooted at n in pre-order, within n's
// own tree only.
func (n TnodeClass[T]) PreOrder() func(yield func(TnodeClass[T]) bool) {
	return func(yield func(TnodeClass[T]) bool) {
		n.tr().PreOrder(n.pos)(func(pos hhdsprim.TreePos) bool {
			return yield(TnodeClass[T]{f: n.f, ref: n.ref, pos: pos})
		})
	}
}

// PreOrderAcrossInstances iterates the subtree rooted at n in
// pre-order and, at each visited position, descends into any sub-tree
// instanceOf names
// before resuming -- the hierarchical-design walk that follows module
// instances, cutting a cycle of mutual subtree references once each
// has been expanded.
func (n TnodeClass[T]) PreOrderAcrossInstances(instanceOf func(T) (hhdsprim.ContainerRef, bool)) func(yield func(TnodeClass[T]) bool) {
	return func(yield func(TnodeClass[T]) bool) {
		n.f.PreOrder(n.ref, n.pos, true, instanceOf)(func(ref hhdsprim.ContainerRef, pos hhdsprim.TreePos) bool {
			return yield(TnodeClass[T]{f: n.f, ref: ref, pos: pos})
		})
	}
}
