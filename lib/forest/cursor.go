// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package forest

import (
	"github.com/masc-ucsc/hhds/lib/containers"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/tree"
)

type frame struct {
	ref hhdsprim.ContainerRef
	pos hhdsprim.TreePos
}

// Cursor walks a hierarchy of tree instances within a Forest: ordinary
// sibling/parent/child navigation within one tree, plus DescendInstance
// to step into a sub-container a position points at, and Ascend to
// step back out. The path from the root instance to the current
// position is tracked so DescendInstance can refuse to re-enter a
// container already on the path (spec.md §9's cyclic-reference note).
type Cursor[T any] struct {
	forest     *Forest[T]
	instanceOf func(T) (hhdsprim.ContainerRef, bool)
	stack      []frame
	visited    containers.Set[hhdsprim.ContainerRef]
}

// NewCursor starts a cursor at root's tree root. instanceOf extracts
// the sub-container reference a node's payload carries, if any (the
// hook a hierarchical design uses to say "this leaf instances another
// tree/graph").
func NewCursor[T any](f *Forest[T], root hhdsprim.ContainerRef, instanceOf func(T) (hhdsprim.ContainerRef, bool)) *Cursor[T] {
	tr, ok := f.GetTree(root)
	hhdsprim.Assert(ok, "cursor: root %v is not alive", root)
	visited := make(containers.Set[hhdsprim.ContainerRef])
	visited.Insert(root)
	return &Cursor[T]{
		forest:     f,
		instanceOf: instanceOf,
		stack:      []frame{{ref: root, pos: tr.Root()}},
		visited:    visited,
	}
}

func (c *Cursor[T]) top() *frame { return &c.stack[len(c.stack)-1] }

func (c *Cursor[T]) currentTree() *tree.Tree[T] {
	tr, ok := c.forest.GetTree(c.top().ref)
	hhdsprim.Assert(ok, "cursor: current ref %v is not alive", c.top().ref)
	return tr
}

// GetCurrentRef returns the container ref the cursor is currently
// positioned in.
func (c *Cursor[T]) GetCurrentRef() hhdsprim.ContainerRef { return c.top().ref }

// GetCurrentPos returns the cursor's position within its current
// container.
func (c *Cursor[T]) GetCurrentPos() hhdsprim.TreePos { return c.top().pos }

// InstanceDepth is how many instance boundaries the cursor has crossed
// to reach its current container (0 at the starting root instance).
func (c *Cursor[T]) InstanceDepth() int { return len(c.stack) - 1 }

// IsRoot reports whether the current position is its container's root.
func (c *Cursor[T]) IsRoot() bool {
	return c.currentTree().GetParent(c.top().pos).IsInvalid()
}

// IsLeaf reports whether the current position has no children.
func (c *Cursor[T]) IsLeaf() bool {
	return c.currentTree().IsLeaf(c.top().pos)
}

// GotoFirstChild moves to the current position's first child, if any.
func (c *Cursor[T]) GotoFirstChild() bool {
	child := c.currentTree().GetFirstChild(c.top().pos)
	if child.IsInvalid() {
		return false
	}
	c.top().pos = child
	return true
}

// GotoNextSibling moves to the current position's next sibling, if
// any.
func (c *Cursor[T]) GotoNextSibling() bool {
	next := c.currentTree().GetSiblingNext(c.top().pos)
	if next.IsInvalid() {
		return false
	}
	c.top().pos = next
	return true
}

// GotoPrevSibling moves to the current position's previous sibling, if
// any.
func (c *Cursor[T]) GotoPrevSibling() bool {
	prev := c.currentTree().GetSiblingPrev(c.top().pos)
	if prev.IsInvalid() {
		return false
	}
	c.top().pos = prev
	return true
}

// GotoParent moves to the current position's parent within its
// container. At an instance's root, it instead ascends out of the
// instance (equivalent to Ascend), unless the cursor is already at the
// outermost instance.
func (c *Cursor[T]) GotoParent() bool {
	parent := c.currentTree().GetParent(c.top().pos)
	if !parent.IsInvalid() {
		c.top().pos = parent
		return true
	}
	return c.Ascend()
}

// Ascend pops the current instance frame, returning the cursor to the
// position in the caller container that instanced it. Reports false at
// the outermost instance.
func (c *Cursor[T]) Ascend() bool {
	if len(c.stack) <= 1 {
		return false
	}
	popped := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.visited.Delete(popped.ref)
	return true
}

// DescendInstance follows the sub-container the current position's
// payload names (via instanceOf), pushing a new frame at that
// container's root. Reports false when the position has no instance.
// It asserts (panics) rather than looping forever if that container is
// already on the current path.
func (c *Cursor[T]) DescendInstance() bool {
	data := c.currentTree().Data(c.top().pos)
	ref, ok := c.instanceOf(data)
	if !ok {
		return false
	}
	hhdsprim.Assert(!c.visited.Has(ref), "cursor: cyclic instance reference to %v", ref)
	target, ok := c.forest.GetTree(ref)
	hhdsprim.Assert(ok, "cursor: instance ref %v is not alive", ref)
	c.stack = append(c.stack, frame{ref: ref, pos: target.Root()})
	c.visited.Insert(ref)
	return true
}
