// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package tree

import (
	"context"

	"github.com/datawire/dlib/dlog"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// Tree is a packed hierarchical tree arena: a growable vector of 64-byte
// TreePointers chunks indexed by hhdsprim.ChunkID, parallel to a data
// vector indexed directly by hhdsprim.TreePos. T is the (trivially
// copyable, per spec.md §1 Non-goals) payload type.
type Tree[T any] struct {
	chunks     []TreePointers
	data       []T
	freeChunks []hhdsprim.ChunkID
	hasRoot    bool
	rootChunk  hhdsprim.ChunkID
}

// New returns an empty tree. Chunk 0 is reserved padding so position 0
// stays the invalid sentinel; AddRoot must be called before any other
// mutator.
func New[T any]() *Tree[T] {
	return &Tree[T]{
		chunks: make([]TreePointers, 1, 64),
		data:   make([]T, hhdsprim.NumShortDelta+1, 64*(hhdsprim.NumShortDelta+1)),
	}
}

// Root returns the tree's root position, or the invalid position if
// AddRoot has not yet been called.
func (t *Tree[T]) Root() hhdsprim.TreePos {
	if !t.hasRoot {
		return hhdsprim.TreePos(hhdsprim.Invalid)
	}
	return hhdsprim.PosOf(t.rootChunk, 0)
}

// NumChunks reports the number of allocated (not necessarily live)
// chunks, including the reserved padding chunk 0.
func (t *Tree[T]) NumChunks() int { return len(t.chunks) }

// SizeBytes reports the arena's raw memory footprint: the packed chunk
// table at 64 bytes/chunk, matching the cache-consciousness claims of
// spec.md §1. It does not include T's own footprint beyond the slice
// header, since T is an opaque trivially-copyable payload.
func (t *Tree[T]) SizeBytes() int { return len(t.chunks) * ChunkWords * 8 }

func (t *Tree[T]) allocChunk() hhdsprim.ChunkID {
	if n := len(t.freeChunks); n > 0 {
		id := t.freeChunks[n-1]
		t.freeChunks = t.freeChunks[:n-1]
		t.chunks[id] = TreePointers{}
		return id
	}
	id := hhdsprim.ChunkID(len(t.chunks))
	t.chunks = append(t.chunks, TreePointers{})
	t.data = append(t.data, make([]T, hhdsprim.NumShortDelta+1)...)
	return id
}

func (t *Tree[T]) freeChunk(id hhdsprim.ChunkID) {
	t.freeChunks = append(t.freeChunks, id)
}

func (t *Tree[T]) setData(pos hhdsprim.TreePos, v T) {
	t.data[pos] = v
}

func (t *Tree[T]) clearData(pos hhdsprim.TreePos) {
	var zero T
	t.data[pos] = zero
}

// Data returns the payload stored at pos.
func (t *Tree[T]) Data(pos hhdsprim.TreePos) T { return t.data[pos] }

// AddRoot installs the tree's single root with the given payload.
// Requires an empty tree; calling it a second time is a precondition
// violation (spec §7 category 1).
func (t *Tree[T]) AddRoot(ctx context.Context, data T) hhdsprim.TreePos {
	hhdsprim.Assert(!t.hasRoot, "AddRoot called on a non-empty tree")
	chunkID := t.allocChunk()
	hhdsprim.Invariant(chunkID == 1, "root chunk must be chunk 1, got %d", chunkID)
	pos := hhdsprim.PosOf(chunkID, 0)
	t.chunks[chunkID].SetIsLeaf(true)
	t.setData(pos, data)
	t.hasRoot = true
	t.rootChunk = chunkID
	dlog.Tracef(ctx, "tree: add_root -> %v", pos)
	return pos
}

// childPointer returns the (first, last) child chunk ids installed at
// pos's own slot, resolving long vs. short-delta storage by pos's
// offset within its chunk.
func (t *Tree[T]) childPointer(pos hhdsprim.TreePos) (first, last hhdsprim.ChunkID) {
	c := &t.chunks[pos.Chunk()]
	off := pos.Offset()
	if off == 0 {
		return c.FirstChildL(), c.LastChildL()
	}
	firstDelta := c.FirstChildS(off)
	lastDelta := c.LastChildS(off)
	var f, l hhdsprim.ChunkID
	if firstDelta != 0 {
		f = hhdsprim.ChunkID(int64(pos.Chunk()) + firstDelta)
	}
	if lastDelta != 0 {
		l = hhdsprim.ChunkID(int64(pos.Chunk()) + lastDelta)
	}
	return f, l
}

func (t *Tree[T]) setChildPointer(pos hhdsprim.TreePos, first, last hhdsprim.ChunkID) {
	c := &t.chunks[pos.Chunk()]
	off := pos.Offset()
	if off == 0 {
		c.SetFirstChildL(first)
		c.SetLastChildL(last)
		return
	}
	if first.IsInvalid() {
		c.SetFirstChildS(off, 0)
	} else {
		c.SetFirstChildS(off, int64(first)-int64(pos.Chunk()))
	}
	if last.IsInvalid() {
		c.SetLastChildS(off, 0)
	} else {
		c.SetLastChildS(off, int64(last)-int64(pos.Chunk()))
	}
}

// GetFirstChild returns the position of pos's first child, or the
// invalid position if pos is a leaf.
func (t *Tree[T]) GetFirstChild(pos hhdsprim.TreePos) hhdsprim.TreePos {
	first, _ := t.childPointer(pos)
	if first.IsInvalid() {
		return hhdsprim.TreePos(hhdsprim.Invalid)
	}
	return hhdsprim.PosOf(first, 0)
}

// GetLastChild returns the position of pos's last child, or the invalid
// position if pos is a leaf.
func (t *Tree[T]) GetLastChild(pos hhdsprim.TreePos) hhdsprim.TreePos {
	_, last := t.childPointer(pos)
	if last.IsInvalid() {
		return hhdsprim.TreePos(hhdsprim.Invalid)
	}
	c := &t.chunks[last]
	return hhdsprim.PosOf(last, c.NumShortDelOcc())
}

// GetParent returns pos's parent position, or the invalid position if
// pos is the root.
func (t *Tree[T]) GetParent(pos hhdsprim.TreePos) hhdsprim.TreePos {
	return t.chunks[pos.Chunk()].Parent()
}

// IsLeaf reports whether pos has no children.
func (t *Tree[T]) IsLeaf(pos hhdsprim.TreePos) bool {
	first, _ := t.childPointer(pos)
	return first.IsInvalid()
}

// GetSiblingNext returns the next sibling of pos in insertion order, or
// the invalid position if pos is the last child of its parent.
func (t *Tree[T]) GetSiblingNext(pos hhdsprim.TreePos) hhdsprim.TreePos {
	c := &t.chunks[pos.Chunk()]
	off := pos.Offset()
	if off < c.NumShortDelOcc() {
		return hhdsprim.PosOf(pos.Chunk(), off+1)
	}
	next := c.NextSiblingChunk()
	if next.IsInvalid() {
		return hhdsprim.TreePos(hhdsprim.Invalid)
	}
	return hhdsprim.PosOf(next, 0)
}

// GetSiblingPrev returns the previous sibling of pos in insertion order,
// or the invalid position if pos is the first child of its parent.
func (t *Tree[T]) GetSiblingPrev(pos hhdsprim.TreePos) hhdsprim.TreePos {
	off := pos.Offset()
	if off > 0 {
		return hhdsprim.PosOf(pos.Chunk(), off-1)
	}
	prev := t.chunks[pos.Chunk()].PrevSiblingChunk()
	if prev.IsInvalid() {
		return hhdsprim.TreePos(hhdsprim.Invalid)
	}
	pc := &t.chunks[prev]
	return hhdsprim.PosOf(prev, pc.NumShortDelOcc())
}

// IsFirstChild reports whether pos is the first child of its parent.
func (t *Tree[T]) IsFirstChild(pos hhdsprim.TreePos) bool {
	return t.GetSiblingPrev(pos).IsInvalid()
}

// IsLastChild reports whether pos is the last child of its parent.
func (t *Tree[T]) IsLastChild(pos hhdsprim.TreePos) bool {
	return t.GetSiblingNext(pos).IsInvalid()
}

// fit installs childChunk as a child of parent, choosing long, short, or
// split encoding per spec.md §4.1's fit procedure.
func (t *Tree[T]) fit(ctx context.Context, parent hhdsprim.TreePos, childChunk hhdsprim.ChunkID) {
	off := parent.Offset()
	if off == 0 {
		first, _ := t.childPointer(parent)
		newFirst := first
		if first.IsInvalid() {
			newFirst = childChunk
		}
		t.setChildPointer(parent, newFirst, childChunk)
		t.chunks[parent.Chunk()].SetIsLeaf(false)
		return
	}

	delta := int64(childChunk) - int64(parent.Chunk())
	if FitsShortDelta(delta) {
		first, _ := t.childPointer(parent)
		newFirst := first
		if first.IsInvalid() {
			newFirst = childChunk
		}
		t.setChildPointer(parent, newFirst, childChunk)
		t.chunks[parent.Chunk()].SetIsLeaf(false)
		return
	}

	dlog.Debugf(ctx, "tree: split chunk %v at offset %d (delta %d does not fit)", parent.Chunk(), off, delta)
	t.split(ctx, parent, childChunk)
}

// split implements the chunk-split/promote step of the fit procedure:
// every occupied slot at or after parent's offset is promoted into its
// own freshly allocated chunk (anchor slot, long child pointers), and
// the grandchildren's parent fields are repointed. The last of the new
// chunks is then fit into the grandparent.
func (t *Tree[T]) split(ctx context.Context, parent hhdsprim.TreePos, pendingChild hhdsprim.ChunkID) {
	oldChunkID := parent.Chunk()
	oldChunk := &t.chunks[oldChunkID]
	off := parent.Offset()
	occ := oldChunk.NumShortDelOcc()
	grandparent := oldChunk.Parent()

	var lastNew, relocated hhdsprim.ChunkID
	for i := off; i <= occ; i++ {
		srcPos := hhdsprim.PosOf(oldChunkID, i)
		newChunkID := t.allocChunk()
		newPos := hhdsprim.PosOf(newChunkID, 0)

		t.setData(newPos, t.data[srcPos])
		t.clearData(srcPos)

		firstC, lastC := t.childPointer(srcPos)
		t.chunks[newChunkID].SetFirstChildL(firstC)
		t.chunks[newChunkID].SetLastChildL(lastC)
		t.chunks[newChunkID].SetIsLeaf(firstC.IsInvalid())
		t.reparentChain(firstC, newPos)

		t.chunks[newChunkID].SetParent(grandparent)

		if i == off {
			t.chunks[newChunkID].SetPrevSiblingChunk(oldChunk.PrevSiblingChunk())
			if prev := oldChunk.PrevSiblingChunk(); !prev.IsInvalid() {
				t.chunks[prev].SetNextSiblingChunk(newChunkID)
			}
		} else {
			t.chunks[newChunkID].SetPrevSiblingChunk(lastNew)
			t.chunks[lastNew].SetNextSiblingChunk(newChunkID)
		}
		if i == off {
			relocated = newChunkID
		}
		lastNew = newChunkID
	}
	oldChunk = &t.chunks[oldChunkID] // allocChunk may have grown t.chunks
	t.chunks[lastNew].SetNextSiblingChunk(oldChunk.NextSiblingChunk())
	if next := oldChunk.NextSiblingChunk(); !next.IsInvalid() {
		t.chunks[next].SetPrevSiblingChunk(lastNew)
	}
	// split is only reached via fit's offset>0 branch, so off>0 here and
	// oldChunk keeps its anchor slot (offset 0) and slots [0,off); it
	// is shrunk, never freed, so grandparent's own child-chunk pointer
	// (which may still name oldChunkID) stays valid.
	oldChunk.SetNumShortDelOcc(off - 1)

	hhdsprim.Invariant(!grandparent.IsInvalid(), "split reached a chunk with no grandparent")
	t.fit(ctx, grandparent, lastNew)
	t.chunks[pendingChild].SetParent(hhdsprim.PosOf(relocated, 0))
	t.fit(ctx, hhdsprim.PosOf(relocated, 0), pendingChild)
}

// reparentChain walks the sibling-chunk list starting at first and
// rewrites every chunk's Parent field to newParent.
func (t *Tree[T]) reparentChain(first hhdsprim.ChunkID, newParent hhdsprim.TreePos) {
	for id := first; !id.IsInvalid(); id = t.chunks[id].NextSiblingChunk() {
		t.chunks[id].SetParent(newParent)
	}
}

// AddChild appends a new first child under parent, or delegates to
// AppendSibling if parent already has children.
func (t *Tree[T]) AddChild(ctx context.Context, parent hhdsprim.TreePos, data T) hhdsprim.TreePos {
	first := t.GetFirstChild(parent)
	if !first.IsInvalid() {
		return t.AppendSibling(ctx, t.GetLastChild(parent), data)
	}
	childChunk := t.allocChunk()
	t.chunks[childChunk].SetParent(parent)
	pos := hhdsprim.PosOf(childChunk, 0)
	t.setData(pos, data)
	t.fit(ctx, parent, childChunk)
	dlog.Tracef(ctx, "tree: add_child(%v) -> %v", parent, pos)
	return pos
}

// AppendSibling inserts data as the new last child of sibling's parent.
func (t *Tree[T]) AppendSibling(ctx context.Context, sibling hhdsprim.TreePos, data T) hhdsprim.TreePos {
	parent := t.GetParent(sibling)
	lastChild := t.GetLastChild(parent)
	lastChunkID := lastChild.Chunk()
	lc := &t.chunks[lastChunkID]
	occ := lc.NumShortDelOcc()

	if occ < hhdsprim.NumShortDelta {
		newOffset := occ + 1
		lc.SetNumShortDelOcc(newOffset)
		pos := hhdsprim.PosOf(lastChunkID, newOffset)
		t.setData(pos, data)
		return pos
	}

	newChunkID := t.allocChunk()
	lc = &t.chunks[lastChunkID] // allocChunk may have grown t.chunks
	t.chunks[newChunkID].SetParent(parent)
	next := lc.NextSiblingChunk()
	hhdsprim.Invariant(next.IsInvalid(), "last child chunk %v has a dangling next sibling", lastChunkID)
	t.chunks[newChunkID].SetPrevSiblingChunk(lastChunkID)
	lc.SetNextSiblingChunk(newChunkID)
	pos := hhdsprim.PosOf(newChunkID, 0)
	t.setData(pos, data)
	t.fit(ctx, parent, newChunkID)
	dlog.Tracef(ctx, "tree: append_sibling(%v) -> %v", sibling, pos)
	return pos
}

// InsertNextSibling inserts data immediately after pos in sibling order.
func (t *Tree[T]) InsertNextSibling(ctx context.Context, pos hhdsprim.TreePos, data T) hhdsprim.TreePos {
	parent := t.GetParent(pos)
	if pos == t.GetLastChild(parent) {
		return t.AppendSibling(ctx, pos, data)
	}

	chunkID := pos.Chunk()
	c := &t.chunks[chunkID]
	off := pos.Offset()
	occ := c.NumShortDelOcc()

	if off == occ {
		// pos is the last slot of its own chunk but not of the parent:
		// a further sibling chunk already follows it.
		newChunkID := t.allocChunk()
		c = &t.chunks[chunkID] // allocChunk may have grown t.chunks
		t.chunks[newChunkID].SetParent(parent)
		next := c.NextSiblingChunk()
		t.chunks[newChunkID].SetPrevSiblingChunk(chunkID)
		t.chunks[newChunkID].SetNextSiblingChunk(next)
		c.SetNextSiblingChunk(newChunkID)
		if !next.IsInvalid() {
			t.chunks[next].SetPrevSiblingChunk(newChunkID)
		}
		newPos := hhdsprim.PosOf(newChunkID, 0)
		t.setData(newPos, data)
		return newPos
	}

	return t.insertMidChunk(ctx, parent, chunkID, off, data)
}

// insertMidChunk inserts data right after offset `at` within chunkID,
// shifting later slots of that chunk up by one (splitting the chunk
// into two sibling chunks if it has no room to grow).
func (t *Tree[T]) insertMidChunk(ctx context.Context, parent hhdsprim.TreePos, chunkID hhdsprim.ChunkID, at int, data T) hhdsprim.TreePos {
	c := &t.chunks[chunkID]
	occ := c.NumShortDelOcc()

	if occ < hhdsprim.NumShortDelta {
		for o := occ; o > at; o-- {
			t.moveSlot(hhdsprim.PosOf(chunkID, o), hhdsprim.PosOf(chunkID, o+1))
		}
		c.SetNumShortDelOcc(occ + 1)
		newPos := hhdsprim.PosOf(chunkID, at+1)
		t.setData(newPos, data)
		return newPos
	}

	newChunkID := t.allocChunk()
	c = &t.chunks[chunkID] // allocChunk may have grown t.chunks
	t.chunks[newChunkID].SetParent(parent)
	next := c.NextSiblingChunk()
	t.chunks[newChunkID].SetPrevSiblingChunk(chunkID)
	t.chunks[newChunkID].SetNextSiblingChunk(next)
	c.SetNextSiblingChunk(newChunkID)
	if !next.IsInvalid() {
		t.chunks[next].SetPrevSiblingChunk(newChunkID)
	}

	tailLen := occ - at
	for k := 1; k <= tailLen; k++ {
		t.moveSlot(hhdsprim.PosOf(chunkID, at+k), hhdsprim.PosOf(newChunkID, k-1))
	}
	t.chunks[newChunkID].SetNumShortDelOcc(tailLen - 1)

	if next.IsInvalid() {
		t.fit(ctx, parent, newChunkID)
	}

	c.SetNumShortDelOcc(at + 1)
	newPos := hhdsprim.PosOf(chunkID, at+1)
	t.setData(newPos, data)
	return newPos
}

// moveSlot relocates the data and child pointer of src to dst, including
// reparenting any of src's children to point at dst.
func (t *Tree[T]) moveSlot(src, dst hhdsprim.TreePos) {
	t.setData(dst, t.data[src])
	first, last := t.childPointer(src)
	t.setChildPointer(dst, first, last)
	t.setChildPointer(src, hhdsprim.ChunkID(hhdsprim.Invalid), hhdsprim.ChunkID(hhdsprim.Invalid))
	if !first.IsInvalid() {
		t.reparentChain(first, dst)
	}
}

// DeleteLeaf removes pos, which must have no children.
func (t *Tree[T]) DeleteLeaf(ctx context.Context, pos hhdsprim.TreePos) {
	hhdsprim.Assert(t.IsLeaf(pos), "DeleteLeaf called on non-leaf %v", pos)

	chunkID := pos.Chunk()
	c := &t.chunks[chunkID]
	off := pos.Offset()
	occ := c.NumShortDelOcc()

	t.clearData(pos)
	for o := off; o < occ; o++ {
		t.moveSlot(hhdsprim.PosOf(chunkID, o+1), hhdsprim.PosOf(chunkID, o))
	}
	if occ > 0 {
		t.clearData(hhdsprim.PosOf(chunkID, occ))
		c.SetNumShortDelOcc(occ - 1)
	}

	if off == 0 && occ == 0 {
		prev := c.PrevSiblingChunk()
		next := c.NextSiblingChunk()
		if !prev.IsInvalid() {
			t.chunks[prev].SetNextSiblingChunk(next)
		}
		if !next.IsInvalid() {
			t.chunks[next].SetPrevSiblingChunk(prev)
		}
		parent := c.Parent()
		t.freeChunk(chunkID)

		if !parent.IsInvalid() {
			t.recomputeChildPointer(parent)
		}
	}
	dlog.Tracef(ctx, "tree: delete_leaf(%v)", pos)
}

// recomputeChildPointer walks parent's child sibling-chunk chain end to
// end and rewrites parent's stored first/last child pointers, used
// after the first or last child chunk is freed by DeleteLeaf.
func (t *Tree[T]) recomputeChildPointer(parent hhdsprim.TreePos) {
	newFirst, newLast := t.scanChildren(parent)
	t.setChildPointer(parent, newFirst, newLast)
	t.chunks[parent.Chunk()].SetIsLeaf(newFirst.IsInvalid())
}

func (t *Tree[T]) isFreeChunk(id hhdsprim.ChunkID) bool {
	for _, f := range t.freeChunks {
		if f == id {
			return true
		}
	}
	return false
}

// scanChildren finds the surviving first/last child chunk of parent by
// walking every allocated chunk and checking its Parent field. This is
// O(chunks) and is only used on the rare path where DeleteLeaf frees the
// boundary chunk of a child list.
func (t *Tree[T]) scanChildren(parent hhdsprim.TreePos) (first, last hhdsprim.ChunkID) {
	for id := hhdsprim.ChunkID(1); int(id) < len(t.chunks); id++ {
		if t.isFreeChunk(id) {
			continue
		}
		if t.chunks[id].Parent() != parent {
			continue
		}
		if t.chunks[id].PrevSiblingChunk().IsInvalid() || t.isFreeChunk(t.chunks[id].PrevSiblingChunk()) {
			first = id
		}
		if t.chunks[id].NextSiblingChunk().IsInvalid() {
			last = id
		}
	}
	return first, last
}

// DeleteSubtree deletes pos and everything beneath it, leaf-first.
func (t *Tree[T]) DeleteSubtree(ctx context.Context, pos hhdsprim.TreePos) {
	var order []hhdsprim.TreePos
	queue := []hhdsprim.TreePos{pos}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for c := t.GetFirstChild(cur); !c.IsInvalid(); c = t.GetSiblingNext(c) {
			queue = append(queue, c)
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		t.DeleteLeaf(ctx, order[i])
	}
}
