// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

// Package tree implements the packed hierarchical tree arena: fixed-size
// 64-byte chunk records carrying up to 8 logical positions, a mix of
// long (absolute chunk id) and short (signed delta) child pointers, and
// the fit/split insertion algorithm that keeps siblings adjacent in
// memory when possible.
package tree

import (
	"github.com/masc-ucsc/hhds/lib/bitpack"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// Bit layout of one 64-byte TreePointers record, 8 uint64 words wide.
// Chosen to hold the full field set of the source tree.hpp chunk record
// (parent as an absolute Position, two sibling-chunk links, two
// anchor-slot long child pointers, 7 short-delta child pointer pairs,
// occupancy count, and the leaf flag) within one cache line, per
// spec.md §3/§9.
const (
	posWidth = hhdsprim.ChunkBits + hhdsprim.ChunkShift // width of a full Position field

	offParent           = 0
	offNextSiblingChunk = offParent + posWidth
	offPrevSiblingChunk = offNextSiblingChunk + hhdsprim.ChunkBits
	offFirstChildL      = offPrevSiblingChunk + hhdsprim.ChunkBits
	offLastChildL       = offFirstChildL + hhdsprim.ChunkBits
	offNumShortDelOcc   = offLastChildL + hhdsprim.ChunkBits
	offIsLeaf           = offNumShortDelOcc + 3
	offFirstChildS      = offIsLeaf + 1
	offLastChildS       = offFirstChildS + hhdsprim.NumShortDelta*hhdsprim.ShortDelta

	// ChunkWords is the number of uint64 words in one TreePointers record
	// (64 bytes == 8 * 8 bytes).
	ChunkWords = 8
)

// TreePointers is one 64-byte, cache-line-aligned chunk record: the
// parent/sibling links, the two anchor-slot long child pointers, and
// the seven short-delta child pointer pairs for offsets 1..7.
type TreePointers struct {
	words [ChunkWords]uint64
}

// Parent returns the absolute position of this chunk's parent, or the
// invalid position if this is chunk 1 (the root chunk).
func (c *TreePointers) Parent() hhdsprim.TreePos {
	return hhdsprim.TreePos(bitpack.Get(c.words[:], offParent, posWidth))
}

// SetParent sets the absolute position of this chunk's parent.
func (c *TreePointers) SetParent(p hhdsprim.TreePos) {
	bitpack.Set(c.words[:], offParent, posWidth, uint64(p))
}

// NextSiblingChunk returns the next chunk in the sibling-chunk list
// (chunks sharing this chunk's parent), or the invalid chunk id if this
// is the last.
func (c *TreePointers) NextSiblingChunk() hhdsprim.ChunkID {
	return hhdsprim.ChunkID(bitpack.Get(c.words[:], offNextSiblingChunk, hhdsprim.ChunkBits))
}

func (c *TreePointers) SetNextSiblingChunk(id hhdsprim.ChunkID) {
	bitpack.Set(c.words[:], offNextSiblingChunk, hhdsprim.ChunkBits, uint64(id))
}

// PrevSiblingChunk returns the previous chunk in the sibling-chunk list.
func (c *TreePointers) PrevSiblingChunk() hhdsprim.ChunkID {
	return hhdsprim.ChunkID(bitpack.Get(c.words[:], offPrevSiblingChunk, hhdsprim.ChunkBits))
}

func (c *TreePointers) SetPrevSiblingChunk(id hhdsprim.ChunkID) {
	bitpack.Set(c.words[:], offPrevSiblingChunk, hhdsprim.ChunkBits, uint64(id))
}

// FirstChildL returns the long (absolute) child pointer for the anchor
// slot (offset 0) of this chunk: the chunk id holding the first child.
func (c *TreePointers) FirstChildL() hhdsprim.ChunkID {
	return hhdsprim.ChunkID(bitpack.Get(c.words[:], offFirstChildL, hhdsprim.ChunkBits))
}

func (c *TreePointers) SetFirstChildL(id hhdsprim.ChunkID) {
	bitpack.Set(c.words[:], offFirstChildL, hhdsprim.ChunkBits, uint64(id))
}

// LastChildL returns the long child pointer to the chunk holding the
// anchor slot's last child.
func (c *TreePointers) LastChildL() hhdsprim.ChunkID {
	return hhdsprim.ChunkID(bitpack.Get(c.words[:], offLastChildL, hhdsprim.ChunkBits))
}

func (c *TreePointers) SetLastChildL(id hhdsprim.ChunkID) {
	bitpack.Set(c.words[:], offLastChildL, hhdsprim.ChunkBits, uint64(id))
}

// NumShortDelOcc returns the count of occupied short-delta slots
// (0..NumShortDelta); occupied slots are always a contiguous prefix.
func (c *TreePointers) NumShortDelOcc() int {
	return int(bitpack.Get(c.words[:], offNumShortDelOcc, 3))
}

func (c *TreePointers) SetNumShortDelOcc(n int) {
	hhdsprim.Invariant(n >= 0 && n <= hhdsprim.NumShortDelta, "num_short_del_occ %d out of range", n)
	bitpack.Set(c.words[:], offNumShortDelOcc, 3, uint64(n))
}

// IsLeaf reports whether no slot of this chunk has any child.
func (c *TreePointers) IsLeaf() bool {
	return bitpack.Get(c.words[:], offIsLeaf, 1) != 0
}

func (c *TreePointers) SetIsLeaf(v bool) {
	var u uint64
	if v {
		u = 1
	}
	bitpack.Set(c.words[:], offIsLeaf, 1, u)
}

// FirstChildS returns the short-delta long pointer for slot i (1..7,
// stored at index i-1): the delta, relative to this chunk's id, of the
// chunk holding slot i's first child. Zero means absent.
func (c *TreePointers) FirstChildS(i int) int64 {
	return bitpack.GetSigned(c.words[:], offFirstChildS+(i-1)*hhdsprim.ShortDelta, hhdsprim.ShortDelta)
}

func (c *TreePointers) SetFirstChildS(i int, delta int64) {
	bitpack.SetSigned(c.words[:], offFirstChildS+(i-1)*hhdsprim.ShortDelta, hhdsprim.ShortDelta, delta)
}

// LastChildS returns the short-delta long pointer to the chunk holding
// slot i's last child.
func (c *TreePointers) LastChildS(i int) int64 {
	return bitpack.GetSigned(c.words[:], offLastChildS+(i-1)*hhdsprim.ShortDelta, hhdsprim.ShortDelta)
}

func (c *TreePointers) SetLastChildS(i int, delta int64) {
	bitpack.SetSigned(c.words[:], offLastChildS+(i-1)*hhdsprim.ShortDelta, hhdsprim.ShortDelta, delta)
}

// FitsShortDelta reports whether a child-chunk - this-chunk delta fits
// in the signed SHORT_DELTA field.
func FitsShortDelta(delta int64) bool {
	return bitpack.FitsSigned(delta, hhdsprim.ShortDelta)
}
