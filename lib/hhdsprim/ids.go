// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

// Package hhdsprim holds the primitive id types and packed-record layout
// constants shared by lib/tree, lib/graph, and lib/forest, the way
// btrfsprim anchors the rest of the teacher's layers.
package hhdsprim

import "fmt"

// Layout constants for the tree chunk record (lib/tree.TreePointers),
// taken from the original masc-ucsc/hhds tree.hpp.
const (
	// ChunkBits is the width, in bits, of a long (absolute) chunk
	// pointer field (parent, siblings, first/last long child).
	ChunkBits = 49
	// ShortDelta is the width, in bits, of a signed short-delta child
	// pointer, relative to the chunk it is stored in.
	ShortDelta = 17
	// ChunkShift is log2 of the number of TreePos slots packed into one
	// chunk (a chunk holds 1<<ChunkShift positions).
	ChunkShift = 3
	// NumShortDelta is the number of short-delta child pointers a chunk
	// can hold inline, both for first_child_s and last_child_s.
	NumShortDelta = 7
)

// TreePos identifies one node-sized slot within the tree arena: a chunk
// id and an offset within that chunk (0..1<<ChunkShift).
type TreePos uint64

// Invalid is the zero/sentinel TreePos, ChunkID, VertexID, and
// ContainerRef value, matching the teacher's convention of reserving the
// zero id as "no value".
const Invalid = 0

// IsInvalid reports whether p is the sentinel "no position" value.
func (p TreePos) IsInvalid() bool { return p == Invalid }

func (p TreePos) String() string { return fmt.Sprintf("tpos:%d", uint64(p)) }

// Chunk returns the chunk id a position lives in (the high bits).
func (p TreePos) Chunk() ChunkID { return ChunkID(uint64(p) >> ChunkShift) }

// Offset returns the offset of a position within its chunk (the low
// ChunkShift bits, 0..NumShortDelta).
func (p TreePos) Offset() int { return int(uint64(p) & (1<<ChunkShift - 1)) }

// PosOf builds a TreePos from a chunk id and an in-chunk offset.
func PosOf(chunk ChunkID, offset int) TreePos {
	return TreePos(uint64(chunk)<<ChunkShift | uint64(offset))
}

// ChunkID identifies one 64-byte TreePointers record in the tree arena.
type ChunkID uint64

// IsInvalid reports whether c is the sentinel "no chunk" value.
func (c ChunkID) IsInvalid() bool { return c == Invalid }

func (c ChunkID) String() string { return fmt.Sprintf("chunk:%d", uint64(c)) }

// VertexID identifies one node or pin master entry in a graph arena.
// Nodes and pins share one id space, discriminated by the entry's tag.
type VertexID uint64

// IsInvalid reports whether v is the sentinel "no vertex" value.
func (v VertexID) IsInvalid() bool { return v == Invalid }

func (v VertexID) String() string { return fmt.Sprintf("vid:%d", uint64(v)) }

// ContainerRef is a forest/graph-library handle: positive values index a
// Tree, negative values index a Graph, and zero is invalid. This mirrors
// spec.md §4.3's "encode container kind in the sign of the ref" design.
type ContainerRef int64

// IsInvalid reports whether r is the sentinel "no container" value.
func (r ContainerRef) IsInvalid() bool { return r == 0 }

// IsTree reports whether r refers to a Tree (positive ref).
func (r ContainerRef) IsTree() bool { return r > 0 }

// IsGraph reports whether r refers to a Graph (negative ref).
func (r ContainerRef) IsGraph() bool { return r < 0 }

func (r ContainerRef) String() string { return fmt.Sprintf("ref:%d", int64(r)) }
