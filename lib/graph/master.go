// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

// Package graph implements the packed hierarchical bipartite graph
// arena: a uniform 32-byte master entry (node or pin, discriminated by
// tag) with an inline edge set, a 64-byte overflow entry for masters
// whose inline set is full, and a hash-set spillover for overflow
// entries that are themselves full.
package graph

import (
	"github.com/masc-ucsc/hhds/lib/bitpack"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// Tag discriminates what a MasterEntry currently holds.
type Tag uint8

const (
	TagFree Tag = iota
	TagNode
	TagPin
	TagOverflow
)

// NumSedges is the number of inline short (signed-delta) edge slots a
// master entry carries, per spec.md §3.2.
const NumSedges = 4

// sedgeBits is the width of one inline short edge delta: a signed
// 16-bit target-minus-self offset, per spec.md §3.2.
const sedgeBits = 16

// Bit layout of one 32-byte MasterEntry, 4 uint64 words wide. The
// record is uniform across node and pin masters (spec.md §9's "source
// distinguishes same-offset-means-different-things depending on tag"):
// slot 2 of the short-edge array doubles as a pin's port id
// (sedge2_or_portid), and the two long-edge fields double as a pin's
// owning node id and the shared overflow-record id
// (ledge0_or_prev, ledge1_or_overflow).
const (
	mOffTag         = 0
	mOffOverflowLnk = mOffTag + 2
	mOffInpMask     = mOffOverflowLnk + 1
	mOffSedge0      = mOffInpMask + 6
	mOffSedge1      = mOffSedge0 + sedgeBits
	mOffSedge2      = mOffSedge1 + sedgeBits // sedge2_or_portid
	mOffSedge3      = mOffSedge2 + sedgeBits
	mOffNextPinPtr  = mOffSedge3 + sedgeBits
	mOffLedge0      = mOffNextPinPtr + 32 // ledge0_or_prev (node id for a pin)
	mOffLedge1      = mOffLedge0 + 32     // ledge1_or_overflow
	mOffBits        = mOffLedge1 + 32

	// MasterWords is the number of uint64 words in one MasterEntry (32
	// bytes == 4 * 8 bytes).
	MasterWords = 4
)

// MasterEntry is one 32-byte, cache-packed node-or-pin record.
type MasterEntry struct {
	words [MasterWords]uint64
}

func (m *MasterEntry) Tag() Tag { return Tag(bitpack.Get(m.words[:], mOffTag, 2)) }
func (m *MasterEntry) SetTag(t Tag) {
	bitpack.Set(m.words[:], mOffTag, 2, uint64(t))
}

func (m *MasterEntry) OverflowLink() bool {
	return bitpack.Get(m.words[:], mOffOverflowLnk, 1) != 0
}
func (m *MasterEntry) SetOverflowLink(v bool) {
	var u uint64
	if v {
		u = 1
	}
	bitpack.Set(m.words[:], mOffOverflowLnk, 1, u)
}

func (m *MasterEntry) InpMask() uint64 { return bitpack.Get(m.words[:], mOffInpMask, 6) }
func (m *MasterEntry) SetInpMask(v uint64) {
	bitpack.Set(m.words[:], mOffInpMask, 6, v)
}

func (m *MasterEntry) InpBit(slot int) bool {
	return m.InpMask()&(1<<uint(slot)) != 0
}
func (m *MasterEntry) SetInpBit(slot int, v bool) {
	mask := m.InpMask()
	if v {
		mask |= 1 << uint(slot)
	} else {
		mask &^= 1 << uint(slot)
	}
	m.SetInpMask(mask)
}

func sedgeOffset(i int) int {
	switch i {
	case 0:
		return mOffSedge0
	case 1:
		return mOffSedge1
	case 2:
		return mOffSedge2
	case 3:
		return mOffSedge3
	default:
		hhdsprim.Invariant(false, "sedge index %d out of range", i)
		return 0
	}
}

// Sedge returns the signed delta stored in inline short-edge slot i
// (0..NumSedges-1). Zero means absent.
func (m *MasterEntry) Sedge(i int) int64 {
	return bitpack.GetSigned(m.words[:], sedgeOffset(i), sedgeBits)
}

func (m *MasterEntry) SetSedge(i int, delta int64) {
	bitpack.SetSigned(m.words[:], sedgeOffset(i), sedgeBits, delta)
}

// FitsSedge reports whether a target-self delta fits an inline short
// edge slot (16 bits signed, per spec.md §3.2's "target - self" range).
func FitsSedge(delta int64) bool {
	return bitpack.FitsSigned(delta, sedgeBits)
}

// PortID reads slot 2 of the short-edge array as a pin's port index
// (sedge2_or_portid), valid only when Tag() == TagPin.
func (m *MasterEntry) PortID() uint32 {
	return uint32(bitpack.Get(m.words[:], mOffSedge2, sedgeBits))
}

func (m *MasterEntry) SetPortID(port uint32) {
	bitpack.Set(m.words[:], mOffSedge2, sedgeBits, uint64(port))
}

// NextPinPtr is the intrusive pin-list forward pointer: for a node, the
// head of its pin list; for a pin, the next pin of the same node.
func (m *MasterEntry) NextPinPtr() hhdsprim.VertexID {
	return hhdsprim.VertexID(bitpack.Get(m.words[:], mOffNextPinPtr, 32))
}

func (m *MasterEntry) SetNextPinPtr(id hhdsprim.VertexID) {
	bitpack.Set(m.words[:], mOffNextPinPtr, 32, uint64(id))
}

// Ledge0 is the node's first long (absolute) edge id.
func (m *MasterEntry) Ledge0() hhdsprim.VertexID {
	return hhdsprim.VertexID(bitpack.Get(m.words[:], mOffLedge0, 32))
}
func (m *MasterEntry) SetLedge0(id hhdsprim.VertexID) {
	bitpack.Set(m.words[:], mOffLedge0, 32, uint64(id))
}

// NodeID reads ledge0_or_prev as a pin's owning node id, valid only
// when Tag() == TagPin.
func (m *MasterEntry) NodeID() hhdsprim.VertexID       { return m.Ledge0() }
func (m *MasterEntry) SetNodeID(id hhdsprim.VertexID) { m.SetLedge0(id) }

// Ledge1 is a second long edge id for either a node or a pin master
// (unlike Ledge0, which a pin permanently dedicates to its node_id), or
// -- if OverflowLink is set -- the overflow record id, a meaning shared
// by both tags.
func (m *MasterEntry) Ledge1() uint32 {
	return uint32(bitpack.Get(m.words[:], mOffLedge1, 32))
}
func (m *MasterEntry) SetLedge1(v uint32) {
	bitpack.Set(m.words[:], mOffLedge1, 32, uint64(v))
}

func (m *MasterEntry) OverflowID() uint32  { return m.Ledge1() }
func (m *MasterEntry) SetOverflowID(id uint32) { m.SetLedge1(id) }

// Bits returns the 8 bits of generic per-vertex payload flags.
func (m *MasterEntry) Bits() uint8 { return uint8(bitpack.Get(m.words[:], mOffBits, 8)) }
func (m *MasterEntry) SetBits(v uint8) {
	bitpack.Set(m.words[:], mOffBits, 8, uint64(v))
}
