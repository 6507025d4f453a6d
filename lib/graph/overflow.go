// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package graph

import (
	"sort"

	"github.com/masc-ucsc/hhds/lib/bitpack"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// MaxOverflowSedges and MaxOverflowLedges bound the sorted inline arrays
// an OverflowEntry carries before a master must spill into the
// Graph-level hash set (spec.md §3.2/§4.2).
const (
	MaxOverflowSedges = 16
	MaxOverflowLedges = 6

	// each entry packs a direction bit below its value (the direction
	// bit is the low bit) -- see encodeShort/encodeLong. The arrays are
	// kept sorted by the decoded delta or id, not by the raw field.
	shortFieldBits = 1 + sedgeBits
	longFieldBits  = 1 + 32

	oOffNumShort = 0
	oOffNumLong  = oOffNumShort + 5
	oOffHasSpill = oOffNumLong + 3
	oOffSpillID  = oOffHasSpill + 1
	oOffShorts   = oOffSpillID + 32
	oOffLongs    = oOffShorts + MaxOverflowSedges*shortFieldBits

	// OverflowWords is the number of uint64 words in one OverflowEntry
	// (64 bytes == 8 * 8 bytes, the size of two MasterEntry records).
	// Overflow entries live in the Graph's own overflow slice and do not
	// consume master ids.
	OverflowWords = 8
)

// OverflowEntry extends a master's inline edge set with sorted dynamic
// arrays of short deltas and long ids once the inline slots are full.
// When even these fill up, HasSpill marks that the owning Graph's
// hash-set spillover holds the rest (spec.md §4.2, step 4).
type OverflowEntry struct {
	words [OverflowWords]uint64
}

func (o *OverflowEntry) NumShort() int { return int(bitpack.Get(o.words[:], oOffNumShort, 5)) }
func (o *OverflowEntry) setNumShort(n int) {
	bitpack.Set(o.words[:], oOffNumShort, 5, uint64(n))
}

func (o *OverflowEntry) NumLong() int { return int(bitpack.Get(o.words[:], oOffNumLong, 3)) }
func (o *OverflowEntry) setNumLong(n int) {
	bitpack.Set(o.words[:], oOffNumLong, 3, uint64(n))
}

func (o *OverflowEntry) HasSpill() bool { return bitpack.Get(o.words[:], oOffHasSpill, 1) != 0 }
func (o *OverflowEntry) SetHasSpill(v bool) {
	var u uint64
	if v {
		u = 1
	}
	bitpack.Set(o.words[:], oOffHasSpill, 1, u)
}

// SpillID names the Graph-level hash-set bucket holding this overflow's
// spill, valid only when HasSpill is true.
func (o *OverflowEntry) SpillID() uint32 { return uint32(bitpack.Get(o.words[:], oOffSpillID, 32)) }
func (o *OverflowEntry) SetSpillID(id uint32) {
	bitpack.Set(o.words[:], oOffSpillID, 32, uint64(id))
}

func encodeShort(delta int64, isInput bool) uint64 {
	var d uint64
	if isInput {
		d = 1
	}
	raw := uint64(delta) & (1<<sedgeBits - 1)
	return raw<<1 | d
}

func decodeShort(token uint64) (delta int64, isInput bool) {
	isInput = token&1 != 0
	raw := (token >> 1) & (1<<sedgeBits - 1)
	if raw&(1<<(sedgeBits-1)) != 0 {
		raw |= ^uint64(0) << sedgeBits
	}
	return int64(raw), isInput
}

func encodeLong(id hhdsprim.VertexID, isInput bool) uint64 {
	var d uint64
	if isInput {
		d = 1
	}
	return uint64(id)<<1 | d
}

func decodeLong(token uint64) (id hhdsprim.VertexID, isInput bool) {
	isInput = token&1 != 0
	return hhdsprim.VertexID(token >> 1), isInput
}

func (o *OverflowEntry) shortToken(i int) uint64 {
	return bitpack.Get(o.words[:], oOffShorts+i*shortFieldBits, shortFieldBits)
}

func (o *OverflowEntry) setShortToken(i int, tok uint64) {
	bitpack.Set(o.words[:], oOffShorts+i*shortFieldBits, shortFieldBits, tok)
}

func (o *OverflowEntry) longToken(i int) uint64 {
	return bitpack.Get(o.words[:], oOffLongs+i*longFieldBits, longFieldBits)
}

func (o *OverflowEntry) setLongToken(i int, tok uint64) {
	bitpack.Set(o.words[:], oOffLongs+i*longFieldBits, longFieldBits, tok)
}

// OverflowEdge is one decoded overflow entry: the far endpoint, encoded
// either as a delta relative to the owning master (short) or an
// absolute id (long), plus whether it is an input to the owner.
type OverflowEdge struct {
	Delta   int64
	IsInput bool
}

// Shorts returns the sorted inline short edges currently stored.
func (o *OverflowEntry) Shorts() []OverflowEdge {
	n := o.NumShort()
	out := make([]OverflowEdge, n)
	for i := 0; i < n; i++ {
		delta, isInput := decodeShort(o.shortToken(i))
		out[i] = OverflowEdge{Delta: delta, IsInput: isInput}
	}
	return out
}

// LongEdge is one decoded overflow long (absolute id) edge.
type LongEdge struct {
	ID      hhdsprim.VertexID
	IsInput bool
}

// Longs returns the sorted inline long edges currently stored.
func (o *OverflowEntry) Longs() []LongEdge {
	n := o.NumLong()
	out := make([]LongEdge, n)
	for i := 0; i < n; i++ {
		id, isInput := decodeLong(o.longToken(i))
		out[i] = LongEdge{ID: id, IsInput: isInput}
	}
	return out
}

// InsertShort inserts delta (with its direction) into the sorted short
// array. It reports whether there was room.
func (o *OverflowEntry) InsertShort(delta int64, isInput bool) bool {
	n := o.NumShort()
	tok := encodeShort(delta, isInput)
	i := sort.Search(n, func(i int) bool {
		d, _ := decodeShort(o.shortToken(i))
		return d >= delta
	})
	if i < n {
		if d, _ := decodeShort(o.shortToken(i)); d == delta {
			o.setShortToken(i, tok) // idempotent re-add, direction may be refreshed
			return true
		}
	}
	if n >= MaxOverflowSedges {
		return false
	}
	for j := n; j > i; j-- {
		o.setShortToken(j, o.shortToken(j-1))
	}
	o.setShortToken(i, tok)
	o.setNumShort(n + 1)
	return true
}

// DeleteShort removes delta from the sorted short array, reporting
// whether it was present.
func (o *OverflowEntry) DeleteShort(delta int64) bool {
	n := o.NumShort()
	i := sort.Search(n, func(i int) bool {
		d, _ := decodeShort(o.shortToken(i))
		return d >= delta
	})
	if i >= n {
		return false
	}
	if d, _ := decodeShort(o.shortToken(i)); d != delta {
		return false
	}
	for j := i; j < n-1; j++ {
		o.setShortToken(j, o.shortToken(j+1))
	}
	o.setShortToken(n-1, 0)
	o.setNumShort(n - 1)
	return true
}

// InsertLong inserts id (with its direction) into the sorted long
// array. It reports whether there was room.
func (o *OverflowEntry) InsertLong(id hhdsprim.VertexID, isInput bool) bool {
	n := o.NumLong()
	tok := encodeLong(id, isInput)
	i := sort.Search(n, func(i int) bool {
		v, _ := decodeLong(o.longToken(i))
		return v >= id
	})
	if i < n {
		if v, _ := decodeLong(o.longToken(i)); v == id {
			o.setLongToken(i, tok)
			return true
		}
	}
	if n >= MaxOverflowLedges {
		return false
	}
	for j := n; j > i; j-- {
		o.setLongToken(j, o.longToken(j-1))
	}
	o.setLongToken(i, tok)
	o.setNumLong(n + 1)
	return true
}

// DeleteLong removes id from the sorted long array, reporting whether
// it was present.
func (o *OverflowEntry) DeleteLong(id hhdsprim.VertexID) bool {
	n := o.NumLong()
	i := sort.Search(n, func(i int) bool {
		v, _ := decodeLong(o.longToken(i))
		return v >= id
	})
	if i >= n {
		return false
	}
	if v, _ := decodeLong(o.longToken(i)); v != id {
		return false
	}
	for j := i; j < n-1; j++ {
		o.setLongToken(j, o.longToken(j+1))
	}
	o.setLongToken(n-1, 0)
	o.setNumLong(n - 1)
	return true
}

// Empty reports whether the overflow entry holds no inline edges and no
// spillover.
func (o *OverflowEntry) Empty() bool {
	return o.NumShort() == 0 && o.NumLong() == 0 && !o.HasSpill()
}
