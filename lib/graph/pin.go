// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package graph

import "github.com/masc-ucsc/hhds/lib/hhdsprim"

// PinEntry is a flat 16-byte read-only view of a pin master, handed out
// by Graph.Pin for ergonomic access without exposing the packed
// MasterEntry layout (spec.md §2's "16-byte pin view").
type PinEntry struct {
	NodeID hhdsprim.VertexID
	PortID uint32
	_      uint32 // padding to keep the view a flat 16 bytes
}

// Pin returns a PinEntry snapshot of the pin master id, which must be
// tagged TagPin.
func (g *Graph) Pin(id hhdsprim.VertexID) PinEntry {
	m := g.master(id)
	hhdsprim.Assert(m.Tag() == TagPin, "Pin called on non-pin master %v", id)
	return PinEntry{NodeID: m.NodeID(), PortID: m.PortID()}
}
