// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package graph

import (
	"context"

	"git.lukeshu.com/go/typedsync"
	"github.com/datawire/dlib/dlog"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// slot indices into a MasterEntry's 6-bit inp_mask: the four inline
// short edges, then the two inline long edges.
const (
	slotLedge0 = 4
	slotLedge1 = 5
)

// Graph is the hierarchical bipartite node/pin arena (spec.md §3.2).
// Index 0 of masters and overflows is reserved as the invalid entry, so
// a zero VertexID or overflow id always reads as "absent".
type Graph struct {
	masters   []MasterEntry
	overflows []OverflowEntry

	freeMasters   []hhdsprim.VertexID
	freeOverflows []uint32

	// spill holds the hash-set fallback for overflow entries whose own
	// sorted arrays are full, keyed by overflow id (spec.md §4.2 step 4).
	// It cannot be packed into fixed bytes, so unlike the rest of the
	// arena it lives as an ordinary Go map.
	spill map[uint32]map[hhdsprim.VertexID]bool

	// instances attaches a secondary container (a hierarchy instance) to
	// a node, the graph-side half of a hierarchical design (spec.md
	// §10.4's instance/uninstantiated-leaf supplement).
	instances map[hhdsprim.VertexID]hhdsprim.ContainerRef
}

// New returns an empty graph arena.
func New() *Graph {
	return &Graph{
		masters:   make([]MasterEntry, 1),
		overflows: make([]OverflowEntry, 1),
		spill:     make(map[uint32]map[hhdsprim.VertexID]bool),
		instances: make(map[hhdsprim.VertexID]hhdsprim.ContainerRef),
	}
}

func (g *Graph) master(id hhdsprim.VertexID) *MasterEntry {
	hhdsprim.Invariant(id > 0 && int(id) < len(g.masters), "vertex id %v out of range", id)
	return &g.masters[id]
}

// SizeBytes reports the arena's total packed-record footprint, ignoring
// the Go-level spill and instance maps (spec.md §6).
func (g *Graph) SizeBytes() int {
	return len(g.masters)*MasterWords*8 + len(g.overflows)*OverflowWords*8
}

func (g *Graph) allocMaster() hhdsprim.VertexID {
	if n := len(g.freeMasters); n > 0 {
		id := g.freeMasters[n-1]
		g.freeMasters = g.freeMasters[:n-1]
		return id
	}
	g.masters = append(g.masters, MasterEntry{})
	return hhdsprim.VertexID(len(g.masters) - 1)
}

func (g *Graph) freeMasterID(id hhdsprim.VertexID) {
	m := g.master(id)
	if m.OverflowLink() {
		g.freeOverflow(m.OverflowID())
	}
	*m = MasterEntry{}
	delete(g.instances, id)
	g.freeMasters = append(g.freeMasters, id)
}

func (g *Graph) allocOverflow() uint32 {
	if n := len(g.freeOverflows); n > 0 {
		id := g.freeOverflows[n-1]
		g.freeOverflows = g.freeOverflows[:n-1]
		return id
	}
	g.overflows = append(g.overflows, OverflowEntry{})
	return uint32(len(g.overflows) - 1)
}

func (g *Graph) freeOverflow(id uint32) {
	delete(g.spill, id)
	g.overflows[id] = OverflowEntry{}
	g.freeOverflows = append(g.freeOverflows, id)
}

// CreateNode allocates a fresh node master.
func (g *Graph) CreateNode(ctx context.Context) hhdsprim.VertexID {
	id := g.allocMaster()
	m := g.master(id)
	m.SetTag(TagNode)
	dlog.Tracef(ctx, "graph: create_node -> %v", id)
	return id
}

// CreatePin allocates a pin bound to node at the given port and links it
// onto node's pin list (spec.md §3.2's intrusive pin list, threaded
// through next_pin_ptr).
func (g *Graph) CreatePin(ctx context.Context, node hhdsprim.VertexID, port uint32) hhdsprim.VertexID {
	nm := g.master(node)
	hhdsprim.Assert(nm.Tag() == TagNode, "create_pin: %v is not a node", node)

	id := g.allocMaster()
	nm = g.master(node) // allocMaster may have grown g.masters
	p := g.master(id)
	p.SetTag(TagPin)
	p.SetNodeID(node)
	p.SetPortID(port)
	p.SetNextPinPtr(nm.NextPinPtr())
	nm.SetNextPinPtr(id)
	dlog.Tracef(ctx, "graph: create_pin(%v, port=%d) -> %v", node, port, id)
	return id
}

// Pins iterates node's pins in list order (most recently created first).
func (g *Graph) Pins(node hhdsprim.VertexID) func(yield func(hhdsprim.VertexID) bool) {
	return func(yield func(hhdsprim.VertexID) bool) {
		nm := g.master(node)
		hhdsprim.Assert(nm.Tag() == TagNode, "pins: %v is not a node", node)
		for p := nm.NextPinPtr(); !p.IsInvalid(); p = g.master(p).NextPinPtr() {
			if !yield(p) {
				return
			}
		}
	}
}

func isEdgeSedge(tag Tag, i int) bool {
	return !(tag == TagPin && i == 2) // slot 2 is a pin's port id, not an edge
}

// addHalfEdge records that self has an edge to other, storing it in
// self's inline short slot, then long slot, then overflow/spill, in
// that order (spec.md §4.2's add_edge promotion chain). Re-adding an
// existing edge is a no-op (idempotent).
func (g *Graph) addHalfEdge(self, other hhdsprim.VertexID, isInput bool) {
	m := g.master(self)
	delta := int64(other) - int64(self)

	if delta != 0 && FitsSedge(delta) {
		for i := 0; i < NumSedges; i++ {
			if !isEdgeSedge(m.Tag(), i) {
				continue
			}
			if m.Sedge(i) == delta && m.InpBit(i) == isInput {
				return
			}
		}
		for i := 0; i < NumSedges; i++ {
			if !isEdgeSedge(m.Tag(), i) {
				continue
			}
			if m.Sedge(i) == 0 {
				m.SetSedge(i, delta)
				m.SetInpBit(i, isInput)
				return
			}
		}
	}

	if m.Tag() != TagPin {
		if m.Ledge0() == other && m.InpBit(slotLedge0) == isInput {
			return
		}
		if m.Ledge0().IsInvalid() {
			m.SetLedge0(other)
			m.SetInpBit(slotLedge0, isInput)
			return
		}
	}

	// ledge1_or_overflow is shared by node and pin masters alike (only
	// ledge0_or_prev is pinned down as a pin's node_id); it is spare
	// inline edge capacity for either tag until overflow claims it.
	if !m.OverflowLink() {
		if m.Ledge1() == uint32(other) && m.InpBit(slotLedge1) == isInput {
			return
		}
		if m.Ledge1() == 0 {
			m.SetLedge1(uint32(other))
			m.SetInpBit(slotLedge1, isInput)
			return
		}
	}

	g.addOverflow(self, other, delta, isInput)
}

func (g *Graph) addOverflow(self, other hhdsprim.VertexID, delta int64, isInput bool) {
	m := g.master(self)
	if !m.OverflowLink() {
		ovID := g.allocOverflow()
		ov := &g.overflows[ovID]
		if m.Tag() == TagNode {
			if l0 := m.Ledge0(); !l0.IsInvalid() {
				ov.InsertLong(l0, m.InpBit(slotLedge0))
				m.SetLedge0(hhdsprim.Invalid)
			}
		}
		// ledge1 is spare inline capacity for both node and pin masters.
		if l1 := m.Ledge1(); l1 != 0 {
			ov.InsertLong(hhdsprim.VertexID(l1), m.InpBit(slotLedge1))
			m.SetLedge1(0)
		}
		m.SetOverflowLink(true)
		m.SetOverflowID(ovID)
	}

	ov := &g.overflows[m.OverflowID()]
	if delta != 0 && FitsSedge(delta) {
		if ov.InsertShort(delta, isInput) {
			return
		}
	} else if ov.InsertLong(other, isInput) {
		return
	}

	ov.SetHasSpill(true)
	ov.SetSpillID(m.OverflowID())
	g.spillInsert(m.OverflowID(), other, isInput)
}

func (g *Graph) spillInsert(id uint32, other hhdsprim.VertexID, isInput bool) {
	if g.spill[id] == nil {
		g.spill[id] = make(map[hhdsprim.VertexID]bool)
	}
	g.spill[id][other] = isInput
}

func (g *Graph) spillDelete(id uint32, other hhdsprim.VertexID) bool {
	m := g.spill[id]
	if m == nil {
		return false
	}
	if _, ok := m[other]; !ok {
		return false
	}
	delete(m, other)
	return true
}

// delHalfEdge removes self's record of an edge to other, searching the
// same tiers addHalfEdge promotes through, and frees the overflow
// record if it becomes empty.
func (g *Graph) delHalfEdge(self, other hhdsprim.VertexID, isInput bool) bool {
	m := g.master(self)
	delta := int64(other) - int64(self)

	if delta != 0 {
		for i := 0; i < NumSedges; i++ {
			if !isEdgeSedge(m.Tag(), i) {
				continue
			}
			if m.Sedge(i) == delta && m.InpBit(i) == isInput {
				m.SetSedge(i, 0)
				m.SetInpBit(i, false)
				return true
			}
		}
	}

	if m.Tag() != TagPin {
		if m.Ledge0() == other && m.InpBit(slotLedge0) == isInput {
			m.SetLedge0(hhdsprim.Invalid)
			m.SetInpBit(slotLedge0, false)
			return true
		}
	}
	if !m.OverflowLink() && m.Ledge1() == uint32(other) && m.InpBit(slotLedge1) == isInput {
		m.SetLedge1(0)
		m.SetInpBit(slotLedge1, false)
		return true
	}

	if !m.OverflowLink() {
		return false
	}
	ov := &g.overflows[m.OverflowID()]
	found := false
	if delta != 0 && FitsSedge(delta) && ov.DeleteShort(delta) {
		found = true
	} else if ov.DeleteLong(other) {
		found = true
	} else if ov.HasSpill() && g.spillDelete(ov.SpillID(), other) {
		found = true
		if g.spill[ov.SpillID()] == nil || len(g.spill[ov.SpillID()]) == 0 {
			ov.SetHasSpill(false)
		}
	}
	if found && ov.Empty() {
		ovID := m.OverflowID()
		m.SetOverflowLink(false)
		m.SetOverflowID(0)
		g.freeOverflow(ovID)
	}
	return found
}

// AddEdge connects driver to sink: an output edge on driver, an input
// edge on sink (spec.md §4.2). Re-adding an existing edge is a no-op.
func (g *Graph) AddEdge(ctx context.Context, driver, sink hhdsprim.VertexID) {
	g.addHalfEdge(driver, sink, false)
	g.addHalfEdge(sink, driver, true)
	dlog.Tracef(ctx, "graph: add_edge(%v -> %v)", driver, sink)
}

// DelEdge removes the edge between driver and sink, if present.
func (g *Graph) DelEdge(ctx context.Context, driver, sink hhdsprim.VertexID) {
	g.delHalfEdge(driver, sink, false)
	g.delHalfEdge(sink, driver, true)
	dlog.Tracef(ctx, "graph: del_edge(%v -> %v)", driver, sink)
}

// Edges iterates id's incident edges across every storage tier (inline
// short, inline long, overflow short, overflow long, spill), yielding
// the far endpoint and whether it is an input to id.
func (g *Graph) Edges(id hhdsprim.VertexID) func(yield func(other hhdsprim.VertexID, isInput bool) bool) {
	return func(yield func(hhdsprim.VertexID, bool) bool) {
		m := g.master(id)
		for i := 0; i < NumSedges; i++ {
			if !isEdgeSedge(m.Tag(), i) {
				continue
			}
			if d := m.Sedge(i); d != 0 {
				if !yield(hhdsprim.VertexID(int64(id)+d), m.InpBit(i)) {
					return
				}
			}
		}
		if m.Tag() != TagPin {
			if l0 := m.Ledge0(); !l0.IsInvalid() {
				if !yield(l0, m.InpBit(slotLedge0)) {
					return
				}
			}
		}
		if !m.OverflowLink() {
			if l1 := m.Ledge1(); l1 != 0 {
				if !yield(hhdsprim.VertexID(l1), m.InpBit(slotLedge1)) {
					return
				}
			}
		}
		if m.OverflowLink() {
			ov := &g.overflows[m.OverflowID()]
			for _, e := range ov.Shorts() {
				if !yield(hhdsprim.VertexID(int64(id)+e.Delta), e.IsInput) {
					return
				}
			}
			for _, e := range ov.Longs() {
				if !yield(e.ID, e.IsInput) {
					return
				}
			}
			if ov.HasSpill() {
				for other, isInput := range g.spill[ov.SpillID()] {
					if !yield(other, isInput) {
						return
					}
				}
			}
		}
	}
}

// GetNumPinEdges counts id's incident edges.
func (g *Graph) GetNumPinEdges(id hhdsprim.VertexID) int {
	n := 0
	g.Edges(id)(func(hhdsprim.VertexID, bool) bool { n++; return true })
	return n
}

// Drivers iterates the edges feeding into id (its inputs).
func (g *Graph) Drivers(id hhdsprim.VertexID) func(yield func(hhdsprim.VertexID) bool) {
	return func(yield func(hhdsprim.VertexID) bool) {
		g.Edges(id)(func(other hhdsprim.VertexID, isInput bool) bool {
			if !isInput {
				return true
			}
			return yield(other)
		})
	}
}

// Sinks iterates the edges id drives (its outputs).
func (g *Graph) Sinks(id hhdsprim.VertexID) func(yield func(hhdsprim.VertexID) bool) {
	return func(yield func(hhdsprim.VertexID) bool) {
		g.Edges(id)(func(other hhdsprim.VertexID, isInput bool) bool {
			if isInput {
				return true
			}
			return yield(other)
		})
	}
}

type halfEdge struct {
	other   hhdsprim.VertexID
	isInput bool
}

// halfEdgePool recycles the scratch slice snapshotEdges needs to
// collect a vertex's edges before mutating them (DelNode/MoveEdges
// both do a collect-then-mutate pass). The arena is single-threaded
// cooperative, so a plain pool is enough to avoid reallocating on
// every deletion of a high-fanout vertex.
var halfEdgePool typedsync.Pool[[]halfEdge]

func (g *Graph) snapshotEdges(id hhdsprim.VertexID) []halfEdge {
	edges, _ := halfEdgePool.Get()
	edges = edges[:0]
	g.Edges(id)(func(other hhdsprim.VertexID, isInput bool) bool {
		edges = append(edges, halfEdge{other, isInput})
		return true
	})
	return edges
}

func (g *Graph) releaseEdges(edges []halfEdge) {
	halfEdgePool.Put(edges)
}

// delAllEdges removes every edge incident on id from the OTHER
// endpoint's storage, leaving id's own storage untouched (the caller is
// about to free id wholesale).
func (g *Graph) delAllEdges(id hhdsprim.VertexID) {
	edges := g.snapshotEdges(id)
	for _, e := range edges {
		g.delHalfEdge(e.other, id, !e.isInput)
	}
	g.releaseEdges(edges)
}

// DelNode removes node, all of its pins, and every edge incident on any
// of them.
func (g *Graph) DelNode(ctx context.Context, node hhdsprim.VertexID) {
	nm := g.master(node)
	hhdsprim.Assert(nm.Tag() == TagNode, "del_node: %v is not a node", node)

	pin := nm.NextPinPtr()
	for !pin.IsInvalid() {
		next := g.master(pin).NextPinPtr()
		g.delAllEdges(pin)
		g.freeMasterID(pin)
		pin = next
	}
	g.delAllEdges(node)
	g.freeMasterID(node)
	dlog.Tracef(ctx, "graph: del_node(%v)", node)
}

// MoveEdges relocates every edge incident on from so it is instead
// incident on to, preserving direction (a supplemental rewiring
// operation used when splicing one node in place of another).
func (g *Graph) MoveEdges(ctx context.Context, from, to hhdsprim.VertexID) {
	edges := g.snapshotEdges(from)
	n := len(edges)
	for _, e := range edges {
		g.delHalfEdge(from, e.other, e.isInput)
		g.delHalfEdge(e.other, from, !e.isInput)
		g.addHalfEdge(to, e.other, e.isInput)
		g.addHalfEdge(e.other, to, !e.isInput)
	}
	g.releaseEdges(edges)
	dlog.Debugf(ctx, "graph: move_edges(%v -> %v), %d edges", from, to, n)
}

// SetInstance attaches a secondary container reference to node (e.g. a
// subtree hierarchy instanced at this node).
func (g *Graph) SetInstance(node hhdsprim.VertexID, ref hhdsprim.ContainerRef) {
	g.instances[node] = ref
}

// Instance returns node's attached container reference, if any.
func (g *Graph) Instance(node hhdsprim.VertexID) (hhdsprim.ContainerRef, bool) {
	ref, ok := g.instances[node]
	return ref, ok
}

// HasInstance reports whether node has an attached container reference.
func (g *Graph) HasInstance(node hhdsprim.VertexID) bool {
	_, ok := g.instances[node]
	return ok
}
