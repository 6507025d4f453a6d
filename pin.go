// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package hhds

import (
	"context"

	"github.com/masc-ucsc/hhds/lib/graph"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// PinClass is a handle to one pin in a graph. A pin is itself a vertex
// (it can carry edges like a node), plus it knows its owning node and
// port index.
type PinClass struct {
	g  *graph.Graph
	id hhdsprim.VertexID
}

// IsInvalid reports whether p is the zero/absent pin handle.
func (p PinClass) IsInvalid() bool { return p.g == nil || p.id.IsInvalid() }

// Node returns the node this pin belongs to.
func (p PinClass) Node() NodeClass {
	return NodeClass{g: p.g, id: p.g.Pin(p.id).NodeID}
}

// Port returns the pin's port index.
func (p PinClass) Port() uint32 { return p.g.Pin(p.id).PortID }

// AddEdge connects p (as driver) to sink.
func (p PinClass) AddEdge(ctx context.Context, sink PinClass) {
	p.g.AddEdge(ctx, p.id, sink.id)
}

// DelEdge removes the edge from p to sink, if present.
func (p PinClass) DelEdge(ctx context.Context, sink PinClass) {
	p.g.DelEdge(ctx, p.id, sink.id)
}

// NumEdges reports how many edges are incident on p.
func (p PinClass) NumEdges() int { return p.g.GetNumPinEdges(p.id) }

// Drivers iterates the pins/nodes feeding into p.
func (p PinClass) Drivers() func(yield func(PinClass) bool) {
	return func(yield func(PinClass) bool) {
		p.g.Drivers(p.id)(func(id hhdsprim.VertexID) bool {
			return yield(PinClass{g: p.g, id: id})
		})
	}
}

// Sinks iterates the pins/nodes p drives.
func (p PinClass) Sinks() func(yield func(PinClass) bool) {
	return func(yield func(PinClass) bool) {
		p.g.Sinks(p.id)(func(id hhdsprim.VertexID) bool {
			return yield(PinClass{g: p.g, id: id})
		})
	}
}
