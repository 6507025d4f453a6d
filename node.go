// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package hhds

import (
	"context"

	"github.com/masc-ucsc/hhds/lib/graph"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// NodeClass is a handle to one node in a graph. Its zero value is
// invalid; callers obtain one from GraphHandle.CreateNode or by
// following edges/pins from another NodeClass or PinClass.
type NodeClass struct {
	g  *graph.Graph
	id hhdsprim.VertexID
}

// IsInvalid reports whether n is the zero/absent node handle.
func (n NodeClass) IsInvalid() bool { return n.g == nil || n.id.IsInvalid() }

// CreatePin allocates a new pin on n at the given port index.
func (n NodeClass) CreatePin(ctx context.Context, port uint32) PinClass {
	return PinClass{g: n.g, id: n.g.CreatePin(ctx, n.id, port)}
}

// Pins iterates n's pins.
func (n NodeClass) Pins() func(yield func(PinClass) bool) {
	return func(yield func(PinClass) bool) {
		n.g.Pins(n.id)(func(id hhdsprim.VertexID) bool {
			return yield(PinClass{g: n.g, id: id})
		})
	}
}

// AddEdge connects n (as driver) to sink.
func (n NodeClass) AddEdge(ctx context.Context, sink NodeClass) {
	n.g.AddEdge(ctx, n.id, sink.id)
}

// DelEdge removes the edge from n to sink, if present.
func (n NodeClass) DelEdge(ctx context.Context, sink NodeClass) {
	n.g.DelEdge(ctx, n.id, sink.id)
}

// Del removes n, its pins, and every edge incident on any of them.
func (n NodeClass) Del(ctx context.Context) {
	n.g.DelNode(ctx, n.id)
}

// NumEdges reports how many edges are incident on n.
func (n NodeClass) NumEdges() int { return n.g.GetNumPinEdges(n.id) }

// Drivers iterates the nodes feeding into n.
func (n NodeClass) Drivers() func(yield func(NodeClass) bool) {
	return func(yield func(NodeClass) bool) {
		n.g.Drivers(n.id)(func(id hhdsprim.VertexID) bool {
			return yield(NodeClass{g: n.g, id: id})
		})
	}
}

// Sinks iterates the nodes n drives.
func (n NodeClass) Sinks() func(yield func(NodeClass) bool) {
	return func(yield func(NodeClass) bool) {
		n.g.Sinks(n.id)(func(id hhdsprim.VertexID) bool {
			return yield(NodeClass{g: n.g, id: id})
		})
	}
}

// SetInstance attaches a sub-container reference to n (e.g. a module
// definition instanced at this node).
func (n NodeClass) SetInstance(ref hhdsprim.ContainerRef) { n.g.SetInstance(n.id, ref) }

// Instance returns n's attached container reference, if any.
func (n NodeClass) Instance() (hhdsprim.ContainerRef, bool) { return n.g.Instance(n.id) }
