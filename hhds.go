// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

// Package hhds is the public entry point for the hierarchical hardware
// data structures library: a packed tree arena, a packed hierarchical
// bipartite node/pin graph arena, and a Forest/GraphLibrary wrapper
// that ties many such containers together with refcounted references
// and hierarchy cursors. The NodeClass/PinClass/TnodeClass wrappers in
// this package are the intended external surface; lib/hhdsprim.VertexID
// and lib/hhdsprim.TreePos are implementation detail that callers
// should not need to hold onto directly.
package hhds

import (
	"context"

	"github.com/masc-ucsc/hhds/lib/forest"
	"github.com/masc-ucsc/hhds/lib/graph"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// Library bundles a tree forest and a graph library under one root, the
// way a design database holds many netlists (graphs) organized by a
// module hierarchy (trees). T is the payload type stored at each tree
// position.
type Library[T any] struct {
	Trees  *forest.Forest[T]
	Graphs *forest.GraphLibrary
}

// NewLibrary returns an empty library.
func NewLibrary[T any]() *Library[T] {
	return &Library[T]{
		Trees:  forest.New[T](),
		Graphs: forest.NewGraphLibrary(),
	}
}

// CreateGraph allocates a fresh graph, returning a handle that mints
// NodeClass/PinClass values rather than exposing the raw graph or its
// ContainerRef.
func (l *Library[T]) CreateGraph(ctx context.Context) GraphHandle {
	ref := l.Graphs.CreateGraph(ctx)
	g, ok := l.Graphs.GetGraph(ref)
	hhdsprim.Assert(ok, "library: create_graph returned a ref that isn't immediately alive")
	return GraphHandle{g: g, ref: ref}
}

// OpenGraph wraps an already-registered graph ref as a GraphHandle, or
// reports false if ref is not a valid, live graph reference.
func (l *Library[T]) OpenGraph(ref hhdsprim.ContainerRef) (GraphHandle, bool) {
	g, ok := l.Graphs.GetGraph(ref)
	if !ok {
		return GraphHandle{}, false
	}
	return GraphHandle{g: g, ref: ref}, true
}

// GraphHandle names one graph registered in a Library, without
// exposing its VertexID-indexed internals to callers that only need
// node/pin operations.
type GraphHandle struct {
	g   *graph.Graph
	ref hhdsprim.ContainerRef
}

// Ref exposes the underlying container reference, for callers that do
// need to instance this graph under a tree position.
func (h GraphHandle) Ref() hhdsprim.ContainerRef { return h.ref }

// CreateNode allocates a fresh node in this graph.
func (h GraphHandle) CreateNode(ctx context.Context) NodeClass {
	return NodeClass{g: h.g, id: h.g.CreateNode(ctx)}
}
