// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package forest

import (
	"context"

	"github.com/datawire/dlib/dlog"

	"github.com/masc-ucsc/hhds/lib/graph"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

// GraphLibrary owns a registry of Graph instances, each addressable by
// a negative ContainerRef (spec.md §4.3's sign convention), mirroring
// Forest's tree registry.
type GraphLibrary struct {
	graphs *registry[*graph.Graph]
}

// NewGraphLibrary returns an empty graph library.
func NewGraphLibrary() *GraphLibrary {
	return &GraphLibrary{graphs: newRegistry[*graph.Graph]()}
}

// CreateGraph allocates a fresh, empty graph and registers it,
// returning its (negative) ContainerRef.
func (l *GraphLibrary) CreateGraph(ctx context.Context) hhdsprim.ContainerRef {
	id := l.graphs.create(graph.New())
	ref := hhdsprim.ContainerRef(-int64(id))
	dlog.Tracef(ctx, "graphlib: create_graph -> %v", ref)
	return ref
}

// GetGraph returns the live graph behind ref and true, or (nil, false)
// if ref is not a valid graph reference or has been tombstoned.
func (l *GraphLibrary) GetGraph(ref hhdsprim.ContainerRef) (*graph.Graph, bool) {
	if !ref.IsGraph() {
		return nil, false
	}
	return l.graphs.get(int(-ref))
}

// IsAlive reports whether ref still refers to a live (non-tombstoned)
// graph.
func (l *GraphLibrary) IsAlive(ref hhdsprim.ContainerRef) bool {
	return ref.IsGraph() && l.graphs.valid(int(-ref))
}

// RefCount reports ref's current refcount.
func (l *GraphLibrary) RefCount(ref hhdsprim.ContainerRef) int {
	return l.graphs.refcount(int(-ref))
}

// AddRef bumps ref's refcount, e.g. when a tree node's Instance points
// at it.
func (l *GraphLibrary) AddRef(ref hhdsprim.ContainerRef) {
	l.graphs.addRef(int(-ref))
}

// DelRef drops ref's refcount by one. As with Forest, this never
// itself frees the graph -- only a successful DeleteGraph does, and
// only once the refcount is back to zero.
func (l *GraphLibrary) DelRef(ctx context.Context, ref hhdsprim.ContainerRef) {
	l.graphs.decRef(int(-ref))
	dlog.Tracef(ctx, "graphlib: del_ref(%v)", ref)
}

// DeleteGraph tombstones ref and frees its graph, but only if ref's
// refcount is currently zero. Reports whether it did so; a false
// return leaves ref untouched.
func (l *GraphLibrary) DeleteGraph(ctx context.Context, ref hhdsprim.ContainerRef) bool {
	ok := l.graphs.delete(int(-ref))
	dlog.Tracef(ctx, "graphlib: delete_graph(%v) -> %v", ref, ok)
	return ok
}
