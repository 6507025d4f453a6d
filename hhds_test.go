// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package hhds_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masc-ucsc/hhds"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

func TestLibraryGraphRoundTrip(t *testing.T) {
	ctx := context.Background()
	lib := hhds.NewLibrary[string]()

	g := lib.CreateGraph(ctx)
	a := g.CreateNode(ctx)
	b := g.CreateNode(ctx)
	pa := a.CreatePin(ctx, 0)
	pb := b.CreatePin(ctx, 0)

	pa.AddEdge(ctx, pb)
	assert.Equal(t, 1, pa.NumEdges())
	assert.Equal(t, 1, pb.NumEdges())
	assert.Equal(t, a, pa.Node())
	assert.Equal(t, uint32(0), pb.Port())

	pa.DelEdge(ctx, pb)
	assert.Equal(t, 0, pa.NumEdges())
}

func TestLibraryTreeRoundTrip(t *testing.T) {
	ctx := context.Background()
	lib := hhds.NewLibrary[string]()

	root := lib.CreateTree(ctx).AddRoot(ctx, "root")
	c1 := root.AddChild(ctx, "c1")
	root.AddChild(ctx, "c2")
	c3 := c1.InsertNextSibling(ctx, "c3")

	assert.Equal(t, "root", root.Data())
	assert.Equal(t, c1, root.FirstChild())
	assert.Equal(t, c3, c1.NextSibling())
	assert.Equal(t, root, c1.Parent())

	var names []string
	root.PreOrder()(func(n hhds.TnodeClass[string]) bool {
		names = append(names, n.Data())
		return true
	})
	assert.Equal(t, []string{"root", "c1", "c3", "c2"}, names)
}

func TestNodeInstance(t *testing.T) {
	ctx := context.Background()
	lib := hhds.NewLibrary[string]()
	g := lib.CreateGraph(ctx)
	n := g.CreateNode(ctx)

	_, ok := n.Instance()
	assert.False(t, ok)

	sub := lib.CreateTree(ctx)
	n.SetInstance(sub.Ref())
	ref, ok := n.Instance()
	require.True(t, ok)
	assert.Equal(t, sub.Ref(), ref)
}

type moduleCell struct {
	Name     string
	Instance hhdsprim.ContainerRef
}

func moduleCellInstance(c moduleCell) (hhdsprim.ContainerRef, bool) {
	if c.Instance.IsInvalid() {
		return 0, false
	}
	return c.Instance, true
}

func TestTnodeClassPreOrderAcrossInstances(t *testing.T) {
	ctx := context.Background()
	lib := hhds.NewLibrary[moduleCell]()

	top := lib.CreateTree(ctx)
	leaf := lib.CreateTree(ctx)

	leafRoot := leaf.AddRoot(ctx, moduleCell{Name: "leaf"})
	leafRoot.AddChild(ctx, moduleCell{Name: "leaf-child"})

	topRoot := top.AddRoot(ctx, moduleCell{Name: "top", Instance: leaf.Ref()})

	var names []string
	topRoot.PreOrderAcrossInstances(moduleCellInstance)(func(n hhds.TnodeClass[moduleCell]) bool {
		names = append(names, n.Data().Name)
		return true
	})
	assert.Equal(t, []string{"top", "leaf", "leaf-child"}, names)
}
