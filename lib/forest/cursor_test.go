// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package forest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masc-ucsc/hhds/lib/forest"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

type cellNode struct {
	Name     string
	Instance hhdsprim.ContainerRef
}

func instanceOf(n cellNode) (hhdsprim.ContainerRef, bool) {
	if n.Instance.IsInvalid() {
		return 0, false
	}
	return n.Instance, true
}

func TestCursorNavigatesWithinOneTree(t *testing.T) {
	ctx := context.Background()
	f := forest.New[cellNode]()
	top := f.CreateTree(ctx)
	tr, ok := f.GetTree(top)
	require.True(t, ok)
	root := tr.AddRoot(ctx, cellNode{Name: "root"})
	c1 := tr.AddChild(ctx, root, cellNode{Name: "c1"})
	tr.AddChild(ctx, root, cellNode{Name: "c2"})

	cur := forest.NewCursor(f, top, instanceOf)
	assert.True(t, cur.IsRoot())
	require.True(t, cur.GotoFirstChild())
	assert.Equal(t, c1, cur.GetCurrentPos())
	require.True(t, cur.GotoNextSibling())
	assert.Equal(t, "c2", tr.Data(cur.GetCurrentPos()).Name)
	require.True(t, cur.GotoParent())
	assert.True(t, cur.IsRoot())
	assert.False(t, cur.GotoParent())
}

func TestCursorDescendsAndAscendsInstance(t *testing.T) {
	ctx := context.Background()
	f := forest.New[cellNode]()

	leaf := f.CreateTree(ctx)
	leafTr, ok := f.GetTree(leaf)
	require.True(t, ok)
	leafRoot := leafTr.AddRoot(ctx, cellNode{Name: "leaf-root"})
	leafTr.AddChild(ctx, leafRoot, cellNode{Name: "leaf-child"})

	top := f.CreateTree(ctx)
	topTr, ok := f.GetTree(top)
	require.True(t, ok)
	root := topTr.AddRoot(ctx, cellNode{Name: "top-root"})
	topTr.AddChild(ctx, root, cellNode{Name: "inst", Instance: leaf})
	f.AddSubtreeRef(ctx, top, topTr.GetFirstChild(root), leaf)

	cur := forest.NewCursor(f, top, instanceOf)
	require.True(t, cur.GotoFirstChild())
	assert.Equal(t, 0, cur.InstanceDepth())

	require.True(t, cur.DescendInstance())
	assert.Equal(t, 1, cur.InstanceDepth())
	assert.Equal(t, leaf, cur.GetCurrentRef())
	assert.Equal(t, "leaf-root", leafTr.Data(cur.GetCurrentPos()).Name)

	require.True(t, cur.GotoFirstChild())
	assert.Equal(t, "leaf-child", leafTr.Data(cur.GetCurrentPos()).Name)

	require.True(t, cur.Ascend())
	assert.Equal(t, 0, cur.InstanceDepth())
	assert.Equal(t, top, cur.GetCurrentRef())
}

func TestCursorRefusesCyclicInstance(t *testing.T) {
	ctx := context.Background()
	f := forest.New[cellNode]()
	ref := f.CreateTree(ctx)
	tr, ok := f.GetTree(ref)
	require.True(t, ok)
	root := tr.AddRoot(ctx, cellNode{Name: "self", Instance: ref})

	cur := forest.NewCursor(f, ref, instanceOf)
	_ = root
	assert.Panics(t, func() { cur.DescendInstance() })
}

func TestCursorNoInstanceReturnsFalse(t *testing.T) {
	ctx := context.Background()
	f := forest.New[cellNode]()
	ref := f.CreateTree(ctx)
	tr, ok := f.GetTree(ref)
	require.True(t, ok)
	tr.AddRoot(ctx, cellNode{Name: "plain"})

	cur := forest.NewCursor(f, ref, instanceOf)
	assert.False(t, cur.DescendInstance())
}
