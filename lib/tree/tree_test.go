// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/tree"
)

func TestAddRootTwiceAsserts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := tree.New[string]()
	tr.AddRoot(ctx, "root")
	assert.Panics(t, func() { tr.AddRoot(ctx, "root2") })
}

func TestParentChildInvariant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := tree.New[string]()
	root := tr.AddRoot(ctx, "root")
	assert.True(t, tr.GetParent(root).IsInvalid())

	c1 := tr.AddChild(ctx, root, "c1")
	require.Equal(t, root, tr.GetParent(c1))
	require.Equal(t, c1, tr.GetFirstChild(root))
}

func TestInsertionPreservesOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := tree.New[string]()
	root := tr.AddRoot(ctx, "root")

	c1 := tr.AddChild(ctx, root, "x1")
	c2 := tr.AddChild(ctx, root, "x2")
	c3 := tr.InsertNextSibling(ctx, c1, "y")

	var seq []hhdsprim.TreePos
	tr.SiblingOrder(tr.GetFirstChild(root))(func(pos hhdsprim.TreePos) bool {
		seq = append(seq, pos)
		return true
	})
	require.Equal(t, []hhdsprim.TreePos{c1, c3, c2}, seq)

	var data []string
	for _, pos := range seq {
		data = append(data, tr.Data(pos))
	}
	assert.Equal(t, []string{"x1", "y", "x2"}, data)
}

func TestLinearChainPreOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const n = 2000
	tr := tree.New[int]()
	cur := tr.AddRoot(ctx, 0)
	want := []int{0}
	for i := 1; i < n; i++ {
		cur = tr.AddChild(ctx, cur, i)
		want = append(want, i)
	}

	var got []int
	tr.PreOrder(tr.Root())(func(pos hhdsprim.TreePos) bool {
		got = append(got, tr.Data(pos))
		return true
	})
	assert.Equal(t, want, got)
}

func buildPerfectTree(t *testing.T, ctx context.Context, arity, depth int) (*tree.Tree[int], hhdsprim.TreePos) {
	t.Helper()
	tr := tree.New[int]()
	root := tr.AddRoot(ctx, 0)
	counter := 1
	var build func(pos hhdsprim.TreePos, d int)
	build = func(pos hhdsprim.TreePos, d int) {
		if d == 0 {
			return
		}
		for i := 0; i < arity; i++ {
			c := tr.AddChild(ctx, pos, counter)
			counter++
			build(c, d-1)
		}
	}
	build(root, depth)
	return tr, root
}

func TestPreAndPostOrderSameMultiset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, root := buildPerfectTree(t, ctx, 4, 3)

	var pre, post []int
	tr.PreOrder(root)(func(pos hhdsprim.TreePos) bool { pre = append(pre, tr.Data(pos)); return true })
	tr.PostOrder(root)(func(pos hhdsprim.TreePos) bool { post = append(post, tr.Data(pos)); return true })

	require.Equal(t, len(pre), len(post))
	assert.ElementsMatch(t, pre, post)
}

func TestDeleteLeavesCollapsesChunks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, root := buildPerfectTree(t, ctx, 4, 2)

	var leaves []hhdsprim.TreePos
	tr.PreOrder(root)(func(pos hhdsprim.TreePos) bool {
		if tr.IsLeaf(pos) {
			leaves = append(leaves, pos)
		}
		return true
	})
	// delete back to front: DeleteLeaf shifts later slots of a chunk
	// down, so the collected positions stay valid only in this order
	for i := len(leaves) - 1; i >= 0; i-- {
		tr.DeleteLeaf(ctx, leaves[i])
	}
	require.NotEmpty(t, leaves)
	// every depth-1 node should now be a leaf again
	for c := tr.GetFirstChild(root); !c.IsInvalid(); c = tr.GetSiblingNext(c) {
		assert.True(t, tr.IsLeaf(c))
	}
}

func TestDeleteSubtree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr, root := buildPerfectTree(t, ctx, 3, 2)
	c := tr.GetFirstChild(root)
	deleted := tr.Data(c)
	tr.DeleteSubtree(ctx, c)
	// root should have lost that child from the front of its sibling list;
	// DeleteLeaf shifts the next sibling down into c's slot, so compare
	// payloads rather than positions
	newFirst := tr.GetFirstChild(root)
	assert.NotEqual(t, deleted, tr.Data(newFirst))
}
