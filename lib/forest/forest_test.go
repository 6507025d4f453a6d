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

func TestCreateTreeAndGet(t *testing.T) {
	ctx := context.Background()
	f := forest.New[string]()
	ref := f.CreateTree(ctx)
	require.True(t, ref.IsTree())
	require.True(t, f.IsAlive(ref))
	assert.Equal(t, 0, f.RefCount(ref), "a freshly created tree has no references yet")

	tr, ok := f.GetTree(ref)
	require.True(t, ok)
	root := tr.AddRoot(ctx, "root")
	assert.Equal(t, "root", tr.Data(root))
}

func TestDeleteTreeFailsWhileReferenced(t *testing.T) {
	ctx := context.Background()
	f := forest.New[string]()
	caller := f.CreateTree(ctx)
	callee := f.CreateTree(ctx)
	callerTr, ok := f.GetTree(caller)
	require.True(t, ok)
	callerRoot := callerTr.AddRoot(ctx, "caller-root")

	f.AddSubtreeRef(ctx, caller, callerRoot, callee)
	assert.Equal(t, 1, f.RefCount(callee))
	assert.Equal(t, []forest.CallerEntry{{Caller: caller, Pos: callerRoot}}, f.GetCallers(callee))

	assert.False(t, f.DeleteTree(ctx, callee), "delete_tree must fail while refcount > 0")
	assert.True(t, f.IsAlive(callee), "a failed delete_tree must leave the tree untouched")

	f.DeleteSubtreeRef(ctx, caller, callerRoot, callee)
	assert.Equal(t, 0, f.RefCount(callee))
	assert.Empty(t, f.GetCallers(callee))
	assert.True(t, f.IsAlive(callee), "dropping the last reference does not itself delete the tree")

	assert.True(t, f.DeleteTree(ctx, callee), "delete_tree must succeed once refcount is 0")
	assert.False(t, f.IsAlive(callee))
}

func TestTombstoneIsPermanentAndNeverReused(t *testing.T) {
	ctx := context.Background()
	f := forest.New[string]()
	first := f.CreateTree(ctx)
	require.True(t, f.DeleteTree(ctx, first))
	assert.False(t, f.IsAlive(first))

	second := f.CreateTree(ctx)
	assert.NotEqual(t, first, second, "a fresh create must never reuse a tombstoned ref")
	assert.False(t, f.IsAlive(first), "tombstone must remain dead even after further allocations")
}

func TestMultipleCallersOfOneCallee(t *testing.T) {
	ctx := context.Background()
	f := forest.New[string]()
	callerA := f.CreateTree(ctx)
	callerB := f.CreateTree(ctx)
	callee := f.CreateTree(ctx)

	callerATr, ok := f.GetTree(callerA)
	require.True(t, ok)
	callerBTr, ok := f.GetTree(callerB)
	require.True(t, ok)
	posA := callerATr.AddRoot(ctx, "a")
	posB := callerBTr.AddRoot(ctx, "b")
	f.AddSubtreeRef(ctx, callerA, posA, callee)
	f.AddSubtreeRef(ctx, callerB, posB, callee)

	assert.ElementsMatch(t, []forest.CallerEntry{
		{Caller: callerA, Pos: posA},
		{Caller: callerB, Pos: posB},
	}, f.GetCallers(callee))

	f.DeleteSubtreeRef(ctx, callerA, posA, callee)
	assert.True(t, f.IsAlive(callee))
	assert.Equal(t, 1, f.RefCount(callee))
	assert.Equal(t, []forest.CallerEntry{{Caller: callerB, Pos: posB}}, f.GetCallers(callee))

	assert.False(t, f.DeleteTree(ctx, callee), "callerB still references it")
	f.DeleteSubtreeRef(ctx, callerB, posB, callee)
	assert.True(t, f.DeleteTree(ctx, callee))
}

func TestGetTreeOnTombstonedRefFails(t *testing.T) {
	ctx := context.Background()
	f := forest.New[string]()
	ref := f.CreateTree(ctx)
	require.True(t, f.DeleteTree(ctx, ref))

	tr, ok := f.GetTree(ref)
	assert.False(t, ok)
	assert.Nil(t, tr)
}

func TestInvalidRefIsNeverAlive(t *testing.T) {
	f := forest.New[string]()
	assert.False(t, f.IsAlive(hhdsprim.ContainerRef(999)))
	_, ok := f.GetTree(hhdsprim.ContainerRef(999))
	assert.False(t, ok)
}

func TestPreOrderFollowsSubtreesAndCutsCycles(t *testing.T) {
	ctx := context.Background()
	f := forest.New[cellNode]()

	a := f.CreateTree(ctx)
	b := f.CreateTree(ctx)
	aTr, ok := f.GetTree(a)
	require.True(t, ok)
	bTr, ok := f.GetTree(b)
	require.True(t, ok)

	aRoot := aTr.AddRoot(ctx, cellNode{Name: "a"})
	aChild := aTr.AddChild(ctx, aRoot, cellNode{Name: "ac", Instance: b})
	bRoot := bTr.AddRoot(ctx, cellNode{Name: "b"})
	bChild := bTr.AddChild(ctx, bRoot, cellNode{Name: "bc", Instance: a})
	f.AddSubtreeRef(ctx, a, aChild, b)
	f.AddSubtreeRef(ctx, b, bChild, a)

	var got []string
	f.PreOrder(a, aRoot, true, instanceOf)(func(ref hhdsprim.ContainerRef, pos hhdsprim.TreePos) bool {
		tr, ok := f.GetTree(ref)
		require.True(t, ok)
		got = append(got, tr.Data(pos).Name)
		return true
	})
	assert.Equal(t, []string{"a", "ac", "b", "bc", "a", "ac"}, got)
}

func TestPreOrderWithoutFollowSubtreesStaysInOneTree(t *testing.T) {
	ctx := context.Background()
	f := forest.New[cellNode]()
	a := f.CreateTree(ctx)
	b := f.CreateTree(ctx)
	aTr, ok := f.GetTree(a)
	require.True(t, ok)
	aRoot := aTr.AddRoot(ctx, cellNode{Name: "a"})
	aTr.AddChild(ctx, aRoot, cellNode{Name: "ac", Instance: b})

	var got []string
	f.PreOrder(a, aRoot, false, instanceOf)(func(ref hhdsprim.ContainerRef, pos hhdsprim.TreePos) bool {
		tr, ok := f.GetTree(ref)
		require.True(t, ok)
		got = append(got, tr.Data(pos).Name)
		return true
	})
	assert.Equal(t, []string{"a", "ac"}, got)
}
