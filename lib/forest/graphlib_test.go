// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package forest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masc-ucsc/hhds/lib/forest"
)

func TestCreateGraphIsNegativeRef(t *testing.T) {
	ctx := context.Background()
	l := forest.NewGraphLibrary()
	ref := l.CreateGraph(ctx)
	require.True(t, ref.IsGraph())
	require.True(t, l.IsAlive(ref))
	assert.Equal(t, 0, l.RefCount(ref))

	g, ok := l.GetGraph(ref)
	require.True(t, ok)
	n := g.CreateNode(ctx)
	assert.Equal(t, 0, g.GetNumPinEdges(n))
}

func TestGraphRefcountAndDelete(t *testing.T) {
	ctx := context.Background()
	l := forest.NewGraphLibrary()
	ref := l.CreateGraph(ctx)

	l.AddRef(ref)
	assert.Equal(t, 1, l.RefCount(ref))

	assert.False(t, l.DeleteGraph(ctx, ref), "delete must fail while refcount > 0")
	assert.True(t, l.IsAlive(ref))

	l.DelRef(ctx, ref)
	assert.Equal(t, 0, l.RefCount(ref))
	assert.True(t, l.IsAlive(ref), "dropping the last reference does not itself delete the graph")

	assert.True(t, l.DeleteGraph(ctx, ref))
	assert.False(t, l.IsAlive(ref))

	g, ok := l.GetGraph(ref)
	assert.False(t, ok)
	assert.Nil(t, g)
}

func TestDistinctGraphsGetDistinctRefs(t *testing.T) {
	ctx := context.Background()
	l := forest.NewGraphLibrary()
	a := l.CreateGraph(ctx)
	b := l.CreateGraph(ctx)
	assert.NotEqual(t, a, b)
}
