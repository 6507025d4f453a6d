// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package graph

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

func TestOverflowEntryIs64Bytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 64, int(unsafe.Sizeof(OverflowEntry{})))
}

func TestOverflowShortSortedInsertDelete(t *testing.T) {
	t.Parallel()
	var o OverflowEntry
	require.True(t, o.InsertShort(5, false))
	require.True(t, o.InsertShort(-3, true))
	require.True(t, o.InsertShort(100, false))

	got := o.Shorts()
	require.Len(t, got, 3)
	assert.Equal(t, []OverflowEdge{{-3, true}, {5, false}, {100, false}}, got)

	// idempotent re-add
	require.True(t, o.InsertShort(5, false))
	assert.Len(t, o.Shorts(), 3)

	require.True(t, o.DeleteShort(5))
	assert.Equal(t, []OverflowEdge{{-3, true}, {100, false}}, o.Shorts())
	assert.False(t, o.DeleteShort(5))
}

func TestOverflowShortCapacity(t *testing.T) {
	t.Parallel()
	var o OverflowEntry
	for i := 0; i < MaxOverflowSedges; i++ {
		require.True(t, o.InsertShort(int64(i+1), i%2 == 0))
	}
	assert.False(t, o.InsertShort(int64(-1), true))
	assert.Equal(t, MaxOverflowSedges, o.NumShort())
}

func TestOverflowLongSortedInsertDelete(t *testing.T) {
	t.Parallel()
	var o OverflowEntry
	require.True(t, o.InsertLong(hhdsprim.VertexID(500), false))
	require.True(t, o.InsertLong(hhdsprim.VertexID(10), true))

	got := o.Longs()
	require.Len(t, got, 2)
	assert.Equal(t, hhdsprim.VertexID(10), got[0].ID)
	assert.True(t, got[0].IsInput)
	assert.Equal(t, hhdsprim.VertexID(500), got[1].ID)

	require.True(t, o.DeleteLong(10))
	assert.Len(t, o.Longs(), 1)
	assert.False(t, o.DeleteLong(10))
}

func TestOverflowEmpty(t *testing.T) {
	t.Parallel()
	var o OverflowEntry
	assert.True(t, o.Empty())
	o.InsertShort(1, false)
	assert.False(t, o.Empty())
	o.DeleteShort(1)
	assert.True(t, o.Empty())

	o.SetHasSpill(true)
	assert.False(t, o.Empty())
}
