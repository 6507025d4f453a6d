// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package tree

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

func TestChunkRecordIs64Bytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 64, int(unsafe.Sizeof(TreePointers{})))
}

func TestTreePointersFieldRoundTrip(t *testing.T) {
	t.Parallel()
	var c TreePointers
	c.SetParent(hhdsprim.PosOf(7, 3))
	c.SetNextSiblingChunk(9)
	c.SetPrevSiblingChunk(5)
	c.SetFirstChildL(11)
	c.SetLastChildL(13)
	c.SetNumShortDelOcc(4)
	c.SetIsLeaf(false)
	c.SetFirstChildS(2, -100)
	c.SetLastChildS(2, 100)

	assert.Equal(t, hhdsprim.PosOf(7, 3), c.Parent())
	assert.Equal(t, hhdsprim.ChunkID(9), c.NextSiblingChunk())
	assert.Equal(t, hhdsprim.ChunkID(5), c.PrevSiblingChunk())
	assert.Equal(t, hhdsprim.ChunkID(11), c.FirstChildL())
	assert.Equal(t, hhdsprim.ChunkID(13), c.LastChildL())
	assert.Equal(t, 4, c.NumShortDelOcc())
	assert.False(t, c.IsLeaf())
	assert.Equal(t, int64(-100), c.FirstChildS(2))
	assert.Equal(t, int64(100), c.LastChildS(2))
}

func TestFitsShortDelta(t *testing.T) {
	t.Parallel()
	assert.True(t, FitsShortDelta(0))
	assert.True(t, FitsShortDelta(65535))
	assert.True(t, FitsShortDelta(-65536))
	assert.False(t, FitsShortDelta(65536))
	assert.False(t, FitsShortDelta(-65537))
}
