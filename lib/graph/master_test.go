// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package graph

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
)

func TestMasterEntryIs32Bytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 32, int(unsafe.Sizeof(MasterEntry{})))
}

func TestMasterEntryFieldRoundTrip(t *testing.T) {
	t.Parallel()
	var m MasterEntry
	m.SetTag(TagNode)
	m.SetOverflowLink(true)
	m.SetSedge(0, -100)
	m.SetSedge(1, 200)
	m.SetSedge(2, -3)
	m.SetSedge(3, 4)
	m.SetInpBit(0, true)
	m.SetInpBit(1, false)
	m.SetNextPinPtr(42)
	m.SetLedge0(7)
	m.SetLedge1(9)
	m.SetBits(0xAB)

	assert.Equal(t, TagNode, m.Tag())
	assert.True(t, m.OverflowLink())
	assert.Equal(t, int64(-100), m.Sedge(0))
	assert.Equal(t, int64(200), m.Sedge(1))
	assert.Equal(t, int64(-3), m.Sedge(2))
	assert.Equal(t, int64(4), m.Sedge(3))
	assert.True(t, m.InpBit(0))
	assert.False(t, m.InpBit(1))
	assert.Equal(t, hhdsprim.VertexID(42), m.NextPinPtr())
	assert.Equal(t, hhdsprim.VertexID(7), m.Ledge0())
	assert.Equal(t, uint32(9), m.Ledge1())
	assert.Equal(t, uint8(0xAB), m.Bits())
}

func TestMasterEntryPinOverloads(t *testing.T) {
	t.Parallel()
	var m MasterEntry
	m.SetTag(TagPin)
	m.SetPortID(3)
	m.SetNodeID(11)
	m.SetOverflowID(22)

	assert.Equal(t, TagPin, m.Tag())
	assert.Equal(t, uint32(3), m.PortID())
	assert.Equal(t, hhdsprim.VertexID(11), m.NodeID())
	assert.Equal(t, uint32(22), m.OverflowID())
}

func TestFitsSedge(t *testing.T) {
	t.Parallel()
	assert.True(t, FitsSedge(0))
	assert.True(t, FitsSedge(32767))
	assert.True(t, FitsSedge(-32768))
	assert.False(t, FitsSedge(32768))
	assert.False(t, FitsSedge(-32769))
}
