// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package bitpack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masc-ucsc/hhds/lib/bitpack"
)

func TestGetSetRoundTrip(t *testing.T) {
	t.Parallel()
	for name, tc := range map[string]struct {
		offset, width int
		value         uint64
	}{
		"small-field":     {offset: 3, width: 5, value: 17},
		"word-aligned":    {offset: 64, width: 49, value: 0x1FFFFFFFFFFF},
		"straddles-words": {offset: 60, width: 17, value: 0x1FFFF},
		"full-word":       {offset: 128, width: 64, value: 0xDEADBEEFCAFEBABE},
		"single-bit":      {offset: 248, width: 1, value: 1},
	} {
		t.Run(name, func(t *testing.T) {
			words := make([]uint64, 8)
			bitpack.Set(words, tc.offset, tc.width, tc.value)
			assert.Equal(t, tc.value, bitpack.Get(words, tc.offset, tc.width))
		})
	}
}

func TestSetDoesNotClobberNeighbors(t *testing.T) {
	t.Parallel()
	words := make([]uint64, 8)
	bitpack.Set(words, 0, 49, 0x1FFFFFFFFFFF)
	bitpack.Set(words, 49, 49, 0x1FFFFFFFFFFF)
	assert.Equal(t, uint64(0x1FFFFFFFFFFF), bitpack.Get(words, 0, 49))
	assert.Equal(t, uint64(0x1FFFFFFFFFFF), bitpack.Get(words, 49, 49))

	bitpack.Set(words, 0, 49, 0)
	assert.Equal(t, uint64(0), bitpack.Get(words, 0, 49))
	assert.Equal(t, uint64(0x1FFFFFFFFFFF), bitpack.Get(words, 49, 49))
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()
	words := make([]uint64, 8)
	for _, v := range []int64{0, 1, -1, 65535, -65536, 100, -100} {
		if !bitpack.FitsSigned(v, 17) {
			continue
		}
		bitpack.SetSigned(words, 256, 17, v)
		assert.Equal(t, v, bitpack.GetSigned(words, 256, 17))
	}
}

func TestSignedRange(t *testing.T) {
	t.Parallel()
	lo, hi := bitpack.SignedRange(17)
	assert.Equal(t, int64(-65536), lo)
	assert.Equal(t, int64(65535), hi)
	assert.True(t, bitpack.FitsSigned(hi, 17))
	assert.False(t, bitpack.FitsSigned(hi+1, 17))
	assert.True(t, bitpack.FitsSigned(lo, 17))
	assert.False(t, bitpack.FitsSigned(lo-1, 17))
}
