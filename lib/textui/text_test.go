// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package textui_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/textui"
)

func TestFprintf(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	textui.Fprintf(&out, "%d", 12345)
	assert.Equal(t, "12,345", out.String())
}

func TestHumanized(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "12,345", fmt.Sprint(textui.Humanized(12345)))
	assert.Equal(t, "12,345  ", fmt.Sprintf("%-8d", textui.Humanized(12345)))

	vid := hhdsprim.VertexID(345243543)
	assert.Equal(t, "345,243,543", fmt.Sprintf("%d", textui.Humanized(vid)))
	assert.Equal(t, "345,243,543", fmt.Sprintf("%d", textui.Humanized(uint64(vid))))
}

func TestPortion(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "100% (0/0)", fmt.Sprint(textui.Portion[int]{}))
	assert.Equal(t, "0% (1/12,345)", fmt.Sprint(textui.Portion[int]{N: 1, D: 12345}))
	assert.Equal(t, "100% (0/0)", fmt.Sprint(textui.Portion[hhdsprim.VertexID]{}))
	assert.Equal(t, "0% (1/12,345)", fmt.Sprint(textui.Portion[hhdsprim.VertexID]{N: 1, D: 12345}))
}
