// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLParamRoundTrip(t *testing.T) {
	for _, p := range []image.Point{{0, 0}, {12, 34}, {-5, 7}, {1920, -1}} {
		assert.Equal(t, p, PointFromLParam(MakeLParam(p)))
	}
}

func TestWheelWParam(t *testing.T) {
	w := MakeWheelWParam(-240, MKShift)
	assert.Equal(t, -240, WheelDelta(w))
	assert.Equal(t, MKShift, w&0xFFFF)
}

func TestComponentClasses(t *testing.T) {
	assert.False(t, ComponentOutside.IsScrollbar())
	assert.True(t, ComponentVPageDown.IsScrollbar())
	assert.True(t, ComponentHThumb.IsThumb())
	assert.True(t, ComponentVUp.Vertical())
	assert.False(t, ComponentHLeft.Vertical())
	assert.Equal(t, "vthumb", ComponentVThumb.String())
}
