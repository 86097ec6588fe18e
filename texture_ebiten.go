// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenTexture is a TextureTarget backed by an ebiten.Image. The image is
// recreated when an upload has a different size.
type EbitenTexture struct {
	Image  *ebiten.Image
	pixels []byte
	width  int
	height int
}

func NewEbitenTexture(width, height int) *EbitenTexture {
	return &EbitenTexture{
		Image:  ebiten.NewImage(width, height),
		pixels: make([]byte, width*height*4),
		width:  width,
		height: height,
	}
}

// SubImage converts BGR to RGBA and writes it into the image.
func (t *EbitenTexture) SubImage(width, height int, bgr []byte) error {
	if len(bgr) < width*height*3 {
		return fmt.Errorf("%w: %d bytes for %dx%d frame", ErrInvalidArgument, len(bgr), width, height)
	}
	if width != t.width || height != t.height {
		if t.Image != nil {
			t.Image.Deallocate()
		}
		t.Image = ebiten.NewImage(width, height)
		t.pixels = make([]byte, width*height*4)
		t.width, t.height = width, height
	}
	dstIdx := 0
	for srcOff := 0; srcOff < width*height*3; srcOff += 3 {
		t.pixels[dstIdx+0] = bgr[srcOff+2] // BGR -> RGBA
		t.pixels[dstIdx+1] = bgr[srcOff+1]
		t.pixels[dstIdx+2] = bgr[srcOff+0]
		t.pixels[dstIdx+3] = 0xFF
		dstIdx += 4
	}
	t.Image.WritePixels(t.pixels)
	return nil
}
