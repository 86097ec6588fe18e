// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package gltexture uploads captured frames into OpenGL textures. It needs
// a current GL context on the calling thread and cgo.
package gltexture

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Init loads the GL function pointers for the current context.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gltexture: %w", err)
	}
	return nil
}

// Texture uploads into the texture bound to Target, usually gl.TEXTURE_2D.
// The texture must already have storage of at least the frame size.
type Texture struct {
	Target uint32
}

// Bound returns a Texture for the texture bound to GL_TEXTURE_2D.
func Bound() Texture { return Texture{Target: gl.TEXTURE_2D} }

// SubImage replaces the top-left region of the bound texture with tightly
// packed BGR rows.
func (t Texture) SubImage(width, height int, bgr []byte) error {
	if width <= 0 || height <= 0 || len(bgr) < width*height*3 {
		return fmt.Errorf("gltexture: %d bytes for %dx%d frame", len(bgr), width, height)
	}
	var prev int32
	gl.GetIntegerv(gl.UNPACK_ALIGNMENT, &prev)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(t.Target, 0, 0, 0, int32(width), int32(height), gl.BGR, gl.UNSIGNED_BYTE, gl.Ptr(bgr))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, prev)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gltexture: glTexSubImage2D failed: 0x%04x", code)
	}
	return nil
}

// Allocate creates storage for a width x height RGB texture bound to Target.
func (t Texture) Allocate(width, height int) {
	gl.TexImage2D(t.Target, 0, gl.RGB8, int32(width), int32(height), 0, gl.BGR, gl.UNSIGNED_BYTE, nil)
}
