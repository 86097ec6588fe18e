// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"fmt"
	"image"
	"sync/atomic"
	"time"
)

// CaptureBuffer is a captured frame: tightly packed 24-bit BGR rows, top row
// first, Width*Height*3 bytes.
type CaptureBuffer struct {
	Width, Height int
	Pix           []byte
	UpdateTime    int64
}

// TextureTarget receives frame uploads. SubImage replaces the top-left
// width x height region of the currently bound texture with BGR pixels and
// must not assume any row padding.
type TextureTarget interface {
	SubImage(width, height int, bgr []byte) error
}

var (
	clockStart = time.Now()
	lastTick   atomic.Int64
)

// nextUpdateTime returns strictly increasing millisecond timestamps.
func nextUpdateTime() int64 {
	now := time.Since(clockStart).Milliseconds()
	for {
		prev := lastTick.Load()
		t := now
		if t <= prev {
			t = prev + 1
		}
		if lastTick.CompareAndSwap(prev, t) {
			return t
		}
	}
}

// capture renders the engine into a fresh BGR frame and then refreshes the
// metadata. No frame is produced unless the instance is Ready.
func (i *instance) capture() {
	if i.State() != StateReady {
		return
	}
	i.settleHover()
	size := i.eng.ClientSize()
	if size.X <= 0 || size.Y <= 0 {
		i.dirty = false
		return
	}
	rgba := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	if err := i.eng.Render(rgba); err != nil {
		i.log.WithError(err).Warn("rendering")
		return
	}
	if caret, ok := i.eng.Caret(); ok {
		invert(rgba, caret)
	}
	frame := &CaptureBuffer{Width: size.X, Height: size.Y, Pix: toBGR(rgba), UpdateTime: nextUpdateTime()}
	i.frameMu.Lock()
	i.frame = frame
	i.updateTime = frame.UpdateTime
	i.frameMu.Unlock()
	i.dirty = false

	i.refreshMetadata()
	i.notifyObservers()
}

func invert(img *image.RGBA, r image.Rectangle) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for x := 0; x < len(row); x += 4 {
			row[x] = 0xFF - row[x]
			row[x+1] = 0xFF - row[x+1]
			row[x+2] = 0xFF - row[x+2]
		}
	}
}

// toBGR drops alpha and swaps channels into a tightly packed BGR buffer.
func toBGR(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3] = src[x*4+2]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4]
		}
	}
	return out
}

// Frame returns a copy of the pending frame without consuming it, or nil.
func (b *Browser) Frame() *CaptureBuffer {
	i := b.inst
	i.frameMu.Lock()
	defer i.frameMu.Unlock()
	if i.frame == nil {
		return nil
	}
	f := *i.frame
	f.Pix = append([]byte(nil), i.frame.Pix...)
	return &f
}

// LoadDisplayIntoTexture uploads the pending frame into t and releases it.
// It reports false when no new frame exists since the last upload.
func (b *Browser) LoadDisplayIntoTexture(t TextureTarget) (bool, error) {
	if t == nil {
		return false, fmt.Errorf("%w: nil texture target", ErrInvalidArgument)
	}
	i := b.inst
	i.frameMu.Lock()
	defer i.frameMu.Unlock()
	if i.frame == nil {
		return false, nil
	}
	f := i.frame
	if err := t.SubImage(f.Width, f.Height, f.Pix); err != nil {
		return false, fmt.Errorf("uploading frame: %w", err)
	}
	i.frame = nil
	return true, nil
}

// UpdateTime returns the timestamp of the latest capture, or 0 before the
// first one.
func (b *Browser) UpdateTime() int64 {
	i := b.inst
	i.frameMu.Lock()
	defer i.frameMu.Unlock()
	return i.updateTime
}
