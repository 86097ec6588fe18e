// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/YindSoft/webtexture/engine"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	white      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	trackColor = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	arrowColor = color.RGBA{0xcd, 0xcd, 0xcd, 0xff}
	thumbColor = color.RGBA{0xa6, 0xa6, 0xa6, 0xff}
	imageColor = color.RGBA{0xc0, 0xc0, 0xc0, 0xff}
	frameColor = color.RGBA{0x76, 0x76, 0x76, 0xff}
	pluginFill = color.RGBA{0x40, 0x40, 0x40, 0xff}
)

// Render draws the current view into dst. dst must match ClientSize.
func (e *Engine) Render(dst *image.RGBA) error {
	if e.closed || e.doc == nil {
		return engine.ErrNoDocument
	}
	if dst.Bounds().Size() != e.ClientSize() {
		return fmt.Errorf("softengine: render target %v, view %v", dst.Bounds().Size(), e.ClientSize())
	}
	d := e.doc
	origin := dst.Bounds().Min
	fill(dst, dst.Bounds(), d.canvas())

	content := dst.SubImage(image.Rectangle{Max: d.view.client}.Add(origin)).(*image.RGBA)
	for _, el := range d.all {
		if el.box.Empty() || el == d.root || !el.visible() {
			continue
		}
		r := d.toClient(el.box).Add(origin)
		if bg, ok := el.background(); ok && !(el == d.body && d.bodyIsCanvas()) {
			fill(content, r, bg)
		}
		switch el.tag {
		case "img":
			fill(content, r, imageColor)
			frame(content, r, frameColor)
		case "embed", "object", "iframe":
			fill(content, r, pluginFill)
		case "input", "textarea":
			fill(content, r, white)
			frame(content, r, frameColor)
			drawText(content, r.Min.Add(image.Pt(3, 2)), el.value, el.textColor())
		}
	}
	for _, run := range d.runs {
		if run.owner != nil && !run.owner.visible() {
			continue
		}
		drawText(content, d.toClient(run.rect).Min.Add(origin), run.text, run.owner.textColor())
	}
	d.drawScrollbars(dst)
	return nil
}

// canvas returns the background of the whole view: the root's background,
// else the body's, else white.
func (d *document) canvas() color.RGBA {
	if c, ok := d.root.background(); ok {
		return c
	}
	if d.body != nil {
		if c, ok := d.body.background(); ok {
			return c
		}
	}
	return white
}

func (d *document) bodyIsCanvas() bool {
	_, ok := d.root.background()
	return !ok
}

func (d *document) drawScrollbars(dst *image.RGBA) {
	o := dst.Bounds().Min
	vr, hr := d.bars()
	vt, ht := d.thumbs()
	if !vr.Empty() {
		fill(dst, vr.Add(o), trackColor)
		fill(dst, image.Rect(vr.Min.X, vr.Min.Y, vr.Max.X, vr.Min.Y+arrowExtent).Add(o), arrowColor)
		fill(dst, image.Rect(vr.Min.X, vr.Max.Y-arrowExtent, vr.Max.X, vr.Max.Y).Add(o), arrowColor)
		fill(dst, vt.Inset(2).Add(o), thumbColor)
	}
	if !hr.Empty() {
		fill(dst, hr.Add(o), trackColor)
		fill(dst, image.Rect(hr.Min.X, hr.Min.Y, hr.Min.X+arrowExtent, hr.Max.Y).Add(o), arrowColor)
		fill(dst, image.Rect(hr.Max.X-arrowExtent, hr.Min.Y, hr.Max.X, hr.Max.Y).Add(o), arrowColor)
		fill(dst, ht.Inset(2).Add(o), thumbColor)
	}
	if !vr.Empty() && !hr.Empty() {
		fill(dst, image.Rect(vr.Min.X, hr.Min.Y, vr.Max.X, hr.Max.Y).Add(o), trackColor)
	}
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func frame(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// drawText draws s with its line box top-left corner at p.
func drawText(dst *image.RGBA, p image.Point, s string, c color.RGBA) {
	if s == "" {
		return
	}
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(p.X, p.Y+face.Ascent),
	}
	d.DrawString(s)
}
