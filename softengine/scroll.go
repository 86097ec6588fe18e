// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"image"

	"github.com/YindSoft/webtexture/engine"
)

func (d *document) scrollSize() image.Point {
	s := d.view.extent
	if s.X < d.view.client.X {
		s.X = d.view.client.X
	}
	if s.Y < d.view.client.Y {
		s.Y = d.view.client.Y
	}
	return s
}

func (d *document) maxScroll() image.Point {
	s := d.scrollSize().Sub(d.view.client)
	if s.X < 0 {
		s.X = 0
	}
	if s.Y < 0 {
		s.Y = 0
	}
	return s
}

func (d *document) clampScroll() bool {
	m := d.maxScroll()
	p := d.scroll
	p.X = min(max(p.X, 0), m.X)
	p.Y = min(max(p.Y, 0), m.Y)
	changed := p != d.scroll
	d.scroll = p
	return changed
}

func (d *document) setScroll(p image.Point) {
	old := d.scroll
	d.scroll = p
	d.clampScroll()
	if d.scroll != old {
		d.eng.changed()
	}
}

func (d *document) scrollBy(delta image.Point) {
	d.setScroll(d.scroll.Add(delta))
}

// bars returns the vertical and horizontal scrollbar rectangles in client
// coordinates; a bar that is not shown is empty.
func (d *document) bars() (image.Rectangle, image.Rectangle) {
	v := d.view
	var vr, hr image.Rectangle
	if v.vbar {
		vr = image.Rect(v.client.X, 0, v.width, v.client.Y)
	}
	if v.hbar {
		hr = image.Rect(0, v.client.Y, v.client.X, v.height)
	}
	return vr, hr
}

// thumbs returns the thumb rectangles. The track length maps linearly onto
// the scroll extent.
func (d *document) thumbs() (image.Rectangle, image.Rectangle) {
	vr, hr := d.bars()
	size := d.scrollSize()
	var vt, ht image.Rectangle
	if !vr.Empty() && size.Y > 0 {
		track := vr.Dy() - 2*arrowExtent
		if track > 0 {
			top := vr.Min.Y + arrowExtent + track*d.scroll.Y/size.Y
			length := max(track*d.view.client.Y/size.Y, 6)
			vt = image.Rect(vr.Min.X, top, vr.Max.X, min(top+length, vr.Max.Y-arrowExtent))
		}
	}
	if !hr.Empty() && size.X > 0 {
		track := hr.Dx() - 2*arrowExtent
		if track > 0 {
			left := hr.Min.X + arrowExtent + track*d.scroll.X/size.X
			length := max(track*d.view.client.X/size.X, 6)
			ht = image.Rect(left, hr.Min.Y, min(left+length, hr.Max.X-arrowExtent), hr.Max.Y)
		}
	}
	return vt, ht
}

// component hit-tests p against the root scrollbars. Automatic scrollbars
// belong to the engine and report ComponentOutside.
func (d *document) component(p image.Point) engine.Component {
	vr, hr := d.bars()
	inV, inH := p.In(vr), p.In(hr)
	if !inV && !inH {
		return engine.ComponentNone
	}
	if !d.view.owned {
		return engine.ComponentOutside
	}
	vt, ht := d.thumbs()
	if inV {
		switch {
		case p.Y < vr.Min.Y+arrowExtent:
			return engine.ComponentVUp
		case p.Y >= vr.Max.Y-arrowExtent:
			return engine.ComponentVDown
		case p.In(vt):
			return engine.ComponentVThumb
		case p.Y < vt.Min.Y:
			return engine.ComponentVPageUp
		}
		return engine.ComponentVPageDown
	}
	switch {
	case p.X < hr.Min.X+arrowExtent:
		return engine.ComponentHLeft
	case p.X >= hr.Max.X-arrowExtent:
		return engine.ComponentHRight
	case p.In(ht):
		return engine.ComponentHThumb
	case p.X < ht.Min.X:
		return engine.ComponentHPageLeft
	}
	return engine.ComponentHPageRight
}

func (d *document) doScroll(c engine.Component) {
	client := d.view.client
	switch c {
	case engine.ComponentVUp:
		d.scrollBy(image.Pt(0, -lineHeight))
	case engine.ComponentVDown:
		d.scrollBy(image.Pt(0, lineHeight))
	case engine.ComponentVPageUp:
		d.scrollBy(image.Pt(0, -client.Y))
	case engine.ComponentVPageDown:
		d.scrollBy(image.Pt(0, client.Y))
	case engine.ComponentHLeft:
		d.scrollBy(image.Pt(-charWidth, 0))
	case engine.ComponentHRight:
		d.scrollBy(image.Pt(charWidth, 0))
	case engine.ComponentHPageLeft:
		d.scrollBy(image.Pt(-client.X, 0))
	case engine.ComponentHPageRight:
		d.scrollBy(image.Pt(client.X, 0))
	}
}
