// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"image"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type flow struct {
	left, right  int
	x, y         int
	lineH        int
	maxX         int
	pendingSpace bool
	inline       []*element
}

func (f *flow) breakLine(force bool) {
	if f.x > f.left || force {
		f.y += f.lineH
	}
	f.x = f.left
	f.lineH = lineHeight
	f.pendingSpace = false
}

func (f *flow) grow(x int) {
	if x > f.maxX {
		f.maxX = x
	}
}

func (e *Engine) relayout() {
	if e.doc != nil {
		e.doc.layout(e.width, e.height)
	}
}

// layout computes boxes for a window of w x h pixels and decides which
// scrollbars are shown.
func (d *document) layout(w, h int) {
	v := viewport{width: w, height: h}
	switch d.root.CurrentStyle("overflow") {
	case "scroll":
		v.owned, v.vbar, v.hbar = true, true, true
	case "hidden":
	default:
		ext := d.flow(w)
		if ext.Y > h {
			v.vbar = true
			ext = d.flow(clientExtent(w, true))
		}
		if ext.X > clientExtent(w, v.vbar) {
			v.hbar = true
			if !v.vbar && ext.Y > h-scrollbarThickness {
				v.vbar = true
			}
		}
	}
	v.client = image.Pt(clientExtent(w, v.vbar), clientExtent(h, v.hbar))
	v.extent = d.flow(v.client.X)
	d.view = v
	d.clampScroll()
}

func clientExtent(n int, bar bool) int {
	if bar {
		n -= scrollbarThickness
	}
	if n < 0 {
		return 0
	}
	return n
}

// flow lays out the document at the given width and returns its extent.
func (d *document) flow(width int) image.Point {
	for _, el := range d.all {
		el.box = image.Rectangle{}
		el.lines = el.lines[:0]
	}
	d.runs = d.runs[:0]
	f := &flow{right: width, lineH: lineHeight}
	d.block(d.root, f)
	ext := image.Pt(f.maxX, d.root.box.Max.Y)
	d.view.extent = ext
	return ext
}

func (d *document) children(el *element, f *flow) {
	for _, c := range el.children {
		d.node(c, f)
	}
}

func (d *document) node(n *element, f *flow) {
	if n.tag == "#text" {
		d.text(n, f)
		return
	}
	switch disp := n.display(); {
	case disp == "none":
		return
	case n.tag == "br":
		f.breakLine(true)
	case isReplaced(n.tag):
		d.replaced(n, f)
	case disp == "block":
		d.block(n, f)
	default:
		f.inline = append(f.inline, n)
		d.children(n, f)
		f.inline = f.inline[:len(f.inline)-1]
		for _, l := range n.lines {
			n.box = n.box.Union(l)
		}
	}
}

func isReplaced(tag string) bool {
	switch tag {
	case "img", "embed", "object", "input", "textarea", "iframe":
		return true
	}
	return false
}

func (d *document) block(el *element, f *flow) {
	f.breakLine(false)
	mt, mr, mb, ml := el.margins()
	top := f.y + mt
	left := f.left + ml
	right := f.right - mr
	if w, ok := el.px("width"); ok && el != d.root && el != d.body {
		right = left + w
	}
	if right < left {
		right = left
	}
	nf := &flow{
		left:   left,
		right:  right,
		x:      left,
		y:      top,
		lineH:  lineHeight,
		inline: append([]*element(nil), f.inline...),
	}
	d.children(el, nf)
	nf.breakLine(false)
	bottom := nf.y
	if h, ok := el.px("height"); ok && el != d.root && el != d.body {
		bottom = top + h
	}
	el.box = image.Rect(left, top, right, bottom)
	if el.box.Empty() && bottom > top {
		el.box.Max.X = left + 1
	}
	f.grow(nf.maxX)
	if el != d.root && el != d.body {
		f.grow(right)
	}
	f.y = bottom + mb
	f.x = f.left
}

func (d *document) text(n *element, f *flow) {
	s := n.text
	words := strings.Fields(s)
	if len(words) == 0 {
		if s != "" && f.x > f.left {
			f.pendingSpace = true
		}
		return
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) && f.x > f.left {
		f.pendingSpace = true
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	trailing := unicode.IsSpace(last)
	for i, w := range words {
		width := runeCount(w) * charWidth
		space := 0
		if f.pendingSpace && f.x > f.left {
			space = charWidth
		}
		if f.x+space+width > f.right && f.x > f.left {
			f.breakLine(false)
			space = 0
		}
		x := f.x + space
		r := image.Rect(x, f.y, x+width, f.y+lineHeight)
		d.runs = append(d.runs, textRun{rect: r, text: w, owner: n.parent})
		for _, el := range f.inline {
			el.addLine(r)
		}
		f.x = x + width
		f.grow(f.x)
		f.pendingSpace = i < len(words)-1 || trailing
	}
}

func (d *document) replaced(el *element, f *flow) {
	w, h := replacedSize(el)
	space := 0
	if f.pendingSpace && f.x > f.left {
		space = charWidth
	}
	if f.x+space+w > f.right && f.x > f.left {
		f.breakLine(false)
		space = 0
	}
	x := f.x + space
	el.box = image.Rect(x, f.y, x+w, f.y+h)
	if h > f.lineH {
		f.lineH = h
	}
	for _, a := range f.inline {
		a.addLine(el.box)
	}
	f.x = x + w
	f.grow(f.x)
	f.pendingSpace = false
}

func replacedSize(el *element) (int, int) {
	var w, h int
	switch el.tag {
	case "img":
		w, h = 16, 16
	case "input":
		w, h = 150, 18
		if n, err := strconv.Atoi(el.attrs["size"]); err == nil && n > 0 {
			w = n*charWidth + 6
		}
	case "textarea":
		w, h = 20*charWidth+6, 2*lineHeight+6
	default:
		w, h = 300, 150
	}
	if v, ok := el.px("width"); ok {
		w = v
	}
	if v, ok := el.px("height"); ok {
		h = v
	}
	return w, h
}
