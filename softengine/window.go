// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"errors"
	"image"
	"strings"

	"github.com/YindSoft/webtexture/engine"
)

type windowKind int

const (
	mainWindow windowKind = iota
	childWindow
	auxWindow
)

const (
	vkBack  = 0x08
	vkTab   = 0x09
	vkPrior = 0x21
	vkNext  = 0x22
	vkEnd   = 0x23
	vkHome  = 0x24
	vkLeft  = 0x25
	vkUp    = 0x26
	vkRight = 0x27
	vkDown  = 0x28
)

const maxLogged = 256

var errClosed = errors.New("softengine: window closed")

// Window is a soft engine window. Messages posted to it are handled
// synchronously and logged.
type Window struct {
	eng  *Engine
	kind windowKind
	el   *element
	msgs []engine.Message
}

// Messages returns the messages posted to w, oldest first.
func (w *Window) Messages() []engine.Message {
	out := make([]engine.Message, len(w.msgs))
	copy(out, w.msgs)
	return out
}

// Rect returns w's rectangle in control client coordinates.
func (w *Window) Rect() image.Rectangle {
	if w.kind == childWindow && w.eng.doc != nil {
		return w.eng.doc.toClient(w.el.box)
	}
	return image.Rect(0, 0, w.eng.width, w.eng.height)
}

func (w *Window) ClientToScreen(p image.Point) image.Point {
	return p.Add(w.Rect().Min).Add(w.eng.origin)
}

func (w *Window) ScreenToClient(p image.Point) image.Point {
	return p.Sub(w.eng.origin).Sub(w.Rect().Min)
}

func (w *Window) Post(m engine.Message) error {
	if w.eng.closed {
		return errClosed
	}
	w.msgs = append(w.msgs, m)
	if len(w.msgs) > maxLogged {
		w.msgs = w.msgs[len(w.msgs)-maxLogged:]
	}
	switch w.kind {
	case mainWindow:
		w.eng.handle(m)
	case auxWindow:
		w.eng.handleAux(m)
	}
	return nil
}

// internalDrag tracks a drag of an engine-owned scrollbar thumb.
type internalDrag struct {
	vertical bool
	anchor   image.Point
	scroll   image.Point
}

func (e *Engine) handle(m engine.Message) {
	d := e.doc
	if d == nil {
		return
	}
	switch m.ID {
	case engine.MsgLButtonDown:
		p := engine.PointFromLParam(m.LParam)
		if d.component(p) == engine.ComponentOutside {
			vr, _ := d.bars()
			e.drag = &internalDrag{vertical: p.In(vr), anchor: e.window.ClientToScreen(p), scroll: d.scroll}
			return
		}
		el := d.elementAt(p)
		e.setFocus(nil)
		for n := el; n != nil; n = n.parent {
			if n.tag == "input" || n.tag == "textarea" {
				e.setFocus(n)
				break
			}
			if n.tag == "a" {
				if _, ok := n.attrs["href"]; ok {
					e.pressed = n
					break
				}
			}
		}
	case engine.MsgLButtonUp:
		pressed := e.pressed
		e.pressed = nil
		if pressed == nil {
			return
		}
		for n := d.elementAt(engine.PointFromLParam(m.LParam)); n != nil; n = n.parent {
			if n == pressed {
				if href := pressed.Href(); href != "" && !strings.HasPrefix(href, "#") {
					e.navigate(href, false)
				}
				return
			}
		}
	case engine.MsgMouseWheel, engine.MsgInjectedWheel:
		notches := engine.WheelDelta(m.WParam)
		d.scrollBy(image.Pt(0, -notches*wheelLines*lineHeight/wheelDelta))
	case engine.MsgKeyDown:
		e.key(uint32(m.WParam))
	case engine.MsgChar:
		if e.focus != nil && m.WParam >= 0x20 && m.WParam != 0x7f {
			e.focus.value += string(rune(m.WParam))
			e.changed()
		}
	}
}

func (e *Engine) handleAux(m engine.Message) {
	d := e.doc
	if d == nil || e.drag == nil {
		return
	}
	switch m.ID {
	case engine.MsgMouseMove:
		p := e.aux.ClientToScreen(engine.PointFromLParam(m.LParam))
		delta := p.Sub(e.drag.anchor)
		size := d.scrollSize()
		pos := e.drag.scroll
		if e.drag.vertical {
			if track := d.view.client.Y - 2*arrowExtent; track > 0 {
				pos.Y += delta.Y * size.Y / track
			}
		} else if track := d.view.client.X - 2*arrowExtent; track > 0 {
			pos.X += delta.X * size.X / track
		}
		d.setScroll(pos)
	case engine.MsgLButtonUp:
		e.drag = nil
	}
}

func (e *Engine) key(vk uint32) {
	d := e.doc
	switch vk {
	case vkBack:
		if e.focus != nil && e.focus.value != "" {
			r := []rune(e.focus.value)
			e.focus.value = string(r[:len(r)-1])
			e.changed()
		}
	case vkUp:
		d.scrollBy(image.Pt(0, -lineHeight))
	case vkDown:
		d.scrollBy(image.Pt(0, lineHeight))
	case vkLeft:
		d.scrollBy(image.Pt(-charWidth, 0))
	case vkRight:
		d.scrollBy(image.Pt(charWidth, 0))
	case vkPrior:
		d.scrollBy(image.Pt(0, -d.view.client.Y))
	case vkNext:
		d.scrollBy(image.Pt(0, d.view.client.Y))
	case vkHome:
		d.setScroll(image.Point{})
	case vkEnd:
		d.setScroll(d.maxScroll())
	}
}

func (e *Engine) setFocus(el *element) {
	if e.focus != el {
		e.focus = el
		e.changed()
	}
}

// TranslateAccelerator handles tab focus navigation between form fields.
func (e *Engine) TranslateAccelerator(m engine.Message) bool {
	e.accels = append(e.accels, m)
	if len(e.accels) > maxLogged {
		e.accels = e.accels[len(e.accels)-maxLogged:]
	}
	if m.ID != engine.MsgKeyDown || m.WParam != vkTab || e.doc == nil {
		return false
	}
	var fields []*element
	next := 0
	for _, el := range e.doc.all {
		if (el.tag == "input" || el.tag == "textarea") && !el.box.Empty() {
			if el == e.focus {
				next = len(fields) + 1
			}
			fields = append(fields, el)
		}
	}
	if len(fields) == 0 {
		return false
	}
	e.setFocus(fields[next%len(fields)])
	return true
}
