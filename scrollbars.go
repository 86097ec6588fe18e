// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"image"
	"time"

	"github.com/YindSoft/webtexture/engine"
)

// applyScrollbars shows the root scrollbars only when content overflows the
// frame, and lets the body scroll on its own.
func (i *instance) applyScrollbars() {
	doc := i.eng.Document()
	if doc == nil || doc.Root() == nil {
		return
	}
	root := doc.Root()
	if err := root.SetStyle("overflow", "hidden"); err != nil {
		i.log.WithError(err).Debug("setting root overflow")
		return
	}
	size, area := root.ScrollSize(), root.ClientArea()
	mode := "hidden"
	if size.X > area.Dx() || size.Y > area.Dy() {
		mode = "scroll"
	}
	if err := root.SetStyle("overflow", mode); err != nil {
		i.log.WithError(err).Debug("setting root overflow")
	}
	if body := doc.Body(); body != nil {
		if err := body.SetStyle("overflow", "auto"); err != nil {
			i.log.WithError(err).Debug("setting body overflow")
		}
	}
}

// scrollDrag is an in-progress scrollbar interaction. Either internal is set
// (an engine-owned scrollbar receiving raw messages) or element is.
type scrollDrag struct {
	internal engine.Window

	element      engine.Element
	component    engine.Component
	anchor       image.Point
	anchorScroll image.Point
	repeat       chan struct{}
}

func (s *scrollDrag) active() bool { return s.internal != nil || s.element != nil }

func (s *scrollDrag) stop() {
	if s.repeat != nil {
		close(s.repeat)
	}
	*s = scrollDrag{}
}

// scrollPress starts a scrollbar interaction when the left button goes down
// over a scrollbar. It reports whether the press was consumed.
func (i *instance) scrollPress(ev MouseEvent, msg engine.Message) bool {
	doc := i.eng.Document()
	if doc == nil {
		return false
	}
	p := ev.Point
	var (
		el engine.Element
		c  engine.Component
	)
	for el = doc.ElementAt(p); el != nil; el = el.Parent() {
		if c = el.ComponentAt(p); c != engine.ComponentNone {
			break
		}
	}
	if el == nil {
		return false
	}
	i.scroll.stop()
	if c == engine.ComponentOutside {
		if ev.HasCursor {
			i.eng.MoveTo(ev.Cursor.Sub(p))
		}
		if err := i.eng.Window().Post(msg); err != nil {
			i.log.WithError(err).Debug("posting scrollbar press")
		}
		i.scroll.internal = i.eng.AuxWindow()
		return true
	}
	if !c.IsScrollbar() {
		return false
	}
	i.scroll.element = el
	i.scroll.component = c
	if c.IsThumb() {
		i.scroll.anchor = p
		i.scroll.anchorScroll = el.ScrollPos()
		return true
	}
	if err := el.DoScroll(c); err != nil {
		i.log.WithError(err).Debug("scrolling")
	}
	i.scroll.repeat = make(chan struct{})
	go i.repeatScroll(i.scroll.repeat, i.pump.opts.ScrollRepeat.Std())
	return true
}

func (i *instance) repeatScroll(stop <-chan struct{}, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if i.pump.post(i.id, (*instance).scrollRepeatTick) != nil {
				return
			}
		}
	}
}

// scrollRepeatTick repeats an arrow or page scroll while the cursor stays
// on the pressed component.
func (i *instance) scrollRepeatTick() {
	el := i.scroll.element
	if el == nil || i.scroll.component.IsThumb() {
		return
	}
	if el.ComponentAt(i.lastPoint) != i.scroll.component {
		return
	}
	if err := el.DoScroll(i.scroll.component); err != nil {
		i.log.WithError(err).Debug("scrolling")
	}
}

// scrollMove continues a drag. It reports whether the move was consumed.
func (i *instance) scrollMove(ev MouseEvent, msg engine.Message) bool {
	if w := i.scroll.internal; w != nil {
		screen := i.eng.Window().ClientToScreen(ev.Point)
		msg.LParam = engine.MakeLParam(w.ScreenToClient(screen))
		if err := w.Post(msg); err != nil {
			i.log.WithError(err).Debug("posting scrollbar drag")
		}
		return true
	}
	el := i.scroll.element
	if el == nil {
		return false
	}
	if !i.scroll.component.IsThumb() {
		return true
	}
	arrows := 2 * i.eng.Metrics().ArrowExtent
	area, size := el.ClientArea(), el.ScrollSize()
	pos := i.scroll.anchorScroll
	delta := ev.Point.Sub(i.scroll.anchor)
	if i.scroll.component.Vertical() {
		if extent := area.Dy() - arrows; extent > 0 {
			pos.Y = i.scroll.anchorScroll.Y + delta.Y*size.Y/extent
		}
	} else if extent := area.Dx() - arrows; extent > 0 {
		pos.X = i.scroll.anchorScroll.X + delta.X*size.X/extent
	}
	if err := el.SetScrollPos(pos); err != nil {
		i.log.WithError(err).Debug("setting scroll position")
	}
	return true
}

// scrollRelease ends a drag. It reports whether the release was consumed.
func (i *instance) scrollRelease(ev MouseEvent, msg engine.Message) bool {
	if !i.scroll.active() {
		return false
	}
	if w := i.scroll.internal; w != nil {
		screen := i.eng.Window().ClientToScreen(ev.Point)
		msg.LParam = engine.MakeLParam(w.ScreenToClient(screen))
		if err := w.Post(msg); err != nil {
			i.log.WithError(err).Debug("posting scrollbar release")
		}
	}
	i.scroll.stop()
	return true
}
