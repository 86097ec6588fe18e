// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"github.com/YindSoft/webtexture/engine"
	"github.com/YindSoft/webtexture/keymap"
)

func (i *instance) handleEvent(ev Event) {
	switch ev := ev.(type) {
	case KeyEvent:
		i.handleKey(ev)
	case MouseEvent:
		i.handleMouse(ev)
	case WheelEvent:
		i.handleWheel(ev)
	}
}

func (i *instance) handleKey(ev KeyEvent) {
	if ev.Action == KeyChar {
		if ev.Char != 0 {
			i.postMain(engine.Message{ID: engine.MsgChar, WParam: uint64(ev.Char), LParam: keymap.PressLParam(ev.Location, ev.Modifiers)})
		}
		return
	}
	vk := keymap.VirtualKey(ev.Key)
	if ev.Dead != 0 {
		vk = keymap.DeadVirtualKey(ev.Dead)
	}
	if vk == 0 {
		return
	}
	alt := ev.Modifiers&keymap.ModAlt != 0
	var m engine.Message
	switch ev.Action {
	case KeyPress:
		m = engine.Message{ID: engine.MsgKeyDown, WParam: uint64(vk), LParam: keymap.PressLParam(ev.Location, ev.Modifiers)}
		if alt {
			m.ID = engine.MsgSysKeyDown
		}
		if keymap.IsAccelerator(vk, ev.Modifiers) {
			if !i.eng.TranslateAccelerator(m) {
				i.log.WithField("vk", vk).Debug("accelerator not handled")
			}
			return
		}
	case KeyRelease:
		m = engine.Message{ID: engine.MsgKeyUp, WParam: uint64(vk), LParam: keymap.ReleaseLParam(ev.Location, ev.Modifiers)}
		if alt {
			m.ID = engine.MsgSysKeyUp
		}
	default:
		return
	}
	i.postMain(m)
}

func (i *instance) postMain(m engine.Message) {
	if err := i.eng.Window().Post(m); err != nil {
		i.log.WithError(err).Debug("posting message")
	}
}

func (i *instance) handleMouse(ev MouseEvent) {
	prev := i.lastMask
	i.lastMask = ev.Buttons
	i.lastPoint = ev.Point
	keys := nativeKeys(ev.Buttons)

	var changed ButtonMask
	switch ev.Action {
	case MouseDown, MouseDoubleClick:
		changed = ev.Buttons &^ prev & buttonBits
	case MouseUp:
		changed = prev &^ ev.Buttons & buttonBits
	}
	id := buttonMessage(ev.Action, changed)
	w, p := i.eng.ChildAt(ev.Point)
	m := engine.Message{ID: id, WParam: keys, LParam: engine.MakeLParam(p)}

	switch ev.Action {
	case MouseDown, MouseDoubleClick:
		if id == engine.MsgLButtonDown || id == engine.MsgLButtonDbl {
			if i.scrollPress(ev, m) {
				return
			}
			if ev.HasCursor {
				i.eng.MoveTo(ev.Cursor.Sub(ev.Point))
			}
		}
	case MouseMove, MouseDrag:
		if i.scrollMove(ev, m) {
			return
		}
	case MouseUp:
		if i.scrollRelease(ev, m) {
			return
		}
	}
	if err := w.Post(m); err != nil {
		i.log.WithError(err).Debug("posting mouse message")
	}
}

func (i *instance) handleWheel(ev WheelEvent) {
	i.lastPoint = ev.Point
	w, p := i.eng.ChildAt(ev.Point)
	delta := -ev.Rotation * i.eng.Metrics().WheelDelta
	m := engine.Message{
		ID:     engine.MsgInjectedWheel,
		WParam: engine.MakeWheelWParam(delta, nativeKeys(ev.Buttons)),
		LParam: engine.MakeLParam(w.ClientToScreen(p)),
	}
	if err := w.Post(m); err != nil {
		i.log.WithError(err).Debug("posting wheel message")
	}
}

// settleHover re-posts the last pointer position so hover state is current
// before a capture.
func (i *instance) settleHover() {
	w, p := i.eng.ChildAt(i.lastPoint)
	m := engine.Message{ID: engine.MsgMouseMove, WParam: nativeKeys(i.lastMask), LParam: engine.MakeLParam(p)}
	if err := w.Post(m); err != nil {
		i.log.WithError(err).Debug("posting hover")
	}
}
