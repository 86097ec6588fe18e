// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"image"

	"github.com/YindSoft/webtexture/engine"
	"github.com/YindSoft/webtexture/keymap"
	"github.com/hajimehoshi/ebiten/v2"
)

// Event is a host input event for Browser.SendEvent.
type Event interface {
	event()
}

type KeyAction int

const (
	KeyPress KeyAction = iota
	KeyRelease
	// KeyChar delivers a typed character in Char; Key is ignored.
	KeyChar
)

// KeyEvent is a keyboard event. Key is the host key code; Dead is the
// character of a dead key and replaces Key when non-zero.
type KeyEvent struct {
	Action    KeyAction
	Key       ebiten.Key
	Dead      rune
	Char      rune
	Location  keymap.Location
	Modifiers keymap.Modifiers
}

type MouseAction int

const (
	MouseMove MouseAction = iota
	MouseDrag
	MouseDown
	MouseUp
	MouseDoubleClick
)

// ButtonMask is the host mouse button and modifier state.
type ButtonMask uint32

const (
	ButtonLeft ButtonMask = 1 << iota
	ButtonMiddle
	ButtonRight
	MaskShift
	MaskControl
)

const buttonBits = ButtonLeft | ButtonMiddle | ButtonRight

// MouseEvent is a pointer event. Point is in texture client coordinates
// with a top-left origin. Cursor is the pointer position in screen
// coordinates and is only used when HasCursor is set.
type MouseEvent struct {
	Action    MouseAction
	Buttons   ButtonMask
	Point     image.Point
	Cursor    image.Point
	HasCursor bool
}

// WheelEvent is a wheel rotation in notches; positive rotation scrolls
// content down.
type WheelEvent struct {
	Rotation int
	Point    image.Point
	Buttons  ButtonMask
}

func (KeyEvent) event()   {}
func (MouseEvent) event() {}
func (WheelEvent) event() {}

// nativeKeys maps host mask bits to message key-state bits.
func nativeKeys(m ButtonMask) uint64 {
	var k uint64
	if m&ButtonLeft != 0 {
		k |= engine.MKLButton
	}
	if m&ButtonRight != 0 {
		k |= engine.MKRButton
	}
	if m&ButtonMiddle != 0 {
		k |= engine.MKMButton
	}
	if m&MaskShift != 0 {
		k |= engine.MKShift
	}
	if m&MaskControl != 0 {
		k |= engine.MKControl
	}
	return k
}

// buttonMessage picks the message for a press, release or double click of
// the buttons in changed, defaulting to the left button.
func buttonMessage(action MouseAction, changed ButtonMask) uint32 {
	down, up, dbl := engine.MsgLButtonDown, engine.MsgLButtonUp, engine.MsgLButtonDbl
	switch {
	case changed&ButtonLeft != 0:
	case changed&ButtonRight != 0:
		down, up, dbl = engine.MsgRButtonDown, engine.MsgRButtonUp, engine.MsgRButtonDbl
	case changed&ButtonMiddle != 0:
		down, up, dbl = engine.MsgMButtonDown, engine.MsgMButtonUp, engine.MsgMButtonDbl
	}
	switch action {
	case MouseDown:
		return down
	case MouseUp:
		return up
	case MouseDoubleClick:
		return dbl
	}
	return engine.MsgMouseMove
}
