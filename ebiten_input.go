// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"image"
	"math"

	"github.com/YindSoft/webtexture/keymap"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputPoller reads ebiten input once per frame and forwards it to a
// Browser drawn at Bounds. Clicking inside the bounds gives the browser
// keyboard focus; clicking outside removes it.
//
// The frame is assumed to be drawn unscaled; cursor positions are only
// translated by Bounds.Min.
type InputPoller struct {
	Bounds image.Rectangle

	focused bool
	mouse   image.Point
	buttons ButtonMask
	wheel   float64
}

// Poll forwards the input of the current ebiten tick. Call it from Update.
func (p *InputPoller) Poll(b *Browser) error {
	mx, my := ebiten.CursorPosition()
	cursor := image.Pt(mx, my)
	inBounds := p.Bounds.Empty() || cursor.In(p.Bounds)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inBounds != p.focused {
		p.focused = inBounds
		if err := b.SetActive(inBounds); err != nil {
			return err
		}
	}

	if inBounds || p.buttons&buttonBits != 0 {
		if err := p.pollMouse(b, cursor); err != nil {
			return err
		}
	}
	if p.focused {
		return p.pollKeyboard(b)
	}
	return nil
}

func (p *InputPoller) pollMouse(b *Browser, cursor image.Point) error {
	local := cursor.Sub(p.Bounds.Min)
	buttons := mouseButtons() | modifierMask()
	ev := MouseEvent{Point: local, Buttons: buttons, Cursor: cursor, HasCursor: true}

	send := true
	switch {
	case buttons&buttonBits&^p.buttons != 0:
		ev.Action = MouseDown
	case p.buttons&buttonBits&^buttons != 0:
		ev.Action = MouseUp
	case local != p.mouse && buttons&buttonBits != 0:
		ev.Action = MouseDrag
	case local != p.mouse:
		ev.Action = MouseMove
	default:
		send = false
	}
	p.mouse = local
	p.buttons = buttons
	if send {
		if err := b.SendEvent(ev); err != nil {
			return err
		}
	}

	_, dy := ebiten.Wheel()
	p.wheel += dy
	if notches := math.Trunc(p.wheel); notches != 0 {
		p.wheel -= notches
		// ebiten reports positive dy when scrolling up.
		return b.SendEvent(WheelEvent{Rotation: -int(notches), Point: local, Buttons: buttons})
	}
	return nil
}

func (p *InputPoller) pollKeyboard(b *Browser) error {
	mods := modifiers()
	chars := ebiten.AppendInputChars(nil)
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		ev := KeyEvent{Action: KeyPress, Key: key, Location: location(key), Modifiers: mods}
		if err := b.SendEvent(ev); err != nil {
			return err
		}
	}
	// Characters come from the OS text input system so layout and IME are respected.
	for _, r := range chars {
		if err := b.SendEvent(KeyEvent{Action: KeyChar, Char: r}); err != nil {
			return err
		}
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		ev := KeyEvent{Action: KeyRelease, Key: key, Location: location(key), Modifiers: mods}
		if err := b.SendEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func mouseButtons() ButtonMask {
	var m ButtonMask
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		m |= ButtonLeft
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		m |= ButtonRight
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		m |= ButtonMiddle
	}
	return m
}

func modifierMask() ButtonMask {
	var m ButtonMask
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= MaskShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= MaskControl
	}
	return m
}

func modifiers() keymap.Modifiers {
	var mods keymap.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= keymap.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= keymap.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= keymap.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= keymap.ModMeta
	}
	return mods
}

func location(key ebiten.Key) keymap.Location {
	switch key {
	case ebiten.KeyShiftLeft, ebiten.KeyControlLeft, ebiten.KeyAltLeft, ebiten.KeyMetaLeft:
		return keymap.LocationLeft
	case ebiten.KeyShiftRight, ebiten.KeyControlRight, ebiten.KeyAltRight, ebiten.KeyMetaRight,
		ebiten.KeyArrowUp, ebiten.KeyArrowDown, ebiten.KeyArrowLeft, ebiten.KeyArrowRight,
		ebiten.KeyHome, ebiten.KeyEnd, ebiten.KeyPageUp, ebiten.KeyPageDown,
		ebiten.KeyInsert, ebiten.KeyDelete, ebiten.KeyNumpadEnter:
		return keymap.LocationRight
	}
	if key >= ebiten.KeyNumpad0 && key <= ebiten.KeyNumpad9 {
		return keymap.LocationNumpad
	}
	return keymap.LocationStandard
}
