// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package keymap translates host keyboard input (ebiten key codes) into the
// native engine's virtual-key codes and key-message parameters.
package keymap

import "github.com/hajimehoshi/ebiten/v2"

// Virtual-key codes.
const (
	VKBack      uint32 = 0x08
	VKTab       uint32 = 0x09
	VKReturn    uint32 = 0x0D
	VKShift     uint32 = 0x10
	VKControl   uint32 = 0x11
	VKMenu      uint32 = 0x12
	VKPause     uint32 = 0x13
	VKCapital   uint32 = 0x14
	VKEscape    uint32 = 0x1B
	VKSpace     uint32 = 0x20
	VKPrior     uint32 = 0x21
	VKNext      uint32 = 0x22
	VKEnd       uint32 = 0x23
	VKHome      uint32 = 0x24
	VKLeft      uint32 = 0x25
	VKUp        uint32 = 0x26
	VKRight     uint32 = 0x27
	VKDown      uint32 = 0x28
	VKSnapshot  uint32 = 0x2C
	VKInsert    uint32 = 0x2D
	VKDelete    uint32 = 0x2E
	VK0         uint32 = 0x30
	VKA         uint32 = 0x41
	VKLWin      uint32 = 0x5B
	VKApps      uint32 = 0x5D
	VKNumpad0   uint32 = 0x60
	VKMultiply  uint32 = 0x6A
	VKAdd       uint32 = 0x6B
	VKSubtract  uint32 = 0x6D
	VKDecimal   uint32 = 0x6E
	VKDivide    uint32 = 0x6F
	VKF1        uint32 = 0x70
	VKF24       uint32 = 0x87
	VKNumLock   uint32 = 0x90
	VKScroll    uint32 = 0x91
	VKOEM1      uint32 = 0xBA // ;:
	VKOEMPlus   uint32 = 0xBB
	VKOEMComma  uint32 = 0xBC
	VKOEMMinus  uint32 = 0xBD
	VKOEMPeriod uint32 = 0xBE
	VKOEM2      uint32 = 0xBF // /?
	VKOEM3      uint32 = 0xC0 // `~
	VKOEM4      uint32 = 0xDB // [{
	VKOEM5      uint32 = 0xDC // \|
	VKOEM6      uint32 = 0xDD // ]}
	VKOEM7      uint32 = 0xDE // '"
	VKOEM102    uint32 = 0xE2
)

// Modifiers is a host modifier mask.
type Modifiers uint32

const (
	ModAlt Modifiers = 1 << iota
	ModControl
	ModMeta
	ModShift
)

// Location is the host-reported physical location of a key.
type Location int

const (
	LocationStandard Location = iota
	LocationLeft
	LocationRight
	LocationNumpad
)

// VirtualKey maps an ebiten key to a virtual-key code. It returns 0 for keys
// without a mapping.
func VirtualKey(key ebiten.Key) uint32 {
	switch key {
	case ebiten.KeyBackspace:
		return VKBack
	case ebiten.KeyTab:
		return VKTab
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return VKReturn
	case ebiten.KeyEscape:
		return VKEscape
	case ebiten.KeySpace:
		return VKSpace
	case ebiten.KeyDelete:
		return VKDelete
	case ebiten.KeyInsert:
		return VKInsert

	case ebiten.KeyHome:
		return VKHome
	case ebiten.KeyEnd:
		return VKEnd
	case ebiten.KeyPageUp:
		return VKPrior
	case ebiten.KeyPageDown:
		return VKNext
	case ebiten.KeyArrowLeft:
		return VKLeft
	case ebiten.KeyArrowUp:
		return VKUp
	case ebiten.KeyArrowRight:
		return VKRight
	case ebiten.KeyArrowDown:
		return VKDown

	case ebiten.KeyShift, ebiten.KeyShiftLeft, ebiten.KeyShiftRight:
		return VKShift
	case ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight:
		return VKControl
	case ebiten.KeyAlt, ebiten.KeyAltLeft, ebiten.KeyAltRight:
		return VKMenu
	case ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight:
		return VKLWin

	case ebiten.KeyCapsLock:
		return VKCapital
	case ebiten.KeyNumLock:
		return VKNumLock
	case ebiten.KeyScrollLock:
		return VKScroll

	case ebiten.KeyPause:
		return VKPause
	case ebiten.KeyPrintScreen:
		return VKSnapshot
	case ebiten.KeyContextMenu:
		return VKApps

	case ebiten.KeyNumpadMultiply:
		return VKMultiply
	case ebiten.KeyNumpadAdd:
		return VKAdd
	case ebiten.KeyNumpadSubtract:
		return VKSubtract
	case ebiten.KeyNumpadDecimal:
		return VKDecimal
	case ebiten.KeyNumpadDivide:
		return VKDivide
	case ebiten.KeyNumpadEqual:
		return VKOEMPlus

	case ebiten.KeySemicolon:
		return VKOEM1
	case ebiten.KeyEqual:
		return VKOEMPlus
	case ebiten.KeyComma:
		return VKOEMComma
	case ebiten.KeyMinus:
		return VKOEMMinus
	case ebiten.KeyPeriod:
		return VKOEMPeriod
	case ebiten.KeySlash:
		return VKOEM2
	case ebiten.KeyBackquote:
		return VKOEM3
	case ebiten.KeyBracketLeft:
		return VKOEM4
	case ebiten.KeyBackslash:
		return VKOEM5
	case ebiten.KeyIntlBackslash:
		return VKOEM102
	case ebiten.KeyBracketRight:
		return VKOEM6
	case ebiten.KeyQuote:
		return VKOEM7
	}
	if vk := functionKey(key); vk != 0 {
		return vk
	}
	if key >= ebiten.KeyDigit0 && key <= ebiten.KeyDigit9 {
		return VK0 + uint32(key-ebiten.KeyDigit0)
	}
	if key >= ebiten.KeyA && key <= ebiten.KeyZ {
		return VKA + uint32(key-ebiten.KeyA)
	}
	if key >= ebiten.KeyNumpad0 && key <= ebiten.KeyNumpad9 {
		return VKNumpad0 + uint32(key-ebiten.KeyNumpad0)
	}
	return 0
}

var functionKeys = [...]ebiten.Key{
	ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4, ebiten.KeyF5, ebiten.KeyF6,
	ebiten.KeyF7, ebiten.KeyF8, ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
	ebiten.KeyF13, ebiten.KeyF14, ebiten.KeyF15, ebiten.KeyF16, ebiten.KeyF17, ebiten.KeyF18,
	ebiten.KeyF19, ebiten.KeyF20, ebiten.KeyF21, ebiten.KeyF22, ebiten.KeyF23, ebiten.KeyF24,
}

func functionKey(key ebiten.Key) uint32 {
	for i, k := range functionKeys {
		if k == key {
			return VKF1 + uint32(i)
		}
	}
	return 0
}

// DeadVirtualKey maps a dead-key accent reported by the host to the OEM key
// that produces it on a US-international layout.
func DeadVirtualKey(accent rune) uint32 {
	switch accent {
	case '´', '\'', '¨', '"':
		return VKOEM7
	case '`', '~', '˜':
		return VKOEM3
	case '^', 'ˆ':
		return VKOEM5
	case '¸':
		return VKOEMComma
	case '˚', '°':
		return VKOEM4
	}
	return 0
}
