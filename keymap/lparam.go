// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package keymap

// Key message lParam bits.
const (
	RepeatMask    uint64 = 0xFFFF
	ExtendedBit   uint64 = 1 << 24
	ContextBit    uint64 = 1 << 29
	PreviousBit   uint64 = 1 << 30
	TransitionBit uint64 = 1 << 31
)

// PressLParam builds the lParam of a key press: repeat count one, the
// extended bit for right-hand keys, the context bit when alt is held.
func PressLParam(loc Location, mods Modifiers) uint64 {
	l := uint64(1)
	if loc == LocationRight {
		l |= ExtendedBit
	}
	if mods&ModAlt != 0 {
		l |= ContextBit
	}
	return l
}

// ReleaseLParam builds the lParam of a key release. Previous-state and
// transition-state are always set.
func ReleaseLParam(loc Location, mods Modifiers) uint64 {
	return PressLParam(loc, mods) | PreviousBit | TransitionBit
}

// IsAccelerator reports whether a key press is one the engine handles as an
// accelerator: clipboard and editing shortcuts, tab navigation, refresh and
// find keys.
func IsAccelerator(vk uint32, mods Modifiers) bool {
	switch vk {
	case VKTab, VKF5:
		return true
	case VKDelete, VKInsert:
		return mods&(ModControl|ModShift) != 0
	case VKBack:
		return mods&ModAlt != 0
	}
	if mods&ModControl == 0 {
		return false
	}
	switch vk {
	case letter('A'), letter('C'), letter('V'), letter('X'),
		letter('Z'), letter('Y'), letter('F'), letter('P'):
		return true
	}
	return false
}

func letter(c byte) uint32 { return VKA + uint32(c-'A') }

// VKF5 is the refresh key.
const VKF5 = VKF1 + 4
