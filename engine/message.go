// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import "image"

// Native message identifiers.
const (
	MsgKeyDown     uint32 = 0x0100
	MsgKeyUp       uint32 = 0x0101
	MsgChar        uint32 = 0x0102
	MsgSysKeyDown  uint32 = 0x0104
	MsgSysKeyUp    uint32 = 0x0105
	MsgMouseMove   uint32 = 0x0200
	MsgLButtonDown uint32 = 0x0201
	MsgLButtonUp   uint32 = 0x0202
	MsgLButtonDbl  uint32 = 0x0203
	MsgRButtonDown uint32 = 0x0204
	MsgRButtonUp   uint32 = 0x0205
	MsgRButtonDbl  uint32 = 0x0206
	MsgMButtonDown uint32 = 0x0207
	MsgMButtonUp   uint32 = 0x0208
	MsgMButtonDbl  uint32 = 0x0209
	MsgMouseWheel  uint32 = 0x020A

	// MsgApp is the first private message identifier.
	MsgApp uint32 = 0x8000
	// MsgInjectedWheel carries wheel input injected by the core. The engine
	// reposts unhandled wheel input as MsgMouseWheel, never as this id.
	MsgInjectedWheel = MsgApp + 0x10
)

// Mouse key-state mask bits carried in wParam.
const (
	MKLButton uint64 = 0x0001
	MKRButton uint64 = 0x0002
	MKShift   uint64 = 0x0004
	MKControl uint64 = 0x0008
	MKMButton uint64 = 0x0010
)

// Message is a native window message.
type Message struct {
	ID     uint32
	WParam uint64
	LParam uint64
}

// MakeLParam packs a point as two signed 16-bit words.
func MakeLParam(p image.Point) uint64 {
	return uint64(uint16(int16(p.X))) | uint64(uint16(int16(p.Y)))<<16
}

// PointFromLParam unpacks a point packed by MakeLParam.
func PointFromLParam(l uint64) image.Point {
	return image.Pt(int(int16(uint16(l))), int(int16(uint16(l>>16))))
}

// MakeWheelWParam packs a wheel delta and key-state mask.
func MakeWheelWParam(delta int, keys uint64) uint64 {
	return keys&0xFFFF | uint64(uint16(int16(delta)))<<16
}

// WheelDelta extracts the signed wheel delta from a wheel wParam.
func WheelDelta(w uint64) int {
	return int(int16(uint16(w >> 16)))
}
