// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package device

// FireKeyDown records a key press: the key buffer gets the key code
// with its high bit set, and if the key has a matrix mapping, the
// corresponding bit is cleared (the matrix is active-low).
func (e *Emulator) FireKeyDown(key byte) {
	e.memory[e.Props.KeyBufferAddr] = key | 0x80
	if km, ok := e.keyMasks[key]; ok {
		e.memory[km.Addr] &^= km.Mask
	}
}

// FireKeyUp reinstates a key's matrix bit on release. It does not
// touch the key buffer; key() alone drains that.
func (e *Emulator) FireKeyUp(key byte) {
	if km, ok := e.keyMasks[key]; ok {
		e.memory[km.Addr] |= km.Mask
	}
}

// CheckKey implements INKEY-style polling of a specific key, reading
// the matrix directly rather than draining the key buffer.
func (e *Emulator) CheckKey(key byte) bool {
	km, ok := e.keyMasks[key]
	if !ok {
		return false
	}
	return e.memory[km.Addr]&km.Mask == 0
}

// Key drains and returns the pending key buffer byte, or ok=false if
// no key is pending (high bit clear).
func (e *Emulator) Key() (key byte, ok bool) {
	addr := e.Props.KeyBufferAddr
	b := e.memory[addr]
	if b < 128 {
		return 0, false
	}
	e.memory[addr] = b &^ 0x80
	return b & 0x7f, true
}

// BlinkCursor toggles an inverted block at the current row/column: a
// FullWidth block when the cell under the cursor holds a double-byte
// glyph's first byte and isn't in the last column, HalfWidth
// otherwise. Does nothing outside Text mode.
func (e *Emulator) BlinkCursor() {
	if e.screenMode != Text {
		return
	}
	if e.cursor == CursorNone {
		charAddr := int(e.Props.TextBufferAddr) + e.row*e.Props.Columns + e.column
		if e.memory[charAddr] >= 128 && e.column < e.Props.Columns-1 {
			e.cursor = CursorFullWidth
		} else {
			e.cursor = CursorHalfWidth
		}
		e.inverseCursor(e.cursor)
	} else {
		e.inverseCursor(e.cursor)
		e.cursor = CursorNone
	}
}

// ClearCursor forces any blinking cursor off, used before the device
// hands control back to a running program so a stray inverted block
// never survives into the next frame.
func (e *Emulator) ClearCursor() {
	if e.cursor == CursorNone {
		return
	}
	e.BlinkCursor()
}

func (e *Emulator) inverseCursor(cursor CursorState) {
	base := int(e.Props.GraphicsBaseAddr) + e.row*screenWidthByte*charHeight + e.column
	for i := 0; i < screenWidthByte*charHeight; i += screenWidthByte {
		e.memory[base+i] ^= 0xff
	}
	if cursor == CursorFullWidth && e.column < e.Props.Columns-1 {
		base++
		for i := 0; i < screenWidthByte*charHeight; i += screenWidthByte {
			e.memory[base+i] ^= 0xff
		}
	}

	left := e.column << 3
	top := e.row * charHeight
	right := left + 8
	if cursor == CursorFullWidth {
		right = left + 16
	}
	bottom := top + charHeight
	e.updateDirtyArea(left, top, right, bottom)
}
