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

// Package device emulates the pocket-computer a compiled program runs
// against: a 64 KiB address space carrying a text buffer and a 1-bpp
// graphics framebuffer, a keyboard matrix, RTC-mapped memory reads, a
// record-oriented file store, and an embedded 6502 sub-stepper CALL
// statements drive.
package device

import (
	"time"

	"github.com/google/uuid"

	"github.com/arucil/gvbasic/config"
	"github.com/arucil/gvbasic/date"
	"github.com/arucil/gvbasic/ints"
)

const (
	screenWidth     = 160
	screenHeight    = 80
	screenWidthByte = screenWidth / 8
	screenBytes     = screenWidthByte * screenHeight
	charHeight      = 16
)

// ScreenMode selects whether the text buffer drives the framebuffer
// (Text) or a program is drawing directly into it (Graph).
type ScreenMode int

const (
	Text ScreenMode = iota
	Graph
)

// PrintMode is the inverse/flash state newly printed text is tagged
// with; it never affects text already in the buffer.
type PrintMode int

const (
	Normal PrintMode = iota
	Inverse
	Flash
)

// CursorState is the shape blink_cursor toggles at the current row
// and column.
type CursorState int

const (
	CursorNone CursorState = iota
	CursorHalfWidth
	CursorFullWidth
)

// Rect is a dirty-rectangle: the smallest bounding box containing
// every graphics change since the last TakeDirtyArea.
type Rect struct {
	Left, Top, Right, Bottom int
}

// KeyMask is the zero-page address and bit a key matrix entry clears
// while held down.
type KeyMask struct {
	Addr uint16
	Mask byte
}

const (
	// KeyEnter and KeyEsc are the two key codes the VM and device
	// itself inspect directly (INPUT's Enter-to-submit, ESC-to-break).
	KeyEnter = 13
	KeyEsc   = 27
)

// Emulator is the reference Device implementation: one program's
// entire hardware surface, memory-mapped into a single 64 KiB array
// the way the real machine wires its text buffer, framebuffer, and
// key matrix into one address space.
type Emulator struct {
	Props config.MachineProps
	Font  FontSet
	ID    uuid.UUID

	memory      [65536]byte
	inverseText []bool // one entry per text cell, row-major

	row, column int
	screenMode  ScreenMode
	printMode   PrintMode
	cursor      CursorState

	dirty    *Rect
	keyMasks map[byte]KeyMask

	files *FileStore

	clock func() date.Time // overridable for tests
}

// New creates an Emulator for the given machine profile. keyMasks may
// be nil, in which case fire_key_down/up only ever touch the key
// buffer, never a matrix bit (a reasonable profile for a machine
// without modeled zero-page key wiring).
func New(props config.MachineProps, keyMasks map[byte]KeyMask) *Emulator {
	e := &Emulator{
		Props:    props,
		Font:     DefaultFontSet(),
		ID:       uuid.New(),
		keyMasks: keyMasks,
		files:    NewFileStore(),
		clock:    date.Now,
	}
	e.inverseText = make([]bool, props.Columns*props.Rows)
	e.memory[0xffff] = 0x40 // RTI, the BRK trampoline's landing byte.
	e.Reset()
	if props.SecureFiles {
		// Encryption failures here mean the platform's crypto/rand
		// source is broken; nothing downstream could recover either,
		// so the emulator runs unencrypted rather than refusing to
		// start (OPEN will still work, just without at-rest secrecy).
		e.files.EnableEncryption(e.ID)
	}
	return e
}

// Reset clears memory, the text/inverse buffers, and cursor/print
// state back to power-on defaults, re-arming any key-matrix bits so
// every modeled key reads as "not pressed".
func (e *Emulator) Reset() {
	for i := range e.memory {
		e.memory[i] = 0
	}
	e.memory[0xffff] = 0x40 // RTI, the BRK trampoline's landing byte.
	for _, km := range e.keyMasks {
		e.memory[km.Addr] = 0xff
	}
	for i := range e.inverseText {
		e.inverseText[i] = false
	}
	e.row, e.column = 0, 0
	e.screenMode = Text
	e.printMode = Normal
	e.cursor = CursorNone
	e.dirty = nil
}

// GetRow and GetColumn report the cursor position the next Print call
// will write at; [0, Rows) and [0, Columns).
func (e *Emulator) GetRow() int    { return e.row }
func (e *Emulator) GetColumn() int { return e.column }

// SetRow and SetColumn implement LOCATE, clamped to the text buffer's
// bounds the way an out-of-range LOCATE argument is clamped rather
// than rejected.
func (e *Emulator) SetRow(row int) {
	e.row = ints.Clamp(row, 0, e.Props.Rows-1)
}

func (e *Emulator) SetColumn(column int) {
	e.column = ints.Clamp(column, 0, e.Props.Columns-1)
}

// ScreenMode and PrintMode report the device's current modes.
func (e *Emulator) ScreenMode() ScreenMode { return e.screenMode }
func (e *Emulator) PrintMode() PrintMode   { return e.printMode }

// SetScreenMode implements GRAPH/TEXT: switching modes always clears
// the screen, matching the original's set_screen_mode.
func (e *Emulator) SetScreenMode(mode ScreenMode) {
	e.screenMode = mode
	e.Cls()
}

// SetPrintMode implements the INVERSE/FLASH/NORMAL statements.
// Toggling FLASH while already Inverse cancels back to Normal rather
// than stacking, mirroring the original's match arm.
func (e *Emulator) SetPrintMode(mode PrintMode) {
	if e.printMode == Inverse && mode == Flash {
		e.printMode = Normal
		return
	}
	e.printMode = mode
}

// Cls clears the text buffer, the framebuffer, and the inverse mask,
// homes the cursor, and marks the whole screen dirty.
func (e *Emulator) Cls() {
	base := int(e.Props.TextBufferAddr)
	textBytes := e.Props.Columns * e.Props.Rows
	for i := base; i < base+textBytes; i++ {
		e.memory[i] = 0
	}
	g := int(e.Props.GraphicsBaseAddr)
	for i := g; i < g+screenBytes; i++ {
		e.memory[i] = 0
	}
	for i := range e.inverseText {
		e.inverseText[i] = false
	}
	e.row, e.column = 0, 0
	e.updateDirtyArea(0, 0, screenWidth, screenHeight)
}

// GraphicMemory returns a read-only view of the framebuffer, the way
// a host UI samples it each frame.
func (e *Emulator) GraphicMemory() []byte {
	base := int(e.Props.GraphicsBaseAddr)
	return e.memory[base : base+screenBytes]
}

// TakeDirtyArea reads and clears the accumulated dirty rectangle.
func (e *Emulator) TakeDirtyArea() *Rect {
	d := e.dirty
	e.dirty = nil
	return d
}

func (e *Emulator) updateDirtyArea(left, top, right, bottom int) {
	if e.dirty == nil {
		e.dirty = &Rect{Left: left, Top: top, Right: right, Bottom: bottom}
		return
	}
	if left < e.dirty.Left {
		e.dirty.Left = left
	}
	if top < e.dirty.Top {
		e.dirty.Top = top
	}
	if right > e.dirty.Right {
		e.dirty.Right = right
	}
	if bottom > e.dirty.Bottom {
		e.dirty.Bottom = bottom
	}
}

// ReadByte implements PEEK and the 6502 interpreter's memory reads:
// RTC-mapped addresses are synthesized from wall-clock time instead
// of reading backing memory.
func (e *Emulator) ReadByte(addr uint16) byte {
	if prop, ok := addrProps[addr]; ok {
		return e.readRTC(prop)
	}
	return e.memory[addr]
}

// addrProp names which wall-clock field a memory-mapped RTC address
// surfaces. Real machines differ on which physical addresses this
// table is keyed by; the interpreter only needs the field mapping
// itself, so this is the canonical set from §6, keyed by an offset
// from 0xa000 (a made-up-but-stable base no ROM or user program in
// this port's scope ever legitimately writes to).
type addrProp int

const (
	propYear addrProp = iota
	propMonth
	propDay
	propWeekDay
	propHour
	propMinute
	propHalfSecond
	propSecondMult2
)

const rtcBase = 0xa000

var addrProps = map[uint16]addrProp{
	rtcBase + 0: propYear,
	rtcBase + 1: propMonth,
	rtcBase + 2: propDay,
	rtcBase + 3: propWeekDay,
	rtcBase + 4: propHour,
	rtcBase + 5: propMinute,
	rtcBase + 6: propHalfSecond,
	rtcBase + 7: propSecondMult2,
}

func (e *Emulator) readRTC(prop addrProp) byte {
	now := e.clock()
	switch prop {
	case propYear:
		return byte(now.Year() - 1881)
	case propMonth:
		return byte(now.Month() - 1)
	case propDay:
		return byte(now.Day() - 1)
	case propWeekDay:
		return byte(now.Weekday())
	case propHour:
		return byte(now.Hour())
	case propMinute:
		return byte(now.Minute())
	case propHalfSecond:
		frac := float64(now.Nanosecond()) / 1e9
		return byte((float64(now.Second()) + frac) * 2)
	case propSecondMult2:
		return byte(now.Second() * 2)
	default:
		return 0
	}
}

// WriteByte implements POKE and the 6502 interpreter's memory writes.
// Addresses at or above 0xe000 are read-only ROM space and
// silently discard writes; a write landing on a key-matrix address is
// likewise discarded so user code cannot forge a "key released"
// state. A write inside the framebuffer dirties the affected 8x1
// strip directly, without waiting for the next text-buffer flush.
func (e *Emulator) WriteByte(addr uint16, b byte) {
	if addr >= 0xe000 {
		return
	}
	for _, km := range e.keyMasks {
		if km.Addr == addr {
			return
		}
	}
	e.memory[addr] = b

	g := e.Props.GraphicsBaseAddr
	if addr >= g && int(addr) < int(g)+screenBytes {
		index := int(addr - g)
		y := index / screenWidthByte
		x := (index % screenWidthByte) << 3
		e.updateDirtyArea(x, y, x+8, y+1)
	}
}

// UserQuit reports whether the user is currently holding ESC, per the
// machine's configured quit policy: either the key buffer's raw ESC
// byte, or (when the machine has no trustworthy key buffer) the ESC
// matrix bit directly.
func (e *Emulator) UserQuit() bool {
	if e.Props.KeyBufferCanQuit {
		return e.memory[e.Props.KeyBufferAddr] == 128+KeyEsc
	}
	km, ok := e.keyMasks[KeyEsc]
	if !ok {
		return false
	}
	return e.memory[km.Addr]&km.Mask == 0
}

// EOFBehavior reports how EOF() should treat a file whose read cursor
// sits exactly at its length: the reference machines this interpreter
// targets report EOF only once a read past the end has actually been
// attempted, never preemptively at the boundary.
func (e *Emulator) EOFBehavior() EOFBehavior {
	return EOFAfterShortRead
}

// EOFBehavior distinguishes how EOF() treats a cursor sitting exactly
// at a file's length.
type EOFBehavior int

const (
	EOFAfterShortRead EOFBehavior = iota
	EOFAtBoundary
)

// CheckPoint reports whether (x, y) is a set pixel in the
// framebuffer, per POINT(). Out-of-range coordinates are never set.
func (e *Emulator) CheckPoint(x, y int) bool {
	if x < 0 || x >= screenWidth || y < 0 || y >= screenHeight {
		return false
	}
	addr := int(e.Props.GraphicsBaseAddr) + y*screenWidthByte + (x >> 3)
	return e.memory[addr]&pointBitMask[x&7] != 0
}

// SleepUnit is the wall-clock duration one Sleep-instruction count
// represents on this machine.
func (e *Emulator) SleepUnit() time.Duration {
	return e.Props.SleepUnit()
}

// Beep and PlayNotes are sound hooks with no terminal binding in this
// port's scope; they exist so the VM's BEEP/PLAY instructions have
// somewhere to call into without special-casing a missing device.
func (e *Emulator) Beep()                  {}
func (e *Emulator) PlayNotes(notes []byte) {}
