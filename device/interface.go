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

import "time"

// Device is the hardware surface a running program addresses: cursor
// and mode state, text and graphics output, the keyboard, memory-mapped
// I/O, file storage, and the 6502 sub-stepper CALL drives. Emulator is
// the only implementation this module ships, but callers (the VM, a
// test harness standing in a scripted key sequence) depend on this
// interface rather than *Emulator directly.
type Device interface {
	GetRow() int
	GetColumn() int
	SetRow(row int)
	SetColumn(column int)

	ScreenMode() ScreenMode
	SetScreenMode(mode ScreenMode)
	PrintMode() PrintMode
	SetPrintMode(mode PrintMode)

	Print(str []byte)
	Newline()
	Flush()
	Cls()

	DrawPoint(x, y int, mode DrawMode)
	DrawLine(x1, y1, x2, y2 int, mode DrawMode)
	DrawBox(x1, y1, x2, y2 int, fill bool, mode DrawMode)
	DrawCircle(x, y, r int, fill bool, mode DrawMode)
	DrawEllipse(x0, y0, rx, ry int, fill bool, mode DrawMode)
	CheckPoint(x, y int) bool

	CheckKey(key byte) bool
	Key() (key byte, ok bool)
	FireKeyDown(key byte)
	FireKeyUp(key byte)
	UserQuit() bool

	ReadByte(addr uint16) byte
	WriteByte(addr uint16, b byte)
	StepAsm(steps int, state AsmState) (AsmState, AsmHalt, error)

	Files() *FileStore
	EOFBehavior() EOFBehavior

	BlinkCursor()
	ClearCursor()

	SleepUnit() time.Duration
	Beep()
	PlayNotes(notes []byte)

	GraphicMemory() []byte
	TakeDirtyArea() *Rect

	Reset()
}

var _ Device = (*Emulator)(nil)
