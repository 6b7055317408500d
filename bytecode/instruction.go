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

package bytecode

import (
	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/keyword"
	"github.com/arucil/gvbasic/mbf5"
)

// Addr is an index into a program's instruction vector. DummyAddr
// marks a forward reference not yet patched (a GOTO/GOSUB to a label
// not seen yet, or a WHILE body whose end address is filled in once
// the matching WEND is compiled).
type Addr int

const DummyAddr Addr = -1

// DatumIndex is an index into a program's DATA pool. FirstDatumIndex
// is the index READ starts at before any RESTORE repositions it.
type DatumIndex int

const FirstDatumIndex DatumIndex = 0

// ScreenMode selects between the 20x5 text screen and the 160x80
// graphics screen; GRAPH/TEXT switch between them and many drawing
// and PRINT operations behave differently depending on which is active.
type ScreenMode int

const (
	ScreenText ScreenMode = iota
	ScreenGraph
)

// Alignment controls whether LSET/RSET pads a string field to the
// left or right.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// PrintMode selects how characters are rendered on the text screen:
// normal, color-inverted, or flashing. Set by the NORMAL/INVERSE/FLASH
// statements.
type PrintMode int

const (
	PrintNormal PrintMode = iota
	PrintInverse
	PrintFlash
)

// InstrKind identifies the operation an Instr performs. The ordering
// mirrors the statement and expression forms it implements, not a
// meaningful numeric grouping.
type InstrKind int

const (
	// DefFn skips over a DEF FN body at top-level execution; the body
	// is only ever entered through a CallFn.
	DefFn InstrKind = iota
	DimArray
	PushLValue
	PushFnLValue
	SetRecordFields
	ForLoop
	NextFor
	GoSub
	GoTo
	JumpIfZero
	CallFn
	ReturnFn
	Switch
	RestoreDataPtr
	Return
	Pop
	PopValue
	PushNum
	PushVar
	PushStr
	PushInKey
	PushIndex
	Not
	Neg
	Eq
	Ne
	Gt
	Lt
	Ge
	Le
	Add
	Sub
	Mul
	Div
	Pow
	And
	Or
	SysFuncCall
	PrintNewLine
	PrintComma
	PrintSpc
	PrintTab
	PrintValue
	SetRow
	SetColumn
	Write
	WriteEnd
	KeyboardInput
	FileInput
	ReadData
	OpenFile
	Beep
	DrawBox
	Call
	DrawCircle
	Clear
	CloseFile
	Cls
	NoOp
	DrawPoint
	DrawEllipse
	End
	ReadRecord
	WriteRecord
	Assign
	DrawLine
	AlignedAssign
	SetTrace
	SetScreenMode
	PlayNotes
	Poke
	Swap
	Restart
	SetPrintMode
	Wend
	WhileLoop
	Sleep
)

// Instr is one compiled instruction: a kind tag, its operands (each
// InstrKind uses only the operand fields relevant to it, the rest left
// zero), and the source range it was compiled from, used to report
// runtime errors at the right place in the original text.
type Instr struct {
	Kind  InstrKind
	Range ast.Range

	// operands, populated according to Kind.
	Addr       Addr         // GoTo, GoSub, JumpIfZero, DefFn (body end), WhileLoop.End
	Addr2      Addr         // WhileLoop.Start
	Sym        Symbol       // PushVar, PushLValue, PushFnLValue (name), ForLoop.Var, NextFor.Var, DefFn (name)
	Sym2       Symbol       // PushFnLValue (param), DefFn (param)
	HasVar     bool         // NextFor: whether Sym holds a var name (bare NEXT has none)
	HasStep    bool         // ForLoop: whether a STEP expression was pushed before it
	IsGosub    bool         // Switch: true for ON...GOSUB, false for ON...GOTO
	Num        mbf5.Number  // PushNum
	Str        charset.ByteString // PushStr
	SysFunc    keyword.SysFunc
	Arity      int    // SysFuncCall argument count, DimArray/PushIndex dimension count
	Labels     []Addr     // Switch branch targets
	Datum      DatumIndex // RestoreDataPtr target
	FileMode   ast.FileMode
	HasLen     bool // OpenFile: whether a LEN= clause followed
	HasFill    bool // DrawBox/DrawCircle/DrawEllipse: whether a fill-mode arg followed
	HasMode    bool // Draw*: whether a draw-mode arg followed
	ToFile     bool // Write/WriteEnd/FileInput: whether writing to a file, not the console
	Prompt     *charset.ByteString // KeyboardInput: the custom prompt string, if any
	Fields     int                 // KeyboardInput/FileInput/WriteRecord: number of fields
	Alignment  Alignment
	Trace      bool
	ScreenMode ScreenMode
	PrintMode  PrintMode
	Nanos      int64 // Sleep: duration in nanoseconds
}
