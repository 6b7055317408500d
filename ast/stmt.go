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

package ast

// StmtKind is the discriminant of Stmt, one member per GVBASIC
// statement keyword plus the handful of pseudo-statements (NoOp,
// Rem-alikes) the parser also produces.
type StmtKind int

const (
	StmtAuto StmtKind = iota // identical to Rem
	StmtBeep
	StmtBox
	StmtCall
	StmtCircle
	StmtClear
	StmtClose
	StmtCls
	StmtCont
	StmtCopy // identical to Rem
	StmtData
	StmtDef
	StmtDel // identical to Rem
	StmtDim
	StmtDraw
	StmtEdit // identical to Rem
	StmtEllipse
	StmtEnd
	StmtField
	StmtFiles // identical to Rem
	StmtFlash
	StmtFor
	StmtGet
	StmtGoSub
	StmtGoTo
	StmtGraph
	StmtIf
	StmtInKey
	StmtInput
	StmtInverse
	StmtKill // identical to Rem
	StmtLet
	StmtLine
	StmtList // identical to Rem
	StmtLoad // identical to Rem
	StmtLocate
	StmtLSet
	StmtNew // identical to Rem
	StmtNext
	StmtNormal
	StmtNoTrace
	StmtOn
	StmtOpen
	StmtPlay
	StmtPoke
	StmtPop
	StmtPrint
	StmtPut
	StmtRead
	StmtRem
	StmtRename // identical to Rem
	StmtRestore
	StmtReturn
	StmtRSet
	StmtRun
	StmtSave // identical to Rem
	StmtStop // identical to Rem
	StmtSwap
	StmtSystem
	StmtText
	StmtTrace
	StmtWend
	StmtWhile
	StmtWrite
	StmtNoOp
)

// FileMode is the OPEN statement's access mode.
type FileMode int

const (
	FileInput FileMode = iota
	FileOutput
	FileAppend
	FileRandom
)

// InputSourceKind distinguishes INPUT from a file versus the keyboard.
type InputSourceKind int

const (
	InputFromFile InputSourceKind = iota
	InputFromKeyboard
)

type InputSource struct {
	Kind InputSourceKind
	Expr ExprID // filenum for InputFromFile, prompt string literal for InputFromKeyboard
}

type PrintElementKind int

const (
	PrintExpr PrintElementKind = iota
	PrintComma
	PrintSemicolon
	PrintSpc
	PrintTab
)

type PrintElement struct {
	Kind PrintElementKind
	Expr ExprID // meaningful for PrintExpr/PrintSpc/PrintTab
}

type WriteElement struct {
	Value ExprID
	Comma bool
}

type FieldSpec struct {
	Len  ExprID
	Name ExprID // lvalue
}

// LabelOperand is a GOTO/GOSUB/RESTORE/ON label reference together
// with the source range its digits occupy, so the relabel pass can
// find and rewrite it without re-lexing the line.
type LabelOperand struct {
	Range Range
	Label Label
}

// Stmt is one arena-resident statement node. IsRecovered marks a
// statement the parser had to synthesize (StmtNoOp, or a partially
// filled node) after a syntax error, so the compiler can skip
// codegen for it without erroring a second time.
type Stmt struct {
	Kind        StmtKind
	Range       Range
	IsRecovered bool

	// Box/Circle/Draw/Ellipse/Line
	X1, Y1, X2, Y2, R, RX, RY ExprID
	FillMode, DrawMode        ExprID // zero ExprID = absent

	// Call/Poke (Addr also reused by Poke)
	Addr ExprID

	// Close/Field/Get/Open/Put/Write
	FileNum   ExprID
	FileNumID Range // integer literal range, used by Open
	Fields    []FieldSpec
	Record    ExprID
	Filename  ExprID
	Mode      FileMode
	OpenLen   ExprID

	// Data/Auto/Copy/Del/Edit/Files/Kill/List/Load/New/Rem/Rename/Save/Stop
	Text Range

	// Def
	FuncName  Range
	ParamName Range
	Body      ExprID

	// Dim/Read — lvalue lists
	Lvalues []ExprID

	// For
	ForVar            Range
	Start, End, Step  ExprID

	// GoSub/GoTo/Restore — optional single label
	GotoLabel     *LabelOperand
	HasGotoKeyword bool

	// If
	Cond   ExprID
	Conseq []StmtID
	Alt    []StmtID

	// Input
	Source InputSource

	// Let/LSet/RSet
	Field ExprID
	Value ExprID

	// Locate
	Row, Column ExprID

	// Next
	Vars []Range

	// On
	OnLabels []LabelOperand
	IsSub    bool

	// Play
	PlayExpr ExprID

	// Print
	PrintElems []PrintElement

	// Swap
	Left, Right ExprID

	// While
	WhileCond ExprID

	// Write
	WriteFields []WriteElement
}
