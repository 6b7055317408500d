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
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/mbf5"
)

// ValueKind discriminates the payload a Value carries.
type ValueKind int

const (
	ValueInteger ValueKind = iota
	ValueNumber
	ValueString
)

// Value is a variable's or array element's persistent contents: a
// 16-bit integer (used by FOR loop counters and a few integer-typed
// built-ins), a 5-byte Microsoft Binary Format real, or a byte string.
// Exactly one of the fields below is meaningful, selected by Kind.
type Value struct {
	Kind    ValueKind
	Integer uint16
	Number  mbf5.Number
	String  charset.ByteString
}

func IntegerValue(v uint16) Value             { return Value{Kind: ValueInteger, Integer: v} }
func NumberValue(v mbf5.Number) Value          { return Value{Kind: ValueNumber, Number: v} }
func StringValue(v charset.ByteString) Value   { return Value{Kind: ValueString, String: v} }

// TmpLValueKind discriminates the variants of TmpLValue.
type TmpLValueKind int

const (
	TmpLValueVar TmpLValueKind = iota
	TmpLValueArray
)

// TmpLValue names a variable or array-element slot that a previous
// PushLValue/PushIndex instruction left on the value stack, without
// yet reading or writing its contents; Assign and AlignedAssign
// consume it together with the value being stored.
type TmpLValue struct {
	Kind   TmpLValueKind
	Name   Symbol
	Offset int // flattened index into Array.Data, when Kind == TmpLValueArray
}

// TmpValueKind discriminates the variants of TmpValue.
type TmpValueKind int

const (
	TmpValueLValue TmpValueKind = iota
	TmpValueString
	TmpValueNumber
)

// TmpValue is an entry on the VM's value stack, the scratch space
// expressions are evaluated into before being consumed by the
// instruction that needs them (Assign, a SysFuncCall argument list, a
// PRINT element, ...). Unlike Value, a TmpValue may also hold an
// lvalue reference rather than a realized value.
type TmpValue struct {
	Kind    TmpValueKind
	LValue  TmpLValue
	String  charset.ByteString
	Number  mbf5.Number
}

// StackRecordKind discriminates the variants of StackRecord.
type StackRecordKind int

const (
	StackRecordForLoop StackRecordKind = iota
	StackRecordWhileLoop
	StackRecordSub
)

// StackRecord is an entry on the VM's call stack: the bookkeeping
// FOR/WHILE loops and GOSUB need to resume correctly when control
// returns to them.
type StackRecord struct {
	Kind StackRecordKind

	// ForLoop fields.
	Addr   Addr        // address of the loop body's first instruction, re-entered by NextFor
	Var    Symbol      // loop counter variable
	Target mbf5.Number // loop bound
	Step   mbf5.Number // loop increment, possibly negative

	// WhileLoop fields: Addr above is reused as the address of the
	// WHILE condition check, re-evaluated by Wend.

	// Sub fields.
	NextAddr Addr // instruction to resume at when the matching Return executes
}

// KeyboardInputKind discriminates the variants of KeyboardInput.
type KeyboardInputKind int

const (
	KeyboardInputString KeyboardInputKind = iota
	KeyboardInputNumber
	KeyboardInputFunc
)

// KeyboardInput describes one field an INPUT/INKEY statement is
// waiting to receive from the device's keyboard buffer: a string, a
// number, or (for an on-the-fly DEF FN created at runtime from
// keyboard text) a function name, its parameter, and its compiled
// body address.
type KeyboardInput struct {
	Kind  KeyboardInputKind
	Name  Symbol // KeyboardInputFunc: the function's name
	Param Symbol // KeyboardInputFunc: the function's parameter
	Body  Addr   // KeyboardInputFunc: compiled body address
}

// ExecInputKind discriminates the variants of ExecInput.
type ExecInputKind int

const (
	ExecInputKeyboard ExecInputKind = iota
)

// ExecInput carries the data a caller supplies to Step to satisfy a
// previous ExecResult's KeyboardInput request.
type ExecInput struct {
	Kind     ExecInputKind
	Keyboard []Value
}

// ExecResultKind discriminates the variants of ExecResult.
type ExecResultKind int

const (
	ExecEnd ExecResultKind = iota
	ExecContinue
	ExecSleep
	ExecKeyboardInput
)

// ExecResult is what one Step call returns: the program ended, a
// budget of instructions ran out with more work remaining, execution
// should pause for the given duration (a SLEEP or the FOR-loop
// timing peephole), or execution is blocked waiting on keyboard input
// matching Fields.
type ExecResult struct {
	Kind    ExecResultKind
	Nanos   int64
	Prompt  *charset.ByteString
	Fields  []KeyboardInput
}
