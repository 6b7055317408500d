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

// Package vm executes a compiled bytecode.Program against a
// device.Device, one cooperative Step call at a time: a Step runs
// until the program ends, a keyboard-input statement needs data a
// caller must supply, a SLEEP wants the caller to wait, or the
// instruction budget given to Step runs out, whichever comes first.
package vm

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/device"
	"github.com/arucil/gvbasic/mbf5"
)

// funcInfo is a DEF FN function's runtime registration: its single
// parameter (a plain global variable, reassigned on every call, since
// nothing in the instruction set gives DEF FN its own call frame) and
// the address its body starts at, just past the DefFn instruction that
// registered it.
type funcInfo struct {
	param bytecode.Symbol
	body  bytecode.Addr
}

// recordField is one FIELD-statement binding: a fixed-width byte span
// of a random-access file's record buffer, bound to a string variable.
type recordField struct {
	width int
	name  bytecode.Symbol
}

// fileRecord tracks the FIELD layout and shared record buffer for one
// open random-access file number.
type fileRecord struct {
	fields []recordField
	buf    []byte
}

// pendingInput is the set of lvalues a suspended KeyboardInput
// instruction is waiting to fill, along with the kind each one
// expects, stashed across the ExecKeyboardInput boundary since
// ExecResult itself only reports each field's type to the caller and
// does not hold onto it for validation when the answer comes back.
type pendingInput struct {
	targets []bytecode.TmpLValue
	fields  []bytecode.KeyboardInput
}

// Machine is one running instance of a compiled program: its
// instruction pointer, value/call stacks, variable and array storage,
// and the device it renders to and reads input from.
type Machine struct {
	Program *bytecode.Program
	Device  device.Device

	id uuid.UUID

	pc    bytecode.Addr
	stack []bytecode.StackRecord
	vstk  []bytecode.TmpValue

	vars   map[bytecode.Symbol]bytecode.Value
	arrays map[bytecode.Symbol]*Array
	funcs  map[bytecode.Symbol]funcInfo

	dataPtr bytecode.DatumIndex

	records map[int]*fileRecord

	rnd     *rand.Rand
	lastRnd float64
	trace   bool

	writeBuf   charset.ByteString
	writeFirst bool

	pending *pendingInput

	ended bool
}

// New creates a Machine ready to run prog against dev from its first
// instruction.
func New(prog *bytecode.Program, dev device.Device) *Machine {
	m := &Machine{
		Program: prog,
		Device:  dev,
		id:      uuid.New(),
		vars:    make(map[bytecode.Symbol]bytecode.Value),
		arrays:  make(map[bytecode.Symbol]*Array),
		funcs:   make(map[bytecode.Symbol]funcInfo),
		records: make(map[int]*fileRecord),
		rnd:     rand.New(rand.NewSource(1)),
		writeFirst: true,
	}
	return m
}

// Restart resets execution to the first instruction, clearing all
// variables, arrays, open files and stacks, matching the RUN statement.
func (m *Machine) Restart() {
	m.pc = 0
	m.stack = m.stack[:0]
	m.vstk = m.vstk[:0]
	m.vars = make(map[bytecode.Symbol]bytecode.Value)
	m.arrays = make(map[bytecode.Symbol]*Array)
	m.funcs = make(map[bytecode.Symbol]funcInfo)
	m.dataPtr = bytecode.FirstDatumIndex
	m.records = make(map[int]*fileRecord)
	m.pending = nil
	m.ended = false
	m.writeBuf = nil
	m.writeFirst = true
	m.Device.Files().CloseAll()
	m.Device.Reset()
}

// Clear resets variables, arrays and the call/value stacks without
// rewinding the instruction pointer or touching open files, matching
// the CLEAR statement.
func (m *Machine) Clear() {
	m.stack = m.stack[:0]
	m.vstk = m.vstk[:0]
	m.vars = make(map[bytecode.Symbol]bytecode.Value)
	m.arrays = make(map[bytecode.Symbol]*Array)
	m.dataPtr = bytecode.FirstDatumIndex
}

func (m *Machine) symName(sym bytecode.Symbol) string {
	return m.Program.Interner.Name(sym)
}

// VarNames returns the names of every scalar variable currently
// assigned, sorted, for LIST-style diagnostics dumps and test
// fixtures that need stable output across runs -- map iteration order
// over m.vars is randomized per process and would otherwise make two
// dumps of an identical machine state compare unequal.
func (m *Machine) VarNames() []string {
	names := make([]string, 0, len(m.vars))
	for _, sym := range maps.Keys(m.vars) {
		names = append(names, m.symName(sym))
	}
	slices.Sort(names)
	return names
}

func (m *Machine) isStringSym(sym bytecode.Symbol) bool {
	return strings.HasSuffix(m.symName(sym), "$")
}

func (m *Machine) zeroValue(sym bytecode.Symbol) bytecode.Value {
	if m.isStringSym(sym) {
		return bytecode.StringValue(nil)
	}
	return bytecode.NumberValue(mbf5.Zero)
}

// array returns sym's array, implicitly allocating it with
// defaultDim-bounded dimensions the first time it is addressed without
// a prior DIM, the arity given by the index expression that reached it.
func (m *Machine) array(sym bytecode.Symbol, arity int) *Array {
	a, ok := m.arrays[sym]
	if ok {
		return a
	}
	dims := make([]int, arity)
	for i := range dims {
		dims[i] = defaultDim
	}
	a = newArray(dims, m.isStringSym(sym))
	m.arrays[sym] = a
	return a
}

func toByteString(s charset.ByteString) charset.ByteString {
	if s == nil {
		return charset.ByteString{}
	}
	return s
}
