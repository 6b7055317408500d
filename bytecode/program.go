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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/charset"
)

// Datum is one entry of a compiled program's DATA pool, read in order
// by READ and repositioned by RESTORE.
type Datum struct {
	Range    ast.Range
	Value    charset.ByteString
	IsQuoted bool
}

// Program is the unit a compiler produces and a VM executes: the flat
// instruction vector, the DATA pool READ/RESTORE walk, and the symbol
// table mapping variable/function names to the Symbol handles the
// instructions reference.
type Program struct {
	Instrs   []Instr
	Data     []Datum
	Interner *Interner

	// StartAddrs maps each source line's label to the instruction
	// address its first compiled instruction starts at, used to
	// resolve GOTO/GOSUB/ON...GOTO targets and to report the current
	// line during error reporting.
	StartAddrs map[int]Addr
}

func NewProgram() *Program {
	return &Program{Interner: NewInterner(), StartAddrs: make(map[int]Addr)}
}

// Emit appends instr to the program and returns its address.
func (p *Program) Emit(instr Instr) Addr {
	addr := Addr(len(p.Instrs))
	p.Instrs = append(p.Instrs, instr)
	return addr
}

// Patch rewrites the Addr-typed target of an already-emitted
// instruction, used to back-patch forward jumps (IF's JumpIfZero
// before its ELSE/end label is known, WHILE's WhileLoop before the
// matching WEND is compiled).
func (p *Program) Patch(at Addr, target Addr) {
	p.Instrs[at].Addr = target
}

// SortedLabels returns every line label this program defines, in
// ascending order, for LIST-style diagnostics dumps and test fixtures
// that need the program's lines in source order rather than the
// random order map iteration would otherwise give.
func (p *Program) SortedLabels() []int {
	labels := maps.Keys(p.StartAddrs)
	slices.Sort(labels)
	return labels
}
