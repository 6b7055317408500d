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
	"testing"

	"github.com/arucil/gvbasic/mbf5"
)

func TestInternerAssignsStableSymbols(t *testing.T) {
	in := NewInterner()
	a := in.Intern("A")
	b := in.Intern("B")
	a2 := in.Intern("A")
	if a != a2 {
		t.Fatalf("Intern(A) = %v, then %v, want equal", a, a2)
	}
	if a == b {
		t.Fatalf("Intern(A) == Intern(B) = %v, want distinct", a)
	}
	if in.Name(a) != "A" || in.Name(b) != "B" {
		t.Fatalf("names = %q, %q", in.Name(a), in.Name(b))
	}
}

func TestProgramEmitAndPatch(t *testing.T) {
	p := NewProgram()
	jz := p.Emit(Instr{Kind: JumpIfZero, Addr: DummyAddr})
	p.Emit(Instr{Kind: PushNum, Num: mbf5.FromInt(1)})
	target := p.Emit(Instr{Kind: NoOp})
	p.Patch(jz, target)
	if p.Instrs[jz].Addr != target {
		t.Fatalf("patched addr = %v, want %v", p.Instrs[jz].Addr, target)
	}
	if len(p.Instrs) != 3 {
		t.Fatalf("len(Instrs) = %d, want 3", len(p.Instrs))
	}
}

func TestValueConstructors(t *testing.T) {
	n := NumberValue(mbf5.FromInt(42))
	if n.Kind != ValueNumber {
		t.Fatalf("n.Kind = %v, want ValueNumber", n.Kind)
	}
	if n.Number.Int() != 42 {
		t.Fatalf("n.Number.Int() = %d, want 42", n.Number.Int())
	}
	i := IntegerValue(7)
	if i.Kind != ValueInteger || i.Integer != 7 {
		t.Fatalf("i = %+v, want Integer(7)", i)
	}
}

func TestStackRecordForLoop(t *testing.T) {
	in := NewInterner()
	rec := StackRecord{
		Kind:   StackRecordForLoop,
		Addr:   5,
		Var:    in.Intern("I"),
		Target: mbf5.FromInt(10),
		Step:   mbf5.FromInt(1),
	}
	if rec.Kind != StackRecordForLoop || in.Name(rec.Var) != "I" {
		t.Fatalf("rec = %+v", rec)
	}
}
