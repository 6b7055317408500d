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

package compiler

import (
	"testing"

	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/parser"
)

// compileSrc parses every line of src independently (the way the
// document model does) and hands the results to Compile.
func compileSrc(t *testing.T, src string) (*bytecode.Program, []Diagnostic) {
	t.Helper()
	results := parser.Parse(src)
	lines := make([]Line, len(results))
	for i, r := range results {
		lines[i] = Line{
			Text:  srcLine(src, i),
			Label: r.Line.Label,
			Stmts: r.Line.Stmts,
			Arena: r.Arena,
		}
	}
	return Compile(lines, charset.V2)
}

// srcLine returns the i-th newline-terminated line of src, matching
// how parser.Parse itself splits src (so byte offsets recorded by the
// lexer/parser against that line line up with compiler.Line.Text).
func srcLine(src string, i int) string {
	start := 0
	for n := 0; n < i; n++ {
		idx := indexByte(src[start:], '\n')
		if idx < 0 {
			return ""
		}
		start += idx + 1
	}
	end := indexByte(src[start:], '\n')
	if end < 0 {
		return src[start:]
	}
	return src[start : start+end+1]
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func TestCompileSimpleLet(t *testing.T) {
	prog, diags := compileSrc(t, "10 A = 1 + 2\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	var sawAssign bool
	for _, instr := range prog.Instrs {
		if instr.Kind == bytecode.Assign {
			sawAssign = true
		}
	}
	if !sawAssign {
		t.Fatalf("expected an Assign instruction, got %+v", prog.Instrs)
	}
}

func TestCompileTypeMismatch(t *testing.T) {
	_, diags := compileSrc(t, "10 A = 1 + \"X\"\n")
	if len(diags) == 0 {
		t.Fatalf("expected a type-mismatch diagnostic")
	}
	if diags[0].Severity != SeverityError {
		t.Fatalf("severity = %v, want SeverityError", diags[0].Severity)
	}
}

func TestCompileStringConcatOK(t *testing.T) {
	_, diags := compileSrc(t, "10 A$ = \"X\" + \"Y\"\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
}

func TestCompileUndefinedLineNumber(t *testing.T) {
	_, diags := compileSrc(t, "10 GOTO 20\n")
	if len(diags) == 0 {
		t.Fatalf("expected an undefined-line diagnostic")
	}
}

func TestCompileGotoResolved(t *testing.T) {
	prog, diags := compileSrc(t, "10 GOTO 20\n20 PRINT 1\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	var found bool
	for i, instr := range prog.Instrs {
		if instr.Kind == bytecode.GoTo {
			if int(instr.Addr) != int(prog.StartAddrs[20]) {
				t.Fatalf("GoTo at %d targets %d, want %d", i, instr.Addr, prog.StartAddrs[20])
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a GoTo instruction")
	}
}

func TestCompileLineNumbersMustIncrease(t *testing.T) {
	_, diags := compileSrc(t, "20 PRINT 1\n10 PRINT 2\n")
	if len(diags) == 0 {
		t.Fatalf("expected a line-number-must-increase diagnostic")
	}
}

func TestCompileWhileWendMatched(t *testing.T) {
	prog, diags := compileSrc(t, "10 WHILE 1\n20 WEND\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	for _, instr := range prog.Instrs {
		if instr.Kind == bytecode.WhileLoop {
			if instr.Addr == bytecode.DummyAddr {
				t.Fatalf("WhileLoop end address left unpatched")
			}
		}
	}
}

func TestCompileUnmatchedWhile(t *testing.T) {
	_, diags := compileSrc(t, "10 WHILE 1\n")
	if len(diags) == 0 {
		t.Fatalf("expected an unmatched-WHILE diagnostic")
	}
}

func TestCompileForNextPeephole(t *testing.T) {
	prog, diags := compileSrc(t, "10 FOR I = 1 TO 100\n20 NEXT I\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	var sawSleep, sawForLoop bool
	for _, instr := range prog.Instrs {
		switch instr.Kind {
		case bytecode.Sleep:
			sawSleep = true
		case bytecode.ForLoop:
			sawForLoop = true
		}
	}
	if !sawSleep {
		t.Fatalf("expected the FOR/NEXT pair to collapse into Sleep, got %+v", prog.Instrs)
	}
	if sawForLoop {
		t.Fatalf("ForLoop should have been rewritten to NoOp, got %+v", prog.Instrs)
	}
}

func TestCompileForWithBodyNotCollapsed(t *testing.T) {
	prog, diags := compileSrc(t, "10 FOR I = 1 TO 100\n20 PRINT I\n30 NEXT I\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	var sawForLoop bool
	for _, instr := range prog.Instrs {
		if instr.Kind == bytecode.ForLoop {
			sawForLoop = true
		}
	}
	if !sawForLoop {
		t.Fatalf("expected ForLoop to survive when the body is non-empty")
	}
}

func TestCompileDimScalarNoError(t *testing.T) {
	_, diags := compileSrc(t, "10 DIM A\n")
	if len(diags) != 0 {
		t.Fatalf("bare scalar DIM A should not error, got %+v", diags)
	}
}

func TestCompileDataAndRead(t *testing.T) {
	prog, diags := compileSrc(t, "10 DATA 1, \"hello, world\", 3\n20 READ A\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if len(prog.Data) != 3 {
		t.Fatalf("data pool = %+v, want 3 items", prog.Data)
	}
	if prog.Data[1].Value.String() != "hello, world" {
		t.Fatalf("data[1] = %q, want %q", prog.Data[1].Value.String(), "hello, world")
	}
}

func TestCompileSysFuncArity(t *testing.T) {
	_, diags := compileSrc(t, "10 A = LEFT$(\"X\")\n")
	if len(diags) == 0 {
		t.Fatalf("expected an arity diagnostic for LEFT$ with one argument")
	}
}

func TestCompilePrintTrailingSemicolonSuppressesNewline(t *testing.T) {
	prog, diags := compileSrc(t, "10 PRINT 1;\n")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if prog.Instrs[len(prog.Instrs)-2].Kind == bytecode.PrintNewLine {
		t.Fatalf("trailing semicolon should suppress the newline")
	}
}
