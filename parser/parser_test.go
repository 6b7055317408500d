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

package parser

import (
	"testing"

	"github.com/arucil/gvbasic/ast"
)

func TestParseLabelAndLet(t *testing.T) {
	res := ParseLine("10 A = 1 + 2\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	if res.Line.Label == nil || res.Line.Label.Label != 10 {
		t.Fatalf("label = %+v", res.Line.Label)
	}
	if len(res.Line.Stmts) != 1 {
		t.Fatalf("stmts = %+v", res.Line.Stmts)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtLet {
		t.Fatalf("stmt.Kind = %v, want StmtLet", stmt.Kind)
	}
	value := res.Arena.Expr(stmt.Value)
	if value.Kind != ast.ExprBinary || value.BinOp != ast.OpAdd {
		t.Fatalf("value = %+v, want Add", value)
	}
}

func TestParseExprPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), so the top-level node is Add.
	res := ParseLine("10 LET A = 1 + 2 * 3\n")
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	top := res.Arena.Expr(stmt.Value)
	if top.Kind != ast.ExprBinary || top.BinOp != ast.OpAdd {
		t.Fatalf("top = %+v, want Add", top)
	}
	rhs := res.Arena.Expr(top.RHS)
	if rhs.Kind != ast.ExprBinary || rhs.BinOp != ast.OpMul {
		t.Fatalf("rhs = %+v, want Mul", rhs)
	}
}

func TestParseComposedRelOps(t *testing.T) {
	res := ParseLine("10 IF A <= 1 THEN GOTO 20\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	ifStmt := res.Arena.Stmt(res.Line.Stmts[0])
	if ifStmt.Kind != ast.StmtIf {
		t.Fatalf("ifStmt.Kind = %v", ifStmt.Kind)
	}
	cond := res.Arena.Expr(ifStmt.Cond)
	if cond.Kind != ast.ExprBinary || cond.BinOp != ast.OpLe {
		t.Fatalf("cond = %+v, want Le", cond)
	}
	if len(ifStmt.Conseq) != 1 {
		t.Fatalf("conseq = %+v", ifStmt.Conseq)
	}
	goStmt := res.Arena.Stmt(ifStmt.Conseq[0])
	if goStmt.Kind != ast.StmtGoTo || goStmt.GotoLabel == nil || goStmt.GotoLabel.Label != 20 {
		t.Fatalf("goStmt = %+v", goStmt)
	}
}

func TestParseIfThenElse(t *testing.T) {
	res := ParseLine("10 IF A = 1 THEN PRINT 1 ELSE PRINT 2\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	ifStmt := res.Arena.Stmt(res.Line.Stmts[0])
	if len(ifStmt.Conseq) != 1 || len(ifStmt.Alt) != 1 {
		t.Fatalf("ifStmt = %+v", ifStmt)
	}
	if res.Arena.Stmt(ifStmt.Alt[0]).Kind != ast.StmtPrint {
		t.Fatalf("alt kind = %v", res.Arena.Stmt(ifStmt.Alt[0]).Kind)
	}
}

func TestParseImplicitGoto(t *testing.T) {
	res := ParseLine("10 IF A THEN 20\n")
	if len(res.Line.Stmts) != 1 {
		t.Fatalf("stmts = %+v", res.Line.Stmts)
	}
	ifStmt := res.Arena.Stmt(res.Line.Stmts[0])
	if len(ifStmt.Conseq) != 1 {
		t.Fatalf("conseq = %+v", ifStmt.Conseq)
	}
	stmt := res.Arena.Stmt(ifStmt.Conseq[0])
	if stmt.Kind != ast.StmtGoTo || stmt.HasGotoKeyword {
		t.Fatalf("stmt = %+v, want implicit GoTo", stmt)
	}
	if stmt.GotoLabel == nil || stmt.GotoLabel.Label != 20 {
		t.Fatalf("GotoLabel = %+v", stmt.GotoLabel)
	}
}

func TestParseForNext(t *testing.T) {
	res := ParseLine("10 FOR I = 1 TO 10 STEP 2\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtFor {
		t.Fatalf("stmt.Kind = %v", stmt.Kind)
	}
	if stmt.Step == 0 {
		t.Fatal("expected non-zero Step")
	}
}

func TestParsePrintElements(t *testing.T) {
	res := ParseLine(`10 PRINT "X=";X,1` + "\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtPrint {
		t.Fatalf("stmt.Kind = %v", stmt.Kind)
	}
	// "X=" ; X , 1 -> 5 elements
	if len(stmt.PrintElems) != 5 {
		t.Fatalf("PrintElems = %+v", stmt.PrintElems)
	}
	if stmt.PrintElems[1].Kind != ast.PrintSemicolon {
		t.Fatalf("elem[1] = %+v, want Semicolon", stmt.PrintElems[1])
	}
	if stmt.PrintElems[3].Kind != ast.PrintComma {
		t.Fatalf("elem[3] = %+v, want Comma", stmt.PrintElems[3])
	}
}

func TestParseMultiStatementLine(t *testing.T) {
	res := ParseLine("10 A = 1 : B = 2\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	if len(res.Line.Stmts) != 2 {
		t.Fatalf("stmts = %+v", res.Line.Stmts)
	}
}

func TestParseDimAndArrayIndex(t *testing.T) {
	res := ParseLine("10 DIM A(10), B(2,3)\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtDim || len(stmt.Lvalues) != 2 {
		t.Fatalf("stmt = %+v", stmt)
	}
	second := res.Arena.Expr(stmt.Lvalues[1])
	if second.Kind != ast.ExprIndex || len(second.Args) != 2 {
		t.Fatalf("second = %+v", second)
	}
}

func TestParseSysFuncCall(t *testing.T) {
	res := ParseLine(`10 A = LEFT$("HELLO", 3)` + "\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	call := res.Arena.Expr(stmt.Value)
	if call.Kind != ast.ExprSysFuncCall || len(call.Args) != 2 {
		t.Fatalf("call = %+v", call)
	}
}

func TestParseDefFn(t *testing.T) {
	res := ParseLine("10 DEF FN A(X) = X * X\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtDef {
		t.Fatalf("stmt.Kind = %v", stmt.Kind)
	}
	body := res.Arena.Expr(stmt.Body)
	if body.Kind != ast.ExprBinary || body.BinOp != ast.OpMul {
		t.Fatalf("body = %+v", body)
	}
}

func TestParseRemSkipsRestOfLine(t *testing.T) {
	res := ParseLine("10 REM this is a : comment with colons\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	if len(res.Line.Stmts) != 1 {
		t.Fatalf("stmts = %+v, want 1 (colon inside REM text is not a separator)", res.Line.Stmts)
	}
}

func TestParseMissingLabelReported(t *testing.T) {
	res := ParseLine("PRINT 1\n")
	found := false
	for _, d := range res.Diagnostics {
		if d.Message == "缺少行号" {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics = %+v, want a missing-label error", res.Diagnostics)
	}
}

func TestParseMissingEqualSignRecovers(t *testing.T) {
	res := ParseLine("10 A 1\n")
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected a diagnostic for the missing '='")
	}
	// parsing should still produce a (possibly malformed) statement,
	// not abort the whole line.
	if len(res.Line.Stmts) == 0 {
		t.Fatal("expected at least one statement despite the error")
	}
}

func TestParseBoxCoordCmd(t *testing.T) {
	res := ParseLine("10 BOX 1,2,3,4\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtBox {
		t.Fatalf("stmt.Kind = %v", stmt.Kind)
	}
	if stmt.X1 == 0 || stmt.Y1 == 0 || stmt.X2 == 0 || stmt.Y2 == 0 {
		t.Fatalf("stmt = %+v, want all four coordinates set", stmt)
	}
}

func TestParseOnGotoList(t *testing.T) {
	res := ParseLine("10 ON X GOTO 20, 30, 40\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	stmt := res.Arena.Stmt(res.Line.Stmts[0])
	if stmt.Kind != ast.StmtOn || stmt.IsSub || len(stmt.OnLabels) != 3 {
		t.Fatalf("stmt = %+v", stmt)
	}
	if stmt.OnLabels[2].Label != 40 {
		t.Fatalf("OnLabels[2] = %+v", stmt.OnLabels[2])
	}
}
