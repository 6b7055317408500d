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

import "testing"

func TestArenaExprRoundTrip(t *testing.T) {
	var a Arena
	id := a.NewExpr(Expr{Kind: ExprNumberLit, Range: NewRange(0, 2)})
	if id == 0 {
		t.Fatal("NewExpr returned zero id")
	}
	got := a.Expr(id)
	if got.Kind != ExprNumberLit || got.Range != NewRange(0, 2) {
		t.Fatalf("Expr(id) = %+v", got)
	}
}

func TestArenaStmtRoundTrip(t *testing.T) {
	var a Arena
	lhs := a.NewExpr(Expr{Kind: ExprNumberLit})
	rhs := a.NewExpr(Expr{Kind: ExprNumberLit})
	bin := a.NewExpr(Expr{Kind: ExprBinary, LHS: lhs, RHS: rhs, BinOp: OpAdd})

	stmt := a.NewStmt(Stmt{Kind: StmtLet, Value: bin})
	if a.Stmt(stmt).Kind != StmtLet {
		t.Fatalf("Stmt(id).Kind = %v, want StmtLet", a.Stmt(stmt).Kind)
	}
	if a.Expr(a.Stmt(stmt).Value).Kind != ExprBinary {
		t.Fatalf("expected binary expr referenced from Let stmt")
	}
}

func TestDereferenceZeroIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on zero ExprID dereference")
		}
	}()
	var a Arena
	_ = a.Expr(0)
}

func TestRangeInvariants(t *testing.T) {
	r := NewRange(3, 7)
	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}
	if r.IsEmpty() {
		t.Fatal("expected non-empty range")
	}
	if NewRange(5, 5).Len() != 0 || !NewRange(5, 5).IsEmpty() {
		t.Fatal("expected empty range semantics")
	}
}
