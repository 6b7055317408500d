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

import "github.com/arucil/gvbasic/keyword"

// ExprKind is the discriminant of Expr. Every variant's payload lives
// in the corresponding field of Expr itself rather than in a nested
// interface value, trading a few unused struct fields for an arena
// element that never needs a type assertion to inspect.
type ExprKind int

const (
	ExprIdent ExprKind = iota
	ExprStringLit
	ExprNumberLit
	ExprSysFuncCall
	ExprUserFuncCall
	ExprBinary
	ExprUnary
	ExprIndex
	ExprInkey
)

type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNe
	OpGt
	OpLt
	OpGe
	OpLe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpAnd
	OpOr
)

type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpPos
)

// Expr is one arena-resident expression node. Range is the byte span
// of the whole expression (including its subexpressions) in the
// owning line's source text.
type Expr struct {
	Kind  ExprKind
	Range Range

	// ExprIdent / ExprNumberLit / ExprStringLit: literal text range,
	// not copied out to a string so the arena stays allocation-free.
	Ident Range

	// ExprSysFuncCall
	SysFunc     keyword.SysFunc
	SysFuncName Range
	Args        []ExprID // also used by ExprIndex (subscript list)

	// ExprUserFuncCall
	FuncName Range
	Arg      ExprID

	// ExprBinary
	BinOp    BinaryOp
	BinOpPos Range
	LHS, RHS ExprID

	// ExprUnary
	UnOp    UnaryOp
	UnOpPos Range
	UnArg   ExprID

	// ExprIndex
	IndexName Range
}
