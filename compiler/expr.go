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
	"strconv"
	"strings"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/mbf5"
)

// compileExpr emits the instructions that leave expr's value on the
// VM's value stack and returns its compile-time type.
func (c *compileState) compileExpr(expr ast.ExprID) Type {
	e := c.line.Arena.Expr(expr)
	switch e.Kind {
	case ast.ExprNumberLit:
		return c.compileNumberLit(e)
	case ast.ExprStringLit:
		return c.compileStringLit(e)
	case ast.ExprIdent:
		sym, ty := c.compileSym(e.Ident)
		c.prog.Emit(bytecode.Instr{Kind: bytecode.PushVar, Range: e.Range, Sym: sym})
		return ty
	case ast.ExprIndex:
		return c.compileIndexExpr(e, bytecode.PushIndex)
	case ast.ExprInkey:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.PushInKey, Range: e.Range})
		return TypeString
	case ast.ExprUnary:
		return c.compileUnary(e)
	case ast.ExprBinary:
		return c.compileBinary(e)
	case ast.ExprSysFuncCall:
		return c.compileSysFuncCall(e)
	case ast.ExprUserFuncCall:
		return c.compileUserFuncCall(e)
	default:
		return TypeError
	}
}

func (c *compileState) compileIndexExpr(e *ast.Expr, kind bytecode.InstrKind) Type {
	for _, arg := range e.Args {
		ty := c.compileExpr(arg)
		if !typeEq(ty, TypeNumber) {
			c.addError(c.line.Arena.Expr(arg).Range, "表达式类型错误。数组下标必须是数值类型")
		}
	}
	sym, ty := c.compileSym(e.IndexName)
	c.prog.Emit(bytecode.Instr{Kind: kind, Range: e.Range, Sym: sym, Arity: len(e.Args)})
	return ty
}

func (c *compileState) compileNumberLit(e *ast.Expr) Type {
	text := c.text(e.Ident)
	f, err := strconv.ParseFloat(text, 64)
	var num mbf5.Number
	if err == nil {
		num, err = mbf5.FromFloat64(f)
	}
	if err != nil {
		c.addError(e.Range, "数值过大")
		num = mbf5.FromInt(0)
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.PushNum, Range: e.Range, Num: num})
	if err != nil {
		return TypeError
	}
	return TypeNumber
}

// unquote strips a string literal's surrounding quotes and collapses
// doubled internal quotes, tolerating a missing closing quote the way
// an unterminated string literal reaches the parser.
func unquote(text string) string {
	if len(text) == 0 || text[0] != '"' {
		return text
	}
	text = text[1:]
	if strings.HasSuffix(text, `"`) {
		text = text[:len(text)-1]
	}
	return strings.ReplaceAll(text, `""`, `"`)
}

func (c *compileState) compileStringLit(e *ast.Expr) Type {
	text := unquote(c.text(e.Ident))
	bs, err := charset.FromString(text, c.version)
	if err != nil {
		c.addError(e.Range, "字符串含有非法字符或过长")
		bs = charset.ByteString{}
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.PushStr, Range: e.Range, Str: bs})
	if err != nil {
		return TypeError
	}
	return TypeString
}

func (c *compileState) compileUnary(e *ast.Expr) Type {
	ty := c.compileExpr(e.UnArg)
	if !typeEq(ty, TypeNumber) {
		c.addError(e.Range, "表达式类型错误。此处只能使用数值类型")
		ty = TypeError
	}
	switch e.UnOp {
	case ast.OpNot:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Not, Range: e.Range})
	case ast.OpNeg:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Neg, Range: e.Range})
	case ast.OpPos:
		// unary + is a no-op: nothing further to emit.
	}
	if ty == TypeError {
		return TypeError
	}
	return TypeNumber
}

var binOpInstr = map[ast.BinaryOp]bytecode.InstrKind{
	ast.OpEq: bytecode.Eq, ast.OpNe: bytecode.Ne, ast.OpGt: bytecode.Gt,
	ast.OpLt: bytecode.Lt, ast.OpGe: bytecode.Ge, ast.OpLe: bytecode.Le,
	ast.OpAdd: bytecode.Add, ast.OpSub: bytecode.Sub, ast.OpMul: bytecode.Mul,
	ast.OpDiv: bytecode.Div, ast.OpPow: bytecode.Pow, ast.OpAnd: bytecode.And,
	ast.OpOr: bytecode.Or,
}

func (c *compileState) compileBinary(e *ast.Expr) Type {
	lhs := c.compileExpr(e.LHS)
	rhs := c.compileExpr(e.RHS)
	ty := c.checkBinaryTypes(e, lhs, rhs)
	c.prog.Emit(bytecode.Instr{Kind: binOpInstr[e.BinOp], Range: e.BinOpPos})
	return ty
}

func (c *compileState) checkBinaryTypes(e *ast.Expr, lhs, rhs Type) Type {
	switch e.BinOp {
	case ast.OpAdd:
		if typeEq(lhs, TypeString) && typeEq(rhs, TypeString) {
			if lhs == TypeError || rhs == TypeError {
				return TypeError
			}
			return TypeString
		}
		fallthrough
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpPow:
		if !typeEq(lhs, TypeNumber) || !typeEq(rhs, TypeNumber) {
			c.reportTypeMismatch(e, lhs, rhs)
			return TypeError
		}
		if lhs == TypeError || rhs == TypeError {
			return TypeError
		}
		return TypeNumber
	case ast.OpAnd, ast.OpOr:
		if !typeEq(lhs, TypeNumber) || !typeEq(rhs, TypeNumber) {
			c.reportTypeMismatch(e, lhs, rhs)
			return TypeError
		}
		return TypeNumber
	default: // relational
		if !typeEq(lhs, rhs) {
			c.reportTypeMismatch(e, lhs, rhs)
			return TypeError
		}
		if lhs == TypeError || rhs == TypeError {
			return TypeError
		}
		return TypeNumber
	}
}

func (c *compileState) reportTypeMismatch(e *ast.Expr, lhs, rhs Type) {
	if lhs == TypeError || rhs == TypeError {
		return
	}
	c.addError(e.Range, "表达式类型错误。运算符两侧类型不匹配，左边是"+lhs.String()+"类型，右边是"+rhs.String()+"类型")
}

func (c *compileState) compileUserFuncCall(e *ast.Expr) Type {
	ty := c.compileExpr(e.Arg)
	if !typeEq(ty, TypeNumber) {
		c.addError(c.line.Arena.Expr(e.Arg).Range, "表达式类型错误。自定义函数的参数的类型必须是数值类型")
	}
	sym, _ := c.compileSym(e.FuncName)
	c.prog.Emit(bytecode.Instr{Kind: bytecode.CallFn, Range: e.Range, Sym: sym})
	return TypeNumber
}
