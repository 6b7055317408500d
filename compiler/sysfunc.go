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
	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/keyword"
)

// sysFuncSignature describes one system function's return type and,
// per argument position, the type that argument must have. Optional
// arguments are listed too (MID$ has three entries). A call with more
// arguments than its signature lists, already reported as an arity
// error, checks the extra ones against the last entry.
type sysFuncSignature struct {
	ret  Type
	args []Type
}

var sysFuncSignatures = map[keyword.SysFunc]sysFuncSignature{
	keyword.ABS:   {TypeNumber, []Type{TypeNumber}},
	keyword.ASC:   {TypeNumber, []Type{TypeString}},
	keyword.ATN:   {TypeNumber, []Type{TypeNumber}},
	keyword.CHR:   {TypeString, []Type{TypeNumber}},
	keyword.COS:   {TypeNumber, []Type{TypeNumber}},
	keyword.CVI:   {TypeNumber, []Type{TypeString}},
	keyword.CVS:   {TypeNumber, []Type{TypeString}},
	keyword.EOF:   {TypeNumber, []Type{TypeNumber}},
	keyword.EXP:   {TypeNumber, []Type{TypeNumber}},
	keyword.INT:   {TypeNumber, []Type{TypeNumber}},
	keyword.LEFT:  {TypeString, []Type{TypeString, TypeNumber}},
	keyword.LEN:   {TypeNumber, []Type{TypeString}},
	keyword.LOF:   {TypeNumber, []Type{TypeNumber}},
	keyword.LOG:   {TypeNumber, []Type{TypeNumber}},
	keyword.MID:   {TypeString, []Type{TypeString, TypeNumber, TypeNumber}},
	keyword.MKI:   {TypeString, []Type{TypeNumber}},
	keyword.MKS:   {TypeString, []Type{TypeNumber}},
	keyword.PEEK:  {TypeNumber, []Type{TypeNumber}},
	keyword.POS:   {TypeNumber, []Type{TypeNumber}},
	keyword.RIGHT: {TypeString, []Type{TypeString, TypeNumber}},
	keyword.RND:   {TypeNumber, []Type{TypeNumber}},
	keyword.SGN:   {TypeNumber, []Type{TypeNumber}},
	keyword.SIN:   {TypeNumber, []Type{TypeNumber}},
	keyword.SQR:   {TypeNumber, []Type{TypeNumber}},
	keyword.STR:   {TypeString, []Type{TypeNumber}},
	keyword.TAN:   {TypeNumber, []Type{TypeNumber}},
	keyword.VAL:   {TypeNumber, []Type{TypeString}},
}

func (c *compileState) compileSysFuncCall(e *ast.Expr) Type {
	sig, ok := sysFuncSignatures[e.SysFunc]
	arity := e.SysFunc.Arity()
	if len(e.Args) < arity.Min || len(e.Args) > arity.Max {
		c.addError(e.Range, "参数数量不正确")
	}
	for i, arg := range e.Args {
		argTy := c.compileExpr(arg)
		if !ok {
			continue
		}
		want := sig.args[len(sig.args)-1]
		if i < len(sig.args) {
			want = sig.args[i]
		}
		if !typeEq(argTy, want) {
			argRange := c.line.Arena.Expr(arg).Range
			c.addError(argRange, "表达式类型错误。"+e.SysFunc.String()+" 函数的参数是"+want.String()+"类型，而这个表达式是"+argTy.String()+"类型")
		}
	}
	c.prog.Emit(bytecode.Instr{
		Kind:    bytecode.SysFuncCall,
		Range:   e.Range,
		SysFunc: e.SysFunc,
		Arity:   len(e.Args),
	})
	if !ok {
		return TypeNumber
	}
	return sig.ret
}
