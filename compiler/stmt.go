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
)

func (c *compileState) compileStmt(id ast.StmtID) {
	s := c.line.Arena.Stmt(id)
	if s.IsRecovered {
		return
	}
	switch s.Kind {
	case ast.StmtAuto, ast.StmtCopy, ast.StmtDel, ast.StmtEdit, ast.StmtFiles,
		ast.StmtKill, ast.StmtList, ast.StmtLoad, ast.StmtNew, ast.StmtRename,
		ast.StmtSave, ast.StmtStop, ast.StmtRem, ast.StmtNoOp, ast.StmtCont:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.NoOp, Range: s.Range})

	case ast.StmtBeep:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Beep, Range: s.Range})
	case ast.StmtClear:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Clear, Range: s.Range})
	case ast.StmtCls:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Cls, Range: s.Range})
	case ast.StmtEnd:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.End, Range: s.Range})
	case ast.StmtGraph:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetScreenMode, Range: s.Range, ScreenMode: bytecode.ScreenGraph})
	case ast.StmtText:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetScreenMode, Range: s.Range, ScreenMode: bytecode.ScreenText})
	case ast.StmtFlash:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetPrintMode, Range: s.Range, PrintMode: bytecode.PrintFlash})
	case ast.StmtInverse:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetPrintMode, Range: s.Range, PrintMode: bytecode.PrintInverse})
	case ast.StmtNormal:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetPrintMode, Range: s.Range, PrintMode: bytecode.PrintNormal})
	case ast.StmtTrace:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetTrace, Range: s.Range, Trace: true})
	case ast.StmtNoTrace:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetTrace, Range: s.Range, Trace: false})
	case ast.StmtRun:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Restart, Range: s.Range})
	case ast.StmtReturn:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Return, Range: s.Range})
	case ast.StmtPop:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Pop, Range: s.Range})
	case ast.StmtSystem:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.End, Range: s.Range})
	case ast.StmtInKey:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.PushInKey, Range: s.Range})
		c.prog.Emit(bytecode.Instr{Kind: bytecode.PopValue, Range: s.Range})

	case ast.StmtCall:
		c.requireNumber(s.Addr, "CALL")
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Call, Range: s.Range})
	case ast.StmtPoke:
		c.requireNumber(s.Addr, "POKE")
		c.requireNumber(s.Value, "POKE")
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Poke, Range: s.Range})
	case ast.StmtPlay:
		c.requireString(s.PlayExpr, "PLAY")
		c.prog.Emit(bytecode.Instr{Kind: bytecode.PlayNotes, Range: s.Range})

	case ast.StmtLet:
		c.compileAssign(s, bytecode.Assign, bytecode.AlignLeft)
	case ast.StmtLSet:
		c.compileAssignField(s, bytecode.AlignLeft)
	case ast.StmtRSet:
		c.compileAssignField(s, bytecode.AlignRight)

	case ast.StmtDim:
		c.compileDim(s)
	case ast.StmtData:
		c.compileData(s)
	case ast.StmtRead:
		c.compileRead(s)
	case ast.StmtRestore:
		c.compileRestore(s)

	case ast.StmtFor:
		c.compileFor(s)
	case ast.StmtNext:
		c.compileNext(s)
	case ast.StmtWhile:
		c.compileWhile(s)
	case ast.StmtWend:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Wend, Range: s.Range})

	case ast.StmtIf:
		c.compileIf(s)
	case ast.StmtGoTo:
		c.compileGoto(s, false)
	case ast.StmtGoSub:
		c.compileGoto(s, true)
	case ast.StmtOn:
		c.compileOn(s)

	case ast.StmtPrint:
		c.compilePrint(s)
	case ast.StmtWrite:
		c.compileWrite(s)
	case ast.StmtInput:
		c.compileInput(s)
	case ast.StmtLocate:
		c.compileLocate(s)

	case ast.StmtOpen:
		c.compileOpen(s)
	case ast.StmtClose:
		c.requireNumber(s.FileNum, "CLOSE")
		c.prog.Emit(bytecode.Instr{Kind: bytecode.CloseFile, Range: s.Range})
	case ast.StmtField:
		c.compileField(s)
	case ast.StmtGet:
		c.compileGetPut(s, bytecode.ReadRecord)
	case ast.StmtPut:
		c.compileGetPut(s, bytecode.WriteRecord)
	case ast.StmtSwap:
		c.compileSwap(s)

	case ast.StmtDef:
		c.compileDef(s)

	case ast.StmtBox:
		c.compileDraw(s, bytecode.DrawBox, []ast.ExprID{s.X1, s.Y1, s.X2, s.Y2}, s.FillMode, s.DrawMode)
	case ast.StmtCircle:
		// the parser only ever fills stmt.FillMode for CIRCLE; treated
		// as a true fill-mode argument, never a draw-mode one.
		c.compileDraw(s, bytecode.DrawCircle, []ast.ExprID{s.X1, s.Y1, s.R}, s.FillMode, 0)
	case ast.StmtDraw:
		// DRAW has no fill concept; its single optional field is a draw mode.
		c.compileDraw(s, bytecode.DrawPoint, []ast.ExprID{s.X1, s.Y1}, 0, s.FillMode)
	case ast.StmtEllipse:
		c.compileDraw(s, bytecode.DrawEllipse, []ast.ExprID{s.X1, s.Y1, s.RX, s.RY}, s.FillMode, s.DrawMode)
	case ast.StmtLine:
		// LINE has no fill concept; its single optional field is a draw mode.
		c.compileDraw(s, bytecode.DrawLine, []ast.ExprID{s.X1, s.Y1, s.X2, s.Y2}, 0, s.FillMode)

	default:
		c.prog.Emit(bytecode.Instr{Kind: bytecode.NoOp, Range: s.Range})
	}
}

func (c *compileState) requireNumber(expr ast.ExprID, stmtName string) {
	ty := c.compileExpr(expr)
	if !typeEq(ty, TypeNumber) {
		r := c.line.Arena.Expr(expr).Range
		c.addError(r, "表达式类型错误。"+stmtName+" 语句的参数是数值类型，而这个表达式是"+ty.String()+"类型")
	}
}

func (c *compileState) requireString(expr ast.ExprID, stmtName string) {
	ty := c.compileExpr(expr)
	if !typeEq(ty, TypeString) {
		r := c.line.Arena.Expr(expr).Range
		c.addError(r, "表达式类型错误。"+stmtName+" 语句的参数是字符串类型，而这个表达式是"+ty.String()+"类型")
	}
}

// compileLValue pushes an lvalue's index expressions (if any) and
// then the PushLValue instruction naming the target, returning its
// type.
func (c *compileState) compileLValue(expr ast.ExprID) Type {
	e := c.line.Arena.Expr(expr)
	if e.Kind == ast.ExprIndex {
		return c.compileIndexExpr(e, bytecode.PushLValue)
	}
	sym, ty := c.compileSym(e.Ident)
	c.prog.Emit(bytecode.Instr{Kind: bytecode.PushLValue, Range: e.Range, Sym: sym})
	return ty
}

func (c *compileState) compileAssign(s *ast.Stmt, kind bytecode.InstrKind, _ bytecode.Alignment) {
	valTy := c.compileExpr(s.Value)
	lvTy := c.compileLValue(s.Field)
	if !typeEq(valTy, lvTy) {
		c.addError(s.Range, "表达式类型错误。不能将"+valTy.String()+"类型的值赋给"+lvTy.String()+"类型的变量")
	}
	c.prog.Emit(bytecode.Instr{Kind: kind, Range: s.Range})
}

func (c *compileState) compileAssignField(s *ast.Stmt, align bytecode.Alignment) {
	c.requireString(s.Value, "LSET/RSET")
	lvTy := c.compileLValue(s.Field)
	if !typeEq(lvTy, TypeString) {
		c.addError(s.Range, "表达式类型错误。LSET/RSET 语句只能用于字符串变量")
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.AlignedAssign, Range: s.Range, Alignment: align})
}

func (c *compileState) compileDim(s *ast.Stmt) {
	for _, lv := range s.Lvalues {
		e := c.line.Arena.Expr(lv)
		if e.Kind != ast.ExprIndex {
			continue
		}
		if len(e.Args) == 0 {
			c.addError(e.Range, "数组必须至少有一个维度")
			continue
		}
		for _, arg := range e.Args {
			c.requireNumber(arg, "DIM")
		}
		sym, _ := c.compileSym(e.IndexName)
		c.prog.Emit(bytecode.Instr{Kind: bytecode.DimArray, Range: e.Range, Sym: sym, Arity: len(e.Args)})
	}
}

type rawDatum struct {
	value  string
	quoted bool
	r      ast.Range
}

// splitDataItems tokenizes a DATA statement's raw trailing text into
// comma-separated items, respecting quoted items that may themselves
// contain commas.
func splitDataItems(text string, base int) []rawDatum {
	var items []rawDatum
	i, n, start := 0, len(text), 0
	for i <= n {
		if i == n || text[i] == ',' {
			items = append(items, makeDatum(text[start:i], base+start, base+i))
			i++
			start = i
			continue
		}
		if text[i] == '"' {
			i++
			for i < n && text[i] != '"' {
				i++
			}
			if i < n {
				i++
			}
			continue
		}
		i++
	}
	return items
}

func makeDatum(raw string, start, end int) rawDatum {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, `"`) {
		return rawDatum{value: unquote(trimmed), quoted: true, r: ast.NewRange(start, end)}
	}
	return rawDatum{value: trimmed, quoted: false, r: ast.NewRange(start, end)}
}

func (c *compileState) compileData(s *ast.Stmt) {
	items := splitDataItems(c.text(s.Text), s.Text.Start)
	for _, item := range items {
		bs, err := charset.FromString(item.value, c.version)
		if err != nil {
			c.addError(item.r, "字符串含有非法字符或过长")
		}
		c.prog.Data = append(c.prog.Data, bytecode.Datum{Range: item.r, Value: bs, IsQuoted: item.quoted})
	}
}

func (c *compileState) compileRead(s *ast.Stmt) {
	for _, lv := range s.Lvalues {
		c.compileLValue(lv)
		c.prog.Emit(bytecode.Instr{Kind: bytecode.ReadData, Range: s.Range})
	}
}

func (c *compileState) compileRestore(s *ast.Stmt) {
	addr := c.prog.Emit(bytecode.Instr{Kind: bytecode.RestoreDataPtr, Range: s.Range, Datum: bytecode.FirstDatumIndex})
	if s.GotoLabel != nil {
		c.restores = append(c.restores, restorePatch{at: addr, label: int(s.GotoLabel.Label), r: s.GotoLabel.Range})
	}
}

func (c *compileState) compileFor(s *ast.Stmt) {
	c.requireNumber(s.Start, "FOR")
	c.requireNumber(s.End, "FOR")
	hasStep := s.Step != 0
	if hasStep {
		c.requireNumber(s.Step, "FOR")
	}
	sym, _ := c.compileSym(s.ForVar)
	c.prog.Emit(bytecode.Instr{Kind: bytecode.ForLoop, Range: s.Range, Sym: sym, HasStep: hasStep})
}

func (c *compileState) compileNext(s *ast.Stmt) {
	if len(s.Vars) == 0 {
		c.prog.Emit(bytecode.Instr{Kind: bytecode.NextFor, Range: s.Range})
		return
	}
	for _, v := range s.Vars {
		sym, _ := c.compileSym(v)
		c.prog.Emit(bytecode.Instr{Kind: bytecode.NextFor, Range: s.Range, Sym: sym, HasVar: true})
	}
}

func (c *compileState) compileWhile(s *ast.Stmt) {
	start := bytecode.Addr(len(c.prog.Instrs))
	c.requireNumber(s.WhileCond, "WHILE")
	c.prog.Emit(bytecode.Instr{Kind: bytecode.WhileLoop, Range: s.Range, Addr2: start, Addr: bytecode.DummyAddr})
}

func (c *compileState) compileIf(s *ast.Stmt) {
	c.requireNumber(s.Cond, "IF")
	jz := c.prog.Emit(bytecode.Instr{Kind: bytecode.JumpIfZero, Range: s.Range, Addr: bytecode.DummyAddr})
	for _, stmt := range s.Conseq {
		c.compileStmt(stmt)
	}
	if len(s.Alt) > 0 {
		skip := c.prog.Emit(bytecode.Instr{Kind: bytecode.GoTo, Range: s.Range, Addr: bytecode.DummyAddr})
		c.prog.Patch(jz, bytecode.Addr(len(c.prog.Instrs)))
		for _, stmt := range s.Alt {
			c.compileStmt(stmt)
		}
		c.prog.Patch(skip, bytecode.Addr(len(c.prog.Instrs)))
	} else {
		c.prog.Patch(jz, bytecode.Addr(len(c.prog.Instrs)))
	}
}

func (c *compileState) compileGoto(s *ast.Stmt, isSub bool) {
	kind := bytecode.GoTo
	if isSub {
		kind = bytecode.GoSub
	}
	addr := c.prog.Emit(bytecode.Instr{Kind: kind, Range: s.Range, Addr: bytecode.DummyAddr})
	if s.GotoLabel != nil {
		c.branches = append(c.branches, branchPatch{at: addr, label: int(s.GotoLabel.Label), r: s.GotoLabel.Range})
	}
}

func (c *compileState) compileOn(s *ast.Stmt) {
	c.requireNumber(s.Cond, "ON")
	addr := c.prog.Emit(bytecode.Instr{
		Kind:    bytecode.Switch,
		Range:   s.Range,
		Labels:  make([]bytecode.Addr, len(s.OnLabels)),
		IsGosub: s.IsSub,
	})
	for i, lbl := range s.OnLabels {
		c.switches = append(c.switches, switchPatch{at: addr, index: i, label: int(lbl.Label), r: lbl.Range})
	}
}

func (c *compileState) compilePrint(s *ast.Stmt) {
	suppressNewline := false
	for _, elem := range s.PrintElems {
		suppressNewline = false
		switch elem.Kind {
		case ast.PrintComma:
			c.prog.Emit(bytecode.Instr{Kind: bytecode.PrintComma, Range: s.Range})
			suppressNewline = true
		case ast.PrintSemicolon:
			suppressNewline = true
		case ast.PrintSpc:
			c.requireNumber(elem.Expr, "PRINT")
			c.prog.Emit(bytecode.Instr{Kind: bytecode.PrintSpc, Range: s.Range})
		case ast.PrintTab:
			c.requireNumber(elem.Expr, "PRINT")
			c.prog.Emit(bytecode.Instr{Kind: bytecode.PrintTab, Range: s.Range})
		case ast.PrintExpr:
			c.compileExpr(elem.Expr)
			c.prog.Emit(bytecode.Instr{Kind: bytecode.PrintValue, Range: s.Range})
		}
	}
	if !suppressNewline {
		c.prog.Emit(bytecode.Instr{Kind: bytecode.PrintNewLine, Range: s.Range})
	}
}

func (c *compileState) compileWrite(s *ast.Stmt) {
	toFile := s.FileNum != 0
	if toFile {
		c.requireNumber(s.FileNum, "WRITE")
	}
	for _, f := range s.WriteFields {
		c.compileExpr(f.Value)
		c.prog.Emit(bytecode.Instr{Kind: bytecode.Write, Range: s.Range, ToFile: toFile})
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.WriteEnd, Range: s.Range, ToFile: toFile})
}

func (c *compileState) compileInput(s *ast.Stmt) {
	switch s.Source.Kind {
	case ast.InputFromFile:
		c.requireNumber(s.Source.Expr, "INPUT")
		for _, lv := range s.Lvalues {
			c.compileLValue(lv)
		}
		c.prog.Emit(bytecode.Instr{Kind: bytecode.FileInput, Range: s.Range, ToFile: true, Fields: len(s.Lvalues)})
	default:
		var prompt *charset.ByteString
		if s.Source.Expr != 0 {
			e := c.line.Arena.Expr(s.Source.Expr)
			bs, err := charset.FromString(unquote(c.text(e.Ident)), c.version)
			if err != nil {
				c.addError(e.Range, "字符串含有非法字符或过长")
			}
			prompt = &bs
		}
		for _, lv := range s.Lvalues {
			c.compileLValue(lv)
		}
		c.prog.Emit(bytecode.Instr{Kind: bytecode.KeyboardInput, Range: s.Range, Prompt: prompt, Fields: len(s.Lvalues)})
	}
}

func (c *compileState) compileLocate(s *ast.Stmt) {
	if s.Row != 0 {
		c.requireNumber(s.Row, "LOCATE")
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetRow, Range: s.Range})
	}
	if s.Column != 0 {
		c.requireNumber(s.Column, "LOCATE")
		c.prog.Emit(bytecode.Instr{Kind: bytecode.SetColumn, Range: s.Range})
	}
}

func (c *compileState) compileOpen(s *ast.Stmt) {
	c.requireString(s.Filename, "OPEN")
	c.requireNumber(s.FileNum, "OPEN")
	hasLen := s.OpenLen != 0
	if hasLen {
		c.requireNumber(s.OpenLen, "OPEN")
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.OpenFile, Range: s.Range, FileMode: s.Mode, HasLen: hasLen})
}

func (c *compileState) compileField(s *ast.Stmt) {
	c.requireNumber(s.FileNum, "FIELD")
	for _, f := range s.Fields {
		c.requireNumber(f.Len, "FIELD")
		c.compileLValue(f.Name)
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.SetRecordFields, Range: s.Range, Fields: len(s.Fields)})
}

func (c *compileState) compileGetPut(s *ast.Stmt, kind bytecode.InstrKind) {
	c.requireNumber(s.FileNum, "GET/PUT")
	c.requireNumber(s.Record, "GET/PUT")
	c.prog.Emit(bytecode.Instr{Kind: kind, Range: s.Range})
}

func (c *compileState) compileSwap(s *ast.Stmt) {
	leftTy := c.compileLValue(s.Left)
	rightTy := c.compileLValue(s.Right)
	if !typeEq(leftTy, rightTy) {
		c.addError(s.Range, "表达式类型错误。SWAP 语句的两个变量类型必须相同")
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.Swap, Range: s.Range})
}

func (c *compileState) compileDef(s *ast.Stmt) {
	nameSym, nameTy := c.compileSym(s.FuncName)
	paramSym, paramTy := c.compileSym(s.ParamName)
	if nameTy != TypeNumber {
		c.addError(s.FuncName, "表达式类型错误。自定义函数的类型必须是数值类型")
	}
	if paramTy != TypeNumber {
		c.addError(s.ParamName, "表达式类型错误。自定义函数的参数的类型必须是数值类型")
	}
	if nameTy != TypeNumber || paramTy != TypeNumber {
		c.compileExpr(s.Body)
		return
	}
	def := c.prog.Emit(bytecode.Instr{Kind: bytecode.DefFn, Range: s.Range, Sym: nameSym, Sym2: paramSym, Addr: bytecode.DummyAddr})
	ty := c.compileExpr(s.Body)
	if !typeEq(ty, TypeNumber) {
		c.addError(c.line.Arena.Expr(s.Body).Range, "表达式类型错误。自定义函数的返回值必须是数值类型")
	}
	c.prog.Emit(bytecode.Instr{Kind: bytecode.ReturnFn, Range: s.Range})
	c.prog.Patch(def, bytecode.Addr(len(c.prog.Instrs)))
}

// coordArity bounds the DRAW-family statements' total argument count
// (base coordinates plus any optional trailing fill/mode arguments),
// mirroring the min/max checks the original compiler performs before
// emitting the matching Draw* instruction.
var coordArity = map[bytecode.InstrKind][2]int{
	bytecode.DrawBox:     {4, 6},
	bytecode.DrawCircle:  {3, 5},
	bytecode.DrawPoint:   {2, 3},
	bytecode.DrawEllipse: {4, 6},
	bytecode.DrawLine:    {4, 5},
}

// compileDraw compiles a BOX/CIRCLE/DRAW/ELLIPSE/LINE statement. fill
// and mode are the already-disambiguated fill-mode and draw-mode
// expressions for this particular statement kind (the parser only
// ever populates one optional trailing field, stmt.FillMode; for
// CIRCLE that field is passed here as fill, for DRAW/LINE — which
// have no fill concept — it is passed as mode instead).
func (c *compileState) compileDraw(s *ast.Stmt, kind bytecode.InstrKind, coords []ast.ExprID, fill, mode ast.ExprID) {
	n := 0
	for _, arg := range coords {
		c.requireNumber(arg, kindName(kind))
		n++
	}
	if fill != 0 {
		c.requireNumber(fill, kindName(kind))
		n++
	}
	if mode != 0 {
		c.requireNumber(mode, kindName(kind))
		n++
	}
	if bounds, ok := coordArity[kind]; ok {
		if n < bounds[0] {
			c.addError(s.Range, "缺少参数。"+kindName(kind)+" 语句至少需要 "+strconv.Itoa(bounds[0])+" 个参数")
		} else if n > bounds[1] {
			c.addError(s.Range, "多余的参数。"+kindName(kind)+" 语句最多允许有 "+strconv.Itoa(bounds[1])+" 个参数")
		}
	}
	c.prog.Emit(bytecode.Instr{
		Kind:    kind,
		Range:   s.Range,
		HasFill: fill != 0,
		HasMode: mode != 0,
	})
}

func kindName(kind bytecode.InstrKind) string {
	switch kind {
	case bytecode.DrawBox:
		return "BOX"
	case bytecode.DrawCircle:
		return "CIRCLE"
	case bytecode.DrawPoint:
		return "DRAW"
	case bytecode.DrawEllipse:
		return "ELLIPSE"
	case bytecode.DrawLine:
		return "LINE"
	default:
		return "?"
	}
}
