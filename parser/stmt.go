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
	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/keyword"
	"github.com/arucil/gvbasic/lexer"
)

// parseNullaryCmd parses a bare keyword with no operands, e.g. CLS,
// RETURN, END.
func (p *parser) parseNullaryCmd(kind ast.StmtKind) ast.StmtID {
	r := tokRange(p.tok)
	p.advance(false)
	return p.newStmt(ast.Stmt{Kind: kind, Range: r})
}

// parseUnaryCmd parses "KEYWORD expr", used by CALL/PLAY/WHILE.
func (p *parser) parseUnaryCmd(kind ast.StmtKind) ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	arg := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(arg).Range.End)
	switch kind {
	case ast.StmtCall:
		return p.newStmt(ast.Stmt{Kind: kind, Range: r, Addr: arg})
	case ast.StmtPlay:
		return p.newStmt(ast.Stmt{Kind: kind, Range: r, PlayExpr: arg})
	case ast.StmtWhile:
		return p.newStmt(ast.Stmt{Kind: kind, Range: r, WhileCond: arg})
	default:
		return p.newStmt(ast.Stmt{Kind: kind, Range: r})
	}
}

// parseRemStmt skips the remainder of the line as free-form text, for
// REM itself and every statement whose operand grammar is "identical
// to REM" (AUTO, COPY, DEL, EDIT, FILES, KILL, LIST, LOAD, NEW,
// RENAME, SAVE, STOP).
func (p *parser) parseRemStmt(kind ast.StmtKind, _ bool) ast.StmtID {
	start := p.tok.Start
	textStart := p.lex.Offset()
	p.advance(false)
	for !p.atEOF() {
		p.advance(false)
	}
	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: kind, Range: r, Text: ast.NewRange(textStart, p.lastTokEnd)})
}

// parseAssignStmt parses "[LET] lvalue = expr". hasLet indicates the
// LET keyword was already consumed by the caller.
func (p *parser) parseAssignStmt(hasLet bool) ast.StmtID {
	start := p.tok.Start
	lhs := p.parseLvalue()

	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok := p.matchToken(TermPunc(lexer.Eq), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少等号")
	}

	rhs := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(rhs).Range.End)
	_ = hasLet
	return p.newStmt(ast.Stmt{Kind: ast.StmtLet, Range: r, Field: lhs, Value: rhs})
}

// parseSetStmt parses "LSET/RSET lvalue = expr".
func (p *parser) parseSetStmt(kind ast.StmtKind) ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	lhs := p.parseLvalue()

	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok := p.matchToken(TermPunc(lexer.Eq), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少等号")
	}

	rhs := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(rhs).Range.End)
	return p.newStmt(ast.Stmt{Kind: kind, Range: r, Field: lhs, Value: rhs})
}

// parseGoStmt parses GOSUB/GOTO/RESTORE, each an optional trailing
// label. hasKeyword records whether a literal GOTO keyword introduced
// the label (vs. an implicit-GOTO bare label, which shares this node
// shape with HasGotoKeyword set false).
func (p *parser) parseGoStmt(kind ast.StmtKind, hasKeyword bool) ast.StmtID {
	start := p.tok.Start
	p.advance(true)

	var label *ast.LabelOperand
	if p.tok.Kind == lexer.LabelTok {
		if p.tok.LabelErr != nil {
			p.reportLabelError(p.tok.LabelErr, tokRange(p.tok))
		} else {
			l := ast.LabelOperand{Range: tokRange(p.tok), Label: p.tok.Label}
			label = &l
		}
		p.advance(false)
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{
		Kind: kind, Range: r, GotoLabel: label, HasGotoKeyword: hasKeyword,
	})
}

// parseGetPutStmt parses GET/PUT: optional "#" filenum, comma, record
// expr.
func (p *parser) parseGetPutStmt(isPut bool) ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	if p.isPunc(lexer.Hash) {
		p.advance(false)
	}
	fileNum := p.parseExpr()

	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok := p.matchToken(TermPunc(lexer.Comma), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
	}

	record := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(record).Range.End)
	kind := ast.StmtGet
	if isPut {
		kind = ast.StmtPut
	}
	return p.newStmt(ast.Stmt{Kind: kind, Range: r, FileNum: fileNum, Record: record})
}

// parseCloseStmt parses CLOSE, with an optional "#" before the file
// number expression.
func (p *parser) parseCloseStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	if p.isPunc(lexer.Hash) {
		p.advance(false)
	}
	fileNum := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(fileNum).Range.End)
	return p.newStmt(ast.Stmt{Kind: ast.StmtClose, Range: r, FileNum: fileNum})
}

// parseDataStmt parses a comma-separated list of literal data items
// (quoted or bare text) up to the next colon or end of line.
func (p *parser) parseDataStmt() ast.StmtID {
	start := p.tok.Start
	textStart := p.lex.Offset()
	p.advance(false)

	for !p.isPunc(lexer.Colon) && !p.atEOF() {
		p.advance(false)
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtData, Range: r, Text: ast.NewRange(textStart, p.lastTokEnd)})
}

// parseDefStmt parses "DEF FN name(param) = expr".
func (p *parser) parseDefStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	sc := p.beginScope()
	sc.setFollow(TermIdent())
	_, ok := p.matchToken(TermKeyword(keyword.FN), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "DEF 之后缺少 FN 关键字")
	}

	sc = p.beginScope()
	sc.setFollow(TermPunc(lexer.LParen))
	nameRange, ok := p.matchToken(TermIdent(), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "DEF 语句缺少函数名称")
	}

	sc = p.beginScope()
	sc.setFollow(TermIdent())
	_, ok = p.matchToken(TermPunc(lexer.LParen), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "函数名称之后缺少左括号")
	}

	sc = p.beginScope()
	sc.setFollow(TermPunc(lexer.RParen))
	paramRange, ok := p.matchToken(TermIdent(), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少函数参数变量")
	}

	sc = p.beginScope()
	sc.setFollow(TermPunc(lexer.Eq))
	_, ok = p.matchToken(TermPunc(lexer.RParen), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "函数参数之后缺少右括号")
	}

	sc = p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok = p.matchToken(TermPunc(lexer.Eq), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "DEF 语句缺少等号")
	}

	body := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(body).Range.End)
	return p.newStmt(ast.Stmt{
		Kind: ast.StmtDef, Range: r,
		FuncName: nameRange, ParamName: paramRange, Body: body,
	})
}

// parseLvalueList parses a comma-separated list of lvalues, used by
// DIM and READ.
func (p *parser) parseLvalueList() []ast.ExprID {
	var lvalues []ast.ExprID
	for {
		sc := p.beginScope()
		sc.setFollow(TermPunc(lexer.Comma))
		lvalues = append(lvalues, p.parseLvalue())
		sc.end()
		if p.isPunc(lexer.Comma) {
			p.advance(false)
			continue
		}
		break
	}
	return lvalues
}

func (p *parser) parseDimStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	lvalues := p.parseLvalueList()
	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtDim, Range: r, Lvalues: lvalues})
}

func (p *parser) parseReadStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	lvalues := p.parseLvalueList()
	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtRead, Range: r, Lvalues: lvalues})
}

// parseAs consumes the two-letter AS keyword, which the lexer never
// tokenizes as a reserved word since it is only meaningful directly
// after a FIELD length expression.
func (p *parser) parseAs() bool {
	if p.tok.Kind == lexer.Ident && len(p.tok.Text) == 2 &&
		(p.tok.Text[0] == 'A' || p.tok.Text[0] == 'a') &&
		(p.tok.Text[1] == 'S' || p.tok.Text[1] == 's') {
		p.advance(false)
		return true
	}
	return false
}

func (p *parser) parseFieldSpec() ast.FieldSpec {
	sc := p.beginScope()
	sc.setFollow(TermIdent())
	length := p.parseExpr()
	sc.end()

	if !p.parseAs() {
		p.addError(tokRange(p.tok), "缺少 AS 关键字")
	}

	name := p.parseLvalue()
	return ast.FieldSpec{Len: length, Name: name}
}

func (p *parser) parseFieldStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	if p.isPunc(lexer.Hash) {
		p.advance(false)
	}
	fileNum := p.parseExpr()

	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok := p.matchToken(TermPunc(lexer.Comma), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
	}

	var fields []ast.FieldSpec
	for {
		fields = append(fields, p.parseFieldSpec())
		if p.isPunc(lexer.Comma) {
			p.advance(false)
			continue
		}
		break
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtField, Range: r, FileNum: fileNum, Fields: fields})
}

// parseForStmt parses "FOR var = start TO end [STEP step]".
func (p *parser) parseForStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	sc := p.beginScope()
	sc.setFollow(TermPunc(lexer.Eq))
	varRange, ok := p.matchToken(TermIdent(), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "FOR 语句缺少循环变量")
	}

	sc = p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok = p.matchToken(TermPunc(lexer.Eq), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少等号")
	}

	sc = p.beginScope()
	sc.setFollow(TermKeyword(keyword.TO))
	startExpr := p.parseExpr()
	sc.end()

	sc = p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok = p.matchToken(TermKeyword(keyword.TO), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少 TO 关键字")
	}

	sc = p.beginScope()
	sc.setFollow(TermKeyword(keyword.STEP))
	endExpr := p.parseExpr()
	sc.end()

	var step ast.ExprID
	if p.isKeyword(keyword.STEP) {
		p.advance(false)
		step = p.parseExpr()
	}

	end := p.arena.Expr(endExpr).Range.End
	if step != 0 {
		end = p.arena.Expr(step).Range.End
	}
	r := ast.NewRange(start, end)
	return p.newStmt(ast.Stmt{
		Kind: ast.StmtFor, Range: r,
		ForVar: varRange, Start: startExpr, End: endExpr, Step: step,
	})
}

// parseIfStmt parses both surface forms: "IF cond THEN stmts [ELSE
// stmts]" and "IF cond GOTO label".
func (p *parser) parseIfStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	sc := p.beginScope()
	sc.setFollow(TermKeyword(keyword.THEN), TermKeyword(keyword.GOTO))
	cond := p.parseExpr()
	sc.end()

	var conseq []ast.StmtID
	switch {
	case p.isKeyword(keyword.THEN):
		p.advance(true)
		conseq = p.parseStmts(true)
		if len(conseq) == 0 {
			p.addError(tokRange(p.tok), "THEN 之后缺少语句")
		}
	case p.isKeyword(keyword.GOTO):
		goStart := p.tok.Start
		p.advance(true)
		var label *ast.LabelOperand
		if p.tok.Kind == lexer.LabelTok {
			if p.tok.LabelErr != nil {
				p.reportLabelError(p.tok.LabelErr, tokRange(p.tok))
			} else {
				l := ast.LabelOperand{Range: tokRange(p.tok), Label: p.tok.Label}
				label = &l
			}
			p.advance(false)
		}
		gotoID := p.newStmt(ast.Stmt{
			Kind: ast.StmtGoTo, Range: ast.NewRange(goStart, p.lastTokEnd),
			GotoLabel: label, HasGotoKeyword: true,
		})
		conseq = []ast.StmtID{gotoID}
	default:
		p.addError(tokRange(p.tok), "IF 之后缺少 THEN 或 GOTO")
		p.recover(false)
	}

	var alt []ast.StmtID
	if p.isKeyword(keyword.ELSE) {
		p.advance(true)
		alt = p.parseStmts(true)
		if len(alt) == 0 {
			p.addError(tokRange(p.tok), "ELSE 之后缺少语句")
		}
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtIf, Range: r, Cond: cond, Conseq: conseq, Alt: alt})
}

// parseInputStmt parses INPUT, in its three surface forms: a quoted
// prompt, an optional "#" file number, or a bare keyboard read.
func (p *parser) parseInputStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	var source ast.InputSource
	switch {
	case p.tok.Kind == lexer.StringTok:
		promptRange := tokRange(p.tok)
		p.advance(false)
		if p.isPunc(lexer.Semi) {
			p.advance(false)
		}
		promptExpr := p.newExpr(ast.Expr{Kind: ast.ExprStringLit, Range: promptRange})
		source = ast.InputSource{Kind: ast.InputFromKeyboard, Expr: promptExpr}
	case p.isPunc(lexer.Hash):
		p.advance(false)
		fileNum := p.parseExpr()
		sc := p.beginScope()
		sc.setFirst(NontermSymbol(NontermExpr))
		_, ok := p.matchToken(TermPunc(lexer.Comma), false, false)
		sc.end()
		if !ok {
			p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
		}
		source = ast.InputSource{Kind: ast.InputFromFile, Expr: fileNum}
	default:
		source = ast.InputSource{Kind: ast.InputFromKeyboard}
	}

	lvalues := p.parseLvalueList()
	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtInput, Range: r, Source: source, Lvalues: lvalues})
}

// parseLocateStmt parses LOCATE, with an optional row before the
// first comma and an optional column after it.
func (p *parser) parseLocateStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	var row, column ast.ExprID
	if !p.isPunc(lexer.Comma) && !p.atEOF() && !p.isPunc(lexer.Colon) {
		row = p.parseExpr()
	}
	if p.isPunc(lexer.Comma) {
		p.advance(false)
		column = p.parseExpr()
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtLocate, Range: r, Row: row, Column: column})
}

// parseNextStmt parses NEXT, with an optional comma-separated list of
// loop variables.
func (p *parser) parseNextStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	var vars []ast.Range
	if p.tok.Kind == lexer.Ident {
		for {
			vars = append(vars, tokRange(p.tok))
			p.advance(false)
			if p.isPunc(lexer.Comma) {
				p.advance(false)
				continue
			}
			break
		}
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtNext, Range: r, Vars: vars})
}

// parseOnStmt parses "ON expr GOSUB/GOTO label, label, ...".
func (p *parser) parseOnStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	sc := p.beginScope()
	sc.setFollow(TermKeyword(keyword.GOSUB), TermKeyword(keyword.GOTO))
	cond := p.parseExpr()
	sc.end()

	isSub := false
	switch {
	case p.isKeyword(keyword.GOSUB):
		isSub = true
		p.advance(true)
	case p.isKeyword(keyword.GOTO):
		p.advance(true)
	default:
		p.addError(tokRange(p.tok), "ON 语句缺少 GOSUB 或 GOTO 关键字")
	}

	var labels []ast.LabelOperand
	for {
		if p.tok.Kind == lexer.LabelTok {
			if p.tok.LabelErr != nil {
				p.reportLabelError(p.tok.LabelErr, tokRange(p.tok))
				labels = append(labels, ast.LabelOperand{Range: tokRange(p.tok)})
			} else {
				labels = append(labels, ast.LabelOperand{Range: tokRange(p.tok), Label: p.tok.Label})
			}
			p.advance(true)
		} else {
			p.addError(tokRange(p.tok), "缺少行号")
			labels = append(labels, ast.LabelOperand{Range: tokRange(p.tok)})
		}
		if p.isPunc(lexer.Comma) {
			p.advance(true)
			continue
		}
		break
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtOn, Range: r, Cond: cond, OnLabels: labels, IsSub: isSub})
}

// parseOpenStmt parses "OPEN filename [FOR mode] AS #filenum [LEN=n]".
// The access mode is a bare identifier, not a keyword, so it is
// matched case-insensitively against the four known mode names.
func (p *parser) parseOpenStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	filename := p.parseExpr()

	mode := ast.FileInput
	if p.isKeyword(keyword.FOR) || (p.tok.Kind == lexer.Ident && eqFold(p.tok.Text, "FOR")) {
		p.advance(false)
		switch {
		case eqFold(p.tok.Text, "INPUT"):
			mode = ast.FileInput
		case eqFold(p.tok.Text, "OUTPUT"):
			mode = ast.FileOutput
		case eqFold(p.tok.Text, "APPEND"):
			mode = ast.FileAppend
		case eqFold(p.tok.Text, "RANDOM"):
			mode = ast.FileRandom
		default:
			p.addError(tokRange(p.tok), "未知的文件打开方式")
		}
		p.advance(false)
	}

	if !p.parseAs() {
		p.addError(tokRange(p.tok), "缺少 AS 关键字")
	}
	if p.isPunc(lexer.Hash) {
		p.advance(false)
	}
	fileNumRange := tokRange(p.tok)
	fileNum := p.parseExpr()

	var openLen ast.ExprID
	if p.tok.Kind == lexer.SysFuncTok && p.tok.SysFunc == keyword.LEN {
		p.advance(false)
		if _, ok := p.matchToken(TermPunc(lexer.Eq), false, false); !ok {
			p.addError(tokRange(p.tok), "缺少等号")
		}
		openLen = p.parseExpr()
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{
		Kind: ast.StmtOpen, Range: r, Filename: filename, Mode: mode,
		FileNum: fileNum, FileNumID: fileNumRange, OpenLen: openLen,
	})
}

func eqFold(s, upper string) bool {
	if len(s) != len(upper) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != upper[i] {
			return false
		}
	}
	return true
}

func (p *parser) parsePokeStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	addr := p.parseExpr()

	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok := p.matchToken(TermPunc(lexer.Comma), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
	}

	value := p.parseExpr()
	r := ast.NewRange(start, p.arena.Expr(value).Range.End)
	return p.newStmt(ast.Stmt{Kind: ast.StmtPoke, Range: r, Addr: addr, Value: value})
}

// parsePrintStmt parses PRINT's element list: expressions separated
// (and possibly followed) by comma (tab stop) and semicolon (no
// separator) punctuation, terminated by a colon, ELSE, or EOF.
func (p *parser) parsePrintStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	var elems []ast.PrintElement
	for {
		switch {
		case p.isPunc(lexer.Comma):
			elems = append(elems, ast.PrintElement{Kind: ast.PrintComma})
			p.advance(false)
		case p.isPunc(lexer.Semi):
			elems = append(elems, ast.PrintElement{Kind: ast.PrintSemicolon})
			p.advance(false)
		case p.isPunc(lexer.Colon) || p.atEOF() || p.isKeyword(keyword.ELSE):
			r := ast.NewRange(start, p.lastTokEnd)
			return p.newStmt(ast.Stmt{Kind: ast.StmtPrint, Range: r, PrintElems: elems})
		default:
			expr := p.parseExpr()
			elems = append(elems, ast.PrintElement{Kind: ast.PrintExpr, Expr: expr})
		}
	}
}

func (p *parser) parseSwapStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)
	left := p.parseLvalue()

	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok := p.matchToken(TermPunc(lexer.Comma), false, false)
	sc.end()
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
	}

	right := p.parseLvalue()
	r := ast.NewRange(start, p.arena.Expr(right).Range.End)
	return p.newStmt(ast.Stmt{Kind: ast.StmtSwap, Range: r, Left: left, Right: right})
}

// parseWriteStmt parses WRITE, with an optional "#filenum," prefix
// and a comma-terminated field list.
func (p *parser) parseWriteStmt() ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	var fileNum ast.ExprID
	if p.isPunc(lexer.Hash) {
		p.advance(false)
		fileNum = p.parseExpr()
		sc := p.beginScope()
		sc.setFirst(NontermSymbol(NontermExpr))
		_, ok := p.matchToken(TermPunc(lexer.Comma), false, false)
		sc.end()
		if !ok {
			p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
		}
	}

	var fields []ast.WriteElement
	for {
		if p.isPunc(lexer.Colon) || p.atEOF() || p.isKeyword(keyword.ELSE) {
			break
		}
		expr := p.parseExpr()
		hasComma := p.isPunc(lexer.Comma)
		fields = append(fields, ast.WriteElement{Value: expr, Comma: hasComma})
		if hasComma {
			p.advance(false)
			continue
		}
		break
	}

	r := ast.NewRange(start, p.lastTokEnd)
	return p.newStmt(ast.Stmt{Kind: ast.StmtWrite, Range: r, FileNum: fileNum, WriteFields: fields})
}

// parseCoordCmd parses the shared surface grammar of BOX/CIRCLE/
// DRAW/ELLIPSE/LINE: a fixed count of comma-separated coordinate
// expressions, with an optional trailing fill-mode and/or draw-mode
// expression. Their exact argument shapes differ (BOX takes two
// corners and two optional modes; CIRCLE a center, radius and
// optional fill; DRAW just two coordinates; ELLIPSE a center and two
// radii plus optional fill; LINE two endpoints plus optional fill),
// so numArgs/hasFill/hasDraw tell this helper which of the shared
// coordinate slots to populate.
func (p *parser) parseCoordCmd(kind ast.StmtKind, numArgs int, hasFill, hasDraw bool) ast.StmtID {
	start := p.tok.Start
	p.advance(false)

	args := make([]ast.ExprID, numArgs)
	for i := 0; i < numArgs; i++ {
		sc := p.beginScope()
		sc.setFollow(TermPunc(lexer.Comma))
		args[i] = p.parseExpr()
		sc.end()
		if i < numArgs-1 {
			if _, ok := p.matchToken(TermPunc(lexer.Comma), false, false); !ok {
				p.addError(ast.NewRange(start, p.lastTokEnd), "缺少逗号")
			}
		}
	}

	var fillMode, drawMode ast.ExprID
	if hasFill && p.isPunc(lexer.Comma) {
		p.advance(false)
		fillMode = p.parseExpr()
	}
	if hasDraw && p.isPunc(lexer.Comma) {
		p.advance(false)
		drawMode = p.parseExpr()
	}

	stmt := ast.Stmt{Kind: kind, Range: ast.NewRange(start, p.lastTokEnd), FillMode: fillMode, DrawMode: drawMode}
	switch numArgs {
	case 2:
		stmt.X1, stmt.Y1 = args[0], args[1]
	case 3:
		stmt.X1, stmt.Y1, stmt.R = args[0], args[1], args[2]
	case 4:
		stmt.X1, stmt.Y1, stmt.X2, stmt.Y2 = args[0], args[1], args[2], args[3]
		if kind == ast.StmtEllipse {
			stmt.X1, stmt.Y1, stmt.RX, stmt.RY = args[0], args[1], args[2], args[3]
		}
	}
	return p.newStmt(stmt)
}
