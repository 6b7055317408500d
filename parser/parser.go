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

// Package parser turns one line of GVBASIC source into an ast.ProgramLine:
// an optional label plus a list of statements, backed by a shared
// ast.Arena. Parsing never fails outright; malformed input produces
// diagnostics and a best-effort, possibly StmtNoOp-padded tree, so a
// single bad line never prevents the rest of a program from compiling.
package parser

import (
	"strings"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/keyword"
	"github.com/arucil/gvbasic/lexer"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

type Diagnostic struct {
	Severity Severity
	Range    ast.Range
	Message  string
}

// Result is everything parsing one line produces.
type Result struct {
	Line        ast.ProgramLine
	Arena       *ast.Arena
	Diagnostics []Diagnostic
}

// Parse splits src into lines (keeping their terminators) and parses
// each independently, the way the document model reparses only the
// lines an edit actually touched.
func Parse(src string) []Result {
	var results []Result
	start := 0
	for start < len(src) {
		nl := strings.IndexByte(src[start:], '\n')
		var line string
		if nl < 0 {
			line = src[start:]
			start = len(src)
		} else {
			line = src[start : start+nl+1]
			start += nl + 1
		}
		results = append(results, ParseLine(line))
	}
	return results
}

// ParseLine parses one line, which may include its trailing newline.
func ParseLine(lineWithEol string) Result {
	line, eol := splitEol(lineWithEol)

	p := &parser{
		lex:   lexer.New(line),
		arena: &ast.Arena{},
	}

	var label *ast.LabelRef
	if !strings.HasPrefix(line, " ") {
		p.advance(true)
		if p.tok.Kind == lexer.LabelTok {
			if p.tok.LabelErr == nil {
				label = &ast.LabelRef{Range: tokRange(p.tok), Label: p.tok.Label}
			} else {
				p.reportLabelError(p.tok.LabelErr, tokRange(p.tok))
			}
			p.advance(true)
		} else {
			p.reportLabelError(&ast.ParseLabelError{Kind: ast.NotALabel}, ast.NewRange(0, len(lineWithEol)))
		}
	} else {
		p.reportLabelError(&ast.ParseLabelError{Kind: ast.NotALabel}, ast.NewRange(0, len(lineWithEol)))
	}

	stmts := p.parseStmts(false)
	if len(stmts) == 0 {
		p.addError(ast.NewRange(0, len(lineWithEol)), "缺少语句")
	}

	return Result{
		Line: ast.ProgramLine{
			SourceLen: len(lineWithEol),
			Label:     label,
			Stmts:     stmts,
			Eol:       eol,
		},
		Arena:       p.arena,
		Diagnostics: p.diagnostics,
	}
}

func splitEol(lineWithEol string) (line string, eol ast.Eol) {
	if len(lineWithEol) == 0 || lineWithEol[len(lineWithEol)-1] != '\n' {
		return lineWithEol, ast.EolNone
	}
	if len(lineWithEol) >= 2 && lineWithEol[len(lineWithEol)-2] == '\r' {
		return lineWithEol[:len(lineWithEol)-2], ast.EolCRLf
	}
	return lineWithEol[:len(lineWithEol)-1], ast.EolLF
}

// parser is a single line's parse state. It owns no reference to
// sibling lines; cross-line references (GOTO targets, etc.) are
// resolved later by the document model and the compiler.
type parser struct {
	lex         *lexer.Lexer
	arena       *ast.Arena
	tok         lexer.Token
	lastTokEnd  int
	diagLexRead int
	diagnostics []Diagnostic

	first, follow symSet
	expectedAtEOF *symSet
}

func tokRange(t lexer.Token) ast.Range { return ast.NewRange(t.Start, t.End) }

func (p *parser) addError(r ast.Range, msg string) {
	p.diagnostics = append(p.diagnostics, Diagnostic{Severity: SeverityError, Range: r, Message: msg})
}

func (p *parser) addWarning(r ast.Range, msg string) {
	p.diagnostics = append(p.diagnostics, Diagnostic{Severity: SeverityWarning, Range: r, Message: msg})
}

func (p *parser) reportLabelError(err *ast.ParseLabelError, r ast.Range) {
	if err.Kind == ast.OutOfBound {
		p.addError(r, "行号必须在0~9999之间")
	} else {
		p.addError(r, "缺少行号")
	}
}

// advance fetches the next token, draining any lexical diagnostics
// the lexer accumulated since the last call.
func (p *parser) advance(readLabel bool) {
	if p.lex.Offset() > 0 || p.tok.Kind != lexer.EOF {
		p.lastTokEnd = p.tok.End
	}
	p.tok = p.lex.Next(readLabel)
	for ; p.diagLexRead < len(p.lex.Diagnostics); p.diagLexRead++ {
		d := p.lex.Diagnostics[p.diagLexRead]
		p.addError(ast.NewRange(d.Start, d.End), d.Message)
	}
}

func (p *parser) atEOF() bool { return p.tok.Kind == lexer.EOF }

// matchToken consumes the current token if it matches sym, otherwise
// reports (when showError) a "expected one of FIRST" diagnostic and
// recovers to the nearest FOLLOW symbol.
func (p *parser) matchToken(sym Symbol, readLabel, showError bool) (ast.Range, bool) {
	if TokenSymbol(p.tok) == sym {
		r := tokRange(p.tok)
		p.advance(readLabel)
		return r, true
	}
	if p.atEOF() && p.expectedAtEOF == nil {
		f := p.first
		p.expectedAtEOF = &f
	}
	if showError {
		p.reportMismatch()
	}
	p.recover(readLabel)
	return ast.Range{}, false
}

func (p *parser) reportMismatch() {
	var msg strings.Builder
	msg.WriteString("语法错误。期望是：")
	first := true
	p.first.each(func(s Symbol) {
		if !first {
			msg.WriteString(", ")
		}
		first = false
		msg.WriteString(s.describe())
	})
	p.addError(tokRange(p.tok), msg.String())
}

func (p *parser) recover(readLabel bool) {
	for !p.atEOF() && !p.follow.contains(TokenSymbol(p.tok)) {
		p.advance(readLabel)
	}
}

// scope captures (and on end, restores) the parser's FIRST/FOLLOW
// sets, mirroring setup_first!/setup_follow!'s save-install-restore
// discipline: every productive grammar rule gets to narrow what it
// will accept next without corrupting the caller's expectations.
type scope struct {
	p                    *parser
	oldFirst, oldFollow  symSet
}

func (p *parser) beginScope() *scope {
	return &scope{p: p, oldFirst: p.first, oldFollow: p.follow}
}

func (s *scope) setFirst(syms ...Symbol) {
	s.p.first = s.oldFirst
	for _, sym := range syms {
		s.p.first.add(sym)
	}
}

func (s *scope) setFollow(syms ...Symbol) {
	s.p.follow = s.oldFollow
	for _, sym := range syms {
		s.p.follow.add(sym)
	}
}

func (s *scope) end() {
	s.p.first = s.oldFirst
	s.p.follow = s.oldFollow
}

func (p *parser) newExpr(e ast.Expr) ast.ExprID { return p.arena.NewExpr(e) }
func (p *parser) newStmt(s ast.Stmt) ast.StmtID { return p.arena.NewStmt(s) }

// isKeyword reports whether the current token is the keyword k,
// without consuming it.
func (p *parser) isKeyword(k keyword.Keyword) bool {
	return p.tok.Kind == lexer.KeywordTok && p.tok.Keyword == k
}

func (p *parser) isPunc(pc lexer.Punc) bool {
	return p.tok.Kind == lexer.PuncTok && p.tok.Punc == pc
}

// parseStmts parses a colon-separated statement list until EOF (or,
// inside an IF branch, until ELSE). A bare colon is a no-op statement;
// ELSE outside of an IF branch is an error that is reported and
// skipped rather than aborting the whole line.
func (p *parser) parseStmts(inIfBranch bool) []ast.StmtID {
	var stmts []ast.StmtID
	for {
		if p.isPunc(lexer.Colon) {
			stmts = append(stmts, p.newStmt(ast.Stmt{Kind: ast.StmtNoOp}))
			p.advance(false)
			continue
		}
		if p.atEOF() {
			return stmts
		}
		if inIfBranch && p.isKeyword(keyword.ELSE) {
			return stmts
		}
		if p.isKeyword(keyword.ELSE) {
			p.addError(tokRange(p.tok), "ELSE 之前缺少 IF")
			p.advance(false)
			continue
		}

		id := p.parseStmt()
		stmts = append(stmts, id)

		if p.isPunc(lexer.Colon) {
			p.advance(false)
			continue
		}
		if p.atEOF() {
			continue
		}
		if inIfBranch && p.isKeyword(keyword.ELSE) {
			continue
		}
		p.addError(tokRange(p.tok), "语句之后必须是行尾或跟上冒号")
		p.recover(false)
	}
}

// parseStmt dispatches on the current token's leading keyword (or, in
// its absence, an identifier for an implicit LET, or a label for an
// implicit GOTO) to the statement-specific parse routine.
func (p *parser) parseStmt() ast.StmtID {
	if p.tok.Kind == lexer.LabelTok {
		return p.parseImplicitGoto()
	}
	if p.tok.Kind == lexer.Ident {
		return p.parseAssignStmt(false)
	}
	if p.tok.Kind != lexer.KeywordTok {
		sc := p.beginScope()
		sc.setFirst(NontermSymbol(NontermStmt))
		p.reportMismatch()
		p.recover(false)
		sc.end()
		return p.newStmt(ast.Stmt{Kind: ast.StmtNoOp})
	}

	switch p.tok.Keyword {
	case keyword.AUTO:
		return p.parseRemStmt(ast.StmtAuto, false)
	case keyword.BEEP:
		return p.parseNullaryCmd(ast.StmtBeep)
	case keyword.BOX:
		return p.parseCoordCmd(ast.StmtBox, 4, true, true)
	case keyword.CALL:
		return p.parseUnaryCmd(ast.StmtCall)
	case keyword.CIRCLE:
		return p.parseCoordCmd(ast.StmtCircle, 3, true, false)
	case keyword.CLEAR:
		return p.parseNullaryCmd(ast.StmtClear)
	case keyword.CLOSE:
		return p.parseCloseStmt()
	case keyword.CLS:
		return p.parseNullaryCmd(ast.StmtCls)
	case keyword.CONT:
		return p.parseNullaryCmd(ast.StmtCont)
	case keyword.COPY:
		return p.parseRemStmt(ast.StmtCopy, false)
	case keyword.DATA:
		return p.parseDataStmt()
	case keyword.DEF:
		return p.parseDefStmt()
	case keyword.DEL:
		return p.parseRemStmt(ast.StmtDel, false)
	case keyword.DIM:
		return p.parseDimStmt()
	case keyword.DRAW:
		return p.parseCoordCmd(ast.StmtDraw, 2, false, false)
	case keyword.EDIT:
		return p.parseRemStmt(ast.StmtEdit, false)
	case keyword.ELLIPSE:
		return p.parseCoordCmd(ast.StmtEllipse, 4, true, false)
	case keyword.END:
		return p.parseNullaryCmd(ast.StmtEnd)
	case keyword.FIELD:
		return p.parseFieldStmt()
	case keyword.FILES:
		return p.parseRemStmt(ast.StmtFiles, false)
	case keyword.FLASH:
		return p.parseNullaryCmd(ast.StmtFlash)
	case keyword.FOR:
		return p.parseForStmt()
	case keyword.GET:
		return p.parseGetPutStmt(false)
	case keyword.GOSUB:
		return p.parseGoStmt(ast.StmtGoSub, false)
	case keyword.GOTO:
		return p.parseGoStmt(ast.StmtGoTo, true)
	case keyword.GRAPH:
		return p.parseNullaryCmd(ast.StmtGraph)
	case keyword.IF:
		return p.parseIfStmt()
	case keyword.INKEY:
		return p.parseNullaryCmd(ast.StmtInKey)
	case keyword.INPUT:
		return p.parseInputStmt()
	case keyword.INVERSE:
		return p.parseNullaryCmd(ast.StmtInverse)
	case keyword.KILL:
		return p.parseRemStmt(ast.StmtKill, false)
	case keyword.LET:
		p.advance(false)
		return p.parseAssignStmt(true)
	case keyword.LINE:
		return p.parseCoordCmd(ast.StmtLine, 4, true, false)
	case keyword.LIST:
		return p.parseRemStmt(ast.StmtList, false)
	case keyword.LOAD:
		return p.parseRemStmt(ast.StmtLoad, false)
	case keyword.LOCATE:
		return p.parseLocateStmt()
	case keyword.LSET:
		return p.parseSetStmt(ast.StmtLSet)
	case keyword.NEW:
		return p.parseRemStmt(ast.StmtNew, false)
	case keyword.NEXT:
		return p.parseNextStmt()
	case keyword.NORMAL:
		return p.parseNullaryCmd(ast.StmtNormal)
	case keyword.NOTRACE:
		return p.parseNullaryCmd(ast.StmtNoTrace)
	case keyword.ON:
		return p.parseOnStmt()
	case keyword.OPEN:
		return p.parseOpenStmt()
	case keyword.PLAY:
		return p.parseUnaryCmd(ast.StmtPlay)
	case keyword.POKE:
		return p.parsePokeStmt()
	case keyword.POP:
		return p.parseNullaryCmd(ast.StmtPop)
	case keyword.PRINT:
		return p.parsePrintStmt()
	case keyword.PUT:
		return p.parseGetPutStmt(true)
	case keyword.READ:
		return p.parseReadStmt()
	case keyword.REM:
		return p.parseRemStmt(ast.StmtRem, false)
	case keyword.RENAME:
		return p.parseRemStmt(ast.StmtRename, false)
	case keyword.RESTORE:
		return p.parseGoStmt(ast.StmtRestore, false)
	case keyword.RETURN:
		return p.parseNullaryCmd(ast.StmtReturn)
	case keyword.RSET:
		return p.parseSetStmt(ast.StmtRSet)
	case keyword.RUN:
		return p.parseNullaryCmd(ast.StmtRun)
	case keyword.SAVE:
		return p.parseRemStmt(ast.StmtSave, false)
	case keyword.STOP:
		return p.parseRemStmt(ast.StmtStop, false)
	case keyword.SWAP:
		return p.parseSwapStmt()
	case keyword.SYSTEM:
		return p.parseNullaryCmd(ast.StmtSystem)
	case keyword.TEXT:
		return p.parseNullaryCmd(ast.StmtText)
	case keyword.TRACE:
		return p.parseNullaryCmd(ast.StmtTrace)
	case keyword.WEND:
		return p.parseNullaryCmd(ast.StmtWend)
	case keyword.WHILE:
		return p.parseUnaryCmd(ast.StmtWhile)
	case keyword.WRITE:
		return p.parseWriteStmt()
	default:
		sc := p.beginScope()
		sc.setFirst(NontermSymbol(NontermStmt))
		p.reportMismatch()
		p.recover(false)
		sc.end()
		return p.newStmt(ast.Stmt{Kind: ast.StmtNoOp})
	}
}

func (p *parser) parseImplicitGoto() ast.StmtID {
	var op ast.LabelOperand
	if p.tok.LabelErr != nil {
		p.reportLabelError(p.tok.LabelErr, tokRange(p.tok))
	} else {
		op = ast.LabelOperand{Range: tokRange(p.tok), Label: p.tok.Label}
	}
	p.advance(false)
	return p.newStmt(ast.Stmt{Kind: ast.StmtGoTo, GotoLabel: &op, HasGotoKeyword: false})
}

// --- expressions ---

type prec int

const (
	precNone prec = iota
	precLog
	precRel
	precAdd
	precMul
	precNeg
	precPow
	precNot
)

func tokenPrec(tok lexer.Token) prec {
	if tok.Kind == lexer.PuncTok {
		switch tok.Punc {
		case lexer.Eq, lexer.Lt, lexer.Gt:
			return precRel
		case lexer.Plus, lexer.Minus:
			return precAdd
		case lexer.Times, lexer.Slash:
			return precMul
		case lexer.Caret:
			return precPow
		}
	}
	if tok.Kind == lexer.KeywordTok {
		switch tok.Keyword {
		case keyword.AND, keyword.OR:
			return precLog
		}
	}
	return precNone
}

// parseExpr installs the FIRST/FOLLOW sets appropriate for a
// top-level expression and parses it at the lowest precedence.
func (p *parser) parseExpr() ast.ExprID {
	sc := p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	sc.setFollow(
		TermPunc(lexer.Eq), TermPunc(lexer.Gt), TermPunc(lexer.Lt),
		TermPunc(lexer.Plus), TermPunc(lexer.Minus), TermPunc(lexer.Times),
		TermPunc(lexer.Slash), TermPunc(lexer.Caret),
		TermKeyword(keyword.AND), TermKeyword(keyword.OR),
	)
	id := p.parseExprPrec(precNone)
	sc.end()
	return id
}

func (p *parser) parseExprPrec(minPrec prec) ast.ExprID {
	lhs := p.parseAtom()
	for tokenPrec(p.tok) > minPrec {
		lhs = p.readBinaryOp(lhs)
	}
	return lhs
}

// readBinaryOp consumes the operator token (composing <= / >= / <>
// from one token of lookahead, since the lexer itself never emits
// them) and parses the right-hand operand at the operator's own
// precedence, making the operators left-associative.
func (p *parser) readBinaryOp(lhs ast.ExprID) ast.ExprID {
	opTok := p.tok
	opRange := tokRange(opTok)
	opPrec := tokenPrec(opTok)

	var op ast.BinaryOp
	switch {
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Eq:
		op = ast.OpEq
		p.advance(false)
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Lt:
		p.advance(false)
		switch {
		case p.isPunc(lexer.Eq):
			op = ast.OpLe
			opRange = ast.NewRange(opRange.Start, p.tok.End)
			p.advance(false)
		case p.isPunc(lexer.Gt):
			op = ast.OpNe
			opRange = ast.NewRange(opRange.Start, p.tok.End)
			p.advance(false)
		default:
			op = ast.OpLt
		}
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Gt:
		p.advance(false)
		if p.isPunc(lexer.Eq) {
			op = ast.OpGe
			opRange = ast.NewRange(opRange.Start, p.tok.End)
			p.advance(false)
		} else {
			op = ast.OpGt
		}
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Plus:
		op = ast.OpAdd
		p.advance(false)
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Minus:
		op = ast.OpSub
		p.advance(false)
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Times:
		op = ast.OpMul
		p.advance(false)
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Slash:
		op = ast.OpDiv
		p.advance(false)
	case opTok.Kind == lexer.PuncTok && opTok.Punc == lexer.Caret:
		op = ast.OpPow
		p.advance(false)
	case opTok.Kind == lexer.KeywordTok && opTok.Keyword == keyword.AND:
		op = ast.OpAnd
		p.advance(false)
	case opTok.Kind == lexer.KeywordTok && opTok.Keyword == keyword.OR:
		op = ast.OpOr
		p.advance(false)
	default:
		panic("parser: readBinaryOp called on non-operator token")
	}

	rhs := p.parseExprPrec(opPrec)
	lhsRange := p.arena.Expr(lhs).Range
	rhsRange := p.arena.Expr(rhs).Range
	return p.newExpr(ast.Expr{
		Kind:     ast.ExprBinary,
		Range:    ast.NewRange(lhsRange.Start, rhsRange.End),
		BinOp:    op,
		BinOpPos: opRange,
		LHS:      lhs,
		RHS:      rhs,
	})
}

// parseAtom parses a single expression primary: literal, unary
// operator application, parenthesized sub-expression, function call,
// or identifier (possibly subscripted).
func (p *parser) parseAtom() ast.ExprID {
	tok := p.tok
	switch {
	case tok.Kind == lexer.Float || tok.Kind == lexer.LabelTok:
		r := tokRange(tok)
		p.advance(false)
		return p.newExpr(ast.Expr{Kind: ast.ExprNumberLit, Range: r})
	case tok.Kind == lexer.StringTok:
		r := tokRange(tok)
		p.advance(false)
		return p.newExpr(ast.Expr{Kind: ast.ExprStringLit, Range: r})
	case tok.Kind == lexer.KeywordTok && tok.Keyword == keyword.INKEY:
		r := tokRange(tok)
		p.advance(false)
		return p.newExpr(ast.Expr{Kind: ast.ExprInkey, Range: r})
	case tok.Kind == lexer.PuncTok && (tok.Punc == lexer.Plus || tok.Punc == lexer.Minus):
		r := tokRange(tok)
		p.advance(false)
		arg := p.parseExprPrec(precNeg)
		argRange := p.arena.Expr(arg).Range
		op := ast.OpPos
		if tok.Punc == lexer.Minus {
			op = ast.OpNeg
		}
		return p.newExpr(ast.Expr{
			Kind: ast.ExprUnary, Range: ast.NewRange(r.Start, argRange.End),
			UnOp: op, UnOpPos: r, UnArg: arg,
		})
	case tok.Kind == lexer.KeywordTok && tok.Keyword == keyword.NOT:
		r := tokRange(tok)
		p.advance(false)
		arg := p.parseExprPrec(precNot)
		argRange := p.arena.Expr(arg).Range
		return p.newExpr(ast.Expr{
			Kind: ast.ExprUnary, Range: ast.NewRange(r.Start, argRange.End),
			UnOp: ast.OpNot, UnOpPos: r, UnArg: arg,
		})
	case tok.Kind == lexer.PuncTok && tok.Punc == lexer.LParen:
		start := tok.Start
		p.advance(false)
		sc := p.beginScope()
		sc.setFollow(TermPunc(lexer.RParen))
		inner := p.parseExpr()
		sc.end()
		end := p.tok.End
		if _, ok := p.matchToken(TermPunc(lexer.RParen), false, false); !ok {
			p.addError(ast.NewRange(start, p.lastTokEnd), "缺少匹配的右括号")
			end = p.lastTokEnd
		}
		innerExpr := p.arena.Expr(inner)
		innerExpr.Range = ast.NewRange(start, end)
		return inner
	case tok.Kind == lexer.KeywordTok && tok.Keyword == keyword.FN:
		return p.parseUserFuncCall()
	case tok.Kind == lexer.SysFuncTok:
		return p.parseSysFuncCall()
	case tok.Kind == lexer.Ident:
		return p.parseLvalue()
	default:
		p.reportMismatch()
		p.recover(false)
		return p.newExpr(ast.Expr{Kind: ast.ExprNumberLit, Range: tokRange(tok)})
	}
}

func (p *parser) parseUserFuncCall() ast.ExprID {
	start := p.tok.Start
	p.advance(false)

	sc := p.beginScope()
	sc.setFollow(TermPunc(lexer.LParen))
	nameRange, ok := p.matchToken(TermIdent(), false, false)
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "FN 之后缺少函数名称")
	}
	sc.end()

	sc = p.beginScope()
	sc.setFirst(NontermSymbol(NontermExpr))
	_, ok = p.matchToken(TermPunc(lexer.LParen), false, false)
	if !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "函数名称之后缺少左括号")
	}
	sc.end()

	sc = p.beginScope()
	sc.setFollow(TermPunc(lexer.RParen))
	arg := p.parseExpr()
	sc.end()

	end := p.tok.End
	if _, ok := p.matchToken(TermPunc(lexer.RParen), false, false); !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少右括号")
		end = p.lastTokEnd
	}

	return p.newExpr(ast.Expr{
		Kind: ast.ExprUserFuncCall, Range: ast.NewRange(start, end),
		FuncName: nameRange, Arg: arg,
	})
}

func (p *parser) parseSysFuncCall() ast.ExprID {
	start := p.tok.Start
	nameRange := tokRange(p.tok)
	f := p.tok.SysFunc
	p.advance(false)

	args, end := p.parseParenArgs(start)

	return p.newExpr(ast.Expr{
		Kind: ast.ExprSysFuncCall, Range: ast.NewRange(start, end),
		SysFunc: f, SysFuncName: nameRange, Args: args,
	})
}

// parseParenArgs parses a "(" expr ("," expr)* ")" argument list,
// tolerating a missing "(" (no arguments) the way a bare SysFunc name
// like RND with no call parens still parses.
func (p *parser) parseParenArgs(start int) ([]ast.ExprID, int) {
	if !p.isPunc(lexer.LParen) {
		return nil, p.lastTokEnd
	}
	p.advance(false)

	var args []ast.ExprID
	for {
		sc := p.beginScope()
		sc.setFollow(TermPunc(lexer.Comma), TermPunc(lexer.RParen))
		args = append(args, p.parseExpr())
		sc.end()
		if p.isPunc(lexer.Comma) {
			p.advance(false)
			continue
		}
		break
	}

	end := p.tok.End
	if _, ok := p.matchToken(TermPunc(lexer.RParen), false, false); !ok {
		p.addError(ast.NewRange(start, p.lastTokEnd), "缺少右括号")
		end = p.lastTokEnd
	}
	return args, end
}

// parseLvalue parses a bare identifier, optionally subscripted, used
// both as an expression atom and as the target of LET/INPUT/etc.
func (p *parser) parseLvalue() ast.ExprID {
	start := p.tok.Start
	nameRange := tokRange(p.tok)
	p.advance(false)

	if !p.isPunc(lexer.LParen) {
		return p.newExpr(ast.Expr{Kind: ast.ExprIdent, Range: nameRange, Ident: nameRange})
	}

	args, end := p.parseParenArgs(start)
	return p.newExpr(ast.Expr{
		Kind: ast.ExprIndex, Range: ast.NewRange(start, end),
		IndexName: nameRange, Args: args,
	})
}
