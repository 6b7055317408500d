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
	"fmt"

	"github.com/arucil/gvbasic/keyword"
	"github.com/arucil/gvbasic/lexer"
)

// Nonterminal names a grammar production whose FIRST set a caller can
// splice into its own, for the "expect an expression here" style of
// diagnostic.
type Nonterminal int

const (
	NontermExpr Nonterminal = iota
	NontermStmt
	NontermArray
)

const (
	symIdent = iota
	symLabel
	symFloat
	symString
	symEOF
	symPuncBase
)

// Each terminal class occupies a contiguous range of the symbol
// index space; nonterminals follow immediately after the last
// terminal class (sysfuncs).
var (
	symKeywordBaseVal = symPuncBase + 17
	symSysFuncBaseVal = symKeywordBaseVal + keyword.Count
	symNontermBase    = symSysFuncBaseVal + keyword.SysFuncCount
)

// Symbol is a single terminal (token kind, keyword, sysfunc, punc) or
// nonterminal, packed into a dense integer index so it can live in a
// SymSet bit-set.
type Symbol int

func TermIdent() Symbol  { return Symbol(symIdent) }
func TermLabel() Symbol  { return Symbol(symLabel) }
func TermFloat() Symbol  { return Symbol(symFloat) }
func TermString() Symbol { return Symbol(symString) }
func TermEOF() Symbol    { return Symbol(symEOF) }
func TermPunc(p lexer.Punc) Symbol {
	return Symbol(symPuncBase + int(p))
}
func TermKeyword(k keyword.Keyword) Symbol {
	return Symbol(symKeywordBaseVal + int(k))
}
func TermSysFunc(f keyword.SysFunc) Symbol {
	return Symbol(symSysFuncBaseVal + int(f))
}
func NontermSymbol(nt Nonterminal) Symbol {
	return Symbol(symNontermBase + int(nt))
}

// TokenSymbol maps a lexed token to the terminal Symbol it represents.
func TokenSymbol(tok lexer.Token) Symbol {
	switch tok.Kind {
	case lexer.EOF:
		return TermEOF()
	case lexer.LabelTok:
		return TermLabel()
	case lexer.Float:
		return TermFloat()
	case lexer.StringTok:
		return TermString()
	case lexer.Ident:
		return TermIdent()
	case lexer.PuncTok:
		return TermPunc(tok.Punc)
	case lexer.KeywordTok:
		return TermKeyword(tok.Keyword)
	case lexer.SysFuncTok:
		return TermSysFunc(tok.SysFunc)
	default:
		panic("parser: unhandled token kind")
	}
}

func (s Symbol) describe() string {
	switch {
	case s == TermIdent():
		return "标识符"
	case s == TermLabel():
		return "行号"
	case s == TermFloat():
		return "实数"
	case s == TermString():
		return "字符串"
	case s == TermEOF():
		return "行尾"
	case int(s) >= symNontermBase:
		switch Nonterminal(int(s) - symNontermBase) {
		case NontermExpr:
			return "表达式"
		case NontermStmt:
			return "语句"
		default:
			return "数组"
		}
	case int(s) >= symSysFuncBaseVal:
		return keyword.SysFunc(int(s) - symSysFuncBaseVal).String()
	case int(s) >= symKeywordBaseVal:
		return keyword.Keyword(int(s) - symKeywordBaseVal).String()
	default:
		return fmt.Sprintf("%q", puncNames[int(s)-symPuncBase])
	}
}

var puncNames = map[int]string{
	int(lexer.Eq): "=", int(lexer.Ne): "<>", int(lexer.Le): "<=",
	int(lexer.Ge): ">=", int(lexer.Lt): "<", int(lexer.Gt): ">",
	int(lexer.Plus): "+", int(lexer.Minus): "-", int(lexer.Times): "*",
	int(lexer.Slash): "/", int(lexer.Caret): "^", int(lexer.Colon): ":",
	int(lexer.LParen): "(", int(lexer.RParen): ")", int(lexer.Semi): ";",
	int(lexer.Comma): ",", int(lexer.Hash): "#",
}

// symSet is a fixed-size bit-set over every Symbol, grounded on the
// same word-indexed bit-twiddling as a general-purpose set over a
// bounded integer universe: sized to the whole symbol space up front
// (there's no benefit to growing it dynamically since the universe is
// known and small), rather than starting empty like a bit-set that
// expects a small live population. Used for both FIRST and FOLLOW
// sets, which the parser saves and restores around every productive
// grammar rule.
type symSet [3]uint64

func (s *symSet) add(sym Symbol) {
	i := int(sym)
	s[i>>6] |= uint64(1) << uint(i&63)
}

func (s symSet) contains(sym Symbol) bool {
	i := int(sym)
	return s[i>>6]&(uint64(1)<<uint(i&63)) != 0
}

func (s *symSet) union(other symSet) {
	s[0] |= other[0]
	s[1] |= other[1]
	s[2] |= other[2]
}

func (s symSet) each(fn func(Symbol)) {
	for word := 0; word < 3; word++ {
		bits := s[word]
		for bits != 0 {
			bit := bits & -bits
			idx := word*64 + trailingZeros64(bit)
			fn(Symbol(idx))
			bits &^= bit
		}
	}
}

func trailingZeros64(x uint64) int {
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

// exprFirstSet and stmtFirstSet are the FIRST sets of the Expr and
// Stmt nonterminals, used both to seed a parse function's own first
// set and to recognize "is this the start of an expression/statement"
// without invoking the full parse.
var exprFirstSet = buildExprFirstSet()
var stmtFirstSet = buildStmtFirstSet()

func buildExprFirstSet() symSet {
	var s symSet
	s.add(TermFloat())
	s.add(TermLabel())
	s.add(TermString())
	s.add(TermKeyword(keyword.INKEY))
	s.add(TermPunc(lexer.Plus))
	s.add(TermPunc(lexer.Minus))
	s.add(TermKeyword(keyword.NOT))
	s.add(TermPunc(lexer.LParen))
	s.add(TermKeyword(keyword.FN))
	for f := keyword.SysFunc(0); int(f) < keyword.SysFuncCount; f++ {
		s.add(TermSysFunc(f))
	}
	s.add(TermIdent())
	return s
}

func buildStmtFirstSet() symSet {
	var s symSet
	for _, k := range stmtKeywords {
		s.add(TermKeyword(k))
	}
	s.add(TermIdent())
	s.add(TermLabel())
	return s
}

var stmtKeywords = []keyword.Keyword{
	keyword.AUTO, keyword.BEEP, keyword.BOX, keyword.CALL, keyword.CIRCLE,
	keyword.CLEAR, keyword.CLOSE, keyword.CLS, keyword.CONT, keyword.COPY,
	keyword.DATA, keyword.DEF, keyword.DEL, keyword.DIM, keyword.DRAW,
	keyword.EDIT, keyword.ELLIPSE, keyword.END, keyword.FIELD, keyword.FILES,
	keyword.FLASH, keyword.FOR, keyword.GET, keyword.GOSUB, keyword.GOTO,
	keyword.GRAPH, keyword.IF, keyword.INKEY, keyword.INPUT, keyword.INVERSE,
	keyword.KILL, keyword.LET, keyword.LINE, keyword.LIST, keyword.LOAD,
	keyword.LOCATE, keyword.LSET, keyword.NEW, keyword.NEXT, keyword.NORMAL,
	keyword.NOTRACE, keyword.ON, keyword.OPEN, keyword.PLAY, keyword.POKE,
	keyword.POP, keyword.PRINT, keyword.PUT, keyword.READ, keyword.REM,
	keyword.RENAME, keyword.RESTORE, keyword.RETURN, keyword.RSET, keyword.RUN,
	keyword.SAVE, keyword.STOP, keyword.SWAP, keyword.SYSTEM, keyword.TEXT,
	keyword.TRACE, keyword.WEND, keyword.WHILE, keyword.WRITE,
}
