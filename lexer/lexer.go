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

// Package lexer tokenizes a single line of GVBASIC source text. Ranges
// are byte offsets into the line, matching the diagnostics the parser
// built on top of this package reports.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/keyword"
)

// Kind classifies a Token.
type Kind int

const (
	EOF Kind = iota
	LabelTok
	Float
	StringTok
	Ident
	PuncTok
	KeywordTok
	SysFuncTok
)

// Punc enumerates single- and double-character punctuation tokens. The
// lexer only ever produces the single-character members (Eq, Lt, Gt,
// and the rest below); Ne/Le/Ge are composed by the parser from a
// one-token lookahead over Lt/Gt/Eq, so they exist here purely as
// Punc-typed values the parser can construct and compare against.
type Punc int

const (
	Eq Punc = iota
	Ne
	Le
	Ge
	Lt
	Gt
	Plus
	Minus
	Times
	Slash
	Caret
	Colon
	LParen
	RParen
	Semi
	Comma
	Hash
)

var singleCharPunc = map[byte]Punc{
	'=': Eq, '<': Lt, '>': Gt, '+': Plus, '-': Minus, '*': Times,
	'/': Slash, '^': Caret, ':': Colon, '(': LParen, ')': RParen,
	';': Semi, ',': Comma, '#': Hash,
}

// Token is one lexical unit together with its byte range in the line
// it came from. Only the fields relevant to Kind are meaningful:
// Punc for PuncTok, Keyword for KeywordTok, SysFunc for SysFuncTok,
// Label/LabelErr for LabelTok, and Text for Float/StringTok/Ident.
type Token struct {
	Kind       Kind
	Start, End int
	Punc       Punc
	Keyword    keyword.Keyword
	SysFunc    keyword.SysFunc
	Label      ast.Label
	LabelErr   *ast.ParseLabelError
	Text       string
}

// Diagnostic is a lexical error: a leading character that could not
// start any token (every non-ASCII character is one).
type Diagnostic struct {
	Start, End int
	Message    string
}

// Lexer tokenizes one line of source incrementally. It has no
// knowledge of statement or expression grammar; that lives in the
// parser package, which drives Next and inspects FIRST/FOLLOW sets.
type Lexer struct {
	full       string
	input      string
	offset     int
	Diagnostics []Diagnostic
}

// New creates a Lexer over a single line of source (EOL stripped).
func New(line string) *Lexer {
	return &Lexer{full: line, input: line}
}

// Offset returns the current byte offset into the line.
func (l *Lexer) Offset() int { return l.offset }

func (l *Lexer) advance(n int) {
	l.offset += n
	l.input = l.input[n:]
}

func countSpace(s string) int {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

func (l *Lexer) skipSpace() {
	l.advance(countSpace(l.input))
}

// readNumber matches `[-+]?\d*(\.\d*)?(E[-+]?\d*)?`, optionally
// ignoring interior spaces, and reports whether the match was a bare
// natural number with no sign, decimal point, or exponent (the case
// eligible to be read as a label instead of a float). An E directly
// followed by a letter is not taken as an exponent, so the number in
// "30 ELSE" ends before ELSE.
func readNumber(input string, allowSpace bool) (length int, isNat bool) {
	i := 0
	isNat = true

	if i < len(input) && (input[i] == '+' || input[i] == '-') {
		isNat = false
		i++
	}
	if allowSpace {
		i += countSpace(input[i:])
	}

	for i < len(input) && (isDigit(input[i]) || (allowSpace && input[i] == ' ')) {
		i++
	}

	if i < len(input) && input[i] == '.' {
		isNat = false
		i++
		for i < len(input) && (isDigit(input[i]) || (allowSpace && input[i] == ' ')) {
			i++
		}
	}

	if i < len(input) && (input[i] == 'e' || input[i] == 'E') && !(i+1 < len(input) && isAsciiAlpha(input[i+1])) {
		isNat = false
		i++
		if allowSpace {
			i += countSpace(input[i:])
		}
		if i < len(input) && (input[i] == '+' || input[i] == '-') {
			i++
		}
		for i < len(input) && (isDigit(input[i]) || (allowSpace && input[i] == ' ')) {
			i++
		}
	}

	if allowSpace {
		for i > 0 && input[i-1] == ' ' {
			i--
		}
	}
	return i, isNat
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAsciiAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isAsciiAlnum(b byte) bool { return isAsciiAlpha(b) || isDigit(b) }

func readQuotedString(input string) int {
	i := 1
	for i < len(input) {
		if input[i] == '"' {
			i++
			break
		}
		i++
	}
	return i
}

func illegalCharMessage(r rune) string {
	if r < 0x10000 {
		return fmt.Sprintf("非法字符：U+%04X", r)
	}
	return fmt.Sprintf("非法字符：U+%06X", r)
}

// Next consumes and returns the next token. readLabel should be true
// wherever a label may stand: at the start of a line and after GOTO,
// GOSUB, THEN, ELSE and the like (there a bare natural number is a
// label rather than a numeric literal). Illegal leading bytes
// are recorded on Diagnostics and skipped transparently, exactly as
// if they were whitespace.
func (l *Lexer) Next(readLabel bool) Token {
	for {
		l.skipSpace()
		start := l.offset
		if len(l.input) == 0 {
			return Token{Kind: EOF, Start: start, End: start}
		}
		c := l.input[0]

		switch {
		case isSinglePunc(c):
			l.advance(1)
			return Token{Kind: PuncTok, Start: start, End: l.offset, Punc: singleCharPunc[c]}

		case c == '"':
			n := readQuotedString(l.input)
			l.advance(n)
			return Token{Kind: StringTok, Start: start, End: l.offset, Text: l.full[start:l.offset]}

		case isDigit(c) || c == '.':
			n, isNat := readNumber(l.input, true)
			text := l.input[:n]
			if isNat && readLabel {
				l.advance(n)
				tok := Token{Kind: LabelTok, Start: start, End: l.offset, Text: text}
				if v, err := ast.ParseLabel(text); err == nil {
					tok.Label = v
				} else {
					tok.LabelErr = err.(*ast.ParseLabelError)
				}
				return tok
			}
			l.advance(n)
			return Token{Kind: Float, Start: start, End: l.offset, Text: text}

		case isAsciiAlpha(c):
			return l.readIdentOrKeyword(start)

		default:
			r, size := utf8.DecodeRuneInString(l.input)
			l.advance(size)
			l.Diagnostics = append(l.Diagnostics, Diagnostic{
				Start: start, End: l.offset, Message: illegalCharMessage(r),
			})
			continue
		}
	}
}

func isSinglePunc(c byte) bool {
	_, ok := singleCharPunc[c]
	return ok
}

// readIdentOrKeyword ports the original lexer's word-scanning state
// machine: first take the maximal ASCII alphanumeric run (plus an
// optional trailing sigil), and test the whole thing as a keyword or
// sysfunc name; failing that (and absent a sigil), re-scan splitting
// on embedded spaces, backing off to the point a keyword/sysfunc name
// is recognized inside the run, so `"GO TO"` lexes as Ident("GO") only
// when no keyword match exists at all, and correctly ends an
// identifier right before an embedded keyword like `"A GOTO"`.
func (l *Lexer) readIdentOrKeyword(start int) Token {
	i := 0
	for i < len(l.input) && isAsciiAlnum(l.input[i]) {
		i++
	}
	sigil := false
	if i < len(l.input) && (l.input[i] == '%' || l.input[i] == '$') {
		i++
		sigil = true
	}

	word := strings.ToUpper(l.input[:i])
	if kw, ok := keyword.FromName(word); ok {
		l.advance(i)
		return Token{Kind: KeywordTok, Start: start, End: l.offset, Keyword: kw}
	}
	if f, ok := keyword.SysFuncFromName(word); ok {
		l.advance(i)
		return Token{Kind: SysFuncTok, Start: start, End: l.offset, SysFunc: f}
	}
	if sigil {
		l.advance(i)
		return Token{Kind: Ident, Start: start, End: l.offset, Text: l.full[start:l.offset]}
	}

	j := 0
	segStart := 0
	inSeg := false
	for {
		c, atEnd := byteAt(l.input, j)
		switch {
		case !atEnd && isAsciiAlnum(c):
			if !inSeg {
				segStart = j
				inSeg = true
			}
			j++
		case !atEnd && (c == '%' || c == '$'):
			j++
			if inSeg {
				seg := strings.ToUpper(l.input[segStart:j])
				if isKeywordOrSysFunc(seg) {
					j = segStart
				}
			}
			goto done
		default:
			if inSeg {
				inSeg = false
				seg := strings.ToUpper(l.input[segStart:j])
				if isKeywordOrSysFunc(seg) {
					j = segStart
					goto done
				}
			}
			if !atEnd && c == ' ' {
				j++
			} else {
				goto done
			}
		}
	}
done:
	for j > 0 && l.input[j-1] == ' ' {
		j--
	}
	l.advance(j)
	return Token{Kind: Ident, Start: start, End: l.offset, Text: l.full[start:l.offset]}
}

func byteAt(s string, i int) (byte, bool) {
	if i >= len(s) {
		return 0, true
	}
	return s[i], false
}

func isKeywordOrSysFunc(name string) bool {
	if _, ok := keyword.FromName(name); ok {
		return true
	}
	_, ok := keyword.SysFuncFromName(name)
	return ok
}
