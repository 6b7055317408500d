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

package lexer

import (
	"testing"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/keyword"
)

func TestPunctuation(t *testing.T) {
	l := New("<=>")
	tok := l.Next(false)
	if tok.Kind != PuncTok || tok.Punc != Lt {
		t.Fatalf("tok = %+v, want Lt", tok)
	}
	tok = l.Next(false)
	if tok.Kind != PuncTok || tok.Punc != Eq {
		t.Fatalf("tok = %+v, want Eq", tok)
	}
	tok = l.Next(false)
	if tok.Kind != PuncTok || tok.Punc != Gt {
		t.Fatalf("tok = %+v, want Gt", tok)
	}
	if l.Next(false).Kind != EOF {
		t.Fatal("expected EOF")
	}
}

func TestQuotedString(t *testing.T) {
	l := New(`"HELLO, WORLD"`)
	tok := l.Next(false)
	if tok.Kind != StringTok {
		t.Fatalf("tok = %+v, want StringTok", tok)
	}
	if tok.Text != `"HELLO, WORLD"` {
		t.Fatalf("text = %q", tok.Text)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"HELLO`)
	tok := l.Next(false)
	if tok.Kind != StringTok || tok.Text != `"HELLO` {
		t.Fatalf("tok = %+v", tok)
	}
}

func TestNumberWithInteriorSpaces(t *testing.T) {
	l := New("1 2 . 3 4 E + 5")
	tok := l.Next(false)
	if tok.Kind != Float {
		t.Fatalf("tok.Kind = %v, want Float", tok.Kind)
	}
	if tok.Text != "1 2 . 3 4 E + 5" {
		t.Fatalf("text = %q", tok.Text)
	}
}

func TestLabelAtLineStart(t *testing.T) {
	l := New("1234 PRINT 1")
	tok := l.Next(true)
	if tok.Kind != LabelTok {
		t.Fatalf("tok.Kind = %v, want LabelTok", tok.Kind)
	}
	if tok.Label != 1234 {
		t.Fatalf("Label = %d, want 1234", tok.Label)
	}
}

func TestLabelOutOfBound(t *testing.T) {
	l := New("99999")
	tok := l.Next(true)
	if tok.Kind != LabelTok {
		t.Fatalf("tok.Kind = %v, want LabelTok", tok.Kind)
	}
	if tok.LabelErr == nil || tok.LabelErr.Kind != ast.OutOfBound {
		t.Fatalf("LabelErr = %v, want OutOfBound", tok.LabelErr)
	}
}

func TestFloatNotLabelMidLine(t *testing.T) {
	l := New("GOTO 10")
	kw := l.Next(true)
	if kw.Kind != KeywordTok || kw.Keyword != keyword.GOTO {
		t.Fatalf("kw = %+v, want GOTO", kw)
	}
	num := l.Next(false)
	if num.Kind != Float {
		t.Fatalf("num.Kind = %v, want Float (not a label mid-line)", num.Kind)
	}
}

func TestKeywordToken(t *testing.T) {
	l := New("PRINT")
	tok := l.Next(false)
	if tok.Kind != KeywordTok || tok.Keyword != keyword.PRINT {
		t.Fatalf("tok = %+v, want PRINT", tok)
	}
}

func TestSysFuncToken(t *testing.T) {
	l := New(`LEFT$("AB",1)`)
	tok := l.Next(false)
	if tok.Kind != SysFuncTok {
		t.Fatalf("tok.Kind = %v, want SysFuncTok", tok.Kind)
	}
}

func TestPlainIdent(t *testing.T) {
	l := New("ABC")
	tok := l.Next(false)
	if tok.Kind != Ident || tok.Text != "ABC" {
		t.Fatalf("tok = %+v, want Ident ABC", tok)
	}
}

func TestIdentWithEmbeddedKeywordBacktrack(t *testing.T) {
	// "A GOTO 10" must lex as Ident("A"), KeywordTok(GOTO), Float(10) —
	// the identifier scanner must stop at the boundary before GOTO
	// rather than swallowing the space and the keyword into the name.
	l := New("A GOTO 10")
	id := l.Next(false)
	if id.Kind != Ident || id.Text != "A" {
		t.Fatalf("id = %+v, want Ident A", id)
	}
	kw := l.Next(false)
	if kw.Kind != KeywordTok || kw.Keyword != keyword.GOTO {
		t.Fatalf("kw = %+v, want GOTO", kw)
	}
}

func TestIdentWithInteriorSpaceNoKeyword(t *testing.T) {
	// With no embedded keyword, interior spaces are tolerated and the
	// whole run becomes one identifier (trailing spaces trimmed).
	l := New("A B C = 1")
	id := l.Next(false)
	if id.Kind != Ident || id.Text != "A B C" {
		t.Fatalf("id = %+v, want Ident \"A B C\"", id)
	}
	eq := l.Next(false)
	if eq.Kind != PuncTok || eq.Punc != Eq {
		t.Fatalf("eq = %+v, want Eq", eq)
	}
}

func TestIdentWithSigil(t *testing.T) {
	l := New("A$ = 1")
	id := l.Next(false)
	if id.Kind != Ident || id.Text != "A$" {
		t.Fatalf("id = %+v, want Ident A$", id)
	}
}

func TestIllegalCharacterRecordsDiagnosticAndResumes(t *testing.T) {
	l := New("A = ぁ 1")
	id := l.Next(false)
	if id.Kind != Ident || id.Text != "A" {
		t.Fatalf("id = %+v, want Ident A", id)
	}
	eq := l.Next(false)
	if eq.Kind != PuncTok || eq.Punc != Eq {
		t.Fatalf("eq = %+v, want Eq", eq)
	}
	num := l.Next(false)
	if num.Kind != Float || num.Text != "1" {
		t.Fatalf("num = %+v, want Float 1", num)
	}
	if len(l.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %+v, want 1 entry", l.Diagnostics)
	}
	if l.Diagnostics[0].Message != "非法字符：U+3041" {
		t.Fatalf("message = %q", l.Diagnostics[0].Message)
	}
}
