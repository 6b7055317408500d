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

// Package keyword holds the closed table of GVBASIC keywords and
// system functions shared by the lexer, the binary document codec,
// and the compiler. Every keyword carries a single tokenized-program
// bytecode (0x80 and up) and a "requires trailing space" flag
// consulted by the detokenizer.
package keyword

// Keyword enumerates every reserved word recognized at statement or
// expression position, in the order the original device's keyword
// table assigns bytecodes.
type Keyword int

const (
	AUTO Keyword = iota
	BEEP
	BOX
	CALL
	CIRCLE
	CLEAR
	CLOSE
	CLS
	CONT
	COPY
	DATA
	DEF
	DEL
	DIM
	DRAW
	EDIT
	ELLIPSE
	END
	FIELD
	FILES
	FLASH
	FOR
	GET
	GOSUB
	GOTO
	GRAPH
	IF
	INKEY
	INPUT
	INVERSE
	KILL
	LET
	LINE
	LIST
	LOAD
	LOCATE
	LSET
	NEW
	NEXT
	NORMAL
	NOTRACE
	ON
	OPEN
	PLAY
	POKE
	POP
	PRINT
	PUT
	READ
	REM
	RENAME
	RESTORE
	RETURN
	RSET
	RUN
	SAVE
	STOP
	SWAP
	SYSTEM
	TEXT
	TRACE
	WEND
	WHILE
	WRITE
	THEN
	ELSE
	TO
	STEP
	FN
	AND
	OR
	NOT
	SLEEP
	PAINT
	FPUTC
	FREAD
	FWRITE
	FSEEK

	count
)

// firstByte is the tokenized bytecode of the first keyword (AUTO);
// every other keyword's code is firstByte + its Keyword value.
const firstByte = 0x80

// Count is the number of distinct keywords, usable by other packages
// sizing a table or bit-set indexed by Keyword.
const Count = int(count)

var names = [count]string{
	AUTO: "AUTO", BEEP: "BEEP", BOX: "BOX", CALL: "CALL", CIRCLE: "CIRCLE",
	CLEAR: "CLEAR", CLOSE: "CLOSE", CLS: "CLS", CONT: "CONT", COPY: "COPY",
	DATA: "DATA", DEF: "DEF", DEL: "DEL", DIM: "DIM", DRAW: "DRAW",
	EDIT: "EDIT", ELLIPSE: "ELLIPSE", END: "END", FIELD: "FIELD",
	FILES: "FILES", FLASH: "FLASH", FOR: "FOR", GET: "GET", GOSUB: "GOSUB",
	GOTO: "GOTO", GRAPH: "GRAPH", IF: "IF", INKEY: "INKEY$", INPUT: "INPUT",
	INVERSE: "INVERSE", KILL: "KILL", LET: "LET", LINE: "LINE", LIST: "LIST",
	LOAD: "LOAD", LOCATE: "LOCATE", LSET: "LSET", NEW: "NEW", NEXT: "NEXT",
	NORMAL: "NORMAL", NOTRACE: "NOTRACE", ON: "ON", OPEN: "OPEN",
	PLAY: "PLAY", POKE: "POKE", POP: "POP", PRINT: "PRINT", PUT: "PUT",
	READ: "READ", REM: "REM", RENAME: "RENAME", RESTORE: "RESTORE",
	RETURN: "RETURN", RSET: "RSET", RUN: "RUN", SAVE: "SAVE", STOP: "STOP",
	SWAP: "SWAP", SYSTEM: "SYSTEM", TEXT: "TEXT", TRACE: "TRACE",
	WEND: "WEND", WHILE: "WHILE", WRITE: "WRITE", THEN: "THEN", ELSE: "ELSE",
	TO: "TO", STEP: "STEP", FN: "FN", AND: "AND", OR: "OR", NOT: "NOT",
	SLEEP: "SLEEP", PAINT: "PAINT", FPUTC: "FPUTC", FREAD: "FREAD",
	FWRITE: "FWRITE", FSEEK: "FSEEK",
}

// requiresSpace marks keywords whose printed form must be followed by
// a mandatory space: both take an unstructured rest-of-line payload
// (a comment, a DATA literal list) with no punctuation of its own to
// act as a natural word boundary, unlike every other keyword, whose
// argument either starts with `(`, a digit, or another delimiter.
var requiresSpace = map[Keyword]bool{
	REM:  true,
	DATA: true,
}

// byteToKeyword and keywordToByte are built once from names, mirroring
// the original's generated BYTE_TO_KEYWORD/KEYWORD_TO_BYTE tables.
var (
	byteToKeyword = map[byte]Keyword{}
	nameToKeyword = map[string]Keyword{}
)

func init() {
	for k := Keyword(0); k < count; k++ {
		byteToKeyword[byte(firstByte+int(k))] = k
		nameToKeyword[names[k]] = k
	}
}

// Byte returns the tokenized bytecode for k.
func (k Keyword) Byte() byte {
	return byte(firstByte + int(k))
}

// String returns the keyword's printed form, e.g. "PRINT" or "INKEY$".
func (k Keyword) String() string {
	if k < 0 || k >= count {
		return "?"
	}
	return names[k]
}

// RequiresTrailingSpace reports whether the detokenizer must emit a
// space immediately after k regardless of surrounding context.
func (k Keyword) RequiresTrailingSpace() bool {
	return requiresSpace[k]
}

// FromByte looks up the keyword assigned to a tokenized bytecode.
func FromByte(b byte) (Keyword, bool) {
	k, ok := byteToKeyword[b]
	return k, ok
}

// FromName looks up a keyword by its exact upper-case printed form
// (callers are responsible for upper-casing user input first).
func FromName(name string) (Keyword, bool) {
	k, ok := nameToKeyword[name]
	return k, ok
}

// IsKeywordByte reports whether b is a tokenized keyword bytecode.
func IsKeywordByte(b byte) bool {
	_, ok := byteToKeyword[b]
	return ok
}
