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

// Package compiler walks a parsed program's statement trees and emits
// the instruction sequence, DATA pool, and symbol table a bytecode.Program
// holds, type-checking every expression along the way.
package compiler

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/mbf5"
)

// Severity distinguishes a fatal error from an advisory warning.
// Out-of-order line numbers and an unmatched WHILE are reported as
// errors.
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

// Line is one source line's parse result, bundled with the raw text
// the compiler needs to re-read identifier and literal spans from
// (the parser stores only byte ranges into this text, not copies).
type Line struct {
	Text  string
	Label *ast.LabelRef
	Stmts []ast.StmtID
	Arena *ast.Arena
}

// Type is an expression's compile-time type. Error absorbs every
// operation it participates in and never raises a second diagnostic,
// so one malformed subexpression does not cascade into a wall of
// errors for everything built on top of it.
type Type int

const (
	TypeNumber Type = iota
	TypeString
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeNumber:
		return "数值"
	case TypeString:
		return "字符串"
	default:
		return "?"
	}
}

func typeEq(a, b Type) bool {
	if a == TypeError || b == TypeError {
		return true
	}
	return a == b
}

// Compile compiles every line in order into a single bytecode.Program.
// version selects the character encoding string literals and DATA
// values are re-encoded with.
func Compile(lines []Line, version charset.Version) (*bytecode.Program, []Diagnostic) {
	c := &compileState{
		prog:    bytecode.NewProgram(),
		version: version,
	}
	c.compile(lines)
	c.resolveBranches()
	c.patchWhileLoops()
	c.convertForLoopsToSleep()
	c.prog.Emit(bytecode.Instr{Kind: bytecode.End})
	// resolveBranches appends undefined-label errors after every
	// per-statement diagnostic already collected in source order, so
	// the combined list needs re-sorting by position for a diagnostics
	// dump (or an editor's squiggly-underline pass) to read sanely.
	slices.SortFunc(c.diagnostics, func(a, b Diagnostic) int {
		return a.Range.Start - b.Range.Start
	})
	return c.prog, c.diagnostics
}

type branchPatch struct {
	at    bytecode.Addr
	label int
	r     ast.Range
}

type switchPatch struct {
	at     bytecode.Addr
	index  int
	label  int
	r      ast.Range
}

type restorePatch struct {
	at    bytecode.Addr
	label int
	r     ast.Range
}

type compileState struct {
	prog        *bytecode.Program
	version     charset.Version
	diagnostics []Diagnostic

	line *Line

	branches  []branchPatch
	switches  []switchPatch
	restores  []restorePatch
	lineData  map[int]bytecode.DatumIndex // label -> datum pool index at the start of that line
}

func (c *compileState) addError(r ast.Range, msg string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Severity: SeverityError, Range: r, Message: msg})
}

func (c *compileState) addWarning(r ast.Range, msg string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Severity: SeverityWarning, Range: r, Message: msg})
}

func (c *compileState) compile(lines []Line) {
	c.lineData = make(map[int]bytecode.DatumIndex)
	lastLabel := -1
	for i := range lines {
		line := &lines[i]
		c.line = line
		if line.Label != nil {
			label := int(line.Label.Label)
			if label > lastLabel {
				c.prog.StartAddrs[label] = bytecode.Addr(len(c.prog.Instrs))
				c.lineData[label] = bytecode.DatumIndex(len(c.prog.Data))
				lastLabel = label
			} else {
				c.addError(line.Label.Range, "行号必须递增")
			}
		}
		for _, stmt := range line.Stmts {
			c.compileStmt(stmt)
		}
	}
}

func (c *compileState) text(r ast.Range) string {
	return c.line.Text[r.Start:r.End]
}

// resolveBranches patches every GoTo/GoSub/Switch/RestoreDataPtr
// target against the label table built during compile, reporting an
// "undefined line number" diagnostic for anything left dangling.
func (c *compileState) resolveBranches() {
	for _, b := range c.branches {
		if addr, ok := c.prog.StartAddrs[b.label]; ok {
			c.prog.Patch(b.at, addr)
		} else {
			c.addError(b.r, undefinedLineMsg(b.label))
		}
	}
	for _, s := range c.switches {
		if addr, ok := c.prog.StartAddrs[s.label]; ok {
			c.prog.Instrs[s.at].Labels[s.index] = addr
		} else {
			c.addError(s.r, undefinedLineMsg(s.label))
		}
	}
	for _, rp := range c.restores {
		if idx, ok := c.lineData[rp.label]; ok {
			c.prog.Instrs[rp.at].Datum = idx
		} else {
			c.addError(rp.r, undefinedLineMsg(rp.label))
		}
	}
}

func undefinedLineMsg(label int) string {
	return "未定义的行号 " + strconv.Itoa(label)
}

// patchWhileLoops resolves every WhileLoop's end address to its
// matching WEND in a single reverse pass: the innermost WHILE always
// pairs with the nearest WEND that follows it, so a stack populated
// walking backward naturally pairs nested loops correctly without any
// bookkeeping during the forward compile pass.
func (c *compileState) patchWhileLoops() {
	var wendStack []bytecode.Addr
	for i := len(c.prog.Instrs) - 1; i >= 0; i-- {
		switch c.prog.Instrs[i].Kind {
		case bytecode.Wend:
			wendStack = append(wendStack, bytecode.Addr(i))
		case bytecode.WhileLoop:
			if len(wendStack) == 0 {
				c.addError(c.prog.Instrs[i].Range, "WHILE 语句没有对应的 WEND 语句")
				continue
			}
			end := wendStack[len(wendStack)-1]
			wendStack = wendStack[:len(wendStack)-1]
			c.prog.Instrs[i].Addr = end
		}
	}
}

// convertForLoopsToSleep applies the one compiler optimization this
// port performs: a FOR/NEXT pair whose bounds are compile-time
// constants and whose body is empty does nothing but idle for a fixed
// number of iterations, so it is rewritten into a single Sleep whose
// duration covers all of them instead of single-stepping the VM
// through an empty loop body iteration by iteration.
func (c *compileState) convertForLoopsToSleep() {
	code := c.prog.Instrs
	for i := 0; i < len(code); i++ {
		if code[i].Kind != bytecode.ForLoop {
			continue
		}
		if i+1 >= len(code) || code[i+1].Kind != bytecode.NextFor {
			continue
		}
		if code[i+1].HasVar && code[i+1].Sym != code[i].Sym {
			continue
		}
		if i < 2 {
			continue
		}
		step := mbf5.FromInt(1)
		j := i - 1
		if code[i].HasStep {
			if i < 3 {
				continue
			}
			if code[j].Kind != bytecode.PushNum || code[j].Num.Sign() <= 0 {
				continue
			}
			step = code[j].Num
			j--
		}
		if j < 1 {
			continue
		}
		endInstr, startInstr := code[j], code[j-1]
		if endInstr.Kind != bytecode.PushNum || startInstr.Kind != bytecode.PushNum {
			continue
		}
		start, end := startInstr.Num, endInstr.Num
		okBounds := end.Sign() > 0 && (start.IsZero() || start == mbf5.FromInt(1))
		if !okBounds {
			continue
		}
		steps := (end.Float64() - start.Float64()) / step.Float64()
		n, err := mbf5.FromFloat64(ceil(steps))
		if err != nil {
			continue
		}
		code[i-1].Kind = bytecode.NoOp
		code[j-1].Kind = bytecode.NoOp
		code[j].Kind = bytecode.PushNum
		code[j].Num = n
		code[i].Kind = bytecode.Sleep
		code[i+1].Kind = bytecode.NoOp
	}
}

func ceil(f float64) float64 {
	i := float64(int64(f))
	if f > i {
		return i + 1
	}
	return i
}

// compileSym interns the identifier spelled out at r and classifies
// it Number or String by its trailing sigil.
func (c *compileState) compileSym(r ast.Range) (bytecode.Symbol, Type) {
	name := strings.ToUpper(c.text(r))
	ty := TypeNumber
	if strings.HasSuffix(name, "$") {
		ty = TypeString
	}
	return c.prog.Interner.Intern(name), ty
}
