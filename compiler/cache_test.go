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
	"testing"

	"github.com/arucil/gvbasic/parser"
)

func linesOf(t *testing.T, src string) []Line {
	t.Helper()
	results := parser.Parse(src)
	lines := make([]Line, len(results))
	for i, r := range results {
		lines[i] = Line{
			Text:  srcLine(src, i),
			Label: r.Line.Label,
			Stmts: r.Line.Stmts,
			Arena: r.Arena,
		}
	}
	return lines
}

func TestLineCacheReportsOnlyChangedLines(t *testing.T) {
	c := NewLineCache()
	src := "10 A=1\n20 B=2\n30 PRINT A+B\n"
	lines := linesOf(t, src)

	changed := c.Changed(lines)
	if len(changed) != 3 {
		t.Fatalf("first Changed: got %v, want all 3 lines reported", changed)
	}

	changed = c.Changed(lines)
	if len(changed) != 0 {
		t.Fatalf("second Changed on unmodified lines: got %v, want none", changed)
	}

	src2 := "10 A=1\n20 B=3\n30 PRINT A+B\n"
	lines2 := linesOf(t, src2)
	changed = c.Changed(lines2)
	if len(changed) != 1 || changed[0] != 1 {
		t.Fatalf("Changed after editing line 1: got %v, want [1]", changed)
	}
}

func TestLineCacheGrowAndShrink(t *testing.T) {
	c := NewLineCache()
	lines := linesOf(t, "10 A=1\n")
	c.Changed(lines)

	grown := linesOf(t, "10 A=1\n20 B=2\n")
	changed := c.Changed(grown)
	if len(changed) != 1 || changed[0] != 1 {
		t.Fatalf("Changed after appending a line: got %v, want [1]", changed)
	}

	shrunk := linesOf(t, "10 A=1\n")
	changed = c.Changed(shrunk)
	if len(changed) != 0 {
		t.Fatalf("Changed after truncating back to a known line: got %v, want none", changed)
	}
}

func TestLineCacheReset(t *testing.T) {
	c := NewLineCache()
	lines := linesOf(t, "10 A=1\n20 B=2\n")
	c.Changed(lines)
	c.Reset()
	changed := c.Changed(lines)
	if len(changed) != 2 {
		t.Fatalf("Changed after Reset: got %v, want all lines reported again", changed)
	}
}

func TestLineCacheDistinctKeysHashDifferently(t *testing.T) {
	a := NewLineCache()
	b := NewLineCache()
	lines := linesOf(t, "10 A=1\n")
	if a.digest(lines[0]) == b.digest(lines[0]) {
		// Not impossible by chance, but astronomically unlikely for
		// independently-seeded 128-bit keys; a collision here would
		// indicate NewLineCache isn't actually randomizing its key.
		t.Fatal("two freshly seeded caches hashed the same line identically")
	}
}
