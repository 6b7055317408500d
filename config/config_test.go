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

package config

import (
	"testing"

	"github.com/arucil/gvbasic/charset"
)

const sample = `
CX-990:
  emojiVersion: V2
  columns: 20
  rows: 5
  graphicsBaseAddr: 16384
  textBufferAddr: 28672
  keyBufferAddr: 120
  sleepUnitMillis: 10
CX-893:
  emojiVersion: V1
  secureFiles: true
  graphicsBaseAddr: 16384
  textBufferAddr: 28672
  keyBufferAddr: 120
`

func TestParseAndLookup(t *testing.T) {
	reg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, err := reg.Lookup("CX-990")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.EmojiVersion != charset.V2 {
		t.Fatalf("EmojiVersion = %v, want V2", p.EmojiVersion)
	}
	if p.Columns != 20 || p.Rows != 5 {
		t.Fatalf("geometry = %dx%d, want 20x5", p.Columns, p.Rows)
	}
	if p.SleepUnit().Milliseconds() != 10 {
		t.Fatalf("SleepUnit = %v, want 10ms", p.SleepUnit())
	}
}

func TestLookupMissingMachine(t *testing.T) {
	reg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = reg.Lookup("does-not-exist")
	if err == nil {
		t.Fatalf("expected MachinePropNotFoundError")
	}
	if _, ok := err.(MachinePropNotFoundError); !ok {
		t.Fatalf("err = %T, want MachinePropNotFoundError", err)
	}
}

func TestRowsColumnsDefaultWhenUnset(t *testing.T) {
	reg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, err := reg.Lookup("CX-893")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Columns != 20 || p.Rows != 5 {
		t.Fatalf("default geometry = %dx%d, want 20x5", p.Columns, p.Rows)
	}
	if !p.SecureFiles {
		t.Fatalf("expected SecureFiles true for CX-893")
	}
}

func TestParseUnknownEmojiVersion(t *testing.T) {
	_, err := Parse([]byte("M:\n  emojiVersion: V9\n"))
	if err == nil {
		t.Fatalf("expected an error for an unknown emoji version")
	}
}

func TestDefaultProps(t *testing.T) {
	p := DefaultProps()
	if p.EmojiVersion != charset.V2 {
		t.Fatalf("DefaultProps EmojiVersion = %v, want V2", p.EmojiVersion)
	}
}
