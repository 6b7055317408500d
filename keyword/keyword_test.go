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

package keyword

import "testing"

func TestByteRoundTrip(t *testing.T) {
	for k := Keyword(0); k < count; k++ {
		b := k.Byte()
		if b < 0x80 {
			t.Fatalf("%s: byte %#02x below 0x80", k, b)
		}
		got, ok := FromByte(b)
		if !ok || got != k {
			t.Fatalf("FromByte(%#02x) = (%v, %v), want (%v, true)", b, got, ok, k)
		}
	}
}

func TestNameRoundTrip(t *testing.T) {
	for k := Keyword(0); k < count; k++ {
		got, ok := FromName(k.String())
		if !ok || got != k {
			t.Fatalf("FromName(%q) = (%v, %v), want (%v, true)", k.String(), got, ok, k)
		}
	}
}

func TestNoDuplicateBytes(t *testing.T) {
	seen := map[byte]Keyword{}
	for k := Keyword(0); k < count; k++ {
		b := k.Byte()
		if prev, ok := seen[b]; ok {
			t.Fatalf("byte %#02x assigned to both %s and %s", b, prev, k)
		}
		seen[b] = k
	}
}

func TestRequiresTrailingSpace(t *testing.T) {
	if !REM.RequiresTrailingSpace() {
		t.Fatal("REM should require a trailing space")
	}
	if !DATA.RequiresTrailingSpace() {
		t.Fatal("DATA should require a trailing space")
	}
	if PRINT.RequiresTrailingSpace() {
		t.Fatal("PRINT should not require a trailing space")
	}
}

func TestSysFuncArity(t *testing.T) {
	if a := MID.Arity(); a.Min != 2 || a.Max != 3 {
		t.Fatalf("MID$ arity = %+v, want {2,3}", a)
	}
	if a := RND.Arity(); a.Min != 0 || a.Max != 1 {
		t.Fatalf("RND arity = %+v, want {0,1}", a)
	}
	f, ok := SysFuncFromName("LEFT$")
	if !ok || f != LEFT {
		t.Fatalf("SysFuncFromName(LEFT$) = (%v,%v)", f, ok)
	}
}
