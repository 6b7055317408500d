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

package charset

import "testing"

func TestFromStringASCIIRoundTrip(t *testing.T) {
	s, err := FromString("HELLO 123", V2)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.ToStringLossy(V2); got != "HELLO 123" {
		t.Fatalf("got %q", got)
	}
}

func TestFromStringGB2312RoundTrip(t *testing.T) {
	s, err := FromString("中文", V2)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 4 {
		t.Fatalf("expected two double-byte chars (4 bytes), got %d: % x", len(s), []byte(s))
	}
	if got := s.ToStringLossy(V2); got != "中文" {
		t.Fatalf("got %q", got)
	}
}

func TestFromStringTooLong(t *testing.T) {
	big := make([]rune, 256)
	for i := range big {
		big[i] = 'A'
	}
	_, err := FromString(string(big), V2)
	if _, ok := err.(ErrTooLong); !ok {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestToStringLossyUnknownTrailingByte(t *testing.T) {
	b := ByteString{0xa1}
	if got := b.ToStringLossy(V2); got != "�" {
		t.Fatalf("got %q", got)
	}
}

func TestPrintFormStripsEscapesAndStopsAtNUL(t *testing.T) {
	in := ByteString{'A', 0x1f, 0xfa, 0x46, 'B', 0, 'C'}
	got := in.PrintForm()
	want := ByteString{'A', 0xfa, 0x46, 'B'}
	if string(got) != string(want) {
		t.Fatalf("got % x, want % x", []byte(got), []byte(want))
	}
}

func TestAppend(t *testing.T) {
	a := ByteString("foo")
	b := ByteString("bar")
	if got := a.Append(b); string(got) != "foobar" {
		t.Fatalf("got %q", got)
	}
	if string(a) != "foo" {
		t.Fatal("Append must not mutate its receiver")
	}
}
