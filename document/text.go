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

// Package document owns the editor's text representation (a UTF-16
// buffer matching the device's own code-unit addressing) and the
// bidirectional codec between it and the device's tokenized `.BAS`
// and plain `.TXT` file formats.
package document

import "unicode/utf16"

// Text is a UTF-16 code-unit buffer, the editor's native
// representation. Byte positions reported by diagnostics and edits
// are offsets into this slice, matching the device's own code-unit
// addressing rather than UTF-8 byte offsets.
type Text []uint16

// NewText converts a Go string to a Text buffer.
func NewText(s string) Text {
	return Text(utf16.Encode([]rune(s)))
}

// String converts t back to a Go string.
func (t Text) String() string {
	return string(utf16.Decode(t))
}

// PushRune appends r to t, encoding it as one or two UTF-16 code
// units as needed.
func (t *Text) PushRune(r rune) {
	if r1, r2 := utf16.EncodeRune(r); r1 != 0xfffd || r2 != 0xfffd {
		*t = append(*t, uint16(r1), uint16(r2))
		return
	}
	*t = append(*t, uint16(r))
}

// PushString appends every rune of s to t.
func (t *Text) PushString(s string) {
	for _, r := range s {
		t.PushRune(r)
	}
}

// Last returns the final code unit of t and true, or (0, false) if t
// is empty.
func (t Text) Last() (uint16, bool) {
	if len(t) == 0 {
		return 0, false
	}
	return t[len(t)-1], true
}
