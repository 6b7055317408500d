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

package vm

import (
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/mbf5"
)

// formatNumberForStr renders n the way STR$ does: a leading space in
// place of a sign for non-negative values, no trailing space.
func formatNumberForStr(n mbf5.Number) string {
	s := n.String()
	if n.Sign() >= 0 {
		return " " + s
	}
	return s
}

// formatNumberForPrint renders n the way PRINT does: STR$'s form with
// a trailing space, so consecutive numeric PRINT items never touch.
func formatNumberForPrint(n mbf5.Number) charset.ByteString {
	return charset.ByteString(formatNumberForStr(n) + " ")
}

// quoteForWrite renders a string value the way WRITE does: surrounded
// by double quotes, with no internal escaping (WRITE never produces a
// string containing an embedded quote from a PRINT-form value, since
// ToByteString callers only ever hand it already-sanitized content).
func quoteForWrite(s charset.ByteString) charset.ByteString {
	out := make(charset.ByteString, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out
}

// formatNumberForWrite renders a number the way WRITE does: the plain
// decimal form with no leading/trailing padding, unlike PRINT.
func formatNumberForWrite(n mbf5.Number) charset.ByteString {
	return charset.ByteString(n.String())
}
