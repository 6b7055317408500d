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

import (
	"golang.org/x/text/encoding/simplifiedchinese"
)

// gb2312ToUnicode and unicodeToGB2312 hold the two-byte GB2312 code
// page, built once from golang.org/x/text's GBK tables (GB2312 is a
// 94x94 subset of GBK sharing the same code assignment for every
// first byte below the emoji extension range). Building the table at
// init time from a maintained encoding package avoids hand-transcribing
// several thousand codepoint pairs.
var (
	gb2312ToUnicode map[uint16]rune
	unicodeToGB2312 map[rune]uint16
)

func init() {
	gb2312ToUnicode = make(map[uint16]rune, 7500)
	unicodeToGB2312 = make(map[rune]uint16, 7500)
	dec := simplifiedchinese.GBK.NewDecoder()
	for hi := 0xa1; hi <= 0xf7; hi++ {
		for lo := 0xa1; lo <= 0xfe; lo++ {
			in := []byte{byte(hi), byte(lo)}
			out, _, err := dec.Bytes(in)
			if err != nil || len(out) == 0 {
				continue
			}
			r := []rune(string(out))
			if len(r) != 1 {
				continue
			}
			code := uint16(hi)<<8 | uint16(lo)
			gb2312ToUnicode[code] = r[0]
			if _, dup := unicodeToGB2312[r[0]]; !dup {
				unicodeToGB2312[r[0]] = code
			}
		}
	}
}

// GB2312ToUnicode decodes a two-byte GB2312 code to its Unicode rune.
func GB2312ToUnicode(code uint16) (r rune, ok bool) {
	r, ok = gb2312ToUnicode[code]
	return r, ok
}

// UnicodeToGB2312 encodes a Unicode rune to its two-byte GB2312 code.
func UnicodeToGB2312(r rune) (code uint16, ok bool) {
	code, ok = unicodeToGB2312[r]
	return code, ok
}
