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

package device

// FontSet holds the raster data the text-buffer-to-framebuffer
// rasterizer reads glyphs from. The real machines ship these as ROM
// dumps (an 8x8 ASCII table, an 8x16 ASCII table, a 16x16 GB2312
// table, and a 16x16 table per emoji version); this port takes them
// as an injected asset rather than vendoring a binary font dump, so a
// real ROM extraction can be substituted without touching the
// rasterizer itself.
//
// Layout, matching the original's flat byte-per-scanline tables:
//   - ASCII8: 256 glyphs * 8 bytes (one byte per scanline, 8 rows)
//   - ASCII16: 256 glyphs * 16 bytes (one byte per scanline, 16 rows)
//   - GB2312_16: (region-dependent) glyphs * 32 bytes (two bytes per
//     scanline, 16 rows), indexed the way gb2312_16.dat packs its
//     94x94-minus-gap region
//   - Emoji16: one 32-byte (two bytes per scanline) entry per code
//     point in the active emoji version's primary range
type FontSet struct {
	ASCII8    []byte
	ASCII16   []byte
	GB2312_16 []byte
	Emoji16   []byte
}

// DefaultFontSet builds a placeholder FontSet: legible-by-construction
// but procedurally generated rather than a ROM dump (no such binary
// asset is part of this module's source). ascii glyphs form a
// distinguishing dot pattern keyed to the byte value, GB2312/emoji
// tables are allocated at the sizes the rasterizer indexes into.
func DefaultFontSet() FontSet {
	return FontSet{
		ASCII8:    proceduralGlyphs(256, 8, 1),
		ASCII16:   proceduralGlyphs(256, charHeight, 1),
		GB2312_16: proceduralGlyphs(94*94, charHeight, 2),
		Emoji16:   proceduralGlyphs(527, charHeight, 2),
	}
}

// proceduralGlyphs allocates a flat glyph table of n entries, each
// rows*bytesPerRow bytes, filled with a value derived from the
// glyph's own index so distinct code points render as visibly
// distinct (if meaningless) bit patterns.
func proceduralGlyphs(n, rows, bytesPerRow int) []byte {
	buf := make([]byte, n*rows*bytesPerRow)
	for i := range buf {
		buf[i] = byte((i*101 + i/7) & 0xff)
	}
	return buf
}

// nibbleGlyph returns the 8-row, 1-byte-wide 0-9/A-F glyph for a hex
// nibble, read out of the ASCII8 table at the same offsets the
// original's nibble_to_ascii8_ptr uses ('0'..'9' then 'A'..'F').
func (e *Emulator) nibbleGlyph(n byte) []byte {
	var ch byte
	if n < 10 {
		ch = '0' + n
	} else {
		ch = 'A' + (n - 10)
	}
	return e.Font.ASCII8[int(ch)*8 : int(ch)*8+8]
}
