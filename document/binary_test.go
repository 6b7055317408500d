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

package document

import (
	"bytes"
	"testing"

	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/keyword"
)

func mustSaveBas(t *testing.T, text Text, version charset.Version, base uint16) []byte {
	t.Helper()
	b, err := SaveBas(text, version, base)
	if err != nil {
		t.Fatalf("SaveBas: %v", err)
	}
	return b
}

func TestSaveBasRoundTrip(t *testing.T) {
	src := "10 PRINT \"HELLO\"\n20 FOR I=1 TO 10\n30 NEXT I\n40 END\n"
	text := NewText(src)

	b := mustSaveBas(t, text, charset.V2, DefaultBaseAddr)

	doc, lerr := LoadBas(b, nil)
	if lerr != nil {
		t.Fatalf("LoadBas: %v", lerr)
	}
	if doc.BaseAddr != DefaultBaseAddr {
		t.Fatalf("BaseAddr = %#x, want %#x", doc.BaseAddr, DefaultBaseAddr)
	}

	b2 := mustSaveBas(t, doc.Text, doc.GuessedEmojiVersion, doc.BaseAddr)
	if !bytes.Equal(b, b2) {
		t.Fatalf("round trip mismatch:\n%x\n%x", b, b2)
	}
}

func TestSaveBasKeywordTokenization(t *testing.T) {
	text := NewText("10 GOTO 20\n20 GOSUB 30\n30 RETURN\n")
	b := mustSaveBas(t, text, charset.V2, DefaultBaseAddr)

	// Keyword bytes for GOTO/GOSUB/RETURN should appear, not their
	// ASCII spellings.
	k, ok := keyword.FromName("GOTO")
	if !ok {
		t.Fatal("GOTO missing from keyword table")
	}
	if !bytes.Contains(b, []byte{k.Byte()}) {
		t.Fatalf("expected tokenized GOTO byte in output: %x", b)
	}
}

func TestLoadTxtDefaultBaseAddr(t *testing.T) {
	doc, err := LoadTxt([]byte("10 PRINT 1\n"), nil)
	if err != nil {
		t.Fatalf("LoadTxt: %v", err)
	}
	if doc.BaseAddr != DefaultBaseAddr {
		t.Fatalf("BaseAddr = %#x, want default", doc.BaseAddr)
	}
}

func TestLoadBasCorruptHeader(t *testing.T) {
	_, err := LoadBas([]byte{1, 2, 3}, nil)
	if err == nil {
		t.Fatal("expected error for corrupt header")
	}
}

func TestSaveTxtIllegalCharacter(t *testing.T) {
	var text Text
	text.PushRune(0x0e01) // Thai, not GB2312, not in emoji PUA range
	_, err := SaveTxt(text, charset.V2)
	if err == nil {
		t.Fatal("expected illegal character error")
	}
}
