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
	"testing"

	"github.com/arucil/gvbasic/charset"
)

func TestApplyEditInsertDelete(t *testing.T) {
	ed := NewEditor(NewText("10 PRINT 1\n20 END\n"))
	var ins Text
	ins.PushString("X")
	if _, _, err := ed.ApplyEdit(Edit{Kind: Insert, Pos: 3, Str: ins}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := ed.Text.String(); got[:4] != "10 X" {
		t.Fatalf("after insert: %q", got)
	}
	if _, _, err := ed.ApplyEdit(Edit{Kind: Delete, Pos: 3, Len: 1}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := ed.Text.String(); got[:3] != "10 " {
		t.Fatalf("after delete: %q", got)
	}
}

func TestLineIndex(t *testing.T) {
	ed := NewEditor(NewText("10 PRINT 1\n20 END\n30 STOP"))
	if n := ed.LineCount(); n != 3 {
		t.Fatalf("LineCount = %d, want 3", n)
	}
	if ed.LineText(0).String() != "10 PRINT 1" {
		t.Fatalf("line 0 = %q", ed.LineText(0).String())
	}
	if ed.LineText(2).String() != "30 STOP" {
		t.Fatalf("line 2 = %q", ed.LineText(2).String())
	}
}

func TestAddLabelEditMidpoint(t *testing.T) {
	ed := NewEditor(NewText("10 PRINT 1\nEND\n30 STOP\n"))
	result, err := ed.AddLabelEdit(CurLine, ed.lines[1].Start)
	if err != nil {
		t.Fatalf("AddLabelEdit: %v", err)
	}
	if result.Label != 20 {
		t.Fatalf("Label = %d, want 20", result.Label)
	}
}

func TestAddLabelEditAlreadyHasLabel(t *testing.T) {
	ed := NewEditor(NewText("10 PRINT 1\n"))
	_, err := ed.AddLabelEdit(CurLine, 0)
	if err != ErrAlreadyHasLabel {
		t.Fatalf("err = %v, want ErrAlreadyHasLabel", err)
	}
}

func TestAddLabelEditCannotInfer(t *testing.T) {
	ed := NewEditor(NewText("PRINT 1\n"))
	_, err := ed.AddLabelEdit(CurLine, 0)
	if err != nil {
		t.Fatalf("unexpected error for sole unlabeled line: %v", err)
	}
}

func TestRelabelEditsRewritesReferences(t *testing.T) {
	ed := NewEditor(NewText("10 GOTO 30\n20 PRINT 1\n30 GOSUB 10\n"))
	edits, err := ed.RelabelEdits(100, 10)
	if err != nil {
		t.Fatalf("RelabelEdits: %v", err)
	}
	if len(edits) == 0 {
		t.Fatal("expected edits")
	}
	found100, found120 := false, false
	for _, e := range edits {
		if e.Str == "100 " {
			found100 = true
		}
		if e.Str == "120" {
			found120 = true
		}
	}
	if !found100 || !found120 {
		t.Fatalf("missing expected relabel edits: %+v", edits)
	}
}

func TestLabelsSorted(t *testing.T) {
	ed := NewEditor(NewText("30 END\n10 PRINT 1\n20 PRINT 2\n"))
	labels := ed.Labels()
	want := []int{10, 20, 30}
	if len(labels) != len(want) {
		t.Fatalf("Labels() = %v, want %v", labels, want)
	}
	for i, l := range labels {
		if l != want[i] {
			t.Fatalf("Labels() = %v, want %v", labels, want)
		}
	}
}

func TestCheckDuplicateLabels(t *testing.T) {
	ed := NewEditor(NewText("10 PRINT 1\n10 PRINT 2\n"))
	err := ed.CheckDuplicateLabels()
	dup, ok := err.(*DuplicateLabelError)
	if !ok {
		t.Fatalf("err = %v, want *DuplicateLabelError", err)
	}
	if dup.Label != 10 {
		t.Fatalf("dup.Label = %d, want 10", dup.Label)
	}

	clean := NewEditor(NewText("10 PRINT 1\n20 PRINT 2\n"))
	if err := clean.CheckDuplicateLabels(); err != nil {
		t.Fatalf("unexpected error on distinct labels: %v", err)
	}
}

func TestRelabelEditsLabelNotFound(t *testing.T) {
	ed := NewEditor(NewText("10 GOTO 999\n"))
	_, err := ed.RelabelEdits(10, 10)
	if _, ok := err.(*LabelNotFoundError); !ok {
		t.Fatalf("err = %v, want *LabelNotFoundError", err)
	}
}

func TestRelabelEditsOverflow(t *testing.T) {
	ed := NewEditor(NewText("10 END\n20 END\n"))
	_, err := ed.RelabelEdits(9999, 10)
	if _, ok := err.(*LabelOverflowError); !ok {
		t.Fatalf("err = %v, want *LabelOverflowError", err)
	}
}

func TestSyncMachineNameNotFound(t *testing.T) {
	ed := NewEditor(NewText("10 PRINT 1\n"))
	_, _, err := ed.SyncMachineName(charset.V2)
	if err != ErrMachineDirectiveNotFound {
		t.Fatalf("err = %v, want ErrMachineDirectiveNotFound", err)
	}
}

func TestSyncMachineNameResolves(t *testing.T) {
	ed := NewEditor(NewText("10 REM machine:CX-893\n20 END\n"))
	edits, target, err := ed.SyncMachineName(charset.V2)
	if err != nil {
		t.Fatalf("SyncMachineName: %v", err)
	}
	if target != charset.V1 {
		t.Fatalf("target = %v, want V1", target)
	}
	if edits != nil {
		t.Fatalf("edits = %v, want nil", edits)
	}
}

func TestSyncMachineNameUnknown(t *testing.T) {
	ed := NewEditor(NewText("10 REM machine:UNKNOWN\n"))
	_, _, err := ed.SyncMachineName(charset.V2)
	if _, ok := err.(*MachineNotFoundError); !ok {
		t.Fatalf("err = %v, want *MachineNotFoundError", err)
	}
}
