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
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/arucil/gvbasic/charset"
)

// EditKind distinguishes the two primitive edits a caller may apply to
// a document's text.
type EditKind int

const (
	Insert EditKind = iota
	Delete
)

// Edit is either an Insert at Pos of Str, or a Delete of Len code units
// starting at Pos. Pos and Len are UTF-16 code-unit offsets, matching
// the device's own addressing.
type Edit struct {
	Kind EditKind
	Pos  int
	Str  Text
	Len  int
}

// lineRange is a half-open [Start,End) code-unit span covering one
// source line, End exclusive of the line terminator.
type lineRange struct {
	Start, End int
}

// Editor owns a document's text buffer together with the line-offset
// index derived from it. ApplyEdit keeps both in sync; every other
// method operates on the resulting line structure.
type Editor struct {
	Text  Text
	lines []lineRange
}

// NewEditor wraps t in an Editor and builds its initial line index.
func NewEditor(t Text) *Editor {
	e := &Editor{Text: t}
	e.reindex()
	return e
}

func (e *Editor) reindex() {
	e.lines = e.lines[:0]
	start := 0
	for i, u := range e.Text {
		if u == '\n' {
			end := i
			if end > start && e.Text[end-1] == '\r' {
				end--
			}
			e.lines = append(e.lines, lineRange{start, end})
			start = i + 1
		}
	}
	e.lines = append(e.lines, lineRange{start, len(e.Text)})
}

// ApplyEdit splices an Insert or Delete into the buffer and
// reestablishes the line index. It returns the code-unit range that
// changed: every line previously overlapping it must be reparsed.
func (e *Editor) ApplyEdit(ed Edit) (start, end int, err error) {
	switch ed.Kind {
	case Insert:
		if ed.Pos < 0 || ed.Pos > len(e.Text) {
			return 0, 0, fmt.Errorf("插入位置越界：%d", ed.Pos)
		}
		buf := make(Text, 0, len(e.Text)+len(ed.Str))
		buf = append(buf, e.Text[:ed.Pos]...)
		buf = append(buf, ed.Str...)
		buf = append(buf, e.Text[ed.Pos:]...)
		e.Text = buf
		start, end = ed.Pos, ed.Pos+len(ed.Str)
	case Delete:
		if ed.Pos < 0 || ed.Len < 0 || ed.Pos+ed.Len > len(e.Text) {
			return 0, 0, fmt.Errorf("删除范围越界：%d+%d", ed.Pos, ed.Len)
		}
		buf := make(Text, 0, len(e.Text)-ed.Len)
		buf = append(buf, e.Text[:ed.Pos]...)
		buf = append(buf, e.Text[ed.Pos+ed.Len:]...)
		e.Text = buf
		start, end = ed.Pos, ed.Pos
	default:
		return 0, 0, fmt.Errorf("未知编辑类型：%d", ed.Kind)
	}
	e.reindex()
	return start, end, nil
}

// LineCount returns the number of lines in the buffer (always >= 1).
func (e *Editor) LineCount() int { return len(e.lines) }

// LineAt returns the index of the line containing code-unit offset
// pos, clamped to the last line.
func (e *Editor) LineAt(pos int) int {
	for i, l := range e.lines {
		if pos <= l.End || i == len(e.lines)-1 {
			return i
		}
	}
	return len(e.lines) - 1
}

// LineRange returns the [start,end) code-unit span of line i.
func (e *Editor) LineRange(i int) (start, end int) {
	return e.lines[i].Start, e.lines[i].End
}

// LineText returns the text of line i, not including its terminator.
func (e *Editor) LineText(i int) Text {
	return e.Text[e.lines[i].Start:e.lines[i].End]
}

func leadingLabel(line Text) (label int, rest int, ok bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, 0, false
	}
	n := 0
	for _, u := range line[:i] {
		n = n*10 + int(u-'0')
	}
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return n, i, true
}

// ReplaceText describes a single contiguous textual substitution,
// expressed in code-unit offsets against the buffer the edit was
// computed from.
type ReplaceText struct {
	Start, End int
	Str        string
}

// ReplaceChar is ReplaceText specialized to a single replacement
// character, used by SyncMachineName.
type ReplaceChar struct {
	Start, End int
	Ch         rune
}

// MachineNotFoundError reports that a document's leading `machine:`
// directive names a machine this implementation has no profile for.
type MachineNotFoundError struct{ Name string }

func (e *MachineNotFoundError) Error() string {
	return fmt.Sprintf("不存在机型 %s 的配置信息", e.Name)
}

// ErrMachineDirectiveNotFound is returned by SyncMachineName when the
// document carries no leading `machine:` directive to synchronize
// against.
var ErrMachineDirectiveNotFound = fmt.Errorf("文档没有 machine 声明")

func versionForMachineName(name string) (charset.Version, bool) {
	if name == charset.V1.DefaultMachineName() {
		return charset.V1, true
	}
	if name == charset.V2.DefaultMachineName() {
		return charset.V2, true
	}
	return 0, false
}

// machineDirective finds a leading `REM machine:NAME` directive in
// body (the first line with its label already stripped) and returns
// the declared name.
func machineDirective(body Text) (string, bool) {
	const prefix = "REM machine:"
	if len(body) < len(prefix) {
		return "", false
	}
	for i := 0; i < len(prefix); i++ {
		if body[i] != uint16(prefix[i]) {
			return "", false
		}
	}
	name := body[len(prefix):]
	end := len(name)
	for i, u := range name {
		if u == ' ' || u == '\t' {
			end = i
			break
		}
	}
	return name[:end].String(), true
}

// SyncMachineName scans the document's leading REM for a `machine:`
// directive. When the declared machine differs from current, the
// private-use emoji range is addressed by the same rune regardless of
// version (CharToCode/CodeToChar agree on index for every version), so
// no character needs to change to retarget the encoding; only the
// version tag used at save time changes. SyncMachineName therefore
// always returns a nil edit list on success; it exists to validate the
// directive and report the resolved target version.
func (e *Editor) SyncMachineName(current charset.Version) ([]ReplaceChar, charset.Version, error) {
	if e.LineCount() == 0 {
		return nil, current, ErrMachineDirectiveNotFound
	}
	line := e.LineText(0)
	_, rest, ok := leadingLabel(line)
	if !ok {
		return nil, current, ErrMachineDirectiveNotFound
	}
	if rest > len(line) {
		rest = len(line)
	}
	name, ok := machineDirective(line[rest:])
	if !ok {
		return nil, current, ErrMachineDirectiveNotFound
	}
	target, ok := versionForMachineName(name)
	if !ok {
		return nil, current, &MachineNotFoundError{Name: name}
	}
	return nil, target, nil
}

// LabelTarget selects which line add_label_edit infers a label for,
// relative to the line containing the caret.
type LabelTarget int

const (
	CurLine LabelTarget = iota
	PrevLine
	NextLine
)

// ErrAlreadyHasLabel is returned by AddLabelEdit when the target line
// already begins with a numeric label.
var ErrAlreadyHasLabel = fmt.Errorf("当前行已经有行号")

// ErrCannotInferLabel is returned by AddLabelEdit when neither a
// preceding nor a following labeled line exists to infer a gap from.
var ErrCannotInferLabel = fmt.Errorf("无法推测行号")

// AddLabelResult is the edit AddLabelEdit proposes, plus an optional
// caret offset the caller should jump to afterwards (just past the
// inserted label, ready for the user to type a statement).
type AddLabelResult struct {
	Edit  ReplaceText
	Goto  *int
	Label int
}

// AddLabelEdit infers a numeric label for the line identified by
// target relative to pos's line, and returns the text edit needed to
// insert it. The label is the midpoint between the neighboring lines'
// labels when both exist and leave room, else the single known
// neighbor's label plus or minus 10.
func (e *Editor) AddLabelEdit(target LabelTarget, pos int) (*AddLabelResult, error) {
	line := e.LineAt(pos)
	switch target {
	case PrevLine:
		line--
	case NextLine:
		line++
	}
	if line < 0 || line >= e.LineCount() {
		return nil, ErrCannotInferLabel
	}
	if _, _, ok := leadingLabel(e.LineText(line)); ok {
		return nil, ErrAlreadyHasLabel
	}

	prevLabel, havePrev := -1, false
	for i := line - 1; i >= 0; i-- {
		if l, _, ok := leadingLabel(e.LineText(i)); ok {
			prevLabel, havePrev = l, true
			break
		}
	}
	nextLabel, haveNext := -1, false
	for i := line + 1; i < e.LineCount(); i++ {
		if l, _, ok := leadingLabel(e.LineText(i)); ok {
			nextLabel, haveNext = l, true
			break
		}
	}

	var label int
	switch {
	case havePrev && haveNext:
		if nextLabel-prevLabel < 2 {
			return nil, ErrCannotInferLabel
		}
		label = prevLabel + (nextLabel-prevLabel)/2
	case havePrev:
		label = prevLabel + 10
		if label > 9999 {
			return nil, ErrCannotInferLabel
		}
	case haveNext:
		label = nextLabel - 10
		if label < 0 {
			return nil, ErrCannotInferLabel
		}
	default:
		label = 10
	}

	start, _ := e.LineRange(line)
	str := strconv.Itoa(label) + " "
	gotoPos := start + len([]rune(str))
	return &AddLabelResult{
		Edit:  ReplaceText{Start: start, End: start, Str: str},
		Goto:  &gotoPos,
		Label: label,
	}, nil
}

// DuplicateLabelError reports that two or more lines in the document
// declare the same numeric label, which leaves GOTO/GOSUB resolution
// and RelabelEdits no principled way to pick one.
type DuplicateLabelError struct{ Label int }

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("行号 %d 重复出现", e.Label)
}

// Labels returns every numeric label this document's lines declare,
// in ascending order.
func (e *Editor) Labels() []int {
	var labels []int
	for i := 0; i < e.LineCount(); i++ {
		if l, _, ok := leadingLabel(e.LineText(i)); ok {
			labels = append(labels, l)
		}
	}
	slices.Sort(labels)
	return labels
}

// CheckDuplicateLabels reports the first label that appears more than
// once among the document's lines.
func (e *Editor) CheckDuplicateLabels() error {
	labels := e.Labels()
	for i := 1; i < len(labels); i++ {
		if labels[i] == labels[i-1] {
			return &DuplicateLabelError{Label: labels[i]}
		}
	}
	return nil
}

// LabelOverflowError reports that relabeling would push some line's
// new label past the maximum representable value (9999).
type LabelOverflowError struct{ Label int }

func (e *LabelOverflowError) Error() string {
	return fmt.Sprintf("行号超出范围：%d", e.Label)
}

// LabelNotFoundError reports that a GOTO/GOSUB/RESTORE/THEN reference
// points to a label no line in the document declares.
type LabelNotFoundError struct {
	Start, End int
	Label      int
}

func (e *LabelNotFoundError) Error() string {
	return fmt.Sprintf("未定义的行号 %d", e.Label)
}

var relabelKeywords = []string{"GOTO", "GOSUB", "RESTORE", "THEN"}

func matchKeywordAt(line Text, i int, kw string) bool {
	if i+len(kw) > len(line) {
		return false
	}
	for j := 0; j < len(kw); j++ {
		if line[i+j] != uint16(kw[j]) {
			return false
		}
	}
	if i+len(kw) < len(line) && isUTF16AsciiAlnum(line[i+len(kw)]) {
		return false
	}
	if i > 0 && isUTF16AsciiAlnum(line[i-1]) {
		return false
	}
	return true
}

// RelabelEdits renumbers every line sequentially starting at start in
// steps of inc, and returns the ReplaceText edits needed to rewrite
// both the line labels themselves and every GOTO, GOSUB, RESTORE, and
// THEN-label reference elsewhere in the document.
func (e *Editor) RelabelEdits(start, inc int) ([]ReplaceText, error) {
	oldToNew := map[int]int{}
	newLabel := start
	for i := 0; i < e.LineCount(); i++ {
		if old, _, ok := leadingLabel(e.LineText(i)); ok {
			if newLabel > 9999 {
				return nil, &LabelOverflowError{Label: newLabel}
			}
			oldToNew[old] = newLabel
			newLabel += inc
		}
	}

	var edits []ReplaceText
	for i := 0; i < e.LineCount(); i++ {
		lineStart, _ := e.LineRange(i)
		line := e.LineText(i)
		if old, labelEnd, ok := leadingLabel(line); ok {
			newL := oldToNew[old]
			edits = append(edits, ReplaceText{
				Start: lineStart,
				End:   lineStart + labelEnd,
				Str:   strconv.Itoa(newL) + " ",
			})
		}

		inString := false
		j := 0
		for j < len(line) {
			switch {
			case line[j] == '"':
				inString = !inString
				j++
			case inString:
				j++
			case matchKeywordAt(line, j, "REM"):
				j = len(line)
			default:
				matched := ""
				for _, kw := range relabelKeywords {
					if matchKeywordAt(line, j, kw) {
						matched = kw
						break
					}
				}
				if matched == "" {
					j++
					continue
				}
				j += len(matched)
				for j < len(line) {
					for j < len(line) && line[j] == ' ' {
						j++
					}
					numStart := j
					for j < len(line) && line[j] >= '0' && line[j] <= '9' {
						j++
					}
					if j == numStart {
						break
					}
					oldVal := 0
					for _, u := range line[numStart:j] {
						oldVal = oldVal*10 + int(u-'0')
					}
					newVal, ok := oldToNew[oldVal]
					if !ok {
						return nil, &LabelNotFoundError{
							Start: lineStart + numStart,
							End:   lineStart + j,
							Label: oldVal,
						}
					}
					if newVal != oldVal {
						edits = append(edits, ReplaceText{
							Start: lineStart + numStart,
							End:   lineStart + j,
							Str:   strconv.Itoa(newVal),
						})
					}
					for j < len(line) && line[j] == ' ' {
						j++
					}
					if j < len(line) && line[j] == ',' {
						j++
						continue
					}
					break
				}
			}
		}
	}
	return edits, nil
}
