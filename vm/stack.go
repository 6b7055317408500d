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
	"bytes"
	"strconv"
	"strings"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/device"
	"github.com/arucil/gvbasic/mbf5"
)

// push, pop and friends manage the value stack expressions are
// evaluated against; every PushXxx/exec* helper below assumes the
// compiler left it balanced, so pop never has to handle underflow.

func (m *Machine) push(tv bytecode.TmpValue) {
	m.vstk = append(m.vstk, tv)
}

func (m *Machine) pop() bytecode.TmpValue {
	n := len(m.vstk)
	tv := m.vstk[n-1]
	m.vstk = m.vstk[:n-1]
	return tv
}

// popValue is pop under the name Assign's operand reads by.
func (m *Machine) popValue() bytecode.TmpValue {
	return m.pop()
}

func (m *Machine) pushNumber(n mbf5.Number) {
	m.push(bytecode.TmpValue{Kind: bytecode.TmpValueNumber, Number: n})
}

func (m *Machine) pushString(s charset.ByteString) {
	m.push(bytecode.TmpValue{Kind: bytecode.TmpValueString, String: s})
}

func (m *Machine) pushLValueRef(lv bytecode.TmpLValue) {
	m.push(bytecode.TmpValue{Kind: bytecode.TmpValueLValue, LValue: lv})
}

func (m *Machine) popNumber(r ast.Range) (mbf5.Number, error) {
	tv := m.pop()
	if tv.Kind != bytecode.TmpValueNumber {
		return mbf5.Zero, runtimeErrorf(r, "表达式类型错误，需要数值类型")
	}
	return tv.Number, nil
}

func (m *Machine) popString(r ast.Range) (charset.ByteString, error) {
	tv := m.pop()
	if tv.Kind != bytecode.TmpValueString {
		return nil, runtimeErrorf(r, "表达式类型错误，需要字符串类型")
	}
	return tv.String, nil
}

func (m *Machine) popLValue(r ast.Range) (bytecode.TmpLValue, error) {
	tv := m.pop()
	if tv.Kind != bytecode.TmpValueLValue {
		return bytecode.TmpLValue{}, runtimeErrorf(r, "内部错误：栈顶不是左值")
	}
	return tv.LValue, nil
}

// tmpValueOf lifts a stored Value onto the TmpValue representation the
// value stack deals in.
func tmpValueOf(v bytecode.Value) bytecode.TmpValue {
	switch v.Kind {
	case bytecode.ValueString:
		return bytecode.TmpValue{Kind: bytecode.TmpValueString, String: v.String}
	case bytecode.ValueInteger:
		return bytecode.TmpValue{Kind: bytecode.TmpValueNumber, Number: mbf5.FromInt(int(v.Integer))}
	default:
		return bytecode.TmpValue{Kind: bytecode.TmpValueNumber, Number: v.Number}
	}
}

func (m *Machine) readVar(sym bytecode.Symbol) bytecode.Value {
	v, ok := m.vars[sym]
	if !ok {
		return m.zeroValue(sym)
	}
	return v
}

// getLValue reads the current contents an lvalue reference names.
func (m *Machine) getLValue(lv bytecode.TmpLValue) bytecode.Value {
	if lv.Kind == bytecode.TmpLValueVar {
		return m.readVar(lv.Name)
	}
	a, ok := m.arrays[lv.Name]
	if !ok || lv.Offset >= len(a.Data) {
		return m.zeroValue(lv.Name)
	}
	return a.Data[lv.Offset]
}

// setLValue writes v into the slot an lvalue reference names.
func (m *Machine) setLValue(lv bytecode.TmpLValue, v bytecode.Value) {
	if lv.Kind == bytecode.TmpLValueVar {
		m.vars[lv.Name] = v
		return
	}
	if a, ok := m.arrays[lv.Name]; ok && lv.Offset < len(a.Data) {
		a.Data[lv.Offset] = v
	}
}

// resolveIndex pops arity index expressions (pushed by the compiler in
// source order, so they sit on the stack oldest-first) and flattens
// them against sym's array, implicitly allocating it if this is its
// first use.
func (m *Machine) resolveIndex(sym bytecode.Symbol, arity int, r ast.Range) (*Array, int, error) {
	indices := make([]int, arity)
	for i := arity - 1; i >= 0; i-- {
		n, e := m.popNumber(r)
		if e != nil {
			return nil, 0, e
		}
		indices[i] = n.Int()
	}
	a := m.array(sym, arity)
	off, ok := a.offset(indices)
	if !ok {
		return nil, 0, runtimeErrorf(r, "数组下标越界")
	}
	return a, off, nil
}

// popOrMakeLValue builds the TmpLValue a PushLValue instruction
// addresses: a bare variable when arity is 0, or an array slot
// resolved against index expressions already sitting on the stack.
func (m *Machine) popOrMakeLValue(sym bytecode.Symbol, arity int, r ast.Range) (bytecode.TmpLValue, error) {
	if arity == 0 {
		return bytecode.TmpLValue{Kind: bytecode.TmpLValueVar, Name: sym}, nil
	}
	_, off, e := m.resolveIndex(sym, arity, r)
	if e != nil {
		return bytecode.TmpLValue{}, e
	}
	return bytecode.TmpLValue{Kind: bytecode.TmpLValueArray, Name: sym, Offset: off}, nil
}

// popSub pops the nearest GOSUB frame off the call stack, skipping
// past (and discarding) any FOR/WHILE frames opened inside the
// subroutine and never closed before it returned.
func (m *Machine) popSub() (bytecode.Addr, error) {
	n := len(m.stack)
	for n > 0 && m.stack[n-1].Kind != bytecode.StackRecordSub {
		n--
	}
	if n == 0 {
		return 0, &RuntimeError{Message: "RETURN 没有对应的 GOSUB"}
	}
	addr := m.stack[n-1].NextAddr
	m.stack = m.stack[:n-1]
	return addr, nil
}

func boolToNumber(b bool) mbf5.Number {
	if b {
		return mbf5.FromInt(-1)
	}
	return mbf5.Zero
}

// execCompare implements the six relational operators. A string
// operand is only ever matched against another string; the compiler
// already rejects mixed-type comparisons, so a mismatch here means an
// internal miscompilation, not a user error.
func (m *Machine) execCompare(kind bytecode.InstrKind, r ast.Range) error {
	rtv := m.pop()
	ltv := m.pop()
	var cmp int
	switch {
	case ltv.Kind == bytecode.TmpValueString && rtv.Kind == bytecode.TmpValueString:
		cmp = bytes.Compare(ltv.String, rtv.String)
	case ltv.Kind == bytecode.TmpValueNumber && rtv.Kind == bytecode.TmpValueNumber:
		cmp = mbf5.Cmp(ltv.Number, rtv.Number)
	default:
		return runtimeErrorf(r, "表达式类型错误")
	}
	var result bool
	switch kind {
	case bytecode.Eq:
		result = cmp == 0
	case bytecode.Ne:
		result = cmp != 0
	case bytecode.Gt:
		result = cmp > 0
	case bytecode.Lt:
		result = cmp < 0
	case bytecode.Ge:
		result = cmp >= 0
	case bytecode.Le:
		result = cmp <= 0
	}
	m.pushNumber(boolToNumber(result))
	return nil
}

// execArith implements +, -, *, /, ^. Add on two strings concatenates
// instead, since the compiler emits the same Add instruction for
// numeric and string `+` alike.
func (m *Machine) execArith(kind bytecode.InstrKind, r ast.Range) error {
	rtv := m.pop()
	ltv := m.pop()
	if kind == bytecode.Add && ltv.Kind == bytecode.TmpValueString {
		if rtv.Kind != bytecode.TmpValueString {
			return runtimeErrorf(r, "表达式类型错误")
		}
		combined := ltv.String.Append(rtv.String)
		if len(combined) > charset.MaxLen {
			return runtimeErrorf(r, "%s", (charset.ErrTooLong{}).Error())
		}
		m.pushString(combined)
		return nil
	}
	if ltv.Kind != bytecode.TmpValueNumber || rtv.Kind != bytecode.TmpValueNumber {
		return runtimeErrorf(r, "表达式类型错误")
	}
	var res mbf5.Number
	var err error
	switch kind {
	case bytecode.Add:
		res, err = mbf5.Add(ltv.Number, rtv.Number)
	case bytecode.Sub:
		res, err = mbf5.Sub(ltv.Number, rtv.Number)
	case bytecode.Mul:
		res, err = mbf5.Mul(ltv.Number, rtv.Number)
	case bytecode.Div:
		if rtv.Number.IsZero() {
			return runtimeErrorf(r, "除数不能为 0")
		}
		res, err = mbf5.Div(ltv.Number, rtv.Number)
	case bytecode.Pow:
		res, err = mbf5.Pow(ltv.Number, rtv.Number)
	}
	if err != nil {
		return runtimeErrorf(r, "%s", err.Error())
	}
	m.pushNumber(res)
	return nil
}

// execBitwise implements AND/OR on the truncated 16-bit integer
// reading of each operand, matching the pocket computer's integer
// bitwise convention rather than a floating-point AND/OR.
func (m *Machine) execBitwise(kind bytecode.InstrKind, r ast.Range) error {
	rtv, e := m.popNumber(r)
	if e != nil {
		return e
	}
	ltv, e := m.popNumber(r)
	if e != nil {
		return e
	}
	li, ri := int16(ltv.Int()), int16(rtv.Int())
	var res int16
	switch kind {
	case bytecode.And:
		res = li & ri
	case bytecode.Or:
		res = li | ri
	}
	m.pushNumber(mbf5.FromInt(int(res)))
	return nil
}

// execNextFor advances the innermost matching FOR loop (the nearest
// one on the stack for a bare NEXT, or the named one for NEXT <var>,
// implicitly closing any unfinished inner loops above it). jumped
// reports whether the loop body should run again.
func (m *Machine) execNextFor(instr *bytecode.Instr) (bool, error) {
	idx := -1
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].Kind != bytecode.StackRecordForLoop {
			continue
		}
		if !instr.HasVar || m.stack[i].Var == instr.Sym {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, runtimeErrorf(instr.Range, "NEXT 没有对应的 FOR")
	}
	rec := m.stack[idx]
	cur := m.readVar(rec.Var)
	if cur.Kind != bytecode.ValueNumber {
		cur = bytecode.NumberValue(mbf5.Zero)
	}
	next, err := mbf5.Add(cur.Number, rec.Step)
	if err != nil {
		return false, runtimeErrorf(instr.Range, "%s", err.Error())
	}
	m.vars[rec.Var] = bytecode.NumberValue(next)
	var done bool
	if rec.Step.Sign() < 0 {
		done = mbf5.Cmp(next, rec.Target) < 0
	} else {
		done = mbf5.Cmp(next, rec.Target) > 0
	}
	if done {
		m.stack = m.stack[:idx]
		return false, nil
	}
	m.stack = m.stack[:idx+1]
	m.pc = rec.Addr
	return true, nil
}

// execAlignedAssign implements LSET/RSET: pad or truncate the string
// value to the field's current width, justified per instr.Alignment.
// A field variable never FIELDed still works, sized to the assigned
// value's own length.
func (m *Machine) execAlignedAssign(instr *bytecode.Instr) error {
	r := instr.Range
	lv, e := m.popLValue(r)
	if e != nil {
		return e
	}
	val := m.popValue()
	if val.Kind != bytecode.TmpValueString {
		return runtimeErrorf(r, "LSET/RSET 的值必须是字符串")
	}
	cur := m.getLValue(lv)
	width := len(cur.String)
	if width == 0 {
		width = len(val.String)
	}
	s := val.String
	if len(s) > width {
		s = s[:width]
	}
	padded := make(charset.ByteString, width)
	if instr.Alignment == bytecode.AlignLeft {
		copy(padded, s)
		for i := len(s); i < width; i++ {
			padded[i] = ' '
		}
	} else {
		start := width - len(s)
		for i := 0; i < start; i++ {
			padded[i] = ' '
		}
		copy(padded[start:], s)
	}
	m.setLValue(lv, bytecode.StringValue(padded))
	return nil
}

// execWriteEnd flushes the buffer Write instructions accumulated for
// one WRITE statement, to the console or to a file.
func (m *Machine) execWriteEnd(instr *bytecode.Instr, r ast.Range) error {
	defer func() {
		m.writeBuf = nil
		m.writeFirst = true
	}()
	if instr.ToFile {
		m.writeBuf = append(m.writeBuf, '\r', '\n')
		n, e := m.popNumber(r)
		if e != nil {
			return e
		}
		h, ok := m.Device.Files().Get(n.Int())
		if !ok {
			return runtimeErrorf(r, "未打开文件")
		}
		if e := h.Write(m.writeBuf); e != nil {
			return runtimeErrorf(r, "%s", e.Error())
		}
		return nil
	}
	m.Device.Print(m.writeBuf)
	m.Device.Newline()
	return nil
}

// execKeyboardInput pops the lvalues an INPUT statement named,
// stashes them as a pendingInput and reports the field types the
// caller must satisfy via Step's ExecInput parameter.
func (m *Machine) execKeyboardInput(instr *bytecode.Instr) (*bytecode.ExecResult, error) {
	targets := make([]bytecode.TmpLValue, instr.Fields)
	for i := instr.Fields - 1; i >= 0; i-- {
		lv, e := m.popLValue(instr.Range)
		if e != nil {
			return nil, e
		}
		targets[i] = lv
	}
	fields := make([]bytecode.KeyboardInput, instr.Fields)
	for i, lv := range targets {
		if m.isStringSym(lv.Name) {
			fields[i] = bytecode.KeyboardInput{Kind: bytecode.KeyboardInputString}
		} else {
			fields[i] = bytecode.KeyboardInput{Kind: bytecode.KeyboardInputNumber}
		}
	}
	m.pending = &pendingInput{targets: targets, fields: fields}
	return &bytecode.ExecResult{Kind: bytecode.ExecKeyboardInput, Prompt: instr.Prompt, Fields: fields}, nil
}

// execFileInput implements INPUT #n: each target reads one
// comma/CRLF-delimited token from the file, parsed tolerantly (VAL's
// rule) for a numeric target.
func (m *Machine) execFileInput(instr *bytecode.Instr, r ast.Range) error {
	targets := make([]bytecode.TmpLValue, instr.Fields)
	for i := instr.Fields - 1; i >= 0; i-- {
		lv, e := m.popLValue(r)
		if e != nil {
			return e
		}
		targets[i] = lv
	}
	fileNum, e := m.popNumber(r)
	if e != nil {
		return e
	}
	h, ok := m.Device.Files().Get(fileNum.Int())
	if !ok {
		return runtimeErrorf(r, "未打开文件")
	}
	for _, lv := range targets {
		token := readDelimited(h)
		if m.isStringSym(lv.Name) {
			bs, _ := charset.FromString(token, charset.V2)
			m.setLValue(lv, bytecode.StringValue(bs))
		} else {
			m.setLValue(lv, bytecode.NumberValue(parseLeadingNumber(token)))
		}
	}
	return nil
}

// readDelimited reads up to the next comma or line break from h,
// consuming the delimiter, and returns the token it bounded.
func readDelimited(h device.FileHandle) string {
	var buf []byte
	one := make([]byte, 1)
	for {
		n, _ := h.Read(one)
		if n == 0 {
			break
		}
		c := one[0]
		if c == ',' || c == '\n' {
			break
		}
		if c == '\r' {
			continue
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// execOpenFile implements OPEN.
func (m *Machine) execOpenFile(instr *bytecode.Instr, r ast.Range) error {
	var length int
	if instr.HasLen {
		n, e := m.popNumber(r)
		if e != nil {
			return e
		}
		length = n.Int()
	}
	fileNumN, e := m.popNumber(r)
	if e != nil {
		return e
	}
	nameBS, e2 := m.popString(r)
	if e2 != nil {
		return e2
	}
	mode := device.FileOpenMode(instr.FileMode)
	if err := m.Device.Files().Open(fileNumN.Int(), nameBS.ToStringLossy(charset.V2), mode); err != nil {
		return runtimeErrorf(r, "%s", err.Error())
	}
	if length <= 0 {
		length = 128
	}
	m.records[fileNumN.Int()] = &fileRecord{buf: make([]byte, length)}
	return nil
}

// execSetRecordFields implements FIELD: binds a sequence of
// (width, variable) pairs to fileNum's shared record buffer.
func (m *Machine) execSetRecordFields(instr *bytecode.Instr, r ast.Range) error {
	fields := make([]recordField, instr.Fields)
	for i := instr.Fields - 1; i >= 0; i-- {
		lv, e := m.popLValue(r)
		if e != nil {
			return e
		}
		ln, e2 := m.popNumber(r)
		if e2 != nil {
			return e2
		}
		fields[i] = recordField{width: ln.Int(), name: lv.Name}
	}
	fileNumN, e := m.popNumber(r)
	if e != nil {
		return e
	}
	fileNum := fileNumN.Int()
	rec, ok := m.records[fileNum]
	if !ok {
		rec = &fileRecord{}
		m.records[fileNum] = rec
	}
	rec.fields = fields
	total := 0
	for _, f := range fields {
		total += f.width
	}
	if len(rec.buf) < total {
		rec.buf = make([]byte, total)
	}
	return nil
}

// execReadRecord implements GET: reads one fixed-length record from
// disk and fans it out to the variables FIELD bound.
func (m *Machine) execReadRecord(r ast.Range) error {
	recordN, e := m.popNumber(r)
	if e != nil {
		return e
	}
	fileNumN, e2 := m.popNumber(r)
	if e2 != nil {
		return e2
	}
	fileNum := fileNumN.Int()
	rec, ok := m.records[fileNum]
	if !ok {
		return runtimeErrorf(r, "未使用 FIELD 语句定义记录")
	}
	h, ok2 := m.Device.Files().Get(fileNum)
	if !ok2 {
		return runtimeErrorf(r, "未打开文件")
	}
	recLen := len(rec.buf)
	if recLen == 0 {
		recLen = 128
		rec.buf = make([]byte, recLen)
	}
	pos := int64(recordN.Int()-1) * int64(recLen)
	if e := h.Seek(pos); e != nil {
		return runtimeErrorf(r, "%s", e.Error())
	}
	n, e3 := h.Read(rec.buf)
	if e3 != nil {
		return runtimeErrorf(r, "%s", e3.Error())
	}
	for i := n; i < len(rec.buf); i++ {
		rec.buf[i] = ' '
	}
	off := 0
	for _, f := range rec.fields {
		end := off + f.width
		if end > len(rec.buf) {
			end = len(rec.buf)
		}
		field := append(charset.ByteString{}, rec.buf[off:end]...)
		m.setLValue(bytecode.TmpLValue{Kind: bytecode.TmpLValueVar, Name: f.name}, bytecode.StringValue(field))
		off = end
	}
	return nil
}

// execWriteRecord implements PUT: gathers FIELD-bound variables'
// current values into the shared record buffer and writes it to disk.
func (m *Machine) execWriteRecord(r ast.Range) error {
	recordN, e := m.popNumber(r)
	if e != nil {
		return e
	}
	fileNumN, e2 := m.popNumber(r)
	if e2 != nil {
		return e2
	}
	fileNum := fileNumN.Int()
	rec, ok := m.records[fileNum]
	if !ok {
		return runtimeErrorf(r, "未使用 FIELD 语句定义记录")
	}
	h, ok2 := m.Device.Files().Get(fileNum)
	if !ok2 {
		return runtimeErrorf(r, "未打开文件")
	}
	off := 0
	for _, f := range rec.fields {
		end := off + f.width
		if end > len(rec.buf) {
			end = len(rec.buf)
		}
		v := m.readVar(f.name)
		for i := off; i < end; i++ {
			if j := i - off; v.Kind == bytecode.ValueString && j < len(v.String) {
				rec.buf[i] = v.String[j]
			} else {
				rec.buf[i] = ' '
			}
		}
		off = end
	}
	recLen := len(rec.buf)
	if recLen == 0 {
		recLen = 128
	}
	pos := int64(recordN.Int()-1) * int64(recLen)
	if e := h.Seek(pos); e != nil {
		return runtimeErrorf(r, "%s", e.Error())
	}
	if e := h.Write(rec.buf); e != nil {
		return runtimeErrorf(r, "%s", e.Error())
	}
	return nil
}

// execCall6502 drives the 6502 sub-stepper from addr until the called
// routine returns (or breaks), 50 instructions at a time the way the
// original time-slices a CALL statement.
func (m *Machine) execCall6502(addr uint16, r ast.Range) error {
	state := device.AsmState{PC: addr, SP: 0xfd}
	for {
		next, halt, err := m.Device.StepAsm(50, state)
		if err != nil {
			return runtimeErrorf(r, "%s", err.Error())
		}
		state = next
		if halt != device.AsmHaltSteps {
			return nil
		}
	}
}

// mapDrawMode translates a DRAW-family statement's raw numeric mode
// argument to a device.DrawMode; any value outside 0..2 behaves like 0.
func mapDrawMode(n int) device.DrawMode {
	switch n {
	case 1:
		return device.DrawErase
	case 2:
		return device.DrawNot
	default:
		return device.DrawCopy
	}
}

// coordCountFor is the fixed coordinate-argument count a Draw*
// instruction kind takes, excluding its optional fill/mode operands.
func coordCountFor(kind bytecode.InstrKind) int {
	switch kind {
	case bytecode.DrawBox:
		return 4
	case bytecode.DrawCircle:
		return 3
	case bytecode.DrawPoint:
		return 2
	case bytecode.DrawEllipse:
		return 4
	case bytecode.DrawLine:
		return 4
	default:
		return 0
	}
}

// execDraw implements BOX/CIRCLE/DRAW/ELLIPSE/LINE: its operands were
// pushed coordinates-then-fill-then-mode, so they pop in the reverse
// order, and DRAW/LINE route their one optional field into mode since
// neither has a fill concept.
func (m *Machine) execDraw(instr *bytecode.Instr, r ast.Range) error {
	mode := device.DrawCopy
	if instr.HasMode {
		n, e := m.popNumber(r)
		if e != nil {
			return e
		}
		mode = mapDrawMode(n.Int())
	}
	fill := false
	if instr.HasFill {
		n, e := m.popNumber(r)
		if e != nil {
			return e
		}
		fill = n.Sign() != 0
	}
	count := coordCountFor(instr.Kind)
	coords := make([]int, count)
	for i := count - 1; i >= 0; i-- {
		n, e := m.popNumber(r)
		if e != nil {
			return e
		}
		coords[i] = n.Int()
	}
	switch instr.Kind {
	case bytecode.DrawBox:
		m.Device.DrawBox(coords[0], coords[1], coords[2], coords[3], fill, mode)
	case bytecode.DrawCircle:
		m.Device.DrawCircle(coords[0], coords[1], coords[2], fill, mode)
	case bytecode.DrawPoint:
		m.Device.DrawPoint(coords[0], coords[1], mode)
	case bytecode.DrawEllipse:
		m.Device.DrawEllipse(coords[0], coords[1], coords[2], coords[3], fill, mode)
	case bytecode.DrawLine:
		m.Device.DrawLine(coords[0], coords[1], coords[2], coords[3], mode)
	}
	return nil
}

// parseStrictNumber parses a DATA item the way READ requires: the
// whole trimmed token must be a valid number, unlike VAL's tolerant
// leading-prefix parse.
func parseStrictNumber(s string) (mbf5.Number, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return mbf5.Zero, err
	}
	return mbf5.FromFloat64(f)
}
