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
	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/device"
	"github.com/arucil/gvbasic/mbf5"
)

// Step runs instructions starting at the current program counter until
// the program ends, a statement needs keyboard input a caller must
// supply, a SLEEP wants the caller to pause, or budget
// instructions have executed, whichever comes first. input carries the
// data satisfying a previous ExecKeyboardInput result; pass nil when
// not resuming one.
func (m *Machine) Step(budget int, input *bytecode.ExecInput) (bytecode.ExecResult, error) {
	if input != nil {
		if err := m.resumeKeyboardInput(*input); err != nil {
			return bytecode.ExecResult{}, err
		}
	}
	if m.ended {
		return bytecode.ExecResult{Kind: bytecode.ExecEnd}, nil
	}
	for i := 0; i < budget; i++ {
		if int(m.pc) >= len(m.Program.Instrs) {
			m.ended = true
			return bytecode.ExecResult{Kind: bytecode.ExecEnd}, nil
		}
		instr := &m.Program.Instrs[m.pc]
		res, jumped, err := m.exec(instr)
		if err != nil {
			return bytecode.ExecResult{}, err
		}
		if !jumped {
			m.pc++
		}
		if res != nil {
			return *res, nil
		}
	}
	return bytecode.ExecResult{Kind: bytecode.ExecContinue}, nil
}

// keyboardInputKindMatches reports whether a supplied Value can
// satisfy the field kind execKeyboardInput asked for: a string field
// needs a string value, a numeric field needs an integer or real
// value (FOR/variable storage uses both interchangeably), and a
// func field -- never actually produced by any instruction today --
// is accepted as a string, since a keyboard-typed function body would
// arrive as one.
func keyboardInputKindMatches(field bytecode.KeyboardInput, v bytecode.Value) bool {
	switch field.Kind {
	case bytecode.KeyboardInputString, bytecode.KeyboardInputFunc:
		return v.Kind == bytecode.ValueString
	case bytecode.KeyboardInputNumber:
		return v.Kind == bytecode.ValueInteger || v.Kind == bytecode.ValueNumber
	default:
		return false
	}
}

func (m *Machine) resumeKeyboardInput(input bytecode.ExecInput) error {
	if m.pending == nil {
		return &RuntimeError{Message: "没有等待中的键盘输入"}
	}
	if len(input.Keyboard) != len(m.pending.targets) {
		return &RuntimeError{Message: "输入的字段数量不正确"}
	}
	for i, field := range m.pending.fields {
		if !keyboardInputKindMatches(field, input.Keyboard[i]) {
			return &RuntimeError{Message: "输入的数据类型不匹配"}
		}
	}
	for i, lv := range m.pending.targets {
		m.setLValue(lv, input.Keyboard[i])
	}
	m.pending = nil
	return nil
}

// exec runs one instruction. jumped reports whether the instruction
// already set m.pc to its intended next value (a branch, call, or
// return); Step only auto-advances the program counter when it did
// not. res, when non-nil, is returned to Step's caller once the
// program counter has been settled.
func (m *Machine) exec(instr *bytecode.Instr) (res *bytecode.ExecResult, jumped bool, err error) {
	r := instr.Range
	switch instr.Kind {
	case bytecode.NoOp:
		// nothing to do

	case bytecode.DefFn:
		m.funcs[instr.Sym] = funcInfo{param: instr.Sym2, body: m.pc + 1}
		m.pc = instr.Addr
		jumped = true

	case bytecode.DimArray:
		if _, exists := m.arrays[instr.Sym]; exists {
			return nil, false, runtimeErrorf(r, "数组重复定义")
		}
		dims := make([]int, instr.Arity)
		for i := instr.Arity - 1; i >= 0; i-- {
			n, e := m.popNumber(r)
			if e != nil {
				return nil, false, e
			}
			if n.Int() < 0 {
				return nil, false, runtimeErrorf(r, "数组下标不能为负数")
			}
			dims[i] = n.Int()
		}
		m.arrays[instr.Sym] = newArray(dims, m.isStringSym(instr.Sym))

	case bytecode.PushLValue:
		lv, e := m.popOrMakeLValue(instr.Sym, instr.Arity, r)
		if e != nil {
			return nil, false, e
		}
		m.pushLValueRef(lv)

	case bytecode.PushFnLValue:
		// never emitted by the compiler; kept only so the instruction
		// set's full surface has a defined runtime behavior.
		m.pushLValueRef(bytecode.TmpLValue{Kind: bytecode.TmpLValueVar, Name: instr.Sym})

	case bytecode.PushIndex:
		a, off, e := m.resolveIndex(instr.Sym, instr.Arity, r)
		if e != nil {
			return nil, false, e
		}
		m.push(tmpValueOf(a.Data[off]))

	case bytecode.PushVar:
		m.push(tmpValueOf(m.readVar(instr.Sym)))

	case bytecode.PushNum:
		m.pushNumber(instr.Num)

	case bytecode.PushStr:
		m.pushString(instr.Str)

	case bytecode.PushInKey:
		if key, ok := m.Device.Key(); ok {
			m.pushString(charset.ByteString{key})
		} else {
			m.pushString(charset.ByteString{})
		}

	case bytecode.Pop:
		if _, e := m.popSub(); e != nil {
			return nil, false, e
		}

	case bytecode.PopValue:
		m.pop()

	case bytecode.Not:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.pushNumber(mbf5.FromInt(-(n.Int() + 1)))

	case bytecode.Neg:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.pushNumber(n.Neg())

	case bytecode.Eq, bytecode.Ne, bytecode.Gt, bytecode.Lt, bytecode.Ge, bytecode.Le:
		if e := m.execCompare(instr.Kind, r); e != nil {
			return nil, false, e
		}

	case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Pow:
		if e := m.execArith(instr.Kind, r); e != nil {
			return nil, false, e
		}

	case bytecode.And, bytecode.Or:
		if e := m.execBitwise(instr.Kind, r); e != nil {
			return nil, false, e
		}

	case bytecode.SysFuncCall:
		if e := m.evalSysFunc(instr); e != nil {
			return nil, false, e
		}

	case bytecode.CallFn:
		arg, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		info, ok := m.funcs[instr.Sym]
		if !ok {
			return nil, false, runtimeErrorf(r, "自定义函数未定义")
		}
		m.vars[info.param] = bytecode.NumberValue(arg)
		m.stack = append(m.stack, bytecode.StackRecord{Kind: bytecode.StackRecordSub, NextAddr: m.pc + 1})
		m.pc = info.body
		jumped = true

	case bytecode.ReturnFn, bytecode.Return:
		addr, e := m.popSub()
		if e != nil {
			return nil, false, e
		}
		m.pc = addr
		jumped = true

	case bytecode.GoTo:
		m.pc = instr.Addr
		jumped = true

	case bytecode.GoSub:
		m.stack = append(m.stack, bytecode.StackRecord{Kind: bytecode.StackRecordSub, NextAddr: m.pc + 1})
		m.pc = instr.Addr
		jumped = true

	case bytecode.JumpIfZero:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		if n.IsZero() {
			m.pc = instr.Addr
			jumped = true
		}

	case bytecode.Switch:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		i := n.Int()
		if i >= 1 && i <= len(instr.Labels) {
			if instr.IsGosub {
				m.stack = append(m.stack, bytecode.StackRecord{Kind: bytecode.StackRecordSub, NextAddr: m.pc + 1})
			}
			m.pc = instr.Labels[i-1]
			jumped = true
		}

	case bytecode.RestoreDataPtr:
		m.dataPtr = instr.Datum

	case bytecode.ReadData:
		lv, e := m.popLValue(r)
		if e != nil {
			return nil, false, e
		}
		if int(m.dataPtr) >= len(m.Program.Data) {
			return nil, false, runtimeErrorf(r, "DATA 数据不足")
		}
		datum := m.Program.Data[m.dataPtr]
		m.dataPtr++
		if m.isStringSym(lv.Name) {
			m.setLValue(lv, bytecode.StringValue(datum.Value))
		} else {
			n, pe := mbf5FromDatum(datum.Value)
			if pe != nil {
				return nil, false, runtimeErrorf(r, "DATA 数据类型不匹配")
			}
			m.setLValue(lv, bytecode.NumberValue(n))
		}

	case bytecode.ForLoop:
		var step mbf5.Number = mbf5.FromInt(1)
		if instr.HasStep {
			var e error
			step, e = m.popNumber(r)
			if e != nil {
				return nil, false, e
			}
		}
		end, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		start, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.vars[instr.Sym] = bytecode.NumberValue(start)
		m.stack = append(m.stack, bytecode.StackRecord{
			Kind: bytecode.StackRecordForLoop, Addr: m.pc + 1,
			Var: instr.Sym, Target: end, Step: step,
		})

	case bytecode.NextFor:
		j, e := m.execNextFor(instr)
		if e != nil {
			return nil, false, e
		}
		jumped = j

	case bytecode.WhileLoop:
		cond, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		if cond.IsZero() {
			m.pc = instr.Addr
			jumped = true
		} else {
			m.stack = append(m.stack, bytecode.StackRecord{Kind: bytecode.StackRecordWhileLoop, Addr: instr.Addr2})
		}

	case bytecode.Wend:
		n := len(m.stack)
		if n == 0 || m.stack[n-1].Kind != bytecode.StackRecordWhileLoop {
			return nil, false, runtimeErrorf(r, "WEND 没有对应的 WHILE")
		}
		target := m.stack[n-1].Addr
		m.stack = m.stack[:n-1]
		m.pc = target
		jumped = true

	case bytecode.Assign:
		lv, e := m.popLValue(r)
		if e != nil {
			return nil, false, e
		}
		val := m.popValue()
		m.setLValue(lv, val)

	case bytecode.AlignedAssign:
		if e := m.execAlignedAssign(instr); e != nil {
			return nil, false, e
		}

	case bytecode.Swap:
		right, e := m.popLValue(r)
		if e != nil {
			return nil, false, e
		}
		left, e := m.popLValue(r)
		if e != nil {
			return nil, false, e
		}
		lv, rv := m.getLValue(left), m.getLValue(right)
		m.setLValue(left, rv)
		m.setLValue(right, lv)

	case bytecode.PrintNewLine:
		m.Device.Newline()

	case bytecode.PrintComma:
		col := m.Device.GetColumn()
		if col < 11 {
			m.Device.SetColumn(11)
		} else {
			m.Device.Newline()
		}

	case bytecode.PrintSpc:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.Device.Print(spaces(n.Int()))

	case bytecode.PrintTab:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		target := n.Int()
		col := m.Device.GetColumn()
		if target > col {
			m.Device.Print(spaces(target - col))
		}

	case bytecode.PrintValue:
		tv := m.pop()
		if tv.Kind == bytecode.TmpValueString {
			m.Device.Print(tv.String.PrintForm())
		} else {
			m.Device.Print(formatNumberForPrint(tv.Number))
		}

	case bytecode.SetRow:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.Device.SetRow(n.Int())

	case bytecode.SetColumn:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.Device.SetColumn(n.Int())

	case bytecode.Write:
		tv := m.pop()
		var text charset.ByteString
		if tv.Kind == bytecode.TmpValueString {
			text = quoteForWrite(tv.String)
		} else {
			text = formatNumberForWrite(tv.Number)
		}
		if !m.writeFirst {
			m.writeBuf = append(m.writeBuf, ',')
		}
		m.writeFirst = false
		m.writeBuf = append(m.writeBuf, text...)

	case bytecode.WriteEnd:
		if e := m.execWriteEnd(instr, r); e != nil {
			return nil, false, e
		}

	case bytecode.KeyboardInput:
		er, e := m.execKeyboardInput(instr)
		if e != nil {
			return nil, false, e
		}
		res = er

	case bytecode.FileInput:
		if e := m.execFileInput(instr, r); e != nil {
			return nil, false, e
		}

	case bytecode.OpenFile:
		if e := m.execOpenFile(instr, r); e != nil {
			return nil, false, e
		}

	case bytecode.CloseFile:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		delete(m.records, n.Int())
		if e := m.Device.Files().Close(n.Int()); e != nil {
			return nil, false, runtimeErrorf(r, "%s", e.Error())
		}

	case bytecode.SetRecordFields:
		if e := m.execSetRecordFields(instr, r); e != nil {
			return nil, false, e
		}

	case bytecode.ReadRecord:
		if e := m.execReadRecord(r); e != nil {
			return nil, false, e
		}

	case bytecode.WriteRecord:
		if e := m.execWriteRecord(r); e != nil {
			return nil, false, e
		}

	case bytecode.Beep:
		m.Device.Beep()

	case bytecode.PlayNotes:
		s, e := m.popString(r)
		if e != nil {
			return nil, false, e
		}
		m.Device.PlayNotes(s)

	case bytecode.Call:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		if e := m.execCall6502(uint16(n.Int()), r); e != nil {
			return nil, false, e
		}

	case bytecode.Poke:
		val, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		addr, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		m.Device.WriteByte(uint16(addr.Int()), byte(val.Int()))

	case bytecode.Clear:
		m.Clear()

	case bytecode.Cls:
		m.Device.Cls()

	case bytecode.DrawBox, bytecode.DrawCircle, bytecode.DrawPoint, bytecode.DrawEllipse, bytecode.DrawLine:
		if e := m.execDraw(instr, r); e != nil {
			return nil, false, e
		}

	case bytecode.End:
		m.ended = true
		res = &bytecode.ExecResult{Kind: bytecode.ExecEnd}
		jumped = true

	case bytecode.Restart:
		m.Restart()
		jumped = true

	case bytecode.SetTrace:
		m.trace = instr.Trace

	case bytecode.SetScreenMode:
		if instr.ScreenMode == bytecode.ScreenGraph {
			m.Device.SetScreenMode(device.Graph)
		} else {
			m.Device.SetScreenMode(device.Text)
		}

	case bytecode.SetPrintMode:
		switch instr.PrintMode {
		case bytecode.PrintInverse:
			m.Device.SetPrintMode(device.Inverse)
		case bytecode.PrintFlash:
			m.Device.SetPrintMode(device.Flash)
		default:
			m.Device.SetPrintMode(device.Normal)
		}

	case bytecode.Sleep:
		n, e := m.popNumber(r)
		if e != nil {
			return nil, false, e
		}
		nanos := int64(n.Float64() * float64(m.Device.SleepUnit()))
		if nanos < 0 {
			nanos = 0
		}
		res = &bytecode.ExecResult{Kind: bytecode.ExecSleep, Nanos: nanos}

	default:
		return nil, false, runtimeErrorf(r, "不支持的指令")
	}
	return res, jumped, nil
}

func spaces(n int) charset.ByteString {
	if n <= 0 {
		return nil
	}
	out := make(charset.ByteString, n)
	for i := range out {
		out[i] = ' '
	}
	return out
}

func mbf5FromDatum(s charset.ByteString) (mbf5.Number, error) {
	return parseStrictNumber(s.ToStringLossy(charset.V2))
}
