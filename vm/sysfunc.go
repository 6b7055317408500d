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
	"math"
	"strconv"
	"strings"

	"github.com/arucil/gvbasic/ast"
	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/keyword"
	"github.com/arucil/gvbasic/mbf5"
)

// evalSysFunc pops a SysFuncCall instruction's already-pushed
// arguments (in call order) and pushes its result.
func (m *Machine) evalSysFunc(instr *bytecode.Instr) error {
	args := make([]bytecode.TmpValue, instr.Arity)
	for i := instr.Arity - 1; i >= 0; i-- {
		args[i] = m.pop()
	}
	r := instr.Range
	switch instr.SysFunc {
	case keyword.ABS:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		if n.Sign() < 0 {
			n = n.Neg()
		}
		m.pushNumber(n)

	case keyword.SGN:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		m.pushNumber(mbf5.FromInt(n.Sign()))

	case keyword.INT:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		m.pushNumber(mbf5.FromInt(n.Int()))

	case keyword.SQR:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		if n.Sign() < 0 {
			return runtimeErrorf(r, "SQR 函数的参数不能为负数")
		}
		res, err := mbf5.FromFloat64(math.Sqrt(n.Float64()))
		if err != nil {
			return runtimeErrorf(r, "%s", err.Error())
		}
		m.pushNumber(res)

	case keyword.SIN, keyword.COS, keyword.TAN, keyword.ATN, keyword.EXP:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		var f float64
		switch instr.SysFunc {
		case keyword.SIN:
			f = math.Sin(n.Float64())
		case keyword.COS:
			f = math.Cos(n.Float64())
		case keyword.TAN:
			f = math.Tan(n.Float64())
		case keyword.ATN:
			f = math.Atan(n.Float64())
		case keyword.EXP:
			f = math.Exp(n.Float64())
		}
		res, err := mbf5.FromFloat64(f)
		if err != nil {
			return runtimeErrorf(r, "%s", err.Error())
		}
		m.pushNumber(res)

	case keyword.LOG:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		if n.Sign() <= 0 {
			return runtimeErrorf(r, "LOG 函数的参数必须是正数")
		}
		res, err := mbf5.FromFloat64(math.Log(n.Float64()))
		if err != nil {
			return runtimeErrorf(r, "%s", err.Error())
		}
		m.pushNumber(res)

	case keyword.RND:
		var arg mbf5.Number = mbf5.FromInt(1)
		if instr.Arity > 0 {
			var err error
			arg, err = numArg(args, 0, r)
			if err != nil {
				return err
			}
		}
		m.pushNumber(m.rnd0(arg))

	case keyword.PEEK:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		b := m.Device.ReadByte(uint16(n.Int()))
		m.pushNumber(mbf5.FromInt(int(b)))

	case keyword.POS:
		m.pushNumber(mbf5.FromInt(m.Device.GetColumn()))

	case keyword.ASC:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		if len(s) == 0 {
			return runtimeErrorf(r, "ASC 函数的参数不能是空字符串")
		}
		m.pushNumber(mbf5.FromInt(int(s[0])))

	case keyword.LEN:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		m.pushNumber(mbf5.FromInt(len(s)))

	case keyword.VAL:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		m.pushNumber(parseLeadingNumber(s.ToStringLossy(charset.V2)))

	case keyword.CHR:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		m.pushString(charset.ByteString{byte(n.Int())})

	case keyword.STR:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		bs, _ := charset.FromString(formatNumberForStr(n), charset.V2)
		m.pushString(bs)

	case keyword.LEFT:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		n, err := numArg(args, 1, r)
		if err != nil {
			return err
		}
		k := clamp(n.Int(), 0, len(s))
		m.pushString(append(charset.ByteString{}, s[:k]...))

	case keyword.RIGHT:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		n, err := numArg(args, 1, r)
		if err != nil {
			return err
		}
		k := clamp(n.Int(), 0, len(s))
		m.pushString(append(charset.ByteString{}, s[len(s)-k:]...))

	case keyword.MID:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		startN, err := numArg(args, 1, r)
		if err != nil {
			return err
		}
		start := startN.Int() - 1
		length := len(s) - start
		if instr.Arity >= 3 {
			ln, err := numArg(args, 2, r)
			if err != nil {
				return err
			}
			length = ln.Int()
		}
		if start < 0 {
			start = 0
		}
		if start > len(s) {
			start = len(s)
		}
		end := start + length
		if end > len(s) {
			end = len(s)
		}
		if end < start {
			end = start
		}
		m.pushString(append(charset.ByteString{}, s[start:end]...))

	case keyword.MKI:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		v := uint16(n.Int())
		m.pushString(charset.ByteString{byte(v), byte(v >> 8)})

	case keyword.CVI:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		var v uint16
		if len(s) > 0 {
			v = uint16(s[0])
		}
		if len(s) > 1 {
			v |= uint16(s[1]) << 8
		}
		m.pushNumber(mbf5.FromInt(int(v)))

	case keyword.MKS:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		m.pushString(append(charset.ByteString{}, n[:]...))

	case keyword.CVS:
		s, err := strArg(args, 0, r)
		if err != nil {
			return err
		}
		var n mbf5.Number
		copy(n[:], s)
		m.pushNumber(n)

	case keyword.LOF:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		h, ok := m.Device.Files().Get(n.Int())
		if !ok {
			return runtimeErrorf(r, "未打开文件")
		}
		length, err := h.Len()
		if err != nil {
			return runtimeErrorf(r, "%s", err.Error())
		}
		m.pushNumber(mbf5.FromInt(int(length)))

	case keyword.EOF:
		n, err := numArg(args, 0, r)
		if err != nil {
			return err
		}
		h, ok := m.Device.Files().Get(n.Int())
		if !ok {
			return runtimeErrorf(r, "未打开文件")
		}
		length, _ := h.Len()
		pos, _ := h.Pos()
		if pos >= length {
			m.pushNumber(mbf5.FromInt(-1))
		} else {
			m.pushNumber(mbf5.Zero)
		}

	default:
		return runtimeErrorf(r, "不支持的函数")
	}
	return nil
}

func numArg(args []bytecode.TmpValue, i int, r ast.Range) (mbf5.Number, error) {
	if args[i].Kind != bytecode.TmpValueNumber {
		return mbf5.Zero, runtimeErrorf(r, "参数类型错误")
	}
	return args[i].Number, nil
}

func strArg(args []bytecode.TmpValue, i int, r ast.Range) (charset.ByteString, error) {
	if args[i].Kind != bytecode.TmpValueString {
		return nil, runtimeErrorf(r, "参数类型错误")
	}
	return args[i].String, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// parseLeadingNumber implements VAL's tolerant parse: skip leading
// whitespace, read an optional sign and the longest numeric prefix
// that follows, and return zero if nothing numeric is found.
func parseLeadingNumber(s string) mbf5.Number {
	s = strings.TrimLeft(s, " \t")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	sawDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		sawDigit = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			sawDigit = true
		}
	}
	if !sawDigit {
		return mbf5.Zero
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	text := s[:start] + s[start:i]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return mbf5.Zero
	}
	n, err := mbf5.FromFloat64(f)
	if err != nil {
		return mbf5.Zero
	}
	return n
}

// rnd0 implements RND(n): a negative n reseeds the generator
// deterministically from n itself, zero repeats the last value drawn,
// and a positive n (or no argument) draws a new value in [0, 1).
func (m *Machine) rnd0(n mbf5.Number) mbf5.Number {
	switch {
	case n.Sign() < 0:
		m.rnd.Seed(int64(n.Float64() * 1e6))
		m.lastRnd = m.rnd.Float64()
	case n.Sign() == 0:
		// repeat m.lastRnd unchanged
	default:
		m.lastRnd = m.rnd.Float64()
	}
	v, err := mbf5.FromFloat64(m.lastRnd)
	if err != nil {
		return mbf5.Zero
	}
	return v
}
