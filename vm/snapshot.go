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
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/arucil/gvbasic/bytecode"
)

// ID is a Machine's identity for log correlation across a debugging
// session, assigned once at New and never reused by Restart/Clear.
func (m *Machine) ID() uuid.UUID {
	if m.id == uuid.Nil {
		m.id = uuid.New()
	}
	return m.id
}

// arraySnapshot is the serializable form of an Array: its dimension
// bounds and flattened element vector.
type arraySnapshot struct {
	Dims []int
	Data []bytecode.Value
}

// snapshotState is everything Snapshot/Restore round-trip: every
// mutable piece of a Machine except the Program and Device it runs
// against, which the caller is expected to supply unchanged (or at
// least line-identical) when restoring.
type snapshotState struct {
	ID      uuid.UUID
	PC      bytecode.Addr
	Stack   []bytecode.StackRecord
	VStack  []bytecode.TmpValue
	Vars    map[string]bytecode.Value
	Arrays  map[string]arraySnapshot
	Funcs   map[string]funcInfoSnapshot
	DataPtr bytecode.DatumIndex
	Ended   bool
}

type funcInfoSnapshot struct {
	Param string
	Body  bytecode.Addr
}

// Snapshot serializes the Machine's current execution state (program
// counter, value/call stacks, variables, arrays, DEF FN table and DATA
// cursor) to a zstd-compressed blob, so a single-step debugging
// session can suspend a VM and resume it later in the same process
// without keeping the Machine itself alive. Variables and arrays are
// keyed by name rather than bytecode.Symbol, since a Symbol is only
// stable for the Program that interned it.
func (m *Machine) Snapshot() ([]byte, error) {
	st := snapshotState{
		ID:      m.ID(),
		PC:      m.pc,
		Stack:   m.stack,
		VStack:  m.vstk,
		Vars:    make(map[string]bytecode.Value, len(m.vars)),
		Arrays:  make(map[string]arraySnapshot, len(m.arrays)),
		Funcs:   make(map[string]funcInfoSnapshot, len(m.funcs)),
		DataPtr: m.dataPtr,
		Ended:   m.ended,
	}
	for sym, v := range m.vars {
		st.Vars[m.symName(sym)] = v
	}
	for sym, a := range m.arrays {
		st.Arrays[m.symName(sym)] = arraySnapshot{Dims: a.Dims, Data: a.Data}
	}
	for sym, fi := range m.funcs {
		st.Funcs[m.symName(sym)] = funcInfoSnapshot{Param: m.symName(fi.param), Body: fi.body}
	}

	var gobBuf bytes.Buffer
	if err := gob.NewEncoder(&gobBuf).Encode(st); err != nil {
		return nil, fmt.Errorf("序列化虚拟机状态失败: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("创建压缩器失败: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(gobBuf.Bytes(), nil), nil
}

// Restore replaces the Machine's execution state with one previously
// produced by Snapshot. The Machine must already be running the same
// program the snapshot was taken against (or a recompilation of
// line-identical source), since variables and arrays are restored by
// name, reinterned against this Machine's own Program.Interner.
func (m *Machine) Restore(blob []byte) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("创建解压器失败: %w", err)
	}
	defer dec.Close()
	gobBytes, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return fmt.Errorf("解压虚拟机快照失败: %w", err)
	}

	var st snapshotState
	if err := gob.NewDecoder(bytes.NewReader(gobBytes)).Decode(&st); err != nil {
		return fmt.Errorf("反序列化虚拟机状态失败: %w", err)
	}

	m.id = st.ID
	m.pc = st.PC
	m.stack = st.Stack
	m.vstk = st.VStack
	m.dataPtr = st.DataPtr
	m.ended = st.Ended

	m.vars = make(map[bytecode.Symbol]bytecode.Value, len(st.Vars))
	for name, v := range st.Vars {
		m.vars[m.Program.Interner.Intern(name)] = v
	}
	m.arrays = make(map[bytecode.Symbol]*Array, len(st.Arrays))
	for name, a := range st.Arrays {
		m.arrays[m.Program.Interner.Intern(name)] = &Array{Dims: a.Dims, Data: a.Data}
	}
	m.funcs = make(map[bytecode.Symbol]funcInfo, len(st.Funcs))
	for name, fi := range st.Funcs {
		m.funcs[m.Program.Interner.Intern(name)] = funcInfo{
			param: m.Program.Interner.Intern(fi.Param),
			body:  fi.Body,
		}
	}
	return nil
}
