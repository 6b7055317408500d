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

// Package bytecode defines the instruction set the compiler emits and
// the virtual machine executes, plus the persistent value model
// (numbers, strings) those instructions operate on.
package bytecode

// Symbol is an interned variable/function name, used everywhere an
// instruction needs to name a variable without carrying its text
// around: every PushVar/PushLValue/ForLoop/DefFn instruction in a
// compiled program refers to one of only a few dozen distinct names,
// so comparing and hashing a small integer is cheaper than repeatedly
// comparing byte strings during execution.
type Symbol int

// Interner assigns each distinct variable name a stable Symbol the
// first time it is seen, and returns the same Symbol on every later
// lookup of that name.
type Interner struct {
	names []string
	index map[string]Symbol
}

func NewInterner() *Interner {
	return &Interner{index: make(map[string]Symbol)}
}

// Intern returns name's Symbol, assigning a new one if name has not
// been seen before.
func (in *Interner) Intern(name string) Symbol {
	if sym, ok := in.index[name]; ok {
		return sym
	}
	sym := Symbol(len(in.names))
	in.names = append(in.names, name)
	in.index[name] = sym
	return sym
}

// Name returns the text a Symbol was interned from.
func (in *Interner) Name(sym Symbol) string {
	return in.names[sym]
}
