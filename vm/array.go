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
	"github.com/arucil/gvbasic/mbf5"
)

// defaultDim is the per-dimension bound (indices 0..defaultDim) an
// array gets the first time it is indexed without ever having gone
// through a DIM statement, matching classic BASIC's implicit-array
// convention.
const defaultDim = 10

// Array is a BASIC array's storage: a flattened, row-major element
// vector sized by Dims (each entry the array's bound in that
// dimension, inclusive, so a DIM A(10) array has Dims == []int{10} and
// 11 elements).
type Array struct {
	Dims []int
	Data []bytecode.Value
}

func newArray(dims []int, isString bool) *Array {
	size := 1
	for _, d := range dims {
		size *= d + 1
	}
	data := make([]bytecode.Value, size)
	if !isString {
		for i := range data {
			data[i] = bytecode.NumberValue(mbf5.Zero)
		}
	}
	return &Array{Dims: dims, Data: data}
}

// offset flattens indices against a's Dims, row-major (the last index
// varies fastest), returning ok=false if any index is negative or
// exceeds its dimension's bound.
func (a *Array) offset(indices []int) (int, bool) {
	if len(indices) != len(a.Dims) {
		return 0, false
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx > a.Dims[i] {
			return 0, false
		}
		off = off*(a.Dims[i]+1) + idx
	}
	return off, true
}
