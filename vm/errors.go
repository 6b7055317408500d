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
	"fmt"

	"github.com/arucil/gvbasic/ast"
)

// RuntimeError reports a failure Step encountered executing one
// instruction: a division by zero, an out-of-bounds array index, a
// GOSUB/RETURN mismatch, and so on. Range is the source span the
// failing instruction was compiled from, so a caller can underline the
// same text the compiler's own diagnostics point at.
type RuntimeError struct {
	Range   ast.Range
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func runtimeErrorf(r ast.Range, format string, args ...any) *RuntimeError {
	return &RuntimeError{Range: r, Message: fmt.Sprintf(format, args...)}
}
