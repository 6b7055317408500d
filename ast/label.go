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

package ast

import (
	"errors"
	"fmt"
	"strconv"
)

// Label is a GVBASIC line label, always in 0..=9999.
type Label uint16

func (l Label) String() string { return fmt.Sprintf("%d", uint16(l)) }

// ParseLabelErrorKind classifies why a string failed to parse as a
// Label. OutOfBound applies to any numeral outside 0..=9999 (including
// one too wide to fit a uint16 at all); NotALabel covers anything that
// isn't a bare unsigned integer, including one with embedded spaces.
type ParseLabelErrorKind int

const (
	NotALabel ParseLabelErrorKind = iota
	OutOfBound
)

type ParseLabelError struct {
	Kind ParseLabelErrorKind
}

func (e *ParseLabelError) Error() string {
	if e.Kind == OutOfBound {
		return "label out of bound"
	}
	return "not a label"
}

// ParseLabel parses s as a Label. It does not tolerate embedded
// spaces or a sign: the lexer only ever offers it the exact digit run
// matched by a bare natural number.
func ParseLabel(s string) (Label, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, &ParseLabelError{Kind: OutOfBound}
		}
		return 0, &ParseLabelError{Kind: NotALabel}
	}
	if n > 9999 {
		return 0, &ParseLabelError{Kind: OutOfBound}
	}
	return Label(n), nil
}
