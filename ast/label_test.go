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

import "testing"

func TestParseLabelOK(t *testing.T) {
	l, err := ParseLabel("1234")
	if err != nil {
		t.Fatalf("ParseLabel: %v", err)
	}
	if l != 1234 {
		t.Fatalf("Label = %d, want 1234", l)
	}
}

func TestParseLabelMaxValue(t *testing.T) {
	l, err := ParseLabel("9999")
	if err != nil {
		t.Fatalf("ParseLabel: %v", err)
	}
	if l != 9999 {
		t.Fatalf("Label = %d, want 9999", l)
	}
}

func TestParseLabelOutOfBound(t *testing.T) {
	_, err := ParseLabel("10000")
	perr, ok := err.(*ParseLabelError)
	if !ok || perr.Kind != OutOfBound {
		t.Fatalf("err = %v, want OutOfBound", err)
	}
}

func TestParseLabelOverflow(t *testing.T) {
	_, err := ParseLabel("999999999999")
	perr, ok := err.(*ParseLabelError)
	if !ok || perr.Kind != OutOfBound {
		t.Fatalf("err = %v, want OutOfBound", err)
	}
}

func TestParseLabelWithSpaceIsNotALabel(t *testing.T) {
	_, err := ParseLabel("1 0")
	perr, ok := err.(*ParseLabelError)
	if !ok || perr.Kind != NotALabel {
		t.Fatalf("err = %v, want NotALabel", err)
	}
}

func TestParseLabelString(t *testing.T) {
	if Label(42).String() != "42" {
		t.Fatalf("String() = %q, want 42", Label(42).String())
	}
}
