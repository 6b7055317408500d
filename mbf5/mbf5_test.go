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

package mbf5

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	if a == b {
		return true
	}
	d := math.Abs(a - b)
	return d <= math.Abs(a)*1e-6+1e-12
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []float64{
		0, 1, -1, 0.5, 3.14159265, -123456.789, 1e10, -1e-10, 65535, 100,
	} {
		n, err := FromFloat64(f)
		if err != nil {
			t.Fatalf("FromFloat64(%v): %v", f, err)
		}
		got := n.Float64()
		if !near(got, f) {
			t.Errorf("round-trip %v: got %v", f, got)
		}
	}
}

func TestZero(t *testing.T) {
	n, err := FromFloat64(0)
	if err != nil {
		t.Fatal(err)
	}
	if !n.IsZero() {
		t.Fatal("expected zero")
	}
	if n.Sign() != 0 {
		t.Fatal("expected sign 0")
	}
}

func TestSign(t *testing.T) {
	pos := MustFromFloat64(5)
	neg := MustFromFloat64(-5)
	if pos.Sign() != 1 {
		t.Fatal("expected positive sign")
	}
	if neg.Sign() != -1 {
		t.Fatal("expected negative sign")
	}
	if neg.Neg().Sign() != 1 {
		t.Fatal("Neg should flip sign")
	}
}

func TestOverflow(t *testing.T) {
	_, err := FromFloat64(1e60)
	if _, ok := err.(ErrOverflow); !ok {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestArith(t *testing.T) {
	a := MustFromFloat64(3)
	b := MustFromFloat64(4)
	sum, err := Add(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !near(sum.Float64(), 7) {
		t.Fatalf("3+4 = %v", sum.Float64())
	}
	prod, err := Mul(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !near(prod.Float64(), 12) {
		t.Fatalf("3*4 = %v", prod.Float64())
	}
	quot, err := Div(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if !near(quot.Float64(), 4.0/3.0) {
		t.Fatalf("4/3 = %v", quot.Float64())
	}
}

func TestCmp(t *testing.T) {
	a := MustFromFloat64(1)
	b := MustFromFloat64(2)
	if Cmp(a, b) != -1 || Cmp(b, a) != 1 || Cmp(a, a) != 0 {
		t.Fatal("Cmp mismatch")
	}
}

func TestIntTruncatesTowardsNegativeInfinity(t *testing.T) {
	if MustFromFloat64(-1.5).Int() != -2 {
		t.Fatal("expected floor semantics")
	}
	if MustFromFloat64(1.9).Int() != 1 {
		t.Fatal("expected floor semantics")
	}
}

func TestString(t *testing.T) {
	if got := MustFromFloat64(100).String(); got != "100" {
		t.Fatalf("got %q", got)
	}
}
