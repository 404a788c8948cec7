/*
 * v3_test.go, part of godesc.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package v3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 2 {
		Te.Errorf("expected 2 vectors, got %d", A.NVecs())
	}
	if A.At(1, 2) != 6 {
		Te.Errorf("wrong element at (1,2): %f", A.At(1, 2))
	}
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("expected an error for a slice not divisible by 3")
	}
}

func TestCross(Te *testing.T) {
	x, _ := NewMatrix([]float64{1, 0, 0})
	y, _ := NewMatrix([]float64{0, 1, 0})
	z := Zeros(1)
	z.Cross(x, y)
	if z.At(0, 0) != 0 || z.At(0, 1) != 0 || z.At(0, 2) != 1 {
		Te.Errorf("x cross y should be z, got %v", z)
	}
}

func TestDotNormUnit(Te *testing.T) {
	a, _ := NewMatrix([]float64{3, 4, 0})
	b, _ := NewMatrix([]float64{1, 0, 0})
	if d := a.Dot(b); d != 3 {
		Te.Errorf("wrong dot product: %f", d)
	}
	if n := a.Norm(2); math.Abs(n-5) > appzero {
		Te.Errorf("wrong norm: %f", n)
	}
	u := Zeros(1)
	u.Unit(a)
	if math.Abs(u.Norm(2)-1) > appzero {
		Te.Errorf("unit vector has norm %f", u.Norm(2))
	}
}

func TestAddSubVec(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 1, 1, 2, 2, 2})
	v, _ := NewMatrix([]float64{1, 0, -1})
	B := Zeros(2)
	B.AddVec(A, v)
	if B.At(0, 0) != 2 || B.At(1, 2) != 1 {
		Te.Errorf("AddVec gave %v", B)
	}
	B.SubVec(B, v)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if B.At(i, j) != A.At(i, j) {
				Te.Errorf("SubVec did not undo AddVec at (%d,%d)", i, j)
			}
		}
	}
	//the subtracted vector itself must come back unharmed.
	if v.At(0, 0) != 1 || v.At(0, 2) != -1 {
		Te.Errorf("SubVec clobbered its vector argument: %v", v)
	}
}

func TestSomeSetVecs(Te *testing.T) {
	A, _ := NewMatrix([]float64{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3})
	B := Zeros(2)
	B.SomeVecs(A, []int{3, 1})
	if B.At(0, 0) != 3 || B.At(1, 0) != 1 {
		Te.Errorf("SomeVecs gave %v", B)
	}
	C := Zeros(4)
	C.SetVecs(B, []int{3, 1})
	if C.At(3, 0) != 3 || C.At(1, 0) != 1 || C.At(0, 0) != 0 {
		Te.Errorf("SetVecs gave %v", C)
	}
}

func TestSwapAndStack(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 1, 1, 2, 2, 2})
	A.SwapVecs(0, 1)
	if A.At(0, 0) != 2 || A.At(1, 0) != 1 {
		Te.Errorf("SwapVecs gave %v", A)
	}
	B, _ := NewMatrix([]float64{9, 9, 9})
	F := Zeros(3)
	F.Stack(A, B)
	if F.At(0, 0) != 2 || F.At(2, 1) != 9 {
		Te.Errorf("Stack gave %v", F)
	}
}

func TestViews(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	v := A.VecView(1)
	if v.At(0, 0) != 4 {
		Te.Errorf("VecView gave %v", v)
	}
	v.Set(0, 0, 40)
	if A.At(1, 0) != 40 {
		Te.Error("views should share data with the viewed matrix")
	}
}

func TestDense2MatrixPanics(Te *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			Te.Error("expected a panic for a non-Nx3 Dense")
		}
	}()
	_ = Dense2Matrix(mat.NewDense(2, 2, nil))
}
