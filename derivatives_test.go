/*
 * derivatives_test.go, part of godesc.
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

package desc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	v3 "github.com/mlatoms/godesc/v3"
)

//analyticPairDistance returns the exact derivative of the pair-distance sum
//at the given center with respect to component comp of atom i.
func analyticPairDistance(positions *v3.Matrix, cx, cy, cz float64, i, comp int, cutoff float64) float64 {
	d := dist(positions, i, cx, cy, cz)
	if d > cutoff || d == 0 {
		return 0
	}
	c := [3]float64{cx, cy, cz}
	return (positions.At(i, comp) - c[comp]) / d
}

func TestDerivativesTwoAtomScenario(Te *testing.T) {
	//two atoms a distance 1 apart, one center halfway between them: the
	//descriptor value is 1.0 and the x-derivatives are -1 and +1.
	positions, err := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	centers, _ := v3.NewMatrix([]float64{0.5, 0, 0})
	d, err := NewPairDistanceSum(2.0)
	if err != nil {
		Te.Fatal(err)
	}
	outD := NewJacobian(1, 2, 1)
	out := mat.NewDense(1, 1, nil)
	err = Derivatives(outD, out, d, positions, []int{1, 1}, centers, []int{-1}, []int{0, 1}, true)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(out.At(0, 0)-1.0) > 1e-12 {
		Te.Errorf("descriptor value %f, want 1.0", out.At(0, 0))
	}
	const tol = 1e-4
	if math.Abs(outD.At(0, 0, 0, 0)+1.0) > tol {
		Te.Errorf("d/dx0 = %f, want -1.0", outD.At(0, 0, 0, 0))
	}
	if math.Abs(outD.At(0, 1, 0, 0)-1.0) > tol {
		Te.Errorf("d/dx1 = %f, want +1.0", outD.At(0, 1, 0, 0))
	}
	//the geometry is symmetric around the x axis, so y and z derivatives vanish.
	for _, atom := range []int{0, 1} {
		for comp := 1; comp < 3; comp++ {
			if v := outD.At(0, atom, comp, 0); math.Abs(v) > tol {
				Te.Errorf("d/d%d of atom %d = %f, want 0", comp, atom, v)
			}
		}
	}
}

func TestDerivativesRestoresPositions(Te *testing.T) {
	positions, _ := v3.NewMatrix([]float64{0.3, 0.2, 0.1, 1.1, 0.4, -0.2, -0.5, 0.9, 0.7})
	before := make([]float64, 9)
	copy(before, positions.RawMatrix().Data)
	centers, _ := v3.NewMatrix([]float64{0.1, 0.1, 0.1})
	d, _ := NewPairDistanceSum(5.0)
	outD := NewJacobian(1, 3, 1)
	err := Derivatives(outD, nil, d, positions, []int{1, 1, 1}, centers, []int{-1}, []int{0, 1, 2}, false)
	if err != nil {
		Te.Fatal(err)
	}
	after := positions.RawMatrix().Data
	for i := range before {
		if before[i] != after[i] {
			Te.Fatalf("position element %d changed from %v to %v", i, before[i], after[i])
		}
	}
}

func TestDerivativesRestoresPositionsOnError(Te *testing.T) {
	positions, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	before := make([]float64, 6)
	copy(before, positions.RawMatrix().Data)
	centers, _ := v3.NewMatrix([]float64{0.5, 0, 0})
	d := failingDescriber{cutoff: 2.0, failAfter: 3}
	outD := NewJacobian(1, 2, 1)
	err := Derivatives(outD, nil, &d, positions, []int{1, 1}, centers, []int{-1}, []int{0, 1}, false)
	if err == nil {
		Te.Fatal("expected the descriptor error to abort the computation")
	}
	after := positions.RawMatrix().Data
	for i := range before {
		if before[i] != after[i] {
			Te.Fatalf("position element %d not restored after a failure", i)
		}
	}
}

//failingDescriber fails on the nth Create call, to exercise error paths.
type failingDescriber struct {
	cutoff    float64
	failAfter int
	calls     int
}

func (f *failingDescriber) NFeatures() int       { return 1 }
func (f *failingDescriber) Cutoff() float64      { return f.cutoff }
func (f *failingDescriber) Average() AverageMode { return AverageOff }

func (f *failingDescriber) Create(out *mat.Dense, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, atoms *CellList) error {
	f.calls++
	if f.calls > f.failAfter {
		return CError{"synthetic failure", []string{"failingDescriber.Create"}}
	}
	return nil
}

func TestDerivativesSelfInteraction(Te *testing.T) {
	//a center placed on a requested atom: the rows for that atom must stay
	//exactly zero, not become finite-difference artifacts of the
	//self-distance.
	positions, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	centers, _ := v3.NewMatrix([]float64{0, 0, 0})
	d, _ := NewPairDistanceSum(2.0)
	outD := NewJacobian(1, 2, 1)
	err := Derivatives(outD, nil, d, positions, []int{1, 1}, centers, []int{0}, []int{0, 1}, false)
	if err != nil {
		Te.Fatal(err)
	}
	for comp := 0; comp < 3; comp++ {
		if v := outD.At(0, 0, comp, 0); v != 0 {
			Te.Errorf("self-interaction leaked into component %d: %v", comp, v)
		}
	}
	const tol = 1e-4
	if math.Abs(outD.At(0, 1, 0, 0)-1.0) > tol {
		Te.Errorf("d/dx1 = %f, want +1.0", outD.At(0, 1, 0, 0))
	}
}

func TestDerivativesSkipEquivalence(Te *testing.T) {
	//one atom is far from every center; the engine skips its stencils and
	//its rows stay zero, which must agree with the analytic derivative.
	cutoff := 2.0
	positions, _ := v3.NewMatrix([]float64{0.3, 0.2, 0.1, 1.1, 0.4, -0.2, 100, 100, 100})
	centers, _ := v3.NewMatrix([]float64{0.1, 0.1, 0.1, 0.9, 0.2, 0.3})
	d, _ := NewPairDistanceSum(cutoff)
	outD := NewJacobian(2, 3, 1)
	err := Derivatives(outD, nil, d, positions, []int{1, 1, 1}, centers, []int{-1, -1}, []int{0, 1, 2}, false)
	if err != nil {
		Te.Fatal(err)
	}
	const tol = 1e-6
	for c := 0; c < 2; c++ {
		cx, cy, cz := centers.At(c, 0), centers.At(c, 1), centers.At(c, 2)
		for a := 0; a < 3; a++ {
			for comp := 0; comp < 3; comp++ {
				want := analyticPairDistance(positions, cx, cy, cz, a, comp, cutoff)
				got := outD.At(c, a, comp, 0)
				if math.Abs(got-want) > tol {
					Te.Errorf("entry (%d,%d,%d): got %v, want %v", c, a, comp, got, want)
				}
			}
		}
	}
	//the far atom's rows in particular are exactly zero, never computed.
	for c := 0; c < 2; c++ {
		for comp := 0; comp < 3; comp++ {
			if v := outD.At(c, 2, comp, 0); v != 0 {
				Te.Errorf("far atom has a nonzero derivative: %v", v)
			}
		}
	}
}

func TestDerivativesConvergence(Te *testing.T) {
	//the central stencil is second order: shrinking h by 10 should shrink
	//the error against the analytic derivative by about 100.
	cutoff := 5.0
	positions, _ := v3.NewMatrix([]float64{0.3, 0.2, 0.1, 1.1, 0.4, -0.2, -0.5, 0.9, 0.7})
	centers, _ := v3.NewMatrix([]float64{0.1, 0.1, 0.1})
	d, _ := NewPairDistanceSum(cutoff)
	steps := []float64{1e-1, 1e-2, 1e-3}
	errs := make([]float64, len(steps))
	for k, h := range steps {
		outD := NewJacobian(1, 3, 1)
		o := DefaultOptions()
		o.Step(h)
		err := Derivatives(outD, nil, d, positions, []int{1, 1, 1}, centers, []int{-1}, []int{0, 1, 2}, false, o)
		if err != nil {
			Te.Fatal(err)
		}
		var maxerr float64
		for a := 0; a < 3; a++ {
			for comp := 0; comp < 3; comp++ {
				want := analyticPairDistance(positions, 0.1, 0.1, 0.1, a, comp, cutoff)
				maxerr = math.Max(maxerr, math.Abs(outD.At(0, a, comp, 0)-want))
			}
		}
		errs[k] = maxerr
	}
	for k := 1; k < len(errs); k++ {
		ratio := errs[k-1] / errs[k]
		if ratio < 20 {
			Te.Errorf("error only dropped by %f from h=%g to h=%g; want roughly 100", ratio, steps[k-1], steps[k])
		}
	}
}

func TestDerivativesAveraged(Te *testing.T) {
	//in an averaged mode the Jacobian has a single pooled center row, and
	//self-interaction is not excluded: the full center set is evaluated.
	cutoff := 5.0
	positions, _ := v3.NewMatrix([]float64{0.3, 0.2, 0.1, 1.1, 0.4, -0.2})
	centers, _ := v3.NewMatrix([]float64{0.1, 0.1, 0.1, 0.9, 0.2, 0.3})
	d, _ := NewPairDistanceSum(cutoff, AverageInner)
	outD := NewJacobian(1, 2, 1)
	out := mat.NewDense(1, 1, nil)
	err := Derivatives(outD, out, d, positions, []int{1, 1}, centers, []int{-1, -1}, []int{0, 1}, true)
	if err != nil {
		Te.Fatal(err)
	}
	const tol = 1e-4
	for a := 0; a < 2; a++ {
		for comp := 0; comp < 3; comp++ {
			var want float64
			for c := 0; c < 2; c++ {
				want += analyticPairDistance(positions, centers.At(c, 0), centers.At(c, 1), centers.At(c, 2), a, comp, cutoff) / 2
			}
			got := outD.At(0, a, comp, 0)
			if math.Abs(got-want) > tol {
				Te.Errorf("pooled entry (%d,%d): got %v, want %v", a, comp, got, want)
			}
		}
	}
}

func TestDerivativesParallel(Te *testing.T) {
	//the parallel mode must reproduce the sequential results and leave the
	//caller's positions untouched.
	cutoff := 3.0
	n := 20
	coords := make([]float64, n*3)
	for i := range coords {
		//deterministic, aperiodic point cloud
		coords[i] = 5 * math.Sin(float64(i)*1.7+0.3)
	}
	positions, err := v3.NewMatrix(coords)
	if err != nil {
		Te.Fatal(err)
	}
	numbers := make([]int, n)
	atomIdx := make([]int, n)
	for i := range numbers {
		numbers[i] = 1
		atomIdx[i] = i
	}
	centers := v3.Zeros(5)
	centerIdx := make([]int, 5)
	for i := 0; i < 5; i++ {
		centers.SetRow(i, positions.RawRowView(i*3))
		centerIdx[i] = i * 3
	}
	d, err := NewRadialHistogram(cutoff, 8, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	seq := NewJacobian(5, n, 8)
	if err := Derivatives(seq, nil, d, positions, numbers, centers, centerIdx, atomIdx, false); err != nil {
		Te.Fatal(err)
	}
	before := make([]float64, len(coords))
	copy(before, positions.RawMatrix().Data)
	par := NewJacobian(5, n, 8)
	o := DefaultOptions()
	o.Cpus(4)
	if err := Derivatives(par, nil, d, positions, numbers, centers, centerIdx, atomIdx, false, o); err != nil {
		Te.Fatal(err)
	}
	for i := range before {
		if before[i] != positions.RawMatrix().Data[i] {
			Te.Fatalf("parallel run modified the caller's positions at %d", i)
		}
	}
	sraw := seq.Raw()
	praw := par.Raw()
	for i := range sraw {
		if math.Abs(sraw[i]-praw[i]) > 1e-12 {
			Te.Fatalf("parallel and sequential disagree at %d: %v vs %v", i, sraw[i], praw[i])
		}
	}
}

func TestDerivativesEntryValidation(Te *testing.T) {
	positions, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	centers, _ := v3.NewMatrix([]float64{0.5, 0, 0})
	d, _ := NewPairDistanceSum(2.0)
	good := NewJacobian(1, 2, 1)

	if err := Derivatives(nil, nil, d, positions, []int{1, 1}, centers, []int{-1}, []int{0, 1}, false); err == nil {
		Te.Error("nil Jacobian accepted")
	}
	if err := Derivatives(good, nil, d, positions, []int{1, 1}, centers, []int{-1, -1}, []int{0, 1}, false); err == nil {
		Te.Error("mismatched center indices accepted")
	}
	if err := Derivatives(good, nil, d, positions, []int{1}, centers, []int{-1}, []int{0, 1}, false); err == nil {
		Te.Error("mismatched atomic numbers accepted")
	}
	if err := Derivatives(good, nil, d, positions, []int{1, 1}, centers, []int{-1}, []int{0, 2}, false); err == nil {
		Te.Error("out-of-range atom accepted")
	}
	bad := NewJacobian(2, 2, 1)
	if err := Derivatives(bad, nil, d, positions, []int{1, 1}, centers, []int{-1}, []int{0, 1}, false); err == nil {
		Te.Error("wrong Jacobian shape accepted")
	}
	if err := Derivatives(good, mat.NewDense(2, 2, nil), d, positions, []int{1, 1}, centers, []int{-1}, []int{0, 1}, true); err == nil {
		Te.Error("wrong descriptor output shape accepted")
	}
}

func TestJacobianAccessors(Te *testing.T) {
	J := NewJacobian(2, 3, 4)
	nc, na, three, nf := J.Dims()
	if nc != 2 || na != 3 || three != 3 || nf != 4 {
		Te.Errorf("wrong dims: %d %d %d %d", nc, na, three, nf)
	}
	J.Set(1, 2, 0, 3, 42)
	if J.At(1, 2, 0, 3) != 42 {
		Te.Error("Set/At roundtrip failed")
	}
	if len(J.Raw()) != 2*3*3*4 {
		Te.Errorf("wrong backing slice length %d", len(J.Raw()))
	}
	defer func() {
		if recover() == nil {
			Te.Error("expected a panic for an out-of-range access")
		}
	}()
	J.At(2, 0, 0, 0)
}
