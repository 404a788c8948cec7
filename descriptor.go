/*
 * descriptor.go, part of godesc.
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
	"fmt"
	"math"

	v3 "github.com/mlatoms/godesc/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//AverageMode selects how descriptor values are pooled over the centers of
//interest. AverageOff keeps one feature row per center. AverageInner and
//AverageOuter pool all centers into a single row; for the descriptors in
//this package both reduce to the arithmetic mean, but algorithm-specific
//Describers may distinguish them (inner averages intermediate expansions,
//outer averages the final vectors).
type AverageMode string

const (
	AverageOff   AverageMode = "off"
	AverageInner AverageMode = "inner"
	AverageOuter AverageMode = "outer"
)

//Describer is the interface for descriptor calculators. Create writes into
//out one feature row per center (or a single pooled row when the averaging
//mode is not off), given the positions and atomic numbers of the atoms and a
//cell list built over the atom positions. Create must be a pure function of
//its arguments: deterministic, no hidden state, and callable repeatedly with
//different center subsets against the same atom cell list. The output matrix
//is accumulated into, so the caller provides it zeroed. The cell list is
//only a pre-selection device; distances entering the feature values must be
//computed from the live positions, which the derivative engine perturbs
//between calls without rebuilding the cell list.
type Describer interface {
	Create(out *mat.Dense, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, atoms *CellList) error

	//NFeatures returns the number of features per center.
	NFeatures() int

	//Cutoff returns the interaction cutoff radius of the descriptor.
	Cutoff() float64

	//Average returns the averaging mode of the descriptor.
	Average() AverageMode
}

//PairDistanceSum is the simplest possible descriptor: for each center, the
//single feature is the sum of the distances from the center to every atom
//within the cutoff. Its derivative is known in closed form, which makes it
//the reference used to validate the finite-difference machinery.
type PairDistanceSum struct {
	cutoff  float64
	average AverageMode
}

//NewPairDistanceSum returns a PairDistanceSum descriptor with the given
//cutoff radius. The optional argument sets the averaging mode, off by default.
func NewPairDistanceSum(cutoff float64, average ...AverageMode) (*PairDistanceSum, error) {
	if cutoff <= 0 {
		return nil, CError{fmt.Sprintf("cutoff must be positive, got %f", cutoff), []string{"NewPairDistanceSum"}}
	}
	av := AverageOff
	if len(average) > 0 {
		av = average[0]
	}
	return &PairDistanceSum{cutoff: cutoff, average: av}, nil
}

func (P *PairDistanceSum) NFeatures() int       { return 1 }
func (P *PairDistanceSum) Cutoff() float64      { return P.cutoff }
func (P *PairDistanceSum) Average() AverageMode { return P.average }

//Create fills out with the pair-distance sums for the given centers.
func (P *PairDistanceSum) Create(out *mat.Dense, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, atoms *CellList) error {
	nc := centers.NVecs()
	if err := checkCreateDims(out, P, nc, "PairDistanceSum.Create"); err != nil {
		return err
	}
	for i := 0; i < nc; i++ {
		cx, cy, cz := centers.At(i, 0), centers.At(i, 1), centers.At(i, 2)
		var sum float64
		for _, j := range atoms.NeighboursForPosition(cx, cy, cz) {
			d := dist(positions, j, cx, cy, cz)
			if d <= P.cutoff {
				sum += d
			}
		}
		if P.average == AverageOff {
			out.Set(i, 0, sum)
		} else {
			out.Set(0, 0, out.At(0, 0)+sum/float64(nc))
		}
	}
	return nil
}

//RadialHistogram is a Gaussian-smeared radial density descriptor: for each
//center, feature k holds the sum over the atoms within the cutoff of a
//Gaussian centered at the atom-center distance, sampled at the kth point of
//a uniform radial grid from 0 to the cutoff.
type RadialHistogram struct {
	cutoff  float64
	nbins   int
	sigma   float64
	average AverageMode
}

//NewRadialHistogram returns a RadialHistogram with nbins features, a
//smearing width sigma and the given cutoff radius. The optional argument
//sets the averaging mode, off by default.
func NewRadialHistogram(cutoff float64, nbins int, sigma float64, average ...AverageMode) (*RadialHistogram, error) {
	if cutoff <= 0 || nbins < 1 || sigma <= 0 {
		return nil, CError{fmt.Sprintf("invalid parameters: cutoff %f, nbins %d, sigma %f", cutoff, nbins, sigma), []string{"NewRadialHistogram"}}
	}
	av := AverageOff
	if len(average) > 0 {
		av = average[0]
	}
	return &RadialHistogram{cutoff: cutoff, nbins: nbins, sigma: sigma, average: av}, nil
}

func (R *RadialHistogram) NFeatures() int       { return R.nbins }
func (R *RadialHistogram) Cutoff() float64      { return R.cutoff }
func (R *RadialHistogram) Average() AverageMode { return R.average }

//Create fills out with the smeared radial densities for the given centers.
func (R *RadialHistogram) Create(out *mat.Dense, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, atoms *CellList) error {
	nc := centers.NVecs()
	if err := checkCreateDims(out, R, nc, "RadialHistogram.Create"); err != nil {
		return err
	}
	step := R.cutoff / float64(R.nbins)
	gnorm := 1.0 / (2 * R.sigma * R.sigma)
	kernel := make([]float64, R.nbins)
	for i := 0; i < nc; i++ {
		cx, cy, cz := centers.At(i, 0), centers.At(i, 1), centers.At(i, 2)
		var dst []float64
		if R.average == AverageOff {
			dst = out.RawRowView(i)
		} else {
			dst = out.RawRowView(0)
		}
		for _, j := range atoms.NeighboursForPosition(cx, cy, cz) {
			d := dist(positions, j, cx, cy, cz)
			if d > R.cutoff {
				continue
			}
			for k := 0; k < R.nbins; k++ {
				rk := (float64(k) + 0.5) * step
				kernel[k] = math.Exp(-(d - rk) * (d - rk) * gnorm)
			}
			w := 1.0
			if R.average != AverageOff {
				w = 1.0 / float64(nc)
			}
			floats.AddScaled(dst, w, kernel)
		}
	}
	return nil
}

//checkCreateDims verifies that out can hold the descriptor output for nc
//centers. The check happens once per Create call, at the boundary; the inner
//loops trust it.
func checkCreateDims(out *mat.Dense, d Describer, nc int, caller string) error {
	if out == nil {
		return CError{"nil output matrix given", []string{caller}}
	}
	wantRows := nc
	if d.Average() != AverageOff {
		wantRows = 1
	}
	r, c := out.Dims()
	if r != wantRows || c != d.NFeatures() {
		return CError{fmt.Sprintf("output is %dx%d, want %dx%d", r, c, wantRows, d.NFeatures()), []string{caller}}
	}
	return nil
}
