/*
 * derivatives.go, part of godesc.
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
	"sync"

	v3 "github.com/mlatoms/godesc/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Jacobian is the derivative tensor filled by Derivatives: the element
//(c, a, x, f) holds the derivative of feature f at center c with respect to
//the xth cartesian component of the ath requested atom. The storage is one
//contiguous slice, feature-fastest.
type Jacobian struct {
	data       []float64
	nc, na, nf int
}

//NewJacobian returns a zeroed Jacobian for nCenters centers, nAtoms
//requested atoms and nFeatures features.
func NewJacobian(nCenters, nAtoms, nFeatures int) *Jacobian {
	if nCenters < 0 || nAtoms < 0 || nFeatures < 0 {
		panic(ErrShape)
	}
	return &Jacobian{
		data: make([]float64, nCenters*nAtoms*3*nFeatures),
		nc:   nCenters,
		na:   nAtoms,
		nf:   nFeatures,
	}
}

//Dims returns the four dimensions of the tensor: centers, requested atoms,
//cartesian components (always 3) and features.
func (J *Jacobian) Dims() (int, int, int, int) {
	return J.nc, J.na, 3, J.nf
}

//At returns the element (center, atom, comp, feature). Panics if out of range.
func (J *Jacobian) At(center, atom, comp, feature int) float64 {
	return J.data[J.offset(center, atom, comp)+feature]
}

//Set sets the element (center, atom, comp, feature). Panics if out of range.
func (J *Jacobian) Set(center, atom, comp, feature int, v float64) {
	J.data[J.offset(center, atom, comp)+feature] = v
}

//Raw returns the backing slice of the tensor. Changes to it are reflected in
//the Jacobian and vice-versa.
func (J *Jacobian) Raw() []float64 { return J.data }

func (J *Jacobian) offset(center, atom, comp int) int {
	if center < 0 || center >= J.nc || atom < 0 || atom >= J.na || comp < 0 || comp >= 3 {
		panic(ErrIndexOutOfRange)
	}
	return ((center*J.na+atom)*3 + comp) * J.nf
}

//row returns the contiguous feature slice for (center, atom, comp).
func (J *Jacobian) row(center, atom, comp int) []float64 {
	off := J.offset(center, atom, comp)
	return J.data[off : off+J.nf]
}

//Derivatives computes, by central finite differences, the derivative of the
//descriptor d with respect to the coordinates of the requested atoms, and
//accumulates it into outD. The caller allocates outD (zeroed, via
//NewJacobian) with dimensions (centers, len(atomIndices), 3, features); in
//an averaged mode the center dimension is 1. If returnDescriptor is true the
//unperturbed descriptor is also computed, into out (caller-allocated and
//zeroed as well).
//
//centers holds the center coordinates and centerIndices maps each center to
//its atom index in the original system numbering, or -1 for centers that are
//not atoms; positions and atomicNumbers describe the atoms; atomIndices
//lists the atoms to differentiate with respect to, in original numbering.
//
//Each requested atom is perturbed by ±h along each cartesian axis and the
//descriptor re-evaluated only for the centers within the descriptor cutoff
//of that atom; atoms with no centers in range are skipped, their rows
//staying zero. In the non-averaged mode a center that is the perturbed atom
//itself is excluded as well: its self-derivative is zero by construction and
//is not recomputed. Averaged modes always use the full center set, since
//locality pruning is unsound when values are pooled over all centers.
//
//positions is perturbed in place and restored on every exit path, normal or
//failing; after the call it is bitwise identical to what was passed in. Any
//error from the descriptor aborts the whole computation: no partial Jacobian
//is meaningful. With Options.Cpus greater than 1 the requested atoms are
//distributed over that many goroutines, each perturbing a private copy of
//the positions; the cell lists are shared read-only.
func Derivatives(outD *Jacobian, out *mat.Dense, d Describer, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, centerIndices []int, atomIndices []int, returnDescriptor bool, options ...*Options) error {
	var o *Options
	if len(options) > 0 {
		o = options[0]
	} else {
		o = DefaultOptions()
	}
	if outD == nil || positions == nil || centers == nil {
		return CError{"nil argument given", []string{"Derivatives"}}
	}
	nCenters := centers.NVecs()
	if len(centerIndices) != nCenters {
		return CError{fmt.Sprintf("%d center indices given for %d centers", len(centerIndices), nCenters), []string{"Derivatives"}}
	}
	nAtoms := positions.NVecs()
	if len(atomicNumbers) != nAtoms {
		return CError{fmt.Sprintf("%d atomic numbers given for %d atoms", len(atomicNumbers), nAtoms), []string{"Derivatives"}}
	}
	for _, i := range atomIndices {
		if i < 0 || i >= nAtoms {
			return CError{fmt.Sprintf("requested atom %d out of range", i), []string{"Derivatives"}}
		}
	}
	wantCenters := nCenters
	if d.Average() != AverageOff {
		wantCenters = 1
	}
	if jc, ja, _, jf := outD.Dims(); jc != wantCenters || ja != len(atomIndices) || jf != d.NFeatures() {
		return CError{fmt.Sprintf("Jacobian is (%d,%d,3,%d), want (%d,%d,3,%d)",
			jc, ja, jf, wantCenters, len(atomIndices), d.NFeatures()), []string{"Derivatives"}}
	}
	if returnDescriptor {
		if err := checkCreateDims(out, d, nCenters, "Derivatives"); err != nil {
			return err
		}
	}

	//Neighbours are found with cell lists: one over the atoms, handed to
	//every Create call, and one over the centers, used to find the centers a
	//perturbed atom can affect. Both are built once; the descriptor reads
	//the live positions, so the atom cell list stays valid as a
	//pre-selection device while single coordinates are wiggled.
	atomsCL, err := NewCellList(positions, d.Cutoff())
	if err != nil {
		return errDecorate(err, "Derivatives")
	}
	centersCL, err := NewCellList(centers, d.Cutoff())
	if err != nil {
		return errDecorate(err, "Derivatives")
	}

	//indexAtom maps an original-atom index to its row in atomIndices;
	//centerAtom maps a center row to a row in atomIndices, and is only
	//defined for centers that sit on a requested atom. It is what detects
	//self-interaction.
	indexAtom := make(map[int]int, len(atomIndices))
	for i, index := range atomIndices {
		indexAtom[index] = i
	}
	centerAtom := make(map[int]int, nCenters)
	for i, index := range centerIndices {
		if index == -1 {
			continue
		}
		if ai, ok := indexAtom[index]; ok {
			centerAtom[i] = ai
		}
	}

	if returnDescriptor {
		if err := d.Create(out, positions, atomicNumbers, centers, atomsCL); err != nil {
			return errDecorate(err, "Derivatives")
		}
	}

	if o.Cpus() > 1 && len(atomIndices) > 1 {
		return derivativesConc(outD, d, positions, atomicNumbers, centers, centerAtom, atomIndices, atomsCL, centersCL, o)
	}
	for iIdx := range atomIndices {
		if err := atomDerivatives(outD, d, positions, atomicNumbers, centers, centerAtom, atomIndices, iIdx, atomsCL, centersCL, o.Step()); err != nil {
			return errDecorate(err, "Derivatives")
		}
	}
	return nil
}

//atomDerivatives fills the Jacobian rows of the requested atom in row iIdx
//of atomIndices. positions is perturbed in place and restored before
//returning, whatever the exit path.
func atomDerivatives(outD *Jacobian, d Describer, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, centerAtom map[int]int, atomIndices []int, iIdx int, atomsCL, centersCL *CellList, h float64) error {
	iAtom := atomIndices[iIdx]
	nFeatures := d.NFeatures()
	coefficients := [2]float64{-0.5, 0.5}
	displacements := [2]float64{-1.0, 1.0}

	//If the atom has no centers within the cutoff its derivative rows are
	//exactly zero and the whole stencil is skipped.
	ix := positions.At(iAtom, 0)
	iy := positions.At(iAtom, 1)
	iz := positions.At(iAtom, 2)
	locals := centersCL.NeighboursForPosition(ix, iy, iz)
	if len(locals) == 0 {
		return nil
	}

	var centersLocal *v3.Matrix
	var localIdx []int
	if d.Average() == AverageOff {
		//Only the nearby centers need re-evaluation, and a center that is
		//the wiggled atom itself is dropped: its self-derivative is zero by
		//construction.
		keep := make([]int, 0, len(locals))
		for _, c := range locals {
			if ai, ok := centerAtom[c]; ok && ai == iIdx {
				continue
			}
			keep = append(keep, c)
		}
		if len(keep) == 0 {
			return nil
		}
		centersLocal = v3.Zeros(len(keep))
		centersLocal.SomeVecs(centers, keep)
		localIdx = keep
	} else {
		//Pooled output: every center contributes to the single feature row,
		//so the full set is evaluated every time. Pruning and
		//self-interaction removal are much harder to get right here and are
		//left out, a known performance gap.
		centersLocal = centers
		localIdx = []int{0}
	}

	buf := mat.NewDense(len(localIdx), nFeatures, nil)
	for comp := 0; comp < 3; comp++ {
		err := func() error {
			orig := positions.At(iAtom, comp)
			defer positions.Set(iAtom, comp, orig) //the restore must survive any exit
			for s := 0; s < 2; s++ {
				positions.Set(iAtom, comp, orig+h*displacements[s])
				buf.Zero()
				if err := d.Create(buf, positions, atomicNumbers, centersLocal, atomsCL); err != nil {
					return err
				}
				for il, ic := range localIdx {
					floats.AddScaled(outD.row(ic, iIdx, comp), coefficients[s], buf.RawRowView(il))
				}
			}
			return nil
		}()
		if err != nil {
			return errDecorate(err, fmt.Sprintf("atomDerivatives: atom %d component %d", iAtom, comp))
		}
		for _, ic := range localIdx {
			floats.Scale(1/h, outD.row(ic, iIdx, comp))
		}
	}
	return nil
}

//derivativesConc distributes the requested atoms over o.Cpus() workers. Each
//worker perturbs a private copy of the positions, so the caller's matrix is
//never touched; the Jacobian rows of different atoms do not alias, so the
//workers write to outD without locking. The cell lists are read-only and
//shared.
func derivativesConc(outD *Jacobian, d Describer, positions *v3.Matrix, atomicNumbers []int, centers *v3.Matrix, centerAtom map[int]int, atomIndices []int, atomsCL, centersCL *CellList, o *Options) error {
	cpus := o.Cpus()
	if cpus > len(atomIndices) {
		cpus = len(atomIndices)
	}
	h := o.Step()
	errs := make(chan error, cpus)
	var wg sync.WaitGroup
	chunk := (len(atomIndices) + cpus - 1) / cpus
	for w := 0; w < cpus; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(atomIndices) {
			hi = len(atomIndices)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			private := v3.Zeros(positions.NVecs())
			private.Copy(positions)
			for iIdx := lo; iIdx < hi; iIdx++ {
				if err := atomDerivatives(outD, d, private, atomicNumbers, centers, centerAtom, atomIndices, iIdx, atomsCL, centersCL, h); err != nil {
					errs <- errDecorate(err, "derivativesConc")
					return
				}
			}
		}(lo, hi)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
