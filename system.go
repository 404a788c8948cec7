/*
 * system.go, part of godesc.
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

	v3 "github.com/mlatoms/godesc/v3"
	"gonum.org/v1/gonum/mat"
)

//System bundles the positions, atomic numbers, cell and periodic-boundary
//flags of an atomic system, together with the index-mapping metadata produced
//when the system is periodically extended. A System is constructed once,
//either directly or by ExtendSystem, and is read-only thereafter: the
//descriptor and derivative machinery relies on it not changing underneath.
type System struct {
	positions     *v3.Matrix
	atomicNumbers []int
	cell          *mat.Dense //3x3, one lattice vector per row. May be zero for non-periodic systems.
	pbc           [3]bool
	//indices links each atom in the system to an index in the original,
	//non-repeated system.
	indices []int
	//cellIndices links each atom to the integer translation of the repeated
	//cell it belongs to. For non-extended systems all atoms are tied to the
	//(0,0,0) cell.
	cellIndices [][3]int
	//interactive contains the indices, in this system's own numbering, of the
	//atoms which will act as local centers when creating a descriptor.
	interactive map[int]bool
}

//NewSystem returns a System with the given positions, atomic numbers, cell
//and periodic boundary conditions. The cell has one lattice vector per row
//and may be nil for fully non-periodic systems. It returns an error if the
//slices are nil or mismatched, or if a periodic axis has a zero-length
//lattice vector: that is a configuration error and is reported here rather
//than deep inside a later computation.
func NewSystem(positions *v3.Matrix, atomicNumbers []int, cell *mat.Dense, pbc [3]bool) (*System, error) {
	if positions == nil {
		return nil, CError{"nil positions given", []string{"NewSystem"}}
	}
	if atomicNumbers == nil {
		return nil, CError{"nil atomic numbers given", []string{"NewSystem"}}
	}
	n := positions.NVecs()
	if len(atomicNumbers) != n {
		return nil, CError{fmt.Sprintf("%d atomic numbers given for %d positions", len(atomicNumbers), n), []string{"NewSystem"}}
	}
	if cell == nil {
		cell = mat.NewDense(3, 3, nil)
	}
	if r, c := cell.Dims(); r != 3 || c != 3 {
		return nil, CError{fmt.Sprintf("malformed cell: %dx%d", r, c), []string{"NewSystem"}}
	}
	for axis := 0; axis < 3; axis++ {
		if pbc[axis] && norm(cell.RawRowView(axis)) <= appzero {
			return nil, CError{fmt.Sprintf("periodic axis %d has a zero-length lattice vector", axis), []string{"NewSystem"}}
		}
	}
	S := new(System)
	S.positions = positions
	S.atomicNumbers = atomicNumbers
	S.cell = cell
	S.pbc = pbc
	S.indices = make([]int, n)
	S.cellIndices = make([][3]int, n)
	S.interactive = make(map[int]bool, n)
	for i := 0; i < n; i++ {
		S.indices[i] = i
		S.interactive[i] = true
	}
	return S, nil
}

//Len returns the number of atoms in the system.
func (S *System) Len() int {
	return len(S.indices)
}

//Positions returns the coordinates of the system. The returned matrix is not
//a copy; callers must not modify it.
func (S *System) Positions() *v3.Matrix { return S.positions }

//AtomicNumbers returns the atomic numbers of the system, in atom order.
func (S *System) AtomicNumbers() []int { return S.atomicNumbers }

//Cell returns the 3x3 cell of the system, one lattice vector per row.
func (S *System) Cell() *mat.Dense { return S.cell }

//PBC returns the periodic boundary flags of the system.
func (S *System) PBC() [3]bool { return S.pbc }

//Indices returns, for each atom, its index in the original, non-repeated
//system.
func (S *System) Indices() []int { return S.indices }

//CellIndices returns, for each atom, the integer translation of the
//repeated cell the atom belongs to.
func (S *System) CellIndices() [][3]int { return S.cellIndices }

//IsInteractive returns whether the atom i is eligible to act as a local
//center when creating a descriptor. Panics if out of range.
func (S *System) IsInteractive(i int) bool {
	if i >= S.Len() {
		panic(ErrIndexOutOfRange)
	}
	return S.interactive[i]
}

//InteractiveAtoms returns the indices, in this system's numbering, of the
//atoms eligible to act as local centers, in ascending order.
func (S *System) InteractiveAtoms() []int {
	ret := make([]int, 0, len(S.interactive))
	for i := 0; i < S.Len(); i++ {
		if S.interactive[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

//SetInteractive marks exactly the atoms in list as center-eligible. It is
//meant to be called right after construction, before any computation uses
//the system.
func (S *System) SetInteractive(list []int) error {
	ni := make(map[int]bool, len(list))
	for _, i := range list {
		if i < 0 || i >= S.Len() {
			return CError{fmt.Sprintf("atom %d out of range", i), []string{"SetInteractive"}}
		}
		ni[i] = true
	}
	S.interactive = ni
	return nil
}

//IsExtended returns true if the system contains periodic replicas, i.e. if
//any atom is tied to a cell other than (0,0,0).
func (S *System) IsExtended() bool {
	for _, c := range S.cellIndices {
		if c != [3]int{} {
			return true
		}
	}
	return false
}

//Copy returns a deep copy of the system.
func (S *System) Copy() *System {
	N := new(System)
	N.positions = v3.Zeros(S.Len())
	N.positions.Copy(S.positions)
	N.atomicNumbers = append([]int{}, S.atomicNumbers...)
	N.cell = mat.DenseCopyOf(S.cell)
	N.pbc = S.pbc
	N.indices = append([]int{}, S.indices...)
	N.cellIndices = append([][3]int{}, S.cellIndices...)
	N.interactive = make(map[int]bool, len(S.interactive))
	for k, v := range S.interactive {
		N.interactive[k] = v
	}
	return N
}
