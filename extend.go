/*
 * extend.go, part of godesc.
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
)

//ExtendSystem returns a new System containing the atoms of s plus enough
//periodic replicas, displaced by integer combinations of the lattice vectors
//along the pbc-enabled axes, that every point within cutoff of any
//original-cell atom is represented. Replica atoms keep, in Indices, the
//index of their source atom in the original (non-extended) numbering, and
//record in CellIndices the integer translation used. Only original atoms
//are marked interactive. A replica is only added if it actually lies within
//cutoff of some original-cell atom, which keeps the extension minimal and
//makes re-extension with the same cutoff a no-op.
func ExtendSystem(s *System, cutoff float64) (*System, error) {
	if s == nil {
		return nil, CError{"nil system given", []string{"ExtendSystem"}}
	}
	if cutoff < 0 {
		return nil, CError{fmt.Sprintf("cutoff must be non-negative, got %f", cutoff), []string{"ExtendSystem"}}
	}
	multiples, err := replicaMultiples(s, cutoff)
	if err != nil {
		return nil, errDecorate(err, "ExtendSystem")
	}
	//Replicas are screened against the original-cell atoms only, so that
	//extending an already extended system does not replicate the replicas.
	origRows := make([]int, 0, s.Len())
	for i, c := range s.cellIndices {
		if c == [3]int{} {
			origRows = append(origRows, i)
		}
	}
	origPos := v3.Zeros(len(origRows))
	origPos.SomeVecs(s.positions, origRows)
	var screen *CellList
	if cutoff > 0 {
		screen, err = NewCellList(origPos, cutoff)
		if err != nil {
			return nil, errDecorate(err, "ExtendSystem")
		}
	}
	cell := s.cell
	type repAtom struct {
		x, y, z float64
		z0      int //atomic number
		index   int
		cid     [3]int
	}
	kept := make([]repAtom, 0, s.Len())
	seen := make(map[[4]int]bool, s.Len())
	//the atoms already in the system always survive and keep their order.
	for i := 0; i < s.Len(); i++ {
		cid := s.cellIndices[i]
		seen[[4]int{s.indices[i], cid[0], cid[1], cid[2]}] = true
		kept = append(kept, repAtom{s.positions.At(i, 0), s.positions.At(i, 1), s.positions.At(i, 2),
			s.atomicNumbers[i], s.indices[i], cid})
	}
	for ia := -multiples[0]; ia <= multiples[0]; ia++ {
		for ib := -multiples[1]; ib <= multiples[1]; ib++ {
			for ic := -multiples[2]; ic <= multiples[2]; ic++ {
				t := [3]int{ia, ib, ic}
				if t == [3]int{} {
					continue
				}
				dx := float64(ia)*cell.At(0, 0) + float64(ib)*cell.At(1, 0) + float64(ic)*cell.At(2, 0)
				dy := float64(ia)*cell.At(0, 1) + float64(ib)*cell.At(1, 1) + float64(ic)*cell.At(2, 1)
				dz := float64(ia)*cell.At(0, 2) + float64(ib)*cell.At(1, 2) + float64(ic)*cell.At(2, 2)
				for i := 0; i < s.Len(); i++ {
					cid := [3]int{s.cellIndices[i][0] + t[0], s.cellIndices[i][1] + t[1], s.cellIndices[i][2] + t[2]}
					key := [4]int{s.indices[i], cid[0], cid[1], cid[2]}
					if seen[key] {
						continue
					}
					x := s.positions.At(i, 0) + dx
					y := s.positions.At(i, 1) + dy
					z := s.positions.At(i, 2) + dz
					//a replica is kept only if it can interact with the
					//original cell.
					if screen == nil || len(screen.NeighboursForPosition(x, y, z)) == 0 {
						continue
					}
					seen[key] = true
					kept = append(kept, repAtom{x, y, z, s.atomicNumbers[i], s.indices[i], cid})
				}
			}
		}
	}
	n := len(kept)
	N := new(System)
	N.positions = v3.Zeros(n)
	N.atomicNumbers = make([]int, n)
	N.cell = cell
	N.pbc = s.pbc
	N.indices = make([]int, n)
	N.cellIndices = make([][3]int, n)
	N.interactive = make(map[int]bool, len(origRows))
	for i, a := range kept {
		N.positions.Set(i, 0, a.x)
		N.positions.Set(i, 1, a.y)
		N.positions.Set(i, 2, a.z)
		N.atomicNumbers[i] = a.z0
		N.indices[i] = a.index
		N.cellIndices[i] = a.cid
		if a.cid == [3]int{} {
			N.interactive[i] = true
		}
	}
	return N, nil
}

//replicaMultiples returns, for each axis, how many cell translations are
//needed in each direction to cover the cutoff. The number comes from the
//perpendicular distance between opposite cell faces, obtained by projecting
//each lattice vector onto the unit normal of the plane spanned by the other
//two. Non-periodic axes contribute no replication.
func replicaMultiples(s *System, cutoff float64) ([3]int, error) {
	var m [3]int
	if cutoff == 0 {
		return m, nil
	}
	cell := s.cell
	a := cell.RawRowView(0)
	b := cell.RawRowView(1)
	c := cell.RawRowView(2)
	normals := [3][]float64{cross(b, c), cross(c, a), cross(a, b)}
	vecs := [3][]float64{a, b, c}
	for axis := 0; axis < 3; axis++ {
		if !s.pbc[axis] {
			continue
		}
		nn := norm(normals[axis])
		if nn <= appzero {
			//a zero-length lattice vector on a periodic axis is rejected at
			//construction, but two parallel vectors can still collapse the cell.
			return m, CError{fmt.Sprintf("cell is degenerate perpendicular to axis %d", axis), []string{"replicaMultiples"}}
		}
		height := math.Abs(dot(vecs[axis], normals[axis])) / nn
		m[axis] = int(math.Ceil(cutoff / height))
	}
	return m, nil
}
