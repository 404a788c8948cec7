/*
 * celllist.go, part of godesc.
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

//CellList is a uniform-grid spatial index over a fixed set of points. It
//answers "which points lie within the cutoff of (x,y,z)" by scanning only
//the grid cell containing the query and its 26 geometric neighbours, which
//is valid because the cell edge is never smaller than the cutoff.
//
//A CellList is built from a snapshot of the positions it is given: it keeps
//its own copy of the coordinates, so later in-place changes to the source
//matrix do not corrupt the index. It must still not be used to obtain
//up-to-date neighbour sets for mutated points; queries answer about the
//snapshot.
type CellList struct {
	cutoff  float64
	cutoff2 float64
	x, y, z []float64 //snapshot of the point coordinates
	origin  [3]float64
	edge    float64
	nc      [3]int //cells per axis
	bins    [][]int
}

//NewCellList builds a cell list over the given points with the given cutoff
//radius. Build time is linear in the number of points. An empty point set is
//fine; a non-positive cutoff is an error.
func NewCellList(points *v3.Matrix, cutoff float64) (*CellList, error) {
	if points == nil {
		return nil, CError{"nil points given", []string{"NewCellList"}}
	}
	if cutoff <= 0 {
		return nil, CError{fmt.Sprintf("cutoff must be positive, got %f", cutoff), []string{"NewCellList"}}
	}
	n := points.NVecs()
	C := new(CellList)
	C.cutoff = cutoff
	C.cutoff2 = cutoff * cutoff
	C.edge = cutoff
	C.x = make([]float64, n)
	C.y = make([]float64, n)
	C.z = make([]float64, n)
	for i := 0; i < n; i++ {
		C.x[i] = points.At(i, 0)
		C.y[i] = points.At(i, 1)
		C.z[i] = points.At(i, 2)
	}
	if n == 0 {
		C.nc = [3]int{1, 1, 1}
		C.bins = make([][]int, 1)
		return C, nil
	}
	var min, max [3]float64
	min = [3]float64{C.x[0], C.y[0], C.z[0]}
	max = min
	for i := 1; i < n; i++ {
		min[0] = math.Min(min[0], C.x[i])
		min[1] = math.Min(min[1], C.y[i])
		min[2] = math.Min(min[2], C.z[i])
		max[0] = math.Max(max[0], C.x[i])
		max[1] = math.Max(max[1], C.y[i])
		max[2] = math.Max(max[2], C.z[i])
	}
	//The grid is padded by one cutoff on each side so any query location
	//within reach of a point falls either inside the grid or right next to it.
	for a := 0; a < 3; a++ {
		C.origin[a] = min[a] - cutoff
		span := max[a] + cutoff - C.origin[a]
		C.nc[a] = int(math.Ceil(span/C.edge)) + 1
	}
	C.bins = make([][]int, C.nc[0]*C.nc[1]*C.nc[2])
	for i := 0; i < n; i++ {
		b := C.binIndex(C.cellCoord(C.x[i], C.y[i], C.z[i]))
		C.bins[b] = append(C.bins[b], i)
	}
	return C, nil
}

//Len returns the number of points indexed.
func (C *CellList) Len() int { return len(C.x) }

//Cutoff returns the cutoff radius the index was built with.
func (C *CellList) Cutoff() float64 { return C.cutoff }

func (C *CellList) cellCoord(x, y, z float64) [3]int {
	return [3]int{
		int(math.Floor((x - C.origin[0]) / C.edge)),
		int(math.Floor((y - C.origin[1]) / C.edge)),
		int(math.Floor((z - C.origin[2]) / C.edge)),
	}
}

func (C *CellList) binIndex(c [3]int) int {
	return (c[0]*C.nc[1]+c[1])*C.nc[2] + c[2]
}

//NeighboursForPosition returns the indices, into the indexed point set, of
//all points within the cutoff radius of the location (x,y,z). The boundary
//is inclusive: a point at exactly the cutoff distance is returned. The
//result is equivalent to a brute-force scan with the test
//dist(p,query) <= cutoff.
func (C *CellList) NeighboursForPosition(x, y, z float64) []int {
	if len(C.x) == 0 {
		return nil
	}
	c := C.cellCoord(x, y, z)
	//A query more than one cell outside the (already padded) grid cannot
	//reach any point.
	for a := 0; a < 3; a++ {
		if c[a] < -1 || c[a] > C.nc[a] {
			return nil
		}
	}
	var ret []int
	for i := maxint(c[0]-1, 0); i <= minint(c[0]+1, C.nc[0]-1); i++ {
		for j := maxint(c[1]-1, 0); j <= minint(c[1]+1, C.nc[1]-1); j++ {
			for k := maxint(c[2]-1, 0); k <= minint(c[2]+1, C.nc[2]-1); k++ {
				for _, p := range C.bins[C.binIndex([3]int{i, j, k})] {
					dx := C.x[p] - x
					dy := C.y[p] - y
					dz := C.z[p] - z
					if dx*dx+dy*dy+dz*dz <= C.cutoff2 {
						ret = append(ret, p)
					}
				}
			}
		}
	}
	return ret
}

func minint(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}
