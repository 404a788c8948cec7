/*
 * geometric.go, part of godesc
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
*/

package desc

import (
	"math"

	v3 "github.com/mlatoms/godesc/v3"
	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//cross takes two 3-element vectors and returns their cross product.
func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

//dot takes two 3-element vectors and returns their dot product.
func dot(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

//norm returns the Euclidean norm of a 3-element vector.
func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

//Distances returns the full pairwise distance matrix for the given
//positions, as an NxN symmetric Dense with zeros in the diagonal.
func Distances(positions *v3.Matrix) *mat.Dense {
	n := positions.NVecs()
	ret := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := positions.At(i, 0) - positions.At(j, 0)
			dy := positions.At(i, 1) - positions.At(j, 1)
			dz := positions.At(i, 2) - positions.At(j, 2)
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			ret.Set(i, j, d)
			ret.Set(j, i, d)
		}
	}
	return ret
}

//dist returns the Euclidean distance between the point (x,y,z) and the ith
//vector of coord.
func dist(coord *v3.Matrix, i int, x, y, z float64) float64 {
	dx := coord.At(i, 0) - x
	dy := coord.At(i, 1) - y
	dz := coord.At(i, 2) - z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
