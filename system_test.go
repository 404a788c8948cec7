/*
 * system_test.go, part of godesc.
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
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	v3 "github.com/mlatoms/godesc/v3"
)

func TestNewSystem(t *testing.T) {
	pos, err := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	require.NoError(t, err)
	s, err := NewSystem(pos, []int{1, 1}, nil, [3]bool{})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	require.Equal(t, []int{0, 1}, s.Indices())
	require.Equal(t, [][3]int{{}, {}}, s.CellIndices())
	require.False(t, s.IsExtended())
	require.True(t, s.IsInteractive(0))
	require.Equal(t, []int{0, 1}, s.InteractiveAtoms())
}

func TestNewSystemValidation(t *testing.T) {
	pos, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	_, err := NewSystem(nil, []int{1}, nil, [3]bool{})
	require.Error(t, err)
	_, err = NewSystem(pos, nil, nil, [3]bool{})
	require.Error(t, err)
	_, err = NewSystem(pos, []int{1}, nil, [3]bool{})
	require.Error(t, err, "mismatched atomic numbers must be rejected")
	_, err = NewSystem(pos, []int{1, 1}, mat.NewDense(2, 2, nil), [3]bool{})
	require.Error(t, err, "malformed cells must be rejected")

	//a periodic axis with a zero-length lattice vector is a configuration
	//error, reported at construction and not deep inside a computation.
	cell := mat.NewDense(3, 3, []float64{2, 0, 0, 0, 2, 0, 0, 0, 0})
	_, err = NewSystem(pos, []int{1, 1}, cell, [3]bool{false, false, true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "axis 2")
	//the same cell is fine if the degenerate axis is not periodic.
	_, err = NewSystem(pos, []int{1, 1}, cell, [3]bool{true, true, false})
	require.NoError(t, err)
}

func TestSetInteractive(t *testing.T) {
	pos, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0, 2, 0, 0})
	s, err := NewSystem(pos, []int{1, 1, 1}, nil, [3]bool{})
	require.NoError(t, err)
	require.NoError(t, s.SetInteractive([]int{2}))
	require.Equal(t, []int{2}, s.InteractiveAtoms())
	require.False(t, s.IsInteractive(0))
	require.Error(t, s.SetInteractive([]int{3}))
	require.Error(t, s.SetInteractive([]int{-1}))
}

func TestSystemCopy(t *testing.T) {
	pos, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	cell := mat.NewDense(3, 3, []float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	s, err := NewSystem(pos, []int{1, 8}, cell, [3]bool{true, true, true})
	require.NoError(t, err)
	c := s.Copy()
	require.Equal(t, s.Len(), c.Len())
	require.Equal(t, s.AtomicNumbers(), c.AtomicNumbers())
	require.Equal(t, s.PBC(), c.PBC())
	//the copy must be deep: changing it leaves the original alone.
	c.Positions().Set(0, 0, 42)
	c.Cell().Set(0, 0, 42)
	require.Equal(t, 0.0, s.Positions().At(0, 0))
	require.Equal(t, 2.0, s.Cell().At(0, 0))
}
