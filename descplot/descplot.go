/*
 * descplot.go, part of godesc.
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

//Package descplot produces quick diagnostic plots for feature matrices and
//for finite-difference convergence studies, in png format.
package descplot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//FeatureSpectrum plots the feature vector of one row of a feature matrix as
//a line over the feature index. The .png extension is added to plotname.
//Returns an error or nil.
func FeatureSpectrum(features *mat.Dense, row int, title, plotname string) error {
	if features == nil {
		return fmt.Errorf("FeatureSpectrum: given nil features")
	}
	r, c := features.Dims()
	if row < 0 || row >= r {
		return fmt.Errorf("FeatureSpectrum: row %d requested from a %dx%d matrix", row, r, c)
	}
	p := basicPlot(title, "Feature", "Value")
	pts := make(plotter.XYs, c)
	for j := 0; j < c; j++ {
		pts[j].X = float64(j)
		pts[j].Y = features.At(row, j)
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(l)
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(5*vg.Inch, 5*vg.Inch, filename)
}

//Convergence plots finite-difference errors against the step used, both
//axes in log10. A straight line of slope 2 means the expected second-order
//behavior of the central stencil. The .png extension is added to plotname.
func Convergence(steps, errors []float64, title, plotname string) error {
	if steps == nil || errors == nil {
		return fmt.Errorf("Convergence: given nil data")
	}
	if len(steps) != len(errors) {
		return fmt.Errorf("Convergence: %d steps given for %d errors", len(steps), len(errors))
	}
	p := basicPlot(title, "log10(h)", "log10(error)")
	pts := make(plotter.XYs, 0, len(steps))
	for i, h := range steps {
		if h <= 0 || errors[i] <= 0 {
			return fmt.Errorf("Convergence: steps and errors must be positive, got h=%g err=%g", h, errors[i])
		}
		pts = append(pts, plotter.XY{X: math.Log10(h), Y: math.Log10(errors[i])})
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(s)
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(5*vg.Inch, 5*vg.Inch, filename)
}
