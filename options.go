/*
 * options.go, part of godesc.
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

//Options holds the tunable knobs of the derivative engine.
type Options struct {
	step float64
	cpus int
}

//DefaultOptions returns an Options with the default values: the standard
//central-difference step of 1e-4 length units and a single worker.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.step = 1e-4
	ret.cpus = 1
	return ret
}

//Step returns the finite-difference step h and sets it, if a valid
//(positive) value is given.
func (o *Options) Step(step ...float64) float64 {
	ret := o.step
	if len(step) > 0 && step[0] > 0 {
		o.step = step[0]
	}
	return ret
}

//Cpus returns the number of goroutines used to process the requested atoms
//and sets it, if a valid value is given. With the default of 1 the
//computation is sequential and perturbs the caller's position matrix in
//place (restoring it before returning); with more than 1, each worker
//operates on a private copy.
func (o *Options) Cpus(cpus ...int) int {
	ret := o.cpus
	if len(cpus) > 0 && cpus[0] > 0 {
		o.cpus = cpus[0]
	}
	return ret
}
