/*
 * doc.go, part of godesc.
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

/*Package desc computes per-atom structural descriptors for atomic systems
(molecules and crystals) and their derivatives with respect to atomic
displacements, for use as machine-learning feature vectors.


	**godesc Capabilities**

    Bundles positions, atomic numbers, cell and periodic-boundary flags in an
	immutable System container, with the index-mapping metadata produced when
	the system is periodically extended.

    Extends periodic systems with the minimal set of replica atoms so that
	every interaction within a cutoff radius is represented.

    Partitions point sets into a uniform-grid cell list answering "which
	points lie within the cutoff of (x,y,z)" in near-constant time.

    Accepts any descriptor through the Describer interface and ships two
	reference descriptors (a pair-distance sum and a Gaussian-smeared radial
	histogram).

    Computes the Jacobian of a descriptor with respect to atomic coordinates
	by central finite differences, re-evaluating the descriptor only for the
	centers a perturbed atom can actually affect.

    Optionally distributes the per-atom stencil evaluations over several
	goroutines, each working on a private copy of the coordinates.

    Writes and reads feature matrices in a compressed on-disk format (see
	the feat subpackage) and plots feature spectra (see descplot).

The coordinate containers come from the v3 subpackage, which wraps gonum
matrices. All the heavy numerical lifting is delegated to gonum.
*/
package desc
