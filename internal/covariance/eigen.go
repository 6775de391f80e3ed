package covariance

import "math"

// Eigen is a symmetric 3x3 eigendecomposition: three eigenvalues
// (ascending) with corresponding orthonormal eigenvectors, each
// eigenvalue clamped to >= 0 (covariances are PSD by construction; the
// clamp only guards against floating-point underflow into the negatives).
type Eigen struct {
	Values  [3]float64
	Vectors [3][3]float64 // Vectors[i] is the eigenvector for Values[i]
}

// Decompose computes the positive eigendecomposition of a symmetric 3x3
// matrix using the closed-form trigonometric solution (Deledalle et al.):
// no iteration, exact for well-conditioned inputs.
func Decompose(a Sym3) Eigen {
	p1 := a.XY*a.XY + a.XZ*a.XZ + a.YZ*a.YZ
	if p1 < 1e-18 {
		// already diagonal
		vals := [3]float64{a.XX, a.YY, a.ZZ}
		order := sortIndices(vals)
		var e Eigen
		basis := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		for i, idx := range order {
			e.Values[i] = clampNonNeg(vals[idx])
			e.Vectors[i] = basis[idx]
		}
		return e
	}

	q := (a.XX + a.YY + a.ZZ) / 3
	p2 := sq(a.XX-q) + sq(a.YY-q) + sq(a.ZZ-q) + 2*p1
	p := math.Sqrt(p2 / 6)
	b := Scale(AddDiagonal(a, -q), 1/p)
	r := b.Determinant() / 2
	if r <= -1 {
		r = -1
	} else if r >= 1 {
		r = 1
	}
	phi := math.Acos(r) / 3

	eig3 := q + 2*p*math.Cos(phi)
	eig1 := q + 2*p*math.Cos(phi+2*math.Pi/3)
	eig2 := 3*q - eig1 - eig3

	vals := [3]float64{eig1, eig2, eig3}
	order := sortIndices(vals)

	var e Eigen
	for i, idx := range order {
		lam := vals[idx]
		e.Values[i] = clampNonNeg(lam)
		e.Vectors[i] = eigenvector(a, lam)
	}
	orthonormalizeFrame(&e)
	return e
}

func sq(v float64) float64 { return v * v }

func clampNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// sortIndices returns the permutation of 0,1,2 that sorts v ascending.
func sortIndices(v [3]float64) [3]int {
	idx := [3]int{0, 1, 2}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if v[idx[j]] < v[idx[i]] {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
	}
	return idx
}

// eigenvector solves (A - lambda*I) v = 0 by taking the cross product of
// two rows of the shifted matrix, picking whichever pairing gives the
// largest-magnitude result (robust column-cross selection: near a
// degenerate eigenvalue some row pairs are near-parallel).
func eigenvector(a Sym3, lambda float64) [3]float64 {
	m := [3][3]float64{
		{a.XX - lambda, a.XY, a.XZ},
		{a.XY, a.YY - lambda, a.YZ},
		{a.XZ, a.YZ, a.ZZ - lambda},
	}
	candidates := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	var best [3]float64
	bestNorm := -1.0
	for _, pr := range candidates {
		v := cross(m[pr[0]], m[pr[1]])
		n := norm(v)
		if n > bestNorm {
			bestNorm, best = n, v
		}
	}
	if bestNorm < 1e-20 {
		return [3]float64{0, 0, 1}
	}
	n := math.Sqrt(best[0]*best[0] + best[1]*best[1] + best[2]*best[2])
	return [3]float64{best[0] / n, best[1] / n, best[2] / n}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// ScaleQuat reconstructs the (scales, quaternion) of the representative
// ellipsoid of a covariance from its eigendecomposition, keeping the
// ascending eigenvalue order so scales[i] pairs with the i-th
// eigenvector. Eigenvalues are clamped to >= 1e-30
// before the square root (spec §4.C.5).
func (e Eigen) ScaleQuat() (scales [3]float32, quat [4]float32) {
	// Vectors are ordered by ascending eigenvalue; present scales in the
	// same order the rest of the pipeline expects (no particular axis
	// convention is required downstream, only self-consistency between
	// scales[i] and the rotation matrix's i-th column).
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		lam := e.Values[i]
		if lam < 1e-30 {
			lam = 1e-30
		}
		scales[i] = float32(math.Sqrt(lam))
		for j := 0; j < 3; j++ {
			r[j][i] = e.Vectors[i][j]
		}
	}
	if determinant3(r) < 0 {
		for j := 0; j < 3; j++ {
			r[j][2] = -r[j][2]
		}
	}
	quat = quatFromRotation(r)
	return scales, quat
}

func determinant3(r [3][3]float64) float64 {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// quatFromRotation converts an orthonormal rotation matrix to a unit
// quaternion (x, y, z, w) via the standard trace-based method.
func quatFromRotation(r [3][3]float64) [4]float32 {
	tr := r[0][0] + r[1][1] + r[2][2]
	var x, y, z, w float64
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		w = s / 4
		x = (r[2][1] - r[1][2]) / s
		y = (r[0][2] - r[2][0]) / s
		z = (r[1][0] - r[0][1]) / s
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := math.Sqrt(1+r[0][0]-r[1][1]-r[2][2]) * 2
		w = (r[2][1] - r[1][2]) / s
		x = s / 4
		y = (r[0][1] + r[1][0]) / s
		z = (r[0][2] + r[2][0]) / s
	case r[1][1] > r[2][2]:
		s := math.Sqrt(1+r[1][1]-r[0][0]-r[2][2]) * 2
		w = (r[0][2] - r[2][0]) / s
		x = (r[0][1] + r[1][0]) / s
		y = s / 4
		z = (r[1][2] + r[2][1]) / s
	default:
		s := math.Sqrt(1+r[2][2]-r[0][0]-r[1][1]) * 2
		w = (r[1][0] - r[0][1]) / s
		x = (r[0][2] + r[2][0]) / s
		y = (r[1][2] + r[2][1]) / s
		z = s / 4
	}
	return [4]float32{float32(x), float32(y), float32(z), float32(w)}
}

// orthonormalizeFrame re-derives the middle and last axes via cross
// products once the first is fixed, guarding against small numerical
// non-orthogonality between independently-solved eigenvectors.
func orthonormalizeFrame(e *Eigen) {
	v0 := e.Vectors[0]
	v2 := cross(v0, e.Vectors[1])
	n2 := norm(v2)
	if n2 < 1e-12 {
		v2 = e.Vectors[2]
		n2 = norm(v2)
		if n2 < 1e-12 {
			return
		}
	}
	v2 = [3]float64{v2[0] / n2, v2[1] / n2, v2[2] / n2}
	v1 := cross(v2, v0)
	e.Vectors[1] = v1
	e.Vectors[2] = v2
}
