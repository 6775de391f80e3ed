// Package covariance implements 3x3 symmetric-matrix algebra for
// Gaussian splat ellipsoids: construction from scale+quaternion,
// inverse, determinant, eigendecomposition, and the Bhattacharyya
// similarity metric the Bhatt-LoD builder clusters on (spec §4.B).
package covariance

import "math"

// epsDet is the singularity threshold below which Inverse fails.
const epsDet = 1e-30

// Sym3 is a symmetric 3x3 matrix stored as its six distinct entries.
type Sym3 struct {
	XX, YY, ZZ float64
	XY, XZ, YZ float64
}

// FromScaleQuat builds the covariance Sigma = R * diag(s^2) * R^T of one
// Gaussian ellipsoid from its axis half-lengths and unit rotation quaternion.
func FromScaleQuat(scales [3]float32, quat [4]float32) Sym3 {
	r := rotationMatrix(quat)
	s2 := [3]float64{
		float64(scales[0]) * float64(scales[0]),
		float64(scales[1]) * float64(scales[1]),
		float64(scales[2]) * float64(scales[2]),
	}
	// Sigma_ij = sum_k R_ik * s2_k * R_jk
	var sigma [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var v float64
			for k := 0; k < 3; k++ {
				v += r[i][k] * s2[k] * r[j][k]
			}
			sigma[i][j] = v
		}
	}
	return Sym3{
		XX: sigma[0][0], YY: sigma[1][1], ZZ: sigma[2][2],
		XY: sigma[0][1], XZ: sigma[0][2], YZ: sigma[1][2],
	}
}

func rotationMatrix(q [4]float32) [3][3]float64 {
	x, y, z, w := float64(q[0]), float64(q[1]), float64(q[2]), float64(q[3])
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n > 1e-20 {
		x, y, z, w = x/n, y/n, z/n, w/n
	} else {
		w = 1
	}
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// Add returns a + b element-wise.
func Add(a, b Sym3) Sym3 {
	return Sym3{
		XX: a.XX + b.XX, YY: a.YY + b.YY, ZZ: a.ZZ + b.ZZ,
		XY: a.XY + b.XY, XZ: a.XZ + b.XZ, YZ: a.YZ + b.YZ,
	}
}

// Scale returns a scaled by k.
func Scale(a Sym3, k float64) Sym3 {
	return Sym3{
		XX: a.XX * k, YY: a.YY * k, ZZ: a.ZZ * k,
		XY: a.XY * k, XZ: a.XZ * k, YZ: a.YZ * k,
	}
}

// AddScaledOuter adds k * v*v^T to a (used to accumulate the
// between-cluster spread term of a merge, spec §4.C.5).
func AddScaledOuter(a Sym3, v [3]float64, k float64) Sym3 {
	return Sym3{
		XX: a.XX + k*v[0]*v[0],
		YY: a.YY + k*v[1]*v[1],
		ZZ: a.ZZ + k*v[2]*v[2],
		XY: a.XY + k*v[0]*v[1],
		XZ: a.XZ + k*v[0]*v[2],
		YZ: a.YZ + k*v[1]*v[2],
	}
}

// AddDiagonal adds k*I to a.
func AddDiagonal(a Sym3, k float64) Sym3 {
	return Sym3{XX: a.XX + k, YY: a.YY + k, ZZ: a.ZZ + k, XY: a.XY, XZ: a.XZ, YZ: a.YZ}
}

// Determinant returns det(a).
func (a Sym3) Determinant() float64 {
	return a.XX*(a.YY*a.ZZ-a.YZ*a.YZ) - a.XY*(a.XY*a.ZZ-a.YZ*a.XZ) + a.XZ*(a.XY*a.YZ-a.YY*a.XZ)
}

// Inverse returns the matrix inverse via the cofactor method, and false
// if |det| < epsDet (the matrix is treated as singular).
func (a Sym3) Inverse() (Sym3, bool) {
	det := a.Determinant()
	if math.Abs(det) < epsDet {
		return Sym3{}, false
	}
	invDet := 1 / det
	cxx := a.YY*a.ZZ - a.YZ*a.YZ
	cyy := a.XX*a.ZZ - a.XZ*a.XZ
	czz := a.XX*a.YY - a.XY*a.XY
	cxy := -(a.XY*a.ZZ - a.YZ*a.XZ)
	cxz := a.XY*a.YZ - a.YY*a.XZ
	cyz := -(a.XX*a.YZ - a.XY*a.XZ)
	return Sym3{
		XX: cxx * invDet, YY: cyy * invDet, ZZ: czz * invDet,
		XY: cxy * invDet, XZ: cxz * invDet, YZ: cyz * invDet,
	}, true
}

// QuadForm returns v^T a v for a 3-vector v.
func (a Sym3) QuadForm(v [3]float64) float64 {
	return v[0]*v[0]*a.XX + v[1]*v[1]*a.YY + v[2]*v[2]*a.ZZ +
		2*v[0]*v[1]*a.XY + 2*v[0]*v[2]*a.XZ + 2*v[1]*v[2]*a.YZ
}

// Apply returns a*v for a 3-vector v.
func (a Sym3) Apply(v [3]float64) [3]float64 {
	return [3]float64{
		a.XX*v[0] + a.XY*v[1] + a.XZ*v[2],
		a.XY*v[0] + a.YY*v[1] + a.YZ*v[2],
		a.XZ*v[0] + a.YZ*v[1] + a.ZZ*v[2],
	}
}
