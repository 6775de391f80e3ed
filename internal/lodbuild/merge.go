package lodbuild

import (
	"github.com/radsplat/build-lod/internal/covariance"
	"github.com/radsplat/build-lod/internal/splat"
)

// MergeCore computes the interior-node splat representing the weighted
// combination of the splats at members, per spec §4.C.5: weights are
// area*opacity normalized, covariances combine via the parallel-axis
// (between-cluster spread) rule, the representative ellipsoid comes from
// eigendecomposing the combined covariance, opacity renormalizes against
// the new ellipsoid's area, and SH/rgb take a weighted mean.
func MergeCore(r splat.Reader, members []int) splat.Core {
	n := len(members)
	cores := make([]splat.Core, n)
	weights := make([]float64, n)
	var sumW float64
	for i, idx := range members {
		c := r.Get(idx)
		cores[i] = c
		w := float64(c.Area()) * float64(c.Opacity)
		if w <= 0 {
			w = 1e-12
		}
		weights[i] = w
		sumW += w
	}
	if sumW <= 0 {
		sumW = 1
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
	} else {
		for i := range weights {
			weights[i] /= sumW
		}
	}

	var center [3]float64
	for i, c := range cores {
		for k := 0; k < 3; k++ {
			center[k] += weights[i] * float64(c.Center[k])
		}
	}

	var cov covariance.Sym3
	for i, c := range cores {
		sigma := covariance.FromScaleQuat(c.Scales, c.Quat)
		delta := [3]float64{
			float64(c.Center[0]) - center[0],
			float64(c.Center[1]) - center[1],
			float64(c.Center[2]) - center[2],
		}
		term := covariance.AddScaledOuter(sigma, delta, 1)
		cov = covariance.Add(cov, covariance.Scale(term, weights[i]))
	}

	eigen := covariance.Decompose(cov)
	scales, quat := eigen.ScaleQuat()

	var out splat.Core
	out.Center = [3]float32{float32(center[0]), float32(center[1]), float32(center[2])}
	out.Scales = scales
	out.Quat = quat

	area := out.Area()
	opacity := float32(sumW) / area
	if opacity < 1e-6 {
		opacity = 1e-6
	}
	if opacity > 1000 {
		opacity = 1000
	}
	out.Opacity = opacity

	maxSH := r.MaxSH()
	for i, c := range cores {
		w := float32(weights[i])
		for k := 0; k < 3; k++ {
			out.RGB[k] += w * c.RGB[k]
		}
		for k := range out.SH1 {
			out.SH1[k] += w * c.SH1[k]
		}
		if maxSH >= 2 {
			out.HasSH2 = true
			for k := range out.SH2 {
				out.SH2[k] += w * c.SH2[k]
			}
		}
		if maxSH >= 3 {
			out.HasSH3 = true
			for k := range out.SH3 {
				out.SH3[k] += w * c.SH3[k]
			}
		}
	}
	return out
}
