package covariance

import "math"

// Bhattacharyya returns the Bhattacharyya distance between two Gaussians
// with means muA, muB and covariances sigmaA, sigmaB (spec §4.B). If the
// averaged covariance is singular, it returns 0 (treated as fully
// overlapping rather than penalized).
func Bhattacharyya(muA, muB [3]float64, sigmaA, sigmaB Sym3) float64 {
	sigma := Scale(Add(sigmaA, sigmaB), 0.5)
	inv, ok := sigma.Inverse()
	if !ok {
		return 0
	}
	delta := [3]float64{muB[0] - muA[0], muB[1] - muA[1], muB[2] - muA[2]}
	term1 := 0.125 * inv.QuadForm(delta)

	detSigma := sigma.Determinant()
	detA := sigmaA.Determinant()
	detB := sigmaB.Determinant()
	denom := math.Sqrt(math.Max(detA*detB, 0))
	if denom < 1e-300 || detSigma <= 0 {
		return term1
	}
	term2 := 0.5 * math.Log(detSigma/denom)
	return term1 + term2
}

// Similarity returns exp(-D_B) * exp(-||rgbA-rgbB||^2), mapping NaN to 0
// and guaranteeing the result lies in [0, 1].
func Similarity(muA, muB [3]float64, sigmaA, sigmaB Sym3, rgbA, rgbB [3]float32) float64 {
	db := Bhattacharyya(muA, muB, sigmaA, sigmaB)
	var rgbDist float64
	for k := 0; k < 3; k++ {
		d := float64(rgbA[k] - rgbB[k])
		rgbDist += d * d
	}
	s := math.Exp(-db) * math.Exp(-rgbDist)
	if math.IsNaN(s) {
		return 0
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
