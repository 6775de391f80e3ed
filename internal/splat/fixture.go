package splat

import "math/rand"

// Generate stands in for the external decoders spec §1 places out of
// scope (PLY/SPZ/SOG): it produces a synthetic full-precision array of n
// leaf splats scattered over [-extent,extent]^3, for tests, including the
// CLI pipeline's tests (SPEC_FULL.md §6).
func Generate(rng *rand.Rand, n int, extent float32, maxSH int) *FullArray {
	a := NewFull(maxSH, n)
	for i := 0; i < n; i++ {
		c := Core{
			Center: [3]float32{
				(rng.Float32()*2 - 1) * extent,
				(rng.Float32()*2 - 1) * extent,
				(rng.Float32()*2 - 1) * extent,
			},
			Scales: [3]float32{
				0.01 + rng.Float32()*0.2,
				0.01 + rng.Float32()*0.2,
				0.01 + rng.Float32()*0.2,
			},
			Opacity: 0.05 + rng.Float32()*0.9,
			RGB: [3]float32{
				rng.Float32()*2 - 0.5,
				rng.Float32()*2 - 0.5,
				rng.Float32()*2 - 0.5,
			},
		}
		c.Quat = randomUnitQuat(rng)
		for k := range c.SH1 {
			c.SH1[k] = rng.Float32()*2 - 1
		}
		if maxSH >= 2 {
			c.HasSH2 = true
			for k := range c.SH2 {
				c.SH2[k] = rng.Float32()*2 - 1
			}
		}
		if maxSH >= 3 {
			c.HasSH3 = true
			for k := range c.SH3 {
				c.SH3[k] = rng.Float32()*2 - 1
			}
		}
		a.AppendMerged(c, nil)
	}
	return a
}

func randomUnitQuat(rng *rand.Rand) [4]float32 {
	q := [4]float32{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
	n := float32(0)
	for _, v := range q {
		n += v * v
	}
	if n < 1e-12 {
		return [4]float32{0, 0, 0, 1}
	}
	inv := float32(1) / sqrtf(n)
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}
