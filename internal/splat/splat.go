// Package splat implements the columnar Gaussian-splat container: a
// struct-of-arrays collection of primitives plus an optional per-splat
// child-list column used when splats are interior LoD nodes.
package splat

import "math"

// SH band lengths, fixed by the spherical-harmonic degree.
const (
	SH1Len = 9
	SH2Len = 15
	SH3Len = 21
)

// MaxChildren bounds a single child list, so its length fits the u16
// child_count column; the child indices themselves are uint32.
const MaxChildren = 65535

// Core is the plain-old-data form of one splat, used as the unit of
// transfer in and out of an Array (Get/Set), independent of how the
// array stores it internally (full float columns vs. byte-packed ones).
type Core struct {
	Center   [3]float32
	Scales   [3]float32
	Quat     [4]float32 // unit quaternion, (x, y, z, w)
	Opacity  float32
	RGB      [3]float32
	SH1      [SH1Len]float32
	SH2      [SH2Len]float32
	SH3      [SH3Len]float32
	HasSH2   bool
	HasSH3   bool
}

// MaxScale returns the largest ellipsoid axis half-length.
func (c *Core) MaxScale() float32 {
	m := c.Scales[0]
	if c.Scales[1] > m {
		m = c.Scales[1]
	}
	if c.Scales[2] > m {
		m = c.Scales[2]
	}
	return m
}

// Area is the Knud Thomsen ellipsoid surface-area approximation, p = 1.6075.
func (c *Core) Area() float32 {
	const p = 1.6075
	a, b, cc := float64(c.Scales[0]), float64(c.Scales[1]), float64(c.Scales[2])
	sum := math.Pow(a*b, p) + math.Pow(a*cc, p) + math.Pow(b*cc, p)
	return float32(4 * math.Pi * math.Pow(sum/3, 1/p))
}

// LodOpacityFactor is 1 for a normal (alpha <= 1) splat and grows with
// ln(alpha) for an inflated interior LoD node (alpha > 1).
func (c *Core) LodOpacityFactor() float32 {
	if c.Opacity <= 1 {
		return 1
	}
	const e = math.E
	return float32(math.Sqrt(1 + e*math.Log(float64(c.Opacity))))
}

// FeatureSize is the size proxy driving both LoD pruning and chunk order.
func (c Core) FeatureSize() float32 {
	return 2 * c.MaxScale() * c.LodOpacityFactor()
}

// IsFinite reports whether every field of c is a finite float (no NaN/Inf),
// the predicate used by the --skip-validate pre-scan (spec E4).
func (c Core) IsFinite() bool {
	for _, v := range c.Center {
		if !finite(v) {
			return false
		}
	}
	for _, v := range c.Scales {
		if !finite(v) {
			return false
		}
	}
	for _, v := range c.Quat {
		if !finite(v) {
			return false
		}
	}
	if !finite(c.Opacity) {
		return false
	}
	for _, v := range c.RGB {
		if !finite(v) {
			return false
		}
	}
	for _, v := range c.SH1 {
		if !finite(v) {
			return false
		}
	}
	if c.HasSH2 {
		for _, v := range c.SH2 {
			if !finite(v) {
				return false
			}
		}
	}
	if c.HasSH3 {
		for _, v := range c.SH3 {
			if !finite(v) {
				return false
			}
		}
	}
	return true
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
