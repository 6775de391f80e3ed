package traversal

import (
	"math"

	"github.com/radsplat/build-lod/internal/splat"
)

// Params bundles one (view, instance) traversal's inputs: spec §4.H's
// view transform, foveation knobs, and the two bounds the walk respects.
type Params struct {
	Origin   [3]float32
	Forward  [3]float32 // unit vector
	LodScale float32

	BehindFoveate float32
	ConeFov0      float32 // full angle, radians
	ConeFov       float32 // full angle, radians
	ConeFoveate   float32

	MaxSplats       int
	PixelScaleLimit float32
}

// PixelScale computes the on-screen size proxy of spec §4.H: distance-
// scaled feature size times a view-angle foveation multiplier.
func PixelScale(c splat.Core, p Params) float32 {
	dx := c.Center[0] - p.Origin[0]
	dy := c.Center[1] - p.Origin[1]
	dz := c.Center[2] - p.Origin[2]
	d := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	if d == 0 {
		d = 1e-6
	}
	raw := (c.FeatureSize() / d) * p.LodScale

	fwdDot := dx*p.Forward[0] + dy*p.Forward[1] + dz*p.Forward[2]
	if fwdDot <= 0 {
		return raw * p.BehindFoveate
	}

	cosTheta := fwdDot / d
	cosFov0Half := float32(math.Cos(float64(p.ConeFov0) / 2))
	cosFovHalf := float32(math.Cos(float64(p.ConeFov) / 2))

	switch {
	case cosTheta >= cosFov0Half:
		return raw
	case cosTheta >= cosFovHalf:
		t := lerpParam(cosTheta, cosFov0Half, cosFovHalf)
		return raw * lerp(p.ConeFoveate, 1, 1-t)
	default:
		t := lerpParam(cosTheta, cosFovHalf, 0)
		return raw * lerp(p.BehindFoveate, p.ConeFoveate, 1-t)
	}
}

// lerpParam maps x linearly from [hi, lo] (hi at t=0, lo at t=1) to t,
// clamped to [0, 1]; hi and lo may be given in either order relative to
// x's expected range since cosine bands run downward.
func lerpParam(x, hi, lo float32) float32 {
	if hi == lo {
		return 0
	}
	t := (hi - x) / (hi - lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
