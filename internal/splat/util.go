package splat

import "math"

func logf(v float32) float32  { return float32(math.Log(float64(v))) }
func sqrtf(v float32) float32 { return float32(math.Sqrt(float64(v))) }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
