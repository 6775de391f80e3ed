package rad

import (
	"math"
	"sort"

	"github.com/radsplat/build-lod/internal/quant"
)

// lnZeroCutoff is the fixed zero-cutoff used for every ln_0r8 column;
// spec §4.G's property metadata only carries min/max, so both encoder
// and decoder must agree on this out of band rather than persist it.
const lnZeroCutoff float32 = 1e-8

// resolved is what the Auto encoding picks for one property: the
// quantizer name plus whatever Params it needs.
type resolved struct {
	encoding string
	params   quant.Params
}

func percentile(vals []float32, p float64) float32 {
	if len(vals) == 0 {
		return 0
	}
	cp := append([]float32(nil), vals...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	idx := int(math.Round(p * float64(len(cp)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cp) {
		idx = len(cp) - 1
	}
	return cp[idx]
}

func maxAbs(vals []float32) float32 {
	var m float32
	for _, v := range vals {
		a := v
		if a < 0 {
			a = -a
		}
		if a > m {
			m = a
		}
	}
	return m
}

// resolveAuto implements spec §4.G's "Auto" resolver: sample 1st/99th
// (or 5th/95th for SH) percentiles of the column to pick a quantizer and
// its range.
func resolveAuto(prop string, values []float32, dims int) resolved {
	switch prop {
	case PropCenter:
		return resolved{encoding: "f32_lebytes"}

	case PropAlpha:
		maxV := percentile(values, 1.0)
		if maxV <= 1 {
			return resolved{encoding: "r8", params: quant.Params{Min: 0, Max: 1}}
		}
		return resolved{encoding: "f16"}

	case PropRGB:
		lo, hi := percentile(values, 0.01), percentile(values, 0.99)
		if lo >= -1 && hi <= 2 {
			if lo == hi {
				hi = lo + 1
			}
			return resolved{encoding: "r8_delta", params: quant.Params{Min: lo, Max: hi}}
		}
		return resolved{encoding: "f16"}

	case PropScales:
		ln := make([]float32, 0, len(values))
		for _, v := range values {
			if v > 0 {
				ln = append(ln, float32(math.Log(float64(v))))
			}
		}
		lo, hi := percentile(ln, 0.01), percentile(ln, 0.99)
		if hi-lo <= 12 {
			if lo == hi {
				hi = lo + 1
			}
			return resolved{encoding: "ln_0r8", params: quant.Params{Min: lo, Max: hi, ZeroCutoff: lnZeroCutoff}}
		}
		return resolved{encoding: "ln_f16"}

	case PropOrient:
		return resolved{encoding: "oct_quat_888"}

	case PropSH1, PropSH2, PropSH3:
		lo, hi := percentile(values, 0.05), percentile(values, 0.95)
		m := maxAbs([]float32{lo, hi, 1.0})
		return resolved{encoding: "s8", params: quant.Params{Max: m}}

	case PropChildCount:
		return resolved{encoding: "u16"}
	case PropChildStart:
		return resolved{encoding: "u32"}
	}
	return resolved{encoding: "f32"}
}
