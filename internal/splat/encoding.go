package splat

import "sort"

// Encoding holds the affine-mapping parameters shared across one compact
// splat array: the domains that unsigned/signed-byte columns are mapped
// to and from.
type Encoding struct {
	RGBMin, RGBMax       float32
	LnScaleMin, LnScaleMax float32
	SH1Max, SH2Max, SH3Max float32
	LodOpacity           bool
}

// DefaultEncoding is a reasonable fixed-point range for freshly decoded,
// non-LoD splats: rgb roughly in [-1, 2], scales spanning a few orders
// of magnitude in log space, SH coefficients within [-1, 1].
func DefaultEncoding() Encoding {
	return Encoding{
		RGBMin:     -1,
		RGBMax:     2,
		LnScaleMin: -12,
		LnScaleMax: 4,
		SH1Max:     1,
		SH2Max:     1,
		SH3Max:     1,
		LodOpacity: false,
	}
}

// FitEncoding derives an Encoding that covers the actual data in arr by
// sampling 1st/99th percentiles of rgb and ln(scale), and the max
// absolute SH coefficient per band. This is the "auto-fit" step the
// compact array builds on; the CLI also records its result as the RAD
// file's splatEncoding meta, while the RAD Auto-encoding resolver
// computes its own per-chunk ranges (see SPEC_FULL.md §5).
func FitEncoding(r Reader, lodOpacity bool) Encoding {
	n := r.Len()
	if n == 0 {
		return DefaultEncoding()
	}
	rgb := make([]float32, 0, 3*n)
	lnscale := make([]float32, 0, 3*n)
	var sh1max, sh2max, sh3max float32
	for i := 0; i < n; i++ {
		c := r.Get(i)
		rgb = append(rgb, c.RGB[0], c.RGB[1], c.RGB[2])
		for _, s := range c.Scales {
			if s > 0 {
				lnscale = append(lnscale, logf(s))
			}
		}
		for _, v := range c.SH1 {
			if abs32(v) > sh1max {
				sh1max = abs32(v)
			}
		}
		if c.HasSH2 {
			for _, v := range c.SH2 {
				if abs32(v) > sh2max {
					sh2max = abs32(v)
				}
			}
		}
		if c.HasSH3 {
			for _, v := range c.SH3 {
				if abs32(v) > sh3max {
					sh3max = abs32(v)
				}
			}
		}
	}
	rgbMin, rgbMax := percentile(rgb, 0.01), percentile(rgb, 0.99)
	lnMin, lnMax := percentile(lnscale, 0.01), percentile(lnscale, 0.99)
	if rgbMin == rgbMax {
		rgbMax = rgbMin + 1
	}
	if lnMin == lnMax {
		lnMax = lnMin + 1
	}
	return Encoding{
		RGBMin:     rgbMin,
		RGBMax:     rgbMax,
		LnScaleMin: lnMin,
		LnScaleMax: lnMax,
		SH1Max:     max32(sh1max, 1),
		SH2Max:     max32(sh2max, 1),
		SH3Max:     max32(sh3max, 1),
		LodOpacity: lodOpacity,
	}
}

func percentile(vals []float32, p float64) float32 {
	if len(vals) == 0 {
		return 0
	}
	cp := append([]float32(nil), vals...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	idx := int(p * float64(len(cp)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cp) {
		idx = len(cp) - 1
	}
	return cp[idx]
}
