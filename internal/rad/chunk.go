package rad

import "github.com/radsplat/build-lod/internal/splat"

// propertyDims is the splat-major tuple width of each property, mirroring
// spec §3.1's field shapes.
func propertyDims(prop string, maxSH int) int {
	switch prop {
	case PropCenter, PropRGB, PropScales:
		return 3
	case PropAlpha, PropChildCount, PropChildStart:
		return 1
	case PropOrient:
		return 4
	case PropSH1:
		return splat.SH1Len
	case PropSH2:
		return splat.SH2Len
	case PropSH3:
		return splat.SH3Len
	}
	_ = maxSH
	return 0
}

// extractProperty pulls one column's splat-major float values out of
// [base, base+count) of r.
func extractProperty(r splat.Reader, prop string, base, count int) []float32 {
	dims := propertyDims(prop, r.MaxSH())
	out := make([]float32, count*dims)
	for i := 0; i < count; i++ {
		c := r.Get(base + i)
		switch prop {
		case PropCenter:
			copy(out[i*3:i*3+3], c.Center[:])
		case PropAlpha:
			out[i] = c.Opacity
		case PropRGB:
			copy(out[i*3:i*3+3], c.RGB[:])
		case PropScales:
			copy(out[i*3:i*3+3], c.Scales[:])
		case PropOrient:
			copy(out[i*4:i*4+4], c.Quat[:])
		case PropSH1:
			copy(out[i*9:i*9+9], c.SH1[:])
		case PropSH2:
			copy(out[i*15:i*15+15], c.SH2[:])
		case PropSH3:
			copy(out[i*21:i*21+21], c.SH3[:])
		case PropChildCount:
			out[i] = float32(len(r.Children(base + i)))
		case PropChildStart:
			children := r.Children(base + i)
			if len(children) > 0 {
				start := children[0]
				for _, ch := range children[1:] {
					if ch < start {
						start = ch
					}
				}
				out[i] = float32(start)
			}
		}
	}
	return out
}

// applyProperty writes a decoded column back into w at [base, base+count),
// except child_count/child_start which the caller combines separately
// (see decoder.go) since SetChildren needs both at once.
func applyProperty(w splat.Writer, prop string, base, count int, values []float32) {
	for i := 0; i < count; i++ {
		idx := base + i
		c := w.Get(idx)
		switch prop {
		case PropCenter:
			copy(c.Center[:], values[i*3:i*3+3])
		case PropAlpha:
			c.Opacity = values[i]
		case PropRGB:
			copy(c.RGB[:], values[i*3:i*3+3])
		case PropScales:
			copy(c.Scales[:], values[i*3:i*3+3])
		case PropOrient:
			copy(c.Quat[:], values[i*4:i*4+4])
		case PropSH1:
			copy(c.SH1[:], values[i*9:i*9+9])
		case PropSH2:
			copy(c.SH2[:], values[i*15:i*15+15])
			c.HasSH2 = true
		case PropSH3:
			copy(c.SH3[:], values[i*21:i*21+21])
			c.HasSH3 = true
		default:
			continue
		}
		w.Set(idx, c)
	}
}
