package splat

import "github.com/radsplat/build-lod/internal/quant"

// CompactArray is the byte-packed splat container: center stays three
// 32-bit floats, everything else is squeezed into a small fixed
// footprint via the shared Encoding's affine ranges (spec §3.2).
type CompactArray struct {
	enc Encoding

	center  [][3]float32
	opacity []uint16    // half float
	rgb     [][3]byte
	scales  [][3]byte // log-scale byte
	quat    [][3]byte // octahedral
	sh1     [][SH1Len]int8
	sh2     [][SH2Len]int8
	sh3     [][SH3Len]int8
	maxSH   int
	child   *childColumn
}

// NewCompact creates an empty compact array using the given shared
// affine Encoding.
func NewCompact(enc Encoding, maxSH int, capacity int) *CompactArray {
	a := &CompactArray{enc: enc, maxSH: maxSH, child: newChildColumn(0)}
	a.center = make([][3]float32, 0, capacity)
	a.opacity = make([]uint16, 0, capacity)
	a.rgb = make([][3]byte, 0, capacity)
	a.scales = make([][3]byte, 0, capacity)
	a.quat = make([][3]byte, 0, capacity)
	a.sh1 = make([][SH1Len]int8, 0, capacity)
	if maxSH >= 2 {
		a.sh2 = make([][SH2Len]int8, 0, capacity)
	}
	if maxSH >= 3 {
		a.sh3 = make([][SH3Len]int8, 0, capacity)
	}
	return a
}

func (a *CompactArray) Encoding() Encoding { return a.enc }

func (a *CompactArray) Len() int   { return len(a.center) }
func (a *CompactArray) MaxSH() int { return a.maxSH }

func (a *CompactArray) encodeScale(v float32) byte {
	return quant.EncodeLn0R8(v, a.enc.LnScaleMin, a.enc.LnScaleMax, 1e-30)
}

func (a *CompactArray) decodeScale(b byte) float32 {
	return quant.DecodeLn0R8(b, a.enc.LnScaleMin, a.enc.LnScaleMax, 1e-30)
}

func (a *CompactArray) Get(i int) Core {
	var c Core
	c.Center = a.center[i]
	c.Opacity = quant.Float16ToFloat32(a.opacity[i])
	for k := 0; k < 3; k++ {
		c.RGB[k] = quant.DecodeR8(a.rgb[i][k], a.enc.RGBMin, a.enc.RGBMax)
		c.Scales[k] = a.decodeScale(a.scales[i][k])
	}
	c.Quat = quant.DecodeOctQuat888(a.quat[i])
	for k := 0; k < SH1Len; k++ {
		c.SH1[k] = quant.DecodeS8(a.sh1[i][k], a.enc.SH1Max)
	}
	if a.maxSH >= 2 {
		c.HasSH2 = true
		for k := 0; k < SH2Len; k++ {
			c.SH2[k] = quant.DecodeS8(a.sh2[i][k], a.enc.SH2Max)
		}
	}
	if a.maxSH >= 3 {
		c.HasSH3 = true
		for k := 0; k < SH3Len; k++ {
			c.SH3[k] = quant.DecodeS8(a.sh3[i][k], a.enc.SH3Max)
		}
	}
	return c
}

func (a *CompactArray) Set(i int, c Core) {
	a.center[i] = c.Center
	a.opacity[i] = quant.Float32ToFloat16(c.Opacity)
	var rgb, sc [3]byte
	for k := 0; k < 3; k++ {
		rgb[k] = quant.EncodeR8(c.RGB[k], a.enc.RGBMin, a.enc.RGBMax)
		sc[k] = a.encodeScale(c.Scales[k])
	}
	a.rgb[i] = rgb
	a.scales[i] = sc
	a.quat[i] = quant.EncodeOctQuat888(c.Quat)
	var sh1 [SH1Len]int8
	for k := 0; k < SH1Len; k++ {
		sh1[k] = quant.EncodeS8(c.SH1[k], a.enc.SH1Max)
	}
	a.sh1[i] = sh1
	if a.maxSH >= 2 {
		var sh2 [SH2Len]int8
		for k := 0; k < SH2Len; k++ {
			sh2[k] = quant.EncodeS8(c.SH2[k], a.enc.SH2Max)
		}
		a.sh2[i] = sh2
	}
	if a.maxSH >= 3 {
		var sh3 [SH3Len]int8
		for k := 0; k < SH3Len; k++ {
			sh3[k] = quant.EncodeS8(c.SH3[k], a.enc.SH3Max)
		}
		a.sh3[i] = sh3
	}
}

func (a *CompactArray) Children(i int) []uint32      { return a.child.get(i) }
func (a *CompactArray) HasChildren(i int) bool        { return a.child.has(i) }
func (a *CompactArray) SetChildren(i int, cs []uint32) { a.child.set(i, cs) }

func (a *CompactArray) AppendMerged(c Core, children []uint32) int {
	idx := len(a.center)
	a.center = append(a.center, [3]float32{})
	a.opacity = append(a.opacity, 0)
	a.rgb = append(a.rgb, [3]byte{})
	a.scales = append(a.scales, [3]byte{})
	a.quat = append(a.quat, [3]byte{})
	a.sh1 = append(a.sh1, [SH1Len]int8{})
	if a.maxSH >= 2 {
		a.sh2 = append(a.sh2, [SH2Len]int8{})
	}
	if a.maxSH >= 3 {
		a.sh3 = append(a.sh3, [SH3Len]int8{})
	}
	a.child.append(children)
	a.Set(idx, c)
	return idx
}

func (a *CompactArray) Permute(dst []int) {
	Permute(dst, a.center)
	Permute(dst, a.opacity)
	Permute(dst, a.rgb)
	Permute(dst, a.scales)
	Permute(dst, a.quat)
	Permute(dst, a.sh1)
	if a.maxSH >= 2 {
		Permute(dst, a.sh2)
	}
	if a.maxSH >= 3 {
		Permute(dst, a.sh3)
	}
	a.child.permute(dst)
	for i := range a.child.lists {
		for j, ch := range a.child.lists[i] {
			a.child.lists[i][j] = uint32(dst[ch])
		}
	}
}

func (a *CompactArray) Retain(keep func(i int) bool) []int {
	n := a.Len()
	oldIndex := make([]int, 0, n)
	newOf := make([]int, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			newOf[i] = len(oldIndex)
			oldIndex = append(oldIndex, i)
		} else {
			newOf[i] = -1
		}
	}
	out := NewCompact(a.enc, a.maxSH, len(oldIndex))
	for _, oi := range oldIndex {
		children := a.child.get(oi)
		remapped := make([]uint32, 0, len(children))
		for _, ch := range children {
			if newOf[ch] >= 0 {
				remapped = append(remapped, uint32(newOf[ch]))
			}
		}
		out.AppendMerged(a.Get(oi), remapped)
	}
	*a = *out
	return oldIndex
}

func (a *CompactArray) Truncate(n int) {
	a.center = a.center[:n]
	a.opacity = a.opacity[:n]
	a.rgb = a.rgb[:n]
	a.scales = a.scales[:n]
	a.quat = a.quat[:n]
	a.sh1 = a.sh1[:n]
	if a.maxSH >= 2 {
		a.sh2 = a.sh2[:n]
	}
	if a.maxSH >= 3 {
		a.sh3 = a.sh3[:n]
	}
	a.child.truncate(n)
}

func (a *CompactArray) Clone(indices []int) Array {
	out := NewCompact(a.enc, a.maxSH, len(indices))
	for _, oi := range indices {
		out.AppendMerged(a.Get(oi), append([]uint32(nil), a.child.get(oi)...))
	}
	return out
}
