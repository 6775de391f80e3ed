package splat

// FullArray is the full-precision splat container: every field kept in
// its native float form, so encoding it back out is byte-accurate.
type FullArray struct {
	center  [][3]float32
	scales  [][3]float32
	quat    [][4]float32
	opacity []float32
	rgb     [][3]float32
	sh1     [][SH1Len]float32
	sh2     [][SH2Len]float32
	sh3     [][SH3Len]float32
	maxSH   int
	child   *childColumn
}

// NewFull creates an empty full-precision array able to carry SH bands
// up to maxSH (0..3) and with capacity reserved for n splats (spec §5:
// "reserve capacity for 1.5x N up front").
func NewFull(maxSH int, capacity int) *FullArray {
	a := &FullArray{maxSH: maxSH, child: newChildColumn(0)}
	a.center = make([][3]float32, 0, capacity)
	a.scales = make([][3]float32, 0, capacity)
	a.quat = make([][4]float32, 0, capacity)
	a.opacity = make([]float32, 0, capacity)
	a.rgb = make([][3]float32, 0, capacity)
	a.sh1 = make([][SH1Len]float32, 0, capacity)
	if maxSH >= 2 {
		a.sh2 = make([][SH2Len]float32, 0, capacity)
	}
	if maxSH >= 3 {
		a.sh3 = make([][SH3Len]float32, 0, capacity)
	}
	return a
}

func (a *FullArray) Len() int    { return len(a.center) }
func (a *FullArray) MaxSH() int  { return a.maxSH }

func (a *FullArray) Get(i int) Core {
	c := Core{
		Center:  a.center[i],
		Scales:  a.scales[i],
		Quat:    a.quat[i],
		Opacity: a.opacity[i],
		RGB:     a.rgb[i],
		SH1:     a.sh1[i],
	}
	if a.maxSH >= 2 {
		c.SH2 = a.sh2[i]
		c.HasSH2 = true
	}
	if a.maxSH >= 3 {
		c.SH3 = a.sh3[i]
		c.HasSH3 = true
	}
	return c
}

func (a *FullArray) Set(i int, c Core) {
	a.center[i] = c.Center
	a.scales[i] = c.Scales
	a.quat[i] = c.Quat
	a.opacity[i] = c.Opacity
	a.rgb[i] = c.RGB
	a.sh1[i] = c.SH1
	if a.maxSH >= 2 {
		a.sh2[i] = c.SH2
	}
	if a.maxSH >= 3 {
		a.sh3[i] = c.SH3
	}
}

func (a *FullArray) Children(i int) []uint32    { return a.child.get(i) }
func (a *FullArray) HasChildren(i int) bool      { return a.child.has(i) }
func (a *FullArray) SetChildren(i int, cs []uint32) { a.child.set(i, cs) }

// AppendMerged appends a new (interior) splat with the given children
// and returns its index.
func (a *FullArray) AppendMerged(c Core, children []uint32) int {
	idx := len(a.center)
	a.center = append(a.center, c.Center)
	a.scales = append(a.scales, c.Scales)
	a.quat = append(a.quat, c.Quat)
	a.opacity = append(a.opacity, c.Opacity)
	a.rgb = append(a.rgb, c.RGB)
	a.sh1 = append(a.sh1, c.SH1)
	if a.maxSH >= 2 {
		a.sh2 = append(a.sh2, c.SH2)
	}
	if a.maxSH >= 3 {
		a.sh3 = append(a.sh3, c.SH3)
	}
	a.child.append(children)
	return idx
}

func (a *FullArray) Permute(dst []int) {
	Permute(dst, a.center)
	Permute(dst, a.scales)
	Permute(dst, a.quat)
	Permute(dst, a.opacity)
	Permute(dst, a.rgb)
	Permute(dst, a.sh1)
	if a.maxSH >= 2 {
		Permute(dst, a.sh2)
	}
	if a.maxSH >= 3 {
		Permute(dst, a.sh3)
	}
	a.child.permute(dst)
	a.remapChildIndices(dst)
}

// remapChildIndices rewrites every stored child index through dst, since
// a permutation of the array must also permute the indices the child
// lists point at.
func (a *FullArray) remapChildIndices(dst []int) {
	for i := range a.child.lists {
		for j, ch := range a.child.lists[i] {
			a.child.lists[i][j] = uint32(dst[ch])
		}
	}
}

// Retain keeps only the splats for which keep(i) is true, compacting all
// columns coherently, and returns the old index of each surviving splat
// in its new order (spec §4.A, property test 1). Child indices that no
// longer resolve (point at a dropped splat) are dropped from their
// parent's list; callers that need different semantics (e.g. the pruner,
// which re-links around dropped nodes first) should not rely on this for
// tree-aware compaction.
func (a *FullArray) Retain(keep func(i int) bool) []int {
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
	out := NewFull(a.maxSH, len(oldIndex))
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

func (a *FullArray) Truncate(n int) {
	a.center = a.center[:n]
	a.scales = a.scales[:n]
	a.quat = a.quat[:n]
	a.opacity = a.opacity[:n]
	a.rgb = a.rgb[:n]
	a.sh1 = a.sh1[:n]
	if a.maxSH >= 2 {
		a.sh2 = a.sh2[:n]
	}
	if a.maxSH >= 3 {
		a.sh3 = a.sh3[:n]
	}
	a.child.truncate(n)
}

func (a *FullArray) Clone(indices []int) Array {
	out := NewFull(a.maxSH, len(indices))
	for _, oi := range indices {
		out.AppendMerged(a.Get(oi), append([]uint32(nil), a.child.get(oi)...))
	}
	return out
}
