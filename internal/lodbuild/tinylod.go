package lodbuild

import "github.com/radsplat/build-lod/internal/splat"

// TinyLoD is the "separate component, not spec'd above" named by spec
// §6's --tiny-lod flag: a single uniform-grid nearest-pair merge pass,
// repeated until one root remains, with no size-level sweep and no
// heap — every active splat competes against its 27-cell neighborhood at
// one grid scale per round, re-derived each round from the current
// median feature size.
type TinyLoD struct {
	Base float64
}

// NewTinyLoD returns a builder with base clamped into [1.1, 2.0].
func NewTinyLoD(base float64) *TinyLoD {
	return &TinyLoD{Base: ClampBase(base)}
}

func (b *TinyLoD) Build(arr splat.Writer) (int, bool) {
	n := arr.Len()
	if n == 0 {
		return 0, false
	}
	if n == 1 {
		return 0, true
	}

	active := make([]int, n)
	for i := range active {
		active[i] = i
	}

	for len(active) > 1 {
		step := medianFeatureSize(arr, active)
		g := newGrid()
		for _, idx := range active {
			g.add(idx, arr.Get(idx).Center, step)
		}
		merged := make(map[int]bool, len(active))
		var next []int
		for _, idx := range active {
			if merged[idx] {
				continue
			}
			nIdx, found := bestNeighbor(arr, g, idx, step)
			if !found || merged[nIdx] {
				next = append(next, idx)
				continue
			}
			members := []int{idx, nIdx}
			core := MergeCore(arr, members)
			children := []uint32{uint32(idx), uint32(nIdx)}
			merged[idx] = true
			merged[nIdx] = true
			g.remove(idx)
			g.remove(nIdx)
			mIdx := arr.AppendMerged(core, children)
			next = append(next, mIdx)
		}
		if len(next) == len(active) {
			// no pair merged this round (fully isolated splats): force
			// a pairwise merge of the first two survivors in this round's
			// order so the
			// sweep still converges to one root.
			a, bIdx := next[0], next[1]
			core := MergeCore(arr, []int{a, bIdx})
			mIdx := arr.AppendMerged(core, []uint32{uint32(a), uint32(bIdx)})
			next = append([]int{mIdx}, next[2:]...)
		}
		active = next
	}
	return active[0], true
}

func medianFeatureSize(r splat.Reader, idxs []int) float32 {
	vals := make([]float32, len(idxs))
	for i, idx := range idxs {
		vals[i] = r.Get(idx).FeatureSize()
	}
	// simple selection of the middle element; exactness doesn't matter,
	// only that the grid scale tracks the current population.
	for i := 1; i < len(vals); i++ {
		v := vals[i]
		j := i - 1
		for j >= 0 && vals[j] > v {
			vals[j+1] = vals[j]
			j--
		}
		vals[j+1] = v
	}
	return vals[len(vals)/2]
}
