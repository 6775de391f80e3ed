package lodbuild

import (
	"container/heap"
	"math"
	"sort"

	"github.com/radsplat/build-lod/internal/covariance"
	"github.com/radsplat/build-lod/internal/splat"
)

// BhattLoD is the bottom-up greedy agglomerative clusterer of spec §4.C:
// it merges the pair of active splats whose 3D spatial distributions are
// maximally similar (Bhattacharyya-based), sweeping size levels so that
// a splat only competes against neighbors of comparable scale.
type BhattLoD struct {
	// Base is the LoD base (merge step doubling factor conceptually;
	// kept here for parity with the CLI's --bhatt-lod=B, even though the
	// size-level sweep itself always steps by powers of 2 per spec §4.C.4).
	Base float64
}

// NewBhattLoD returns a builder with base clamped into [1.1, 2.0].
func NewBhattLoD(base float64) *BhattLoD {
	return &BhattLoD{Base: ClampBase(base)}
}

// fsHeap is a max-heap of active splat indices keyed by descending
// feature size (spec §4.C.3: "active max-heap keyed by -feature_size").
type fsHeap struct {
	idx []int
	fs  func(int) float32
}

func (h *fsHeap) Len() int            { return len(h.idx) }
func (h *fsHeap) Less(i, j int) bool  { return h.fs(h.idx[i]) > h.fs(h.idx[j]) }
func (h *fsHeap) Swap(i, j int)       { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }
func (h *fsHeap) Push(x interface{}) { h.idx = append(h.idx, x.(int)) }
func (h *fsHeap) Pop() interface{} {
	old := h.idx
	n := len(old)
	v := old[n-1]
	h.idx = old[:n-1]
	return v
}

func (b *BhattLoD) Build(arr splat.Writer) (int, bool) {
	n := arr.Len()
	if n == 0 {
		return 0, false
	}
	if n == 1 {
		return 0, true
	}

	featureSize := func(i int) float32 { return arr.Get(i).FeatureSize() }

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return featureSize(order[i]) < featureSize(order[j]) })

	levelMin := int(math.Ceil(math.Log2(math.Max(float64(featureSize(order[0])), 1e-12))))
	level := levelMin
	step := float32(math.Pow(2, float64(level)))

	isActive := make(map[int]bool, n)
	g := newGrid()
	h := &fsHeap{fs: featureSize}

	activate := func(idx int) {
		isActive[idx] = true
		g.add(idx, arr.Get(idx).Center, step)
		heap.Push(h, idx)
	}

	frontier := 0
	advanceFrontier := func() {
		for frontier < len(order) && featureSize(order[frontier]) <= step {
			activate(order[frontier])
			frontier++
		}
	}
	rebucketActive := func() {
		g = newGrid()
		for idx, active := range isActive {
			if active {
				g.add(idx, arr.Get(idx).Center, step)
			}
		}
	}

	advanceFrontier()

	var root int
	for {
		for h.Len() > 0 {
			p := heap.Pop(h).(int)
			if !isActive[p] {
				continue
			}
			nIdx, found := bestNeighbor(arr, g, p, step)
			if !found {
				continue // deferred to next level; stays active, stays in cells
			}
			members := []int{p, nIdx}
			merged := MergeCore(arr, members)
			children := make([]uint32, len(members))
			for i, m := range members {
				children[i] = uint32(m)
			}
			isActive[p] = false
			isActive[nIdx] = false
			g.remove(p)
			g.remove(nIdx)
			mIdx := arr.AppendMerged(merged, children)
			isActive[mIdx] = true
			if featureSize(mIdx) <= step {
				g.add(mIdx, arr.Get(mIdx).Center, step)
				heap.Push(h, mIdx)
			}
			// else: active but left out of the grid until the level
			// advances and rebucketActive re-inserts every live node.
		}

		activeCount := 0
		lastActive := -1
		for idx, active := range isActive {
			if active {
				activeCount++
				lastActive = idx
			}
		}
		if frontier >= len(order) && activeCount <= 1 {
			root = lastActive
			break
		}

		level++
		step = float32(math.Pow(2, float64(level)))
		advanceFrontier()
		rebucketActive()
		for idx, active := range isActive {
			if active {
				heap.Push(h, idx)
			}
		}
	}
	return root, true
}

// bestNeighbor scans the 27 cells surrounding p for the active neighbor
// maximizing Similarity, per spec §4.C.4.b.
func bestNeighbor(r splat.Reader, g *grid, p int, step float32) (int, bool) {
	pc := r.Get(p)
	sigmaP := covariance.FromScaleQuat(pc.Scales, pc.Quat)
	muP := [3]float64{float64(pc.Center[0]), float64(pc.Center[1]), float64(pc.Center[2])}

	best := -1
	bestScore := -1.0
	for _, cand := range g.neighbors(p, pc.Center, step) {
		cc := r.Get(cand)
		sigmaC := covariance.FromScaleQuat(cc.Scales, cc.Quat)
		muC := [3]float64{float64(cc.Center[0]), float64(cc.Center[1]), float64(cc.Center[2])}
		s := covariance.Similarity(muP, muC, sigmaP, sigmaC, pc.RGB, cc.RGB)
		if s > bestScore {
			bestScore, best = s, cand
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
