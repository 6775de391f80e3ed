package chunktree

import (
	"sort"

	"github.com/radsplat/build-lod/internal/splat"
)

// ChunkSize is the streaming/compression granularity of spec §4.E/§4.G.
const ChunkSize = 65536

type group struct {
	members []int
}

// Layout computes the chunk-tree permutation of spec §4.E: breadth-first
// by decreasing size_limit, each qualifying slab ordered by 3D Morton
// code (or split by longest axis / octant when it would overflow a
// chunk), parents always assigned before their children. A child list
// enters the frontier as one group and joins a slab as a whole once any
// of its members reaches the size limit, so each parent's children take
// one contiguous index range. It returns dst
// suitable for splat.Writer.Permute (dst[oldIndex] = newIndex).
func Layout(r splat.Reader, root int) []int {
	n := r.Len()
	if n == 0 {
		return nil
	}

	order := make([]int, 0, n)
	frontier := []group{{members: []int{root}}}
	sizeLimit := float64(r.Get(root).FeatureSize())
	if sizeLimit <= 0 {
		sizeLimit = 1
	}

	guard := 0
	for len(frontier) > 0 {
		var current, deferred []group
		for _, g := range frontier {
			qualifies := false
			for _, idx := range g.members {
				if float64(r.Get(idx).FeatureSize()) >= sizeLimit {
					qualifies = true
					break
				}
			}
			if qualifies {
				current = append(current, g)
			} else {
				deferred = append(deferred, g)
			}
		}

		if len(current) == 0 {
			sizeLimit /= SliceFactor
			frontier = deferred
			guard++
			if guard > 4096 || sizeLimit < 1e-30 {
				// safety valve: dump whatever remains in index order rather
				// than spin forever on a pathological feature-size spread.
				for _, g := range deferred {
					order = appendGroup(order, g.members, r)
				}
				frontier = nil
			}
			continue
		}

		var next []group
		for _, g := range current {
			ordered := orderGroup(g.members, r, 0)
			order = append(order, ordered...)
			for _, p := range ordered {
				children := r.Children(p)
				if len(children) == 0 {
					continue
				}
				members := make([]int, len(children))
				for i, c := range children {
					members[i] = int(c)
				}
				next = append(next, group{members: members})
			}
		}
		frontier = append(next, deferred...)
		guard = 0
	}

	return splat.Invert(order)
}

func appendGroup(order []int, members []int, r splat.Reader) []int {
	sort.Ints(members)
	return append(order, members...)
}

// orderGroup returns members ordered for spatial coherence: plain Morton
// order unless the group would overflow a chunk, in which case it is
// split by the longest AABB axis (extent ratio >= LongestAxisSplitRatio)
// or by octant (ordered by the fixed Hilbert permutation), recursing on
// each half/octant so no single run crosses a chunk boundary internally
// broken up.
func orderGroup(members []int, r splat.Reader, depth int) []int {
	if len(members) <= ChunkSize || depth > 24 {
		return mortonSort(members, r)
	}

	b := emptyAABB()
	for _, idx := range members {
		b.extend(r.Get(idx).Center)
	}
	axis, extent := b.longestAxis()
	e := b.extent()
	minExtent := e[0]
	for k := 1; k < 3; k++ {
		if e[k] < minExtent {
			minExtent = e[k]
		}
	}
	if minExtent > 0 && float64(extent/minExtent) >= LongestAxisSplitRatio {
		sorted := append([]int(nil), members...)
		sort.Slice(sorted, func(i, j int) bool {
			return r.Get(sorted[i]).Center[axis] < r.Get(sorted[j]).Center[axis]
		})
		mid := len(sorted) / 2
		out := orderGroup(sorted[:mid], r, depth+1)
		out = append(out, orderGroup(sorted[mid:], r, depth+1)...)
		return out
	}

	centroid := [3]float32{
		(b.min[0] + b.max[0]) / 2,
		(b.min[1] + b.max[1]) / 2,
		(b.min[2] + b.max[2]) / 2,
	}
	buckets := make([][]int, 8)
	for _, idx := range members {
		o := octantOf(centroid, r.Get(idx).Center)
		buckets[o] = append(buckets[o], idx)
	}
	var out []int
	for _, oct := range hilbertOctantOrder {
		if len(buckets[oct]) == 0 {
			continue
		}
		out = append(out, orderGroup(buckets[oct], r, depth+1)...)
	}
	return out
}

func mortonSort(members []int, r splat.Reader) []int {
	if len(members) <= 1 {
		return append([]int(nil), members...)
	}
	b := emptyAABB()
	for _, idx := range members {
		b.extend(r.Get(idx).Center)
	}
	keys := make(map[int]uint64, len(members))
	for _, idx := range members {
		keys[idx] = mortonKey(b, r.Get(idx).Center)
	}
	out := append([]int(nil), members...)
	sort.Slice(out, func(i, j int) bool {
		if keys[out[i]] != keys[out[j]] {
			return keys[out[i]] < keys[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
