package chunktree

// hilbertOctantOrder is the fixed 3-bit octant permutation named in
// spec §9's Open Question: hard-coded with no documented derivation,
// reproduced verbatim and exposed as a named constant rather than
// re-derived, per the spec's own instruction.
var hilbertOctantOrder = [8]int{0, 1, 3, 2, 6, 7, 5, 4}

// SliceFactor is chunk_tree's other magic constant (spec §9): each time
// a slab's frontier is exhausted, size_limit divides by this.
const SliceFactor = 3.0

// LongestAxisSplitRatio: a slab whose AABB extent ratio along its
// longest axis is at least this gets split by that axis instead of by
// octant (spec §4.E).
const LongestAxisSplitRatio = 3.0

// octantOf returns the 3-bit octant index of p relative to the
// centroid c (bit k set if p[k] >= c[k]).
func octantOf(c, p [3]float32) int {
	idx := 0
	for k := 0; k < 3; k++ {
		if p[k] >= c[k] {
			idx |= 1 << uint(k)
		}
	}
	return idx
}
