// Package prune implements the bottom-up tree pruner of spec §4.D: an
// interior node survives only if its visual importance (area·opacity)
// clears lod_base times the importance of whatever kept descendants lie
// beneath it, with dropped nodes transparently passing their nearest
// kept descendants up to their parent.
package prune

import "github.com/radsplat/build-lod/internal/splat"

// Metric selects what "importance" means for the keep/drop decision.
// The builder orders its merge sweep by feature_size while spec §9's
// Open Question leaves the pruning metric as a separate, configurable
// choice — Area multiplies opacity by the Knud Thomsen surface estimate
// (the source's own definition); FeatureSize reuses the builder's size
// proxy instead, for callers that want the two passes aligned.
type Metric int

const (
	MetricArea Metric = iota
	MetricFeatureSize
)

func importance(c splat.Core, m Metric) float64 {
	switch m {
	case MetricFeatureSize:
		return float64(c.FeatureSize())
	default:
		return float64(c.Area()) * float64(c.Opacity)
	}
}

// Prune walks arr bottom-up (relying on the builder's invariant that
// every child index is strictly lower than its parent's), decides which
// nodes to keep, relinks each kept node's child list to its nearest kept
// descendants, compacts the array to just the kept set, and returns the
// new index of root. The root is always kept, whatever its importance,
// so ok is false only when arr is empty or root is not an index of arr.
func Prune(arr splat.Writer, lodBase float64, root int, m Metric) (newRoot int, ok bool) {
	n := arr.Len()
	if n == 0 {
		return 0, false
	}
	imp := make([]float64, n)
	kept := make([]bool, n)
	passUp := make([][]int, n)
	keptChildren := make([][]uint32, n)

	for i := 0; i < n; i++ {
		c := arr.Get(i)
		imp[i] = importance(c, m)

		if !arr.HasChildren(i) {
			kept[i] = true
			passUp[i] = []int{i}
			continue
		}

		var flattened []int
		maxDescImp := 0.0
		for _, chRaw := range arr.Children(i) {
			ch := int(chRaw)
			if kept[ch] {
				flattened = append(flattened, ch)
				if imp[ch] > maxDescImp {
					maxDescImp = imp[ch]
				}
			} else {
				for _, d := range passUp[ch] {
					flattened = append(flattened, d)
					if imp[d] > maxDescImp {
						maxDescImp = imp[d]
					}
				}
			}
		}

		if imp[i] >= lodBase*maxDescImp || i == root {
			kept[i] = true
			passUp[i] = []int{i}
			children := make([]uint32, len(flattened))
			for k, d := range flattened {
				children[k] = uint32(d)
			}
			keptChildren[i] = children
		} else {
			kept[i] = false
			passUp[i] = flattened
		}
	}

	for i := 0; i < n; i++ {
		if kept[i] && keptChildren[i] != nil {
			arr.SetChildren(i, keptChildren[i])
		}
	}

	oldIndex := arr.Retain(func(i int) bool { return kept[i] })
	for newIdx, oldIdx := range oldIndex {
		if oldIdx == root {
			return newIdx, kept[root]
		}
	}
	return 0, false
}
