package prune

import (
	"testing"

	"github.com/radsplat/build-lod/internal/lodbuild"
	"github.com/radsplat/build-lod/internal/splat"
)

func buildChain(t *testing.T) (*splat.FullArray, int) {
	t.Helper()
	arr := splat.NewFull(0, 4)
	mk := func(center [3]float32, scale, opacity float32) splat.Core {
		return splat.Core{
			Center:  center,
			Scales:  [3]float32{scale, scale, scale},
			Quat:    [4]float32{0, 0, 0, 1},
			Opacity: opacity,
			RGB:     [3]float32{0.1, 0.1, 0.1},
		}
	}
	arr.AppendMerged(mk([3]float32{0, 0, 0}, 0.01, 0.5), nil)
	arr.AppendMerged(mk([3]float32{0.1, 0, 0}, 0.01, 0.5), nil)
	merged := lodbuild.MergeCore(arr, []int{0, 1})
	parent := arr.AppendMerged(merged, []uint32{0, 1})
	return arr, parent
}

func TestPruneKeepsAllLeaves(t *testing.T) {
	arr, root := buildChain(t)
	newRoot, ok := Prune(arr, 1.75, root, MetricArea)
	if !ok {
		t.Fatal("expected root to survive pruning")
	}
	if arr.Len() < 1 {
		t.Fatal("expected at least the root to survive")
	}
	// every remaining leaf must still be a leaf (no children) or the kept root.
	for i := 0; i < arr.Len(); i++ {
		if i != newRoot && arr.HasChildren(i) {
			t.Fatalf("unexpected interior node %d besides root %d", i, newRoot)
		}
	}
}

func TestPruneDropsLowImportanceInterior(t *testing.T) {
	arr := splat.NewFull(0, 5)
	mk := func(center [3]float32, scale, opacity float32) splat.Core {
		return splat.Core{
			Center:  center,
			Scales:  [3]float32{scale, scale, scale},
			Quat:    [4]float32{0, 0, 0, 1},
			Opacity: opacity,
			RGB:     [3]float32{0.1, 0.1, 0.1},
		}
	}
	big := arr.AppendMerged(mk([3]float32{0, 0, 0}, 0.5, 0.9), nil)
	tiny := arr.AppendMerged(mk([3]float32{0.1, 0, 0}, 0.01, 0.1), nil)
	far := arr.AppendMerged(mk([3]float32{5, 0, 0}, 0.5, 0.9), nil)
	mid := arr.AppendMerged(lodbuild.MergeCore(arr, []int{big, tiny}), []uint32{uint32(big), uint32(tiny)})
	root := arr.AppendMerged(lodbuild.MergeCore(arr, []int{mid, far}), []uint32{uint32(mid), uint32(far)})
	// mid adds almost nothing over big, so at lod_base 1.75 it is dropped
	// and its two leaves pass up to the root.
	newRoot, ok := Prune(arr, 1.75, root, MetricArea)
	if !ok {
		t.Fatal("expected a survivor for root")
	}
	if arr.Len() != 4 {
		t.Fatalf("expected the low-importance interior node to be dropped, leaving 4 nodes; got %d", arr.Len())
	}
	if got := len(arr.Children(newRoot)); got != 3 {
		t.Fatalf("expected the root to adopt the dropped node's 2 leaves plus its own leaf, got %d children", got)
	}
}

func TestPruneEmptyArray(t *testing.T) {
	arr := splat.NewFull(0, 0)
	_, ok := Prune(arr, 1.75, 0, MetricArea)
	if ok {
		t.Fatal("expected pruning an empty array to report failure")
	}
}

func TestPruneFeatureSizeMetric(t *testing.T) {
	arr, root := buildChain(t)
	_, ok := Prune(arr, 1.1, root, MetricFeatureSize)
	if !ok {
		t.Fatal("expected root to survive with a lenient base and feature-size metric")
	}
}
