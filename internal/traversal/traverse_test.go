package traversal

import (
	"testing"

	"github.com/radsplat/build-lod/internal/splat"
)

// buildSmallTree builds: root -> {leafA, leafB}, with leaves far apart so
// their pixel-scale differs once the limit forces an expansion.
func buildSmallTree(t *testing.T) (*splat.FullArray, int, int, int) {
	t.Helper()
	arr := splat.NewFull(0, 3)
	leafA := arr.AppendMerged(splat.Core{Center: [3]float32{10, 0, 0}, Scales: [3]float32{0.1, 0.1, 0.1}, Opacity: 1}, nil)
	leafB := arr.AppendMerged(splat.Core{Center: [3]float32{-10, 0, 0}, Scales: [3]float32{0.1, 0.1, 0.1}, Opacity: 1}, nil)
	root := arr.AppendMerged(splat.Core{Center: [3]float32{0, 0, 0}, Scales: [3]float32{5, 5, 5}, Opacity: 1}, []uint32{uint32(leafA), uint32(leafB)})
	return arr, leafA, leafB, root
}

func defaultParams() Params {
	return Params{
		Origin:          [3]float32{0, 0, -50},
		Forward:         [3]float32{0, 0, 1},
		LodScale:        1,
		BehindFoveate:   4,
		ConeFov0:        0.5,
		ConeFov:         1.5,
		ConeFoveate:     2,
		MaxSplats:       1000,
		PixelScaleLimit: 0.01,
	}
}

func TestTraverseExpandsWhenChunksResident(t *testing.T) {
	arr, leafA, leafB, root := buildSmallTree(t)
	res := NewResidency()
	res.SetResident(chunkOf(leafA), 0)
	res.SetResident(chunkOf(leafB), 0)

	out := Traverse(arr, root, defaultParams(), res)
	if len(out.TouchedChunks) != 0 {
		t.Fatalf("expected no touched chunks, got %v", out.TouchedChunks)
	}
	if len(out.Emitted) == 0 {
		t.Fatal("expected some emitted nodes")
	}
	for i := 1; i < len(out.Emitted); i++ {
		if out.Emitted[i-1] > out.Emitted[i] {
			t.Fatal("emitted indices must be sorted ascending")
		}
	}
}

func TestTraverseEmitsCoarseStandInWhenNotResident(t *testing.T) {
	arr, _, _, root := buildSmallTree(t)
	res := NewResidency() // nothing resident

	out := Traverse(arr, root, defaultParams(), res)
	if len(out.Emitted) != 1 || out.Emitted[0] != root {
		t.Fatalf("expected only the root emitted as a stand-in, got %v", out.Emitted)
	}
	if len(out.TouchedChunks) == 0 {
		t.Fatal("expected the missing child chunk(s) to be touched")
	}
}

func TestTraverseRespectsMaxSplats(t *testing.T) {
	arr, leafA, leafB, root := buildSmallTree(t)
	res := NewResidency()
	res.SetResident(chunkOf(leafA), 0)
	res.SetResident(chunkOf(leafB), 0)

	p := defaultParams()
	p.MaxSplats = 1

	out := Traverse(arr, root, p, res)
	if len(out.Emitted) > p.MaxSplats {
		t.Fatalf("emitted %d exceeds max_splats %d", len(out.Emitted), p.MaxSplats)
	}
}

func TestTraverseLeafRootEmitsImmediately(t *testing.T) {
	arr := splat.NewFull(0, 1)
	idx := arr.AppendMerged(splat.Core{Center: [3]float32{0, 0, 0}, Scales: [3]float32{1, 1, 1}, Opacity: 1}, nil)
	res := NewResidency()

	p := defaultParams()
	p.PixelScaleLimit = 1000 // force immediate drain without expansion
	out := Traverse(arr, idx, p, res)
	if len(out.Emitted) != 1 || out.Emitted[0] != idx {
		t.Fatalf("expected the lone leaf emitted, got %v", out.Emitted)
	}
}
