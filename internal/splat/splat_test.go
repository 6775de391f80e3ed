package splat

import (
	"math/rand"
	"testing"
)

func TestRetainPreservesColumnCoherence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := Generate(rng, 50, 10, 2)
	before := make([]Core, a.Len())
	for i := range before {
		before[i] = a.Get(i)
	}

	keep := func(i int) bool { return i%2 == 0 }
	oldIndex := a.Retain(keep)

	if a.Len() != len(oldIndex) {
		t.Fatalf("len mismatch: %d vs %d", a.Len(), len(oldIndex))
	}
	for newI, oldI := range oldIndex {
		got := a.Get(newI)
		want := before[oldI]
		if got.SH1 != want.SH1 {
			t.Fatalf("sh1 mismatch at new=%d old=%d", newI, oldI)
		}
		if got.Center != want.Center {
			t.Fatalf("center mismatch at new=%d old=%d", newI, oldI)
		}
	}
}

func TestPermuteRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := Generate(rng, 20, 5, 0)
	before := make([]Core, a.Len())
	for i := range before {
		before[i] = a.Get(i)
	}
	dst := rng.Perm(a.Len())
	a.Permute(dst)
	for i, d := range dst {
		if a.Get(d).Center != before[i].Center {
			t.Fatalf("permuted element %d not found at dst %d", i, d)
		}
	}
}

func TestChildIndicesRemapUnderPermute(t *testing.T) {
	a := NewFull(0, 4)
	for i := 0; i < 3; i++ {
		a.AppendMerged(Core{Center: [3]float32{float32(i), 0, 0}, Scales: [3]float32{1, 1, 1}, Opacity: 1}, nil)
	}
	a.AppendMerged(Core{Center: [3]float32{9, 9, 9}, Scales: [3]float32{1, 1, 1}, Opacity: 1}, []uint32{0, 1, 2})

	dst := []int{3, 2, 1, 0} // reverse
	a.Permute(dst)

	root := 0 // node that was index 3, now at index 0
	children := a.Children(root)
	want := map[uint32]bool{3: true, 2: true, 1: true}
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	for _, c := range children {
		if !want[c] {
			t.Fatalf("unexpected remapped child index %d", c)
		}
	}
}

func TestCompactRoundTripTolerance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	full := Generate(rng, 30, 5, 3)
	enc := FitEncoding(full, false)
	compact := NewCompact(enc, 3, full.Len())
	for i := 0; i < full.Len(); i++ {
		compact.AppendMerged(full.Get(i), nil)
	}
	for i := 0; i < full.Len(); i++ {
		want := full.Get(i)
		got := compact.Get(i)
		for k := 0; k < 3; k++ {
			if abs32(got.Center[k]-want.Center[k]) > 1e-4 {
				t.Fatalf("center drift at %d: %v vs %v", i, got.Center, want.Center)
			}
		}
		if abs32(got.Opacity-want.Opacity) > 0.01 {
			t.Fatalf("opacity drift at %d: %v vs %v", i, got.Opacity, want.Opacity)
		}
	}
}

func TestFeatureSizeMonotonicInScale(t *testing.T) {
	small := Core{Scales: [3]float32{0.1, 0.1, 0.1}, Opacity: 0.5}
	big := Core{Scales: [3]float32{1, 1, 1}, Opacity: 0.5}
	if small.FeatureSize() >= big.FeatureSize() {
		t.Fatalf("expected feature size to grow with scale")
	}
}

func TestLodOpacityFactorAboveOne(t *testing.T) {
	c := Core{Scales: [3]float32{1, 1, 1}, Opacity: 5}
	if c.LodOpacityFactor() <= 1 {
		t.Fatalf("expected inflated opacity factor > 1 for alpha > 1")
	}
	normal := Core{Scales: [3]float32{1, 1, 1}, Opacity: 0.5}
	if normal.LodOpacityFactor() != 1 {
		t.Fatalf("expected factor 1 for alpha <= 1")
	}
}
