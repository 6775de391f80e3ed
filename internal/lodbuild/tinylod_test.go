package lodbuild

import (
	"math/rand"
	"testing"

	"github.com/radsplat/build-lod/internal/splat"
)

func TestTinyLoDTreeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	arr := splat.Generate(rng, 37, 5, 2)
	b := NewTinyLoD(1.5)
	root, ok := b.Build(arr)
	if !ok {
		t.Fatal("expected Build to succeed on non-empty input")
	}
	verifyTree(t, arr, root)
	if got := countLeafDescendants(arr, root); got != 37 {
		t.Fatalf("expected 37 leaf descendants under root, got %d", got)
	}
}

func TestTinyLoDSingleSplat(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	arr := splat.Generate(rng, 1, 5, 0)
	b := NewTinyLoD(1.5)
	root, ok := b.Build(arr)
	if !ok || root != 0 {
		t.Fatalf("single-splat build should return root=0 ok=true, got root=%d ok=%v", root, ok)
	}
}

func TestTinyLoDEmpty(t *testing.T) {
	arr := splat.NewFull(0, 0)
	b := NewTinyLoD(1.5)
	_, ok := b.Build(arr)
	if ok {
		t.Fatal("expected Build to report failure on empty input")
	}
}

func TestClampBaseRange(t *testing.T) {
	cases := map[float64]float64{
		1.0: 1.1,
		1.5: 1.5,
		3.0: 2.0,
	}
	for in, want := range cases {
		if got := ClampBase(in); got != want {
			t.Fatalf("ClampBase(%v) = %v, want %v", in, got, want)
		}
	}
}
