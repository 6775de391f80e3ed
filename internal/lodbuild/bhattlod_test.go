package lodbuild

import (
	"math/rand"
	"testing"

	"github.com/radsplat/build-lod/internal/splat"
)

// verifyTree checks spec's tree invariants: every non-root node appears in
// exactly one parent's child list, and the root is reachable to every leaf.
func verifyTree(t *testing.T, arr splat.Reader, root int) {
	t.Helper()
	n := arr.Len()
	parentOf := make([]int, n)
	for i := range parentOf {
		parentOf[i] = -1
	}
	for i := 0; i < n; i++ {
		for _, ch := range arr.Children(i) {
			if parentOf[ch] != -1 {
				t.Fatalf("node %d has two parents: %d and %d", ch, parentOf[ch], i)
			}
			parentOf[ch] = i
		}
	}
	rootCount := 0
	for i := 0; i < n; i++ {
		if parentOf[i] == -1 {
			rootCount++
			if i != root {
				t.Fatalf("found parentless node %d that is not the reported root %d", i, root)
			}
		}
	}
	if rootCount != 1 {
		t.Fatalf("expected exactly 1 root, found %d", rootCount)
	}
}

func countLeafDescendants(arr splat.Reader, node int) int {
	if !arr.HasChildren(node) {
		return 1
	}
	total := 0
	for _, ch := range arr.Children(node) {
		total += countLeafDescendants(arr, int(ch))
	}
	return total
}

func TestBhattLoDTreeInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	arr := splat.Generate(rng, 64, 10, 1)
	b := NewBhattLoD(1.5)
	root, ok := b.Build(arr)
	if !ok {
		t.Fatal("expected Build to succeed on non-empty input")
	}
	verifyTree(t, arr, root)
	if got := countLeafDescendants(arr, root); got != 64 {
		t.Fatalf("expected 64 leaf descendants under root, got %d", got)
	}
}

func TestBhattLoDSingleSplat(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	arr := splat.Generate(rng, 1, 10, 0)
	b := NewBhattLoD(1.5)
	root, ok := b.Build(arr)
	if !ok || root != 0 {
		t.Fatalf("single-splat build should return root=0 ok=true, got root=%d ok=%v", root, ok)
	}
	if arr.HasChildren(0) {
		t.Fatalf("a lone splat must not gain a child list")
	}
}

func TestBhattLoDEmpty(t *testing.T) {
	arr := splat.NewFull(0, 0)
	b := NewBhattLoD(1.5)
	_, ok := b.Build(arr)
	if ok {
		t.Fatal("expected Build to report failure on empty input")
	}
}

func TestBhattLoDEightCorners(t *testing.T) {
	arr := splat.NewFull(0, 8)
	for dx := float32(-1); dx <= 1; dx += 2 {
		for dy := float32(-1); dy <= 1; dy += 2 {
			for dz := float32(-1); dz <= 1; dz += 2 {
				c := splat.Core{
					Center:  [3]float32{dx, dy, dz},
					Scales:  [3]float32{0.05, 0.05, 0.05},
					Quat:    [4]float32{0, 0, 0, 1},
					Opacity: 0.9,
					RGB:     [3]float32{0.2, 0.4, 0.6},
				}
				arr.AppendMerged(c, nil)
			}
		}
	}
	b := NewBhattLoD(1.5)
	root, ok := b.Build(arr)
	if !ok {
		t.Fatal("expected Build to succeed")
	}
	verifyTree(t, arr, root)
	if got := countLeafDescendants(arr, root); got != 8 {
		t.Fatalf("expected all 8 corner splats under the single root, got %d", got)
	}
}
