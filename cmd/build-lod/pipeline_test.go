package main

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/radsplat/build-lod/internal/rad"
	"github.com/radsplat/build-lod/internal/splat"
)

func writeFixture(t *testing.T, dir, name string, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	arr := splat.Generate(rng, n, 8, 1)
	data, err := rad.Encode(arr, nil, rad.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func defaultConfig() Config {
	return Config{
		Format:      "rad",
		Builder:     "bhatt-lod",
		Base:        1.75,
		MaxSH:       -1,
		PruneMetric: "area",
	}
}

func TestProcessFileBuildsLodOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "scene.rad", 64)

	if err := ProcessFile(in, defaultConfig()); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	outPath := filepath.Join(dir, "scene-lod.rad")
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected output file %s: %v", outPath, err)
	}

	d := rad.NewDecoder()
	if err := d.Push(data); err != nil {
		t.Fatalf("push output: %v", err)
	}
	out, err := d.Finish()
	if err != nil {
		t.Fatalf("finish output: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected a non-empty built tree")
	}
}

func TestProcessFileSkipsPrebuiltWithoutUnlod(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "already-lod.rad", 8)

	if err := ProcessFile(in, defaultConfig()); err != nil {
		t.Fatalf("expected a skip (no error), got %v", err)
	}
	// No "-lod" suffix change happens, and no new file is written over it.
	if _, err := os.Stat(in); err != nil {
		t.Fatalf("input file should still exist: %v", err)
	}
}

func TestProcessFileUnlodStripsInteriorNodes(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "scene.rad", 40)

	built := defaultConfig()
	if err := ProcessFile(in, built); err != nil {
		t.Fatalf("build step failed: %v", err)
	}
	builtPath := filepath.Join(dir, "scene-lod.rad")

	cfg := defaultConfig()
	cfg.Unlod = true
	if err := ProcessFile(builtPath, cfg); err != nil {
		t.Fatalf("unlod step failed: %v", err)
	}

	strippedPath := filepath.Join(dir, "scene.rad")
	data, err := os.ReadFile(strippedPath)
	if err != nil {
		t.Fatalf("expected stripped output at %s: %v", strippedPath, err)
	}
	d := rad.NewDecoder()
	if err := d.Push(data); err != nil {
		t.Fatalf("push stripped output: %v", err)
	}
	out, err := d.Finish()
	if err != nil {
		t.Fatalf("finish stripped output: %v", err)
	}
	for i := 0; i < out.Len(); i++ {
		if out.HasChildren(i) {
			t.Fatalf("node %d still has children after --unlod", i)
		}
	}
}

func TestProcessFileValidationErrorAbortsFile(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(7))
	arr := splat.Generate(rng, 4, 5, 0)
	c := arr.Get(0)
	c.Center[0] = float32(math.NaN())
	arr.Set(0, c)
	data, err := rad.Encode(arr, nil, rad.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(dir, "bad.rad")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := ProcessFile(path, defaultConfig()); err == nil {
		t.Fatal("expected a validation error for a NaN field")
	}

	cfg := defaultConfig()
	cfg.SkipValidate = true
	if err := ProcessFile(path, cfg); err != nil {
		t.Fatalf("expected --skip-validate to drop the bad splat instead of failing: %v", err)
	}
}

func TestCropKeepsOnlyWithinBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinBox = "0,0,0"
	cfg.MaxBox = "1,1,1"
	cr, err := parseCrop(cfg)
	if err != nil {
		t.Fatalf("parseCrop failed: %v", err)
	}
	in := splat.Core{Center: [3]float32{0.5, 0.5, 0.5}}
	out := splat.Core{Center: [3]float32{5, 5, 5}}
	if !cr.keep(in) {
		t.Fatal("expected in-bounds splat to be kept")
	}
	if cr.keep(out) {
		t.Fatal("expected out-of-bounds splat to be dropped")
	}
}

func TestWithLodSuffixAndStripLodSuffix(t *testing.T) {
	if got := withLodSuffix("dir/scene.rad", ".rad"); got != "dir/scene-lod.rad" {
		t.Fatalf("withLodSuffix: got %q", got)
	}
	if got := stripLodSuffix("dir/scene-lod.rad"); got != "dir/scene.rad" {
		t.Fatalf("stripLodSuffix: got %q", got)
	}
	if !isPrebuilt("dir/scene-lod.rad") {
		t.Fatal("expected scene-lod.rad to be detected as prebuilt")
	}
	if isPrebuilt("dir/scene.rad") {
		t.Fatal("expected scene.rad to not be detected as prebuilt")
	}
}
