package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/radsplat/build-lod/internal/chunktree"
	"github.com/radsplat/build-lod/internal/errs"
	"github.com/radsplat/build-lod/internal/lodbuild"
	"github.com/radsplat/build-lod/internal/prune"
	"github.com/radsplat/build-lod/internal/rad"
	"github.com/radsplat/build-lod/internal/splat"
)

const lodSuffix = "-lod"

// crop is the combined axis-aligned-box / spherical keep predicate built
// from --min-box/--max-box/--within-dist (spec §6).
type crop struct {
	hasBox       bool
	minBox       [3]float64
	maxBox       [3]float64
	hasSphere    bool
	sphereCenter [3]float64
	sphereRadius float64
}

func (c crop) keep(core splat.Core) bool {
	if c.hasBox {
		for k := 0; k < 3; k++ {
			v := float64(core.Center[k])
			if v < c.minBox[k] || v > c.maxBox[k] {
				return false
			}
		}
	}
	if c.hasSphere {
		var sum float64
		for k := 0; k < 3; k++ {
			d := float64(core.Center[k]) - c.sphereCenter[k]
			sum += d * d
		}
		if sum > c.sphereRadius*c.sphereRadius {
			return false
		}
	}
	return true
}

func parseCrop(cfg Config) (crop, error) {
	var cr crop
	if cfg.MinBox != "" || cfg.MaxBox != "" {
		if cfg.MinBox == "" || cfg.MaxBox == "" {
			return cr, errs.New(errs.Config, errors.New("--min-box and --max-box must be given together"))
		}
		min, err := parseFloatTuple(cfg.MinBox, 3)
		if err != nil {
			return cr, errs.Wrap(errs.Config, err, "--min-box")
		}
		max, err := parseFloatTuple(cfg.MaxBox, 3)
		if err != nil {
			return cr, errs.Wrap(errs.Config, err, "--max-box")
		}
		cr.hasBox = true
		copy(cr.minBox[:], min)
		copy(cr.maxBox[:], max)
	}
	if cfg.WithinDist != "" {
		vals, err := parseFloatTuple(cfg.WithinDist, 4)
		if err != nil {
			return cr, errs.Wrap(errs.Config, err, "--within-dist")
		}
		cr.hasSphere = true
		copy(cr.sphereCenter[:], vals[:3])
		cr.sphereRadius = vals[3]
	}
	return cr, nil
}

func parseFloatTuple(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func isPrebuilt(path string) bool {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return strings.HasSuffix(base, lodSuffix)
}

// stripLodSuffix drops a trailing "-lod" from path's base name (spec §6's
// "--unlod ... replace the -lod suffix with plain").
func stripLodSuffix(path string) string {
	ext := filepath.Ext(path)
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	base = strings.TrimSuffix(base, lodSuffix)
	return filepath.Join(dir, base+ext)
}

// withLodSuffix produces the "name-lod<newExt>" output path for a normal
// build, replacing whatever extension path had.
func withLodSuffix(path, newExt string) string {
	ext := filepath.Ext(path)
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	base = strings.TrimSuffix(base, lodSuffix)
	return filepath.Join(dir, base+lodSuffix+newExt)
}

func runBuilder(arr splat.Writer, cfg Config) (int, bool) {
	base := lodbuild.ClampBase(cfg.Base)
	var b lodbuild.Builder
	if cfg.Builder == "tiny-lod" {
		b = lodbuild.NewTinyLoD(base)
	} else {
		b = lodbuild.NewBhattLoD(base)
	}
	return b.Build(arr)
}

// clampMaxSH rebuilds arr with a lower SH degree, since a container's
// maxSH is fixed at construction (spec §6's "--max-sh=N").
func clampMaxSH(arr splat.Writer, maxSH int) splat.Writer {
	out := splat.NewFull(maxSH, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		c := arr.Get(i)
		if maxSH < 1 {
			c.SH1 = [splat.SH1Len]float32{}
		}
		if maxSH < 2 {
			c.HasSH2 = false
		}
		if maxSH < 3 {
			c.HasSH3 = false
		}
		out.AppendMerged(c, append([]uint32(nil), arr.Children(i)...))
	}
	return out
}

func buildComment(cfg Config) json.RawMessage {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil
	}
	return b
}

// ProcessFile runs the build/encode pipeline, or the --unlod strip path,
// over one input file, per spec §6/§7's per-file error handling.
func ProcessFile(path string, cfg Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.IO, err, "read input file")
	}

	if isPrebuilt(path) && !cfg.Unlod {
		log.Printf("%s: already a built LoD file, skipping (pass --unlod to strip it)", path)
		return nil
	}

	dec := rad.NewDecoder()
	if err := dec.Push(data); err != nil {
		return errs.Wrap(errs.Decode, err, "decode RAD input")
	}
	arr, err := dec.Finish()
	if err != nil {
		return errs.Wrap(errs.Decode, err, "decode RAD input")
	}

	if cfg.Unlod {
		return writeUnlod(path, arr)
	}

	if !cfg.SkipValidate {
		for i := 0; i < arr.Len(); i++ {
			if !arr.Get(i).IsFinite() {
				return errs.New(errs.Validation, errors.Errorf("splat %d has a non-finite field", i))
			}
		}
	} else {
		arr.Retain(func(i int) bool { return arr.Get(i).IsFinite() })
	}

	cr, err := parseCrop(cfg)
	if err != nil {
		return err
	}
	arr.Retain(func(i int) bool { return cr.keep(arr.Get(i)) })

	if arr.Len() == 0 {
		log.Printf("%s: no splats survived validation/crop, skipping", path)
		return nil
	}

	root, ok := runBuilder(arr, cfg)
	if !ok {
		return errs.New(errs.Internal, errors.New("LoD builder produced no root"))
	}

	metric := prune.MetricArea
	if cfg.PruneMetric == "feature_size" {
		metric = prune.MetricFeatureSize
	}
	root, ok = prune.Prune(arr, lodbuild.ClampBase(cfg.Base), root, metric)
	if !ok {
		return errs.New(errs.Internal, errors.New("prune pass lost the root"))
	}

	order := chunktree.Layout(arr, root)
	if len(order) != arr.Len() {
		return errs.New(errs.Internal, errors.New("chunk-tree layout permutation length mismatch"))
	}
	arr.Permute(order)
	root = order[root]

	var finalArr splat.Writer = arr
	if cfg.MaxSH >= 0 && cfg.MaxSH < arr.MaxSH() {
		finalArr = clampMaxSH(arr, cfg.MaxSH)
	}

	enc := splat.FitEncoding(finalArr, true)
	out, err := rad.Encode(finalArr, &enc, rad.EncodeOptions{LodTree: true, Comment: buildComment(cfg)})
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode RAD output")
	}

	outPath := withLodSuffix(path, ".rad")
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return errs.Wrap(errs.IO, err, "write output file")
	}
	log.Printf("%s -> %s (%d splats, root %d)", path, outPath, finalArr.Len(), root)
	return nil
}

func writeUnlod(path string, arr splat.Writer) error {
	arr.Retain(func(i int) bool { return !arr.HasChildren(i) })

	enc := splat.FitEncoding(arr, false)
	out, err := rad.Encode(arr, &enc, rad.EncodeOptions{})
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode unlod output")
	}

	outPath := stripLodSuffix(path)
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return errs.Wrap(errs.IO, err, "write unlod output file")
	}
	log.Printf("%s -> %s (%d splats, unlod)", path, outPath, arr.Len())
	return nil
}
