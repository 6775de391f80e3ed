// Package lodbuild implements the bottom-up agglomerative LoD tree
// builders of spec §4.C: Bhatt-LoD (grid-bucketed, similarity-greedy)
// and the simpler tiny-lod builder named in spec §6.
package lodbuild

import "github.com/radsplat/build-lod/internal/splat"

// Builder grows an LoD merge tree directly onto arr by appending interior
// nodes (splat.Writer.AppendMerged), returning the index of the single
// surviving root. It returns ok=false if arr is empty (spec §4.C.6:
// "abort gracefully when input is empty").
type Builder interface {
	Build(arr splat.Writer) (root int, ok bool)
}

// ClampBase clamps an LoD base parameter to the valid range spec §4.C
// requires ([1.1, 2.0]).
func ClampBase(base float64) float64 {
	if base < 1.1 {
		return 1.1
	}
	if base > 2.0 {
		return 2.0
	}
	return base
}
