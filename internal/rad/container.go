// Package rad implements the chunked, columnar binary container of spec
// §4.G: a length-prefixed JSON top-level meta followed by concatenated
// RADC chunks, each carrying per-property quantized and optionally
// DEFLATE-compressed payloads.
package rad

import "encoding/json"

const (
	fileMagic  = "RAD0"
	chunkMagic = "RADC"
)

// ChunkSize is the streaming/compression granularity (spec §4.E/§4.G).
const ChunkSize = 65536

// ChunkRef locates one chunk's bytes within the concatenated chunk blob.
type ChunkRef struct {
	Offset uint64 `json:"offset"`
	Bytes  uint64 `json:"bytes"`
}

// Meta is the top-level meta_json of spec §4.G.
type Meta struct {
	Version       int             `json:"version"`
	Type          string          `json:"type"`
	Count         int             `json:"count"`
	MaxSh         int             `json:"maxSh"`
	LodTree       *bool           `json:"lodTree,omitempty"`
	ChunkSize     int             `json:"chunkSize"`
	AllChunkBytes uint64          `json:"allChunkBytes"`
	Chunks        []ChunkRef      `json:"chunks"`
	SplatEncoding *EncodingParams `json:"splatEncoding,omitempty"`
	Comment       json.RawMessage `json:"comment,omitempty"`
}

// EncodingParams mirrors internal/splat.Encoding for the wire format,
// kept as its own type so internal/rad doesn't force internal/splat to
// carry JSON tags it has no other use for.
type EncodingParams struct {
	RGBMin     float32 `json:"rgbMin"`
	RGBMax     float32 `json:"rgbMax"`
	LnScaleMin float32 `json:"lnScaleMin"`
	LnScaleMax float32 `json:"lnScaleMax"`
	SH1Max     float32 `json:"sh1Max"`
	SH2Max     float32 `json:"sh2Max"`
	SH3Max     float32 `json:"sh3Max"`
	LodOpacity bool    `json:"lodOpacity"`
}

// ChunkMeta is the chunk_meta_json of spec §4.G.
type ChunkMeta struct {
	Version      int            `json:"version"`
	Base         int            `json:"base"`
	Count        int            `json:"count"`
	PayloadBytes uint64         `json:"payloadBytes"`
	Properties   []PropertyMeta `json:"properties"`
}

// PropertyMeta describes one quantized column within a chunk.
type PropertyMeta struct {
	Property    string   `json:"property"`
	Encoding    string   `json:"encoding"`
	Compression string   `json:"compression,omitempty"`
	Offset      uint64   `json:"offset"`
	Bytes       uint64   `json:"bytes"`
	Min         *float32 `json:"min,omitempty"`
	Max         *float32 `json:"max,omitempty"`
}

// Property names, spec §4.G.
const (
	PropCenter     = "center"
	PropAlpha      = "alpha"
	PropRGB        = "rgb"
	PropScales     = "scales"
	PropOrient     = "orientation"
	PropSH1        = "sh1"
	PropSH2        = "sh2"
	PropSH3        = "sh3"
	PropChildCount = "child_count"
	PropChildStart = "child_start"
)

func align8(n int) int { return (n + 7) &^ 7 }
