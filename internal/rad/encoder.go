package rad

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/radsplat/build-lod/internal/quant"
	"github.com/radsplat/build-lod/internal/splat"
)

// deflateLevel is the per-chunk-property compression level named in spec
// §4.G ("raw DEFLATE, level 6").
const deflateLevel = 6

// EncodeOptions configures Encode beyond what's derivable from r itself.
type EncodeOptions struct {
	// LodTree, when true, emits child_count/child_start columns and sets
	// the top-level meta's lodTree flag (spec §4.G).
	LodTree bool
	// Comment is embedded verbatim as meta.comment (spec §6: "Comment
	// JSON captures the build parameters").
	Comment json.RawMessage
}

// Encode serializes r into a complete RAD0 byte stream (spec §4.G).
func Encode(r splat.Reader, enc *splat.Encoding, opts EncodeOptions) ([]byte, error) {
	properties := activeProperties(r.MaxSH(), opts.LodTree)

	var chunkBlob bytes.Buffer
	var refs []ChunkRef
	n := r.Len()
	for base := 0; base < n; base += ChunkSize {
		count := ChunkSize
		if base+count > n {
			count = n - base
		}
		chunkBytes, err := encodeChunk(r, base, count, properties)
		if err != nil {
			return nil, errors.Wrap(err, "encode chunk")
		}
		refs = append(refs, ChunkRef{Offset: uint64(chunkBlob.Len()), Bytes: uint64(len(chunkBytes))})
		chunkBlob.Write(chunkBytes)
	}

	meta := Meta{
		Version:       1,
		Type:          "gsplat",
		Count:         n,
		MaxSh:         r.MaxSH(),
		ChunkSize:     ChunkSize,
		AllChunkBytes: uint64(chunkBlob.Len()),
		Chunks:        refs,
		Comment:       opts.Comment,
	}
	if opts.LodTree {
		t := true
		meta.LodTree = &t
	}
	if enc != nil {
		meta.SplatEncoding = &EncodingParams{
			RGBMin: enc.RGBMin, RGBMax: enc.RGBMax,
			LnScaleMin: enc.LnScaleMin, LnScaleMax: enc.LnScaleMax,
			SH1Max: enc.SH1Max, SH2Max: enc.SH2Max, SH3Max: enc.SH3Max,
			LodOpacity: enc.LodOpacity,
		}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, "marshal meta")
	}

	var out bytes.Buffer
	out.WriteString(fileMagic)
	writeU32(&out, uint32(len(metaJSON)))
	out.Write(metaJSON)
	out.Write(make([]byte, align8(len(metaJSON))-len(metaJSON)))
	out.Write(chunkBlob.Bytes())
	return out.Bytes(), nil
}

func activeProperties(maxSH int, lodTree bool) []string {
	props := []string{PropCenter, PropAlpha, PropRGB, PropScales, PropOrient, PropSH1}
	if maxSH >= 2 {
		props = append(props, PropSH2)
	}
	if maxSH >= 3 {
		props = append(props, PropSH3)
	}
	if lodTree {
		props = append(props, PropChildCount, PropChildStart)
	}
	return props
}

func encodeChunk(r splat.Reader, base, count int, properties []string) ([]byte, error) {
	var payload bytes.Buffer
	propMetas := make([]PropertyMeta, 0, len(properties))
	cursor := uint64(0)

	for _, prop := range properties {
		dims := propertyDims(prop, r.MaxSH())
		values := extractProperty(r, prop, base, count)
		res := resolveAuto(prop, values, dims)
		q, ok := quant.Registry[res.encoding]
		if !ok {
			return nil, errors.Errorf("unknown quantizer %q for property %q", res.encoding, prop)
		}
		raw := q.Encode(values, dims, count, res.params)
		compressed, err := deflateBytes(raw)
		if err != nil {
			return nil, errors.Wrap(err, "deflate property")
		}

		pm := PropertyMeta{
			Property:    prop,
			Encoding:    res.encoding,
			Compression: "gz",
			Offset:      cursor,
			Bytes:       uint64(len(compressed)),
		}
		if usesRange(res.encoding) {
			min, max := res.params.Min, res.params.Max
			pm.Min, pm.Max = &min, &max
		}
		propMetas = append(propMetas, pm)

		payload.Write(compressed)
		payload.Write(make([]byte, align8(len(compressed))-len(compressed)))
		cursor += uint64(align8(len(compressed)))
	}

	chunkMeta := ChunkMeta{
		Version:      1,
		Base:         base,
		Count:        count,
		PayloadBytes: uint64(payload.Len()),
		Properties:   propMetas,
	}
	cmJSON, err := json.Marshal(chunkMeta)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chunk meta")
	}

	var out bytes.Buffer
	out.WriteString(chunkMagic)
	writeU32(&out, uint32(len(cmJSON)))
	out.Write(cmJSON)
	out.Write(make([]byte, align8(len(cmJSON))-len(cmJSON)))
	writeU64(&out, chunkMeta.PayloadBytes)
	out.Write(payload.Bytes())
	return out.Bytes(), nil
}

func usesRange(encoding string) bool {
	switch encoding {
	case "r8", "r8_delta", "s8", "s8_delta", "ln_0r8":
		return true
	}
	return false
}

func deflateBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, deflateLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
