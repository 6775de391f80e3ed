package quant

import (
	"encoding/binary"
	"math"
)

// Params carries the affine/range parameters a Quantizer needs beyond
// the raw values themselves (spec §4.F's "params" argument): the r8/s8
// family's min/max, ln_0r8's zero cutoff. Quantizers that don't need a
// parameter simply ignore it.
type Params struct {
	Min, Max   float32
	ZeroCutoff float32
}

// Quantizer is one column codec of spec §4.F. values (Encode's input,
// Decode's output) are laid out splat-major: count consecutive dims-
// wide tuples, e.g. scales would be [x0,y0,z0,x1,y1,z1,...]. Each
// concrete quantizer is responsible for re-laying its encoded bytes out
// dimension-major internally, per spec §4.F ("laid out by dimension-
// major for better compressibility").
type Quantizer interface {
	Encode(values []float32, dims, count int, p Params) []byte
	Decode(data []byte, dims, count int, p Params) []float32
}

// Registry looks codecs up by the name stored in chunk_meta_json's
// per-property "encoding" field, grounded on the teacher's std/crypt.go
// cryptMethods name->constructor table.
var Registry = map[string]Quantizer{
	"f32":          f32Quantizer{},
	"f16":          f16Quantizer{},
	"f32_lebytes":  f32LEBytesQuantizer{},
	"f16_lebytes":  f16LEBytesQuantizer{},
	"r8":           r8Quantizer{},
	"r8_delta":     r8DeltaQuantizer{},
	"s8":           s8Quantizer{},
	"s8_delta":     s8DeltaQuantizer{},
	"ln_0r8":       ln0R8Quantizer{},
	"ln_f16":       lnF16Quantizer{},
	"oct_quat_888": octQuatQuantizer{},
	"u16":          u16Quantizer{},
	"u32":          u32Quantizer{},
}

// toDimsMajor transposes a splat-major value buffer (count tuples of
// dims floats each) into dims-major order (all dim-0 values, then all
// dim-1, ...).
func toDimsMajor(values []float32, dims, count int) []float32 {
	out := make([]float32, dims*count)
	for i := 0; i < count; i++ {
		for d := 0; d < dims; d++ {
			out[d*count+i] = values[i*dims+d]
		}
	}
	return out
}

// fromDimsMajor is the inverse of toDimsMajor.
func fromDimsMajor(values []float32, dims, count int) []float32 {
	out := make([]float32, dims*count)
	for d := 0; d < dims; d++ {
		for i := 0; i < count; i++ {
			out[i*dims+d] = values[d*count+i]
		}
	}
	return out
}

type f32Quantizer struct{}

func (f32Quantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major)*4)
	for i, v := range major {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func (f32Quantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return fromDimsMajor(major, dims, count)
}

type f16Quantizer struct{}

func (f16Quantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major)*2)
	for i, v := range major {
		binary.LittleEndian.PutUint16(out[i*2:], Float32ToFloat16(v))
	}
	return out
}

func (f16Quantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = Float16ToFloat32(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return fromDimsMajor(major, dims, count)
}

type u16Quantizer struct{}

func (u16Quantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major)*2)
	for i, v := range major {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func (u16Quantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = float32(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return fromDimsMajor(major, dims, count)
}

type u32Quantizer struct{}

func (u32Quantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major)*4)
	for i, v := range major {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

func (u32Quantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = float32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return fromDimsMajor(major, dims, count)
}

