package quant

import (
	"encoding/binary"
	"math"
)

// planeDeinterleave regroups a flat byte buffer of n values, each
// width bytes wide and already dims-major, into byte planes: all byte
// 0's first, then all byte 1's, etc (spec §4.F / §9: "the sign+exponent
// bytes are highly repetitive and DEFLATE compresses them far better
// when grouped together").
func planeDeinterleave(data []byte, width int) []byte {
	n := len(data) / width
	out := make([]byte, len(data))
	for w := 0; w < width; w++ {
		for i := 0; i < n; i++ {
			out[w*n+i] = data[i*width+w]
		}
	}
	return out
}

// planeInterleave is the inverse of planeDeinterleave.
func planeInterleave(data []byte, width int) []byte {
	n := len(data) / width
	out := make([]byte, len(data))
	for w := 0; w < width; w++ {
		for i := 0; i < n; i++ {
			out[i*width+w] = data[w*n+i]
		}
	}
	return out
}

type f32LEBytesQuantizer struct{}

func (f32LEBytesQuantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	raw := make([]byte, len(major)*4)
	for i, v := range major {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return planeDeinterleave(raw, 4)
}

func (f32LEBytesQuantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	raw := planeInterleave(data, 4)
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return fromDimsMajor(major, dims, count)
}

type f16LEBytesQuantizer struct{}

func (f16LEBytesQuantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	raw := make([]byte, len(major)*2)
	for i, v := range major {
		binary.LittleEndian.PutUint16(raw[i*2:], Float32ToFloat16(v))
	}
	return planeDeinterleave(raw, 2)
}

func (f16LEBytesQuantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	raw := planeInterleave(data, 2)
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = Float16ToFloat32(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return fromDimsMajor(major, dims, count)
}
