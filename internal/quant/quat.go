package quant

// octQuatQuantizer wraps EncodeOctQuat888/DecodeOctQuat888 as a column
// codec. Unlike the other quantizers it is not dimension-major — a
// quaternion's four components are never useful split apart, so values
// stays splat-major (four floats per element) and the output is three
// bytes per element, not per dimension.
type octQuatQuantizer struct{}

func (octQuatQuantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	out := make([]byte, count*3)
	for i := 0; i < count; i++ {
		var q [4]float32
		copy(q[:], values[i*4:i*4+4])
		b := EncodeOctQuat888(q)
		copy(out[i*3:i*3+3], b[:])
	}
	return out
}

func (octQuatQuantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	out := make([]float32, count*4)
	for i := 0; i < count; i++ {
		var b [3]byte
		copy(b[:], data[i*3:i*3+3])
		q := DecodeOctQuat888(b)
		copy(out[i*4:i*4+4], q[:])
	}
	return out
}
