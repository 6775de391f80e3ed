package quant

type r8Quantizer struct{}

func (r8Quantizer) Encode(values []float32, dims, count int, p Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major))
	for i, v := range major {
		out[i] = EncodeR8(v, p.Min, p.Max)
	}
	return out
}

func (r8Quantizer) Decode(data []byte, dims, count int, p Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = DecodeR8(data[i], p.Min, p.Max)
	}
	return fromDimsMajor(major, dims, count)
}

// deltaEncode prefix-delta-encodes each count-wide run (one per
// dimension) of a dims-major byte buffer: byte 0 of a run stays as-is,
// every following byte becomes its wrapping difference from the prior
// plain value (spec §4.F: "subsequent values as wrapping byte-deltas").
func deltaEncode(plain []byte, dims, count int) []byte {
	out := make([]byte, len(plain))
	for d := 0; d < dims; d++ {
		base := d * count
		out[base] = plain[base]
		for i := 1; i < count; i++ {
			out[base+i] = plain[base+i] - plain[base+i-1]
		}
	}
	return out
}

// deltaDecode is the inverse prefix-sum of deltaEncode.
func deltaDecode(delta []byte, dims, count int) []byte {
	out := make([]byte, len(delta))
	for d := 0; d < dims; d++ {
		base := d * count
		out[base] = delta[base]
		for i := 1; i < count; i++ {
			out[base+i] = out[base+i-1] + delta[base+i]
		}
	}
	return out
}

type r8DeltaQuantizer struct{}

func (r8DeltaQuantizer) Encode(values []float32, dims, count int, p Params) []byte {
	plain := r8Quantizer{}.Encode(values, dims, count, p)
	return deltaEncode(plain, dims, count)
}

func (r8DeltaQuantizer) Decode(data []byte, dims, count int, p Params) []float32 {
	plain := deltaDecode(data, dims, count)
	return r8Quantizer{}.Decode(plain, dims, count, p)
}

type s8Quantizer struct{}

func (s8Quantizer) Encode(values []float32, dims, count int, p Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major))
	for i, v := range major {
		out[i] = byte(EncodeS8(v, p.Max))
	}
	return out
}

func (s8Quantizer) Decode(data []byte, dims, count int, p Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = DecodeS8(int8(data[i]), p.Max)
	}
	return fromDimsMajor(major, dims, count)
}

type s8DeltaQuantizer struct{}

func (s8DeltaQuantizer) Encode(values []float32, dims, count int, p Params) []byte {
	plain := s8Quantizer{}.Encode(values, dims, count, p)
	return deltaEncode(plain, dims, count)
}

func (s8DeltaQuantizer) Decode(data []byte, dims, count int, p Params) []float32 {
	plain := deltaDecode(data, dims, count)
	return s8Quantizer{}.Decode(plain, dims, count, p)
}

type ln0R8Quantizer struct{}

func (ln0R8Quantizer) Encode(values []float32, dims, count int, p Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major))
	for i, v := range major {
		out[i] = EncodeLn0R8(v, p.Min, p.Max, p.ZeroCutoff)
	}
	return out
}

func (ln0R8Quantizer) Decode(data []byte, dims, count int, p Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		major[i] = DecodeLn0R8(data[i], p.Min, p.Max, p.ZeroCutoff)
	}
	return fromDimsMajor(major, dims, count)
}

type lnF16Quantizer struct{}

func (lnF16Quantizer) Encode(values []float32, dims, count int, _ Params) []byte {
	major := toDimsMajor(values, dims, count)
	out := make([]byte, len(major)*2)
	for i, v := range major {
		h := EncodeLnF16(v)
		out[i*2] = byte(h)
		out[i*2+1] = byte(h >> 8)
	}
	return out
}

func (lnF16Quantizer) Decode(data []byte, dims, count int, _ Params) []float32 {
	n := dims * count
	major := make([]float32, n)
	for i := 0; i < n; i++ {
		h := uint16(data[i*2]) | uint16(data[i*2+1])<<8
		major[i] = DecodeLnF16(h)
	}
	return fromDimsMajor(major, dims, count)
}
