package quant

import (
	"math"
	"testing"
)

func TestR8RoundTrip(t *testing.T) {
	for _, v := range []float32{-1, 0, 0.5, 1, 1.999, 2} {
		b := EncodeR8(v, -1, 2)
		got := DecodeR8(b, -1, 2)
		if math.Abs(float64(got-v)) > 3.0/255.0 {
			t.Fatalf("r8 roundtrip %v -> %v (byte %d)", v, got, b)
		}
	}
}

func TestS8RoundTrip(t *testing.T) {
	for _, v := range []float32{-1, -0.3, 0, 0.3, 1} {
		b := EncodeS8(v, 1)
		got := DecodeS8(b, 1)
		if math.Abs(float64(got-v)) > 2.0/127.0 {
			t.Fatalf("s8 roundtrip %v -> %v (byte %d)", v, got, b)
		}
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 0.5, 65504, -65504, 1e-5} {
		h := Float32ToFloat16(v)
		got := Float16ToFloat32(h)
		if math.Abs(float64(got-v)) > math.Abs(float64(v))*0.01+1e-6 {
			t.Fatalf("f16 roundtrip %v -> %v", v, got)
		}
	}
}

func TestLn0R8RoundTrip(t *testing.T) {
	for _, v := range []float32{0.01, 0.1, 1, 10} {
		b := EncodeLn0R8(v, -5, 3, 0.001)
		got := DecodeLn0R8(b, -5, 3, 0.001)
		if math.Abs(float64(got-v))/float64(v) > 0.05 {
			t.Fatalf("ln0r8 roundtrip %v -> %v (byte %d)", v, got, b)
		}
	}
	if EncodeLn0R8(0.0001, -5, 3, 0.001) != 0 {
		t.Fatalf("expected zero-cutoff to map to code 0")
	}
}

func TestOctQuatRoundTrip(t *testing.T) {
	cases := [][4]float32{
		{0, 0, 0, 1},
		{1, 0, 0, 0},
		{0.5, 0.5, 0.5, 0.5},
		normalize([4]float32{0.1, -0.3, 0.8, 0.2}),
	}
	for _, q := range cases {
		enc := EncodeOctQuat888(q)
		dec := DecodeOctQuat888(enc)
		if angularError(q, dec) > 0.05 {
			t.Fatalf("oct quat roundtrip %v -> %v too far apart", q, dec)
		}
	}
}

func normalize(q [4]float32) [4]float32 {
	n := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	return [4]float32{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

func angularError(a, b [4]float32) float64 {
	dot := float64(a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3])
	if dot < 0 {
		dot = -dot
	}
	if dot > 1 {
		dot = 1
	}
	return 1 - dot
}
