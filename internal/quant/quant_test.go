package quant

import (
	"math"
	"math/rand"
	"testing"
)

func TestF32RoundTrip(t *testing.T) {
	values := []float32{1.5, -2.25, 0, 3.125, -9.75, 100.0}
	q := Registry["f32"]
	enc := q.Encode(values, 3, 2, Params{})
	dec := q.Decode(enc, 3, 2, Params{})
	for i := range values {
		if dec[i] != values[i] {
			t.Fatalf("f32 round trip mismatch at %d: got %v want %v", i, dec[i], values[i])
		}
	}
}

func TestF32LEBytesRoundTrip(t *testing.T) {
	values := []float32{1.5, -2.25, 0, 3.125, -9.75, 100.0}
	q := Registry["f32_lebytes"]
	enc := q.Encode(values, 3, 2, Params{})
	dec := q.Decode(enc, 3, 2, Params{})
	for i := range values {
		if dec[i] != values[i] {
			t.Fatalf("f32_lebytes round trip mismatch at %d: got %v want %v", i, dec[i], values[i])
		}
	}
}

func TestF16RoundTripApprox(t *testing.T) {
	values := []float32{1.5, -2.25, 0.5}
	q := Registry["f16"]
	enc := q.Encode(values, 1, 3, Params{})
	dec := q.Decode(enc, 1, 3, Params{})
	for i := range values {
		if math.Abs(float64(dec[i]-values[i])) > 1e-2 {
			t.Fatalf("f16 round trip too far at %d: got %v want %v", i, dec[i], values[i])
		}
	}
}

func TestR8RoundTripTolerance(t *testing.T) {
	values := []float32{0, 0.25, 0.5, 0.75, 1.0}
	p := Params{Min: 0, Max: 1}
	q := Registry["r8"]
	enc := q.Encode(values, 1, len(values), p)
	dec := q.Decode(enc, 1, len(values), p)
	for i := range values {
		if math.Abs(float64(dec[i]-values[i])) > 1.0/255+1e-6 {
			t.Fatalf("r8 round trip out of tolerance at %d: got %v want %v", i, dec[i], values[i])
		}
	}
}

func TestR8DeltaMatchesPlain(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const dims, count = 3, 50
	values := make([]float32, dims*count)
	for i := range values {
		values[i] = rng.Float32()
	}
	p := Params{Min: 0, Max: 1}

	plainEnc := Registry["r8"].Encode(values, dims, count, p)
	plainDec := Registry["r8"].Decode(plainEnc, dims, count, p)

	deltaEnc := Registry["r8_delta"].Encode(values, dims, count, p)
	deltaDec := Registry["r8_delta"].Decode(deltaEnc, dims, count, p)

	for i := range plainDec {
		if plainDec[i] != deltaDec[i] {
			t.Fatalf("delta/plain mismatch at %d: plain=%v delta=%v", i, plainDec[i], deltaDec[i])
		}
	}
}

func TestS8DeltaMatchesPlain(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	const dims, count = 2, 40
	values := make([]float32, dims*count)
	for i := range values {
		values[i] = (rng.Float32()*2 - 1) * 2
	}
	p := Params{Max: 2}

	plainEnc := Registry["s8"].Encode(values, dims, count, p)
	plainDec := Registry["s8"].Decode(plainEnc, dims, count, p)

	deltaEnc := Registry["s8_delta"].Encode(values, dims, count, p)
	deltaDec := Registry["s8_delta"].Decode(deltaEnc, dims, count, p)

	for i := range plainDec {
		if plainDec[i] != deltaDec[i] {
			t.Fatalf("delta/plain mismatch at %d: plain=%v delta=%v", i, plainDec[i], deltaDec[i])
		}
	}
}

func TestLn0R8ColumnRoundTrip(t *testing.T) {
	values := []float32{0, 0.01, 1, 100}
	p := Params{Min: float32(math.Log(0.01)), Max: float32(math.Log(100)), ZeroCutoff: 1e-4}
	q := Registry["ln_0r8"]
	enc := q.Encode(values, 1, len(values), p)
	dec := q.Decode(enc, 1, len(values), p)
	if dec[0] != p.ZeroCutoff {
		t.Fatalf("expected zero-below-cutoff to decode to the cutoff, got %v", dec[0])
	}
	for i := 1; i < len(values); i++ {
		ratio := float64(dec[i] / values[i])
		if ratio < 0.9 || ratio > 1.1 {
			t.Fatalf("ln_0r8 round trip too far at %d: got %v want %v", i, dec[i], values[i])
		}
	}
}

func TestOctQuatColumnRoundTrip(t *testing.T) {
	quats := []float32{0, 0, 0, 1, 0.70710678, 0, 0, 0.70710678}
	q := Registry["oct_quat_888"]
	enc := q.Encode(quats, 4, 2, Params{})
	dec := q.Decode(enc, 4, 2, Params{})
	for i := 0; i < 2; i++ {
		var dot float32
		for k := 0; k < 4; k++ {
			dot += quats[i*4+k] * dec[i*4+k]
		}
		if dot < 0 {
			dot = -dot
		}
		if dot < 0.99 {
			t.Fatalf("quat %d drifted too far: dot=%v", i, dot)
		}
	}
}

func TestU32RoundTrip(t *testing.T) {
	values := []float32{0, 1, 65536, 4000000000}
	q := Registry["u32"]
	enc := q.Encode(values, 1, len(values), Params{})
	dec := q.Decode(enc, 1, len(values), Params{})
	for i := range values {
		if dec[i] != values[i] {
			t.Fatalf("u32 round trip mismatch at %d: got %v want %v", i, dec[i], values[i])
		}
	}
}
