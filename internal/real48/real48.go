// Package real48 converts the 6-byte legacy floating-point type to and from float64.
//
// Layout (little-endian significance, most significant last):
//
//	byte0      biased exponent, bias 129; 0 means the value is 0.0
//	byte1..4   low 32 mantissa bits, byte1 least significant
//	byte5      bit7 sign, bits0..6 the top 7 mantissa bits
//
// value = (1 + mantissa/2^39) * 2^(byte0-129), negated when the sign bit is set.
package real48

import (
	"math"

	"poolsim/internal/fault"
)

// Size is the encoded width in bytes.
const Size = 6

const (
	bias         = 129
	mantissaBits = 39
	signBit      = 0x80
	topMask      = 0x7F
)

// Decode converts a 6-byte Real48 field. Any other length is a format error.
func Decode(b []byte) (float64, error) {
	if len(b) != Size {
		return 0, fault.New(fault.KindFormat, "real48", "want %d bytes, got %d", Size, len(b))
	}
	if b[0] == 0 {
		return 0, nil
	}

	exponent := int(b[0]) - bias

	// Fold bytes 1..4 from least to most significant, then the top 7 bits.
	// Every step is exact in float64: the mantissa never exceeds 39 bits.
	mantissa := 0.0
	for i := 1; i <= 4; i++ {
		mantissa += float64(b[i])
		mantissa /= 256
	}
	mantissa += float64(b[5] & topMask)
	mantissa /= 128
	mantissa += 1.0

	if b[5]&signBit != 0 {
		mantissa = -mantissa
	}
	return math.Ldexp(mantissa, exponent), nil
}

// MustDecode is Decode for callers that already validated the length.
func MustDecode(b []byte) float64 {
	v, err := Decode(b)
	if err != nil {
		panic(err)
	}
	return v
}

// Encode converts v to Real48, rounding the mantissa to 39 bits.
// Values whose exponent falls outside the 8-bit biased range are format errors; magnitudes
// below the smallest normal Real48 encode as zero, as the legacy runtime does.
func Encode(v float64) ([Size]byte, error) {
	var out [Size]byte
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return out, fault.New(fault.KindFormat, "real48", "cannot encode %v", v)
	}
	if v == 0 {
		return out, nil
	}

	neg := v < 0
	frac, exp := math.Frexp(math.Abs(v)) // frac in [0.5, 1)

	// 1.m form: significand = frac*2, exponent = exp-1.
	scaled := (frac*2 - 1) * (1 << mantissaBits)
	m := uint64(math.Round(scaled))
	if m == 1<<mantissaBits {
		m = 0
		exp++
	}

	biased := exp - 1 + bias
	if biased > 255 {
		return out, fault.New(fault.KindFormat, "real48", "%v overflows the exponent range", v)
	}
	if biased < 1 {
		return out, nil
	}

	out[0] = byte(biased)
	out[1] = byte(m)
	out[2] = byte(m >> 8)
	out[3] = byte(m >> 16)
	out[4] = byte(m >> 24)
	out[5] = byte(m>>32) & topMask
	if neg {
		out[5] |= signBit
	}
	return out, nil
}
