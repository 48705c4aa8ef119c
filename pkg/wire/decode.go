package wire

// billion is the fixed-point base used to accumulate the float32
// significand: one unit of significand equals one billionth.
const billion = 1_000_000_000

// DecodeFloat32 converts the raw bit pattern of a "flt " value into an
// integer scaled by scale, using integer arithmetic only.
//
// The layout is 1 sign bit (31), 8 biased exponent bits (30-23) and 23
// mantissa bits (22-0). The significand is accumulated in billionths; the
// implicit leading one is added only for normalized numbers (nonzero
// exponent). Subnormal patterns keep the same accumulation without the
// implicit one; real sensor keys do not produce them.
func DecodeFloat32(raw uint32, scale int64) int64 {
	sign := raw >> 31
	exp := int(raw>>23) & 0xff
	mant := raw & 0x7fffff

	if exp == 0 && mant == 0 {
		return 0
	}

	var sig int64
	for i := 22; i >= 0; i-- {
		if mant&(1<<uint(i)) != 0 {
			sig += billion >> uint(23-i)
		}
	}
	if exp != 0 {
		sig += billion
	}

	if e := exp - 127; e >= 0 {
		sig <<= uint(e)
	} else {
		sig >>= uint(-e)
	}

	result := sig * scale / billion
	if sign == 1 {
		result = -result
	}
	return result
}

// DecodeFixed48x16 converts a 48.16 fixed-point value into an integer
// scaled by scale: (raw * scale) >> 16 with an arithmetic shift. int64 is
// wide enough for the scales in use (up to 1_000_000) over real sensor
// ranges; larger magnitudes overflow and are out of contract.
func DecodeFixed48x16(raw uint64, scale int64) int64 {
	return (int64(raw) * scale) >> 16
}
