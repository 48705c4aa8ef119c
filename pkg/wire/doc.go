// Package wire decodes the controller's two on-wire value encodings into
// integer physical units.
//
// # Encodings
//
// "flt " keys carry a 32-bit IEEE-754-like layout: 1 sign bit, 8 exponent
// bits (bias 127), 23 mantissa bits. The hardware context the controller is
// read from cannot assume a usable floating-point unit, so DecodeFloat32
// reconstructs the value with integer arithmetic only: the fractional
// mantissa is accumulated in billionths, the implicit leading one is added
// for normalized numbers, and the unbiased exponent is applied as a shift.
//
// "ioft" keys carry 48.16 fixed point in a 64-bit word; DecodeFixed48x16
// is a multiply and an arithmetic shift.
//
// # Scales
//
// Both decoders take a caller-supplied integer scale and return value*scale
// truncated to integer. The registry uses a fixed scale per physical
// quantity: 1000 for temperature (millidegrees), voltage (mV) and current
// (mA), 1_000_000 for power (microwatts), 1 for fan speed (RPM).
//
// Neither function is a general-purpose float decoder: extreme exponents
// overflow int64. That is accepted, matching the ranges real sensors
// produce.
package wire
