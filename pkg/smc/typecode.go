package smc

// TypeCode is the controller-declared encoding of a key's value, a FourCC
// packed the same way as Key. The controller defines many codes; the two
// this module can decode are listed below, everything else is carried
// opaquely and rejected at read time.
type TypeCode uint32

const (
	// TypeFloat32 is "flt " (trailing space): a 32-bit IEEE-754-like
	// layout with 1 sign bit, 8 exponent bits and 23 mantissa bits.
	TypeFloat32 TypeCode = 0x666c7420

	// TypeFixed48x16 is "ioft": 48.16 fixed point in a 64-bit word.
	TypeFixed48x16 TypeCode = 0x696f6674
)

// ParseTypeCode converts a four-character string into a TypeCode.
func ParseTypeCode(s string) (TypeCode, error) {
	k, err := ParseKey(s)
	return TypeCode(k), err
}

// String returns the four-character form of the type code.
func (t TypeCode) String() string {
	return Key(t).String()
}

// Known reports whether this module can decode values of this type.
func (t TypeCode) Known() bool {
	return t == TypeFloat32 || t == TypeFixed48x16
}
