package smc

import (
	"errors"
	"fmt"
)

// ErrBadKey indicates a key string that is not exactly four characters.
var ErrBadKey = errors.New("key must be exactly 4 characters")

// Key identifies one controller-resident value. It is a FourCC: four ASCII
// characters packed into 32 bits with the first character in the most
// significant byte, so "TC0P" is 0x54433050.
type Key uint32

// ParseKey converts a four-character string into a Key.
func ParseKey(s string) (Key, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrBadKey, s)
	}
	return Key(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])), nil
}

// MustParseKey is like ParseKey but panics on error. Intended for constants
// and generated tables.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the four-character form of the key.
func (k Key) String() string {
	return string([]byte{byte(k >> 24), byte(k >> 16), byte(k >> 8), byte(k)})
}

// MarshalText implements encoding.TextMarshaler so keys render as their
// four-character form in YAML and JSON.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
