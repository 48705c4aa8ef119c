package smc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrKeyNotFound indicates the controller has no key with the requested
// identifier. Transports must return it (possibly wrapped) so callers can
// distinguish a missing key from an I/O failure with errors.Is.
var ErrKeyNotFound = errors.New("key not found")

// KeyInfo is the metadata the controller reports for a key.
type KeyInfo struct {
	// Type is the key's wire encoding.
	Type TypeCode

	// Size is the value size in bytes as declared by the controller.
	Size uint8
}

// Transport is a connection to a controller. Implementations must be safe
// for concurrent use; both calls are single synchronous round trips with
// no retries.
type Transport interface {
	// KeyInfo looks up the declared wire type and size of a key.
	// Returns ErrKeyNotFound if the key does not exist.
	KeyInfo(key Key) (KeyInfo, error)

	// ReadKey reads the current value of a key as raw little-endian
	// bytes. Returns ErrKeyNotFound if the key does not exist.
	ReadKey(key Key) ([]byte, error)
}

// ReadU32 reads a key expected to carry a 4-byte value and decodes it as
// little-endian. Used for "flt " keys, whose bit pattern is decoded by
// wire.DecodeFloat32.
func ReadU32(t Transport, key Key) (uint32, error) {
	b, err := t.ReadKey(key)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, fmt.Errorf("key %s: got %d bytes, want 4", key, len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a key expected to carry an 8-byte value and decodes it as
// little-endian. Used for "ioft" keys.
func ReadU64(t Transport, key Key) (uint64, error) {
	b, err := t.ReadKey(key)
	if err != nil {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("key %s: got %d bytes, want 8", key, len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}
