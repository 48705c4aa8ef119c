package sensors

import (
	"errors"
	"fmt"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

var (
	// ErrKeyResolution indicates a candidate key's metadata lookup failed
	// at build time. The candidate is dropped and the build continues.
	ErrKeyResolution = errors.New("key resolution failed")

	// ErrGroupEmpty indicates a group node was present in the description
	// tree but produced no resolvable entries.
	ErrGroupEmpty = errors.New("no resolvable keys in group")

	// ErrRegistryEmpty indicates every group came up empty. This is the
	// only condition that fails a build outright.
	ErrRegistryEmpty = errors.New("no usable telemetry keys")

	// ErrOutOfRange indicates a channel index beyond the group's length.
	ErrOutOfRange = errors.New("channel out of range")

	// ErrUnsupportedWireType indicates a key whose declared wire type is
	// neither known encoding. Reported at read time, when dispatch happens.
	ErrUnsupportedWireType = errors.New("unsupported wire type")

	// ErrCapabilityUnset indicates a fan field that did not resolve at
	// build time.
	ErrCapabilityUnset = errors.New("fan capability not present")
)

// Issue records one problem recovered during a registry build.
type Issue struct {
	// Group is the group being processed.
	Group Group

	// Node is the description-tree child name, empty for group-level
	// issues.
	Node string

	// Key is the key involved, zero when no key-id was parsed.
	Key smc.Key

	// Err is the underlying error, wrapping ErrKeyResolution or
	// ErrGroupEmpty.
	Err error
}

// String formats the issue for display.
func (i Issue) String() string {
	s := i.Group.String()
	if i.Node != "" {
		s += "/" + i.Node
	}
	if i.Key != 0 {
		s += " (" + i.Key.String() + ")"
	}
	return fmt.Sprintf("%s: %v", s, i.Err)
}
