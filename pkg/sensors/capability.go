package sensors

import "strings"

// Capability is a bitmask recording which values a channel exposes.
type Capability uint8

const (
	// CapLabel indicates the channel has a display label.
	CapLabel Capability = 1 << 0
	// CapInput indicates the channel has a readable current value.
	CapInput Capability = 1 << 1
	// CapMin indicates a fan exposes its minimum speed.
	CapMin Capability = 1 << 2
	// CapMax indicates a fan exposes its maximum speed.
	CapMax Capability = 1 << 3
	// CapTarget indicates a fan exposes its target speed.
	CapTarget Capability = 1 << 4
)

// sensorCaps is the constant flag pair published for every non-fan channel.
const sensorCaps = CapLabel | CapInput

// Has reports whether all bits of mask are set.
func (c Capability) Has(mask Capability) bool {
	return c&mask == mask
}

// String returns the set bits joined by "|", or "NONE" for an empty mask.
func (c Capability) String() string {
	if c == 0 {
		return "NONE"
	}

	names := []struct {
		bit  Capability
		name string
	}{
		{CapLabel, "LABEL"},
		{CapInput, "INPUT"},
		{CapMin, "MIN"},
		{CapMax, "MAX"},
		{CapTarget, "TARGET"},
	}

	var parts []string
	for _, n := range names {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
