package sensors

import (
	"fmt"
	"strings"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// MaxLabelLen is the longest stored label in bytes. Longer labels are
// truncated on assignment.
const MaxLabelLen = 31

// SensorDescriptor describes one resolved telemetry key. Descriptors are
// only constructed after a successful metadata resolution and never change
// once placed in a registry.
type SensorDescriptor struct {
	// Key is the controller key this channel reads.
	Key smc.Key

	// Type is the wire encoding the controller declared at build time.
	Type smc.TypeCode

	// Label is the display label: the description tree's key-desc, or the
	// key's own text when no description was given.
	Label string
}

// FanField selects one of a fan's readable values.
type FanField uint8

const (
	// FanInput is the tachometer (current speed).
	FanInput FanField = 0
	// FanMin is the minimum speed.
	FanMin FanField = 1
	// FanMax is the maximum speed.
	FanMax FanField = 2
	// FanTarget is the target speed.
	FanTarget FanField = 3
)

// String returns the field name.
func (f FanField) String() string {
	switch f {
	case FanInput:
		return "INPUT"
	case FanMin:
		return "MIN"
	case FanMax:
		return "MAX"
	case FanTarget:
		return "TARGET"
	default:
		return "UNKNOWN"
	}
}

// ParseFanField parses a fan field name, case-insensitively.
func ParseFanField(s string) (FanField, error) {
	switch strings.ToUpper(s) {
	case "INPUT", "NOW":
		return FanInput, nil
	case "MIN", "MINIMUM":
		return FanMin, nil
	case "MAX", "MAXIMUM":
		return FanMax, nil
	case "TARGET":
		return FanTarget, nil
	default:
		return 0, fmt.Errorf("unknown fan field %q", s)
	}
}

// capBit returns the capability bit guarding the field, or 0 for an
// unknown field.
func (f FanField) capBit() Capability {
	switch f {
	case FanInput:
		return CapInput
	case FanMin:
		return CapMin
	case FanMax:
		return CapMax
	case FanTarget:
		return CapTarget
	default:
		return 0
	}
}

// FanDescriptor describes one fan. Now is always present; Min, Max and
// Target are nil when the platform does not expose them. Capabilities is
// the public contract and is consistent with the pointers by construction:
// a bit is set iff the corresponding field resolved at build time.
type FanDescriptor struct {
	// Now is the tachometer sensor.
	Now SensorDescriptor

	// Min is the minimum-speed sensor, nil when not exposed.
	Min *SensorDescriptor

	// Max is the maximum-speed sensor, nil when not exposed.
	Max *SensorDescriptor

	// Target is the target-speed sensor, nil when not exposed.
	Target *SensorDescriptor

	// Label is the fan's display label, independent of the per-field
	// sensor labels.
	Label string

	// Capabilities records which fields are valid to read. LABEL and
	// INPUT are always set.
	Capabilities Capability
}

// sensor returns the descriptor backing a field, nil when unset.
func (f *FanDescriptor) sensor(field FanField) *SensorDescriptor {
	switch field {
	case FanInput:
		return &f.Now
	case FanMin:
		return f.Min
	case FanMax:
		return f.Max
	case FanTarget:
		return f.Target
	default:
		return nil
	}
}

// clone returns a copy that shares no pointers with f.
func (f FanDescriptor) clone() FanDescriptor {
	c := f
	if f.Min != nil {
		m := *f.Min
		c.Min = &m
	}
	if f.Max != nil {
		m := *f.Max
		c.Max = &m
	}
	if f.Target != nil {
		m := *f.Target
		c.Target = &m
	}
	return c
}

// ChannelInfo describes one externally numbered channel for a monitoring
// front end.
type ChannelInfo struct {
	// Group is the channel's quantity group.
	Group Group

	// Channel is the index within the group.
	Channel int

	// Key is the primary key behind the channel (the tachometer for fans).
	Key smc.Key

	// Label is the display label.
	Label string

	// Capabilities records the channel's readable values. Constant
	// LABEL|INPUT for non-fan groups, the per-fan bitmask for fans.
	Capabilities Capability
}

// truncateLabel bounds a label to MaxLabelLen bytes.
func truncateLabel(s string) string {
	if len(s) > MaxLabelLen {
		return s[:MaxLabelLen]
	}
	return s
}
