package sensors

import (
	"fmt"
	"strings"
)

// Group identifies a physical-quantity sensor group.
type Group uint8

const (
	// GroupTemperature holds temperature sensors (millidegrees Celsius).
	GroupTemperature Group = 0
	// GroupVoltage holds voltage sensors (millivolts).
	GroupVoltage Group = 1
	// GroupCurrent holds current sensors (milliamps).
	GroupCurrent Group = 2
	// GroupPower holds power sensors (microwatts).
	GroupPower Group = 3
	// GroupFan holds fans (RPM).
	GroupFan Group = 4
)

// Groups returns all groups in registry order.
func Groups() []Group {
	return []Group{GroupTemperature, GroupVoltage, GroupCurrent, GroupPower, GroupFan}
}

// String returns the group name.
func (g Group) String() string {
	switch g {
	case GroupTemperature:
		return "TEMPERATURE"
	case GroupVoltage:
		return "VOLTAGE"
	case GroupCurrent:
		return "CURRENT"
	case GroupPower:
		return "POWER"
	case GroupFan:
		return "FAN"
	default:
		return "UNKNOWN"
	}
}

// ParseGroup parses a group name, case-insensitively.
func ParseGroup(s string) (Group, error) {
	switch strings.ToUpper(s) {
	case "TEMPERATURE", "TEMP":
		return GroupTemperature, nil
	case "VOLTAGE", "VOLT":
		return GroupVoltage, nil
	case "CURRENT", "CURR":
		return GroupCurrent, nil
	case "POWER":
		return GroupPower, nil
	case "FAN":
		return GroupFan, nil
	default:
		return 0, fmt.Errorf("unknown group %q", s)
	}
}

// Scale returns the group's fixed decode scale: values returned by
// Registry.Read are in units of 1/Scale of the base quantity.
func (g Group) Scale() int64 {
	switch g {
	case GroupTemperature, GroupVoltage, GroupCurrent:
		return 1000
	case GroupPower:
		return 1_000_000
	default:
		return 1
	}
}

// Unit returns the base display unit of the group's quantity.
func (g Group) Unit() string {
	switch g {
	case GroupTemperature:
		return "°C"
	case GroupVoltage:
		return "V"
	case GroupCurrent:
		return "A"
	case GroupPower:
		return "W"
	case GroupFan:
		return "RPM"
	default:
		return ""
	}
}

// NodeName returns the description-tree node name the group's keys are
// discovered under, or "" for an unknown group.
func (g Group) NodeName() string {
	switch g {
	case GroupTemperature:
		return "temperature-keys"
	case GroupVoltage:
		return "voltage-keys"
	case GroupCurrent:
		return "current-keys"
	case GroupPower:
		return "power-keys"
	case GroupFan:
		return "fan-keys"
	default:
		return ""
	}
}

// Description-tree property names on a group's child nodes.
const (
	// PropKeyID holds the four-character key, mandatory on every child.
	PropKeyID = "key-id"
	// PropKeyDesc holds an optional display label.
	PropKeyDesc = "key-desc"
	// PropFanMinimum names a fan's minimum-speed key.
	PropFanMinimum = "fan-minimum"
	// PropFanMaximum names a fan's maximum-speed key.
	PropFanMaximum = "fan-maximum"
	// PropFanTarget names a fan's target-speed key.
	PropFanTarget = "fan-target"
)
