package sim

import (
	"github.com/chadmed/macsmc-go/pkg/devtree"
	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// seedDefaults are the per-group base values for seeded keys. Channels
// after the first are spread out a little so a demo shows distinct values.
var seedDefaults = map[sensors.Group]float64{
	sensors.GroupTemperature: 45.5,
	sensors.GroupVoltage:     12.0,
	sensors.GroupCurrent:     1.5,
	sensors.GroupPower:       15.0,
	sensors.GroupFan:         1200,
}

var seedSpread = map[sensors.Group]float64{
	sensors.GroupTemperature: 2.5,
	sensors.GroupVoltage:     0.1,
	sensors.GroupCurrent:     0.25,
	sensors.GroupPower:       5,
	sensors.GroupFan:         150,
}

// SeedFromTree installs a plausible key for every key the description
// tree names, so a registry built from the same tree resolves fully.
// Malformed children are skipped; the builder is the place that reports
// them. Returns the number of keys installed.
func (c *Controller) SeedFromTree(root devtree.Node) int {
	count := 0
	for _, g := range sensors.Groups() {
		node, ok := root.Child(g.NodeName())
		if !ok {
			continue
		}
		for i, child := range node.Children() {
			key, ok := childSeedKey(child, sensors.PropKeyID)
			if !ok {
				continue
			}
			if err := c.Set(key, seedType(g), seedValue(g, i)); err == nil {
				count++
			}

			if g != sensors.GroupFan {
				continue
			}
			for _, opt := range []struct {
				prop  string
				value float64
			}{
				{sensors.PropFanMinimum, 600},
				{sensors.PropFanMaximum, 4000},
				{sensors.PropFanTarget, 1800},
			} {
				key, ok := childSeedKey(child, opt.prop)
				if !ok {
					continue
				}
				if err := c.Set(key, smc.TypeFloat32, opt.value); err == nil {
					count++
				}
			}
		}
	}
	return count
}

// SeedWellKnown installs every key from the well-known table with a
// default for its quantity. Returns the number of keys installed.
func (c *Controller) SeedWellKnown() int {
	count := 0
	for _, known := range smc.KnownKeys() {
		g, ok := quantityGroup(known.Quantity)
		if !ok {
			continue
		}
		value := seedDefaults[g]
		if g == sensors.GroupFan {
			value = fanKeyDefault(known.Key)
		}
		if err := c.Set(known.Key, seedType(g), value); err == nil {
			count++
		}
	}
	return count
}

func childSeedKey(child devtree.Node, prop string) (smc.Key, bool) {
	text, ok := child.Property(prop)
	if !ok {
		return 0, false
	}
	key, err := smc.ParseKey(text)
	if err != nil {
		return 0, false
	}
	return key, true
}

// seedType picks the wire type for a seeded key. Current and power keys
// are seeded as 48.16 fixed point, matching the types real platforms
// declare most often; everything else is the float layout.
func seedType(g sensors.Group) smc.TypeCode {
	if g == sensors.GroupCurrent || g == sensors.GroupPower {
		return smc.TypeFixed48x16
	}
	return smc.TypeFloat32
}

func seedValue(g sensors.Group, channel int) float64 {
	return seedDefaults[g] + seedSpread[g]*float64(channel)
}

// fanKeyDefault distinguishes fan limit keys by their FourCC suffix, so
// a seeded F0Mn reads below a seeded F0Mx.
func fanKeyDefault(key smc.Key) float64 {
	text := key.String()
	switch text[2:] {
	case "Mn":
		return 600
	case "Mx":
		return 4000
	case "Tg":
		return 1800
	default:
		return seedDefaults[sensors.GroupFan]
	}
}

func quantityGroup(quantity string) (sensors.Group, bool) {
	g, err := sensors.ParseGroup(quantity)
	if err != nil {
		return 0, false
	}
	return g, true
}
