package inspect

import (
	"errors"
	"fmt"

	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Inspector errors.
var (
	ErrGroupNotPresent = errors.New("group not present in registry")
	ErrChannelNotFound = errors.New("channel not found")
)

// Inspector provides read-only display views of a sensor registry.
type Inspector struct {
	registry *sensors.Registry
}

// NewInspector creates an Inspector for the given registry.
func NewInspector(registry *sensors.Registry) *Inspector {
	return &Inspector{registry: registry}
}

// Registry returns the underlying registry.
func (i *Inspector) Registry() *sensors.Registry {
	return i.registry
}

// RegistryTree represents the discovered registry structure for display.
type RegistryTree struct {
	Groups []GroupInfo
}

// GroupInfo represents one non-empty group for display.
type GroupInfo struct {
	Group    sensors.Group
	Unit     string
	Scale    int64
	Channels []ChannelDetail
}

// ChannelDetail represents one channel for display. Fan channels carry
// their resolved extra fields; Fields is nil for everything else.
type ChannelDetail struct {
	Channel      int
	Key          smc.Key
	Type         smc.TypeCode
	Label        string
	Capabilities sensors.Capability
	Fields       []FanFieldDetail
}

// FanFieldDetail represents one resolved fan field beyond the tachometer.
type FanFieldDetail struct {
	Field sensors.FanField
	Key   smc.Key
	Type  smc.TypeCode
}

// InspectRegistry returns the full registry structure. Groups with no
// channels are omitted.
func (i *Inspector) InspectRegistry() *RegistryTree {
	tree := &RegistryTree{}
	for _, g := range sensors.Groups() {
		info, err := i.InspectGroup(g)
		if err != nil {
			continue
		}
		tree.Groups = append(tree.Groups, *info)
	}
	return tree
}

// InspectGroup returns one group's structure, or ErrGroupNotPresent when
// the registry holds no channels for it.
func (i *Inspector) InspectGroup(g sensors.Group) (*GroupInfo, error) {
	n := i.registry.Len(g)
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", g, ErrGroupNotPresent)
	}

	info := &GroupInfo{
		Group: g,
		Unit:  g.Unit(),
		Scale: g.Scale(),
	}
	for ch := 0; ch < n; ch++ {
		detail, err := i.InspectChannel(g, ch)
		if err != nil {
			return nil, err
		}
		info.Channels = append(info.Channels, *detail)
	}
	return info, nil
}

// InspectChannel returns one channel's structure.
func (i *Inspector) InspectChannel(g sensors.Group, channel int) (*ChannelDetail, error) {
	if g == sensors.GroupFan {
		fan, err := i.registry.Fan(channel)
		if err != nil {
			return nil, fmt.Errorf("fan %d: %w", channel, ErrChannelNotFound)
		}
		detail := &ChannelDetail{
			Channel:      channel,
			Key:          fan.Now.Key,
			Type:         fan.Now.Type,
			Label:        fan.Label,
			Capabilities: fan.Capabilities,
		}
		for _, fd := range []struct {
			field sensors.FanField
			desc  *sensors.SensorDescriptor
		}{
			{sensors.FanMin, fan.Min},
			{sensors.FanMax, fan.Max},
			{sensors.FanTarget, fan.Target},
		} {
			if fd.desc == nil {
				continue
			}
			detail.Fields = append(detail.Fields, FanFieldDetail{
				Field: fd.field,
				Key:   fd.desc.Key,
				Type:  fd.desc.Type,
			})
		}
		return detail, nil
	}

	desc, err := i.registry.Sensor(g, channel)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", g, channel, ErrChannelNotFound)
	}
	return &ChannelDetail{
		Channel:      channel,
		Key:          desc.Key,
		Type:         desc.Type,
		Label:        desc.Label,
		Capabilities: sensors.CapLabel | sensors.CapInput,
	}, nil
}
