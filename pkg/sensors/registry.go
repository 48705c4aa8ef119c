package sensors

import (
	"fmt"
	"time"

	"github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/smc"
	"github.com/chadmed/macsmc-go/pkg/wire"
)

// Registry is the immutable sensor registry for one platform. It is
// published fully built and never mutated afterwards, so any number of
// goroutines may read concurrently without synchronization.
type Registry struct {
	temperature []SensorDescriptor
	voltage     []SensorDescriptor
	current     []SensorDescriptor
	power       []SensorDescriptor
	fans        []FanDescriptor

	transport smc.Transport
	logger    log.Logger
}

// Read returns the current value of a channel at the group's fixed scale
// (see Group.Scale). Reading GroupFan yields the fan tachometer.
func (r *Registry) Read(group Group, channel int) (int64, error) {
	return r.ReadScaled(group, channel, group.Scale())
}

// ReadScaled is Read with a caller-chosen scale.
func (r *Registry) ReadScaled(group Group, channel int, scale int64) (int64, error) {
	if group == GroupFan {
		return r.readFanField(channel, FanInput, scale)
	}

	list, ok := r.sensorSlice(group)
	if !ok {
		return 0, fmt.Errorf("group %s: %w", group, ErrOutOfRange)
	}
	if channel < 0 || channel >= len(list) {
		return 0, fmt.Errorf("%s channel %d: %w", group, channel, ErrOutOfRange)
	}
	return r.readSensor(group, channel, &list[channel], scale)
}

// ReadFan returns one of a fan's values in RPM. The field's capability
// bit is checked before any transport call; an unresolved field returns
// ErrCapabilityUnset, an unknown field ErrOutOfRange.
func (r *Registry) ReadFan(channel int, field FanField) (int64, error) {
	return r.readFanField(channel, field, GroupFan.Scale())
}

// Label returns a channel's display label. Pure lookup, no transport call.
func (r *Registry) Label(group Group, channel int) (string, error) {
	if group == GroupFan {
		if channel < 0 || channel >= len(r.fans) {
			return "", fmt.Errorf("fan channel %d: %w", channel, ErrOutOfRange)
		}
		return r.fans[channel].Label, nil
	}

	list, ok := r.sensorSlice(group)
	if !ok {
		return "", fmt.Errorf("group %s: %w", group, ErrOutOfRange)
	}
	if channel < 0 || channel >= len(list) {
		return "", fmt.Errorf("%s channel %d: %w", group, channel, ErrOutOfRange)
	}
	return list[channel].Label, nil
}

// Len returns the number of channels in a group.
func (r *Registry) Len(group Group) int {
	if group == GroupFan {
		return len(r.fans)
	}
	list, ok := r.sensorSlice(group)
	if !ok {
		return 0
	}
	return len(list)
}

// Sensor returns the descriptor behind a non-fan channel.
func (r *Registry) Sensor(group Group, channel int) (SensorDescriptor, error) {
	list, ok := r.sensorSlice(group)
	if !ok {
		return SensorDescriptor{}, fmt.Errorf("group %s: %w", group, ErrOutOfRange)
	}
	if channel < 0 || channel >= len(list) {
		return SensorDescriptor{}, fmt.Errorf("%s channel %d: %w", group, channel, ErrOutOfRange)
	}
	return list[channel], nil
}

// Fan returns the fan descriptor for a channel.
func (r *Registry) Fan(channel int) (FanDescriptor, error) {
	if channel < 0 || channel >= len(r.fans) {
		return FanDescriptor{}, fmt.Errorf("fan channel %d: %w", channel, ErrOutOfRange)
	}
	return r.fans[channel].clone(), nil
}

// Channels returns the published channel metadata for one group, in
// channel order. Non-fan channels carry the constant LABEL|INPUT pair;
// fans carry their per-entry bitmask.
func (r *Registry) Channels(group Group) []ChannelInfo {
	if group == GroupFan {
		if len(r.fans) == 0 {
			return nil
		}
		infos := make([]ChannelInfo, len(r.fans))
		for i := range r.fans {
			f := &r.fans[i]
			infos[i] = ChannelInfo{
				Group:        GroupFan,
				Channel:      i,
				Key:          f.Now.Key,
				Label:        f.Label,
				Capabilities: f.Capabilities,
			}
		}
		return infos
	}

	list, ok := r.sensorSlice(group)
	if !ok || len(list) == 0 {
		return nil
	}
	infos := make([]ChannelInfo, len(list))
	for i, d := range list {
		infos[i] = ChannelInfo{
			Group:        group,
			Channel:      i,
			Key:          d.Key,
			Label:        d.Label,
			Capabilities: sensorCaps,
		}
	}
	return infos
}

// AllChannels returns metadata for every channel, in group then channel
// order.
func (r *Registry) AllChannels() []ChannelInfo {
	var all []ChannelInfo
	for _, g := range Groups() {
		all = append(all, r.Channels(g)...)
	}
	return all
}

// sensorSlice maps a non-fan group to its descriptor list.
func (r *Registry) sensorSlice(group Group) ([]SensorDescriptor, bool) {
	switch group {
	case GroupTemperature:
		return r.temperature, true
	case GroupVoltage:
		return r.voltage, true
	case GroupCurrent:
		return r.current, true
	case GroupPower:
		return r.power, true
	default:
		return nil, false
	}
}

// readFanField serves the fan read path. The capability check comes
// before any transport access.
func (r *Registry) readFanField(channel int, field FanField, scale int64) (int64, error) {
	if channel < 0 || channel >= len(r.fans) {
		return 0, fmt.Errorf("fan channel %d: %w", channel, ErrOutOfRange)
	}

	bit := field.capBit()
	if bit == 0 {
		return 0, fmt.Errorf("fan field %d: %w", field, ErrOutOfRange)
	}

	fan := &r.fans[channel]
	if !fan.Capabilities.Has(bit) {
		return 0, fmt.Errorf("fan %d %s: %w", channel, field, ErrCapabilityUnset)
	}
	return r.readSensor(GroupFan, channel, fan.sensor(field), scale)
}

// readSensor performs the one transport round trip of a read and decodes
// by the descriptor's recorded wire type.
func (r *Registry) readSensor(group Group, channel int, desc *SensorDescriptor, scale int64) (int64, error) {
	start := time.Now()

	var value int64
	switch desc.Type {
	case smc.TypeFloat32:
		raw, err := smc.ReadU32(r.transport, desc.Key)
		if err != nil {
			r.logReadError(group, channel, desc.Key, err)
			return 0, err
		}
		value = wire.DecodeFloat32(raw, scale)

	case smc.TypeFixed48x16:
		raw, err := smc.ReadU64(r.transport, desc.Key)
		if err != nil {
			r.logReadError(group, channel, desc.Key, err)
			return 0, err
		}
		value = wire.DecodeFixed48x16(raw, scale)

	default:
		err := fmt.Errorf("key %s type %s: %w", desc.Key, desc.Type, ErrUnsupportedWireType)
		r.logReadError(group, channel, desc.Key, err)
		return 0, err
	}

	ch := channel
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerRegistry,
		Category:  log.CategoryRead,
		Key:       desc.Key,
		Group:     group.String(),
		Channel:   &ch,
		Read: &log.ReadEvent{
			Value:   value,
			Scale:   scale,
			Elapsed: time.Since(start),
		},
	})
	return value, nil
}

func (r *Registry) logReadError(group Group, channel int, key smc.Key, err error) {
	ch := channel
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerRegistry,
		Category:  log.CategoryError,
		Key:       key,
		Group:     group.String(),
		Channel:   &ch,
		Error: &log.ErrorEventData{
			Layer:   log.LayerRegistry,
			Message: err.Error(),
			Context: "read",
		},
	})
}
