package inspect

import (
	"time"

	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Snapshot is one pass over every channel, values read at group scale.
// Per-channel read failures are recorded in place so one dead sensor
// does not sink the whole snapshot.
type Snapshot struct {
	TakenAt time.Time
	Groups  []GroupSnapshot
}

// GroupSnapshot holds one group's readings.
type GroupSnapshot struct {
	Group    sensors.Group
	Unit     string
	Scale    int64
	Readings []Reading
}

// Reading is one channel's value. Error is empty on success. Fan
// channels carry their resolved extra fields in Fields.
type Reading struct {
	Channel int
	Key     smc.Key
	Label   string
	Value   int64
	Error   string
	Fields  map[string]int64
}

// TakeSnapshot reads every channel once.
func (i *Inspector) TakeSnapshot() *Snapshot {
	snap := &Snapshot{TakenAt: time.Now()}
	for _, g := range sensors.Groups() {
		gs, err := i.SnapshotGroup(g)
		if err != nil {
			continue
		}
		snap.Groups = append(snap.Groups, *gs)
	}
	return snap
}

// SnapshotGroup reads every channel of one group, or ErrGroupNotPresent
// when the registry holds none.
func (i *Inspector) SnapshotGroup(g sensors.Group) (*GroupSnapshot, error) {
	info, err := i.InspectGroup(g)
	if err != nil {
		return nil, err
	}

	gs := &GroupSnapshot{
		Group: g,
		Unit:  info.Unit,
		Scale: info.Scale,
	}
	for _, detail := range info.Channels {
		gs.Readings = append(gs.Readings, i.readChannel(g, detail))
	}
	return gs, nil
}

func (i *Inspector) readChannel(g sensors.Group, detail ChannelDetail) Reading {
	reading := Reading{
		Channel: detail.Channel,
		Key:     detail.Key,
		Label:   detail.Label,
	}

	value, err := i.registry.Read(g, detail.Channel)
	if err != nil {
		reading.Error = err.Error()
		return reading
	}
	reading.Value = value

	for _, fd := range detail.Fields {
		v, err := i.registry.ReadFan(detail.Channel, fd.Field)
		if err != nil {
			continue
		}
		if reading.Fields == nil {
			reading.Fields = make(map[string]int64)
		}
		reading.Fields[fd.Field.String()] = v
	}
	return reading
}
