package sensors

import (
	"fmt"
	"time"

	"github.com/chadmed/macsmc-go/pkg/devtree"
	"github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Builder constructs a Registry from a hardware description tree.
// Construction happens once, single-threaded; the Builder itself is not
// safe for concurrent use.
type Builder struct {
	transport smc.Transport
	logger    log.Logger
	issues    []Issue
}

// NewBuilder creates a Builder that resolves keys through transport.
// A nil logger disables capture.
func NewBuilder(transport smc.Transport, logger log.Logger) *Builder {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Builder{
		transport: transport,
		logger:    logger,
	}
}

// Build walks the group nodes under root and assembles the registry.
// Individual keys or groups that fail to resolve are skipped and recorded
// as Issues; Build fails only when every group comes up empty, with
// ErrRegistryEmpty.
func (b *Builder) Build(root devtree.Node) (*Registry, error) {
	b.issues = nil

	r := &Registry{
		transport: b.transport,
		logger:    b.logger,
	}

	r.temperature = b.buildSensorGroup(root, GroupTemperature)
	r.voltage = b.buildSensorGroup(root, GroupVoltage)
	r.current = b.buildSensorGroup(root, GroupCurrent)
	r.power = b.buildSensorGroup(root, GroupPower)
	r.fans = b.buildFanGroup(root)

	total := len(r.temperature) + len(r.voltage) + len(r.current) + len(r.power) + len(r.fans)
	if total == 0 {
		b.logger.Log(log.Event{
			Timestamp: time.Now(),
			Layer:     log.LayerRegistry,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerRegistry,
				Message: ErrRegistryEmpty.Error(),
				Context: "build",
			},
		})
		return nil, ErrRegistryEmpty
	}

	b.logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerRegistry,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityRegistry,
			NewState: "BUILT",
			Reason:   fmt.Sprintf("%d channels", total),
		},
	})
	return r, nil
}

// Issues returns the problems recovered during the last Build.
func (b *Builder) Issues() []Issue {
	return append([]Issue(nil), b.issues...)
}

// buildSensorGroup assembles one non-fan group. An absent node is an empty
// group; a present node with zero resolvable children records ErrGroupEmpty.
func (b *Builder) buildSensorGroup(root devtree.Node, g Group) []SensorDescriptor {
	node, ok := root.Child(g.NodeName())
	if !ok {
		return nil
	}

	var entries []SensorDescriptor
	for _, child := range node.Children() {
		desc, ok := b.resolveChild(g, child)
		if !ok {
			continue
		}
		entries = append(entries, desc)
	}

	if len(entries) == 0 {
		b.issue(Issue{Group: g, Err: ErrGroupEmpty})
		return nil
	}
	return entries
}

// resolveChild builds a descriptor from one child node: mandatory key-id,
// optional key-desc label.
func (b *Builder) resolveChild(g Group, child devtree.Node) (SensorDescriptor, bool) {
	key, ok := b.childKey(g, child, PropKeyID)
	if !ok {
		return SensorDescriptor{}, false
	}

	desc, ok := b.resolveKey(g, child.Name(), key)
	if !ok {
		return SensorDescriptor{}, false
	}

	if label, ok := child.Property(PropKeyDesc); ok {
		desc.Label = truncateLabel(label)
	}
	return desc, true
}

// buildFanGroup assembles the fan group. Tachometer resolution failure
// skips the whole fan; optional field failures only leave bits unset.
func (b *Builder) buildFanGroup(root devtree.Node) []FanDescriptor {
	node, ok := root.Child(GroupFan.NodeName())
	if !ok {
		return nil
	}

	var fans []FanDescriptor
	for _, child := range node.Children() {
		fan, ok := b.resolveFan(child)
		if !ok {
			continue
		}
		fans = append(fans, fan)
	}

	if len(fans) == 0 {
		b.issue(Issue{Group: GroupFan, Err: ErrGroupEmpty})
		return nil
	}
	return fans
}

// resolveFan builds one fan descriptor from a child node.
func (b *Builder) resolveFan(child devtree.Node) (FanDescriptor, bool) {
	key, ok := b.childKey(GroupFan, child, PropKeyID)
	if !ok {
		return FanDescriptor{}, false
	}

	now, ok := b.resolveKey(GroupFan, child.Name(), key)
	if !ok {
		return FanDescriptor{}, false
	}

	fan := FanDescriptor{
		Now:          now,
		Label:        now.Label,
		Capabilities: CapLabel | CapInput,
	}
	if label, ok := child.Property(PropKeyDesc); ok {
		fan.Label = truncateLabel(label)
	}

	optionals := []struct {
		prop string
		bit  Capability
		slot **SensorDescriptor
	}{
		{PropFanMinimum, CapMin, &fan.Min},
		{PropFanMaximum, CapMax, &fan.Max},
		{PropFanTarget, CapTarget, &fan.Target},
	}
	for _, opt := range optionals {
		key, ok := b.optionalKey(GroupFan, child, opt.prop)
		if !ok {
			continue
		}
		desc, ok := b.resolveKey(GroupFan, child.Name(), key)
		if !ok {
			continue
		}
		d := desc
		*opt.slot = &d
		fan.Capabilities |= opt.bit
	}

	return fan, true
}

// childKey reads and parses a mandatory key property, recording an issue
// on absence or parse failure.
func (b *Builder) childKey(g Group, child devtree.Node, prop string) (smc.Key, bool) {
	text, ok := child.Property(prop)
	if !ok {
		b.issue(Issue{
			Group: g,
			Node:  child.Name(),
			Err:   fmt.Errorf("%w: missing %s property", ErrKeyResolution, prop),
		})
		return 0, false
	}
	key, err := smc.ParseKey(text)
	if err != nil {
		b.issue(Issue{
			Group: g,
			Node:  child.Name(),
			Err:   fmt.Errorf("%w: bad %s: %w", ErrKeyResolution, prop, err),
		})
		return 0, false
	}
	return key, true
}

// optionalKey reads and parses an optional key property. Absence is
// silent; a present but malformed value records an issue.
func (b *Builder) optionalKey(g Group, child devtree.Node, prop string) (smc.Key, bool) {
	text, ok := child.Property(prop)
	if !ok {
		return 0, false
	}
	key, err := smc.ParseKey(text)
	if err != nil {
		b.issue(Issue{
			Group: g,
			Node:  child.Name(),
			Err:   fmt.Errorf("%w: bad %s: %w", ErrKeyResolution, prop, err),
		})
		return 0, false
	}
	return key, true
}

// resolveKey performs the one metadata lookup a descriptor is allowed.
// The returned descriptor's label defaults to the key text.
func (b *Builder) resolveKey(g Group, nodeName string, key smc.Key) (SensorDescriptor, bool) {
	info, err := b.transport.KeyInfo(key)
	if err != nil {
		b.logger.Log(log.Event{
			Timestamp: time.Now(),
			Layer:     log.LayerRegistry,
			Category:  log.CategoryResolve,
			Key:       key,
			Group:     g.String(),
			Resolve:   &log.ResolveEvent{OK: false},
		})
		b.issue(Issue{
			Group: g,
			Node:  nodeName,
			Key:   key,
			Err:   fmt.Errorf("%w: %w", ErrKeyResolution, err),
		})
		return SensorDescriptor{}, false
	}

	b.logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerRegistry,
		Category:  log.CategoryResolve,
		Key:       key,
		Group:     g.String(),
		Resolve: &log.ResolveEvent{
			Type: info.Type,
			Size: info.Size,
			OK:   true,
		},
	})

	return SensorDescriptor{
		Key:   key,
		Type:  info.Type,
		Label: key.String(),
	}, true
}

// issue records a recovered problem and captures it as an error event.
func (b *Builder) issue(i Issue) {
	b.issues = append(b.issues, i)
	b.logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerRegistry,
		Category:  log.CategoryError,
		Key:       i.Key,
		Group:     i.Group.String(),
		Error: &log.ErrorEventData{
			Layer:   log.LayerRegistry,
			Message: i.Err.Error(),
			Context: "build",
		},
	})
}
