package sim

import (
	"fmt"
	"strings"

	"github.com/chadmed/macsmc-go/pkg/devtree"
	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// WellKnownTree builds a description tree covering every key in the
// well-known table, laid out the way a platform tree is. Together with
// SeedWellKnown it yields a fully resolvable registry with no
// configuration at all.
func WellKnownTree() devtree.Node {
	root := devtree.NewNode("/")
	root.SetProperty("platform", "simulated")

	type fanKeys struct {
		tach  smc.Key
		label string
		min   smc.Key
		max   smc.Key
		tgt   smc.Key
	}

	byGroup := make(map[sensors.Group][]smc.KnownKey)
	fans := make(map[byte]*fanKeys)
	var fanOrder []byte

	for _, known := range smc.KnownKeys() {
		g, ok := quantityGroup(known.Quantity)
		if !ok {
			continue
		}
		if g != sensors.GroupFan {
			byGroup[g] = append(byGroup[g], known)
			continue
		}

		// Fan keys follow the F<channel><role> convention; one child
		// per channel, limit keys attached as properties.
		text := known.Key.String()
		ch := text[1]
		fan := fans[ch]
		if fan == nil {
			fan = &fanKeys{}
			fans[ch] = fan
			fanOrder = append(fanOrder, ch)
		}
		switch text[2:] {
		case "Mn":
			fan.min = known.Key
		case "Mx":
			fan.max = known.Key
		case "Tg":
			fan.tgt = known.Key
		default:
			if fan.tach == 0 {
				fan.tach = known.Key
				fan.label = known.Label
			}
		}
	}

	for _, g := range sensors.Groups() {
		if g == sensors.GroupFan {
			continue
		}
		entries := byGroup[g]
		if len(entries) == 0 {
			continue
		}
		node := devtree.NewNode(g.NodeName())
		for _, known := range entries {
			node.AddChild(devtree.NewNode(nodeSlug(known)).
				SetProperty(sensors.PropKeyID, known.Key.String()).
				SetProperty(sensors.PropKeyDesc, known.Label))
		}
		root.AddChild(node)
	}

	if len(fanOrder) > 0 {
		node := devtree.NewNode(sensors.GroupFan.NodeName())
		for _, ch := range fanOrder {
			fan := fans[ch]
			if fan.tach == 0 {
				continue
			}
			child := devtree.NewNode(fmt.Sprintf("fan%c", ch)).
				SetProperty(sensors.PropKeyID, fan.tach.String()).
				SetProperty(sensors.PropKeyDesc, fan.label)
			if fan.min != 0 {
				child.SetProperty(sensors.PropFanMinimum, fan.min.String())
			}
			if fan.max != 0 {
				child.SetProperty(sensors.PropFanMaximum, fan.max.String())
			}
			if fan.tgt != 0 {
				child.SetProperty(sensors.PropFanTarget, fan.tgt.String())
			}
			node.AddChild(child)
		}
		root.AddChild(node)
	}

	return root
}

// nodeSlug derives a tree node name from a known key's label, falling
// back to the key text when the label yields nothing.
func nodeSlug(known smc.KnownKey) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(known.Label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return strings.ToLower(known.Key.String())
	}
	return slug
}
