package inspect

import (
	"fmt"
	"strings"

	"github.com/chadmed/macsmc-go/pkg/sensors"
)

// Formatter formats inspection output for terminals.
type Formatter struct {
	// ShowKeys includes the FourCC key and wire type alongside labels.
	ShowKeys bool

	// IndentWidth is the number of spaces per indent level.
	IndentWidth int
}

// NewFormatter creates a Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowKeys:    true,
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

// FormatValue formats a value read at the group's scale, with its unit.
// Unscaled groups print whole numbers, scaled groups two decimals.
func (f *Formatter) FormatValue(value int64, g sensors.Group) string {
	scale := g.Scale()
	if scale == 1 {
		return fmt.Sprintf("%d %s", value, g.Unit())
	}
	return fmt.Sprintf("%.2f %s", float64(value)/float64(scale), g.Unit())
}

// FormatChannel formats one channel's structure as a single line.
func (f *Formatter) FormatChannel(d ChannelDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] %s", d.Channel, d.Label)
	if f.ShowKeys {
		fmt.Fprintf(&sb, " (%s %s)", d.Key, strings.TrimRight(d.Type.String(), " "))
	}
	if len(d.Fields) > 0 || d.Capabilities != sensors.CapLabel|sensors.CapInput {
		fmt.Fprintf(&sb, " %s", d.Capabilities)
	}
	for _, field := range d.Fields {
		fmt.Fprintf(&sb, " %s=%s", strings.ToLower(field.Field.String()), field.Key)
	}
	return sb.String()
}

// FormatTree formats the full registry structure.
func (f *Formatter) FormatTree(tree *RegistryTree) string {
	if len(tree.Groups) == 0 {
		return "(empty registry)\n"
	}
	var sb strings.Builder
	for _, g := range tree.Groups {
		fmt.Fprintf(&sb, "%s (%s, %d channels)\n", g.Group, g.Unit, len(g.Channels))
		for _, ch := range g.Channels {
			sb.WriteString(f.Indent(1, f.FormatChannel(ch)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatReading formats one snapshot reading as a single line.
func (f *Formatter) FormatReading(r Reading, g sensors.Group) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] %s: ", r.Channel, r.Label)
	if r.Error != "" {
		fmt.Fprintf(&sb, "error: %s", r.Error)
		return sb.String()
	}
	sb.WriteString(f.FormatValue(r.Value, g))

	// Fan extras in a fixed order.
	extras := make([]string, 0, 3)
	for _, field := range []sensors.FanField{sensors.FanMin, sensors.FanMax, sensors.FanTarget} {
		if v, ok := r.Fields[field.String()]; ok {
			extras = append(extras, fmt.Sprintf("%s %d", strings.ToLower(field.String()), v))
		}
	}
	if len(extras) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(extras, ", "))
	}
	return sb.String()
}

// FormatSnapshot formats a full snapshot.
func (f *Formatter) FormatSnapshot(snap *Snapshot) string {
	if len(snap.Groups) == 0 {
		return "(empty registry)\n"
	}
	var sb strings.Builder
	for _, gs := range snap.Groups {
		fmt.Fprintf(&sb, "%s (%s)\n", gs.Group, gs.Unit)
		for _, r := range gs.Readings {
			sb.WriteString(f.Indent(1, f.FormatReading(r, gs.Group)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
