package sensors

import (
	"strings"
	"testing"
)

func TestGroupString(t *testing.T) {
	tests := []struct {
		group Group
		want  string
	}{
		{GroupTemperature, "TEMPERATURE"},
		{GroupVoltage, "VOLTAGE"},
		{GroupCurrent, "CURRENT"},
		{GroupPower, "POWER"},
		{GroupFan, "FAN"},
		{Group(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.group.String(); got != tt.want {
			t.Errorf("Group(%d).String() = %q, want %q", tt.group, got, tt.want)
		}
	}
}

func TestParseGroup(t *testing.T) {
	tests := []struct {
		in      string
		want    Group
		wantErr bool
	}{
		{"temperature", GroupTemperature, false},
		{"TEMP", GroupTemperature, false},
		{"Voltage", GroupVoltage, false},
		{"current", GroupCurrent, false},
		{"power", GroupPower, false},
		{"fan", GroupFan, false},
		{"humidity", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseGroup(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseGroup(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGroup(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGroup(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGroupScale(t *testing.T) {
	tests := []struct {
		group Group
		want  int64
	}{
		{GroupTemperature, 1000},
		{GroupVoltage, 1000},
		{GroupCurrent, 1000},
		{GroupPower, 1_000_000},
		{GroupFan, 1},
	}
	for _, tt := range tests {
		if got := tt.group.Scale(); got != tt.want {
			t.Errorf("%s.Scale() = %d, want %d", tt.group, got, tt.want)
		}
	}
}

func TestGroupNodeName(t *testing.T) {
	tests := []struct {
		group Group
		want  string
	}{
		{GroupTemperature, "temperature-keys"},
		{GroupVoltage, "voltage-keys"},
		{GroupCurrent, "current-keys"},
		{GroupPower, "power-keys"},
		{GroupFan, "fan-keys"},
	}
	for _, tt := range tests {
		if got := tt.group.NodeName(); got != tt.want {
			t.Errorf("%s.NodeName() = %q, want %q", tt.group, got, tt.want)
		}
	}
}

func TestCapabilityHas(t *testing.T) {
	caps := CapLabel | CapInput | CapMin

	if !caps.Has(CapLabel) {
		t.Error("LABEL should be set")
	}
	if !caps.Has(CapLabel | CapInput) {
		t.Error("LABEL|INPUT should be set")
	}
	if caps.Has(CapMax) {
		t.Error("MAX should not be set")
	}
	if caps.Has(CapMin | CapTarget) {
		t.Error("MIN|TARGET should not be fully set")
	}
}

func TestCapabilityString(t *testing.T) {
	tests := []struct {
		caps Capability
		want string
	}{
		{0, "NONE"},
		{CapLabel, "LABEL"},
		{CapLabel | CapInput, "LABEL|INPUT"},
		{CapLabel | CapInput | CapMin | CapMax | CapTarget, "LABEL|INPUT|MIN|MAX|TARGET"},
		{CapInput | CapTarget, "INPUT|TARGET"},
	}
	for _, tt := range tests {
		if got := tt.caps.String(); got != tt.want {
			t.Errorf("Capability(%#x).String() = %q, want %q", uint8(tt.caps), got, tt.want)
		}
	}
}

func TestFanFieldString(t *testing.T) {
	tests := []struct {
		field FanField
		want  string
	}{
		{FanInput, "INPUT"},
		{FanMin, "MIN"},
		{FanMax, "MAX"},
		{FanTarget, "TARGET"},
		{FanField(9), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.field.String(); got != tt.want {
			t.Errorf("FanField(%d).String() = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestParseFanField(t *testing.T) {
	tests := []struct {
		in      string
		want    FanField
		wantErr bool
	}{
		{"input", FanInput, false},
		{"now", FanInput, false},
		{"min", FanMin, false},
		{"MINIMUM", FanMin, false},
		{"max", FanMax, false},
		{"target", FanTarget, false},
		{"speed", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFanField(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFanField(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFanField(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFanField(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruncateLabel(t *testing.T) {
	short := "CPU Temp"
	if got := truncateLabel(short); got != short {
		t.Errorf("short label altered: %q", got)
	}

	long := strings.Repeat("x", 40)
	got := truncateLabel(long)
	if len(got) != MaxLabelLen {
		t.Errorf("truncated length = %d, want %d", len(got), MaxLabelLen)
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncation should keep the prefix")
	}

	exact := strings.Repeat("y", MaxLabelLen)
	if got := truncateLabel(exact); got != exact {
		t.Errorf("label of exactly %d bytes altered: %q", MaxLabelLen, got)
	}
}

func TestFanDescriptorClone(t *testing.T) {
	min := SensorDescriptor{Label: "min"}
	fan := FanDescriptor{
		Now:          SensorDescriptor{Label: "now"},
		Min:          &min,
		Label:        "Fan 1",
		Capabilities: CapLabel | CapInput | CapMin,
	}

	c := fan.clone()
	if c.Min == fan.Min {
		t.Error("clone shares the Min pointer")
	}
	c.Min.Label = "changed"
	if min.Label != "min" {
		t.Error("mutating the clone reached the original")
	}
	if c.Max != nil || c.Target != nil {
		t.Error("unset fields should stay nil")
	}
}
