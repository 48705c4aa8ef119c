package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

func TestFormatReadEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 32, 123456000, time.UTC)
	channel := 0
	event := log.Event{
		Timestamp:    ts,
		ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
		Layer:        log.LayerRegistry,
		Category:     log.CategoryRead,
		Key:          smc.MustParseKey("TC0P"),
		Group:        "temperature",
		Channel:      &channel,
		Read: &log.ReadEvent{
			Value:   4550,
			Scale:   100,
			Raw:     []byte{0x42, 0x35, 0xcc, 0xcd},
			Elapsed: 180 * time.Microsecond,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check timestamp format
	if !strings.Contains(output, "2026-03-14T09:15:32.123456Z") {
		t.Errorf("expected formatted timestamp, got: %s", output)
	}

	// Check connection ID (shortened)
	if !strings.Contains(output, "[conn:abc12345]") {
		t.Errorf("expected shortened connection ID, got: %s", output)
	}

	// Check layer
	if !strings.Contains(output, "REGISTRY") {
		t.Errorf("expected REGISTRY layer, got: %s", output)
	}

	// Check type label
	if !strings.Contains(output, "Read") {
		t.Errorf("expected Read label, got: %s", output)
	}

	// Check key and channel
	if !strings.Contains(output, "Key: TC0P") {
		t.Errorf("expected Key: TC0P, got: %s", output)
	}
	if !strings.Contains(output, "Channel: temperature[0]") {
		t.Errorf("expected Channel: temperature[0], got: %s", output)
	}

	// Check value details
	if !strings.Contains(output, "Value: 4550 (scale 100)") {
		t.Errorf("expected value with scale, got: %s", output)
	}
	if !strings.Contains(output, "Raw: 4235cccd") {
		t.Errorf("expected raw bytes, got: %s", output)
	}
	if !strings.Contains(output, "Duration:") {
		t.Errorf("expected Duration, got: %s", output)
	}
}

func TestFormatResolveEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 32, 0, time.UTC)
	event := log.Event{
		Timestamp: ts,
		Layer:     log.LayerTransport,
		Category:  log.CategoryResolve,
		Key:       smc.MustParseKey("VD0R"),
		Resolve: &log.ResolveEvent{
			Type: smc.TypeFloat32,
			Size: 4,
			OK:   true,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Resolve") {
		t.Errorf("expected Resolve label, got: %s", output)
	}
	if !strings.Contains(output, "Type: flt ") {
		t.Errorf("expected type code, got: %s", output)
	}
	if !strings.Contains(output, "(4 bytes)") {
		t.Errorf("expected size, got: %s", output)
	}
}

func TestFormatResolveFailed(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 32, 0, time.UTC)
	event := log.Event{
		Timestamp: ts,
		Layer:     log.LayerTransport,
		Category:  log.CategoryResolve,
		Key:       smc.MustParseKey("Zzzz"),
		Resolve:   &log.ResolveEvent{OK: false},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Resolution failed") {
		t.Errorf("expected resolution failure, got: %s", output)
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 30, 0, time.UTC)
	event := log.Event{
		Timestamp:    ts,
		ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
		Layer:        log.LayerRemote,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: "",
			NewState: "connected",
			Reason:   "handshake complete",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check type label
	if !strings.Contains(output, "State") {
		t.Errorf("expected State label, got: %s", output)
	}

	// Check entity
	if !strings.Contains(output, "CONNECTION") {
		t.Errorf("expected CONNECTION entity, got: %s", output)
	}

	// Check new state
	if !strings.Contains(output, "-> connected") {
		t.Errorf("expected connected state, got: %s", output)
	}

	// Check reason
	if !strings.Contains(output, "Reason: handshake complete") {
		t.Errorf("expected reason, got: %s", output)
	}
}

func TestFormatFrameEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:    ts,
		ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
		Layer:        log.LayerRemote,
		Category:     log.CategoryFrame,
		Frame: &log.FrameEvent{
			Size:      128,
			Data:      []byte{0xa1, 0x01, 0x02, 0x03},
			Truncated: false,
			Direction: log.DirectionOut,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Frame") {
		t.Errorf("expected Frame label, got: %s", output)
	}
	if !strings.Contains(output, "Direction: OUT") {
		t.Errorf("expected OUT direction, got: %s", output)
	}
	if !strings.Contains(output, "Size: 128 bytes") {
		t.Errorf("expected frame size, got: %s", output)
	}
	if !strings.Contains(output, "Data: a1010203") {
		t.Errorf("expected frame data, got: %s", output)
	}
}

func TestFormatErrorEvent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 35, 0, time.UTC)
	code := 4
	event := log.Event{
		Timestamp: ts,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: "value size mismatch",
			Code:    &code,
			Context: "read TC0P",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Error") {
		t.Errorf("expected Error label, got: %s", output)
	}
	if !strings.Contains(output, "Message: value size mismatch") {
		t.Errorf("expected error message, got: %s", output)
	}
	if !strings.Contains(output, "Code: 4") {
		t.Errorf("expected error code, got: %s", output)
	}
	if !strings.Contains(output, "Context: read TC0P") {
		t.Errorf("expected error context, got: %s", output)
	}
}

func TestFormatEventWithoutConnection(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 15, 32, 0, time.UTC)
	event := log.Event{
		Timestamp: ts,
		Layer:     log.LayerRegistry,
		Category:  log.CategoryBuild,
		Group:     "fan",
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if strings.Contains(output, "[conn:") {
		t.Errorf("expected no connection ID, got: %s", output)
	}
	if !strings.Contains(output, "Group: fan") {
		t.Errorf("expected group line, got: %s", output)
	}
}

func TestViewFilterByLayer(t *testing.T) {
	events := []log.Event{
		{Layer: log.LayerRegistry, Category: log.CategoryRead},
		{Layer: log.LayerTransport, Category: log.CategoryRead},
		{Layer: log.LayerRemote, Category: log.CategoryRead},
	}

	transport := log.LayerTransport
	filter := ViewFilter{Layer: &transport}

	var matched []log.Event
	for _, e := range events {
		if filter.matches(e) {
			matched = append(matched, e)
		}
	}
	if len(matched) != 1 {
		t.Fatalf("expected 1 event, got %d", len(matched))
	}
	if matched[0].Layer != log.LayerTransport {
		t.Errorf("expected transport layer, got %v", matched[0].Layer)
	}
}

func TestViewFilterByCategory(t *testing.T) {
	events := []log.Event{
		{Category: log.CategoryBuild},
		{Category: log.CategoryResolve},
		{Category: log.CategoryRead},
		{Category: log.CategoryError},
	}

	read := log.CategoryRead
	filter := ViewFilter{Category: &read}

	count := 0
	for _, e := range events {
		if filter.matches(e) {
			count++
			if e.Category != log.CategoryRead {
				t.Errorf("expected read category, got %v", e.Category)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected 1 event, got %d", count)
	}
}

func TestViewFilterByKey(t *testing.T) {
	events := []log.Event{
		{Key: smc.MustParseKey("TC0P"), Category: log.CategoryRead},
		{Key: smc.MustParseKey("VD0R"), Category: log.CategoryRead},
		{Key: smc.MustParseKey("TC0P"), Category: log.CategoryResolve},
		{Category: log.CategoryState},
	}

	filter := ViewFilter{Key: smc.MustParseKey("TC0P")}

	count := 0
	for _, e := range events {
		if filter.matches(e) {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestParseLayerFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Layer
		wantErr  bool
	}{
		{"registry", log.LayerRegistry, false},
		{"REGISTRY", log.LayerRegistry, false},
		{"transport", log.LayerTransport, false},
		{"remote", log.LayerRemote, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLayerFlag(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLayerFlag(%q) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseLayerFlag(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseLayerFlag(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		}
	}
}

func TestParseCategoryFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Category
		wantErr  bool
	}{
		{"build", log.CategoryBuild, false},
		{"BUILD", log.CategoryBuild, false},
		{"resolve", log.CategoryResolve, false},
		{"read", log.CategoryRead, false},
		{"state", log.CategoryState, false},
		{"error", log.CategoryError, false},
		{"frame", log.CategoryFrame, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCategoryFlag(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCategoryFlag(%q) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseCategoryFlag(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseCategoryFlag(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		}
	}
}

func TestFormatDurationUnits(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{500 * time.Microsecond, "500.000us"},
		{2500 * time.Microsecond, "2.500ms"},
		{1200 * time.Millisecond, "1.200s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.expected)
		}
	}
}

func TestRunViewFiltersOutput(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			Layer:     log.LayerRegistry,
			Category:  log.CategoryRead,
			Key:       smc.MustParseKey("TC0P"),
			Read:      &log.ReadEvent{Value: 4550, Scale: 100},
		},
		{
			Timestamp: ts.Add(time.Second),
			Layer:     log.LayerRegistry,
			Category:  log.CategoryRead,
			Key:       smc.MustParseKey("F0Ac"),
			Read:      &log.ReadEvent{Value: 1200, Scale: 1},
		},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	filter := ViewFilter{Key: smc.MustParseKey("TC0P")}
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Key: TC0P") {
		t.Errorf("expected TC0P event, got: %s", output)
	}
	if strings.Contains(output, "F0Ac") {
		t.Errorf("expected F0Ac to be filtered out, got: %s", output)
	}
}
