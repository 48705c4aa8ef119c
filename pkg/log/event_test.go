package log

import (
	"testing"
	"time"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

func TestLayerString(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerRegistry, "REGISTRY"},
		{LayerTransport, "TRANSPORT"},
		{LayerRemote, "REMOTE"},
		{Layer(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.layer.String(); got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.layer, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryBuild, "BUILD"},
		{CategoryResolve, "RESOLVE"},
		{CategoryRead, "READ"},
		{CategoryState, "STATE"},
		{CategoryError, "ERROR"},
		{CategoryFrame, "FRAME"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.category.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestStateEntityString(t *testing.T) {
	tests := []struct {
		entity StateEntity
		want   string
	}{
		{StateEntityConnection, "CONNECTION"},
		{StateEntityServer, "SERVER"},
		{StateEntityRegistry, "REGISTRY"},
		{StateEntity(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.entity.String(); got != tt.want {
			t.Errorf("StateEntity(%d).String() = %q, want %q", tt.entity, got, tt.want)
		}
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.dir.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestEventRoundTrip(t *testing.T) {
	channel := 2
	event := Event{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC),
		SessionID: "session-1",
		Layer:     LayerRegistry,
		Category:  CategoryRead,
		Key:       smc.MustParseKey("TC0P"),
		Group:     "TEMPERATURE",
		Channel:   &channel,
		Read: &ReadEvent{
			Value:   45500,
			Scale:   1000,
			Raw:     []byte{0x00, 0x00, 0x36, 0x42},
			Elapsed: 120 * time.Microsecond,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Key != event.Key {
		t.Errorf("Key: got %v, want %v", decoded.Key, event.Key)
	}
	if decoded.Channel == nil || *decoded.Channel != channel {
		t.Errorf("Channel: got %v, want %d", decoded.Channel, channel)
	}
	if decoded.Read == nil {
		t.Fatal("Read payload is nil")
	}
	if decoded.Read.Value != 45500 || decoded.Read.Scale != 1000 {
		t.Errorf("Read payload: got %+v", decoded.Read)
	}
	if decoded.Read.Elapsed != 120*time.Microsecond {
		t.Errorf("Elapsed: got %v", decoded.Read.Elapsed)
	}
}

func TestEventResolvePayload(t *testing.T) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Layer:     LayerRegistry,
		Category:  CategoryResolve,
		Key:       smc.MustParseKey("F0Ac"),
		Resolve: &ResolveEvent{
			Type: smc.TypeFloat32,
			Size: 4,
			OK:   true,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Resolve == nil {
		t.Fatal("Resolve payload is nil")
	}
	if decoded.Resolve.Type != smc.TypeFloat32 {
		t.Errorf("Type: got %v, want %v", decoded.Resolve.Type, smc.TypeFloat32)
	}
	if decoded.Resolve.Size != 4 || !decoded.Resolve.OK {
		t.Errorf("Resolve payload: got %+v", decoded.Resolve)
	}
}

func TestEventOmitsEmptyContext(t *testing.T) {
	// A minimal event must not grow optional fields on round trip.
	event := Event{
		Timestamp: time.Now().UTC(),
		Layer:     LayerTransport,
		Category:  CategoryError,
		Error:     &ErrorEventData{Layer: LayerTransport, Message: "boom"},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Key != 0 {
		t.Errorf("Key: got %v, want zero", decoded.Key)
	}
	if decoded.Channel != nil {
		t.Errorf("Channel: got %v, want nil", decoded.Channel)
	}
	if decoded.Error == nil || decoded.Error.Message != "boom" {
		t.Errorf("Error payload: got %+v", decoded.Error)
	}
	if decoded.Error.Code != nil {
		t.Errorf("Code: got %v, want nil", decoded.Error.Code)
	}
}
