package log

import (
	"time"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Event represents a capture event recorded at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the capture run (UUID, stamped by SessionLogger).
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Key is the SMC key the event concerns (zero when not key-specific).
	Key smc.Key `cbor:"5,keyasint,omitempty"`

	// Group is the sensor group name (empty when not group-specific).
	Group string `cbor:"6,keyasint,omitempty"`

	// Channel is the channel index within Group.
	Channel *int `cbor:"7,keyasint,omitempty"`

	// ConnectionID identifies the remote-proxy connection (UUID).
	ConnectionID string `cbor:"8,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port) for remote events.
	RemoteAddr string `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Resolve     *ResolveEvent     `cbor:"10,keyasint,omitempty"` // Key metadata resolution
	Read        *ReadEvent        `cbor:"11,keyasint,omitempty"` // Value read
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/server/registry state
	Frame       *FrameEvent       `cbor:"13,keyasint,omitempty"` // Remote proxy frames
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerRegistry is the registry build/read layer.
	LayerRegistry Layer = 0
	// LayerTransport is the controller access layer.
	LayerTransport Layer = 1
	// LayerRemote is the remote proxy layer.
	LayerRemote Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerRegistry:
		return "REGISTRY"
	case LayerTransport:
		return "TRANSPORT"
	case LayerRemote:
		return "REMOTE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryBuild indicates registry construction activity.
	CategoryBuild Category = 0
	// CategoryResolve indicates a key metadata resolution.
	CategoryResolve Category = 1
	// CategoryRead indicates a value read.
	CategoryRead Category = 2
	// CategoryState indicates a state change.
	CategoryState Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
	// CategoryFrame indicates a raw frame at the remote proxy layer.
	CategoryFrame Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBuild:
		return "BUILD"
	case CategoryResolve:
		return "RESOLVE"
	case CategoryRead:
		return "READ"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	case CategoryFrame:
		return "FRAME"
	default:
		return "UNKNOWN"
	}
}

// ResolveEvent captures the outcome of a key metadata lookup.
type ResolveEvent struct {
	// Type is the wire type reported by the controller.
	Type smc.TypeCode `cbor:"1,keyasint,omitempty"`

	// Size is the payload size in bytes reported by the controller.
	Size uint8 `cbor:"2,keyasint,omitempty"`

	// OK reports whether resolution succeeded.
	OK bool `cbor:"3,keyasint"`
}

// ReadEvent captures a value read.
type ReadEvent struct {
	// Value is the decoded value at Scale.
	Value int64 `cbor:"1,keyasint"`

	// Scale is the factor the value was decoded at.
	Scale int64 `cbor:"2,keyasint"`

	// Raw is the wire payload (may be truncated for large payloads).
	Raw []byte `cbor:"3,keyasint,omitempty"`

	// Elapsed is the transport round-trip time.
	Elapsed time.Duration `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a remote connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityServer indicates a remote server state change.
	StateEntityServer StateEntity = 1
	// StateEntityRegistry indicates a registry lifecycle change.
	StateEntityRegistry StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityServer:
		return "SERVER"
	case StateEntityRegistry:
		return "REGISTRY"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of frame flow.
type Direction uint8

const (
	// DirectionIn indicates a received frame.
	DirectionIn Direction = 0
	// DirectionOut indicates a sent frame.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the remote proxy layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Direction indicates whether the frame was sent or received.
	Direction Direction `cbor:"4,keyasint"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
