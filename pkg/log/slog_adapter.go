package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger.
// Useful for development when you want to see SMC activity in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional context
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.Key != 0 {
		attrs = append(attrs, slog.String("key", event.Key.String()))
	}
	if event.Group != "" {
		attrs = append(attrs, slog.String("group", event.Group))
	}
	if event.Channel != nil {
		attrs = append(attrs, slog.Int("channel", *event.Channel))
	}
	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.Resolve != nil:
		attrs = append(attrs, slog.Bool("resolved", event.Resolve.OK))
		if event.Resolve.OK {
			attrs = append(attrs,
				slog.String("wire_type", event.Resolve.Type.String()),
				slog.Uint64("size", uint64(event.Resolve.Size)),
			)
		}
	case event.Read != nil:
		attrs = append(attrs,
			slog.Int64("value", event.Read.Value),
			slog.Int64("scale", event.Read.Scale),
		)
		if event.Read.Elapsed != 0 {
			attrs = append(attrs, slog.Duration("elapsed", event.Read.Elapsed))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("direction", event.Frame.Direction.String()),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "smc", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
