// Package commands implements the smc-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer    *log.Layer
	Category *log.Category
	Key      smc.Key
}

// matches reports whether the event passes the view filter.
func (f ViewFilter) matches(event log.Event) bool {
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Key != 0 && event.Key != f.Key {
		return false
	}
	return true
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Resolve != nil:
		typeLabel = "Resolve"
	case event.Read != nil:
		typeLabel = "Read"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = event.Category.String()
	}

	if event.ConnectionID != "" {
		fmt.Fprintf(w, "%s [conn:%s] %s %s\n", ts, shortenID(event.ConnectionID), event.Layer, typeLabel)
	} else {
		fmt.Fprintf(w, "%s %s %s\n", ts, event.Layer, typeLabel)
	}

	if event.Key != 0 {
		fmt.Fprintf(w, "  Key: %s\n", event.Key)
	}
	if event.Group != "" {
		if event.Channel != nil {
			fmt.Fprintf(w, "  Channel: %s[%d]\n", event.Group, *event.Channel)
		} else {
			fmt.Fprintf(w, "  Group: %s\n", event.Group)
		}
	}
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Remote: %s\n", event.RemoteAddr)
	}

	// Type-specific details
	switch {
	case event.Resolve != nil:
		formatResolveDetails(w, event.Resolve)
	case event.Read != nil:
		formatReadDetails(w, event.Read)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of a UUID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatResolveDetails writes key resolution details.
func formatResolveDetails(w io.Writer, r *log.ResolveEvent) {
	if !r.OK {
		fmt.Fprintln(w, "  Resolution failed")
		return
	}
	fmt.Fprintf(w, "  Type: %s (%d bytes)\n", r.Type, r.Size)
}

// formatReadDetails writes value read details.
func formatReadDetails(w io.Writer, r *log.ReadEvent) {
	fmt.Fprintf(w, "  Value: %d (scale %d)\n", r.Value, r.Scale)
	if len(r.Raw) > 0 {
		fmt.Fprintf(w, "  Raw: %s\n", hex.EncodeToString(r.Raw))
	}
	if r.Elapsed > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(r.Elapsed))
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatFrameDetails writes frame-specific details.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Direction: %s\n", frame.Direction)
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string from a command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "registry":
		return log.LayerRegistry, nil
	case "transport":
		return log.LayerTransport, nil
	case "remote":
		return log.LayerRemote, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be registry, transport, or remote)", s)
	}
}

// ParseCategoryFlag parses a category string from a command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "build":
		return log.CategoryBuild, nil
	case "resolve":
		return log.CategoryResolve, nil
	case "read":
		return log.CategoryRead, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	case "frame":
		return log.CategoryFrame, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be build, resolve, read, state, error, or frame)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !filter.matches(event) {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
