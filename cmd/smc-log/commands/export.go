package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chadmed/macsmc-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "session_id", "connection_id", "layer", "category", "key", "group", "channel", "type", "value"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		// Determine event type and detail value
		eventType := "unknown"
		value := ""
		switch {
		case event.Resolve != nil:
			eventType = "resolve"
			if event.Resolve.OK {
				value = event.Resolve.Type.String()
			}
		case event.Read != nil:
			eventType = "read"
			value = strconv.FormatInt(event.Read.Value, 10)
		case event.StateChange != nil:
			eventType = "state"
			value = event.StateChange.NewState
		case event.Frame != nil:
			eventType = "frame"
			value = strconv.Itoa(event.Frame.Size)
		case event.Error != nil:
			eventType = "error"
			value = event.Error.Message
		}

		key := ""
		if event.Key != 0 {
			key = event.Key.String()
		}
		channel := ""
		if event.Channel != nil {
			channel = strconv.Itoa(*event.Channel)
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.ConnectionID,
			event.Layer.String(),
			event.Category.String(),
			key,
			event.Group,
			channel,
			eventType,
			value,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
