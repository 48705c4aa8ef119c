// Package log provides structured diagnostic capture for the SMC stack.
//
// This package defines the Logger interface and Event types for recording
// registry, transport and remote-proxy activity. It is separate from
// operational logging (slog) - capture provides a complete machine-readable
// event trace for debugging and analysis.
//
// # Basic Usage
//
// Callers configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/smc/capture.smclog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
//	// Stamp every event with a per-run session ID
//	logger = log.NewSessionLogger(logger)
//
// # Event Types
//
// Events are captured at three layers:
//   - Registry: build and read activity (ResolveEvent, ReadEvent)
//   - Transport: raw controller access (ReadEvent with payload bytes)
//   - Remote: proxy connections and frames (StateChangeEvent, FrameEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files use CBOR encoding with .smclog extension. The smc-log CLI
// tool provides viewing, filtering, stats and export capabilities.
package log
