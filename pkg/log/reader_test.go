package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.smclog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test capture: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, reader *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-1", Layer: LayerRegistry, Category: CategoryBuild},
		{Timestamp: time.Now(), SessionID: "s-2", Layer: LayerTransport, Category: CategoryRead},
		{Timestamp: time.Now(), SessionID: "s-3", Layer: LayerRemote, Category: CategoryState},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}

	// Verify order
	if read[0].SessionID != "s-1" {
		t.Errorf("first event SessionID = %q, want %q", read[0].SessionID, "s-1")
	}
	if read[2].SessionID != "s-3" {
		t.Errorf("last event SessionID = %q, want %q", read[2].SessionID, "s-3")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.smclog")

	// Create empty file
	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderFilterBySessionID(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-A", Layer: LayerRegistry, Category: CategoryBuild},
		{Timestamp: time.Now(), SessionID: "s-B", Layer: LayerRegistry, Category: CategoryRead},
		{Timestamp: time.Now(), SessionID: "s-A", Layer: LayerTransport, Category: CategoryRead},
		{Timestamp: time.Now(), SessionID: "s-C", Layer: LayerRemote, Category: CategoryState},
	}

	path := createTestLogFile(t, events)

	reader, err := NewFilteredReader(path, Filter{SessionID: "s-A"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.SessionID != "s-A" {
			t.Errorf("event has SessionID=%q, want %q", e.SessionID, "s-A")
		}
	}
}

func TestReaderFilterByLayer(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-1", Layer: LayerRegistry, Category: CategoryBuild},
		{Timestamp: time.Now(), SessionID: "s-2", Layer: LayerTransport, Category: CategoryRead},
		{Timestamp: time.Now(), SessionID: "s-3", Layer: LayerTransport, Category: CategoryRead},
		{Timestamp: time.Now(), SessionID: "s-4", Layer: LayerRemote, Category: CategoryState},
	}

	path := createTestLogFile(t, events)

	layer := LayerTransport
	reader, err := NewFilteredReader(path, Filter{Layer: &layer})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.Layer != LayerTransport {
			t.Errorf("event has Layer=%v, want %v", e.Layer, LayerTransport)
		}
	}
}

func TestReaderFilterByKey(t *testing.T) {
	tc0p := smc.MustParseKey("TC0P")
	events := []Event{
		{Timestamp: time.Now(), Layer: LayerRegistry, Category: CategoryRead, Key: tc0p},
		{Timestamp: time.Now(), Layer: LayerRegistry, Category: CategoryRead, Key: smc.MustParseKey("TG0P")},
		{Timestamp: time.Now(), Layer: LayerRegistry, Category: CategoryRead, Key: tc0p},
		{Timestamp: time.Now(), Layer: LayerRegistry, Category: CategoryBuild},
	}

	path := createTestLogFile(t, events)

	reader, err := NewFilteredReader(path, Filter{Key: tc0p})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.Key != tc0p {
			t.Errorf("event has Key=%v, want %v", e.Key, tc0p)
		}
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	baseTime := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

	events := []Event{
		{Timestamp: baseTime.Add(-1 * time.Hour), SessionID: "s-1", Layer: LayerRegistry, Category: CategoryRead},
		{Timestamp: baseTime, SessionID: "s-2", Layer: LayerRegistry, Category: CategoryRead},
		{Timestamp: baseTime.Add(30 * time.Minute), SessionID: "s-3", Layer: LayerRegistry, Category: CategoryRead},
		{Timestamp: baseTime.Add(2 * time.Hour), SessionID: "s-4", Layer: LayerRegistry, Category: CategoryRead},
	}

	path := createTestLogFile(t, events)

	start := baseTime.Add(-5 * time.Minute)
	end := baseTime.Add(1 * time.Hour)
	reader, err := NewFilteredReader(path, Filter{
		TimeStart: &start,
		TimeEnd:   &end,
	})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2 (events within time range)", len(read))
	}

	// Verify it's the middle two events
	if read[0].SessionID != "s-2" {
		t.Errorf("first event SessionID = %q, want %q", read[0].SessionID, "s-2")
	}
	if read[1].SessionID != "s-3" {
		t.Errorf("second event SessionID = %q, want %q", read[1].SessionID, "s-3")
	}
}

func TestReaderCombinedFilters(t *testing.T) {
	tc0p := smc.MustParseKey("TC0P")
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-A", Layer: LayerRegistry, Category: CategoryBuild, Key: tc0p},
		{Timestamp: time.Now(), SessionID: "s-A", Layer: LayerRegistry, Category: CategoryRead},
		{Timestamp: time.Now(), SessionID: "s-B", Layer: LayerRegistry, Category: CategoryRead, Key: tc0p},
		{Timestamp: time.Now(), SessionID: "s-A", Layer: LayerRegistry, Category: CategoryRead, Key: tc0p},
	}

	path := createTestLogFile(t, events)

	category := CategoryRead
	reader, err := NewFilteredReader(path, Filter{
		SessionID: "s-A",
		Category:  &category,
		Key:       tc0p,
	})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	// Only the last event matches all criteria
	if len(read) != 1 {
		t.Fatalf("got %d events, want 1", len(read))
	}

	if read[0].SessionID != "s-A" || read[0].Category != CategoryRead || read[0].Key != tc0p {
		t.Error("event doesn't match all filter criteria")
	}
}
