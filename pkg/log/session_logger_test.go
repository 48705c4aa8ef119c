package log

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionLoggerStampsID(t *testing.T) {
	rec := &recordLogger{}
	session := NewSessionLogger(rec)

	if err := uuid.Validate(session.SessionID()); err != nil {
		t.Fatalf("session ID %q is not a UUID: %v", session.SessionID(), err)
	}

	session.Log(Event{Timestamp: time.Now(), Layer: LayerRegistry, Category: CategoryBuild})
	session.Log(Event{Timestamp: time.Now(), Layer: LayerRegistry, Category: CategoryRead})

	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for i, e := range events {
		if e.SessionID != session.SessionID() {
			t.Errorf("event %d SessionID = %q, want %q", i, e.SessionID, session.SessionID())
		}
	}
}

func TestSessionLoggerPreservesExistingID(t *testing.T) {
	rec := &recordLogger{}
	session := NewSessionLogger(rec)

	session.Log(Event{
		Timestamp: time.Now(),
		SessionID: "preset",
		Layer:     LayerRemote,
		Category:  CategoryState,
	})

	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].SessionID != "preset" {
		t.Errorf("SessionID = %q, want %q", events[0].SessionID, "preset")
	}
}

func TestSessionLoggersAreDistinct(t *testing.T) {
	a := NewSessionLogger(NoopLogger{})
	b := NewSessionLogger(NoopLogger{})
	if a.SessionID() == b.SessionID() {
		t.Error("two session loggers share an ID")
	}
}
