package log

import "github.com/google/uuid"

// SessionLogger wraps another Logger and stamps every event with a
// per-run session ID, so captures from multiple runs can be told apart
// after files are appended or merged.
type SessionLogger struct {
	inner Logger
	id    string
}

// NewSessionLogger creates a SessionLogger with a fresh session UUID.
func NewSessionLogger(inner Logger) *SessionLogger {
	return &SessionLogger{
		inner: inner,
		id:    uuid.NewString(),
	}
}

// SessionID returns the session UUID stamped on events.
func (s *SessionLogger) SessionID() string {
	return s.id
}

// Log stamps the session ID and forwards the event.
// An event that already carries a session ID is forwarded unchanged.
func (s *SessionLogger) Log(event Event) {
	if event.SessionID == "" {
		event.SessionID = s.id
	}
	s.inner.Log(event)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SessionLogger)(nil)
