package remote

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadmed/macsmc-go/pkg/log"
)

// captureLogger records capture events for assertions.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *captureLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *captureLogger) all() []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]log.Event(nil), l.events...)
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"small message", []byte("hello")},
		{"medium message", bytes.Repeat([]byte("x"), 1000)},
		{"max size message", bytes.Repeat([]byte("y"), DefaultMaxMessageSize)},
		{"single byte", []byte{0x42}},
		{"binary data", []byte{0x00, 0xFF, 0x7F, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)

			writer := NewFrameWriter(buf)
			require.NoError(t, writer.WriteFrame(tt.payload))
			assert.Equal(t, FrameSize(len(tt.payload)), buf.Len())

			reader := NewFrameReader(buf)
			got, err := reader.ReadFrame()
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestFrameWriteEmpty(t *testing.T) {
	writer := NewFrameWriter(new(bytes.Buffer))

	assert.ErrorIs(t, writer.WriteFrame(nil), ErrMessageEmpty)
	assert.ErrorIs(t, writer.WriteFrame([]byte{}), ErrMessageEmpty)
}

func TestFrameWriteTooLarge(t *testing.T) {
	writer := NewFrameWriterWithMaxSize(new(bytes.Buffer), 100)

	err := writer.WriteFrame(bytes.Repeat([]byte("x"), 101))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestFrameReadTooLarge(t *testing.T) {
	buf := new(bytes.Buffer)
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], 1000)
	buf.Write(lengthBuf[:])
	buf.Write(bytes.Repeat([]byte("x"), 1000))

	reader := NewFrameReaderWithMaxSize(buf, 100)
	_, err := reader.ReadFrame()
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestFrameReadEmptyLength(t *testing.T) {
	buf := new(bytes.Buffer)
	var lengthBuf [LengthPrefixSize]byte
	buf.Write(lengthBuf[:])

	_, err := NewFrameReader(buf).ReadFrame()
	assert.ErrorIs(t, err, ErrMessageEmpty)
}

func TestFrameReadTruncatedLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x01})

	_, err := NewFrameReader(buf).ReadFrame()
	assert.ErrorIs(t, err, ErrFrameTruncated)
}

func TestFrameReadTruncatedPayload(t *testing.T) {
	buf := new(bytes.Buffer)
	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], 100)
	buf.Write(lengthBuf[:])
	buf.Write(bytes.Repeat([]byte("x"), 50))

	_, err := NewFrameReader(buf).ReadFrame()
	assert.ErrorIs(t, err, ErrFrameTruncated)
}

func TestFrameReadEOF(t *testing.T) {
	_, err := NewFrameReader(new(bytes.Buffer)).ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameMultiple(t *testing.T) {
	buf := new(bytes.Buffer)
	writer := NewFrameWriter(buf)

	messages := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for _, msg := range messages {
		require.NoError(t, writer.WriteFrame(msg))
	}

	reader := NewFrameReader(buf)
	for _, want := range messages {
		got, err := reader.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := reader.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameCapture(t *testing.T) {
	buf := new(bytes.Buffer)
	rec := &captureLogger{}

	writer := NewFrameWriter(buf)
	writer.SetLogger(rec, "conn-123")
	payload := []byte("hello")
	require.NoError(t, writer.WriteFrame(payload))

	reader := NewFrameReader(buf)
	reader.SetLogger(rec, "conn-123")
	_, err := reader.ReadFrame()
	require.NoError(t, err)

	events := rec.all()
	require.Len(t, events, 2)

	out := events[0]
	assert.Equal(t, "conn-123", out.ConnectionID)
	assert.Equal(t, log.LayerRemote, out.Layer)
	assert.Equal(t, log.CategoryFrame, out.Category)
	require.NotNil(t, out.Frame)
	assert.Equal(t, log.DirectionOut, out.Frame.Direction)
	assert.Equal(t, FrameSize(len(payload)), out.Frame.Size)
	assert.Equal(t, payload, out.Frame.Data)
	assert.False(t, out.Frame.Truncated)

	in := events[1]
	require.NotNil(t, in.Frame)
	assert.Equal(t, log.DirectionIn, in.Frame.Direction)
	assert.Equal(t, payload, in.Frame.Data)
}

func TestFrameCaptureTruncation(t *testing.T) {
	buf := new(bytes.Buffer)
	rec := &captureLogger{}

	writer := NewFrameWriter(buf)
	writer.SetLogger(rec, "conn-trunc")

	large := bytes.Repeat([]byte("x"), MaxLogFrameDataSize+1000)
	require.NoError(t, writer.WriteFrame(large))

	events := rec.all()
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Frame)
	assert.Equal(t, FrameSize(len(large)), events[0].Frame.Size)
	assert.Len(t, events[0].Frame.Data, MaxLogFrameDataSize)
	assert.True(t, events[0].Frame.Truncated)
}

func TestFrameNoLoggerNoPanic(t *testing.T) {
	buf := new(bytes.Buffer)

	writer := NewFrameWriter(buf)
	require.NoError(t, writer.WriteFrame([]byte("hello")))

	reader := NewFrameReader(buf)
	_, err := reader.ReadFrame()
	require.NoError(t, err)

	buf.Reset()
	writer.SetLogger(nil, "conn-id")
	require.NoError(t, writer.WriteFrame([]byte("world")))
}

func TestFrameSize(t *testing.T) {
	assert.Equal(t, 104, FrameSize(100))
	assert.Equal(t, LengthPrefixSize, FrameSize(0))
}
