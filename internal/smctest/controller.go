// Package smctest provides a mock SMC controller for testing.
package smctest

import (
	"encoding/binary"
	"sync"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Controller is a mock SMC controller backed by an in-memory key table.
// It records every transport call so tests can assert on access patterns.
type Controller struct {
	// Handlers are callbacks overriding specific operations.
	Handlers ControllerHandlers

	keys  map[smc.Key]entry
	calls []Call
	mu    sync.RWMutex
}

// ControllerHandlers holds callbacks for transport operations.
// A nil callback falls through to the key table.
type ControllerHandlers struct {
	// OnKeyInfo is called for metadata lookups.
	OnKeyInfo func(key smc.Key) (smc.KeyInfo, error)

	// OnReadKey is called for value reads.
	OnReadKey func(key smc.Key) ([]byte, error)
}

// Call records one transport call.
type Call struct {
	// Op is the operation name ("key_info" or "read_key").
	Op string

	// Key is the key the operation targeted.
	Key smc.Key
}

type entry struct {
	info smc.KeyInfo
	data []byte
}

// NewController creates an empty mock controller.
func NewController() *Controller {
	return &Controller{
		keys: make(map[smc.Key]entry),
	}
}

// AddKey installs a key with the given wire type and payload bytes.
// The reported size is the payload length.
func (c *Controller) AddKey(key smc.Key, typ smc.TypeCode, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys[key] = entry{
		info: smc.KeyInfo{Type: typ, Size: uint8(len(data))},
		data: append([]byte(nil), data...),
	}
}

// RemoveKey deletes a key from the table.
func (c *Controller) RemoveKey(key smc.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
}

// KeyInfo implements smc.Transport.
func (c *Controller) KeyInfo(key smc.Key) (smc.KeyInfo, error) {
	c.record("key_info", key)

	if c.Handlers.OnKeyInfo != nil {
		return c.Handlers.OnKeyInfo(key)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.keys[key]
	if !ok {
		return smc.KeyInfo{}, smc.ErrKeyNotFound
	}
	return e.info, nil
}

// ReadKey implements smc.Transport.
func (c *Controller) ReadKey(key smc.Key) ([]byte, error) {
	c.record("read_key", key)

	if c.Handlers.OnReadKey != nil {
		return c.Handlers.OnReadKey(key)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.keys[key]
	if !ok {
		return nil, smc.ErrKeyNotFound
	}
	return append([]byte(nil), e.data...), nil
}

// Calls returns a copy of all recorded calls.
func (c *Controller) Calls() []Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Call(nil), c.calls...)
}

// CallCount returns the number of recorded calls for op ("key_info",
// "read_key", or "" for all).
func (c *Controller) CallCount(op string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, call := range c.calls {
		if op == "" || call.Op == op {
			n++
		}
	}
	return n
}

// KeyCalls returns the number of recorded calls for op targeting key.
func (c *Controller) KeyCalls(op string, key smc.Key) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, call := range c.calls {
		if call.Key == key && (op == "" || call.Op == op) {
			n++
		}
	}
	return n
}

// ClearCalls discards recorded calls, keeping the key table.
func (c *Controller) ClearCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = c.calls[:0]
}

func (c *Controller) record(op string, key smc.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: op, Key: key})
}

// F32Bytes packs a raw float32 bit pattern into its wire payload.
func F32Bytes(raw uint32) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, raw)
	return data
}

// Fixed64Bytes packs a raw 48.16 fixed-point value into its wire payload.
func Fixed64Bytes(raw uint64) []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, raw)
	return data
}

// Compile-time interface satisfaction check.
var _ smc.Transport = (*Controller)(nil)
