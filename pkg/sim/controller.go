package sim

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// Config contains configuration for a simulated controller.
type Config struct {
	// Drift is the maximum relative deviation from a value's seed,
	// e.g. 0.02 keeps reads within 2% of the seeded value. Zero
	// disables drift and reads return the seed exactly.
	Drift float64

	// Seed fixes the random source for reproducible drift. Zero seeds
	// from the clock.
	Seed int64
}

// Controller is an in-memory SMC controller. It implements smc.Transport
// and is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	entries map[smc.Key]*entry
	drift   float64
	rng     *rand.Rand
}

// entry is one simulated key. Numeric entries are encoded from value on
// every read; opaque entries return their raw payload.
type entry struct {
	info    smc.KeyInfo
	numeric bool
	base    float64
	value   float64
	raw     []byte
}

var _ smc.Transport = (*Controller)(nil)

// NewController creates an empty simulated controller.
func NewController(cfg Config) *Controller {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Controller{
		entries: make(map[smc.Key]*entry),
		drift:   cfg.Drift,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Set installs or replaces a numeric key. Only the decodable wire types
// can carry a numeric value; other types must use SetRaw.
func (c *Controller) Set(key smc.Key, typ smc.TypeCode, value float64) error {
	if !typ.Known() {
		return fmt.Errorf("key %s: type %s carries no numeric value", key, typ)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{
		info:    smc.KeyInfo{Type: typ, Size: payloadSize(typ)},
		numeric: true,
		base:    value,
		value:   value,
	}
	return nil
}

// SetRaw installs or replaces a key with a fixed payload of any type.
// Raw keys never drift.
func (c *Controller) SetRaw(key smc.Key, typ smc.TypeCode, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{
		info: smc.KeyInfo{Type: typ, Size: uint8(len(data))},
		raw:  append([]byte(nil), data...),
	}
}

// Remove deletes a key. Removing an absent key is a no-op.
func (c *Controller) Remove(key smc.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of installed keys.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns all installed keys in FourCC order.
func (c *Controller) Keys() []smc.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]smc.Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Value returns the current numeric value of a key. The second result is
// false for absent or opaque keys.
func (c *Controller) Value(key smc.Key) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.numeric {
		return 0, false
	}
	return e.value, true
}

// KeyInfo implements smc.Transport.
func (c *Controller) KeyInfo(key smc.Key) (smc.KeyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return smc.KeyInfo{}, fmt.Errorf("key %s: %w", key, smc.ErrKeyNotFound)
	}
	return e.info, nil
}

// ReadKey implements smc.Transport. Numeric keys drift inside their band
// before encoding when the controller was configured with Drift.
func (c *Controller) ReadKey(key smc.Key) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, smc.ErrKeyNotFound)
	}
	if !e.numeric {
		return append([]byte(nil), e.raw...), nil
	}
	c.step(e)
	return encodeValue(e.info.Type, e.value)
}

// step nudges a numeric value by a random fraction of its drift band and
// clamps it to the band. Caller holds the lock.
func (c *Controller) step(e *entry) {
	if c.drift == 0 || e.base == 0 {
		return
	}
	band := math.Abs(e.base) * c.drift
	e.value += (c.rng.Float64()*2 - 1) * band / 4
	if e.value < e.base-band {
		e.value = e.base - band
	}
	if e.value > e.base+band {
		e.value = e.base + band
	}
}

// payloadSize returns the wire size of a decodable type.
func payloadSize(typ smc.TypeCode) uint8 {
	if typ == smc.TypeFixed48x16 {
		return 8
	}
	return 4
}

// encodeValue produces the little-endian payload for a numeric value.
// The float layout matches the controller's 1-8-23 bit split, so the
// host float32 encoding can be used directly.
func encodeValue(typ smc.TypeCode, v float64) ([]byte, error) {
	switch typ {
	case smc.TypeFloat32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return b, nil
	case smc.TypeFixed48x16:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(int64(math.Round(v*65536))))
		return b, nil
	default:
		return nil, fmt.Errorf("type %s is not encodable", typ)
	}
}
