package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/chadmed/macsmc-go/pkg/smc"
)

// ErrConnectionClosed indicates an operation on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// ClientConfig configures a proxy client.
type ClientConfig struct {
	// MaxMessageSize is the maximum frame payload size (default: 64KB).
	MaxMessageSize uint32

	// ConnectTimeout bounds Dial including the hello exchange
	// (default: 10s).
	ConnectTimeout time.Duration

	// RequestTimeout bounds each request/response exchange.
	// Zero means no deadline.
	RequestTimeout time.Duration
}

// Client speaks the proxy protocol over a single connection and exposes
// the remote controller as an smc.Transport. Exchanges are serialized,
// so concurrent registry reads queue up rather than interleave.
type Client struct {
	conn    net.Conn
	framer  *Framer
	timeout time.Duration

	mu     sync.Mutex
	nextID uint32

	closeCh   chan struct{}
	closeOnce sync.Once
}

var _ smc.Transport = (*Client)(nil)

// Dial connects to a proxy server and performs the hello exchange.
func Dial(ctx context.Context, address string, config ClientConfig) (*Client, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	client, err := NewClient(conn, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

// NewClient wraps an established connection and performs the hello
// exchange. The caller keeps ownership of conn until NewClient
// succeeds; afterwards Close releases it.
func NewClient(conn net.Conn, config ClientConfig) (*Client, error) {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	c := &Client{
		conn:    conn,
		framer:  NewFramerWithMaxSize(conn, config.MaxMessageSize),
		timeout: config.RequestTimeout,
		closeCh: make(chan struct{}),
	}

	if err := c.hello(); err != nil {
		return nil, fmt.Errorf("hello failed: %w", err)
	}
	return c, nil
}

// hello performs the version handshake.
func (c *Client) hello() error {
	resp, err := c.roundTrip(&Request{Op: OpHello, Version: ProtocolVersion})
	if err != nil {
		return err
	}
	switch resp.Status {
	case StatusOK:
		return nil
	case StatusVersionMismatch:
		return fmt.Errorf("%w: server speaks version %d", ErrVersionMismatch, resp.Version)
	default:
		return remoteError(resp)
	}
}

// KeyInfo implements smc.Transport against the remote controller.
func (c *Client) KeyInfo(key smc.Key) (smc.KeyInfo, error) {
	resp, err := c.roundTrip(&Request{Op: OpKeyInfo, Key: key})
	if err != nil {
		return smc.KeyInfo{}, err
	}
	if err := keyError(key, resp); err != nil {
		return smc.KeyInfo{}, err
	}
	return smc.KeyInfo{Type: resp.Type, Size: resp.Size}, nil
}

// ReadKey implements smc.Transport against the remote controller.
func (c *Client) ReadKey(key smc.Key) ([]byte, error) {
	resp, err := c.roundTrip(&Request{Op: OpReadKey, Key: key})
	if err != nil {
		return nil, err
	}
	if err := keyError(key, resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// roundTrip sends one request and waits for its response.
func (c *Client) roundTrip(req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	c.nextID++
	if c.nextID == 0 {
		// Skip the reserved id on wraparound
		c.nextID = 1
	}
	req.MessageID = c.nextID

	data, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.timeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	if err := c.framer.WriteFrame(data); err != nil {
		return nil, err
	}

	raw, err := c.framer.ReadFrame()
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.MessageID != req.MessageID {
		return nil, fmt.Errorf("response for message %d, want %d", resp.MessageID, req.MessageID)
	}
	return resp, nil
}

// LocalAddr returns the local network address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

// keyError maps an error response for a key operation onto the error
// contract of smc.Transport.
func keyError(key smc.Key, resp *Response) error {
	switch resp.Status {
	case StatusOK:
		return nil
	case StatusKeyNotFound:
		return fmt.Errorf("key %s: %w", key, smc.ErrKeyNotFound)
	default:
		return remoteError(resp)
	}
}

// remoteError converts an error response into a client-side error.
func remoteError(resp *Response) error {
	if resp.Message != "" {
		return fmt.Errorf("remote: %s", resp.Message)
	}
	return fmt.Errorf("remote: %s", resp.Status)
}
