package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// DefaultPort is the default proxy port.
const DefaultPort = 21325

// ServerConfig configures a proxy server.
type ServerConfig struct {
	// Address to listen on (e.g., ":21325" or "127.0.0.1:21325").
	Address string

	// Transport is the controller access served to clients. Required.
	Transport smc.Transport

	// MaxMessageSize is the maximum frame payload size (default: 64KB).
	MaxMessageSize uint32

	// Logger for protocol events (optional).
	Logger log.Logger

	// OnConnect is called when a new connection is established.
	OnConnect func(conn *ServerConn)

	// OnDisconnect is called when a connection is closed.
	OnDisconnect func(conn *ServerConn)

	// OnError is called when a connection-level error occurs.
	OnError func(conn *ServerConn, err error)
}

// Server exposes an smc.Transport to remote clients over TCP.
type Server struct {
	config   ServerConfig
	listener net.Listener

	// Active connections
	conns   map[*ServerConn]struct{}
	connsMu sync.RWMutex

	// State
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a proxy server around the given transport.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	s := &Server{
		config: config,
		conns:  make(map[*ServerConn]struct{}),
	}
	// Connections can be served before Start; give them a live context.
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Start starts the server and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.running.Store(true)
	s.logServerState("", "LISTENING", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.running.Store(false)
	s.cancel()

	// Close listener to stop the accept loop
	if s.listener != nil {
		s.listener.Close()
	}

	// Close all connections
	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	s.logServerState("LISTENING", "STOPPED", "")

	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && s.config.OnError != nil {
				s.config.OnError(nil, fmt.Errorf("accept error: %w", err))
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection processes a single accepted connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	s.serveConn(conn)
}

// serveConn runs the request loop for one connection. It returns when
// the peer disconnects, the connection fails, or the server stops.
func (s *Server) serveConn(conn net.Conn) {
	connID := uuid.New().String()

	framer := NewFramerWithMaxSize(conn, s.config.MaxMessageSize)
	if s.config.Logger != nil {
		framer.SetLogger(s.config.Logger, connID)
	}

	sconn := &ServerConn{
		conn:       conn,
		framer:     framer,
		server:     s,
		closeCh:    make(chan struct{}),
		remoteAddr: conn.RemoteAddr(),
		connID:     connID,
	}
	defer sconn.Close()

	s.logConnState(sconn, "", "CONNECTED")

	// Register connection
	s.connsMu.Lock()
	s.conns[sconn] = struct{}{}
	s.connsMu.Unlock()

	if s.config.OnConnect != nil {
		s.config.OnConnect(sconn)
	}

	sconn.readLoop()

	// Unregister connection
	s.connsMu.Lock()
	delete(s.conns, sconn)
	s.connsMu.Unlock()

	s.logConnState(sconn, "CONNECTED", "DISCONNECTED")

	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(sconn)
	}
}

// logServerState logs a server lifecycle change.
func (s *Server) logServerState(oldState, newState, reason string) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerRemote,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityServer,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// logConnState logs a connection state change.
func (s *Server) logConnState(c *ServerConn, oldState, newState string) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerRemote,
		Category:     log.CategoryState,
		RemoteAddr:   c.remoteAddr.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
		},
	})
}

// ServerConn represents a client connection to the server.
type ServerConn struct {
	conn       net.Conn
	framer     *Framer
	server     *Server
	closeCh    chan struct{}
	closeOnce  sync.Once
	remoteAddr net.Addr
	connID     string // Unique connection identifier

	// helloDone flips once the version handshake has succeeded.
	// Only touched by readLoop.
	helloDone bool

	writeMu sync.Mutex
}

// RemoteAddr returns the remote address of the client.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// ConnID returns the unique connection identifier.
func (c *ServerConn) ConnID() string {
	return c.connID
}

// Send sends a raw frame to the client.
func (c *ServerConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.framer.WriteFrame(data)
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

// readLoop reads and answers requests until the connection ends.
func (c *ServerConn) readLoop() {
	for {
		select {
		case <-c.closeCh:
			return
		case <-c.server.ctx.Done():
			return
		default:
		}

		data, err := c.framer.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.reportError(err)
			}
			return
		}

		// Decode without validating so a bad request still gets an
		// answer carrying its message ID.
		var req Request
		if err := decMode.Unmarshal(data, &req); err != nil {
			c.sendResponse(&Response{
				Status:  StatusInvalidRequest,
				Message: "malformed request",
			})
			continue
		}

		c.sendResponse(c.handleRequest(&req))
	}
}

// handleRequest executes a request against the served transport and
// builds the response.
func (c *ServerConn) handleRequest(req *Request) *Response {
	resp := &Response{MessageID: req.MessageID}

	if err := req.Validate(); err != nil {
		resp.Status = StatusInvalidRequest
		resp.Message = err.Error()
		return resp
	}
	if req.Op != OpHello && !c.helloDone {
		resp.Status = StatusInvalidRequest
		resp.Message = "hello required before " + req.Op.String()
		return resp
	}

	switch req.Op {
	case OpHello:
		if req.Version != ProtocolVersion {
			resp.Status = StatusVersionMismatch
			resp.Version = ProtocolVersion
			resp.Message = fmt.Sprintf("server speaks version %d", ProtocolVersion)
			return resp
		}
		c.helloDone = true
		resp.Version = ProtocolVersion

	case OpKeyInfo:
		info, err := c.server.config.Transport.KeyInfo(req.Key)
		if err != nil {
			return errorResponse(resp, err)
		}
		resp.Type = info.Type
		resp.Size = info.Size

	case OpReadKey:
		data, err := c.server.config.Transport.ReadKey(req.Key)
		if err != nil {
			return errorResponse(resp, err)
		}
		resp.Data = data
	}

	return resp
}

// errorResponse maps a transport error onto resp.
func errorResponse(resp *Response, err error) *Response {
	if errors.Is(err, smc.ErrKeyNotFound) {
		resp.Status = StatusKeyNotFound
	} else {
		resp.Status = StatusTransportError
	}
	resp.Message = err.Error()
	return resp
}

// sendResponse encodes and sends a response, reporting failures.
func (c *ServerConn) sendResponse(resp *Response) {
	data, err := EncodeResponse(resp)
	if err != nil {
		c.reportError(fmt.Errorf("failed to encode response: %w", err))
		return
	}
	if err := c.Send(data); err != nil {
		c.reportError(fmt.Errorf("failed to send response: %w", err))
	}
}

// reportError surfaces a connection error unless the connection is
// already closing.
func (c *ServerConn) reportError(err error) {
	select {
	case <-c.closeCh:
		return
	default:
	}

	if c.server.config.OnError != nil {
		c.server.config.OnError(c, err)
	}
	if c.server.config.Logger != nil {
		c.server.config.Logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Layer:        log.LayerRemote,
			Category:     log.CategoryError,
			RemoteAddr:   c.remoteAddr.String(),
			Error: &log.ErrorEventData{
				Layer:   log.LayerRemote,
				Message: err.Error(),
				Context: "serve",
			},
		})
	}
}
