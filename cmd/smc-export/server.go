package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chadmed/macsmc-go/pkg/discovery"
	"github.com/chadmed/macsmc-go/pkg/inspect"
	"github.com/chadmed/macsmc-go/pkg/sensors"
)

// APIVersion is the HTTP API version segment.
const APIVersion = "v1"

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port       int
	Platform   string
	InstanceID string
	Version    string
	Advertise  bool
	Registry   *sensors.Registry
}

// Server is the HTTP server for the export daemon.
type Server struct {
	config     ServerConfig
	mux        *http.ServeMux
	server     *http.Server
	inspector  *inspect.Inspector
	advertiser *discovery.MDNSAdvertiser
}

// NewServer creates a new server with the given configuration.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	s := &Server{
		config:    cfg,
		mux:       http.NewServeMux(),
		inspector: inspect.NewInspector(cfg.Registry),
	}

	if cfg.Advertise {
		advertiser, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create advertiser: %w", err)
		}
		s.advertiser = advertiser
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.mux,
	}

	return s, nil
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/registry", s.handleRegistry)
	s.mux.HandleFunc("/api/v1/read", s.handleRead)
	s.mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
}

// registryResponse is the JSON shape of /api/v1/registry.
type registryResponse struct {
	Platform string          `json:"platform,omitempty"`
	Groups   []groupResponse `json:"groups"`
}

type groupResponse struct {
	Group    string            `json:"group"`
	Unit     string            `json:"unit"`
	Scale    int64             `json:"scale"`
	Channels []channelResponse `json:"channels"`
}

type channelResponse struct {
	Channel      int                `json:"channel"`
	Key          string             `json:"key"`
	Type         string             `json:"type"`
	Label        string             `json:"label"`
	Capabilities []string           `json:"capabilities"`
	Fields       []fanFieldResponse `json:"fields,omitempty"`
}

type fanFieldResponse struct {
	Field string `json:"field"`
	Key   string `json:"key"`
	Type  string `json:"type"`
}

// readResponse is the JSON shape of /api/v1/read.
type readResponse struct {
	Group   string `json:"group"`
	Channel int    `json:"channel"`
	Key     string `json:"key"`
	Label   string `json:"label"`
	Value   int64  `json:"value"`
	Unit    string `json:"unit"`
	Scale   int64  `json:"scale"`
}

// snapshotResponse is the JSON shape of /api/v1/snapshot.
type snapshotResponse struct {
	TakenAt time.Time               `json:"taken_at"`
	Groups  []groupSnapshotResponse `json:"groups"`
}

type groupSnapshotResponse struct {
	Group    string            `json:"group"`
	Unit     string            `json:"unit"`
	Scale    int64             `json:"scale"`
	Readings []readingResponse `json:"readings"`
}

type readingResponse struct {
	Channel int              `json:"channel"`
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Value   int64            `json:"value"`
	Error   string           `json:"error,omitempty"`
	Fields  map[string]int64 `json:"fields,omitempty"`
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version := s.config.Version
	if version == "" {
		version = "dev"
	}

	resp := map[string]string{
		"status":  "ok",
		"version": version,
	}
	if s.config.Platform != "" {
		resp["platform"] = s.config.Platform
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRegistry returns the discovered registry structure.
func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tree := s.inspector.InspectRegistry()
	resp := registryResponse{
		Platform: s.config.Platform,
		Groups:   make([]groupResponse, 0, len(tree.Groups)),
	}
	for _, g := range tree.Groups {
		group := groupResponse{
			Group:    g.Group.String(),
			Unit:     g.Unit,
			Scale:    g.Scale,
			Channels: make([]channelResponse, 0, len(g.Channels)),
		}
		for _, ch := range g.Channels {
			group.Channels = append(group.Channels, channelJSON(ch))
		}
		resp.Groups = append(resp.Groups, group)
	}

	writeJSON(w, http.StatusOK, resp)
}

// channelJSON converts a ChannelDetail for JSON output.
func channelJSON(ch inspect.ChannelDetail) channelResponse {
	resp := channelResponse{
		Channel: ch.Channel,
		Key:     ch.Key.String(),
		Type:    ch.Type.String(),
		Label:   ch.Label,
	}
	for _, c := range []sensors.Capability{
		sensors.CapLabel,
		sensors.CapInput,
		sensors.CapMin,
		sensors.CapMax,
		sensors.CapTarget,
	} {
		if ch.Capabilities.Has(c) {
			resp.Capabilities = append(resp.Capabilities, c.String())
		}
	}
	for _, field := range ch.Fields {
		resp.Fields = append(resp.Fields, fanFieldResponse{
			Field: field.Field.String(),
			Key:   field.Key.String(),
			Type:  field.Type.String(),
		})
	}
	return resp
}

// handleRead reads one channel. Parameter errors map to 400, unknown
// channels to 404, transport failures to 502.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groupParam := r.URL.Query().Get("group")
	if groupParam == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group parameter required"})
		return
	}
	group, err := sensors.ParseGroup(groupParam)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	channelParam := r.URL.Query().Get("channel")
	if channelParam == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel parameter required"})
		return
	}
	channel, err := strconv.Atoi(channelParam)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad channel %q", channelParam)})
		return
	}

	detail, err := s.inspector.InspectChannel(group, channel)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	value, err := s.config.Registry.Read(group, channel)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, readResponse{
		Group:   group.String(),
		Channel: channel,
		Key:     detail.Key.String(),
		Label:   detail.Label,
		Value:   value,
		Unit:    group.Unit(),
		Scale:   group.Scale(),
	})
}

// handleSnapshot reads every channel once.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.inspector.TakeSnapshot()
	resp := snapshotResponse{
		TakenAt: snap.TakenAt,
		Groups:  make([]groupSnapshotResponse, 0, len(snap.Groups)),
	}
	for _, g := range snap.Groups {
		group := groupSnapshotResponse{
			Group:    g.Group.String(),
			Unit:     g.Unit,
			Scale:    g.Scale,
			Readings: make([]readingResponse, 0, len(g.Readings)),
		}
		for _, reading := range g.Readings {
			group.Readings = append(group.Readings, readingResponse{
				Channel: reading.Channel,
				Key:     reading.Key.String(),
				Label:   reading.Label,
				Value:   reading.Value,
				Error:   reading.Error,
				Fields:  reading.Fields,
			})
		}
		resp.Groups = append(resp.Groups, group)
	}

	writeJSON(w, http.StatusOK, resp)
}

// exportInfo assembles the mDNS advertisement for this instance.
func (s *Server) exportInfo() *discovery.ExportInfo {
	reg := s.config.Registry
	sensorCount := 0
	for _, g := range sensors.Groups() {
		if g == sensors.GroupFan {
			continue
		}
		sensorCount += reg.Len(g)
	}

	return &discovery.ExportInfo{
		InstanceID: s.config.InstanceID,
		Platform:   s.config.Platform,
		APIVersion: APIVersion,
		Sensors:    uint16(sensorCount),
		Fans:       uint8(reg.Len(sensors.GroupFan)),
		Port:       uint16(s.config.Port),
	}
}

// ListenAndServe advertises the service when configured, then starts the
// HTTP server. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	if s.advertiser != nil {
		if err := s.advertiser.AdvertiseExport(context.Background(), s.exportInfo()); err != nil {
			return fmt.Errorf("failed to advertise: %w", err)
		}
	}
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown withdraws the mDNS advertisement and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.advertiser != nil {
		s.advertiser.StopAll()
	}
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
