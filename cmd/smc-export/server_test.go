package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smclog "github.com/chadmed/macsmc-go/pkg/log"
	"github.com/chadmed/macsmc-go/pkg/sensors"
	"github.com/chadmed/macsmc-go/pkg/sim"
	"github.com/chadmed/macsmc-go/pkg/smc"
)

// newTestServer builds a server over a simulator-backed registry covering
// the well-known key table. The controller is returned so tests can break
// keys after the registry is built.
func newTestServer(t *testing.T) (*Server, *sim.Controller) {
	t.Helper()

	ctrl := sim.NewController(sim.Config{})
	ctrl.SeedWellKnown()

	builder := sensors.NewBuilder(ctrl, smclog.NoopLogger{})
	registry, err := builder.Build(sim.WellKnownTree())
	require.NoError(t, err)

	srv, err := NewServer(ServerConfig{
		Port:     0,
		Platform: "simulated",
		Version:  "1.0.0-test",
		Registry: registry,
	})
	require.NoError(t, err)
	return srv, ctrl
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/v1/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.0.0-test", resp["version"])
	assert.Equal(t, "simulated", resp["platform"])
}

func TestHealthEndpointMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRegistryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/v1/registry")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp registryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "simulated", resp.Platform)
	require.Len(t, resp.Groups, 5)

	temps := resp.Groups[0]
	assert.Equal(t, "temperature", temps.Group)
	assert.Equal(t, "°C", temps.Unit)
	assert.Equal(t, int64(1000), temps.Scale)
	require.Len(t, temps.Channels, 7)
	assert.Equal(t, "TB0T", temps.Channels[0].Key)
	assert.Equal(t, "Battery Hotspot Temp", temps.Channels[0].Label)
	assert.Equal(t, []string{"LABEL", "INPUT"}, temps.Channels[0].Capabilities)

	fans := resp.Groups[4]
	assert.Equal(t, "fan", fans.Group)
	require.Len(t, fans.Channels, 2)
	fan0 := fans.Channels[0]
	assert.Equal(t, "F0Ac", fan0.Key)
	assert.Equal(t, []string{"LABEL", "INPUT", "MIN", "MAX", "TARGET"}, fan0.Capabilities)
	require.Len(t, fan0.Fields, 3)
	assert.Equal(t, "MIN", fan0.Fields[0].Field)
	assert.Equal(t, "F0Mn", fan0.Fields[0].Key)
}

func TestReadEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/v1/read?group=temperature&channel=0")
	require.Equal(t, http.StatusOK, w.Code)

	var resp readResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "temperature", resp.Group)
	assert.Equal(t, 0, resp.Channel)
	assert.Equal(t, "TB0T", resp.Key)
	assert.Equal(t, "Battery Hotspot Temp", resp.Label)
	assert.Equal(t, int64(45500), resp.Value)
	assert.Equal(t, "°C", resp.Unit)
	assert.Equal(t, int64(1000), resp.Scale)
}

func TestReadEndpointFan(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/v1/read?group=fan&channel=0")
	require.Equal(t, http.StatusOK, w.Code)

	var resp readResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "F0Ac", resp.Key)
	assert.Equal(t, int64(1200), resp.Value)
	assert.Equal(t, "RPM", resp.Unit)
}

func TestReadEndpointParamErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"MissingGroup", "/api/v1/read?channel=0"},
		{"UnknownGroup", "/api/v1/read?group=humidity&channel=0"},
		{"MissingChannel", "/api/v1/read?group=temperature"},
		{"BadChannel", "/api/v1/read?group=temperature&channel=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, srv, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestReadEndpointChannelNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/v1/read?group=temperature&channel=99")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadEndpointTransportFailure(t *testing.T) {
	srv, ctrl := newTestServer(t)

	// Break the key after the registry resolved it.
	ctrl.Remove(smc.MustParseKey("TB0T"))

	w := get(t, srv, "/api/v1/read?group=temperature&channel=0")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestSnapshotEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, w.Code)

	var resp snapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.TakenAt.IsZero())
	require.Len(t, resp.Groups, 5)

	temps := resp.Groups[0]
	require.Len(t, temps.Readings, 7)
	assert.Equal(t, int64(45500), temps.Readings[0].Value)
	assert.Empty(t, temps.Readings[0].Error)

	fans := resp.Groups[4]
	require.Len(t, fans.Readings, 2)
	assert.Equal(t, map[string]int64{
		"MIN":    600,
		"MAX":    4000,
		"TARGET": 1800,
	}, fans.Readings[0].Fields)
}

func TestSnapshotRecordsPerChannelErrors(t *testing.T) {
	srv, ctrl := newTestServer(t)

	ctrl.Remove(smc.MustParseKey("TB0T"))

	w := get(t, srv, "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, w.Code)

	var resp snapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	temps := resp.Groups[0]
	assert.NotEmpty(t, temps.Readings[0].Error)
	// The dead channel does not sink the others.
	assert.Empty(t, temps.Readings[1].Error)
	assert.NotZero(t, temps.Readings[1].Value)
}

func TestNewServerRequiresRegistry(t *testing.T) {
	_, err := NewServer(ServerConfig{Port: 0})
	require.Error(t, err)
}
