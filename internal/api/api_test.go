// Package api_test provides behavior tests for the API package.
package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/dhtnode/internal/api"
	"github.com/jroosing/dhtnode/internal/api/models"
	"github.com/jroosing/dhtnode/internal/config"
)

func createTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "::", Port: 9999},
		API: config.APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
			APIKey:  "",
		},
	}
}

func performRequest(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewCreatesServer(t *testing.T) {
	server := api.New(createTestConfig(), nil)
	assert.NotNil(t, server)
}

func TestNewPanicsOnNilConfig(t *testing.T) {
	assert.Panics(t, func() {
		api.New(nil, nil)
	})
}

func TestServerAddr(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.Host = "0.0.0.0"
	cfg.API.Port = 9090

	server := api.New(cfg, nil)
	assert.Equal(t, "0.0.0.0:9090", server.Addr())
}

func TestServerEngine(t *testing.T) {
	server := api.New(createTestConfig(), nil)
	assert.NotNil(t, server.Engine())
}

func TestServerHandlerAccessor(t *testing.T) {
	server := api.New(createTestConfig(), nil)
	assert.NotNil(t, server.Handler())
}

func TestRoutesHealthEndpoint(t *testing.T) {
	server := api.New(createTestConfig(), nil)

	w := performRequest(server.Engine(), http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRoutesStatsEndpoint(t *testing.T) {
	server := api.New(createTestConfig(), nil)

	w := performRequest(server.Engine(), http.MethodGet, "/api/v1/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Uptime)
}

func TestRoutesPeersEndpoint(t *testing.T) {
	server := api.New(createTestConfig(), nil)

	w := performRequest(server.Engine(), http.MethodGet, "/api/v1/peers", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.GossipStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Running)
}

func TestRoutesWithAPIKeyValidKey(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.APIKey = "secret-key"
	server := api.New(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Api-Key", "secret-key")
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesWithAPIKeyInvalidKey(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.APIKey = "secret-key"
	server := api.New(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Api-Key", "wrong-key")
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesWithAPIKeyMissingKey(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.APIKey = "secret-key"
	server := api.New(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesNoAPIKeyNoAuth(t *testing.T) {
	server := api.New(createTestConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerShutdown(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.Port = 0
	server := api.New(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}

func TestRoutesSwaggerEndpoint(t *testing.T) {
	server := api.New(createTestConfig(), nil)

	w := performRequest(server.Engine(), http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesNotFound(t *testing.T) {
	server := api.New(createTestConfig(), nil)

	w := performRequest(server.Engine(), http.MethodGet, "/api/v1/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
