package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/dhtnode/internal/api/handlers"
	"github.com/jroosing/dhtnode/internal/api/models"
	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/dht"
	"github.com/jroosing/dhtnode/internal/dispatch"
	"github.com/jroosing/dhtnode/internal/gossip"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)
	api.GET("/peers", h.Peers)
	return r
}

func TestHealth(t *testing.T) {
	h := handlers.New(&config.Config{}, nil)
	r := setupTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStatsWithoutRuntimeComponents(t *testing.T) {
	h := handlers.New(&config.Config{}, nil)
	r := setupTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Uptime)
	assert.Equal(t, 0, resp.Table.LiveCount)
	assert.Equal(t, uint64(0), resp.Dispatch.Puts)
}

func TestStatsReflectsTableAndDispatcher(t *testing.T) {
	h := handlers.New(&config.Config{}, nil)

	table := dht.New(dht.DefaultMaxHashLength)
	require.NoError(t, table.Insert("h", "::1"))
	h.SetTable(table)

	stats := &dispatch.Stats{}
	h.SetDispatchStats(stats)

	r := setupTestRouter(h)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Table.LiveCount)
}

func TestStatsReflectsNodeID(t *testing.T) {
	h := handlers.New(&config.Config{}, nil)
	h.SetNodeID("abcd1234")

	r := setupTestRouter(h)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abcd1234", resp.NodeID)
}

func TestPeersWithoutBroadcaster(t *testing.T) {
	h := handlers.New(&config.Config{}, nil)
	r := setupTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/peers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.GossipStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Running)
	assert.Empty(t, resp.Peers)
}

func TestPeersListsConfiguredBroadcaster(t *testing.T) {
	h := handlers.New(&config.Config{}, nil)
	b := gossip.NewBroadcaster(config.GossipConfig{Peers: []string{"[::1]:9999"}, IntervalSeconds: 5}, dht.New(dht.DefaultMaxHashLength), nil)
	h.SetBroadcaster(b)

	r := setupTestRouter(h)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/peers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.GossipStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Peers, 1)
	assert.Equal(t, "[::1]:9999", resp.Peers[0].Addr)
}
