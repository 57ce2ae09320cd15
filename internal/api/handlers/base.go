// Package handlers implements the REST API endpoint handlers for dhtnode's
// read-only management API.
//
// @title dhtnode Management API
// @version 1.0
// @description Read-only REST API for observing a dhtnode DHT server: health, dispatch statistics and gossip peer status.
//
// @contact.name dhtnode maintainers
// @contact.url https://github.com/jroosing/dhtnode
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package handlers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/dht"
	"github.com/jroosing/dhtnode/internal/dispatch"
	"github.com/jroosing/dhtnode/internal/gossip"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	startTime time.Time
	nodeID    string

	// Runtime components, set once the server has finished starting up.
	table       *dht.Table
	stats       *dispatch.Stats
	broadcaster *gossip.Broadcaster
	mu          sync.RWMutex
}

// New creates a new Handler with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetNodeID records this process's generated node identifier, surfaced
// through /stats so a gossip peer list can be matched back to log lines.
func (h *Handler) SetNodeID(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodeID = id
}

func (h *Handler) getNodeID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.nodeID
}

// SetTable sets the hash table for runtime stat access.
func (h *Handler) SetTable(t *dht.Table) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.table = t
}

// SetDispatchStats sets the dispatcher's counters for runtime stat access.
func (h *Handler) SetDispatchStats(s *dispatch.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = s
}

// SetBroadcaster sets the gossip broadcaster for runtime status access.
func (h *Handler) SetBroadcaster(b *gossip.Broadcaster) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcaster = b
}

func (h *Handler) getTable() *dht.Table {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.table
}

func (h *Handler) getDispatchStats() *dispatch.Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

func (h *Handler) getBroadcaster() *gossip.Broadcaster {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.broadcaster
}
