// Package gossip implements outbound hash sharing (C6) and the periodic
// broadcaster that pushes a node's table to its configured peers (C11).
// ShareHash/ShareHashes are grounded on original_source/src/server.c's
// share_hash/share_hashes: a kktakethis datagram preserves a record's
// origin timestamp verbatim so that replaying it elsewhere is idempotent
// (P5). The Broadcaster's Start/Stop/Status shape is adapted from the
// reference repo's internal/cluster.Syncer, repurposed from HTTP
// config-pull into one-way UDP push over the dispatcher's netio handles.
package gossip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/dht"
	"github.com/jroosing/dhtnode/internal/netio"
)

// FormatShareHash renders the kktakethis wire message for a single record,
// preserving its origin timestamp.
func FormatShareHash(r dht.Record) string {
	return fmt.Sprintf("kktakethis %s %s %d", r.Hash, r.IP, r.Timestamp)
}

// ShareHash sends a single record to dst.
func ShareHash(dst *netio.Handle, r dht.Record) error {
	_, err := dst.SendText(FormatShareHash(r))
	return err
}

// ShareHashes sends every live record in the table to dst, answering a
// plzgibhashes request.
func ShareHashes(dst *netio.Handle, t *dht.Table) error {
	for _, r := range t.All() {
		if err := ShareHash(dst, r); err != nil {
			return fmt.Errorf("gossip: share hashes: %w", err)
		}
	}
	return nil
}

// PeerStatus reports the last broadcast outcome for one configured peer.
type PeerStatus struct {
	Addr        string    `json:"addr"`
	LastAttempt time.Time `json:"last_attempt"`
	LastError   string    `json:"last_error,omitempty"`
	SendCount   int64     `json:"send_count"`
	ErrorCount  int64     `json:"error_count"`
}

// Status is a point-in-time snapshot of the broadcaster.
type Status struct {
	Running      bool         `json:"running"`
	IntervalSecs int          `json:"interval_seconds"`
	Peers        []PeerStatus `json:"peers"`
}

// Broadcaster periodically pushes the local table's records to every
// configured peer.
type Broadcaster struct {
	cfg    config.GossipConfig
	table  *dht.Table
	logger *slog.Logger

	mu      sync.RWMutex
	running bool
	peers   map[string]*PeerStatus

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBroadcaster builds a Broadcaster for the given peer list. It does
// nothing if cfg.Peers is empty; Start becomes a no-op in that case.
func NewBroadcaster(cfg config.GossipConfig, table *dht.Table, logger *slog.Logger) *Broadcaster {
	peers := make(map[string]*PeerStatus, len(cfg.Peers))
	for _, p := range cfg.Peers {
		peers[p] = &PeerStatus{Addr: p}
	}
	return &Broadcaster{
		cfg:    cfg,
		table:  table,
		logger: logger,
		peers:  peers,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the periodic broadcast loop. It returns immediately if
// there are no configured peers.
func (b *Broadcaster) Start(ctx context.Context) {
	b.mu.Lock()
	if b.running || len(b.peers) == 0 {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	interval := time.Duration(b.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go b.runLoop(ctx, interval)
}

// Stop halts the broadcast loop and waits for it to exit.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopCh)
	<-b.doneCh
}

// Status reports the broadcaster's current state for the management API.
func (b *Broadcaster) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Status{Running: b.running, IntervalSecs: b.cfg.IntervalSeconds}
	for _, p := range b.peers {
		s.Peers = append(s.Peers, *p)
	}
	return s
}

func (b *Broadcaster) runLoop(ctx context.Context, interval time.Duration) {
	defer close(b.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.broadcastOnce()
		}
	}
}

func (b *Broadcaster) broadcastOnce() {
	records := b.table.All()
	if len(records) == 0 {
		return
	}

	b.mu.RLock()
	targets := make([]string, 0, len(b.peers))
	for addr := range b.peers {
		targets = append(targets, addr)
	}
	b.mu.RUnlock()

	for _, addr := range targets {
		b.broadcastTo(addr, records)
	}
}

func (b *Broadcaster) broadcastTo(addr string, records []dht.Record) {
	host, port, err := splitPeerAddr(addr)
	if err != nil {
		b.recordResult(addr, err)
		return
	}

	conn, err := netio.Open(host, port, netio.ModeSend)
	if err != nil {
		b.recordResult(addr, err)
		return
	}
	defer conn.Close()

	var sendErr error
	for _, r := range records {
		if err := ShareHash(conn, r); err != nil {
			sendErr = err
			break
		}
	}
	b.recordResult(addr, sendErr)
}

func (b *Broadcaster) recordResult(addr string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.peers[addr]
	if !ok {
		return
	}
	p.LastAttempt = time.Now()
	if err != nil {
		p.ErrorCount++
		p.LastError = err.Error()
		if b.logger != nil {
			b.logger.Warn("gossip broadcast failed", "peer", addr, "err", err)
		}
		return
	}
	p.SendCount++
	p.LastError = ""
}

func splitPeerAddr(addr string) (host, port string, err error) {
	host, port, err = netio.SplitHostPort(addr)
	if err != nil {
		return "", "", fmt.Errorf("gossip: invalid peer address %q: %w", addr, err)
	}
	return host, port, nil
}
