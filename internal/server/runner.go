// Package server orchestrates dhtnode's lifecycle (C7): it wires the
// datagram endpoint, the hash table and its deprecation collector, the
// command dispatcher, the optional gossip broadcaster, and the optional
// management API, then runs the single-threaded receive/dispatch loop
// described in spec §4.7. Grounded on original_source/src/server.c's
// main(), adapted to context-based cancellation instead of signal
// handlers that call exit().
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jroosing/dhtnode/internal/api"
	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/dht"
	"github.com/jroosing/dhtnode/internal/dispatch"
	"github.com/jroosing/dhtnode/internal/gossip"
	"github.com/jroosing/dhtnode/internal/netio"
	"github.com/jroosing/dhtnode/internal/ratelimit"
)

// Runner orchestrates the DHT node's startup, configuration, and shutdown.
type Runner struct {
	logger *slog.Logger
	nodeID string
}

// NewRunner creates a new server runner with the given logger and node ID.
// nodeID is a caller-generated identifier (e.g. a short uuid), surfaced
// through the management API's /stats endpoint and startup log line so a
// gossip peer list can be matched back to a running process.
func NewRunner(logger *slog.Logger, nodeID string) *Runner {
	return &Runner{logger: logger, nodeID: nodeID}
}

// Run starts the DHT node with the given configuration. It blocks until
// the receive loop exits: either a signal requests shutdown, or the
// listening endpoint reports a fatal receive error.
//
// Startup order (spec §4.7): table + collector, listening endpoint,
// optional gossip broadcaster, optional management API, then the receive
// loop. A clean exit from the receive loop joins the collector; a signal
// tears down the table and returns without waiting for it, matching the
// reference implementation's asymmetric shutdown paths.
func (r *Runner) Run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	table := dht.New(cfg.Table.MaxHashLength)
	hashDeprecation := time.Duration(cfg.Table.HashDeprecationTimeSeconds) * time.Second
	garbageColTime := time.Duration(cfg.Table.GarbageColTimeSeconds) * time.Second

	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	collectorDone := make(chan struct{})
	go func() {
		dht.RunCollector(collectorCtx, table, hashDeprecation, garbageColTime, r.logger)
		close(collectorDone)
	}()

	listener, err := netio.Open(cfg.Server.Host, strconv.Itoa(cfg.Server.Port), netio.ModeListen)
	if err != nil {
		collectorCancel()
		return fmt.Errorf("server: open listening endpoint: %w", err)
	}

	// Receive() blocks on the socket with no notion of ctx; closing the
	// listener from here is what actually wakes the receive loop on a
	// signal-driven shutdown instead of waiting for one more datagram.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	limiter := ratelimit.New(cfg.RateLimit)
	stats := &dispatch.Stats{}
	dispatcher := dispatch.New(table, stats, hashDeprecation, r.logger)

	broadcaster := gossip.NewBroadcaster(cfg.Gossip, table, r.logger)
	broadcaster.Start(ctx)

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.New(cfg, r.logger)
		apiServer.Handler().SetTable(table)
		apiServer.Handler().SetDispatchStats(stats)
		apiServer.Handler().SetBroadcaster(broadcaster)
		apiServer.Handler().SetNodeID(r.nodeID)

		go func() {
			if err := apiServer.ListenAndServe(); err != nil && r.logger != nil {
				r.logger.Warn("management api stopped", "err", err)
			}
		}()
	}

	if r.logger != nil {
		r.logger.Info("dht node listening",
			"node_id", r.nodeID,
			"addr", netip.AddrPortFrom(netip.IPv6Unspecified(), uint16(cfg.Server.Port)),
			"hash_deprecation_time", hashDeprecation,
			"garbage_col_time", garbageColTime,
			"gossip_peers", len(cfg.Gossip.Peers),
		)
	}

	loopErr := r.receiveLoop(ctx, listener, dispatcher, limiter)

	broadcaster.Stop()
	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = apiServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	if loopErr == context.Canceled || loopErr == nil {
		// Signal-driven shutdown: tear down the table, do not join the
		// collector, matching the reference server's exit()-from-handler
		// path (spec §4.7, §5).
		listener.Close()
		table.FreeAll()
		collectorCancel()
		return nil
	}

	// Clean exit from the receive loop (a receive failure): close the
	// endpoint, join the collector before returning.
	listener.Close()
	collectorCancel()
	<-collectorDone
	table.FreeAll()
	return loopErr
}

// receiveLoop is the single-threaded receive/dispatch/close cycle (§4.7,
// §5): no per-request parallelism, datagrams processed strictly in
// arrival order.
func (r *Runner) receiveLoop(ctx context.Context, listener *netio.Handle, d *dispatch.Dispatcher, limiter *ratelimit.Limiter) error {
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		n, sender, err := listener.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return context.Canceled
			}
			if r.logger != nil {
				r.logger.Warn("receive failed, exiting loop", "err", err)
			}
			return err
		}

		payload := string(listener.Payload(n))

		if limiter != nil {
			if addr, aerr := netip.ParseAddr(hostOnly(sender.Addr())); aerr == nil && !limiter.Allow(addr) {
				sender.Close()
				continue
			}
		}

		d.Handle(payload, sender)
		sender.Close()
	}
}

func hostOnly(addr string) string {
	host, _, err := netio.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
