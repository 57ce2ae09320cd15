// Package dispatch implements the command dispatcher (C5): it tokenizes a
// received datagram's payload and drives the hash table and gossip sender
// on the sender's behalf, grounded on original_source/src/server.c's
// treat_cmd. Stats is adapted from the reference repo's internal/server's
// DNSStats atomic counters, recast for the put/get/gossip opcode set.
package dispatch

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jroosing/dhtnode/internal/dht"
	"github.com/jroosing/dhtnode/internal/gossip"
	"github.com/jroosing/dhtnode/internal/netio"
	"github.com/jroosing/dhtnode/internal/wordsplit"
)

const nullTerminator = "(null)"

// Stats collects dispatcher command counters. All methods are safe for
// concurrent use; the reference server is single-threaded, but the
// counters are exposed to the management API from a different goroutine.
type Stats struct {
	puts      atomic.Uint64
	gets      atomic.Uint64
	gossipIn  atomic.Uint64
	gossipOut atomic.Uint64
	unknown   atomic.Uint64
	dropped   atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats for the /stats endpoint.
type Snapshot struct {
	Puts      uint64 `json:"puts"`
	Gets      uint64 `json:"gets"`
	GossipIn  uint64 `json:"gossip_in"`
	GossipOut uint64 `json:"gossip_out"`
	Unknown   uint64 `json:"unknown"`
	Dropped   uint64 `json:"dropped"`
}

func (s *Stats) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{
		Puts:      s.puts.Load(),
		Gets:      s.gets.Load(),
		GossipIn:  s.gossipIn.Load(),
		GossipOut: s.gossipOut.Load(),
		Unknown:   s.unknown.Load(),
		Dropped:   s.dropped.Load(),
	}
}

// Dispatcher holds the shared hash table and the dispatcher counters; each
// get command drives its own lookup iterator.
type Dispatcher struct {
	table               *dht.Table
	stats               *Stats
	hashDeprecationTime time.Duration
	logger              *slog.Logger
}

// New creates a Dispatcher bound to table, counting into stats.
func New(table *dht.Table, stats *Stats, hashDeprecationTime time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{table: table, stats: stats, hashDeprecationTime: hashDeprecationTime, logger: logger}
}

// Handle tokenizes payload and executes the matching opcode against sender,
// a send-capable handle addressed back to the datagram's source.
func (d *Dispatcher) Handle(payload string, sender *netio.Handle) {
	words := wordsplit.Split(payload, " ")
	if len(words) == 0 {
		d.stats.dropped.Add(1)
		return
	}

	switch words[0] {
	case "put":
		d.handlePut(words)
	case "get":
		d.handleGet(words, sender)
	case "plzgibhashes":
		d.handlePlzGibHashes(sender)
	case "kktakethis":
		d.handleKkTakeThis(words)
	case "i_exist":
		// Reserved for keep-alive; no-op, matching the reference server.
	default:
		d.stats.unknown.Add(1)
		if d.logger != nil {
			d.logger.Warn("unknown command", "cmd", words[0])
		}
	}
}

func (d *Dispatcher) handlePut(words []string) {
	if len(words) < 3 {
		d.stats.dropped.Add(1)
		return
	}
	if err := d.table.Update(words[1], words[2], nil); err != nil {
		d.stats.dropped.Add(1)
		if d.logger != nil {
			d.logger.Debug("put failed", "err", err)
		}
		return
	}
	d.stats.puts.Add(1)
}

func (d *Dispatcher) handleGet(words []string, sender *netio.Handle) {
	if len(words) < 2 {
		d.stats.dropped.Add(1)
		return
	}
	d.stats.gets.Add(1)

	now := time.Now().Unix()
	deprecation := int64(d.hashDeprecationTime / time.Second)

	it := d.table.LookupFirst(words[1])
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		if dht.Deprecated(rec, now, deprecation) {
			continue
		}
		if _, err := sender.SendText(rec.IP); err != nil && d.logger != nil {
			d.logger.Warn("get reply send failed", "ip", rec.IP, "err", err)
		}
	}
	if _, err := sender.SendText(nullTerminator); err != nil && d.logger != nil {
		d.logger.Warn("get terminator send failed", "err", err)
	}
}

func (d *Dispatcher) handlePlzGibHashes(sender *netio.Handle) {
	if err := gossip.ShareHashes(sender, d.table); err != nil {
		if d.logger != nil {
			d.logger.Warn("share hashes failed", "err", err)
		}
		d.stats.dropped.Add(1)
		return
	}
	d.stats.gossipOut.Add(1)
}

func (d *Dispatcher) handleKkTakeThis(words []string) {
	if len(words) < 4 {
		d.stats.dropped.Add(1)
		return
	}
	ts, err := parseUnixSeconds(words[3])
	if err != nil {
		d.stats.dropped.Add(1)
		return
	}
	if err := d.table.Update(words[1], words[2], &ts); err != nil {
		d.stats.dropped.Add(1)
		if d.logger != nil {
			d.logger.Debug("kktakethis failed", "err", err)
		}
		return
	}
	d.stats.gossipIn.Add(1)
}

func parseUnixSeconds(s string) (int64, error) {
	var n int64
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
