// Package ratelimit implements pre-dispatch admission control using token
// bucket rate limiting, adapted from the reference server's DNS rate
// limiter: a request must pass a global bucket, a per-/64-prefix bucket,
// and a per-source-IP bucket to be admitted to the command dispatcher.
// Since dhtnode is IPv6-only (§4.1), the IPv4 fast path the teacher carried
// is dropped; prefixing always uses netip's /64 masking.
package ratelimit

import (
	"math"
	"net/netip"
	"sync"
	"time"

	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/helpers"
)

// maxEntryCap bounds the prefix/IP bucket maps so a misconfigured deployment
// can't be talked into unbounded memory growth.
const maxEntryCap = 1_000_000

// Limiter combines global, prefix, and per-IP token buckets. A request
// must pass all three levels to be allowed.
type Limiter struct {
	global *tokenBucket
	prefix *tokenBucket
	ip     *tokenBucket
}

// New builds a Limiter from the rate_limit config section. Any tier whose
// QPS or burst is <= 0 is effectively disabled (always allows).
func New(cfg config.RateLimitConfig) *Limiter {
	cleanup := time.Duration(cfg.CleanupSeconds) * time.Second
	if cleanup <= 0 {
		cleanup = 60 * time.Second
	}
	maxIP := helpers.ClampInt(cfg.MaxIPEntries, 1, maxEntryCap)
	maxPrefix := helpers.ClampInt(cfg.MaxPrefixEntries, 1, maxEntryCap)

	return &Limiter{
		global: newTokenBucket(tokenBucketConfig{rate: cfg.GlobalQPS, burst: cfg.GlobalBurst, cleanupInterval: cleanup, maxEntries: 1}),
		prefix: newTokenBucket(tokenBucketConfig{rate: cfg.PrefixQPS, burst: cfg.PrefixBurst, cleanupInterval: cleanup, maxEntries: maxPrefix}),
		ip:     newTokenBucket(tokenBucketConfig{rate: cfg.IPQPS, burst: cfg.IPBurst, cleanupInterval: cleanup, maxEntries: maxIP}),
	}
}

// Allow reports whether a datagram from addr should be admitted. Checks
// global, then prefix, then IP, failing fast on the first exceeded tier.
func (l *Limiter) Allow(addr netip.Addr) bool {
	if l == nil {
		return true
	}
	if !l.global.allow("*") {
		return false
	}
	if !l.prefix.allow(prefixKey(addr)) {
		return false
	}
	if !l.ip.allow(addr.String()) {
		return false
	}
	return true
}

// prefixKey masks an IPv6 address to its /64 network prefix.
func prefixKey(addr netip.Addr) string {
	pfx, err := addr.Prefix(64)
	if err != nil {
		return addr.String()
	}
	return pfx.Masked().String()
}

type tokenBucketConfig struct {
	rate            float64
	burst           int
	cleanupInterval time.Duration
	maxEntries      int
}

// tokenBucket implements the token bucket algorithm for a single tier: each
// key accrues rate tokens/second up to burst capacity, and each admitted
// request consumes one token.
type tokenBucket struct {
	rate            float64
	burst           float64
	cleanupInterval time.Duration
	maxEntries      int

	mu          sync.Mutex
	lastCleanup time.Time
	lastUpdate  map[string]time.Time
	tokens      map[string]float64
}

func newTokenBucket(cfg tokenBucketConfig) *tokenBucket {
	maxEntries := cfg.maxEntries
	if maxEntries <= 0 {
		maxEntries = 1
	}
	ci := cfg.cleanupInterval
	if ci <= 0 {
		ci = 60 * time.Second
	}
	return &tokenBucket{
		rate:            cfg.rate,
		burst:           float64(cfg.burst),
		cleanupInterval: ci,
		maxEntries:      maxEntries,
		lastCleanup:     time.Now(),
		lastUpdate:      map[string]time.Time{},
		tokens:          map[string]float64{},
	}
}

func (b *tokenBucket) allow(key string) bool {
	if b == nil || b.rate <= 0.0 || b.burst <= 0.0 {
		return true
	}

	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastCleanup) > b.cleanupInterval {
		b.cleanupLocked(now)
	}

	last, exists := b.lastUpdate[key]
	if !exists {
		if len(b.lastUpdate) >= b.maxEntries {
			b.cleanupLocked(now)
			if len(b.lastUpdate) >= b.maxEntries {
				return false
			}
		}
		b.lastUpdate[key] = now
		b.tokens[key] = b.burst - 1.0
		return true
	}

	elapsed := now.Sub(last).Seconds()
	b.lastUpdate[key] = now

	tokens := b.tokens[key]
	if elapsed > 0 {
		tokens = math.Min(b.burst, tokens+(elapsed*b.rate))
	}

	if tokens >= 1.0 {
		b.tokens[key] = tokens - 1.0
		return true
	}
	b.tokens[key] = tokens
	return false
}

func (b *tokenBucket) cleanupLocked(now time.Time) {
	staleBefore := now.Add(-b.cleanupInterval)
	for k, last := range b.lastUpdate {
		if !last.After(staleBefore) {
			delete(b.lastUpdate, k)
			delete(b.tokens, k)
		}
	}
	b.lastCleanup = now
}
