package dht

import (
	"context"
	"log/slog"
	"time"
)

// RunCollector implements the deprecation collector (C4) protocol: wait
// for the table's first insert, then repeatedly sleep
// hashDeprecationTime, sweep [0, cursor) for records older than
// garbageColTime, and free their slots. It returns when ctx is canceled or
// the table has been freed, giving the caller a joinable goroutine instead
// of the reference implementation's un-joinable signal-handler teardown.
func RunCollector(ctx context.Context, t *Table, hashDeprecationTime, garbageColTime time.Duration, logger *slog.Logger) {
	select {
	case <-t.Gate():
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(hashDeprecationTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if t.isFreed() {
			return
		}
		t.sweep(garbageColTime, logger)
	}
}

func (t *Table) sweep(garbageColTime time.Duration, logger *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	threshold := int64(garbageColTime / time.Second)
	freed := 0
	for i := 0; i < t.cursor; i++ {
		s := t.slots[i]
		if !s.live() {
			continue
		}
		if now-s.Timestamp > threshold {
			t.slots[i] = Record{}
			if i < t.firstEmpty {
				t.firstEmpty = i
			}
			freed++
		}
	}
	if logger != nil && freed > 0 {
		logger.Debug("collector swept expired records", "freed", freed, "cursor", t.cursor)
	}
}
