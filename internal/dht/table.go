// Package dht implements the in-memory hash table (C3) and its deprecation
// collector (C4): a flat, append-style array of (hash, ip, timestamp)
// records guarded by a data lock, plus a one-shot startup gate that lets
// the collector wait for the table's first insert before it starts
// sweeping. Grounded on original_source/src/server.c's dht_add/dht_update/
// dht_get/dht_getWithIP/garbage_collector, generalized per the spec's
// redesign notes: the gate is an explicit one-shot latch (not a mutex
// unlocked by a different goroutine than locked it), and the streaming
// lookup iterator is an explicit object rather than process-global state.
package dht

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// growthIncrement matches the reference implementation's fixed 512-slot
// reallocation step.
const growthIncrement = 512

// DefaultMaxHashLength is the conservative cap on stored hash length: the
// reference source allocates strlen(h) bytes (not strlen(h)+1) and never
// enforces a bound on h, which is documented in the spec as a bug to avoid
// rather than reproduce.
const DefaultMaxHashLength = 128

var (
	ErrBadArgument = errors.New("dht: bad argument")
	ErrAllocFailed = errors.New("dht: allocation failed")
)

// Record is a (hash, ip, timestamp) triple. An empty slot is a Record
// whose Hash is "".
type Record struct {
	Hash      string
	IP        string
	Timestamp int64
}

func (r Record) live() bool { return r.Hash != "" }

// Table is the flat, dense, index-addressable slot array described in §3.
type Table struct {
	mu sync.Mutex // data_lock

	slots      []Record
	cursor     int // one past the highest-ever-used slot
	size       int // allocated capacity
	firstEmpty int // hint index; lookups must not rely on it

	maxHashLen int

	gate   *startGate
	freed  bool
	nowFn  func() int64
}

// New creates an empty table. The collector goroutine will block on the
// returned table's gate until the first successful Insert or Update.
func New(maxHashLength int) *Table {
	if maxHashLength <= 0 {
		maxHashLength = DefaultMaxHashLength
	}
	return &Table{
		maxHashLen: maxHashLength,
		gate:       newStartGate(),
		nowFn:      func() int64 { return time.Now().Unix() },
	}
}

// Gate exposes the one-shot startup latch for the collector to wait on.
func (t *Table) Gate() <-chan struct{} {
	return t.gate.C()
}

func (t *Table) now() int64 {
	return t.nowFn()
}

// Insert adds a new (hash, ip) pair unconditionally, reusing an empty slot
// when one is available ahead of cursor, else appending and growing the
// backing array in increments of 512. It does not check for an existing
// pair with the same (hash, ip); callers that care use Update.
func (t *Table) Insert(hash, ip string) error {
	return t.insertWithTimestamp(hash, ip, t.now())
}

func (t *Table) insertWithTimestamp(hash, ip string, ts int64) error {
	if hash == "" || ip == "" {
		return fmt.Errorf("%w: hash and ip must be non-empty", ErrBadArgument)
	}
	if len(hash) > t.maxHashLen {
		return fmt.Errorf("%w: hash exceeds %d bytes", ErrBadArgument, t.maxHashLen)
	}

	t.mu.Lock()

	wasEmpty := t.cursor == 0 && t.size == 0

	found := -1
	for i := t.firstEmpty; i < t.cursor; i++ {
		if !t.slots[i].live() {
			found = i
			break
		}
	}

	var idx int
	if found >= 0 {
		idx = found
		i := idx + 1
		for ; i < t.cursor; i++ {
			if !t.slots[i].live() {
				break
			}
		}
		t.firstEmpty = i
	} else {
		idx = t.cursor
		t.cursor++
		t.firstEmpty = t.cursor
	}

	if t.cursor >= t.size {
		if err := t.grow(); err != nil {
			t.mu.Unlock()
			return err
		}
	}

	t.slots[idx] = Record{Hash: hash, IP: ip, Timestamp: ts}
	t.mu.Unlock()

	if wasEmpty {
		t.gate.Release()
	}
	return nil
}

func (t *Table) grow() error {
	newSize := t.size + growthIncrement
	grown := make([]Record, newSize)
	copy(grown, t.slots)
	t.slots = grown
	t.size = newSize
	return nil
}

// Update looks up the (hash, ip) pair; if absent it inserts a new record,
// if present it refreshes the timestamp. optionalTS, when non-nil,
// overrides now() for both the refresh and the insert path — this is what
// lets gossip ingestion (kktakethis) preserve a record's origin timestamp
// from the very first time a node hears about it, not just on replay.
func (t *Table) Update(hash, ip string, optionalTS *int64) error {
	if hash == "" || ip == "" {
		return fmt.Errorf("%w: hash and ip must be non-empty", ErrBadArgument)
	}

	t.mu.Lock()
	for i := 0; i < t.cursor; i++ {
		s := t.slots[i]
		if s.live() && s.Hash == hash && s.IP == ip {
			if optionalTS != nil {
				t.slots[i].Timestamp = *optionalTS
			} else {
				t.slots[i].Timestamp = t.now()
			}
			t.mu.Unlock()
			return nil
		}
	}
	t.mu.Unlock()

	ts := t.now()
	if optionalTS != nil {
		ts = *optionalTS
	}
	return t.insertWithTimestamp(hash, ip, ts)
}

// LookupWithIP returns the live record exactly matching (hash, ip), if any.
func (t *Table) LookupWithIP(hash, ip string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < t.cursor; i++ {
		s := t.slots[i]
		if s.live() && s.Hash == hash && s.IP == ip {
			return s, true
		}
	}
	return Record{}, false
}

// FreeAll releases every record and the slot array. Used only at shutdown.
func (t *Table) FreeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots = nil
	t.cursor = 0
	t.size = 0
	t.firstEmpty = 0
	t.freed = true
}

func (t *Table) isFreed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freed
}

// All returns a copy of every live record, in slot order. Used by the
// gossip sender to answer plzgibhashes and to drive periodic broadcasts.
func (t *Table) All() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, 0, t.cursor)
	for i := 0; i < t.cursor; i++ {
		if t.slots[i].live() {
			out = append(out, t.slots[i])
		}
	}
	return out
}

// Snapshot reports table bookkeeping for observability (the management
// API's /stats endpoint).
type Snapshot struct {
	Cursor     int
	Size       int
	FirstEmpty int
	LiveCount  int
}

func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	live := 0
	for i := 0; i < t.cursor; i++ {
		if t.slots[i].live() {
			live++
		}
	}
	return Snapshot{Cursor: t.cursor, Size: t.size, FirstEmpty: t.firstEmpty, LiveCount: live}
}
