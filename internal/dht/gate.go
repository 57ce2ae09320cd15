package dht

import "sync"

// startGate is a one-shot "table is warm" latch. It replaces the
// reference system's "mutex locked at init, unlocked by a different
// goroutine on first insert" pattern — which works in C's pthreads but
// relies on non-owner-release semantics that Go's sync.Mutex forbids —
// with an explicit rendezvous: a channel closed exactly once.
type startGate struct {
	once sync.Once
	ch   chan struct{}
}

func newStartGate() *startGate {
	return &startGate{ch: make(chan struct{})}
}

// C returns a channel that is closed when the gate is released.
func (g *startGate) C() <-chan struct{} {
	return g.ch
}

// Release opens the gate. Safe to call more than once or concurrently;
// only the first call has an effect.
func (g *startGate) Release() {
	g.once.Do(func() { close(g.ch) })
}
