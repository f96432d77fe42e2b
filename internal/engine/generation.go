package engine

import (
	"sync"
	"sync/atomic"
)

// Generations hands out increasing request tokens and accepts a completion
// only when it is newer than the one already shown (last request wins).
type Generations struct {
	issued atomic.Uint64
	shown  atomic.Uint64
}

func (g *Generations) Begin() uint64 {
	return g.issued.Add(1)
}

// Offer marks token as shown and reports true, or reports false for a stale token.
func (g *Generations) Offer(token uint64) bool {
	for {
		cur := g.shown.Load()
		if token <= cur {
			return false
		}
		if g.shown.CompareAndSwap(cur, token) {
			return true
		}
	}
}

func (g *Generations) Current() uint64 {
	return g.shown.Load()
}

// Display holds the last accepted result. A failure never clears it.
type Display[T any] struct {
	gen   Generations
	mu    sync.RWMutex
	value T
	has   bool
}

func (d *Display[T]) Begin() uint64 {
	return d.gen.Begin()
}

// Accept stores v if token is the newest completion so far.
func (d *Display[T]) Accept(token uint64, v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.gen.Offer(token) {
		return false
	}
	d.value = v
	d.has = true
	return true
}

// Fail records a failed completion. It returns true when the failure belongs
// to the newest request and should be surfaced; the shown value is kept.
func (d *Display[T]) Fail(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen.Offer(token)
}

func (d *Display[T]) Current() (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.value, d.has
}
