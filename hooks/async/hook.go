// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DecodeRejectEvery: 100, // sample logs: ~every 100th rejected input
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c := jamcodec.New(jamcodec.Options{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/jamcodec"
)

// Hooks forwards events to inner on worker goroutines. When the queue is
// full, events are dropped instead of blocking the codec.
type Hooks struct {
	inner   jamcodec.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ jamcodec.Hooks = (*Hooks)(nil)

func New(inner jamcodec.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) EncodeRejected(k jamcodec.Kind, typ string) {
	h.try(func() { h.inner.EncodeRejected(k, typ) })
}
func (h *Hooks) DecodeRejected(k jamcodec.Kind, off, size int) {
	h.try(func() { h.inner.DecodeRejected(k, off, size) })
}
func (h *Hooks) NestingTooDeep(op string, depth int) {
	h.try(func() { h.inner.NestingTooDeep(op, depth) })
}
