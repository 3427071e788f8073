// usage:
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    CacheFaultEvery: 10, // sample logs: ~every 10th tier fault
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	svc, _ := checkcache.New(checkcache.Options{
//	    Backend: backend,
//	    Hooks:   hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/checkcache"
)

type Hooks struct {
	inner   checkcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ checkcache.Hooks = (*Hooks)(nil)

func New(inner checkcache.Hooks, workers, qlen int) *Hooks {
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

// Close drains queued events and stops the workers.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped is the number of events discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) CacheFault(op, k string, err error) {
	h.try(func() { h.inner.CacheFault(op, k, err) })
}
func (h *Hooks) DecodeFailed(k string, err error)  { h.try(func() { h.inner.DecodeFailed(k, err) }) }
func (h *Hooks) ExecuteFailed(k string, err error) { h.try(func() { h.inner.ExecuteFailed(k, err) }) }
func (h *Hooks) EndpointUnreachable(ep string, err error) {
	h.try(func() { h.inner.EndpointUnreachable(ep, err) })
}
