// Package poller re-fetches data at a fixed interval and delivers only the newest result.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Poller runs fetch every interval. Run skips a tick while the previous fetch is still in flight,
// so a slow backend delays updates instead of starving them. A result is delivered unless a newer
// one already was. Failed ticks are logged and deliver nothing, so the consumer keeps its previous
// data.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	deliver  func(T)
	logger   *slog.Logger

	inFlight atomic.Bool

	mu        sync.Mutex
	started   uint64
	delivered uint64
}

func New[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), deliver func(T), logger *slog.Logger) *Poller[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		deliver:  deliver,
		logger:   logger,
	}
}

// Run ticks once immediately and then every interval until ctx is cancelled. It waits for
// in-flight ticks before returning; results arriving after cancellation are dropped.
func (p *Poller[T]) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	spawn := func() {
		if !p.inFlight.CompareAndSwap(false, true) {
			p.logger.DebugContext(ctx, "poll skipped, previous fetch still running", "poller", p.name)
			return
		}
		seq := p.begin()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.inFlight.Store(false)
			p.tick(ctx, seq)
		}()
	}

	spawn()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			spawn()
		}
	}
}

// begin starts a new tick and returns its sequence number.
func (p *Poller[T]) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started++
	return p.started
}

func (p *Poller[T]) tick(ctx context.Context, seq uint64) {
	v, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.WarnContext(ctx, "poll failed", "poller", p.name, "err", err)
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || seq <= p.delivered {
		return
	}
	p.delivered = seq
	p.deliver(v)
}
