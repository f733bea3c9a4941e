package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"confernet/internal/adapters/identity"
	"confernet/internal/domain"
	"confernet/internal/gate"
	"confernet/internal/session"
)

type Config struct {
	SignupDelay time.Duration
	IdleTTL     time.Duration

	// HintTTL bounds how long stored hints outlive their last write. Zero keeps them forever.
	HintTTL time.Duration
}

// Registry owns the app instances, one per browser.
type Registry struct {
	backend domain.IdentityBackend
	hints   domain.HintStore
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	instances map[string]*Instance
}

func NewRegistry(backend domain.IdentityBackend, hints domain.HintStore, cfg Config, logger *slog.Logger) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		backend:   backend,
		hints:     hints,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		instances: make(map[string]*Instance),
	}
}

// Get returns the instance for clientID, creating and mounting it on first use. A new instance
// resumes its session from token in the background; an empty token starts it signed out. Concurrent
// callers for the same new clientID wait until the first caller has finished setting it up.
func (r *Registry) Get(ctx context.Context, clientID, token string) *Instance {
	now := r.now()
	r.mu.Lock()
	if inst, ok := r.instances[clientID]; ok {
		r.mu.Unlock()
		<-inst.ready
		inst.touch(now)
		return inst
	}
	inst := r.newInstance(clientID)
	r.instances[clientID] = inst
	r.mu.Unlock()

	defer close(inst.ready)
	inst.touch(now)
	if err := inst.Hints.Load(ctx); err != nil {
		r.logger.WarnContext(ctx, "session hints unavailable", "client_id", clientID, "err", err)
	}
	inst.Gate.Mount()
	inst.Identity.Restore(inst.ctx, token)
	r.logger.DebugContext(ctx, "app instance created", "client_id", clientID, "restoring", token != "")
	return inst
}

func (r *Registry) newInstance(clientID string) *Instance {
	ctx, cancel := context.WithCancel(context.Background())
	logger := r.logger.With("client_id", clientID)
	client := identity.NewClient(r.backend, logger)
	observer := session.NewObserver(client)
	nav := &Navigator{}
	hints := newHints(r.hints, clientID)
	g := gate.New(observer, nav, gate.Config{
		SignupDelay:      r.cfg.SignupDelay,
		SignupInProgress: hints.SignupInProgress,
		Logger:           logger,
	})
	return &Instance{
		ID:        clientID,
		Identity:  client,
		Observer:  observer,
		Gate:      g,
		Navigator: nav,
		Hints:     hints,
		ready:     make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// EvictIdle closes instances not seen since IdleTTL and returns how many were evicted.
func (r *Registry) EvictIdle() int {
	cutoff := r.now().Add(-r.cfg.IdleTTL)
	var idle []*Instance
	r.mu.Lock()
	for id, inst := range r.instances {
		if inst.idleSince().Before(cutoff) {
			idle = append(idle, inst)
			delete(r.instances, id)
		}
	}
	r.mu.Unlock()
	for _, inst := range idle {
		inst.close()
	}
	return len(idle)
}

// ExpireHints drops stored hints not written within HintTTL, when the store supports it.
func (r *Registry) ExpireHints(ctx context.Context) (int, error) {
	expirer, ok := r.hints.(domain.HintExpirer)
	if !ok || r.cfg.HintTTL <= 0 {
		return 0, nil
	}
	return expirer.ExpireBefore(ctx, r.now().Add(-r.cfg.HintTTL))
}

// RunJanitor evicts idle instances and expires stale hints periodically until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context) {
	interval := r.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.logger.Info("evicted idle app instances", "count", n)
			}
			if n, err := r.ExpireHints(ctx); err != nil {
				r.logger.WarnContext(ctx, "failed to expire session hints", "err", err)
			} else if n > 0 {
				r.logger.Info("expired session hints", "count", n)
			}
		}
	}
}

// Close unmounts every instance.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.instances
	r.instances = make(map[string]*Instance)
	r.mu.Unlock()
	for _, inst := range all {
		inst.close()
	}
}
