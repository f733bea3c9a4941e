package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"confernet/internal/domain"
)

// timer is the part of *time.Timer the Client uses.
type timer interface {
	Stop() bool
}

// Client holds the identity session of one app instance and publishes its changes.
//
// The state starts undetermined. Listeners are first notified once it is determined, either by
// Restore resolving or by MarkSignedOut, and then on every sign-in, sign-out and expiry.
// Listeners must not call SignIn, SignUp, SignOut or Restore from inside the callback.
type Client struct {
	backend domain.IdentityBackend
	logger  *slog.Logger

	now       func() time.Time
	afterFunc func(time.Duration, func()) timer

	// notifyMu serializes deliveries so listeners observe changes in order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	known     bool
	current   *domain.Session
	gen       uint64
	expiry    timer
	listeners map[uint64]func(*domain.Session)
	nextID    uint64
	closed    bool
}

// NewClient returns a Client with an undetermined session.
func NewClient(backend domain.IdentityBackend, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		listeners: make(map[uint64]func(*domain.Session)),
	}
}

var _ domain.SessionSource = (*Client)(nil)

// OnSessionChanged registers fn. When the state is already determined fn is called right away
// with the current session (nil when signed out).
func (c *Client) OnSessionChanged(fn func(*domain.Session)) func() {
	c.notifyMu.Lock()
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	known, current := c.known, c.current
	c.mu.Unlock()
	if known {
		fn(current)
	}
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Current returns the session and whether the state is determined.
func (c *Client) Current() (*domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.known
}

// Restore resumes a session from a previously issued token in the background.
// An empty token determines the state as signed out immediately.
func (c *Client) Restore(ctx context.Context, token string) {
	if token == "" {
		c.MarkSignedOut()
		return
	}
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go func() {
		s, err := c.backend.Lookup(ctx, token)
		if err != nil {
			c.logger.InfoContext(ctx, "session restore failed", "err", err)
			s = nil
		}
		c.publish(gen, s)
	}()
}

// MarkSignedOut determines the state as signed out without contacting the provider.
func (c *Client) MarkSignedOut() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	c.publish(gen, nil)
}

// SignUp creates an account and makes it the current session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	s, err := c.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.replace(s)
	return s, nil
}

// SignIn authenticates and makes the result the current session. A failed attempt publishes
// nothing.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	s, err := c.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.replace(s)
	return s, nil
}

// SignOut drops the current session.
func (c *Client) SignOut() {
	c.replace(nil)
}

// Close stops the expiry timer and silences all further notifications.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopExpiry()
	c.listeners = make(map[uint64]func(*domain.Session))
}

func (c *Client) replace(s *domain.Session) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	c.publish(gen, s)
}

// publish installs s as the current session unless a newer change has started since gen was taken.
func (c *Client) publish(gen uint64, s *domain.Session) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	if s != nil && s.Expired(c.now()) {
		s = nil
	}
	c.known = true
	c.current = s
	c.stopExpiry()
	if s != nil && !s.ExpiresAt.IsZero() {
		c.expiry = c.afterFunc(s.ExpiresAt.Sub(c.now()), func() { c.expire(gen) })
	}
	listeners := make([]func(*domain.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

func (c *Client) expire(gen uint64) {
	c.logger.Info("session expired")
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	next := c.gen
	c.mu.Unlock()
	c.publish(next, nil)
}

// stopExpiry must be called with mu held.
func (c *Client) stopExpiry() {
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
}
