package gate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confernet/internal/domain"
	"confernet/internal/session"
)

type fakeObserver struct {
	mu       sync.Mutex
	fn       func(session.Snapshot)
	unsubbed bool
}

func (f *fakeObserver) Subscribe(fn func(session.Snapshot)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.fn = nil
		f.unsubbed = true
		f.mu.Unlock()
	}
}

func (f *fakeObserver) emit(s *domain.Session) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(session.Snapshot{Known: true, Session: s})
	}
}

type recordingNavigator struct {
	mu        sync.Mutex
	redirects []string
}

func (n *recordingNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, path)
}

func (n *recordingNavigator) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeClock fires scheduled functions when Advance passes their deadline.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			t.f()
		}
	}
}

func (c *fakeClock) active() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type harness struct {
	gate  *Gate
	obs   *fakeObserver
	nav   *recordingNavigator
	clock *fakeClock
	flag  bool
}

func newHarness() *harness {
	h := &harness{obs: &fakeObserver{}, nav: &recordingNavigator{}, clock: &fakeClock{}}
	h.gate = New(h.obs, h.nav, Config{
		Clock:            h.clock,
		SignupInProgress: func() bool { return h.flag },
	})
	h.gate.Mount()
	return h
}

var user = &domain.Session{UserID: "u1"}

func TestGate_PlaceholderOnlyWhilePending(t *testing.T) {
	h := newHarness()

	assert.Equal(t, OutcomePlaceholder, h.gate.Navigate("/home/account").Outcome)
	assert.Equal(t, OutcomePlaceholder, h.gate.Navigate("/login").Outcome)

	h.obs.emit(nil)
	for _, p := range []string{"/", "/login", "/signup", "/home"} {
		assert.NotEqual(t, OutcomePlaceholder, h.gate.Navigate(p).Outcome, p)
	}
	h.obs.emit(user)
	for _, p := range []string{"/", "/login", "/home", "/home/people"} {
		assert.NotEqual(t, OutcomePlaceholder, h.gate.Navigate(p).Outcome, p)
	}
}

func TestGate_UnauthenticatedProtectedRedirectsOnce(t *testing.T) {
	h := newHarness()
	assert.Equal(t, OutcomePlaceholder, h.gate.Navigate("/home/account").Outcome)

	h.obs.emit(nil)
	h.obs.emit(nil)
	h.obs.emit(nil)

	assert.Equal(t, []string{"/login"}, h.nav.all())
	assert.Equal(t, "/login", h.gate.Path())
	assert.Equal(t, Decision{Outcome: OutcomeRender}, h.gate.Navigate("/login"))
}

func TestGate_DirectNavigationToProtectedView(t *testing.T) {
	h := newHarness()
	h.obs.emit(nil)

	d := h.gate.Navigate("/home/account")
	assert.Equal(t, Decision{Outcome: OutcomeRedirect, Target: "/login"}, d)
	assert.Empty(t, h.nav.all(), "Navigate returns redirects to the caller")

	h.obs.emit(nil)
	assert.Empty(t, h.nav.all(), "duplicate callback must not redirect again")
}

func TestGate_AuthenticatedOnPublicPathGoesHome(t *testing.T) {
	for _, p := range DefaultPublicPaths {
		t.Run(p, func(t *testing.T) {
			h := newHarness()
			assert.Equal(t, OutcomePlaceholder, h.gate.Navigate(p).Outcome)
			h.obs.emit(user)
			h.obs.emit(user)
			assert.Equal(t, []string{"/home"}, h.nav.all())

			assert.Equal(t, Decision{Outcome: OutcomeRedirect, Target: "/home"}, h.gate.Navigate(p))
			assert.Equal(t, Decision{Outcome: OutcomeRender}, h.gate.Navigate("/home/people"))
		})
	}
}

func TestGate_SignupFlagSuppressesUntilCleared(t *testing.T) {
	h := newHarness()
	h.obs.emit(nil)
	require.Equal(t, OutcomeRender, h.gate.Navigate("/signup").Outcome)

	h.flag = true
	h.obs.emit(user)
	assert.Empty(t, h.nav.all())
	assert.Equal(t, 1, h.clock.active())

	// Re-evaluating the same state and path keeps the original deadline.
	h.clock.Advance(600 * time.Millisecond)
	h.obs.emit(user)
	assert.Equal(t, Decision{Outcome: OutcomeRender, Deferred: true}, h.gate.Navigate("/signup"))
	assert.Equal(t, 1, h.clock.active())

	h.flag = false
	h.gate.Recheck()
	assert.Equal(t, []string{"/home"}, h.nav.all())
	assert.Equal(t, 0, h.clock.active())

	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"/home"}, h.nav.all())
}

func TestGate_SignupFlagSuppressesUntilDelay(t *testing.T) {
	h := newHarness()
	h.flag = true
	assert.Equal(t, OutcomePlaceholder, h.gate.Navigate("/signup").Outcome)
	h.obs.emit(user)
	assert.Empty(t, h.nav.all())

	h.clock.Advance(999 * time.Millisecond)
	assert.Empty(t, h.nav.all())
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"/home"}, h.nav.all())

	// The delay is spent for this session: a stale flag no longer holds the user back.
	assert.Equal(t, Decision{Outcome: OutcomeRedirect, Target: "/home"}, h.gate.Navigate("/login"))
}

func TestGate_DelayedRedirectSkippedWhenPathLeftPublicSet(t *testing.T) {
	h := newHarness()
	h.flag = true
	h.gate.Navigate("/signup")
	h.obs.emit(user)

	assert.Equal(t, OutcomeRender, h.gate.Navigate("/home/people").Outcome)
	assert.Equal(t, 0, h.clock.active())
	h.clock.Advance(2 * time.Second)
	assert.Empty(t, h.nav.all())
}

func TestGate_SignOutCancelsPendingRecheck(t *testing.T) {
	h := newHarness()
	h.flag = true
	h.gate.Navigate("/signup")
	h.obs.emit(user)
	h.obs.emit(nil)

	assert.Equal(t, 0, h.clock.active())
	h.clock.Advance(2 * time.Second)
	assert.Empty(t, h.nav.all())
	assert.Equal(t, Unauthenticated, h.gate.State())
}

func TestGate_LoginScenario(t *testing.T) {
	h := newHarness()
	h.obs.emit(nil)
	require.Equal(t, OutcomeRender, h.gate.Navigate("/login").Outcome)

	// Wrong credentials: the provider publishes nothing, the gate stays put.
	assert.Empty(t, h.nav.all())
	assert.Equal(t, "/login", h.gate.Path())

	h.obs.emit(user)
	assert.Equal(t, []string{"/home"}, h.nav.all())
	assert.Equal(t, "/home", h.gate.Path())
}

func TestGate_UnmountStopsEverything(t *testing.T) {
	h := newHarness()
	h.flag = true
	h.gate.Navigate("/signup")
	h.obs.emit(user)
	require.Equal(t, 1, h.clock.active())

	h.gate.Unmount()
	assert.True(t, h.obs.unsubbed)
	assert.Equal(t, 0, h.clock.active())
	h.clock.Advance(2 * time.Second)
	h.obs.emit(nil)
	assert.Empty(t, h.nav.all())
}
