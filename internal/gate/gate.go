// Package gate decides, for every navigation of an app instance, whether the requested view may
// render, must wait for the session to be determined, or must redirect.
package gate

import (
	"log/slog"
	"sync"
	"time"

	"confernet/internal/session"
)

// State is the gate's view of authentication.
type State int

const (
	Pending State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "pending"
	}
}

// Outcome is what the caller should do with the current navigation.
type Outcome int

const (
	// OutcomePlaceholder renders the loading placeholder; no redirect decision was made.
	OutcomePlaceholder Outcome = iota
	// OutcomeRender renders the requested view.
	OutcomeRender
	// OutcomeRedirect replaces the navigation with Decision.Target.
	OutcomeRedirect
)

// Decision is the result of evaluating a navigation.
type Decision struct {
	Outcome Outcome
	Target  string
	// Deferred is set when a redirect home is held back by the signup flag; the view renders and
	// the gate re-checks later.
	Deferred bool
}

const (
	DefaultEntryPath   = "/login"
	DefaultHomePath    = "/home"
	DefaultSignupDelay = time.Second
)

// DefaultPublicPaths are reachable without a session.
var DefaultPublicPaths = []string{"/", "/login", "/signup"}

// Navigator performs redirects the gate decides on outside of a Navigate call, such as those
// caused by session changes or the signup delay elapsing.
type Navigator interface {
	Redirect(path string)
}

// Stopper cancels a scheduled function.
type Stopper interface {
	Stop() bool
}

// Clock schedules the signup re-check.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// SessionObserver is the part of session.Observer the gate depends on.
type SessionObserver interface {
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

type Config struct {
	PublicPaths []string
	EntryPath   string
	HomePath    string
	SignupDelay time.Duration
	Clock       Clock
	Logger      *slog.Logger

	// SignupInProgress reports the registration-in-progress flag. Nil means never set.
	SignupInProgress func() bool
}

// Gate is the route-authorization component of one app instance.
type Gate struct {
	observer SessionObserver
	nav      Navigator
	public   map[string]bool
	entry    string
	home     string
	delay    time.Duration
	flag     func() bool
	clock    Clock
	logger   *slog.Logger

	mu           sync.Mutex
	state        State
	path         string
	unsubscribe  func()
	timer        Stopper
	timerGen     uint64
	delayElapsed bool
}

// New returns an unmounted gate. Zero Config fields take the package defaults.
func New(observer SessionObserver, nav Navigator, cfg Config) *Gate {
	if len(cfg.PublicPaths) == 0 {
		cfg.PublicPaths = DefaultPublicPaths
	}
	if cfg.EntryPath == "" {
		cfg.EntryPath = DefaultEntryPath
	}
	if cfg.HomePath == "" {
		cfg.HomePath = DefaultHomePath
	}
	if cfg.SignupDelay <= 0 {
		cfg.SignupDelay = DefaultSignupDelay
	}
	if cfg.SignupInProgress == nil {
		cfg.SignupInProgress = func() bool { return false }
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	public := make(map[string]bool, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = true
	}
	return &Gate{
		observer: observer,
		nav:      nav,
		public:   public,
		entry:    cfg.EntryPath,
		home:     cfg.HomePath,
		delay:    cfg.SignupDelay,
		flag:     cfg.SignupInProgress,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
}

// Mount subscribes to the session observer. Mounting twice is a no-op.
func (g *Gate) Mount() {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.mu.Unlock()
		return
	}
	// Marks the gate mounted while Subscribe runs; the observer may call back synchronously.
	g.unsubscribe = func() {}
	g.mu.Unlock()

	unsubscribe := g.observer.Subscribe(g.onSnapshot)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
}

// Unmount drops the observer subscription and any scheduled re-check.
func (g *Gate) Unmount() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.stopTimer()
	g.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// SignupDelay is how long a redirect home may be held back by the signup flag.
func (g *Gate) SignupDelay() time.Duration {
	return g.delay
}

// IsPublic reports whether path is reachable without a session.
func (g *Gate) IsPublic(path string) bool {
	return g.public[path]
}

// State returns the current authentication state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Path returns the path of the latest navigation, or the latest redirect target.
func (g *Gate) Path() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path
}

// Navigate records path as the current location and evaluates it. A redirect decision is
// returned to the caller and not passed to the Navigator.
func (g *Gate) Navigate(path string) Decision {
	g.mu.Lock()
	g.path = path
	d := g.evaluate()
	g.mu.Unlock()
	return d
}

// Recheck re-evaluates the current location, typically after the signup flag was cleared.
func (g *Gate) Recheck() {
	g.mu.Lock()
	d := g.evaluate()
	g.mu.Unlock()
	g.dispatch(d)
}

func (g *Gate) onSnapshot(snap session.Snapshot) {
	g.mu.Lock()
	next := Unauthenticated
	if snap.Authenticated() {
		next = Authenticated
	}
	if next != g.state {
		g.logger.Debug("gate state changed", "from", g.state.String(), "to", next.String(), "path", g.path)
		g.state = next
		g.delayElapsed = false
		g.stopTimer()
	}
	d := g.evaluate()
	g.mu.Unlock()
	g.dispatch(d)
}

func (g *Gate) onTimer(gen uint64) {
	g.mu.Lock()
	if gen != g.timerGen || g.timer == nil {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	g.delayElapsed = true
	d := g.evaluate()
	g.mu.Unlock()
	g.dispatch(d)
}

// evaluate must be called with mu held. A redirect moves the recorded path to its target, so
// evaluating again without a new navigation renders instead of redirecting twice.
func (g *Gate) evaluate() Decision {
	var d Decision
	switch {
	case g.state == Pending:
		return Decision{Outcome: OutcomePlaceholder}
	case g.path == "":
		// Nothing has navigated yet.
		return Decision{Outcome: OutcomeRender}
	case g.state == Unauthenticated:
		g.stopTimer()
		if g.IsPublic(g.path) {
			return Decision{Outcome: OutcomeRender}
		}
		d = Decision{Outcome: OutcomeRedirect, Target: g.entry}
	default:
		if !g.IsPublic(g.path) {
			g.stopTimer()
			return Decision{Outcome: OutcomeRender}
		}
		if g.flag() && !g.delayElapsed {
			if g.timer == nil {
				g.timerGen++
				gen := g.timerGen
				g.timer = g.clock.AfterFunc(g.delay, func() { g.onTimer(gen) })
			}
			return Decision{Outcome: OutcomeRender, Deferred: true}
		}
		g.stopTimer()
		d = Decision{Outcome: OutcomeRedirect, Target: g.home}
	}
	g.path = d.Target
	return d
}

// stopTimer must be called with mu held.
func (g *Gate) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Gate) dispatch(d Decision) {
	if d.Outcome != OutcomeRedirect {
		return
	}
	g.logger.Debug("gate redirect", "to", d.Target)
	g.nav.Redirect(d.Target)
}
