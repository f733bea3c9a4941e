// Package session republishes identity session changes to the rest of an app instance.
//
// An Observer owns the single subscription to the identity provider and fans its notifications
// out to any number of subscribers.
package session

import (
	"sync"

	"confernet/internal/domain"
)

// Snapshot is the observer's view of the session. Known is false until the provider has
// determined the state for the first time.
type Snapshot struct {
	Known   bool
	Session *domain.Session
}

// Authenticated reports whether the snapshot holds a session.
func (s Snapshot) Authenticated() bool {
	return s.Known && s.Session != nil
}

type subscriber struct {
	fn func(Snapshot)

	mu      sync.Mutex
	active  bool
	version uint64
}

// deliver runs fn unless the subscriber is gone or already saw a newer snapshot.
func (s *subscriber) deliver(snap Snapshot, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || version <= s.version {
		return
	}
	s.version = version
	s.fn(snap)
}

type Observer struct {
	source domain.SessionSource

	// sourceMu serializes attaching and detaching the provider subscription.
	sourceMu sync.Mutex

	mu       sync.Mutex
	snap     Snapshot
	version  uint64
	subs     map[uint64]*subscriber
	nextID   uint64
	detachFn func()
}

func NewObserver(source domain.SessionSource) *Observer {
	return &Observer{
		source: source,
		subs:   make(map[uint64]*subscriber),
	}
}

// Subscribe registers fn. It is called immediately with the current snapshot when the state is
// known, and on every later change. After the returned function has been called, fn is never
// invoked again and no invocation is in flight. fn must not unsubscribe itself.
func (o *Observer) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	sub := &subscriber{fn: fn, active: true}

	o.sourceMu.Lock()
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = sub
	snap, version := o.snap, o.version
	attach := o.detachFn == nil
	o.mu.Unlock()

	if attach {
		// The provider may call back synchronously; publish only takes o.mu.
		detach := o.source.OnSessionChanged(o.publish)
		o.mu.Lock()
		o.detachFn = detach
		o.mu.Unlock()
	}
	o.sourceMu.Unlock()

	if !attach && snap.Known {
		sub.deliver(snap, version)
	}

	var once sync.Once
	return func() {
		once.Do(func() { o.unsubscribe(id, sub) })
	}
}

func (o *Observer) unsubscribe(id uint64, sub *subscriber) {
	sub.mu.Lock()
	sub.active = false
	sub.mu.Unlock()

	o.sourceMu.Lock()
	defer o.sourceMu.Unlock()
	o.mu.Lock()
	delete(o.subs, id)
	var detach func()
	if len(o.subs) == 0 {
		detach = o.detachFn
		o.detachFn = nil
	}
	o.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Current returns the latest snapshot.
func (o *Observer) Current() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Subscribers returns the number of live subscriptions.
func (o *Observer) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

func (o *Observer) publish(s *domain.Session) {
	o.mu.Lock()
	o.version++
	o.snap = Snapshot{Known: true, Session: s}
	snap, version := o.snap, o.version
	subs := make([]*subscriber, 0, len(o.subs))
	for _, sub := range o.subs {
		subs = append(subs, sub)
	}
	o.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snap, version)
	}
}
