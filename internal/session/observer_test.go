package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confernet/internal/domain"
)

// fakeSource mimics identity.Client: it replays the known state to new listeners.
type fakeSource struct {
	mu          sync.Mutex
	known       bool
	current     *domain.Session
	listeners   map[int]func(*domain.Session)
	next        int
	subscribes  int
	unsubscribe int
}

func newFakeSource() *fakeSource {
	return &fakeSource{listeners: make(map[int]func(*domain.Session))}
}

func (f *fakeSource) OnSessionChanged(fn func(*domain.Session)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	f.subscribes++
	known, current := f.known, f.current
	f.mu.Unlock()
	if known {
		fn(current)
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.listeners[id]; ok {
			delete(f.listeners, id)
			f.unsubscribe++
		}
	}
}

func (f *fakeSource) emit(s *domain.Session) {
	f.mu.Lock()
	f.known, f.current = true, s
	fns := make([]func(*domain.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeSource) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

type snapshots struct {
	mu  sync.Mutex
	got []Snapshot
}

func (s *snapshots) add(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, snap)
}

func (s *snapshots) all() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Snapshot(nil), s.got...)
}

func TestObserver_NoCallbackUntilKnown(t *testing.T) {
	src := newFakeSource()
	o := NewObserver(src)
	var got snapshots
	o.Subscribe(got.add)

	assert.Empty(t, got.all())
	assert.False(t, o.Current().Known)

	src.emit(nil)
	require.Len(t, got.all(), 1)
	assert.True(t, got.all()[0].Known)
	assert.False(t, got.all()[0].Authenticated())
}

func TestObserver_ImmediateWhenKnown(t *testing.T) {
	src := newFakeSource()
	src.emit(&domain.Session{UserID: "u1"})
	o := NewObserver(src)

	var first, second snapshots
	o.Subscribe(first.add)
	o.Subscribe(second.add)

	require.Len(t, first.all(), 1)
	require.Len(t, second.all(), 1)
	assert.Equal(t, "u1", second.all()[0].Session.UserID)
}

func TestObserver_SingleProviderSubscription(t *testing.T) {
	src := newFakeSource()
	o := NewObserver(src)

	unsubA := o.Subscribe(func(Snapshot) {})
	unsubB := o.Subscribe(func(Snapshot) {})
	assert.Equal(t, 1, src.live())
	assert.Equal(t, 2, o.Subscribers())

	unsubA()
	assert.Equal(t, 1, src.live())
	unsubB()
	assert.Equal(t, 0, src.live())

	o.Subscribe(func(Snapshot) {})
	assert.Equal(t, 1, src.live())
	assert.Equal(t, 2, src.subscribes)
}

func TestObserver_NoUpdatesAfterUnsubscribe(t *testing.T) {
	src := newFakeSource()
	o := NewObserver(src)
	var got snapshots
	unsubscribe := o.Subscribe(got.add)
	keepAlive := o.Subscribe(func(Snapshot) {})
	defer keepAlive()

	src.emit(&domain.Session{UserID: "u1"})
	unsubscribe()
	unsubscribe()
	src.emit(nil)
	src.emit(&domain.Session{UserID: "u2"})

	require.Len(t, got.all(), 1)
	assert.Equal(t, "u1", got.all()[0].Session.UserID)
}

func TestObserver_ConcurrentUnsubscribe(t *testing.T) {
	src := newFakeSource()
	o := NewObserver(src)
	keepAlive := o.Subscribe(func(Snapshot) {})
	defer keepAlive()

	for i := 0; i < 50; i++ {
		var (
			mu       sync.Mutex
			done     bool
			violated bool
		)
		unsubscribe := o.Subscribe(func(Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				violated = true
			}
		})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.emit(&domain.Session{UserID: "u"})
		}()
		unsubscribe()
		mu.Lock()
		done = true
		mu.Unlock()
		wg.Wait()
		src.emit(nil)

		mu.Lock()
		assert.False(t, violated, "callback ran after unsubscribe returned")
		mu.Unlock()
	}
}
