// Package app holds the per-browser application instances: each bundles an identity session, its
// observer, the route gate and the instance-scoped state views read and write.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"confernet/internal/adapters/identity"
	"confernet/internal/gate"
	"confernet/internal/session"
)

const maxQuestions = 100

// Question is one entry of the session-interaction Q&A. Questions are kept per instance only.
type Question struct {
	Text    string
	AskedAt time.Time
}

type Instance struct {
	ID        string
	Identity  *identity.Client
	Observer  *session.Observer
	Gate      *gate.Gate
	Navigator *Navigator
	Hints     *Hints

	// ready is closed once the creating Get has loaded hints and mounted the gate.
	ready  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	lastSeen  time.Time
	questions []Question
}

// Context is cancelled when the instance is closed.
func (i *Instance) Context() context.Context {
	return i.ctx
}

func (i *Instance) touch(now time.Time) {
	i.mu.Lock()
	i.lastSeen = now
	i.mu.Unlock()
}

func (i *Instance) idleSince() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastSeen
}

// AskQuestion appends a question and reports whether it was accepted. Blank questions are not.
func (i *Instance) AskQuestion(text string, now time.Time) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.questions = append(i.questions, Question{Text: text, AskedAt: now})
	if len(i.questions) > maxQuestions {
		i.questions = i.questions[len(i.questions)-maxQuestions:]
	}
	return true
}

func (i *Instance) Questions() []Question {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Question(nil), i.questions...)
}

// close unmounts the gate and silences the identity client.
func (i *Instance) close() {
	i.Gate.Unmount()
	i.Identity.Close()
	i.cancel()
}
