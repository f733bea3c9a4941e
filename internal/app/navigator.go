package app

import "sync"

// Navigator records redirects the gate issues outside of a navigation so the next response of
// the instance can carry them out.
type Navigator struct {
	mu      sync.Mutex
	pending string
}

func (n *Navigator) Redirect(path string) {
	n.mu.Lock()
	n.pending = path
	n.mu.Unlock()
}

// Take returns and clears the pending redirect.
func (n *Navigator) Take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p := n.pending
	n.pending = ""
	return p, p != ""
}

// Reset drops a pending redirect that a fresh navigation supersedes.
func (n *Navigator) Reset() {
	n.Take()
}
