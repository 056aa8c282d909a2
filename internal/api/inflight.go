package api

import "sync"

// inflight tracks sessions with a turn currently running. A session's
// transcript is append-only per turn, so two concurrent turns on the same
// session would interleave; the second caller is rejected instead.
type inflight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{active: make(map[string]struct{})}
}

// acquire marks a turn as running for the session. Returns false when one
// already is.
func (g *inflight) acquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[sessionID]; busy {
		return false
	}
	g.active[sessionID] = struct{}{}
	return true
}

// release clears the running mark. Safe to call for a session that was
// never acquired.
func (g *inflight) release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, sessionID)
}
