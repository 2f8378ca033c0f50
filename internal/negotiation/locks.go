package negotiation

import "sync"

// sessionLocks serializes turns per session id. A turn performs several
// read-modify-write cycles against the store; without a single-writer
// guarantee concurrent connections on the same session would lose updates.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutex for a session id, creating it on first use, and
// returns the corresponding release function.
func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
