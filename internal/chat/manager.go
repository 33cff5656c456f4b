package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// SessionGauge is an optional Observer extension told the live session count
// whenever it changes.
type SessionGauge interface {
	SetActiveSessions(n int)
}

// Manager owns the live sessions. Sessions share a generator, delay policy,
// archive and observer.
type Manager struct {
	base Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager uses base as the template for new sessions; its ID is ignored.
func NewManager(base Options) *Manager {
	base.ID = ""
	if base.Logger == nil {
		base.Logger = logging.Default()
	}
	return &Manager{base: base, sessions: make(map[string]*Session)}
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	opts := m.base
	opts.ID = uuid.NewString()
	s := NewSession(opts)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.report(len(m.sessions))
	m.mu.Unlock()
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears a session down and forgets it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.report(len(m.sessions))
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PendingCount returns how many sessions are waiting on a reply.
func (m *Manager) PendingCount() int {
	n := 0
	for _, s := range m.list() {
		if s.Pending() {
			n++
		}
	}
	return n
}

// Sweep closes sessions idle longer than ttl with no reply outstanding.
// Session state is read without holding the manager lock.
func (m *Manager) Sweep(ttl time.Duration) int {
	now := m.now()
	var candidates []*Session
	for _, s := range m.list() {
		if s.Pending() || now.Sub(s.LastActive()) < ttl {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return 0
	}

	stale := candidates[:0]
	m.mu.Lock()
	for _, s := range candidates {
		if m.sessions[s.ID()] != s {
			continue
		}
		delete(m.sessions, s.ID())
		stale = append(stale, s)
	}
	m.report(len(m.sessions))
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// CloseAll tears down every session and waits for their reply goroutines.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.report(0)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
	for _, s := range all {
		s.Wait()
	}
}

func (m *Manager) list() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// report must be called with mu held so updates land in order.
func (m *Manager) report(n int) {
	if g, ok := m.base.Observer.(SessionGauge); ok {
		g.SetActiveSessions(n)
	}
}

func (m *Manager) now() time.Time {
	if m.base.Clock != nil {
		return m.base.Clock.Now()
	}
	return time.Now()
}
