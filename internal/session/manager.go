package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager owns the mapping of session id to live session. Sessions are created
// lazily on first interaction; cross-session operations are fully independent.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	settings Settings
	log      *zap.Logger
}

// NewManager creates an empty session manager.
func NewManager(settings Settings, log *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		settings: settings,
		log:      log,
	}
}

// Get returns the session for id, creating it if this is the first interaction.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s = newSession(m.settings)
	m.sessions[id] = s
	m.log.Debug("Session created", zap.String("session_id", id))
	return s
}

// EvictIdle drops sessions that have been inactive longer than ttl and returns
// how many were removed.
func (m *Manager) EvictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.lastActive().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
