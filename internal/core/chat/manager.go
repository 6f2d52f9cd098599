package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/metrics"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager keeps the live sessions in memory. Sessions are not persisted.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limit    int
	metrics  *metrics.Chat
	now      func() time.Time
}

func NewManager(historyLimit int, m *metrics.Chat) *Manager {
	if m == nil {
		m = metrics.NewChat(nil)
	}
	return &Manager{
		sessions: make(map[string]*Session),
		limit:    historyLimit,
		metrics:  m,
		now:      time.Now,
	}
}

// Create opens a session and seeds it with the welcome message when one is set.
func (m *Manager) Create(businessID, welcome string) *Session {
	s := NewSession(uuid.NewString(), businessID, m.limit)
	s.AddWelcomeMessage(welcome)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.ActiveSessions.Set(float64(n))
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session with id, or a new one when id is empty or unknown.
func (m *Manager) GetOrCreate(id, businessID, welcome string) *Session {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s
		}
	}
	return m.Create(businessID, welcome)
}

func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.ActiveSessions.Set(float64(n))
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired drops sessions idle for longer than ttl and returns how many were removed.
func (m *Manager) CleanupExpired(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.ActiveSessions.Set(float64(n))
	if removed > 0 {
		log.Info().Int("removed", removed).Int("active", n).Msg("expired chat sessions cleaned up")
	}
	return removed
}
