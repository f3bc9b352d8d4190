package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidMap           = errors.New("invalid map definition")
)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	log      *zap.SugaredLogger
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{
		sessions: make(map[string]*service.Session),
		log:      log,
	}
}

// Create creates a new session with the given ID on the given map. An empty
// id gets a generated one; opts, when set, supplies the level options.
func (m *Manager) Create(id string, def *engine.MapDefinition, opts service.LevelOptionsFunc) (*service.Session, error) {
	if def == nil {
		return nil, ErrInvalidMap
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionIDLocked()
	}

	// Check if session already exists (case-insensitive)
	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	level, err := buildLevel(id, def, opts)
	if err != nil {
		return nil, err
	}

	session := service.NewSession(id, level, def, time.Now())
	m.sessions[strings.ToLower(id)] = session

	m.log.Debugw("session stored", "session", id, "map", def.Name, "total", len(m.sessions))
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session and stops its level
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	session, exists := m.sessions[key]
	if !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	session.Level.Close()
	return nil
}

// Rebuild replaces a session's level with a fresh one built from the
// session's map. The old level is closed.
func (m *Manager) Rebuild(id string, opts service.LevelOptionsFunc) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}

	level, err := buildLevel(session.ID, session.Map, opts)
	if err != nil {
		return nil, err
	}
	session.Level.Close()
	session.Level = level
	return session, nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.Touch(time.Now())
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, session := range m.sessions {
		if session.LastAccessedAt().Before(cutoff) {
			session.Level.Close()
			delete(m.sessions, key)
			removed++
		}
	}

	if removed > 0 {
		m.log.Infow("expired sessions removed", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// CloseAll stops every level and forgets every session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, session := range m.sessions {
		session.Level.Close()
		delete(m.sessions, key)
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionIDLocked returns the first group of a random UUID, retrying
// on the rare collision
func (m *Manager) generateSessionIDLocked() string {
	for {
		id := strings.Split(uuid.NewString(), "-")[0]
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}

func buildLevel(id string, def *engine.MapDefinition, opts service.LevelOptionsFunc) (*engine.Level, error) {
	var levelOpts []engine.LevelOption
	if opts != nil {
		levelOpts = opts(id)
	}
	level, err := engine.BuildLevel(def, levelOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return level, nil
}
