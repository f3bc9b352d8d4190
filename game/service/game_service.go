package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrMapNotFound      = errors.New("map not found")
	ErrInvalidDirection = errors.New("invalid direction")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, mapName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Level lifecycle
	Start(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Pause(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Resume(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	Tick(ctx context.Context, sessionID string) (*TickResult, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Maps
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	LoadMap(ctx context.Context, mapName string) (*engine.MapDefinition, error)
}

// LevelOptionsFunc returns the level options for a session once its ID is
// known
type LevelOptionsFunc func(sessionID string) []engine.LevelOption

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, def *engine.MapDefinition, opts LevelOptionsFunc) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	Rebuild(id string, opts LevelOptionsFunc) (*Session, error)
	UpdateLastAccessed(id string) error
}

// ConfigManager handles map definition loading
type ConfigManager interface {
	LoadMap(name string) (*engine.MapDefinition, error)
	ListMaps() ([]*MapInfo, error)
	GetDefault() *engine.MapDefinition
}

// Broadcaster receives snapshots published by session levels
type Broadcaster interface {
	BroadcastSnapshot(sessionID string, snap *engine.Snapshot)
}

// Session represents an active game session
type Session struct {
	ID        string
	Level     *engine.Level
	Map       *engine.MapDefinition
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
}

// NewSession creates a session that was created and last accessed at now
func NewSession(id string, level *engine.Level, def *engine.MapDefinition, now time.Time) *Session {
	return &Session{
		ID:           id,
		Level:        level,
		Map:          def,
		CreatedAt:    now,
		lastAccessed: now,
	}
}

// Touch records an access at the given time
func (s *Session) Touch(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = at
}

// LastAccessedAt returns the time of the latest access
func (s *Session) LastAccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}
