package service

import (
	"time"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	MapName        string           `json:"map_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	TickIntervalMS int              `json:"tick_interval_ms"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool             `json:"success"`
	Direction string           `json:"direction"`
	Message   string           `json:"message"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
	Events    []GameEvent      `json:"events,omitempty"`
}

// TickResult contains the result of a manual tick
type TickResult struct {
	Advanced bool             `json:"advanced"`
	Message  string           `json:"message"`
	Snapshot *engine.Snapshot `json:"snapshot"`
	Events   []GameEvent      `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "pellet", "won", "lost", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// MapInfo provides information about a map definition
type MapInfo struct {
	Filename       string `json:"filename"`
	MapID          string `json:"map_id"` // The identifier to use for session creation
	Name           string `json:"name"`   // Display name
	Description    string `json:"description"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Ghosts         int    `json:"ghosts"`
	Pellets        int    `json:"pellets"`
	TickIntervalMS int    `json:"tick_interval_ms"`
}

// NewMapInfo summarizes a definition stored under filename
func NewMapInfo(filename, mapID string, def *engine.MapDefinition) *MapInfo {
	info := &MapInfo{
		Filename:       filename,
		MapID:          mapID,
		Name:           def.Name,
		Description:    def.Description,
		Height:         len(def.Layout),
		Ghosts:         engine.CountChar(def.Layout, engine.GhostChar),
		Pellets:        engine.CountChar(def.Layout, engine.PelletChar),
		TickIntervalMS: def.TickIntervalMS,
	}
	if len(def.Layout) > 0 {
		info.Width = len([]rune(def.Layout[0]))
	}
	return info
}
