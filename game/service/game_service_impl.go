package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions    SessionManager
	maps        ConfigManager
	broadcaster Broadcaster
	log         *zap.SugaredLogger

	// mu guards session lookups against Reset swapping a session's level.
	// Levels synchronize themselves, so level operations only need RLock.
	mu sync.RWMutex
}

// NewGameService creates a new game service instance. broadcaster may be nil.
func NewGameService(sessions SessionManager, maps ConfigManager, broadcaster Broadcaster, log *zap.SugaredLogger) GameService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &gameServiceImpl{
		sessions:    sessions,
		maps:        maps,
		broadcaster: broadcaster,
		log:         log,
	}
}

// levelOptions wires a session's level to the logger and the broadcaster
func (s *gameServiceImpl) levelOptions(sessionID string) []engine.LevelOption {
	return []engine.LevelOption{
		engine.WithLogger(s.log.With("session", sessionID)),
		engine.WithChangeHook(func(snap *engine.Snapshot) {
			s.publish(sessionID, snap)
		}),
	}
}

func (s *gameServiceImpl) publish(sessionID string, snap *engine.Snapshot) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSnapshot(sessionID, snap)
	}
}

// getMapID returns the map_id for a given map name, used for consistent API responses
func (s *gameServiceImpl) getMapID(mapName string) string {
	available, err := s.maps.ListMaps()
	if err == nil {
		for _, m := range available {
			if m.Name == mapName {
				return m.MapID
			}
		}
	}
	if mapName == "" {
		return "default"
	}
	return mapName
}

// getSession looks a session up and marks it accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, mapID string) *SessionInfo {
	snap := sess.Level.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		MapName:        mapID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		TickIntervalMS: sess.Map.TickIntervalMS,
		Snapshot:       &snap,
	}
}

// CreateSession creates a new game session on the named map, or on the
// default map when mapName is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, mapName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var def *engine.MapDefinition
	var err error
	if mapName != "" {
		def, err = s.maps.LoadMap(mapName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrMapNotFound) {
				available, listErr := s.maps.ListMaps()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, m := range available {
						ids = append(ids, m.MapID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available maps: %v", ErrMapNotFound, mapName, ids)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/maps to list available maps", ErrMapNotFound, mapName)
			}
			return nil, fmt.Errorf("failed to load map %s: %w", mapName, err)
		}
	} else {
		def = s.maps.GetDefault()
	}

	sess, err := s.sessions.Create("", def, s.levelOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	mapID := mapName
	if mapID == "" {
		mapID = s.getMapID(def.Name)
	}
	s.log.Infow("session created", "session", sess.ID, "map", mapID)

	return s.sessionInfo(sess, mapID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getMapID(sess.Map.Name)), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getMapID(sess.Map.Name)))
	}
	return result, nil
}

// DeleteSession removes a session and stops its ghost timer
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.log.Infow("session deleted", "session", sessionID)
	return nil
}

// Start starts a level that has not been started yet, or resumes a
// suspended one
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Level.Start(); err != nil {
		return nil, err
	}
	snap := sess.Level.Snapshot()
	return &snap, nil
}

// Pause suspends a running level
func (s *gameServiceImpl) Pause(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if state := sess.Level.State(); state != engine.Running {
		return nil, fmt.Errorf("%w: cannot pause a %s level", engine.ErrInvalidTransition, state)
	}
	sess.Level.Stop()
	snap := sess.Level.Snapshot()
	return &snap, nil
}

// Resume restarts a suspended level
func (s *gameServiceImpl) Resume(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if state := sess.Level.State(); state != engine.Suspended {
		return nil, fmt.Errorf("%w: cannot resume a %s level", engine.ErrInvalidTransition, state)
	}
	if err := sess.Level.Start(); err != nil {
		return nil, err
	}
	snap := sess.Level.Snapshot()
	return &snap, nil
}

// Reset replaces a session's level with a fresh one built from its map
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getSession(sessionID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Rebuild(sessionID, s.levelOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	snap := sess.Level.Snapshot()
	s.publish(sess.ID, &snap)
	s.log.Infow("session reset", "session", sess.ID)
	return &snap, nil
}

// Move executes a single player move
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	dir, err := board.ParseDirection(strings.ToLower(strings.TrimSpace(direction)))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (use up, down, left or right)", ErrInvalidDirection, direction)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	out := sess.Level.MoveOutcome(dir)
	before, after := out.Before, out.After

	result := &MoveResult{
		Success:   out.Applied,
		Direction: string(dir),
		Snapshot:  &after,
		Events:    extractEvents(&before, &after),
	}
	switch {
	case before.State != engine.Running:
		result.Message = notRunningMessage(before.State)
	case !out.Applied:
		result.Message = fmt.Sprintf("Cannot move %s: the way is blocked", dir)
	default:
		result.Message = outcomeMessage(fmt.Sprintf("Moved %s", dir), &after)
	}
	return result, nil
}

// Tick advances a running level by one ghost step
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*TickResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	out := sess.Level.TickOutcome()
	before, after := out.Before, out.After

	result := &TickResult{
		Advanced: out.Applied,
		Snapshot: &after,
		Events:   extractEvents(&before, &after),
	}
	if out.Applied {
		result.Message = outcomeMessage(fmt.Sprintf("Tick %d", after.Ticks), &after)
	} else {
		result.Message = notRunningMessage(before.State)
	}
	return result, nil
}

// GetSnapshot retrieves the current level snapshot
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Level.Snapshot()
	return &snap, nil
}

// ListMaps returns all available maps
func (s *gameServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.maps.ListMaps()
}

// LoadMap loads a specific map definition
func (s *gameServiceImpl) LoadMap(ctx context.Context, mapName string) (*engine.MapDefinition, error) {
	return s.maps.LoadMap(mapName)
}

// extractEvents compares two snapshots of the same level
func extractEvents(before, after *engine.Snapshot) []GameEvent {
	var events []GameEvent
	now := time.Now()

	if eaten := before.RemainingPellets - after.RemainingPellets; eaten > 0 {
		events = append(events, GameEvent{
			Type:      "pellet",
			Message:   fmt.Sprintf("Ate %d pellet(s), score %d", eaten, after.Score),
			Timestamp: now,
		})
	}
	if before.State != after.State {
		switch after.State {
		case engine.Won:
			events = append(events, GameEvent{
				Type:      "won",
				Message:   fmt.Sprintf("All pellets eaten! Final score %d", after.Score),
				Timestamp: now,
			})
		case engine.Lost:
			events = append(events, GameEvent{
				Type:      "lost",
				Message:   fmt.Sprintf("Caught by a ghost! Final score %d", after.Score),
				Timestamp: now,
			})
		}
	}
	return events
}

func outcomeMessage(prefix string, snap *engine.Snapshot) string {
	switch snap.State {
	case engine.Won:
		return fmt.Sprintf("%s. All pellets eaten, you win with score %d!", prefix, snap.Score)
	case engine.Lost:
		return fmt.Sprintf("%s. Caught by a ghost, game over with score %d.", prefix, snap.Score)
	}
	return fmt.Sprintf("%s. Score %d, %d pellets left.", prefix, snap.Score, snap.RemainingPellets)
}

func notRunningMessage(state engine.State) string {
	switch state {
	case engine.NotStarted:
		return "Game has not started. Start it first."
	case engine.Suspended:
		return "Game is paused. Resume it first."
	}
	return fmt.Sprintf("Game is over (%s). Reset it to play again.", state)
}
