package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

var (
	// ErrMapNotFound is service.ErrMapNotFound so callers of either package
	// can match it
	ErrMapNotFound = service.ErrMapNotFound
	ErrInvalidMap  = errors.New("invalid map")
)

// DefaultMapName is loaded as the default map when present
const DefaultMapName = "classic"

// extensions are tried in order when a map name has none
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles map definition loading and caching
type Manager struct {
	mapsDir    string
	defaultMap *engine.MapDefinition
	maps       map[string]*engine.MapDefinition
	log        *zap.SugaredLogger
	mu         sync.RWMutex
}

// NewManager creates a new map manager over mapsDir
func NewManager(mapsDir string, log *zap.SugaredLogger) (*Manager, error) {
	if _, err := os.Stat(mapsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("maps directory does not exist: %s", mapsDir)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	m := &Manager{
		mapsDir: mapsDir,
		maps:    make(map[string]*engine.MapDefinition),
		log:     log,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadDefaultLocked()

	return m, nil
}

// LoadMap loads a map by name, with or without its file extension
func (m *Manager) LoadMap(name string) (*engine.MapDefinition, error) {
	id := mapID(name)

	m.mu.RLock()
	if def, exists := m.maps[id]; exists {
		m.mu.RUnlock()
		return def, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name)
}

// loadLocked reads, validates and caches a map. The write lock must be held.
func (m *Manager) loadLocked(name string) (*engine.MapDefinition, error) {
	id := mapID(name)

	// Double-check after acquiring write lock
	if def, exists := m.maps[id]; exists {
		return def, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	def, err := engine.DecodeDefinition(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	if err := engine.ValidateDefinition(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	m.maps[id] = def
	m.log.Debugw("map loaded", "map", id, "path", path)
	return def, nil
}

// resolve finds the file for a map name inside the maps directory
func (m *Manager) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", ErrMapNotFound
	}

	candidates := []string{name}
	if !hasMapExt(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, filename := range candidates {
		path := filepath.Join(m.mapsDir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrMapNotFound
}

// ListMaps returns information about all valid maps, sorted by id
func (m *Manager) ListMaps() ([]*service.MapInfo, error) {
	entries, err := os.ReadDir(m.mapsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	var maps []*service.MapInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasMapExt(entry.Name()) {
			continue
		}

		id := mapID(entry.Name())
		if seen[id] {
			continue
		}

		def, err := m.LoadMap(entry.Name())
		if err != nil {
			m.log.Warnw("skipping invalid map", "file", entry.Name(), "error", err)
			continue
		}
		seen[id] = true

		maps = append(maps, service.NewMapInfo(entry.Name(), id, def))
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].MapID < maps[j].MapID })
	return maps, nil
}

// GetDefault returns the default map
func (m *Manager) GetDefault() *engine.MapDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMap
}

// SetDefault sets the default map by name
func (m *Manager) SetDefault(name string) error {
	def, err := m.LoadMap(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMap = def
	return nil
}

// RefreshCache drops every cached map and reloads the default from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.maps = make(map[string]*engine.MapDefinition)
	m.loadDefaultLocked()
}

// loadDefaultLocked picks classic, then the first valid map file, then the
// built-in maze
func (m *Manager) loadDefaultLocked() {
	if def, err := m.loadLocked(DefaultMapName); err == nil {
		m.defaultMap = def
		return
	}

	entries, err := os.ReadDir(m.mapsDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !hasMapExt(entry.Name()) {
				continue
			}
			if def, err := m.loadLocked(entry.Name()); err == nil {
				m.defaultMap = def
				return
			}
		}
	}

	m.log.Infow("no valid maps found, using built-in map", "dir", m.mapsDir)
	m.defaultMap = engine.DefaultDefinition()
}

func hasMapExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// mapID strips a known extension from a map name
func mapID(name string) string {
	if hasMapExt(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
