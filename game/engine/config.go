package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/mazechase/game/board"
)

// TickInterval converts the definition's tick period
func (d *MapDefinition) TickInterval() time.Duration {
	return time.Duration(d.TickIntervalMS) * time.Millisecond
}

// ValidateDefinition checks a map definition for correctness and playability
func ValidateDefinition(def *MapDefinition) error {
	if def == nil {
		return fmt.Errorf("config validation: definition is nil")
	}
	if def.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if def.TickIntervalMS != 0 &&
		(def.TickIntervalMS < MinTickIntervalMS || def.TickIntervalMS > MaxTickIntervalMS) {
		return fmt.Errorf("config validation: tick_interval_ms must be 0 or between %d and %d, got %d",
			MinTickIntervalMS, MaxTickIntervalMS, def.TickIntervalMS)
	}
	if _, err := BuildLevel(def); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// BuildLevel parses the definition's layout with the default factories
func BuildLevel(def *MapDefinition, opts ...LevelOption) (*Level, error) {
	parser := NewMapParser(NewLevelFactory(def.Seed), board.NewBoardFactory())
	all := append([]LevelOption{WithTickInterval(def.TickInterval())}, opts...)
	return parser.ParseMap(def.Layout, all...)
}

// DecodeDefinition parses a definition, as YAML when ext is .yaml or .yml
// and as JSON otherwise
func DecodeDefinition(data []byte, ext string) (*MapDefinition, error) {
	var def MapDefinition
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse YAML map: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse JSON map: %w", err)
		}
	}
	return &def, nil
}

// LoadDefinition reads and validates a map definition file
func LoadDefinition(path string) (*MapDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	def, err := DecodeDefinition(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}

	return def, nil
}

// DefaultDefinition returns the built-in map used when no map files exist
func DefaultDefinition() *MapDefinition {
	return &MapDefinition{
		Name:           "classic",
		Description:    "Built-in maze with four ghosts",
		TickIntervalMS: 250,
		Seed:           1,
		Layout: []string{
			"###################",
			"#........#........#",
			"#.##.###.#.###.##.#",
			"#.................#",
			"#.##.#.#####.#.##.#",
			"#....#...#...#....#",
			"####.### # ###.####",
			"#......  G  ......#",
			"####.# ##G## #.####",
			"#......#G G#......#",
			"####.# ##### #.####",
			"#........P........#",
			"#.##.###.#.###.##.#",
			"#..#...........#..#",
			"##.#.#.#####.#.#.##",
			"#....#...#...#....#",
			"#.######.#.######.#",
			"#.................#",
			"###################",
		},
	}
}
