// Package validate checks maze map files before they are served. It
// checks:
//   - JSON or YAML structure and required fields
//   - Layout rules enforced by the map parser (equal width, legal
//     characters, exactly one player start)
//   - Tick interval bounds
//   - Connectivity: every pellet is reachable from the player start, so
//     the level can be won
//
// Ghosts walled off from the player are reported but do not fail a map.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/npc"
)

// Point is a board coordinate
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Stats summarizes a parsed map
type Stats struct {
	Name               string
	Width              int
	Height             int
	TickIntervalMS     int
	Walls              int
	Ground             int
	Pellets            int
	Ghosts             int
	Player             Point
	UnreachablePellets []Point
	UnreachableGhosts  []Point
}

// Winnable reports whether the player can reach every pellet
func (s *Stats) Winnable() bool {
	return len(s.UnreachablePellets) == 0
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages contains informational lines; otherwise it
// accumulates the problems that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
	Stats    *Stats
}

// Analyze builds the level described by def and measures it
func Analyze(def *engine.MapDefinition) (*Stats, error) {
	level, err := engine.BuildLevel(def)
	if err != nil {
		return nil, err
	}
	defer level.Close()

	b := level.Board()
	start := level.Player().Square()
	reach := npc.Reachable(b, start)

	px, py := start.Position()
	stats := &Stats{
		Name:           def.Name,
		Width:          b.Width(),
		Height:         b.Height(),
		TickIntervalMS: def.TickIntervalMS,
		Player:         Point{px, py},
	}

	b.Each(func(s *board.Square) {
		if s.Kind() == board.Wall {
			stats.Walls++
			return
		}
		stats.Ground++

		x, y := s.Position()
		if s.HasKind(board.PelletUnit) {
			stats.Pellets++
			if !reach.Has(s) {
				stats.UnreachablePellets = append(stats.UnreachablePellets, Point{x, y})
			}
		}
		if s.HasKind(board.GhostUnit) {
			stats.Ghosts++
			if !reach.Has(s) {
				stats.UnreachableGhosts = append(stats.UnreachableGhosts, Point{x, y})
			}
		}
	})

	return stats, nil
}

// ValidateFile loads and validates a single map file
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(path),
		Valid:    true,
		Messages: []string{},
	}

	def, err := engine.LoadDefinition(path)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, err.Error())
		return result
	}

	stats, err := Analyze(def)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, err.Error())
		return result
	}
	result.Stats = stats

	if !stats.Winnable() {
		result.Valid = false
		result.Messages = append(result.Messages,
			fmt.Sprintf("%d pellets are unreachable from the player start: %s",
				len(stats.UnreachablePellets), joinPoints(stats.UnreachablePellets, 5)))
		return result
	}

	result.Messages = append(result.Messages, fmt.Sprintf("✓ Name: %s", stats.Name))
	result.Messages = append(result.Messages, fmt.Sprintf("✓ Grid: %dx%d", stats.Width, stats.Height))
	result.Messages = append(result.Messages, fmt.Sprintf("✓ Pellets: %d", stats.Pellets))
	result.Messages = append(result.Messages, fmt.Sprintf("✓ Ghosts: %d", stats.Ghosts))
	if stats.TickIntervalMS == 0 {
		result.Messages = append(result.Messages, "✓ Ticks: manual")
	} else {
		result.Messages = append(result.Messages, fmt.Sprintf("✓ Ticks: every %dms", stats.TickIntervalMS))
	}
	if len(stats.UnreachableGhosts) > 0 {
		result.Messages = append(result.Messages,
			fmt.Sprintf("⚠ Ghosts that can never reach the player: %s", joinPoints(stats.UnreachableGhosts, 5)))
	}

	return result
}

// ValidateDir validates every .json, .yaml and .yml file in dir, sorted by name
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	results := make([]ValidationResult, 0, len(names))
	for _, name := range names {
		results = append(results, ValidateFile(filepath.Join(dir, name)))
	}
	return results, nil
}

func joinPoints(points []Point, limit int) string {
	parts := make([]string, 0, limit+1)
	for i, p := range points {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(points)-limit))
			break
		}
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}
