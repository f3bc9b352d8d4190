package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wricardo/mcp-training/mazechase/game/board"
)

// errUnequalWidth is the message for ragged or empty maps
const errUnequalWidth = "Input text lines are not of equal width."

// ConfigurationError reports a map that cannot be turned into a level
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// MapParser builds levels from rows of map characters
type MapParser struct {
	levels LevelFactory
	boards board.BoardFactory
}

// NewMapParser creates a parser that asks levels for units and boards for
// squares
func NewMapParser(levels LevelFactory, boards board.BoardFactory) *MapParser {
	return &MapParser{levels: levels, boards: boards}
}

// ParseMap validates lines and builds a level from them. Validation happens
// before any factory call, so a malformed map creates nothing.
func (p *MapParser) ParseMap(lines []string, opts ...LevelOption) (*Level, error) {
	rows, err := checkMapFormat(lines)
	if err != nil {
		return nil, err
	}

	width, height := len(rows[0]), len(rows)
	grid := make([][]*board.Square, width)
	for x := range grid {
		grid[x] = make([]*board.Square, height)
	}

	var player *Player
	var ghosts []*Ghost
	var pellets []*Pellet
	for y, row := range rows {
		for x, c := range row {
			if c == WallChar {
				grid[x][y] = p.boards.CreateWall()
				continue
			}
			square := p.boards.CreateGround()
			grid[x][y] = square

			switch c {
			case PlayerChar:
				player = p.levels.CreatePlayer()
				if player == nil {
					return nil, missingUnit("player", x, y)
				}
				board.Occupy(player, square)
			case GhostChar:
				ghost := p.levels.CreateGhost()
				if ghost == nil {
					return nil, missingUnit("ghost", x, y)
				}
				board.Occupy(ghost, square)
				ghosts = append(ghosts, ghost)
			case PelletChar:
				pellet := p.levels.CreatePellet()
				if pellet == nil {
					return nil, missingUnit("pellet", x, y)
				}
				board.Occupy(pellet, square)
				pellets = append(pellets, pellet)
			}
		}
	}

	b := p.boards.CreateBoard(grid)
	return NewLevel(b, player, ghosts, pellets, opts...), nil
}

// ParseMapReader reads one map row per line
func (p *MapParser) ParseMapReader(r io.Reader, opts ...LevelOption) (*Level, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	// A trailing newline at the end of the file is not an extra row
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return p.ParseMap(lines, opts...)
}

// ParseMapFile reads a map from a plain text file
func (p *MapParser) ParseMapFile(path string, opts ...LevelOption) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer f.Close()
	return p.ParseMapReader(f, opts...)
}

func missingUnit(unit string, x, y int) error {
	return &ConfigurationError{
		Message: fmt.Sprintf("level factory returned no %s for (%d,%d)", unit, x, y),
	}
}

// checkMapFormat runs every validation step and returns the rows as runes
func checkMapFormat(lines []string) ([][]rune, error) {
	if len(lines) == 0 {
		return nil, &ConfigurationError{Message: errUnequalWidth}
	}

	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
	}
	width := len(rows[0])
	if width == 0 {
		return nil, &ConfigurationError{Message: errUnequalWidth}
	}
	for _, row := range rows {
		if len(row) != width {
			return nil, &ConfigurationError{Message: errUnequalWidth}
		}
	}

	players := 0
	for y, row := range rows {
		for x, c := range row {
			switch c {
			case WallChar, GroundChar, GhostChar, PelletChar:
			case PlayerChar:
				players++
			default:
				return nil, &ConfigurationError{
					Message: fmt.Sprintf("Invalid character '%c' at (%d,%d).", c, x, y),
				}
			}
		}
	}

	switch {
	case players == 0:
		return nil, &ConfigurationError{Message: "Map has no player start."}
	case players > 1:
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("Map has %d player starts, want exactly 1.", players),
		}
	}

	return rows, nil
}
