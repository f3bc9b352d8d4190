package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/npc"
)

// mockBoardFactory records square creations and hands out fresh squares
type mockBoardFactory struct {
	mock.Mock
}

func (m *mockBoardFactory) CreateWall() *board.Square {
	m.Called()
	return board.NewSquare(board.Wall)
}

func (m *mockBoardFactory) CreateGround() *board.Square {
	m.Called()
	return board.NewSquare(board.Ground)
}

func (m *mockBoardFactory) CreateBoard(grid [][]*board.Square) *board.Board {
	return board.NewBoard(grid)
}

// mockLevelFactory records unit creations; ghosts come from the expectation
type mockLevelFactory struct {
	mock.Mock
}

func (m *mockLevelFactory) CreatePlayer() *Player {
	m.Called()
	return NewPlayer()
}

func (m *mockLevelFactory) CreateGhost() *Ghost {
	args := m.Called()
	ghost, _ := args.Get(0).(*Ghost)
	return ghost
}

func (m *mockLevelFactory) CreatePellet() *Pellet {
	m.Called()
	return NewPellet(PelletValue)
}

func newMockFactories() (*mockLevelFactory, *mockBoardFactory) {
	levels := &mockLevelFactory{}
	boards := &mockBoardFactory{}
	boards.On("CreateWall").Return()
	boards.On("CreateGround").Return()
	levels.On("CreatePlayer").Return()
	levels.On("CreatePellet").Return()
	return levels, boards
}

func TestParseMap_Good(t *testing.T) {
	levels, boards := newMockFactories()
	ghost := NewGhost(npc.Chaser{})
	levels.On("CreateGhost").Return(ghost)
	parser := NewMapParser(levels, boards)

	level, err := parser.ParseMap([]string{
		"############",
		"#P        G#",
		"############",
	})

	require.NoError(t, err)
	require.NotNil(t, level)
	levels.AssertNumberOfCalls(t, "CreateGhost", 1)
	boards.AssertNumberOfCalls(t, "CreateWall", 26)
	boards.AssertNumberOfCalls(t, "CreateGround", 10)

	assert.Equal(t, 12, level.Board().Width())
	assert.Equal(t, 3, level.Board().Height())
	require.Len(t, level.Ghosts(), 1)
	assert.Same(t, ghost, level.Ghosts()[0])
	x, y := ghost.Square().Position()
	assert.Equal(t, 10, x)
	assert.Equal(t, 1, y)
	x, y = level.Player().Square().Position()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, NotStarted, level.State())
}

func TestParseMap_UnequalWidth(t *testing.T) {
	levels, boards := &mockLevelFactory{}, &mockBoardFactory{}
	parser := NewMapParser(levels, boards)

	level, err := parser.ParseMap([]string{
		"########",
		"#P    G#",
		"####",
		"#P @ G#",
	})

	assert.Nil(t, level)
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Input text lines are not of equal width.", ce.Message)
	for _, method := range []string{"CreateWall", "CreateGround"} {
		boards.AssertNotCalled(t, method)
	}
	for _, method := range []string{"CreatePlayer", "CreateGhost", "CreatePellet"} {
		levels.AssertNotCalled(t, method)
	}
}

func TestParseMap_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		message string
	}{
		{
			name:    "no lines",
			lines:   nil,
			message: "Input text lines are not of equal width.",
		},
		{
			name:    "empty lines",
			lines:   []string{"", ""},
			message: "Input text lines are not of equal width.",
		},
		{
			name:    "invalid character",
			lines:   []string{"#####", "#P@ #", "#####"},
			message: "Invalid character '@' at (2,1).",
		},
		{
			name:    "no player",
			lines:   []string{"#####", "# G #", "#####"},
			message: "Map has no player start.",
		},
		{
			name:    "two players",
			lines:   []string{"#####", "#P P#", "#####"},
			message: "Map has 2 player starts, want exactly 1.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels, boards := &mockLevelFactory{}, &mockBoardFactory{}
			parser := NewMapParser(levels, boards)

			_, err := parser.ParseMap(tt.lines)

			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.Equal(t, tt.message, err.Error())
			boards.AssertNotCalled(t, "CreateWall")
			boards.AssertNotCalled(t, "CreateGround")
			levels.AssertNotCalled(t, "CreateGhost")
		})
	}
}

func TestParseMap_PlacesPellets(t *testing.T) {
	levels, boards := newMockFactories()
	parser := NewMapParser(levels, boards)

	level, err := parser.ParseMap([]string{
		"######",
		"#P.. #",
		"######",
	})

	require.NoError(t, err)
	levels.AssertNumberOfCalls(t, "CreatePellet", 2)
	levels.AssertNumberOfCalls(t, "CreatePlayer", 1)
	boards.AssertNumberOfCalls(t, "CreateGround", 4)
	assert.Equal(t, 2, level.RemainingPellets())
}

// nilUnitFactory hands out default units except for the one kind it
// leaves out
type nilUnitFactory struct {
	*DefaultLevelFactory
	missing rune
}

func (f *nilUnitFactory) CreatePlayer() *Player {
	if f.missing == PlayerChar {
		return nil
	}
	return f.DefaultLevelFactory.CreatePlayer()
}

func (f *nilUnitFactory) CreateGhost() *Ghost {
	if f.missing == GhostChar {
		return nil
	}
	return f.DefaultLevelFactory.CreateGhost()
}

func (f *nilUnitFactory) CreatePellet() *Pellet {
	if f.missing == PelletChar {
		return nil
	}
	return f.DefaultLevelFactory.CreatePellet()
}

func TestParseMap_NilUnits(t *testing.T) {
	tests := []struct {
		name    string
		missing rune
		want    string
	}{
		{"nil player", PlayerChar, "level factory returned no player for (1,0)"},
		{"nil ghost", GhostChar, "level factory returned no ghost for (2,0)"},
		{"nil pellet", PelletChar, "level factory returned no pellet for (3,0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &nilUnitFactory{DefaultLevelFactory: NewLevelFactory(0), missing: tt.missing}
			parser := NewMapParser(factory, board.NewBoardFactory())

			var level *Level
			var err error
			require.NotPanics(t, func() {
				level, err = parser.ParseMap([]string{"#PG.#"})
			})

			require.Error(t, err)
			assert.Nil(t, level)
			assert.True(t, IsConfigurationError(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestParseMapFile(t *testing.T) {
	parser := NewMapParser(NewLevelFactory(0), board.NewBoardFactory())

	t.Run("reads rows from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "room.txt")
		require.NoError(t, os.WriteFile(path, []byte("#####\n#P.G#\n#####\n"), 0o644))

		level, err := parser.ParseMapFile(path)

		require.NoError(t, err)
		assert.Equal(t, 5, level.Board().Width())
		assert.Equal(t, 3, level.Board().Height())
		assert.Equal(t, 1, level.RemainingPellets())
		assert.Len(t, level.Ghosts(), 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := parser.ParseMapFile(filepath.Join(t.TempDir(), "absent.txt"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.False(t, IsConfigurationError(err))
	})
}

func TestParseMapReader(t *testing.T) {
	parser := NewMapParser(NewLevelFactory(0), board.NewBoardFactory())
	input := "#####\r\n#P.G#\r\n#####\n\n"

	level, err := parser.ParseMapReader(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"#####", "#P.G#", "#####"}, level.Snapshot().Rows)
}

func TestParseMap_DefaultFactoryRoster(t *testing.T) {
	parser := NewMapParser(NewLevelFactory(0), board.NewBoardFactory())

	level, err := parser.ParseMap([]string{
		"#######",
		"#PGGGG#",
		"#######",
	})

	require.NoError(t, err)
	var names []string
	for _, g := range level.Ghosts() {
		names = append(names, g.Name())
	}
	assert.Equal(t, []string{"chaser", "ambusher", "wanderer", "wary"}, names)
}
