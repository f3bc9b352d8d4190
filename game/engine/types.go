package engine

import "github.com/wricardo/mcp-training/mazechase/game/board"

// State is the lifecycle state of a level
type State string

const (
	NotStarted State = "not_started"
	Running    State = "running"
	Suspended  State = "suspended"
	Won        State = "won"
	Lost       State = "lost"
)

// Terminal reports whether no transition leads out of the state
func (s State) Terminal() bool {
	return s == Won || s == Lost
}

// Map characters
const (
	WallChar   = '#'
	GroundChar = ' '
	PlayerChar = 'P'
	GhostChar  = 'G'
	PelletChar = '.'
)

const (
	// PelletValue is the score awarded for each pellet eaten
	PelletValue = 10

	// Validation constants
	MinTickIntervalMS = 20
	MaxTickIntervalMS = 5000
)

// Snapshot is a consistent copy of a level for renderers
type Snapshot struct {
	Width            int          `json:"width"`
	Height           int          `json:"height"`
	State            State        `json:"state"`
	Score            int          `json:"score"`
	RemainingPellets int          `json:"remaining_pellets"`
	Ticks            int          `json:"ticks"`
	Moves            int          `json:"moves"`
	Rows             []string     `json:"rows"`
	Cells            [][]CellView `json:"cells"` // indexed [y][x]
	Player           *UnitView    `json:"player,omitempty"`
	Ghosts           []UnitView   `json:"ghosts"`
}

// Outcome is the result of one move or tick together with the level as it
// was right before and right after it. Both snapshots are taken under the
// same lock as the change itself.
type Outcome struct {
	Applied bool
	Before  Snapshot
	After   Snapshot
}

// CellView describes one square and what stands on it
type CellView struct {
	Square    board.Kind       `json:"square"`
	Occupants []board.UnitKind `json:"occupants,omitempty"`
}

// UnitView describes a unit's placement
type UnitView struct {
	Kind      board.UnitKind  `json:"kind"`
	Name      string          `json:"name,omitempty"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Direction board.Direction `json:"direction,omitempty"`
}

// MapDefinition is a named map as stored in the maps directory
type MapDefinition struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	TickIntervalMS int      `json:"tick_interval_ms" yaml:"tick_interval_ms"`
	Seed           uint64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Layout         []string `json:"layout" yaml:"layout"`
}
