package engine

import (
	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/npc"
)

// Player is the unit controlled by the user
type Player struct {
	board.Occupant
	score int
	alive bool
}

// NewPlayer creates an unplaced, living player
func NewPlayer() *Player {
	return &Player{alive: true}
}

func (p *Player) Kind() board.UnitKind { return board.PlayerUnit }

// Score returns the points collected so far
func (p *Player) Score() int {
	return p.score
}

// Alive reports whether the player has not been caught
func (p *Player) Alive() bool {
	return p.alive
}

func (p *Player) addPoints(n int) {
	p.score += n
}

// Ghost is a non-player unit moved by its strategy
type Ghost struct {
	board.Occupant
	strategy npc.Strategy
}

// NewGhost creates an unplaced ghost driven by strategy
func NewGhost(strategy npc.Strategy) *Ghost {
	return &Ghost{strategy: strategy}
}

func (g *Ghost) Kind() board.UnitKind { return board.GhostUnit }

// Strategy returns the ghost's movement strategy
func (g *Ghost) Strategy() npc.Strategy {
	return g.strategy
}

// Name returns the strategy name, used to tell ghosts apart in snapshots
func (g *Ghost) Name() string {
	if g.strategy == nil {
		return ""
	}
	return g.strategy.Name()
}

// Pellet is eaten by the player for points
type Pellet struct {
	board.Occupant
	value int
}

// NewPellet creates an unplaced pellet worth value points
func NewPellet(value int) *Pellet {
	return &Pellet{value: value}
}

func (p *Pellet) Kind() board.UnitKind { return board.PelletUnit }

// Value returns the points the pellet is worth
func (p *Pellet) Value() int {
	return p.value
}
