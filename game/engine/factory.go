package engine

import (
	"sync"

	"github.com/wricardo/mcp-training/mazechase/game/npc"
)

// LevelFactory creates the units the map parser places on the board. Every
// call returns a fresh, unplaced unit.
type LevelFactory interface {
	CreatePlayer() *Player
	CreateGhost() *Ghost
	CreatePellet() *Pellet
}

// DefaultLevelFactory hands out ghosts with strategies from npc.Roster in
// creation order
type DefaultLevelFactory struct {
	seed   uint64
	mu     sync.Mutex
	ghosts int
}

// NewLevelFactory creates a factory whose wandering ghosts derive their
// choices from seed
func NewLevelFactory(seed uint64) *DefaultLevelFactory {
	return &DefaultLevelFactory{seed: seed}
}

func (f *DefaultLevelFactory) CreatePlayer() *Player {
	return NewPlayer()
}

func (f *DefaultLevelFactory) CreateGhost() *Ghost {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := NewGhost(npc.Roster(f.ghosts, f.seed))
	f.ghosts++
	return g
}

func (f *DefaultLevelFactory) CreatePellet() *Pellet {
	return NewPellet(PelletValue)
}
