package npc

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/mazechase/game/board"
)

// Chaser walks the shortest path to the player
type Chaser struct{}

func (Chaser) Name() string { return "chaser" }

func (Chaser) Decide(s Situation) (board.Direction, bool) {
	return towards(s, playerSquare(s))
}

// Ambusher aims a few squares ahead of where the player is facing
type Ambusher struct {
	// Lead is how many squares ahead of the player to aim; zero means 4
	Lead int
}

func (Ambusher) Name() string { return "ambusher" }

func (a Ambusher) Decide(s Situation) (board.Direction, bool) {
	target := playerSquare(s)
	if target == nil {
		return towards(s, nil)
	}
	lead := a.Lead
	if lead <= 0 {
		lead = 4
	}
	facing := s.Player.Direction()
	for i := 0; i < lead && facing.Valid(); i++ {
		next := s.Board.Neighbor(target, facing)
		if next == nil {
			break
		}
		target = next
	}
	// A target sealed off from the ghost falls back to the player
	if _, ok := Distances(s.Board, target)[s.Self.Square()]; !ok {
		target = playerSquare(s)
	}
	return towards(s, target)
}

// Wary chases the player from afar and backs off once it gets close
type Wary struct {
	// Radius is the distance at which the ghost turns away; zero means 8
	Radius int
}

func (Wary) Name() string { return "wary" }

func (w Wary) Decide(s Situation) (board.Direction, bool) {
	target := playerSquare(s)
	if target == nil || s.Self.Square() == nil {
		return towards(s, nil)
	}
	radius := w.Radius
	if radius <= 0 {
		radius = 8
	}
	if Manhattan(s.Self.Square(), target) > radius {
		return towards(s, target)
	}
	return away(s, target)
}

// Wanderer picks a pseudo-random open direction. The choice is derived from
// Seed and the positions involved, so the same situation always yields the
// same direction.
type Wanderer struct {
	Seed uint64
}

func (Wanderer) Name() string { return "wanderer" }

func (w Wanderer) Decide(s Situation) (board.Direction, bool) {
	open := OpenDirections(s)
	if len(open) == 0 {
		return "", false
	}
	// Prefer not to turn back while there is any other way to go
	if len(open) > 1 {
		back := s.Self.Direction().Opposite()
		forward := open[:0:0]
		for _, d := range open {
			if d != back {
				forward = append(forward, d)
			}
		}
		open = forward
	}
	rng := rand.New(rand.NewPCG(w.Seed, positionKey(s)))
	return open[rng.IntN(len(open))], true
}

func positionKey(s Situation) uint64 {
	gx, gy := s.Self.Square().Position()
	key := uint64(uint16(gx))<<48 | uint64(uint16(gy))<<32
	if ps := playerSquare(s); ps != nil {
		px, py := ps.Position()
		key |= uint64(uint16(px))<<16 | uint64(uint16(py))
	}
	return key
}

// Roster returns the strategy for the n-th ghost created on a level
func Roster(n int, seed uint64) Strategy {
	switch n % 4 {
	case 0:
		return Chaser{}
	case 1:
		return Ambusher{}
	case 2:
		return Wanderer{Seed: seed + uint64(n)}
	default:
		return Wary{}
	}
}
