// Package npc holds the movement strategies that drive ghosts. A strategy
// looks at the board and the player and picks one direction per tick; it
// never moves anything itself.
package npc

import (
	"github.com/wricardo/mcp-training/mazechase/game/board"
)

// Situation is everything a strategy may look at when deciding
type Situation struct {
	Board  *board.Board
	Self   board.Unit
	Player board.Unit
}

// Strategy chooses the next step for a ghost. It returns false when every
// neighbor is a wall, the board edge, or holds another solid unit. Given the
// same situation it must return the same direction.
type Strategy interface {
	Name() string
	Decide(s Situation) (board.Direction, bool)
}

// OpenDirections lists the directions the unit in s can step into, in
// board.Directions order.
func OpenDirections(s Situation) []board.Direction {
	from := s.Self.Square()
	if from == nil {
		return nil
	}
	var open []board.Direction
	for _, d := range board.Directions {
		if canEnter(s, s.Board.Neighbor(from, d)) {
			open = append(open, d)
		}
	}
	return open
}

func canEnter(s Situation, target *board.Square) bool {
	return target != nil && target.Passable() && !target.BlockedFor(s.Self)
}

func playerSquare(s Situation) *board.Square {
	if s.Player == nil {
		return nil
	}
	return s.Player.Square()
}

// towards picks the open direction whose target square is closest to goal
// by path distance, falling back to straight-line distance when goal is
// unreachable. Ties go to the earlier direction in board.Directions.
func towards(s Situation, goal *board.Square) (board.Direction, bool) {
	return pick(s, goal, func(cand, best int) bool { return cand < best })
}

// away picks the open direction whose target square is farthest from goal
func away(s Situation, goal *board.Square) (board.Direction, bool) {
	return pick(s, goal, func(cand, best int) bool { return cand > best })
}

func pick(s Situation, goal *board.Square, better func(cand, best int) bool) (board.Direction, bool) {
	open := OpenDirections(s)
	if len(open) == 0 {
		return "", false
	}
	if goal == nil {
		return open[0], true
	}

	dist := Distances(s.Board, goal)
	from := s.Self.Square()
	best, bestScore := open[0], 0
	for i, d := range open {
		target := s.Board.Neighbor(from, d)
		score, ok := dist[target]
		if !ok {
			score = unreachable + Manhattan(target, goal)
		}
		if i == 0 || better(score, bestScore) {
			best, bestScore = d, score
		}
	}
	return best, true
}
