package npc

import (
	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/zyedidia/generic/mapset"
)

// unreachable offsets straight-line estimates so that any real path
// distance wins over them
const unreachable = 1 << 20

// Distances returns the walking distance from origin to every passable
// square connected to it. The origin itself is always included, even when
// it is a wall, so that a target inside a wall still attracts ghosts to the
// squares around it.
func Distances(b *board.Board, origin *board.Square) map[*board.Square]int {
	dist := map[*board.Square]int{origin: 0}
	queue := []*board.Square{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range board.Directions {
			next := b.Neighbor(current, d)
			if next == nil || !next.Passable() {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// Reachable returns every passable square connected to start
func Reachable(b *board.Board, start *board.Square) mapset.Set[*board.Square] {
	visited := mapset.New[*board.Square]()
	if start == nil || !start.Passable() {
		return visited
	}
	queue := []*board.Square{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range board.Directions {
			next := b.Neighbor(current, d)
			if next != nil && next.Passable() && !visited.Has(next) {
				visited.Put(next)
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// Manhattan returns the grid distance between two placed squares
func Manhattan(a, b *board.Square) int {
	ax, ay := a.Position()
	bx, by := b.Position()
	return abs(ax-bx) + abs(ay-by)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
