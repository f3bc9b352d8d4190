package main

import (
	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// Position is a board coordinate
type Position struct {
	X, Y int
}

var offsets = map[board.Direction]Position{
	board.Up:    {0, -1},
	board.Down:  {0, 1},
	board.Left:  {-1, 0},
	board.Right: {1, 0},
}

func (p Position) step(d board.Direction) Position {
	o := offsets[d]
	return Position{p.X + o.X, p.Y + o.Y}
}

// grid is the strategy's view of one snapshot
type grid struct {
	width, height int
	walls         [][]bool // indexed [y][x]
	pellets       map[Position]bool
	ghosts        map[Position]bool
	player        Position
}

func newGrid(snap *engine.Snapshot) *grid {
	g := &grid{
		width:   snap.Width,
		height:  snap.Height,
		walls:   make([][]bool, snap.Height),
		pellets: make(map[Position]bool),
		ghosts:  make(map[Position]bool),
	}
	for y, row := range snap.Cells {
		g.walls[y] = make([]bool, len(row))
		for x, cell := range row {
			g.walls[y][x] = cell.Square == board.Wall
			for _, o := range cell.Occupants {
				if o == board.PelletUnit {
					g.pellets[Position{x, y}] = true
				}
			}
		}
	}
	for _, ghost := range snap.Ghosts {
		g.ghosts[Position{ghost.X, ghost.Y}] = true
	}
	if snap.Player != nil {
		g.player = Position{snap.Player.X, snap.Player.Y}
	}
	return g
}

func (g *grid) open(p Position) bool {
	return p.Y >= 0 && p.Y < len(g.walls) && p.X >= 0 && p.X < len(g.walls[p.Y]) && !g.walls[p.Y][p.X]
}

// ghostDistances is the walking distance from the nearest ghost to every
// square a ghost can reach
func (g *grid) ghostDistances() map[Position]int {
	dist := make(map[Position]int, len(g.ghosts))
	var queue []Position
	for p := range g.ghosts {
		dist[p] = 0
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range board.Directions {
			next := current.step(d)
			if _, seen := dist[next]; seen || !g.open(next) {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// firstStepToPellet runs a BFS from the player and returns the first move
// of the shortest path to any pellet that avoids blocked squares
func (g *grid) firstStepToPellet(blocked func(Position) bool) (board.Direction, bool) {
	type queueItem struct {
		pos   Position
		first board.Direction
	}

	visited := map[Position]bool{g.player: true}
	queue := []queueItem{{pos: g.player}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range board.Directions {
			next := current.pos.step(d)
			if visited[next] || !g.open(next) || blocked(next) {
				continue
			}
			visited[next] = true

			first := current.first
			if first == "" {
				first = d
			}
			if g.pellets[next] {
				return first, true
			}
			queue = append(queue, queueItem{pos: next, first: first})
		}
	}
	return "", false
}

// GreedyStrategy walks to the nearest pellet while keeping SafeDistance
// squares between the player and every ghost. When no pellet can be reached
// safely it takes the risk, and when none can be reached at all it runs
// from the ghosts.
type GreedyStrategy struct {
	SafeDistance int

	visitedCells map[Position]int
}

// NewGreedyStrategy creates a strategy with the given safety margin
func NewGreedyStrategy(safeDistance int) *GreedyStrategy {
	return &GreedyStrategy{
		SafeDistance: safeDistance,
		visitedCells: make(map[Position]int),
	}
}

// NextMove returns the direction to move in, or "" to wait
func (s *GreedyStrategy) NextMove(snap *engine.Snapshot) board.Direction {
	if snap == nil || snap.Player == nil {
		return ""
	}

	g := newGrid(snap)
	s.visitedCells[g.player]++
	ghostDist := g.ghostDistances()

	dangerous := func(p Position) bool {
		d, ok := ghostDist[p]
		return ok && d <= s.SafeDistance
	}
	if dir, ok := g.firstStepToPellet(dangerous); ok {
		return dir
	}

	occupied := func(p Position) bool { return g.ghosts[p] }
	if dir, ok := g.firstStepToPellet(occupied); ok {
		return dir
	}

	return s.flee(g, ghostDist)
}

// flee picks the neighbour furthest from the ghosts, preferring squares
// visited less often, and waits when every move closes the gap
func (s *GreedyStrategy) flee(g *grid, ghostDist map[Position]int) board.Direction {
	distance := func(p Position) int {
		if d, ok := ghostDist[p]; ok {
			return d
		}
		return g.width * g.height
	}

	current := distance(g.player)
	var best board.Direction
	bestDist, bestVisits := -1, 0
	for _, d := range board.Directions {
		next := g.player.step(d)
		if !g.open(next) || g.ghosts[next] {
			continue
		}
		nd, visits := distance(next), s.visitedCells[next]
		if nd > bestDist || (nd == bestDist && visits < bestVisits) {
			best, bestDist, bestVisits = d, nd, visits
		}
	}
	if bestDist < current {
		return ""
	}
	return best
}

// Reset forgets the squares visited during the previous attempt
func (s *GreedyStrategy) Reset() {
	s.visitedCells = make(map[Position]int)
}
