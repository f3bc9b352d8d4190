package engine

import (
	"github.com/wricardo/mcp-training/mazechase/game/board"
)

// Snapshot returns a copy of the level that stays valid while the level
// keeps changing
func (l *Level) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Level) snapshotLocked() Snapshot {
	w, h := l.board.Width(), l.board.Height()
	snap := Snapshot{
		Width:            w,
		Height:           h,
		State:            l.state,
		RemainingPellets: l.remaining,
		Ticks:            l.ticks,
		Moves:            l.moves,
		Rows:             make([]string, h),
		Cells:            make([][]CellView, h),
		Ghosts:           make([]UnitView, 0, len(l.ghosts)),
	}

	for y := 0; y < h; y++ {
		row := make([]rune, w)
		snap.Cells[y] = make([]CellView, w)
		for x := 0; x < w; x++ {
			square, _ := l.board.SquareAt(x, y)
			cell := CellView{Square: square.Kind()}
			for _, u := range square.Occupants() {
				cell.Occupants = append(cell.Occupants, u.Kind())
			}
			snap.Cells[y][x] = cell
			row[x] = SquareChar(square)
		}
		snap.Rows[y] = string(row)
	}

	if l.player != nil {
		snap.Score = l.player.Score()
		if v, ok := unitView(l.player, ""); ok {
			snap.Player = &v
		}
	}
	for _, g := range l.ghosts {
		if v, ok := unitView(g, g.Name()); ok {
			snap.Ghosts = append(snap.Ghosts, v)
		}
	}
	return snap
}

func unitView(u board.Unit, name string) (UnitView, bool) {
	square := u.Square()
	if square == nil {
		return UnitView{}, false
	}
	x, y := square.Position()
	return UnitView{
		Kind:      u.Kind(),
		Name:      name,
		X:         x,
		Y:         y,
		Direction: u.Direction(),
	}, true
}

// SquareChar renders a square with the map alphabet. The player shows over
// ghosts, and ghosts over pellets.
func SquareChar(s *board.Square) rune {
	if !s.Passable() {
		return WallChar
	}
	switch {
	case s.HasKind(board.PlayerUnit):
		return PlayerChar
	case s.HasKind(board.GhostUnit):
		return GhostChar
	case s.HasKind(board.PelletUnit):
		return PelletChar
	}
	return GroundChar
}

// CountChar counts occurrences of c in a layout
func CountChar(layout []string, c rune) int {
	count := 0
	for _, row := range layout {
		for _, r := range row {
			if r == c {
				count++
			}
		}
	}
	return count
}
