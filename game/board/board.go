package board

// Board is a fixed rectangular grid of squares
type Board struct {
	grid   [][]*Square
	width  int
	height int
}

// NewBoard wraps grid, indexed grid[x][y]. The caller guarantees a non-empty,
// rectangular grid; NewBoard records each square's coordinates.
func NewBoard(grid [][]*Square) *Board {
	b := &Board{
		grid:   grid,
		width:  len(grid),
		height: len(grid[0]),
	}
	for x, column := range grid {
		for y, s := range column {
			s.x, s.y = x, y
		}
	}
	return b
}

// Width returns the number of columns
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows
func (b *Board) Height() int {
	return b.height
}

// WithinBorders reports whether (x, y) is on the board
func (b *Board) WithinBorders(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// SquareAt returns the square at column x, row y
func (b *Board) SquareAt(x, y int) (*Square, error) {
	if !b.WithinBorders(x, y) {
		return nil, &OutOfBoundsError{X: x, Y: y, Width: b.width, Height: b.height}
	}
	return b.grid[x][y], nil
}

// Neighbor returns the square one step from s in direction d, or nil when
// that step leaves the board or s is not part of this board.
func (b *Board) Neighbor(s *Square, d Direction) *Square {
	if !b.owns(s) {
		return nil
	}
	dx, dy := d.Delta()
	x, y := s.x+dx, s.y+dy
	if (dx == 0 && dy == 0) || !b.WithinBorders(x, y) {
		return nil
	}
	return b.grid[x][y]
}

// Each visits every square in row-major order
func (b *Board) Each(fn func(s *Square)) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			fn(b.grid[x][y])
		}
	}
}

func (b *Board) owns(s *Square) bool {
	return s != nil && b.WithinBorders(s.x, s.y) && b.grid[s.x][s.y] == s
}
