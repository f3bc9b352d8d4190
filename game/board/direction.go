package board

import "fmt"

// Direction is one of the four moves available on the grid
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in the order strategies evaluate them
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Left, Right:
		return d, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// Delta returns the column and row offsets of a single step
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// Valid reports whether d is one of the four moves
func (d Direction) Valid() bool {
	dx, dy := d.Delta()
	return dx != 0 || dy != 0
}
