package board

import "fmt"

// OutOfBoundsError reports a coordinate lookup outside the board
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("coordinates (%d,%d) outside board of %dx%d", e.X, e.Y, e.Width, e.Height)
}
