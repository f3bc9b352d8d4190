package board

// BoardFactory builds the square variants used by the map parser
type BoardFactory interface {
	CreateWall() *Square
	CreateGround() *Square
	CreateBoard(grid [][]*Square) *Board
}

// DefaultBoardFactory returns a fresh square on every call
type DefaultBoardFactory struct{}

// NewBoardFactory creates the default factory
func NewBoardFactory() *DefaultBoardFactory {
	return &DefaultBoardFactory{}
}

// CreateWall returns a new impassable square
func (f *DefaultBoardFactory) CreateWall() *Square {
	return NewSquare(Wall)
}

// CreateGround returns a new passable square
func (f *DefaultBoardFactory) CreateGround() *Square {
	return NewSquare(Ground)
}

// CreateBoard wraps a grid of squares created by this factory
func (f *DefaultBoardFactory) CreateBoard(grid [][]*Square) *Board {
	return NewBoard(grid)
}
