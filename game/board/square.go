package board

// Kind distinguishes square variants
type Kind string

const (
	Wall   Kind = "wall"
	Ground Kind = "ground"
)

// Square is a single cell of the board. Its passability is fixed when it is
// created; its occupant list changes only through Occupy and Leave.
type Square struct {
	kind      Kind
	x, y      int
	occupants []Unit
}

// NewSquare creates an unplaced square of the given kind
func NewSquare(kind Kind) *Square {
	return &Square{kind: kind, x: -1, y: -1}
}

// Kind returns the square variant
func (s *Square) Kind() Kind {
	return s.kind
}

// Passable reports whether units may enter the square
func (s *Square) Passable() bool {
	return s.kind != Wall
}

// Position returns the coordinates assigned by the board, or (-1,-1) when
// the square is not part of a board yet.
func (s *Square) Position() (x, y int) {
	return s.x, s.y
}

// Occupants returns a copy of the units on the square in arrival order
func (s *Square) Occupants() []Unit {
	out := make([]Unit, len(s.occupants))
	copy(out, s.occupants)
	return out
}

// Contains reports whether u is on the square
func (s *Square) Contains(u Unit) bool {
	return s.indexOf(u) >= 0
}

// HasKind reports whether any occupant is of the given kind
func (s *Square) HasKind(kind UnitKind) bool {
	for _, u := range s.occupants {
		if u.Kind() == kind {
			return true
		}
	}
	return false
}

// BlockedFor reports whether a solid unit other than self or the player
// stands on the square.
func (s *Square) BlockedFor(self Unit) bool {
	for _, u := range s.occupants {
		if u == self || u.Kind() == PlayerUnit {
			continue
		}
		if u.Kind().Solid() {
			return true
		}
	}
	return false
}

func (s *Square) indexOf(u Unit) int {
	for i, o := range s.occupants {
		if o == u {
			return i
		}
	}
	return -1
}
