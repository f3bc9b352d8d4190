package board

// UnitKind names the kinds of units that can stand on a square
type UnitKind string

const (
	PlayerUnit UnitKind = "player"
	GhostUnit  UnitKind = "ghost"
	PelletUnit UnitKind = "pellet"
)

// Solid reports whether two units of this kind collide instead of sharing
func (k UnitKind) Solid() bool {
	return k == PlayerUnit || k == GhostUnit
}

// Unit is anything that can be placed on a square. Implementations embed
// Occupant, which is the only way to satisfy the unexported method.
type Unit interface {
	Kind() UnitKind
	HasSquare() bool
	Square() *Square
	Direction() Direction
	SetDirection(d Direction)
	occupant() *Occupant
}

// Occupant holds the placement state shared by every unit
type Occupant struct {
	square *Square
	facing Direction
}

// HasSquare reports whether the unit has been placed
func (o *Occupant) HasSquare() bool {
	return o.square != nil
}

// Square returns the square the unit stands on, or nil
func (o *Occupant) Square() *Square {
	return o.square
}

// MustSquare returns the unit's square and panics for an unplaced unit
func (o *Occupant) MustSquare() *Square {
	if o.square == nil {
		panic("board: unit has no square")
	}
	return o.square
}

// Direction returns the way the unit is facing
func (o *Occupant) Direction() Direction {
	return o.facing
}

// SetDirection changes the way the unit is facing
func (o *Occupant) SetDirection(d Direction) {
	o.facing = d
}

func (o *Occupant) occupant() *Occupant {
	return o
}

// Occupy moves u onto target, leaving its previous square first. Occupying
// the square the unit already stands on changes nothing.
func Occupy(u Unit, target *Square) {
	o := u.occupant()
	if o.square == target {
		return
	}
	if o.square != nil {
		Leave(o.square, u)
	}
	target.occupants = append(target.occupants, u)
	o.square = target
}

// Leave removes u from s. It is a no-op when u is not on s.
// Leaving ends the unit's life on the board: afterwards HasSquare reports
// false until the unit is placed again with Occupy. Eaten pellets are taken
// off this way.
func Leave(s *Square, u Unit) {
	i := s.indexOf(u)
	if i < 0 {
		return
	}
	s.occupants = append(s.occupants[:i], s.occupants[i+1:]...)
	if o := u.occupant(); o.square == s {
		o.square = nil
	}
}
