// Package board provides the spatial primitives of the maze: squares, the
// units that stand on them, and the rectangular grid that ties squares
// together.
//
// Occupancy:
//
// A Square hosts any number of units in insertion order, and a Unit stands on
// at most one Square. Occupy and Leave are the only functions that change
// either side of that relation, so a unit's square always lists the unit.
//
// Concrete units live in other packages and embed Occupant:
//
//	type Pellet struct {
//		board.Occupant
//	}
//
//	func (p *Pellet) Kind() board.UnitKind { return board.PelletUnit }
//
// Grid:
//
// Board wraps a fixed matrix of squares built by a BoardFactory. Lookups
// outside the grid fail with *OutOfBoundsError, and Neighbor returns nil at
// the edges; the grid never wraps around.
package board
