// Package engine provides the core game logic for the maze chase game.
//
// The engine package implements:
//   - Map parsing from rows of characters into a board and its units
//   - The level lifecycle (not started, running, suspended, won, lost)
//   - Player movement, pellet eating and ghost collisions
//   - Ghost movement on a timer, driven by npc strategies
//   - Map definition loading (JSON or YAML) and validation
//
// Core Types:
//
// MapParser turns text into a Level using a LevelFactory for units and a
// board.BoardFactory for squares. Level owns the board and every unit on it
// and serializes all changes behind a single mutex; renderers read a
// Snapshot, which is a copy taken under that lock.
//
// Usage:
//
//	def, err := engine.LoadDefinition("maps/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := engine.BuildLevel(def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := level.Start(); err != nil {
//		log.Fatal(err)
//	}
//	level.MovePlayer(board.Left)
//	snap := level.Snapshot()
//
// Map Format:
//
// Every row has the same width. '#' is a wall, ' ' is empty ground, '.' is
// ground with a pellet, 'P' is the player start and 'G' a ghost start.
// Exactly one player start is required.
package engine
