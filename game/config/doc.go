// Package config provides map management for the maze chase game.
//
// Maps are stored as JSON or YAML files in the maps directory. Each file
// defines a name, a description, the ghost tick interval in milliseconds and
// the layout rows:
//
//	name: classic
//	description: Built-in maze with four ghosts
//	tick_interval_ms: 250
//	layout:
//	  - "#######"
//	  - "#P . G#"
//	  - "#######"
//
// Layout characters are '#' wall, ' ' ground, 'P' player start, 'G' ghost
// and '.' pellet. Every definition is validated by building a level from it,
// so a map the manager returns always parses.
//
// Usage:
//
//	manager, err := config.NewManager("maps", log)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	def, err := manager.LoadMap("classic")
//	maps, err := manager.ListMaps()
//	fallback := manager.GetDefault()
//
// When the directory has no "classic" map the first valid map becomes the
// default, and when it has none at all the built-in classic maze is used.
package config
