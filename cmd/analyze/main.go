// Command analyze prints quick, human-readable heuristics about the map
// files in the maps directory. It summarizes dimensions, counts of pellets
// and ghosts, how far each ghost has to walk to reach the player start,
// and highlights pellets the player can never reach.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/npc"
	"github.com/wricardo/mcp-training/mazechase/validate"
)

// ghostDistance is the walking distance from one ghost start to the player
type ghostDistance struct {
	Name     string
	At       validate.Point
	Distance int // -1 when the ghost can never reach the player
}

func main() {
	dir := "maps"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := mapFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", dir, err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeMap(os.Stdout, file)
	}
}

func mapFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func analyzeMap(w io.Writer, path string) {
	def, err := engine.LoadDefinition(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading map: %v\n", err)
		return
	}

	stats, err := validate.Analyze(def)
	if err != nil {
		fmt.Fprintf(w, "Error analyzing map: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Name: %s\n", stats.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", stats.Width, stats.Height)
	fmt.Fprintf(w, "Walls: %d, Ground: %d\n", stats.Walls, stats.Ground)
	fmt.Fprintf(w, "Pellets: %d (max score %d)\n", stats.Pellets, stats.Pellets*engine.PelletValue)
	if stats.TickIntervalMS == 0 {
		fmt.Fprintf(w, "Ticks: manual\n")
	} else {
		fmt.Fprintf(w, "Ticks: every %dms\n", stats.TickIntervalMS)
	}
	fmt.Fprintf(w, "Player Start: %s\n", stats.Player)

	distances, err := ghostDistances(def)
	if err != nil {
		fmt.Fprintf(w, "Error measuring ghosts: %v\n", err)
		return
	}
	for _, g := range distances {
		if g.Distance < 0 {
			fmt.Fprintf(w, "Ghost %s at %s: cannot reach the player\n", g.Name, g.At)
			continue
		}
		fmt.Fprintf(w, "Ghost %s at %s: %d steps from the player\n", g.Name, g.At, g.Distance)
	}
	if g, ok := nearest(distances); ok && g.Distance <= 3 {
		fmt.Fprintf(w, "⚠️  WARNING: ghost %s starts only %d steps from the player\n", g.Name, g.Distance)
	}

	if len(stats.UnreachablePellets) > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d pellets are unreachable, the map cannot be won!\n", len(stats.UnreachablePellets))
		for i, p := range stats.UnreachablePellets {
			if i == 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(stats.UnreachablePellets)-5)
				break
			}
			fmt.Fprintf(w, "   Unreachable Pellet: %s\n", p)
		}
	} else {
		fmt.Fprintf(w, "✅ All pellets are reachable from the player start\n")
	}
}

// ghostDistances measures the shortest walk from the player start to every
// ghost, in board order.
func ghostDistances(def *engine.MapDefinition) ([]ghostDistance, error) {
	level, err := engine.BuildLevel(def)
	if err != nil {
		return nil, err
	}
	defer level.Close()

	dist := npc.Distances(level.Board(), level.Player().Square())

	var out []ghostDistance
	for _, g := range level.Ghosts() {
		sq := g.Square()
		x, y := sq.Position()
		d, ok := dist[sq]
		if !ok {
			d = -1
		}
		out = append(out, ghostDistance{Name: g.Name(), At: validate.Point{X: x, Y: y}, Distance: d})
	}
	return out, nil
}

// nearest returns the closest reachable ghost, if any
func nearest(distances []ghostDistance) (ghostDistance, bool) {
	best := ghostDistance{Distance: -1}
	for _, g := range distances {
		if g.Distance >= 0 && (best.Distance < 0 || g.Distance < best.Distance) {
			best = g
		}
	}
	return best, best.Distance >= 0
}
