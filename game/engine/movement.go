package engine

import (
	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/npc"
)

// Tick advances a running level by one step: every ghost moves once and
// collisions are resolved. It returns false, changing nothing, when the
// level is not running.
func (l *Level) Tick() bool {
	return l.TickOutcome().Applied
}

// TickOutcome ticks like Tick and reports the level around the tick
func (l *Level) TickOutcome() Outcome {
	l.mu.Lock()
	out := Outcome{Before: l.snapshotLocked()}
	if l.state != Running {
		out.After = out.Before
		l.mu.Unlock()
		return out
	}
	notify := l.tickLocked()
	out.Applied = true
	out.After = l.snapshotLocked()
	l.mu.Unlock()
	notify()
	return out
}

// timerTick ticks on behalf of the timer goroutine owning stop; a timer that
// has been replaced or stopped does nothing.
func (l *Level) timerTick(stop chan struct{}) bool {
	l.mu.Lock()
	if l.stopTimer != stop || l.state != Running {
		l.mu.Unlock()
		return false
	}
	notify := l.tickLocked()
	l.mu.Unlock()
	notify()
	return true
}

func (l *Level) tickLocked() func() {
	l.ticks++
	for _, g := range l.ghosts {
		if l.state != Running {
			break
		}
		if !g.HasSquare() || g.strategy == nil {
			continue
		}
		dir, ok := g.strategy.Decide(npc.Situation{
			Board:  l.board,
			Self:   g,
			Player: l.player,
		})
		if ok {
			l.step(g, dir)
		}
		l.resolveLocked()
	}
	return l.settleLocked(Running, true)
}

// MovePlayer moves the player one square. Moves into walls or off the board
// are rejected without any change and return false. Walking into a ghost is
// allowed and loses the level.
func (l *Level) MovePlayer(d board.Direction) bool {
	return l.MoveOutcome(d).Applied
}

// MoveOutcome moves like MovePlayer and reports the level around the move
func (l *Level) MoveOutcome(d board.Direction) Outcome {
	l.mu.Lock()
	out := Outcome{Before: l.snapshotLocked()}
	if l.state != Running || l.player == nil || !d.Valid() {
		out.After = out.Before
		l.mu.Unlock()
		return out
	}
	moved := l.step(l.player, d)
	if moved {
		l.moves++
		l.resolveLocked()
	}
	notify := l.settleLocked(Running, moved)
	out.Applied = moved
	out.After = l.snapshotLocked()
	l.mu.Unlock()
	notify()
	return out
}

// step moves u one square in direction d if the target can be entered.
// Ghosts may not enter a square held by another ghost.
func (l *Level) step(u board.Unit, d board.Direction) bool {
	from := u.Square()
	if from == nil {
		return false
	}
	target := l.board.Neighbor(from, d)
	if target == nil || !target.Passable() {
		return false
	}
	if u.Kind() != board.PlayerUnit && target.BlockedFor(u) {
		return false
	}
	u.SetDirection(d)
	board.Occupy(u, target)
	return true
}

// resolveLocked applies what happens on the player's square: a ghost there
// loses the level, pellets there are eaten, and the last pellet wins it.
func (l *Level) resolveLocked() {
	if l.state != Running || l.player == nil {
		return
	}
	square := l.player.Square()
	if square == nil {
		return
	}
	if square.HasKind(board.GhostUnit) {
		l.player.alive = false
		l.state = Lost
		return
	}
	for _, u := range square.Occupants() {
		if pellet, ok := u.(*Pellet); ok {
			board.Leave(square, pellet)
			l.player.addPoints(pellet.Value())
			l.remaining--
		}
	}
	if l.remaining == 0 {
		l.state = Won
	}
}
