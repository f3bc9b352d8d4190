package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/mazechase/game/board"
)

var (
	ErrNoPlayer          = errors.New("level has no player")
	ErrInvalidTransition = errors.New("invalid level transition")
)

// LevelObserver is told once when a level is won or lost
type LevelObserver interface {
	LevelWon()
	LevelLost()
}

// LevelOption configures a level at construction
type LevelOption func(*Level)

// WithTickInterval makes Start run ghost ticks every d. Zero leaves ticking
// to explicit Tick calls.
func WithTickInterval(d time.Duration) LevelOption {
	return func(l *Level) { l.interval = d }
}

// WithLogger sets the logger for lifecycle messages
func WithLogger(log *zap.SugaredLogger) LevelOption {
	return func(l *Level) { l.log = log }
}

// WithObserver registers o for win and loss notifications
func WithObserver(o LevelObserver) LevelOption {
	return func(l *Level) { l.observers = append(l.observers, o) }
}

// WithChangeHook calls fn with a fresh snapshot after every change: ticks,
// accepted moves and lifecycle transitions. fn runs outside the level lock.
func WithChangeHook(fn func(*Snapshot)) LevelOption {
	return func(l *Level) { l.onChange = fn }
}

// Level is a running game on one board. All methods are safe for concurrent
// use; every change happens under a single lock so observers never see a
// half-applied tick.
type Level struct {
	mu sync.Mutex

	board     *board.Board
	player    *Player
	ghosts    []*Ghost
	remaining int

	state State
	ticks int
	moves int

	interval  time.Duration
	stopTimer chan struct{}

	observers []LevelObserver
	onChange  func(*Snapshot)
	log       *zap.SugaredLogger
}

// NewLevel wraps a board and the units already placed on it
func NewLevel(b *board.Board, player *Player, ghosts []*Ghost, pellets []*Pellet, opts ...LevelOption) *Level {
	l := &Level{
		board:  b,
		player: player,
		ghosts: ghosts,
		state:  NotStarted,
		log:    zap.NewNop().Sugar(),
	}
	for _, p := range pellets {
		if p.HasSquare() {
			l.remaining++
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Board returns the level's board. Callers must not move units directly.
func (l *Level) Board() *board.Board {
	return l.board
}

// Player returns the player unit
func (l *Level) Player() *Player {
	return l.player
}

// Ghosts returns the ghosts in creation order
func (l *Level) Ghosts() []*Ghost {
	out := make([]*Ghost, len(l.ghosts))
	copy(out, l.ghosts)
	return out
}

// State returns the lifecycle state
func (l *Level) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Score returns the player's score
func (l *Level) Score() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.player == nil {
		return 0
	}
	return l.player.Score()
}

// RemainingPellets returns the number of pellets still on the board
func (l *Level) RemainingPellets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// TickInterval returns the ghost timer period, zero when ticks are manual
func (l *Level) TickInterval() time.Duration {
	return l.interval
}

// Start moves a new or suspended level to Running and starts the ghost
// timer. Starting a running level does nothing.
func (l *Level) Start() error {
	l.mu.Lock()
	if l.player == nil || !l.player.HasSquare() {
		l.mu.Unlock()
		return ErrNoPlayer
	}
	before := l.state
	switch before {
	case Running:
		l.mu.Unlock()
		return nil
	case NotStarted, Suspended:
	default:
		l.mu.Unlock()
		return fmt.Errorf("%w: cannot start a %s level", ErrInvalidTransition, before)
	}
	l.state = Running
	l.startTimerLocked()
	l.log.Debugw("level started", "from", before, "tick_interval", l.interval)
	notify := l.settleLocked(before, true)
	l.mu.Unlock()
	notify()
	return nil
}

// Stop suspends a running level and freezes the ghost timer. It does
// nothing in any other state.
func (l *Level) Stop() {
	l.mu.Lock()
	if l.state != Running {
		l.mu.Unlock()
		return
	}
	l.state = Suspended
	l.stopTimerLocked()
	l.log.Debugw("level suspended", "ticks", l.ticks)
	notify := l.settleLocked(Running, true)
	l.mu.Unlock()
	notify()
}

// Close stops the ghost timer without changing the state. A closed level
// may still be ticked by hand.
func (l *Level) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimerLocked()
}

func (l *Level) startTimerLocked() {
	if l.interval <= 0 || l.stopTimer != nil {
		return
	}
	stop := make(chan struct{})
	l.stopTimer = stop
	go l.runTimer(stop, l.interval)
}

func (l *Level) stopTimerLocked() {
	if l.stopTimer != nil {
		close(l.stopTimer)
		l.stopTimer = nil
	}
}

func (l *Level) runTimer(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !l.timerTick(stop) {
				return
			}
		}
	}
}

// settleLocked stops the timer on a terminal transition and returns a
// function that delivers notifications once the lock is released.
func (l *Level) settleLocked(before State, changed bool) func() {
	after := l.state
	if after != before && after.Terminal() {
		l.stopTimerLocked()
		l.log.Infow("level finished", "state", after, "score", l.player.Score(), "ticks", l.ticks)
	}

	var snap *Snapshot
	if changed && l.onChange != nil {
		s := l.snapshotLocked()
		snap = &s
	}
	hook := l.onChange
	observers := append([]LevelObserver(nil), l.observers...)

	return func() {
		if after != before {
			for _, o := range observers {
				switch after {
				case Won:
					o.LevelWon()
				case Lost:
					o.LevelLost()
				}
			}
		}
		if snap != nil {
			hook(snap)
		}
	}
}
