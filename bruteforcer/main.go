// Command bruteforcer plays maze chase sessions automatically through the
// REST API. Every attempt resets the level and walks greedily to the
// nearest pellet while steering clear of ghosts; it keeps retrying until
// the level is won or the attempts run out.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/logging"
)

type playOptions struct {
	MaxMoves    int
	ManualTicks bool          // call tick after every step
	Delay       time.Duration // pause between steps
	Poll        time.Duration // wait before re-reading state when there is no safe move
}

type attemptResult struct {
	Moves    int
	Waits    int
	Snapshot *engine.Snapshot
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// playAttempt resets the session and plays until the level ends or
// MaxMoves steps have been taken
func playAttempt(ctx context.Context, client *Client, strategy *GreedyStrategy, opts playOptions, log *zap.SugaredLogger) (*attemptResult, error) {
	strategy.Reset()
	if _, err := client.Reset(ctx); err != nil {
		return nil, err
	}
	snap, err := client.Start(ctx)
	if err != nil {
		return nil, err
	}

	result := &attemptResult{Snapshot: snap}
	for step := 0; snap.State == engine.Running && step < opts.MaxMoves; step++ {
		dir := strategy.NextMove(snap)
		if dir != "" {
			move, err := client.Move(ctx, dir)
			if err != nil {
				return result, err
			}
			snap = move.Snapshot
			if move.Success {
				result.Moves++
			}
			log.Debugw("move", "dir", dir, "ok", move.Success, "score", snap.Score, "left", snap.RemainingPellets)
		} else {
			result.Waits++
		}
		result.Snapshot = snap

		if snap.State != engine.Running {
			break
		}

		switch {
		case opts.ManualTicks:
			tick, err := client.Tick(ctx)
			if err != nil {
				return result, err
			}
			snap = tick.Snapshot
		case dir == "":
			if err := sleep(ctx, opts.Poll); err != nil {
				return result, err
			}
			if snap, err = client.GetState(ctx); err != nil {
				return result, err
			}
		}
		result.Snapshot = snap

		if err := sleep(ctx, opts.Delay); err != nil {
			return result, err
		}
	}
	return result, nil
}

// resumeOrCreate reuses the saved session when it still exists
func resumeOrCreate(ctx context.Context, client *Client, sessionID, mapID string, log *zap.SugaredLogger) (manualTicks bool, err error) {
	if sessionID != "" {
		client.sessionID = sessionID
		session, err := client.GetSession(ctx)
		if err == nil {
			log.Infow("resuming session", "session", session.ID, "map", session.MapName)
			return session.TickIntervalMS == 0, nil
		}
		log.Warnw("failed to resume session (may be expired), creating a new one", "session", sessionID, "error", err)
	}

	session, err := client.CreateSession(ctx, mapID)
	if err != nil {
		return false, err
	}
	log.Infow("session created", "session", session.ID, "map", session.MapName,
		"pellets", session.Snapshot.RemainingPellets, "ghosts", len(session.Snapshot.Ghosts))
	return session.TickIntervalMS == 0, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	log := logging.New(logging.Options{Debug: cmd.Bool("v")})
	defer log.Sync()

	log.Infow("connecting to game server", "url", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	sessionFile := cmd.String("session-file")
	savedSessionID := cmd.String("continue")
	if savedSessionID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	manualTicks, err := resumeOrCreate(ctx, client, savedSessionID, cmd.String("map"), log)
	if err != nil {
		return err
	}
	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Warnw("failed to save session ID", "error", err)
		}
	}

	opts := playOptions{
		MaxMoves:    int(cmd.Int("max-moves")),
		ManualTicks: manualTicks,
		Delay:       cmd.Duration("delay"),
		Poll:        50 * time.Millisecond,
	}
	strategy := NewGreedyStrategy(int(cmd.Int("safe-distance")))

	maxAttempts := int(cmd.Int("max-attempts"))
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := playAttempt(ctx, client, strategy, opts, log)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}

		snap := result.Snapshot
		log.Infow("attempt finished", "attempt", attempt, "state", snap.State, "moves", result.Moves,
			"waits", result.Waits, "score", snap.Score, "left", snap.RemainingPellets)

		if snap.State == engine.Won {
			log.Infow("🎉 VICTORY", "attempt", attempt, "moves", result.Moves, "session", client.sessionID)
			return nil
		}
	}

	return cli.Exit(fmt.Sprintf("failed to win after %d attempts (session %s)", maxAttempts, client.sessionID), 1)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play maze chase sessions automatically through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "map", Usage: "Map to play (default map when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "Remember the session ID here between runs"},
			&cli.IntFlag{Name: "max-moves", Value: 3000, Usage: "Maximum steps per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 100, Usage: "Maximum attempts before giving up"},
			&cli.IntFlag{Name: "safe-distance", Value: 2, Usage: "Steps to keep between the player and ghosts"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between steps"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
