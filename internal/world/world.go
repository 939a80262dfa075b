// Package world owns the level content of a running game: it fetches
// placements for a level, resolves them into prizes attached to the scene,
// and keeps the robot position.
package world

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/toycar/internal/model"
	"github.com/udisondev/toycar/internal/placement"
	"github.com/udisondev/toycar/internal/prize"
)

// Source provides the placement batch for a level URL.
// *placement.Source implements it.
type Source interface {
	Load(ctx context.Context, levelURL string) placement.Batch
}

// Options configures a World.
type Options struct {
	// LevelURL maps a level number to its remote API URL. Nil or an empty
	// result skips the remote stage.
	LevelURL func(level int) string
	// BaseModelKey is the catalog key tried before a placeholder.
	BaseModelKey string
	CoinSound    prize.Sound
	RobotStart   model.Vec3
}

// World is the level loader used by the orchestrator and the progression.
// Thread-safe for concurrent access.
type World struct {
	source   Source
	resolver *prize.Resolver
	opts     Options

	mu         sync.Mutex
	generation uint64
	level      int
	stage      placement.Stage
	robot      model.Vec3
}

// New creates a World resolving prizes from catalog into scene.
func New(source Source, catalog prize.Catalog, scene prize.Scene, opts Options) *World {
	return &World{
		source: source,
		resolver: prize.NewResolver(catalog, scene, prize.Options{
			BaseModelKey: opts.BaseModelKey,
			Sound:        opts.CoinSound,
		}),
		opts:  opts,
		robot: opts.RobotStart,
	}
}

// ClearCurrentScene removes every prize of the current level. It never
// fails; detach problems come back as warnings. Any load pass still in
// flight is superseded.
func (w *World) ClearCurrentScene() prize.ClearReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.level = 0
	return w.resolver.Clear()
}

// LoadLevel fetches the placements of level and resolves them into the scene.
func (w *World) LoadLevel(ctx context.Context, level int) error {
	if level < 1 {
		return fmt.Errorf("loading level %d: %w", level, ErrInvalidLevel)
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.mu.Unlock()

	var levelURL string
	if w.opts.LevelURL != nil {
		levelURL = w.opts.LevelURL(level)
	}

	batch := w.source.Load(ctx, levelURL)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading level %d: %w", level, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		slog.Debug("discarding superseded placements", "level", level, "records", len(batch.Records))
		return fmt.Errorf("loading level %d: %w", level, ErrSuperseded)
	}

	prizes, err := w.resolver.Resolve(batch.Records, batch.Hints)
	if err != nil {
		return fmt.Errorf("loading level %d: %w", level, err)
	}

	w.level = level
	w.stage = batch.Stage

	slog.Info("level loaded",
		"level", level,
		"stage", batch.Stage,
		"prizes", len(prizes),
		"hints", len(batch.Hints))
	return nil
}

// Level returns the currently loaded level, 0 if none.
func (w *World) Level() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// Stage returns the placement stage that produced the current level.
func (w *World) Stage() placement.Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Prizes returns the prizes of the current level.
func (w *World) Prizes() []*prize.Prize {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resolver.Prizes()
}

// NearestPrize returns the visible, not yet collected prize closest to pos.
func (w *World) NearestPrize(pos model.Vec3) (*prize.Prize, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		best     *prize.Prize
		bestDist float64
	)
	for _, p := range w.resolver.Prizes() {
		if !p.Visible() || p.Collected() {
			continue
		}
		if d := pos.DistanceSquared(p.Position); best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, best != nil
}

// Collect collects p and, once target regular prizes are collected, reveals
// the final prize. Returns true when the target is reached.
func (w *World) Collect(p *prize.Prize, target int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !p.Collect() {
		return false
	}

	prizes := w.resolver.Prizes()
	collected := 0
	for _, q := range prizes {
		if !q.IsFinal() && q.Collected() {
			collected++
		}
	}
	if collected < target {
		return false
	}

	for _, q := range prizes {
		if q.IsFinal() && !q.Collected() {
			q.Reveal()
		}
	}
	return true
}

// ResetRobotPosition moves the robot to pos.
func (w *World) ResetRobotPosition(pos model.Vec3) {
	w.mu.Lock()
	w.robot = pos
	w.mu.Unlock()

	slog.Debug("robot repositioned", "pos", pos)
}

// RobotPosition returns the current robot position.
func (w *World) RobotPosition() model.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.robot
}

// CoinSound returns the sound played on prize collection.
func (w *World) CoinSound() prize.Sound {
	return w.opts.CoinSound
}
