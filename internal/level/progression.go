// Package level tracks which level the player is on and requests level
// transitions.
package level

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/toycar/internal/model"
	"github.com/udisondev/toycar/internal/prize"
	"github.com/udisondev/toycar/internal/world"
)

const (
	DefaultTotalLevels  = 2
	DefaultTargetPoints = 2
	DefaultRespawnDelay = time.Second
)

// DefaultRespawnPoint is where the robot is placed after a level change.
var DefaultRespawnPoint = model.NewVec3(-17, 1.5, -67)

// World is the level loader used when no Loader is configured, and the
// target of scene clears and repositioning.
type World interface {
	ClearCurrentScene() prize.ClearReport
	LoadLevel(ctx context.Context, level int) error
	ResetRobotPosition(pos model.Vec3)
}

// Loader loads a level with progress and retry UI (the orchestrator).
type Loader interface {
	LoadLevel(ctx context.Context, level int) error
}

// Options configures a Progression. Zero values take the defaults.
type Options struct {
	TotalLevels int
	// TargetPoints maps a level to the points needed to complete it.
	TargetPoints map[int]int
	RespawnPoint *model.Vec3
	RespawnDelay time.Duration
	// AfterFunc schedules the post-transition repositioning.
	AfterFunc func(d time.Duration, f func())
}

// Progression holds the current level. Thread-safe for concurrent access.
type Progression struct {
	world  World
	loader Loader

	total        int
	targets      map[int]int
	respawnPoint model.Vec3
	respawnDelay time.Duration
	afterFunc    func(time.Duration, func())

	mu      sync.Mutex
	current int

	// Очередь запросов загрузки, один воркер на Progression.
	queue    []loadRequest
	seq      uint64
	draining bool
	cancel   context.CancelFunc // отмена загрузки, идущей сейчас

	pending sync.WaitGroup
}

// loadRequest is one queued level load. Only the newest request (seq equal
// to Progression.seq) is executed; older ones are dropped.
type loadRequest struct {
	ctx   context.Context
	level int
	seq   uint64
	clear bool
}

// New creates a Progression at level 1. loader may be nil.
func New(world World, loader Loader, opts Options) *Progression {
	p := &Progression{
		world:        world,
		loader:       loader,
		total:        opts.TotalLevels,
		targets:      opts.TargetPoints,
		respawnPoint: DefaultRespawnPoint,
		respawnDelay: opts.RespawnDelay,
		afterFunc:    opts.AfterFunc,
		current:      1,
	}
	if p.total < 1 {
		p.total = DefaultTotalLevels
	}
	if opts.RespawnPoint != nil {
		p.respawnPoint = *opts.RespawnPoint
	}
	if p.respawnDelay <= 0 {
		p.respawnDelay = DefaultRespawnDelay
	}
	if p.afterFunc == nil {
		p.afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return p
}

// CurrentLevel returns the current level number.
func (p *Progression) CurrentLevel() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// TotalLevels returns the number of levels.
func (p *Progression) TotalLevels() int {
	return p.total
}

// NextLevel advances to the next level and requests its load without
// waiting for it. The robot is repositioned after the respawn delay whether
// or not the load has finished. Returns false at the last level.
func (p *Progression) NextLevel(ctx context.Context) bool {
	p.mu.Lock()
	if p.current >= p.total {
		p.mu.Unlock()
		slog.Debug("already at last level", "level", p.current)
		return false
	}
	p.current++
	level := p.current
	p.enqueueLocked(ctx, level, true)
	p.mu.Unlock()

	slog.Info("advancing level", "level", level, "total", p.total)

	p.afterFunc(p.respawnDelay, func() {
		p.world.ResetRobotPosition(p.respawnPoint)
	})
	return true
}

// ResetLevel goes back to level 1 and requests its load.
func (p *Progression) ResetLevel(ctx context.Context) {
	p.mu.Lock()
	p.current = 1
	p.enqueueLocked(ctx, 1, false)
	p.mu.Unlock()

	slog.Info("resetting to first level")
}

// ReloadLevel requests the current level again.
func (p *Progression) ReloadLevel(ctx context.Context) {
	p.mu.Lock()
	p.enqueueLocked(ctx, p.current, false)
	p.mu.Unlock()
}

// TargetPoints returns the points needed to complete the current level.
func (p *Progression) TargetPoints() int {
	level := p.CurrentLevel()
	if n, ok := p.targets[level]; ok && n > 0 {
		return n
	}
	return DefaultTargetPoints
}

// Wait blocks until every requested load has returned.
func (p *Progression) Wait() {
	p.pending.Wait()
}

// enqueueLocked queues a load of level and supersedes every earlier request:
// queued ones are dropped, the running one is canceled. Caller holds p.mu.
func (p *Progression) enqueueLocked(ctx context.Context, level int, clear bool) {
	p.seq++
	p.queue = append(p.queue, loadRequest{ctx: ctx, level: level, seq: p.seq, clear: clear})
	p.pending.Add(1)

	if p.cancel != nil {
		p.cancel()
	}
	if !p.draining {
		p.draining = true
		go p.drain()
	}
}

// drain executes queued requests in order until the queue is empty.
func (p *Progression) drain() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.draining = false
			p.mu.Unlock()
			return
		}
		req := p.queue[0]
		p.queue = p.queue[1:]

		if req.seq != p.seq {
			p.mu.Unlock()
			slog.Debug("dropping superseded level request", "level", req.level)
			p.pending.Done()
			continue
		}

		ctx, cancel := context.WithCancel(req.ctx)
		p.cancel = cancel
		p.mu.Unlock()

		p.execute(ctx, req)

		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		cancel()
		p.pending.Done()
	}
}

// execute clears the scene if asked and loads through the loader when
// present, else the world.
func (p *Progression) execute(ctx context.Context, req loadRequest) {
	if req.clear {
		if report := p.world.ClearCurrentScene(); len(report.Warnings) > 0 {
			slog.Warn("clearing scene on level change", "removed", report.Removed, "err", report.Err())
		}
	}

	load := p.world.LoadLevel
	if p.loader != nil {
		load = p.loader.LoadLevel
	}

	err := load(ctx, req.level)
	switch {
	case err == nil:
	case errors.Is(err, world.ErrSuperseded),
		ctx.Err() != nil && req.ctx.Err() == nil:
		slog.Debug("level load superseded", "level", req.level, "err", err)
	default:
		slog.Warn("level load request failed", "level", req.level, "err", err)
	}
}
