// Package loading drives level transitions: it clears the scene, shows
// progress, loads the level through the world and, on failure, offers the
// player a retry or cancel choice.
package loading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/toycar/internal/events"
	"github.com/udisondev/toycar/internal/modal"
	"github.com/udisondev/toycar/internal/prize"
	"github.com/udisondev/toycar/internal/world"
)

// Button labels of the error panel.
const (
	LabelRetry  = "Retry"
	LabelCancel = "Cancel"
)

// World is the level loader the orchestrator drives.
type World interface {
	ClearCurrentScene() prize.ClearReport
	LoadLevel(ctx context.Context, level int) error
}

// Orchestrator owns the load state and the in-flight level marker.
// Load passes are serialized; State may be read concurrently.
type Orchestrator struct {
	world   World
	surface modal.Surface

	// loadMu serializes passes, including the wait for a decision.
	loadMu sync.Mutex

	mu       sync.Mutex
	state    State
	inFlight int

	unsubscribe func()
	closeOnce   sync.Once
}

// New creates an Orchestrator and subscribes its progress listener on bus.
// A nil bus leaves the listener unsubscribed.
func New(world World, surface modal.Surface, bus *events.Bus) *Orchestrator {
	o := &Orchestrator{
		world:       world,
		surface:     surface,
		unsubscribe: func() {},
	}
	if bus != nil {
		o.unsubscribe = bus.Subscribe(o.onEvent)
	}
	return o
}

// Close deregisters the progress listener. Idempotent.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(o.unsubscribe)
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LoadLevel loads level, re-entering the same pipeline for every retry.
// Returns nil once the level is loaded, an error wrapping ErrCanceled if the
// player canceled, or the context error if ctx ended while waiting.
// A pass overtaken by a newer clear or load returns world.ErrSuperseded
// without showing the error panel.
func (o *Orchestrator) LoadLevel(ctx context.Context, level int) error {
	o.loadMu.Lock()
	defer o.loadMu.Unlock()

	for attempt := 1; ; attempt++ {
		err := o.pass(ctx, level)
		if err == nil {
			return nil
		}
		if errors.Is(err, world.ErrSuperseded) {
			slog.Debug("level load superseded", "level", level)
			o.finish()
			return fmt.Errorf("level %d: %w", level, err)
		}

		slog.Warn("level load failed", "level", level, "attempt", attempt, "err", err)

		decision, derr := o.awaitDecision(ctx, level, err)
		if derr != nil {
			o.finish()
			return fmt.Errorf("awaiting decision for level %d: %w", level, derr)
		}

		slog.Info("level load decision", "level", level, "decision", decision)
		if decision == DecisionCancel {
			o.finish()
			return fmt.Errorf("level %d: %w: %w", level, ErrCanceled, err)
		}
	}
}

// pass runs one attempt: clear, show progress, load.
func (o *Orchestrator) pass(ctx context.Context, level int) error {
	o.mu.Lock()
	o.inFlight = level
	o.state = State{Phase: PhaseLoading, Level: level}
	o.mu.Unlock()

	o.surface.Show(modal.Dialog{Icon: modal.IconLoading, Message: loadingMessage(level, 0)})

	if report := o.world.ClearCurrentScene(); len(report.Warnings) > 0 {
		slog.Warn("clearing scene before load", "level", level, "removed", report.Removed, "err", report.Err())
	}

	err := o.world.LoadLevel(ctx, level)

	o.mu.Lock()
	o.inFlight = 0
	if err == nil {
		o.state = State{Phase: PhaseIdle}
	} else {
		o.state = State{Phase: PhaseAwaitingRetry, Level: level, Err: err}
	}
	o.mu.Unlock()

	if err != nil {
		return err
	}

	o.surface.Hide()
	return nil
}

// awaitDecision shows the error panel and blocks until a button is pressed
// or ctx ends.
func (o *Orchestrator) awaitDecision(ctx context.Context, level int, cause error) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	decisions := make(chan Decision, 1)
	choose := func(d Decision) func() {
		return func() {
			select {
			case decisions <- d:
			default:
				// уже выбрано
			}
		}
	}

	o.surface.Show(modal.Dialog{
		Icon:    modal.IconError,
		Message: errorMessage(level, cause),
		Buttons: []modal.Button{
			{Label: LabelRetry, OnActivate: choose(DecisionRetry)},
			{Label: LabelCancel, OnActivate: choose(DecisionCancel)},
		},
	})

	select {
	case d := <-decisions:
		return d, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// finish returns to Idle and hides the panel.
func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.state = State{Phase: PhaseIdle}
	o.inFlight = 0
	o.mu.Unlock()

	o.surface.Hide()
}

// onEvent is the progress listener. It never touches the error panel.
func (o *Orchestrator) onEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.ResourceProgress:
		o.mu.Lock()
		if o.state.Phase == PhaseAwaitingRetry {
			o.mu.Unlock()
			return
		}
		level := o.inFlight
		if level != 0 {
			o.state.Percent = e.Percent
		}
		o.mu.Unlock()

		msg := resourcesMessage(e.Percent)
		if level != 0 {
			msg = loadingMessage(level, e.Percent)
		}
		o.surface.Show(modal.Dialog{Icon: modal.IconLoading, Message: msg})

	case events.ResourcesReady:
		o.mu.Lock()
		busy := o.inFlight != 0 || o.state.Phase == PhaseAwaitingRetry
		o.mu.Unlock()

		if !busy {
			o.surface.Hide()
		}
	}
}
