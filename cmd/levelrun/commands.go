package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/udisondev/toycar/internal/level"
	"github.com/udisondev/toycar/internal/loading"
	"github.com/udisondev/toycar/internal/modal"
	"github.com/udisondev/toycar/internal/world"
)

var errQuit = errors.New("quit requested")

// game bundles what the stdin commands act on.
type game struct {
	world    *world.World
	progress *level.Progression
	surface  *modal.LogSurface
	orch     *loading.Orchestrator
}

// commandLoop reads one command per line until quit, EOF or ctx ends.
func commandLoop(ctx context.Context, r io.Reader, g *game) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// EOF: keep running until a signal arrives.
				<-ctx.Done()
				return ctx.Err()
			}
			if err := g.exec(ctx, strings.TrimSpace(line)); err != nil {
				return err
			}
		}
	}
}

func (g *game) exec(ctx context.Context, cmd string) error {
	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "next":
		if !g.progress.NextLevel(ctx) {
			slog.Info("already at last level", "level", g.progress.CurrentLevel())
		}
	case "reset":
		g.progress.ResetLevel(ctx)
	case "reload":
		g.progress.ReloadLevel(ctx)
	case "collect":
		g.collect(ctx)
	case "retry":
		g.press(loading.LabelRetry)
	case "cancel":
		g.press(loading.LabelCancel)
	case "status":
		g.status()
	case "quit", "exit":
		return errQuit
	default:
		fmt.Println("commands: next, reset, reload, collect, retry, cancel, status, quit")
	}
	return nil
}

// collect picks up the visible prize nearest to the robot; picking up the
// final prize advances to the next level.
func (g *game) collect(ctx context.Context) {
	p, ok := g.world.NearestPrize(g.world.RobotPosition())
	if !ok {
		slog.Info("nothing to collect")
		return
	}

	final := p.IsFinal()
	if g.world.Collect(p, g.progress.TargetPoints()) {
		slog.Info("target reached, final prize revealed")
	}
	if final {
		slog.Info("final prize collected", "level", g.progress.CurrentLevel())
		g.progress.NextLevel(ctx)
	}
}

// press activates a button of the dialog currently shown.
func (g *game) press(label string) {
	d, ok := g.surface.Current()
	if !ok {
		slog.Info("no dialog shown")
		return
	}
	for _, b := range d.Buttons {
		if !strings.EqualFold(b.Label, label) {
			continue
		}
		if b.OnActivate != nil {
			b.OnActivate()
		}
		return
	}
	slog.Info("dialog has no such button", "button", label, "buttons", d.Labels())
}

func (g *game) status() {
	st := g.orch.State()
	collected, visible := 0, 0
	prizes := g.world.Prizes()
	for _, p := range prizes {
		if p.Collected() {
			collected++
		}
		if p.Visible() {
			visible++
		}
	}
	slog.Info("status",
		"level", g.progress.CurrentLevel(),
		"loaded", g.world.Level(),
		"stage", g.world.Stage(),
		"phase", st.Phase,
		"prizes", len(prizes),
		"visible", visible,
		"collected", collected,
		"target", g.progress.TargetPoints(),
		"robot", g.world.RobotPosition())
}
