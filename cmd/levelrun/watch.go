package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/toycar/internal/level"
	"github.com/udisondev/toycar/internal/watch"
)

// watchContent reloads the current level whenever a content file changes.
func watchContent(ctx context.Context, dir string, prog *level.Progression) error {
	w, err := watch.New(dir)
	if err != nil {
		return fmt.Errorf("watching content: %w", err)
	}
	defer w.Close()

	slog.Info("watching content", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			slog.Info("content changed, reloading level", "file", name, "level", prog.CurrentLevel())
			prog.ReloadLevel(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("content watcher error", "err", err)
		}
	}
}
