// Command placementd serves level placements: the level API backed by the
// placement store, plus the static fallback and model-hint files.
//
// Usage:
//
//	TOYCAR_SERVER_CONFIG=config/placementd.yaml go run ./cmd/placementd
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/toycar/internal/config"
	"github.com/udisondev/toycar/internal/content"
	"github.com/udisondev/toycar/internal/db"
)

const ServerConfigPath = "config/placementd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ServerConfigPath
	if p := os.Getenv("TOYCAR_SERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadPlacementServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	dsn, err := cfg.StoreDSN()
	if err != nil {
		return err
	}
	store, err := db.Open(ctx, cfg.Driver, dsn)
	if err != nil {
		return fmt.Errorf("opening placement store: %w", err)
	}
	defer store.Close()

	levels, err := store.Levels(ctx)
	if err != nil {
		return fmt.Errorf("listing levels: %w", err)
	}
	slog.Info("placement store ready", "driver", cfg.Driver, "levels", levels)

	srv := content.NewServer(store, content.Options{
		StaticDir: cfg.StaticDir,
		Gzip:      cfg.Gzip,
	})
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
