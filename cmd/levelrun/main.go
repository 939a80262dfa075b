// Command levelrun is the headless game client: it preloads resources, loads
// levels through the content server with the loading/retry UI, and accepts
// commands on stdin.
//
// Usage:
//
//	TOYCAR_CLIENT_CONFIG=config/client.yaml go run ./cmd/levelrun
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/toycar/internal/config"
	"github.com/udisondev/toycar/internal/events"
	"github.com/udisondev/toycar/internal/level"
	"github.com/udisondev/toycar/internal/loading"
	"github.com/udisondev/toycar/internal/modal"
	"github.com/udisondev/toycar/internal/placement"
	"github.com/udisondev/toycar/internal/resources"
	"github.com/udisondev/toycar/internal/scene"
	"github.com/udisondev/toycar/internal/world"
)

const ClientConfigPath = "config/client.yaml"

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
	cfgPath := ClientConfigPath
	if p := os.Getenv("TOYCAR_CLIENT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadClient(cfgPath)
	if err != nil {
		return fmt.Errorf("loading client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating client config %s: %w", cfgPath, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	slog.Info("levelrun starting",
		"base_url", cfg.BaseURL,
		"level_api_url", cfg.LevelAPIURL,
		"total_levels", cfg.TotalLevels,
		"on_error", cfg.OnError)

	bus := events.Default()
	cache := resources.New(bus)

	logSurface := modal.NewLogSurface(autoActivateLabel(cfg.OnError))
	var (
		surface modal.Surface = logSurface
		hub     *modal.Hub
	)
	if cfg.UIListenAddr != "" {
		hub = modal.NewHub()
		defer hub.Close()
		surface = modal.Tee(logSurface, hub)
	}

	source := placement.NewSource(placement.Options{
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodySize,
	})
	w := world.New(source, cache, scene.New(), world.Options{
		LevelURL:     cfg.LevelURL,
		BaseModelKey: cfg.BaseModelKey,
		CoinSound:    coinSound{},
		RobotStart:   cfg.RobotStart,
	})

	orch := loading.New(w, surface, bus)
	defer orch.Close()

	respawn := cfg.RespawnPoint
	prog := level.New(w, orch, level.Options{
		TotalLevels:  cfg.TotalLevels,
		TargetPoints: cfg.TargetPoints,
		RespawnPoint: &respawn,
		RespawnDelay: cfg.RespawnDelay,
	})

	g, ctx := errgroup.WithContext(ctx)

	if hub != nil {
		g.Go(func() error {
			return serveUI(ctx, cfg.UIListenAddr, hub)
		})
	}

	if err := preload(ctx, cache, cfg.ResourceManifest); err != nil {
		return err
	}

	prog.ResetLevel(ctx)

	if cfg.Watch {
		g.Go(func() error {
			return watchContent(ctx, cfg.WatchPath, prog)
		})
	}

	g.Go(func() error {
		return commandLoop(ctx, os.Stdin, &game{
			world:    w,
			progress: prog,
			surface:  logSurface,
			orch:     orch,
		})
	})

	err = g.Wait()
	prog.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func preload(ctx context.Context, cache *resources.Cache, manifestPath string) error {
	manifest, err := resources.LoadManifest(manifestPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading resource manifest: %w", err)
		}
		slog.Warn("resource manifest not found, starting with empty catalog", "path", manifestPath)
	}
	if err := cache.Preload(ctx, manifest); err != nil {
		return fmt.Errorf("preloading resources: %w", err)
	}
	return nil
}

// autoActivateLabel maps an on_error policy to the button pressed for it.
func autoActivateLabel(policy string) string {
	switch policy {
	case config.OnErrorRetry:
		return loading.LabelRetry
	case config.OnErrorCancel:
		return loading.LabelCancel
	default:
		return ""
	}
}

type coinSound struct{}

func (coinSound) Play() { slog.Info("coin collected") }
