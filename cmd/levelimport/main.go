// Command levelimport loads Tiled maps into the placement store. Every map's
// "Prizes" object group replaces the stored records of its level.
//
// Usage:
//
//	go run ./cmd/levelimport -dir maps
//	go run ./cmd/levelimport -file maps/level2.tmx -level 2
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/toycar/internal/config"
	"github.com/udisondev/toycar/internal/db"
	"github.com/udisondev/toycar/internal/tmx"
)

func main() {
	dir := flag.String("dir", "", "directory with .tmx maps")
	file := flag.String("file", "", "single .tmx map")
	levelNum := flag.Int("level", 0, "level number for -file (default: from the map)")
	cfgPath := flag.String("config", "", "server config (default: $TOYCAR_SERVER_CONFIG or config/placementd.yaml)")
	dryRun := flag.Bool("dry-run", false, "parse maps without writing")
	flag.Parse()

	if (*dir == "") == (*file == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -dir or -file is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *cfgPath, *dir, *file, *levelNum, *dryRun); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, dir, file string, levelNum int, dryRun bool) error {
	if cfgPath == "" {
		cfgPath = "config/placementd.yaml"
		if p := os.Getenv("TOYCAR_SERVER_CONFIG"); p != "" {
			cfgPath = p
		}
	}
	cfg, err := config.LoadPlacementServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	levels, err := readMaps(dir, file, levelNum)
	if err != nil {
		return err
	}
	for _, l := range levels {
		slog.Info("map parsed", "level", l.Number, "path", l.Path, "records", len(l.Records))
	}
	if dryRun {
		return nil
	}

	dsn, err := cfg.StoreDSN()
	if err != nil {
		return err
	}
	store, err := db.Open(ctx, cfg.Driver, dsn)
	if err != nil {
		return fmt.Errorf("opening placement store: %w", err)
	}
	defer store.Close()

	return importLevels(ctx, store, levels)
}

func readMaps(dir, file string, levelNum int) ([]tmx.Level, error) {
	if dir != "" {
		return tmx.LoadDir(os.DirFS(dir), ".")
	}

	fsys := os.DirFS(filepath.Dir(file))
	name := filepath.Base(file)
	if levelNum > 0 {
		recs, err := tmx.LoadPlacements(fsys, name)
		if err != nil {
			return nil, err
		}
		return []tmx.Level{{Number: levelNum, Path: file, Records: recs}}, nil
	}

	l, err := tmx.LoadLevel(fsys, name)
	if err != nil {
		return nil, err
	}
	return []tmx.Level{l}, nil
}

// importLevels writes the levels concurrently.
func importLevels(ctx context.Context, store db.Store, levels []tmx.Level) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, l := range levels {
		g.Go(func() error {
			if err := store.ReplaceLevel(ctx, l.Number, l.Records); err != nil {
				return fmt.Errorf("importing %s: %w", l.Path, err)
			}
			slog.Info("level imported", "level", l.Number, "records", len(l.Records))
			return nil
		})
	}
	return g.Wait()
}
