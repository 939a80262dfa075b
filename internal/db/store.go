// Package db persists level placements. PostgreSQL (pgx) and SQLite
// (modernc) stores share one schema managed by goose migrations.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/udisondev/toycar/internal/model"
)

// ErrLevelNotFound is returned for levels that were never stored.
var ErrLevelNotFound = errors.New("level not found")

// Store reads and writes level placements.
type Store interface {
	// LevelBlocks returns the records of level in stored order.
	LevelBlocks(ctx context.Context, level int) ([]model.PlacementRecord, error)
	// ReplaceLevel atomically replaces every record of level.
	ReplaceLevel(ctx context.Context, level int, records []model.PlacementRecord) error
	// Levels returns the stored level numbers in ascending order.
	Levels(ctx context.Context) ([]int, error)
	Close() error
}

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open migrates the database and opens a store for driver.
// dsn is a PostgreSQL URL or an SQLite file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		if err := RunMigrations(ctx, dsn); err != nil {
			return nil, err
		}
		return OpenPostgres(ctx, dsn)
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// row is the scanned shape shared by both stores.
type row struct {
	x, y, z                 *float64
	role, name, model, kind string
}

func (r row) record() model.PlacementRecord {
	return model.PlacementRecord{
		X:     r.x,
		Y:     r.y,
		Z:     r.z,
		Role:  r.role,
		Name:  r.name,
		Model: r.model,
		Type:  r.kind,
	}
}
