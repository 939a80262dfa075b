package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/toycar/internal/model"
)

// PostgresStore is a Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL and returns a store.
// The schema must already be migrated.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool. Close closes the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// LevelBlocks implements Store.
func (s *PostgresStore) LevelBlocks(ctx context.Context, level int) ([]model.PlacementRecord, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM levels WHERE level = $1)`, level,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking level %d: %w", level, err)
	}
	if !exists {
		return nil, fmt.Errorf("level %d: %w", level, ErrLevelNotFound)
	}

	query := `
		SELECT x, y, z, role, name, model, type
		FROM level_blocks
		WHERE level = $1
		ORDER BY seq
	`
	rows, err := s.pool.Query(ctx, query, level)
	if err != nil {
		return nil, fmt.Errorf("loading blocks of level %d: %w", level, err)
	}
	defer rows.Close()

	records := make([]model.PlacementRecord, 0, 16)
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.x, &r.y, &r.z, &r.role, &r.name, &r.model, &r.kind); err != nil {
			return nil, fmt.Errorf("scanning block row: %w", err)
		}
		records = append(records, r.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block rows: %w", err)
	}

	return records, nil
}

// ReplaceLevel implements Store.
func (s *PostgresStore) ReplaceLevel(ctx context.Context, level int, records []model.PlacementRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `
		INSERT INTO levels (level, updated_at) VALUES ($1, CURRENT_TIMESTAMP)
		ON CONFLICT (level) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`, level); err != nil {
		return fmt.Errorf("upserting level %d: %w", level, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM level_blocks WHERE level = $1`, level); err != nil {
		return fmt.Errorf("deleting blocks of level %d: %w", level, err)
	}

	if len(records) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"level_blocks"},
			[]string{"level", "seq", "x", "y", "z", "role", "name", "model", "type"},
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				r := records[i]
				return []any{level, i, r.X, r.Y, r.Z, r.Role, r.Name, r.Model, r.Type}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying blocks of level %d: %w", level, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing level %d: %w", level, err)
	}
	return nil
}

// Levels implements Store.
func (s *PostgresStore) Levels(ctx context.Context) ([]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT level FROM levels ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	levels, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	return levels, nil
}
