package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/udisondev/toycar/internal/model"
)

// SQLiteStore is a Store backed by a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite file at path and
// applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// Один писатель: SQLite не любит конкурентные транзакции.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}
	if err := migrate(ctx, sqlDB, "sqlite3"); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{db: sqlDB}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LevelBlocks implements Store.
func (s *SQLiteStore) LevelBlocks(ctx context.Context, level int) ([]model.PlacementRecord, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM levels WHERE level = ?`, level,
	).Scan(&n); err != nil {
		return nil, fmt.Errorf("checking level %d: %w", level, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("level %d: %w", level, ErrLevelNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT x, y, z, role, name, model, type
		FROM level_blocks
		WHERE level = ?
		ORDER BY seq`, level)
	if err != nil {
		return nil, fmt.Errorf("loading blocks of level %d: %w", level, err)
	}
	defer rows.Close()

	records := make([]model.PlacementRecord, 0, 16)
	for rows.Next() {
		var (
			x, y, z sql.NullFloat64
			r       row
		)
		if err := rows.Scan(&x, &y, &z, &r.role, &r.name, &r.model, &r.kind); err != nil {
			return nil, fmt.Errorf("scanning block row: %w", err)
		}
		r.x, r.y, r.z = nullable(x), nullable(y), nullable(z)
		records = append(records, r.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block rows: %w", err)
	}

	return records, nil
}

// ReplaceLevel implements Store.
func (s *SQLiteStore) ReplaceLevel(ctx context.Context, level int, records []model.PlacementRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO levels (level, updated_at) VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT (level) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`, level); err != nil {
		return fmt.Errorf("upserting level %d: %w", level, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM level_blocks WHERE level = ?`, level); err != nil {
		return fmt.Errorf("deleting blocks of level %d: %w", level, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO level_blocks (level, seq, x, y, z, role, name, model, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing block insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, level, i, nullFloat(r.X), nullFloat(r.Y), nullFloat(r.Z), r.Role, r.Name, r.Model, r.Type); err != nil {
			return fmt.Errorf("inserting block %d of level %d: %w", i, level, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing level %d: %w", level, err)
	}
	return nil
}

// Levels implements Store.
func (s *SQLiteStore) Levels(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level FROM levels ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	defer rows.Close()

	levels := make([]int, 0, 8)
	for rows.Next() {
		var level int
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("scanning level: %w", err)
		}
		levels = append(levels, level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating levels: %w", err)
	}
	return levels, nil
}

func nullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
