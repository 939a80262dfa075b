// Package migrations embeds the goose SQL migrations of the placement store.
// The SQL is portable between PostgreSQL and SQLite.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
