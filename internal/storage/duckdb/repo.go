// Package duckdb implements a DuckDB storage.Conn. DuckDB has CREATE TABLE
// AS and transactional DDL but no materialized views, so materialized views
// are always table-simulated here.
package duckdb

import (
	"context"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"sqlviews/internal/storage/sqldb"
)

// Config holds DuckDB connection configuration.
type Config struct {
	// DSN is a database file path, optionally with ?key=value settings.
	// Empty or ":memory:" opens a private in-memory database.
	DSN string
}

func (c Config) dsn() string {
	d := strings.TrimSpace(c.DSN)
	if d == ":memory:" {
		return ""
	}
	return d
}

// Repository is a DuckDB-backed storage.Conn.
type Repository struct {
	*sqldb.Conn
}

// NewRepository opens the database and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	conn, err := sqldb.Open(ctx, "duckdb", cfg.dsn(), "duckdb")
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Conn: conn}, conn.Close, nil
}
