package sqlite

import (
	"context"
	"fmt"
	"strings"

	// SQLite driver, pure Go.
	_ "modernc.org/sqlite"

	"sqlviews/internal/storage/sqldb"
)

// Repository is a SQLite connection. SQLite runs DDL inside transactions, so
// table-simulated refreshes are rolled back as a whole on failure.
type Repository struct {
	*sqldb.Conn
	cfg Config
}

// NewRepository opens a SQLite database using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	conn, err := sqldb.Open(ctx, "sqlite", cfg.DSN, "sqlite")
	if err != nil {
		return nil, nil, err
	}
	if cfg.inMemory() {
		conn.DB().SetMaxOpenConns(1)
	}

	// Enable foreign keys by default; ignore error if driver doesn't support it.
	_, _ = conn.DB().ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	return &Repository{Conn: conn, cfg: cfg}, conn.Close, nil
}
