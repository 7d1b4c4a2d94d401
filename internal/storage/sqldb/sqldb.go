// Package sqldb implements storage.Conn over database/sql. The sqlite,
// mysql, mssql and duckdb backends build on it; postgres uses pgx directly.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"sqlviews/internal/storage"
)

// PingTimeout bounds the initial ping in Open.
const PingTimeout = 5 * time.Second

// Conn is a database/sql-backed storage.Conn.
type Conn struct {
	db      *sql.DB
	dialect string
}

var _ storage.Conn = (*Conn)(nil)

// New wraps an open *sql.DB. dialect is reported by Dialect.
func New(db *sql.DB, dialect string) *Conn {
	return &Conn{db: db, dialect: dialect}
}

// Open opens driverName with dsn and pings it, failing fast on bad DSNs.
func Open(ctx context.Context, driverName, dsn, dialect string) (*Conn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", dialect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", dialect, err)
	}
	return New(db, dialect), nil
}

// DB exposes the underlying pool.
func (c *Conn) DB() *sql.DB { return c.db }

// Dialect implements storage.Executor.
func (c *Conn) Dialect() string { return c.dialect }

// Exec implements storage.Executor.
func (c *Conn) Exec(ctx context.Context, sqlText string) error {
	if _, err := c.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("%s: exec: %w", c.dialect, err)
	}
	return nil
}

// InTx implements storage.Conn.
func (c *Conn) InTx(ctx context.Context, fn func(storage.Executor) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", c.dialect, err)
	}
	if err := fn(&Tx{tx: tx, dialect: c.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("%s: rollback failed err=%v", c.dialect, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", c.dialect, err)
	}
	return nil
}

// Close implements storage.Conn.
func (c *Conn) Close() { _ = c.db.Close() }

// Tx is the Executor handed to InTx callbacks.
type Tx struct {
	tx      *sql.Tx
	dialect string
}

// Dialect implements storage.Executor.
func (t *Tx) Dialect() string { return t.dialect }

// Exec implements storage.Executor.
func (t *Tx) Exec(ctx context.Context, sqlText string) error {
	if _, err := t.tx.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("%s: exec: %w", t.dialect, err)
	}
	return nil
}

// QueryStrings runs a query and returns every row with each column
// formatted by fmt. It is meant for diagnostics and tests.
func (c *Conn) QueryStrings(ctx context.Context, query string) ([][]string, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", c.dialect, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s: columns: %w", c.dialect, err)
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", c.dialect, err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", c.dialect, err)
	}
	return out, nil
}
