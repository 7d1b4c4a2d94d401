// Package postgres implements a PostgreSQL-backed storage.Conn on pgx. It is
// the one backend with native materialized views and concurrent refresh.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sqlviews/internal/storage"
)

// Config holds Postgres connection configuration.
type Config struct {
	DSN string // connection string for pgxpool

	// MaxConns caps the pool size; zero keeps the pgxpool default.
	MaxConns int32
}

// Repository is a pgxpool-backed storage.Conn.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository parses the DSN, opens a pool and pings it. It returns the
// Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, pool.Close, nil
}

// Dialect implements storage.Executor.
func (r *Repository) Dialect() string { return "postgresql" }

// Exec implements storage.Executor for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return describe("exec", err)
	}
	return nil
}

// InTx implements storage.Conn. Postgres DDL is transactional, so a failed
// plan leaves no trace after rollback.
func (r *Repository) InTx(ctx context.Context, fn func(storage.Executor) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return describe("begin", err)
	}
	if err := fn(&txExec{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Printf("postgres: rollback failed err=%v", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return describe("commit", err)
	}
	return nil
}

// Close implements storage.Conn.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

type txExec struct {
	tx pgx.Tx
}

func (t *txExec) Dialect() string { return "postgresql" }

func (t *txExec) Exec(ctx context.Context, sql string) error {
	if _, err := t.tx.Exec(ctx, sql); err != nil {
		return describe("exec", err)
	}
	return nil
}

// describe prefixes err with op and, for server errors, surfaces the detail
// and SQLSTATE. The original error stays reachable through errors.As.
func describe(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("postgres: %s: %s (%s): %w", op, pgErr.Detail, pgErr.SQLState(), err)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}
