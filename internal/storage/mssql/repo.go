// Package mssql implements a Microsoft SQL Server storage.Conn on
// go-mssqldb. SQL Server has no CREATE TABLE AS, so materialized views are
// realized from declared column types; its DDL is transactional.
package mssql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"sqlviews/internal/storage"
	"sqlviews/internal/storage/sqldb"
)

// Config holds MSSQL connection configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed storage.Conn.
type Repository struct {
	*sqldb.Conn
}

// NewRepository validates the DSN, opens the pool and returns a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := validateDSN(cfg.DSN); err != nil {
		return nil, nil, err
	}
	conn, err := sqldb.Open(ctx, "sqlserver", cfg.DSN, "mssql")
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Conn: conn}, conn.Close, nil
}

func validateDSN(dsn string) (msdsn.Config, error) {
	if strings.TrimSpace(dsn) == "" {
		return msdsn.Config{}, fmt.Errorf("mssql: DSN must not be empty")
	}
	p, err := msdsn.Parse(dsn)
	if err != nil {
		return msdsn.Config{}, fmt.Errorf("mssql dsn: %w", err)
	}
	return p, nil
}

// Exec runs a statement, surfacing the server error number on failure.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	return describe(r.Conn.Exec(ctx, sqlText))
}

// InTx runs fn in a transaction with server errors described the same way
// as Exec.
func (r *Repository) InTx(ctx context.Context, fn func(storage.Executor) error) error {
	return r.Conn.InTx(ctx, func(tx storage.Executor) error {
		return fn(describingExec{tx})
	})
}

type describingExec struct {
	storage.Executor
}

func (d describingExec) Exec(ctx context.Context, sqlText string) error {
	return describe(d.Executor.Exec(ctx, sqlText))
}

// describe annotates SQL Server errors with their number and state, e.g.
// "mssql error 2714 state 6: There is already an object named ...".
func describe(err error) error {
	if err == nil {
		return nil
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return fmt.Errorf("mssql error %d state %d: %w", msErr.Number, msErr.State, err)
	}
	return err
}
