// Package mysql implements a MySQL/MariaDB storage.Conn on
// go-sql-driver/mysql. MySQL DDL commits implicitly, which is why table
// refreshes on this backend swap through RENAME TABLE.
package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"sqlviews/internal/storage"
	"sqlviews/internal/storage/sqldb"
)

// Config holds MySQL connection configuration.
type Config struct {
	DSN string

	// Dialect is reported by the connection; "mysql" unless set to "mariadb".
	Dialect string
}

// Repository is a MySQL-backed storage.Conn.
type Repository struct {
	*sqldb.Conn
}

// NewRepository validates and normalizes the DSN, opens the pool and returns
// a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	dialect := cfg.Dialect
	if dialect == "" {
		dialect = "mysql"
	}
	conn, err := sqldb.Open(ctx, "mysql", dsn, dialect)
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Conn: conn}, conn.Close, nil
}

// normalizeDSN parses a go-sql-driver DSN and enables parseTime so DATETIME
// columns scan into time.Time.
func normalizeDSN(dsn string) (string, error) {
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("mysql: DSN must not be empty")
	}
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	return c.FormatDSN(), nil
}

// Exec runs a statement, surfacing the server error number on failure.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	return describe(r.Conn.Exec(ctx, sqlText))
}

// InTx runs fn in a transaction. DDL statements inside it still commit
// implicitly on the server.
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

func describe(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Errorf("mysql error %d: %w", myErr.Number, err)
	}
	return err
}
