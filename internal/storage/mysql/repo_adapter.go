// Package mysql provides a MySQL-backed storage.Conn implementation.
// This adapter wires the MySQL backend into the storage-agnostic factory.
package mysql

import (
	"context"

	"sqlviews/internal/storage"
	_ "sqlviews/internal/storage/mysql/ddl" // register the MySQL DDL builder
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Conn = (*wrappedRepo)(nil)

// init registers the "mysql" and "mariadb" backends with the factory.
func init() {
	for _, kind := range []string{"mysql", "mariadb"} {
		kind := kind
		storage.Register(kind, func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
			r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Dialect: kind})
			if err != nil {
				return nil, err
			}
			return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
		})
	}
}

// wrappedRepo adapts *mysql.Repository to storage.Conn and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() { w.closeFn() }
