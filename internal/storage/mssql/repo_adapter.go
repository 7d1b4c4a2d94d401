// Package mssql provides an MSSQL-backed storage.Conn implementation.
// This adapter wires the MSSQL backend into the storage-agnostic factory.
package mssql

import (
	"context"

	"sqlviews/internal/storage"
	_ "sqlviews/internal/storage/mssql/ddl" // register the T-SQL DDL builder
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Conn = (*wrappedRepo)(nil)

func init() {
	factory := func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	}
	storage.Register("mssql", factory)
	storage.Register("sqlserver", factory)
}

// wrappedRepo adapts *mssql.Repository to storage.Conn and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
