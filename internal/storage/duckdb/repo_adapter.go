// Package duckdb wires the DuckDB backend into the storage factory.
package duckdb

import (
	"context"

	"sqlviews/internal/storage"
	_ "sqlviews/internal/storage/duckdb/ddl" // register the DuckDB DDL builder
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Conn = (*wrappedRepo)(nil)

func init() {
	storage.Register("duckdb", func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
