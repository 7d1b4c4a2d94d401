// Package postgres provides a Postgres-backed storage.Conn. This adapter wires
// the backend into the storage-agnostic factory by registering a constructor
// at init time; cmd/viewctl obtains a Conn via storage.New(...) without
// importing this package directly.
package postgres

import (
	"context"

	"sqlviews/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Conn by delegating to *postgres.Repository
// while providing a Close method that calls the close function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Ensure wrappedRepo satisfies storage.Conn at compile time.
var _ storage.Conn = (*wrappedRepo)(nil)

// Close implements storage.Conn.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the backend under "postgres" and "postgresql".
func init() {
	factory := func(ctx context.Context, cfg storage.Config) (storage.Conn, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	}
	storage.Register("postgres", factory)
	storage.Register("postgresql", factory)
}
