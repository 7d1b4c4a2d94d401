// Package storage defines the connection collaborator view plans run on and
// a factory registry for database backends.
//
// Backends live in subpackages (postgres, sqlite, mysql, mssql, duckdb) and
// register a Factory for their kind in init(). Callers blank-import
// internal/storage/all and open a Conn with New, staying backend-agnostic.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Executor runs single SQL statements. Its method set matches view.Executor,
// so any Executor can run a view plan.
type Executor interface {
	// Dialect returns the dialect name of the connection, e.g. "postgresql".
	Dialect() string
	Exec(ctx context.Context, sql string) error
}

// Conn is an open database handle.
type Conn interface {
	Executor

	// InTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as-is.
	InTx(ctx context.Context, fn func(tx Executor) error) error

	// Close releases the underlying pool.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "postgres", "sqlite".
	Kind string
	// DSN is passed to the backend's driver.
	DSN string
}

// Factory opens a Conn for cfg.
type Factory func(ctx context.Context, cfg Config) (Conn, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the Factory for kind. Backends call it
// from init().
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Conn using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Conn, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}
