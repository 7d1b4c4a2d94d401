package view

import (
	"fmt"

	"sqlviews/internal/dialect"
)

// Query is a logical query that can be rendered for a dialect.
type Query interface {
	Bind(d dialect.Name) (string, error)
}

// SQL is a dialect-independent query text.
type SQL string

// Bind returns the query text unchanged.
func (s SQL) Bind(dialect.Name) (string, error) { return string(s), nil }

// DefaultDialect is the PerDialect key used when no entry matches.
const DefaultDialect dialect.Name = "default"

// PerDialect selects query text by dialect, falling back to DefaultDialect.
type PerDialect map[dialect.Name]SQL

// Bind returns the text for d or the default entry.
func (p PerDialect) Bind(d dialect.Name) (string, error) {
	if s, ok := p[d]; ok {
		return string(s), nil
	}
	if s, ok := p[DefaultDialect]; ok {
		return string(s), nil
	}
	return "", fmt.Errorf("%w: no definition for dialect %q", ErrInvalidConfig, d)
}

// Definer builds the query for a dialect. It must depend on d only; it may
// be called once per create and once per refresh.
type Definer func(d dialect.Name) Query

// Config is the declarative part of a view.
//
// Exactly one of Definition and Definer must be set. When Materialized is
// false, MaterializedAsTable and Concurrently are ignored.
type Config struct {
	Definition Query
	Definer    Definer

	// Materialized asks for persisted, refreshable storage.
	Materialized bool
	// MaterializedAsTable allows a plain table when the dialect has no
	// native materialized views.
	MaterializedAsTable bool
	// Concurrently asks for a refresh that does not block readers. It needs
	// dialect support and a declared key; otherwise refresh is downgraded.
	Concurrently bool
}

func (c Config) validate() error {
	switch {
	case c.Definition != nil && c.Definer != nil:
		return fmt.Errorf("%w: definition and definer are mutually exclusive", ErrInvalidConfig)
	case c.Definition == nil && c.Definer == nil:
		return fmt.Errorf("%w: one of definition or definer is required", ErrInvalidConfig)
	}
	return nil
}
