// Package view decides how a declared view is realized on a database and
// generates the ordered statements that create, drop and refresh it.
//
// A View pairs a name and optional column declarations with a Config. For a
// given dialect the View resolves to a Method (plain view, native
// materialized view, or a table simulating one) and emits a Plan. Plans are
// executed by the caller inside one transaction per operation; the package
// itself holds no connection and starts no goroutines.
//
// Table-simulated refresh on dialects without transactional DDL (MySQL,
// MariaDB) uses fixed staging names, so refreshes of the same view must be
// serialized by the caller.
package view

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"sqlviews/internal/ddl"
)

// foldKey returns the case-insensitive comparison key for an identifier.
// Casers are stateful, so each call builds its own.
func foldKey(s string) string { return cases.Fold().String(s) }

// View is an immutable view declaration.
type View struct {
	name    string
	cfg     Config
	columns []ddl.ColumnDef
}

// New validates and returns a view declaration. name may be schema-qualified.
func New(name string, cfg Config, columns ...ddl.ColumnDef) (*View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("view: %w: name is required", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("view %q: %w", name, err)
	}

	seen := make(map[string]struct{}, len(columns))
	cols := make([]ddl.ColumnDef, len(columns))
	for i, c := range columns {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("view %q: %w: column %d has no name", name, ErrInvalidConfig, i)
		}
		k := foldKey(c.Name)
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("view %q: %w: duplicate column %q", name, ErrInvalidConfig, c.Name)
		}
		seen[k] = struct{}{}
		cols[i] = c
	}

	return &View{name: name, cfg: cfg, columns: cols}, nil
}

// MustNew is like New but panics on error. It is meant for package-level
// declarations.
func MustNew(name string, cfg Config, columns ...ddl.ColumnDef) *View {
	v, err := New(name, cfg, columns...)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the declared (possibly schema-qualified) name.
func (v *View) Name() string { return v.name }

// Config returns a copy of the view's config.
func (v *View) Config() Config { return v.cfg }

// Columns returns a copy of the declared columns.
func (v *View) Columns() []ddl.ColumnDef {
	out := make([]ddl.ColumnDef, len(v.columns))
	copy(out, v.columns)
	return out
}

// Key returns the primary-key columns in declaration order or, when none
// are declared, the first unique column. It is empty when the view has no
// key at all.
func (v *View) Key() []string {
	var key []string
	for _, c := range v.columns {
		if c.PrimaryKey {
			key = append(key, c.Name)
		}
	}
	if len(key) > 0 {
		return key
	}
	for _, c := range v.columns {
		if c.Unique {
			return []string{c.Name}
		}
	}
	return nil
}

// Method resolves the view's realization on the named dialect.
func (v *View) Method(dialectName string) (Method, error) {
	m, err := Resolve(v.cfg, dialectName)
	if err != nil {
		return 0, fmt.Errorf("view %q: %w", v.name, err)
	}
	return m, nil
}
