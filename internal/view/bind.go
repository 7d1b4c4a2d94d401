package view

import (
	"fmt"
	"strings"

	"sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

// BoundQuery is a view's query rendered for one dialect, with its declared
// output columns typed for that dialect.
type BoundQuery struct {
	SQL     string
	Columns []ddl.ColumnDef
}

// Bind renders cfg's query for dialectName. A fixed Definition is used as-is;
// a Definer is called with the canonical dialect name. Surrounding whitespace
// and a trailing semicolon are trimmed so the text can be embedded.
func Bind(cfg Config, dialectName string, columns []ddl.ColumnDef) (BoundQuery, error) {
	if err := cfg.validate(); err != nil {
		return BoundQuery{}, err
	}
	d, _ := dialect.Parse(dialectName)

	q := cfg.Definition
	if cfg.Definer != nil {
		q = cfg.Definer(d)
		if q == nil {
			return BoundQuery{}, fmt.Errorf("%w: definer returned no query for %s", ErrInvalidConfig, d)
		}
	}

	sql, err := q.Bind(d)
	if err != nil {
		return BoundQuery{}, err
	}
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	if sql == "" {
		return BoundQuery{}, fmt.Errorf("%w: empty query for %s", ErrInvalidConfig, d)
	}

	return BoundQuery{SQL: sql, Columns: ddl.ResolveTypes(d, columns)}, nil
}
