package view

import (
	"fmt"

	"sqlviews/internal/dialect"
)

// Method is how a view is realized on a dialect.
type Method int

const (
	// MethodView is a plain CREATE VIEW with no storage.
	MethodView Method = iota
	// MethodMaterializedView is a native materialized view.
	MethodMaterializedView
	// MethodTable simulates a materialized view with a plain table.
	MethodTable
)

func (m Method) String() string {
	switch m {
	case MethodView:
		return "view"
	case MethodMaterializedView:
		return "materialized_view"
	case MethodTable:
		return "table"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Resolve picks the realization for cfg on the named dialect using only the
// static capability table.
func Resolve(cfg Config, dialectName string) (Method, error) {
	if !cfg.Materialized {
		return MethodView, nil
	}
	c := dialect.Lookup(dialectName)
	switch {
	case c.SupportsMaterializedView:
		return MethodMaterializedView, nil
	case cfg.MaterializedAsTable:
		return MethodTable, nil
	default:
		return 0, fmt.Errorf("%w: %s has no materialized views and table simulation is off", ErrUnsupportedMaterialization, c.ID)
	}
}
