package config

import (
	"fmt"
	"strings"

	"sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
	"sqlviews/internal/view"
)

// BuildRegistry turns the project's views into a frozen registry, in file
// order. It assumes Validate reported no errors and returns the first
// declaration error otherwise.
func BuildRegistry(p Project) (*view.Registry, error) {
	reg := view.NewRegistry()
	for i, v := range p.Views {
		decl, err := v.Declaration()
		if err != nil {
			return nil, fmt.Errorf("config: views[%d]: %w", i, err)
		}
		if err := reg.Register(decl); err != nil {
			return nil, fmt.Errorf("config: views[%d]: %w", i, err)
		}
	}
	reg.Freeze()
	return reg, nil
}

// Declaration converts v into a view declaration.
func (v View) Declaration() (*view.View, error) {
	cfg := view.Config{
		Materialized:        v.Materialized,
		MaterializedAsTable: v.MaterializedAsTable,
		Concurrently:        v.Concurrently,
	}
	switch {
	case len(v.Definitions) > 0 && strings.TrimSpace(v.Definition) != "":
		// Set both so view.New reports the conflict.
		cfg.Definition = view.SQL(v.Definition)
		cfg.Definer = perDialect(v.Definitions).definer
	case len(v.Definitions) > 0:
		cfg.Definition = perDialect(v.Definitions).query()
	case strings.TrimSpace(v.Definition) != "":
		cfg.Definition = view.SQL(v.Definition)
	}

	cols := make([]ddl.ColumnDef, len(v.Columns))
	for i, c := range v.Columns {
		cols[i] = ddl.ColumnDef{
			Name:       c.Name,
			Type:       c.Type,
			SQLType:    c.SQLType,
			Nullable:   c.Nullable,
			PrimaryKey: c.PrimaryKey,
			Unique:     c.Unique,
		}
	}
	return view.New(v.Name, cfg, cols...)
}

type perDialect map[string]string

// query keys the definitions by canonical dialect name, so "postgres" and
// "postgresql" select the same text.
func (p perDialect) query() view.PerDialect {
	out := make(view.PerDialect, len(p))
	for k, sql := range p {
		if k == string(view.DefaultDialect) {
			out[view.DefaultDialect] = view.SQL(sql)
			continue
		}
		n, _ := dialect.Parse(k)
		out[n] = view.SQL(sql)
	}
	return out
}

func (p perDialect) definer(dialect.Name) view.Query { return p.query() }
