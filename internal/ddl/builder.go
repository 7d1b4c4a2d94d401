package ddl

import (
	"strings"
	"sync"

	"sqlviews/internal/dialect"
)

// Builder bundles the dialect-specific DDL helpers a backend provides.
type Builder struct {
	// CreateTable renders a CREATE TABLE statement for the dialect.
	CreateTable func(TableDef) (string, error)
	// MapType maps a logical column type to the dialect's SQL type.
	MapType func(kind string) string
}

var (
	buildersMu sync.RWMutex
	builders   = map[dialect.Name]Builder{}
)

// Register registers (or replaces) the Builder for dialect d. Backend ddl
// packages call it from init().
func Register(d dialect.Name, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[d] = b
}

// For returns the Builder registered for d. A missing CreateTable renders
// with the quoting from d's capability; a missing MapType uses MapType.
func For(d dialect.Name) Builder {
	buildersMu.RLock()
	b := builders[d]
	buildersMu.RUnlock()

	if b.CreateTable == nil {
		c := dialect.Lookup(string(d))
		b.CreateTable = func(t TableDef) (string, error) {
			return RenderCreateTable(t, Renderer{Prefix: "ddl", Ident: c.QuoteIdent, FQN: c.QuoteFQN})
		}
	}
	if b.MapType == nil {
		b.MapType = MapType
	}
	return b
}

// TypeMap maps lowercase logical kinds to SQL types. Kinds missing from
// Types map to Fallback.
type TypeMap struct {
	Types    map[string]string
	Fallback string
}

// Map returns the SQL type for kind, ignoring case and surrounding space.
func (m TypeMap) Map(kind string) string {
	if t, ok := m.Types[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return t
	}
	return m.Fallback
}

var genericTypes = TypeMap{
	Types: map[string]string{
		"int": "BIGINT", "integer": "BIGINT", "bigint": "BIGINT",
		"float": "DOUBLE PRECISION", "double": "DOUBLE PRECISION", "real": "DOUBLE PRECISION",
		"numeric": "NUMERIC", "decimal": "NUMERIC",
		"bool": "BOOLEAN", "boolean": "BOOLEAN",
		"date":      "DATE",
		"timestamp": "TIMESTAMP", "datetime": "TIMESTAMP", "timestamptz": "TIMESTAMP",
	},
	Fallback: "TEXT",
}

// MapType is the logical-to-SQL type mapping used when a dialect has no
// Builder of its own.
func MapType(kind string) string { return genericTypes.Map(kind) }

// KeyTypes returns a copy of cols in which the SQL type of every primary-key
// or unique column is passed through fn. Engines that cannot index unbounded
// types use it to bound their key columns.
func KeyTypes(cols []ColumnDef, fn func(sqlType string) string) []ColumnDef {
	out := make([]ColumnDef, len(cols))
	for i, c := range cols {
		if c.PrimaryKey || c.Unique {
			c.SQLType = fn(c.SQLType)
		}
		out[i] = c
	}
	return out
}

// ResolveTypes returns a copy of cols where every column without an explicit
// SQLType gets one from the dialect's MapType. Columns with neither Type nor
// SQLType are left untouched so callers can report them.
func ResolveTypes(d dialect.Name, cols []ColumnDef) []ColumnDef {
	mapType := For(d).MapType
	out := make([]ColumnDef, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c.SQLType) == "" && strings.TrimSpace(c.Type) != "" {
			c.SQLType = mapType(c.Type)
		}
		out[i] = c
	}
	return out
}
