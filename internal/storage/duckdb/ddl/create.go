// Package ddl provides DuckDB helpers for generating CREATE TABLE statements
// from the generic ddl.TableDef model.
package ddl

import (
	gddl "sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

var duck = dialect.Lookup(string(dialect.DuckDB))

// Types is the DuckDB logical type map.
var Types = gddl.TypeMap{
	Types: map[string]string{
		"int": "BIGINT", "integer": "BIGINT", "bigint": "BIGINT",
		"bool": "BOOLEAN", "boolean": "BOOLEAN",
		"float": "DOUBLE", "double": "DOUBLE", "real": "DOUBLE",
		"numeric": "DECIMAL(38, 10)", "decimal": "DECIMAL(38, 10)",
		"date":      "DATE",
		"timestamp": "TIMESTAMP", "datetime": "TIMESTAMP",
		"timestamptz": "TIMESTAMPTZ",
		"uuid":        "UUID",
		"json":        "JSON",
		"blob":        "BLOB", "bytes": "BLOB",
	},
	Fallback: "VARCHAR",
}

func init() {
	gddl.Register(dialect.DuckDB, gddl.Builder{CreateTable: BuildCreateTableSQL, MapType: Types.Map})
}

// BuildCreateTableSQL returns a DuckDB CREATE TABLE statement with
// double-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.RenderCreateTable(t, gddl.Renderer{
		Prefix: "duckdb ddl",
		Ident:  duck.QuoteIdent,
		FQN:    duck.QuoteFQN,
	})
}
