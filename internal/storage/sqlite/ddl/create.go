// Package ddl registers the SQLite table builder used for table-simulated
// views. SQLite types columns by affinity, so logical kinds collapse to
// INTEGER, REAL, NUMERIC, BLOB and TEXT; dates, timestamps and uuids are
// stored as TEXT.
package ddl

import (
	gddl "sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

var lite = dialect.Lookup(string(dialect.SQLite))

// Types is the SQLite logical type map.
var Types = gddl.TypeMap{
	Types: map[string]string{
		"int": "INTEGER", "integer": "INTEGER", "bigint": "INTEGER",
		"bool": "INTEGER", "boolean": "INTEGER",
		"float": "REAL", "double": "REAL", "real": "REAL",
		"numeric": "NUMERIC", "decimal": "NUMERIC",
		"blob": "BLOB", "bytes": "BLOB",
	},
	Fallback: "TEXT",
}

func init() {
	gddl.Register(dialect.SQLite, gddl.Builder{CreateTable: BuildCreateTableSQL, MapType: Types.Map})
}

// BuildCreateTableSQL renders t with double-quoted identifiers; dotted
// names such as "main.events" are quoted per segment.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.RenderCreateTable(t, gddl.Renderer{
		Prefix: "sqlite ddl",
		Ident:  lite.QuoteIdent,
		FQN:    lite.QuoteFQN,
	})
}
