// Package ddl registers the MySQL and MariaDB table builder. Identifiers are
// quoted with backticks.
//
// TEXT and BLOB columns cannot be indexed without a prefix length, so key
// columns of those types are narrowed to VARCHAR(255) and VARBINARY(255).
package ddl

import (
	"strings"

	gddl "sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

var my = dialect.Lookup(string(dialect.MySQL))

// Types is the MySQL logical type map.
var Types = gddl.TypeMap{
	Types: map[string]string{
		"int": "BIGINT", "integer": "BIGINT", "bigint": "BIGINT",
		"bool": "TINYINT(1)", "boolean": "TINYINT(1)",
		"float": "DOUBLE", "double": "DOUBLE", "real": "DOUBLE",
		"numeric": "DECIMAL(38, 10)", "decimal": "DECIMAL(38, 10)",
		"date":      "DATE",
		"timestamp": "DATETIME(6)", "datetime": "DATETIME(6)", "timestamptz": "DATETIME(6)",
		"uuid": "CHAR(36)",
		"json": "JSON",
		"blob": "LONGBLOB", "bytes": "LONGBLOB",
	},
	Fallback: "LONGTEXT",
}

func init() {
	b := gddl.Builder{CreateTable: BuildCreateTableSQL, MapType: Types.Map}
	gddl.Register(dialect.MySQL, b)
	gddl.Register(dialect.MariaDB, b)
}

// BuildCreateTableSQL renders t with backtick-quoted identifiers, bounding
// key column types first.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	t.Columns = gddl.KeyTypes(t.Columns, keyType)
	return gddl.RenderCreateTable(t, gddl.Renderer{
		Prefix: "mysql ddl",
		Ident:  my.QuoteIdent,
		FQN:    my.QuoteFQN,
	})
}

func keyType(sqlType string) string {
	switch strings.ToUpper(strings.TrimSpace(sqlType)) {
	case "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT":
		return "VARCHAR(255)"
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB":
		return "VARBINARY(255)"
	}
	return sqlType
}
