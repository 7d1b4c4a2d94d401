// Package ddl registers the SQL Server table builder. SQL Server has no
// CREATE TABLE ... AS SELECT, so every table-simulated view on it is created
// from its declared columns through this package.
//
// Index keys are limited to 900 bytes, so key columns of unbounded types are
// narrowed: NVARCHAR(MAX) becomes NVARCHAR(450), VARBINARY(MAX) becomes
// VARBINARY(900).
package ddl

import (
	"strings"

	gddl "sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

var tsql = dialect.Lookup(string(dialect.SQLServer))

// Types is the SQL Server logical type map.
var Types = gddl.TypeMap{
	Types: map[string]string{
		"int": "BIGINT", "integer": "BIGINT", "bigint": "BIGINT",
		"bool": "BIT", "boolean": "BIT",
		"float": "FLOAT", "double": "FLOAT", "real": "REAL",
		"numeric": "DECIMAL(38, 10)", "decimal": "DECIMAL(38, 10)",
		"date":      "DATE",
		"timestamp": "DATETIME2", "datetime": "DATETIME2",
		"timestamptz": "DATETIMEOFFSET",
		"uuid":        "UNIQUEIDENTIFIER",
		"blob":        "VARBINARY(MAX)", "bytes": "VARBINARY(MAX)",
	},
	Fallback: "NVARCHAR(MAX)",
}

func init() {
	gddl.Register(dialect.SQLServer, gddl.Builder{CreateTable: BuildCreateTableSQL, MapType: Types.Map})
}

// BuildCreateTableSQL renders t as T-SQL with bracket-quoted identifiers,
// e.g. [dbo].[leaderboard], bounding key column types first.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	t.Columns = gddl.KeyTypes(t.Columns, keyType)
	return gddl.RenderCreateTable(t, gddl.Renderer{
		Prefix: "mssql ddl",
		Ident:  tsql.QuoteIdent,
		FQN:    tsql.QuoteFQN,
	})
}

func keyType(sqlType string) string {
	switch strings.ToUpper(strings.TrimSpace(sqlType)) {
	case "NVARCHAR(MAX)":
		return "NVARCHAR(450)"
	case "VARCHAR(MAX)", "VARBINARY(MAX)":
		return strings.Replace(strings.ToUpper(sqlType), "(MAX)", "(900)", 1)
	}
	return sqlType
}
