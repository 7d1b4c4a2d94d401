// Package ddl models the tables behind table-simulated views and renders
// their CREATE TABLE statements.
//
// Rendering is shared; what differs per dialect (identifier quoting, the
// logical-to-SQL type map, key column types) lives in the backend packages
// under internal/storage/<kind>/ddl, which Register a Builder at init time.
package ddl

import (
	"fmt"
	"strings"
)

// Renderer carries the dialect-specific pieces RenderCreateTable needs.
type Renderer struct {
	// Prefix labels error messages, e.g. "sqlite ddl".
	Prefix string
	// Ident quotes a column name. Nil leaves names as-is.
	Ident func(string) string
	// FQN quotes a table name. Nil leaves names as-is.
	FQN func(string) string
}

// RenderCreateTable validates t and renders it:
//
//	CREATE TABLE <fqn> (
//	  <col> <type> [NOT NULL],
//	  ...,
//	  [PRIMARY KEY (<pk cols>),]
//	  [UNIQUE (<col>)]
//	);
//
// Every column needs a name and a SQLType. Primary-key columns form one
// composite PRIMARY KEY; other unique columns get a UNIQUE constraint each.
func RenderCreateTable(t TableDef, r Renderer) (string, error) {
	prefix := r.Prefix
	if prefix == "" {
		prefix = "ddl"
	}
	ident, quoteFQN := r.Ident, r.FQN
	if ident == nil {
		ident = func(s string) string { return s }
	}
	if quoteFQN == nil {
		quoteFQN = func(s string) string { return s }
	}

	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: table %s has no columns", prefix, fqn)
	}

	lines := make([]string, 0, len(t.Columns)+2)
	var pks, uniques []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s has no SQL type", prefix, name)
		}

		line := ident(name) + " " + typ
		if !c.Nullable {
			line += " NOT NULL"
		}
		lines = append(lines, line)

		switch {
		case c.PrimaryKey:
			pks = append(pks, ident(name))
		case c.Unique:
			uniques = append(uniques, ident(name))
		}
	}

	if len(pks) > 0 {
		lines = append(lines, "PRIMARY KEY ("+strings.Join(pks, ", ")+")")
	}
	for _, u := range uniques {
		lines = append(lines, "UNIQUE ("+u+")")
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", quoteFQN(fqn), strings.Join(lines, ",\n  ")), nil
}
