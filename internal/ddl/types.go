package ddl

// ColumnDef is one declared output column of a view, and one column of the
// table that holds a table-simulated view's rows.
//
// Type is a logical kind ("int", "text", "uuid", ...) that a dialect's
// MapType turns into SQLType; an explicit SQLType wins. PrimaryKey and
// Unique become table constraints and form the view's refresh key.
type ColumnDef struct {
	Name       string
	Type       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Unique     bool
}

// TableDef is a table to create: a possibly schema-qualified name in dotted
// form ("schema.table") and its ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Typed reports whether cols is non-empty and every column has a SQLType,
// i.e. whether a CREATE TABLE can be rendered from it.
func Typed(cols []ColumnDef) bool {
	if len(cols) == 0 {
		return false
	}
	for _, c := range cols {
		if c.SQLType == "" {
			return false
		}
	}
	return true
}
