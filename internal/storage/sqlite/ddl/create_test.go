package ddl

import (
	"strings"
	"testing"

	gddl "sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

// TestLeaderboardTable renders the table behind a keyed leaderboard view
// from logical column types.
func TestLeaderboardTable(t *testing.T) {
	t.Parallel()

	cols := gddl.ResolveTypes(dialect.SQLite, []gddl.ColumnDef{
		{Name: "position", Type: "int", PrimaryKey: true},
		{Name: "uid", Type: "uuid", Unique: true},
		{Name: "coins", Type: "bigint"},
		{Name: "win_rate", Type: "float", Nullable: true},
		{Name: "updated_at", Type: "timestamp", Nullable: true},
	})
	got, err := BuildCreateTableSQL(gddl.TableDef{FQN: "main.leaderboard", Columns: cols})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}

	want := `CREATE TABLE "main"."leaderboard" (` + "\n" +
		`  "position" INTEGER NOT NULL,` + "\n" +
		`  "uid" TEXT NOT NULL,` + "\n" +
		`  "coins" INTEGER NOT NULL,` + "\n" +
		`  "win_rate" REAL,` + "\n" +
		`  "updated_at" TEXT,` + "\n" +
		`  PRIMARY KEY ("position"),` + "\n" +
		`  UNIQUE ("uid")` + "\n" +
		`);`
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestTypes(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"int": "INTEGER", " BigInt ": "INTEGER", "boolean": "INTEGER",
		"double": "REAL", "decimal": "NUMERIC", "bytes": "BLOB",
		"uuid": "TEXT", "date": "TEXT", "timestamptz": "TEXT", "": "TEXT",
	}
	for kind, want := range tests {
		if got := Types.Map(kind); got != want {
			t.Fatalf("Types.Map(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	_, err := BuildCreateTableSQL(gddl.TableDef{FQN: "leaderboard", Columns: []gddl.ColumnDef{{Name: "uid", Type: "uuid"}}})
	if err == nil || !strings.HasPrefix(err.Error(), "sqlite ddl:") {
		t.Fatalf("BuildCreateTableSQL() error = %v, want sqlite ddl error", err)
	}
}

func TestRegisteredBuilder(t *testing.T) {
	t.Parallel()

	b := gddl.For(dialect.SQLite)
	if got := b.MapType("bool"); got != "INTEGER" {
		t.Fatalf("For(sqlite).MapType(bool) = %q, want INTEGER", got)
	}
	sql, err := b.CreateTable(gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: "a", SQLType: "TEXT"}}})
	if err != nil || !strings.HasPrefix(sql, `CREATE TABLE "t"`) {
		t.Fatalf("For(sqlite).CreateTable() = %q, %v", sql, err)
	}
}
