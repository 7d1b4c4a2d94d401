package ddl

import (
	"strings"
	"testing"

	gddl "sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

// TestLeaderboardTable renders a keyed view table whose text key would
// exceed the index size limit as NVARCHAR(MAX).
func TestLeaderboardTable(t *testing.T) {
	t.Parallel()

	cols := gddl.ResolveTypes(dialect.SQLServer, []gddl.ColumnDef{
		{Name: "player", Type: "text", PrimaryKey: true},
		{Name: "uid", Type: "uuid", Unique: true},
		{Name: "nickname", Type: "text", Nullable: true},
		{Name: "coins", Type: "int"},
		{Name: "won", Type: "bool"},
	})
	got, err := BuildCreateTableSQL(gddl.TableDef{FQN: "dbo.leaderboard", Columns: cols})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}

	want := "CREATE TABLE [dbo].[leaderboard] (\n" +
		"  [player] NVARCHAR(450) NOT NULL,\n" +
		"  [uid] UNIQUEIDENTIFIER NOT NULL,\n" +
		"  [nickname] NVARCHAR(MAX),\n" +
		"  [coins] BIGINT NOT NULL,\n" +
		"  [won] BIT NOT NULL,\n" +
		"  PRIMARY KEY ([player]),\n" +
		"  UNIQUE ([uid])\n" +
		");"
	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
	if cols[0].SQLType != "NVARCHAR(MAX)" {
		t.Fatalf("BuildCreateTableSQL mutated the caller's columns: %q", cols[0].SQLType)
	}
}

func TestKeyType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"NVARCHAR(MAX)":  "NVARCHAR(450)",
		"nvarchar(max)":  "NVARCHAR(450)",
		"VARCHAR(MAX)":   "VARCHAR(900)",
		"VARBINARY(MAX)": "VARBINARY(900)",
		"NVARCHAR(64)":   "NVARCHAR(64)",
		"BIGINT":         "BIGINT",
	}
	for in, want := range tests {
		if got := keyType(in); got != want {
			t.Fatalf("keyType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTypes(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"int": "BIGINT", " Boolean ": "BIT", "double": "FLOAT",
		"decimal": "DECIMAL(38, 10)", "timestamp": "DATETIME2",
		"timestamptz": "DATETIMEOFFSET", "uuid": "UNIQUEIDENTIFIER",
		"bytes": "VARBINARY(MAX)", "text": "NVARCHAR(MAX)", "": "NVARCHAR(MAX)",
	}
	for kind, want := range tests {
		if got := Types.Map(kind); got != want {
			t.Fatalf("Types.Map(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{FQN: "dbo.leaderboard"})
	if err == nil || !strings.HasPrefix(err.Error(), "mssql ddl:") {
		t.Fatalf("BuildCreateTableSQL() error = %v, want mssql ddl error", err)
	}
	if got != "" {
		t.Fatalf("BuildCreateTableSQL() SQL = %q, want empty on error", got)
	}
}

func TestRegisteredBuilder(t *testing.T) {
	t.Parallel()

	if got := gddl.For(dialect.SQLServer).MapType("uuid"); got != "UNIQUEIDENTIFIER" {
		t.Fatalf("For(mssql).MapType(uuid) = %q, want UNIQUEIDENTIFIER", got)
	}
}
