// Package dialect holds the static capability table that drives how views are
// realized on each database engine.
//
// The table is keyed by a canonical dialect name. Free-form names coming from
// drivers, DSNs, or config files ("postgres", "postgresql+asyncpg",
// "sqlite3", "sqlserver") are normalized with Parse. Unknown names resolve to
// a conservative capability that supports neither materialized views nor
// concurrent refresh, so callers fall through to the table-simulation or
// error path rather than emitting syntax the engine would reject.
//
// The table can be extended at init time with Register, the same way storage
// backends register their factories.
package dialect

import (
	"sort"
	"strings"
	"sync"
)

// Name is the canonical identifier of a SQL dialect.
type Name string

const (
	PostgreSQL  Name = "postgresql"
	CockroachDB Name = "cockroachdb"
	SQLite      Name = "sqlite"
	DuckDB      Name = "duckdb"
	MySQL       Name = "mysql"
	MariaDB     Name = "mariadb"
	SQLServer   Name = "mssql"
)

// String implements fmt.Stringer.
func (n Name) String() string { return string(n) }

// QuoteStyle selects how identifiers are quoted in generated SQL.
type QuoteStyle int

const (
	// QuoteANSI uses double quotes: "name".
	QuoteANSI QuoteStyle = iota
	// QuoteBacktick uses MySQL-style backticks: `name`.
	QuoteBacktick
	// QuoteBracket uses SQL Server brackets: [name].
	QuoteBracket
)

// Capability describes what a dialect can do for view management.
type Capability struct {
	// ID is the canonical name, e.g. "postgresql".
	ID Name `json:"id"`

	// Title is a human-friendly product name.
	Title string `json:"title"`

	// SupportsMaterializedView reports a native CREATE MATERIALIZED VIEW.
	SupportsMaterializedView bool `json:"supportsMaterializedView"`

	// SupportsConcurrentRefresh reports REFRESH MATERIALIZED VIEW CONCURRENTLY.
	SupportsConcurrentRefresh bool `json:"supportsConcurrentRefresh"`

	// SupportsCreateTableAs reports CREATE TABLE <name> AS <select>.
	SupportsCreateTableAs bool `json:"supportsCreateTableAs"`

	// TransactionalDDL reports whether CREATE/DROP TABLE participate in the
	// enclosing transaction and are undone by ROLLBACK.
	TransactionalDDL bool `json:"transactionalDDL"`

	// AtomicRename reports a multi-table RENAME TABLE a TO b, c TO d that
	// swaps tables in one atomic step.
	AtomicRename bool `json:"atomicRename"`

	// Quote is the identifier quoting style.
	Quote QuoteStyle `json:"quote"`

	// Aliases are alternative names (driver names, URL schemes) for this dialect.
	Aliases []string `json:"aliases,omitempty"`
}

var (
	mu  sync.RWMutex
	all = map[Name]Capability{
		PostgreSQL: {
			ID:                        PostgreSQL,
			Title:                     "PostgreSQL",
			SupportsMaterializedView:  true,
			SupportsConcurrentRefresh: true,
			SupportsCreateTableAs:     true,
			TransactionalDDL:          true,
			Quote:                     QuoteANSI,
			Aliases:                   []string{"postgres", "pgx", "pgsql", "psycopg2", "asyncpg"},
		},
		CockroachDB: {
			ID:                       CockroachDB,
			Title:                    "CockroachDB",
			SupportsMaterializedView: true,
			SupportsCreateTableAs:    true,
			TransactionalDDL:         true,
			Quote:                    QuoteANSI,
			Aliases:                  []string{"cockroach", "crdb"},
		},
		SQLite: {
			ID:                    SQLite,
			Title:                 "SQLite",
			SupportsCreateTableAs: true,
			TransactionalDDL:      true,
			Quote:                 QuoteANSI,
			Aliases:               []string{"sqlite3", "pysqlite", "aiosqlite"},
		},
		DuckDB: {
			ID:                    DuckDB,
			Title:                 "DuckDB",
			SupportsCreateTableAs: true,
			TransactionalDDL:      true,
			Quote:                 QuoteANSI,
		},
		MySQL: {
			ID:                    MySQL,
			Title:                 "MySQL",
			SupportsCreateTableAs: true,
			AtomicRename:          true,
			Quote:                 QuoteBacktick,
			Aliases:               []string{"pymysql", "mysqldb", "aurora-mysql"},
		},
		MariaDB: {
			ID:                    MariaDB,
			Title:                 "MariaDB",
			SupportsCreateTableAs: true,
			AtomicRename:          true,
			Quote:                 QuoteBacktick,
		},
		SQLServer: {
			ID:               SQLServer,
			Title:            "Microsoft SQL Server",
			TransactionalDDL: true,
			Quote:            QuoteBracket,
			Aliases:          []string{"sqlserver", "mssql", "pyodbc", "azure-sql"},
		},
	}
)

// Register adds or replaces the capability for c.ID. Aliases take effect for
// Parse immediately.
func Register(c Capability) {
	if c.ID == "" {
		panic("dialect: Register with empty ID")
	}
	mu.Lock()
	defer mu.Unlock()
	all[c.ID] = c
}

// Parse normalizes a free-form dialect name into its canonical Name. It
// lowercases, trims a driver suffix after '+', and resolves aliases. The
// boolean is false when the name matches no registered dialect; the returned
// Name is then the normalized input.
func Parse(s string) (Name, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(n, '+'); i >= 0 {
		n = n[:i]
	}

	mu.RLock()
	defer mu.RUnlock()

	if _, ok := all[Name(n)]; ok {
		return Name(n), true
	}
	for id, c := range all {
		for _, a := range c.Aliases {
			if a == n {
				return id, true
			}
		}
	}
	return Name(n), false
}

// Get returns the capability for a canonical name.
func Get(n Name) (Capability, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := all[n]
	return c, ok
}

// Lookup parses s and returns its capability. Unknown dialects get a
// conservative capability: no materialized views, no concurrent refresh, no
// CREATE TABLE AS, no transactional DDL, ANSI quoting.
func Lookup(s string) Capability {
	n, ok := Parse(s)
	if ok {
		if c, ok := Get(n); ok {
			return c
		}
	}
	return Capability{ID: n, Title: string(n), Quote: QuoteANSI}
}

// Names returns the registered canonical names, sorted.
func Names() []Name {
	mu.RLock()
	out := make([]Name, 0, len(all))
	for id := range all {
		out = append(out, id)
	}
	mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
