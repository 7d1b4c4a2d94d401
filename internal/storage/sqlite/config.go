// Package sqlite implements a SQLite-backed storage.Conn.
package sqlite

import "strings"

// Config holds SQLite connection configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:views.db?cache=shared"
	//   "views.db"
	//   ":memory:"
	DSN string
}

// inMemory reports whether the DSN names a private in-memory database, which
// only exists on the connection that created it.
func (c Config) inMemory() bool {
	d := strings.TrimSpace(c.DSN)
	return d == ":memory:" || strings.Contains(d, "mode=memory")
}
