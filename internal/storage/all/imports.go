// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their connection factories with the storage package and their CREATE
// TABLE builders with the ddl package.
//
// Importing it makes the following storage kinds available at runtime:
//
//   - "postgres", "postgresql" (sqlviews/internal/storage/postgres)
//   - "mssql", "sqlserver"     (sqlviews/internal/storage/mssql)
//   - "mysql", "mariadb"       (sqlviews/internal/storage/mysql)
//   - "sqlite"                 (sqlviews/internal/storage/sqlite)
//   - "duckdb"                 (sqlviews/internal/storage/duckdb)
//
// Typical usage (in cmd/viewctl/main.go or a similar wiring layer):
//
//	import _ "sqlviews/internal/storage/all" // enable all built-in backends
//
//	conn, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
//	if err != nil {
//	    // handle error
//	}
//	defer conn.Close()
//
//	err = conn.InTx(ctx, func(tx storage.Executor) error {
//	    return registry.CreateAll(ctx, tx)
//	})
//
// A binary that needs only a subset of backends can define its own wiring
// package that imports just those.
package all

import (
	_ "sqlviews/internal/storage/duckdb"
	_ "sqlviews/internal/storage/mssql"
	_ "sqlviews/internal/storage/mysql"
	_ "sqlviews/internal/storage/postgres"
	_ "sqlviews/internal/storage/sqlite"
)
