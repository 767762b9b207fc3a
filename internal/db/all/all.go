// Package all wires every built-in storage backend into the db registry.
// It exists for its side effects:
//
//	import _ "github.com/camilotorresmestra/globant-de/internal/db/all"
//
// makes "sqlite", "postgres", "mssql" and "mysql" available to db.Open.
package all

import (
	_ "github.com/camilotorresmestra/globant-de/internal/db/mssql"
	_ "github.com/camilotorresmestra/globant-de/internal/db/mysql"
	_ "github.com/camilotorresmestra/globant-de/internal/db/postgres"
	_ "github.com/camilotorresmestra/globant-de/internal/db/sqlite"
)
