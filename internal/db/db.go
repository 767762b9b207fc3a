// Package db is the storage boundary of the loader. It defines the narrow
// Store contract the ingestion and analytics code depends on, the table
// layout of the three datasets, and a registry that lets concrete backends
// (sqlite, postgres, mssql, mysql) plug themselves in from init().
//
// Every write is conflict-do-nothing on the table's primary key: inserting
// an id that already exists is not an error and does not overwrite.
package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Row is one result row keyed by column name (or alias).
type Row map[string]any

// Store is the persistence contract consumed by the loader and analytics.
type Store interface {
	// InsertOrIgnore writes one record; a duplicate key is a no-op.
	InsertOrIgnore(ctx context.Context, t Table, rec []any) error
	// InsertOrIgnoreMany writes recs inside a single transaction. A failure
	// rolls back the whole call; duplicates are skipped, not failures.
	InsertOrIgnoreMany(ctx context.Context, t Table, recs [][]any) error
	// Query runs a read-only statement and returns every row in order.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	// EnsureSchema creates missing tables; existing ones are left alone.
	EnsureSchema(ctx context.Context, tables []Table) error
	Close() error
}

// Opener connects to a backend and returns a ready Store.
type Opener func(ctx context.Context, dsn string) (Store, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]Opener{}
)

// Register makes a backend available under driver. It is typically called
// from a backend package's init().
func Register(driver string, fn Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[driver] = fn
}

// Open connects to the backend registered for driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	openersMu.RLock()
	fn, ok := openers[driver]
	openersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for driver=%q (have %v)", driver, Drivers())
	}
	return fn(ctx, dsn)
}

// Drivers lists registered backend names, sorted.
func Drivers() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()
	out := make([]string, 0, len(openers))
	for k := range openers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
