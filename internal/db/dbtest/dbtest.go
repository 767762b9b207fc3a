// Package dbtest provides an in-memory SQLite store with the loader schema
// applied, for tests in other packages.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/camilotorresmestra/globant-de/internal/db"
	"github.com/camilotorresmestra/globant-de/internal/db/sqlite"
)

// NewSQLite opens a fresh in-memory store; it is closed on test cleanup.
func NewSQLite(tb testing.TB) *db.SQLStore {
	tb.Helper()
	ctx := context.Background()
	s, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	if err := s.EnsureSchema(ctx, db.Tables); err != nil {
		tb.Fatalf("ensure schema: %v", err)
	}
	return s
}

// Count returns the number of rows in table.
func Count(tb testing.TB, s db.Store, table string) int {
	tb.Helper()
	rows, err := s.Query(context.Background(), fmt.Sprintf("SELECT COUNT(*) AS n FROM %s", table))
	if err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	n, ok := db.Int64(rows[0]["n"])
	if !ok {
		tb.Fatalf("count %s: unexpected value %#v", table, rows[0]["n"])
	}
	return int(n)
}

// Dump returns every row of table ordered by id, for state comparisons.
func Dump(tb testing.TB, s db.Store, t db.Table) []db.Row {
	tb.Helper()
	rows, err := s.Query(context.Background(), fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", t.ColumnList(), t.Name, t.Key))
	if err != nil {
		tb.Fatalf("dump %s: %v", t.Name, err)
	}
	return rows
}
