// Package mssql registers the "mssql" storage backend
// (github.com/microsoft/go-mssqldb). SQL Server has no ON CONFLICT, so the
// insert is guarded by NOT EXISTS and a racing primary-key violation is
// classified as a duplicate.
package mssql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/camilotorresmestra/globant-de/internal/db"
)

const (
	errPKViolation     = 2627
	errUniqueIndexDupe = 2601
)

func init() {
	db.Register("mssql", func(ctx context.Context, dsn string) (db.Store, error) {
		return db.OpenSQL(ctx, "sqlserver", dsn, Dialect{})
	})
}

// Dialect is the SQL Server flavour of db.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }

func (Dialect) CreateTable(t db.Table) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		t.Name, t.Name, db.ColumnDefs(t, columnType))
}

func (Dialect) InsertOrIgnore(t db.Table) string {
	keyPos := 1
	for i, c := range t.Columns {
		if c.Name == t.Key {
			keyPos = i + 1
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = %s)",
		t.Name, t.ColumnList(), db.Placeholders(len(t.Columns), placeholder),
		t.Name, t.Key, placeholder(keyPos))
}

func (Dialect) IsDuplicate(err error) bool {
	var num int32
	var me mssql.Error
	var pe *mssql.Error
	switch {
	case errors.As(err, &me):
		num = me.Number
	case errors.As(err, &pe):
		num = pe.Number
	default:
		return false
	}
	return num == errPKViolation || num == errUniqueIndexDupe
}

func placeholder(i int) string { return "@p" + strconv.Itoa(i) }

func columnType(ct db.ColumnType) string {
	if ct == db.Integer {
		return "BIGINT"
	}
	return "NVARCHAR(255)"
}
