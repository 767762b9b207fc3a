// Package mysql registers the "mysql" storage backend
// (github.com/go-sql-driver/mysql).
package mysql

import (
	"context"
	"errors"
	"fmt"

	driver "github.com/go-sql-driver/mysql"

	"github.com/camilotorresmestra/globant-de/internal/db"
)

// erDupEntry is ER_DUP_ENTRY.
const erDupEntry = 1062

func init() {
	db.Register("mysql", func(ctx context.Context, dsn string) (db.Store, error) {
		return db.OpenSQL(ctx, "mysql", dsn, Dialect{})
	})
}

// Dialect is the MySQL flavour of db.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) CreateTable(t db.Table) string {
	return db.CreateTableIfNotExists(t, columnType)
}

// InsertOrIgnore uses a self-assignment on conflict rather than INSERT
// IGNORE, which would also swallow unrelated errors as warnings.
func (Dialect) InsertOrIgnore(t db.Table) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s = %s",
		t.Name, t.ColumnList(), db.Placeholders(len(t.Columns), db.QuestionMark), t.Key, t.Key)
}

func (Dialect) IsDuplicate(err error) bool {
	var me *driver.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}

func columnType(ct db.ColumnType) string {
	if ct == db.Integer {
		return "BIGINT"
	}
	return "VARCHAR(255)"
}
