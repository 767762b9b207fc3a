// Package sqlite registers the "sqlite" storage backend (modernc.org/sqlite,
// pure Go). It is the default backend and the one tests run against.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/camilotorresmestra/globant-de/internal/db"
)

// busyTimeoutMS matches the 30s lock wait the service has always used.
const busyTimeoutMS = 30000

var busyTimeoutPragma = fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMS)

func init() {
	db.Register("sqlite", func(ctx context.Context, dsn string) (db.Store, error) {
		return Open(ctx, dsn)
	})
}

// Dialect is the SQLite flavour of db.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) CreateTable(t db.Table) string {
	return db.CreateTableIfNotExists(t, columnType)
}

func (Dialect) InsertOrIgnore(t db.Table) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		t.Name, t.ColumnList(), db.Placeholders(len(t.Columns), db.QuestionMark), t.Key)
}

// IsDuplicate is always false: ON CONFLICT DO NOTHING never raises.
func (Dialect) IsDuplicate(error) bool { return false }

func columnType(ct db.ColumnType) string {
	if ct == db.Integer {
		return "INTEGER"
	}
	return "TEXT"
}

// Open connects to a SQLite database. DSN is a file path, a "file:" URI,
// ":memory:", or a SQLAlchemy-style "sqlite:///path" URL.
//
// The pool is limited to one connection: SQLite serialises writers anyway,
// and an in-memory database only exists on the connection that created it.
// The busy timeout travels in the DSN so every pooled connection gets it.
func Open(ctx context.Context, dsn string) (*db.SQLStore, error) {
	s, err := db.OpenSQL(ctx, "sqlite", normalizeDSN(dsn), Dialect{})
	if err != nil {
		return nil, err
	}
	s.DB().SetMaxOpenConns(1)
	return s, nil
}

func normalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if rest, ok := strings.CutPrefix(dsn, "sqlite:///"); ok {
		dsn = rest
	}
	if dsn == "" || strings.Contains(dsn, "_pragma=busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + busyTimeoutPragma
}
