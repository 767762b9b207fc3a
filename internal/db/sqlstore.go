package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Dialect captures what differs between database/sql engines: column
// types, DDL and the conflict-do-nothing insert.
type Dialect interface {
	// Name is used in error messages, e.g. "sqlite".
	Name() string
	// CreateTable returns idempotent DDL for t.
	CreateTable(t Table) string
	// InsertOrIgnore returns a single-row insert that skips existing keys.
	// Arguments are bound in column order.
	InsertOrIgnore(t Table) string
	// IsDuplicate reports whether err is a primary-key violation that must
	// be treated as an ignored duplicate.
	IsDuplicate(err error) bool
}

// SQLStore is a Store over database/sql parameterised by a Dialect. It
// backs the sqlite, mssql and mysql drivers.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an already opened *sql.DB.
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// OpenSQL opens driverName/dsn and pings it so invalid DSNs fail fast.
func OpenSQL(ctx context.Context, driverName, dsn string, d Dialect) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d.Name())
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Name(), err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Name(), err)
	}
	return NewSQLStore(sqlDB, d), nil
}

// DB exposes the underlying pool for backend-specific tuning.
func (s *SQLStore) DB() *sql.DB { return s.db }

// InsertOrIgnore implements Store.
func (s *SQLStore) InsertOrIgnore(ctx context.Context, t Table, rec []any) error {
	if len(rec) != len(t.Columns) {
		return fmt.Errorf("%s: insert %s: record has %d values, table has %d columns",
			s.dialect.Name(), t.Name, len(rec), len(t.Columns))
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.InsertOrIgnore(t), rec...); err != nil && !s.dialect.IsDuplicate(err) {
		return fmt.Errorf("%s: insert %s: %w", s.dialect.Name(), t.Name, err)
	}
	return nil
}

// InsertOrIgnoreMany implements Store with one transaction and a prepared
// statement executed once per record.
func (s *SQLStore) InsertOrIgnoreMany(ctx context.Context, t Table, recs [][]any) error {
	if len(recs) == 0 {
		return nil
	}
	name := s.dialect.Name()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, s.dialect.InsertOrIgnore(t))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: prepare insert %s: %w", name, t.Name, err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		if len(rec) != len(t.Columns) {
			_ = tx.Rollback()
			return fmt.Errorf("%s: insert %s: record %d has %d values, table has %d columns",
				name, t.Name, i, len(rec), len(t.Columns))
		}
		if _, err := stmt.ExecContext(ctx, rec...); err != nil && !s.dialect.IsDuplicate(err) {
			_ = tx.Rollback()
			return fmt.Errorf("%s: insert %s: %w", name, t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", name, err)
	}
	return nil
}

// Query implements Store. []byte values are returned as strings.
func (s *SQLStore) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", s.dialect.Name(), err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s: columns: %w", s.dialect.Name(), err)
	}

	var out []Row
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", s.dialect.Name(), err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", s.dialect.Name(), err)
	}
	return out, nil
}

// EnsureSchema implements Store.
func (s *SQLStore) EnsureSchema(ctx context.Context, tables []Table) error {
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, s.dialect.CreateTable(t)); err != nil {
			return fmt.Errorf("%s: create table %s: %w", s.dialect.Name(), t.Name, err)
		}
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error { return s.db.Close() }

// CreateTableIfNotExists renders the common "CREATE TABLE IF NOT EXISTS"
// form using typeOf for column types.
func CreateTableIfNotExists(t Table, typeOf func(ColumnType) string) string {
	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (" + ColumnDefs(t, typeOf) + ")"
}

// ColumnDefs renders "id BIGINT NOT NULL PRIMARY KEY, name TEXT, ...".
func ColumnDefs(t Table, typeOf func(ColumnType) string) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		def := c.Name + " " + typeOf(c.Type)
		if c.Name == t.Key {
			def += " NOT NULL PRIMARY KEY"
		}
		defs[i] = def
	}
	return strings.Join(defs, ", ")
}

// Placeholders renders n placeholders using ph(i) with i starting at 1.
func Placeholders(n int, ph func(i int) string) string {
	out := make([]string, n)
	for i := range out {
		out[i] = ph(i + 1)
	}
	return strings.Join(out, ", ")
}

// QuestionMark is the "?" placeholder style used by sqlite and mysql.
func QuestionMark(int) string { return "?" }
