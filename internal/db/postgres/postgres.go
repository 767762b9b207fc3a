// Package postgres registers the "postgres" storage backend using pgx v5.
// Chunks are written as one transaction carrying a pgx.Batch of
// INSERT ... ON CONFLICT (id) DO NOTHING statements.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camilotorresmestra/globant-de/internal/db"
)

func init() {
	db.Register("postgres", func(ctx context.Context, dsn string) (db.Store, error) {
		return New(ctx, dsn)
	})
}

// pgPool is the subset of *pgxpool.Pool the store uses; tests substitute
// a fake so no server is needed.
type pgPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store is a Postgres-backed db.Store.
type Store struct {
	pool pgPool
}

var _ db.Store = (*Store)(nil)

// New opens a pgxpool for dsn and pings it.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// InsertOrIgnore implements db.Store.
func (s *Store) InsertOrIgnore(ctx context.Context, t db.Table, rec []any) error {
	if len(rec) != len(t.Columns) {
		return fmt.Errorf("postgres: insert %s: record has %d values, table has %d columns", t.Name, len(rec), len(t.Columns))
	}
	if _, err := s.pool.Exec(ctx, insertSQL(t), rec...); err != nil {
		return fmt.Errorf("postgres: insert %s: %w", t.Name, pgErr(err))
	}
	return nil
}

// InsertOrIgnoreMany implements db.Store.
func (s *Store) InsertOrIgnoreMany(ctx context.Context, t db.Table, recs [][]any) error {
	if len(recs) == 0 {
		return nil
	}
	stmt := insertSQL(t)
	b := &pgx.Batch{}
	for i, rec := range recs {
		if len(rec) != len(t.Columns) {
			return fmt.Errorf("postgres: insert %s: record %d has %d values, table has %d columns", t.Name, i, len(rec), len(t.Columns))
		}
		b.Queue(stmt, rec...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("postgres: insert %s: %w", t.Name, pgErr(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Query implements db.Store. Column keys are the result field names.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]db.Row, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", pgErr(err))
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	var out []db.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: values: %w", err)
		}
		row := make(db.Row, len(fds))
		for i, fd := range fds {
			row[fd.Name] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", pgErr(err))
	}
	return out, nil
}

// EnsureSchema implements db.Store.
func (s *Store) EnsureSchema(ctx context.Context, tables []db.Table) error {
	for _, t := range tables {
		if _, err := s.pool.Exec(ctx, db.CreateTableIfNotExists(t, columnType)); err != nil {
			return fmt.Errorf("postgres: create table %s: %w", t.Name, pgErr(err))
		}
	}
	return nil
}

// Close implements db.Store.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func insertSQL(t db.Table) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		t.Name, t.ColumnList(), db.Placeholders(len(t.Columns), dollar), t.Key)
}

func dollar(i int) string { return fmt.Sprintf("$%d", i) }

func columnType(ct db.ColumnType) string {
	if ct == db.Integer {
		return "BIGINT"
	}
	return "TEXT"
}

// pgErr surfaces the server's detail and SQLSTATE when present.
func pgErr(err error) error {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Detail != "" {
		return fmt.Errorf("%w (%s: %s)", err, pe.SQLState(), pe.Detail)
	}
	return err
}
