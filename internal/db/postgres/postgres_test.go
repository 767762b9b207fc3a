package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilotorresmestra/globant-de/internal/db"
)

type fakePool struct {
	tx       *fakeTx
	beginErr error
	execs    []string
	execErr  error
	rows     *fakeRows
	closed   bool
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func (p *fakePool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), p.execErr
}

func (p *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) { return p.rows, nil }
func (p *fakePool) Close()                                                  { p.closed = true }

type fakeTx struct {
	pgx.Tx
	batch      *pgx.Batch
	batchErr   error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	t.batch = b
	return fakeResults{err: t.batchErr}
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeResults struct {
	pgx.BatchResults
	err error
}

func (r fakeResults) Close() error { return r.err }

type fakeRows struct {
	pgx.Rows
	fields []string
	data   [][]any
	i      int
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.fields))
	for i, f := range r.fields {
		out[i] = pgconn.FieldDescription{Name: f}
	}
	return out
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.i-1], nil }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 {}

func TestInsertOrIgnoreMany_QueuesOneStatementPerRecordAndCommits(t *testing.T) {
	tx := &fakeTx{}
	s := &Store{pool: &fakePool{tx: tx}}

	err := s.InsertOrIgnoreMany(context.Background(), db.Departments, [][]any{
		{int64(1), "Supply Chain"},
		{int64(2), "Maintenance"},
		{int64(3), "Staff"},
	})
	require.NoError(t, err)

	require.NotNil(t, tx.batch)
	assert.Equal(t, 3, tx.batch.Len())
	assert.Equal(t,
		"INSERT INTO departments (id, department) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
		tx.batch.QueuedQueries[0].SQL)
	assert.Equal(t, []any{int64(2), "Maintenance"}, tx.batch.QueuedQueries[1].Arguments)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestInsertOrIgnoreMany_BatchErrorRollsBack(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", Message: "null value", Detail: "Failing row contains (1, null)."}
	tx := &fakeTx{batchErr: pgErr}
	s := &Store{pool: &fakePool{tx: tx}}

	err := s.InsertOrIgnoreMany(context.Background(), db.Jobs, [][]any{{int64(1), nil}})
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*pgconn.PgError))
	assert.Contains(t, err.Error(), "23502: Failing row contains")
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestInsertOrIgnoreMany_ArityCheckedBeforeBegin(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("must not begin")}
	s := &Store{pool: pool}

	err := s.InsertOrIgnoreMany(context.Background(), db.Jobs, [][]any{{int64(1), "a", "extra"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0 has 3 values")
}

func TestInsertOrIgnoreMany_Empty(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("must not begin")}
	require.NoError(t, (&Store{pool: pool}).InsertOrIgnoreMany(context.Background(), db.Jobs, nil))
}

func TestEnsureSchemaAndInsertOrIgnore(t *testing.T) {
	pool := &fakePool{}
	s := &Store{pool: pool}
	ctx := context.Background()

	require.NoError(t, s.EnsureSchema(ctx, db.Tables))
	require.NoError(t, s.InsertOrIgnore(ctx, db.Jobs, []any{int64(1), "Recruiter"}))
	require.Len(t, pool.execs, 4)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS hired_employees (id BIGINT NOT NULL PRIMARY KEY, name TEXT, datetime TEXT, department_id BIGINT, job_id BIGINT)",
		pool.execs[2])
	assert.Equal(t, "INSERT INTO jobs (id, job) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING", pool.execs[3])

	require.NoError(t, s.Close())
	assert.True(t, pool.closed)
}

func TestQueryKeysRowsByFieldName(t *testing.T) {
	pool := &fakePool{rows: &fakeRows{
		fields: []string{"id", "department"},
		data:   [][]any{{int64(1), "HR"}, {int64(2), nil}},
	}}
	s := &Store{pool: pool}

	rows, err := s.Query(context.Background(), "SELECT id, department FROM departments")
	require.NoError(t, err)
	assert.Equal(t, []db.Row{
		{"id": int64(1), "department": "HR"},
		{"id": int64(2), "department": nil},
	}, rows)
}
