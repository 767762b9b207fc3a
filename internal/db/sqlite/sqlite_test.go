package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilotorresmestra/globant-de/internal/db"
)

func openMem(t *testing.T) *db.SQLStore {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background(), db.Tables))
	return s
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := openMem(t)
	ctx := context.Background()

	require.NoError(t, s.InsertOrIgnore(ctx, db.Departments, []any{int64(1), "HR"}))
	require.NoError(t, s.EnsureSchema(ctx, db.Tables))

	rows, err := s.Query(ctx, "SELECT COUNT(*) AS n FROM departments")
	require.NoError(t, err)
	n, _ := db.Int64(rows[0]["n"])
	assert.Equal(t, int64(1), n, "existing rows survive a second EnsureSchema")
}

func TestInsertOrIgnore_FirstWriteWins(t *testing.T) {
	s := openMem(t)
	ctx := context.Background()

	require.NoError(t, s.InsertOrIgnore(ctx, db.Jobs, []any{int64(1), "Recruiter"}))
	require.NoError(t, s.InsertOrIgnore(ctx, db.Jobs, []any{int64(1), "Changed"}))
	require.NoError(t, s.InsertOrIgnoreMany(ctx, db.Jobs, [][]any{
		{int64(1), "Changed again"},
		{int64(2), "Analyst"},
		{int64(2), "Analyst duplicate in same batch"},
	}))

	rows, err := s.Query(ctx, "SELECT id, job FROM jobs ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []db.Row{
		{"id": int64(1), "job": "Recruiter"},
		{"id": int64(2), "job": "Analyst"},
	}, rows)
}

func TestQueryReturnsNullsAndTypes(t *testing.T) {
	s := openMem(t)
	ctx := context.Background()

	require.NoError(t, s.InsertOrIgnore(ctx, db.HiredEmployees,
		[]any{int64(4535), "Marcelo Gonzalez", "2021-07-27T16:02:08Z", int64(1), int64(2)}))

	rows, err := s.Query(ctx,
		"SELECT h.id, d.department FROM hired_employees h LEFT JOIN departments d ON d.id = h.department_id")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4535), rows[0]["id"])
	assert.Nil(t, rows[0]["department"])
}

func TestOpenFileDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiring.db")
	ctx := context.Background()

	s, err := Open(ctx, "sqlite:///"+path)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx, db.Tables))
	require.NoError(t, s.InsertOrIgnore(ctx, db.Departments, []any{int64(7), "Legal"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	rows, err := s.Query(ctx, "SELECT department FROM departments WHERE id = ?", int64(7))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Legal", rows[0]["department"])
}

func TestBusyTimeoutOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "hiring.db"))
	require.NoError(t, err)
	defer s.Close()

	// No idle connections: every query dials a fresh one.
	s.DB().SetMaxIdleConns(0)
	for i := 0; i < 3; i++ {
		rows, err := s.Query(ctx, "PRAGMA busy_timeout")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		timeout, ok := db.Int64(rows[0]["timeout"])
		require.True(t, ok, "%#v", rows[0])
		assert.Equal(t, int64(busyTimeoutMS), timeout)
	}
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestNormalizeDSN(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"sqlite:///hiring.db":          "hiring.db?_pragma=busy_timeout(30000)",
		"sqlite:////tmp/x.db":          "/tmp/x.db?_pragma=busy_timeout(30000)",
		":memory:":                     ":memory:?_pragma=busy_timeout(30000)",
		" file:x.db?cache=shared":      "file:x.db?cache=shared&_pragma=busy_timeout(30000)",
		"x.db?_pragma=busy_timeout(5)": "x.db?_pragma=busy_timeout(5)",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDSN(in), in)
	}
}

func TestDialectSQL(t *testing.T) {
	t.Parallel()
	d := Dialect{}
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS departments (id INTEGER NOT NULL PRIMARY KEY, department TEXT)",
		d.CreateTable(db.Departments))
	assert.Equal(t,
		"INSERT INTO jobs (id, job) VALUES (?, ?) ON CONFLICT (id) DO NOTHING",
		d.InsertOrIgnore(db.Jobs))
}
