package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OpenDispatchesToRegisteredBackend(t *testing.T) {
	want := errors.New("opened")
	var gotDSN string
	Register("fake-registry", func(_ context.Context, dsn string) (Store, error) {
		gotDSN = dsn
		return nil, want
	})
	t.Cleanup(func() {
		openersMu.Lock()
		delete(openers, "fake-registry")
		openersMu.Unlock()
	})

	_, err := Open(context.Background(), "fake-registry", "dsn-1")
	require.ErrorIs(t, err, want)
	assert.Equal(t, "dsn-1", gotDSN)
	assert.Contains(t, Drivers(), "fake-registry")
}

func TestRegistry_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "no-such-driver", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `driver="no-such-driver"`)
}

func TestTableHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"id", "name", "datetime", "department_id", "job_id"}, HiredEmployees.ColumnNames())
	assert.Equal(t, "id, department", Departments.ColumnList())
	assert.Len(t, Tables, 3)

	typeOf := func(ct ColumnType) string {
		if ct == Integer {
			return "INT"
		}
		return "TEXT"
	}
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS jobs (id INT NOT NULL PRIMARY KEY, job TEXT)",
		CreateTableIfNotExists(Jobs, typeOf))
	assert.Equal(t, "?, ?, ?", Placeholders(3, QuestionMark))
}

func TestInt64AndString(t *testing.T) {
	t.Parallel()

	for _, v := range []any{int64(7), int32(7), 7, []byte("7"), "7", float64(7)} {
		n, ok := Int64(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, int64(7), n, "%T", v)
	}
	_, ok := Int64("seven")
	assert.False(t, ok)
	_, ok = Int64(nil)
	assert.False(t, ok)

	s, ok := String([]byte("HR"))
	assert.True(t, ok)
	assert.Equal(t, "HR", s)
	_, ok = String(nil)
	assert.False(t, ok)
	s, _ = String(int64(3))
	assert.Equal(t, "3", s)
}
