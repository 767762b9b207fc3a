package domain

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Messages(t *testing.T) {
	t.Parallel()

	short := &ValidationError{Dataset: "jobs", Row: 3, Expected: 2, Got: 1}
	assert.Equal(t, "invalid row 3 in jobs: expected at least 2 columns, got 1", short.Error())

	_, cause := strconv.Atoi("x")
	typed := &ValidationError{Dataset: "hired_employees", Row: 7, Field: "job_id", Err: cause}
	assert.Contains(t, typed.Error(), "row 7 of hired_employees: job_id should be an integer")
	assert.True(t, errors.Is(typed, strconv.ErrSyntax))
}

func TestStorageError_ChunkAndUnwrap(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")

	chunked := &StorageError{Op: "upsert", Table: "jobs", Chunk: 2, Err: boom}
	assert.Equal(t, "storage: upsert jobs chunk 2: connection reset", chunked.Error())
	assert.ErrorIs(t, chunked, boom)

	single := &StorageError{Op: "insert", Table: "jobs", Chunk: -1, Err: boom}
	assert.Equal(t, "storage: insert jobs: connection reset", single.Error())

	query := &StorageError{Op: "query", Chunk: -1, Err: boom}
	assert.Equal(t, "storage: query: connection reset", query.Error())
}

func TestSizeLimitAndFormatMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"file too large: departments has 1001 rows, maximum 1000 allowed",
		(&SizeLimitError{Dataset: "departments", Rows: 1001, Limit: 1000}).Error())
	assert.Equal(t,
		"invalid CSV format in jobs: first column should be an integer id, no header row is expected",
		(&FormatError{Dataset: "jobs", Reason: "first column should be an integer id, no header row is expected"}).Error())
}
