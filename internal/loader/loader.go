// Package loader writes validated records to the store in chunks. Each
// chunk is one transaction; a duplicate id is skipped by the store, so a
// whole batch can be retried after a partial failure.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/camilotorresmestra/globant-de/internal/db"
	"github.com/camilotorresmestra/globant-de/internal/domain"
	"github.com/camilotorresmestra/globant-de/internal/logging"
	"github.com/camilotorresmestra/globant-de/internal/metrics"
)

// DefaultChunkSize is used when a caller passes a chunk size of 0.
const DefaultChunkSize = 1000

// DefaultJob labels metrics emitted by an Engine.
const DefaultJob = "hiring_etl"

// Writer is the part of db.Store the engine needs.
type Writer interface {
	InsertOrIgnore(ctx context.Context, t db.Table, rec []any) error
	InsertOrIgnoreMany(ctx context.Context, t db.Table, recs [][]any) error
}

// Engine upserts typed records through a Writer.
type Engine struct {
	w   Writer
	log logrus.FieldLogger
	job string
}

// New returns an Engine writing to w. A nil log discards output.
func New(w Writer, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{w: w, log: log, job: DefaultJob}
}

// WithJob sets the job label used for metrics.
func (e *Engine) WithJob(job string) *Engine {
	if job != "" {
		e.job = job
	}
	return e
}

// UpsertDepartments writes recs in chunks of chunkSize.
func (e *Engine) UpsertDepartments(ctx context.Context, recs []domain.Department, chunkSize int) error {
	return upsert(ctx, e, db.Departments, recs, chunkSize, departmentRow)
}

// UpsertJobs writes recs in chunks of chunkSize.
func (e *Engine) UpsertJobs(ctx context.Context, recs []domain.Job, chunkSize int) error {
	return upsert(ctx, e, db.Jobs, recs, chunkSize, jobRow)
}

// UpsertHiredEmployees writes recs in chunks of chunkSize.
func (e *Engine) UpsertHiredEmployees(ctx context.Context, recs []domain.HiredEmployee, chunkSize int) error {
	return upsert(ctx, e, db.HiredEmployees, recs, chunkSize, hiredEmployeeRow)
}

// InsertDepartment writes a single record; an existing id is left as is.
func (e *Engine) InsertDepartment(ctx context.Context, d domain.Department) error {
	return e.insert(ctx, db.Departments, departmentRow(d))
}

// InsertJob writes a single record; an existing id is left as is.
func (e *Engine) InsertJob(ctx context.Context, j domain.Job) error {
	return e.insert(ctx, db.Jobs, jobRow(j))
}

// InsertHiredEmployee writes a single record; an existing id is left as is.
func (e *Engine) InsertHiredEmployee(ctx context.Context, h domain.HiredEmployee) error {
	return e.insert(ctx, db.HiredEmployees, hiredEmployeeRow(h))
}

func (e *Engine) insert(ctx context.Context, t db.Table, rec []any) error {
	start := time.Now()
	err := e.w.InsertOrIgnore(ctx, t, rec)
	metrics.RecordStep(e.job, "insert", err, time.Since(start))
	if err != nil {
		e.log.WithFields(logrus.Fields{"table": t.Name, "id": rec[0]}).WithError(err).Error("insert failed")
		return &domain.StorageError{Op: "insert", Table: t.Name, Chunk: -1, Err: err}
	}
	metrics.RecordRow(e.job, t.Name, "upserted", 1)
	e.log.WithFields(logrus.Fields{"table": t.Name, "id": rec[0]}).Debug("record inserted")
	return nil
}

// upsert splits recs into consecutive chunks and writes each with one
// InsertOrIgnoreMany call. It stops at the first failing chunk; earlier
// chunks stay committed.
func upsert[T any](ctx context.Context, e *Engine, t db.Table, recs []T, chunkSize int, row func(T) []any) error {
	if chunkSize < 0 {
		return fmt.Errorf("loader: chunk size must not be negative, got %d", chunkSize)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if len(recs) == 0 {
		return nil
	}

	var (
		log      = e.log.WithField("table", t.Name)
		start    = time.Now()
		lastTS   = start
		total    int
		chunkIdx int
	)
	for lo := 0; lo < len(recs); lo += chunkSize {
		hi := min(lo+chunkSize, len(recs))
		chunk := make([][]any, 0, hi-lo)
		for _, r := range recs[lo:hi] {
			chunk = append(chunk, row(r))
		}

		if err := e.w.InsertOrIgnoreMany(ctx, t, chunk); err != nil {
			log.WithFields(logrus.Fields{"chunk": chunkIdx, "committed": total}).WithError(err).Error("chunk failed")
			metrics.RecordStep(e.job, "upsert", err, time.Since(start))
			return &domain.StorageError{Op: "upsert", Table: t.Name, Chunk: chunkIdx, Err: err}
		}

		total += len(chunk)
		now := time.Now()
		sinceLast := now.Sub(lastTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(len(chunk)) / sinceLast.Seconds()
		}
		log.WithFields(logrus.Fields{
			"chunk":   chunkIdx,
			"rows":    len(chunk),
			"total":   total,
			"of":      len(recs),
			"rps":     int64(rps),
			"elapsed": now.Sub(start).Truncate(time.Millisecond),
		}).Info("chunk committed")
		metrics.RecordBatches(e.job, t.Name, 1)
		metrics.RecordRow(e.job, t.Name, "upserted", int64(len(chunk)))
		lastTS = now
		chunkIdx++
	}

	metrics.RecordStep(e.job, "upsert", nil, time.Since(start))
	return nil
}

func departmentRow(d domain.Department) []any { return []any{d.ID, d.Name} }
func jobRow(j domain.Job) []any               { return []any{j.ID, j.Title} }

func hiredEmployeeRow(h domain.HiredEmployee) []any {
	return []any{h.ID, h.Name, h.HiredAt, h.DepartmentID, h.JobID}
}
