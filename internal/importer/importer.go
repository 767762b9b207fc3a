// Package importer is the entry point for dataset submissions. It resolves
// the dataset, decodes and splits the CSV content, enforces the row
// ceiling, validates every row and only then hands typed records to the
// loader. Nothing is written unless the whole submission validates.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/camilotorresmestra/globant-de/internal/domain"
	"github.com/camilotorresmestra/globant-de/internal/loader"
	"github.com/camilotorresmestra/globant-de/internal/logging"
	"github.com/camilotorresmestra/globant-de/internal/metrics"
	"github.com/camilotorresmestra/globant-de/internal/validate"
)

// StatusUploaded is the Ack status of a successful submission.
const StatusUploaded = "uploaded and data inserted"

// Defaults applied by New to zero Options fields.
const (
	DefaultMaxRows   = 1000
	DefaultChunkSize = loader.DefaultChunkSize
	DefaultWorkers   = 3
)

// Options tunes an Orchestrator.
type Options struct {
	MaxRows   int  // rows accepted per submission
	ChunkSize int  // records per transaction
	Delimiter rune // CSV field separator
	Workers   int  // concurrent files in LoadDir
	Job       string
}

// Ack acknowledges an ingested submission.
type Ack struct {
	Dataset  string `json:"dataset"`
	Rows     int    `json:"rows"`
	Checksum string `json:"checksum"`
	Status   string `json:"status"`
}

// Orchestrator routes submissions to the validator and loader for their
// dataset.
type Orchestrator struct {
	loader *loader.Engine
	opts   Options
	log    logrus.FieldLogger
}

// New returns an Orchestrator writing through l.
func New(l *loader.Engine, opts Options, log logrus.FieldLogger) *Orchestrator {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Job == "" {
		opts.Job = loader.DefaultJob
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Orchestrator{loader: l, opts: opts, log: log}
}

// ingestFunc validates rows of one dataset and upserts them, returning the
// number of records written.
type ingestFunc func(ctx context.Context, l *loader.Engine, rows [][]string, chunkSize int) (int, error)

// bind ties a dataset's validator to its upsert operation.
func bind[T any](
	convert func([][]string) ([]T, error),
	upsert func(*loader.Engine, context.Context, []T, int) error,
) ingestFunc {
	return func(ctx context.Context, l *loader.Engine, rows [][]string, chunkSize int) (int, error) {
		recs, err := convert(rows)
		if err != nil {
			return 0, err
		}
		return len(recs), upsert(l, ctx, recs, chunkSize)
	}
}

var ingesters = map[domain.DatasetKind]ingestFunc{
	domain.KindDepartment:    bind(validate.Departments, (*loader.Engine).UpsertDepartments),
	domain.KindJob:           bind(validate.Jobs, (*loader.Engine).UpsertJobs),
	domain.KindHiredEmployee: bind(validate.HiredEmployees, (*loader.Engine).UpsertHiredEmployees),
}

// Ingest stores one CSV submission for dataset, which may be a dataset name
// or a file name such as "jobs.csv". Format, size and validation failures
// are reported before anything is written; a storage failure leaves the
// chunks before it committed.
func (o *Orchestrator) Ingest(ctx context.Context, dataset string, content []byte) (Ack, error) {
	kind, err := domain.ParseDatasetKind(dataset)
	if err != nil {
		return Ack{}, err
	}

	start := time.Now()
	sum := fmt.Sprintf("%016x", xxh3.Hash(content))
	log := o.log.WithFields(logrus.Fields{"dataset": kind.String(), "checksum": sum, "bytes": len(content)})

	n, err := o.ingest(ctx, kind, content)
	metrics.RecordStep(o.opts.Job, "ingest", err, time.Since(start))
	if err != nil {
		log.WithError(err).Warn("submission rejected")
		return Ack{}, err
	}

	log.WithFields(logrus.Fields{"rows": n, "elapsed": time.Since(start).Truncate(time.Millisecond)}).Info("submission ingested")
	return Ack{Dataset: kind.String(), Rows: n, Checksum: sum, Status: StatusUploaded}, nil
}

func (o *Orchestrator) ingest(ctx context.Context, kind domain.DatasetKind, content []byte) (int, error) {
	rows, lines, err := o.readRows(kind, content)
	if err != nil {
		return 0, err
	}
	metrics.RecordRow(o.opts.Job, kind.String(), "received", int64(len(rows)))

	if err := validate.CheckHeaderless(kind, rows); err != nil {
		return 0, err
	}
	n, err := ingesters[kind](ctx, o.loader, rows, o.opts.ChunkSize)
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		// The validator counts records; report the line in the file.
		if ve.Row >= 1 && ve.Row <= len(lines) {
			ve.Row = lines[ve.Row-1]
		}
		metrics.RecordRow(o.opts.Job, kind.String(), "rejected", int64(len(rows)))
	}
	return n, err
}

// readRows decodes content (UTF-8, or UTF-8/UTF-16 with a BOM) and splits
// it into field rows, returning the 1-based file line each row starts on.
// Rows past MaxRows are counted but not kept.
func (o *Orchestrator) readRows(kind domain.DatasetKind, content []byte) ([][]string, []int, error) {
	if err := checkUTF8(kind, content); err != nil {
		return nil, nil, err
	}

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	r := csv.NewReader(transform.NewReader(bytes.NewReader(content), dec))
	r.Comma = o.opts.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
		count int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &domain.FormatError{Dataset: kind.String(), Reason: err.Error()}
		}
		count++
		if count <= o.opts.MaxRows {
			line, _ := r.FieldPos(0)
			rows = append(rows, rec)
			lines = append(lines, line)
		}
	}
	if count > o.opts.MaxRows {
		return nil, nil, &domain.SizeLimitError{Dataset: kind.String(), Rows: count, Limit: o.opts.MaxRows}
	}
	return rows, lines, nil
}

var (
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// checkUTF8 rejects content that is neither UTF-16 with a BOM nor valid
// UTF-8, naming the line of the first bad byte. The decoder would
// otherwise turn such bytes into U+FFFD.
func checkUTF8(kind domain.DatasetKind, content []byte) error {
	if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) || utf8.Valid(content) {
		return nil
	}
	line := 1
	for b := content; len(b) > 0; {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			break
		}
		if r == '\n' {
			line++
		}
		b = b[size:]
	}
	return &domain.FormatError{Dataset: kind.String(), Reason: fmt.Sprintf("invalid UTF-8 at line %d", line)}
}

// CreateDepartment stores one department; an existing id is left untouched.
func (o *Orchestrator) CreateDepartment(ctx context.Context, d domain.Department) error {
	return o.loader.InsertDepartment(ctx, d)
}

// CreateJob stores one job; an existing id is left untouched.
func (o *Orchestrator) CreateJob(ctx context.Context, j domain.Job) error {
	return o.loader.InsertJob(ctx, j)
}

// CreateHiredEmployee stores one hire; an existing id is left untouched.
func (o *Orchestrator) CreateHiredEmployee(ctx context.Context, h domain.HiredEmployee) error {
	return o.loader.InsertHiredEmployee(ctx, h)
}
