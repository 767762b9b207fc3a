// Package metrics records operational metrics for ingestion and reporting
// without tying the core packages to a metrics system.
//
// A process-wide Backend defaults to a no-op, so the helpers are always
// safe to call. Concrete backends live in subpackages (prompush, datadog)
// and are installed once at startup with SetBackend.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal           = "hiring_step_total"
	StepDurationSeconds = "hiring_step_duration_seconds"
	RecordsTotal        = "hiring_records_total"
	ChunksTotal         = "hiring_chunks_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
// It is not safe to call concurrently with the Record helpers.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step (ingest, upsert, report, ...)
// and observes its duration, labelled success or failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow adds delta to the record counter for dataset and kind.
//
// Kinds in use:
//   - "received"  rows read from a submission
//   - "rejected"  rows in a submission that failed validation
//   - "upserted"  rows sent to the store (duplicates included)
func RecordRow(job, dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":     job,
		"dataset": dataset,
		"kind":    kind,
	})
}

// RecordBatches counts committed chunks for dataset.
func RecordBatches(job, dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(ChunksTotal, float64(delta), Labels{
		"job":     job,
		"dataset": dataset,
	})
}
