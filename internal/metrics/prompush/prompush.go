// Package prompush is the Prometheus backend for the metrics package.
//
// The same registry serves two modes: CLI runs push it to a Pushgateway on
// Flush, and the HTTP server exposes it for scraping through Handler.
package prompush

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/camilotorresmestra/globant-de/internal/metrics"
)

// DefaultJob is the Pushgateway grouping job when none is configured.
const DefaultJob = "hiring_etl"

// Backend is a Prometheus metrics.Backend.
type Backend struct {
	gatewayURL string // empty: scrape only, Flush is a no-op
	jobName    string
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	recordCounter *prometheus.CounterVec
	chunkCounter  *prometheus.CounterVec
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend builds a backend pushing to gatewayURL on Flush.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	return newBackend(jobName, gatewayURL)
}

// NewScrapeBackend builds a backend that is only read through Handler.
func NewScrapeBackend(jobName string) (*Backend, error) {
	return newBackend(jobName, "")
}

func newBackend(jobName, gatewayURL string) (*Backend, error) {
	if jobName == "" {
		jobName = DefaultJob
	}
	reg := prometheus.NewRegistry()

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        reg,
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Ingestion and report steps, by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDurationSeconds,
			Help:    "Duration of ingestion and report steps in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step", "status"}),
		recordCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Record counts per dataset and kind (received, rejected, upserted).",
		}, []string{"dataset", "kind"}),
		chunkCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.ChunksTotal,
			Help: "Committed upsert chunks per dataset.",
		}, []string{"dataset"}),
	}

	for _, c := range []prometheus.Collector{b.stepCounter, b.stepDuration, b.recordCounter, b.chunkCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.RecordsTotal:
		b.recordCounter.WithLabelValues(labels["dataset"], labels["kind"]).Add(delta)
	case metrics.ChunksTotal:
		b.chunkCounter.WithLabelValues(labels["dataset"]).Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway. In scrape mode it does nothing.
func (b *Backend) Flush() error {
	if b.gatewayURL == "" {
		return nil
	}
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (b *Backend) Handler() http.Handler {
	return promhttp.HandlerFor(b.reg, promhttp.HandlerOpts{Registry: b.reg})
}
