// Package httpapi exposes ingestion, single-record creation and the two
// reports over HTTP. Responses are JSON; errors carry {"detail": msg}.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/camilotorresmestra/globant-de/internal/analytics"
	"github.com/camilotorresmestra/globant-de/internal/domain"
	"github.com/camilotorresmestra/globant-de/internal/importer"
	"github.com/camilotorresmestra/globant-de/internal/logging"
)

// DefaultMaxUploadBytes bounds a multipart upload when Options leaves it 0.
const DefaultMaxUploadBytes = 32 << 20

// Ingester stores a CSV submission.
type Ingester interface {
	Ingest(ctx context.Context, dataset string, content []byte) (importer.Ack, error)
}

// Creator stores single records.
type Creator interface {
	CreateDepartment(ctx context.Context, d domain.Department) error
	CreateJob(ctx context.Context, j domain.Job) error
	CreateHiredEmployee(ctx context.Context, h domain.HiredEmployee) error
}

// Reporter runs the hiring reports.
type Reporter interface {
	QuarterlyHiringReport(ctx context.Context) ([]analytics.QuarterlyHires, error)
	AboveMeanDepartments(ctx context.Context) ([]analytics.DepartmentHires, error)
}

// Options configures a Server.
type Options struct {
	MaxUploadBytes int64
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
}

// Server routes requests to the ingestion and report services.
type Server struct {
	ingest Ingester
	create Creator
	report Reporter
	log    logrus.FieldLogger
	opts   Options
	router *mux.Router
}

// New builds a Server and its routes. A nil log discards output.
func New(ing Ingester, cr Creator, rep Reporter, log logrus.FieldLogger, opts Options) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{ingest: ing, create: cr, report: rep, log: log, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog)

	r.HandleFunc("/uploadfile/", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/create/department/", s.handleCreateDepartment).Methods(http.MethodPost)
	r.HandleFunc("/create/job/", s.handleCreateJob).Methods(http.MethodPost)
	r.HandleFunc("/create/hired_employee/", s.handleCreateHiredEmployee).Methods(http.MethodPost)
	r.HandleFunc("/analytics/employees_by_quarter/", s.handleQuarterly).Methods(http.MethodGet)
	r.HandleFunc("/analytics/departments_above_mean_hires/", s.handleAboveMean).Methods(http.MethodGet)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics).Methods(http.MethodGet)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
