package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/camilotorresmestra/globant-de/internal/domain"
)

type uploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Rows     int    `json:"rows"`
	Checksum string `json:"checksum"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type dataResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxUploadBytes), err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "expected a multipart/form-data body", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, `missing form field "file"`, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "could not read uploaded file", err)
		return
	}

	ack, err := s.ingest.Ingest(r.Context(), hdr.Filename, content)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Filename: hdr.Filename,
		Status:   ack.Status,
		Rows:     ack.Rows,
		Checksum: ack.Checksum,
	})
}

func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	d := domain.Department{ID: q.int("id"), Name: q.str("department")}
	if q.err != nil {
		s.writeError(w, r, http.StatusBadRequest, q.err.Error(), nil)
		return
	}
	if err := s.create.CreateDepartment(r.Context(), d); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "department created"})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	j := domain.Job{ID: q.int("id"), Title: q.str("job")}
	if q.err != nil {
		s.writeError(w, r, http.StatusBadRequest, q.err.Error(), nil)
		return
	}
	if err := s.create.CreateJob(r.Context(), j); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "job created"})
}

func (s *Server) handleCreateHiredEmployee(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	h := domain.HiredEmployee{
		ID:           q.int("id"),
		Name:         q.str("name"),
		HiredAt:      q.str("datetime"),
		DepartmentID: q.int("department_id"),
		JobID:        q.int("job_id"),
	}
	if q.err != nil {
		s.writeError(w, r, http.StatusBadRequest, q.err.Error(), nil)
		return
	}
	if err := s.create.CreateHiredEmployee(r.Context(), h); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "hired employee created"})
}

func (s *Server) handleQuarterly(w http.ResponseWriter, r *http.Request) {
	rows, err := s.report.QuarterlyHiringReport(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Status: "success", Data: rows})
}

func (s *Server) handleAboveMean(w http.ResponseWriter, r *http.Request) {
	rows, err := s.report.AboveMeanDepartments(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Status: "success", Data: rows})
}

// query reads required query parameters, keeping the first error.
type query struct {
	r   *http.Request
	err error
}

func (q *query) str(name string) string {
	vals, ok := q.r.URL.Query()[name]
	if !ok || len(vals) == 0 {
		if q.err == nil {
			q.err = fmt.Errorf("missing query parameter %q", name)
		}
		return ""
	}
	return vals[0]
}

func (q *query) int(name string) int64 {
	v := q.str(name)
	if q.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		q.err = fmt.Errorf("query parameter %q must be an integer, got %q", name, v)
	}
	return n
}
