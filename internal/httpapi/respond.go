package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/camilotorresmestra/globant-de/internal/domain"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps the domain error taxonomy to an HTTP status.
func statusFor(err error) int {
	var (
		fe *domain.FormatError
		ve *domain.ValidationError
		le *domain.SizeLimitError
		ue *domain.UnknownDatasetError
	)
	switch {
	case errors.As(err, &fe), errors.As(err, &ve), errors.As(err, &le), errors.As(err, &ue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError reports client errors verbatim; anything else is logged
// and answered with a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.writeError(w, r, status, "internal server error", err)
		return
	}
	s.writeError(w, r, status, err.Error(), err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, detail string, cause error) {
	entry := s.log.WithFields(logrus.Fields{
		"request_id": RequestIDFrom(r.Context()),
		"status":     status,
		"path":       r.URL.Path,
	})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}
