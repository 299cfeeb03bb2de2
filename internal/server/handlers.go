package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

const maxBodyBytes = 4 << 20

type errorBody struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Clients   int    `json:"clients"`
	UptimeMs  int64  `json:"uptimeMs"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   s.version,
		Clients:   s.clients.Count(),
		UptimeMs:  now.Sub(s.startedAt).Milliseconds(),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		external   *domain.ExternalError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &external):
		return http.StatusBadGateway
	default:
		// parse and persistence failures included
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// decodeBody reads a JSON request body into v. Malformed bodies are
// validation errors.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Message: "request body is required"}
		}
		return &domain.ValidationError{Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}

func missingField(name string) error {
	return &domain.ValidationError{Field: name, Message: fmt.Sprintf("missing %q in request body", name)}
}
