package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/domain/job"
	"github.com/raglet/raglet/internal/database"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError maps an error to a status code and writes the JSON error body.
// Validation failures surface their message; everything else is reported as
// an internal error without leaking details.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	detail := "Internal server error"

	switch {
	case errors.Is(err, job.ErrInvalidURL),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrInvalidTopK),
		errors.Is(err, document.ErrInvalidTransition):
		status = http.StatusBadRequest
		detail = err.Error()
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		detail = "Not found"
	}

	if logger != nil {
		logger.Error("request error",
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: detail})
}

// WriteBadRequest writes a 400 with the given message.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
