package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/contractreg/contractreg/internal/contract"
	"github.com/contractreg/contractreg/internal/importer"
	"github.com/contractreg/contractreg/internal/logging"
	"github.com/contractreg/contractreg/internal/repository"
)

// errorResponse is the uniform error body for all endpoints.
type errorResponse struct {
	Error      string               `json:"error"`
	Violations []contract.Violation `json:"violations,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a plain JSON error with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondError maps domain errors to HTTP status codes and logs server-side
// failures with the request ID.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *repository.ValidationError
		notFoundErr   *repository.NotFoundError
		tooLargeErr   *importer.FileTooLargeError
		formatErr     *importer.UnsupportedFormatError
		discoveryErr  *importer.DiscoveryError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      validationErr.Error(),
			Violations: validationErr.Violations,
		})

	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())

	case errors.As(err, &tooLargeErr):
		writeError(w, http.StatusRequestEntityTooLarge, tooLargeErr.Error())

	case errors.As(err, &formatErr):
		writeError(w, http.StatusUnsupportedMediaType, formatErr.Error())

	case errors.As(err, &discoveryErr):
		writeError(w, http.StatusUnprocessableEntity, discoveryErr.Error())

	case errors.Is(err, ErrImportInProgress):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	default:
		logging.FromContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
