package httpapi

import (
	"encoding/json"
	"net/http"

	"mtbench/internal/catalog"
	"mtbench/internal/manager"
	"mtbench/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case catalog.IsUnrecognized(err), manager.IsModelNotFound(err):
		return http.StatusNotFound
	case catalog.IsUnsupported(err):
		return http.StatusUnprocessableEntity
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
