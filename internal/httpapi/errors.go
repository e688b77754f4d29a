package httpapi

import (
	"errors"
	"net/http"

	"authd/internal/auth"
	"authd/internal/manager"
	"authd/pkg/types"
)

const (
	msgInternal = "Internal Server Error"
	msgNotReady = "Database not ready, please try again"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload. detail is only
// included in development.
func writeJSONError(w http.ResponseWriter, status int, msg, detail string) {
	resp := types.ErrorResponse{Message: msg}
	if isDevelopment() {
		resp.Error = detail
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps well-known errors to status codes and returns the
// status written.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) int {
	var he HTTPError
	switch {
	case manager.IsNotReady(err):
		w.Header().Set("Retry-After", "2")
		writeJSONError(w, http.StatusServiceUnavailable, msgNotReady, err.Error())
		return http.StatusServiceUnavailable
	case auth.IsInvalidCredentials(err):
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return http.StatusBadRequest
	case manager.IsConfiguration(err):
		logError(r, "configuration error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternal, err.Error())
		return http.StatusInternalServerError
	case errors.As(err, &he):
		writeJSONError(w, he.StatusCode(), he.Error(), "")
		return he.StatusCode()
	}
	logError(r, "unhandled error", err)
	writeJSONError(w, http.StatusInternalServerError, msgInternal, err.Error())
	return http.StatusInternalServerError
}

func detail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
