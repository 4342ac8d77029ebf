// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorBody{Error: message, Details: details})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case appErrors.IsValidation(err):
		return http.StatusBadRequest
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	case appErrors.IsConflict(err):
		return http.StatusConflict
	case appErrors.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes err with its mapped status. Internal failures are logged
// and keep the cause in details only.
func respondErr(w http.ResponseWriter, log *zap.Logger, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error(message, zap.Error(err))
		}
		writeError(w, status, message, err.Error())
		return
	}
	writeError(w, status, err.Error(), "")
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErrors.NewValidation("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, appErrors.NewValidation("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// queryInt reads the first present key; absent or malformed values give 0.
func queryInt(r *http.Request, keys ...string) int {
	for _, k := range keys {
		if v := r.URL.Query().Get(k); v != "" {
			n, _ := strconv.Atoi(v)
			return n
		}
	}
	return 0
}

// queryIntPtr is like queryInt but distinguishes absence. A malformed value
// is a validation error.
func queryIntPtr(r *http.Request, keys ...string) (*int, error) {
	for _, k := range keys {
		v := r.URL.Query().Get(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, appErrors.NewValidation("%s must be an integer", k)
		}
		return &n, nil
	}
	return nil, nil
}

var errMissingFile = errors.New("multipart field \"file\" is required")
