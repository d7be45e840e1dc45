package api

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status     string   `json:"status"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message,omitempty"`
	Error      string   `json:"error,omitempty"`
	Data       any      `json:"data,omitempty"`
	Details    []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func respond(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, Envelope{
		Status:     statusSuccess,
		StatusCode: code,
		Message:    message,
		Data:       data,
	})
}

// respondEmpty answers with an explicit empty list, used by listings that
// found nothing but still report success.
func respondEmpty(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := struct {
		Status     string `json:"status"`
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Data       []any  `json:"data"`
	}{statusSuccess, code, message, []any{}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func fail(w http.ResponseWriter, code int, message string, details ...string) {
	writeJSON(w, code, Envelope{
		Status:     statusError,
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    message,
		Details:    details,
	})
}

// internalError exposes the storage error message to the client unchanged.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed",
		"requestID", requestIDFrom(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	fail(w, http.StatusInternalServerError, err.Error())
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
