package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the uniform response wrapper every endpoint returns.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WriteOK writes a success envelope with the given status and payload.
func WriteOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
}

// WriteError writes a failure envelope. The error string is the
// user-facing message; upstream detail stays in the logs.
func WriteError(w http.ResponseWriter, status int, errMsg string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     errMsg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeBody decodes a JSON request body into dst. A returned error is
// suitable for a 400 response.
func DecodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
