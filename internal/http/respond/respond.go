// Package respond writes the development backend's JSON responses. Errors
// use the {"detail": "..."} shape, field errors a map of field to messages.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON writes payload with status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}

// Error writes {"detail": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"detail": message})
}

// FieldErrors writes a validation failure keyed by field name.
func FieldErrors(w http.ResponseWriter, fields map[string][]string) {
	JSON(w, http.StatusBadRequest, fields)
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
