package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fleetyard/fleetyard/internal/errs"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// writeError maps a service-layer error to its HTTP response: 400 for
// validation, 404 for not found, 500 for storage and upstream failures.
// Internal errors are logged and masked; validation and not-found messages
// are written through as-is.
func writeError(w http.ResponseWriter, err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		JSONValidationError(w, ve.Msg, ve.Fields, http.StatusBadRequest)
		return
	}
	if errs.IsNotFound(err) {
		JSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	slog.Error("request failed", "error", err)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

// writeJSON sends v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
