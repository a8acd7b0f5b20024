// Package handlers contains the HTTP layer. Handlers decode requests
// strictly (unknown fields are rejected), delegate to the stores and the
// incident engine, and map storage errors onto a small set of response
// kinds.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"stadtwache/db"
	"stadtwache/incidents"
)

// errorKind labels in responses let clients branch without parsing
// human-readable messages.
func kindForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid_input"
	case http.StatusServiceUnavailable:
		return "upstream_unavailable"
	}
	return "internal"
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"kind":  kindForStatus(status),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeStrict parses the request body into v, rejecting unknown fields so
// typos in mutation payloads fail loudly instead of silently dropping data.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeStoreError maps storage and lifecycle errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, notFoundMsg, http.StatusNotFound)
	case errors.Is(err, db.ErrConflict):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, db.ErrUnavailable):
		writeError(w, "Storage temporarily unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, incidents.ErrArchiveIncomplete):
		writeError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
