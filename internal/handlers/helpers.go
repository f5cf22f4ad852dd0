package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/notesmith/smart-notes/internal/apperr"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage bounds error messages before they reach clients
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondServiceError maps a classified service error to an HTTP response.
// Unclassified errors become opaque 500s.
func respondServiceError(w http.ResponseWriter, err error) {
	message := apperr.MessageOf(err)
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		respondJSONError(w, http.StatusNotFound, "Not Found", message)
	case apperr.KindInvalidInput:
		respondJSONError(w, http.StatusBadRequest, "Bad Request", message)
	case apperr.KindUnauthorized:
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", message)
	case apperr.KindForbidden:
		respondJSONError(w, http.StatusForbidden, "Forbidden", message)
	case apperr.KindConflict:
		respondJSONError(w, http.StatusConflict, "Conflict", message)
	case apperr.KindUnavailable:
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", message)
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", message)
	}
}

// decodeJSON decodes a request body, translating body-size violations into
// the dedicated 413 response.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body exceeds maximum size")
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}
