package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notesmith/smart-notes/internal/apperr"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusOK, map[string]string{"message": "hello"})

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("Expected success to be true")
	}

	if _, ok := body["timestamp"].(string); !ok {
		t.Error("Expected timestamp to be present")
	}

	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data to be present")
	}
	if msg, ok := data["message"].(string); !ok || msg != "hello" {
		t.Errorf("Expected message 'hello', got %v", data["message"])
	}
}

func TestRespondJSONError_TruncatesLongMessages(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", string(long))

	resp := w.Result()
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	message, _ := body["message"].(string)
	if len(message) != 203 { // 200 chars plus ellipsis
		t.Errorf("Expected truncated message of 203 chars, got %d", len(message))
	}
}

func TestRespondServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			err:         apperr.NotFound("note not found"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "note not found",
		},
		{
			name:        "invalid input",
			err:         apperr.InvalidInput("Note content is empty"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Note content is empty",
		},
		{
			name:        "unauthorized",
			err:         apperr.Unauthorized("invalid email or password"),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid email or password",
		},
		{
			name:        "forbidden",
			err:         apperr.Forbidden("account is disabled"),
			wantStatus:  http.StatusForbidden,
			wantMessage: "account is disabled",
		},
		{
			name:        "conflict",
			err:         apperr.Conflict("email already registered"),
			wantStatus:  http.StatusConflict,
			wantMessage: "email already registered",
		},
		{
			name:        "unavailable",
			err:         apperr.Unavailable("task generation is unavailable, please try again later", nil),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "task generation is unavailable, please try again later",
		},
		{
			name:        "internal detail is not leaked",
			err:         apperr.Internal("connection string contains password", nil),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondServiceError(w, tt.err)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}

			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if success, ok := body["success"].(bool); !ok || success {
				t.Error("Expected success to be false")
			}
			if message, _ := body["message"].(string); message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, message)
			}
		})
	}
}
