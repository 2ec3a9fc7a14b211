package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		data       any
		wantBody   string
	}{
		{"OK with map", http.StatusOK, map[string]int{"pages": 3}, "{\"pages\":3}\n"},
		{"Empty map", http.StatusOK, map[string]string{}, "{}\n"},
		{"Nil data", http.StatusNoContent, nil, ""},
		{"Array", http.StatusOK, []string{"a", "b"}, "[\"a\",\"b\"]\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.statusCode, tc.data)

			assertStatusCode(t, recorder, tc.statusCode)
			assertContentType(t, recorder, "application/json")
			if recorder.Body.String() != tc.wantBody {
				t.Errorf("expected body %q, got %q", tc.wantBody, recorder.Body.String())
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondError(recorder, status, "album not found")

			assertStatusCode(t, recorder, status)
			assertContentType(t, recorder, "application/json")
			assertJSONError(t, recorder, "album not found")
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("a\nb\rc"); got != "abc" {
		t.Errorf("expected 'abc', got '%s'", got)
	}
}

func TestHealthCheck(t *testing.T) {
	for _, method := range []string{"GET", "HEAD"} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/health", nil)
			recorder := httptest.NewRecorder()

			HealthCheck(recorder, req)

			assertStatusCode(t, recorder, http.StatusOK)
			assertContentType(t, recorder, "application/json")

			var result map[string]bool
			if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if !result["ok"] {
				t.Errorf("expected ok true, got %v", result)
			}
		})
	}
}
