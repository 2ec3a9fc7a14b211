package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsOriginAllowed(t *testing.T) {
	allowed := originSet([]string{"https://albums.example.com", " ", " https://editor.example.com "})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"https://localhost:8443", true},
		{"http://localhost.evil.com", false},
		{"https://albums.example.com", true},
		{"https://editor.example.com", true},
		{"https://other.example.com", false},
	}

	for _, tc := range tests {
		t.Run(tc.origin, func(t *testing.T) {
			if got := isOriginAllowed(tc.origin, allowed); got != tc.want {
				t.Errorf("isOriginAllowed(%q) = %v, want %v", tc.origin, got, tc.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	var called bool
	handler := CORS([]string{"https://albums.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("AllowedOrigin", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/api/pdf/generate/x", nil)
		req.Header.Set("Origin", "https://albums.example.com")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)

		if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://albums.example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if got := recorder.Header().Get("Access-Control-Expose-Headers"); got == "" {
			t.Error("expected exposed headers")
		}
		if !called {
			t.Error("expected next handler to be called")
		}
	})

	t.Run("DisallowedOrigin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)

		if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no allow-origin header, got %q", got)
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("OPTIONS", "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", recorder.Code)
		}
		if called {
			t.Error("preflight should not reach the next handler")
		}
	})
}
