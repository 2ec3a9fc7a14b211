package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/kozaktomas/album-render/internal/config"
	"github.com/kozaktomas/album-render/internal/database"
	"github.com/kozaktomas/album-render/internal/database/mock"
	"github.com/kozaktomas/album-render/internal/render"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{Web: config.WebConfig{Host: "127.0.0.1", Port: 0, AllowedOrigins: []string{"https://albums.example.com"}}}
	fetcher := render.NewFetcher(render.FetcherConfig{Timeout: time.Second}, nil, nil)
	renderer := render.NewRenderer(fetcher, render.NewFontCache(func() ([]byte, error) { return goregular.TTF, nil }))
	return NewServer(cfg, renderer, nil)
}

func TestRoutes(t *testing.T) {
	store := mock.NewMockAlbumStore()
	store.AddAlbum(database.Album{ID: "album-1"})
	database.RegisterAlbumStore(func() database.AlbumStore { return store })
	t.Cleanup(database.ResetForTesting)

	s := testServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
	}{
		{"Health", "/api/health", http.StatusOK, "application/json"},
		{"GeneratePDF", "/api/pdf/generate/album-1", http.StatusOK, "application/pdf"},
		{"UnknownAlbum", "/api/pdf/generate/missing", http.StatusNotFound, "application/json"},
		{"UnknownRoute", "/api/v1/books", http.StatusNotFound, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			req.Header.Set("Origin", "https://albums.example.com")
			recorder := httptest.NewRecorder()

			s.Router().ServeHTTP(recorder, req)

			if recorder.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d\nBody: %s", tc.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tc.wantType != "" && recorder.Header().Get("Content-Type") != tc.wantType {
				t.Errorf("expected Content-Type %s, got %s", tc.wantType, recorder.Header().Get("Content-Type"))
			}
			if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://albums.example.com" {
				t.Errorf("expected CORS header, got %q", got)
			}
		})
	}
}

func TestShutdown_NoDeliveries(t *testing.T) {
	s := testServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
