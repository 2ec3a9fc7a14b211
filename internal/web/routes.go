package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/album-render/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	pdfHandler := handlers.NewPDFHandler(s.renderer, s.sidecar)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/pdf/generate/{albumId}", pdfHandler.Generate)
	})
}
