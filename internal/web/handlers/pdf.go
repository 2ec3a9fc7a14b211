package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/album-render/internal/database"
	"github.com/kozaktomas/album-render/internal/delivery"
	"github.com/kozaktomas/album-render/internal/render"
)

const errAlbumNotFound = "album not found"

// PDFHandler serves generated album documents.
type PDFHandler struct {
	renderer *render.Renderer
	sidecar  *delivery.Sidecar
	opts     []render.Option // applied to every render
}

// NewPDFHandler creates a new PDF handler. A nil sidecar disables delivery.
func NewPDFHandler(renderer *render.Renderer, sidecar *delivery.Sidecar, opts ...render.Option) *PDFHandler {
	return &PDFHandler{renderer: renderer, sidecar: sidecar, opts: opts}
}

func getAlbumReader(r *http.Request, w http.ResponseWriter) database.AlbumReader {
	reader, err := database.GetAlbumReader(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "album storage not available")
		return nil
	}
	return reader
}

// Generate renders the album and returns the PDF. Query format selects a
// variant: "report" returns the render report as JSON, "debug" outlines
// every placement, "test" returns the layout calibration document.
func (h *PDFHandler) Generate(w http.ResponseWriter, r *http.Request) {
	reader := getAlbumReader(r, w)
	if reader == nil {
		return
	}

	albumID := chi.URLParam(r, "albumId")
	req, err := database.LoadRenderRequest(r.Context(), reader, albumID)
	if err != nil {
		log.Error("failed to load album", "album", sanitizeForLog(albumID), "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load album")
		return
	}
	if req == nil {
		respondError(w, http.StatusNotFound, errAlbumNotFound)
		return
	}

	format := r.URL.Query().Get("format")

	if format == "test" {
		testPDF, err := render.GenerateTestPDF(time.Now())
		if err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("test PDF generation failed: %v", err))
			return
		}
		writePDF(w, "album-test.pdf", testPDF, nil)
		return
	}

	opts := slices.Clone(h.opts)
	if format == "debug" {
		opts = append(opts, render.WithDebugOverlay())
	}

	result, err := h.renderer.Render(r.Context(), req, opts...)
	if errors.Is(err, render.ErrAlbumNotFound) {
		respondError(w, http.StatusNotFound, errAlbumNotFound)
		return
	}
	if err != nil {
		log.Error("PDF generation failed", "album", sanitizeForLog(albumID), "err", err)
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("PDF generation failed: %v", err))
		return
	}

	switch format {
	case "report":
		respondJSON(w, http.StatusOK, result.Report)
	case "debug":
		writePDF(w, "album-debug.pdf", result.PDF, result.Report)
	default:
		h.sidecar.Dispatch(r.Context(), req.Album.ID, result.PDF, req.Album.CoverConfig.UserEmail)
		writePDF(w, "album.pdf", result.PDF, result.Report)
	}
}

func writePDF(w http.ResponseWriter, filename string, data []byte, report *render.RenderReport) {
	if report != nil && len(report.Warnings) > 0 {
		w.Header().Set("X-Render-Warnings", strconv.Itoa(len(report.Warnings)))
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
