package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jung-kurt/gofpdf"
)

// ErrSerialization is returned when the document cannot be written to bytes.
var ErrSerialization = errors.New("PDF serialization failed")

const pdfCreator = "album-render"

// pdfOptions tunes the writer; zero values are production defaults.
type pdfOptions struct {
	title        string
	creationDate time.Time
	uncompressed bool
	debug        bool // outline every box and drawn image
}

// pdfOutput is the serialized document plus what the writer had to skip.
type pdfOutput struct {
	data     []byte
	warnings []string
	rejected map[int]int // page number -> images the writer refused
}

// writePDF serializes a finalized document. gofpdf uses a top-left origin,
// so every bottom-left rectangle is flipped on the way out. Per-image and
// font failures are skipped and returned as warnings.
func writePDF(doc *Document, opts pdfOptions) (*pdfOutput, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: PageW, Ht: PageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(pdfCreator, true)
	pdf.SetCatalogSort(true)
	if opts.title != "" {
		pdf.SetTitle(opts.title, true)
	}
	if !opts.creationDate.IsZero() {
		pdf.SetCreationDate(opts.creationDate)
	}
	if opts.uncompressed {
		pdf.SetCompression(false)
	}

	out := &pdfOutput{rejected: make(map[int]int)}
	fontReady := false
	if doc.Font != nil {
		pdf.AddUTF8FontFromBytes(fontFamily, "", doc.Font.Bytes())
		if err := pdf.Error(); err != nil {
			pdf.ClearError()
			out.warnings = append(out.warnings, fmt.Sprintf("font could not be embedded, labels skipped: %v", err))
			log.Warn("label font could not be embedded", "err", err)
		} else {
			fontReady = true
		}
	}

	for _, page := range doc.Pages {
		pdf.AddPage()

		if page.Background != nil {
			r, g, b := page.Background.RGB255()
			pdf.SetFillColor(r, g, b)
			pdf.Rect(0, 0, PageW, PageH, "F")
		}

		for i, img := range page.Images {
			if err := drawImage(pdf, page.Number, i, img); err != nil {
				pdf.ClearError()
				out.rejected[page.Number]++
				out.warnings = append(out.warnings, fmt.Sprintf("page %d image %d (%s): %v", page.Number, i, img.Ref, err))
				log.Warn("skipping image the PDF writer rejected", "page", page.Number, "ref", img.Ref, "err", err)
			}
		}

		if fontReady {
			for _, l := range page.Labels {
				r, g, b := l.Color.RGB255()
				pdf.SetFont(fontFamily, "", l.FontSize)
				pdf.SetTextColor(r, g, b)
				pdf.Text(l.X, PageH-l.Baseline, l.Visual)
			}
		}

		if opts.debug {
			drawDebugOverlay(pdf, page)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	out.data = buf.Bytes()
	return out, nil
}

// errEmptyDrawRect guards gofpdf, which treats a zero size as "natural size"
// and a negative one as a DPI.
var errEmptyDrawRect = errors.New("draw rectangle has no area")

func drawImage(pdf *gofpdf.Fpdf, pageNumber, index int, img PlacedImage) error {
	if img.Draw.W <= 0 || img.Draw.H <= 0 {
		return errEmptyDrawRect
	}
	name := fmt.Sprintf("p%d-i%d", pageNumber, index)
	opts := gofpdf.ImageOptions{ImageType: img.Asset.Type, AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Asset.Data))
	if err := pdf.Error(); err != nil {
		return err
	}
	top := PageH - img.Draw.Y - img.Draw.H
	pdf.ImageOptions(name, img.Draw.X, top, img.Draw.W, img.Draw.H, false, opts, 0, "")
	return pdf.Error()
}

// Debug overlay colors: target boxes red, contain-fitted images blue,
// label runs green.
var (
	debugBoxColor   = [3]int{220, 30, 30}
	debugDrawColor  = [3]int{30, 90, 220}
	debugLabelColor = [3]int{20, 150, 60}
)

// drawDebugOverlay outlines every placement on the page and tags each box
// with its index and whether it came from a manual layout or the grid.
func drawDebugOverlay(pdf *gofpdf.Fpdf, page Page) {
	pdf.SetLineWidth(0.5)
	pdf.SetFont("Helvetica", "", 6)
	for i, img := range page.Images {
		strokeRect(pdf, img.Box, debugBoxColor)
		strokeRect(pdf, img.Draw, debugDrawColor)

		source := "grid"
		if img.Explicit {
			source = "layout"
		}
		if img.PhotoIndex < 0 {
			source = "cover"
		}
		pdf.SetTextColor(debugBoxColor[0], debugBoxColor[1], debugBoxColor[2])
		pdf.Text(img.Box.X+2, PageH-img.Box.Y-img.Box.H+8,
			fmt.Sprintf("#%d %s %.0fx%.0f", i, source, img.Box.W, img.Box.H))
	}
	for _, l := range page.Labels {
		strokeRect(pdf, Rect{X: l.X, Y: l.Baseline, W: l.Width, H: l.FontSize}, debugLabelColor)
	}
}

// strokeRect outlines a bottom-left-origin rect.
func strokeRect(pdf *gofpdf.Fpdf, r Rect, c [3]int) {
	pdf.SetDrawColor(c[0], c[1], c[2])
	pdf.Rect(r.X, PageH-r.Y-r.H, r.W, r.H, "D")
}
