// Package render turns an album aggregate into a paginated, print-ready PDF:
// a cover page followed by one page per non-empty album page.
package render

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/album-render/internal/database"
)

// ErrAlbumNotFound is returned when the requested album does not exist.
var ErrAlbumNotFound = errors.New("album not found")

// --- Report types ---

// RenderReport describes what ended up in the document.
type RenderReport struct {
	AlbumID    string       `json:"album_id"`
	PageCount  int          `json:"page_count"`
	PhotoCount int          `json:"photo_count"`
	Pages      []ReportPage `json:"pages"`
	Warnings   []string     `json:"warnings"`
}

// ReportPage summarizes one output page.
type ReportPage struct {
	PageNumber  int      `json:"page_number"`
	Kind        PageKind `json:"kind"`
	AlbumPageID string   `json:"album_page_id,omitempty"`
	Images      int      `json:"images"`
	Skipped     int      `json:"skipped"`
	Labels      int      `json:"labels"`
}

// Result is the single artifact of a render.
type Result struct {
	PDF      []byte
	Report   *RenderReport
	Document *Document
}

// Option configures a single render.
type Option func(*options)

type options struct {
	onAsset      func()
	creationDate time.Time
	uncompressed bool
	debug        bool
}

// WithAssetProgress calls fn once per image fetch attempt, from worker goroutines.
func WithAssetProgress(fn func()) Option {
	return func(o *options) { o.onAsset = fn }
}

// WithCreationDate pins the PDF creation date, making output reproducible.
func WithCreationDate(t time.Time) Option {
	return func(o *options) { o.creationDate = t }
}

// WithoutCompression writes uncompressed content streams.
func WithoutCompression() Option {
	return func(o *options) { o.uncompressed = true }
}

// WithDebugOverlay outlines every box, drawn image and label in the output.
func WithDebugOverlay() Option {
	return func(o *options) { o.debug = true }
}

// Renderer renders albums. It is safe for concurrent use; the font cache is
// the only state shared between renders.
type Renderer struct {
	fetcher *Fetcher
	fonts   *FontCache
}

// NewRenderer creates a renderer.
func NewRenderer(fetcher *Fetcher, fonts *FontCache) *Renderer {
	return &Renderer{fetcher: fetcher, fonts: fonts}
}

// coverKind tags where the cover image comes from.
type coverKind int

const (
	coverNone coverKind = iota
	coverStored
	coverURL
)

type coverSource struct {
	kind coverKind
	ref  string
}

// resolveCover picks the cover image: the stock cover selected by cover_id,
// else cover_config.coverUrl, else none. An album that names a cover_id
// which no longer exists gets no cover image.
func resolveCover(req *database.AlbumRenderRequest) coverSource {
	if id := req.Album.CoverID; id != nil && *id != "" {
		if req.Cover != nil && req.Cover.StoragePath != "" {
			return coverSource{kind: coverStored, ref: req.Cover.StoragePath}
		}
		return coverSource{kind: coverNone}
	}
	if u := strings.TrimSpace(req.Album.CoverConfig.CoverURL); u != "" {
		return coverSource{kind: coverURL, ref: u}
	}
	return coverSource{kind: coverNone}
}

// orderedPages returns the non-empty pages sorted by page_order, each with
// photos sorted by photo_order. The input is not modified.
func orderedPages(pages []database.AlbumPage) []database.AlbumPage {
	out := make([]database.AlbumPage, 0, len(pages))
	for _, p := range pages {
		if len(p.Photos) == 0 {
			continue
		}
		photos := slices.Clone(p.Photos)
		slices.SortStableFunc(photos, func(a, b database.AlbumPhoto) int {
			return cmp.Compare(a.PhotoOrder, b.PhotoOrder)
		})
		p.Photos = photos
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b database.AlbumPage) int {
		return cmp.Compare(a.PageOrder, b.PageOrder)
	})
	return out
}

// photoBox returns the photo's box: its manual layout when valid, otherwise
// the grid cell for its position on the page.
func photoBox(ph database.AlbumPhoto, index int) (PercentBox, bool) {
	if l := ph.Layout; l.Valid() {
		return PercentBox{
			X: *l.X,
			Y: *l.Y,
			W: floatOr(l.W, gridCell),
			H: floatOr(l.H, gridCell),
		}, true
	}
	return DefaultGridBox(index), false
}

// collectJobs lists every image to load: the cover first, then photos in
// page and photo order. The draw loop consumes results in the same order.
func collectJobs(cover coverSource, pages []database.AlbumPage) []assetJob {
	var jobs []assetJob
	if cover.kind != coverNone {
		jobs = append(jobs, assetJob{ref: cover.ref, kind: AssetCover})
	}
	for _, p := range pages {
		for _, ph := range p.Photos {
			jobs = append(jobs, assetJob{ref: ph.StoragePath, kind: AssetPhoto})
		}
	}
	return jobs
}

// CountAssets returns how many image fetches rendering req will attempt.
func CountAssets(req *database.AlbumRenderRequest) int {
	if req == nil {
		return 0
	}
	return len(collectJobs(resolveCover(req), orderedPages(req.Pages)))
}

// Render builds the document for req and serializes it. Missing images and
// an unavailable font degrade the output and are listed in the report; only
// a nil request or a serialization failure is fatal.
func (r *Renderer) Render(ctx context.Context, req *database.AlbumRenderRequest, opts ...Option) (*Result, error) {
	if req == nil {
		return nil, ErrAlbumNotFound
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pages := orderedPages(req.Pages)
	cover := resolveCover(req)
	labels := resolveLabels(req.Album.CoverConfig)
	jobs := collectJobs(cover, pages)
	report := &RenderReport{AlbumID: req.Album.ID}

	// Font load and image fetches are independent; both finish before drawing.
	var (
		wg      sync.WaitGroup
		font    *Font
		fontErr error
	)
	if len(labels) > 0 {
		wg.Go(func() { font, fontErr = r.fonts.Load() })
	}
	results := r.fetcher.loadAll(ctx, jobs, o.onAsset)
	wg.Wait()

	if fontErr != nil {
		log.Warn("label font unavailable, skipping cover text", "album", req.Album.ID, "err", fontErr)
		report.Warnings = append(report.Warnings, fmt.Sprintf("cover text skipped: %v", fontErr))
		labels = nil
	}

	a := newAssembler()
	failed := make(map[int]int)
	next := 0

	coverPage := Page{}
	if cover.kind != coverNone {
		res := results[next]
		next++
		if res.err != nil {
			report.warnSkipped(log.Default(), 1, cover.ref, res.err)
		} else {
			coverPage.Images = append(coverPage.Images, PlacedImage{
				Ref:        cover.ref,
				PhotoIndex: -1,
				Box:        FullPage(),
				Draw:       FitContainRect(float64(res.asset.Width), float64(res.asset.Height), FullPage()),
				Asset:      res.asset,
			})
		}
	}
	for _, spec := range labels {
		if l, ok := layoutLabel(font, spec); ok {
			coverPage.Labels = append(coverPage.Labels, l)
		}
	}
	if err := a.addCover(coverPage); err != nil {
		return nil, err
	}

	for _, p := range pages {
		page := Page{AlbumPageID: p.ID}
		if c, ok := ParseHex(p.PageConfig.BackgroundColor); ok {
			page.Background = &c
		}
		pageNumber := len(a.doc.Pages) + 1
		for i, ph := range p.Photos {
			res := results[next]
			next++
			pct, explicit := photoBox(ph, i)
			if res.err != nil {
				failed[pageNumber]++
				report.warnSkipped(log.Default(), pageNumber, ph.StoragePath, res.err)
				continue
			}
			box := ToAbsolute(pct)
			draw := FitContainRect(float64(res.asset.Width), float64(res.asset.Height), box)
			if draw.W <= 0 || draw.H <= 0 {
				failed[pageNumber]++
				log.Warn("skipping image with an empty box", "page", pageNumber, "ref", ph.StoragePath, "w", box.W, "h", box.H)
				report.Warnings = append(report.Warnings, fmt.Sprintf("Layout: page %d image %d: box has no area (%.2f x %.2f), image skipped", pageNumber, i, box.W, box.H))
				continue
			}
			page.Images = append(page.Images, PlacedImage{
				Ref:        ph.StoragePath,
				PhotoIndex: i,
				Explicit:   explicit,
				Box:        box,
				Draw:       draw,
				Asset:      res.asset,
			})
		}
		if err := a.addPage(page); err != nil {
			return nil, err
		}
	}

	var docFont *Font
	if len(coverPage.Labels) > 0 {
		docFont = font
	}
	doc, err := a.finalize(docFont)
	if err != nil {
		return nil, err
	}

	for _, vw := range ValidatePages(doc) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Layout: page %d image %d: %s", vw.PageNumber, vw.ImageIndex, vw.Message))
	}

	out, err := writePDF(doc, pdfOptions{
		title:        "Album " + req.Album.ID,
		creationDate: o.creationDate,
		uncompressed: o.uncompressed,
		debug:        o.debug,
	})
	if err != nil {
		return nil, err
	}
	report.Warnings = append(report.Warnings, out.warnings...)
	report.summarize(doc, failed, out.rejected)

	return &Result{PDF: out.data, Report: report, Document: doc}, nil
}

// warnSkipped records an image that was left out of the document.
func (rep *RenderReport) warnSkipped(logger *log.Logger, pageNumber int, ref string, err error) {
	sanitized := strings.NewReplacer("\n", "", "\r", "").Replace(ref)
	logger.Warn("skipping image", "page", pageNumber, "ref", sanitized, "err", err)
	rep.Warnings = append(rep.Warnings, fmt.Sprintf("Page %d: image %s skipped: %v", pageNumber, sanitized, err))
}

// summarize fills the page list and counts from the finalized document.
// failed holds fetch failures per page; rejected holds writer refusals.
func (rep *RenderReport) summarize(doc *Document, failed, rejected map[int]int) {
	rep.PageCount = len(doc.Pages)
	rep.Pages = make([]ReportPage, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		drawn := len(page.Images) - rejected[page.Number]
		rep.PhotoCount += drawn
		rep.Pages = append(rep.Pages, ReportPage{
			PageNumber:  page.Number,
			Kind:        page.Kind,
			AlbumPageID: page.AlbumPageID,
			Images:      drawn,
			Skipped:     failed[page.Number] + rejected[page.Number],
			Labels:      len(page.Labels),
		})
	}
}
