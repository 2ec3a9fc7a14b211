package render

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/album-render/internal/database"
)

// Label defaults applied when a TextSpec leaves a field unset.
const (
	defaultLabelX     = 50.0
	defaultLabelY     = 18.0
	defaultLabelSize  = 28.0
	defaultLabelColor = "#ffffff"
)

// fontFamily is the family name the label font is registered under in the PDF.
const fontFamily = "label"

// ErrFontUnavailable is returned when the label font cannot be loaded.
var ErrFontUnavailable = errors.New("label font unavailable")

// Font is a parsed font program shared read-only by every render.
type Font struct {
	data       []byte
	parsed     *opentype.Font
	unitsPerEm float64
}

// ParseFont parses TrueType/OpenType bytes.
func ParseFont(data []byte) (*Font, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Font{data: data, parsed: parsed, unitsPerEm: float64(parsed.UnitsPerEm())}, nil
}

// Bytes returns the raw font program for embedding.
func (f *Font) Bytes() []byte {
	return f.data
}

// MeasureWidth returns the advance width of text at size, in points.
// Safe for concurrent use.
func (f *Font) MeasureWidth(text string, size float64) float64 {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(f.unitsPerEm * 64) // advances come back in font units
	var total fixed.Int26_6
	for _, r := range text {
		idx, err := f.parsed.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		adv, err := f.parsed.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		total += adv
	}
	return float64(total) / 64 / f.unitsPerEm * size
}

// FontCache lazily loads the label font once per process and shares it.
// A failed load is cached too: the font file does not change while the
// process runs.
type FontCache struct {
	load func() (*Font, error)
}

// NewFontCache returns a cache that reads the font program from source on first use.
func NewFontCache(source func() ([]byte, error)) *FontCache {
	return &FontCache{
		load: sync.OnceValues(func() (*Font, error) {
			data, err := source()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, err)
			}
			f, err := ParseFont(data)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFontUnavailable, err)
			}
			return f, nil
		}),
	}
}

// NewFileFontCache returns a cache backed by a font file on disk.
func NewFileFontCache(path string) *FontCache {
	return NewFontCache(func() ([]byte, error) {
		if path == "" {
			return nil, errors.New("no font path configured")
		}
		return os.ReadFile(path) //nolint:gosec // path comes from operator config
	})
}

// Load returns the shared font, loading it on the first call.
func (c *FontCache) Load() (*Font, error) {
	return c.load()
}

// LabelSpec is a TextSpec with all defaults applied.
type LabelSpec struct {
	Content  string
	XPct     float64
	YPct     float64
	FontSize float64
	Color    string
}

// resolveLabels returns the cover labels in draw order: texts[] when
// non-empty, else one label synthesized from the legacy header fields,
// else none.
func resolveLabels(cfg database.CoverConfig) []LabelSpec {
	if len(cfg.Texts) > 0 {
		labels := make([]LabelSpec, 0, len(cfg.Texts))
		for _, t := range cfg.Texts {
			labels = append(labels, LabelSpec{
				Content:  t.Content,
				XPct:     floatOr(t.X, defaultLabelX),
				YPct:     floatOr(t.Y, defaultLabelY),
				FontSize: floatOr(t.FontSize, defaultLabelSize),
				Color:    stringOr(t.Color, defaultLabelColor),
			})
		}
		return labels
	}
	if cfg.HeaderText != "" {
		return []LabelSpec{{
			Content:  cfg.HeaderText,
			XPct:     floatOr(cfg.HeaderX, defaultLabelX),
			YPct:     floatOr(cfg.HeaderY, defaultLabelY),
			FontSize: floatOr(cfg.HeaderFontSize, defaultLabelSize),
			Color:    defaultLabelColor,
		}}
	}
	return nil
}

// layoutLabel positions one label horizontally centered on its anchor.
// It returns false when the trimmed content is empty.
func layoutLabel(f *Font, spec LabelSpec) (PlacedLabel, bool) {
	content := norm.NFC.String(strings.TrimSpace(spec.Content))
	if content == "" {
		return PlacedLabel{}, false
	}
	x, y := AnchorPoint(spec.XPct, spec.YPct)
	width := f.MeasureWidth(content, spec.FontSize)
	return PlacedLabel{
		Text:     content,
		Visual:   visualOrder(content),
		X:        x - width/2,
		Baseline: y,
		Width:    width,
		FontSize: spec.FontSize,
		Color:    HexToColor(spec.Color),
	}, true
}

// visualOrder reorders a logical string for left-to-right glyph placement.
// Right-to-left runs (Hebrew, Arabic) are reversed, and when the first
// strong character is right-to-left the runs themselves are laid out right
// to left. Strings without RTL content come back unchanged.
func visualOrder(s string) string {
	if !hasRTL(s) {
		return s
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s); err != nil {
		return s
	}
	ordering, err := p.Order()
	if err != nil {
		return s
	}
	runs := make([]string, 0, ordering.NumRuns())
	for i := range ordering.NumRuns() {
		run := ordering.Run(i)
		if run.Direction() == bidi.RightToLeft {
			runs = append(runs, bidi.ReverseString(run.String()))
		} else {
			runs = append(runs, run.String())
		}
	}
	if baseIsRTL(s) {
		slices.Reverse(runs)
	}
	return strings.Join(runs, "")
}

func hasRTL(s string) bool {
	for _, r := range s {
		if isRTLClass(r) {
			return true
		}
	}
	return false
}

// baseIsRTL reports whether the first strong character is right-to-left.
func baseIsRTL(s string) bool {
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL:
			return true
		case bidi.L:
			return false
		}
	}
	return false
}

func isRTLClass(r rune) bool {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.R, bidi.AL:
		return true
	}
	return false
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
