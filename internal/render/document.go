package render

import (
	"errors"
	"fmt"
)

// PageKind distinguishes the cover from content pages.
type PageKind string

const (
	PageCover   PageKind = "cover"
	PageContent PageKind = "content"
)

// PlacedImage is one image with its target box and contain-fitted draw rect.
type PlacedImage struct {
	Ref        string
	PhotoIndex int  // index within the album page; -1 for the cover
	Explicit   bool // box came from a manual layout rather than the grid
	Box        Rect
	Draw       Rect
	Asset      *Asset
}

// PlacedLabel is one cover label. X is the left edge of the glyph run and
// Baseline is measured from the page bottom.
type PlacedLabel struct {
	Text     string // logical order, as measured
	Visual   string // left-to-right glyph order, as drawn
	X        float64
	Baseline float64
	Width    float64
	FontSize float64
	Color    Color
}

// Page is one output page. Drawing order is background, images, labels.
type Page struct {
	Number      int
	Kind        PageKind
	AlbumPageID string
	Background  *Color
	Images      []PlacedImage
	Labels      []PlacedLabel
}

// Document is the full render plan, handed to the PDF writer once finalized.
type Document struct {
	Pages []Page
	Font  *Font // nil when no labels are drawn
}

// ImageCount returns the number of images placed across all pages.
func (d *Document) ImageCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Images)
	}
	return n
}

type assemblyState int

const (
	stateInit assemblyState = iota
	stateCoverBuilt
	statePageBuilt
	stateFinalized
)

func (s assemblyState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateCoverBuilt:
		return "cover-built"
	case statePageBuilt:
		return "page-built"
	case stateFinalized:
		return "finalized"
	}
	return "unknown"
}

var errInvalidTransition = errors.New("invalid assembly transition")

// assembler accumulates pages in the order Init → CoverBuilt → PageBuilt* →
// Finalized. Pages are immutable once added.
type assembler struct {
	state assemblyState
	doc   Document
}

func newAssembler() *assembler {
	return &assembler{state: stateInit}
}

func (a *assembler) addCover(p Page) error {
	if a.state != stateInit {
		return fmt.Errorf("%w: cover from %s", errInvalidTransition, a.state)
	}
	p.Kind = PageCover
	a.append(p)
	a.state = stateCoverBuilt
	return nil
}

func (a *assembler) addPage(p Page) error {
	if a.state != stateCoverBuilt && a.state != statePageBuilt {
		return fmt.Errorf("%w: page from %s", errInvalidTransition, a.state)
	}
	p.Kind = PageContent
	a.append(p)
	a.state = statePageBuilt
	return nil
}

func (a *assembler) append(p Page) {
	p.Number = len(a.doc.Pages) + 1
	a.doc.Pages = append(a.doc.Pages, p)
}

func (a *assembler) finalize(f *Font) (*Document, error) {
	if a.state != stateCoverBuilt && a.state != statePageBuilt {
		return nil, fmt.Errorf("%w: finalize from %s", errInvalidTransition, a.state)
	}
	a.state = stateFinalized
	a.doc.Font = f
	doc := a.doc
	return &doc, nil
}
