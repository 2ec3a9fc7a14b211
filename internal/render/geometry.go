package render

import "math"

// Page dimensions in points (A4 at 72 dpi). Every page, cover included, uses them.
const (
	PageW = 595.0
	PageH = 842.0
)

// Fallback grid: two columns, 46% cells, 48% pitch, 2% margin.
const (
	gridColumns = 2
	gridPitch   = 48.0
	gridMargin  = 2.0
	gridCell    = 46.0
)

// Rect is an absolute rectangle in points with a bottom-left origin
// (PDF convention, Y increases upward).
type Rect struct {
	X, Y, W, H float64
}

// PercentBox is a rectangle expressed as 0-100 percentages of the page,
// Y measured from the top edge.
type PercentBox struct {
	X, Y, W, H float64
}

// ToAbsolute converts a percentage box to absolute page coordinates.
// The box's Y is flipped to the bottom-left origin and backed off by its own height.
func ToAbsolute(b PercentBox) Rect {
	h := b.H / 100 * PageH
	return Rect{
		X: b.X / 100 * PageW,
		Y: PageH - b.Y/100*PageH - h,
		W: b.W / 100 * PageW,
		H: h,
	}
}

// AnchorPoint converts a height-less percentage point (text anchor) to
// absolute coordinates. No height is subtracted.
func AnchorPoint(xPct, yPct float64) (x, y float64) {
	return xPct / 100 * PageW, PageH - yPct/100*PageH
}

// FitContain scales a srcW x srcH image to fit entirely inside a boxW x boxH
// box, preserving aspect ratio, and returns the drawn size and the offsets
// that center it in the box. A box without area yields a zero size.
func FitContain(srcW, srcH, boxW, boxH float64) (drawW, drawH, offsetX, offsetY float64) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, boxW / 2, boxH / 2
	}
	if boxW <= 0 || boxH <= 0 {
		return 0, 0, 0, 0
	}
	scale := math.Min(boxW/srcW, boxH/srcH)
	drawW = srcW * scale
	drawH = srcH * scale
	return drawW, drawH, (boxW - drawW) / 2, (boxH - drawH) / 2
}

// FitContainRect places a srcW x srcH image inside box with contain-fit and
// returns the absolute rectangle to draw.
func FitContainRect(srcW, srcH float64, box Rect) Rect {
	drawW, drawH, offX, offY := FitContain(srcW, srcH, box.W, box.H)
	return Rect{X: box.X + offX, Y: box.Y + offY, W: drawW, H: drawH}
}

// DefaultGridBox returns the fallback percentage box for the photo at index
// within its page. Rows grow downward without bound; overflow past the page
// bottom is reported, not re-paginated.
func DefaultGridBox(index int) PercentBox {
	column := index % gridColumns
	row := index / gridColumns
	return PercentBox{
		X: float64(column)*gridPitch + gridMargin,
		Y: float64(row)*gridPitch + gridMargin,
		W: gridCell,
		H: gridCell,
	}
}

// FullPage is the whole page as an absolute rectangle.
func FullPage() Rect {
	return Rect{X: 0, Y: 0, W: PageW, H: PageH}
}
