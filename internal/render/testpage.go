package render

import (
	"fmt"
	"image"
	"image/color"
	"time"
)

// testSlot is one calibration image: a solid swatch of the given aspect
// placed either in a grid cell or at an explicit percentage box.
type testSlot struct {
	W, H   int
	Fill   color.NRGBA
	Layout *PercentBox
}

var slotColors = []color.NRGBA{
	{220, 40, 40, 255},
	{40, 90, 220, 255},
	{40, 150, 60, 255},
	{240, 150, 30, 255},
}

// testPages returns the calibration pages: every grid cell with landscape,
// portrait, square and panoramic swatches, then a page of manual layouts
// with extreme aspects.
func testPages() [][]testSlot {
	grid := [][2]int{{300, 200}, {200, 300}, {240, 240}, {400, 100}}
	var gridPage []testSlot
	for i, s := range grid {
		gridPage = append(gridPage, testSlot{W: s[0], H: s[1], Fill: slotColors[i%len(slotColors)]})
	}
	layoutPage := []testSlot{
		{W: 160, H: 90, Fill: slotColors[0], Layout: &PercentBox{X: 5, Y: 5, W: 90, H: 30}},
		{W: 100, H: 400, Fill: slotColors[1], Layout: &PercentBox{X: 5, Y: 40, W: 40, H: 55}},
		{W: 240, H: 240, Fill: slotColors[2], Layout: &PercentBox{X: 55, Y: 40, W: 40, H: 25}},
		{W: 500, H: 80, Fill: slotColors[3], Layout: &PercentBox{X: 55, Y: 70, W: 40, H: 25}},
	}
	return [][]testSlot{gridPage, layoutPage}
}

func solidAsset(w, h int, fill color.NRGBA) (*Asset, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	return encodePNG(img)
}

// buildTestDocument lays out a blank cover followed by the calibration pages
// on a light background.
func buildTestDocument() (*Document, error) {
	a := newAssembler()
	if err := a.addCover(Page{}); err != nil {
		return nil, err
	}

	bg := HexToColor("#F4F4F4")
	for n, slots := range testPages() {
		page := Page{AlbumPageID: fmt.Sprintf("calibration-%d", n+1), Background: &bg}
		for i, s := range slots {
			asset, err := solidAsset(s.W, s.H, s.Fill)
			if err != nil {
				return nil, err
			}
			pct, explicit := DefaultGridBox(i), false
			if s.Layout != nil {
				pct, explicit = *s.Layout, true
			}
			box := ToAbsolute(pct)
			page.Images = append(page.Images, PlacedImage{
				Ref:        fmt.Sprintf("swatch-%dx%d", s.W, s.H),
				PhotoIndex: i,
				Explicit:   explicit,
				Box:        box,
				Draw:       FitContainRect(float64(s.W), float64(s.H), box),
				Asset:      asset,
			})
		}
		if err := a.addPage(page); err != nil {
			return nil, err
		}
	}
	return a.finalize(nil)
}

// GenerateTestPDF renders a calibration document with the debug overlay on,
// for checking geometry against a printer or viewer without any album data.
func GenerateTestPDF(creationDate time.Time) ([]byte, error) {
	doc, err := buildTestDocument()
	if err != nil {
		return nil, err
	}
	out, err := writePDF(doc, pdfOptions{
		title:        "Layout calibration",
		creationDate: creationDate,
		debug:        true,
	})
	if err != nil {
		return nil, err
	}
	return out.data, nil
}
