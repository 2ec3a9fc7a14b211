package render

import "fmt"

// ValidationWarning describes a layout issue found during validation.
// None of them change the output; grid overflow is kept as-is.
type ValidationWarning struct {
	PageNumber int
	ImageIndex int // -1 for labels
	Message    string
}

// ValidatePages checks placed boxes and labels against the page bounds.
func ValidatePages(doc *Document) []ValidationWarning {
	var warnings []ValidationWarning
	for _, page := range doc.Pages {
		warnings = append(warnings, validatePage(page)...)
	}
	return warnings
}

func validatePage(page Page) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01

	for i, img := range page.Images {
		box := img.Box
		if box.Y < -eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				ImageIndex: i,
				Message:    fmt.Sprintf("box bottom (%.2f) extends below the page", box.Y),
			})
		}
		if box.Y+box.H > PageH+eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				ImageIndex: i,
				Message:    fmt.Sprintf("box top (%.2f) extends above the page (%.2f)", box.Y+box.H, PageH),
			})
		}
		if box.X < -eps || box.X+box.W > PageW+eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				ImageIndex: i,
				Message:    fmt.Sprintf("box spans x %.2f..%.2f outside the page width (%.2f)", box.X, box.X+box.W, PageW),
			})
		}
		if box.W <= 0 || box.H <= 0 {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				ImageIndex: i,
				Message:    fmt.Sprintf("box has no area (%.2f x %.2f)", box.W, box.H),
			})
		}
	}

	for _, l := range page.Labels {
		if l.X < -eps || l.X+l.Width > PageW+eps || l.Baseline < -eps || l.Baseline > PageH+eps {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				ImageIndex: -1,
				Message:    fmt.Sprintf("label %q is partly outside the page", l.Text),
			})
		}
	}
	return warnings
}
