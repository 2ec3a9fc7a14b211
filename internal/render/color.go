package render

import (
	"math"
	"regexp"
	"strconv"
)

// Color is an RGB color with channels normalized to 0..1.
type Color struct {
	R, G, B float64
}

// White is the fallback for anything that is not a #RRGGBB string.
var White = Color{R: 1, G: 1, B: 1}

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is exactly #RRGGBB.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// HexToColor resolves a #RRGGBB string. Anything else resolves to white.
func HexToColor(s string) Color {
	c, ok := ParseHex(s)
	if !ok {
		return White
	}
	return c
}

// ParseHex parses #RRGGBB and reports whether the input was valid.
func ParseHex(s string) (Color, bool) {
	if !IsHexColor(s) {
		return White, false
	}
	return Color{
		R: hexChannel(s[1:3]),
		G: hexChannel(s[3:5]),
		B: hexChannel(s[5:7]),
	}, true
}

func hexChannel(pair string) float64 {
	v, _ := strconv.ParseUint(pair, 16, 8) // validated by hexColorRe
	return float64(v) / 255
}

// RGB255 returns the channels scaled back to 0..255 for the PDF writer.
func (c Color) RGB255() (r, g, b int) {
	return to255(c.R), to255(c.G), to255(c.B)
}

func to255(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
