package render

import "testing"

func TestHexToColor(t *testing.T) {
	tests := []struct {
		input      string
		wantR      int
		wantG      int
		wantB      int
		wantParsed bool
	}{
		{"#000000", 0, 0, 0, true},
		{"#ffffff", 255, 255, 255, true},
		{"#FF8000", 255, 128, 0, true},
		{"#1a2B3c", 26, 43, 60, true},
		{"", 255, 255, 255, false},
		{"#fff", 255, 255, 255, false},
		{"ff0000", 255, 255, 255, false},
		{"#ff00000", 255, 255, 255, false},
		{"#gg0000", 255, 255, 255, false},
		{"red", 255, 255, 255, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ok := ParseHex(tt.input)
			if ok != tt.wantParsed {
				t.Errorf("ParseHex(%q) ok = %v, want %v", tt.input, ok, tt.wantParsed)
			}
			r, g, b := HexToColor(tt.input).RGB255()
			if r != tt.wantR || g != tt.wantG || b != tt.wantB {
				t.Errorf("HexToColor(%q) = (%d,%d,%d), want (%d,%d,%d)", tt.input, r, g, b, tt.wantR, tt.wantG, tt.wantB)
			}
		})
	}
}

func TestHexToColor_ChannelsNormalized(t *testing.T) {
	c := HexToColor("#ff0080")
	if c.R != 1 || c.G != 0 {
		t.Errorf("expected R=1 G=0, got R=%f G=%f", c.R, c.G)
	}
	if !almostEqual(c.B, 128.0/255) {
		t.Errorf("expected B=%f, got %f", 128.0/255, c.B)
	}
}
