package palette

import (
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#ff8000", color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, true},
		{"00ff00", color.RGBA{G: 0xff, A: 0xff}, true},
		{"#999", color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}, true},
		{"#12345", Fallback, false},
		{"#gggggg", Fallback, false},
		{"", Fallback, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestForIDIsStable(t *testing.T) {
	a := ForID("player-1")
	if a != ForID("player-1") {
		t.Fatalf("colour for the same id changed")
	}
	if _, ok := Parse(a); !ok {
		t.Fatalf("assigned colour %q does not parse", a)
	}
}
