// Package palette parses participant colours and assigns stable ones.
package palette

import (
	"hash/fnv"
	"image/color"
	"strconv"
	"strings"
)

// Fallback is used for missing or unparsable colours.
var Fallback = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

var assignable = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

// Parse converts "#rgb" or "#rrggbb" (leading '#' optional) to an opaque colour.
func Parse(hex string) (color.RGBA, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Fallback, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Fallback, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// MustParse is Parse that falls back silently.
func MustParse(hex string) color.RGBA {
	c, _ := Parse(hex)
	return c
}

// ForID picks a stable colour for a participant id.
func ForID(id string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return assignable[h.Sum32()%uint32(len(assignable))]
}
