package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/vovakirdan/wirechat-room/internal/palette"
)

var (
	backgroundColor = color.RGBA{R: 0x12, G: 0x14, B: 0x1a, A: 0xff}
	gridColor       = color.RGBA{R: 0x2a, G: 0x2e, B: 0x38, A: 0xff}
	labelColor      = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
)

// screenCanvas paints engine drawing commands onto an ebiten image. World
// coordinates map 1:1 to pixels inside the world view.
type screenCanvas struct {
	dst  *ebiten.Image
	face text.Face
}

func (c screenCanvas) Clear() {
	c.dst.Fill(backgroundColor)
}

func (c screenCanvas) Line(x0, y0, x1, y1 float64) {
	vector.StrokeLine(c.dst, float32(x0), float32(y0), float32(x1), float32(y1), 1, gridColor, false)
}

func (c screenCanvas) Circle(x, y, r float64, hex string) {
	vector.DrawFilledCircle(c.dst, float32(x), float32(y), float32(r), palette.MustParse(hex), true)
}

func (c screenCanvas) Label(s string, x, y float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignEnd
	op.ColorScale.ScaleWithColor(labelColor)
	text.Draw(c.dst, s, c.face, op)
}
