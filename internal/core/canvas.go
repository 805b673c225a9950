package core

// Canvas receives the drawing commands of one frame in world coordinates.
type Canvas interface {
	Clear()
	Line(x0, y0, x1, y1 float64)
	Circle(x, y, r float64, color string)
	Label(text string, x, y float64)
}
