package core

import (
	"math"
	"strings"
)

// Vec is a point or direction in world coordinates.
type Vec struct {
	X float64
	Y float64
}

// Size is a width and height in world units.
type Size struct {
	W float64
	H float64
}

// Rect is an on-screen area.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Direction is a bitmask of held movement keys.
type Direction uint8

const (
	DirUp Direction = 1 << iota
	DirDown
	DirLeft
	DirRight
)

// ParseDirection maps a name ("up", "w", "left", "a", ...) to a direction.
func ParseDirection(name string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up", "w", "north":
		return DirUp, true
	case "down", "s", "south":
		return DirDown, true
	case "left", "a", "west":
		return DirLeft, true
	case "right", "d", "east":
		return DirRight, true
	default:
		return 0, false
	}
}

// Input tracks held movement keys, the pointer, and the gating flags that
// decide whether local movement is allowed.
type Input struct {
	held          Direction
	pointer       Vec
	windowFocused bool
	pageVisible   bool
	editFocused   bool
}

// NewInput starts focused and visible with nothing held.
func NewInput() *Input {
	return &Input{windowFocused: true, pageVisible: true}
}

// SetKey marks a direction as held or released.
func (in *Input) SetKey(d Direction, down bool) {
	if down {
		in.held |= d
	} else {
		in.held &^= d
	}
}

// Held returns the held directions.
func (in *Input) Held() Direction {
	return in.held
}

// SetWindowFocused updates the window focus flag.
func (in *Input) SetWindowFocused(v bool) { in.windowFocused = v }

// SetPageVisible updates the visibility flag.
func (in *Input) SetPageVisible(v bool) { in.pageVisible = v }

// SetEditFocused is true while a text field owns the keyboard.
func (in *Input) SetEditFocused(v bool) { in.editFocused = v }

// CanMove reports whether local movement is permitted this frame.
func (in *Input) CanMove() bool {
	return in.windowFocused && in.pageVisible && !in.editFocused
}

// Axis returns the unit movement vector for the held keys. Diagonals are
// normalised to the axis speed; opposing keys cancel.
func (in *Input) Axis() Vec {
	var v Vec
	if in.held&DirUp != 0 {
		v.Y--
	}
	if in.held&DirDown != 0 {
		v.Y++
	}
	if in.held&DirLeft != 0 {
		v.X--
	}
	if in.held&DirRight != 0 {
		v.X++
	}
	if v.X == 0 && v.Y == 0 {
		return Vec{}
	}
	l := math.Hypot(v.X, v.Y)
	return Vec{X: v.X / l, Y: v.Y / l}
}

// SetPointer stores the pointer position in world coordinates.
func (in *Input) SetPointer(p Vec) {
	in.pointer = p
}

// Pointer returns the last pointer position in world coordinates.
func (in *Input) Pointer() Vec {
	return in.pointer
}

// Reset releases every key and parks the pointer at the origin.
func (in *Input) Reset() {
	in.held = 0
	in.pointer = Vec{}
}

// MapPointer converts a screen position inside view into world coordinates.
func MapPointer(sx, sy float64, view Rect, world Size) Vec {
	if view.W <= 0 || view.H <= 0 {
		return Vec{}
	}
	return Vec{
		X: (sx - view.X) / view.W * world.W,
		Y: (sy - view.Y) / view.H * world.H,
	}
}
