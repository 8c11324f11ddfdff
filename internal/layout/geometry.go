// Package layout converts raw pointer and gesture coordinates into menu anchors
// and keeps a sized menu inside the viewport.
//
// All coordinates are logical window pixels with the origin at the bottom-left
// corner and Y growing upward.
package layout

import "math"

// Point is a position in window coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a width/height pair in logical pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Viewport is the drawable window area.
type Viewport = Size

// Rect is an axis-aligned rectangle anchored at its bottom-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Origin returns the bottom-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Top returns the Y coordinate of the upper edge.
func (r Rect) Top() float64 { return r.Y + r.Height }

// Anchor is the window-space point a menu opens at. FromGesture records the
// input channel that produced it, which controls post-layout clamping.
type Anchor struct {
	Point
	FromGesture bool
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
