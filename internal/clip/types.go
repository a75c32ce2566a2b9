// Package clip restricts contour polylines to a fence.
//
// A fence is a closed polygon used either as a block (its bounding
// rectangle) or as a shape (the polygon itself). With the Inside rule the
// parts of a polyline within the fence are kept; with the Outside rule the
// parts beyond it.
package clip

import "github.com/paulmach/orb"

// Point is a planimetric location.
type Point struct {
	X, Y float64
}

// Pt creates a Point from x, y coordinates.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns the difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Cross returns the z component of the cross product p × q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Lerp performs linear interpolation between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

func (p Point) orb() orb.Point { return orb.Point{p.X, p.Y} }

// Rect is an axis aligned rectangle. X, Y is the lower left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// NewRect creates a Rect from position and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectFromBound converts an orb bound.
func RectFromBound(b orb.Bound) Rect {
	return Rect{X: b.Min[0], Y: b.Min[1], W: b.Max[0] - b.Min[0], H: b.Max[1] - b.Min[1]}
}

// Right returns the maximum x.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Top returns the maximum y.
func (r Rect) Top() float64 {
	return r.Y + r.H
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Top()
}

// Covers reports whether other lies entirely within r.
func (r Rect) Covers(other Rect) bool {
	return other.X >= r.X && other.Right() <= r.Right() &&
		other.Y >= r.Y && other.Top() <= r.Top()
}

// Intersects returns true if two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return !(other.X > r.Right() || other.Right() < r.X ||
		other.Y > r.Top() || other.Top() < r.Y)
}

// IsEmpty returns true if the rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// ring returns the border of r as a closed anticlockwise ring.
func (r Rect) ring() []Point {
	return []Point{
		{r.X, r.Y}, {r.Right(), r.Y}, {r.Right(), r.Top()}, {r.X, r.Top()}, {r.X, r.Y},
	}
}

// LineSeg represents a line segment.
type LineSeg struct {
	P0, P1 Point
}
