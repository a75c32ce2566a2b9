package buffer

import "math"

// Weight tags how a contour point may be moved by smoothing.
type Weight uint8

// Point weights.
const (
	// Free points may be moved.
	Free Weight = iota

	// Exact points coincide with a mesh vertex and never move.
	Exact

	// Breakline points lie on a break line. Runs between two of them are
	// restored onto the original chord after smoothing.
	Breakline
)

// Point is a weighted contour point. Vector operations act on X and Y and
// leave Z and W from the receiver.
type Point struct {
	X, Y, Z float64
	W       Weight
}

// Pt is a convenience function to create a free Point.
func Pt(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// Add returns the planimetric sum of two points.
func (p Point) Add(q Point) Point {
	p.X += q.X
	p.Y += q.Y
	return p
}

// Sub returns the planimetric difference of two points.
func (p Point) Sub(q Point) Point {
	p.X -= q.X
	p.Y -= q.Y
	return p
}

// Mul returns the point scaled by s.
func (p Point) Mul(s float64) Point {
	p.X *= s
	p.Y *= s
	return p
}

// Mid returns the planimetric midpoint of p and q.
func (p Point) Mid(q Point) Point {
	p.X = (p.X + q.X) / 2
	p.Y = (p.Y + q.Y) / 2
	return p
}

// Cross returns the 2D cross product of p and q treated as vectors.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Distance returns the planimetric distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DistanceSquared returns the squared planimetric distance.
func (p Point) DistanceSquared(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Lerp interpolates X and Y between p and q.
// t=0 returns p, t=1 returns q.
func (p Point) Lerp(q Point, t float64) Point {
	p.X += (q.X - p.X) * t
	p.Y += (q.Y - p.Y) * t
	return p
}

// SameXYZ reports whether p and q have identical coordinates.
func (p Point) SameXYZ(q Point) bool {
	return p.X == q.X && p.Y == q.Y && p.Z == q.Z
}

// SideOf reports on which side of the directed line a->b the point p lies:
// 1 left, -1 right, 0 on the line.
func SideOf(a, b, p Point) int {
	o := b.Sub(a).Cross(p.Sub(a))
	switch {
	case o > 0:
		return 1
	case o < 0:
		return -1
	default:
		return 0
	}
}
