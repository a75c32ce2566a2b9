package mesh

import "math"

// Point is a mesh vertex. X and Y are planimetric, Z is the elevation.
type Point struct {
	X, Y, Z float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// Sub returns the planimetric difference p - q. Z is dropped.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Cross returns the 2D cross product of p and q treated as vectors.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Dot returns the 2D dot product of p and q treated as vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Distance returns the planimetric distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DistanceSquared returns the squared planimetric distance between two points.
func (p Point) DistanceSquared(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Lerp interpolates all three coordinates between p and q.
// t=0 returns p, t=1 returns q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
		Z: p.Z + (q.Z-p.Z)*t,
	}
}

// Orient returns twice the signed area of triangle (a, b, c).
// Positive means anticlockwise.
func Orient(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// SideOf reports on which side of the directed line a->b the point p lies:
// 1 left, -1 right, 0 on the line.
func SideOf(a, b, p Point) int {
	o := Orient(a, b, p)
	switch {
	case o > 0:
		return 1
	case o < 0:
		return -1
	default:
		return 0
	}
}
