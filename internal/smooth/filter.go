package smooth

import (
	"math"

	"github.com/gogpu/contour/internal/buffer"
)

// FilterTolerance returns the chord deviation tolerance for a mesh
// point-to-point tolerance.
func FilterTolerance(ppTol float64) float64 {
	tol := ppTol * 10
	if tol >= 0.1 || tol <= 0 {
		tol = 0.01
	}
	return tol
}

// Filter removes points that lie within tol of the chord joining the points
// kept around them. A baseline chord is extended forward until an
// intermediate point deviates by more than tol; the points strictly inside
// the accepted chord are dropped. Weighted points and both ends are always
// kept. The result reuses the storage of pts.
func Filter(pts []buffer.Point, tol float64) []buffer.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	delta := math.Abs(tol)
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	drop := func(from, to int) {
		for i := from; i < to; i++ {
			keep[i] = false
		}
	}

	i1, i2 := 0, 2
	for ; i2 < n; i2++ {
		p1, p2 := pts[i1], pts[i2]
		dx, dy := p2.X-p1.X, p2.Y-p1.Y
		r := math.Hypot(dx, dy)
		if r == 0 {
			continue
		}
		a1, a2 := dy/r, -dx/r
		a3 := -a1*p1.X - a2*p1.Y
		for i3 := i1 + 1; i3 < i2; i3++ {
			d := a1*pts[i3].X + a2*pts[i3].Y + a3
			if math.Abs(d) > delta {
				drop(i1+1, i2-1)
				i1 = i2 - 1
				break
			}
		}
	}
	drop(i1+1, n-1)

	out := pts[:0]
	for i, p := range pts {
		if keep[i] || p.W != buffer.Free {
			out = append(out, p)
		}
	}
	return out
}
