package smooth

import "github.com/gogpu/contour/internal/buffer"

// cornerRatio is the fraction of the way a corner moves toward the midpoint
// of its neighbours.
const cornerRatio = 0.3333

// isClosed reports whether the polyline ends where it starts.
func isClosed(pts []buffer.Point) bool {
	n := len(pts)
	return n > 2 && pts[0].X == pts[n-1].X && pts[0].Y == pts[n-1].Y
}

// CutCorners moves free points that form an isolated turn toward the
// midpoint of their neighbours. A point qualifies when its turn direction
// is opposite to the turn at both neighbours. Neighbour positions are read
// from the input, so the result does not depend on traversal order.
func CutCorners(pts []buffer.Point) []buffer.Point {
	n := len(pts)
	out := make([]buffer.Point, n)
	copy(out, pts)
	if n < 3 {
		return out
	}
	closed := isClosed(pts)

	turn := make([]int, n)
	for i := 1; i < n-1; i++ {
		turn[i] = buffer.SideOf(pts[i-1], pts[i+1], pts[i])
	}
	if closed {
		turn[0] = buffer.SideOf(pts[n-2], pts[1], pts[0])
		turn[n-1] = turn[0]
	}

	corner := func(t, before, after int) bool {
		return t != 0 && t == -before && t == -after
	}
	move := func(prev, p, next buffer.Point) buffer.Point {
		mid := prev.Mid(next)
		p.X += (mid.X - p.X) * cornerRatio
		p.Y += (mid.Y - p.Y) * cornerRatio
		return p
	}

	for i := 1; i < n-1; i++ {
		if pts[i].W == buffer.Free && corner(turn[i], turn[i-1], turn[i+1]) {
			out[i] = move(pts[i-1], pts[i], pts[i+1])
		}
	}
	if closed && n > 3 && pts[0].W == buffer.Free && corner(turn[0], turn[n-2], turn[1]) {
		out[0] = move(pts[n-2], pts[0], pts[1])
		out[n-1].X, out[n-1].Y = out[0].X, out[0].Y
	}
	return out
}
