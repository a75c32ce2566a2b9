// Package knot removes self-intersections that spline smoothing introduces
// into a contour.
//
// The smoothed polyline is expected in the layout produced by the spline
// sampler: original point j sits at index j*(density+1) and the density
// samples between two original points belong to that original segment.
// A knot is collapsed by moving every sample of the original segments that
// own the two crossing segments back onto the original chord.
package knot

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/contour/internal/buffer"
)

// MaxPasses bounds the number of detect-and-collapse passes. Collapsing one
// knot can expose another, so detection is repeated.
const MaxPasses = 4

// segment is one consecutive point pair, stored with its end points in
// lexical (x, then y) order for the sweep.
type segment struct {
	index          int
	reversed       bool
	x1, y1, x2, y2 float64
}

// Hit is one side of a crossing: the segment, the segment it crosses and
// the distance from the segment's own start to the crossing point.
type Hit struct {
	Segment, Other int
	Distance       float64
	X, Y           float64
}

// Remove collapses the knots of smoothed against original and returns
// smoothed. The slice is modified in place. Polylines without crossings,
// or whose length does not match the sampler layout, are returned
// unchanged.
func Remove(smoothed, original []buffer.Point, density int) []buffer.Point {
	span := density + 1
	if len(original) < 2 || len(smoothed) != (len(original)-1)*span+1 {
		return smoothed
	}
	closed := len(smoothed) > 3 &&
		smoothed[0].X == smoothed[len(smoothed)-1].X &&
		smoothed[0].Y == smoothed[len(smoothed)-1].Y

	for range MaxPasses {
		hits := Find(smoothed, closed)
		if len(hits) == 0 {
			break
		}
		collapsed := make(map[int]struct{})
		for _, h := range hits {
			lofs := h.Segment / span
			if _, done := collapsed[lofs]; done {
				continue
			}
			collapsed[lofs] = struct{}{}
			collapse(smoothed, original, lofs, span)
		}
	}
	return smoothed
}

// Find returns the crossings between non-adjacent segments of pts, two hits
// per crossing, sorted by segment and distance. On a closed polyline the
// first and last segments are adjacent.
func Find(pts []buffer.Point, closed bool) []Hit {
	if len(pts) < 4 {
		return nil
	}
	table := make([]segment, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		s := segment{index: i, x1: pts[i].X, y1: pts[i].Y, x2: pts[i+1].X, y2: pts[i+1].Y}
		if s.x1 > s.x2 || (s.x1 == s.x2 && s.y1 > s.y2) {
			s.reversed = true
			s.x1, s.y1, s.x2, s.y2 = s.x2, s.y2, s.x1, s.y1
		}
		table = append(table, s)
	}
	slices.SortStableFunc(table, func(a, b segment) int {
		if c := cmp.Compare(a.x1, b.x1); c != 0 {
			return c
		}
		return cmp.Compare(a.y1, b.y1)
	})

	last := len(table) - 1
	var hits []Hit
	var active []segment
	for _, s := range table {
		active = slices.DeleteFunc(active, func(a segment) bool { return a.x2 < s.x1 })
		for _, a := range active {
			if adjacent(a.index, s.index, last, closed) {
				continue
			}
			x, y, ok := cross(a, s)
			if !ok {
				continue
			}
			hits = append(hits,
				Hit{Segment: s.index, Other: a.index, Distance: s.distance(x, y), X: x, Y: y},
				Hit{Segment: a.index, Other: s.index, Distance: a.distance(x, y), X: x, Y: y},
			)
		}
		active = append(active, s)
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Segment, b.Segment); c != 0 {
			return c
		}
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits
}

func adjacent(i, j, last int, closed bool) bool {
	d := i - j
	if d < 0 {
		d = -d
	}
	if d <= 1 {
		return true
	}
	return closed && d == last
}

// distance measures from the segment's start in polyline order.
func (s segment) distance(x, y float64) float64 {
	sx, sy := s.x1, s.y1
	if s.reversed {
		sx, sy = s.x2, s.y2
	}
	return math.Hypot(x-sx, y-sy)
}

// cross reports a proper crossing of a and b and its location. Touching
// and collinear segments do not cross.
func cross(a, b segment) (float64, float64, bool) {
	o1 := orient(a.x1, a.y1, a.x2, a.y2, b.x1, b.y1)
	o2 := orient(a.x1, a.y1, a.x2, a.y2, b.x2, b.y2)
	o3 := orient(b.x1, b.y1, b.x2, b.y2, a.x1, a.y1)
	o4 := orient(b.x1, b.y1, b.x2, b.y2, a.x2, a.y2)
	if !opposite(o1, o2) || !opposite(o3, o4) {
		return 0, 0, false
	}
	rx, ry := a.x2-a.x1, a.y2-a.y1
	sx, sy := b.x2-b.x1, b.y2-b.y1
	den := rx*sy - ry*sx
	if den == 0 {
		return 0, 0, false
	}
	t := ((b.x1-a.x1)*sy - (b.y1-a.y1)*sx) / den
	return a.x1 + t*rx, a.y1 + t*ry, true
}

func orient(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func opposite(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

// collapse moves the samples of original segment lofs onto its chord.
func collapse(pts, original []buffer.Point, lofs, span int) {
	a, b := original[lofs], original[lofs+1]
	for m := 0; m <= span; m++ {
		i := lofs*span + m
		if i >= len(pts) {
			break
		}
		t := float64(m) / float64(span)
		x, y := a.X, a.Y
		if b.X != a.X {
			x = a.X + (b.X-a.X)*t
		}
		if b.Y != a.Y {
			y = a.Y + (b.Y-a.Y)*t
		}
		pts[i].X, pts[i].Y = x, y
	}
}
