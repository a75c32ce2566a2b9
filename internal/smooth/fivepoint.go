package smooth

import "github.com/gogpu/contour/internal/buffer"

// fivePoint replaces corner b between a and c by five points. The outer two
// sit factor of the way along each leg; the inner three come from repeated
// midpoint averaging toward b.
func fivePoint(a, b, c buffer.Point, factor float64) [5]buffer.Point {
	s1 := b.Add(a.Sub(b).Mul(factor))
	s5 := b.Add(c.Sub(b).Mul(factor))
	m15 := s1.Mid(s5)

	s3 := m15.Mid(b)

	lo := m15.Mid(s1)
	hi := b.Mid(s1)
	s2 := lo.Mid(hi).Mid(hi)

	lo = m15.Mid(s5)
	hi = b.Mid(s5)
	s4 := lo.Mid(hi).Mid(hi)

	return [5]buffer.Point{s1, s2, s3, s4, s5}
}

// FivePoint rounds every free vertex of pts into five points. Weighted
// points and the ends of an open polyline are copied unchanged. Generated
// points carry the elevation of the first point and weight Free.
func FivePoint(pts []buffer.Point, factor float64) []buffer.Point {
	n := len(pts)
	if n <= 2 {
		return append([]buffer.Point(nil), pts...)
	}
	z := pts[0].Z
	out := make([]buffer.Point, 0, n*5)

	emit := func(a, b, c buffer.Point) {
		for _, p := range fivePoint(a, b, c, factor) {
			out = append(out, buffer.Point{X: p.X, Y: p.Y, Z: z})
		}
	}

	closed := isClosed(pts)
	if closed && pts[0].W == buffer.Free {
		emit(pts[n-2], pts[0], pts[1])
	} else {
		out = append(out, pts[0])
	}
	for i := 1; i < n-1; i++ {
		if pts[i].W != buffer.Free {
			out = append(out, pts[i])
			continue
		}
		emit(pts[i-1], pts[i], pts[i+1])
	}
	if closed {
		out = append(out, out[0])
	} else {
		out = append(out, pts[n-1])
	}
	return out
}
