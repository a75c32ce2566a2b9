package clip

import (
	"errors"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/gogpu/contour/internal/buffer"
)

// Errors returned by New.
var (
	ErrTooFewPoints = errors.New("clip: fence needs at least five points")
	ErrNotClosed    = errors.New("clip: fence is not closed")
	ErrDegenerate   = errors.New("clip: fence encloses no area")
)

// Kind selects how the fence polygon is used.
type Kind uint8

const (
	// Block clips to the bounding rectangle of the fence points.
	Block Kind = iota
	// Shape clips to the fence polygon.
	Shape
)

// Rule selects which side of the fence is kept.
type Rule uint8

const (
	Inside Rule = iota
	Outside
)

// Result describes the outcome of Clip.
type Result uint8

const (
	// None means no part of the polyline was kept.
	None Result = iota
	// Whole means the polyline was kept unchanged.
	Whole
	// Pieces means the kept parts are returned separately.
	Pieces
)

func (r Result) String() string {
	switch r {
	case Whole:
		return "whole"
	case Pieces:
		return "pieces"
	default:
		return "none"
	}
}

// Region is a validated fence. It is read-only after New and safe for
// concurrent use.
type Region struct {
	kind   Kind
	rule   Rule
	rect   Rect
	edges  *EdgeClipper
	ring   orb.Ring
	border []Point
}

// New builds a clip region from a closed fence of at least five points.
func New(kind Kind, rule Rule, fence []orb.Point) (*Region, error) {
	if len(fence) < 5 {
		return nil, ErrTooFewPoints
	}
	if fence[0] != fence[len(fence)-1] {
		return nil, ErrNotClosed
	}
	ring := orb.Ring(slices.Clone(fence))
	rect := RectFromBound(ring.Bound())
	if rect.IsEmpty() {
		return nil, ErrDegenerate
	}

	r := &Region{kind: kind, rule: rule, rect: rect, edges: NewEdgeClipper(rect)}
	if kind == Block {
		r.border = rect.ring()
		return r, nil
	}
	if planar.Area(ring) == 0 {
		return nil, ErrDegenerate
	}
	r.ring = ring
	r.border = make([]Point, len(ring))
	for i, p := range ring {
		r.border[i] = Pt(p[0], p[1])
	}
	return r, nil
}

// Kind returns the fence kind.
func (r *Region) Kind() Kind { return r.kind }

// Rule returns the fence rule.
func (r *Region) Rule() Rule { return r.rule }

// Bound returns the bounding box of the fence.
func (r *Region) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.rect.X, r.rect.Y},
		Max: orb.Point{r.rect.Right(), r.rect.Top()},
	}
}

// Vertices returns the closed border of the fence: the rectangle corners
// of a block, the polygon of a shape.
func (r *Region) Vertices() []Point { return r.border }

// Covers reports whether a block fence encloses all of b. Shape fences
// never report coverage.
func (r *Region) Covers(b orb.Bound) bool {
	return r.kind == Block && r.rect.Covers(RectFromBound(b))
}

// Contains reports whether (x, y) lies within the fence or on its border.
func (r *Region) Contains(x, y float64) bool {
	p := Pt(x, y)
	if !r.rect.Contains(p) {
		return false
	}
	if r.kind == Block {
		return true
	}
	return planar.RingContains(r.ring, p.orb())
}

// Crosses reports whether segment a-b touches the fence border.
func (r *Region) Crosses(a, b Point) bool {
	for j := 0; j+1 < len(r.border); j++ {
		if _, ok := intersect(a, b, r.border[j], r.border[j+1]); ok {
			return true
		}
	}
	return false
}

// Clip keeps the parts of pts on the rule's side of the fence. When the
// whole polyline is kept the result is Whole and no pieces are returned.
// Points created on the border take the elevation of the polyline and
// weight Free. The pieces of a closed polyline are rejoined across its
// closing point.
func (r *Region) Clip(pts []buffer.Point) (Result, [][]buffer.Point) {
	if len(pts) < 2 {
		return None, nil
	}
	var c chain
	whole := true
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		emit := func(p, q Point) {
			c.add(lift(a, b, p), lift(a, b, q))
		}
		if !r.split(Pt(a.X, a.Y), Pt(b.X, b.Y), emit) {
			whole = false
		}
	}
	switch {
	case whole:
		return Whole, nil
	case len(c.pieces) == 0:
		return None, nil
	}

	n := len(pts)
	if c.closedAt(pts[0]) && pts[0].X == pts[n-1].X && pts[0].Y == pts[n-1].Y {
		last := c.pieces[len(c.pieces)-1]
		c.pieces[0] = append(last, c.pieces[0][1:]...)
		c.pieces = c.pieces[:len(c.pieces)-1]
	}
	return Pieces, c.pieces
}

// split emits the kept sub-segments of a-b and reports whether the segment
// was kept entirely.
func (r *Region) split(a, b Point, emit func(p, q Point)) bool {
	if r.kind == Block && r.rule == Inside {
		seg, ok := r.edges.ClipLine(a, b)
		if !ok {
			return false
		}
		emit(seg.P0, seg.P1)
		return seg.P0 == a && seg.P1 == b
	}

	ts := make([]float64, 2, 8)
	ts[0], ts[1] = 0, 1
	for j := 0; j+1 < len(r.border); j++ {
		if t, ok := intersect(a, b, r.border[j], r.border[j+1]); ok {
			ts = append(ts, t)
		}
	}
	slices.Sort(ts)
	ts = slices.Compact(ts)

	whole := true
	at := func(t float64) Point {
		switch t {
		case 0:
			return a
		case 1:
			return b
		}
		return a.Lerp(b, t)
	}
	for k := 0; k+1 < len(ts); k++ {
		m := a.Lerp(b, (ts[k]+ts[k+1])/2)
		if r.Contains(m.X, m.Y) != (r.rule == Inside) {
			whole = false
			continue
		}
		emit(at(ts[k]), at(ts[k+1]))
	}
	return whole
}

// intersect returns the parameter along a-b where it meets c-d.
func intersect(a, b, c, d Point) (float64, bool) {
	ab, cd := b.Sub(a), d.Sub(c)
	den := ab.Cross(cd)
	if den == 0 {
		return 0, false
	}
	ac := c.Sub(a)
	t := ac.Cross(cd) / den
	u := ac.Cross(ab) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// lift turns a clipped location on a-b back into a polyline point.
func lift(a, b buffer.Point, p Point) buffer.Point {
	switch {
	case p.X == a.X && p.Y == a.Y:
		return a
	case p.X == b.X && p.Y == b.Y:
		return b
	}
	return buffer.Point{X: p.X, Y: p.Y, Z: a.Z}
}

type chain struct {
	pieces [][]buffer.Point
}

func (c *chain) add(p, q buffer.Point) {
	if k := len(c.pieces); k > 0 {
		cur := c.pieces[k-1]
		if last := cur[len(cur)-1]; last.X == p.X && last.Y == p.Y {
			c.pieces[k-1] = append(cur, q)
			return
		}
	}
	c.pieces = append(c.pieces, []buffer.Point{p, q})
}

// closedAt reports whether there are several pieces, the first starting and
// the last ending at p.
func (c *chain) closedAt(p buffer.Point) bool {
	if len(c.pieces) < 2 {
		return false
	}
	first := c.pieces[0][0]
	last := c.pieces[len(c.pieces)-1]
	end := last[len(last)-1]
	return first.X == p.X && first.Y == p.Y && end.X == p.X && end.Y == p.Y
}
