// Package smooth implements contour smoothing.
//
// A Pipeline filters a traced polyline, smooths it and filters the result
// again. Vertex mode cuts isolated corners and rounds every free vertex into
// five points. The spline modes fit a cubic smoothing spline to x and y
// against cumulative square-root chord length, sample it density times per
// segment and pull the samples back where smoothing bends a break line or
// strays too far from the contour elevation.
//
// Points with a non-zero weight are never moved.
package smooth

import (
	"math"
	"slices"

	"github.com/gogpu/contour/internal/buffer"
	"github.com/gogpu/contour/internal/knot"
)

// Mode selects the smoothing method.
type Mode uint8

// Smoothing modes.
const (
	None Mode = iota
	Vertex
	Spline
	SplineNoOverlap
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Vertex:
		return "vertex"
	case Spline:
		return "spline"
	case SplineNoOverlap:
		return "spline-no-overlap"
	default:
		return "none"
	}
}

// Parameter ranges. Values outside a range are replaced by its default.
const (
	VertexFactorMin     = 0.1
	VertexFactorMax     = 0.5
	VertexFactorDefault = 0.3

	SplineFactorMin     = 0.0
	SplineFactorMax     = 5.0
	SplineFactorDefault = 2.5

	DensityMin     = 3
	DensityMax     = 10
	DensityDefault = 5
)

// closeTolerance is the end point distance below which a polyline is fitted
// as a closed curve.
const closeTolerance = 0.0001

// Clamp returns factor and density valid for mode.
func Clamp(mode Mode, factor float64, density int) (float64, int) {
	switch mode {
	case Vertex:
		if !(factor >= VertexFactorMin && factor <= VertexFactorMax) {
			factor = VertexFactorDefault
		}
	case Spline, SplineNoOverlap:
		if !(factor >= SplineFactorMin && factor <= SplineFactorMax) {
			factor = SplineFactorDefault
		}
		if density < DensityMin || density > DensityMax {
			density = DensityDefault
		}
	}
	return factor, density
}

// Pipeline smooths contour polylines. The zero value does nothing. A
// Pipeline reuses its spline scratch space and is not safe for concurrent
// use.
type Pipeline struct {
	Mode    Mode
	Factor  float64
	Density int

	// Interval is the contour interval. Interval pull-back is skipped when
	// it is not positive or Surface is nil.
	Interval float64
	Surface  Surface

	// PPTol is the point-to-point tolerance of the surface.
	PPTol float64

	solver Solver
}

// Smooth returns the smoothed form of pts. Polylines of three points or
// fewer are returned unchanged. pts is not modified.
func (p *Pipeline) Smooth(pts []buffer.Point) []buffer.Point {
	if p.Mode == None || len(pts) <= 3 {
		return pts
	}
	factor, density := Clamp(p.Mode, p.Factor, p.Density)
	tol := FilterTolerance(p.PPTol)
	work := Filter(slices.Clone(pts), tol)

	var out []buffer.Point
	switch p.Mode {
	case Vertex:
		out = FivePoint(CutCorners(work), factor)
	case Spline, SplineNoOverlap:
		out = p.spline(work, factor, density)
	default:
		out = work
	}
	return Filter(out, tol)
}

// spline fits, samples and pulls back. Polylines the solver cannot carry
// are returned as given.
func (p *Pipeline) spline(pts []buffer.Point, factor float64, density int) []buffer.Point {
	knots := compactXY(pts)
	n := len(knots)
	if n < 3 {
		return pts
	}
	closed := knots[0].Distance(knots[n-1]) < closeTolerance
	if closed {
		if n < 4 {
			return pts
		}
		knots[n-1].X, knots[n-1].Y = knots[0].X, knots[0].Y
	}

	rho := make([]float64, n)
	ts := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, k := range knots {
		if k.W == buffer.Free {
			rho[i] = factor
		}
		xs[i], ys[i] = k.X, k.Y
		if i > 0 {
			ts[i] = ts[i-1] + math.Sqrt(k.Distance(knots[i-1]))
		}
	}
	rho[0], rho[n-1] = 0, 0
	if closed {
		rho[1], rho[n-2] = 0, 0
	}

	s := &p.solver
	defer s.Release()
	if err := s.Prepare(ts, rho, closed); err != nil {
		return pts
	}

	span := density + 1
	value := knots[0].Z
	samples := make([]buffer.Point, (n-1)*span+1)
	for i := range samples {
		samples[i].Z = value
	}
	sample := func(set func(*buffer.Point, float64)) {
		for seg := 0; seg < n-1; seg++ {
			for m := range span {
				set(&samples[seg*span+m], s.Evaluate(seg, float64(m)/float64(span)))
			}
		}
		set(&samples[len(samples)-1], s.Evaluate(n-2, 1))
	}
	if err := s.Fit(xs); err != nil {
		return pts
	}
	sample(func(q *buffer.Point, v float64) { q.X = v })
	if err := s.Fit(ys); err != nil {
		return pts
	}
	sample(func(q *buffer.Point, v float64) { q.Y = v })
	for j, k := range knots {
		samples[j*span].W = k.W
	}

	PullBreaklines(samples, knots, span)
	if p.Mode == Spline {
		if p.Interval > 0 && p.Surface != nil {
			PullInterval(samples, knots, span, p.Surface, value, p.Interval*IntervalRatio, p.PPTol)
		}
		samples = knot.Remove(samples, knots, density)
	}
	return samples
}

// compactXY drops points that repeat the planimetric position of their
// predecessor. A dropped weighted point passes its weight on.
func compactXY(pts []buffer.Point) []buffer.Point {
	out := make([]buffer.Point, 0, len(pts))
	for _, q := range pts {
		if k := len(out); k > 0 && out[k-1].X == q.X && out[k-1].Y == q.Y {
			out[k-1].W = max(out[k-1].W, q.W)
			continue
		}
		out = append(out, q)
	}
	return out
}
