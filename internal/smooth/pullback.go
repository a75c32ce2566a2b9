package smooth

import (
	"math"

	"github.com/gogpu/contour/internal/buffer"
	"github.com/gogpu/contour/mesh"
)

// IntervalRatio is the fraction of the contour interval a smoothed point may
// deviate from its contour value after interval pull-back.
const IntervalRatio = 0.75

const (
	// boundSlack ends the bisection once a point is this close to the bound.
	boundSlack = 0.001

	maxBisections = 64
)

// Surface drapes planimetric locations onto the terrain.
type Surface interface {
	Drape(x, y float64) (float64, mesh.DrapeStatus)
}

// chord returns the point at fraction m/span along knots[lofs]-knots[lofs+1].
func chord(knots []buffer.Point, lofs, m, span int) (float64, float64) {
	a, b := knots[lofs], knots[lofs+1]
	if m == 0 {
		return a.X, a.Y
	}
	t := float64(m) / float64(span)
	x, y := a.X, a.Y
	if dx := b.X - a.X; dx != 0 {
		x = a.X + dx*t
	}
	if dy := b.Y - a.Y; dy != 0 {
		y = a.Y + dy*t
	}
	return x, y
}

// PullBreaklines restores every sample of a knot segment whose ends are
// both break-line points onto the straight knot chord.
func PullBreaklines(samples, knots []buffer.Point, span int) {
	for lofs := 0; lofs+1 < len(knots); lofs++ {
		if knots[lofs].W != buffer.Breakline || knots[lofs+1].W != buffer.Breakline {
			continue
		}
		for m := range span {
			i := lofs*span + m
			samples[i].X, samples[i].Y = chord(knots, lofs, m, span)
		}
	}
}

// PullInterval moves samples whose draped elevation differs from value by
// more than bound back toward their projection on the knot chord. The
// position is found by bisection between the projection, which lies on the
// contour, and the smoothed sample. Samples that drape outside the surface
// are left alone; samples in a void are pulled back.
func PullInterval(samples, knots []buffer.Point, span int, s Surface, value, bound, ppTol float64) {
	tolSq := ppTol * ppTol
	good := func(z float64, st mesh.DrapeStatus) bool {
		return st == mesh.Inside && math.Abs(value-z) <= bound
	}
	for lofs := 0; lofs+1 < len(knots); lofs++ {
		if knots[lofs].W == buffer.Breakline && knots[lofs+1].W == buffer.Breakline {
			continue
		}
		for m := range span {
			i := lofs*span + m
			gx, gy := chord(knots, lofs, m, span)
			p := &samples[i]
			dx, dy := p.X-gx, p.Y-gy
			if dx*dx+dy*dy <= tolSq {
				continue
			}
			z, st := s.Drape(p.X, p.Y)
			if st == mesh.Outside || good(z, st) {
				continue
			}
			bx, by := p.X, p.Y
			for range maxBisections {
				x, y := (gx+bx)/2, (gy+by)/2
				z, st = s.Drape(x, y)
				if good(z, st) {
					gx, gy = x, y
					if bound-math.Abs(value-z) <= boundSlack {
						break
					}
				} else {
					bx, by = x, y
				}
				dx, dy = bx-gx, by-gy
				if dx*dx+dy*dy < tolSq {
					break
				}
			}
			p.X, p.Y = gx, gy
		}
	}
}
