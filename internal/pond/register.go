// Package pond records closed depressions of a terrain mesh and tags
// contours that lie inside them.
package pond

import (
	"cmp"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/gogpu/contour/internal/buffer"
)

// Pond is a closed low-point catchment. Water rising from Bottom leaves the
// pond at elevation Spill. Ring is its closed outline.
type Pond struct {
	ID     int64
	Bottom int
	Spill  float64
	Ring   orb.Ring
}

// Register is a read-only set of ponds.
type Register struct {
	ponds  []Pond
	bounds []orb.Bound
	order  []int // smallest area first
}

// NewRegister builds a register. Ponds whose rings have fewer than four
// points are dropped.
func NewRegister(ponds []Pond) *Register {
	r := &Register{}
	var areas []float64
	for _, p := range ponds {
		if len(p.Ring) < 4 {
			continue
		}
		r.ponds = append(r.ponds, p)
		r.bounds = append(r.bounds, p.Ring.Bound())
		areas = append(areas, math.Abs(planar.Area(p.Ring)))
	}
	r.order = make([]int, len(r.ponds))
	for i := range r.order {
		r.order[i] = i
	}
	slices.SortStableFunc(r.order, func(a, b int) int {
		return cmp.Compare(areas[a], areas[b])
	})
	return r
}

// Len returns the number of ponds.
func (r *Register) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ponds)
}

// Ponds returns the registered ponds. The slice must not be modified.
func (r *Register) Ponds() []Pond {
	if r == nil {
		return nil
	}
	return r.ponds
}

// Locate returns the innermost pond containing (x, y).
func (r *Register) Locate(x, y float64) (Pond, bool) {
	if r == nil {
		return Pond{}, false
	}
	pt := orb.Point{x, y}
	for _, i := range r.order {
		if r.bounds[i].Contains(pt) && planar.RingContains(r.ponds[i].Ring, pt) {
			return r.ponds[i], true
		}
	}
	return Pond{}, false
}

// Classify reports the pond a contour lies in. Points are tried from the
// middle of the polyline towards its end, then from the middle towards its
// start; the first point inside any pond decides. The contour is inside
// the pond when its elevation is below the spill level.
func (r *Register) Classify(pts []buffer.Point) (int64, bool) {
	if r.Len() == 0 || len(pts) == 0 {
		return 0, false
	}
	mid := len(pts) / 2
	try := func(p buffer.Point) (int64, bool, bool) {
		pd, ok := r.Locate(p.X, p.Y)
		if !ok {
			return 0, false, false
		}
		if p.Z < pd.Spill {
			return pd.ID, true, true
		}
		return 0, false, true
	}
	for i := mid; i < len(pts); i++ {
		if id, in, found := try(pts[i]); found {
			return id, in
		}
	}
	for i := mid - 1; i >= 0; i-- {
		if id, in, found := try(pts[i]); found {
			return id, in
		}
	}
	return 0, false
}
