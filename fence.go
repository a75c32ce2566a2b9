package contour

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/gogpu/contour/internal/clip"
	"github.com/gogpu/contour/internal/edgeflag"
	"github.com/gogpu/contour/mesh"
)

// FenceType selects how the fence polygon restricts output.
type FenceType uint8

const (
	FenceNone FenceType = iota
	// FenceBlock uses the bounding rectangle of the fence points.
	FenceBlock
	// FenceShape uses the fence polygon itself.
	FenceShape
)

// FenceRule selects which side of the fence is kept.
type FenceRule uint8

const (
	FenceInside FenceRule = iota
	// FenceOverlap disables the fence. The mesh is assumed to have been
	// selected with the fence already.
	FenceOverlap
	FenceOutside
)

// Fence restricts contours to one side of a closed polygon. Points must
// hold at least five points with the first repeated last.
type Fence struct {
	Type   FenceType
	Rule   FenceRule
	Points []orb.Point
}

func (f Fence) active() bool {
	return f.Type != FenceNone && f.Rule != FenceOverlap
}

// region builds the clip region of an active fence.
func (f Fence) region() (*clip.Region, error) {
	var kind clip.Kind
	switch f.Type {
	case FenceBlock:
		kind = clip.Block
	case FenceShape:
		kind = clip.Shape
	default:
		return nil, fmt.Errorf("unknown fence type %d", f.Type)
	}
	var rule clip.Rule
	switch f.Rule {
	case FenceInside:
		rule = clip.Inside
	case FenceOutside:
		rule = clip.Outside
	default:
		return nil, fmt.Errorf("unknown fence rule %d", f.Rule)
	}
	return clip.New(kind, rule, f.Points)
}

// exclusionMask marks the edges no contour may use: void lines, and with
// an inside fence every edge not wholly among the fence points. It returns
// the elevation range of the remaining edges; ok is false when none
// remain.
func exclusionMask(m *mesh.Mesh, region *clip.Region) (mask *edgeflag.Set, zMin, zMax float64, ok bool) {
	var keep []bool
	if region != nil && region.Rule() == clip.Inside {
		keep = fencePoints(m, region)
	}
	mask = edgeflag.New(m.NumEdges())
	zMin, zMax = math.Inf(1), math.Inf(-1)
	for id := range m.NumEdges() {
		p1, p2 := m.Edge(id)
		if m.IsVoidLineID(id) || keep != nil && (!keep[p1] || !keep[p2]) {
			mask.Set(id)
			continue
		}
		z1, z2 := m.Z(p1), m.Z(p2)
		zMin = min(zMin, z1, z2)
		zMax = max(zMax, z1, z2)
	}
	return mask, zMin, zMax, zMin <= zMax
}

// fencePoints marks the points within the fence together with their
// neighbours, the end points of edges crossing the fence border and the
// vertices of triangles holding a fence vertex.
func fencePoints(m *mesh.Mesh, region *clip.Region) []bool {
	keep := make([]bool, m.NumPoints())
	bound := region.Bound()
	for p := range m.NumPoints() {
		pt := m.Point(p)
		if !region.Contains(pt.X, pt.Y) {
			continue
		}
		keep[p] = true
		for _, q := range m.Neighbors(p) {
			keep[q] = true
		}
	}
	for id := range m.NumEdges() {
		p1, p2 := m.Edge(id)
		a, b := m.Point(p1), m.Point(p2)
		eb := orb.Bound{
			Min: orb.Point{min(a.X, b.X), min(a.Y, b.Y)},
			Max: orb.Point{max(a.X, b.X), max(a.Y, b.Y)},
		}
		if eb.Intersects(bound) && region.Crosses(clip.Pt(a.X, a.Y), clip.Pt(b.X, b.Y)) {
			keep[p1], keep[p2] = true, true
		}
	}
	for _, v := range region.Vertices() {
		if ti, ok := m.FindTriangle(v.X, v.Y); ok {
			for _, p := range m.Triangle(ti) {
				keep[p] = true
			}
		}
	}
	return keep
}
