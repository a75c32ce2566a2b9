package mesh

import (
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultPPTol is the point-to-point tolerance used when none is given.
const DefaultPPTol = 1e-4

var meshSeq atomic.Uint64

// Option configures mesh construction.
type Option func(*buildOptions)

type buildOptions struct {
	features []Feature
	ppTol    float64
	modified int64
}

// WithFeatures embeds line features. Every pair of consecutive feature
// points must be a mesh edge.
func WithFeatures(f ...Feature) Option {
	return func(o *buildOptions) {
		o.features = append(o.features, f...)
	}
}

// WithPPTol sets the point-to-point tolerance. Non-positive values are
// ignored.
func WithPPTol(tol float64) Option {
	return func(o *buildOptions) {
		if tol > 0 {
			o.ppTol = tol
		}
	}
}

// WithLastModified sets the modification stamp. By default the build time
// in nanoseconds is used.
func WithLastModified(stamp int64) Option {
	return func(o *buildOptions) {
		o.modified = stamp
	}
}

// New builds a mesh from points and triangles given as point index
// triples in either winding. A mesh without triangles is valid but not
// triangulated.
func New(points []Point, triangles [][3]int, opts ...Option) (*Mesh, error) {
	o := buildOptions{ppTol: DefaultPPTol}
	for _, opt := range opts {
		opt(&o)
	}
	if o.modified == 0 {
		o.modified = time.Now().UnixNano()
	}

	if len(points) < 3 {
		return nil, ErrTooFewPoints
	}
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return nil, fmt.Errorf("%w: point %d", ErrBadPoint, i)
		}
	}

	m := &Mesh{
		id:        meshSeq.Add(1),
		modified:  o.modified,
		ppTol:     o.ppTol,
		points:    slices.Clone(points),
		adj:       make([][]int, len(points)),
		hullNext:  make([]int, len(points)),
		hullStart: -1,
		edgeIndex: make(map[uint64]int, len(triangles)*3/2+1),
		triIndex:  make(map[[3]int]int, len(triangles)),
	}
	for i := range m.hullNext {
		m.hullNext[i] = -1
	}
	m.computeExtent()

	if len(triangles) == 0 {
		return m, nil
	}

	directed, err := m.addTriangles(triangles)
	if err != nil {
		return nil, err
	}
	m.sortNeighbors()
	if err := m.buildHull(directed); err != nil {
		return nil, err
	}
	if err := m.addFeatures(o.features); err != nil {
		return nil, err
	}
	m.classifyVoids()
	return m, nil
}

func (m *Mesh) computeExtent() {
	p0 := m.points[0]
	m.zMin, m.zMax = p0.Z, p0.Z
	m.bound = orb.Bound{Min: orb.Point{p0.X, p0.Y}, Max: orb.Point{p0.X, p0.Y}}
	for _, p := range m.points[1:] {
		m.zMin = math.Min(m.zMin, p.Z)
		m.zMax = math.Max(m.zMax, p.Z)
		m.bound = m.bound.Extend(orb.Point{p.X, p.Y})
	}
}

func (m *Mesh) addTriangles(triangles [][3]int) (map[uint64]struct{}, error) {
	directed := make(map[uint64]struct{}, len(triangles)*3)
	n := len(m.points)
	for i, t := range triangles {
		a, b, c := t[0], t[1], t[2]
		if a < 0 || b < 0 || c < 0 || a >= n || b >= n || c >= n || a == b || b == c || a == c {
			return nil, fmt.Errorf("%w: triangle %d has bad vertex indices %v", ErrBadTriangle, i, t)
		}
		o := Orient(m.points[a], m.points[b], m.points[c])
		if o == 0 {
			return nil, fmt.Errorf("%w: triangle %d has zero area", ErrBadTriangle, i)
		}
		if o < 0 {
			b, c = c, b
		}
		key := triKey(a, b, c)
		if _, dup := m.triIndex[key]; dup {
			return nil, fmt.Errorf("%w: triangle %d is repeated", ErrBadTriangle, i)
		}
		m.triIndex[key] = len(m.triangles)
		m.triangles = append(m.triangles, [3]int{a, b, c})

		for _, e := range [3][2]int{{a, b}, {b, c}, {c, a}} {
			dk := directedKey(e[0], e[1])
			if _, dup := directed[dk]; dup {
				return nil, fmt.Errorf("%w: edge %d-%d used twice in one direction", ErrNonManifold, e[0], e[1])
			}
			directed[dk] = struct{}{}
			if _, ok := m.edgeIndex[edgeKey(e[0], e[1])]; !ok {
				m.edgeIndex[edgeKey(e[0], e[1])] = len(m.edges)
				m.edges = append(m.edges, [2]int{min(e[0], e[1]), max(e[0], e[1])})
				m.adj[e[0]] = append(m.adj[e[0]], e[1])
				m.adj[e[1]] = append(m.adj[e[1]], e[0])
			}
		}
	}
	m.edgeAttr = make([]uint8, len(m.edges))
	return directed, nil
}

func (m *Mesh) sortNeighbors() {
	for p, list := range m.adj {
		c := m.points[p]
		slices.SortFunc(list, func(a, b int) int {
			aa := math.Atan2(m.points[a].Y-c.Y, m.points[a].X-c.X)
			ab := math.Atan2(m.points[b].Y-c.Y, m.points[b].X-c.X)
			switch {
			case aa < ab:
				return -1
			case aa > ab:
				return 1
			default:
				return 0
			}
		})
	}
}

// buildHull links boundary edges. A boundary edge a->b of an anticlockwise
// triangle has the interior on its left, so it is a hull edge as is.
func (m *Mesh) buildHull(directed map[uint64]struct{}) error {
	boundary := 0
	for _, t := range m.triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if _, inner := directed[directedKey(b, a)]; inner {
				continue
			}
			if m.hullNext[a] >= 0 {
				return fmt.Errorf("%w: hull pinches at point %d", ErrNonManifold, a)
			}
			m.hullNext[a] = b
			if m.hullStart < 0 {
				m.hullStart = a
			}
			boundary++
		}
	}
	steps := 0
	for p := m.hullStart; ; {
		p = m.hullNext[p]
		steps++
		if p < 0 || steps > boundary {
			return fmt.Errorf("%w: hull is not closed", ErrNonManifold)
		}
		if p == m.hullStart {
			break
		}
	}
	if steps != boundary {
		return fmt.Errorf("%w: %d boundary edges but the hull loop has %d", ErrNonManifold, boundary, steps)
	}
	m.hullLen = steps
	return nil
}

func (m *Mesh) addFeatures(features []Feature) error {
	for i, f := range features {
		pts := slices.Clone(f.Points)
		for _, p := range pts {
			if p < 0 || p >= len(m.points) {
				return fmt.Errorf("%w: feature %d references point %d", ErrBadFeature, i, p)
			}
		}
		switch {
		case f.Kind == Breakline:
			if len(pts) < 2 {
				return fmt.Errorf("%w: break line %d has fewer than two points", ErrBadFeature, i)
			}
		case f.Kind.IsPolygon():
			if pts[0] != pts[len(pts)-1] {
				pts = append(pts, pts[0])
			}
			if len(pts) < 4 {
				return fmt.Errorf("%w: %s %d has fewer than three points", ErrBadFeature, f.Kind, i)
			}
			if m.ring(pts).Orientation() == orb.CW {
				slices.Reverse(pts)
			}
		default:
			return fmt.Errorf("%w: feature %d has unknown kind %d", ErrBadFeature, i, f.Kind)
		}

		bit := edgeBreakline
		if f.Kind == Void || f.Kind == Hole {
			bit = edgeVoidHull
			m.hasVoids = true
		}
		for k := 0; k+1 < len(pts); k++ {
			id, ok := m.EdgeID(pts[k], pts[k+1])
			if !ok {
				return fmt.Errorf("%w: feature %d segment %d-%d is not a mesh edge", ErrBadFeature, i, pts[k], pts[k+1])
			}
			if f.Kind != Island {
				m.edgeAttr[id] |= bit
			}
		}
		m.features = append(m.features, Feature{Kind: f.Kind, Points: pts})
	}
	return nil
}

func (m *Mesh) ring(pts []int) orb.Ring {
	r := make(orb.Ring, len(pts))
	for i, p := range pts {
		r[i] = orb.Point{m.points[p].X, m.points[p].Y}
	}
	return r
}

// classifyVoids marks triangles whose centroid lies in a void or hole. The
// innermost enclosing polygon decides, so islands re-include their area.
func (m *Mesh) classifyVoids() {
	m.voidTri = make([]bool, len(m.triangles))
	if !m.hasVoids {
		return
	}

	type region struct {
		ring  orb.Ring
		bound orb.Bound
		area  float64
		void  bool
	}
	var regions []region
	for _, f := range m.features {
		if !f.Kind.IsPolygon() {
			continue
		}
		r := m.ring(f.Points)
		regions = append(regions, region{
			ring:  r,
			bound: r.Bound(),
			area:  math.Abs(planar.Area(r)),
			void:  f.Kind != Island,
		})
	}

	for i, t := range m.triangles {
		a, b, c := m.points[t[0]], m.points[t[1]], m.points[t[2]]
		centroid := orb.Point{(a.X + b.X + c.X) / 3, (a.Y + b.Y + c.Y) / 3}
		best := -1
		for k, rg := range regions {
			if !rg.bound.Contains(centroid) || !planar.RingContains(rg.ring, centroid) {
				continue
			}
			if best < 0 || rg.area < regions[best].area {
				best = k
			}
		}
		m.voidTri[i] = best >= 0 && regions[best].void
	}

	total := make([]int, len(m.edges))
	voids := make([]int, len(m.edges))
	for i, t := range m.triangles {
		for k := 0; k < 3; k++ {
			id := m.edgeIndex[edgeKey(t[k], t[(k+1)%3])]
			total[id]++
			if m.voidTri[i] {
				voids[id]++
			}
		}
	}
	for id := range m.edges {
		if total[id] > 0 && voids[id] == total[id] && m.edgeAttr[id]&edgeVoidHull == 0 {
			m.edgeAttr[id] |= edgeVoidLine
		}
	}
}

func directedKey(a, b int) uint64 {
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
