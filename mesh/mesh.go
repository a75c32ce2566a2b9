package mesh

import (
	"math"
	"sync"

	"github.com/paulmach/orb"
)

// FeatureKind identifies a line feature embedded in the triangulation.
type FeatureKind uint8

// Feature kinds.
const (
	// Breakline is an open or closed constraint line. Contour points on a
	// break line are never moved off it by smoothing.
	Breakline FeatureKind = iota + 1

	// Void is a closed region excluded from contouring.
	Void

	// Hole is a closed region excluded from contouring. It behaves like a
	// void but is typically nested inside an island.
	Hole

	// Island is a closed region re-included inside a void.
	Island
)

// String returns the feature kind name.
func (k FeatureKind) String() string {
	switch k {
	case Breakline:
		return "breakline"
	case Void:
		return "void"
	case Hole:
		return "hole"
	case Island:
		return "island"
	default:
		return "unknown"
	}
}

// IsPolygon reports whether the kind describes a closed region.
func (k FeatureKind) IsPolygon() bool {
	return k == Void || k == Hole || k == Island
}

// Feature is a sequence of mesh point indices. Polygon features are stored
// closed (first == last) and anticlockwise.
type Feature struct {
	Kind   FeatureKind
	Points []int
}

// edge attribute bits.
const (
	edgeBreakline uint8 = 1 << iota
	edgeVoidHull
	edgeVoidLine
)

// Mesh is an immutable triangulated irregular network.
//
// Each point owns a circular list of neighbours sorted anticlockwise by
// angle. The hull is a single anticlockwise loop: the interior lies on the
// left of p -> HullNext(p).
//
// Mesh is safe for concurrent readers.
type Mesh struct {
	id       uint64
	modified int64
	ppTol    float64

	points []Point
	adj    [][]int

	hullNext  []int
	hullStart int
	hullLen   int

	edgeIndex map[uint64]int
	edges     [][2]int
	edgeAttr  []uint8

	triangles [][3]int
	triIndex  map[[3]int]int
	voidTri   []bool

	features []Feature
	hasVoids bool

	zMin, zMax float64
	bound      orb.Bound

	gridOnce sync.Once
	grid     *triangleGrid
}

// ID returns a process-unique identifier assigned when the mesh was built.
func (m *Mesh) ID() uint64 { return m.id }

// LastModified returns the modification stamp of the mesh. Derived data
// cached against a mesh is keyed by ID and LastModified.
func (m *Mesh) LastModified() int64 { return m.modified }

// PPTol returns the point-to-point tolerance of the mesh.
func (m *Mesh) PPTol() float64 { return m.ppTol }

// NumPoints returns the number of points.
func (m *Mesh) NumPoints() int { return len(m.points) }

// Point returns point i.
func (m *Mesh) Point(i int) Point { return m.points[i] }

// Z returns the elevation of point i.
func (m *Mesh) Z(i int) float64 { return m.points[i].Z }

// Neighbors returns the anticlockwise neighbour list of point p.
// The returned slice must not be modified.
func (m *Mesh) Neighbors(p int) []int { return m.adj[p] }

// Triangulated reports whether the mesh carries a triangulation.
func (m *Mesh) Triangulated() bool { return len(m.triangles) > 0 }

// NumEdges returns the number of undirected edges.
func (m *Mesh) NumEdges() int { return len(m.edges) }

// Edge returns the endpoints of edge id, lower index first.
func (m *Mesh) Edge(id int) (p1, p2 int) {
	e := m.edges[id]
	return e[0], e[1]
}

// EdgeID returns the id of the undirected edge (p1, p2).
func (m *Mesh) EdgeID(p1, p2 int) (int, bool) {
	id, ok := m.edgeIndex[edgeKey(p1, p2)]
	return id, ok
}

// NumTriangles returns the number of triangles.
func (m *Mesh) NumTriangles() int { return len(m.triangles) }

// Triangle returns the anticlockwise vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]int { return m.triangles[i] }

// TriangleIsVoid reports whether triangle i lies inside a void or hole.
func (m *Mesh) TriangleIsVoid(i int) bool { return m.voidTri[i] }

// IsTriangle reports whether a, b and c form a triangle of the mesh.
func (m *Mesh) IsTriangle(a, b, c int) bool {
	_, ok := m.triIndex[triKey(a, b, c)]
	return ok
}

// NextAnticlockwise returns the neighbour of p1 following p2 in
// anticlockwise order. It returns false if p2 is not a neighbour of p1.
func (m *Mesh) NextAnticlockwise(p1, p2 int) (int, bool) {
	list := m.adj[p1]
	for i, q := range list {
		if q == p2 {
			return list[(i+1)%len(list)], true
		}
	}
	return -1, false
}

// NextClockwise returns the neighbour of p1 following p2 in clockwise
// order. It returns false if p2 is not a neighbour of p1.
func (m *Mesh) NextClockwise(p1, p2 int) (int, bool) {
	list := m.adj[p1]
	for i, q := range list {
		if q == p2 {
			return list[(i+len(list)-1)%len(list)], true
		}
	}
	return -1, false
}

// HullStart returns a point on the hull.
func (m *Mesh) HullStart() int { return m.hullStart }

// HullLen returns the number of hull points.
func (m *Mesh) HullLen() int { return m.hullLen }

// HullNext returns the hull point following p anticlockwise, or -1 when p
// is not on the hull.
func (m *Mesh) HullNext(p int) int { return m.hullNext[p] }

// OnHull reports whether p is a hull point.
func (m *Mesh) OnHull(p int) bool { return m.hullNext[p] >= 0 }

// IsHullEdge reports whether p1 -> p2 is a directed hull edge.
func (m *Mesh) IsHullEdge(p1, p2 int) bool { return m.hullNext[p1] == p2 }

// IsHullLine reports whether (p1, p2) is a hull edge in either direction.
func (m *Mesh) IsHullLine(p1, p2 int) bool {
	return m.hullNext[p1] == p2 || m.hullNext[p2] == p1
}

func (m *Mesh) edgeHas(p1, p2 int, bit uint8) bool {
	id, ok := m.edgeIndex[edgeKey(p1, p2)]
	return ok && m.edgeAttr[id]&bit != 0
}

// IsBreakline reports whether (p1, p2) lies on a break line.
func (m *Mesh) IsBreakline(p1, p2 int) bool { return m.edgeHas(p1, p2, edgeBreakline) }

// IsVoidHullLine reports whether (p1, p2) lies on a void or hole boundary.
func (m *Mesh) IsVoidHullLine(p1, p2 int) bool { return m.edgeHas(p1, p2, edgeVoidHull) }

// IsVoidLine reports whether every triangle on (p1, p2) is a void
// triangle. Void boundary edges are not void lines.
func (m *Mesh) IsVoidLine(p1, p2 int) bool { return m.edgeHas(p1, p2, edgeVoidLine) }

// IsVoidLineID is IsVoidLine for an edge id.
func (m *Mesh) IsVoidLineID(id int) bool { return m.edgeAttr[id]&edgeVoidLine != 0 }

// HasVoids reports whether any void or hole feature is present.
func (m *Mesh) HasVoids() bool { return m.hasVoids }

// Features returns the line features of the mesh.
// The returned slice must not be modified.
func (m *Mesh) Features() []Feature { return m.features }

// ZRange returns the minimum and maximum point elevation.
func (m *Mesh) ZRange() (zMin, zMax float64) { return m.zMin, m.zMax }

// Bounds returns the planimetric bounding box of the points.
func (m *Mesh) Bounds() orb.Bound { return m.bound }

// TriangleSlope returns the gradient magnitude (rise over run) of the
// plane through a, b and c. A vertical triangle has infinite slope.
func (m *Mesh) TriangleSlope(a, b, c int) float64 {
	pa, pb, pc := m.points[a], m.points[b], m.points[c]
	ux, uy, uz := pb.X-pa.X, pb.Y-pa.Y, pb.Z-pa.Z
	vx, vy, vz := pc.X-pa.X, pc.Y-pa.Y, pc.Z-pa.Z
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	if nz == 0 {
		return math.Inf(1)
	}
	return math.Hypot(nx, ny) / math.Abs(nz)
}

func edgeKey(p1, p2 int) uint64 {
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	return uint64(uint32(p1))<<32 | uint64(uint32(p2))
}

func triKey(a, b, c int) [3]int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]int{a, b, c}
}
