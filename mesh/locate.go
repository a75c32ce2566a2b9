package mesh

import (
	"math"

	"github.com/paulmach/orb"
)

// DrapeStatus classifies a draped location.
type DrapeStatus uint8

// Drape results.
const (
	// Outside means the location is not covered by any triangle.
	Outside DrapeStatus = iota

	// Inside means the location lies in a regular triangle.
	Inside

	// InVoid means the location lies in a void or hole triangle.
	InVoid
)

// String returns the status name.
func (s DrapeStatus) String() string {
	switch s {
	case Inside:
		return "inside"
	case InVoid:
		return "void"
	default:
		return "outside"
	}
}

// triangleGrid buckets triangles by bounding box for point location.
type triangleGrid struct {
	minX, minY float64
	cell       float64
	w, h       int
	cells      [][]int32
}

const gridTrianglesPerCell = 2

func (m *Mesh) locator() *triangleGrid {
	m.gridOnce.Do(func() {
		m.grid = buildTriangleGrid(m)
	})
	return m.grid
}

func buildTriangleGrid(m *Mesh) *triangleGrid {
	b := m.bound
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	n := len(m.triangles)

	cell := math.Sqrt(width * height * gridTrianglesPerCell / float64(n))
	if cell <= 0 || math.IsNaN(cell) || math.IsInf(cell, 0) {
		cell = math.Max(width, height)
	}
	if cell <= 0 {
		cell = 1
	}
	g := &triangleGrid{
		minX: b.Min[0],
		minY: b.Min[1],
		cell: cell,
		w:    max(1, int(math.Ceil(width/cell))),
		h:    max(1, int(math.Ceil(height/cell))),
	}
	g.cells = make([][]int32, g.w*g.h)

	for ti, t := range m.triangles {
		a, bb, c := m.points[t[0]], m.points[t[1]], m.points[t[2]]
		x0, y0 := g.cellOf(min(a.X, bb.X, c.X), min(a.Y, bb.Y, c.Y))
		x1, y1 := g.cellOf(max(a.X, bb.X, c.X), max(a.Y, bb.Y, c.Y))
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				k := cy*g.w + cx
				g.cells[k] = append(g.cells[k], int32(ti))
			}
		}
	}
	return g
}

// cellOf returns the clamped cell of (x, y).
func (g *triangleGrid) cellOf(x, y float64) (int, int) {
	cx := int((x - g.minX) / g.cell)
	cy := int((y - g.minY) / g.cell)
	return min(max(cx, 0), g.w-1), min(max(cy, 0), g.h-1)
}

// FindTriangle returns the triangle containing (x, y). Points on a shared
// edge resolve to the first candidate found.
func (m *Mesh) FindTriangle(x, y float64) (int, bool) {
	if len(m.triangles) == 0 || !m.bound.Contains(orb.Point{x, y}) {
		return -1, false
	}
	g := m.locator()
	cx, cy := g.cellOf(x, y)
	p := Point{X: x, Y: y}
	for _, ti := range g.cells[cy*g.w+cx] {
		if m.containsPoint(int(ti), p) {
			return int(ti), true
		}
	}
	return -1, false
}

func (m *Mesh) containsPoint(ti int, p Point) bool {
	t := m.triangles[ti]
	a, b, c := m.points[t[0]], m.points[t[1]], m.points[t[2]]
	area := Orient(a, b, c)
	eps := -1e-12 * math.Abs(area)
	return Orient(a, b, p) >= eps && Orient(b, c, p) >= eps && Orient(c, a, p) >= eps
}

// Drape returns the surface elevation at (x, y) by linear interpolation on
// the containing triangle. Z is zero when the status is Outside.
func (m *Mesh) Drape(x, y float64) (float64, DrapeStatus) {
	ti, ok := m.FindTriangle(x, y)
	if !ok {
		return 0, Outside
	}
	z := m.interpolate(ti, x, y)
	if m.voidTri[ti] {
		return z, InVoid
	}
	return z, Inside
}

func (m *Mesh) interpolate(ti int, x, y float64) float64 {
	t := m.triangles[ti]
	a, b, c := m.points[t[0]], m.points[t[1]], m.points[t[2]]
	p := Point{X: x, Y: y}
	area := Orient(a, b, c)
	wa := Orient(b, c, p) / area
	wb := Orient(c, a, p) / area
	wc := 1 - wa - wb
	return wa*a.Z + wb*b.Z + wc*c.Z
}

// TrianglesInBound returns the ids of triangles whose bounding boxes meet b.
func (m *Mesh) TrianglesInBound(b orb.Bound) []int {
	if len(m.triangles) == 0 || !m.bound.Intersects(b) {
		return nil
	}
	g := m.locator()
	x0, y0 := g.cellOf(b.Min[0], b.Min[1])
	x1, y1 := g.cellOf(b.Max[0], b.Max[1])
	seen := make(map[int32]struct{})
	var out []int
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for _, ti := range g.cells[cy*g.w+cx] {
				if _, dup := seen[ti]; dup {
					continue
				}
				seen[ti] = struct{}{}
				if m.triangleBound(int(ti)).Intersects(b) {
					out = append(out, int(ti))
				}
			}
		}
	}
	return out
}

func (m *Mesh) triangleBound(ti int) orb.Bound {
	t := m.triangles[ti]
	a, b, c := m.points[t[0]], m.points[t[1]], m.points[t[2]]
	return orb.Bound{
		Min: orb.Point{min(a.X, b.X, c.X), min(a.Y, b.Y, c.Y)},
		Max: orb.Point{max(a.X, b.X, c.X), max(a.Y, b.Y, c.Y)},
	}
}
