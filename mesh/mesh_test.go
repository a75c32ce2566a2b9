package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func unitSquare(t *testing.T, z0, z1, z2, z3 float64, opts ...Option) *Mesh {
	t.Helper()
	m, err := New(
		[]Point{Pt(0, 0, z0), Pt(1, 0, z1), Pt(1, 1, z2), Pt(0, 1, z3)},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		opts...,
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

// voidGrid is a 4x4 lattice with a void around the centre cell.
func voidGrid(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewGrid(4, 4, 1, func(x, y float64) float64 { return x + 2*y },
		WithFeatures(Feature{Kind: Void, Points: []int{5, 6, 10, 9}}))
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}
	return m
}

func TestNewRejects(t *testing.T) {
	sq := []Point{Pt(0, 0, 0), Pt(1, 0, 0), Pt(1, 1, 0), Pt(0, 1, 0)}
	tests := []struct {
		name      string
		points    []Point
		triangles [][3]int
		opts      []Option
		want      error
	}{
		{"too few points", sq[:2], nil, nil, ErrTooFewPoints},
		{"nan coordinate", []Point{Pt(0, 0, 0), Pt(1, 0, math.NaN()), Pt(1, 1, 0)}, nil, nil, ErrBadPoint},
		{"index out of range", sq, [][3]int{{0, 1, 7}}, nil, ErrBadTriangle},
		{"repeated vertex", sq, [][3]int{{0, 1, 1}}, nil, ErrBadTriangle},
		{"zero area", []Point{Pt(0, 0, 0), Pt(1, 0, 0), Pt(2, 0, 0)}, [][3]int{{0, 1, 2}}, nil, ErrBadTriangle},
		{"duplicate triangle", sq, [][3]int{{0, 1, 2}, {2, 0, 1}}, nil, ErrBadTriangle},
		{
			"overlapping triangles",
			[]Point{Pt(0, 0, 0), Pt(1, 0, 0), Pt(0.5, 1, 0), Pt(0.5, 2, 0)},
			[][3]int{{0, 1, 2}, {0, 1, 3}},
			nil,
			ErrNonManifold,
		},
		{
			"feature off the mesh edges",
			sq,
			[][3]int{{0, 1, 2}, {0, 2, 3}},
			[]Option{WithFeatures(Feature{Kind: Breakline, Points: []int{1, 3}})},
			ErrBadFeature,
		},
		{
			"short polygon",
			sq,
			[][3]int{{0, 1, 2}, {0, 2, 3}},
			[]Option{WithFeatures(Feature{Kind: Void, Points: []int{0, 1}})},
			ErrBadFeature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.points, tt.triangles, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewWithoutTriangles(t *testing.T) {
	m, err := New([]Point{Pt(0, 0, 1), Pt(1, 0, 2), Pt(0, 1, 3)}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.Triangulated() {
		t.Error("Triangulated() = true for a mesh without triangles")
	}
	if m.NumEdges() != 0 {
		t.Errorf("NumEdges() = %d, want 0", m.NumEdges())
	}
	if zMin, zMax := m.ZRange(); zMin != 1 || zMax != 3 {
		t.Errorf("ZRange() = (%v, %v), want (1, 3)", zMin, zMax)
	}
}

func TestRotation(t *testing.T) {
	m := unitSquare(t, 0, 0, 1, 1)

	tests := []struct {
		name   string
		rotate func(p1, p2 int) (int, bool)
		p1, p2 int
		want   int
	}{
		{"anticlockwise", m.NextAnticlockwise, 0, 1, 2},
		{"anticlockwise wraps", m.NextAnticlockwise, 0, 3, 1},
		{"clockwise", m.NextClockwise, 0, 2, 1},
		{"clockwise wraps", m.NextClockwise, 0, 1, 3},
		{"around diagonal end", m.NextAnticlockwise, 2, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rotate(tt.p1, tt.p2)
			if !ok || got != tt.want {
				t.Errorf("rotate(%d, %d) = (%d, %v), want (%d, true)", tt.p1, tt.p2, got, ok, tt.want)
			}
		})
	}

	if _, ok := m.NextAnticlockwise(1, 3); ok {
		t.Error("NextAnticlockwise(1, 3) succeeded for a non-neighbour")
	}
}

func TestAdjacencySymmetric(t *testing.T) {
	m := voidGrid(t)
	for p := 0; p < m.NumPoints(); p++ {
		for _, q := range m.Neighbors(p) {
			if _, ok := m.NextAnticlockwise(q, p); !ok {
				t.Errorf("point %d lists %d but not the reverse", p, q)
			}
		}
	}
}

func TestHull(t *testing.T) {
	m := unitSquare(t, 0, 0, 1, 1)
	want := map[int]int{0: 1, 1: 2, 2: 3, 3: 0}
	for p, next := range want {
		if got := m.HullNext(p); got != next {
			t.Errorf("HullNext(%d) = %d, want %d", p, got, next)
		}
	}
	if m.HullLen() != 4 {
		t.Errorf("HullLen() = %d, want 4", m.HullLen())
	}
	if !m.IsHullEdge(0, 1) || m.IsHullEdge(1, 0) {
		t.Error("IsHullEdge should be directed")
	}
	if !m.IsHullLine(1, 0) || m.IsHullLine(0, 2) {
		t.Error("IsHullLine mismatch")
	}

	g := voidGrid(t)
	if g.HullLen() != 12 {
		t.Errorf("grid HullLen() = %d, want 12", g.HullLen())
	}
	if g.OnHull(5) {
		t.Error("interior point 5 reported on hull")
	}
	p, steps := g.HullStart(), 0
	for {
		q := g.HullNext(p)
		if s := SideOf(g.Point(p), g.Point(q), Pt(1.5, 1.5, 0)); s != 1 {
			t.Fatalf("hull edge %d->%d does not have the interior on its left", p, q)
		}
		p = q
		steps++
		if p == g.HullStart() {
			break
		}
	}
	if steps != 12 {
		t.Errorf("hull walk took %d steps, want 12", steps)
	}
}

func TestEdges(t *testing.T) {
	m := unitSquare(t, 0, 0, 1, 1)
	if m.NumEdges() != 5 {
		t.Fatalf("NumEdges() = %d, want 5", m.NumEdges())
	}
	seen := make(map[int]bool)
	for p := 0; p < m.NumPoints(); p++ {
		for _, q := range m.Neighbors(p) {
			id, ok := m.EdgeID(p, q)
			if !ok {
				t.Fatalf("EdgeID(%d, %d) missing", p, q)
			}
			a, b := m.Edge(id)
			if a != min(p, q) || b != max(p, q) {
				t.Errorf("Edge(%d) = (%d, %d), want (%d, %d)", id, a, b, min(p, q), max(p, q))
			}
			seen[id] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("saw %d edge ids, want 5", len(seen))
	}
	if !m.IsTriangle(2, 0, 1) || m.IsTriangle(1, 3, 0) {
		t.Error("IsTriangle mismatch")
	}
}

func TestVoids(t *testing.T) {
	m := voidGrid(t)
	if !m.HasVoids() {
		t.Fatal("HasVoids() = false")
	}
	if !m.IsVoidHullLine(5, 6) || !m.IsVoidHullLine(9, 5) {
		t.Error("void boundary edges not flagged")
	}
	if !m.IsVoidLine(5, 10) {
		t.Error("diagonal inside the void is not a void line")
	}
	if m.IsVoidLine(5, 6) {
		t.Error("void boundary edge reported as void line")
	}
	if m.IsVoidLine(0, 5) {
		t.Error("exterior edge reported as void line")
	}
	voids := 0
	for i := 0; i < m.NumTriangles(); i++ {
		if m.TriangleIsVoid(i) {
			voids++
		}
	}
	if voids != 2 {
		t.Errorf("void triangles = %d, want 2", voids)
	}
}

func TestIslandInsideVoid(t *testing.T) {
	m, err := NewGrid(6, 6, 1, func(x, y float64) float64 { return x },
		WithFeatures(
			Feature{Kind: Void, Points: []int{7, 8, 9, 10, 16, 22, 28, 27, 26, 25, 19, 13}},
			Feature{Kind: Island, Points: []int{14, 15, 21, 20}},
		))
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}
	if _, s := m.Drape(2.5, 2.5); s != Inside {
		t.Errorf("Drape in island = %v, want inside", s)
	}
	if _, s := m.Drape(1.5, 1.5); s != InVoid {
		t.Errorf("Drape in void = %v, want void", s)
	}
}

func TestPolygonFeatureNormalised(t *testing.T) {
	m, err := NewGrid(4, 4, 1, func(x, y float64) float64 { return 0 },
		WithFeatures(Feature{Kind: Hole, Points: []int{5, 9, 10, 6, 5}}))
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}
	f := m.Features()[0]
	if f.Points[0] != f.Points[len(f.Points)-1] {
		t.Errorf("polygon not closed: %v", f.Points)
	}
	r := make(orb.Ring, len(f.Points))
	for i, p := range f.Points {
		r[i] = orb.Point{m.Point(p).X, m.Point(p).Y}
	}
	if r.Orientation() != orb.CCW {
		t.Errorf("polygon orientation = %v, want anticlockwise", r.Orientation())
	}
}

func TestDrape(t *testing.T) {
	m := voidGrid(t)
	tests := []struct {
		name   string
		x, y   float64
		wantZ  float64
		status DrapeStatus
	}{
		{"interior", 1.25, 0.5, 2.25, Inside},
		{"vertex", 2, 3, 8, Inside},
		{"on edge", 0.5, 0.5, 1.5, Inside},
		{"void", 1.5, 1.75, 5, InVoid},
		{"outside", 4, 1, 0, Outside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, s := m.Drape(tt.x, tt.y)
			if s != tt.status {
				t.Fatalf("Drape(%v, %v) status = %v, want %v", tt.x, tt.y, s, tt.status)
			}
			if math.Abs(z-tt.wantZ) > 1e-9 {
				t.Errorf("Drape(%v, %v) = %v, want %v", tt.x, tt.y, z, tt.wantZ)
			}
		})
	}
}

func TestTrianglesInBound(t *testing.T) {
	m := voidGrid(t)
	got := m.TrianglesInBound(orb.Bound{Min: orb.Point{1.2, 1.2}, Max: orb.Point{1.8, 1.8}})
	if len(got) != 2 {
		t.Errorf("TrianglesInBound() = %v, want the two centre triangles", got)
	}
	if got := m.TrianglesInBound(orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{11, 11}}); got != nil {
		t.Errorf("TrianglesInBound() off the mesh = %v, want nil", got)
	}
}

func TestTriangleSlope(t *testing.T) {
	tests := []struct {
		name string
		z    func(x, y float64) float64
		want float64
	}{
		{"flat", func(x, y float64) float64 { return 3 }, 0},
		{"unit x", func(x, y float64) float64 { return x }, 1},
		{"steep y", func(x, y float64) float64 { return 4 * y }, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewGrid(2, 2, 1, tt.z)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.TriangleSlope(0, 1, 3); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("TriangleSlope() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideOf(t *testing.T) {
	a, b := Pt(0, 0, 0), Pt(1, 0, 0)
	if SideOf(a, b, Pt(0.5, 1, 0)) != 1 || SideOf(a, b, Pt(0.5, -1, 0)) != -1 || SideOf(a, b, Pt(2, 0, 0)) != 0 {
		t.Error("SideOf mismatch")
	}
}
