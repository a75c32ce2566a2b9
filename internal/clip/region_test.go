package clip

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/gogpu/contour/internal/buffer"
)

func square(size float64) []orb.Point {
	return []orb.Point{{0, 0}, {size, 0}, {size, size}, {0, size}, {0, 0}}
}

func diamond() []orb.Point {
	return []orb.Point{{5, 0}, {10, 5}, {5, 10}, {0, 5}, {5, 0}}
}

func polyline(z float64, xy ...float64) []buffer.Point {
	pts := make([]buffer.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		pts = append(pts, buffer.Pt(xy[i], xy[i+1], z))
	}
	return pts
}

func mustRegion(t *testing.T, kind Kind, rule Rule, fence []orb.Point) *Region {
	t.Helper()
	r, err := New(kind, rule, fence)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func assertPiece(t *testing.T, got []buffer.Point, xy ...float64) {
	t.Helper()
	if len(got) != len(xy)/2 {
		t.Fatalf("piece has %d points, want %d: %v", len(got), len(xy)/2, got)
	}
	for i, p := range got {
		if math.Abs(p.X-xy[2*i]) > testEpsilon || math.Abs(p.Y-xy[2*i+1]) > testEpsilon {
			t.Errorf("point %d = (%v, %v), want (%v, %v)", i, p.X, p.Y, xy[2*i], xy[2*i+1])
		}
	}
}

func TestNewRejectsBadFences(t *testing.T) {
	tests := []struct {
		name  string
		fence []orb.Point
		want  error
	}{
		{"too few", []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, ErrTooFewPoints},
		{"open", []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0.5}}, ErrNotClosed},
		{"flat", []orb.Point{{0, 0}, {1, 0}, {2, 0}, {1, 0}, {0, 0}}, ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range []Kind{Block, Shape} {
				if _, err := New(kind, Inside, tt.fence); !errors.Is(err, tt.want) {
					t.Errorf("kind %d: err = %v, want %v", kind, err, tt.want)
				}
			}
		})
	}
}

func TestRegionContains(t *testing.T) {
	block := mustRegion(t, Block, Inside, diamond())
	shape := mustRegion(t, Shape, Inside, diamond())

	tests := []struct {
		x, y      float64
		wantBlock bool
		wantShape bool
	}{
		{5, 5, true, true},
		{1, 1, true, false},
		{8, 6, true, true},
		{11, 5, false, false},
	}
	for _, tt := range tests {
		if got := block.Contains(tt.x, tt.y); got != tt.wantBlock {
			t.Errorf("block Contains(%v, %v) = %v", tt.x, tt.y, got)
		}
		if got := shape.Contains(tt.x, tt.y); got != tt.wantShape {
			t.Errorf("shape Contains(%v, %v) = %v", tt.x, tt.y, got)
		}
	}
}

func TestRegionCoversAndCrosses(t *testing.T) {
	block := mustRegion(t, Block, Inside, square(10))
	shape := mustRegion(t, Shape, Inside, square(10))
	inner := orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{9, 9}}

	if !block.Covers(inner) {
		t.Error("block fence must cover an inner bound")
	}
	if block.Covers(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{11, 9}}) {
		t.Error("block fence must not cover a wider bound")
	}
	if shape.Covers(inner) {
		t.Error("shape fences never cover")
	}
	if !block.Crosses(Pt(5, 5), Pt(15, 5)) {
		t.Error("segment leaving the fence must cross it")
	}
	if block.Crosses(Pt(1, 1), Pt(2, 2)) {
		t.Error("inner segment must not cross the fence")
	}
}

func TestClipBlockInside(t *testing.T) {
	r := mustRegion(t, Block, Inside, square(10))

	t.Run("whole", func(t *testing.T) {
		res, pieces := r.Clip(polyline(3, 1, 1, 9, 9, 1, 9))
		if res != Whole || pieces != nil {
			t.Errorf("got %v with %d pieces, want whole", res, len(pieces))
		}
	})

	t.Run("none", func(t *testing.T) {
		res, pieces := r.Clip(polyline(3, 20, 20, 30, 30))
		if res != None || pieces != nil {
			t.Errorf("got %v with %d pieces, want none", res, len(pieces))
		}
	})

	t.Run("through", func(t *testing.T) {
		pts := polyline(3, -5, 5, 5, 5, 15, 5)
		pts[1].W = buffer.Exact
		res, pieces := r.Clip(pts)
		if res != Pieces || len(pieces) != 1 {
			t.Fatalf("got %v with %d pieces, want 1 piece", res, len(pieces))
		}
		assertPiece(t, pieces[0], 0, 5, 5, 5, 10, 5)
		if pieces[0][1].W != buffer.Exact {
			t.Error("kept point lost its weight")
		}
		for _, i := range []int{0, 2} {
			if p := pieces[0][i]; p.W != buffer.Free || p.Z != 3 {
				t.Errorf("border point %d = %+v, want free at z 3", i, p)
			}
		}
	})

	t.Run("leave and return", func(t *testing.T) {
		res, pieces := r.Clip(polyline(3, 2, 5, 12, 5, 12, 7, 2, 7))
		if res != Pieces || len(pieces) != 2 {
			t.Fatalf("got %v with %d pieces, want 2 pieces", res, len(pieces))
		}
		assertPiece(t, pieces[0], 2, 5, 10, 5)
		assertPiece(t, pieces[1], 10, 7, 2, 7)
	})
}

func TestClipBlockOutside(t *testing.T) {
	r := mustRegion(t, Block, Outside, square(10))

	res, pieces := r.Clip(polyline(1, -5, 5, 15, 5))
	if res != Pieces || len(pieces) != 2 {
		t.Fatalf("got %v with %d pieces, want 2 pieces", res, len(pieces))
	}
	assertPiece(t, pieces[0], -5, 5, 0, 5)
	assertPiece(t, pieces[1], 10, 5, 15, 5)

	res, _ = r.Clip(polyline(1, 20, 0, 20, 20))
	if res != Whole {
		t.Errorf("polyline beyond the fence: got %v, want whole", res)
	}
}

func TestClipShapeInside(t *testing.T) {
	r := mustRegion(t, Shape, Inside, diamond())

	res, pieces := r.Clip(polyline(2, -1, 4, 11, 4))
	if res != Pieces || len(pieces) != 1 {
		t.Fatalf("got %v with %d pieces, want 1 piece", res, len(pieces))
	}
	assertPiece(t, pieces[0], 1, 4, 9, 4)
}

func TestClipShapeOutsideRejoinsClosedPolyline(t *testing.T) {
	r := mustRegion(t, Shape, Outside, diamond())

	res, pieces := r.Clip(polyline(2, -2, 4, 12, 4, 12, 8, -2, 8, -2, 4))
	if res != Pieces || len(pieces) != 2 {
		t.Fatalf("got %v with %d pieces, want 2 pieces", res, len(pieces))
	}
	assertPiece(t, pieces[0], 3, 8, -2, 8, -2, 4, 1, 4)
	assertPiece(t, pieces[1], 9, 4, 12, 4, 12, 8, 7, 8)
}
