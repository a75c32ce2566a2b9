package smooth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/contour/internal/buffer"
	"github.com/gogpu/contour/mesh"
)

func ring(n int, cx, cy, r, z float64) []buffer.Point {
	pts := make([]buffer.Point, 0, n+1)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, buffer.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a), z))
	}
	return append(pts, pts[0])
}

func TestFilterTolerance(t *testing.T) {
	tests := []struct {
		ppTol, want float64
	}{
		{1e-4, 1e-3},
		{0.005, 0.05},
		{0.05, 0.01},
		{0, 0.01},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FilterTolerance(tt.ppTol), 1e-15, "ppTol %v", tt.ppTol)
	}
}

func TestFilter(t *testing.T) {
	t.Run("collinear run keeps weighted point", func(t *testing.T) {
		pts := []buffer.Point{
			buffer.Pt(0, 0, 1), buffer.Pt(1, 0, 1), buffer.Pt(2, 0, 1), buffer.Pt(3, 0, 1), buffer.Pt(4, 0, 1),
		}
		pts[2].W = buffer.Exact
		got := Filter(pts, 0.01)
		require.Len(t, got, 3)
		assert.Equal(t, 0.0, got[0].X)
		assert.Equal(t, 2.0, got[1].X)
		assert.Equal(t, buffer.Exact, got[1].W)
		assert.Equal(t, 4.0, got[2].X)
	})
	t.Run("corner survives", func(t *testing.T) {
		pts := []buffer.Point{
			buffer.Pt(0, 0, 1), buffer.Pt(1, 0, 1), buffer.Pt(2, 0, 1), buffer.Pt(2, 1, 1), buffer.Pt(2, 2, 1),
		}
		got := Filter(pts, 0.01)
		require.Len(t, got, 3)
		assert.Equal(t, buffer.Pt(2, 0, 1), got[1])
	})
	t.Run("short input", func(t *testing.T) {
		pts := []buffer.Point{buffer.Pt(0, 0, 1), buffer.Pt(1, 0, 1)}
		assert.Len(t, Filter(pts, 0.01), 2)
	})
}

func TestCutCorners(t *testing.T) {
	zigzag := func() []buffer.Point {
		return []buffer.Point{
			buffer.Pt(0, 0, 1), buffer.Pt(1, 1, 1), buffer.Pt(2, 0, 1), buffer.Pt(3, 1, 1), buffer.Pt(4, 0, 1),
		}
	}

	pts := zigzag()
	got := CutCorners(pts)
	for _, i := range []int{0, 1, 3, 4} {
		assert.Equal(t, pts[i], got[i], "point %d must not move", i)
	}
	assert.InDelta(t, 2.0, got[2].X, 1e-12)
	assert.InDelta(t, 0.3333, got[2].Y, 1e-12)

	pts = zigzag()
	pts[2].W = buffer.Exact
	got = CutCorners(pts)
	assert.Equal(t, pts[2], got[2], "weighted corner must not move")
}

func TestFivePoint(t *testing.T) {
	s := fivePoint(buffer.Pt(0, 0, 0), buffer.Pt(1, 0, 0), buffer.Pt(1, 1, 0), 0.5)
	assert.InDelta(t, 0.5, s[0].X, 1e-12)
	assert.InDelta(t, 0.0, s[0].Y, 1e-12)
	assert.InDelta(t, 0.875, s[2].X, 1e-12)
	assert.InDelta(t, 0.125, s[2].Y, 1e-12)
	assert.InDelta(t, 1.0, s[4].X, 1e-12)
	assert.InDelta(t, 0.5, s[4].Y, 1e-12)

	pts := []buffer.Point{buffer.Pt(0, 0, 7), buffer.Pt(1, 0, 7), buffer.Pt(1, 1, 7), buffer.Pt(2, 1, 7)}
	pts[1].W = buffer.Exact
	out := FivePoint(pts, 0.3)
	require.Len(t, out, 8)
	assert.Equal(t, pts[0], out[0])
	assert.Equal(t, pts[1], out[1])
	assert.Equal(t, pts[3], out[7])
	for _, p := range out {
		assert.Equal(t, 7.0, p.Z)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		mode        Mode
		factor      float64
		density     int
		wantFactor  float64
		wantDensity int
	}{
		{Vertex, 0.2, 0, 0.2, 0},
		{Vertex, 0.9, 0, VertexFactorDefault, 0},
		{Spline, 6, 2, SplineFactorDefault, DensityDefault},
		{SplineNoOverlap, 0, 10, 0, 10},
		{Spline, math.NaN(), 4, SplineFactorDefault, 4},
	}
	for _, tt := range tests {
		f, d := Clamp(tt.mode, tt.factor, tt.density)
		assert.Equal(t, tt.wantFactor, f, "%v factor %v", tt.mode, tt.factor)
		assert.Equal(t, tt.wantDensity, d, "%v density %v", tt.mode, tt.density)
	}
}

func TestSmoothLeavesShortPolylines(t *testing.T) {
	pts := []buffer.Point{buffer.Pt(0, 0, 1), buffer.Pt(1, 1, 1), buffer.Pt(2, 0, 1)}
	p := Pipeline{Mode: Spline}
	assert.Equal(t, pts, p.Smooth(pts))

	none := Pipeline{}
	long := ring(8, 0, 0, 1, 1)
	assert.Equal(t, long, none.Smooth(long))
}

func TestSmoothNeverMovesWeightedPoints(t *testing.T) {
	for _, mode := range []Mode{Vertex, Spline, SplineNoOverlap} {
		t.Run(mode.String(), func(t *testing.T) {
			pts := ring(12, 5, 5, 3, 2)
			pts[3].W = buffer.Exact
			pts[7].W = buffer.Exact
			pts[9].W = buffer.Breakline
			p := Pipeline{Mode: mode, Factor: 4, Density: 4, PPTol: 1e-4}
			out := p.Smooth(pts)
			require.Greater(t, len(out), len(pts))

			for _, i := range []int{3, 7, 9} {
				found := false
				for _, q := range out {
					if q.X == pts[i].X && q.Y == pts[i].Y && q.W == pts[i].W {
						found = true
						break
					}
				}
				assert.True(t, found, "weighted point %d moved", i)
			}
			assert.Equal(t, out[0].X, out[len(out)-1].X, "closed input must stay closed")
			assert.Equal(t, out[0].Y, out[len(out)-1].Y, "closed input must stay closed")
		})
	}
}

func TestBreaklinePullBack(t *testing.T) {
	pts := []buffer.Point{
		buffer.Pt(0, 0, 1), buffer.Pt(1, 1, 1), buffer.Pt(2, 1, 1), buffer.Pt(3, 2, 1), buffer.Pt(4, 1, 1), buffer.Pt(5, 2, 1),
	}
	pts[2].W = buffer.Breakline
	pts[3].W = buffer.Breakline
	p := Pipeline{Mode: SplineNoOverlap}
	out := p.spline(pts, 2.5, 3)
	const span = 4
	require.Len(t, out, 5*span+1)
	for i := 2 * span; i <= 3*span; i++ {
		assert.InDelta(t, out[i].X-2, out[i].Y-1, 1e-12, "sample %d off the break line", i)
		assert.True(t, out[i].X >= 2 && out[i].X <= 3, "sample %d outside the break line", i)
	}
}

// Smoothed points on a cone stay within 0.75 of the interval of their
// contour elevation.
func TestIntervalPullBackBound(t *testing.T) {
	cone, err := mesh.NewGrid(21, 21, 0.5, func(x, y float64) float64 {
		return math.Hypot(x-5, y-5)
	})
	require.NoError(t, err)

	const (
		value    = 3.0
		interval = 0.4
	)
	p := Pipeline{
		Mode:     Spline,
		Factor:   5,
		Density:  6,
		Interval: interval,
		Surface:  cone,
		PPTol:    1e-4,
	}
	out := p.Smooth(ring(16, 5, 5, value, value))
	require.NotEmpty(t, out)

	inside := 0
	for i, q := range out {
		z, st := cone.Drape(q.X, q.Y)
		if st != mesh.Inside {
			continue
		}
		inside++
		assert.LessOrEqual(t, math.Abs(z-value), IntervalRatio*interval+1e-9, "point %d at (%v, %v)", i, q.X, q.Y)
		assert.Equal(t, value, q.Z)
	}
	assert.Equal(t, len(out), inside)
}
