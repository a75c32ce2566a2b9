package contour

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/contour/mesh"
)

// collector keeps copies of every contour it receives.
type collector struct {
	features []Feature
	stops    int
}

func (c *collector) HandleFeature(f *Feature) error {
	if f.Kind == KindCheckStop {
		c.stops++
		return nil
	}
	g := *f
	g.Points = slices.Clone(f.Points)
	c.features = append(c.features, g)
	return nil
}

func (c *collector) values() []float64 {
	var vs []float64
	for _, f := range c.features {
		if !slices.Contains(vs, f.Value) {
			vs = append(vs, f.Value)
		}
	}
	return vs
}

func (c *collector) points() int {
	n := 0
	for _, f := range c.features {
		n += len(f.Points)
	}
	return n
}

// square is a unit square split along its 0-2 diagonal.
func square(t *testing.T, z0, z1, z2, z3 float64) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(
		[]mesh.Point{mesh.Pt(0, 0, z0), mesh.Pt(1, 0, z1), mesh.Pt(1, 1, z2), mesh.Pt(0, 1, z3)},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
	)
	require.NoError(t, err)
	return m
}

// bowl is a 9x9 paraboloid with its lowest point at (4, 4).
func bowl(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewGrid(9, 9, 1, func(x, y float64) float64 {
		return (x-4)*(x-4) + (y-4)*(y-4)
	})
	require.NoError(t, err)
	return m
}

func isClosed(pts []Point) bool {
	return len(pts) > 2 && pts[0].X == pts[len(pts)-1].X && pts[0].Y == pts[len(pts)-1].Y
}

func TestScenarioOpenLine(t *testing.T) {
	m := square(t, 0, 0, 1, 1)
	var c collector
	require.NoError(t, New().Generate(context.Background(), m, &c, WithInterval(0.5, 0)))

	require.Len(t, c.features, 1)
	f := c.features[0]
	assert.Equal(t, KindContour, f.Kind)
	assert.Equal(t, 0.5, f.Value)
	require.Len(t, f.Points, 3)
	for _, p := range f.Points {
		assert.InDelta(t, 0.5, p.Y, 1e-12)
		assert.Equal(t, 0.5, p.Z)
	}
	first, last := f.Points[0], f.Points[2]
	assert.InDelta(t, 1, math.Abs(last.X-first.X), 1e-12, "line must span the square")
	if first.X < last.X {
		assert.Equal(t, Ascending, f.Direction)
	} else {
		assert.Equal(t, Descending, f.Direction)
	}
	assert.Positive(t, c.stops, "check-stop must be polled")
}

func TestScenarioZeroSlope(t *testing.T) {
	m := square(t, 5, 5, 5, 5)
	var c collector
	require.NoError(t, New().GenerateValues(context.Background(), m, &c, []float64{5}))

	require.Len(t, c.features, 1)
	pts := c.features[0].Points
	require.Len(t, pts, 5)
	assert.True(t, isClosed(pts))
	for i, p := range pts {
		assert.Equal(t, WeightExact, p.W, "point %d", i)
		assert.Equal(t, 5.0, p.Z)
	}
	for i := range 4 {
		v := m.Point(i)
		found := slices.ContainsFunc(pts, func(p Point) bool { return p.X == v.X && p.Y == v.Y })
		assert.True(t, found, "corner %d missing", i)
	}
}

// hillWithVoid is a 7x7 hill peaking at (3, 3) whose top is a void.
func hillWithVoid(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewGrid(7, 7, 1, func(x, y float64) float64 {
		return 10 - (x-3)*(x-3) - (y-3)*(y-3)
	}, mesh.WithFeatures(mesh.Feature{
		Kind:   mesh.Void,
		Points: []int{16, 17, 18, 25, 32, 31, 30, 23},
	}))
	require.NoError(t, err)
	require.True(t, m.HasVoids())
	return m
}

func TestScenarioVoid(t *testing.T) {
	m := hillWithVoid(t)
	g := New()

	var c collector
	require.NoError(t, g.GenerateValues(context.Background(), m, &c, []float64{9.5}))
	assert.Empty(t, c.features, "no contour may be traced inside the void")

	c = collector{}
	require.NoError(t, g.GenerateValues(context.Background(), m, &c, []float64{7}))
	require.NotEmpty(t, c.features)
	for _, f := range c.features {
		for _, p := range f.Points {
			inside := p.X > 2 && p.X < 4 && p.Y > 2 && p.Y < 4
			assert.False(t, inside, "point (%v, %v) inside the void", p.X, p.Y)
		}
	}
}

func TestScenarioValueAtVertex(t *testing.T) {
	m, err := mesh.NewGrid(5, 5, 1, func(x, y float64) float64 {
		return 8 - (x-2)*(x-2) - (y-2)*(y-2)
	})
	require.NoError(t, err)

	var c collector
	require.NoError(t, New().GenerateValues(context.Background(), m, &c, []float64{8, 7}))
	for _, f := range c.features {
		assert.GreaterOrEqual(t, len(f.Points), 2)
		for _, p := range f.Points {
			assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0))
		}
	}
	assert.Contains(t, c.values(), 7.0)
}

func TestGenerateValidation(t *testing.T) {
	flat, err := mesh.New([]mesh.Point{mesh.Pt(0, 0, 0), mesh.Pt(1, 0, 0), mesh.Pt(0, 1, 0)}, nil)
	require.NoError(t, err)
	m := bowl(t)

	tests := []struct {
		name string
		m    *mesh.Mesh
		h    Handler
		opts []Option
		want error
	}{
		{"nil mesh", nil, &collector{}, nil, ErrInvalidMesh},
		{"nil handler", m, nil, nil, ErrInvalidConfig},
		{"not triangulated", flat, &collector{}, nil, ErrNotTriangulated},
		{"zero interval", m, &collector{}, []Option{WithInterval(0, 0)}, ErrInvalidContourRange},
		{"negative interval", m, &collector{}, []Option{WithInterval(-1, 0)}, ErrInvalidContourRange},
		{"nan interval", m, &collector{}, []Option{WithInterval(math.NaN(), 0)}, ErrInvalidContourRange},
		{"tiny interval", m, &collector{}, []Option{WithInterval(1e-9, 0)}, ErrInvalidContourRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Generate(context.Background(), tt.m, tt.h, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerateClosedContours(t *testing.T) {
	m := bowl(t)
	var c collector
	require.NoError(t, New().Generate(context.Background(), m, &c, WithInterval(1, 0.5), WithRange(1, 10)))

	require.NotEmpty(t, c.features)
	for _, f := range c.features {
		assert.True(t, f.Value >= 1 && f.Value <= 10, "value %v outside range", f.Value)
		assert.Equal(t, 0.5, math.Mod(f.Value, 1), "value %v off registration", f.Value)
		assert.True(t, isClosed(f.Points), "value %v: contour around the bowl must close", f.Value)
		for _, p := range f.Points {
			assert.Equal(t, f.Value, p.Z)
		}
	}
	assert.Contains(t, c.values(), 1.5)
	assert.Contains(t, c.values(), 9.5)
}

func TestGenerateExplicitValues(t *testing.T) {
	m := bowl(t)
	var c collector
	err := New().GenerateValues(context.Background(), m, &c, []float64{3.000000001, -1, 100})
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, c.values())
}

func TestGenerateRangeOutsideMesh(t *testing.T) {
	m := bowl(t)
	var c collector
	require.NoError(t, New().Generate(context.Background(), m, &c, WithRange(50, 60)))
	assert.Empty(t, c.features)
}

func TestGenerateSmoothing(t *testing.T) {
	m := bowl(t)
	var plain, smooth collector
	g := New()
	require.NoError(t, g.GenerateValues(context.Background(), m, &plain, []float64{4.5}))
	require.NoError(t, g.GenerateValues(context.Background(), m, &smooth, []float64{4.5},
		WithSmoothing(SmoothSpline, 2.5, 5)))

	require.Len(t, plain.features, 1)
	require.Len(t, smooth.features, 1)
	assert.Greater(t, len(smooth.features[0].Points), len(plain.features[0].Points))
	assert.True(t, isClosed(smooth.features[0].Points))
}

func TestGenerateMaxPoints(t *testing.T) {
	m := bowl(t)
	err := New().GenerateValues(context.Background(), m, &collector{}, []float64{4.5}, WithMaxPoints(2))
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestGenerateCancellation(t *testing.T) {
	m := bowl(t)
	errStop := errors.New("stop")

	t.Run("check-stop", func(t *testing.T) {
		contours := 0
		h := HandlerFunc(func(f *Feature) error {
			if f.Kind == KindCheckStop {
				return errStop
			}
			contours++
			return nil
		})
		err := New().Generate(context.Background(), m, h)
		assert.ErrorIs(t, err, ErrUserCancelled)
		assert.ErrorIs(t, err, errStop)
		assert.Zero(t, contours)
	})

	t.Run("contour handler", func(t *testing.T) {
		contours := 0
		h := HandlerFunc(func(f *Feature) error {
			if f.Kind == KindContour {
				contours++
				return errStop
			}
			return nil
		})
		err := New().Generate(context.Background(), m, h)
		assert.ErrorIs(t, err, ErrUserCancelled)
		assert.Equal(t, 1, contours)
	})

	t.Run("context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var c collector
		err := New().Generate(ctx, m, &c)
		assert.ErrorIs(t, err, ErrUserCancelled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, c.features)
	})
}

// Check-stop is polled before the index build, before the first value
// and every 256 values.
func TestCheckStopCadence(t *testing.T) {
	m, err := mesh.NewGrid(3, 3, 1, func(x, y float64) float64 { return x * 1000 })
	require.NoError(t, err)

	var c collector
	require.NoError(t, New().Generate(context.Background(), m, &c, WithInterval(1, 0)))
	assert.GreaterOrEqual(t, len(c.values()), 1998)
	assert.Equal(t, 2+1999/256, c.stops)
}

func TestPackageGenerate(t *testing.T) {
	var c collector
	require.NoError(t, Generate(context.Background(), square(t, 0, 0, 1, 1), &c, WithInterval(0.5, 0)))
	assert.Len(t, c.features, 1)
}
