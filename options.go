package contour

import (
	"slices"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gogpu/contour/internal/pond"
	"github.com/gogpu/contour/internal/smooth"
)

// Smoothing selects the smoothing method applied to each contour.
type Smoothing = smooth.Mode

// Smoothing methods.
const (
	SmoothNone            = smooth.None
	SmoothVertex          = smooth.Vertex
	SmoothSpline          = smooth.Spline
	SmoothSplineNoOverlap = smooth.SplineNoOverlap
)

// Option configures a Generator or a single request.
//
// Example:
//
//	g := contour.New(contour.WithSmoothing(contour.SmoothSpline, 2.5, 5))
//	err := g.Generate(ctx, m, h, contour.WithInterval(0.5, 0))
type Option func(*options)

// options holds the settings of one request.
type options struct {
	interval     float64
	registration float64
	rangeMin     float64
	rangeMax     float64
	values       []float64
	useValues    bool

	smoothing Smoothing
	factor    float64
	density   int

	fence       Fence
	maxSlope    float64
	depressions bool
	finder      PondFinder
	finderSet   bool
	maxPoints   int

	metrics *Metrics
	tracer  oteltrace.TracerProvider
}

// defaultOptions returns the settings used when no option is given: a
// unit interval over the whole mesh, no smoothing and no fence.
func defaultOptions() options {
	return options{
		interval: 1,
		finder:   pond.FloodFinder{},
	}
}

// WithInterval contours the regular series registration + k*interval.
func WithInterval(interval, registration float64) Option {
	return func(o *options) {
		o.interval = interval
		o.registration = registration
		o.useValues = false
	}
}

// WithRange limits the regular series to [lo, hi]. The range is clipped to
// the mesh. An empty or inverted range selects the whole mesh.
func WithRange(lo, hi float64) Option {
	return func(o *options) {
		o.rangeMin, o.rangeMax = lo, hi
	}
}

// WithValues contours the given values instead of a regular series.
// Values outside the mesh elevation range are skipped.
func WithValues(values ...float64) Option {
	return func(o *options) {
		o.values = slices.Clone(values)
		o.useValues = true
	}
}

// WithSmoothing selects the smoothing method. Out of range factor and
// density are replaced by the method defaults.
func WithSmoothing(mode Smoothing, factor float64, density int) Option {
	return func(o *options) {
		o.smoothing = mode
		o.factor = factor
		o.density = density
	}
}

// WithFence restricts output to one side of a fence.
func WithFence(f Fence) Option {
	return func(o *options) {
		f.Points = slices.Clone(f.Points)
		o.fence = f
	}
}

// WithMaxSlope stops contours at triangles whose gradient is at least
// slope. Non-positive values disable the cutoff.
func WithMaxSlope(slope float64) Option {
	return func(o *options) {
		o.maxSlope = slope
	}
}

// WithDepressions tags contours lying inside closed depressions.
func WithDepressions() Option {
	return func(o *options) {
		o.depressions = true
	}
}

// WithPondFinder replaces the depression finder and enables depression
// tagging.
func WithPondFinder(f PondFinder) Option {
	return func(o *options) {
		if f != nil {
			o.finder = f
			o.finderSet = true
			o.depressions = true
		}
	}
}

// WithMaxPoints limits the number of points of one traced polyline.
// Exceeding it fails the request with ErrAllocation. Zero means no limit.
func WithMaxPoints(n int) Option {
	return func(o *options) {
		o.maxPoints = n
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. By default
// the global provider is used.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}
