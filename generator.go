package contour

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/contour/internal/buffer"
	"github.com/gogpu/contour/internal/cache"
	"github.com/gogpu/contour/internal/index"
	"github.com/gogpu/contour/internal/pond"
	"github.com/gogpu/contour/internal/trace"
	"github.com/gogpu/contour/mesh"
)

const (
	// checkStopEvery is the number of values plotted between check-stop
	// polls. It must be a power of two.
	checkStopEvery = 256

	// maxValues bounds the length of a regular series.
	maxValues = 10_000_000

	// pondCacheSize is the number of depression registers a Generator keeps.
	pondCacheSize = 16
)

// meshKey identifies one state of a mesh.
type meshKey struct {
	id       uint64
	modified int64
}

func (k meshKey) String() string {
	return fmt.Sprintf("%d@%d", k.id, k.modified)
}

// Generator extracts contours. Options given to New apply to every request
// and may be overridden per request. A Generator is safe for concurrent
// use; it caches the depression registers of the meshes it has seen.
// Concurrent requests on one mesh share a single register build, and a
// build never blocks requests on other meshes.
type Generator struct {
	opts   options
	ponds  *cache.Cache[meshKey, *pond.Register]
	builds singleflight.Group
}

// New returns a Generator with the given default options.
func New(opts ...Option) *Generator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{
		opts:  o,
		ponds: cache.New[meshKey, *pond.Register](pondCacheSize),
	}
}

var defaultGenerator = New()

// Generate contours m with a shared default Generator.
func Generate(ctx context.Context, m *mesh.Mesh, h Handler, opts ...Option) error {
	return defaultGenerator.Generate(ctx, m, h, opts...)
}

// resolve returns the generator defaults with opts applied.
func (g *Generator) resolve(opts []Option) options {
	o := g.opts
	o.values = append([]float64(nil), o.values...)
	o.finderSet = false
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Generate traces every contour value of m and delivers the polylines to
// h. Without options a unit interval over the whole elevation range is
// used.
func (g *Generator) Generate(ctx context.Context, m *mesh.Mesh, h Handler, opts ...Option) (err error) {
	o := g.resolve(opts)
	r := g.begin(ctx, "contour.Generate", m, h, &o)
	defer func() { r.end(err) }()

	if err := validate(m, h); err != nil {
		return err
	}
	if !o.useValues && (!(o.interval > 0) || math.IsInf(o.interval, 0)) {
		return fmt.Errorf("%w: interval %v", ErrInvalidContourRange, o.interval)
	}
	if math.IsNaN(o.registration) || math.IsInf(o.registration, 0) {
		return fmt.Errorf("%w: registration %v", ErrInvalidContourRange, o.registration)
	}
	return r.run()
}

// GenerateValues traces the given contour values only.
func (g *Generator) GenerateValues(ctx context.Context, m *mesh.Mesh, h Handler, values []float64, opts ...Option) error {
	return g.Generate(ctx, m, h, append(opts, WithValues(values...))...)
}

func validate(m *mesh.Mesh, h Handler) error {
	switch {
	case m == nil:
		return fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	case h == nil:
		return fmt.Errorf("%w: nil handler", ErrInvalidConfig)
	case !m.Triangulated():
		return ErrNotTriangulated
	}
	return nil
}

// begin starts the span, clock and logger of one request.
func (g *Generator) begin(ctx context.Context, name string, m *mesh.Mesh, h Handler, o *options) *request {
	id := uuid.NewString()
	attrs := []attribute.KeyValue{attribute.String("request_id", id)}
	if m != nil {
		attrs = append(attrs,
			attribute.Int("mesh.points", m.NumPoints()),
			attribute.Int("mesh.edges", m.NumEdges()),
		)
	}
	ctx, span := o.startSpan(ctx, name, attrs...)
	return &request{
		g:     g,
		ctx:   ctx,
		span:  span,
		start: time.Now(),
		id:    id,
		m:     m,
		h:     h,
		o:     o,
		log:   Logger().With("request_id", id),
	}
}

// run plots the value series of an already validated request.
func (r *request) run() error {
	m, o := r.m, r.o
	if ok, err := r.prepare(); !ok || err != nil {
		return err
	}

	var (
		values   []float64
		interval float64
		err      error
	)
	if o.useValues {
		values = r.explicitValues()
	} else {
		values, err = r.series()
		if err != nil {
			return err
		}
		interval = o.interval
	}
	r.smoother.Interval = interval
	r.log.Debug("contour: value series", "values", len(values), "interval", interval)
	if len(values) == 0 {
		return nil
	}

	if err := r.checkStop(); err != nil {
		return err
	}
	var ix *index.Index
	if !o.useValues {
		ix = index.Build(m, values[0], interval, r.mask)
		r.log.Debug("contour: index built", "entries", ix.Len())
	}
	if err := r.checkStop(); err != nil {
		return err
	}

	tr := r.tracer()
	offset := 0
	for i, v := range values {
		if i&(checkStopEvery-1) == checkStopEvery-1 {
			if err := r.checkStop(); err != nil {
				return err
			}
		}
		r.resetFlags()
		if err := tr.Plot(v, ix, &offset); err != nil {
			return r.fail(err)
		}
		r.stats.values++
		o.metrics.observeValue()
	}
	return nil
}

// series returns the regular values within the usable range. Values at the
// global extremes of the mesh are skipped: they only touch its flat top or
// bottom.
func (r *request) series() ([]float64, error) {
	o := r.o
	lo, hi := r.zMin, r.zMax
	if lo > hi {
		return nil, nil
	}
	reg, interval := o.registration, o.interval
	first := reg + math.Trunc((lo-reg)/interval)*interval
	last := reg + (math.Trunc((hi-reg)/interval)+1)*interval
	n := math.Floor((last-first)/interval) + 1
	if n > maxValues || math.IsNaN(n) {
		return nil, fmt.Errorf("%w: %.0f values of interval %v", ErrInvalidContourRange, n, interval)
	}

	meshMin, meshMax := r.m.ZRange()
	values := make([]float64, 0, int(n))
	for k := 0; k < int(n); k++ {
		v := round8(first + float64(k)*interval)
		if v < lo || v == meshMin {
			continue
		}
		if v > hi || v == meshMax {
			break
		}
		values = append(values, v)
	}
	return values, nil
}

// explicitValues rounds the requested values and drops those outside the
// usable range of the mesh.
func (r *request) explicitValues() []float64 {
	values := make([]float64, 0, len(r.o.values))
	for _, v := range r.o.values {
		v = round8(v)
		if !(v >= r.meshMin && v <= r.meshMax) {
			r.log.Debug("contour: value outside mesh", "value", v)
			continue
		}
		values = append(values, v)
	}
	return values
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

func (r *request) tracer() *trace.Tracer {
	buf := buffer.New(r.o.maxPoints)
	return trace.New(r.m, r.flags, buf, r.deliver,
		trace.WithMaxSlope(r.o.maxSlope),
		trace.WithLogger(r.log),
	)
}

// fail maps internal errors to the package sentinels.
func (r *request) fail(err error) error {
	switch {
	case errors.Is(err, ErrUserCancelled):
		return err
	case errors.Is(err, trace.ErrInconsistent):
		return fmt.Errorf("%w: %w", ErrTraceInconsistency, err)
	case errors.Is(err, buffer.ErrCapacity):
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	return err
}
