package contour

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/contour/internal/trace"
	"github.com/gogpu/contour/mesh"
)

// ContourAtPoint traces the single contour passing through (x, y). The
// contour value is the draped elevation of the point rounded to eight
// decimals. A point outside the mesh or in a void fails with
// ErrInvalidContourRange. A point on a flat triangle yields no contour.
//
// Interval and value options are ignored; smoothing, fence and depression
// options apply as for Generate.
func (g *Generator) ContourAtPoint(ctx context.Context, m *mesh.Mesh, x, y float64, h Handler, opts ...Option) (err error) {
	o := g.resolve(opts)
	o.useValues = false
	r := g.begin(ctx, "contour.ContourAtPoint", m, h, &o)
	defer func() { r.end(err) }()

	if err := validate(m, h); err != nil {
		return err
	}
	z, st := m.Drape(x, y)
	if st != mesh.Inside {
		return fmt.Errorf("%w: point (%v, %v) is %v", ErrInvalidContourRange, x, y, st)
	}
	value := round8(z)
	r.span.SetAttributes(attribute.Float64("contour.value", value))

	ok, err := r.prepare()
	if !ok || err != nil {
		return err
	}
	ti, found := m.FindTriangle(x, y)
	if !found {
		return fmt.Errorf("%w: no triangle at (%v, %v)", ErrInvalidContourRange, x, y)
	}
	tri := m.Triangle(ti)
	for k := range 3 {
		p1, p2 := tri[k], tri[(k+1)%3]
		if !crossedBy(value, m.Z(p1), m.Z(p2)) {
			continue
		}
		if err := r.checkStop(); err != nil {
			return err
		}
		r.resetFlags()
		if id, ok := m.EdgeID(p1, p2); ok && r.flags.Test(id) {
			r.log.Debug("contour: start edge excluded", "value", value)
			return nil
		}
		// Triangles are anticlockwise, so the triangle lies left of p1->p2.
		if err := r.tracer().Trace(value, p1, p2, trace.Anticlockwise); err != nil {
			return r.fail(err)
		}
		r.stats.values++
		r.o.metrics.observeValue()
		return nil
	}
	r.log.Debug("contour: flat triangle at point", "value", value)
	return nil
}

// crossedBy reports whether the edge from z1 to z2 is crossed by value,
// counting the lower end point as crossed.
func crossedBy(value, z1, z2 float64) bool {
	return (value >= z1 && value < z2) || (value <= z1 && value > z2)
}

// ContourAtPoint traces the contour through (x, y) with a shared default
// Generator.
func ContourAtPoint(ctx context.Context, m *mesh.Mesh, x, y float64, h Handler, opts ...Option) error {
	return defaultGenerator.ContourAtPoint(ctx, m, x, y, h, opts...)
}
