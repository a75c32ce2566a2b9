// Package trace walks a mesh to extract the contour polylines of one
// elevation value.
//
// A trace starts on a mesh edge crossed by the value and rotates around the
// lower (or higher) end point from triangle to triangle. It runs twice: the
// first scan finds where the contour ends without emitting anything, the
// second walks back in the opposite rotation and emits one interpolated
// point per crossed edge. Every crossed edge is flagged so no contour is
// traced twice for the same value.
package trace

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/contour/internal/buffer"
	"github.com/gogpu/contour/internal/edgeflag"
	"github.com/gogpu/contour/mesh"
)

// ErrInconsistent is returned when the mesh topology does not allow the
// walk to continue. It indicates a corrupt mesh.
var ErrInconsistent = errors.New("trace: inconsistent mesh topology")

// Rotation is the sense in which the far end point is rotated around the
// pivot point.
type Rotation uint8

// Rotations.
const (
	Clockwise Rotation = iota
	Anticlockwise
)

// Reverse returns the opposite rotation.
func (r Rotation) Reverse() Rotation {
	if r == Clockwise {
		return Anticlockwise
	}
	return Clockwise
}

// Tag orients a delivered polyline against the slope.
type Tag uint8

// Tags.
const (
	// HighOnLeft means higher ground lies to the left of the point order.
	HighOnLeft Tag = iota

	// HighOnRight means higher ground lies to the right of the point order.
	HighOnRight
)

// Sink receives every finished polyline. The points slice is reused after
// the sink returns. A sink error aborts the walk and is returned unchanged.
type Sink func(value float64, tag Tag, pts []buffer.Point) error

// Option configures a Tracer.
type Option func(*Tracer)

// WithMaxSlope stops a walk at triangles whose gradient is at least max.
// Non-positive values disable the cutoff.
func WithMaxSlope(max float64) Option {
	return func(t *Tracer) {
		t.maxSlope = max
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.log = l
		}
	}
}

// Tracer holds the per-request state of the walk. It is not safe for
// concurrent use; the mesh it reads may be shared.
type Tracer struct {
	m        *mesh.Mesh
	flags    *edgeflag.Set
	buf      *buffer.Buffer
	sink     Sink
	maxSlope float64
	log      *slog.Logger

	traces int
}

// New returns a Tracer writing points to buf and marking edges in flags.
func New(m *mesh.Mesh, flags *edgeflag.Set, buf *buffer.Buffer, sink Sink, opts ...Option) *Tracer {
	t := &Tracer{
		m:     m,
		flags: flags,
		buf:   buf,
		sink:  sink,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Traces returns the number of walks started since the Tracer was created.
func (t *Tracer) Traces() int { return t.traces }

// Trace follows the contour of value through edge (p1, p2), which must be
// crossed by value, and delivers the resulting polylines to the sink.
func (t *Tracer) Trace(value float64, p1, p2 int, rot Rotation) error {
	m := t.m
	t.traces++

	var rising bool
	switch z1, z2 := m.Z(p1), m.Z(p2); {
	case value >= z1 && value < z2:
		rising = true
	case value <= z1 && value > z2:
		rising = false
	default:
		return fmt.Errorf("%w: value %v does not cross edge %d-%d", ErrInconsistent, value, p1, p2)
	}
	tag := HighOnRight
	if rising == (rot == Anticlockwise) {
		tag = HighOnLeft
	}

	var xlc, ylc float64
	for scan := 0; scan < 2; scan++ {
		sp1, sp2 := p1, p2
		lp1, llp1, lp2 := -1, -1, -1
		scanned := rot == Clockwise && m.HullNext(p1) == p2

		if scan == 1 && !scanned {
			pt := t.crossing(value, p1, p2)
			if err := t.buf.Append(pt); err != nil {
				return err
			}
			xlc, ylc = pt.X, pt.Y
			t.flag(p1, p2)
		}

		for !scanned {
			if lp1 != p1 {
				llp1 = lp1
			}
			lp1, lp2 = p1, p2
			lzp1 := m.Z(p1)

			next, ok := t.rotate(rot, p1, p2)
			if !ok {
				return fmt.Errorf("%w: cannot rotate %d around %d", ErrInconsistent, p2, p1)
			}
			p2 = next

			var zp1, zp2 float64
			if t.maxSlope > 0 && m.TriangleSlope(lp1, lp2, p2) >= t.maxSlope {
				scanned = true
				p2 = lp2
			} else {
				zp1, zp2 = m.Z(p1), m.Z(p2)
				if (rising && value >= zp2) || (!rising && value <= zp2) {
					if p2 == llp1 && zp2 == value {
						// Ridge or sump: the walk came back to the vertex it
						// left two steps ago.
						p2 = lp2
						sp1, sp2 = p1, p2
						scanned = true
					} else {
						p1, p2 = p2, lp2
						zp1, zp2 = m.Z(p1), m.Z(p2)
						if zp2 == value {
							return fmt.Errorf("%w: edge %d-%d ends on the contour value", ErrInconsistent, p1, p2)
						}
					}
				}
				if p1 != sp1 || p2 != sp2 {
					switch {
					case t.flagged(p1, p2):
						scanned = true
					case lzp1 == value && zp1 == value && lp1 != p1 && t.flagged(p1, lp1):
						scanned = true
					}
					if scanned && scan == 0 {
						p1, p2 = lp1, lp2
					}
				}
			}
			if scanned {
				break
			}

			zeroLine := lp1 != p1 && lzp1 == value && zp1 == value
			if zeroLine && t.zeroSlopeTriangle(value, lp1, p1) {
				if scan == 1 {
					if err := t.flush(value, tag); err != nil {
						return err
					}
				}
				if err := t.TraceZeroSlope(value, lp1, p1, rot, tag); err != nil {
					return err
				}
				scanned = true
				p1 = lp1
				if m.IsHullLine(p1, p2) {
					scan = 2
				}
				break
			}

			if scan == 1 {
				pt := t.crossing(value, p1, p2)
				if pt.X != xlc || pt.Y != ylc {
					if err := t.buf.Append(pt); err != nil {
						return err
					}
					xlc, ylc = pt.X, pt.Y
				}
				t.flag(p1, p2)
				if zeroLine {
					t.flag(lp1, p1)
				}
			}
			switch {
			case p1 == sp1 && p2 == sp2:
				scanned = true
			case m.IsHullLine(p1, p2), m.IsVoidHullLine(p1, p2):
				scanned = true
			}
		}
		rot = rot.Reverse()
	}
	return t.flush(value, tag)
}

// TraceZeroSlope walks the boundary of the flat region at value that
// contains edge (p1, p2). Emitted points are mesh vertices of weight Exact.
func (t *Tracer) TraceZeroSlope(value float64, p1, p2 int, rot Rotation, tag Tag) error {
	m := t.m
	if t.flagged(p1, p2) || m.IsVoidLine(p1, p2) {
		return nil
	}
	t.traces++
	if err := t.vertex(p2); err != nil {
		return err
	}
	if err := t.vertex(p1); err != nil {
		return err
	}
	t.flag(p1, p2)

	lp := p2
	void := false
	for p1 != lp && !void {
		np := p2
		p3, ok := t.rotate(rot, p1, p2)
		if !ok {
			return fmt.Errorf("%w: cannot rotate %d around %d", ErrInconsistent, p2, p1)
		}
		for m.Z(p3) == value && m.IsTriangle(p1, p2, p3) && p3 != np {
			p2 = p3
			if p3, ok = t.rotate(rot, p1, p2); !ok {
				return fmt.Errorf("%w: cannot rotate %d around %d", ErrInconsistent, p2, p1)
			}
			if m.IsVoidLine(p1, p3) {
				break
			}
		}
		void = m.IsVoidLine(p1, p2)
		if t.flagged(p1, p2) {
			break
		}
		if !void {
			if err := t.vertex(p2); err != nil {
				return err
			}
			t.flag(p1, p2)
			p1, p2 = p2, p1
		}
	}
	return t.flush(value, tag)
}

// zeroSlopeTriangle reports whether flat edge (lp1, p1) belongs to a
// triangle whose third vertex also lies on value.
func (t *Tracer) zeroSlopeTriangle(value float64, lp1, p1 int) bool {
	for _, next := range []func(int, int) (int, bool){t.m.NextClockwise, t.m.NextAnticlockwise} {
		p3, ok := next(lp1, p1)
		if !ok {
			return false
		}
		if _, edge := t.m.EdgeID(p1, p3); edge && t.m.Z(p3) == value {
			return true
		}
	}
	return false
}

func (t *Tracer) rotate(rot Rotation, p1, p2 int) (int, bool) {
	if rot == Clockwise {
		return t.m.NextClockwise(p1, p2)
	}
	return t.m.NextAnticlockwise(p1, p2)
}

// crossing interpolates the point where value crosses edge (p1, p2).
func (t *Tracer) crossing(value float64, p1, p2 int) buffer.Point {
	a, b := t.m.Point(p1), t.m.Point(p2)
	ra := (value - a.Z) / (b.Z - a.Z)
	pt := buffer.Point{
		X: a.X + (b.X-a.X)*ra,
		Y: a.Y + (b.Y-a.Y)*ra,
		Z: value,
	}
	switch {
	case ra == 0:
		pt.W = buffer.Exact
	case t.m.IsBreakline(p1, p2):
		pt.W = buffer.Breakline
	}
	return pt
}

func (t *Tracer) vertex(p int) error {
	v := t.m.Point(p)
	return t.buf.Append(buffer.Point{X: v.X, Y: v.Y, Z: v.Z, W: buffer.Exact})
}

func (t *Tracer) flagged(p1, p2 int) bool {
	id, ok := t.m.EdgeID(p1, p2)
	return ok && t.flags.Test(id)
}

func (t *Tracer) flag(p1, p2 int) {
	if id, ok := t.m.EdgeID(p1, p2); ok {
		t.flags.Set(id)
	}
}

// flush hands the buffered points to the sink and empties the buffer.
func (t *Tracer) flush(value float64, tag Tag) error {
	defer t.buf.Reset()
	if t.buf.Len() == 0 {
		return nil
	}
	return t.sink(value, tag, t.buf.Points())
}
