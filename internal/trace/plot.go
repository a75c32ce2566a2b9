package trace

import (
	"fmt"

	"github.com/gogpu/contour/internal/index"
	"github.com/gogpu/contour/mesh"
)

// Plot traces every contour of value. The hull is scanned first for open
// contours and flat hull triangles, then void, hole and island boundaries,
// then the index from *offset. Without an index every internal edge is
// tested. *offset is advanced for the next, higher value.
func (t *Tracer) Plot(value float64, ix *index.Index, offset *int) error {
	before := t.traces
	if err := t.scanHull(value); err != nil {
		return err
	}
	if t.m.HasVoids() {
		if err := t.scanFeatures(value); err != nil {
			return err
		}
	}
	var err error
	if ix.Len() > 0 {
		err = t.scanIndex(value, ix, offset)
	} else {
		err = t.scanEdges(value)
	}
	if err != nil {
		return err
	}
	t.log.Debug("contour: plotted value", "value", value, "traces", t.traces-before)
	return nil
}

func crosses(value, z1, z2 float64) bool {
	return (value >= z1 && value < z2) || (value <= z1 && value > z2)
}

func (t *Tracer) scanHull(value float64) error {
	m := t.m
	start := m.HullStart()
	if start < 0 {
		return nil
	}
	// A flat hull edge whose interior triangle is also flat seeds a
	// zero-slope trace. The seed is held until a non-flat edge is reached
	// so the trace starts at the last flat edge of the run.
	zs1, zs2 := -1, -1
	p1 := start
	for {
		p2 := m.HullNext(p1)
		if !t.flagged(p1, p2) && !m.IsVoidHullLine(p1, p2) {
			z1, z2 := m.Z(p1), m.Z(p2)
			if value == z1 && value == z2 {
				ap, ok := m.NextAnticlockwise(p1, p2)
				if !ok {
					return fmt.Errorf("%w: cannot rotate %d around %d", ErrInconsistent, p2, p1)
				}
				if m.Z(ap) == value {
					zs1, zs2 = p1, p2
				}
			} else if zs1 >= 0 {
				if err := t.TraceZeroSlope(value, zs1, zs2, Anticlockwise, HighOnRight); err != nil {
					return err
				}
				zs1 = -1
			}
			if crosses(value, z1, z2) && !t.flagged(p1, p2) {
				if err := t.Trace(value, p1, p2, Anticlockwise); err != nil {
					return err
				}
			}
		}
		p1 = p2
		if p1 == start {
			break
		}
	}
	if zs1 >= 0 {
		return t.TraceZeroSlope(value, zs1, zs2, Anticlockwise, HighOnRight)
	}
	return nil
}

// scanFeatures starts traces on polygon feature boundaries. Rings are
// anticlockwise, so clockwise rotation leaves a void and anticlockwise
// rotation enters an island.
func (t *Tracer) scanFeatures(value float64) error {
	m := t.m
	for _, f := range m.Features() {
		if !f.Kind.IsPolygon() {
			continue
		}
		rot := Clockwise
		if f.Kind == mesh.Island {
			rot = Anticlockwise
		}
		for k := 0; k+1 < len(f.Points); k++ {
			p1, p2 := f.Points[k], f.Points[k+1]
			if m.HullNext(p1) == p2 || !crosses(value, m.Z(p1), m.Z(p2)) || t.flagged(p1, p2) {
				continue
			}
			if err := t.Trace(value, p1, p2, rot); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tracer) scanIndex(value float64, ix *index.Index, offset *int) error {
	m := t.m
	first, ok := ix.Locate(value, *offset)
	if !ok {
		return nil
	}
	*offset = first
	for i := first; i < ix.Len(); i++ {
		e := ix.Entry(i)
		if value < e.MinZ {
			break
		}
		if value > e.MaxZ || m.Z(e.P2) == value {
			continue
		}
		if m.IsHullLine(e.P1, e.P2) || t.flagged(e.P1, e.P2) {
			continue
		}
		rot := Clockwise
		if m.HullNext(e.P1) == e.P2 {
			rot = Anticlockwise
		}
		if err := t.Trace(value, e.P1, e.P2, rot); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracer) scanEdges(value float64) error {
	m := t.m
	for p1 := 0; p1 < m.NumPoints(); p1++ {
		for _, p2 := range m.Neighbors(p1) {
			if p2 <= p1 || m.IsHullLine(p1, p2) {
				continue
			}
			if !crosses(value, m.Z(p1), m.Z(p2)) || t.flagged(p1, p2) {
				continue
			}
			if err := t.Trace(value, p1, p2, Clockwise); err != nil {
				return err
			}
		}
	}
	return nil
}
