package contour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gogpu/contour/internal/buffer"
	"github.com/gogpu/contour/internal/clip"
	"github.com/gogpu/contour/internal/edgeflag"
	"github.com/gogpu/contour/internal/pond"
	"github.com/gogpu/contour/internal/smooth"
	"github.com/gogpu/contour/internal/trace"
	"github.com/gogpu/contour/mesh"
)

// stats counts the output of one request.
type stats struct {
	values    int
	polylines int
	points    int
}

// request is the state of one Generate or ContourAtPoint call. The mesh,
// clip region and depression register are read-only and may be shared;
// everything else belongs to the request.
type request struct {
	g     *Generator
	ctx   context.Context
	span  oteltrace.Span
	start time.Time
	id    string

	m   *mesh.Mesh
	h   Handler
	o   *options
	log *slog.Logger

	region   *clip.Region
	mask     *edgeflag.Set
	flags    *edgeflag.Set
	ponds    *pond.Register
	smoother smooth.Pipeline

	// meshMin and meshMax bound the elevations of the usable edges. zMin
	// and zMax further apply the requested range.
	meshMin, meshMax float64
	zMin, zMax       float64

	stats stats
}

// prepare resolves the fence, depressions and exclusion mask. It reports
// false when no edge is left to contour.
func (r *request) prepare() (bool, error) {
	m, o := r.m, r.o
	r.meshMin, r.meshMax = m.ZRange()
	r.zMin, r.zMax = r.meshMin, r.meshMax
	if o.rangeMin < o.rangeMax {
		r.zMin = max(o.rangeMin, r.meshMin)
		r.zMax = min(o.rangeMax, r.meshMax)
	}

	factor, density := smooth.Clamp(o.smoothing, o.factor, o.density)
	r.smoother = smooth.Pipeline{
		Mode:    o.smoothing,
		Factor:  factor,
		Density: density,
		Surface: m,
		PPTol:   m.PPTol(),
	}

	r.region = r.fenceRegion()
	if o.depressions {
		if err := r.loadPonds(); err != nil {
			return false, err
		}
	}

	r.flags = edgeflag.New(m.NumEdges())
	if r.region != nil && r.region.Rule() == clip.Inside || m.HasVoids() {
		mask, lo, hi, ok := exclusionMask(m, r.region)
		if !ok {
			r.log.Debug("contour: every edge excluded")
			return false, nil
		}
		r.mask = mask
		r.meshMin, r.meshMax = max(r.meshMin, lo), min(r.meshMax, hi)
		r.zMin, r.zMax = max(r.zMin, lo), min(r.zMax, hi)
	}
	return true, nil
}

// fenceRegion builds the clip region of the requested fence. Unusable
// fences are logged and ignored.
func (r *request) fenceRegion() *clip.Region {
	f := r.o.fence
	if !f.active() {
		return nil
	}
	region, err := f.region()
	if err != nil {
		r.log.Warn("contour: fence disabled", "error", errors.Join(ErrClipConstruction, err))
		return nil
	}
	if region.Rule() == clip.Inside && region.Covers(r.m.Bounds()) {
		r.log.Debug("contour: fence covers mesh")
		return nil
	}
	return region
}

func (r *request) loadPonds() error {
	if err := r.checkStop(); err != nil {
		return err
	}
	var (
		reg *pond.Register
		err error
	)
	if r.o.finderSet {
		reg, err = r.o.finder.Find(r.ctx, r.m)
	} else {
		reg, err = r.cachedPonds()
	}
	if err != nil {
		if r.ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrUserCancelled, err)
		}
		return fmt.Errorf("contour: find depressions: %w", err)
	}
	r.ponds = reg
	r.log.Debug("contour: depressions loaded", "ponds", reg.Len(), "cached_meshes", r.g.ponds.Len())
	return nil
}

// cachedPonds returns the register of the mesh from the generator cache,
// building it once for all concurrent requests on that mesh. Waiting stops
// when the request context is done. A build abandoned because the request
// that started it was cancelled is retried once.
func (r *request) cachedPonds() (*pond.Register, error) {
	key := meshKey{r.m.ID(), r.m.LastModified()}
	for retried := false; ; retried = true {
		if reg, ok := r.g.ponds.Get(key); ok {
			r.o.metrics.observePondLookup(true)
			return reg, nil
		}
		r.o.metrics.observePondLookup(false)

		ctx, m, finder := r.ctx, r.m, r.o.finder
		ch := r.g.builds.DoChan(key.String(), func() (any, error) {
			reg, err := finder.Find(ctx, m)
			if err != nil {
				return nil, err
			}
			r.g.ponds.Set(key, reg)
			return reg, nil
		})
		select {
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(*pond.Register), nil
			}
			abandoned := errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded)
			if !abandoned || retried || r.ctx.Err() != nil {
				return nil, res.Err
			}
		}
	}
}

// checkStop polls the context and the handler.
func (r *request) checkStop() error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUserCancelled, err)
	}
	if err := r.h.HandleFeature(&Feature{Kind: KindCheckStop}); err != nil {
		return fmt.Errorf("%w: %w", ErrUserCancelled, err)
	}
	return nil
}

// resetFlags clears the edge flags for the next value, keeping the
// excluded edges flagged.
func (r *request) resetFlags() {
	if r.mask != nil {
		r.flags.CopyFrom(r.mask)
	} else {
		r.flags.Reset()
	}
}

// deliver is the trace sink. It removes duplicate points, tags the
// depression, smooths, clips and hands the result to the handler.
func (r *request) deliver(value float64, tag trace.Tag, pts []buffer.Point) error {
	pts = buffer.RemoveDuplicates(pts)
	if len(pts) < 2 {
		return nil
	}
	f := Feature{
		Kind:      KindContour,
		Value:     value,
		Direction: directionOf(tag),
	}
	if r.ponds != nil {
		f.DepressionID, f.InDepression = r.ponds.Classify(pts)
	}
	if len(pts) > 2 {
		pts = r.smoother.Smooth(pts)
	}
	if r.region == nil {
		return r.emit(&f, pts)
	}
	res, pieces := r.region.Clip(pts)
	switch res {
	case clip.Whole:
		return r.emit(&f, pts)
	case clip.Pieces:
		for _, piece := range pieces {
			if len(piece) < 2 {
				continue
			}
			if err := r.emit(&f, piece); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *request) emit(f *Feature, pts []Point) error {
	f.Points = pts
	if err := r.h.HandleFeature(f); err != nil {
		return fmt.Errorf("%w: %w", ErrUserCancelled, err)
	}
	r.stats.polylines++
	r.stats.points += len(pts)
	r.o.metrics.observePolyline(len(pts))
	return nil
}

func directionOf(tag trace.Tag) Direction {
	if tag == trace.HighOnRight {
		return Descending
	}
	return Ascending
}

// end records the outcome of the request.
func (r *request) end(err error) {
	elapsed := time.Since(r.start)
	r.o.metrics.observeRequest(err, elapsed)
	endSpan(r.span, r.stats, err)
	if err != nil {
		r.log.Info("contour: request failed", "error", err, "elapsed", elapsed)
		return
	}
	r.log.Info("contour: request done",
		"values", r.stats.values,
		"polylines", r.stats.polylines,
		"points", r.stats.points,
		"elapsed", elapsed,
	)
}
