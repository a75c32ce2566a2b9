// Package contour extracts elevation contours from a triangulated
// irregular network.
//
// # Overview
//
// A [Generator] walks a [mesh.Mesh] once per contour value and hands every
// finished polyline to a [Handler]. Polylines are optionally smoothed,
// tagged with the closed depression they lie in and clipped to a fence
// before delivery.
//
// # Quick Start
//
//	m, err := mesh.New(points, triangles)
//	if err != nil {
//	    return err
//	}
//	g := contour.New(contour.WithSmoothing(contour.SmoothSpline, 2.5, 5))
//	err = g.Generate(ctx, m, contour.HandlerFunc(func(f *contour.Feature) error {
//	    if f.Kind == contour.KindContour {
//	        fmt.Println(f.Value, len(f.Points))
//	    }
//	    return nil
//	}), contour.WithInterval(0.5, 0))
//
// # Contour Values
//
// A regular series is registration + k*interval over the mesh elevation
// range, limited by [WithRange]. [WithValues] contours explicit values
// instead. Values are rounded to eight decimals.
//
// # Orientation
//
// Contours keep higher ground on one side. [Ascending] polylines have it
// on their left, [Descending] ones on their right.
//
// # Cancellation
//
// The handler receives a [KindCheckStop] feature before the contour index
// is built, before the first value and every 256 values. Returning an
// error from any handler call, or cancelling the context, stops the
// request with [ErrUserCancelled]. Polylines already delivered are not
// withdrawn.
//
// # Observability
//
// Diagnostics go to the logger set with [SetLogger]. [WithMetrics] records
// Prometheus metrics and every request runs in an OpenTelemetry span.
package contour
