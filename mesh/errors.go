package mesh

import "errors"

// Errors returned by New.
var (
	// ErrTooFewPoints is returned when fewer than three points are given.
	ErrTooFewPoints = errors.New("mesh: at least three points are required")

	// ErrBadPoint is returned for a point with a NaN or infinite coordinate.
	ErrBadPoint = errors.New("mesh: point coordinate is not finite")

	// ErrBadTriangle is returned for a triangle with an out-of-range or
	// repeated vertex index, or zero area.
	ErrBadTriangle = errors.New("mesh: invalid triangle")

	// ErrNonManifold is returned when an edge is shared by more than two
	// triangles or the boundary does not form a single loop.
	ErrNonManifold = errors.New("mesh: triangulation is not a manifold with a single hull")

	// ErrBadFeature is returned when a feature references an unknown point
	// or a pair of consecutive points that is not a mesh edge.
	ErrBadFeature = errors.New("mesh: invalid feature")
)
