package contour

import "errors"

// Errors returned by Generate and related calls. Internal causes are joined
// to these so both match errors.Is.
var (
	// ErrInvalidMesh is returned for a nil or structurally invalid mesh.
	ErrInvalidMesh = errors.New("contour: invalid mesh")

	// ErrNotTriangulated is returned when the mesh has no triangles.
	ErrNotTriangulated = errors.New("contour: mesh is not triangulated")

	// ErrAllocation is returned when a polyline exceeds the point limit.
	ErrAllocation = errors.New("contour: point buffer capacity exceeded")

	// ErrInvalidContourRange is returned for an unusable interval or value
	// series.
	ErrInvalidContourRange = errors.New("contour: invalid contour range")

	// ErrTraceInconsistency is returned when the mesh adjacency does not
	// allow a contour walk to continue.
	ErrTraceInconsistency = errors.New("contour: contour trace inconsistency")

	// ErrUserCancelled is returned when the handler or the context stops
	// the request.
	ErrUserCancelled = errors.New("contour: cancelled")

	// ErrClipConstruction reports a fence that cannot be used. Requests
	// carry on without the fence; the error is only logged.
	ErrClipConstruction = errors.New("contour: fence clip construction failed")

	// ErrInvalidConfig is returned for structurally invalid configuration.
	ErrInvalidConfig = errors.New("contour: invalid configuration")
)
