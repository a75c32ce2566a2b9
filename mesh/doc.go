// Package mesh provides the triangulated irregular network consumed by the
// contour generator.
//
// # Construction
//
// A Mesh is built once from points and triangles and is immutable after
// that:
//
//	m, err := mesh.New(points, triangles,
//		mesh.WithFeatures(mesh.Feature{Kind: mesh.Breakline, Points: []int{4, 9, 13}}),
//	)
//
// Triangles may be given in either winding. The builder rejects
// out-of-range indices, zero-area triangles, edges shared by more than two
// triangles and boundaries that do not form a single loop.
//
// # Topology
//
// Every point owns a circular list of neighbours sorted anticlockwise.
// NextAnticlockwise and NextClockwise rotate one neighbour around a point.
// The hull is an anticlockwise cycle: the interior lies on the left of
// p -> HullNext(p). Undirected edges carry dense ids so callers can keep
// per-edge state in flat arrays.
//
// # Features
//
// Break lines, voids, holes and islands are point sequences whose
// consecutive pairs are mesh edges. A triangle is void when the innermost
// polygon containing it is a void or hole. An edge is a void line when all
// of its triangles are void.
//
// # Thread Safety
//
// Mesh is safe for concurrent readers. The point locator used by Drape is
// built lazily on first use under a sync.Once.
package mesh
