// Package buffer accumulates the weighted points of one contour polyline.
package buffer

import (
	"errors"
	"slices"
)

// ErrCapacity is returned when appending would exceed the buffer limit.
var ErrCapacity = errors.New("buffer: point capacity exceeded")

// growChunk is the number of points added each time the buffer grows.
const growChunk = 1024

// Buffer is an ordered sequence of contour points. Capacity is retained
// across Reset so a buffer can be reused for every polyline of a request.
type Buffer struct {
	points []Point
	limit  int
}

// New returns a buffer holding at most limit points. A non-positive limit
// means unbounded.
func New(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Append adds a point.
func (b *Buffer) Append(p Point) error {
	if b.limit > 0 && len(b.points) >= b.limit {
		return ErrCapacity
	}
	if len(b.points) == cap(b.points) {
		b.points = slices.Grow(b.points, growChunk)
	}
	b.points = append(b.points, p)
	return nil
}

// Len returns the number of points.
func (b *Buffer) Len() int { return len(b.points) }

// Points returns the buffered points. The slice is only valid until the
// next Append or Reset.
func (b *Buffer) Points() []Point { return b.points }

// Reset empties the buffer and keeps its storage.
func (b *Buffer) Reset() { b.points = b.points[:0] }

// RemoveDuplicates compacts consecutive points with identical coordinates
// in place. A run keeps its first point with the highest weight of the run.
func RemoveDuplicates(pts []Point) []Point {
	out := pts[:0]
	for _, p := range pts {
		if k := len(out); k > 0 && out[k-1].SameXYZ(p) {
			out[k-1].W = max(out[k-1].W, p.W)
			continue
		}
		out = append(out, p)
	}
	return out
}
