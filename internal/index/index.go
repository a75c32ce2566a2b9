// Package index builds the sorted table of mesh edges that can start a
// contour within a value range.
package index

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/contour/internal/edgeflag"
	"github.com/gogpu/contour/mesh"
)

// growChunk is the number of entries added each time the table grows.
const growChunk = 32768

// Entry is a startable edge with its elevation span. P1 < P2.
type Entry struct {
	P1, P2     int
	MinZ, MaxZ float64
}

// Index is sorted ascending by (MinZ, MaxZ). It is read-only once built.
type Index struct {
	entries []Entry
}

// Build collects every internal, non-flat edge not set in mask whose span
// contains at least one value of the series first + k*interval. mask may
// be nil. A non-positive interval admits every internal, non-flat edge.
func Build(m *mesh.Mesh, first, interval float64, mask *edgeflag.Set) *Index {
	ix := &Index{}
	for id := 0; id < m.NumEdges(); id++ {
		if mask != nil && mask.Test(id) {
			continue
		}
		p1, p2 := m.Edge(id)
		if m.IsHullLine(p1, p2) {
			continue
		}
		z1, z2 := m.Z(p1), m.Z(p2)
		if z1 == z2 {
			continue
		}
		zMin, zMax := min(z1, z2), max(z1, z2)
		if interval > 0 {
			h := first + math.Ceil((zMin-first)/interval)*interval
			if h > zMax {
				continue
			}
		}
		if len(ix.entries) == cap(ix.entries) {
			ix.entries = slices.Grow(ix.entries, growChunk)
		}
		ix.entries = append(ix.entries, Entry{P1: p1, P2: p2, MinZ: zMin, MaxZ: zMax})
	}
	ix.entries = slices.Clip(ix.entries)
	slices.SortStableFunc(ix.entries, func(a, b Entry) int {
		if c := cmp.Compare(a.MinZ, b.MinZ); c != 0 {
			return c
		}
		return cmp.Compare(a.MaxZ, b.MaxZ)
	})
	return ix
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Entry returns entry i.
func (ix *Index) Entry(i int) Entry { return ix.entries[i] }

// Locate scans forward from offset while value >= MinZ and returns the
// first entry whose span contains value. It returns false when the index
// is exhausted for value. Callers contouring ascending values may pass the
// previous result as the next offset.
func (ix *Index) Locate(value float64, offset int) (int, bool) {
	for i := max(offset, 0); i < ix.Len(); i++ {
		e := ix.entries[i]
		if value < e.MinZ {
			break
		}
		if value <= e.MaxZ {
			return i, true
		}
	}
	return offset, false
}
