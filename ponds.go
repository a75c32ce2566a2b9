package contour

import "github.com/gogpu/contour/internal/pond"

// Pond is a closed depression: a ring with the elevation at which water
// would spill out of it.
type Pond = pond.Pond

// PondRegister is the read-only set of depressions of a mesh.
type PondRegister = pond.Register

// PondFinder builds the depression register of a mesh.
type PondFinder = pond.Finder

// PondFinderFunc adapts a function to PondFinder.
type PondFinderFunc = pond.FinderFunc

// FloodFinder is the default PondFinder.
type FloodFinder = pond.FloodFinder

// NewPondRegister builds a register from known ponds.
func NewPondRegister(ponds []Pond) *PondRegister {
	return pond.NewRegister(ponds)
}
