package contour

import "github.com/gogpu/contour/internal/buffer"

// Kind identifies what a Feature carries.
type Kind uint8

const (
	// KindContour is a finished contour polyline.
	KindContour Kind = iota
	// KindCheckStop is a periodic poll. Returning an error from the handler
	// cancels the request.
	KindCheckStop
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindCheckStop {
		return "check-stop"
	}
	return "contour"
}

// Direction orients a contour against the slope.
type Direction uint8

const (
	// Ascending contours have higher ground on their left.
	Ascending Direction = iota
	// Descending contours have higher ground on their right.
	Descending
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// Point is a contour point: its location, elevation and weight.
type Point = buffer.Point

// Weight tags how smoothing treated a point.
type Weight = buffer.Weight

// Point weights.
const (
	WeightFree      = buffer.Free
	WeightExact     = buffer.Exact
	WeightBreakline = buffer.Breakline
)

// Feature is delivered to the Handler once per finished polyline and once
// per check-stop poll. Points is only valid during the call.
type Feature struct {
	Kind         Kind
	Value        float64
	Direction    Direction
	DepressionID int64
	InDepression bool
	Points       []Point
}

// Handler receives features. A non-nil error aborts the request with
// ErrUserCancelled.
type Handler interface {
	HandleFeature(f *Feature) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(f *Feature) error

// HandleFeature calls fn(f).
func (fn HandlerFunc) HandleFeature(f *Feature) error { return fn(f) }
