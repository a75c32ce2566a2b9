package clip

// zone is the Cohen-Sutherland region code of a point relative to the
// block rectangle. Zero means inside or on the border.
type zone uint8

const (
	zoneWest zone = 1 << iota
	zoneEast
	zoneSouth
	zoneNorth
)

// EdgeClipper cuts contour segments to a block fence.
type EdgeClipper struct {
	clip Rect
}

// NewEdgeClipper returns a clipper for the rectangle.
func NewEdgeClipper(clip Rect) *EdgeClipper {
	return &EdgeClipper{clip: clip}
}

// Clip returns the rectangle segments are cut to.
func (ec *EdgeClipper) Clip() Rect {
	return ec.clip
}

func (ec *EdgeClipper) zoneOf(p Point) zone {
	var z zone
	switch {
	case p.X < ec.clip.X:
		z |= zoneWest
	case p.X > ec.clip.Right():
		z |= zoneEast
	}
	switch {
	case p.Y < ec.clip.Y:
		z |= zoneSouth
	case p.Y > ec.clip.Top():
		z |= zoneNorth
	}
	return z
}

// toBorder moves p along p-q onto the rectangle side named by z.
func (ec *EdgeClipper) toBorder(p, q Point, z zone) Point {
	r := ec.clip
	switch {
	case z&zoneSouth != 0:
		return Point{X: p.X + (r.Y-p.Y)/(q.Y-p.Y)*(q.X-p.X), Y: r.Y}
	case z&zoneNorth != 0:
		return Point{X: p.X + (r.Top()-p.Y)/(q.Y-p.Y)*(q.X-p.X), Y: r.Top()}
	case z&zoneEast != 0:
		return Point{X: r.Right(), Y: p.Y + (r.Right()-p.X)/(q.X-p.X)*(q.Y-p.Y)}
	default:
		return Point{X: r.X, Y: p.Y + (r.X-p.X)/(q.X-p.X)*(q.Y-p.Y)}
	}
}

// ClipLine cuts a-b to the rectangle, or reports false when the segment
// misses it. Endpoints already inside come back unchanged.
func (ec *EdgeClipper) ClipLine(a, b Point) (LineSeg, bool) {
	za, zb := ec.zoneOf(a), ec.zoneOf(b)
	for za|zb != 0 {
		if za&zb != 0 {
			return LineSeg{}, false
		}
		if za != 0 {
			a = ec.toBorder(a, b, za)
			za = ec.zoneOf(a)
		} else {
			b = ec.toBorder(b, a, zb)
			zb = ec.zoneOf(b)
		}
	}
	return LineSeg{P0: a, P1: b}, true
}
