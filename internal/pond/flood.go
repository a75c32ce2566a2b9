package pond

import (
	"cmp"
	"container/heap"
	"context"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/gogpu/contour/mesh"
)

// Finder builds the pond register of a mesh.
type Finder interface {
	Find(ctx context.Context, m *mesh.Mesh) (*Register, error)
}

// FinderFunc adapts a function to Finder.
type FinderFunc func(ctx context.Context, m *mesh.Mesh) (*Register, error)

// Find calls f.
func (f FinderFunc) Find(ctx context.Context, m *mesh.Mesh) (*Register, error) {
	return f(ctx, m)
}

// checkEvery is the number of minima flooded between context checks.
const checkEvery = 64

// FloodFinder finds ponds by flooding each interior local minimum in
// elevation order until the water escapes over a saddle or reaches the
// hull. The pond outline is the boundary of the triangles touching the
// flooded points. Minima already under an earlier pond are skipped.
type FloodFinder struct {
	// MinDepth is the spill-to-bottom depth a pond must exceed.
	MinDepth float64
}

// Find implements Finder.
func (f FloodFinder) Find(ctx context.Context, m *mesh.Mesh) (*Register, error) {
	minima := localMinima(m)
	claimed := make([]bool, m.NumPoints())
	var ponds []Pond
	for i, p := range minima {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if claimed[p] {
			continue
		}
		flooded, spill, ok := flood(m, p)
		if !ok || spill-m.Z(p) <= f.MinDepth {
			continue
		}
		for _, q := range flooded {
			claimed[q] = true
		}
		ring := outline(m, flooded)
		if len(ring) < 4 {
			continue
		}
		ponds = append(ponds, Pond{
			ID:     int64(len(ponds) + 1),
			Bottom: p,
			Spill:  spill,
			Ring:   ring,
		})
	}
	return NewRegister(ponds), nil
}

// localMinima returns the interior points without a lower neighbour,
// lowest first.
func localMinima(m *mesh.Mesh) []int {
	var out []int
	for p := range m.NumPoints() {
		adj := m.Neighbors(p)
		if len(adj) == 0 || m.OnHull(p) {
			continue
		}
		z := m.Z(p)
		lowest := true
		for _, q := range adj {
			if m.Z(q) < z {
				lowest = false
				break
			}
		}
		if lowest {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b int) int {
		if c := cmp.Compare(m.Z(a), m.Z(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return out
}

type item struct {
	p int
	z float64
}

type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].z != q[j].z {
		return q[i].z < q[j].z
	}
	return q[i].p < q[j].p
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any) { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// flood raises water from start in elevation order. It stops when the
// lowest frontier point is below the water level, which means the water
// went over a saddle, or when it reaches the hull. It returns the points
// below the spill level.
func flood(m *mesh.Mesh, start int) ([]int, float64, bool) {
	level := m.Z(start)
	visited := map[int]bool{start: true}
	q := &queue{{start, level}}
	var popped []int
	spilled := false
	for q.Len() > 0 {
		it := heap.Pop(q).(item)
		if it.z < level {
			spilled = true
			break
		}
		level = it.z
		if m.OnHull(it.p) {
			spilled = true
			break
		}
		popped = append(popped, it.p)
		for _, n := range m.Neighbors(it.p) {
			if !visited[n] {
				visited[n] = true
				heap.Push(q, item{n, m.Z(n)})
			}
		}
	}
	if !spilled {
		return nil, 0, false
	}
	flooded := popped[:0]
	for _, p := range popped {
		if m.Z(p) < level {
			flooded = append(flooded, p)
		}
	}
	return flooded, level, len(flooded) > 0
}

// outline returns the outer boundary of the triangles touching pts as a
// closed anticlockwise ring.
func outline(m *mesh.Mesh, pts []int) orb.Ring {
	edges := make(map[[2]int]bool)
	for _, p := range pts {
		adj := m.Neighbors(p)
		for i, q := range adj {
			r := adj[(i+1)%len(adj)]
			if m.IsTriangle(p, q, r) {
				edges[[2]int{p, q}] = true
				edges[[2]int{q, r}] = true
				edges[[2]int{r, p}] = true
			}
		}
	}

	next := make(map[int][]int)
	var starts [][2]int
	for e := range edges {
		if !edges[[2]int{e[1], e[0]}] {
			next[e[0]] = append(next[e[0]], e[1])
			starts = append(starts, e)
		}
	}
	slices.SortFunc(starts, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	for _, list := range next {
		slices.Sort(list)
	}

	used := make(map[[2]int]bool)
	var best orb.Ring
	bestArea := 0.0
	for _, s := range starts {
		if used[s] {
			continue
		}
		ring := orb.Ring{toOrb(m.Point(s[0]))}
		from, to := s[0], s[1]
		for {
			used[[2]int{from, to}] = true
			ring = append(ring, toOrb(m.Point(to)))
			if to == s[0] {
				break
			}
			nx, ok := unusedNext(next[to], to, used)
			if !ok {
				break
			}
			from, to = to, nx
		}
		if len(ring) < 4 || ring[0] != ring[len(ring)-1] {
			continue
		}
		if a := math.Abs(planar.Area(ring)); a > bestArea {
			best, bestArea = ring, a
		}
	}
	return best
}

func unusedNext(list []int, from int, used map[[2]int]bool) (int, bool) {
	for _, n := range list {
		if !used[[2]int{from, n}] {
			return n, true
		}
	}
	return 0, false
}

func toOrb(p mesh.Point) orb.Point { return orb.Point{p.X, p.Y} }
