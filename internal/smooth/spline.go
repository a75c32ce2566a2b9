package smooth

import (
	"errors"
	"math"
)

// ErrDegenerate is returned by Solver.Prepare for knot sequences that
// cannot carry a spline: too few knots or a zero-length segment.
var ErrDegenerate = errors.New("smooth: degenerate spline knots")

// pivotFloor replaces an exactly zero pivot.
const pivotFloor = 1e-8

// Solver fits a cubic smoothing spline through values given at increasing
// knots. Each value has a weight rho: zero forces the curve through the
// value, larger weights favour a smoother curve.
//
// The second derivatives m of the spline solve
//
//	(R + Qᵀ·diag(rho)·Q)·m = Qᵀ·y
//
// where R is the tridiagonal segment-length matrix and Q the second divided
// difference operator. The fitted values are a = y - diag(rho)·Q·m. The
// matrix depends only on the knots and weights, so Prepare factors it once
// and Fit can be called for each coordinate.
//
// Open curves use natural end conditions (m = 0 at both ends). Closed
// curves, whose last knot value repeats the first, use a cyclic matrix.
//
// A Solver is not safe for concurrent use.
type Solver struct {
	knots    []float64
	h        []float64
	rho      []float64
	periodic bool
	n        int // unknowns

	// Banded LU of the open matrix, or of the leading (n-2)x(n-2) block of
	// the cyclic one. band[i][k] holds column i+k-2.
	band [][5]float64

	// Cyclic coupling: u holds the two trailing columns of the leading
	// rows, v the leading columns of the two trailing rows, y = P⁻¹·u and
	// schur the 2x2 complement.
	u, v, y [][2]float64
	schur   [2][2]float64

	// Small cyclic systems are solved densely.
	dense [][]float64

	m []float64 // second derivatives, one per knot
	a []float64 // fitted values, one per knot
}

// NewSolver returns an empty Solver.
func NewSolver() *Solver {
	return &Solver{}
}

// Prepare assembles and factors the system for knots and rho. On an open
// curve the end weights are treated as zero.
func (s *Solver) Prepare(knots, rho []float64, periodic bool) error {
	nk := len(knots)
	if len(rho) != nk || nk < 3 || (periodic && nk < 4) {
		return ErrDegenerate
	}
	s.knots = append(s.knots[:0], knots...)
	s.rho = append(s.rho[:0], rho...)
	s.h = s.h[:0]
	for i := 0; i+1 < nk; i++ {
		h := knots[i+1] - knots[i]
		if !(h > 0) || math.IsInf(h, 0) {
			return ErrDegenerate
		}
		s.h = append(s.h, h)
	}
	s.periodic = periodic
	s.m = grow(s.m, nk)
	s.a = grow(s.a, nk)

	if !periodic {
		s.rho[0], s.rho[nk-1] = 0, 0
		s.n = nk - 2
		s.factorOpen()
		return nil
	}
	s.rho[nk-1] = s.rho[0]
	s.n = nk - 1
	if s.n < 5 {
		s.factorDense()
		return nil
	}
	s.factorCyclic()
	return nil
}

// Fit solves for values at the prepared knots. It can be called repeatedly
// after one Prepare.
func (s *Solver) Fit(values []float64) error {
	nk := len(s.knots)
	if nk == 0 || len(values) != nk {
		return ErrDegenerate
	}
	g := make([]float64, s.n)
	switch {
	case !s.periodic:
		for r := range s.n {
			g[r] = s.rhs(values, r+1)
		}
		s.solveBand(g)
		s.m[0], s.m[nk-1] = 0, 0
		copy(s.m[1:], g)
	case s.dense != nil:
		for r := range s.n {
			g[r] = s.rhs(values, r)
		}
		solveDense(s.dense, g)
		copy(s.m, g)
		s.m[nk-1] = s.m[0]
	default:
		for r := range s.n {
			g[r] = s.rhs(values, r)
		}
		s.solveCyclic(g)
		copy(s.m, g)
		s.m[nk-1] = s.m[0]
	}

	for i := range nk {
		s.a[i] = values[i] - s.rho[i]*s.qm(i)
	}
	if s.periodic {
		s.a[nk-1] = s.a[0]
	}
	return nil
}

// Evaluate returns the spline on segment seg at fraction t of its length.
func (s *Solver) Evaluate(seg int, t float64) float64 {
	h := s.h[seg]
	return s.a[seg]*(1-t) + s.a[seg+1]*t -
		h*h/6*t*(1-t)*((2-t)*s.m[seg]+(1+t)*s.m[seg+1])
}

// Release drops the scratch buffers.
func (s *Solver) Release() {
	*s = Solver{}
}

// seg returns the length of segment i, wrapping on closed curves.
func (s *Solver) seg(i int) float64 {
	if s.periodic {
		n := len(s.h)
		return s.h[((i%n)+n)%n]
	}
	return s.h[i]
}

// weight returns rho at knot i, wrapping on closed curves.
func (s *Solver) weight(i int) float64 {
	if s.periodic {
		n := len(s.h)
		return s.rho[((i%n)+n)%n]
	}
	return s.rho[i]
}

func (s *Solver) value(values []float64, i int) float64 {
	if s.periodic {
		n := len(s.h)
		return values[((i%n)+n)%n]
	}
	return values[i]
}

// diag, off1 and off2 are the matrix entries (i,i), (i,i+1) and (i,i+2).
func (s *Solver) diag(i int) float64 {
	h0, h1 := s.seg(i-1), s.seg(i)
	k := 1/h0 + 1/h1
	return (h0+h1)/3 + s.weight(i-1)/(h0*h0) + k*k*s.weight(i) + s.weight(i+1)/(h1*h1)
}

func (s *Solver) off1(i int) float64 {
	h0, h1, h2 := s.seg(i-1), s.seg(i), s.seg(i+1)
	return h1/6 - ((1/h0+1/h1)*s.weight(i)+(1/h1+1/h2)*s.weight(i+1))/h1
}

func (s *Solver) off2(i int) float64 {
	return s.weight(i+1) / (s.seg(i) * s.seg(i+1))
}

// rhs is row i of Qᵀ·y.
func (s *Solver) rhs(values []float64, i int) float64 {
	return (s.value(values, i+1)-s.value(values, i))/s.seg(i) -
		(s.value(values, i)-s.value(values, i-1))/s.seg(i-1)
}

// qm is row i of Q·m.
func (s *Solver) qm(i int) float64 {
	nk := len(s.knots)
	if !s.periodic {
		switch i {
		case 0:
			return (s.m[1] - s.m[0]) / s.h[0]
		case nk - 1:
			return -(s.m[nk-1] - s.m[nk-2]) / s.h[nk-2]
		}
		return (s.m[i+1]-s.m[i])/s.h[i] - (s.m[i]-s.m[i-1])/s.h[i-1]
	}
	n := len(s.h)
	at := func(j int) float64 { return s.m[((j%n)+n)%n] }
	return (at(i+1)-at(i))/s.seg(i) - (at(i)-at(i-1))/s.seg(i-1)
}

// entry returns matrix entry (r, c) of the system in unknown numbering,
// for |r-c| <= 2 without wrap.
func (s *Solver) entry(r, c int) float64 {
	off := 0
	if !s.periodic {
		off = 1
	}
	i, j := r+off, c+off
	switch j - i {
	case 0:
		return s.diag(i)
	case 1:
		return s.off1(i)
	case -1:
		return s.off1(j)
	case 2:
		return s.off2(i)
	case -2:
		return s.off2(j)
	}
	return 0
}

func (s *Solver) factorOpen() {
	s.dense = nil
	s.band = s.fillBand(s.n)
	factorBand(s.band)
}

func (s *Solver) fillBand(n int) [][5]float64 {
	band := s.band[:0]
	for r := range n {
		var row [5]float64
		for c := max(0, r-2); c <= min(n-1, r+2); c++ {
			row[c-r+2] = s.entry(r, c)
		}
		band = append(band, row)
	}
	return band
}

// cyclicEntry accumulates every term coupling unknowns r and c, with
// indices taken modulo n.
func (s *Solver) cyclicEntry(r, c int) float64 {
	n := s.n
	d := ((c-r)%n + n) % n
	var v float64
	if d == 0 {
		v += s.diag(r)
	}
	if d == 1%n {
		v += s.off1(r)
	}
	if d == (n-1)%n {
		v += s.off1(r - 1)
	}
	if d == 2%n {
		v += s.off2(r)
	}
	if d == (n-2)%n {
		v += s.off2(r - 2)
	}
	return v
}

func (s *Solver) factorDense() {
	n := s.n
	s.band = nil
	s.dense = make([][]float64, n)
	for r := range n {
		s.dense[r] = make([]float64, n)
		for c := range n {
			s.dense[r][c] = s.cyclicEntry(r, c)
		}
	}
}

// factorCyclic factors the leading block and the Schur complement of the
// two trailing unknowns.
func (s *Solver) factorCyclic() {
	n := s.n
	p := n - 2
	s.dense = nil
	s.band = s.fillBand(p)
	factorBand(s.band)

	s.u = growPairs(s.u, p)
	s.v = growPairs(s.v, p)
	s.y = growPairs(s.y, p)
	col := make([]float64, p)
	for k := range 2 {
		for r := range p {
			s.u[r][k] = s.cyclicEntry(r, p+k)
			s.v[r][k] = s.cyclicEntry(p+k, r)
			col[r] = s.u[r][k]
		}
		solveBand(s.band, col)
		for r := range p {
			s.y[r][k] = col[r]
		}
	}
	for i := range 2 {
		for k := range 2 {
			sum := s.cyclicEntry(p+i, p+k)
			for r := range p {
				sum -= s.v[r][i] * s.y[r][k]
			}
			s.schur[i][k] = sum
		}
	}
}

func (s *Solver) solveBand(g []float64) { solveBand(s.band, g) }

func (s *Solver) solveCyclic(g []float64) {
	p := s.n - 2
	x := g[:p]
	solveBand(s.band, x)
	b0, b1 := g[p], g[p+1]
	for r := range p {
		b0 -= s.v[r][0] * x[r]
		b1 -= s.v[r][1] * x[r]
	}
	det := s.schur[0][0]*s.schur[1][1] - s.schur[0][1]*s.schur[1][0]
	if det == 0 {
		det = pivotFloor
	}
	z0 := (b0*s.schur[1][1] - b1*s.schur[0][1]) / det
	z1 := (s.schur[0][0]*b1 - s.schur[1][0]*b0) / det
	for r := range p {
		x[r] -= s.y[r][0]*z0 + s.y[r][1]*z1
	}
	g[p], g[p+1] = z0, z1
}

// factorBand performs an in-place LU factorisation without pivoting of a
// pentadiagonal matrix. The matrix is symmetric positive definite.
func factorBand(band [][5]float64) {
	n := len(band)
	for k := range n {
		if band[k][2] == 0 {
			band[k][2] = pivotFloor
		}
		for i := k + 1; i <= min(k+2, n-1); i++ {
			l := band[i][k-i+2] / band[k][2]
			band[i][k-i+2] = l
			for j := k + 1; j <= min(k+2, n-1); j++ {
				band[i][j-i+2] -= l * band[k][j-k+2]
			}
		}
	}
}

func solveBand(band [][5]float64, b []float64) {
	n := len(band)
	for i := range n {
		for k := max(0, i-2); k < i; k++ {
			b[i] -= band[i][k-i+2] * b[k]
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j <= min(i+2, n-1); j++ {
			b[i] -= band[i][j-i+2] * b[j]
		}
		b[i] /= band[i][2]
	}
}

// solveDense solves a small system by Gaussian elimination with partial
// pivoting. a is overwritten only in a copy.
func solveDense(a [][]float64, b []float64) {
	n := len(a)
	m := make([][]float64, n)
	for i := range a {
		m[i] = append([]float64(nil), a[i]...)
	}
	for k := range n {
		piv := k
		for i := k + 1; i < n; i++ {
			if math.Abs(m[i][k]) > math.Abs(m[piv][k]) {
				piv = i
			}
		}
		m[k], m[piv] = m[piv], m[k]
		b[k], b[piv] = b[piv], b[k]
		if m[k][k] == 0 {
			m[k][k] = pivotFloor
		}
		for i := k + 1; i < n; i++ {
			l := m[i][k] / m[k][k]
			for j := k; j < n; j++ {
				m[i][j] -= l * m[k][j]
			}
			b[i] -= l * b[k]
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			b[i] -= m[i][j] * b[j]
		}
		b[i] /= m[i][i]
	}
}

func grow(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func growPairs(s [][2]float64, n int) [][2]float64 {
	if cap(s) < n {
		return make([][2]float64, n)
	}
	return s[:n]
}
