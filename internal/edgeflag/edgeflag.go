// Package edgeflag tracks which mesh edges have been consumed by a trace.
package edgeflag

// Set is a bit per undirected edge id.
type Set struct {
	words []uint64
	n     int
}

// New returns an empty set for n edges.
func New(n int) *Set {
	return &Set{words: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of edges the set covers.
func (s *Set) Len() int { return s.n }

// Set marks edge id.
func (s *Set) Set(id int) { s.words[id>>6] |= 1 << (uint(id) & 63) }

// Test reports whether edge id is marked.
func (s *Set) Test(id int) bool { return s.words[id>>6]&(1<<(uint(id)&63)) != 0 }

// Reset unmarks every edge.
func (s *Set) Reset() {
	clear(s.words)
}

// CopyFrom replaces the contents of s with mask. Both sets must cover the
// same number of edges.
func (s *Set) CopyFrom(mask *Set) {
	copy(s.words, mask.words)
}
