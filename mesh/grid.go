package mesh

// NewGrid builds a regular lattice mesh of nx by ny points with the given
// spacing, origin at (0, 0). Each cell is split along the diagonal from its
// lower-left to its upper-right corner. Point (i, j) has index j*nx + i.
func NewGrid(nx, ny int, spacing float64, z func(x, y float64) float64, opts ...Option) (*Mesh, error) {
	if nx < 2 || ny < 2 {
		return nil, ErrTooFewPoints
	}
	points := make([]Point, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			x, y := float64(i)*spacing, float64(j)*spacing
			points = append(points, Point{X: x, Y: y, Z: z(x, y)})
		}
	}
	triangles := make([][3]int, 0, 2*(nx-1)*(ny-1))
	for j := 0; j+1 < ny; j++ {
		for i := 0; i+1 < nx; i++ {
			a := j*nx + i
			b := a + 1
			c := a + nx + 1
			d := a + nx
			triangles = append(triangles, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return New(points, triangles, opts...)
}
