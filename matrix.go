package escapetime

// CountMatrix holds one escape count per sample-grid point, using the same
// row convention as SampleGrid (row 0 = lowest imaginary values). It is
// produced once by Evaluate and never mutated afterwards.
type CountMatrix struct {
	res     int
	maxIter int
	counts  []int
}

func newCountMatrix(res, maxIter int) *CountMatrix {
	return &CountMatrix{
		res:     res,
		maxIter: maxIter,
		counts:  make([]int, res*res),
	}
}

// Resolution returns the number of cells per axis.
func (m *CountMatrix) Resolution() int { return m.res }

// MaxIter returns the iteration cap the counts were produced with. Every
// count is in [0, MaxIter]; a count equal to MaxIter marks a non-escaping
// point.
func (m *CountMatrix) MaxIter() int { return m.maxIter }

// At returns the escape count at the given row and column.
func (m *CountMatrix) At(row, col int) int {
	return m.counts[row*m.res+col]
}

// Normalized returns the count at (row, col) divided by MaxIter, in [0, 1].
// This is the value the renderer feeds into a colour map.
func (m *CountMatrix) Normalized(row, col int) float64 {
	return float64(m.At(row, col)) / float64(m.maxIter)
}

func (m *CountMatrix) set(row, col, n int) {
	m.counts[row*m.res+col] = n
}
