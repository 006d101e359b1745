package escapetime

import (
	"fmt"
	"math"
)

// SampleGrid is a square, row-major grid of complex sample points covering
// a region of the complex plane. Row index grows with the imaginary axis,
// column index with the real axis, so row 0 holds the lowest imaginary
// values (the renderer draws it at the bottom of the image).
//
// The grid is read-only after construction.
type SampleGrid struct {
	res    int
	points []complex128
}

// NewGrid builds a resolution × resolution grid covering the closed square
// [centre.real ± extent/2] × [centre.imag ± extent/2]. Endpoints are
// inclusive: the minimum and maximum sampled coordinate on each axis equal
// the square's bounds exactly, with uniform spacing extent/(resolution-1).
//
// A resolution of 1 degenerates to the single point at centre.
func NewGrid(centre complex128, extent float64, resolution int) (*SampleGrid, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("resolution %d: %w", resolution, ErrInvalidParameter)
	}
	if !(extent > 0) { // also catches NaN
		return nil, fmt.Errorf("extent %v: %w", extent, ErrInvalidParameter)
	}
	if math.IsInf(extent, 0) || isDegenerate(centre) {
		return nil, fmt.Errorf("non-finite bounds: %w", ErrInvalidParameter)
	}

	g := &SampleGrid{
		res:    resolution,
		points: make([]complex128, resolution*resolution),
	}

	if resolution == 1 {
		g.points[0] = centre
		return g, nil
	}

	rmin := real(centre) - extent/2
	imin := imag(centre) - extent/2
	step := extent / float64(resolution-1)

	for row := 0; row < resolution; row++ {
		im := imin + float64(row)*step
		base := row * resolution
		for col := 0; col < resolution; col++ {
			g.points[base+col] = complex(rmin+float64(col)*step, im)
		}
	}
	return g, nil
}

// Resolution returns the number of samples per axis.
func (g *SampleGrid) Resolution() int { return g.res }

// At returns the sample point at the given row and column.
func (g *SampleGrid) At(row, col int) complex128 {
	return g.points[row*g.res+col]
}

// Min returns the corner with the smallest real and imaginary parts.
func (g *SampleGrid) Min() complex128 { return g.points[0] }

// Max returns the corner with the largest real and imaginary parts.
func (g *SampleGrid) Max() complex128 { return g.points[len(g.points)-1] }

func isDegenerate(z complex128) bool {
	return math.IsNaN(real(z)) || math.IsNaN(imag(z)) ||
		math.IsInf(real(z), 0) || math.IsInf(imag(z), 0)
}
