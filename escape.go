// Package escapetime computes escape-time fractal data for quadratic maps:
// sample grids over the complex plane and per-point iteration counts for
// the recurrence z = z² + c (Julia and Mandelbrot modes).
//
// Rendering the resulting count matrix to an image is the job of the
// render subpackage; this package produces only the numeric data.
package escapetime

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Defaults for Params fields left zero.
const (
	DefaultMaxIter = 256
	DefaultBound   = 2.0
)

// Mode selects how the quadratic map is paired with the sample grid.
type Mode int

const (
	// ModeJulia holds C fixed and takes z0 from each grid point.
	ModeJulia Mode = iota
	// ModeMandelbrot takes c from each grid point and holds Z0 fixed.
	ModeMandelbrot
)

func (m Mode) String() string {
	switch m {
	case ModeJulia:
		return "julia"
	case ModeMandelbrot:
		return "mandelbrot"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Params describes one image request: the sampled region and the
// quadratic-map configuration.
type Params struct {
	Mode Mode

	// C is the additive constant in Julia mode. Ignored in Mandelbrot
	// mode, where each grid point supplies its own c.
	C complex128

	// Z0 is the fixed starting iterate in Mandelbrot mode, usually 0.
	// Ignored in Julia mode, where each grid point supplies z0.
	Z0 complex128

	Centre     complex128
	Extent     float64
	Resolution int

	// MaxIter caps the iteration count; 0 means DefaultMaxIter.
	MaxIter int
	// Bound is the escape magnitude threshold; 0 means DefaultBound.
	Bound float64
}

func (p Params) withDefaults() Params {
	if p.MaxIter == 0 {
		p.MaxIter = DefaultMaxIter
	}
	if p.Bound == 0 {
		p.Bound = DefaultBound
	}
	return p
}

func (p Params) validate() error {
	if p.MaxIter < 1 {
		return fmt.Errorf("max iterations %d: %w", p.MaxIter, ErrInvalidParameter)
	}
	if !(p.Bound > 0) {
		return fmt.Errorf("escape bound %v: %w", p.Bound, ErrInvalidParameter)
	}
	return nil
}

// EscapeCount iterates z = z² + c from z0 and returns the first n at which
// |z| >= bound, or maxIter if the bound is never reached within maxIter
// steps. The result is always in [0, maxIter]: 0 means z0 already lies
// beyond the bound, maxIter means the orbit is treated as non-escaping.
//
// The comparison is done on squared magnitudes, so no square root is taken
// per iteration.
func EscapeCount(c, z0 complex128, maxIter int, bound float64) int {
	zr, zi := real(z0), imag(z0)
	cr, ci := real(c), imag(c)
	b2 := bound * bound

	for n := 0; n < maxIter; n++ {
		if zr*zr+zi*zi >= b2 {
			return n
		}
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
	}
	return maxIter
}

// Evaluate applies the escape-time loop to every point of g according to p
// and returns the resulting count matrix. Each cell depends only on its own
// grid point, so rows are partitioned across worker goroutines; the output
// is identical regardless of worker count.
func Evaluate(g *SampleGrid, p Params) (*CountMatrix, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := g.Resolution()
	m := newCountMatrix(res, p.MaxIter)

	workers := runtime.NumCPU()
	if workers > res {
		workers = res
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for row := w; row < res; row += workers {
				evaluateRow(g, p, m, row)
			}
		}(w)
	}
	wg.Wait()

	logger().Debug("evaluated grid",
		"mode", p.Mode.String(),
		"resolution", res,
		"max_iter", p.MaxIter,
		"workers", workers,
		"elapsed", time.Since(start))
	return m, nil
}

func evaluateRow(g *SampleGrid, p Params, m *CountMatrix, row int) {
	res := g.Resolution()
	for col := 0; col < res; col++ {
		pt := g.At(row, col)
		var n int
		switch p.Mode {
		case ModeMandelbrot:
			n = EscapeCount(pt, p.Z0, p.MaxIter, p.Bound)
		default:
			n = EscapeCount(p.C, pt, p.MaxIter, p.Bound)
		}
		m.set(row, col, n)
	}
}

// Compute builds the sample grid for p and evaluates it, returning both.
func Compute(p Params) (*Result, error) {
	p = p.withDefaults()
	grid, err := NewGrid(p.Centre, p.Extent, p.Resolution)
	if err != nil {
		return nil, err
	}
	counts, err := Evaluate(grid, p)
	if err != nil {
		return nil, err
	}
	return &Result{Params: p, Grid: grid, Counts: counts}, nil
}
