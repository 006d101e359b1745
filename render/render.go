// Package render turns escape-count matrices into raster images: a
// colour-map registry, a renderer, and file export helpers.
package render

import (
	"fmt"
	"image"

	"github.com/marben/escapetime"
)

// Renderer colours escape-count data with a fixed colour map.
type Renderer struct {
	cmap *ColorMap
}

var (
	_ escapetime.Renderer     = (*Renderer)(nil)
	_ escapetime.TileRenderer = (*Renderer)(nil)
)

// New creates a renderer using the named colour map.
func New(cmapName string) (*Renderer, error) {
	cmap, err := Lookup(cmapName)
	if err != nil {
		return nil, err
	}
	return &Renderer{cmap: cmap}, nil
}

// ColorMap returns the renderer's colour map.
func (r *Renderer) ColorMap() *ColorMap { return r.cmap }

// Render produces one pixel per grid cell. Counts are normalized by the
// matrix's iteration cap before the colour map is applied. Grid row 0
// holds the lowest imaginary values, so rows are flipped to land at the
// bottom of the image (y grows downward in image.RGBA).
func (r *Renderer) Render(res *escapetime.Result) (*image.RGBA, error) {
	if res == nil || res.Counts == nil {
		return nil, fmt.Errorf("render: nil result")
	}
	n := res.Counts.Resolution()
	img := image.NewRGBA(image.Rect(0, 0, n, n))

	for row := 0; row < n; row++ {
		y := n - 1 - row
		for col := 0; col < n; col++ {
			img.SetRGBA(col, y, r.cmap.At(res.Counts.Normalized(row, col)))
		}
	}
	return img, nil
}

// RenderTile computes and colours the given tile of the full imgW × imgH
// raster for p, evaluating the escape loop per pixel. The returned image
// keeps the tile's global coordinates, so tiles can be drawn straight
// into the full image.
func (r *Renderer) RenderTile(p escapetime.Params, tile image.Rectangle, imgW, imgH int) (*image.RGBA, error) {
	if imgW < 1 || imgH < 1 {
		return nil, fmt.Errorf("render tile: image size %dx%d: %w", imgW, imgH, escapetime.ErrInvalidParameter)
	}
	if !(p.Extent > 0) {
		return nil, fmt.Errorf("render tile: extent %v: %w", p.Extent, escapetime.ErrInvalidParameter)
	}
	maxIter := p.MaxIter
	if maxIter == 0 {
		maxIter = escapetime.DefaultMaxIter
	}
	bound := p.Bound
	if bound == 0 {
		bound = escapetime.DefaultBound
	}

	rmin := real(p.Centre) - p.Extent/2
	imin := imag(p.Centre) - p.Extent/2
	xstep := sampleStep(p.Extent, imgW)
	ystep := sampleStep(p.Extent, imgH)
	// A single-sample axis takes the centre coordinate, matching
	// SampleGrid's degenerate case.
	if imgW == 1 {
		rmin = real(p.Centre)
	}
	if imgH == 1 {
		imin = imag(p.Centre)
	}

	img := image.NewRGBA(tile)
	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		// Pixel row 0 is the top of the image, i.e. the highest
		// imaginary value. Anchoring at imin keeps the arithmetic
		// identical to SampleGrid's, so a full-raster tile matches
		// Render exactly.
		im := imin + float64(imgH-1-py)*ystep

		for px := tile.Min.X; px < tile.Max.X; px++ {
			re := rmin + float64(px)*xstep
			pt := complex(re, im)

			var n int
			switch p.Mode {
			case escapetime.ModeMandelbrot:
				n = escapetime.EscapeCount(pt, p.Z0, maxIter, bound)
			default:
				n = escapetime.EscapeCount(p.C, pt, maxIter, bound)
			}
			img.SetRGBA(px, py, r.cmap.At(float64(n)/float64(maxIter)))
		}
	}
	return img, nil
}

// sampleStep matches the grid convention: endpoints inclusive, so n
// samples span the extent in n-1 steps.
func sampleStep(extent float64, n int) float64 {
	if n < 2 {
		return 0
	}
	return extent / float64(n-1)
}
