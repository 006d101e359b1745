package escapetime

import (
	"image"
)

// Result bundles the two outputs of one image request: the sample grid
// (the renderer reads its Min/Max as axis bounds) and the escape-count
// matrix derived from it.
type Result struct {
	Params Params
	Grid   *SampleGrid
	Counts *CountMatrix
}

// Renderer turns a computed result into a raster image. Implemented by
// the render subpackage; the core never draws pixels itself.
type Renderer interface {
	Render(res *Result) (*image.RGBA, error)
}

// TileRenderer computes and colours one rectangular tile of the full
// imgW × imgH raster for p. Tiles are independent, so callers may invoke
// RenderTile concurrently from multiple goroutines.
type TileRenderer interface {
	RenderTile(p Params, tile image.Rectangle, imgW, imgH int) (*image.RGBA, error)
}
