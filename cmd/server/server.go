// server renders an escape-time image on a local worker pool and serves
// it over HTTP: a progress page drawing tiles live over a websocket, plus
// PNG endpoints for the full image and a thumbnail.
package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strconv"
	"strings"

	"github.com/marben/escapetime"
	"github.com/marben/escapetime/render"
)

var (
	port     = flag.Int("port", 8080, "http port")
	mode     = flag.String("mode", "mandelbrot", "julia or mandelbrot")
	cFlag    = flag.String("c", "0,-1", "additive constant for julia mode, as re,im")
	preset   = flag.String("preset", "", "named preset, e.g. seahorse; see cmd/escapetime -list")
	res      = flag.Int("res", 1024, "samples per axis")
	iters    = flag.Int("iter", escapetime.DefaultMaxIter, "iteration cap")
	cmap     = flag.String("cmap", "viridis", "colour map name")
	workers  = flag.Int("workers", runtime.NumCPU(), "render worker goroutines")
	tileSize = flag.Int("tile", 64, "tile side length in pixels")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	params, err := buildParams()
	if err != nil {
		return err
	}

	renderer, err := render.New(*cmap)
	if err != nil {
		return err
	}

	scheduler := newTileScheduler(params, renderer, *tileSize)
	for i := 0; i < *workers; i++ {
		go scheduler.render()
	}
	log.Printf("rendering %s set at %dx%d on %d workers", params.Mode, *res, *res, *workers)

	return webServer(scheduler, *port).ListenAndServe()
}

func buildParams() (escapetime.Params, error) {
	if *res < 1 {
		return escapetime.Params{}, fmt.Errorf("-res %d: %w", *res, escapetime.ErrInvalidParameter)
	}
	p := escapetime.Params{
		Centre:     escapetime.FullSet.Centre,
		Extent:     escapetime.FullSet.Extent,
		Resolution: *res,
		MaxIter:    *iters,
	}

	switch *mode {
	case "julia":
		p.Mode = escapetime.ModeJulia
		c, err := parseComplex(*cFlag)
		if err != nil {
			return p, fmt.Errorf("-c: %w", err)
		}
		p.C = c
		p.Centre = 0
		p.Extent = 4.0
		if *preset != "" {
			pc, ok := escapetime.JuliaConstants[*preset]
			if !ok {
				return p, fmt.Errorf("unknown julia preset %q", *preset)
			}
			p.C = pc
		}
	case "mandelbrot":
		p.Mode = escapetime.ModeMandelbrot
		if *preset != "" {
			v, ok := escapetime.MandelbrotViews[*preset]
			if !ok {
				return p, fmt.Errorf("unknown mandelbrot preset %q", *preset)
			}
			p.Centre = v.Centre
			p.Extent = v.Extent
		}
	default:
		return p, fmt.Errorf("unknown mode %q (want julia or mandelbrot)", *mode)
	}
	return p, nil
}

func parseComplex(s string) (complex128, error) {
	re, im, found := strings.Cut(s, ",")
	r, err := strconv.ParseFloat(strings.TrimSpace(re), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if !found {
		return complex(r, 0), nil
	}
	i, err := strconv.ParseFloat(strings.TrimSpace(im), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return complex(r, i), nil
}
