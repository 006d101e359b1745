// escapetime is a batch CLI: it computes a Julia or Mandelbrot escape-time
// image and saves it as PNG, BMP or TIFF.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marben/escapetime"
	"github.com/marben/escapetime/render"
)

var (
	mode    = flag.String("mode", "julia", "julia or mandelbrot")
	cFlag   = flag.String("c", "0,-1", "additive constant for julia mode, as re,im")
	centre  = flag.String("centre", "0,0", "centre of the sampled square, as re,im")
	extent  = flag.Float64("extent", 1.0, "side length of the sampled square")
	res     = flag.Int("res", 512, "samples per axis")
	iters   = flag.Int("iter", escapetime.DefaultMaxIter, "iteration cap")
	bound   = flag.Float64("bound", escapetime.DefaultBound, "escape magnitude bound")
	cmap    = flag.String("cmap", "viridis_r", "colour map name")
	preset  = flag.String("preset", "", "named preset (overrides -c or -centre/-extent)")
	output  = flag.String("o", "escapetime.png", "output file; extension picks the format")
	list    = flag.Bool("list", false, "list colour maps and presets, then exit")
	verbose = flag.Bool("v", false, "log evaluation details")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	if *list {
		printChoices()
		return nil
	}
	if *verbose {
		escapetime.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	params, err := buildParams()
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := escapetime.Compute(params)
	if err != nil {
		return err
	}

	renderer, err := render.New(*cmap)
	if err != nil {
		return err
	}
	img, err := renderer.Render(result)
	if err != nil {
		return err
	}

	if err := render.SaveFile(*output, img); err != nil {
		return err
	}
	log.Printf("%s set, %dx%d, saved to %q in %s",
		params.Mode, *res, *res, *output, time.Since(start))
	return nil
}

func buildParams() (escapetime.Params, error) {
	p := escapetime.Params{
		Extent:     *extent,
		Resolution: *res,
		MaxIter:    *iters,
		Bound:      *bound,
	}

	switch *mode {
	case "julia":
		p.Mode = escapetime.ModeJulia
	case "mandelbrot":
		p.Mode = escapetime.ModeMandelbrot
	default:
		return p, fmt.Errorf("unknown mode %q (want julia or mandelbrot)", *mode)
	}

	c, err := parseComplex(*cFlag)
	if err != nil {
		return p, fmt.Errorf("-c: %w", err)
	}
	p.C = c

	ctr, err := parseComplex(*centre)
	if err != nil {
		return p, fmt.Errorf("-centre: %w", err)
	}
	p.Centre = ctr

	if *preset != "" {
		if err := applyPreset(&p, *preset); err != nil {
			return p, err
		}
	}
	return p, nil
}

// applyPreset resolves a named preset: a Julia constant in julia mode, a
// landmark view in mandelbrot mode.
func applyPreset(p *escapetime.Params, name string) error {
	switch p.Mode {
	case escapetime.ModeJulia:
		c, ok := escapetime.JuliaConstants[name]
		if !ok {
			return fmt.Errorf("unknown julia preset %q", name)
		}
		p.C = c
	case escapetime.ModeMandelbrot:
		v, ok := escapetime.MandelbrotViews[name]
		if !ok {
			return fmt.Errorf("unknown mandelbrot preset %q", name)
		}
		p.Centre = v.Centre
		p.Extent = v.Extent
	}
	return nil
}

// parseComplex reads "re,im" ("0,-1") or a bare real ("0.5").
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

func printChoices() {
	fmt.Println("colour maps (append _r to reverse):")
	for _, name := range render.Names() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("julia presets:")
	for name := range escapetime.JuliaConstants {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("mandelbrot presets:")
	for name := range escapetime.MandelbrotViews {
		fmt.Printf("  %s\n", name)
	}
}
