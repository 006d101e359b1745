package main

import (
	"errors"
	"testing"

	"github.com/marben/escapetime"
)

func TestBuildParamsInvalidResolution(t *testing.T) {
	old := *res
	defer func() { *res = old }()

	for _, bad := range []int{0, -16} {
		*res = bad
		if _, err := buildParams(); !errors.Is(err, escapetime.ErrInvalidParameter) {
			t.Errorf("-res %d: err = %v, want ErrInvalidParameter", bad, err)
		}
	}
}

func TestBuildParamsDefaults(t *testing.T) {
	p, err := buildParams()
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.Mode != escapetime.ModeMandelbrot {
		t.Errorf("Mode = %v, want mandelbrot", p.Mode)
	}
	if p.Centre != escapetime.FullSet.Centre || p.Extent != escapetime.FullSet.Extent {
		t.Errorf("view = (%v, %v), want the full-set view", p.Centre, p.Extent)
	}
	if p.Resolution != *res {
		t.Errorf("Resolution = %d, want %d", p.Resolution, *res)
	}
}
