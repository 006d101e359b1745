package render

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// ErrUnknownColorMap is returned when a colour-map name is not registered.
var ErrUnknownColorMap = errors.New("unknown colour map")

// Stop is a colour at a position in a colour map, offset in [0, 1].
type Stop struct {
	Offset float64
	Color  color.RGBA
}

// ColorMap maps a normalized value in [0, 1] to a colour by linear
// interpolation between sorted colour stops. Values outside [0, 1] are
// clamped to the edge colours.
type ColorMap struct {
	name  string
	stops []Stop
}

// NewColorMap builds a colour map from at least two stops. Stops are
// sorted by offset; the input slice is not modified.
func NewColorMap(name string, stops []Stop) (*ColorMap, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("colour map %q needs at least two stops", name)
	}
	sorted := make([]Stop, len(stops))
	copy(sorted, stops)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return &ColorMap{name: name, stops: sorted}, nil
}

// Name returns the registered name of the colour map.
func (m *ColorMap) Name() string { return m.name }

// At returns the colour for a normalized value t.
func (m *ColorMap) At(t float64) color.RGBA {
	t = clamp01(t)

	stops := m.stops
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		if t > stops[i].Offset {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		span := hi.Offset - lo.Offset
		if span <= 0 {
			return hi.Color
		}
		return lerpRGBA(lo.Color, hi.Color, (t-lo.Offset)/span)
	}
	return last.Color
}

// Reversed returns a copy of the colour map running in the opposite
// direction, named with the matplotlib-style "_r" suffix.
func (m *ColorMap) Reversed() *ColorMap {
	stops := make([]Stop, len(m.stops))
	for i, s := range m.stops {
		stops[len(stops)-1-i] = Stop{Offset: 1 - s.Offset, Color: s.Color}
	}
	return &ColorMap{name: m.name + "_r", stops: stops}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: lerp8(a.A, b.A, t),
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// Built-in maps approximate the common matplotlib ramps with a handful of
// anchor stops each.
var builtins = map[string]*ColorMap{}

func register(name string, stops ...Stop) {
	m, err := NewColorMap(name, stops)
	if err != nil {
		panic(err)
	}
	builtins[name] = m
}

func init() {
	register("viridis",
		Stop{0.00, color.RGBA{68, 1, 84, 255}},
		Stop{0.25, color.RGBA{59, 82, 139, 255}},
		Stop{0.50, color.RGBA{33, 145, 140, 255}},
		Stop{0.75, color.RGBA{94, 201, 98, 255}},
		Stop{1.00, color.RGBA{253, 231, 37, 255}},
	)
	register("magma",
		Stop{0.00, color.RGBA{0, 0, 4, 255}},
		Stop{0.25, color.RGBA{81, 18, 124, 255}},
		Stop{0.50, color.RGBA{183, 55, 121, 255}},
		Stop{0.75, color.RGBA{252, 137, 97, 255}},
		Stop{1.00, color.RGBA{252, 253, 191, 255}},
	)
	register("inferno",
		Stop{0.00, color.RGBA{0, 0, 4, 255}},
		Stop{0.25, color.RGBA{87, 16, 110, 255}},
		Stop{0.50, color.RGBA{188, 55, 84, 255}},
		Stop{0.75, color.RGBA{249, 142, 9, 255}},
		Stop{1.00, color.RGBA{252, 255, 164, 255}},
	)
	register("plasma",
		Stop{0.00, color.RGBA{13, 8, 135, 255}},
		Stop{0.25, color.RGBA{126, 3, 168, 255}},
		Stop{0.50, color.RGBA{204, 71, 120, 255}},
		Stop{0.75, color.RGBA{248, 149, 64, 255}},
		Stop{1.00, color.RGBA{240, 249, 33, 255}},
	)
	register("gray",
		Stop{0.00, color.RGBA{0, 0, 0, 255}},
		Stop{1.00, color.RGBA{255, 255, 255, 255}},
	)
}

// Lookup resolves a colour-map name against the built-in registry. A
// trailing "_r" selects the reversed ramp, matching matplotlib naming.
func Lookup(name string) (*ColorMap, error) {
	if m, ok := builtins[name]; ok {
		return m, nil
	}
	if base, ok := strings.CutSuffix(name, "_r"); ok {
		if m, found := builtins[base]; found {
			return m.Reversed(), nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownColorMap)
}

// Names lists the registered base colour maps, sorted. Each also accepts
// an "_r" suffix.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
