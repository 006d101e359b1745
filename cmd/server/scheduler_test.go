package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/marben/escapetime"
)

// solidRenderer fills every tile with one colour. Keeps scheduler tests
// independent of the actual escape-time computation.
type solidRenderer struct {
	c color.RGBA
}

func (s solidRenderer) RenderTile(_ escapetime.Params, tile image.Rectangle, _, _ int) (*image.RGBA, error) {
	img := image.NewRGBA(tile)
	draw.Draw(img, tile, &image.Uniform{s.c}, image.Point{}, draw.Src)
	return img, nil
}

func TestSplitRectNoClip(t *testing.T) {
	tests := []struct {
		name         string
		rect         image.Rectangle
		tileW, tileH int
		wantTiles    int
	}{
		{"divisible", image.Rect(0, 0, 128, 64), 32, 32, 8},
		{"ragged right edge", image.Rect(0, 0, 100, 64), 32, 32, 8},
		{"ragged both edges", image.Rect(0, 0, 100, 50), 32, 32, 8},
		{"single tile", image.Rect(0, 0, 10, 10), 64, 64, 1},
		{"offset origin", image.Rect(5, 5, 69, 69), 32, 32, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := splitRectNoClip(tt.rect, tt.tileW, tt.tileH)
			if len(tiles) != tt.wantTiles {
				t.Fatalf("got %d tiles, want %d", len(tiles), tt.wantTiles)
			}
			area := 0
			for _, tile := range tiles {
				if !tile.In(tt.rect) {
					t.Fatalf("tile %v outside %v", tile, tt.rect)
				}
				area += tile.Dx() * tile.Dy()
			}
			if want := tt.rect.Dx() * tt.rect.Dy(); area != want {
				t.Fatalf("tiles cover %d pixels, want %d", area, want)
			}
		})
	}
}

func TestSchedulerRendersAll(t *testing.T) {
	params := escapetime.Params{Resolution: 64}
	red := color.RGBA{255, 0, 0, 255}
	ts := newTileScheduler(params, solidRenderer{c: red}, 16)

	for i := 0; i < 3; i++ {
		go ts.render()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	img, err := ts.WaitImage(ctx)
	if err != nil {
		t.Fatalf("WaitImage: %v", err)
	}

	if got := ts.finished(); got != 1 {
		t.Fatalf("finished() = %v, want 1", got)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 64) {
		t.Fatalf("bounds = %v, want 64x64", img.Bounds())
	}
	for _, p := range []image.Point{{0, 0}, {63, 63}, {31, 17}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Fatalf("pixel %v = %v, want %v", p, got, red)
		}
	}
}

func TestSchedulerSubscribeSnapshotFirst(t *testing.T) {
	params := escapetime.Params{Resolution: 32}
	ts := newTileScheduler(params, solidRenderer{c: color.RGBA{A: 255}}, 16)

	tiles, cancel := ts.Subscribe()
	defer cancel()

	// Before any worker runs, the only frame is the (blank) full
	// snapshot.
	select {
	case first := <-tiles:
		if first.Bounds() != image.Rect(0, 0, 32, 32) {
			t.Fatalf("snapshot bounds = %v, want full image", first.Bounds())
		}
	default:
		t.Fatal("no snapshot frame delivered on subscribe")
	}
}

func TestSchedulerPopTileExhausts(t *testing.T) {
	ts := newTileScheduler(escapetime.Params{Resolution: 32}, solidRenderer{}, 16)
	seen := map[image.Rectangle]struct{}{}
	for {
		tile, found := ts.popTile()
		if !found {
			break
		}
		if _, dup := seen[tile]; dup {
			t.Fatalf("tile %v handed out twice", tile)
		}
		seen[tile] = struct{}{}
	}
	if len(seen) != 4 {
		t.Fatalf("popped %d tiles, want 4", len(seen))
	}
}

// composeFrames draws every frame a subscriber received onto a blank
// canvas, the way the browser page does.
func composeFrames(dst *image.RGBA, frames <-chan *image.RGBA, quiet time.Duration) {
	for {
		select {
		case f := <-frames:
			draw.Draw(dst, f.Bounds(), f, f.Bounds().Min, draw.Src)
		case <-time.After(quiet):
			return
		}
	}
}

func TestSchedulerSlowSubscriberHeals(t *testing.T) {
	// 81 tiles plus the snapshot overflow the 64-slot subscriber
	// channel, so frames are dropped while the subscriber stalls. The
	// dropped tiles must be made up for by catch-up snapshots: once the
	// subscriber drains, its composed view has no stale holes.
	params := escapetime.Params{Resolution: 72}
	red := color.RGBA{255, 0, 0, 255}
	ts := newTileScheduler(params, solidRenderer{c: red}, 8)

	frames, cancel := ts.Subscribe()
	defer cancel()

	// Render everything before the subscriber reads a single frame.
	ts.render()

	ctx, ctxCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ctxCancel()
	want, err := ts.WaitImage(ctx)
	if err != nil {
		t.Fatalf("WaitImage: %v", err)
	}

	view := image.NewRGBA(want.Bounds())
	composeFrames(view, frames, 200*time.Millisecond)

	if !bytes.Equal(view.Pix, want.Pix) {
		t.Fatal("subscriber view differs from the rendered image after draining")
	}
}

func TestSubscribeMidRender(t *testing.T) {
	// A subscriber joining mid-render must see every tile exactly once:
	// the ones already composed via the snapshot, the rest via the
	// stream, with no gap in between.
	params := escapetime.Params{Resolution: 72}
	red := color.RGBA{255, 0, 0, 255}
	r := solidRenderer{c: red}
	ts := newTileScheduler(params, r, 8)

	renderNext := func() {
		tile, found := ts.popTile()
		if !found {
			t.Fatal("ran out of tiles early")
		}
		img, err := r.RenderTile(params, tile, 72, 72)
		if err != nil {
			t.Fatalf("RenderTile: %v", err)
		}
		ts.tileFinished(img)
	}

	for i := 0; i < 30; i++ {
		renderNext()
	}
	frames, cancel := ts.Subscribe()
	defer cancel()
	for i := 0; i < 51; i++ { // the remaining tiles
		renderNext()
	}

	want := ts.Image()
	view := image.NewRGBA(want.Bounds())
drain:
	for {
		select {
		case f := <-frames:
			draw.Draw(view, f.Bounds(), f, f.Bounds().Min, draw.Src)
		default:
			break drain
		}
	}

	if !bytes.Equal(view.Pix, want.Pix) {
		t.Fatal("mid-render subscriber view differs from the rendered image")
	}
}

// failingRenderer rejects every tile.
type failingRenderer struct {
	err error
}

func (f failingRenderer) RenderTile(escapetime.Params, image.Rectangle, int, int) (*image.RGBA, error) {
	return nil, f.err
}

func TestSchedulerTileFailure(t *testing.T) {
	// A failing tile must not leave the scheduler waiting forever:
	// WaitImage has to return, surfacing the render error.
	errTile := errors.New("tile failure")
	ts := newTileScheduler(escapetime.Params{Resolution: 32}, failingRenderer{err: errTile}, 16)

	go ts.render()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	img, err := ts.WaitImage(ctx)
	if !errors.Is(err, errTile) {
		t.Fatalf("WaitImage err = %v, want the tile failure", err)
	}
	if img != nil {
		t.Fatalf("img = %v, want nil on error", img.Bounds())
	}
}

func TestTileFrame(t *testing.T) {
	tile := image.NewRGBA(image.Rect(5, 7, 8, 9)) // 3x2 at (5,7)
	c := color.RGBA{1, 2, 3, 4}
	for y := 7; y < 9; y++ {
		for x := 5; x < 8; x++ {
			tile.SetRGBA(x, y, c)
		}
	}

	frame := tileFrame(tile)
	if want := 16 + 3*2*4; len(frame) != want {
		t.Fatalf("frame length = %d, want %d", len(frame), want)
	}
	if got := binary.LittleEndian.Uint32(frame[0:]); got != 5 {
		t.Errorf("x = %d, want 5", got)
	}
	if got := binary.LittleEndian.Uint32(frame[4:]); got != 7 {
		t.Errorf("y = %d, want 7", got)
	}
	if got := binary.LittleEndian.Uint32(frame[8:]); got != 3 {
		t.Errorf("w = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(frame[12:]); got != 2 {
		t.Errorf("h = %d, want 2", got)
	}
	for i := 16; i < len(frame); i += 4 {
		if frame[i] != 1 || frame[i+1] != 2 || frame[i+2] != 3 || frame[i+3] != 4 {
			t.Fatalf("pixel bytes at %d = %v, want {1 2 3 4}", i, frame[i:i+4])
		}
	}
}
