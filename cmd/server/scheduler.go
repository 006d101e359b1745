package main

import (
	"context"
	"image"
	"image/draw"
	"log"
	"sync"

	"github.com/marben/escapetime"
)

// tileScheduler splits the output raster into tiles and hands them to
// worker goroutines. Finished tiles are composed into the full image and
// broadcast to websocket subscribers as they arrive.
type tileScheduler struct {
	params   escapetime.Params
	renderer escapetime.TileRenderer
	img      *image.RGBA
	size     int

	ctx       context.Context
	ctxCancel context.CancelFunc

	totalPixels    int
	finishedPixels int
	err            error

	unstarted   map[image.Rectangle]struct{}
	inProcess   map[image.Rectangle]struct{}
	subscribers map[*subscriber]struct{}
	m           sync.Mutex
}

// subscriber is one tile listener. dirty marks that a frame was dropped
// because the channel was full; the next delivery is then a full snapshot
// instead of a single tile, so no hole stays behind.
type subscriber struct {
	ch    chan *image.RGBA
	quit  chan struct{}
	dirty bool
}

func newTileScheduler(params escapetime.Params, renderer escapetime.TileRenderer, tileSize int) *tileScheduler {
	size := params.Resolution
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	allTilesSlice := splitRectNoClip(img.Bounds(), tileSize, tileSize)
	allTiles := make(map[image.Rectangle]struct{}, len(allTilesSlice))
	for _, t := range allTilesSlice {
		allTiles[t] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &tileScheduler{
		params:      params,
		renderer:    renderer,
		img:         img,
		size:        size,
		unstarted:   allTiles,
		inProcess:   make(map[image.Rectangle]struct{}),
		subscribers: make(map[*subscriber]struct{}),
		totalPixels: size * size,
		ctx:         ctx,
		ctxCancel:   cancel,
	}
}

func (ts *tileScheduler) popTile() (tile image.Rectangle, found bool) {
	ts.m.Lock()
	defer ts.m.Unlock()

	if len(ts.unstarted) > 0 {
		for tile = range ts.unstarted {
			break
		}
		delete(ts.unstarted, tile)
		ts.inProcess[tile] = struct{}{}
		return tile, true
	}
	return image.Rectangle{}, false
}

// snapshotLocked copies the image as composed so far. Caller holds ts.m.
func (ts *tileScheduler) snapshotLocked() *image.RGBA {
	cp := image.NewRGBA(ts.img.Bounds())
	copy(cp.Pix, ts.img.Pix)
	return cp
}

// Image returns a copy of the image as rendered so far.
func (ts *tileScheduler) Image() *image.RGBA {
	ts.m.Lock()
	defer ts.m.Unlock()
	return ts.snapshotLocked()
}

// WaitImage blocks until every tile is rendered, then returns the full
// image. If any tile failed to render, the first error is returned
// instead.
func (ts *tileScheduler) WaitImage(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-ts.ctx.Done():
		ts.m.Lock()
		err := ts.err
		ts.m.Unlock()
		if err != nil {
			return nil, err
		}
		return ts.Image(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once every tile has been rendered or failed.
func (ts *tileScheduler) Done() <-chan struct{} {
	return ts.ctx.Done()
}

func (ts *tileScheduler) finished() float32 {
	ts.m.Lock()
	defer ts.m.Unlock()
	return float32(ts.finishedPixels) / float32(ts.totalPixels)
}

// Subscribe registers a tile listener. The first frame delivered is the
// image as rendered so far, so late subscribers catch up immediately.
// Snapshot and registration happen under one lock, so no tile can finish
// between the two and go missing. The returned cancel func must be
// called to release the channel.
func (ts *tileScheduler) Subscribe() (<-chan *image.RGBA, func()) {
	sub := &subscriber{
		ch:   make(chan *image.RGBA, 64),
		quit: make(chan struct{}),
	}

	ts.m.Lock()
	sub.ch <- ts.snapshotLocked() // empty buffered channel, never blocks
	ts.subscribers[sub] = struct{}{}
	ts.m.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(sub.quit)
			ts.m.Lock()
			delete(ts.subscribers, sub)
			ts.m.Unlock()
		})
	}
	return sub.ch, cancel
}

// broadcastLocked offers a frame to every subscriber. Slow subscribers
// drop frames rather than stalling the workers; they are marked dirty and
// get a full snapshot instead of a tile once their channel has room
// again. Caller holds ts.m.
func (ts *tileScheduler) broadcastLocked(tileImg *image.RGBA) {
	for sub := range ts.subscribers {
		frame := tileImg
		if sub.dirty {
			frame = ts.snapshotLocked()
		}
		select {
		case sub.ch <- frame:
			sub.dirty = false
		default:
			sub.dirty = true
		}
	}
}

// catchUpLocked collects the subscribers that still owe a snapshot when
// rendering ends. The caller delivers snap to each of them outside the
// lock. Caller holds ts.m.
func (ts *tileScheduler) catchUpLocked() (subs []*subscriber, snap *image.RGBA) {
	for sub := range ts.subscribers {
		if sub.dirty {
			sub.dirty = false
			subs = append(subs, sub)
		}
	}
	if len(subs) > 0 {
		snap = ts.snapshotLocked()
	}
	return subs, snap
}

// deliverSnapshot sends the final catch-up frame to each subscriber,
// blocking per subscriber until there is room or the subscription is
// cancelled.
func deliverSnapshot(subs []*subscriber, snap *image.RGBA) {
	for _, sub := range subs {
		go func(sub *subscriber) {
			select {
			case sub.ch <- snap:
			case <-sub.quit:
			}
		}(sub)
	}
}

func (ts *tileScheduler) tileFinished(tileImg *image.RGBA) {
	rect := tileImg.Bounds()

	ts.m.Lock()
	draw.Draw(ts.img, rect, tileImg, rect.Min, draw.Src)

	if _, found := ts.inProcess[rect]; found {
		ts.finishedPixels += rect.Dx() * rect.Dy()
	}
	delete(ts.inProcess, rect)
	done := len(ts.unstarted) == 0 && len(ts.inProcess) == 0

	ts.broadcastLocked(tileImg)

	var catchUp []*subscriber
	var snap *image.RGBA
	if done {
		catchUp, snap = ts.catchUpLocked()
	}
	ts.m.Unlock()

	deliverSnapshot(catchUp, snap)
	if done {
		ts.ctxCancel()
	}
}

// tileFailed takes a tile out of the in-process set so the done condition
// can still fire, and records the first error for WaitImage to surface.
func (ts *tileScheduler) tileFailed(tile image.Rectangle, err error) {
	ts.m.Lock()
	delete(ts.inProcess, tile)
	if ts.err == nil {
		ts.err = err
	}
	done := len(ts.unstarted) == 0 && len(ts.inProcess) == 0

	var catchUp []*subscriber
	var snap *image.RGBA
	if done {
		catchUp, snap = ts.catchUpLocked()
	}
	ts.m.Unlock()

	deliverSnapshot(catchUp, snap)
	if done {
		ts.ctxCancel()
	}
}

// render pulls tiles until none are left. Run it from as many goroutines
// as there should be workers. A failed tile is recorded and skipped; the
// remaining tiles still render.
func (ts *tileScheduler) render() {
	for {
		tile, found := ts.popTile()
		if !found {
			return
		}
		tileImg, err := ts.renderer.RenderTile(ts.params, tile, ts.size, ts.size)
		if err != nil {
			log.Printf("render of tile %s failed: %v", tile, err)
			ts.tileFailed(tile, err)
			continue
		}
		ts.tileFinished(tileImg)
		log.Printf("finished: %.3f", ts.finished())
	}
}

// splitRectNoClip splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRectNoClip(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := tileH
		if oy+th > h {
			th = h - oy
		}

		for ox := 0; ox < w; ox += tileW {
			tw := tileW
			if ox+tw > w {
				tw = w - ox
			}

			tile := image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			)
			tiles = append(tiles, tile)
		}
	}

	return tiles
}
