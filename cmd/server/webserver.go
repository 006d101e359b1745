package main

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/marben/escapetime/render"
)

//go:embed static/index.html
var indexPage []byte

// webServer serves the progress page, the websocket tile stream and the
// rendered image endpoints.
func webServer(ts *tileScheduler, port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexPage)
	})
	mux.HandleFunc("/ws", websocketHandler(ts))
	mux.HandleFunc("/image.png", imageHandler(ts))
	mux.HandleFunc("/thumb.png", thumbHandler(ts))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost:%d", port)
	return srv
}

// websocketHandler streams tile frames to the browser. The first frame is
// always a full snapshot of the image so far, then tiles follow as the
// workers finish them.
func websocketHandler(ts *tileScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		tiles, cancel := ts.Subscribe()
		defer cancel()

		// We never expect client messages; CloseRead gives us a ctx
		// that ends when the client goes away.
		ctx := c.CloseRead(r.Context())

		for {
			select {
			case tile := <-tiles:
				if err := c.Write(ctx, websocket.MessageBinary, tileFrame(tile)); err != nil {
					log.Printf("ws write: %v", err)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

// imageHandler waits for the full render and returns it as PNG.
func imageHandler(ts *tileScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := ts.WaitImage(r.Context())
		if err != nil {
			status := http.StatusInternalServerError
			if r.Context().Err() != nil {
				status = http.StatusRequestTimeout
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := render.Encode(w, img, "png"); err != nil {
			log.Printf("image.png: %v", err)
		}
	}
}

// thumbHandler returns a small preview of the image as rendered so far,
// without waiting for completion.
func thumbHandler(ts *tileScheduler) http.HandlerFunc {
	const thumbSize = 256
	return func(w http.ResponseWriter, r *http.Request) {
		thumb := render.Downscale(ts.Image(), thumbSize, thumbSize)
		w.Header().Set("Content-Type", "image/png")
		if err := render.Encode(w, thumb, "png"); err != nil {
			log.Printf("thumb.png: %v", err)
		}
	}
}

// tileFrame packs a tile for the wire: 16-byte header of x, y, w, h as
// little-endian uint32, followed by the tile's RGBA bytes row by row.
func tileFrame(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	frame := make([]byte, 16+w*h*4)
	binary.LittleEndian.PutUint32(frame[0:], uint32(b.Min.X))
	binary.LittleEndian.PutUint32(frame[4:], uint32(b.Min.Y))
	binary.LittleEndian.PutUint32(frame[8:], uint32(w))
	binary.LittleEndian.PutUint32(frame[12:], uint32(h))

	dst := frame[16:]
	for row := 0; row < h; row++ {
		src := img.Pix[row*img.Stride : row*img.Stride+w*4]
		copy(dst[row*w*4:], src)
	}
	return frame
}
