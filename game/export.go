package game

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// ExportStillFrame renders the current state once onto a transparent
// background and returns it as PNG at the logical surface size. The live
// target and its trail are not touched.
func (e *Engine) ExportStillFrame() ([]byte, error) {
	if e.surface.Empty() {
		return nil, ErrZeroSurface
	}
	scene := e.scene()
	img, err := e.active.Still(&scene)
	if err != nil {
		return nil, fmt.Errorf("rendering still frame: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, toLogical(img, e.surface)); err != nil {
		return nil, fmt.Errorf("encoding still frame: %w", err)
	}
	return buf.Bytes(), nil
}

// toLogical rescales a buffer rendered at quality != 1 back to the logical size.
func toLogical(img image.Image, s Surface) image.Image {
	want := image.Rect(0, 0, s.Width, s.Height)
	if img.Bounds().Size() == want.Size() {
		return img
	}
	dst := image.NewRGBA(want)
	draw.CatmullRom.Scale(dst, want, img, img.Bounds(), draw.Src, nil)
	return dst
}
