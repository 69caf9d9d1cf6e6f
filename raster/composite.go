package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/pthm-cable/metaballs/field"
)

// Buffers hold premultiplied alpha, so source-over is
// dst = src*a + dst*(1-a) on every channel including alpha.

// Fade composites opaque black at the given alpha over the whole buffer:
// colour channels shrink by (1-alpha) and coverage grows toward 1.
// This is the trail effect; the buffer is never hard-cleared.
func Fade(img *image.RGBA, alpha float64) {
	if !(alpha > 0) {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	keep := 1 - alpha
	add := alpha * 255
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = to8(float64(pix[i]) * keep)
		pix[i+1] = to8(float64(pix[i+1]) * keep)
		pix[i+2] = to8(float64(pix[i+2]) * keep)
		pix[i+3] = to8(add + float64(pix[i+3])*keep)
	}
}

// blendBlock composites colour c at alpha a over every pixel of rect.
func blendBlock(img *image.RGBA, rect image.Rectangle, c field.Color, a float64) {
	keep := 1 - a
	sr, sg, sb, sa := c.R*a*255, c.G*a*255, c.B*a*255, a*255
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := img.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := img.Pix[i : i+4 : i+4]
			p[0] = to8(sr + float64(p[0])*keep)
			p[1] = to8(sg + float64(p[1])*keep)
			p[2] = to8(sb + float64(p[2])*keep)
			p[3] = to8(sa + float64(p[3])*keep)
			i += 4
		}
	}
}

// fillRect is the rectangle-fill variant of blendBlock.
func fillRect(img *image.RGBA, rect image.Rectangle, c field.Color, a float64) {
	src := image.NewUniform(Premultiplied(c, a))
	draw.Draw(img, rect, src, image.Point{}, draw.Over)
}

// Premultiplied converts a colour and alpha to an 8-bit premultiplied RGBA value.
func Premultiplied(c field.Color, a float64) color.RGBA {
	return color.RGBA{
		R: to8(c.R * a * 255),
		G: to8(c.G * a * 255),
		B: to8(c.B * a * 255),
		A: to8(a * 255),
	}
}

func to8(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
