package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/game"
)

var _ game.Presenter = (*TextureSink)(nil)

// TextureSink uploads the CPU rasterizer's buffer to a texture and draws it
// over the window, stretched to the logical surface size.
type TextureSink struct {
	tex    rl.Texture2D
	texW   int
	texH   int
	pixels []color.RGBA
	loaded bool
}

// NewTextureSink creates a presenter. The texture is created on first use.
func NewTextureSink() *TextureSink {
	return &TextureSink{}
}

// Present implements game.Presenter.
func (t *TextureSink) Present(img *image.RGBA, s game.Surface) error {
	b := img.Bounds()
	if !t.loaded || b.Dx() != t.texW || b.Dy() != t.texH {
		t.reload(b.Dx(), b.Dy())
	}

	// The buffer is premultiplied RGBA in row order, the layout UpdateTexture expects.
	for i := range t.pixels {
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		t.pixels[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	rl.UpdateTexture(t.tex, t.pixels)

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(t.texW), Height: float32(t.texH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: float32(s.Width), Height: float32(s.Height)}

	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	rl.DrawTexturePro(t.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
	return nil
}

func (t *TextureSink) reload(w, h int) {
	t.Unload()

	img := rl.GenImageColor(w, h, rl.Blank)
	t.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(t.tex, rl.FilterBilinear)

	t.texW, t.texH = w, h
	t.pixels = make([]color.RGBA, w*h)
	t.loaded = true
}

// Unload frees the texture.
func (t *TextureSink) Unload() {
	if !t.loaded {
		return
	}
	rl.UnloadTexture(t.tex)
	t.loaded = false
}
