// Package renderer draws metaballs with raylib: a fragment-shader backend and
// a texture presenter for the CPU buffer. Everything here needs a window.
package renderer

import (
	"errors"
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/game"
	"github.com/pthm-cable/metaballs/raster"
	"github.com/pthm-cable/metaballs/shader"
)

// ErrShaderUnavailable is returned when the metaballs program fails to build.
var ErrShaderUnavailable = errors.New("metaballs shader unavailable")

var _ game.Backend = (*GPU)(nil)

// GPU renders scenes with one full-surface shader quad per frame into a
// persistent render texture.
type GPU struct {
	shader        rl.Shader
	resolutionLoc int32
	ballCountLoc  int32
	ballsLoc      int32
	colorsLoc     int32
	phasesLoc     int32
	scalarLocs    []int32

	target  rl.RenderTexture2D
	surface game.Surface
	bufW    int32
	bufH    int32
	ready   bool
}

// LoadGPU compiles the shader. A failed compile makes raylib fall back to its
// default program, so a missing ballCount uniform is treated as failure too.
func LoadGPU() (*GPU, error) {
	s := rl.LoadShaderFromMemory(shader.VertexSource, shader.FragmentSource)
	if s.ID == 0 {
		return nil, fmt.Errorf("%w: no program id", ErrShaderUnavailable)
	}

	g := &GPU{shader: s}
	g.ballCountLoc = rl.GetShaderLocation(s, shader.UniformBallCount)
	if g.ballCountLoc < 0 {
		rl.UnloadShader(s)
		return nil, fmt.Errorf("%w: uniform %q not found", ErrShaderUnavailable, shader.UniformBallCount)
	}
	g.resolutionLoc = rl.GetShaderLocation(s, shader.UniformResolution)
	g.ballsLoc = rl.GetShaderLocation(s, shader.UniformBalls)
	g.colorsLoc = rl.GetShaderLocation(s, shader.UniformColors)
	g.phasesLoc = rl.GetShaderLocation(s, shader.UniformPhases)

	g.scalarLocs = make([]int32, len(shader.ScalarNames))
	for i, name := range shader.ScalarNames {
		g.scalarLocs[i] = rl.GetShaderLocation(s, name)
	}
	return g, nil
}

// Kind implements game.Backend.
func (g *GPU) Kind() game.Kind { return game.GPU }

// Resize builds a render texture for the new surface, then releases the old one.
func (g *GPU) Resize(s game.Surface) error {
	if s.Empty() {
		g.unloadTarget()
		g.surface = s
		return nil
	}
	w, h := bufferSize(s)
	if g.ready && w == g.bufW && h == g.bufH {
		g.surface = s
		return nil
	}

	target := rl.LoadRenderTexture(w, h)
	if target.ID == 0 {
		return fmt.Errorf("creating %dx%d render texture", w, h)
	}
	rl.SetTextureFilter(target.Texture, rl.FilterBilinear)
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Blank)
	rl.EndTextureMode()

	g.unloadTarget()
	g.target = target
	g.bufW, g.bufH = w, h
	g.surface = s
	g.ready = true
	return nil
}

func bufferSize(s game.Surface) (int32, int32) {
	w, h := raster.BufferSize(s.Width, s.Height, s.Quality)
	return int32(w), int32(h)
}

// Render fades the render texture by the trail alpha, then draws the field.
func (g *GPU) Render(scene *game.Scene) error {
	if !g.ready {
		return game.ErrZeroSurface
	}
	u := g.pack(scene)

	rl.BeginTextureMode(g.target)
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	rl.DrawRectangle(0, 0, g.bufW, g.bufH, rl.Fade(rl.Black, float32(scene.TrailAlpha)))
	g.drawField(&u)
	rl.EndBlendMode()
	rl.EndTextureMode()
	return nil
}

// Present draws the render texture to the window at the logical size. The
// negative source height undoes the texture's bottom-up row order.
func (g *GPU) Present() error {
	if !g.ready {
		return nil
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(g.bufW), Height: -float32(g.bufH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: float32(g.surface.Width), Height: float32(g.surface.Height)}

	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	rl.DrawTexturePro(g.target.Texture, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
	return nil
}

// Still draws one frame into a fresh transparent texture and reads it back.
func (g *GPU) Still(scene *game.Scene) (image.Image, error) {
	if !g.ready {
		return nil, game.ErrZeroSurface
	}
	u := g.pack(scene)

	target := rl.LoadRenderTexture(g.bufW, g.bufH)
	if target.ID == 0 {
		return nil, fmt.Errorf("creating still render texture")
	}
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Blank)
	rl.BeginBlendMode(rl.BlendAlphaPremultiply)
	g.drawField(&u)
	rl.EndBlendMode()
	rl.EndTextureMode()

	img := rl.LoadImageFromTexture(target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	colors := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(colors)

	// Over transparent black the premultiplied shader output lands unchanged.
	out := image.NewRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))
	for i, c := range colors {
		p := out.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	}
	return out, nil
}

func (g *GPU) pack(scene *game.Scene) shader.Uniforms {
	return shader.Pack(scene.Balls, scene.Law, shader.Params{
		Width:     float64(scene.Width),
		Height:    float64(scene.Height),
		Scale:     scene.Quality,
		Threshold: scene.Threshold,
		Glow:      scene.Glow,
		Time:      scene.Time,
		Pulse:     scene.Pulse,
	})
}

// drawField uploads uniforms and draws the full-surface quad. The caller owns
// the target and blend mode.
func (g *GPU) drawField(u *shader.Uniforms) {
	rl.SetShaderValue(g.shader, g.resolutionLoc, u.Resolution[:], rl.ShaderUniformVec2)
	rl.SetShaderValueV(g.shader, g.ballsLoc, u.Balls[:], rl.ShaderUniformVec3, shader.MaxBalls)
	rl.SetShaderValueV(g.shader, g.colorsLoc, u.Colors[:], rl.ShaderUniformVec3, shader.MaxBalls)
	rl.SetShaderValueV(g.shader, g.phasesLoc, u.Phases[:], rl.ShaderUniformFloat, shader.MaxBalls)
	for i, s := range u.Scalars {
		rl.SetShaderValue(g.shader, g.scalarLocs[i], []float32{s.Value}, rl.ShaderUniformFloat)
	}

	rl.BeginShaderMode(g.shader)
	rl.DrawRectangle(0, 0, g.bufW, g.bufH, rl.White)
	rl.EndShaderMode()
}

func (g *GPU) unloadTarget() {
	if !g.ready {
		return
	}
	rl.UnloadRenderTexture(g.target)
	g.target = rl.RenderTexture2D{}
	g.bufW, g.bufH = 0, 0
	g.ready = false
}

// Unload frees GPU resources.
func (g *GPU) Unload() {
	g.unloadTarget()
	if g.shader.ID != 0 {
		rl.UnloadShader(g.shader)
		g.shader = rl.Shader{}
	}
}
