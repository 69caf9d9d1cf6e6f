// Package raster evaluates the metaball field on the CPU into an RGBA buffer.
package raster

import (
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/field"
)

var (
	// ErrZeroSurface is returned when rendering into a surface with no area.
	ErrZeroSurface = errors.New("zero-area surface")
	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy = errors.New("unknown raster strategy")
)

// Strategy selects how sampled blocks reach the buffer.
type Strategy uint8

const (
	// StrategyBuffer writes block pixels straight into the RGBA buffer.
	StrategyBuffer Strategy = iota
	// StrategyRects fills one uniform rectangle per visible block.
	StrategyRects
)

func (s Strategy) String() string {
	switch s {
	case StrategyBuffer:
		return "buffer"
	case StrategyRects:
		return "rects"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy parses "buffer" or "rects". An empty name selects buffer.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "buffer":
		return StrategyBuffer, nil
	case "rects":
		return StrategyRects, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Options configures a Rasterizer.
type Options struct {
	Law      field.Law
	Strategy Strategy
	Workers  int // concurrent row bands; <= 0 uses GOMAXPROCS
}

// Params are the per-frame tunables.
type Params struct {
	Resolution float64 // sample stride in buffer pixels, clamped to >= 1
	Threshold  float64
	Glow       float64
	TrailAlpha float64 // opacity of the black fade applied before sampling
	Time       float64 // seconds, drives the pulse
	Pulse      bool
}

// Step returns the integer sample stride for a resolution value.
func Step(resolution float64) int {
	if !(resolution >= 1) {
		return 1
	}
	return int(math.Round(resolution))
}

// source is a ball prepared for sampling in logical coordinates.
type source struct {
	x, y   float64
	radius float64
	color  field.Color
}

// Rasterizer owns the output buffer. It is not safe for concurrent use; the
// parallelism is internal to Render.
type Rasterizer struct {
	law      field.Law
	strategy Strategy
	workers  int

	img     *image.RGBA
	width   int // logical
	height  int
	quality float64

	sources []source
}

// New creates a rasterizer with no surface. Call Resize before rendering.
func New(opts Options) *Rasterizer {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Rasterizer{
		law:      opts.Law,
		strategy: opts.Strategy,
		workers:  workers,
		quality:  1,
	}
}

// BufferSize returns the pixel size of the buffer for a logical surface.
func BufferSize(width, height int, quality float64) (int, int) {
	if width <= 0 || height <= 0 || !(quality > 0) {
		return 0, 0
	}
	return int(math.Round(float64(width) * quality)), int(math.Round(float64(height) * quality))
}

// Resize replaces the buffer. The new buffer is built before the old one is
// dropped; a zero-area size leaves the rasterizer not Ready.
func (r *Rasterizer) Resize(width, height int, quality float64) {
	bw, bh := BufferSize(width, height, quality)
	if bw <= 0 || bh <= 0 {
		r.img = nil
		r.width, r.height = 0, 0
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, bw, bh))
	r.img = img
	r.width, r.height = width, height
	r.quality = quality
}

// Ready reports whether there is a buffer to render into.
func (r *Rasterizer) Ready() bool {
	return r.img != nil
}

// Image returns the current buffer (premultiplied RGBA). Nil when not Ready.
func (r *Rasterizer) Image() *image.RGBA {
	return r.img
}

// Quality returns the buffer scale relative to the logical surface.
func (r *Rasterizer) Quality() float64 {
	return r.quality
}

// SetLaw replaces the field law used for sampling.
func (r *Rasterizer) SetLaw(law field.Law) {
	r.law = law
}

// SetStrategy replaces the output strategy.
func (r *Rasterizer) SetStrategy(s Strategy) {
	r.strategy = s
}

// Render fades the buffer toward black by TrailAlpha, then samples the field
// and composites every visible block over it.
func (r *Rasterizer) Render(bs []balls.Ball, p Params) error {
	if r.img == nil {
		return ErrZeroSurface
	}
	Fade(r.img, p.TrailAlpha)
	return r.draw(r.img, bs, p)
}

// Still renders one frame into a fresh transparent buffer, leaving the live
// buffer and its trail untouched.
func (r *Rasterizer) Still(bs []balls.Ball, p Params) (*image.RGBA, error) {
	if r.img == nil {
		return nil, ErrZeroSurface
	}
	img := image.NewRGBA(r.img.Rect)
	if err := r.draw(img, bs, p); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *Rasterizer) draw(img *image.RGBA, bs []balls.Ball, p Params) error {
	r.prepare(bs, p)
	if len(r.sources) == 0 {
		return nil
	}

	step := Step(p.Resolution)
	h := img.Rect.Dy()
	blocks := (h + step - 1) / step
	workers := r.workers
	if workers > blocks {
		workers = blocks
	}
	per := (blocks + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += per * step {
		y1 := min(y0+per*step, h)
		g.Go(func() error {
			r.band(img, y0, y1, step, p)
			return nil
		})
	}
	return g.Wait()
}

func (r *Rasterizer) prepare(bs []balls.Ball, p Params) {
	r.sources = r.sources[:0]
	for _, b := range bs {
		radius := b.Radius
		if p.Pulse {
			radius = field.DisplayRadius(b.Radius, b.Phase, p.Time, r.law.PulseAmount)
		}
		if !(radius > 0) {
			continue
		}
		r.sources = append(r.sources, source{x: b.X, y: b.Y, radius: radius, color: b.Color})
	}
}

// band samples rows [y0, y1). Bands start on block boundaries and never overlap.
func (r *Rasterizer) band(img *image.RGBA, y0, y1, step int, p Params) {
	w := img.Rect.Dx()
	inv := 1 / r.quality
	var acc field.Accumulator

	for py := y0; py < y1; py += step {
		ly := float64(py) * inv
		for px := 0; px < w; px += step {
			lx := float64(px) * inv

			acc.Reset()
			for i := range r.sources {
				s := &r.sources[i]
				dx, dy := lx-s.x, ly-s.y
				acc.Add(s.color, r.law.InfluenceSq(dx*dx+dy*dy, s.radius))
			}
			total := acc.Total()
			if !r.law.Visible(total, p.Threshold) {
				continue
			}
			c, ok := acc.Mix()
			if !ok {
				continue
			}
			a := r.law.Alpha(total, p.Threshold, p.Glow)
			if a <= 0 {
				continue
			}

			block := image.Rect(px, py, min(px+step, w), min(py+step, y1))
			if r.strategy == StrategyRects {
				fillRect(img, block, c, a)
			} else {
				blendBlock(img, block, c, a)
			}
		}
	}
}
