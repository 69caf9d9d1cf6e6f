package game

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/field"
	"github.com/pthm-cable/metaballs/raster"
)

var (
	// ErrZeroSurface is returned by backends asked to draw a surface with no area.
	ErrZeroSurface = raster.ErrZeroSurface
	// ErrGPUUnavailable is returned when switching to a GPU backend that failed to load.
	ErrGPUUnavailable = errors.New("gpu backend unavailable")
	// ErrUnknownBackend is returned by ParseKind.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Kind names a rendering backend.
type Kind uint8

const (
	CPU Kind = iota
	GPU
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind parses "cpu" or "gpu".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpu":
		return CPU, nil
	case "gpu":
		return GPU, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// Surface is the logical output size and the buffer scale applied to it.
type Surface struct {
	Width, Height int
	Quality       float64
}

// Empty reports whether the surface has no drawable area.
func (s Surface) Empty() bool {
	w, h := raster.BufferSize(s.Width, s.Height, s.Quality)
	return w <= 0 || h <= 0
}

// Scene is everything a backend needs to draw one frame.
type Scene struct {
	Surface
	Balls      []balls.Ball
	Law        field.Law
	Resolution float64
	Threshold  float64
	Glow       float64
	TrailAlpha float64
	Time       float64 // seconds since start
	Pulse      bool
}

// RasterParams converts the scene's tunables for the CPU rasterizer.
func (s *Scene) RasterParams() raster.Params {
	return raster.Params{
		Resolution: s.Resolution,
		Threshold:  s.Threshold,
		Glow:       s.Glow,
		TrailAlpha: s.TrailAlpha,
		Time:       s.Time,
		Pulse:      s.Pulse,
	}
}

// Backend draws scenes. Render accumulates into a persistent target (so the
// trail fade works); Present pushes that target to the window; Still draws one
// frame onto a transparent image without touching the persistent target.
type Backend interface {
	Kind() Kind
	Resize(Surface) error
	Render(*Scene) error
	Present() error
	Still(*Scene) (image.Image, error)
	Unload()
}

// Presenter displays the CPU backend's buffer. A nil Presenter makes Present a no-op.
type Presenter interface {
	Present(img *image.RGBA, s Surface) error
	Unload()
}

// cpuBackend renders with the CPU rasterizer.
type cpuBackend struct {
	raster  *raster.Rasterizer
	out     Presenter
	surface Surface
}

func newCPUBackend(r *raster.Rasterizer, out Presenter) *cpuBackend {
	return &cpuBackend{raster: r, out: out}
}

func (b *cpuBackend) Kind() Kind { return CPU }

func (b *cpuBackend) Resize(s Surface) error {
	b.raster.Resize(s.Width, s.Height, s.Quality)
	b.surface = s
	return nil
}

func (b *cpuBackend) Render(s *Scene) error {
	b.raster.SetLaw(s.Law)
	return b.raster.Render(s.Balls, s.RasterParams())
}

func (b *cpuBackend) Present() error {
	if b.out == nil || !b.raster.Ready() {
		return nil
	}
	return b.out.Present(b.raster.Image(), b.surface)
}

func (b *cpuBackend) Still(s *Scene) (image.Image, error) {
	b.raster.SetLaw(s.Law)
	img, err := b.raster.Still(s.Balls, s.RasterParams())
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (b *cpuBackend) Unload() {
	if b.out != nil {
		b.out.Unload()
	}
}
