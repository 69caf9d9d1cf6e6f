package game

import (
	"fmt"
	"log/slog"
)

// Quality bounds for Resize.
const (
	MinQuality = 0.1
	MaxQuality = 2.0
)

// Settings are the runtime tunables a host can change.
type Settings struct {
	Resolution float64 // CPU sample stride in buffer pixels
	Threshold  float64
	Speed      float64 // orbit speed factor
	Glow       float64
	MouseForce float64
}

// Partial is a sparse update to Settings; nil fields are left alone.
type Partial struct {
	Resolution *float64
	Threshold  *float64
	Speed      *float64
	Glow       *float64
	MouseForce *float64
}

func atLeast(v, lo float64) float64 {
	if !(v >= lo) {
		return lo
	}
	return v
}

// clamped pulls out-of-range values back in rather than rejecting them.
func (s Settings) clamped() Settings {
	return Settings{
		Resolution: atLeast(s.Resolution, 1),
		Threshold:  atLeast(s.Threshold, 0),
		Speed:      atLeast(s.Speed, 0),
		Glow:       atLeast(s.Glow, 0),
		MouseForce: atLeast(s.MouseForce, 0),
	}
}

// Settings returns the current tunables.
func (e *Engine) Settings() Settings {
	return e.settings
}

// SetConfig applies a partial settings update.
func (e *Engine) SetConfig(p Partial) {
	s := e.settings
	if p.Resolution != nil {
		s.Resolution = *p.Resolution
	}
	if p.Threshold != nil {
		s.Threshold = *p.Threshold
	}
	if p.Speed != nil {
		s.Speed = *p.Speed
	}
	if p.Glow != nil {
		s.Glow = *p.Glow
	}
	if p.MouseForce != nil {
		s.MouseForce = *p.MouseForce
	}
	e.settings = s.clamped()
}

// Surface returns the current logical surface.
func (e *Engine) Surface() Surface {
	return e.surface
}

// Resize changes the logical surface size and the buffer quality scale
// (clamped to [MinQuality, MaxQuality]). Every backend builds its new target
// before dropping the old one.
func (e *Engine) Resize(width, height int, quality float64) error {
	switch {
	case quality != quality: // NaN
		quality = 1
	case quality < MinQuality:
		quality = MinQuality
	case quality > MaxQuality:
		quality = MaxQuality
	}
	s := Surface{Width: max(width, 0), Height: max(height, 0), Quality: quality}

	if err := e.cpu.Resize(s); err != nil {
		return fmt.Errorf("resizing cpu buffer: %w", err)
	}
	if e.gpu != nil {
		if err := e.gpu.Resize(s); err != nil {
			return fmt.Errorf("resizing gpu target: %w", err)
		}
	}
	e.surface = s
	slog.Debug("surface resized", "width", s.Width, "height", s.Height, "quality", s.Quality)
	return nil
}

// GPUAvailable reports whether a GPU backend loaded successfully.
func (e *Engine) GPUAvailable() bool {
	return e.gpu != nil
}

// Backend returns the active backend kind.
func (e *Engine) Backend() Kind {
	return e.active.Kind()
}

// SetBackend switches rendering backends. Asking for the GPU when it is not
// available returns ErrGPUUnavailable and keeps the CPU backend active.
func (e *Engine) SetBackend(k Kind) error {
	switch k {
	case CPU:
		e.active = e.cpu
	case GPU:
		if e.gpu == nil {
			e.active = e.cpu
			return ErrGPUUnavailable
		}
		e.active = e.gpu
	default:
		return fmt.Errorf("%w: %v", ErrUnknownBackend, k)
	}
	slog.Info("backend selected", "backend", k)
	return nil
}
