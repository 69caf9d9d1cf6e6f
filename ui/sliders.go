package ui

import (
	"github.com/pthm-cable/metaballs/game"
	"github.com/pthm-cable/metaballs/systems"
)

// Sliders returns the panel's slider descriptors in display order.
func Sliders() []SliderDescriptor {
	return []SliderDescriptor{
		{
			ID: "resolution", Label: "Resolution", Format: "%.0f px", Min: 1, Max: 16,
			Get: func(s game.Settings) float64 { return s.Resolution },
			Set: func(p *game.Partial, v float64) { p.Resolution = &v },
		},
		{
			ID: "threshold", Label: "Threshold", Format: "%.2f", Min: 0.05, Max: 2,
			Get: func(s game.Settings) float64 { return s.Threshold },
			Set: func(p *game.Partial, v float64) { p.Threshold = &v },
		},
		{
			ID: "speed", Label: "Speed", Format: "%.2fx", Min: 0, Max: 4,
			Get: func(s game.Settings) float64 { return s.Speed },
			Set: func(p *game.Partial, v float64) { p.Speed = &v },
		},
		{
			ID: "glow", Label: "Glow", Format: "%.2f", Min: 0, Max: 3,
			Get: func(s game.Settings) float64 { return s.Glow },
			Set: func(p *game.Partial, v float64) { p.Glow = &v },
		},
		{
			ID: "mouse_force", Label: "Mouse force", Format: "%.1f", Min: 0, Max: 20,
			Get: func(s game.Settings) float64 { return s.MouseForce },
			Set: func(p *game.Partial, v float64) { p.MouseForce = &v },
		},
	}
}

// applySlider forwards a slider value to the controller when it moved.
func applySlider(c Controller, d SliderDescriptor, value float32) bool {
	if float64(value) == d.Get(c.Settings()) {
		return false
	}
	var p game.Partial
	d.Set(&p, float64(value))
	c.SetConfig(p)
	return true
}

// effectOrder is the toggle row order on the panel.
var effectOrder = []systems.Effect{
	systems.Gravity,
	systems.Collision,
	systems.Attract,
	systems.Repel,
	systems.Pulse,
}

// nextBackend returns the backend the switch button selects.
func nextBackend(c Controller) game.Kind {
	if c.Backend() == game.CPU && c.GPUAvailable() {
		return game.GPU
	}
	return game.CPU
}
