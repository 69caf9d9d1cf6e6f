// Package ui draws the control panel and HUD. Controls are described by
// metadata so the panel layout follows the engine's tunables.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/game"
	"github.com/pthm-cable/metaballs/systems"
)

// Controller is the part of the engine the panel drives.
type Controller interface {
	Settings() game.Settings
	SetConfig(game.Partial)
	Effects() systems.Effects
	ToggleEffect(name string) (bool, error)
	Backend() game.Kind
	GPUAvailable() bool
	SetBackend(game.Kind) error
	FrameStats() game.Stats
}

// SliderDescriptor defines one tunable slider.
type SliderDescriptor struct {
	ID     string
	Label  string
	Format string // Printf format for the value (e.g., "%.2f")
	Min    float32
	Max    float32
	Get    func(game.Settings) float64
	Set    func(*game.Partial, float64)
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	Padding        int32
	LineHeight     int32
	SliderHeight   int32
	ButtonHeight   int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		Padding:        10,
		LineHeight:     16,
		SliderHeight:   16,
		ButtonHeight:   24,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
