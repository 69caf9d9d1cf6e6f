// Package config provides configuration loading and access for the metaballs engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/metaballs/field"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Motion    MotionConfig    `yaml:"motion"`
	Balls     BallsConfig     `yaml:"balls"`
	Render    RenderConfig    `yaml:"render"`
	Effects   []string        `yaml:"effects"` // effects enabled at startup
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	Quality   float64 `yaml:"quality"` // output buffer scale relative to the window
}

// FieldConfig holds the shared field/blend law constants.
// Both backends read these through field.Law.
type FieldConfig struct {
	Model                 field.Model `yaml:"model"`
	Extent                float64     `yaml:"extent"`
	ThresholdScale        float64     `yaml:"threshold_scale"`
	InverseThresholdScale float64     `yaml:"inverse_threshold_scale"`
	CoreEdge              float64     `yaml:"core_edge"`
	CoreWidth             float64     `yaml:"core_width"`
	CoreWeight            float64     `yaml:"core_weight"`
	HaloWeight            float64     `yaml:"halo_weight"`
	BrightnessExponent    float64     `yaml:"brightness_exponent"`
	GlowScale             float64     `yaml:"glow_scale"`
	AlphaCap              float64     `yaml:"alpha_cap"`
	PulseAmount           float64     `yaml:"pulse_amount"`
}

// MotionConfig holds integrator constants.
type MotionConfig struct {
	MaxDT          float64 `yaml:"max_dt"`         // seconds; larger frame gaps are capped
	SmoothingRate  float64 `yaml:"smoothing_rate"` // orbital chase rate (1/s)
	Wobble         float64 `yaml:"wobble"`
	Damping        float64 `yaml:"damping"`
	Restitution    float64 `yaml:"restitution"`
	Gravity        float64 `yaml:"gravity"`
	GravityMin     float64 `yaml:"gravity_min"`
	GravityMax     float64 `yaml:"gravity_max"`
	CollisionRatio float64 `yaml:"collision_ratio"`
	MouseMin       float64 `yaml:"mouse_min"`
	MouseMax       float64 `yaml:"mouse_max"`
}

// BallConfig describes one ball of the initial set.
type BallConfig struct {
	Color       string  `yaml:"color"` // hex, e.g. "#00ffff"
	Radius      float64 `yaml:"radius"`
	OrbitRadius float64 `yaml:"orbit_radius"`
	OrbitSpeed  float64 `yaml:"orbit_speed"`
}

// BallsConfig holds ball store parameters.
type BallsConfig struct {
	MaxCount      int          `yaml:"max_count"`
	Initial       []BallConfig `yaml:"initial"`
	SpawnRadius   [2]float64   `yaml:"spawn_radius"` // min, max
	SpawnSpeed    [2]float64   `yaml:"spawn_speed"`  // min, max orbit speed (rad/tick)
	SpawnSatValue [2]float64   `yaml:"spawn_sat_value"`
}

// RenderConfig holds renderer parameters and the initial runtime tunables.
type RenderConfig struct {
	Backend     string  `yaml:"backend"`      // cpu or gpu
	CPUStrategy string  `yaml:"cpu_strategy"` // buffer or rects
	Workers     int     `yaml:"workers"`      // raster bands processed in parallel (0 = GOMAXPROCS)
	TrailAlpha  float64 `yaml:"trail_alpha"`
	Resolution  float64 `yaml:"resolution"`
	Threshold   float64 `yaml:"threshold"`
	Speed       float64 `yaml:"speed"`
	Glow        float64 `yaml:"glow"`
	MouseForce  float64 `yaml:"mouse_force"`
}

// TelemetryConfig holds perf reporting parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // frames averaged per stats sample
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Law     field.Law
	Palette []colorful.Color // parsed colours of the initial set
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	f := c.Field
	c.Derived.Law = field.Law{
		Model:                 f.Model,
		Extent:                f.Extent,
		ThresholdScale:        f.ThresholdScale,
		InverseThresholdScale: f.InverseThresholdScale,
		CoreEdge:              f.CoreEdge,
		CoreWidth:             f.CoreWidth,
		CoreWeight:            f.CoreWeight,
		HaloWeight:            f.HaloWeight,
		BrightnessExponent:    f.BrightnessExponent,
		GlowScale:             f.GlowScale,
		AlphaCap:              f.AlphaCap,
		PulseAmount:           f.PulseAmount,
	}
	if err := c.Derived.Law.Validate(); err != nil {
		return fmt.Errorf("field config: %w", err)
	}

	if c.Screen.Quality <= 0 {
		c.Screen.Quality = 1
	}
	if c.Balls.MaxCount < len(c.Balls.Initial) {
		c.Balls.MaxCount = len(c.Balls.Initial)
	}

	c.Derived.Palette = c.Derived.Palette[:0]
	for i, b := range c.Balls.Initial {
		col, err := colorful.Hex(b.Color)
		if err != nil {
			return fmt.Errorf("balls.initial[%d].color %q: %w", i, b.Color, err)
		}
		c.Derived.Palette = append(c.Derived.Palette, col)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
