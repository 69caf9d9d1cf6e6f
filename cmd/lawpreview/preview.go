package main

import (
	"fmt"
	"image"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/field"
	"github.com/pthm-cable/metaballs/raster"
)

// lawSlider binds one float constant of the law to a slider.
type lawSlider struct {
	label    string
	min, max float32
	format   string
	value    func(*field.Law) *float64
}

var lawSliders = []lawSlider{
	{"Extent (reach in radii)", 1, 6, "%.2f", func(l *field.Law) *float64 { return &l.Extent }},
	{"Threshold scale (exponential)", 0.01, 0.5, "%.3f", func(l *field.Law) *float64 { return &l.ThresholdScale }},
	{"Threshold scale (inverse square)", 0.1, 4, "%.2f", func(l *field.Law) *float64 { return &l.InverseThresholdScale }},
	{"Core edge", 1, 10, "%.2f", func(l *field.Law) *float64 { return &l.CoreEdge }},
	{"Core width", 0, 1, "%.2f", func(l *field.Law) *float64 { return &l.CoreWidth }},
	{"Core weight", 0, 2, "%.2f", func(l *field.Law) *float64 { return &l.CoreWeight }},
	{"Halo weight", 0, 2, "%.2f", func(l *field.Law) *float64 { return &l.HaloWeight }},
	{"Brightness exponent", 0.1, 2, "%.2f", func(l *field.Law) *float64 { return &l.BrightnessExponent }},
	{"Glow scale", 0, 3, "%.2f", func(l *field.Law) *float64 { return &l.GlowScale }},
	{"Alpha cap", 0.05, 0.99, "%.2f", func(l *field.Law) *float64 { return &l.AlphaCap }},
}

// profilePoint is the single-ball field and opacity at one distance.
type profilePoint struct {
	D, Field, Alpha float64
}

// profile samples one ball's influence and opacity from its centre out to
// where the field vanishes (or four radii for the unbounded model).
func profile(law field.Law, radius, threshold, glow float64, n int) []profilePoint {
	if n < 2 {
		n = 2
	}
	reach := radius * law.Extent
	if law.Model == field.InverseSquare {
		reach = radius * 4
	}
	pts := make([]profilePoint, n)
	for i := range pts {
		d := reach * float64(i) / float64(n-1)
		f := law.Influence(d, radius)
		pts[i] = profilePoint{D: d, Field: f, Alpha: law.Alpha(f, threshold, glow)}
	}
	return pts
}

// visibleEdge returns the first sampled distance at which the ball stops
// being drawn, or -1 if it is visible across the whole profile.
func visibleEdge(law field.Law, pts []profilePoint, threshold float64) float64 {
	for _, p := range pts {
		if !law.Visible(p.Field, threshold) {
			return p.D
		}
	}
	return -1
}

// previewBalls returns two overlapping balls centred in a size x size square.
func previewBalls(size int) []balls.Ball {
	c := float64(size) / 2
	r := float64(size) / 8
	return []balls.Ball{
		{X: c - r*0.9, Y: c, Radius: r, Color: field.Color{R: 0, G: 1, B: 1}},
		{X: c + r*0.9, Y: c, Radius: r * 0.8, Color: field.Color{R: 1, G: 0, B: 1}},
	}
}

// renderPreview draws the preview balls with the CPU rasterizer.
func renderPreview(law field.Law, size int, threshold, glow float64) (*image.RGBA, error) {
	r := raster.New(raster.Options{Law: law})
	r.Resize(size, size, 1)
	return r.Still(previewBalls(size), raster.Params{
		Resolution: 1,
		Threshold:  threshold,
		Glow:       glow,
	})
}

// fieldYAML renders the law as a config.yaml "field" section.
func fieldYAML(law field.Law) (string, error) {
	section := struct {
		Field config.FieldConfig `yaml:"field"`
	}{
		Field: config.FieldConfig{
			Model:                 law.Model,
			Extent:                law.Extent,
			ThresholdScale:        law.ThresholdScale,
			InverseThresholdScale: law.InverseThresholdScale,
			CoreEdge:              law.CoreEdge,
			CoreWidth:             law.CoreWidth,
			CoreWeight:            law.CoreWeight,
			HaloWeight:            law.HaloWeight,
			BrightnessExponent:    law.BrightnessExponent,
			GlowScale:             law.GlowScale,
			AlphaCap:              law.AlphaCap,
			PulseAmount:           law.PulseAmount,
		},
	}
	data, err := yaml.Marshal(section)
	if err != nil {
		return "", fmt.Errorf("marshaling field section: %w", err)
	}
	return string(data), nil
}
