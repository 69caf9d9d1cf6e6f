package main

import (
	"github.com/pthm-cable/metaballs/field"
)

// ParamSpec defines a single law constant the calibrator may move.
type ParamSpec struct {
	Name string  // matches the config.yaml key under field:
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	value func(*field.Law) *float64
}

// ParamVector holds the set of calibrated constants.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the calibrated set. The threshold scale entry
// targets whichever scale the law's model uses.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "threshold_scale", Min: 0.005, Max: 4, value: func(l *field.Law) *float64 {
				if l.Model == field.InverseSquare {
					return &l.InverseThresholdScale
				}
				return &l.ThresholdScale
			}},
			{Name: "core_edge", Min: 1, Max: 10, value: func(l *field.Law) *float64 { return &l.CoreEdge }},
			{Name: "core_width", Min: 0, Max: 1, value: func(l *field.Law) *float64 { return &l.CoreWidth }},
			{Name: "core_weight", Min: 0, Max: 2, value: func(l *field.Law) *float64 { return &l.CoreWeight }},
			{Name: "halo_weight", Min: 0, Max: 2, value: func(l *field.Law) *float64 { return &l.HaloWeight }},
			{Name: "brightness_exponent", Min: 0.1, Max: 2, value: func(l *field.Law) *float64 { return &l.BrightnessExponent }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Extract returns the law's current values, clamped into bounds.
func (pv *ParamVector) Extract(law field.Law) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.value(&law)
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Apply returns a copy of base with the clamped values written in.
func (pv *ParamVector) Apply(base field.Law, values []float64) field.Law {
	law := base
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].value(&law) = v
	}
	return law
}
