package field

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLaw is returned by Law.Validate.
var ErrInvalidLaw = errors.New("invalid field law")

// Law holds every constant of the field and blend law. The CPU rasterizer
// evaluates it directly and the GPU renderer uploads the same values as
// uniforms, so the two paths cannot drift apart.
type Law struct {
	Model                 Model
	Extent                float64 // influence reaches radius * Extent (exponential model)
	ThresholdScale        float64 // threshold multiplier for the exponential model
	InverseThresholdScale float64 // threshold multiplier for the inverse-square model
	CoreEdge              float64
	CoreWidth             float64
	CoreWeight            float64
	HaloWeight            float64
	BrightnessExponent    float64
	GlowScale             float64
	AlphaCap              float64 // < 1: output is never fully opaque
	PulseAmount           float64
}

// DefaultLaw returns the law matching config/defaults.yaml.
func DefaultLaw() Law {
	return Law{
		Model:                 Exponential,
		Extent:                3.0,
		ThresholdScale:        0.1,
		InverseThresholdScale: 1.0,
		CoreEdge:              4.0,
		CoreWidth:             0.25,
		CoreWeight:            0.8,
		HaloWeight:            0.4,
		BrightnessExponent:    0.5,
		GlowScale:             1.0,
		AlphaCap:              0.95,
		PulseAmount:           0.1,
	}
}

// Validate reports constants that would break the law's invariants.
func (l Law) Validate() error {
	switch {
	case l.Model > InverseSquare:
		return fmt.Errorf("%w: model %v", ErrInvalidLaw, l.Model)
	case l.Extent <= 0:
		return fmt.Errorf("%w: extent must be positive, got %g", ErrInvalidLaw, l.Extent)
	case l.ThresholdScale <= 0 || l.InverseThresholdScale <= 0:
		return fmt.Errorf("%w: threshold scales must be positive", ErrInvalidLaw)
	case l.CoreEdge < 1:
		return fmt.Errorf("%w: core edge must be >= 1, got %g", ErrInvalidLaw, l.CoreEdge)
	case l.CoreWidth < 0:
		return fmt.Errorf("%w: core width must be >= 0, got %g", ErrInvalidLaw, l.CoreWidth)
	case l.AlphaCap <= 0 || l.AlphaCap >= 1:
		return fmt.Errorf("%w: alpha cap must be in (0, 1), got %g", ErrInvalidLaw, l.AlphaCap)
	}
	return nil
}

// Scale returns the threshold multiplier for the active model.
func (l Law) Scale() float64 {
	if l.Model == InverseSquare {
		return l.InverseThresholdScale
	}
	return l.ThresholdScale
}

// MinField returns the total field below which nothing is drawn.
func (l Law) MinField(threshold float64) float64 {
	return threshold * l.Scale()
}

// Visible reports whether a total field is strong enough to be drawn.
func (l Law) Visible(total, threshold float64) bool {
	return total > l.MinField(threshold)
}

// Influence returns a single ball's contribution at distance d.
func (l Law) Influence(d, radius float64) float64 {
	if l.Model == InverseSquare {
		return InverseSquareFalloff(d, radius)
	}
	return Falloff(d, radius, l.Extent)
}

// InfluenceSq is Influence taking a squared distance. The inverse-square form
// skips the square root; the exponential form rejects samples beyond reach first.
func (l Law) InfluenceSq(d2, radius float64) float64 {
	if l.Model == InverseSquare {
		return radius * radius / (d2 + 1)
	}
	reach := radius * l.Extent
	if d2 >= reach*reach {
		return 0
	}
	return Falloff(math.Sqrt(d2), radius, l.Extent)
}

// Alpha maps a total field to output opacity: a broad halo edge plus a tight
// core edge, scaled by brightness and glow and capped below 1.
func (l Law) Alpha(total, threshold, glow float64) float64 {
	if !(total > 0) || !(glow > 0) || math.IsNaN(threshold) {
		return 0
	}
	t := l.MinField(threshold)
	coreLo := t * l.CoreEdge
	halo := Smoothstep(t, coreLo, total)
	core := Smoothstep(coreLo, coreLo*(1+l.CoreWidth), total)
	a := (core*l.CoreWeight + halo*l.HaloWeight) * math.Pow(total, l.BrightnessExponent) * glow * l.GlowScale
	if !(a > 0) {
		return 0
	}
	if a > l.AlphaCap {
		return l.AlphaCap
	}
	return a
}
