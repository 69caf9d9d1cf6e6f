// Package field implements the scalar field and colour compositing law shared by
// the CPU rasterizer and the GPU shader.
package field

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the smallest total field that still produces a colour mix.
const Epsilon = 1e-6

// Model selects the falloff function.
type Model uint8

const (
	Exponential   Model = iota // max(0, 1 - d/(r*extent))^2
	InverseSquare              // r^2 / (d^2 + 1)
)

var modelNames = [...]string{
	Exponential:   "exponential",
	InverseSquare: "inverse_square",
}

// ErrUnknownModel is returned when parsing an unrecognised falloff model name.
var ErrUnknownModel = errors.New("unknown falloff model")

func (m Model) String() string {
	if int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("Model(%d)", m)
}

// ParseModel returns the model with the given name.
func ParseModel(s string) (Model, error) {
	for i, name := range modelNames {
		if name == s {
			return Model(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(b []byte) error {
	v, err := ParseModel(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Falloff returns the exponential-style influence of a ball of the given radius
// at distance d. It is 1 at the centre and exactly 0 from radius*extent outward.
func Falloff(d, radius, extent float64) float64 {
	reach := radius * extent
	if reach <= 0 {
		return 0
	}
	v := 1 - d/reach
	if v <= 0 {
		return 0
	}
	return v * v
}

// InverseSquareFalloff returns radius^2 / (d^2 + 1).
func InverseSquareFalloff(d, radius float64) float64 {
	return radius * radius / (d*d + 1)
}

// Smoothstep is the Hermite ease between e0 and e1, clamped to [0, 1].
// Equal edges degrade to a hard step at e0.
func Smoothstep(e0, e1, x float64) float64 {
	if e1 == e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// DisplayRadius returns the pulsing radius drawn for a ball at time t.
// The stored radius is never modified.
func DisplayRadius(base, phase, t, amount float64) float64 {
	return base * (1 + amount*math.Sin(2*t+phase))
}
