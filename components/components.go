// Package components defines ECS components for a metaball entity.
package components

import "math"

// Position represents a ball's centre in logical surface pixels.
type Position struct {
	X, Y float64
}

// Velocity is only integrated while a physics effect is active.
type Velocity struct {
	X, Y float64
}

// Body holds physical properties of a ball.
type Body struct {
	Radius float64 // falloff scale and hit/collision radius; immutable after creation
	Mass   float64 // physics weight, conventionally equal to Radius
	Phase  float64 // pulse phase offset
}

// Tint is a ball's colour as normalized RGB.
type Tint struct {
	R, G, B float64
}

// Orbit defines the idle trajectory around the shared centre.
type Orbit struct {
	Angle  float64 // radians
	Radius float64
	Speed  float64 // radians per tick at speed factor 1
}

// Target returns the point on the orbit circle about (cx, cy).
func (o Orbit) Target(cx, cy float64) (float64, float64) {
	return cx + math.Cos(o.Angle)*o.Radius, cy + math.Sin(o.Angle)*o.Radius
}

// Rebase re-derives radius and angle so that the orbit passes through (x, y).
// The speed is kept.
func (o *Orbit) Rebase(x, y, cx, cy float64) {
	dx, dy := x-cx, y-cy
	o.Radius = math.Hypot(dx, dy)
	o.Angle = math.Atan2(dy, dx)
}
