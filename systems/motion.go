package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/metaballs/balls"
)

// referenceFPS normalizes per-tick physics constants to 60 frames per second.
const referenceFPS = 60.0

// Params holds integrator constants.
type Params struct {
	MaxDT          float64 // seconds
	SmoothingRate  float64
	Wobble         float64
	Damping        float64
	Restitution    float64
	Gravity        float64
	GravityMin     float64
	GravityMax     float64
	CollisionRatio float64
	MouseMin       float64
	MouseMax       float64
}

// DefaultParams returns the integrator constants matching config/defaults.yaml.
func DefaultParams() Params {
	return Params{
		MaxDT:          0.1,
		SmoothingRate:  5,
		Wobble:         0.3,
		Damping:        0.99,
		Restitution:    0.7,
		Gravity:        0.3,
		GravityMin:     10,
		GravityMax:     500,
		CollisionRatio: 0.8,
		MouseMin:       1,
		MouseMax:       400,
	}
}

// Frame is the per-tick input to the integrator.
type Frame struct {
	DT            float64 // seconds, already capped
	PointerX      float64
	PointerY      float64
	DragOffsetX   float64 // pointer minus ball centre at grab time
	DragOffsetY   float64
	Width, Height float64
	Speed         float64 // orbit speed factor
	MouseForce    float64
}

// FrameDT converts a millisecond frame delta to seconds, capped at maxDT so a
// stalled frame cannot cause a large jump. Negative deltas become zero.
func FrameDT(deltaMillis, maxDT float64) float64 {
	dt := deltaMillis / 1000
	if !(dt > 0) {
		return 0
	}
	if dt > maxDT {
		return maxDT
	}
	return dt
}

// Integrator moves the balls of a store once per tick.
type Integrator struct {
	params     Params
	effects    Effects
	refs       []balls.Ref
	free       []balls.Ref
	wasPhysics bool
}

// NewIntegrator creates an integrator with no effects active.
func NewIntegrator(p Params) *Integrator {
	return &Integrator{params: p}
}

// Params returns the integrator constants.
func (in *Integrator) Params() Params {
	return in.params
}

// Effects returns the active effect set.
func (in *Integrator) Effects() Effects {
	return in.effects
}

// Toggle flips the named effect and returns its new state.
func (in *Integrator) Toggle(name string) (bool, error) {
	e, err := ParseEffect(name)
	if err != nil {
		return false, err
	}
	return in.effects.Toggle(e), nil
}

// Enable switches the named effects on.
func (in *Integrator) Enable(names ...string) error {
	for _, name := range names {
		e, err := ParseEffect(name)
		if err != nil {
			return fmt.Errorf("enabling effects: %w", err)
		}
		if !in.effects.Has(e) {
			in.effects.Toggle(e)
		}
	}
	return nil
}

// Step advances every ball by one tick. The drag target follows the pointer;
// all other balls move by orbit or by physics depending on the active effects.
func (in *Integrator) Step(store *balls.Store, f Frame) {
	in.refs = store.Refs(in.refs)
	refs := in.refs

	if id, ok := store.DragTarget(); ok {
		if ref, ok := store.Ref(id); ok {
			ref.Pos.X = f.PointerX - f.DragOffsetX
			ref.Pos.Y = f.PointerY - f.DragOffsetY
		}
	}

	cx, cy := f.Width/2, f.Height/2
	physics := in.effects.Physics()
	if in.wasPhysics && !physics {
		// Resume orbits from wherever physics left each ball.
		for _, r := range refs {
			r.Orbit.Rebase(r.Pos.X, r.Pos.Y, cx, cy)
			r.Vel.X, r.Vel.Y = 0, 0
		}
	}
	in.wasPhysics = physics

	if physics {
		in.stepPhysics(store, refs, f)
		return
	}
	for _, r := range refs {
		if store.IsDragged(r.ID) {
			continue
		}
		stepOrbit(r, f, cx, cy, in.params)
	}
}

// Release ends a drag: the ball's orbit is rebased on its drop position so
// orbital motion resumes from there, and any velocity is discarded.
func (in *Integrator) Release(store *balls.Store, f Frame) (balls.ID, bool) {
	id, ok := store.ClearDragTarget()
	if !ok {
		return id, false
	}
	ref, ok := store.Ref(id)
	if !ok {
		return id, false
	}
	ref.Pos.X = f.PointerX - f.DragOffsetX
	ref.Pos.Y = f.PointerY - f.DragOffsetY
	ref.Orbit.Rebase(ref.Pos.X, ref.Pos.Y, f.Width/2, f.Height/2)
	ref.Vel.X, ref.Vel.Y = 0, 0
	return id, true
}

// stepOrbit chases the next point on the ball's orbit with frame-rate
// independent exponential smoothing, plus a small wobble.
func stepOrbit(r balls.Ref, f Frame, cx, cy float64, p Params) {
	r.Orbit.Angle += r.Orbit.Speed * f.Speed
	tx, ty := r.Orbit.Target(cx, cy)

	s := 1 - math.Exp(-p.SmoothingRate*f.DT)
	r.Pos.X += (tx - r.Pos.X) * s
	r.Pos.Y += (ty - r.Pos.Y) * s

	a := r.Orbit.Angle
	w := p.Wobble * f.DT * referenceFPS
	r.Pos.X += math.Sin(2*a) * w
	r.Pos.Y += math.Cos(1.5*a) * w
}
