package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/metaballs/balls"
)

func posVec(r balls.Ref) r2.Vec { return r2.Vec{X: r.Pos.X, Y: r.Pos.Y} }
func velVec(r balls.Ref) r2.Vec { return r2.Vec{X: r.Vel.X, Y: r.Vel.Y} }

func setPos(r balls.Ref, v r2.Vec) { r.Pos.X, r.Pos.Y = v.X, v.Y }
func setVel(r balls.Ref, v r2.Vec) { r.Vel.X, r.Vel.Y = v.X, v.Y }

// stepPhysics applies forces, resolves collisions, then integrates. Pairs that
// include the drag target are skipped: its position belongs to the pointer.
func (in *Integrator) stepPhysics(store *balls.Store, refs []balls.Ref, f Frame) {
	p := in.params

	free := in.free[:0]
	for _, r := range refs {
		if !store.IsDragged(r.ID) {
			free = append(free, r)
		}
	}
	in.free = free

	if in.effects.Has(Gravity) {
		for i := 0; i < len(free); i++ {
			for j := i + 1; j < len(free); j++ {
				applyGravity(free[i], free[j], p)
			}
		}
	}

	if sign := in.effects.MouseSign(); sign != 0 {
		pointer := r2.Vec{X: f.PointerX, Y: f.PointerY}
		for _, r := range free {
			applyMouseForce(r, pointer, sign*f.MouseForce, p)
		}
	}

	if in.effects.Has(Collision) {
		for i := 0; i < len(free); i++ {
			for j := i + 1; j < len(free); j++ {
				resolveCollision(free[i], free[j], p.CollisionRatio)
			}
		}
	}

	for _, r := range free {
		integrate(r, f, p)
	}
}

// applyGravity pulls a pair together with F = G*m1*m2/d^2, equal and opposite.
func applyGravity(a, b balls.Ref, p Params) {
	d := r2.Sub(posVec(b), posVec(a))
	dist := r2.Norm(d)
	if dist <= p.GravityMin || dist >= p.GravityMax {
		return
	}
	n := r2.Scale(1/dist, d)
	force := p.Gravity * a.Body.Mass * b.Body.Mass / (dist * dist)

	setVel(a, r2.Add(velVec(a), r2.Scale(force/a.Body.Mass, n)))
	setVel(b, r2.Sub(velVec(b), r2.Scale(force/b.Body.Mass, n)))
}

// applyMouseForce accelerates r toward the pointer (strength > 0) or away from
// it (strength < 0), inversely proportional to distance.
func applyMouseForce(r balls.Ref, pointer r2.Vec, strength float64, p Params) {
	d := r2.Sub(pointer, posVec(r))
	dist := r2.Norm(d)
	if dist <= p.MouseMin || dist >= p.MouseMax {
		return
	}
	n := r2.Scale(1/dist, d)
	setVel(r, r2.Add(velVec(r), r2.Scale(strength/dist, n)))
}

// resolveCollision applies a momentum-conserving elastic impulse to an
// approaching, overlapping pair and pushes them apart by half the overlap each.
// It reports whether an impulse was applied.
func resolveCollision(a, b balls.Ref, ratio float64) bool {
	pa, pb := posVec(a), posVec(b)
	d := r2.Sub(pb, pa)
	dist := r2.Norm(d)
	minDist := ratio * (a.Body.Radius + b.Body.Radius)
	if dist >= minDist {
		return false
	}

	n := r2.Vec{X: 1}
	if dist > 0 {
		n = r2.Scale(1/dist, d)
	}

	rel := r2.Sub(velVec(b), velVec(a))
	dot := r2.Dot(rel, n)
	if dot > 0 {
		return false
	}

	m1, m2 := a.Body.Mass, b.Body.Mass
	j := 2 * dot / (m1 + m2)
	setVel(a, r2.Add(velVec(a), r2.Scale(j*m2, n)))
	setVel(b, r2.Sub(velVec(b), r2.Scale(j*m1, n)))

	overlap := minDist - dist
	setPos(a, r2.Sub(pa, r2.Scale(overlap/2, n)))
	setPos(b, r2.Add(pb, r2.Scale(overlap/2, n)))
	return true
}

// integrate moves r by its velocity, damps it and bounces off the surface edges.
func integrate(r balls.Ref, f Frame, p Params) {
	scale := f.DT * referenceFPS
	r.Pos.X += r.Vel.X * scale
	r.Pos.Y += r.Vel.Y * scale
	r.Vel.X *= p.Damping
	r.Vel.Y *= p.Damping

	r.Pos.X, r.Vel.X = bounce(r.Pos.X, r.Vel.X, r.Body.Radius, f.Width, p.Restitution)
	r.Pos.Y, r.Vel.Y = bounce(r.Pos.Y, r.Vel.Y, r.Body.Radius, f.Height, p.Restitution)
}

// bounce reflects a coordinate off [radius, dim-radius] with restitution.
func bounce(x, v, radius, dim, restitution float64) (float64, float64) {
	if dim < 2*radius {
		return dim / 2, 0
	}
	switch {
	case x < radius:
		x = radius
		if v < 0 {
			v = -v * restitution
		}
	case x > dim-radius:
		x = dim - radius
		if v > 0 {
			v = -v * restitution
		}
	}
	return x, v
}
