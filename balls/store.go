// Package balls owns the set of metaball entities.
package balls

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/metaballs/components"
	"github.com/pthm-cable/metaballs/field"
)

var (
	// ErrInvalidRadius is returned when adding a ball with a non-positive radius.
	ErrInvalidRadius = errors.New("ball radius must be positive")
	// ErrFull is returned when the store is at capacity and every ball is pinned by a drag.
	ErrFull = errors.New("ball store full")
)

// ID identifies a ball. It stays valid across spawns and evictions; a ball that
// has left the store simply no longer resolves.
type ID struct {
	e ecs.Entity
}

// Spec describes a ball to add.
type Spec struct {
	X, Y   float64
	Radius float64
	Mass   float64 // 0 = Radius
	Phase  float64
	Color  field.Color
	Orbit  components.Orbit
}

// Ref gives the integrator direct access to a ball's components.
// Refs are invalidated by Add (which may evict); collect them once per tick.
type Ref struct {
	ID    ID
	Pos   *components.Position
	Vel   *components.Velocity
	Body  *components.Body
	Tint  *components.Tint
	Orbit *components.Orbit
}

// Ball is a read-only copy of one ball's state, handed to renderers.
type Ball struct {
	ID       ID
	X, Y     float64
	VX, VY   float64
	Radius   float64
	Mass     float64
	Phase    float64
	Color    field.Color
	Orbit    components.Orbit
	Dragging bool
}

// Store holds the balls in an ECS world plus their z-order (oldest first).
// It is not safe for concurrent use.
type Store struct {
	world  *ecs.World
	mapper *ecs.Map5[
		components.Position,
		components.Velocity,
		components.Body,
		components.Tint,
		components.Orbit,
	]

	order    []ecs.Entity
	maxCount int

	drag     ecs.Entity
	dragging bool
}

// NewStore creates an empty store holding at most maxCount balls.
func NewStore(maxCount int) *Store {
	if maxCount < 1 {
		maxCount = 1
	}
	world := ecs.NewWorld()
	return &Store{
		world: world,
		mapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Body,
			components.Tint,
			components.Orbit,
		](world),
		order:    make([]ecs.Entity, 0, maxCount),
		maxCount: maxCount,
	}
}

// Len returns the number of balls.
func (s *Store) Len() int {
	return len(s.order)
}

// Max returns the capacity.
func (s *Store) Max() int {
	return s.maxCount
}

// Add creates a ball on top of the z-order. At capacity the oldest ball that is
// not being dragged falls out of the set first.
func (s *Store) Add(spec Spec) (ID, error) {
	if !(spec.Radius > 0) {
		return ID{}, fmt.Errorf("%w: %g", ErrInvalidRadius, spec.Radius)
	}
	if len(s.order) >= s.maxCount {
		if !s.evictOldest() {
			return ID{}, ErrFull
		}
	}

	mass := spec.Mass
	if mass <= 0 {
		mass = spec.Radius
	}
	pos := components.Position{X: spec.X, Y: spec.Y}
	vel := components.Velocity{}
	body := components.Body{Radius: spec.Radius, Mass: mass, Phase: spec.Phase}
	tint := components.Tint{R: spec.Color.R, G: spec.Color.G, B: spec.Color.B}
	orbit := spec.Orbit

	e := s.mapper.NewEntity(&pos, &vel, &body, &tint, &orbit)
	s.order = append(s.order, e)
	return ID{e: e}, nil
}

// evictOldest removes the oldest non-dragged ball.
func (s *Store) evictOldest() bool {
	for i, e := range s.order {
		if s.dragging && e == s.drag {
			continue
		}
		s.world.RemoveEntity(e)
		s.order = append(s.order[:i], s.order[i+1:]...)
		return true
	}
	return false
}

// Contains reports whether id still refers to a ball in the store.
func (s *Store) Contains(id ID) bool {
	return id.e != (ecs.Entity{}) && s.world.Alive(id.e)
}

// Ref returns component access for id.
func (s *Store) Ref(id ID) (Ref, bool) {
	if !s.Contains(id) {
		return Ref{}, false
	}
	return s.ref(id.e), true
}

func (s *Store) ref(e ecs.Entity) Ref {
	pos, vel, body, tint, orbit := s.mapper.Get(e)
	return Ref{ID: ID{e: e}, Pos: pos, Vel: vel, Body: body, Tint: tint, Orbit: orbit}
}

// Refs appends a Ref for every ball, oldest first, to dst.
func (s *Store) Refs(dst []Ref) []Ref {
	dst = dst[:0]
	for _, e := range s.order {
		dst = append(dst, s.ref(e))
	}
	return dst
}

// Snapshot appends a copy of every ball, oldest first, to dst.
func (s *Store) Snapshot(dst []Ball) []Ball {
	dst = dst[:0]
	for _, e := range s.order {
		pos, vel, body, tint, orbit := s.mapper.Get(e)
		dst = append(dst, Ball{
			ID:       ID{e: e},
			X:        pos.X,
			Y:        pos.Y,
			VX:       vel.X,
			VY:       vel.Y,
			Radius:   body.Radius,
			Mass:     body.Mass,
			Phase:    body.Phase,
			Color:    field.Color{R: tint.R, G: tint.G, B: tint.B},
			Orbit:    *orbit,
			Dragging: s.dragging && e == s.drag,
		})
	}
	return dst
}

// FindUnderPoint returns the topmost (most recently added) ball whose circle
// contains (x, y). The boundary is inclusive.
func (s *Store) FindUnderPoint(x, y float64) (ID, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		e := s.order[i]
		pos, _, body, _, _ := s.mapper.Get(e)
		dx, dy := x-pos.X, y-pos.Y
		if dx*dx+dy*dy <= body.Radius*body.Radius {
			return ID{e: e}, true
		}
	}
	return ID{}, false
}

// SetDragTarget makes id the single drag target, replacing any previous one.
func (s *Store) SetDragTarget(id ID) bool {
	if !s.Contains(id) {
		return false
	}
	s.drag = id.e
	s.dragging = true
	return true
}

// ClearDragTarget releases the drag target and returns it.
func (s *Store) ClearDragTarget() (ID, bool) {
	id, ok := s.DragTarget()
	s.drag = ecs.Entity{}
	s.dragging = false
	return id, ok
}

// DragTarget returns the current drag target if it is still in the store.
func (s *Store) DragTarget() (ID, bool) {
	if !s.dragging || !s.world.Alive(s.drag) {
		return ID{}, false
	}
	return ID{e: s.drag}, true
}

// IsDragged reports whether id is the current drag target.
func (s *Store) IsDragged(id ID) bool {
	return s.dragging && id.e == s.drag
}
