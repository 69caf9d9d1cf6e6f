package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/metaballs/balls"
)

// ErrOccupied is returned when spawning on top of an existing ball.
var ErrOccupied = errors.New("point already covered by a ball")

// PointerDown grabs the topmost ball under (x, y). It reports whether a ball
// was grabbed; a miss leaves the host free to spawn instead.
func (e *Engine) PointerDown(x, y float64) bool {
	e.pointerX, e.pointerY = x, y
	id, ok := e.store.FindUnderPoint(x, y)
	if !ok {
		return false
	}
	ref, ok := e.store.Ref(id)
	if !ok {
		return false
	}
	e.dragDX, e.dragDY = x-ref.Pos.X, y-ref.Pos.Y
	ref.Vel.X, ref.Vel.Y = 0, 0
	e.store.SetDragTarget(id)
	return true
}

// PointerMove records the pointer position. A dragged ball follows it on the
// next frame.
func (e *Engine) PointerMove(x, y float64) {
	e.pointerX, e.pointerY = x, y
}

// PointerUp releases any dragged ball at (x, y); its orbit restarts from there.
func (e *Engine) PointerUp(x, y float64) {
	e.pointerX, e.pointerY = x, y
	if _, ok := e.motion.Release(e.store, e.frameInput(0)); ok {
		slog.Debug("ball released", "x", x-e.dragDX, "y", y-e.dragDY)
	}
	e.dragDX, e.dragDY = 0, 0
}

// Dragging reports whether a ball is currently held.
func (e *Engine) Dragging() bool {
	_, ok := e.store.DragTarget()
	return ok
}

// SpawnBall adds a ball at (x, y) with a random size and colour. At capacity
// the oldest free ball is evicted. Spawning on an existing ball is refused.
func (e *Engine) SpawnBall(x, y float64) (balls.ID, error) {
	if _, ok := e.store.FindUnderPoint(x, y); ok {
		return balls.ID{}, ErrOccupied
	}
	cx, cy := e.centre()
	id, err := e.store.Add(e.spawner.At(x, y, cx, cy))
	if err != nil {
		return balls.ID{}, fmt.Errorf("spawning ball: %w", err)
	}
	slog.Debug("ball spawned", "x", x, "y", y, "count", e.store.Len())
	return id, nil
}

// ToggleEffect flips a named effect and returns its new state.
func (e *Engine) ToggleEffect(name string) (bool, error) {
	on, err := e.motion.Toggle(name)
	if err != nil {
		return false, err
	}
	slog.Info("effect toggled", "effect", name, "on", on)
	return on, nil
}
