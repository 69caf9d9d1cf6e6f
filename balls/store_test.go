package balls

import (
	"errors"
	"testing"

	"github.com/pthm-cable/metaballs/field"
)

func addAt(t *testing.T, s *Store, x, y, r float64) ID {
	t.Helper()
	id, err := s.Add(Spec{X: x, Y: y, Radius: r, Color: field.Color{R: 1}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return id
}

func TestAddDefaultsMassToRadius(t *testing.T) {
	s := NewStore(4)
	id := addAt(t, s, 10, 20, 30)

	ref, ok := s.Ref(id)
	if !ok {
		t.Fatal("expected ref for new ball")
	}
	if ref.Body.Mass != 30 {
		t.Errorf("mass = %f, want 30", ref.Body.Mass)
	}
	if ref.Vel.X != 0 || ref.Vel.Y != 0 {
		t.Errorf("expected zero velocity, got (%f, %f)", ref.Vel.X, ref.Vel.Y)
	}
}

func TestAddRejectsBadRadius(t *testing.T) {
	s := NewStore(4)
	for _, r := range []float64{0, -5} {
		if _, err := s.Add(Spec{Radius: r}); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("radius %f: expected ErrInvalidRadius, got %v", r, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
}

func TestFindUnderPointBoundaryInclusive(t *testing.T) {
	s := NewStore(4)
	id := addAt(t, s, 100, 100, 50)

	got, ok := s.FindUnderPoint(150, 100)
	if !ok || got != id {
		t.Error("point exactly at radius should hit")
	}
	if _, ok := s.FindUnderPoint(150.01, 100); ok {
		t.Error("point just outside radius should miss")
	}
}

func TestFindUnderPointTopmostFirst(t *testing.T) {
	s := NewStore(4)
	addAt(t, s, 100, 100, 50)
	top := addAt(t, s, 120, 100, 50)

	got, ok := s.FindUnderPoint(110, 100)
	if !ok || got != top {
		t.Error("expected most recently added ball")
	}
}

func TestFindUnderPointIdempotent(t *testing.T) {
	s := NewStore(4)
	addAt(t, s, 100, 100, 50)
	addAt(t, s, 300, 100, 50)

	a, okA := s.FindUnderPoint(290, 90)
	b, okB := s.FindUnderPoint(290, 90)
	if a != b || okA != okB {
		t.Error("repeated hit test returned different results")
	}
	if _, ok := s.FindUnderPoint(700, 700); ok {
		t.Error("expected miss on empty space")
	}
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	s := NewStore(2)
	first := addAt(t, s, 0, 0, 10)
	second := addAt(t, s, 50, 0, 10)
	third := addAt(t, s, 100, 0, 10)

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if s.Contains(first) {
		t.Error("oldest ball should have been evicted")
	}
	if !s.Contains(second) || !s.Contains(third) {
		t.Error("newer balls should remain")
	}
	if _, ok := s.Ref(first); ok {
		t.Error("evicted id should not resolve")
	}
}

func TestEvictionSkipsDragTarget(t *testing.T) {
	s := NewStore(2)
	first := addAt(t, s, 0, 0, 10)
	second := addAt(t, s, 50, 0, 10)
	s.SetDragTarget(first)

	addAt(t, s, 100, 0, 10)
	if !s.Contains(first) {
		t.Error("dragged ball must not be evicted")
	}
	if s.Contains(second) {
		t.Error("next oldest ball should have been evicted")
	}
}

func TestFullWhenOnlyDraggedBall(t *testing.T) {
	s := NewStore(1)
	only := addAt(t, s, 0, 0, 10)
	s.SetDragTarget(only)

	if _, err := s.Add(Spec{Radius: 10}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestSingleDragTarget(t *testing.T) {
	s := NewStore(4)
	a := addAt(t, s, 0, 0, 10)
	b := addAt(t, s, 50, 0, 10)

	s.SetDragTarget(a)
	s.SetDragTarget(b)
	if s.IsDragged(a) {
		t.Error("previous drag target should be replaced")
	}

	dragged := 0
	for _, ball := range s.Snapshot(nil) {
		if ball.Dragging {
			dragged++
		}
	}
	if dragged != 1 {
		t.Errorf("dragged balls = %d, want 1", dragged)
	}

	id, ok := s.ClearDragTarget()
	if !ok || id != b {
		t.Error("ClearDragTarget should return the released ball")
	}
	if _, ok := s.DragTarget(); ok {
		t.Error("expected no drag target after release")
	}
}

func TestSnapshotOrder(t *testing.T) {
	s := NewStore(4)
	ids := []ID{addAt(t, s, 1, 0, 10), addAt(t, s, 2, 0, 10), addAt(t, s, 3, 0, 10)}

	snap := s.Snapshot(nil)
	if len(snap) != len(ids) {
		t.Fatalf("snapshot len = %d, want %d", len(snap), len(ids))
	}
	for i, b := range snap {
		if b.ID != ids[i] {
			t.Errorf("snapshot[%d] out of z-order", i)
		}
		if b.X != float64(i+1) {
			t.Errorf("snapshot[%d].X = %f, want %d", i, b.X, i+1)
		}
	}
}
