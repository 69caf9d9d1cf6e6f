package balls

import (
	"math"
	"testing"
)

func TestSpawnerAt(t *testing.T) {
	sp := NewSpawner(7, SpawnRanges{
		Radius:   [2]float64{40, 80},
		Speed:    [2]float64{0.005, 0.015},
		SatValue: [2]float64{0.85, 1},
	})

	for i := 0; i < 50; i++ {
		spec := sp.At(900, 200, 640, 360)

		if spec.Radius < 40 || spec.Radius > 80 {
			t.Fatalf("radius %f outside [40, 80]", spec.Radius)
		}
		speed := math.Abs(spec.Orbit.Speed)
		if speed < 0.005 || speed > 0.015 {
			t.Fatalf("orbit speed %f outside range", spec.Orbit.Speed)
		}
		for _, ch := range []float64{spec.Color.R, spec.Color.G, spec.Color.B} {
			if ch < 0 || ch > 1 {
				t.Fatalf("colour channel %f outside [0, 1]", ch)
			}
		}

		tx, ty := spec.Orbit.Target(640, 360)
		if math.Abs(tx-900) > 1e-9 || math.Abs(ty-200) > 1e-9 {
			t.Fatalf("spawned orbit does not pass through spawn point: (%f, %f)", tx, ty)
		}
	}
}

func TestSpawnerDeterministic(t *testing.T) {
	ranges := SpawnRanges{Radius: [2]float64{40, 80}, Speed: [2]float64{0.01, 0.02}, SatValue: [2]float64{0.9, 1}}
	a := NewSpawner(42, ranges).At(10, 10, 0, 0)
	b := NewSpawner(42, ranges).At(10, 10, 0, 0)
	if a != b {
		t.Errorf("same seed produced different specs: %+v vs %+v", a, b)
	}
}
