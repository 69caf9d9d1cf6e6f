package components

import (
	"math"
	"testing"
)

func TestOrbitRebaseTargetsDropPoint(t *testing.T) {
	tests := []struct{ x, y float64 }{
		{700, 360},
		{640, 100},
		{10, 700},
		{640, 360}, // at centre
	}
	for _, tc := range tests {
		o := Orbit{Angle: 2.5, Radius: 150, Speed: 0.01}
		o.Rebase(tc.x, tc.y, 640, 360)

		if want := math.Hypot(tc.x-640, tc.y-360); math.Abs(o.Radius-want) > 1e-9 {
			t.Errorf("radius = %f, want %f", o.Radius, want)
		}
		if want := math.Atan2(tc.y-360, tc.x-640); o.Angle != want {
			t.Errorf("angle = %f, want %f", o.Angle, want)
		}
		if o.Speed != 0.01 {
			t.Errorf("speed changed to %f", o.Speed)
		}

		tx, ty := o.Target(640, 360)
		if math.Abs(tx-tc.x) > 1e-9 || math.Abs(ty-tc.y) > 1e-9 {
			t.Errorf("target (%f, %f), want drop point (%f, %f)", tx, ty, tc.x, tc.y)
		}
	}
}
