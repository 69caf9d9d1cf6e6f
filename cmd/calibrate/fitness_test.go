package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/metaballs/field"
)

func TestMeasureExponential(t *testing.T) {
	law := field.DefaultLaw()
	m := Measure(law, 40, 1, 1)

	// (1 - d/(r*extent))^2 = level  =>  d/r = extent * (1 - sqrt(level))
	wantEdge := law.Extent * (1 - math.Sqrt(law.MinField(1)))
	if math.Abs(m.Edge-wantEdge) > 1e-6 {
		t.Errorf("Edge = %v, want %v", m.Edge, wantEdge)
	}
	wantCore := law.Extent * (1 - math.Sqrt(law.MinField(1)*law.CoreEdge))
	if math.Abs(m.Core-wantCore) > 1e-6 {
		t.Errorf("Core = %v, want %v", m.Core, wantCore)
	}
	if m.Core >= m.Edge {
		t.Errorf("core %v not inside edge %v", m.Core, m.Edge)
	}
	if m.Peak != law.AlphaCap {
		t.Errorf("Peak = %v, want the cap %v", m.Peak, law.AlphaCap)
	}
}

func TestCrossingBelowLevel(t *testing.T) {
	law := field.DefaultLaw()
	if got := crossing(law, 10, 2); got != 0 {
		t.Errorf("crossing above peak = %v, want 0", got)
	}
}

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	law := field.DefaultLaw()

	raw := pv.Extract(law)
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-12 {
			t.Errorf("%s: %v != %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	applied := pv.Apply(law, raw)
	if applied != law {
		t.Errorf("Apply(Extract) changed the law: %+v", applied)
	}
}

func TestThresholdScaleFollowsModel(t *testing.T) {
	pv := NewParamVector()
	law := field.DefaultLaw()
	law.Model = field.InverseSquare

	values := pv.Extract(law)
	values[0] = 2.5
	got := pv.Apply(law, values)
	if got.InverseThresholdScale != 2.5 || got.ThresholdScale != law.ThresholdScale {
		t.Errorf("scales = %v / %v", got.ThresholdScale, got.InverseThresholdScale)
	}
}

func TestEvaluatePrefersTarget(t *testing.T) {
	pv := NewParamVector()
	law := field.DefaultLaw()
	here := Measure(law, 20, 1, 1)
	target := Target{Edge: here.Edge, Core: here.Core, Peak: here.Peak, Halo: here.Halo}

	fe := NewFitnessEvaluator(pv, law, target, []float64{20}, 1, 1)
	atTarget := fe.Evaluate(pv.Extract(law))
	if atTarget > 1e-9 {
		t.Errorf("loss at target = %v, want ~0", atTarget)
	}

	moved := pv.Extract(law)
	moved[1] += 2 // core edge
	if got := fe.Evaluate(moved); got <= atTarget {
		t.Errorf("loss off target = %v, want > %v", got, atTarget)
	}

	bad := pv.Extract(law)
	bad[1] = 0 // clamped to 1, still valid
	if got := fe.Evaluate(bad); got >= invalidPenalty {
		t.Errorf("clamped core edge scored as invalid")
	}
}
