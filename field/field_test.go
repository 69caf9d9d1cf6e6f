package field

import (
	"errors"
	"math"
	"testing"
)

func TestFalloffEndpoints(t *testing.T) {
	const r, k = 80.0, 3.0

	if got := Falloff(0, r, k); got != 1 {
		t.Errorf("Falloff at centre = %f, want 1", got)
	}
	for _, d := range []float64{r * k, r*k + 0.001, 1000} {
		if got := Falloff(d, r, k); got != 0 {
			t.Errorf("Falloff(%f) = %f, want 0", d, got)
		}
	}
}

func TestFalloffStrictlyDecreasing(t *testing.T) {
	const r, k = 50.0, 3.0
	prev := Falloff(0, r, k)
	for d := 1.0; d < r*k; d++ {
		cur := Falloff(d, r, k)
		if cur >= prev {
			t.Fatalf("Falloff not strictly decreasing at d=%f: %f >= %f", d, cur, prev)
		}
		if cur < 0 || cur > 1 {
			t.Fatalf("Falloff(%f) = %f out of [0,1]", d, cur)
		}
		prev = cur
	}
}

func TestInverseSquareAtSource(t *testing.T) {
	if got := InverseSquareFalloff(0, 10); got != 100 {
		t.Errorf("InverseSquareFalloff(0, 10) = %f, want 100", got)
	}
	if got := InverseSquareFalloff(3, 10); math.Abs(got-10) > 1e-12 {
		t.Errorf("InverseSquareFalloff(3, 10) = %f, want 10", got)
	}
}

func TestInfluenceSqMatchesInfluence(t *testing.T) {
	for _, model := range []Model{Exponential, InverseSquare} {
		law := DefaultLaw()
		law.Model = model
		for _, d := range []float64{0, 5, 40, 120, 239.9, 240, 500} {
			want := law.Influence(d, 80)
			got := law.InfluenceSq(d*d, 80)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("%v: InfluenceSq(%f) = %f, Influence = %f", model, d, got, want)
			}
		}
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		name      string
		e0, e1, x float64
		want      float64
	}{
		{"below", 1, 2, 0.5, 0},
		{"above", 1, 2, 3, 1},
		{"midpoint", 0, 1, 0.5, 0.5},
		{"degenerate below", 1, 1, 0.9, 0},
		{"degenerate at edge", 1, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Smoothstep(tt.e0, tt.e1, tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Smoothstep(%f, %f, %f) = %f, want %f", tt.e0, tt.e1, tt.x, got, tt.want)
			}
		})
	}
}

func TestAlphaBounds(t *testing.T) {
	for _, model := range []Model{Exponential, InverseSquare} {
		law := DefaultLaw()
		law.Model = model
		for _, total := range []float64{0, 0.01, 0.05, 0.1, 0.5, 1, 3, 100, 1e6} {
			for _, threshold := range []float64{0, 0.1, 0.5, 2} {
				for _, glow := range []float64{0, 0.5, 1, 3} {
					a := law.Alpha(total, threshold, glow)
					if a < 0 || a > law.AlphaCap {
						t.Errorf("%v: Alpha(%f, %f, %f) = %f outside [0, %f]",
							model, total, threshold, glow, a, law.AlphaCap)
					}
				}
			}
		}
	}
}

func TestAlphaNaNSafe(t *testing.T) {
	law := DefaultLaw()
	if a := law.Alpha(math.NaN(), 0.5, 1); a != 0 {
		t.Errorf("Alpha(NaN) = %f, want 0", a)
	}
	if a := law.Alpha(1, math.NaN(), 1); a != 0 {
		t.Errorf("Alpha with NaN threshold = %f, want 0", a)
	}
}

func TestAlphaBelowThresholdIsTransparent(t *testing.T) {
	law := DefaultLaw()
	minField := law.MinField(0.5)
	if law.Visible(minField, 0.5) {
		t.Error("field exactly at threshold should not be visible")
	}
	if a := law.Alpha(minField, 0.5, 1); a != 0 {
		t.Errorf("Alpha at threshold = %f, want 0", a)
	}
}

func TestBlendConvex(t *testing.T) {
	samples := []Sample{
		{Color: Color{R: 0.1, G: 0.9, B: 0.3}, Field: 0.7},
		{Color: Color{R: 0.8, G: 0.2, B: 0.5}, Field: 0.2},
		{Color: Color{R: 0.4, G: 0.4, B: 1.0}, Field: 1.3},
	}
	c, total, ok := Blend(samples)
	if !ok {
		t.Fatal("expected a colour mix")
	}
	if math.Abs(total-2.2) > 1e-12 {
		t.Errorf("total = %f, want 2.2", total)
	}

	check := func(name string, got float64, pick func(Color) float64) {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, s := range samples {
			lo = math.Min(lo, pick(s.Color))
			hi = math.Max(hi, pick(s.Color))
		}
		if got < lo-1e-12 || got > hi+1e-12 {
			t.Errorf("%s = %f outside [%f, %f]", name, got, lo, hi)
		}
	}
	check("R", c.R, func(c Color) float64 { return c.R })
	check("G", c.G, func(c Color) float64 { return c.G })
	check("B", c.B, func(c Color) float64 { return c.B })
}

func TestBlendEmptyField(t *testing.T) {
	c, total, ok := Blend([]Sample{{Color: Color{R: 1}, Field: 0}})
	if ok {
		t.Error("expected no mix for zero field")
	}
	if total != 0 || c != (Color{}) {
		t.Errorf("got colour %+v total %f, want zero values", c, total)
	}
}

func TestCoincidentPrimaries(t *testing.T) {
	law := DefaultLaw()
	var acc Accumulator
	for _, c := range []Color{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}} {
		acc.Add(c, law.Influence(0, 80))
	}

	mix, ok := acc.Mix()
	if !ok {
		t.Fatal("expected a colour mix")
	}
	for _, ch := range []float64{mix.R, mix.G, mix.B} {
		if math.Abs(ch-2.0/3.0) > 1e-9 {
			t.Errorf("channel = %f, want 2/3", ch)
		}
	}
	if a := law.Alpha(acc.Total(), 0.5, 1); math.Abs(a-law.AlphaCap) > 1e-9 {
		t.Errorf("alpha = %f, want cap %f", a, law.AlphaCap)
	}
}

func TestDisplayRadius(t *testing.T) {
	if got := DisplayRadius(50, 0, 0, 0.1); got != 50 {
		t.Errorf("DisplayRadius at t=0 = %f, want 50", got)
	}
	got := DisplayRadius(50, 0, math.Pi/4, 0.1)
	if math.Abs(got-55) > 1e-9 {
		t.Errorf("DisplayRadius at peak = %f, want 55", got)
	}
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel("inverse_square")
	if err != nil || m != InverseSquare {
		t.Fatalf("ParseModel(inverse_square) = %v, %v", m, err)
	}
	if _, err := ParseModel("gaussian"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}

	var back Model
	text, _ := InverseSquare.MarshalText()
	if err := back.UnmarshalText(text); err != nil || back != InverseSquare {
		t.Errorf("text roundtrip gave %v, %v", back, err)
	}
}

func TestLawValidate(t *testing.T) {
	if err := DefaultLaw().Validate(); err != nil {
		t.Fatalf("default law invalid: %v", err)
	}
	bad := DefaultLaw()
	bad.AlphaCap = 1
	if err := bad.Validate(); !errors.Is(err, ErrInvalidLaw) {
		t.Errorf("cap 1 should be rejected, got %v", err)
	}
	bad = DefaultLaw()
	bad.Extent = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidLaw) {
		t.Errorf("zero extent should be rejected, got %v", err)
	}
}
