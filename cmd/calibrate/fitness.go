package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/metaballs/field"
)

// Target is the single-ball look the calibrator aims for. Distances are in
// multiples of the ball radius.
type Target struct {
	Edge float64 // where the ball stops being drawn
	Core float64 // where the tight core edge begins
	Peak float64 // opacity at the centre
	Halo float64 // opacity halfway between core and edge
}

// Metrics is the measured single-ball look.
type Metrics struct {
	Edge, Core, Peak, Halo float64
}

// invalidPenalty is returned for constants the law rejects.
const invalidPenalty = 1e6

// regularization pulls toward the starting point so flat directions settle.
const regularization = 0.01

// crossing returns the distance at which one ball's influence falls to level.
// Influence decreases with distance, so bisection converges on the single crossing.
func crossing(law field.Law, radius, level float64) float64 {
	if law.Influence(0, radius) <= level {
		return 0
	}
	hi := radius
	for range 64 {
		if law.Influence(hi, radius) <= level {
			break
		}
		hi *= 2
	}
	lo := 0.0
	for range 60 {
		mid := (lo + hi) / 2
		if law.Influence(mid, radius) > level {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Measure reports the single-ball metrics for a ball of the given radius.
func Measure(law field.Law, radius, threshold, glow float64) Metrics {
	t := law.MinField(threshold)
	edge := crossing(law, radius, t)
	core := crossing(law, radius, t*law.CoreEdge)
	mid := (edge + core) / 2
	return Metrics{
		Edge: edge / radius,
		Core: core / radius,
		Peak: law.Alpha(law.Influence(0, radius), threshold, glow),
		Halo: law.Alpha(law.Influence(mid, radius), threshold, glow),
	}
}

// FitnessEvaluator scores candidate law constants against a target.
type FitnessEvaluator struct {
	params    *ParamVector
	base      field.Law
	start     []float64 // normalized starting point
	target    Target
	radii     []float64
	threshold float64
	glow      float64

	mu          sync.Mutex
	lastMetrics Metrics
}

// NewFitnessEvaluator creates a new evaluator. Several radii are measured
// because the inverse-square law does not scale with the radius.
func NewFitnessEvaluator(params *ParamVector, base field.Law, target Target, radii []float64, threshold, glow float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:    params,
		base:      base,
		start:     params.Normalize(params.Extract(base)),
		target:    target,
		radii:     radii,
		threshold: threshold,
		glow:      glow,
	}
}

// LastMetrics returns the metrics of the first radius from the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate returns the squared error of raw parameter values (lower is better).
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	law := fe.params.Apply(fe.base, raw)
	if err := law.Validate(); err != nil {
		return invalidPenalty
	}

	var loss float64
	var first Metrics
	for i, r := range fe.radii {
		m := Measure(law, r, fe.threshold, fe.glow)
		if i == 0 {
			first = m
		}
		loss += sq(m.Edge-fe.target.Edge) + sq(m.Core-fe.target.Core) +
			sq(m.Peak-fe.target.Peak) + sq(m.Halo-fe.target.Halo)
	}
	if len(fe.radii) > 0 {
		loss /= float64(len(fe.radii))
	}

	norm := fe.params.Normalize(fe.params.Clamp(raw))
	for i, v := range norm {
		loss += regularization * sq(v-fe.start[i])
	}

	fe.mu.Lock()
	fe.lastMetrics = first
	fe.mu.Unlock()

	if math.IsNaN(loss) {
		return invalidPenalty
	}
	return loss
}

func sq(x float64) float64 { return x * x }
