// Package shader holds the GPU metaballs program and packs ball state into its
// uniforms. Packing is pure so it can be tested without a GL context.
package shader

import (
	_ "embed"

	"github.com/pthm-cable/metaballs/balls"
	"github.com/pthm-cable/metaballs/field"
)

// MaxBalls is the number of ball slots compiled into the fragment shader.
// It must match MAX_BALLS in metaballs.fs.
const MaxBalls = 16

// FragmentSource is the GLSL 330 fragment shader. It writes premultiplied colour.
//
//go:embed metaballs.fs
var FragmentSource string

// VertexSource is the matching pass-through vertex shader.
//
//go:embed metaballs.vs
var VertexSource string

// Uniform names shared by Pack and the renderer.
const (
	UniformResolution = "resolution"
	UniformBallCount  = "ballCount"
	UniformBalls      = "balls"
	UniformColors     = "colors"
	UniformPhases     = "phases"
)

// Params are the per-frame inputs that are not ball state.
type Params struct {
	Width, Height float64 // logical surface size
	Scale         float64 // buffer pixels per logical pixel
	Threshold     float64
	Glow          float64
	Time          float64
	Pulse         bool
}

// Scalar is one float uniform.
type Scalar struct {
	Name  string
	Value float32
}

// Uniforms is the packed state for one draw.
type Uniforms struct {
	Resolution [2]float32
	BallCount  int
	Balls      [MaxBalls * 3]float32 // x, y, radius; y measured from the bottom edge
	Colors     [MaxBalls * 3]float32
	Phases     [MaxBalls]float32
	Scalars    []Scalar
}

// ScalarNames lists the float uniforms in the order Pack emits them.
var ScalarNames = []string{
	"scale",
	"time",
	UniformBallCount,
	"threshold",
	"glow",
	"falloffModel",
	"extent",
	"thresholdScale",
	"coreEdge",
	"coreWidth",
	"coreWeight",
	"haloWeight",
	"brightnessExp",
	"glowScale",
	"alphaCap",
	"pulseAmount",
}

// Pack converts a ball snapshot into uniform values. The Y axis is flipped
// (height - y) because fragment coordinates start at the bottom edge. Balls
// past MaxBalls are dropped and unused slots stay zero.
func Pack(bs []balls.Ball, law field.Law, p Params) Uniforms {
	var u Uniforms
	u.Resolution = [2]float32{float32(p.Width), float32(p.Height)}

	n := min(len(bs), MaxBalls)
	u.BallCount = n
	for i, b := range bs[:n] {
		u.Balls[i*3] = float32(b.X)
		u.Balls[i*3+1] = float32(p.Height - b.Y)
		u.Balls[i*3+2] = float32(b.Radius)
		u.Colors[i*3] = float32(b.Color.R)
		u.Colors[i*3+1] = float32(b.Color.G)
		u.Colors[i*3+2] = float32(b.Color.B)
		u.Phases[i] = float32(b.Phase)
	}

	scale := p.Scale
	if !(scale > 0) {
		scale = 1
	}
	pulse := 0.0
	if p.Pulse {
		pulse = law.PulseAmount
	}
	values := []float64{
		scale,
		p.Time,
		float64(n),
		p.Threshold,
		p.Glow,
		float64(law.Model),
		law.Extent,
		law.Scale(),
		law.CoreEdge,
		law.CoreWidth,
		law.CoreWeight,
		law.HaloWeight,
		law.BrightnessExponent,
		law.GlowScale,
		law.AlphaCap,
		pulse,
	}
	u.Scalars = make([]Scalar, len(values))
	for i, v := range values {
		u.Scalars[i] = Scalar{Name: ScalarNames[i], Value: float32(v)}
	}
	return u
}

// Scalar returns the value of the named float uniform.
func (u *Uniforms) Scalar(name string) (float32, bool) {
	for _, s := range u.Scalars {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}
