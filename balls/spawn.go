package balls

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/metaballs/components"
	"github.com/pthm-cable/metaballs/field"
)

// goldenAngle spreads successive hues evenly around the wheel.
const goldenAngle = 137.508

// SpawnRanges bounds the randomized properties of spawned balls.
type SpawnRanges struct {
	Radius   [2]float64
	Speed    [2]float64 // orbit speed magnitude, rad/tick
	SatValue [2]float64 // saturation and value lower/upper bound
}

// Spawner builds specs for click-to-spawn balls.
type Spawner struct {
	rng    *rand.Rand
	ranges SpawnRanges
	hue    float64
}

// NewSpawner creates a spawner with its own random source.
func NewSpawner(seed int64, ranges SpawnRanges) *Spawner {
	rng := rand.New(rand.NewSource(seed))
	return &Spawner{
		rng:    rng,
		ranges: ranges,
		hue:    rng.Float64() * 360,
	}
}

// At returns a spec for a ball dropped at (x, y), already on the orbit through
// that point around (cx, cy).
func (sp *Spawner) At(x, y, cx, cy float64) Spec {
	r := sp.ranges
	orbit := components.Orbit{Speed: sp.between(r.Speed)}
	if sp.rng.Intn(2) == 0 {
		orbit.Speed = -orbit.Speed
	}
	orbit.Rebase(x, y, cx, cy)

	return Spec{
		X:      x,
		Y:      y,
		Radius: sp.between(r.Radius),
		Phase:  sp.rng.Float64() * 2 * math.Pi,
		Color:  sp.nextColor(),
		Orbit:  orbit,
	}
}

func (sp *Spawner) nextColor() field.Color {
	sp.hue = math.Mod(sp.hue+goldenAngle, 360)
	sat := sp.between(sp.ranges.SatValue)
	val := sp.between(sp.ranges.SatValue)
	return FromColorful(colorful.Hsv(sp.hue, sat, val).Clamped())
}

func (sp *Spawner) between(r [2]float64) float64 {
	lo, hi := r[0], r[1]
	if hi <= lo {
		return lo
	}
	return lo + sp.rng.Float64()*(hi-lo)
}

// FromColorful converts a go-colorful colour to the field's RGB triple.
func FromColorful(c colorful.Color) field.Color {
	return field.Color{R: c.R, G: c.G, B: c.B}
}
