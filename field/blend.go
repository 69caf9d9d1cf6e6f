package field

// Color is a normalized RGB triple.
type Color struct {
	R, G, B float64
}

// Sample is one ball's contribution at a point.
type Sample struct {
	Color Color
	Field float64
}

// Accumulator sums field-weighted colour over the balls at one sample point.
// The zero value is ready to use.
type Accumulator struct {
	r, g, b float64
	total   float64
}

// Add records a contribution. Non-positive fields are ignored.
func (a *Accumulator) Add(c Color, f float64) {
	if !(f > 0) {
		return
	}
	a.r += c.R * f
	a.g += c.G * f
	a.b += c.B * f
	a.total += f
}

// Total returns the summed field.
func (a *Accumulator) Total() float64 {
	return a.total
}

// Mix returns the field-weighted average colour. ok is false when the total
// field is below Epsilon, in which case no colour is defined.
func (a *Accumulator) Mix() (Color, bool) {
	if a.total <= Epsilon {
		return Color{}, false
	}
	inv := 1 / a.total
	return Color{R: a.r * inv, G: a.g * inv, B: a.b * inv}, true
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Blend mixes samples by field weight. The hue depends only on the relative
// weights, so adding more balls changes intensity, not colour.
func Blend(samples []Sample) (Color, float64, bool) {
	var acc Accumulator
	for _, s := range samples {
		acc.Add(s.Color, s.Field)
	}
	c, ok := acc.Mix()
	return c, acc.Total(), ok
}
