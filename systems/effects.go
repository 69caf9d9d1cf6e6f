// Package systems advances metaball motion each frame.
package systems

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEffect is returned when toggling an effect name that does not exist.
var ErrUnknownEffect = errors.New("unknown effect")

// Effect is one optional behaviour.
type Effect uint8

const (
	Gravity Effect = 1 << iota
	Collision
	Attract
	Repel
	Pulse
)

var effectNames = []struct {
	effect Effect
	name   string
}{
	{Gravity, "gravity"},
	{Collision, "collision"},
	{Attract, "attract"},
	{Repel, "repel"},
	{Pulse, "pulse"},
}

func (e Effect) String() string {
	for _, en := range effectNames {
		if en.effect == e {
			return en.name
		}
	}
	return fmt.Sprintf("Effect(%d)", uint8(e))
}

// ParseEffect looks up an effect by name (case-insensitive).
func ParseEffect(name string) (Effect, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, en := range effectNames {
		if en.name == n {
			return en.effect, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}

// Effects is the set of active effects.
type Effects uint8

// Has reports whether e is active.
func (s Effects) Has(e Effect) bool {
	return s&Effects(e) != 0
}

// Toggle flips e and returns its new state. Attract and repel exclude each other.
func (s *Effects) Toggle(e Effect) bool {
	if s.Has(e) {
		*s &^= Effects(e)
		return false
	}
	switch e {
	case Attract:
		*s &^= Effects(Repel)
	case Repel:
		*s &^= Effects(Attract)
	}
	*s |= Effects(e)
	return true
}

// Physics reports whether velocity-based motion replaces orbital motion.
func (s Effects) Physics() bool {
	return s.Has(Gravity) || s.Has(Collision) || s.Has(Attract) || s.Has(Repel)
}

// MouseSign returns +1 for attraction, -1 for repulsion and 0 when neither is on.
func (s Effects) MouseSign() float64 {
	switch {
	case s.Has(Attract):
		return 1
	case s.Has(Repel):
		return -1
	}
	return 0
}

// Names lists the active effects in declaration order.
func (s Effects) Names() []string {
	var names []string
	for _, en := range effectNames {
		if s.Has(en.effect) {
			names = append(names, en.name)
		}
	}
	return names
}
