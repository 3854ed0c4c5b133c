// Package scene holds the discrete visual mode selector. A scene does
// not draw anything itself; it re-parameterizes the subsystems that
// do, currently by weighting how band energy maps onto laser
// intensity.
package scene

import (
	"math/rand"

	"github.com/comangin/vjing/internal/analyzer"
)

// Count is the number of distinct scenes.
const Count = 4

const (
	transitionChance = 0.33
	sceneDuration    = 90 // ticks the scene timer is set to on transition
	beatExtension    = 40 // minimum timer after any beat
)

// Machine cycles through scenes on beats. Transitions are
// probabilistic so the visuals stay varied instead of metronomic.
type Machine struct {
	index int
	timer int
	rng   *rand.Rand
}

// New creates a Machine using the given random source.
func New(rng *rand.Rand) *Machine {
	return &Machine{rng: rng}
}

// Update advances the machine one tick. On a beat the machine moves
// to the next scene with a fixed probability and the scene timer is
// extended either way.
func (m *Machine) Update(beat bool) {
	if beat {
		if m.rng.Float64() < transitionChance {
			m.index = (m.index + 1) % Count
			m.timer = sceneDuration
		}
		if m.timer < beatExtension {
			m.timer = beatExtension
		}
	}
	if m.timer > 0 {
		m.timer--
	}
}

// Advance forces a transition to the next scene (hotkey/remote
// control path).
func (m *Machine) Advance() {
	m.index = (m.index + 1) % Count
	m.timer = sceneDuration
}

// Index returns the current scene index.
func (m *Machine) Index() int { return m.index }

// TimerTicks returns the remaining scene-duration timer.
func (m *Machine) TimerTicks() int { return m.timer }

// LaserGain maps smoothed band energy onto the laser visibility
// multiplier for the current scene. Each scene weights a different
// band so the moods read visually distinct.
func (m *Machine) LaserGain(bands analyzer.Bands) float64 {
	switch m.index {
	case 0:
		return 1.0 + bands.Low*1.6
	case 1:
		return 1.6 + bands.Low*2.2
	case 2:
		return 0.6 + bands.Mid*2.6
	default:
		return 1.2 + bands.High*2.0
	}
}
