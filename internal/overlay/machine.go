// Package overlay drives the visibility of the key overlay.
//
// Machine is a clock-free state machine: every method takes the current time
// and callers advance it with frame ticks. It never starts timers itself.
package overlay

import (
	"time"

	"github.com/verte-zerg/keycast/internal/model"
)

// FrameInterval is the tick rate used while the overlay is animating or visible.
const FrameInterval = 33 * time.Millisecond

// State is the overlay visibility state.
type State int

const (
	Hidden State = iota
	FadingIn
	Visible
	FadingOut
)

func (s State) String() string {
	switch s {
	case FadingIn:
		return "fading-in"
	case Visible:
		return "visible"
	case FadingOut:
		return "fading-out"
	default:
		return "hidden"
	}
}

// Timing holds the ramp durations and the inactivity delay.
type Timing struct {
	FadeIn       time.Duration
	FadeOut      time.Duration
	DisplayDelay time.Duration
}

// TimingFrom builds a Timing from user settings.
func TimingFrom(s model.Settings) Timing {
	return Timing{
		FadeIn:       s.FadeIn(),
		FadeOut:      s.FadeOut(),
		DisplayDelay: s.DisplayDelay(),
	}
}

// Machine tracks overlay state, text and ramps.
type Machine struct {
	timing Timing
	state  State
	text   string

	rampStart time.Time
	rampFrom  float64
	activity  time.Time
}

// NewMachine returns a hidden overlay machine.
func NewMachine(t Timing) *Machine {
	return &Machine{timing: t}
}

// SetTiming replaces the durations. Running ramps use the new values.
func (m *Machine) SetTiming(t Timing) {
	m.timing = t
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Text returns the displayed text.
func (m *Machine) Text() string { return m.text }

// Active reports whether the overlay needs frame ticks.
func (m *Machine) Active() bool { return m.state != Hidden }

// Show displays text and resets the inactivity countdown.
func (m *Machine) Show(text string, now time.Time) {
	if text == "" {
		m.Clear(now)
		return
	}
	switch m.state {
	case Hidden:
		m.startFadeIn(0, now)
	case FadingOut:
		m.startFadeIn(m.Opacity(now), now)
	}
	m.text = text
	m.activity = now
}

// Clear hides the overlay immediately from any state.
func (m *Machine) Clear(_ time.Time) {
	m.state = Hidden
	m.text = ""
	m.rampFrom = 0
	m.rampStart = time.Time{}
}

// Advance applies every automatic transition due at now.
func (m *Machine) Advance(now time.Time) {
	for {
		switch m.state {
		case FadingIn:
			done := m.rampStart.Add(m.scaledFadeIn())
			if now.Before(done) {
				return
			}
			m.state = Visible
		case Visible:
			fadeAt := m.activity.Add(m.timing.DisplayDelay)
			if now.Before(fadeAt) {
				return
			}
			m.state = FadingOut
			m.rampStart = fadeAt
			m.rampFrom = 1
		case FadingOut:
			done := m.rampStart.Add(m.timing.FadeOut)
			if now.Before(done) {
				return
			}
			m.Clear(now)
			return
		default:
			return
		}
	}
}

// Opacity returns the overlay opacity at now, in [0, 1].
func (m *Machine) Opacity(now time.Time) float64 {
	switch m.state {
	case FadingIn:
		p := progress(now.Sub(m.rampStart), m.scaledFadeIn())
		return m.rampFrom + (1-m.rampFrom)*easeInOutQuad(p)
	case Visible:
		return 1
	case FadingOut:
		p := progress(now.Sub(m.rampStart), m.timing.FadeOut)
		return m.rampFrom * (1 - easeInOutQuad(p))
	default:
		return 0
	}
}

func (m *Machine) startFadeIn(from float64, now time.Time) {
	m.state = FadingIn
	m.rampFrom = from
	m.rampStart = now
}

// scaledFadeIn shortens the ramp when it resumes from a partial opacity.
func (m *Machine) scaledFadeIn() time.Duration {
	return time.Duration(float64(m.timing.FadeIn) * (1 - m.rampFrom))
}

func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - (-2*t+2)*(-2*t+2)/2
}
