package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycast/internal/model"
)

var (
	t0     = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	timing = Timing{FadeIn: 200 * time.Millisecond, FadeOut: 300 * time.Millisecond, DisplayDelay: time.Second}
)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestFullCycle(t *testing.T) {
	t.Parallel()

	m := NewMachine(timing)
	require.Equal(t, Hidden, m.State())
	assert.False(t, m.Active())

	m.Show("a", at(0))
	assert.Equal(t, FadingIn, m.State())
	assert.InDelta(t, 0, m.Opacity(at(0)), 1e-9)
	assert.InDelta(t, 0.5, m.Opacity(at(100)), 1e-9)

	m.Advance(at(199))
	assert.Equal(t, FadingIn, m.State())
	m.Advance(at(200))
	assert.Equal(t, Visible, m.State())
	assert.InDelta(t, 1, m.Opacity(at(200)), 1e-9)

	m.Advance(at(999))
	assert.Equal(t, Visible, m.State())
	m.Advance(at(1000))
	assert.Equal(t, FadingOut, m.State())
	assert.InDelta(t, 0.5, m.Opacity(at(1150)), 1e-9)

	m.Advance(at(1300))
	assert.Equal(t, Hidden, m.State())
	assert.Empty(t, m.Text())
}

func TestShowWhileVisibleResetsCountdownOnly(t *testing.T) {
	t.Parallel()

	m := NewMachine(timing)
	m.Show("a", at(0))
	m.Advance(at(300))
	require.Equal(t, Visible, m.State())

	m.Show("ab", at(900))
	assert.Equal(t, Visible, m.State())
	assert.Equal(t, "ab", m.Text())

	m.Advance(at(1500))
	assert.Equal(t, Visible, m.State(), "countdown restarted at 900ms")
	m.Advance(at(1900))
	assert.Equal(t, FadingOut, m.State())
}

func TestShowWhileFadingInKeepsRamp(t *testing.T) {
	t.Parallel()

	m := NewMachine(timing)
	m.Show("a", at(0))
	m.Show("ab", at(100))
	assert.Equal(t, FadingIn, m.State())
	assert.InDelta(t, 0.5, m.Opacity(at(100)), 1e-9)
	m.Advance(at(200))
	assert.Equal(t, Visible, m.State())
}

func TestShowWhileFadingOutReverses(t *testing.T) {
	t.Parallel()

	m := NewMachine(timing)
	m.Show("a", at(0))
	m.Advance(at(1000))
	require.Equal(t, FadingOut, m.State())

	opacity := m.Opacity(at(1150))
	m.Show("b", at(1150))
	assert.Equal(t, FadingIn, m.State())
	assert.InDelta(t, opacity, m.Opacity(at(1150)), 1e-9)
	m.Advance(at(1250))
	assert.Equal(t, Visible, m.State())
}

func TestClearFromAnyState(t *testing.T) {
	t.Parallel()

	for _, target := range []State{FadingIn, Visible, FadingOut} {
		m := NewMachine(timing)
		m.Show("x", at(0))
		switch target {
		case Visible:
			m.Advance(at(500))
		case FadingOut:
			m.Advance(at(1100))
		}
		require.Equal(t, target, m.State())
		m.Clear(at(1200))
		assert.Equal(t, Hidden, m.State(), target.String())
		assert.Empty(t, m.Text())
		assert.Zero(t, m.Opacity(at(1200)))
	}
}

func TestEmptyShowClears(t *testing.T) {
	t.Parallel()

	m := NewMachine(timing)
	m.Show("x", at(0))
	m.Show("", at(10))
	assert.Equal(t, Hidden, m.State())
}

func TestAdvanceSkipsSeveralStates(t *testing.T) {
	t.Parallel()

	m := NewMachine(timing)
	m.Show("x", at(0))
	m.Advance(at(5000))
	assert.Equal(t, Hidden, m.State())
}

func TestZeroDurations(t *testing.T) {
	t.Parallel()

	m := NewMachine(Timing{})
	m.Show("x", at(0))
	assert.InDelta(t, 1, m.Opacity(at(0)), 1e-9)
	m.Advance(at(0))
	assert.Equal(t, Hidden, m.State())
}

func TestTimingFromSettings(t *testing.T) {
	t.Parallel()

	got := TimingFrom(model.DefaultSettings())
	assert.Equal(t, Timing{
		FadeIn:       500 * time.Millisecond,
		FadeOut:      500 * time.Millisecond,
		DisplayDelay: 1500 * time.Millisecond,
	}, got)
}
