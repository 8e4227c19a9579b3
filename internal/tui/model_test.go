package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/overlay"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/style"
)

type fakeSource struct {
	ch    chan keys.Event
	err   error
	stops int
}

func (f *fakeSource) Start(context.Context) (<-chan keys.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ch = make(chan keys.Event, 8)
	return f.ch, nil
}

func (f *fakeSource) Stop() error {
	f.stops++
	return nil
}

type fakePersister struct {
	saved []model.KeyCounts
}

func (f *fakePersister) SaveCounts(_ string, counts model.KeyCounts) error {
	f.saved = append(f.saved, counts.Clone())
	return nil
}

type harness struct {
	m     *Model
	src   *fakeSource
	saved *fakePersister
	ch    <-chan keys.Event
	clock time.Time
}

func newHarness(t *testing.T, settings model.Settings) *harness {
	t.Helper()

	logger, _ := test.NewNullLogger()
	src := &fakeSource{}
	saved := &fakePersister{}
	agg := stats.NewAggregator("alice", model.KeyCounts{}, saved, logger)
	m := NewModel(Options{
		User:       "alice",
		Settings:   settings,
		Style:      style.Default(),
		Aggregator: agg,
		Source:     src,
		Log:        logger,
	})
	h := &harness{m: m, src: src, saved: saved, clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m.now = func() time.Time { return h.clock }

	ch, err := src.Start(context.Background())
	require.NoError(t, err)
	h.ch = ch
	m.Update(hookStartedMsg{ch: ch})
	return h
}

func (h *harness) press(name string) {
	h.m.Update(keyEventMsg{ev: keys.Event{Key: keys.RawKey{Name: name}, Press: true}, ch: h.ch})
}

func (h *harness) release(name string) {
	h.m.Update(keyEventMsg{ev: keys.Event{Key: keys.RawKey{Name: name}}, ch: h.ch})
}

func TestChordUsesStyleGlyphs(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	h.press("ctrl")
	assert.Equal(t, "⌃", h.m.machine.Text())
	h.press("c")
	assert.Equal(t, "⌃+c", h.m.machine.Text())
	assert.Equal(t, overlay.FadingIn, h.m.machine.State())

	h.release("c")
	assert.Equal(t, "⌃", h.m.machine.Text())
	h.release("ctrl")
	assert.Equal(t, overlay.Hidden, h.m.machine.State())

	assert.Equal(t, model.KeyCounts{"ctrl": 1, "c": 1}, h.m.opts.Aggregator.Snapshot())
}

func TestPhraseAccumulates(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	for _, k := range []string{"h", "i"} {
		h.press(k)
		h.release(k)
	}
	assert.Equal(t, "hi", h.m.machine.Text())
	assert.Equal(t, "i", h.m.lastKey)
}

func TestSuppressedKeysStillCount(t *testing.T) {
	t.Parallel()

	settings := model.DefaultSettings()
	settings.Normal = false
	h := newHarness(t, settings)

	h.press("a")
	h.release("a")
	assert.Equal(t, overlay.Hidden, h.m.machine.State())
	assert.Equal(t, "", h.m.acc.Phrase())
	assert.Equal(t, model.KeyCounts{"a": 1}, h.m.opts.Aggregator.Snapshot())
}

func TestStaleIdleTimerIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	h.press("a")
	h.press("b")
	require.Equal(t, "ab", h.m.acc.Phrase())

	h.m.Update(idleMsg{gen: h.m.idleGen - 1})
	assert.Equal(t, "ab", h.m.acc.Phrase())

	h.m.Update(idleMsg{gen: h.m.idleGen})
	assert.Equal(t, "", h.m.acc.Phrase())
	assert.Equal(t, "ab", h.m.machine.Text(), "expiry leaves the overlay to fade on its own")
}

func TestStaleChannelEventsIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	old := make(chan keys.Event)
	h.m.Update(keyEventMsg{ev: keys.Event{Key: keys.RawKey{Name: "a"}, Press: true}, ch: old})

	assert.Empty(t, h.m.opts.Aggregator.Snapshot())
	assert.Equal(t, overlay.Hidden, h.m.machine.State())
}

func TestFramesStopWhenHidden(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	h.press("a")
	require.True(t, h.m.framing)

	h.clock = h.clock.Add(time.Minute)
	_, cmd := h.m.Update(frameMsg{})
	assert.Nil(t, cmd)
	assert.False(t, h.m.framing)
	assert.Equal(t, overlay.Hidden, h.m.machine.State())
}

func TestQuitFlushesAndStops(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	h.press("a")

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.Equal(t, 1, h.src.stops)
	assert.Equal(t, overlay.Hidden, h.m.machine.State())
	require.Len(t, h.saved.saved, 1)
	assert.Equal(t, model.KeyCounts{"a": 1}, h.saved.saved[0])
	assert.Equal(t, "", h.m.View())

	require.NoError(t, h.m.Close())
	assert.Equal(t, 1, h.src.stops)
}

func TestPauseStopsListening(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	h.press("a")

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Nil(t, cmd)
	assert.True(t, h.m.paused)
	assert.Equal(t, 1, h.src.stops)
	assert.Equal(t, overlay.Hidden, h.m.machine.State())
	assert.Contains(t, h.m.View(), "paused")

	_, cmd = h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, hookStartedMsg{}, msg)
	h.m.Update(msg)
	assert.False(t, h.m.paused)
	assert.Contains(t, h.m.View(), "listening")
}

func TestHookFailureDegrades(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	src := &fakeSource{err: errors.New("permission denied")}
	m := NewModel(Options{User: "guest", Settings: model.DefaultSettings(), Style: style.Default(), Source: src, Log: logger})

	msg := m.startHook()()
	m.Update(msg)

	assert.Contains(t, m.View(), "listening disabled")
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "keyboard hook unavailable")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Nil(t, cmd)
	assert.False(t, m.paused)
}

func TestRenderFooter(t *testing.T) {
	t.Parallel()

	h := newHarness(t, model.DefaultSettings())
	h.press("a")
	h.press("a")
	h.press("b")

	footer := h.m.renderFooter()
	for _, want := range []string{"Presses 3", "Keys 2", "Last b", "q quit"} {
		assert.True(t, strings.Contains(footer, want), "footer %q missing %q", footer, want)
	}
}
