// Package tui provides the Bubble Tea key overlay.
//
// The Bubble Tea loop is the only goroutine that touches the accumulator and
// the display machine. Hook events reach it through waitForEvent, timers
// through tick messages.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/chord"
	"github.com/verte-zerg/keycast/internal/hook"
	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/overlay"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/style"
)

// DefaultFlushInterval is how often counts are persisted while running.
const DefaultFlushInterval = 30 * time.Second

// Options wires the overlay to its collaborators.
type Options struct {
	User          string
	Settings      model.Settings
	Style         style.Style
	Aggregator    *stats.Aggregator
	Source        hook.Source
	Normalizer    *keys.Normalizer
	Log           logrus.FieldLogger
	FlushInterval time.Duration
}

type hookStartedMsg struct{ ch <-chan keys.Event }

type hookFailedMsg struct{ err error }

type keyEventMsg struct {
	ev keys.Event
	ch <-chan keys.Event
}

type sourceClosedMsg struct{ ch <-chan keys.Event }

type idleMsg struct{ gen uint64 }

type frameMsg struct{}

type flushMsg struct{}

type flushDoneMsg struct{ err error }

// Model implements the overlay UI.
type Model struct {
	opts     Options
	log      logrus.FieldLogger
	acc      *chord.Accumulator
	machine  *overlay.Machine
	renderer *overlay.Renderer
	now      func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	events  <-chan keys.Event
	paused  bool
	hookErr error

	idleGen uint64
	framing bool

	width   int
	height  int
	lastKey string
	closed  bool
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs the overlay model.
func NewModel(opts Options) *Model {
	if opts.Normalizer == nil {
		opts.Normalizer = keys.NewNormalizer(opts.Settings.FnKeyCode)
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		opts:     opts,
		log:      log.WithField("user", opts.User),
		acc:      chord.New(opts.Settings.MaxConsecutiveChars),
		machine:  overlay.NewMachine(overlay.TimingFrom(opts.Settings)),
		renderer: overlay.NewRenderer(opts.Style),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startHook(), m.flushTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderer.SetMaxWidth(msg.Width - 8)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case hookStartedMsg:
		m.events = msg.ch
		m.hookErr = nil
		return m, waitForEvent(msg.ch)
	case hookFailedMsg:
		m.hookErr = msg.err
		m.log.WithError(msg.err).Error("keyboard hook unavailable, listening disabled")
		return m, nil
	case keyEventMsg:
		if msg.ch != m.events {
			return m, nil
		}
		cmd := m.handleEvent(msg.ev)
		return m, tea.Batch(waitForEvent(msg.ch), cmd)
	case sourceClosedMsg:
		if msg.ch == m.events {
			m.events = nil
			if !m.paused && !m.closed {
				m.log.Warn("keyboard hook stopped")
			}
		}
		return m, nil
	case idleMsg:
		if msg.gen == m.idleGen {
			m.acc.Expire()
		}
		return m, nil
	case frameMsg:
		m.machine.Advance(m.now())
		if m.machine.Active() {
			return m, frameTick()
		}
		m.framing = false
		return m, nil
	case flushMsg:
		return m, tea.Batch(m.flushCmd(), m.flushTick())
	case flushDoneMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("periodic flush failed")
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.closed {
		return ""
	}
	box := m.renderer.Render(m.machine.Text(), m.machine.Opacity(m.now()))
	header := titleStyle.Render("keycast") + footerStyle.Render(" · "+m.opts.User+" · "+m.statusText())
	footer := m.renderFooter()
	if m.width == 0 || m.height < 4 {
		return strings.Join([]string{header, box, footer}, "\n")
	}
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, box)
	return header + "\n" + body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

// Close stops listening, flushes counts and hides the overlay. It is safe to
// call more than once.
func (m *Model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.stopHook()
	m.cancel()
	m.machine.Clear(m.now())
	if m.opts.Aggregator == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.opts.Aggregator.Flush(ctx)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if err := m.Close(); err != nil {
			m.log.WithError(err).Error("failed to flush stats on quit")
		}
		return m, tea.Quit
	case "p":
		if m.hookErr != nil {
			return m, nil
		}
		m.paused = !m.paused
		if m.paused {
			m.stopHook()
			m.acc.Clear()
			m.machine.Clear(m.now())
			return m, nil
		}
		return m, m.startHook()
	case "x":
		m.apply(m.acc.Clear(), m.now())
		return m, nil
	default:
		return m, nil
	}
}

// handleEvent counts every key-down, then feeds displayable keys to the
// accumulator and the display machine.
func (m *Model) handleEvent(ev keys.Event) tea.Cmd {
	name := m.opts.Normalizer.Normalize(ev.Key)
	now := m.now()
	if ev.Press {
		m.lastKey = name
		if m.opts.Aggregator != nil {
			m.opts.Aggregator.Record(name)
		}
	}
	if !keys.Allows(m.opts.Settings.DisplayFlags, name) {
		return nil
	}
	var out chord.Output
	if ev.Press {
		out = m.acc.Press(name, now)
	} else {
		out = m.acc.Release(name)
	}
	m.apply(out, now)

	m.idleGen++
	return tea.Batch(idleTimer(m.idleGen), m.ensureFrames())
}

func (m *Model) apply(out chord.Output, now time.Time) {
	switch out.Kind {
	case chord.OutputNone:
	case chord.OutputClear:
		m.machine.Clear(now)
	default:
		m.machine.Show(m.opts.Style.Decorate(out), now)
	}
}

func (m *Model) ensureFrames() tea.Cmd {
	if m.framing || !m.machine.Active() {
		return nil
	}
	m.framing = true
	return frameTick()
}

func (m *Model) startHook() tea.Cmd {
	src := m.opts.Source
	if src == nil {
		return func() tea.Msg { return hookFailedMsg{err: fmt.Errorf("no keyboard hook configured")} }
	}
	ctx := m.ctx
	return func() tea.Msg {
		ch, err := src.Start(ctx)
		if err != nil {
			return hookFailedMsg{err: err}
		}
		return hookStartedMsg{ch: ch}
	}
}

func (m *Model) stopHook() {
	if m.opts.Source == nil || m.events == nil {
		return
	}
	m.events = nil
	if err := m.opts.Source.Stop(); err != nil {
		m.log.WithError(err).Warn("failed to stop keyboard hook")
	}
}

func (m *Model) flushCmd() tea.Cmd {
	agg := m.opts.Aggregator
	if agg == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return flushDoneMsg{err: agg.Flush(ctx)}
	}
}

func (m *Model) flushTick() tea.Cmd {
	return tea.Tick(m.opts.FlushInterval, func(time.Time) tea.Msg { return flushMsg{} })
}

func (m *Model) statusText() string {
	switch {
	case m.hookErr != nil:
		return warnStyle.Render("listening disabled: " + m.hookErr.Error())
	case m.paused:
		return "paused"
	case m.events == nil:
		return "starting"
	default:
		return "listening"
	}
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.opts.Aggregator != nil {
		presses, distinct := m.opts.Aggregator.Totals()
		segments = append(segments, fmt.Sprintf("Presses %d", presses), fmt.Sprintf("Keys %d", distinct))
	}
	if m.lastKey != "" {
		segments = append(segments, "Last "+m.lastKey)
	}
	segments = append(segments, "q quit · p pause · x clear")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func waitForEvent(ch <-chan keys.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return sourceClosedMsg{ch: ch}
		}
		return keyEventMsg{ev: ev, ch: ch}
	}
}

func idleTimer(gen uint64) tea.Cmd {
	return tea.Tick(chord.QuietThreshold, func(time.Time) tea.Msg { return idleMsg{gen: gen} })
}

func frameTick() tea.Cmd {
	return tea.Tick(overlay.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}
