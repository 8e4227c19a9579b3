// Package statsui is the interactive key history viewer.
package statsui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/store"
)

const (
	tabOverview = iota
	tabKeyTable
	tabKeyCurves
)

const (
	plotHeight   = 10
	defaultTopN  = 5
	overviewTopN = 10
)

// DefaultRefreshInterval is how often an open viewer reloads the history.
const DefaultRefreshInterval = 5 * time.Second

type refreshMsg struct{}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store   *store.Store
	cfg     model.StatsConfig
	refresh time.Duration
	now     func() time.Time

	report   stats.Report
	loadErr  string
	curveErr string
	loadedAt time.Time

	bindings keyMap
	help     help.Model

	tabs      []string
	tab       int
	panes     []viewport.Model
	table     table.Model
	tableSize tableLayout

	width  int
	height int

	form   filterForm
	picker keyPicker

	// selected feeds the Key Curves tab. Unless pinned it follows the
	// most pressed keys of the report.
	selected []string
	pinned   bool
	perDay   map[string]map[string]int
}

// NewModel builds the viewer for cfg. A positive refresh reloads the history
// on that interval so counts flushed by a running overlay show up.
func NewModel(st *store.Store, cfg model.StatsConfig, refresh time.Duration) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		refresh:  refresh,
		now:      time.Now,
		bindings: newKeyMap(),
		help:     help.New(),
		tabs:     []string{"Overview", "Key Table", "Key Curves"},
		form:     newFilterForm(),
		picker:   newKeyPicker(),
		table:    newKeyTable(),
	}
	m.selected = stats.ParseKeyList(cfg.Keys)
	m.pinned = len(m.selected) > 0
	m.panes = make([]viewport.Model, len(m.tabs))
	for i := range m.panes {
		m.panes[i] = viewport.New(0, 0)
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		m.fillPanes()
		return m, nil
	case refreshMsg:
		// The report stays put while a form is open.
		if !m.form.active && !m.picker.active {
			m.reload()
		}
		return m, m.scheduleRefresh()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.form.active:
			return m.updateForm(msg)
		case m.picker.active:
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.bindings.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.bindings.Prev):
		m.switchTab(-1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.bindings.Next):
		m.switchTab(1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.bindings.Wider):
		m.setCurveWindow(nextCurveWindow(m.cfg.CurveWindow))
	case key.Matches(msg, m.bindings.Narrower):
		m.setCurveWindow(prevCurveWindow(m.cfg.CurveWindow))
	case key.Matches(msg, m.bindings.Reload):
		m.reload()
	case key.Matches(msg, m.bindings.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.bindings.Filter):
		return m, m.form.open(m.cfg)
	case key.Matches(msg, m.bindings.EditKeys):
		return m, m.picker.open(m.selected)
	case key.Matches(msg, m.bindings.Top):
		if m.tab == tabKeyTable {
			m.table.GotoTop()
		} else {
			m.panes[m.tab].GotoTop()
		}
	case key.Matches(msg, m.bindings.Bottom):
		if m.tab == tabKeyTable {
			m.table.GotoBottom()
		} else {
			m.panes[m.tab].GotoBottom()
		}
	default:
		var cmd tea.Cmd
		if m.tab == tabKeyTable {
			m.table, cmd = m.table.Update(msg)
		} else {
			m.panes[m.tab], cmd = m.panes[m.tab].Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) switchTab(delta int) {
	count := len(m.tabs)
	m.tab = (m.tab + delta + count) % count
	m.bindings.EditKeys.SetEnabled(m.tab == tabKeyCurves)
	if m.tab == tabKeyTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) setCurveWindow(n int) {
	m.cfg.CurveWindow = n
	m.reload()
	m.resize()
}

// reload rebuilds the report from the history store and refreshes every tab.
func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.loadErr = err.Error()
		m.fillPanes()
		return
	}
	m.loadErr = ""
	m.report = report
	m.loadedAt = m.now()
	if !m.pinned {
		m.selected = stats.TopKeysByCount(report.KeyAggsAll, defaultTopN)
	}
	m.loadCurves()
	m.fillTable()
	m.fillPanes()
}

func (m *Model) loadCurves() {
	m.curveErr = ""
	m.perDay = nil
	if len(m.report.WindowDays) == 0 || len(m.selected) == 0 {
		return
	}
	perDay, err := m.store.ListKeyCountsForDays(context.Background(), m.cfg.User, m.report.WindowDays, m.selected)
	if err != nil {
		m.curveErr = err.Error()
		return
	}
	m.perDay = perDay
}

// pick pins names as the curve selection; an empty list unpins it.
func (m *Model) pick(names []string) {
	if len(names) == 0 {
		m.pinned = false
		m.selected = stats.TopKeysByCount(m.report.KeyAggsAll, defaultTopN)
		return
	}
	m.pinned = true
	m.selected = names
}

func (m *Model) fillPanes() {
	if m.loadErr != "" {
		for i := range m.panes {
			m.panes[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.contentWidth()
	m.panes[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.panes[tabKeyCurves].SetContent(renderKeyCurves(m.report.WindowDays, m.selected, m.perDay, m.cfg.CurveWindow, width, m.curveErr))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}
