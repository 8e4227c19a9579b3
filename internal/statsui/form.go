package statsui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/store"
)

const (
	fieldUser = iota
	fieldSince
	fieldLast
	fieldWindow
)

var (
	errNoUser    = errors.New("user is required")
	errBadSince  = errors.New("invalid since date (expected YYYY-MM-DD)")
	errBadLast   = errors.New("invalid last value (use 0 or positive integer)")
	errBadWindow = errors.New("invalid curve window (use integer >= 1)")
)

// filterForm edits the report filters in place of the tab body.
type filterForm struct {
	active bool
	inputs []textinput.Model
	focus  int
	err    string
}

func newFilterForm() filterForm {
	return filterForm{inputs: []textinput.Model{
		fieldUser:   newInput("User: "),
		fieldSince:  newInput("Since (YYYY-MM-DD): "),
		fieldLast:   newInput("Last days: "),
		fieldWindow: newInput("Curve window: "),
	}}
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *filterForm) open(cfg model.StatsConfig) tea.Cmd {
	f.active = true
	f.err = ""
	since, last := "", ""
	if cfg.Since != nil {
		since = cfg.Since.Format(store.DayLayout)
	}
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	f.inputs[fieldUser].SetValue(cfg.User)
	f.inputs[fieldSince].SetValue(since)
	f.inputs[fieldLast].SetValue(last)
	f.inputs[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	return f.focusField(fieldUser)
}

func (f *filterForm) close() {
	f.active = false
	f.err = ""
	f.inputs[f.focus].Blur()
}

func (f *filterForm) focusField(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *filterForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-lipgloss.Width(f.inputs[i].Prompt)-2)
	}
}

func (f *filterForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// apply returns cfg with the form values, or the first invalid field.
func (f *filterForm) apply(cfg model.StatsConfig) (model.StatsConfig, error) {
	user := f.value(fieldUser)
	if user == "" {
		return cfg, errNoUser
	}
	var since *time.Time
	if in := f.value(fieldSince); in != "" {
		parsed, err := time.ParseInLocation(store.DayLayout, in, time.Local)
		if err != nil {
			return cfg, errBadSince
		}
		since = &parsed
	}
	last := 0
	if in := f.value(fieldLast); in != "" {
		n, err := strconv.Atoi(in)
		if err != nil || n < 0 {
			return cfg, errBadLast
		}
		last = n
	}
	window := 1
	if in := f.value(fieldWindow); in != "" {
		n, err := strconv.Atoi(in)
		if err != nil || n < 1 {
			return cfg, errBadWindow
		}
		window = n
	}
	cfg.User = user
	cfg.Since = since
	cfg.Last = last
	cfg.CurveWindow = window
	return cfg, nil
}

func (f *filterForm) view() string {
	lines := make([]string, 0, len(f.inputs)+2)
	lines = append(lines, "Filters (enter to apply, esc to cancel)")
	for _, input := range f.inputs {
		lines = append(lines, input.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.form.close()
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.form.apply(m.cfg)
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		if cfg.User != m.cfg.User && !m.pinned {
			m.selected = nil
		}
		m.cfg = cfg
		m.form.close()
		m.reload()
		m.resize()
		return m, nil
	case tea.KeyTab:
		return m, m.form.focusField(m.form.focus + 1)
	case tea.KeyShiftTab:
		return m, m.form.focusField(m.form.focus - 1)
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

// keyPicker is the modal that edits the Key Curves selection.
type keyPicker struct {
	active bool
	input  textinput.Model
}

func newKeyPicker() keyPicker {
	input := newInput("Keys: ")
	input.Placeholder = "ctrl, space, e"
	return keyPicker{input: input}
}

func (p *keyPicker) open(selected []string) tea.Cmd {
	p.active = true
	p.input.SetValue(strings.Join(selected, ", "))
	return p.input.Focus()
}

func (p *keyPicker) close() {
	p.active = false
	p.input.Blur()
}

func (p *keyPicker) view(width, height int) string {
	body := strings.Join([]string{
		cardValueStyle.Render("Select Keys"),
		p.input.View(),
		mutedStyle.Render("Comma separated key names, e.g. ctrl, space, e."),
		mutedStyle.Render("Empty follows the most pressed keys."),
		mutedStyle.Render("Enter to apply / Esc to cancel"),
	}, "\n")
	box := modalStyle.Width(modalWidth(width)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.picker.close()
		return m, nil
	case tea.KeyEnter:
		m.pick(stats.ParseKeyList(m.picker.input.Value()))
		m.picker.close()
		m.loadCurves()
		m.fillPanes()
		return m, nil
	}
	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	return m, cmd
}
