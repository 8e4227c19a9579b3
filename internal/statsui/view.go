package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/store"
)

var (
	accent = lipgloss.Color("#C89A3A")
	subtle = lipgloss.Color("#4A4A4A")

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(accent)
	inactiveTabStyle = activeTabStyle.
				Bold(false).
				Foreground(lipgloss.Color("#B0B0B0")).
				BorderForeground(subtle)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(subtle)
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(accent).
			Padding(1, 2)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.picker.active {
		return fitLines(m.picker.view(m.width, m.height), m.width, m.height)
	}
	head, body, foot := m.heights()
	return strings.Join([]string{
		fitLines(m.headerView(), m.width, head),
		fitLines(m.bodyView(), m.width, body),
		fitLines(m.footerView(), m.width, foot),
	}, "\n")
}

func (m *Model) heights() (head, body, foot int) {
	head = max(1, lipgloss.Height(activeTabStyle.Render("X"))) + 1
	foot = lipgloss.Height(m.footerView())
	body = max(1, m.height-head-foot)
	return head, body, foot
}

func (m *Model) headerView() string {
	tabs := make([]string, len(m.tabs))
	for i, name := range m.tabs {
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n" + m.filterSummary()
}

func (m *Model) filterSummary() string {
	since, last := "any", "all"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(store.DayLayout)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	line := fmt.Sprintf("user=%s  since=%s  last=%s  window=%d", m.cfg.User, since, last, m.cfg.CurveWindow)
	if !m.loadedAt.IsZero() {
		line += "  updated " + m.loadedAt.Format("15:04:05")
	}
	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, "...")
	}
	return mutedStyle.Render(line)
}

func (m *Model) footerView() string {
	if m.form.active {
		return mutedStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	out := m.help.View(m.bindings)
	if m.loadErr != "" {
		out += "\n" + errorStyle.Render(m.loadErr)
	}
	return out
}

func (m *Model) bodyView() string {
	switch {
	case m.form.active:
		return m.form.view()
	case m.tab != tabKeyTable:
		return m.panes[m.tab].View()
	case len(m.report.Days) == 0:
		return "No key history found."
	case len(m.report.KeyAggsWindow) == 0:
		return "No key stats found."
	default:
		return tableTextStyle.Render(m.table.View())
	}
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Days) == 0 {
		return "No key history found."
	}
	var buf bytes.Buffer
	if err := stats.RenderDailyCurves(&buf, report.Days, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	if err := stats.RenderTopKeys(&buf, report.KeyAggsAll, overviewTopN, stats.PlotWidthFor(width)); err != nil {
		return fmt.Sprintf("Failed to render top keys: %v", err)
	}
	return strings.TrimRight(summaryCards(report, width)+"\n\n"+buf.String(), "\n")
}

func summaryCards(report stats.Report, width int) string {
	total := 0
	busiest := report.Days[0]
	for _, d := range report.Days {
		total += d.Total
		if d.Total > busiest.Total {
			busiest = d
		}
	}
	cards := []string{
		card("Presses", strconv.Itoa(total)),
		card("Distinct Keys", strconv.Itoa(len(report.KeyAggsAll))),
		card("Modifiers", fmt.Sprintf("%.1f%%", modifierShare(report.KeyAggsAll))),
		card("Days", strconv.Itoa(len(report.Days))),
		card("Avg / Day", fmt.Sprintf("%.1f", float64(total)/float64(len(report.Days)))),
		card("Busiest Day", fmt.Sprintf("%s (%d)", busiest.Day, busiest.Total)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
	)
}

func card(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

// modifierShare is the percentage of presses that were modifier keys.
func modifierShare(aggs []model.KeyAggregate) float64 {
	total, mods := 0, 0
	for _, a := range aggs {
		total += a.Count
		if keys.IsModifier(a.Key) {
			mods += a.Count
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(mods) / float64(total)
}

func renderKeyCurves(days, selected []string, perDay map[string]map[string]int, window, width int, loadErr string) string {
	switch {
	case len(days) == 0:
		return "No key history found."
	case loadErr != "":
		return "Failed to load key curves: " + loadErr
	case len(selected) == 0:
		return "No keys selected. Press Enter to set keys."
	}
	var buf bytes.Buffer
	if err := stats.RenderKeyCurves(&buf, days, perDay, selected, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render key curves: %v", err)
	}
	header := mutedStyle.Render("Keys: " + strings.Join(selected, ", "))
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}
