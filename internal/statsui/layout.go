package statsui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/stats"
)

// keyTableWidths follows the Key, Category, Presses and Share columns.
var keyTableWidths = []int{14, 10, 9, 8}

type tableLayout struct {
	width  int
	height int
	rows   int
}

func keyTableData(aggs []model.KeyAggregate) ([]table.Column, []table.Row) {
	headers, data := stats.KeyTableRows(aggs)
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: keyTableWidths[i]}
	}
	rows := make([]table.Row, len(data))
	for i, r := range data {
		rows[i] = table.Row(r)
	}
	return cols, rows
}

func newKeyTable() table.Model {
	cols, _ := keyTableData(nil)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(subtle).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	t := table.New(table.WithColumns(cols), table.WithHeight(1))
	t.SetStyles(styles)
	return t
}

func (m *Model) fillTable() {
	cols, rows := keyTableData(m.report.KeyAggsWindow)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.tableSize = tableLayout{rows: len(rows)}
	_, body, _ := m.heights()
	m.sizeTable(m.contentWidth(), body)
}

// sizeTable fits the table into width x height, header border included.
func (m *Model) sizeTable(width, height int) {
	rows := max(1, height-1)
	if m.tableSize.width == width && m.tableSize.height == rows {
		return
	}
	m.tableSize.width = width
	m.tableSize.height = rows
	m.table.SetWidth(width)
	m.table.SetHeight(rows)
	if extra := lipgloss.Height(m.table.View()) - max(1, height); extra > 0 {
		m.tableSize.height = max(1, rows-extra)
		m.table.SetHeight(m.tableSize.height)
	}
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body, _ := m.heights()
	for i := range m.panes {
		m.panes[i].Width = m.width
		m.panes[i].Height = body
	}
	m.sizeTable(m.width, body)
	m.form.setWidth(m.width)
	m.picker.input.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.picker.input.Prompt))
}

// Curve windows step through 1, 5, 10, 15 and so on.
func nextCurveWindow(n int) int {
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	switch {
	case n <= 5:
		return 1
	case n%5 == 0:
		return n - 5
	default:
		return n / 5 * 5
	}
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

// modalInnerWidth drops the modal border and padding.
func modalInnerWidth(width int) int {
	return max(10, modalWidth(width)-6)
}

// fitLines pads or cuts s to exactly height lines of width cells.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}
