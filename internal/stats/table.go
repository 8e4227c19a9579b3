package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxKeyCell caps the width of a key name cell; special_<code> names and
// imported glyphs can be long.
const maxKeyCell = 24

type column struct {
	title string
	right bool
}

var keyTableColumns = []column{
	{title: "Key"},
	{title: "Category"},
	{title: "Presses", right: true},
	{title: "Share", right: true},
}

// layoutTable pads each cell to its column width. Cells wider than maxCell
// are cut with an ellipsis; zero disables the cap.
func layoutTable(cols []column, rows [][]string, maxCell int) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	cells = append(cells, header)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i := range cols {
			if i < len(row) {
				line[i] = clipCell(row[i], maxCell)
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, len(cells))
	for n, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i > 0 {
				b.WriteByte(' ')
			}
			if cols[i].right {
				b.WriteString(runewidth.FillLeft(cell, widths[i]))
			} else {
				b.WriteString(runewidth.FillRight(cell, widths[i]))
			}
		}
		out[n] = b.String()
	}
	return out
}

func clipCell(s string, maxCell int) string {
	if maxCell <= 0 || runewidth.StringWidth(s) <= maxCell {
		return s
	}
	return runewidth.Truncate(s, maxCell, "…")
}
