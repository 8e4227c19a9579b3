package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// RenderSummary prints totals over the reported days.
func RenderSummary(w io.Writer, days []model.DayAggregate, aggs []model.KeyAggregate) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "No key history found.")
		return err
	}
	total := 0
	busiest := days[0]
	series := make([]float64, len(days))
	for i, d := range days {
		total += d.Total
		if d.Total > busiest.Total {
			busiest = d
		}
		series[i] = float64(d.Total)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Days: %d (%s to %s)", len(days), days[0].Day, days[len(days)-1].Day),
		fmt.Sprintf("Presses: %d", total),
		fmt.Sprintf("Distinct keys: %d", len(aggs)),
		fmt.Sprintf("Avg per day: %.1f", float64(total)/float64(len(days))),
		fmt.Sprintf("Busiest day: %s (%d)", busiest.Day, busiest.Total),
		fmt.Sprintf("Trend: [%s]", Sparkline(series)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderKeyTable prints per-key totals, most pressed first.
func RenderKeyTable(w io.Writer, aggs []model.KeyAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Key (Windowed)"); err != nil {
		return err
	}
	_, rows := KeyTableRows(aggs)
	for _, line := range layoutTable(keyTableColumns, rows, maxKeyCell) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// KeyTableRows returns the header and formatted rows of the key table.
func KeyTableRows(aggs []model.KeyAggregate) ([]string, [][]string) {
	sorted := SortByCount(aggs)
	total := 0
	for _, a := range sorted {
		total += a.Count
	}
	rows := make([][]string, 0, len(sorted))
	for _, a := range sorted {
		share := 0.0
		if total > 0 {
			share = float64(a.Count) / float64(total) * 100
		}
		rows = append(rows, []string{
			a.Key,
			keys.CategoryOf(a.Key).String(),
			fmt.Sprintf("%d", a.Count),
			fmt.Sprintf("%.2f%%", share),
		})
	}
	headers := make([]string, len(keyTableColumns))
	for i, c := range keyTableColumns {
		headers[i] = c.title
	}
	return headers, rows
}

// RenderDailyCurves prints daily presses and distinct keys.
func RenderDailyCurves(w io.Writer, days []model.DayAggregate, window, totalWidth, height int, useColor bool) error {
	if len(days) == 0 {
		return nil
	}
	totals := make([]float64, len(days))
	distinct := make([]float64, len(days))
	for i, d := range days {
		totals[i] = float64(d.Total)
		distinct[i] = float64(d.Distinct)
	}
	return PlotSeries(w, "Daily Presses", []Series{
		{Name: "Presses", Values: MovingAverage(totals, window)},
		{Name: "Distinct keys", Values: MovingAverage(distinct, window)},
	}, plotWidth(totalWidth), height, useColor)
}

// RenderKeyCurves prints one daily curve per selected key.
func RenderKeyCurves(w io.Writer, days []string, perDay map[string]map[string]int, selected []string, window, totalWidth, height int, useColor bool) error {
	if len(selected) == 0 || len(days) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Key Curves"); err != nil {
		return err
	}
	for _, key := range selected {
		values := make([]float64, len(days))
		for i, d := range days {
			values[i] = float64(perDay[d][key])
		}
		if err := PlotSeries(w, fmt.Sprintf("Key %s", key), []Series{
			{Name: "Presses", Values: MovingAverage(values, window)},
		}, plotWidth(totalWidth), height, useColor); err != nil {
			return err
		}
	}
	return nil
}

// RenderTopKeys prints a bar chart of the n most pressed keys.
func RenderTopKeys(w io.Writer, aggs []model.KeyAggregate, n, width int) error {
	top := SortByCount(aggs)
	if n > 0 && len(top) > n {
		top = top[:n]
	}
	if len(top) == 0 {
		return nil
	}
	labels := make([]string, len(top))
	values := make([]int, len(top))
	for i, a := range top {
		labels[i] = a.Key
		values[i] = a.Count
	}
	if _, err := fmt.Fprintf(w, "Top %d Keys\n", len(top)); err != nil {
		return err
	}
	if err := BarChart(w, labels, values, width); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func plotWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return 0
	}
	return PlotWidthFor(totalWidth)
}
