package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisLabelWidth    = 6
	axisSeparator     = " ┤ "
	fallbackTermWidth = 80
	barRune           = "█"
)

var seriesColors = []color.Attribute{
	color.FgCyan,
	color.FgMagenta,
	color.FgYellow,
	color.FgGreen,
	color.FgBlue,
}

// PlotWidthFor returns the plot area width that fits in totalWidth cells.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	w := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if w < minPlotWidth {
		return minPlotWidth
	}
	return w
}

// PlotSeries draws series as braille lines sharing one zero-based y axis.
// A zero width fits the terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	top := 0.0
	for _, s := range kept {
		for _, v := range s.Values {
			top = math.Max(top, v)
		}
	}
	if top == 0 {
		top = 1
	}

	cv := newCanvas(width, height)
	for si, s := range kept {
		points := resample(s.Values, width)
		px, py := -1, -1
		for x, v := range points {
			dotX := x * 2
			dotY := int(math.Round((1 - v/top) * float64(cv.dotRows()-1)))
			if px < 0 {
				cv.set(dotX, dotY, si)
			} else {
				cv.line(px, py, dotX, dotY, si)
			}
			px, py = dotX, dotY
		}
	}

	useColor := colorEnabled(w, forceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = compact(top)
		case height / 2:
			if height > 2 {
				label = compact(top / 2)
			}
		case height - 1:
			label = "0"
		}
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", axisLabelWidth, label, axisSeparator))
		for x := 0; x < width; x++ {
			ch, owner := cv.cell(x, y)
			row.WriteString(paint(owner, string(ch), useColor))
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	legend := make([]string, 0, len(kept))
	for i, s := range kept {
		legend = append(legend, paint(i, "⣿ "+s.Name, useColor))
	}
	if _, err := fmt.Fprintf(w, "%*s   %s\n\n", axisLabelWidth, "", strings.Join(legend, "  ")); err != nil {
		return err
	}
	return nil
}

// BarChart draws one horizontal bar per label, scaled to the largest value.
func BarChart(w io.Writer, labels []string, values []int, width int) error {
	if len(labels) == 0 || len(labels) != len(values) {
		return nil
	}
	if width <= 0 {
		width = 40
	}
	labelWidth := 0
	maxVal := 0
	for i, l := range labels {
		if lw := runewidth.StringWidth(l); lw > labelWidth {
			labelWidth = lw
		}
		if values[i] > maxVal {
			maxVal = values[i]
		}
	}
	for i, l := range labels {
		n := 0
		if maxVal > 0 {
			n = int(math.Round(float64(values[i]) / float64(maxVal) * float64(width)))
		}
		if n == 0 && values[i] > 0 {
			n = 1
		}
		pad := strings.Repeat(" ", labelWidth-runewidth.StringWidth(l))
		if _, err := fmt.Fprintf(w, "%s%s %s %d\n", pad, l, strings.Repeat(barRune, n), values[i]); err != nil {
			return err
		}
	}
	return nil
}

// canvas is a grid of braille cells, two dots wide and four dots tall each.
type canvas struct {
	width  int
	height int
	masks  [][]uint8
	owners [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.masks = make([][]uint8, height)
	c.owners = make([][]int, height)
	for y := range c.masks {
		c.masks[y] = make([]uint8, width)
		c.owners[y] = make([]int, width)
		for x := range c.owners[y] {
			c.owners[y][x] = -1
		}
	}
	return c
}

func (c *canvas) dotRows() int { return c.height * 4 }

// braille dot bits indexed by [row][column] inside a cell.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func (c *canvas) set(x, y, owner int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= c.width || cy >= c.height {
		return
	}
	c.masks[cy][cx] |= dotBits[y%4][x%2]
	if c.owners[cy][cx] < 0 {
		c.owners[cy][cx] = owner
	}
}

// line plots a Bresenham line between two dots.
func (c *canvas) line(x0, y0, x1, y1, owner int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, owner)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *canvas) cell(x, y int) (rune, int) {
	return rune(0x2800 + int(c.masks[y][x])), c.owners[y][x]
}

// resample stretches or averages values to exactly n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == n:
		copy(out, values)
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) > n:
		for i := range out {
			lo := i * len(values) / n
			hi := (i + 1) * len(values) / n
			if hi <= lo {
				hi = lo + 1
			}
			sum := 0.0
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
	default:
		step := float64(len(values)-1) / float64(n-1)
		for i := range out {
			pos := float64(i) * step
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func paint(idx int, s string, useColor bool) string {
	if !useColor || idx < 0 {
		return s
	}
	c := color.New(seriesColors[idx%len(seriesColors)])
	c.EnableColor()
	return c.Sprint(s)
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

func compact(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
