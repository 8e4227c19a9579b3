package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keycast/internal/style"
)

const (
	// MinWidth and MaxWidth bound the overlay content width in cells.
	MinWidth = 4
	MaxWidth = 48

	ellipsis = "…"
)

// Renderer draws overlay text as a styled box.
type Renderer struct {
	style    style.Style
	bg       colorful.Color
	fg       colorful.Color
	maxWidth int
}

// NewRenderer returns a renderer for st.
func NewRenderer(st style.Style) *Renderer {
	r := &Renderer{maxWidth: MaxWidth}
	r.SetStyle(st)
	return r
}

// SetStyle switches the active style.
func (r *Renderer) SetStyle(st style.Style) {
	r.style = st
	r.bg = parseColor(st.BackgroundColor, colorful.Color{})
	r.fg = parseColor(st.TextColor, colorful.Color{R: 1, G: 1, B: 1})
}

// SetMaxWidth limits the content width, e.g. to the terminal width.
func (r *Renderer) SetMaxWidth(width int) {
	switch {
	case width <= 0 || width > MaxWidth:
		r.maxWidth = MaxWidth
	case width < MinWidth:
		r.maxWidth = MinWidth
	default:
		r.maxWidth = width
	}
}

// Render draws text at the given opacity. Empty text or zero opacity render
// nothing.
func (r *Renderer) Render(text string, opacity float64) string {
	if text == "" || opacity <= 0 {
		return ""
	}
	if opacity > 1 {
		opacity = 1
	}
	text = TruncateLeft(text, r.maxWidth)
	width := runewidth.StringWidth(text)
	if width < MinWidth {
		width = MinWidth
	}
	pad := cells(r.style.Padding)

	fg := r.bg.BlendRgb(r.fg, opacity).Clamped()
	box := lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg.Hex())).
		Background(lipgloss.Color(r.bg.Hex())).
		BorderForeground(lipgloss.Color(fg.Hex())).
		Border(borderFor(r.style.BorderRadius)).
		Padding(0, pad).
		Width(width + 2*pad).
		Align(lipgloss.Center).
		Bold(r.style.FontSize >= 24)
	return box.Render(text)
}

// TruncateLeft keeps the tail of s that fits in width cells, prefixed with an
// ellipsis when anything was dropped.
func TruncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	budget := width - runewidth.StringWidth(ellipsis)
	runes := []rune(s)
	used := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > budget {
			break
		}
		used += w
		start--
	}
	return ellipsis + string(runes[start:])
}

func borderFor(radius int) lipgloss.Border {
	if radius > 0 {
		return lipgloss.RoundedBorder()
	}
	return lipgloss.NormalBorder()
}

// cells converts a pixel padding to horizontal terminal cells.
func cells(px int) int {
	if px <= 0 {
		return 0
	}
	n := px / 10
	if n < 1 {
		n = 1
	}
	return n
}

// parseColor accepts #RGB, #RRGGBB and #RRGGBBAA. The alpha channel is
// dropped since terminals cannot blend.
func parseColor(s string, fallback colorful.Color) colorful.Color {
	s = strings.TrimSpace(s)
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}
