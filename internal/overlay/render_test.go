package overlay

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/keycast/internal/style"
)

func TestTruncateLeftKeepsTail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", TruncateLeft("hello", 10))
	assert.Equal(t, "…orld", TruncateLeft("hello world", 5))
	assert.Equal(t, "", TruncateLeft("abc", 0))

	got := TruncateLeft("日本語テキスト", 6)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 6)
	assert.True(t, strings.HasSuffix(got, "スト"))
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	r := NewRenderer(style.Default())
	assert.Empty(t, r.Render("", 1))
	assert.Empty(t, r.Render("abc", 0))
}

func TestRenderContainsText(t *testing.T) {
	t.Parallel()

	r := NewRenderer(style.Plain())
	out := r.Render("ctrl+c", 1)
	assert.Contains(t, out, "ctrl+c")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 2, "box has top and bottom borders")
}

func TestRenderRespectsMaxWidth(t *testing.T) {
	t.Parallel()

	r := NewRenderer(style.Plain())
	r.SetMaxWidth(8)
	out := r.Render(strings.Repeat("x", 40)+"end", 1)
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "end")
}

func TestParseColorDropsAlpha(t *testing.T) {
	t.Parallel()

	c := parseColor("#FF000080", colorful.Color{})
	assert.Equal(t, "#ff0000", c.Hex())

	fallback := colorful.Color{R: 1, G: 1, B: 1}
	assert.Equal(t, fallback, parseColor("nope", fallback))
}

func TestCells(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, cells(0))
	assert.Equal(t, 1, cells(5))
	assert.Equal(t, 2, cells(20))
}
