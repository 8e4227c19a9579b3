package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycast/internal/model"
)

func TestNormalizeModifierVariants(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(model.DefaultFnKeyCode)
	tests := map[string]string{
		"ctrl_l":       Ctrl,
		"ctrl_r":       Ctrl,
		"KEY_LEFTCTRL": Ctrl,
		"alt_r":        Alt,
		"KEY_RIGHTALT": Alt,
		"shift_l":      Shift,
		"cmd":          Win,
		"cmd_r":        Win,
		"KEY_LEFTMETA": Win,
		"space":        Space,
		"KEY_SPACE":    Space,
		" ":            Space,
	}
	for sym, want := range tests {
		assert.Equal(t, want, n.Normalize(RawKey{Name: sym, Codeset: CodesetNative}), sym)
	}
}

func TestNormalizeVirtualKeys(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(model.DefaultFnKeyCode)
	tests := []struct {
		code int
		want string
	}{
		{65, "a"},
		{90, "z"},
		{48, "0"},
		{57, "9"},
		{186, ";"},
		{222, "'"},
		{13, "enter"},
		{27, "esc"},
		{33, "page_up"},
		{162, Ctrl},
		{165, Alt},
		{91, Win},
		{112, "f1"},
		{123, "f12"},
		{96, "num_0"},
		{144, "num_lock"},
		{0x1D, Fn},
		{255, "special_255"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(RawKey{Code: tt.code}), "code %d", tt.code)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(model.DefaultFnKeyCode)
	for code := 48; code <= 90; code++ {
		raw := RawKey{Code: code}
		first := n.Normalize(raw)
		require.Equal(t, first, n.Normalize(raw), "code %d", code)
	}
}

func TestNormalizeSymbolWinsOverFnCode(t *testing.T) {
	t.Parallel()

	// evdev reports KEY_LEFTCTRL as 29, which equals the default Fn code.
	n := NewNormalizer(29)
	assert.Equal(t, Ctrl, n.Normalize(RawKey{Code: 29, Name: "KEY_LEFTCTRL", Codeset: CodesetNative}))
	assert.Equal(t, Fn, n.Normalize(RawKey{Code: 29, Codeset: CodesetNative}))
}

func TestNormalizeNativeCodesFallBack(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	assert.Equal(t, "special_65", n.Normalize(RawKey{Code: 65, Codeset: CodesetNative}))
	assert.Equal(t, "special_0", n.Normalize(RawKey{}))
}

func TestNormalizePrintableSymbols(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(0)
	assert.Equal(t, "a", n.Normalize(RawKey{Name: "A", Codeset: CodesetNative}))
	assert.Equal(t, "a", n.Normalize(RawKey{Name: "KEY_A", Codeset: CodesetNative}))
	assert.Equal(t, ";", n.Normalize(RawKey{Name: "KEY_SEMICOLON", Codeset: CodesetNative}))
	assert.Equal(t, "num_7", n.Normalize(RawKey{Name: "KEY_KP7", Codeset: CodesetNative}))
	assert.Equal(t, "f5", n.Normalize(RawKey{Name: "KEY_F5", Codeset: CodesetNative}))
}

func TestCategoryAndAllows(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Modifier, CategoryOf("shift"))
	assert.Equal(t, Function, CategoryOf("f11"))
	assert.Equal(t, Normal, CategoryOf("f"))
	assert.Equal(t, Normal, CategoryOf("fn5x"))
	assert.Equal(t, Numpad, CategoryOf("num_3"))
	assert.Equal(t, Numpad, CategoryOf("num_lock"))
	assert.Equal(t, Normal, CategoryOf("space"))

	flags := model.DefaultSettings().DisplayFlags
	flags.Function = false
	assert.False(t, Allows(flags, "f1"))
	assert.True(t, Allows(flags, "a"))
	flags.Modifiers = false
	assert.False(t, Allows(flags, "ctrl"))
}
