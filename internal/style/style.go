// Package style manages overlay styles.
package style

import (
	"strings"

	"github.com/verte-zerg/keycast/internal/chord"
)

// DefaultID is the built-in style used when none is chosen.
const DefaultID = "default_simple"

// Style describes how the overlay looks.
type Style struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	KeyDisplay      map[string]string `json:"key_display"`
	Font            string            `json:"font"`
	FontSize        int               `json:"font_size"`
	BackgroundColor string            `json:"background_color"`
	TextColor       string            `json:"text_color"`
	Padding         int               `json:"padding"`
	BorderRadius    int               `json:"border_radius"`
	Fonts           []string          `json:"fonts,omitempty"`
}

// Default returns the built-in compact style.
func Default() Style {
	return Style{
		ID:          DefaultID,
		Name:        "Default simple",
		Description: "Shows modifiers, space and caps lock as compact symbols",
		KeyDisplay: map[string]string{
			"ctrl":      "⌃",
			"alt":       "⌥",
			"shift":     "⇧",
			"win":       "⊞",
			"cmd":       "⌘",
			"space":     "␣",
			"caps_lock": "⇪",
			"tab":       "⇥",
			"enter":     "↵",
			"backspace": "⌫",
			"esc":       "⎋",
			"up":        "↑",
			"down":      "↓",
			"left":      "←",
			"right":     "→",
		},
		Font:            "Noto Sans TC Regular",
		FontSize:        36,
		BackgroundColor: "#000000CC",
		TextColor:       "#FFFFFF",
		Padding:         20,
		BorderRadius:    10,
	}
}

// Plain returns a style without glyph substitution.
func Plain() Style {
	s := Default()
	s.ID = "plain"
	s.Name = "Plain"
	s.Description = "Shows canonical key names as typed"
	s.KeyDisplay = map[string]string{}
	return s
}

// Glyph returns the display form of a canonical key name.
func (s Style) Glyph(name string) string {
	if g, ok := s.KeyDisplay[name]; ok && g != "" {
		return g
	}
	return name
}

// Decorate renders an accumulator output with the style's glyphs. Phrases
// are shown as typed.
func (s Style) Decorate(out chord.Output) string {
	switch out.Kind {
	case chord.OutputModifiers, chord.OutputChord:
		parts := make([]string, 0, len(out.Modifiers)+1)
		for _, m := range out.Modifiers {
			parts = append(parts, s.Glyph(m))
		}
		if out.Kind == chord.OutputChord {
			parts = append(parts, s.Glyph(out.Key))
		}
		return strings.Join(parts, "+")
	case chord.OutputPhrase:
		return out.Text
	default:
		return ""
	}
}
