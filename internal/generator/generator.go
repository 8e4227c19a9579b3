// Package generator builds keystroke scripts for the demo hook backend.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Stroke is one key combination: every key is pressed in order and released
// in reverse order.
type Stroke []string

// DefaultShortcuts are typed between words when a script names none.
var DefaultShortcuts = []Stroke{
	{"ctrl", "c"},
	{"ctrl", "v"},
	{"ctrl", "s"},
	{"ctrl", "z"},
	{"ctrl", "shift", "t"},
	{"alt", "tab"},
	{"win", "e"},
}

var shifted = map[rune]string{
	'!': "1", '@': "2", '#': "3", '$': "4", '%': "5", '^': "6", '&': "7", '*': "8",
	'(': "9", ')': "0", '_': "-", '+': "=", '{': "[", '}': "]", '|': "\\", ':': ";",
	'"': "'", '<': ",", '>': ".", '?': "/", '~': "`",
}

// Generator produces randomized demo input.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Words selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Words(words []string, count int, capsPct, punctPct float64, punctSet []rune) []string {
	if len(words) == 0 {
		return nil
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		result = append(result, word)
	}
	return result
}

// Script turns count random words into strokes, separated by spaces and
// occasionally interrupted by one of shortcuts.
func (g *Generator) Script(words []string, shortcuts []Stroke, count int, shortcutPct float64) []Stroke {
	if len(shortcuts) == 0 {
		shortcuts = DefaultShortcuts
	}
	var out []Stroke
	for i, word := range g.Words(words, count, 0.2, 0.1, []rune(".,!?")) {
		if i > 0 {
			out = append(out, Stroke{"space"})
		}
		out = append(out, TextStrokes(word)...)
		if shortcutPct > 0 && g.rnd.Float64() < shortcutPct {
			out = append(out, shortcuts[g.rnd.Intn(len(shortcuts))])
		}
	}
	return out
}

// TextStrokes types text on a US layout. Runes without a key are skipped.
func TextStrokes(text string) []Stroke {
	out := make([]Stroke, 0, len(text))
	for _, r := range text {
		switch {
		case r == ' ':
			out = append(out, Stroke{"space"})
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			out = append(out, Stroke{"shift", strings.ToLower(string(r))})
		case shifted[r] != "":
			out = append(out, Stroke{"shift", shifted[r]})
		case r > ' ' && r < unicode.MaxASCII:
			out = append(out, Stroke{string(r)})
		}
	}
	return out
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
