// Package chord turns canonical key presses into overlay text.
//
// An Accumulator tracks held modifiers and a bounded phrase of plain typing.
// Held modifiers and the phrase never show together: with modifiers held a
// regular key produces a one-shot chord such as "ctrl+c", otherwise it is
// appended to the phrase.
package chord

import (
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/keycast/internal/keys"
)

// QuietThreshold is the pause after which a new key starts a fresh phrase.
const QuietThreshold = 1500 * time.Millisecond

// OutputKind says what an Output asks the overlay to do.
type OutputKind int

const (
	// OutputNone leaves the overlay untouched.
	OutputNone OutputKind = iota
	// OutputModifiers shows the held modifiers only.
	OutputModifiers
	// OutputChord shows held modifiers plus one key.
	OutputChord
	// OutputPhrase shows the phrase buffer.
	OutputPhrase
	// OutputClear hides the overlay immediately.
	OutputClear
)

// Output is the display string derived from the current state.
type Output struct {
	Kind      OutputKind
	Text      string
	Modifiers []string
	Key       string
}

// Accumulator holds the modifier set and phrase buffer.
type Accumulator struct {
	maxChars  int
	modifiers map[string]struct{}
	phrase    []rune
	last      time.Time
}

// New returns an Accumulator whose phrase holds at most maxChars runes.
func New(maxChars int) *Accumulator {
	if maxChars <= 0 {
		maxChars = 1
	}
	return &Accumulator{
		maxChars:  maxChars,
		modifiers: map[string]struct{}{},
	}
}

// SetMaxChars changes the phrase limit and truncates the current phrase.
func (a *Accumulator) SetMaxChars(n int) {
	if n <= 0 {
		n = 1
	}
	a.maxChars = n
	a.phrase = keepTail(a.phrase, n)
}

// Press handles a key-down of the canonical name.
func (a *Accumulator) Press(name string, now time.Time) Output {
	if name == "" {
		name = keys.Space
	}
	if !a.last.IsZero() && now.Sub(a.last) > QuietThreshold {
		a.reset()
	}
	a.last = now

	if keys.IsModifier(name) {
		if _, held := a.modifiers[name]; held {
			return Output{Kind: OutputNone}
		}
		a.modifiers[name] = struct{}{}
		// Modifiers and phrase are mutually exclusive on screen.
		a.phrase = a.phrase[:0]
		return a.modifiersOutput()
	}

	if len(a.modifiers) == 0 {
		a.phrase = keepTail(append(a.phrase, []rune(name)...), a.maxChars)
		return Output{Kind: OutputPhrase, Text: string(a.phrase), Key: name}
	}
	mods := a.Modifiers()
	return Output{
		Kind:      OutputChord,
		Text:      strings.Join(mods, "+") + "+" + name,
		Modifiers: mods,
		Key:       name,
	}
}

// Release handles a key-up of the canonical name.
func (a *Accumulator) Release(name string) Output {
	if name == "" {
		name = keys.Space
	}
	if _, held := a.modifiers[name]; !held {
		if keys.IsModifier(name) || len(a.modifiers) == 0 {
			return Output{Kind: OutputNone}
		}
		// The chord key went up; fall back to the held modifiers.
		return a.modifiersOutput()
	}
	delete(a.modifiers, name)
	if len(a.modifiers) == 0 {
		return a.Clear()
	}
	return a.modifiersOutput()
}

// Expire resets state after the inactivity timer fires. The overlay keeps its
// text and fades out on its own delay.
func (a *Accumulator) Expire() {
	a.reset()
}

// Clear resets state and asks the overlay to hide.
func (a *Accumulator) Clear() Output {
	a.reset()
	return Output{Kind: OutputClear}
}

// Phrase returns the current phrase buffer.
func (a *Accumulator) Phrase() string {
	return string(a.phrase)
}

// Modifiers returns the held modifiers in sorted order.
func (a *Accumulator) Modifiers() []string {
	out := make([]string, 0, len(a.modifiers))
	for m := range a.modifiers {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (a *Accumulator) modifiersOutput() Output {
	mods := a.Modifiers()
	return Output{
		Kind:      OutputModifiers,
		Text:      strings.Join(mods, "+"),
		Modifiers: mods,
	}
}

func (a *Accumulator) reset() {
	a.phrase = a.phrase[:0]
	for m := range a.modifiers {
		delete(a.modifiers, m)
	}
}

func keepTail(r []rune, n int) []rune {
	if len(r) <= n {
		return r
	}
	out := make([]rune, n)
	copy(out, r[len(r)-n:])
	return out
}
