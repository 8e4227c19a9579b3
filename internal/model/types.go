// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Default settings values.
const (
	DefaultMaxConsecutiveChars = 11
	DefaultFnKeyCode           = 0x1D
	DefaultFadeInMs            = 500
	DefaultFadeOutMs           = 500
	DefaultDisplayDelayMs      = 1500
)

// GuestUser is the reserved profile that always exists and is never deleted.
const GuestUser = "guest"

// KeyCounts maps a canonical key name to the number of presses.
type KeyCounts map[string]int

// Clone returns an independent copy of the counts.
func (c KeyCounts) Clone() KeyCounts {
	out := make(KeyCounts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// DisplayFlags toggles overlay rendering per key category. Counting ignores them.
type DisplayFlags struct {
	Normal    bool `json:"display_normal"`
	Modifiers bool `json:"display_modifiers"`
	Function  bool `json:"display_function"`
	Numpad    bool `json:"display_numpad"`
}

// Settings holds the per-user overlay and key handling options.
type Settings struct {
	MaxConsecutiveChars int `json:"max_consecutive_chars"`
	FnKeyCode           int `json:"fn_key_code"`
	FadeInMs            int `json:"fade_in"`
	FadeOutMs           int `json:"fade_out"`
	DisplayDelayMs      int `json:"display_delay"`
	DisplayFlags
}

// DefaultSettings returns the settings used for new profiles.
func DefaultSettings() Settings {
	return Settings{
		MaxConsecutiveChars: DefaultMaxConsecutiveChars,
		FnKeyCode:           DefaultFnKeyCode,
		FadeInMs:            DefaultFadeInMs,
		FadeOutMs:           DefaultFadeOutMs,
		DisplayDelayMs:      DefaultDisplayDelayMs,
		DisplayFlags: DisplayFlags{
			Normal:    true,
			Modifiers: true,
			Function:  true,
			Numpad:    true,
		},
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if s.MaxConsecutiveChars <= 0 {
		return fmt.Errorf("max_consecutive_chars must be > 0")
	}
	if s.FadeInMs < 0 {
		return fmt.Errorf("fade_in must be >= 0")
	}
	if s.FadeOutMs < 0 {
		return fmt.Errorf("fade_out must be >= 0")
	}
	if s.DisplayDelayMs < 0 {
		return fmt.Errorf("display_delay must be >= 0")
	}
	return nil
}

// FadeIn returns the fade-in duration.
func (s Settings) FadeIn() time.Duration { return time.Duration(s.FadeInMs) * time.Millisecond }

// FadeOut returns the fade-out duration.
func (s Settings) FadeOut() time.Duration { return time.Duration(s.FadeOutMs) * time.Millisecond }

// DisplayDelay returns the inactivity delay before the overlay fades out.
func (s Settings) DisplayDelay() time.Duration {
	return time.Duration(s.DisplayDelayMs) * time.Millisecond
}

// Profile is the persisted per-user document.
type Profile struct {
	Username  string    `json:"username"`
	KeyCounts KeyCounts `json:"key_counts"`
	Settings  Settings  `json:"settings"`
	Style     string    `json:"style"`
	Styles    []string  `json:"styles"`
	Fonts     []string  `json:"fonts"`
}

// NewProfile returns an empty profile with default settings.
func NewProfile(username string) Profile {
	return Profile{
		Username:  username,
		KeyCounts: KeyCounts{},
		Settings:  DefaultSettings(),
		Styles:    []string{},
		Fonts:     []string{},
	}
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	User        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Keys        string
}

// DayAggregate summarizes one day of key history.
type DayAggregate struct {
	Day      string
	Total    int
	Distinct int
}

// KeyAggregate sums presses of one key across days.
type KeyAggregate struct {
	Key   string
	Count int
}
