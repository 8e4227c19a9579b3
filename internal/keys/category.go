package keys

import (
	"strings"

	"github.com/verte-zerg/keycast/internal/model"
)

// Category groups keys for display suppression.
type Category int

const (
	Normal Category = iota
	Modifier
	Function
	Numpad
)

func (c Category) String() string {
	switch c {
	case Modifier:
		return "modifier"
	case Function:
		return "function"
	case Numpad:
		return "numpad"
	default:
		return "normal"
	}
}

// IsModifier reports whether name is one of ctrl, alt, shift, win or fn.
func IsModifier(name string) bool {
	switch name {
	case Ctrl, Alt, Shift, Win, Fn:
		return true
	}
	return false
}

// CategoryOf returns the display category of a canonical name.
func CategoryOf(name string) Category {
	switch {
	case IsModifier(name):
		return Modifier
	case isFunctionKey(name):
		return Function
	case name == "num_lock" || strings.HasPrefix(name, "num_"):
		return Numpad
	default:
		return Normal
	}
}

func isFunctionKey(name string) bool {
	if len(name) < 2 || len(name) > 3 || name[0] != 'f' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// Allows reports whether flags permit rendering name.
func Allows(flags model.DisplayFlags, name string) bool {
	switch CategoryOf(name) {
	case Modifier:
		return flags.Modifiers
	case Function:
		return flags.Function
	case Numpad:
		return flags.Numpad
	default:
		return flags.Normal
	}
}
