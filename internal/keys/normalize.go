// Package keys maps raw keyboard codes to canonical key names.
package keys

import (
	"fmt"
	"strings"
	"time"
)

// Codeset identifies the numbering scheme of RawKey.Code.
type Codeset uint8

const (
	// CodesetVK marks Windows virtual-key codes, which have a static table.
	CodesetVK Codeset = iota
	// CodesetNative marks platform codes with no static table (evdev, uiohook).
	CodesetNative
)

// RawKey is a key as reported by a hook backend.
type RawKey struct {
	Code    int
	Name    string
	Codeset Codeset
}

// Event is a single press or release from a hook backend.
type Event struct {
	Key   RawKey
	Press bool
	Time  time.Time
}

// Modifier names.
const (
	Ctrl  = "ctrl"
	Alt   = "alt"
	Shift = "shift"
	Win   = "win"
	Fn    = "fn"
	Space = "space"
)

var modifierSymbols = map[string]string{
	"ctrl":       Ctrl,
	"ctrl_l":     Ctrl,
	"ctrl_r":     Ctrl,
	"control":    Ctrl,
	"lctrl":      Ctrl,
	"rctrl":      Ctrl,
	"leftctrl":   Ctrl,
	"rightctrl":  Ctrl,
	"alt":        Alt,
	"alt_l":      Alt,
	"alt_r":      Alt,
	"alt_gr":     Alt,
	"lalt":       Alt,
	"ralt":       Alt,
	"leftalt":    Alt,
	"rightalt":   Alt,
	"option":     Alt,
	"shift":      Shift,
	"shift_l":    Shift,
	"shift_r":    Shift,
	"lshift":     Shift,
	"rshift":     Shift,
	"leftshift":  Shift,
	"rightshift": Shift,
	"cmd":        Win,
	"cmd_l":      Win,
	"cmd_r":      Win,
	"lcmd":       Win,
	"rcmd":       Win,
	"command":    Win,
	"super":      Win,
	"meta":       Win,
	"leftmeta":   Win,
	"rightmeta":  Win,
	"win":        Win,
	"lwin":       Win,
	"rwin":       Win,
	"windows":    Win,
	"os":         Win,
	"fn":         Fn,
	"function":   Fn,
	"space":      Space,
	"spacebar":   Space,
	" ":          Space,
}

var namedSymbols = map[string]string{
	"enter":      "enter",
	"return":     "enter",
	"tab":        "tab",
	"esc":        "esc",
	"escape":     "esc",
	"backspace":  "backspace",
	"up":         "up",
	"down":       "down",
	"left":       "left",
	"right":      "right",
	"page_up":    "page_up",
	"pageup":     "page_up",
	"page_down":  "page_down",
	"pagedown":   "page_down",
	"home":       "home",
	"end":        "end",
	"insert":     "insert",
	"delete":     "delete",
	"caps_lock":  "caps_lock",
	"capslock":   "caps_lock",
	"capital":    "caps_lock",
	"pause":      "pause",
	"num_lock":   "num_lock",
	"numlock":    "num_lock",
	"kpenter":    "num_enter",
	"kpplus":     "num_+",
	"kpminus":    "num_-",
	"kpasterisk": "num_*",
	"kpslash":    "num_/",
	"kpdot":      "num_.",
	"semicolon":  ";",
	"equal":      "=",
	"comma":      ",",
	"minus":      "-",
	"dot":        ".",
	"period":     ".",
	"slash":      "/",
	"grave":      "`",
	"leftbrace":  "[",
	"rightbrace": "]",
	"backslash":  "\\",
	"apostrophe": "'",
}

// vkNames is the static virtual-key table. US layout only.
var vkNames = map[int]string{
	8: "backspace", 9: "tab", 13: "enter", 16: Shift, 17: Ctrl, 18: Alt,
	19: "pause", 20: "caps_lock", 27: "esc", 32: Space, 33: "page_up",
	34: "page_down", 35: "end", 36: "home", 37: "left", 38: "up", 39: "right",
	40: "down", 45: "insert", 46: "delete",
	91: Win, 92: Win,
	106: "num_*", 107: "num_+", 109: "num_-", 110: "num_.", 111: "num_/",
	144: "num_lock",
	160: Shift, 161: Shift, 162: Ctrl, 163: Ctrl, 164: Alt, 165: Alt,
	186: ";", 187: "=", 188: ",", 189: "-", 190: ".", 191: "/", 192: "`",
	219: "[", 220: "\\", 221: "]", 222: "'",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		vkNames[int(c-'a')+65] = string(c)
	}
	for d := 0; d <= 9; d++ {
		vkNames[48+d] = fmt.Sprintf("%d", d)
		vkNames[96+d] = fmt.Sprintf("num_%d", d)
		namedSymbols[fmt.Sprintf("kp%d", d)] = fmt.Sprintf("num_%d", d)
	}
	for f := 1; f <= 24; f++ {
		vkNames[111+f] = fmt.Sprintf("f%d", f)
		namedSymbols[fmt.Sprintf("f%d", f)] = fmt.Sprintf("f%d", f)
	}
}

// Normalizer turns raw keys into canonical names.
type Normalizer struct {
	// FnCode is the vendor scan code reported for the Fn key. Zero disables it.
	FnCode int
}

// NewNormalizer returns a Normalizer using the given Fn key code.
func NewNormalizer(fnCode int) *Normalizer {
	return &Normalizer{FnCode: fnCode}
}

// Normalize returns the canonical name for raw. It never fails: unknown keys
// become "special_<code>".
func (n *Normalizer) Normalize(raw RawKey) string {
	if name, ok := resolveSymbol(raw.Name); ok {
		return name
	}
	if n.FnCode != 0 && raw.Code == n.FnCode {
		return Fn
	}
	if raw.Codeset == CodesetVK {
		if name, ok := vkNames[raw.Code]; ok {
			return name
		}
	}
	return fmt.Sprintf("special_%d", raw.Code)
}

func resolveSymbol(sym string) (string, bool) {
	if sym == "" {
		return "", false
	}
	if sym == " " {
		return Space, true
	}
	key := strings.ToLower(strings.TrimPrefix(sym, "KEY_"))
	if name, ok := modifierSymbols[key]; ok {
		return name, true
	}
	if name, ok := namedSymbols[key]; ok {
		return name, true
	}
	if len(key) == 1 && key[0] > ' ' && key[0] < 0x7f {
		return key, true
	}
	return "", false
}
