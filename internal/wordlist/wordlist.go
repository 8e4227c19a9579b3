// Package wordlist reads the script typed by the demo hook backend.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned when a script holds no usable words.
var ErrEmpty = errors.New("demo script has no plain ASCII words")

// Script is what the demo backend types: random words, occasionally
// interrupted by one of the shortcuts. Nil Shortcuts means the built-in set.
type Script struct {
	Words     []string
	Shortcuts [][]string
}

var builtinWords = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
	"stream", "keys", "overlay", "shortcut", "commit", "branch", "merge",
	"build", "test", "deploy", "terminal", "editor", "search", "replace",
	"window", "screen", "record", "demo", "hello", "world", "golang", "code",
}

// Default returns the built-in script.
func Default() Script {
	words := make([]string, len(builtinWords))
	copy(words, builtinWords)
	return Script{Words: words}
}

// Load reads a script file, or returns Default when path is empty.
func Load(path string) (Script, error) {
	if path == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to open demo script: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only script.
			_ = cerr
		}
	}()
	sc, err := Parse(file)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse reads whitespace separated tokens. A token joined with "+" such as
// ctrl+shift+t is a shortcut; anything else must be a lowercase ASCII word
// and is dropped otherwise. Text after # is a comment.
func Parse(r io.Reader) (Script, error) {
	var sc Script
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		for _, tok := range strings.Fields(line) {
			if combo, ok := parseShortcut(tok); ok {
				sc.Shortcuts = append(sc.Shortcuts, combo)
				continue
			}
			if plainWord(tok) {
				sc.Words = append(sc.Words, tok)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Script{}, err
	}
	if len(sc.Words) == 0 {
		return Script{}, ErrEmpty
	}
	return sc, nil
}

func parseShortcut(tok string) ([]string, bool) {
	if len(tok) < 3 || !strings.Contains(tok[1:len(tok)-1], "+") {
		return nil, false
	}
	parts := strings.Split(strings.ToLower(tok), "+")
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	return parts, true
}

// plainWord reports whether every byte is a-z; the demo types on a US layout.
func plainWord(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}
