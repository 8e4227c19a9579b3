package wordlist

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseWordsAndShortcuts(t *testing.T) {
	src := "# demo\nalpha beta naïve\nctrl+S alt+tab # switch\n\nco-op gamma +\n"
	sc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := []string{"alpha", "beta", "gamma"}; !reflect.DeepEqual(sc.Words, want) {
		t.Fatalf("expected words %v, got %v", want, sc.Words)
	}
	want := [][]string{{"ctrl", "s"}, {"alt", "tab"}}
	if !reflect.DeepEqual(sc.Shortcuts, want) {
		t.Fatalf("expected shortcuts %v, got %v", want, sc.Shortcuts)
	}
}

func TestParseRejectsScriptWithoutWords(t *testing.T) {
	_, err := Parse(strings.NewReader("ctrl+c\nrésumé\n"))
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.txt")
	if err := os.WriteFile(path, []byte("hello world\nctrl+z\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sc.Words) != 2 || len(sc.Shortcuts) != 1 {
		t.Fatalf("expected 2 words and 1 shortcut, got %+v", sc)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadDefaultIsACopy(t *testing.T) {
	sc, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sc.Words) == 0 || sc.Shortcuts != nil {
		t.Fatalf("expected built-in words and no shortcuts, got %+v", sc)
	}
	sc.Words[0] = "changed"
	if Default().Words[0] == "changed" {
		t.Fatalf("expected Default to return a copy")
	}
}
