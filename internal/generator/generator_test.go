package generator

import (
	"reflect"
	"testing"
)

func TestTextStrokes(t *testing.T) {
	got := TextStrokes("Hi, you!")
	want := []Stroke{
		{"shift", "h"}, {"i"}, {","}, {"space"},
		{"y"}, {"o"}, {"u"}, {"shift", "1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := TextStrokes("é"); len(got) != 0 {
		t.Fatalf("expected non-ASCII runes to be skipped, got %v", got)
	}
}

func TestScriptIsDeterministicPerSeed(t *testing.T) {
	words := []string{"alpha", "beta", "gamma"}
	a := NewSeeded(7).Script(words, nil, 5, 0.5)
	b := NewSeeded(7).Script(words, nil, 5, 0.5)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical scripts for the same seed")
	}
	spaces := 0
	for _, s := range a {
		if len(s) == 1 && s[0] == "space" {
			spaces++
		}
	}
	if spaces != 4 {
		t.Fatalf("expected 4 word separators, got %d", spaces)
	}
}

func TestScriptUsesGivenShortcuts(t *testing.T) {
	custom := Stroke{"ctrl", "k"}
	script := NewSeeded(3).Script([]string{"go"}, []Stroke{custom}, 20, 1)
	seen := 0
	for _, s := range script {
		if len(s) > 1 && s[0] == "ctrl" {
			if !reflect.DeepEqual(s, custom) {
				t.Fatalf("expected only %v, got %v", custom, s)
			}
			seen++
		}
	}
	if seen != 20 {
		t.Fatalf("expected a shortcut after every word, got %d", seen)
	}
}

func TestWordsEmptyList(t *testing.T) {
	if got := New().Words(nil, 3, 0, 0, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
