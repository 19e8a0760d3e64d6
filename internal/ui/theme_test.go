package ui

import (
	"testing"

	"github.com/five82/ava/internal/loadable"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 {
		t.Fatalf("ThemeNames() returned %d names, want 2", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("Unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dracula", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", got)
	}
}

func TestThemesColorEveryKind(t *testing.T) {
	kinds := []loadable.Kind{
		loadable.KindNotRequested,
		loadable.KindLoading,
		loadable.KindLoaded,
		loadable.KindPartialLoaded,
		loadable.KindFailed,
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, k := range kinds {
			if th.KindColors[k] == "" {
				t.Fatalf("%s: no color for %v", name, k)
			}
		}
	}
}

func TestKindLabel(t *testing.T) {
	cases := map[loadable.Kind]string{
		loadable.KindNotRequested:  "IDLE",
		loadable.KindLoading:       "LOADING",
		loadable.KindLoaded:        "LOADED",
		loadable.KindPartialLoaded: "PARTIAL",
		loadable.KindFailed:        "FAILED",
	}
	for kind, want := range cases {
		if got := kindLabel(kind); got != want {
			t.Fatalf("kindLabel(%v) = %q, want %q", kind, got, want)
		}
	}
}
