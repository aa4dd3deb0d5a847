package timetable

import "testing"

func TestColorFor(t *testing.T) {
	inPalette := func(c string) bool {
		for _, p := range palette {
			if p == c {
				return true
			}
		}
		return false
	}

	for _, code := range []string{"ENG101", "MAT150", "STA210", "A", ""} {
		c := ColorFor(code)
		if !inPalette(c) {
			t.Errorf("ColorFor(%q) = %q, not in palette", code, c)
		}
		if again := ColorFor(code); again != c {
			t.Errorf("ColorFor(%q) not deterministic: %q != %q", code, c, again)
		}
	}

	// single character: hash is the char code itself
	if got, want := ColorFor("A"), palette[int('A')%len(palette)]; got != want {
		t.Errorf(`ColorFor("A") = %q, want %q`, got, want)
	}
}
