package tui

import "testing"

func TestGlyphs_FromEnv(t *testing.T) {
	t.Cleanup(func() { useGlyphs(unicodeGlyphs) })

	tests := []struct {
		env  string
		from glyphs
		want glyphs
	}{
		{"", asciiGlyphs, unicodeGlyphs},
		{"ascii", unicodeGlyphs, asciiGlyphs},
		{" ASCII ", unicodeGlyphs, asciiGlyphs},
		{"utf8", asciiGlyphs, unicodeGlyphs},
		// Unknown values keep whatever is active.
		{"bogus", asciiGlyphs, asciiGlyphs},
	}
	for _, tt := range tests {
		useGlyphs(tt.from)
		t.Setenv("SORTREE_TUI_GLYPHS", tt.env)
		applyGlyphPreference()
		if got := currentGlyphs(); got != tt.want {
			t.Fatalf("SORTREE_TUI_GLYPHS=%q: got %+v, want %+v", tt.env, got, tt.want)
		}
	}
}
