package tui

import (
	"os"
	"strings"
	"sync/atomic"
)

// glyphs are the markers the outline draws. Some terminal fonts render the Unicode
// twisties badly; SORTREE_TUI_GLYPHS=ascii swaps in plain ASCII.
type glyphs struct {
	collapsed string
	expanded  string
	bullet    string
	pathSep   string
}

var (
	unicodeGlyphs = glyphs{collapsed: "▸", expanded: "▾", bullet: "•", pathSep: " › "}
	asciiGlyphs   = glyphs{collapsed: ">", expanded: "v", bullet: "*", pathSep: " > "}
)

var activeGlyphs atomic.Pointer[glyphs]

func currentGlyphs() glyphs {
	if g := activeGlyphs.Load(); g != nil {
		return *g
	}
	return unicodeGlyphs
}

func useGlyphs(g glyphs) { activeGlyphs.Store(&g) }

// applyGlyphPreference reads SORTREE_TUI_GLYPHS. Unknown values keep the current set.
func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SORTREE_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		useGlyphs(unicodeGlyphs)
	case "ascii":
		useGlyphs(asciiGlyphs)
	}
}
