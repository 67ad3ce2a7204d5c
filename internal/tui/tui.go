package tui

import (
	"sortable-tree/internal/editor"
	"sortable-tree/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the interactive outline.
type Options struct {
	Editor *editor.Editor
	// Store is where per-workspace UI state (cursor, hidden rows) is kept.
	Store store.Store
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	m := newAppModel(opts.Editor, opts.Store)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
