package tui

import tea "github.com/charmbracelet/bubbletea"

func isKey(msg tea.KeyMsg, keys ...string) bool {
	s := msg.String()
	for _, k := range keys {
		if s == k {
			return true
		}
	}
	return false
}

// Terminals disagree on which modified arrows they report, so each structural move
// accepts a few spellings.

func isMoveUp(msg tea.KeyMsg) bool {
	return isKey(msg, "alt+up", "shift+up", "K", "ctrl+k")
}

func isMoveDown(msg tea.KeyMsg) bool {
	return isKey(msg, "alt+down", "shift+down", "J", "ctrl+j")
}

func isIndent(msg tea.KeyMsg) bool {
	return isKey(msg, "tab", "alt+right", "shift+right")
}

func isOutdent(msg tea.KeyMsg) bool {
	return isKey(msg, "shift+tab", "alt+left", "shift+left")
}
