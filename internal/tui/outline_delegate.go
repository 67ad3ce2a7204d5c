package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type outlineRowItem struct {
	row   outlineRow
	flash bool
}

func (i outlineRowItem) FilterValue() string { return i.row.node.Title }

type outlineItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	flash    lipgloss.Style
}

func newOutlineItemDelegate() outlineItemDelegate {
	return outlineItemDelegate{
		normal:   lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		flash:    lipgloss.NewStyle().Background(colorFlashBg),
	}
}

func (d outlineItemDelegate) Height() int                             { return 1 }
func (d outlineItemDelegate) Spacing() int                            { return 0 }
func (d outlineItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d outlineItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(outlineRowItem)
	if !ok || m.Width() < 4 {
		return
	}
	style := d.normal
	switch {
	case index == m.Index():
		style = d.selected
	case it.flash:
		style = d.flash
	}
	fmt.Fprint(w, fitRow(m.Width(), style, rowLine(it.row)))
}

// rowLine is the plain text of a row: indent, twisty, title and state markers.
func rowLine(r outlineRow) string {
	twisty := " "
	if r.hasChildren() {
		if r.node.Expanded {
			twisty = currentGlyphs().expanded
		} else {
			twisty = currentGlyphs().collapsed
		}
	}
	title := strings.TrimSpace(r.node.Title)
	if title == "" {
		title = r.node.ID
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.depth))
	b.WriteString(twisty)
	b.WriteString(" ")
	b.WriteString(title)
	if r.node.Hide {
		b.WriteString("  (hidden)")
	}
	if r.node.IsDraft {
		b.WriteString("  (draft)")
	}
	return b.String()
}

// fitRow pads or cuts line to width so a background highlight covers the full row.
func fitRow(width int, style lipgloss.Style, line string) string {
	w := xansi.StringWidth(line)
	if w < width {
		line += strings.Repeat(" ", width-w)
	} else if w > width {
		line = xansi.Truncate(line, width, "…")
	}
	return style.Render(line)
}
