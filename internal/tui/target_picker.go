package tui

import (
	"fmt"
	"strings"

	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"

	"github.com/charmbracelet/bubbles/list"
)

// The assisted move is a two step picker: first the new parent (the top level or any
// node outside the moved subtree that accepts children), then the position among that
// parent's children.

type pickStage int

const (
	pickParent pickStage = iota
	pickPosition
)

type targetPickItem struct {
	id    string
	label string
	desc  string
	// index is the position for pickPosition items.
	index int
}

func (i targetPickItem) Title() string       { return i.label }
func (i targetPickItem) Description() string { return i.desc }
func (i targetPickItem) FilterValue() string { return strings.ToLower(i.label + " " + i.id) }

func newPickerList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("target", "targets")
	l.KeyMap.Quit.SetKeys("q")
	return l
}

// parentTargets is the first picker step for moving itemID.
func parentTargets(f model.Forest, itemID string) []targetPickItem {
	out := []targetPickItem{{id: model.RootID, label: "(top level)", desc: fmt.Sprintf("%d items", len(f))}}
	for _, t := range tree.ContainerTargets(f, itemID) {
		desc := t.ID
		if len(t.Path) > 0 {
			desc = strings.Join(append(append([]string{}, t.Path...), t.ID), currentGlyphs().pathSep)
		}
		out = append(out, targetPickItem{
			id:    t.ID,
			label: strings.Repeat("  ", t.Level) + t.Label(),
			desc:  desc,
		})
	}
	return out
}

// positionTargets lists the slots among parentID's children once itemID is taken out;
// the indexes are what a modal move expects.
func positionTargets(f model.Forest, itemID, parentID string) []targetPickItem {
	var siblings []model.Node
	for _, n := range tree.ChildrenOf(f, parentID) {
		if n.ID != itemID {
			siblings = append(siblings, n)
		}
	}
	out := make([]targetPickItem, 0, len(siblings)+1)
	for i, n := range siblings {
		title := strings.TrimSpace(n.Title)
		if title == "" {
			title = n.ID
		}
		out = append(out, targetPickItem{
			id:    parentID,
			label: fmt.Sprintf("%d. before %s", i+1, title),
			index: i,
		})
	}
	out = append(out, targetPickItem{
		id:    parentID,
		label: fmt.Sprintf("%d. at the end", len(siblings)+1),
		index: len(siblings),
	})
	return out
}

func (m *appModel) startPicker(stage pickStage, title string, targets []targetPickItem) {
	items := make([]list.Item, 0, len(targets))
	for _, t := range targets {
		items = append(items, t)
	}
	m.picker.Title = title
	m.picker.ResetFilter()
	m.picker.SetItems(items)
	m.picker.Select(0)
	m.pickStage = stage
	m.mode = modePick
	m.resizePicker()
}

func (m *appModel) resizePicker() {
	w := m.width - 8
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	h := len(m.picker.Items())*3 + 4
	if limit := m.height - 6; h > limit {
		h = limit
	}
	if h < 8 {
		h = 8
	}
	m.picker.SetSize(w, h)
}
