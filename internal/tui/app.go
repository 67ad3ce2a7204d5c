package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sortable-tree/internal/editor"
	"sortable-tree/internal/gesture"
	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"
	"sortable-tree/internal/store"
	"sortable-tree/internal/tree"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "tui")

const flashDuration = 700 * time.Millisecond

type mode int

const (
	modeNormal mode = iota
	modePick
	modeConfirmRemove
)

type flashDoneMsg struct{ id string }

type appModel struct {
	editor *editor.Editor
	store  store.Store
	ctx    context.Context

	width  int
	height int

	rows []outlineRow
	list list.Model

	mode       mode
	picker     list.Model
	pickStage  pickStage
	pickItemID string
	pickParentID string

	showHidden bool
	showDetail bool
	flashID    string
	status     string
	statusErr  bool
}

func newAppModel(e *editor.Editor, s store.Store) appModel {
	m := appModel{
		editor: e,
		store:  s,
		ctx:    context.Background(),
		list:   newOutlineList(),
		picker: newPickerList(),
	}
	cursor := ""
	if st, err := s.LoadUIState(); err == nil && st != nil {
		m.showHidden = st.ShowHidden
		cursor = st.CursorID
	}
	m.refresh(cursor)
	return m
}

func newOutlineList() list.Model {
	l := list.New(nil, newOutlineItemDelegate(), 0, 0)
	// Header, status and help are rendered by the app.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		id := m.selectedID()
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if i := rowIndex(m.rows, id); i >= 0 {
			m.list.Select(i)
		}
		return m, nil
	case flashDoneMsg:
		if m.flashID == msg.id {
			m.flashID = ""
			m.refresh(m.selectedID())
		}
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modePick:
			return m.updatePicker(msg)
		case modeConfirmRemove:
			return m.updateConfirmRemove(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, ok := m.selected()
	switch msg.String() {
	case "ctrl+c", "q":
		m.saveUIState()
		return m, tea.Quit
	case ".":
		m.showHidden = !m.showHidden
		m.refresh(m.selectedID())
		return m, nil
	case "?", "i":
		m.showDetail = !m.showDetail
		m.resize()
		return m, nil
	case "p":
		eff, err := m.editor.Paste(m.ctx)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.applied(eff, "pasted", eff.ItemID)
	}
	if !ok {
		return m.forwardToList(msg)
	}

	id := row.node.ID
	switch {
	case isKey(msg, "enter", " "):
		if row.hasChildren() {
			return m, m.dispatch(mutate.Toggle{ItemID: id}, id)
		}
		return m, nil
	case isKey(msg, "right", "l"):
		if row.hasChildren() && !row.node.Expanded {
			return m, m.dispatch(mutate.Expand{ItemID: id}, id)
		}
		if row.hasChildren() {
			m.list.CursorDown()
		}
		return m, nil
	case isKey(msg, "left", "h"):
		if row.hasChildren() && row.node.Expanded {
			return m, m.dispatch(mutate.Collapse{ItemID: id}, id)
		}
		if i := rowIndex(m.rows, row.parentID); i >= 0 {
			m.list.Select(i)
		}
		return m, nil
	case isKey(msg, "c"):
		return m, m.dispatch(mutate.Copy{ItemID: id}, id)
	case isKey(msg, "x"):
		return m, m.dispatch(mutate.Hide{ItemID: id}, id)
	case isKey(msg, "d", "delete"):
		m.mode = modeConfirmRemove
		m.status = fmt.Sprintf("Remove %q and everything under it? (y/n)", labelOf(row.node))
		m.statusErr = false
		return m, nil
	case isKey(msg, "m"):
		m.pickItemID = id
		m.startPicker(pickParent, "Move "+labelOf(row.node)+" into…", parentTargets(m.editor.Forest(), id))
		return m, nil
	case isMoveUp(msg):
		return m, m.reorder(row, -1)
	case isMoveDown(msg):
		return m, m.reorder(row, +1)
	case isIndent(msg):
		return m, m.indent(row)
	case isOutdent(msg):
		return m, m.outdent(row)
	}
	return m.forwardToList(msg)
}

func (m appModel) forwardToList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmRemove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	m.status = ""
	row, ok := m.selected()
	if !ok || !isKey(msg, "y", "Y") {
		return m, nil
	}
	// Keep the cursor on the row that takes its place.
	next := ""
	if i := m.list.Index() + 1 + len(descendantRows(m.rows, m.list.Index())); i < len(m.rows) {
		next = m.rows[i].node.ID
	} else if m.list.Index() > 0 {
		next = m.rows[m.list.Index()-1].node.ID
	}
	return m, m.dispatch(mutate.Remove{ItemID: row.node.ID}, next)
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "esc", "q":
		if m.pickStage == pickPosition {
			m.startPicker(pickParent, m.pickerTitle(), parentTargets(m.editor.Forest(), m.pickItemID))
			return m, nil
		}
		m.mode = modeNormal
		return m, nil
	case "ctrl+c":
		m.mode = modeNormal
		return m, nil
	case "enter":
		it, ok := m.picker.SelectedItem().(targetPickItem)
		if !ok {
			return m, nil
		}
		if m.pickStage == pickParent {
			m.pickParentID = it.id
			m.startPicker(pickPosition, "Position", positionTargets(m.editor.Forest(), m.pickItemID, it.id))
			return m, nil
		}
		m.mode = modeNormal
		cmd := m.dispatch(mutate.ModalMove{ItemID: m.pickItemID, TargetID: m.pickParentID, Index: it.index}, m.pickItemID)
		if !m.statusErr {
			m.ensureExpanded(m.pickParentID, m.pickItemID)
		}
		return m, cmd
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m appModel) pickerTitle() string {
	n, _ := tree.Find(m.editor.Forest(), m.pickItemID)
	return "Move " + labelOf(n) + " into…"
}

// reorder swaps the row with its previous (dir < 0) or next visible sibling using the
// same instructions a drop above or below that sibling produces.
func (m *appModel) reorder(row outlineRow, dir int) tea.Cmd {
	i := rowIndex(m.rows, row.node.ID)
	sib, ok := siblingRow(m.rows, i, dir)
	if !ok {
		return nil
	}
	typ := model.InstructionReorderAbove
	if dir > 0 {
		typ = model.InstructionReorderBelow
	}
	return m.dispatch(mutate.Instruction{
		Instruction: model.Instruction{Type: typ, CurrentLevel: sib.depth, IndentPerLevel: gesture.DefaultIndentPerLevel},
		ItemID:      row.node.ID,
		TargetID:    sib.node.ID,
	}, row.node.ID)
}

// indent makes the row the last child of its previous visible sibling.
func (m *appModel) indent(row outlineRow) tea.Cmd {
	sib, ok := siblingRow(m.rows, rowIndex(m.rows, row.node.ID), -1)
	if !ok {
		return nil
	}
	if sib.node.IsDraft {
		m.setError(fmt.Errorf("%s is a draft and cannot receive children", labelOf(sib.node)))
		return nil
	}
	cmd := m.dispatch(mutate.ModalMove{ItemID: row.node.ID, TargetID: sib.node.ID, Index: len(sib.node.Children)}, row.node.ID)
	if !m.statusErr {
		m.ensureExpanded(sib.node.ID, row.node.ID)
	}
	return cmd
}

// ensureExpanded opens id so a row just moved into it stays visible. The status line
// keeps describing the move.
func (m *appModel) ensureExpanded(id, selectID string) {
	n, ok := tree.Find(m.editor.Forest(), id)
	if !ok || n.Expanded || !tree.HasChildren(n) {
		return
	}
	if _, err := m.editor.Dispatch(m.ctx, mutate.Expand{ItemID: id}); err != nil {
		m.setError(err)
	}
	m.refresh(selectID)
}

// outdent moves the row right after its parent.
func (m *appModel) outdent(row outlineRow) tea.Cmd {
	if row.parentID == model.RootID {
		return nil
	}
	f := m.editor.Forest()
	grand := model.RootID
	if path, ok := tree.PathToItem(f, row.parentID); ok && len(path) > 0 {
		grand = path[len(path)-1]
	}
	idx := 0
	for i, n := range tree.ChildrenOf(f, grand) {
		if n.ID == row.parentID {
			idx = i
			break
		}
	}
	return m.dispatch(mutate.ModalMove{ItemID: row.node.ID, TargetID: grand, Index: idx + 1}, row.node.ID)
}

// siblingRow finds the previous or next visible row sharing the parent of rows[i].
func siblingRow(rows []outlineRow, i, dir int) (outlineRow, bool) {
	if i < 0 || i >= len(rows) {
		return outlineRow{}, false
	}
	r := rows[i]
	for j := i + dir; j >= 0 && j < len(rows); j += dir {
		if rows[j].depth < r.depth {
			return outlineRow{}, false
		}
		if rows[j].depth == r.depth && rows[j].parentID == r.parentID {
			return rows[j], true
		}
	}
	return outlineRow{}, false
}

// descendantRows returns the visible rows below rows[i] in its subtree.
func descendantRows(rows []outlineRow, i int) []outlineRow {
	if i < 0 || i >= len(rows) {
		return nil
	}
	j := i + 1
	for j < len(rows) && rows[j].depth > rows[i].depth {
		j++
	}
	return rows[i+1 : j]
}

func (m *appModel) dispatch(a mutate.Action, selectID string) tea.Cmd {
	eff, err := m.editor.Dispatch(m.ctx, a)
	if err != nil {
		m.setError(err)
		m.refresh(selectID)
		return nil
	}
	return m.applied(eff, mutate.Describe(a), selectID)
}

// applied records the effect of a successful dispatch: the status line, the flash and
// the refreshed rows.
func (m *appModel) applied(eff mutate.Effect, fallback, selectID string) tea.Cmd {
	m.status = eff.Announce
	if m.status == "" {
		m.status = fallback
	}
	m.statusErr = false
	var cmd tea.Cmd
	if id := eff.FlashID(); id != "" {
		m.flashID = id
		cmd = tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{id: id} })
	}
	m.refresh(selectID)
	return cmd
}

func (m *appModel) setError(err error) {
	if errors.Is(err, editor.ErrEmptyClipboard) {
		m.status = "Nothing copied yet"
	} else {
		m.status = err.Error()
	}
	m.statusErr = true
}

func (m *appModel) refresh(selectID string) {
	m.rows = flattenForest(m.editor.Forest(), m.showHidden)
	items := make([]list.Item, 0, len(m.rows))
	for _, r := range m.rows {
		items = append(items, outlineRowItem{row: r, flash: m.flashID != "" && r.node.ID == m.flashID})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	switch i := rowIndex(m.rows, selectID); {
	case i >= 0:
		m.list.Select(i)
	case idx >= len(items) && len(items) > 0:
		m.list.Select(len(items) - 1)
	}
}

func (m appModel) selected() (outlineRow, bool) {
	i := m.list.Index()
	if i < 0 || i >= len(m.rows) {
		return outlineRow{}, false
	}
	return m.rows[i], true
}

func (m appModel) selectedID() string {
	if r, ok := m.selected(); ok {
		return r.node.ID
	}
	return ""
}

func (m appModel) saveUIState() {
	st := &store.UIState{Version: 1, CursorID: m.selectedID(), ShowHidden: m.showHidden}
	if err := m.store.SaveUIState(st); err != nil {
		log.WithError(err).Warn("save ui state")
	}
}

func (m *appModel) listWidth() int {
	if m.showDetail && m.width >= 60 {
		return m.width * 3 / 5
	}
	return m.width
}

func (m *appModel) resize() {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.listWidth(), h)
	if m.mode == modePick {
		m.resizePicker()
	}
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	header := styleHeader().Render("sortree") + styleMuted().Render(fmt.Sprintf("  %d rows", len(m.rows)))
	if m.showHidden {
		header += styleMuted().Render("  (showing hidden)")
	}

	body := m.list.View()
	if len(m.rows) == 0 {
		body = styleMuted().Render("Empty tree. Paste with p.")
	}
	if m.showDetail && m.width >= 60 {
		detailW := m.width - m.listWidth() - 2
		detail := ""
		if row, ok := m.selected(); ok {
			detail = renderMarkdown(detailMarkdown(m.editor.Forest(), row.node), detailW-1)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, styleDetailPane().Width(detailW).Render(detail))
	}
	if m.mode == modePick {
		body = lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, styleModal().Render(m.picker.View()))
	}

	status := m.status
	switch {
	case m.statusErr:
		status = styleError().Render(status)
	case status != "":
		status = styleMuted().Render(status)
	}
	return strings.Join([]string{header, body, status, styleMuted().Render(m.helpLine())}, "\n")
}

func (m appModel) helpLine() string {
	b := currentGlyphs().bullet
	switch m.mode {
	case modePick:
		return strings.Join([]string{"enter select", "/ filter", "esc back"}, " "+b+" ")
	case modeConfirmRemove:
		return "y remove " + b + " any other key cancels"
	}
	return strings.Join([]string{
		"enter toggle", "c copy", "p paste", "x hide", "d remove", "m move",
		"alt+↑/↓ reorder", "tab/shift+tab indent", ". hidden", "? detail", "q quit",
	}, " "+b+" ")
}
