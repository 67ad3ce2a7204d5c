package gesture

import (
	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"
)

// ModeFor is the hitbox mode of the row at index among siblings. An open row with
// children takes precedence over being last.
func ModeFor(n model.Node, index int, siblings []model.Node) Mode {
	if tree.HasChildren(n) && n.Expanded {
		return ModeExpanded
	}
	if index == len(siblings)-1 {
		return ModeLastInGroup
	}
	return ModeStandard
}

// Row is where a node is rendered: its depth, position among siblings and hitbox mode.
type Row struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Index int    `json:"index"`
	Mode  Mode   `json:"mode"`
}

// RowOf locates id and derives its row context from the forest.
func RowOf(f model.Forest, id string) (Row, bool) {
	path, ok := tree.PathToItem(f, id)
	if !ok {
		return Row{}, false
	}
	parent := model.RootID
	if len(path) > 0 {
		parent = path[len(path)-1]
	}
	siblings := tree.ChildrenOf(f, parent)
	for i, n := range siblings {
		if n.ID == id {
			return Row{ID: id, Level: len(path), Index: i, Mode: ModeFor(n, i, siblings)}, true
		}
	}
	return Row{}, false
}

// InputFor fills CurrentLevel and Mode for targetID from the forest, keeping the geometry
// and block list of in.
func InputFor(f model.Forest, targetID string, in Input) Input {
	if row, ok := RowOf(f, targetID); ok {
		in.CurrentLevel = row.Level
		in.Mode = row.Mode
	}
	return in
}

// Interpret attaches an instruction for dragging draggedID over targetID and blocks it
// when the tree would not accept it: the target sits in the dragged subtree, make-child
// onto a draft, or a reparent whose ancestor cannot be resolved.
func Interpret(f model.Forest, draggedID, targetID string, in Input) model.Instruction {
	target, ok := tree.Find(f, targetID)
	if ok && target.IsDraft {
		in.Block = append(append([]model.InstructionType(nil), in.Block...), model.InstructionMakeChild)
	}
	instr := Attach(in)
	if instr.Blocked() {
		return instr
	}

	dragged, found := tree.Find(f, draggedID)
	if !found || !ok || tree.Contains(dragged, targetID) {
		return Block(instr)
	}

	if instr.Type == model.InstructionReparent {
		path, _ := tree.PathToItem(f, targetID)
		if instr.DesiredLevel < 0 || instr.DesiredLevel >= len(path) {
			return Block(instr)
		}
		if tree.Contains(dragged, path[instr.DesiredLevel]) {
			return Block(instr)
		}
	}
	return instr
}

// HighlightParentID is the ancestor of targetID that instr would drop into, if any.
func HighlightParentID(f model.Forest, targetID string, instr model.Instruction) (string, bool) {
	level := ParentLevel(instr)
	if level < 0 {
		return "", false
	}
	path, ok := tree.PathToItem(f, targetID)
	if !ok || level >= len(path) {
		return "", false
	}
	return path[level], true
}
