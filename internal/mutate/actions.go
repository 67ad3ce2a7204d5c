package mutate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sortable-tree/internal/model"
)

type ActionType string

const (
	ActionInstruction  ActionType = "instruction"
	ActionToggle       ActionType = "toggle"
	ActionExpand       ActionType = "expand"
	ActionCollapse     ActionType = "collapse"
	ActionRemove       ActionType = "remove"
	ActionCopy         ActionType = "copy"
	ActionHide         ActionType = "hide"
	ActionUpdate       ActionType = "update"
	ActionPaste        ActionType = "paste"
	ActionInsertAtLast ActionType = "insertAtLast"
	ActionModalMove    ActionType = "modal-move"
)

// Action is a tree command. The set of implementations is closed: only the types in
// this file satisfy it.
type Action interface {
	Type() ActionType
	// Subject is the id of the node the action is about ("" for paste/insertAtLast).
	Subject() string
	isAction()
}

// Instruction applies a drop instruction: ItemID is the dragged node, TargetID the row
// the pointer was over.
type Instruction struct {
	Instruction model.Instruction
	ItemID      string
	TargetID    string
}

type Toggle struct{ ItemID string }
type Expand struct{ ItemID string }
type Collapse struct{ ItemID string }
type Remove struct{ ItemID string }
type Copy struct{ ItemID string }
type Hide struct{ ItemID string }

// Update replaces the node with Item.ID.
type Update struct{ Item model.Node }

// Paste appends the clipboard subtree at the end of the top level.
type Paste struct{ Item model.Node }

type InsertAtLast struct{ Item model.Node }

// ModalMove places ItemID at Index among the children of TargetID ("" for the top level).
type ModalMove struct {
	ItemID   string
	TargetID string
	Index    int
}

func (Instruction) Type() ActionType  { return ActionInstruction }
func (Toggle) Type() ActionType       { return ActionToggle }
func (Expand) Type() ActionType       { return ActionExpand }
func (Collapse) Type() ActionType     { return ActionCollapse }
func (Remove) Type() ActionType       { return ActionRemove }
func (Copy) Type() ActionType         { return ActionCopy }
func (Hide) Type() ActionType         { return ActionHide }
func (Update) Type() ActionType       { return ActionUpdate }
func (Paste) Type() ActionType        { return ActionPaste }
func (InsertAtLast) Type() ActionType { return ActionInsertAtLast }
func (ModalMove) Type() ActionType    { return ActionModalMove }

func (a Instruction) Subject() string { return a.ItemID }
func (a Toggle) Subject() string      { return a.ItemID }
func (a Expand) Subject() string      { return a.ItemID }
func (a Collapse) Subject() string    { return a.ItemID }
func (a Remove) Subject() string      { return a.ItemID }
func (a Copy) Subject() string        { return a.ItemID }
func (a Hide) Subject() string        { return a.ItemID }
func (a Update) Subject() string      { return a.Item.ID }
func (Paste) Subject() string         { return "" }
func (InsertAtLast) Subject() string  { return "" }
func (a ModalMove) Subject() string   { return a.ItemID }

func (Instruction) isAction()  {}
func (Toggle) isAction()       {}
func (Expand) isAction()       {}
func (Collapse) isAction()     {}
func (Remove) isAction()       {}
func (Copy) isAction()         {}
func (Hide) isAction()         {}
func (Update) isAction()       {}
func (Paste) isAction()        {}
func (InsertAtLast) isAction() {}
func (ModalMove) isAction()    {}

// wireAction is the flat JSON form used by the browser, the CLI and the event log.
type wireAction struct {
	Type        ActionType         `json:"type"`
	ItemID      string             `json:"itemId,omitempty"`
	TargetID    string             `json:"targetId,omitempty"`
	Index       *int               `json:"index,omitempty"`
	Instruction *model.Instruction `json:"instruction,omitempty"`
	Item        *model.Node        `json:"item,omitempty"`
}

// EncodeAction returns the wire form of a.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, errors.New("nil action")
	}
	w := wireAction{Type: a.Type()}
	switch a := a.(type) {
	case Instruction:
		instr := a.Instruction
		w.Instruction = &instr
		w.ItemID = a.ItemID
		w.TargetID = a.TargetID
	case Toggle, Expand, Collapse, Remove, Copy, Hide:
		w.ItemID = a.Subject()
	case Update:
		item := a.Item
		w.ItemID = item.ID
		w.Item = &item
	case Paste:
		item := a.Item
		w.Item = &item
	case InsertAtLast:
		item := a.Item
		w.Item = &item
	case ModalMove:
		idx := a.Index
		w.ItemID = a.ItemID
		w.TargetID = a.TargetID
		w.Index = &idx
	}
	return json.Marshal(w)
}

// DecodeAction parses the wire form. Unknown types and missing required fields are
// errors; the reducer only ever sees well-formed actions.
func DecodeAction(b []byte) (Action, error) {
	var w wireAction
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	itemID := strings.TrimSpace(w.ItemID)
	needItem := func() error {
		if itemID == "" {
			return fmt.Errorf("%s: missing itemId", w.Type)
		}
		return nil
	}

	switch w.Type {
	case ActionInstruction:
		if err := needItem(); err != nil {
			return nil, err
		}
		if w.Instruction == nil {
			return nil, errors.New("instruction: missing instruction")
		}
		return Instruction{Instruction: *w.Instruction, ItemID: itemID, TargetID: strings.TrimSpace(w.TargetID)}, nil
	case ActionToggle, ActionExpand, ActionCollapse, ActionRemove, ActionCopy, ActionHide:
		if err := needItem(); err != nil {
			return nil, err
		}
		return simpleAction(w.Type, itemID), nil
	case ActionUpdate:
		if w.Item == nil || strings.TrimSpace(w.Item.ID) == "" {
			return nil, errors.New("update: missing item")
		}
		return Update{Item: *w.Item}, nil
	case ActionPaste:
		if w.Item == nil {
			return nil, errors.New("paste: missing item")
		}
		return Paste{Item: *w.Item}, nil
	case ActionInsertAtLast:
		if w.Item == nil {
			return nil, errors.New("insertAtLast: missing item")
		}
		return InsertAtLast{Item: *w.Item}, nil
	case ActionModalMove:
		if err := needItem(); err != nil {
			return nil, err
		}
		if w.Index == nil {
			return nil, errors.New("modal-move: missing index")
		}
		return ModalMove{ItemID: itemID, TargetID: strings.TrimSpace(w.TargetID), Index: *w.Index}, nil
	default:
		return nil, fmt.Errorf("unknown action type: %q", w.Type)
	}
}

func simpleAction(t ActionType, itemID string) Action {
	switch t {
	case ActionToggle:
		return Toggle{ItemID: itemID}
	case ActionExpand:
		return Expand{ItemID: itemID}
	case ActionCollapse:
		return Collapse{ItemID: itemID}
	case ActionRemove:
		return Remove{ItemID: itemID}
	case ActionCopy:
		return Copy{ItemID: itemID}
	default:
		return Hide{ItemID: itemID}
	}
}
