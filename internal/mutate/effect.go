package mutate

import (
	"fmt"

	"sortable-tree/internal/tree"
)

// Effect tells renderers what a dispatched action touched so they can flash the moved
// row and announce the new position.
type Effect struct {
	Type     ActionType `json:"type"`
	ItemID   string     `json:"itemId,omitempty"`
	TargetID string     `json:"targetId,omitempty"`
	CopyID   string     `json:"copyId,omitempty"`
	Index    int        `json:"index,omitempty"`
	Flash    bool       `json:"flash"`
	Announce string     `json:"announce,omitempty"`
}

func EffectOf(a Action) Effect {
	if a == nil {
		return Effect{}
	}
	e := Effect{Type: a.Type(), ItemID: a.Subject()}
	switch a := a.(type) {
	case Instruction:
		e.TargetID = a.TargetID
		e.Flash = true
	case ModalMove:
		parent := a.TargetID
		if parent == "" {
			parent = "the root"
		}
		e.TargetID = a.TargetID
		e.Index = a.Index
		e.Flash = true
		e.Announce = fmt.Sprintf("You've moved Item %s to position %d in %s.", a.ItemID, a.Index+1, parent)
	}
	return e
}

// EffectFor is EffectOf plus the ids only the reduced state knows: the root a paste
// appended and the clone a copy produced.
func EffectFor(a Action, prev, next State) Effect {
	e := EffectOf(a)
	switch a := a.(type) {
	case Paste, InsertAtLast:
		if len(next.Forest) > len(prev.Forest) {
			e.ItemID = next.Forest[len(next.Forest)-1].ID
			e.Flash = true
		}
	case Copy:
		before, _ := tree.Find(prev.Forest, a.ItemID)
		after, ok := tree.Find(next.Forest, a.ItemID)
		if !ok || after.Copys == before.Copys {
			break
		}
		if clone, ok := CopiedNode(next.Forest, a); ok {
			e.CopyID = clone.ID
			e.Flash = true
		}
	}
	return e
}

// FlashID is the row a renderer should flash, or "" when nothing should.
func (e Effect) FlashID() string {
	if !e.Flash {
		return ""
	}
	if e.CopyID != "" {
		return e.CopyID
	}
	return e.ItemID
}
