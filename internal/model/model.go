package model

import (
	"encoding/json"
	"time"
)

// Node is one item of the tree. Children are ordered; a nil and an empty slice mean
// the same thing.
type Node struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Expanded bool   `json:"expanded"`
	Hide     bool   `json:"hide"`
	Copys    int    `json:"copys,omitempty"`
	IsDraft  bool   `json:"isDraft,omitempty"`
	Children []Node `json:"children"`

	// Legacy fields (migrated to Expanded/Title on load).
	LegacyIsOpen *bool  `json:"isOpen,omitempty"`
	LegacyLabel  string `json:"label,omitempty"`
}

// MarshalJSON always emits a children array so the browser never sees null.
func (n Node) MarshalJSON() ([]byte, error) {
	type wire Node
	w := wire(n)
	if w.Children == nil {
		w.Children = []Node{}
	}
	return json.Marshal(w)
}

// Forest is the ordered top level. The implicit root has id "".
type Forest []Node

const RootID = ""

type InstructionType string

const (
	InstructionReorderAbove InstructionType = "reorder-above"
	InstructionReorderBelow InstructionType = "reorder-below"
	InstructionMakeChild    InstructionType = "make-child"
	InstructionReparent     InstructionType = "reparent"
	InstructionBlocked      InstructionType = "instruction-blocked"
)

// Instruction is the discrete drop command derived from a pointer position over a row.
// CurrentLevel and IndentPerLevel describe the hovered row. DesiredLevel is only set for
// reparent; Desired only for instruction-blocked.
type Instruction struct {
	Type           InstructionType `json:"type"`
	CurrentLevel   int             `json:"currentLevel"`
	IndentPerLevel int             `json:"indentPerLevel"`
	DesiredLevel   int             `json:"desiredLevel,omitempty"`
	Desired        *Instruction    `json:"desired,omitempty"`
}

// Unwrap returns the instruction a blocked instruction wanted to be.
func (i Instruction) Unwrap() Instruction {
	for i.Type == InstructionBlocked && i.Desired != nil {
		i = *i.Desired
	}
	return i
}

func (i Instruction) Blocked() bool {
	return i.Type == InstructionBlocked
}

// Event is one dispatched action as recorded in the event log.
type Event struct {
	ID       string          `json:"id"`
	TS       time.Time       `json:"ts"`
	Type     string          `json:"type"`
	EntityID string          `json:"entityId"`
	Payload  json.RawMessage `json:"payload"`
}
