package mutate

import (
	"fmt"

	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "mutate")

// State is the whole editor state. LastAction only drives one-shot UI effects.
type State struct {
	Forest     model.Forest `json:"data"`
	LastAction Action       `json:"-"`
}

// Reduce applies a to s. It never mutates s.Forest. On error the returned state is s.
func Reduce(s State, a Action) (State, error) {
	if a == nil {
		return s, nil
	}
	f, err := reduceForest(s.Forest, a)
	if err != nil {
		return s, err
	}
	return State{Forest: f, LastAction: a}, nil
}

func reduceForest(f model.Forest, a Action) (model.Forest, error) {
	switch a := a.(type) {
	case Paste:
		return tree.InsertAtLast(f, a.Item), nil
	case InsertAtLast:
		return tree.InsertAtLast(f, a.Item), nil
	case Update:
		return tree.Update(f, a.Item), nil
	}

	item, ok := tree.Find(f, a.Subject())
	if !ok {
		return f, nil
	}

	switch a := a.(type) {
	case Instruction:
		return reduceInstruction(f, a, item)
	case Toggle:
		return tree.Toggle(f, a.ItemID), nil
	case Expand:
		if tree.HasChildren(item) && !item.Expanded {
			return tree.Toggle(f, a.ItemID), nil
		}
		return f, nil
	case Collapse:
		if tree.HasChildren(item) && item.Expanded {
			return tree.Toggle(f, a.ItemID), nil
		}
		return f, nil
	case Remove:
		return tree.Remove(f, a.ItemID), nil
	case Copy:
		out, _ := tree.Copy(f, a.ItemID)
		return out, nil
	case Hide:
		return tree.Hide(f, a.ItemID), nil
	case ModalMove:
		return reduceModalMove(f, a, item)
	default:
		log.WithField("type", a.Type()).Warn("unhandled action")
		return f, nil
	}
}

func reduceInstruction(f model.Forest, a Instruction, item model.Node) (model.Forest, error) {
	if a.ItemID == a.TargetID {
		return f, nil
	}
	// Dropping onto anything inside the dragged subtree would detach the target along
	// with the item.
	if tree.Contains(item, a.TargetID) {
		return f, nil
	}

	instr := a.Instruction
	fields := logrus.Fields{"itemId": a.ItemID, "targetId": a.TargetID, "instruction": instr.Type}
	if instr.Blocked() {
		log.WithFields(fields).Warn("blocked instruction reached the reducer")
		return f, nil
	}

	if instr.Type == model.InstructionReparent {
		path, ok := tree.PathToItem(f, a.TargetID)
		if !ok {
			return nil, invariantf(ActionInstruction, "reparent target %q not in tree", a.TargetID)
		}
		if instr.DesiredLevel < 0 || instr.DesiredLevel >= len(path) {
			return nil, invariantf(ActionInstruction, "reparent level %d out of range for %q (depth %d)", instr.DesiredLevel, a.TargetID, len(path))
		}
		desiredID := path[instr.DesiredLevel]
		return tree.InsertAfter(tree.Remove(f, a.ItemID), desiredID, item), nil
	}

	target, ok := tree.Find(f, a.TargetID)
	if !ok {
		return f, nil
	}

	switch instr.Type {
	case model.InstructionReorderAbove:
		return tree.InsertBefore(tree.Remove(f, a.ItemID), a.TargetID, item), nil
	case model.InstructionReorderBelow:
		return tree.InsertAfter(tree.Remove(f, a.ItemID), a.TargetID, item), nil
	case model.InstructionMakeChild:
		if target.IsDraft {
			log.WithFields(fields).Warn("make-child on a draft target")
			return f, nil
		}
		return tree.InsertChild(tree.Remove(f, a.ItemID), a.TargetID, item), nil
	default:
		log.WithFields(fields).Warn("instruction not implemented")
		return f, nil
	}
}

func reduceModalMove(f model.Forest, a ModalMove, item model.Node) (model.Forest, error) {
	if a.TargetID != model.RootID && tree.Contains(item, a.TargetID) {
		return f, nil
	}

	result := tree.Remove(f, a.ItemID)

	var siblings []model.Node
	if a.TargetID == model.RootID {
		siblings = result
	} else {
		target, ok := tree.Find(result, a.TargetID)
		if !ok {
			return nil, invariantf(ActionModalMove, "target %q not in tree", a.TargetID)
		}
		if target.IsDraft {
			log.WithFields(logrus.Fields{"itemId": a.ItemID, "targetId": a.TargetID}).Warn("modal-move into a draft target")
			return f, nil
		}
		siblings = target.Children
	}

	switch {
	case len(siblings) == 0:
		if a.TargetID == model.RootID {
			return model.Forest{item}, nil
		}
		return tree.InsertChild(result, a.TargetID, item), nil
	case a.Index == len(siblings):
		return tree.InsertAfter(result, siblings[len(siblings)-1].ID, item), nil
	case a.Index < 0 || a.Index > len(siblings):
		return nil, invariantf(ActionModalMove, "index %d out of range (0..%d)", a.Index, len(siblings))
	default:
		return tree.InsertBefore(result, siblings[a.Index].ID, item), nil
	}
}

// CopiedNode returns the clone a Copy action produced in next.
func CopiedNode(next model.Forest, a Copy) (model.Node, bool) {
	src, ok := tree.Find(next, a.ItemID)
	if !ok || src.Copys == 0 {
		return model.Node{}, false
	}
	return tree.Find(next, tree.CopyID(src.ID, src.Copys))
}

// Describe renders a short human description of a, used in logs and the event list.
func Describe(a Action) string {
	switch a := a.(type) {
	case Instruction:
		return fmt.Sprintf("%s %s -> %s", a.Instruction.Type, a.ItemID, a.TargetID)
	case ModalMove:
		parent := a.TargetID
		if parent == model.RootID {
			parent = "root"
		}
		return fmt.Sprintf("modal-move %s -> %s[%d]", a.ItemID, parent, a.Index)
	case Paste, InsertAtLast:
		return string(a.Type())
	default:
		return fmt.Sprintf("%s %s", a.Type(), a.Subject())
	}
}
