// Package gesture turns pointer positions over tree rows into drop instructions.
package gesture

import (
	"math"

	"sortable-tree/internal/model"
)

const DefaultIndentPerLevel = 10

// Mode describes where a row sits among its rendered siblings.
type Mode string

const (
	ModeStandard    Mode = "standard"
	ModeExpanded    Mode = "expanded"
	ModeLastInGroup Mode = "last-in-group"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the hovered row's border box in the same coordinate space as the pointer.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Input is everything the hitbox needs about one pointer sample.
type Input struct {
	Pointer        Point                   `json:"pointer"`
	Row            Rect                    `json:"row"`
	CurrentLevel   int                     `json:"currentLevel"`
	IndentPerLevel int                     `json:"indentPerLevel,omitempty"`
	Mode           Mode                    `json:"mode"`
	Block          []model.InstructionType `json:"block,omitempty"`
}

// Attach computes the instruction for in without any knowledge of the tree.
func Attach(in Input) model.Instruction {
	indent := in.IndentPerLevel
	if indent <= 0 {
		indent = DefaultIndentPerLevel
	}
	desired := hitbox(in, indent)
	return applyBlock(desired, in.Block)
}

// standardHitbox splits the row in quarters: the top quarter reorders above, the bottom
// quarter reorders below and the middle nests.
func standardHitbox(p Point, r Rect) model.InstructionType {
	quarter := r.Height / 4
	if p.Y <= r.Top+quarter {
		return model.InstructionReorderAbove
	}
	if p.Y >= r.Bottom()-quarter {
		return model.InstructionReorderBelow
	}
	return model.InstructionMakeChild
}

func hitbox(in Input, indent int) model.Instruction {
	base := model.Instruction{CurrentLevel: in.CurrentLevel, IndentPerLevel: indent}

	switch in.Mode {
	case ModeExpanded:
		// Same "above" zone as a standard row; everything else drops in as first child.
		if standardHitbox(in.Pointer, in.Row) == model.InstructionReorderAbove {
			base.Type = model.InstructionReorderAbove
		} else {
			base.Type = model.InstructionMakeChild
		}
		return base
	case ModeLastInGroup:
		// Left of the row content: upper half reorders above, lower half picks an
		// ancestor level by x.
		inset := float64(indent * in.CurrentLevel)
		if in.CurrentLevel > 0 && in.Pointer.X < in.Row.Left+inset {
			if in.Pointer.Y < in.Row.CenterY() {
				base.Type = model.InstructionReorderAbove
				return base
			}
			level := int(math.Floor((in.Pointer.X - in.Row.Left) / float64(indent)))
			if level < 0 {
				level = 0
			}
			if level >= in.CurrentLevel {
				level = in.CurrentLevel - 1
			}
			base.Type = model.InstructionReparent
			base.DesiredLevel = level
			return base
		}
	}
	base.Type = standardHitbox(in.Pointer, in.Row)
	return base
}

// Block wraps desired as instruction-blocked. Already blocked instructions are returned
// unchanged.
func Block(desired model.Instruction) model.Instruction {
	if desired.Blocked() {
		return desired
	}
	d := desired
	return model.Instruction{
		Type:           model.InstructionBlocked,
		CurrentLevel:   desired.CurrentLevel,
		IndentPerLevel: desired.IndentPerLevel,
		Desired:        &d,
	}
}

func applyBlock(desired model.Instruction, block []model.InstructionType) model.Instruction {
	for _, b := range block {
		if b == desired.Type {
			return Block(desired)
		}
	}
	return desired
}

// ParentLevel is the level of the ancestor a drop would land under, used to highlight
// it. Blocked instructions resolve through what they wanted to be.
func ParentLevel(instr model.Instruction) int {
	if instr.Blocked() && instr.Desired != nil {
		return ParentLevel(*instr.Desired)
	}
	if instr.Type == model.InstructionReparent {
		return instr.DesiredLevel - 1
	}
	return instr.CurrentLevel - 1
}
