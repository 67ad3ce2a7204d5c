package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"sortable-tree/internal/gesture"
	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"

	"github.com/spf13/cobra"
)

var instructionTypes = []model.InstructionType{
	model.InstructionReorderAbove,
	model.InstructionReorderBelow,
	model.InstructionMakeChild,
	model.InstructionReparent,
}

func parseInstructionType(s string) (model.InstructionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range instructionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid --instruction %q (want reorder-above|reorder-below|make-child|reparent)", s)
}

func newMoveCmd(app *App) *cobra.Command {
	var instruction string
	var level int

	cmd := &cobra.Command{
		Use:   "move <item-id> <target-id>",
		Short: "Apply a drop instruction as if item-id was dropped on target-id",
		Example: strings.TrimSpace(`
sortree move 1_2 3 --instruction make-child
sortree move 1_3_0 1_3 --instruction reparent --level 0
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseInstructionType(instruction)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			itemID, targetID := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if _, err := e.Find(itemID); err != nil {
				return writeErr(cmd, err)
			}
			row, ok := gesture.RowOf(e.Forest(), targetID)
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "item", ID: targetID})
			}

			instr := model.Instruction{
				Type:           typ,
				CurrentLevel:   row.Level,
				IndentPerLevel: app.cfg.IndentPerLevel,
			}
			if typ == model.InstructionReparent {
				if !cmd.Flags().Changed("level") {
					return writeErr(cmd, fmt.Errorf("move: reparent needs --level"))
				}
				instr.DesiredLevel = level
			}
			return dispatchAndWrite(cmd, app, mutate.Instruction{Instruction: instr, ItemID: itemID, TargetID: targetID}, false)
		},
	}
	cmd.Flags().StringVar(&instruction, "instruction", string(model.InstructionReorderBelow), "reorder-above|reorder-below|make-child|reparent")
	cmd.Flags().IntVar(&level, "level", 0, "Ancestor level to reparent after (reparent only)")
	return cmd
}

func newModalMoveCmd(app *App) *cobra.Command {
	var to string
	var index int

	cmd := &cobra.Command{
		Use:   "modal-move <item-id>",
		Short: "Move an item to a position among the children of --to (default: top level)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(to)
			if target == rootAlias {
				target = model.RootID
			}
			if index < 0 {
				return writeErr(cmd, fmt.Errorf("modal-move: --index must be >= 0"))
			}
			a := mutate.ModalMove{ItemID: strings.TrimSpace(args[0]), TargetID: target, Index: index}
			return dispatchAndWrite(cmd, app, a, true)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "New parent id (empty or _root for the top level)")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the new siblings (0-based)")
	return cmd
}

func newInterpretCmd(app *App) *cobra.Command {
	var (
		in    gesture.Input
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "interpret <dragged-id> <target-id>",
		Short: "Compute the drop instruction for a pointer position over a row",
		Long: strings.TrimSpace(`
Runs the drag interpreter without a browser. The row rectangle and pointer use the
same coordinate space; level and hitbox mode come from the document.
`),
		Example: strings.TrimSpace(`
# Pointer in the middle of a 40px row => make-child
sortree interpret 1_2 3 --y 20 --height 40 --width 200

# Drop it for real
sortree interpret 1_2 3 --y 20 --height 40 --width 200 --apply
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dragged, target := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if in.IndentPerLevel <= 0 {
				in.IndentPerLevel = app.cfg.IndentPerLevel
			}

			f := e.Forest()
			instr := gesture.Interpret(f, dragged, target, gesture.InputFor(f, target, in))
			parent, highlight := gesture.HighlightParentID(f, target, instr)
			out := map[string]any{"instruction": instr}
			if highlight {
				out["highlightParentId"] = parent
			}

			if apply && !instr.Blocked() {
				eff, err := e.Dispatch(cmd.Context(), mutate.Instruction{Instruction: instr, ItemID: dragged, TargetID: target})
				if err != nil {
					return writeErr(cmd, err)
				}
				out["effect"] = eff
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().Float64Var(&in.Pointer.X, "x", 0, "Pointer x")
	cmd.Flags().Float64Var(&in.Pointer.Y, "y", 0, "Pointer y")
	cmd.Flags().Float64Var(&in.Row.Left, "left", 0, "Row left edge")
	cmd.Flags().Float64Var(&in.Row.Top, "top", 0, "Row top edge")
	cmd.Flags().Float64Var(&in.Row.Width, "width", 200, "Row width")
	cmd.Flags().Float64Var(&in.Row.Height, "height", 40, "Row height")
	cmd.Flags().IntVar(&in.IndentPerLevel, "indent", 0, "Indent per level in pixels (default from config)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Dispatch the instruction unless it is blocked")
	return cmd
}

func newApplyCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Dispatch actions from JSON (one object or an array, - for stdin)",
		Example: strings.TrimSpace(`
echo '{"type":"toggle","itemId":"1"}' | sortree apply
sortree apply --file actions.json
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			actions, err := decodeActions(b)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			effects := make([]mutate.Effect, 0, len(actions))
			for i, a := range actions {
				eff, err := e.Dispatch(cmd.Context(), a)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("action %d (%s): %w", i, a.Type(), err))
				}
				effects = append(effects, eff)
			}
			return writeOut(cmd, app, map[string]any{"data": effects})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "JSON file with actions")
	return cmd
}

func decodeActions(b []byte) ([]mutate.Action, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("apply: no input")
	}
	var raws []json.RawMessage
	if b[0] == '[' {
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
	} else {
		raws = []json.RawMessage{b}
	}
	out := make([]mutate.Action, 0, len(raws))
	for i, raw := range raws {
		a, err := mutate.DecodeAction(raw)
		if err != nil {
			return nil, fmt.Errorf("apply: action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}
