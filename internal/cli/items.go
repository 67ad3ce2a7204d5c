package cli

import (
	"context"
	"errors"
	"strings"

	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"

	"github.com/spf13/cobra"
)

// rootAlias lets scripts name the implicit root explicitly.
const rootAlias = "_root"

func parentArg(args []string) string {
	if len(args) == 0 {
		return model.RootID
	}
	id := strings.TrimSpace(args[0])
	if id == rootAlias {
		return model.RootID
	}
	return id
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [item-id]",
		Short: "Print the tree, or the subtree rooted at item-id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(args) == 0 {
				return writeData(cmd, app, e.Forest())
			}
			n, err := e.Find(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, n)
		},
	}
}

func newFindCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "find <item-id>",
		Short: "Look up one item (depth-first, first match)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := e.Find(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			path, _ := e.PathToItem(n.ID)
			return writeOut(cmd, app, map[string]any{
				"data": n,
				"meta": map[string]any{"level": len(path), "path": path},
			})
		},
	}
}

func newPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path <item-id>",
		Short: "Print the ancestor ids of an item, root first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := e.PathToItem(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": path})
		},
	}
}

func newChildrenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "children [item-id|_root]",
		Short: "List the children of an item (default: the top level)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			kids, err := e.ChildrenOf(parentArg(args))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeData(cmd, app, kids)
		},
	}
}

func newTargetsCmd(app *App) *cobra.Command {
	var containers bool

	cmd := &cobra.Command{
		Use:   "targets <item-id>",
		Short: "List where an item may be moved (everything outside its own subtree)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			targets, err := e.MoveTargets(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if containers {
				kept := targets[:0]
				for _, t := range targets {
					if t.CanContain {
						kept = append(kept, t)
					}
				}
				targets = kept
			}
			return writeOut(cmd, app, map[string]any{"data": targets})
		},
	}
	cmd.Flags().BoolVar(&containers, "containers", false, "Only targets that can receive children")
	return cmd
}

// newItemActionCmds builds the single-id commands (toggle, expand, ...).
func newItemActionCmds(app *App) []*cobra.Command {
	specs := []struct {
		use   string
		short string
		build func(id string) mutate.Action
	}{
		{"toggle", "Open or close an item with children", func(id string) mutate.Action { return mutate.Toggle{ItemID: id} }},
		{"expand", "Open an item with children", func(id string) mutate.Action { return mutate.Expand{ItemID: id} }},
		{"collapse", "Close an item with children", func(id string) mutate.Action { return mutate.Collapse{ItemID: id} }},
		{"remove", "Delete an item and its subtree", func(id string) mutate.Action { return mutate.Remove{ItemID: id} }},
		{"hide", "Flip the hidden flag of an item", func(id string) mutate.Action { return mutate.Hide{ItemID: id} }},
		{"copy", "Duplicate an item after itself and keep the copy for paste", func(id string) mutate.Action { return mutate.Copy{ItemID: id} }},
	}

	out := make([]*cobra.Command, 0, len(specs))
	for _, sp := range specs {
		sp := sp
		out = append(out, &cobra.Command{
			Use:   sp.use + " <item-id>",
			Short: sp.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return dispatchAndWrite(cmd, app, sp.build(strings.TrimSpace(args[0])), true)
			},
		})
	}
	return out
}

func newPasteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "paste",
		Short: "Append the last copied subtree to the top level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			eff, err := e.Paste(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			pasted, err := e.Find(eff.ItemID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": pasted, "effect": eff})
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	var (
		title string
		slug  string
		draft bool
	)

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change an item's title, slug or draft flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEditor(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := e.Find(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("slug") && !flags.Changed("draft") {
				return writeErr(cmd, errors.New("update: nothing to change (use --title, --slug or --draft)"))
			}
			if flags.Changed("title") {
				n.Title = title
			}
			if flags.Changed("slug") {
				n.Slug = slug
			}
			if flags.Changed("draft") {
				n.IsDraft = draft
			}
			if _, err := e.Dispatch(cmd.Context(), mutate.Update{Item: n}); err != nil {
				return writeErr(cmd, err)
			}
			updated, _ := e.Find(n.ID)
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&slug, "slug", "", "New slug")
	cmd.Flags().BoolVar(&draft, "draft", false, "Mark as draft (drafts never receive children)")
	return cmd
}

// dispatchAndWrite applies a and prints the effect. When requireItem is set, an
// unknown subject is reported instead of silently doing nothing.
func dispatchAndWrite(cmd *cobra.Command, app *App, a mutate.Action, requireItem bool) error {
	e, err := loadEditor(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	if requireItem {
		if _, err := e.Find(a.Subject()); err != nil {
			return writeErr(cmd, err)
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	eff, err := e.Dispatch(ctx, a)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": eff, "meta": map[string]any{"action": mutate.Describe(a)}})
}
