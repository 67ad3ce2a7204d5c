package cli

import (
	"sortable-tree/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and rearrange the tree in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runTUI(app); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

func runTUI(app *App) error {
	e, err := loadEditor(app)
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{Editor: e, Store: app.workspace()})
}
