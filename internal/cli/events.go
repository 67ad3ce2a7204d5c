package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	var item string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the action history",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events (oldest-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.workspace().OpenEventLog(app.cfg.EventsBackend)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			id := strings.TrimSpace(item)
			if id == "" {
				evs, err := events.Tail(ctx, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": evs})
			}
			evs, err := events.ForEntity(ctx, id, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	listCmd.Flags().StringVar(&item, "item", "", "Only events about this item id")

	cmd.AddCommand(listCmd)
	return cmd
}
