package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sortable-tree/internal/model"
	"sortable-tree/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var from string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the workspace and its document",
		Example: strings.TrimSpace(`
# Start with an empty tree
sortree init

# Import an existing tree (bare array or {"items": [...]}, "-" reads stdin)
sortree init --from menu.json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.workspace()
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}

			path := app.documentPath()
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("document already exists at %s (use --force to replace it)", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return writeErr(cmd, err)
			}

			f := model.Forest{}
			migrated := false
			if strings.TrimSpace(from) != "" {
				b, err := readInput(cmd, from)
				if err != nil {
					return writeErr(cmd, err)
				}
				f, migrated, err = store.DecodeDocument(b)
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := s.SaveDocument(path, f); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":      app.Dir,
					"document": path,
					"items":    len(f),
					"migrated": migrated,
				},
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Import a JSON document (path or - for stdin)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing document")
	return cmd
}

// readInput reads a file argument, with "-" meaning the command's stdin.
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	path, err := store.ExpandPath(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
