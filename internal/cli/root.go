package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sortable-tree/internal/editor"
	"sortable-tree/internal/format"
	"sortable-tree/internal/model"
	"sortable-tree/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type App struct {
	Dir        string
	Document   string
	ConfigFile string
	PrettyJSON bool
	Format     string
	LogLevel   string

	Clipboard string
	Events    string

	cfg store.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "sortree",
		Short:        "Sortable tree editor (CLI + TUI + browser)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  sortree

  # Create a workspace from an existing document
  sortree init --from menu.json

  # Inspect and edit
  sortree show --format outline
  sortree move 1_2 3 --instruction make-child
  sortree modal-move 1_2 --index 0

  # Serve the browser editor
  sortree web
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.configure()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("SORTREE_DIR", ""), "Workspace dir (default: nearest .sortree/ upwards, else ./.sortree)")
	cmd.PersistentFlags().StringVar(&app.Document, "document", envOr("SORTREE_DOCUMENT", ""), "Document file (relative to the workspace dir)")
	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("SORTREE_CONFIG", ""), "Config file (default: <dir>/config.yaml, then ~/.config/sortree/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output (outline: include collapsed subtrees)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SORTREE_FORMAT", "json"), "Output format (json|edn|outline)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error); default from config, else warn")
	cmd.PersistentFlags().StringVar(&app.Clipboard, "clipboard", "", "Clipboard backend (sqlite|diskv)")
	cmd.PersistentFlags().StringVar(&app.Events, "events", "", "Event log backend (jsonl|sqlite)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newFindCmd(app))
	cmd.AddCommand(newPathCmd(app))
	cmd.AddCommand(newChildrenCmd(app))
	cmd.AddCommand(newTargetsCmd(app))
	for _, c := range newItemActionCmds(app) {
		cmd.AddCommand(c)
	}
	cmd.AddCommand(newPasteCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newModalMoveCmd(app))
	cmd.AddCommand(newInterpretCmd(app))
	cmd.AddCommand(newApplyCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebTUICmd(app))

	return cmd
}

// configure resolves the workspace dir, reads config and applies flag overrides.
func (app *App) configure() error {
	if app.Dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return err
		}
		app.Dir = d
	} else {
		d, err := store.ExpandPath(app.Dir)
		if err != nil {
			return err
		}
		app.Dir = d
	}

	cfg, err := store.Store{Dir: app.Dir}.LoadConfig(viper.New(), app.ConfigFile)
	if err != nil {
		return err
	}
	if app.Document != "" {
		cfg.Document = app.Document
	}
	if app.Clipboard != "" {
		cfg.ClipboardBackend = app.Clipboard
	}
	if app.Events != "" {
		cfg.EventsBackend = app.Events
	}
	if app.LogLevel != "" {
		cfg.LogLevel = app.LogLevel
	}
	app.cfg = cfg
	return setupLogging(cfg.LogLevel)
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %q", level)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(lvl)
	return nil
}

func (app *App) workspace() store.Store {
	return store.Store{Dir: app.Dir}
}

func (app *App) documentPath() string {
	return app.workspace().DocumentPath(app.cfg.Document)
}

// loadEditor opens the document with the configured clipboard and event log.
func loadEditor(app *App) (*editor.Editor, error) {
	s := app.workspace()
	path := app.documentPath()
	f, err := s.LoadDocument(path)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("no document at %s; run `sortree init` first", path)
		}
		return nil, err
	}
	cb, err := s.OpenClipboard(app.cfg.ClipboardBackend)
	if err != nil {
		return nil, err
	}
	events, err := s.OpenEventLog(app.cfg.EventsBackend)
	if err != nil {
		return nil, err
	}
	return editor.New(editor.Options{
		Forest:      f,
		Save:        func(f model.Forest) error { return s.SaveDocument(path, f) },
		Clipboard:   cb,
		Events:      events,
		ExpandDelay: app.cfg.ExpandDelay,
	}), nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeData wraps v as {"data": v}, except for outline output which renders trees bare.
func writeData(cmd *cobra.Command, app *App, v any) error {
	if app.Format == "outline" {
		return writeOut(cmd, app, v)
	}
	return writeOut(cmd, app, map[string]any{"data": v})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
