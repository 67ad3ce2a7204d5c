package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"sortable-tree/internal/webtui"

	"github.com/spf13/cobra"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal outline in a browser (PTY + WebSocket)",
		Long: strings.TrimSpace(`
Run the interactive outline over the web through a server-side PTY and xterm.js.

Each browser tab starts its own TUI process on this machine against the same
workspace. There is no authentication; bind to localhost.
`),
		Example: strings.TrimSpace(`
sortree webtui --addr 127.0.0.1:3336
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}
			// Fail early instead of in every child process.
			if _, err := loadEditor(app); err != nil {
				return writeErr(cmd, err)
			}
			srv, err := webtui.NewServer(webtui.ServerConfig{Dir: app.Dir, Document: app.cfg.Document})
			if err != nil {
				return writeErr(cmd, err)
			}
			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			url := "http://" + ln.Addr().String() + "/terminal"
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      ln.Addr().String(),
					"dir":       app.Dir,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{"open " + url},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "sortree webtui running at %s\n", url)
			return http.Serve(ln, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3336", "Bind address (host:port or :port)")
	return cmd
}
