// Package webtui serves the terminal outline in a browser: each WebSocket gets its own
// TUI process on a server-side PTY, rendered by xterm.js.
package webtui

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html static/*.js
var assetsFS embed.FS

var log = logrus.WithField("component", "webtui")

type ServerConfig struct {
	// Dir and Document are passed to the child process as --dir and --document.
	Dir      string
	Document string

	// Command builds the process for one session. Nil runs this executable with no
	// subcommand, which starts the TUI.
	Command func(args []string) (*exec.Cmd, error)
}

type Server struct {
	cfg  ServerConfig
	tmpl *template.Template
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("webtui: missing workspace dir")
	}
	if cfg.Command == nil {
		cfg.Command = selfCommand
	}
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, tmpl: tmpl}, nil
}

func selfCommand(args []string) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return exec.Command(exe, args...), nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/terminal", http.StatusFound)
	})
	mux.HandleFunc("GET /terminal", s.handleTerminal)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /static/terminal.js", func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile("static/terminal.js")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		_, _ = w.Write(b)
	})
	return mux
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	vm := struct{ Dir, Document string }{s.cfg.Dir, s.cfg.Document}
	if err := s.tmpl.ExecuteTemplate(w, "terminal.html", vm); err != nil {
		log.WithError(err).Error("render terminal page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// sessionArgs are the flags each child TUI starts with.
func (s *Server) sessionArgs() []string {
	args := []string{"--dir", s.cfg.Dir}
	if d := strings.TrimSpace(s.cfg.Document); d != "" {
		args = append(args, "--document", d)
	}
	return args
}
