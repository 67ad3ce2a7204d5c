// Package web serves the browser editor: a JSON API over the editor, a datastar SSE
// stream of effects and re-rendered rows, and WebSocket drag sessions.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"sortable-tree/internal/editor"
	"sortable-tree/internal/gesture"
	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

var log = logrus.WithField("component", "web")

type ServerConfig struct {
	Editor *editor.Editor

	// IndentPerLevel is the pixel indent of one tree level, shared with the page so the
	// hitbox and the rendering agree.
	IndentPerLevel int
	Title          string

	// KeepAlive is the SSE keep-alive interval.
	KeepAlive time.Duration
}

type Server struct {
	cfg  ServerConfig
	tmpl *template.Template
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Editor == nil {
		return nil, errors.New("web: editor is nil")
	}
	if cfg.IndentPerLevel <= 0 {
		cfg.IndentPerLevel = gesture.DefaultIndentPerLevel
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Title == "" {
		cfg.Title = "sortree"
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 25 * time.Second
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"title":  renderTitleHTML,
		"indent": func(level int) int { return level * cfg.IndentPerLevel },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, tmpl: tmpl}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))

	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/items/{itemId}", s.handleItem)
	mux.HandleFunc("GET /api/items/{itemId}/path", s.handleItemPath)
	mux.HandleFunc("GET /api/items/{itemId}/targets", s.handleItemTargets)
	mux.HandleFunc("GET /api/items/{itemId}/children", s.handleItemChildren)
	mux.HandleFunc("POST /api/actions", s.handleActions)
	mux.HandleFunc("POST /api/paste", s.handlePaste)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(path)
		if err != nil || len(b) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

// rowVM is one rendered row. Children are only filled for open rows.
type rowVM struct {
	ID          string
	Title       string
	Level       int
	Mode        gesture.Mode
	Expanded    bool
	HasChildren bool
	Hidden      bool
	Draft       bool
	Children    []rowVM
}

func rowsVM(nodes []model.Node, level int) []rowVM {
	out := make([]rowVM, 0, len(nodes))
	for i, n := range nodes {
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = n.ID
		}
		vm := rowVM{
			ID:          n.ID,
			Title:       title,
			Level:       level,
			Mode:        gesture.ModeFor(n, i, nodes),
			Expanded:    n.Expanded,
			HasChildren: tree.HasChildren(n),
			Hidden:      n.Hide,
			Draft:       n.IsDraft,
		}
		if vm.HasChildren && n.Expanded {
			vm.Children = rowsVM(n.Children, level+1)
		}
		out = append(out, vm)
	}
	return out
}

type homeVM struct {
	Title          string
	IndentPerLevel int
	Rows           []rowVM
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	vm := homeVM{
		Title:          s.cfg.Title,
		IndentPerLevel: s.cfg.IndentPerLevel,
		Rows:           rowsVM(s.cfg.Editor.Forest(), 0),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", vm); err != nil {
		log.WithError(err).Error("render index")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		_, _ = io.WriteString(w, err.Error())
	}
}

// renderTree renders the #tree element for the current forest.
func (s *Server) renderTree() (string, error) {
	var b bytes.Buffer
	err := s.tmpl.ExecuteTemplate(&b, "tree", rowsVM(s.cfg.Editor.Forest(), 0))
	return b.String(), err
}
