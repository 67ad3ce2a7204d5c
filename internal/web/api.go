package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sortable-tree/internal/editor"
	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"
	"sortable-tree/internal/tree"
)

// rootAlias names the implicit root in URLs.
const rootAlias = "_root"

const maxActionBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps editor errors to status codes: unknown items are 404, invariant
// violations 500 and an empty clipboard 409. Anything else gets fallback.
func writeError(w http.ResponseWriter, fallback int, err error) {
	status := fallback
	var nf mutate.NotFoundError
	var inv *mutate.InvariantError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &inv):
		status = http.StatusInternalServerError
	case errors.Is(err, editor.ErrEmptyClipboard):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func itemID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("itemId"))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.cfg.Editor.Forest()})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	e := s.cfg.Editor
	n, err := e.Find(itemID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	path, _ := e.PathToItem(n.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"data": n,
		"meta": map[string]any{"level": len(path), "path": path},
	})
}

func (s *Server) handleItemPath(w http.ResponseWriter, r *http.Request) {
	path, err := s.cfg.Editor.PathToItem(itemID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": path})
}

func (s *Server) handleItemTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.cfg.Editor.MoveTargets(itemID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if v := r.URL.Query().Get("containers"); v == "1" || v == "true" {
		kept := make([]tree.Target, 0, len(targets))
		for _, t := range targets {
			if t.CanContain {
				kept = append(kept, t)
			}
		}
		targets = kept
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": targets})
}

func (s *Server) handleItemChildren(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)
	if id == rootAlias {
		id = model.RootID
	}
	kids, err := s.cfg.Editor.ChildrenOf(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": kids})
}

// handleActions dispatches one action object or an array of them, in order. The
// response carries one effect per dispatched action.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	actions, err := decodeActions(b)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	effects := make([]mutate.Effect, 0, len(actions))
	for i, a := range actions {
		eff, err := s.cfg.Editor.Dispatch(r.Context(), a)
		if err != nil {
			log.WithError(err).WithField("type", a.Type()).Warn("dispatch")
			writeError(w, http.StatusInternalServerError, fmt.Errorf("action %d (%s): %w", i, a.Type(), err))
			return
		}
		effects = append(effects, eff)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": effects})
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	eff, err := s.cfg.Editor.Paste(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": []mutate.Effect{eff}})
}

func decodeActions(b []byte) ([]mutate.Action, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty body")
	}
	var raws []json.RawMessage
	if b[0] == '[' {
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil, err
		}
	} else {
		raws = []json.RawMessage{b}
	}
	out := make([]mutate.Action, 0, len(raws))
	for i, raw := range raws {
		a, err := mutate.DecodeAction(raw)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}
