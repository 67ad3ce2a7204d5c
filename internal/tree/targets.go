package tree

import (
	"strings"

	"sortable-tree/internal/model"
)

// Target is a node a dragged item may be dropped next to or, when CanContain, into.
type Target struct {
	ID         string   `json:"id"`
	Title      string   `json:"title,omitempty"`
	Level      int      `json:"level"`
	Path       []string `json:"path"`
	CanContain bool     `json:"canContain"`
}

// Label is the display name for pickers: the title when set, the id otherwise.
func (t Target) Label() string {
	if s := strings.TrimSpace(t.Title); s != "" {
		return s
	}
	return t.ID
}

// MoveTargets lists every node except draggedID and its subtree, depth-first. Draft
// nodes stay valid reorder targets but cannot contain the dragged node.
func MoveTargets(f model.Forest, draggedID string) []Target {
	out := []Target{}
	var visit func(nodes []model.Node, path []string)
	visit = func(nodes []model.Node, path []string) {
		for _, n := range nodes {
			if n.ID == draggedID {
				continue
			}
			p := make([]string, len(path))
			copy(p, path)
			out = append(out, Target{
				ID:         n.ID,
				Title:      n.Title,
				Level:      len(path),
				Path:       p,
				CanContain: !n.IsDraft,
			})
			visit(n.Children, append(p, n.ID))
		}
	}
	visit(f, nil)
	return out
}

// ContainerTargets is MoveTargets restricted to nodes that may receive children.
func ContainerTargets(f model.Forest, draggedID string) []Target {
	all := MoveTargets(f, draggedID)
	out := make([]Target, 0, len(all))
	for _, t := range all {
		if t.CanContain {
			out = append(out, t)
		}
	}
	return out
}

// CanDropOn reports whether targetID is outside the subtree of draggedID.
func CanDropOn(f model.Forest, draggedID, targetID string) bool {
	dragged, ok := Find(f, draggedID)
	if !ok {
		return false
	}
	return !Contains(dragged, targetID)
}
