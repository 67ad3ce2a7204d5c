package tui

import (
	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"
)

// outlineRow is one visible row of the tree.
type outlineRow struct {
	node     model.Node
	parentID string
	depth    int
	// index and siblings locate the row among its visible siblings.
	index    int
	siblings int
}

func (r outlineRow) hasChildren() bool { return tree.HasChildren(r.node) }

// flattenForest lists the rows an open tree displays: children of collapsed nodes are
// skipped, and hidden nodes (with their subtrees) unless showHidden is set.
func flattenForest(f model.Forest, showHidden bool) []outlineRow {
	var out []outlineRow
	var walk func(nodes []model.Node, parentID string, depth int)
	walk = func(nodes []model.Node, parentID string, depth int) {
		visible := make([]model.Node, 0, len(nodes))
		for _, n := range nodes {
			if n.Hide && !showHidden {
				continue
			}
			visible = append(visible, n)
		}
		for i, n := range visible {
			out = append(out, outlineRow{
				node:     n,
				parentID: parentID,
				depth:    depth,
				index:    i,
				siblings: len(visible),
			})
			if n.Expanded && tree.HasChildren(n) {
				walk(n.Children, n.ID, depth+1)
			}
		}
	}
	walk(f, model.RootID, 0)
	return out
}

func rowIndex(rows []outlineRow, id string) int {
	for i, r := range rows {
		if r.node.ID == id {
			return i
		}
	}
	return -1
}
