// Package tree implements the immutable forest algebra.
//
// Every function returns a new forest and never writes to its input. Only the nodes on
// the path from the root to the changed node are rebuilt; every other subtree keeps its
// backing array, so unchanged ids (and the slices behind them) are stable across calls.
package tree

import (
	"sortable-tree/internal/model"
)

// HasChildren reports whether n has at least one child.
func HasChildren(n model.Node) bool {
	return len(n.Children) > 0
}

// Find returns the first node with id in depth-first pre-order.
func Find(f model.Forest, id string) (model.Node, bool) {
	return find(f, id)
}

func find(nodes []model.Node, id string) (model.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if HasChildren(n) {
			if got, ok := find(n.Children, id); ok {
				return got, true
			}
		}
	}
	return model.Node{}, false
}

// PathToItem returns the ids of the ancestors of id, outermost first. The implicit root
// and the node itself are excluded, so a top-level id yields an empty path.
func PathToItem(f model.Forest, id string) ([]string, bool) {
	return pathTo(f, id, []string{})
}

func pathTo(nodes []model.Node, id string, parents []string) ([]string, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return parents, true
		}
		if !HasChildren(n) {
			continue
		}
		next := make([]string, len(parents), len(parents)+1)
		copy(next, parents)
		next = append(next, n.ID)
		if got, ok := pathTo(n.Children, id, next); ok {
			return got, true
		}
	}
	return nil, false
}

// Level is the nesting depth of id (0 for top-level nodes).
func Level(f model.Forest, id string) (int, bool) {
	p, ok := PathToItem(f, id)
	if !ok {
		return 0, false
	}
	return len(p), true
}

// ChildrenOf returns the children of id, or the top level for model.RootID.
func ChildrenOf(f model.Forest, id string) []model.Node {
	if id == model.RootID {
		return f
	}
	n, ok := Find(f, id)
	if !ok {
		return nil
	}
	return n.Children
}

// Contains reports whether id is n itself or any node below it.
func Contains(n model.Node, id string) bool {
	if n.ID == id {
		return true
	}
	for _, ch := range n.Children {
		if Contains(ch, id) {
			return true
		}
	}
	return false
}

// Walk visits every node depth-first, children in order. Returning false from fn skips
// that node's subtree.
func Walk(f model.Forest, fn func(n model.Node, level int) bool) {
	walk(f, 0, fn)
}

func walk(nodes []model.Node, level int, fn func(model.Node, int) bool) {
	for _, n := range nodes {
		if !fn(n, level) {
			continue
		}
		walk(n.Children, level+1, fn)
	}
}

// IDs returns the set of ids present in the forest.
func IDs(f model.Forest) map[string]bool {
	out := map[string]bool{}
	Walk(f, func(n model.Node, _ int) bool {
		out[n.ID] = true
		return true
	})
	return out
}

// splice replaces the first node with id by whatever fn returns (zero, one or more
// nodes). When id is not present the input slice is returned as is.
func splice(nodes []model.Node, id string, fn func(model.Node) []model.Node) ([]model.Node, bool) {
	for i, n := range nodes {
		if n.ID == id {
			repl := fn(n)
			out := make([]model.Node, 0, len(nodes)-1+len(repl))
			out = append(out, nodes[:i]...)
			out = append(out, repl...)
			out = append(out, nodes[i+1:]...)
			return out, true
		}
		if !HasChildren(n) {
			continue
		}
		kids, ok := splice(n.Children, id, fn)
		if !ok {
			continue
		}
		out := make([]model.Node, len(nodes))
		copy(out, nodes)
		n.Children = kids
		out[i] = n
		return out, true
	}
	return nodes, false
}

func replace(f model.Forest, id string, fn func(model.Node) model.Node) model.Forest {
	out, _ := splice(f, id, func(n model.Node) []model.Node { return []model.Node{fn(n)} })
	return out
}

// Remove drops every node with id together with its subtree.
func Remove(f model.Forest, id string) model.Forest {
	out := []model.Node(f)
	for {
		next, ok := splice(out, id, func(model.Node) []model.Node { return nil })
		if !ok {
			return out
		}
		out = next
	}
}

// InsertBefore places n immediately before targetID, at the target's level.
func InsertBefore(f model.Forest, targetID string, n model.Node) model.Forest {
	out, _ := splice(f, targetID, func(t model.Node) []model.Node { return []model.Node{n, t} })
	return out
}

// InsertAfter places n immediately after targetID, at the target's level.
func InsertAfter(f model.Forest, targetID string, n model.Node) model.Forest {
	out, _ := splice(f, targetID, func(t model.Node) []model.Node { return []model.Node{t, n} })
	return out
}

// InsertChild makes n the first child of targetID and expands the target.
func InsertChild(f model.Forest, targetID string, n model.Node) model.Forest {
	return replace(f, targetID, func(t model.Node) model.Node {
		kids := make([]model.Node, 0, len(t.Children)+1)
		kids = append(kids, n)
		kids = append(kids, t.Children...)
		t.Children = kids
		t.Expanded = true
		return t
	})
}

// InsertAtLast appends n to the top level. The appended subtree gets fresh ids (see
// FreshRootID) so pasting the same buffer twice never duplicates ids.
func InsertAtLast(f model.Forest, n model.Node) model.Forest {
	existing := IDs(f)
	k := len(f)
	var fresh model.Node
	for {
		fresh = cloneWithIDs(n, FreshRootID(k), false)
		if disjoint(fresh, existing) {
			break
		}
		k++
	}
	out := make(model.Forest, 0, len(f)+1)
	out = append(out, f...)
	return append(out, fresh)
}

// Update replaces the node whose id matches n.ID, keeping its position.
func Update(f model.Forest, n model.Node) model.Forest {
	return replace(f, n.ID, func(model.Node) model.Node { return n })
}

// Hide flips the hide flag on the node with id.
func Hide(f model.Forest, id string) model.Forest {
	return replace(f, id, func(t model.Node) model.Node {
		t.Hide = !t.Hide
		return t
	})
}

// Toggle flips expanded on the node with id. Leaves are left untouched.
func Toggle(f model.Forest, id string) model.Forest {
	n, ok := Find(f, id)
	if !ok || !HasChildren(n) {
		return f
	}
	return replace(f, id, func(t model.Node) model.Node {
		t.Expanded = !t.Expanded
		return t
	})
}

// Copy duplicates the node with id and inserts the clone right after it. The source's
// copy counter is bumped to the index embedded in the clone's id. The clone is returned
// for the clipboard; nil when id is absent.
func Copy(f model.Forest, id string) (model.Forest, *model.Node) {
	src, ok := Find(f, id)
	if !ok {
		return f, nil
	}
	existing := IDs(f)
	n := src.Copys + 1
	var clone model.Node
	for {
		clone = cloneWithIDs(src, CopyID(src.ID, n), true)
		if disjoint(clone, existing) {
			break
		}
		n++
	}
	src.Copys = n
	out, _ := splice(f, id, func(model.Node) []model.Node { return []model.Node{src, clone} })
	return out, &clone
}
