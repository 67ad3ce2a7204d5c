package tree

import (
	"fmt"
	"strconv"
	"strings"

	"sortable-tree/internal/model"
)

// ChildID derives a descendant id from its parent id and sibling index.
func ChildID(parentID string, index int) string {
	if parentID == "" {
		return strconv.Itoa(index)
	}
	return parentID + "_" + strconv.Itoa(index)
}

// CopyID is the id of the n-th duplicate of originalID. n is the source's copy counter
// after the copy, so repeated copies of one node never reuse an index.
func CopyID(originalID string, n int) string {
	return fmt.Sprintf("%s-copy%d", originalID, n)
}

// FreshRootID is the id candidate for a subtree appended at top-level position k.
func FreshRootID(k int) string {
	return strconv.Itoa(k)
}

// AssignIDs returns a copy of f where every node gets a positional id: the top-level
// index for roots and parent_index below them. It is meant to run once per loaded
// document, before anything keys off ids.
func AssignIDs(f model.Forest) model.Forest {
	return assignIDs(f, "")
}

func assignIDs(nodes []model.Node, parentID string) []model.Node {
	if nodes == nil {
		return nil
	}
	out := make([]model.Node, len(nodes))
	for i, n := range nodes {
		n.ID = ChildID(parentID, i)
		n.Children = assignIDs(n.Children, n.ID)
		out[i] = n
	}
	return out
}

// NeedsIDs reports whether any node lacks an id or shares it with another node.
func NeedsIDs(f model.Forest) bool {
	return len(Duplicates(f)) > 0 || hasEmptyID(f)
}

func hasEmptyID(f model.Forest) bool {
	empty := false
	Walk(f, func(n model.Node, _ int) bool {
		if strings.TrimSpace(n.ID) == "" {
			empty = true
		}
		return !empty
	})
	return empty
}

// Duplicates lists ids that occur more than once, in first-seen order.
func Duplicates(f model.Forest) []string {
	seen := map[string]int{}
	var out []string
	Walk(f, func(n model.Node, _ int) bool {
		seen[n.ID]++
		if seen[n.ID] == 2 {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

// cloneWithIDs deep copies n giving it rootID and deriving every descendant id from
// its new parent. resetCopies clears the copy counters of the clone.
func cloneWithIDs(n model.Node, rootID string, resetCopies bool) model.Node {
	n.ID = rootID
	if resetCopies {
		n.Copys = 0
	}
	if n.Children == nil {
		return n
	}
	kids := make([]model.Node, len(n.Children))
	for i, ch := range n.Children {
		kids[i] = cloneWithIDs(ch, ChildID(rootID, i), resetCopies)
	}
	n.Children = kids
	return n
}

func disjoint(n model.Node, existing map[string]bool) bool {
	if existing[n.ID] {
		return false
	}
	for _, ch := range n.Children {
		if !disjoint(ch, existing) {
			return false
		}
	}
	return true
}
