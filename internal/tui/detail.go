package tui

import (
	"fmt"
	"strings"

	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"
)

// detailMarkdown describes the selected node for the detail pane.
func detailMarkdown(f model.Forest, n model.Node) string {
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = n.ID
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	fmt.Fprintf(&b, "- **id**: `%s`\n", n.ID)
	if path, ok := tree.PathToItem(f, n.ID); ok && len(path) > 0 {
		labels := make([]string, 0, len(path))
		for _, id := range path {
			p, _ := tree.Find(f, id)
			labels = append(labels, labelOf(p))
		}
		fmt.Fprintf(&b, "- **path**: %s\n", strings.Join(labels, currentGlyphs().pathSep))
	} else {
		b.WriteString("- **path**: top level\n")
	}
	if s := strings.TrimSpace(n.Slug); s != "" {
		fmt.Fprintf(&b, "- **slug**: `%s`\n", s)
	}
	if len(n.Children) > 0 {
		state := "collapsed"
		if n.Expanded {
			state = "expanded"
		}
		fmt.Fprintf(&b, "- **children**: %d (%s)\n", len(n.Children), state)
	}
	if n.Copys > 0 {
		fmt.Fprintf(&b, "- **copies made**: %d\n", n.Copys)
	}
	var flags []string
	if n.Hide {
		flags = append(flags, "hidden")
	}
	if n.IsDraft {
		flags = append(flags, "draft (cannot receive children)")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "- **flags**: %s\n", strings.Join(flags, ", "))
	}
	return b.String()
}

func labelOf(n model.Node) string {
	if s := strings.TrimSpace(n.Title); s != "" {
		return s
	}
	return n.ID
}
