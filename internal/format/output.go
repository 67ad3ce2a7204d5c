package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sortable-tree/internal/model"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - outline (indented text; trees only, anything else falls back to json)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "outline":
		return WriteOutline(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteOutline renders nodes as an indented list. Collapsed subtrees are shown unless
// pretty is false, in which case only what an open tree would display is written.
func WriteOutline(w io.Writer, v any, pretty bool) error {
	var nodes []model.Node
	switch t := v.(type) {
	case model.Forest:
		nodes = t
	case []model.Node:
		nodes = t
	case model.Node:
		nodes = []model.Node{t}
	default:
		return WriteJSON(w, v, pretty)
	}
	var b strings.Builder
	writeOutline(&b, nodes, 0, pretty)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeOutline(b *strings.Builder, nodes []model.Node, level int, all bool) {
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", level))
		switch {
		case len(n.Children) == 0:
			b.WriteString("- ")
		case n.Expanded:
			b.WriteString("v ")
		default:
			b.WriteString("> ")
		}
		title := n.Title
		if title == "" {
			title = n.ID
		}
		b.WriteString(title)
		b.WriteString("  [")
		b.WriteString(n.ID)
		b.WriteString("]")
		if n.Hide {
			b.WriteString(" (hidden)")
		}
		if n.IsDraft {
			b.WriteString(" (draft)")
		}
		b.WriteByte('\n')
		if len(n.Children) > 0 && (all || n.Expanded) {
			writeOutline(b, n.Children, level+1, all)
		}
	}
}
