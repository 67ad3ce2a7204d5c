package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"sortable-tree/internal/model"
	"sortable-tree/internal/tree"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "store")

// ErrNoDocument is returned when the document file does not exist yet.
var ErrNoDocument = errors.New("document not found")

type documentFile struct {
	Items model.Forest `json:"items"`
}

// DecodeDocument accepts either a bare array of nodes or an object with an "items"
// array. It reports whether legacy fields were migrated or ids had to be assigned.
func DecodeDocument(b []byte) (model.Forest, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return model.Forest{}, false, nil
	}

	var f model.Forest
	switch b[0] {
	case '[':
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, false, fmt.Errorf("decode document: %w", err)
		}
	case '{':
		var doc documentFile
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, false, fmt.Errorf("decode document: %w", err)
		}
		f = doc.Items
	default:
		return nil, false, fmt.Errorf("decode document: expected array or object")
	}
	if f == nil {
		f = model.Forest{}
	}

	f, changed := migrateLegacy(f)
	if tree.NeedsIDs(f) {
		f = tree.AssignIDs(f)
		changed = true
	}
	return f, changed, nil
}

// migrateLegacy moves isOpen/label into expanded/title.
func migrateLegacy(nodes []model.Node) ([]model.Node, bool) {
	changed := false
	out := make([]model.Node, len(nodes))
	for i, n := range nodes {
		if n.LegacyIsOpen != nil {
			n.Expanded = *n.LegacyIsOpen
			n.LegacyIsOpen = nil
			changed = true
		}
		if n.LegacyLabel != "" {
			if n.Title == "" {
				n.Title = n.LegacyLabel
			}
			n.LegacyLabel = ""
			changed = true
		}
		if len(n.Children) > 0 {
			children, c := migrateLegacy(n.Children)
			n.Children = children
			changed = changed || c
		}
		out[i] = n
	}
	return out, changed
}

// LoadDocument reads the forest at path. A document that needed migration or id
// assignment is written back so the pass runs once.
func (s Store) LoadDocument(path string) (model.Forest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	f, changed, err := DecodeDocument(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if changed {
		log.WithField("path", path).Info("migrated document")
		if err := s.SaveDocument(path, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s Store) SaveDocument(path string, f model.Forest) error {
	if f == nil {
		f = model.Forest{}
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(b, '\n'))
}
