package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"sortable-tree/internal/model"

	"github.com/peterbourgon/diskv/v3"
)

const (
	ClipboardBackendSQLite = "sqlite"
	ClipboardBackendDiskv  = "diskv"

	clipboardSlot = "last"
)

// Clipboard holds the single last-copied subtree. Saving replaces it.
type Clipboard interface {
	Save(ctx context.Context, n model.Node) error
	Load(ctx context.Context) (model.Node, bool, error)
}

// OpenClipboard returns the clipboard for backend ("" means sqlite).
func (s Store) OpenClipboard(backend string) (Clipboard, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", ClipboardBackendSQLite:
		return SQLiteClipboard{Store: s}, nil
	case ClipboardBackendDiskv:
		return NewDiskvClipboard(s.clipboardDir()), nil
	default:
		return nil, fmt.Errorf("invalid clipboard backend: %q (expected sqlite|diskv)", backend)
	}
}

// SQLiteClipboard keeps the slot as one row of the workspace index.
type SQLiteClipboard struct {
	Store Store
	Now   func() time.Time
}

func (c SQLiteClipboard) Save(ctx context.Context, n model.Node) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	db, err := c.Store.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO clipboard(slot, node, copied_at) VALUES(?, ?, ?)`,
		clipboardSlot, string(b), now().UTC().Format(time.RFC3339Nano))
	return err
}

func (c SQLiteClipboard) Load(ctx context.Context) (model.Node, bool, error) {
	db, err := c.Store.openSQLite(ctx)
	if err != nil {
		return model.Node{}, false, err
	}
	defer db.Close()

	var raw string
	err = db.QueryRowContext(ctx, `SELECT node FROM clipboard WHERE slot = ?`, clipboardSlot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Node{}, false, nil
	}
	if err != nil {
		return model.Node{}, false, err
	}
	var n model.Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return model.Node{}, false, fmt.Errorf("clipboard: %w", err)
	}
	return n, true, nil
}

// DiskvClipboard stores the slot as a single file under the workspace. Other
// processes overwrite it, so reads always go to disk.
type DiskvClipboard struct {
	d *diskv.Diskv
}

func NewDiskvClipboard(basePath string) DiskvClipboard {
	return DiskvClipboard{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 0,
	})}
}

func (c DiskvClipboard) Save(_ context.Context, n model.Node) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return c.d.Write(clipboardSlot, b)
}

func (c DiskvClipboard) Load(_ context.Context) (model.Node, bool, error) {
	if !c.d.Has(clipboardSlot) {
		return model.Node{}, false, nil
	}
	b, err := c.d.Read(clipboardSlot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Node{}, false, nil
		}
		return model.Node{}, false, err
	}
	var n model.Node
	if err := json.Unmarshal(b, &n); err != nil {
		return model.Node{}, false, fmt.Errorf("clipboard: %w", err)
	}
	return n, true, nil
}
