package store

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	workspaceDirName = ".sortree"
	documentFileName = "tree.json"
	sqliteFileName   = "index.sqlite"
	eventsDirName    = "events"
	eventsFileName   = "events.jsonl"
	clipboardDirName = "clipboard"
)

// Store is a workspace directory holding the document, the clipboard slot and the
// event log.
type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// DocumentPath resolves the document file. Relative names are taken relative to the
// workspace directory.
func (s Store) DocumentPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = documentFileName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) eventsPath() string {
	return filepath.Join(s.Dir, eventsDirName, eventsFileName)
}

func (s Store) clipboardDir() string {
	return filepath.Join(s.Dir, clipboardDirName)
}

// writeFileAtomic writes through a temp file so readers never see a partial document.
func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
