package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const menuJSON = `[
  {"id": "1", "title": "One", "expanded": true, "children": [
    {"id": "1_0", "title": "A"},
    {"id": "1_1", "title": "B"}
  ]},
  {"id": "2", "title": "Two"},
  {"id": "3", "title": "Three", "children": [{"id": "3_0", "title": "C"}]}
]`

func runCLI(t *testing.T, stdin io.Reader, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// newWorkspace creates an initialized workspace holding menuJSON.
func newWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	// Keep a developer's ~/.config/sortree out of the picture.
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: error\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	src := filepath.Join(t.TempDir(), "menu.json")
	if err := os.WriteFile(src, []byte(menuJSON), 0o644); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	env := mustRun(t, dir, "init", "--from", src)
	if n, _ := env["data"].(map[string]any)["items"].(float64); n != 3 {
		t.Fatalf("expected 3 imported items; got %#v", env["data"])
	}
	return dir
}

func mustRun(t *testing.T, dir string, args ...string) map[string]any {
	t.Helper()
	return mustRunIn(t, dir, nil, args...)
}

func mustRunIn(t *testing.T, dir string, stdin io.Reader, args ...string) map[string]any {
	t.Helper()
	full := append([]string{"--dir", dir}, args...)
	stdout, stderr, err := runCLI(t, stdin, full...)
	if err != nil {
		t.Fatalf("command failed: sortree %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", full, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, stdout, full)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
	}
	return env
}

func mustFail(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"--dir", dir}, args...)
	_, stderr, err := runCLI(t, nil, full...)
	if err == nil {
		t.Fatalf("expected sortree %v to fail", full)
	}
	return string(stderr)
}

func ids(v any) []string {
	xs, _ := v.([]any)
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		m, _ := x.(map[string]any)
		id, _ := m["id"].(string)
		out = append(out, id)
	}
	return out
}

func childrenOf(t *testing.T, dir, id string) string {
	t.Helper()
	return strings.Join(ids(mustRun(t, dir, "children", id)["data"]), ",")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := newWorkspace(t)
	if stderr := mustFail(t, dir, "init"); !strings.Contains(stderr, "already exists") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	env := mustRun(t, dir, "init", "--force")
	if n, _ := env["data"].(map[string]any)["items"].(float64); n != 0 {
		t.Fatalf("expected empty document after --force; got %#v", env["data"])
	}
}

func TestInit_FromStdinAssignsMissingIDs(t *testing.T) {
	dir := t.TempDir()
	in := strings.NewReader(`{"items": [{"title": "Root", "children": [{"title": "Leaf"}]}]}`)
	env := mustRunIn(t, dir, in, "init", "--from", "-")
	if migrated, _ := env["data"].(map[string]any)["migrated"].(bool); !migrated {
		t.Fatalf("expected migrated=true; got %#v", env["data"])
	}
	if got := childrenOf(t, dir, "0"); got != "0_0" {
		t.Fatalf("expected positional ids; got %s", got)
	}
}

func TestQueries(t *testing.T) {
	dir := newWorkspace(t)

	if got := strings.Join(ids(mustRun(t, dir, "show")["data"]), ","); got != "1,2,3" {
		t.Fatalf("show: %s", got)
	}

	found := mustRun(t, dir, "find", "1_1")
	if title, _ := found["data"].(map[string]any)["title"].(string); title != "B" {
		t.Fatalf("find: %#v", found["data"])
	}
	meta := found["meta"].(map[string]any)
	if meta["level"].(float64) != 1 {
		t.Fatalf("find level: %#v", meta)
	}

	path := mustRun(t, dir, "path", "1_1")["data"].([]any)
	if len(path) != 1 || path[0] != "1" {
		t.Fatalf("path: %#v", path)
	}

	if got := childrenOf(t, dir, "_root"); got != "1,2,3" {
		t.Fatalf("children of root: %s", got)
	}
	if got := childrenOf(t, dir, "1"); got != "1_0,1_1" {
		t.Fatalf("children of 1: %s", got)
	}

	targets := strings.Join(ids(mustRun(t, dir, "targets", "1")["data"]), ",")
	if targets != "2,3,3_0" {
		t.Fatalf("targets: %s", targets)
	}

	if stderr := mustFail(t, dir, "find", "nope"); !strings.Contains(stderr, "nope") {
		t.Fatalf("expected missing id in error: %s", stderr)
	}
}

func TestShow_OutlineFormat(t *testing.T) {
	dir := newWorkspace(t)
	stdout, _, err := runCLI(t, nil, "--dir", dir, "--format", "outline", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	want := "v One  [1]\n  - A  [1_0]\n  - B  [1_1]\n- Two  [2]\n> Three  [3]\n"
	if string(stdout) != want {
		t.Fatalf("outline:\n%s\nwant:\n%s", stdout, want)
	}
}

func TestItemActions(t *testing.T) {
	dir := newWorkspace(t)

	mustRun(t, dir, "toggle", "3")
	if exp, _ := mustRun(t, dir, "find", "3")["data"].(map[string]any)["expanded"].(bool); !exp {
		t.Fatalf("expected 3 expanded after toggle")
	}

	mustRun(t, dir, "hide", "2")
	if hidden, _ := mustRun(t, dir, "find", "2")["data"].(map[string]any)["hide"].(bool); !hidden {
		t.Fatalf("expected 2 hidden")
	}

	mustRun(t, dir, "remove", "1_0")
	if got := childrenOf(t, dir, "1"); got != "1_1" {
		t.Fatalf("after remove: %s", got)
	}

	mustFail(t, dir, "toggle", "missing")
}

func TestCopyPasteAndUpdate(t *testing.T) {
	dir := newWorkspace(t)

	mustFail(t, dir, "paste")

	mustRun(t, dir, "copy", "1")
	if got := childrenOf(t, dir, "_root"); got != "1,1-copy1,2,3" {
		t.Fatalf("after copy: %s", got)
	}

	pasted := mustRun(t, dir, "paste")["data"].(map[string]any)
	if pasted["title"] != "One" || len(pasted["children"].([]any)) != 2 {
		t.Fatalf("pasted: %#v", pasted)
	}
	if got := childrenOf(t, dir, "_root"); got != "1,1-copy1,2,3,4" {
		t.Fatalf("after paste: %s", got)
	}

	mustFail(t, dir, "update", "2")
	updated := mustRun(t, dir, "update", "2", "--title", "Zwei", "--draft")["data"].(map[string]any)
	if updated["title"] != "Zwei" || updated["isDraft"] != true {
		t.Fatalf("update: %#v", updated)
	}
}

func TestMoveCommands(t *testing.T) {
	dir := newWorkspace(t)

	mustRun(t, dir, "move", "2", "3", "--instruction", "make-child")
	if got := childrenOf(t, dir, "3"); got != "2,3_0" {
		t.Fatalf("after make-child: %s", got)
	}

	eff := mustRun(t, dir, "modal-move", "2", "--to", "_root", "--index", "0")["data"].(map[string]any)
	if eff["announce"] != "You've moved Item 2 to position 1 in the root." {
		t.Fatalf("announce: %#v", eff)
	}
	if got := childrenOf(t, dir, "_root"); got != "2,1,3" {
		t.Fatalf("after modal-move: %s", got)
	}

	if stderr := mustFail(t, dir, "move", "1_0", "1_1", "--instruction", "reparent"); !strings.Contains(stderr, "--level") {
		t.Fatalf("expected --level error: %s", stderr)
	}
	mustRun(t, dir, "move", "1_0", "1_1", "--instruction", "reparent", "--level", "0")
	if got := childrenOf(t, dir, "_root"); got != "2,1,1_0,3" {
		t.Fatalf("after reparent: %s", got)
	}

	mustFail(t, dir, "move", "1", "2", "--instruction", "sideways")
	mustFail(t, dir, "modal-move", "1", "--index", "-1")
}

func TestInterpret(t *testing.T) {
	dir := newWorkspace(t)

	env := mustRun(t, dir, "interpret", "1_0", "2", "--y", "20", "--height", "40", "--width", "200")
	instr := env["data"].(map[string]any)["instruction"].(map[string]any)
	if instr["type"] != "make-child" {
		t.Fatalf("middle of a leaf row: %#v", instr)
	}
	if _, applied := env["data"].(map[string]any)["effect"]; applied {
		t.Fatalf("expected no effect without --apply")
	}

	// Dropping an item into its own subtree is blocked.
	env = mustRun(t, dir, "interpret", "1", "1_0", "--y", "20", "--apply")
	instr = env["data"].(map[string]any)["instruction"].(map[string]any)
	if instr["type"] != "instruction-blocked" {
		t.Fatalf("expected blocked: %#v", instr)
	}

	mustRun(t, dir, "interpret", "1_0", "2", "--y", "20", "--apply")
	if got := childrenOf(t, dir, "2"); got != "1_0" {
		t.Fatalf("after applied interpret: %s", got)
	}
}

func TestApplyAndEvents(t *testing.T) {
	dir := newWorkspace(t)

	in := strings.NewReader(`[
  {"type": "toggle", "itemId": "3"},
  {"type": "modal-move", "itemId": "3_0", "targetId": "", "index": 0}
]`)
	effects := mustRunIn(t, dir, in, "apply")["data"].([]any)
	if len(effects) != 2 {
		t.Fatalf("effects: %#v", effects)
	}
	if got := childrenOf(t, dir, "_root"); got != "3_0,1,2,3" {
		t.Fatalf("after apply: %s", got)
	}

	mustFail(t, dir, "apply", "--file", filepath.Join(t.TempDir(), "missing.json"))

	evs := mustRun(t, dir, "events", "list", "--item", "3")["data"].([]any)
	if len(evs) != 1 {
		t.Fatalf("events for 3: %#v", evs)
	}
	all := mustRun(t, dir, "events", "list")["data"].([]any)
	if len(all) != 2 {
		t.Fatalf("all events: %#v", all)
	}
}
