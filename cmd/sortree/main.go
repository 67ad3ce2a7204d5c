package main

import (
	"os"
	"strings"

	"sortable-tree/internal/cli"
)

// itemRef reports whether s is an "@<id>" shorthand and returns the id.
func itemRef(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") || len(s) == 1 {
		return "", false
	}
	return s[1:], true
}

// rewriteItemRefArgs turns `sortree [flags] @<id>` into `sortree [flags] find <id>`.
//
// Cobra treats the first positional token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first, so the scan looks for the first positional.
func rewriteItemRefArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--document":  true,
		"--config":    true,
		"--format":    true,
		"--log-level": true,
		"--clipboard": true,
		"--events":    true,
	}

	rewrite := func(i int, id string) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "find", id)
		return append(out, argv[i+1:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) {
				if id, ok := itemRef(argv[i+1]); ok {
					return rewrite(i+1, id)
				}
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if id, ok := itemRef(a); ok {
			return rewrite(i, id)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteItemRefArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
