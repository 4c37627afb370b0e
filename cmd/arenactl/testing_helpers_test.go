package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// runCmd executes arenactl with args and returns everything written to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log.output", filepath.Join(t.TempDir(), "arenactl.log")))

	err := cmd.Execute()
	return out.String(), err
}

// writeFile writes content to name inside a fresh temp directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
