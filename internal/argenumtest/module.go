// Package argenumtest provides helpers for tests that need a real Go module
// on disk.
package argenumtest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// GoMod is the go.mod written by WriteModule.
const GoMod = "module test\n\ngo 1.21\n"

// RequireGo skips the test when the go command is unavailable.
// go/packages shells out to it.
func RequireGo(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
}

// WriteModule creates a temporary module named "test" holding files, keyed
// by slash-separated path relative to the module root, and returns its
// directory. GOWORK is disabled for the rest of the test so an enclosing
// workspace cannot leak in.
func WriteModule(t *testing.T, files map[string]string) string {
	t.Helper()
	RequireGo(t)
	t.Setenv("GOWORK", "off")

	dir := t.TempDir()
	if _, ok := files["go.mod"]; !ok {
		WriteFile(t, dir, "go.mod", GoMod)
	}
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t testing.TB, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// GoTest runs "go test" with args in dir and returns its combined output.
// The test fails if the command does.
func GoTest(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("go", append([]string{"test"}, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go test %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}
