// Package testutil provides fixture helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// CreateFileTree creates multiple files from a map of relative path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// ProjectDir creates a temporary directory holding files.
func ProjectDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	CreateFileTree(t, root, files)
	return root
}

// PythonLines returns n numbered assignment lines joined by newlines,
// with no trailing newline.
func PythonLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "x_" + strconv.Itoa(i) + " = " + strconv.Itoa(i)
	}
	return strings.Join(lines, "\n")
}
