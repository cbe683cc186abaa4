// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

// SetupTestProject creates a temporary project holding a sqlprism.yaml
// with the given content (skipped when empty) and a queries/ directory
// with one unformatted query. It returns the project directory.
func SetupTestProject(t *testing.T, config string) string {
	t.Helper()

	dir := t.TempDir()
	if config != "" {
		WriteFile(t, dir, "sqlprism.yaml", config)
	}
	WriteFile(t, dir, filepath.Join("queries", "users.sql"), "select id,name from users where id=1\n")
	return dir
}

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if stripped := ansi.Strip(s); stripped != s {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
