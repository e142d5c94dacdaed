package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to dir/name, creating missing parents, and returns the path.
// It fails the test immediately on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// InstallPackage creates an ament prefix layout for pkg under prefix: the
// resource index marker plus the given files, keyed by path relative to the
// package's share directory.
func InstallPackage(t *testing.T, prefix, pkg string, files map[string]string) string {
	t.Helper()
	WriteFile(t, filepath.Join(prefix, "share", "ament_index", "resource_index", "packages"), pkg, "")
	share := filepath.Join(prefix, "share", pkg)
	require.NoError(t, os.MkdirAll(share, 0o755))
	for name, content := range files {
		WriteFile(t, share, name, content)
	}
	return share
}
