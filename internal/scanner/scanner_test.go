package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcindex/fcindex/internal/scanner"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(metas []scanner.FileMeta) []string {
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Path
	}
	return out
}

func TestScan_FindsRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b")

	s, err := scanner.New()
	require.NoError(t, err)

	metas, err := s.Scan(scanner.Options{RootDir: root})
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestScan_SkipsFixedIgnoreAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "keep")
	writeFile(t, filepath.Join(root, "node_modules", "pkg.js"), "skip")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "skip")

	s, err := scanner.New()
	require.NoError(t, err)

	metas, err := s.Scan(scanner.Options{RootDir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "keep.txt")}, paths(metas))
}

// TestScan_RootGitignoreAppliesToDeepDescendants guards against a
// regression where a root .gitignore's patterns only applied to files
// directly inside the directory that declared them, leaving files two
// or more levels down unfiltered.
func TestScan_RootGitignoreAppliesToDeepDescendants(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")
	writeFile(t, filepath.Join(root, "src", "app.go"), "package main")
	writeFile(t, filepath.Join(root, "src", "nested", "debug.log"), "should be ignored")

	s, err := scanner.New()
	require.NoError(t, err)

	metas, err := s.Scan(scanner.Options{RootDir: root})
	require.NoError(t, err)
	// The .gitignore file is itself a regular file and is listed.
	assert.Equal(t, []string{filepath.Join(root, ".gitignore"), filepath.Join(root, "src", "app.go")}, paths(metas))
}

// TestScan_NestedGitignoreOnlyAppliesUnderItsOwnDirectory checks the
// other half of the chain: a pattern in a nested .gitignore must not
// leak out and affect siblings outside its own subtree.
func TestScan_NestedGitignoreOnlyAppliesUnderItsOwnDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", ".gitignore"), "*.generated.go\n")
	writeFile(t, filepath.Join(root, "src", "code.generated.go"), "generated")
	writeFile(t, filepath.Join(root, "other", "code.generated.go"), "not ignored here")

	s, err := scanner.New()
	require.NoError(t, err)

	metas, err := s.Scan(scanner.Options{RootDir: root})
	require.NoError(t, err)
	// The .gitignore file is itself a regular file and is listed.
	assert.Equal(t, []string{filepath.Join(root, "other", "code.generated.go"), filepath.Join(root, "src", ".gitignore")}, paths(metas))
}
