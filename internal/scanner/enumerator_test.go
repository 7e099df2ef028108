package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEnumerateMissingRoot(t *testing.T) {
	e := NewEnumerator(nil, nil)
	_, err := e.Enumerate(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnumerateFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file, "x")

	e := NewEnumerator(nil, nil)
	_, err := e.Enumerate(file)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestEnumerateSkipsExcludedAndHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "nested.txt"), "b")
	writeFile(t, filepath.Join(root, ".hidden.txt"), "c")
	writeFile(t, filepath.Join(root, ".git", "config"), "d")
	writeFile(t, filepath.Join(root, "node_modules", "pkg.js"), "e")
	writeFile(t, filepath.Join(root, ".secrets", "visible.txt"), "f")
	writeFile(t, filepath.Join(root, "junk.tmp"), "g")
	writeFile(t, filepath.Join(root, "debug.log"), "h")

	e := NewEnumerator(nil, nil)
	files, err := e.Enumerate(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "keep.txt"),
		filepath.Join(root, "sub", "nested.txt"),
	}, files)
}

func TestEnumerateCustomExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "a")
	writeFile(t, filepath.Join(root, "build", "out.bin"), "b")
	writeFile(t, filepath.Join(root, "skip.bak"), "c")
	// custom rules replace the defaults entirely
	writeFile(t, filepath.Join(root, "node_modules", "pkg.js"), "d")

	e := NewEnumerator([]string{"build"}, []string{"*.bak"})
	files, err := e.Enumerate(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "keep.txt"),
		filepath.Join(root, "node_modules", "pkg.js"),
	}, files)
}

func TestEnumerateSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	writeFile(t, target, "a")
	link := filepath.Join(root, "alias.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	e := NewEnumerator(nil, nil)
	files, err := e.Enumerate(root)
	require.NoError(t, err)

	assert.Equal(t, []string{target}, files)
}
