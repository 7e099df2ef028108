package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootWatcherFlagsChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.txt"), "a")

	w, err := WatchRoot(root)
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Stale())

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("b"), 0o644))

	assert.Eventually(t, w.Stale, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, root, w.Root())
}

func TestRootWatcherTracksNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := WatchRoot(root)
	require.NoError(t, err)
	defer w.Close()

	sub := filepath.Join(root, "incoming")
	require.NoError(t, os.Mkdir(sub, 0o755))

	require.Eventually(t, func() bool {
		for _, watched := range w.watcher.WatchList() {
			if watched == sub {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, w.Stale())
}
