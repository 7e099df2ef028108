package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/mantonx/diskexplorer/internal/logger"
)

// RootWatcher watches a scanned root after a scan completes and flips a
// stale flag on the first change, so pollers can tell the persisted
// results no longer reflect the tree. Best-effort only: watch errors are
// logged and never affect scanning.
type RootWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	stale   atomic.Bool
	done    chan struct{}
}

// WatchRoot starts watching root and its subdirectories.
func WatchRoot(root string) (*RootWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &RootWatcher{
		root:    root,
		watcher: fsw,
		done:    make(chan struct{}),
	}

	// fsnotify watches are not recursive; add every directory.
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func (w *RootWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			logger.Debug("failed to watch %s: %v", path, addErr)
		}
		return nil
	})
}

func (w *RootWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			logger.Debug("root change observed: %s %s", event.Op, event.Name)
			w.stale.Store(true)

			// new directories need their own (recursive) watches
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Debug("failed to watch new dir %s: %v", event.Name, err)
					}
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Debug("watcher error on %s: %v", w.root, err)
		case <-w.done:
			return
		}
	}
}

// Root returns the watched directory.
func (w *RootWatcher) Root() string { return w.root }

// Stale reports whether the tree changed since the watch started.
func (w *RootWatcher) Stale() bool { return w.stale.Load() }

// Close stops the watcher.
func (w *RootWatcher) Close() {
	close(w.done)
	w.watcher.Close()
}
