package fileops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mantonx/diskexplorer/internal/logger"
)

// Operations performs delete/move/rename file actions. Non-permanent
// deletes move files into a managed trash directory instead of removing
// them; each path reports its own outcome so one failure never stops the
// rest of the batch.
type Operations struct {
	trashDir string
}

// New creates file operations with trash storage under dataDir.
func New(dataDir string) *Operations {
	return &Operations{trashDir: filepath.Join(dataDir, "trash")}
}

// DeleteFiles deletes the given files, permanently or into the trash
// directory. The result maps each input path to its outcome.
func (o *Operations) DeleteFiles(paths []string, permanent bool) map[string]string {
	results := make(map[string]string, len(paths))
	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			results[path] = "not a file"
			continue
		}

		if permanent {
			if err := os.Remove(path); err != nil {
				results[path] = fmt.Sprintf("error: %v", err)
				continue
			}
			results[path] = "deleted permanently"
			continue
		}

		if err := o.moveToTrash(path); err != nil {
			results[path] = fmt.Sprintf("error: %v", err)
			continue
		}
		results[path] = "moved to trash"
	}
	return results
}

func (o *Operations) moveToTrash(path string) error {
	if err := os.MkdirAll(o.trashDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(o.trashDir, fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(path)))
	if err := os.Rename(path, dest); err != nil {
		return err
	}
	logger.Info("moved %s to trash as %s", path, dest)
	return nil
}

// MoveFiles moves the given files into targetDir, creating it when
// missing. The result maps each input path to its new location or an
// error outcome.
func (o *Operations) MoveFiles(paths []string, targetDir string) map[string]string {
	results := make(map[string]string, len(paths))

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		for _, path := range paths {
			results[path] = fmt.Sprintf("error: %v", err)
		}
		return results
	}

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			results[path] = "not a file"
			continue
		}

		dest := filepath.Join(targetDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			results[path] = fmt.Sprintf("error: %v", err)
			continue
		}
		results[path] = dest
	}
	return results
}

// RenameFile renames a file within its directory and returns the new path.
func (o *Operations) RenameFile(path, newName string) (string, error) {
	newPath := filepath.Join(filepath.Dir(path), newName)
	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rename file: %w", err)
	}
	return newPath, nil
}
