package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Fatal enumeration errors. Either one aborts the scan session.
var (
	ErrNotFound      = errors.New("directory not found")
	ErrNotADirectory = errors.New("path is not a directory")
)

// DefaultExcludeDirs are directory names pruned during traversal:
// version control, dependency and cache directories.
var DefaultExcludeDirs = []string{
	".git", ".svn", ".hg", "node_modules", "__pycache__", "vendor", ".cache",
}

// DefaultExcludePatterns are filename glob patterns skipped during
// traversal: OS junk, temp and log files.
var DefaultExcludePatterns = []string{
	".DS_Store", "Thumbs.db", "*.tmp", "*.log", "*~",
}

// Enumerator walks a directory tree and produces the complete candidate
// file list before enrichment begins, so the total count is known up front
// for progress percentages.
//
// Traversal policy: excluded directories are pruned (never descended),
// hidden entries (dot-prefixed files and directories) are skipped, and
// symlinks are never followed, which also rules out symlink cycles.
type Enumerator struct {
	excludeDirs     map[string]struct{}
	excludePatterns []string
}

// NewEnumerator creates an enumerator with the given exclusion rules.
// Nil slices select the defaults.
func NewEnumerator(excludeDirs, excludePatterns []string) *Enumerator {
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}
	if excludePatterns == nil {
		excludePatterns = DefaultExcludePatterns
	}

	dirs := make(map[string]struct{}, len(excludeDirs))
	for _, d := range excludeDirs {
		dirs[d] = struct{}{}
	}
	return &Enumerator{
		excludeDirs:     dirs,
		excludePatterns: excludePatterns,
	}
}

// Enumerate returns every candidate file under root. Fails with
// ErrNotFound if root does not exist and ErrNotADirectory if it is not a
// directory; per-entry walk errors are skipped, not fatal.
func (e *Enumerator) Enumerate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotADirectory
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil // unreadable entry, keep walking
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, excluded := e.excludeDirs[name]; excluded || isHidden(name) {
				return filepath.SkipDir
			}
			return nil
		}

		// WalkDir does not follow symlinks, so anything that is not a
		// regular file (symlinks, devices, sockets) is skipped here.
		if !d.Type().IsRegular() {
			return nil
		}
		if isHidden(name) || e.matchesPattern(name) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (e *Enumerator) matchesPattern(name string) bool {
	for _, pattern := range e.excludePatterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
