//go:build linux

package scanner

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts creation (inode change), modification and access
// times from a stat result.
func statTimes(info os.FileInfo) (created, modified, accessed time.Time) {
	modified = info.ModTime()
	created = modified
	accessed = modified

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		created = time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
		accessed = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	return created, modified, accessed
}
