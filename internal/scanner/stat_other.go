//go:build !linux

package scanner

import (
	"os"
	"time"
)

// statTimes falls back to the modification time on platforms where change
// and access times are not portably available.
func statTimes(info os.FileInfo) (created, modified, accessed time.Time) {
	modified = info.ModTime()
	return modified, modified, modified
}
