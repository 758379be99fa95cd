//go:build linux

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// getChangeTime gets the inode change time, falling back to the
// modification time for filesystems without a stat structure
func getChangeTime(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}
