//go:build !linux && !windows

package filesystem

import (
	"os"
	"time"
)

// getChangeTime falls back to the modification time
func getChangeTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
