package models

import (
	"io/fs"
	"time"
)

// FileInfo contains the metadata of a regular file observed during a walk.
// It is read at scan time and never cached beyond one pass.
type FileInfo struct {
	Path         string      `json:"path"`          // Full file path
	RelativePath string      `json:"relative_path"` // Path relative to scan root
	Size         int64       `json:"size"`
	ModTime      time.Time   `json:"mod_time"`
	ChangeTime   time.Time   `json:"change_time"` // Change time (inode)
	Mode         fs.FileMode `json:"mode"`        // Permission bits
	IsSymlink    bool        `json:"is_symlink"`
	IsHidden     bool        `json:"is_hidden"`
}

// File represents a file handed to the heuristic checks
type File struct {
	FileInfo
	Name      string // File name
	Extension string // File extension (lowercase, without dot)
	Header    []byte // First bytes of the file, used for binary and type sniffing
	Content   []byte // Full content, only loaded when content checks apply
}

// Perm returns the permission bits of the file
func (f *FileInfo) Perm() fs.FileMode {
	return f.Mode.Perm()
}
