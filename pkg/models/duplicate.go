package models

// Fingerprint is the lowercase hex digest of a file's bytes
type Fingerprint string

// DuplicateGroup is a set of paths sharing one fingerprint.
// Paths are sorted; the first path is the one that is kept.
type DuplicateGroup struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Size        int64       `json:"size"`
	Paths       []string    `json:"paths"`
}

// Keep returns the path retained by cleanup
func (g DuplicateGroup) Keep() string {
	if len(g.Paths) == 0 {
		return ""
	}
	return g.Paths[0]
}

// Redundant returns every path after the retained one
func (g DuplicateGroup) Redundant() []string {
	if len(g.Paths) < 2 {
		return nil
	}
	return g.Paths[1:]
}

// WastedBytes returns the space taken by the redundant copies
func (g DuplicateGroup) WastedBytes() int64 {
	return g.Size * int64(len(g.Redundant()))
}
