package cleanup

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// Category groups deletion targets that share one confirmation
type Category string

const (
	CategoryBackup    Category = "backup"
	CategoryDuplicate Category = "duplicate"
)

// DefaultBackupSuffixes lists the suffixes treated as backup files
var DefaultBackupSuffixes = []string{".bak"}

// Target is a file scheduled for removal
type Target struct {
	Path string
	Size int64
	Keep string // Retained copy, set for duplicates only
}

// IsBackupFile reports whether name ends with one of suffixes (case-insensitive)
func IsBackupFile(name string, suffixes []string) bool {
	base := strings.ToLower(filepath.Base(name))
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(base, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Plan is the list of files a cleanup would remove. Building it performs no I/O.
type Plan struct {
	backups    []Target
	duplicates []Target
}

// NewPlan decides what to delete: every backup file and, for each duplicate
// group, every path except the first.
func NewPlan(backups []*models.FileInfo, groups []models.DuplicateGroup) *Plan {
	p := &Plan{}

	for _, b := range backups {
		p.backups = append(p.backups, Target{Path: b.Path, Size: b.Size})
	}
	sort.Slice(p.backups, func(i, j int) bool { return p.backups[i].Path < p.backups[j].Path })

	for _, g := range groups {
		for _, path := range g.Redundant() {
			p.duplicates = append(p.duplicates, Target{Path: path, Size: g.Size, Keep: g.Keep()})
		}
	}
	return p
}

// BackupTargets returns the backup files to remove
func (p *Plan) BackupTargets() []Target {
	return p.backups
}

// DuplicateTargets returns the redundant copies to remove
func (p *Plan) DuplicateTargets() []Target {
	return p.duplicates
}

// Targets returns the targets of one category
func (p *Plan) Targets(c Category) []Target {
	if c == CategoryBackup {
		return p.backups
	}
	return p.duplicates
}

// Empty reports whether there is nothing to remove
func (p *Plan) Empty() bool {
	return len(p.backups) == 0 && len(p.duplicates) == 0
}

// Bytes returns the total size of the targets in a category
func (p *Plan) Bytes(c Category) int64 {
	var n int64
	for _, t := range p.Targets(c) {
		n += t.Size
	}
	return n
}
