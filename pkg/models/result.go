package models

import "time"

// Stage names the pipeline step where a file was skipped
type Stage string

const (
	StageWalk   Stage = "walk"
	StageRead   Stage = "read"
	StageHash   Stage = "hash"
	StageDelete Stage = "delete"
)

// SkippedFile records a per-file error that did not stop the run
type SkippedFile struct {
	Path  string `json:"path"`
	Stage Stage  `json:"stage"`
	Error string `json:"error"`
}

// DiskUsage describes the filesystem holding the scan root
type DiskUsage struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// ScanResults contains the results of a suspicious-file scan
type ScanResults struct {
	ID           string        `json:"id"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	ScanPath     string        `json:"scan_path"`
	TotalFiles   int           `json:"total_files"`
	ScannedFiles int           `json:"scanned_files"`
	IssuesFound  int           `json:"issues_found"`

	Findings []*Finding       `json:"findings"`
	Skipped  []SkippedFile    `json:"skipped,omitempty"`
	ByCheck  map[CheckKind]int `json:"issues_by_check"`

	Stats *ScanStatistics `json:"statistics"`

	Version    string `json:"version"`
	ReportPath string `json:"report_path,omitempty"`
}

// ScanStatistics contains detailed scan statistics
type ScanStatistics struct {
	TotalSize       int64  `json:"total_size"`
	LargestFile     string `json:"largest_file,omitempty"`
	LargestFileSize int64  `json:"largest_file_size"`
	AverageFileSize int64  `json:"average_file_size"`

	ContentScanned int `json:"content_scanned"`
	TooLarge       int `json:"too_large"`
	BinarySkipped  int `json:"binary_skipped"`

	FilesPerSecond float64 `json:"files_per_second"`
	WorkersUsed    int     `json:"workers_used"`
}

// AddFinding adds a finding to the results
func (r *ScanResults) AddFinding(f *Finding) {
	r.Findings = append(r.Findings, f)
	r.IssuesFound += len(f.Issues)

	if r.ByCheck == nil {
		r.ByCheck = make(map[CheckKind]int)
	}
	for _, issue := range f.Issues {
		r.ByCheck[issue.Check]++
	}
}

// AddSkipped records a file that could not be processed
func (r *ScanResults) AddSkipped(path string, stage Stage, err error) {
	r.Skipped = append(r.Skipped, SkippedFile{Path: path, Stage: stage, Error: err.Error()})
}

// DedupResults contains the outcome of a duplicate search
type DedupResults struct {
	ID        string        `json:"id"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	ScanPath  string        `json:"scan_path"`
	Algorithm string        `json:"algorithm"`

	TotalFiles  int `json:"total_files"`
	HashedFiles int `json:"hashed_files"`
	UniqueFiles int `json:"unique_files"`
	Preserved   int `json:"preserved_variants"` // Sized variants exempt from deduplication

	Groups  []DuplicateGroup `json:"groups"`
	Backups []string         `json:"backups"`
	Skipped []SkippedFile    `json:"skipped,omitempty"`

	Disk *DiskUsage `json:"disk,omitempty"`
}

// DuplicateCount returns the number of redundant copies across all groups
func (r *DedupResults) DuplicateCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Redundant())
	}
	return n
}

// WastedBytes returns the space held by redundant copies
func (r *DedupResults) WastedBytes() int64 {
	var n int64
	for _, g := range r.Groups {
		n += g.WastedBytes()
	}
	return n
}

// CleanupResults contains the outcome of a cleanup or dry run
type CleanupResults struct {
	Dedup *DedupResults `json:"dedup"`

	DryRun            bool          `json:"dry_run"`
	BackupsConfirmed  bool          `json:"backups_confirmed"`
	DupesConfirmed    bool          `json:"duplicates_confirmed"`
	BackupsRemoved    int           `json:"backups_removed"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
	FreedBytes        int64         `json:"freed_bytes"`
	Errors            []SkippedFile `json:"errors,omitempty"`
	Duration          time.Duration `json:"duration"`

	// Dry run only; nothing was confirmed or removed
	WouldRemoveBackups    int   `json:"would_remove_backups,omitempty"`
	WouldRemoveDuplicates int   `json:"would_remove_duplicates,omitempty"`
	WouldFreeBytes        int64 `json:"would_free_bytes,omitempty"`

	DiskAfter *DiskUsage `json:"disk_after,omitempty"`
}
