package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jessifoo/rayzgyproc/internal/cleanup"
	"github.com/jessifoo/rayzgyproc/internal/config"
	"github.com/jessifoo/rayzgyproc/internal/dedup"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/internal/hasher"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Deduper finds duplicate files and backup files under a tree
type Deduper struct {
	config           *config.Config
	fs               afero.Fs
	logger           *zap.Logger
	progressCallback ProgressCallback
}

// NewDeduper creates a new duplicate finder
func NewDeduper(cfg *config.Config, fs afero.Fs, logger *zap.Logger) *Deduper {
	return &Deduper{config: cfg, fs: fs, logger: logger}
}

// SetProgressCallback sets the progress callback function
func (d *Deduper) SetProgressCallback(cb ProgressCallback) {
	d.progressCallback = cb
}

func (d *Deduper) reportProgress(phase string, current, total int, message string) {
	if d.progressCallback != nil {
		d.progressCallback(phase, current, total, message)
	}
}

// Find lists duplicate sets and backup files without modifying anything
func (d *Deduper) Find(ctx context.Context, path string) (*models.DedupResults, error) {
	results, _, err := d.find(ctx, path)
	return results, err
}

// find also returns the backup files so a cleanup plan can be built
func (d *Deduper) find(ctx context.Context, path string) (*models.DedupResults, []*models.FileInfo, error) {
	algorithm, err := hasher.ParseAlgorithm(d.config.HashAlgorithm)
	if err != nil {
		return nil, nil, err
	}

	results := &models.DedupResults{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
		ScanPath:  path,
		Algorithm: string(algorithm),
	}

	d.logger.Info("Starting duplicate search",
		zap.String("path", path),
		zap.String("algorithm", string(algorithm)))

	walker := filesystem.NewWalker(d.fs, d.config.Exclude, d.logger)
	walker.OnError = func(p string, err error) {
		results.Skipped = append(results.Skipped, models.SkippedFile{Path: p, Stage: models.StageWalk, Error: err.Error()})
	}

	d.reportProgress("walking", 0, 0, "Collecting files...")
	files, err := walker.Collect(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	results.TotalFiles = len(files)

	suffixes := d.config.BackupSuffixes
	if len(suffixes) == 0 {
		suffixes = cleanup.DefaultBackupSuffixes
	}

	// Backups are removed as a category of their own and never hashed
	var backups, candidates []*models.FileInfo
	for _, fi := range files {
		if cleanup.IsBackupFile(fi.Path, suffixes) {
			backups = append(backups, fi)
			results.Backups = append(results.Backups, fi.Path)
			continue
		}
		candidates = append(candidates, fi)
	}

	pool := hasher.NewPool(hasher.New(d.fs, algorithm, d.logger), d.config.Workers, d.logger)
	pool.OnHashed = func(done, total int) {
		d.reportProgress("hashing", done, total, "")
	}

	index, err := dedup.NewBuilder(pool, d.logger).Build(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}

	results.Groups = index.GroupsWithDuplicates()
	results.HashedFiles = index.HashedCount()
	results.UniqueFiles = index.UniqueCount()
	results.Preserved = index.PreservedCount()
	results.Skipped = append(results.Skipped, index.SkippedFiles()...)

	if usage, err := filesystem.GetDiskUsage(path); err != nil {
		d.logger.Debug("Disk usage unavailable", zap.Error(err))
	} else {
		results.Disk = usage
	}

	results.Duration = time.Since(results.StartTime)

	d.logger.Info("Duplicate search completed",
		zap.Int("files", results.TotalFiles),
		zap.Int("duplicate_sets", len(results.Groups)),
		zap.Int("backups", len(results.Backups)),
		zap.Int("skipped", len(results.Skipped)),
		zap.Duration("duration", results.Duration))

	return results, backups, nil
}
