package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jessifoo/rayzgyproc/internal/cleanup"
	"github.com/jessifoo/rayzgyproc/internal/config"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/internal/hasher"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrUnsafeAlgorithm is returned when duplicates found with a
// non-cryptographic digest would be deleted
var ErrUnsafeAlgorithm = errors.New("duplicate removal requires the sha256 hash algorithm")

// CleanupPlan is what a cleanup would remove, built before any confirmation
type CleanupPlan struct {
	Dedup *models.DedupResults
	Plan  *cleanup.Plan
}

// Cleaner removes backup files and redundant duplicate copies after
// confirmation
type Cleaner struct {
	config    *config.Config
	fs        afero.Fs
	logger    *zap.Logger
	deduper   *Deduper
	callbacks cleanup.Callbacks
	dryRun    bool
}

// NewCleaner creates a new cleaner
func NewCleaner(cfg *config.Config, fs afero.Fs, logger *zap.Logger) *Cleaner {
	return &Cleaner{
		config:  cfg,
		fs:      fs,
		logger:  logger,
		deduper: NewDeduper(cfg, fs, logger),
	}
}

// SetDryRun makes Execute report what it would remove without deleting
func (c *Cleaner) SetDryRun(dryRun bool) {
	c.dryRun = dryRun
}

// SetCallbacks sets the deletion callbacks
func (c *Cleaner) SetCallbacks(cb cleanup.Callbacks) {
	c.callbacks = cb
}

// SetProgressCallback sets the progress callback of the duplicate search
func (c *Cleaner) SetProgressCallback(cb ProgressCallback) {
	c.deduper.SetProgressCallback(cb)
}

// Plan searches path and lists what would be removed. Nothing is deleted.
func (c *Cleaner) Plan(ctx context.Context, path string) (*CleanupPlan, error) {
	results, backups, err := c.deduper.find(ctx, path)
	if err != nil {
		return nil, err
	}

	if len(results.Groups) > 0 && !hasher.Algorithm(results.Algorithm).Safe() {
		return nil, fmt.Errorf("%w (configured: %s)", ErrUnsafeAlgorithm, results.Algorithm)
	}

	return &CleanupPlan{
		Dedup: results,
		Plan:  cleanup.NewPlan(backups, results.Groups),
	}, nil
}

// Execute removes the confirmed categories of plan. confirm is asked once
// for backups and once for duplicates.
func (c *Cleaner) Execute(ctx context.Context, plan *CleanupPlan, confirm cleanup.Confirmer) *models.CleanupResults {
	start := time.Now()
	results := &models.CleanupResults{
		Dedup:  plan.Dedup,
		DryRun: c.dryRun,
	}

	if c.dryRun {
		results.WouldRemoveBackups = len(plan.Plan.BackupTargets())
		results.WouldRemoveDuplicates = len(plan.Plan.DuplicateTargets())
		results.WouldFreeBytes = plan.Plan.Bytes(cleanup.CategoryBackup) + plan.Plan.Bytes(cleanup.CategoryDuplicate)
		results.Duration = time.Since(start)
		c.logger.Info("Dry run, nothing deleted",
			zap.Int("backups", results.WouldRemoveBackups),
			zap.Int("duplicates", results.WouldRemoveDuplicates))
		return results
	}

	outcome := cleanup.NewExecutor(c.fs, c.logger, c.callbacks).Execute(ctx, plan.Plan, confirm)

	results.BackupsConfirmed = outcome.Confirmed[cleanup.CategoryBackup]
	results.DupesConfirmed = outcome.Confirmed[cleanup.CategoryDuplicate]
	results.BackupsRemoved = outcome.Removed[cleanup.CategoryBackup]
	results.DuplicatesRemoved = outcome.Removed[cleanup.CategoryDuplicate]
	results.FreedBytes = outcome.FreedBytes
	results.Errors = outcome.Errors

	if usage, err := filesystem.GetDiskUsage(plan.Dedup.ScanPath); err == nil {
		results.DiskAfter = usage
	}
	results.Duration = time.Since(start)

	c.logger.Info("Cleanup completed",
		zap.Int("backups_removed", results.BackupsRemoved),
		zap.Int("duplicates_removed", results.DuplicatesRemoved),
		zap.Int64("freed_bytes", results.FreedBytes),
		zap.Int("errors", len(results.Errors)))

	return results
}
